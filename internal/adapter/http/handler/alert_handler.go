package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/satelink/econledger/internal/adapter/http/dto"
	"github.com/satelink/econledger/internal/domain"
)

// AlertService defines the behavior needed by AlertHandler.
type AlertService interface {
	RecordNodeFailure(ctx context.Context, nodeID, errMsg string)
	ListAlerts(ctx context.Context, filter domain.AlertFilter) ([]*domain.Alert, error)
}

// AlertHandler exposes node failure reporting and alert listing.
type AlertHandler struct {
	alertUC AlertService
}

// NewAlertHandler creates a new AlertHandler.
func NewAlertHandler(alertUC AlertService) *AlertHandler {
	return &AlertHandler{alertUC: alertUC}
}

// RecordNodeFailure counts one failed call to a node.
func (h *AlertHandler) RecordNodeFailure(w http.ResponseWriter, r *http.Request) {
	var req dto.NodeFailureRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	h.alertUC.RecordNodeFailure(r.Context(), chi.URLParam(r, "id"), req.Error)

	w.WriteHeader(http.StatusAccepted)
}

// List returns stored alerts, newest first.
func (h *AlertHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := domain.ValidatePagination(parseIntQuery(r, "limit", 50), parseIntQuery(r, "offset", 0))

	alerts, err := h.alertUC.ListAlerts(r.Context(), domain.AlertFilter{
		Category: domain.AlertCategory(r.URL.Query().Get("category")),
		EntityID: r.URL.Query().Get("entity_id"),
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		writeDomainError(w, r, "failed to list alerts", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ListResponse[*dto.AlertResponse]{
		Data:   dto.AlertsFromDomain(alerts),
		Limit:  limit,
		Offset: offset,
	})
}
