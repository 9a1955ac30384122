package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/satelink/econledger/internal/adapter/http/dto"
	"github.com/satelink/econledger/internal/adapter/http/middleware"
	"github.com/satelink/econledger/internal/domain"
	"github.com/satelink/econledger/internal/usecase"
)

// TxnService defines the behavior needed by TxnHandler.
type TxnService interface {
	CreateTxn(ctx context.Context, input usecase.CreateTxnInput) (*domain.Txn, error)
	GetTxn(ctx context.Context, txnID string) (*domain.Txn, error)
	ListEntriesByAccount(ctx context.Context, input usecase.ListEntriesInput) ([]*domain.LedgerEntry, error)
}

// TxnHandler handles transaction posting and entry queries.
type TxnHandler struct {
	txnUC TxnService
}

// NewTxnHandler creates a new TxnHandler.
func NewTxnHandler(txnUC TxnService) *TxnHandler {
	return &TxnHandler{txnUC: txnUC}
}

// Create posts a balanced transaction. The authenticated subject, if any, is
// recorded as created_by.
func (h *TxnHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateTxnRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	createdBy := ""
	if p, ok := middleware.PrincipalFromContext(r.Context()); ok {
		createdBy = p.Subject
	}

	txn, err := h.txnUC.CreateTxn(r.Context(), req.ToUseCaseInput(createdBy))
	if err != nil {
		writeDomainError(w, r, "failed to create transaction", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.TxnFromDomain(txn))
}

// Get returns a transaction with its entries.
func (h *TxnHandler) Get(w http.ResponseWriter, r *http.Request) {
	txn, err := h.txnUC.GetTxn(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, r, "failed to get transaction", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.TxnFromDomain(txn))
}

// ListByAccount lists an account's entries, newest first.
func (h *TxnHandler) ListByAccount(w http.ResponseWriter, r *http.Request) {
	limit, offset := domain.ValidatePagination(parseIntQuery(r, "limit", 50), parseIntQuery(r, "offset", 0))

	entries, err := h.txnUC.ListEntriesByAccount(r.Context(), usecase.ListEntriesInput{
		AccountKey: chi.URLParam(r, "key"),
		Limit:      limit,
		Offset:     offset,
	})
	if err != nil {
		writeDomainError(w, r, "failed to list entries", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ListResponse[*dto.EntryResponse]{
		Data:   dto.EntriesFromDomain(entries),
		Limit:  limit,
		Offset: offset,
	})
}
