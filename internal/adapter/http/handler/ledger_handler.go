package handler

import (
	"context"
	"net/http"

	"github.com/satelink/econledger/internal/adapter/http/dto"
	"github.com/satelink/econledger/internal/domain"
	"github.com/satelink/econledger/internal/usecase"
)

// LedgerService defines the ledger-wide checks.
type LedgerService interface {
	VerifyChain(ctx context.Context) (*domain.ChainReport, error)
	CheckConsistency(ctx context.Context) (*usecase.ConsistencyReport, error)
	ReconcileBalances(ctx context.Context) (*usecase.ReconciliationReport, error)
}

// LedgerHandler handles ledger-wide operations. A failed check answers 409
// with the full report.
type LedgerHandler struct {
	ledgerUC LedgerService
}

// NewLedgerHandler creates a new LedgerHandler.
func NewLedgerHandler(ledgerUC LedgerService) *LedgerHandler {
	return &LedgerHandler{ledgerUC: ledgerUC}
}

// VerifyChain walks the hash chain from genesis.
func (h *LedgerHandler) VerifyChain(w http.ResponseWriter, r *http.Request) {
	report, err := h.ledgerUC.VerifyChain(r.Context())
	if err != nil {
		writeDomainError(w, r, "failed to verify chain", err)
		return
	}

	writeJSON(w, checkStatus(report.Valid), dto.ChainReportFromDomain(report))
}

// CheckConsistency checks that total debits equal total credits.
func (h *LedgerHandler) CheckConsistency(w http.ResponseWriter, r *http.Request) {
	report, err := h.ledgerUC.CheckConsistency(r.Context())
	if err != nil {
		writeDomainError(w, r, "failed to check consistency", err)
		return
	}

	writeJSON(w, checkStatus(report.Consistent), dto.ConsistencyFromUseCase(report))
}

// Reconcile compares every cached balance with its entries.
func (h *LedgerHandler) Reconcile(w http.ResponseWriter, r *http.Request) {
	report, err := h.ledgerUC.ReconcileBalances(r.Context())
	if err != nil {
		writeDomainError(w, r, "failed to reconcile balances", err)
		return
	}

	writeJSON(w, checkStatus(report.Reconciled()), dto.ReconciliationFromUseCase(report))
}

func checkStatus(ok bool) int {
	if ok {
		return http.StatusOK
	}
	return http.StatusConflict
}
