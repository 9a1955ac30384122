package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/satelink/econledger/internal/adapter/http/dto"
	"github.com/satelink/econledger/internal/domain"
	"github.com/satelink/econledger/internal/usecase"
)

// AccountService defines the behavior needed by AccountHandler.
type AccountService interface {
	EnsureAccount(ctx context.Context, input usecase.EnsureAccountInput) (*domain.Account, error)
	GetAccount(ctx context.Context, key string) (*domain.Account, error)
	ListAccounts(ctx context.Context, input usecase.ListAccountsInput) ([]*domain.Account, error)
}

// BalanceService reads the balance cache.
type BalanceService interface {
	GetBalance(ctx context.Context, accountKey string) (decimal.Decimal, error)
}

// AccountHandler handles account-related HTTP requests.
type AccountHandler struct {
	accountUC AccountService
	balanceUC BalanceService
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(accountUC AccountService, balanceUC BalanceService) *AccountHandler {
	return &AccountHandler{accountUC: accountUC, balanceUC: balanceUC}
}

// Ensure registers an account. Registering an existing key returns the stored
// account unchanged.
func (h *AccountHandler) Ensure(w http.ResponseWriter, r *http.Request) {
	var req dto.EnsureAccountRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	account, err := h.accountUC.EnsureAccount(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeDomainError(w, r, "failed to ensure account", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.AccountFromDomain(account))
}

// Get retrieves an account by key.
func (h *AccountHandler) Get(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	if key == "" {
		writeError(w, http.StatusBadRequest, "missing account key", "")
		return
	}

	account, err := h.accountUC.GetAccount(r.Context(), key)
	if err != nil {
		writeDomainError(w, r, "failed to get account", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.AccountFromDomain(account))
}

// List lists accounts.
func (h *AccountHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := domain.ValidatePagination(parseIntQuery(r, "limit", 50), parseIntQuery(r, "offset", 0))

	accounts, err := h.accountUC.ListAccounts(r.Context(), usecase.ListAccountsInput{
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		writeDomainError(w, r, "failed to list accounts", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ListResponse[*dto.AccountResponse]{
		Data:   dto.AccountsFromDomain(accounts),
		Limit:  limit,
		Offset: offset,
	})
}

// Balance returns the cached balance of an account, zero when it has none.
func (h *AccountHandler) Balance(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	balance, err := h.balanceUC.GetBalance(r.Context(), key)
	if err != nil {
		writeDomainError(w, r, "failed to get balance", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.BalanceResponse{AccountKey: key, Balance: balance})
}
