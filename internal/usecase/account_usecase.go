package usecase

import (
	"context"
	"time"

	"github.com/satelink/econledger/internal/domain"
)

// AccountUseCase handles the account registry.
type AccountUseCase struct {
	accountRepo AccountRepository
	now         func() time.Time
}

// NewAccountUseCase creates a new AccountUseCase.
func NewAccountUseCase(accountRepo AccountRepository) *AccountUseCase {
	return &AccountUseCase{
		accountRepo: accountRepo,
		now:         time.Now,
	}
}

// EnsureAccountInput represents input for registering an account.
type EnsureAccountInput struct {
	Key   string
	Type  string
	Label string
}

// EnsureAccount registers the account if its key is new. Registering an
// existing key is a no-op and keeps the first type and label.
func (uc *AccountUseCase) EnsureAccount(ctx context.Context, input EnsureAccountInput) (*domain.Account, error) {
	if err := domain.ValidateAccountKey(input.Key); err != nil {
		return nil, err
	}

	account := domain.NewAccount(input.Key, input.Type, input.Label, uc.now().UTC().Truncate(time.Millisecond))
	if err := uc.accountRepo.Create(ctx, account); err != nil {
		return nil, domain.NewStorageError("ensure account", err)
	}

	return uc.GetAccount(ctx, input.Key)
}

// GetAccount retrieves an account by key.
func (uc *AccountUseCase) GetAccount(ctx context.Context, key string) (*domain.Account, error) {
	return uc.accountRepo.GetByKey(ctx, key)
}

// ListAccountsInput represents input for listing accounts.
type ListAccountsInput struct {
	Limit  int
	Offset int
}

// ListAccounts lists accounts with pagination.
func (uc *AccountUseCase) ListAccounts(ctx context.Context, input ListAccountsInput) ([]*domain.Account, error) {
	limit, offset := domain.ValidatePagination(input.Limit, input.Offset)
	return uc.accountRepo.List(ctx, limit, offset)
}

// ensureAccountTx registers the account for a line inside a posting unit.
func ensureAccountTx(ctx context.Context, repo AccountRepository, tx Transaction, line domain.Line, now time.Time) error {
	return repo.CreateTx(ctx, tx, domain.NewAccount(line.AccountKey, line.AccountType, line.Label, now))
}
