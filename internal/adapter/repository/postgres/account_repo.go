package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/satelink/econledger/internal/domain"
	"github.com/satelink/econledger/internal/infrastructure/postgres/generated"
	"github.com/satelink/econledger/internal/usecase"
)

// AccountRepository implements usecase.AccountRepository.
type AccountRepository struct {
	queries *generated.Queries
}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(db generated.DBTX) *AccountRepository {
	return &AccountRepository{queries: generated.New(db)}
}

// Create inserts the account unless the key is already registered.
func (r *AccountRepository) Create(ctx context.Context, account *domain.Account) error {
	return r.queries.EnsureAccount(ctx, ensureParams(account))
}

// CreateTx is Create inside tx.
func (r *AccountRepository) CreateTx(ctx context.Context, tx usecase.Transaction, account *domain.Account) error {
	q, err := txQueries(tx)
	if err != nil {
		return err
	}

	return q.EnsureAccount(ctx, ensureParams(account))
}

// GetByKey retrieves an account by key.
func (r *AccountRepository) GetByKey(ctx context.Context, key string) (*domain.Account, error) {
	row, err := r.queries.GetAccountByKey(ctx, key)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}

		return nil, err
	}

	return rowToAccount(row), nil
}

// List lists accounts ordered by key.
func (r *AccountRepository) List(ctx context.Context, limit, offset int) ([]*domain.Account, error) {
	rows, err := r.queries.ListAccounts(ctx, generated.ListAccountsParams{
		Limit:  int32(limit),
		Offset: int32(offset),
	})
	if err != nil {
		return nil, err
	}

	accounts := make([]*domain.Account, 0, len(rows))
	for _, row := range rows {
		accounts = append(accounts, rowToAccount(row))
	}

	return accounts, nil
}

func ensureParams(account *domain.Account) generated.EnsureAccountParams {
	return generated.EnsureAccountParams{
		AccountKey:  account.Key,
		AccountType: account.Type,
		Label:       account.Label,
		CreatedAt:   timeToPgTimestamptz(account.CreatedAt),
	}
}

func rowToAccount(row generated.EconomicAccount) *domain.Account {
	return &domain.Account{
		Key:       row.AccountKey,
		Type:      row.AccountType,
		Label:     row.Label,
		CreatedAt: row.CreatedAt.Time,
	}
}
