package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/satelink/econledger/internal/domain"
	"github.com/satelink/econledger/internal/infrastructure/postgres/generated"
	"github.com/satelink/econledger/internal/usecase"
)

// BalanceRepository implements usecase.BalanceRepository.
type BalanceRepository struct {
	queries *generated.Queries
}

// NewBalanceRepository creates a new BalanceRepository.
func NewBalanceRepository(db generated.DBTX) *BalanceRepository {
	return &BalanceRepository{queries: generated.New(db)}
}

// Upsert writes the cached balance inside tx.
func (r *BalanceRepository) Upsert(ctx context.Context, tx usecase.Transaction, balance *domain.AccountBalance) error {
	q, err := txQueries(tx)
	if err != nil {
		return err
	}

	return q.UpsertBalance(ctx, generated.UpsertBalanceParams{
		AccountKey:  balance.AccountKey,
		BalanceUsdt: decimalToNumeric(balance.Balance),
		UpdatedAt:   timeToPgTimestamptz(balance.UpdatedAt),
	})
}

// Get reads the cached balance of an account.
func (r *BalanceRepository) Get(ctx context.Context, accountKey string) (*domain.AccountBalance, error) {
	row, err := r.queries.GetBalance(ctx, accountKey)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrBalanceNotFound
		}

		return nil, err
	}

	return rowToBalance(row), nil
}

// List lists cached balances ordered by account key.
func (r *BalanceRepository) List(ctx context.Context, limit, offset int) ([]*domain.AccountBalance, error) {
	rows, err := r.queries.ListBalances(ctx, generated.ListBalancesParams{
		Limit:  int32(limit),
		Offset: int32(offset),
	})
	if err != nil {
		return nil, err
	}

	balances := make([]*domain.AccountBalance, 0, len(rows))
	for _, row := range rows {
		balances = append(balances, rowToBalance(row))
	}

	return balances, nil
}

func rowToBalance(row generated.EconomicAccountBalance) *domain.AccountBalance {
	return &domain.AccountBalance{
		AccountKey: row.AccountKey,
		Balance:    numericToDecimal(row.BalanceUsdt),
		UpdatedAt:  row.UpdatedAt.Time,
	}
}
