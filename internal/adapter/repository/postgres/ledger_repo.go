package postgres

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/satelink/econledger/internal/infrastructure/postgres/generated"
)

// LedgerRepository implements usecase.LedgerRepository.
type LedgerRepository struct {
	queries *generated.Queries
}

// NewLedgerRepository creates a new LedgerRepository.
func NewLedgerRepository(db generated.DBTX) *LedgerRepository {
	return &LedgerRepository{queries: generated.New(db)}
}

// CheckConsistency returns the ledger-wide debit and credit totals.
func (r *LedgerRepository) CheckConsistency(ctx context.Context) (totalDebits decimal.Decimal, totalCredits decimal.Decimal, err error) {
	result, err := r.queries.GetLedgerTotals(ctx)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}

	return numericToDecimal(result.TotalDebits), numericToDecimal(result.TotalCredits), nil
}

// DerivedBalances computes every account balance from the entries.
func (r *LedgerRepository) DerivedBalances(ctx context.Context) (map[string]decimal.Decimal, error) {
	rows, err := r.queries.GetDerivedBalances(ctx)
	if err != nil {
		return nil, err
	}

	balances := make(map[string]decimal.Decimal, len(rows))
	for _, row := range rows {
		balances[row.AccountKey] = numericToDecimal(row.Balance)
	}

	return balances, nil
}
