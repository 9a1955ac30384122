package postgres

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/satelink/econledger/internal/domain"
	"github.com/satelink/econledger/internal/infrastructure/postgres/generated"
	"github.com/satelink/econledger/internal/usecase"
)

// EntryRepository implements usecase.EntryRepository.
type EntryRepository struct {
	queries *generated.Queries
}

// NewEntryRepository creates a new EntryRepository.
func NewEntryRepository(db generated.DBTX) *EntryRepository {
	return &EntryRepository{queries: generated.New(db)}
}

// Create inserts the entry inside tx and sets its ID.
func (r *EntryRepository) Create(ctx context.Context, tx usecase.Transaction, entry *domain.LedgerEntry) error {
	q, err := txQueries(tx)
	if err != nil {
		return err
	}

	id, err := q.CreateEntry(ctx, generated.CreateEntryParams{
		TxnID:         entry.TxnID,
		LineNo:        int32(entry.LineNo),
		AccountKey:    entry.AccountKey,
		Direction:     string(entry.Direction),
		AmountUsdt:    decimalToNumeric(entry.Amount),
		Memo:          entry.Memo,
		EventType:     entry.EventType,
		ReferenceType: entry.ReferenceType,
		ReferenceID:   entry.ReferenceID,
		CreatedBy:     entry.CreatedBy,
		CreatedAt:     timeToPgTimestamptz(entry.CreatedAt),
	})
	if err != nil {
		return err
	}

	entry.ID = id

	return nil
}

// GetByTxn returns the entries of a transaction in line order.
func (r *EntryRepository) GetByTxn(ctx context.Context, txnID string) ([]*domain.LedgerEntry, error) {
	rows, err := r.queries.GetEntriesByTxn(ctx, txnID)
	if err != nil {
		return nil, err
	}

	return rowsToEntries(rows), nil
}

// GetByAccount returns an account's entries, newest first.
func (r *EntryRepository) GetByAccount(ctx context.Context, accountKey string, limit, offset int) ([]*domain.LedgerEntry, error) {
	rows, err := r.queries.GetEntriesByAccount(ctx, generated.GetEntriesByAccountParams{
		AccountKey: accountKey,
		Limit:      int32(limit),
		Offset:     int32(offset),
	})
	if err != nil {
		return nil, err
	}

	return rowsToEntries(rows), nil
}

// SumByAccount sums an account's debits and credits as seen by tx.
func (r *EntryRepository) SumByAccount(ctx context.Context, tx usecase.Transaction, accountKey string) (decimal.Decimal, decimal.Decimal, error) {
	q, err := txQueries(tx)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}

	row, err := q.SumEntriesByAccount(ctx, accountKey)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}

	return numericToDecimal(row.Debits), numericToDecimal(row.Credits), nil
}

func rowsToEntries(rows []generated.EconomicLedgerEntry) []*domain.LedgerEntry {
	entries := make([]*domain.LedgerEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, rowToEntry(row))
	}

	return entries
}

func rowToEntry(row generated.EconomicLedgerEntry) *domain.LedgerEntry {
	return &domain.LedgerEntry{
		ID:            row.ID,
		TxnID:         row.TxnID,
		LineNo:        int(row.LineNo),
		AccountKey:    row.AccountKey,
		Direction:     domain.Direction(row.Direction),
		Amount:        numericToDecimal(row.AmountUsdt),
		Memo:          row.Memo,
		EventType:     row.EventType,
		ReferenceType: row.ReferenceType,
		ReferenceID:   row.ReferenceID,
		CreatedBy:     row.CreatedBy,
		CreatedAt:     row.CreatedAt.Time,
	}
}
