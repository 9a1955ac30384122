package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/satelink/econledger/internal/domain"
	"github.com/satelink/econledger/internal/infrastructure/postgres/generated"
	"github.com/satelink/econledger/internal/usecase"
)

// DefaultChainLockID is the advisory lock key guarding the chain tail.
const DefaultChainLockID int64 = 0x6c65646765720001

// ChainRepository implements usecase.ChainRepository.
type ChainRepository struct {
	queries *generated.Queries
	lockID  int64
}

// NewChainRepository creates a new ChainRepository. Every process writing to
// the same database must use the same lockID.
func NewChainRepository(db generated.DBTX, lockID int64) *ChainRepository {
	return &ChainRepository{
		queries: generated.New(db),
		lockID:  lockID,
	}
}

// Lock takes a transaction-scoped advisory lock. Postgres releases it on
// commit or rollback.
func (r *ChainRepository) Lock(ctx context.Context, tx usecase.Transaction) error {
	q, err := txQueries(tx)
	if err != nil {
		return err
	}

	return q.AcquireChainLock(ctx, r.lockID)
}

// Tail returns the newest link hash, or the genesis hash on an empty chain.
func (r *ChainRepository) Tail(ctx context.Context, tx usecase.Transaction) (string, error) {
	q, err := txQueries(tx)
	if err != nil {
		return "", err
	}

	hash, err := q.GetChainTail(ctx)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.GenesisHash, nil
	}

	if err != nil {
		return "", err
	}

	return hash, nil
}

// Append inserts link inside tx and sets its ID.
func (r *ChainRepository) Append(ctx context.Context, tx usecase.Transaction, link *domain.ChainLink) error {
	q, err := txQueries(tx)
	if err != nil {
		return err
	}

	id, err := q.CreateChainLink(ctx, generated.CreateChainLinkParams{
		LedgerEntryID: link.LedgerEntryID,
		TxnID:         link.TxnID,
		HashPrev:      link.HashPrev,
		HashCurrent:   link.HashCurrent,
		CreatedAt:     timeToPgTimestamptz(link.CreatedAt),
	})
	if err != nil {
		return err
	}

	link.ID = id

	return nil
}

// Walk returns links after afterID in id order, joined to their entries.
func (r *ChainRepository) Walk(ctx context.Context, afterID int64, limit int) ([]domain.ChainRecord, error) {
	rows, err := r.queries.WalkChain(ctx, generated.WalkChainParams{
		AfterID: afterID,
		Limit:   int32(limit),
	})
	if err != nil {
		return nil, err
	}

	records := make([]domain.ChainRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, rowToChainRecord(row))
	}

	return records, nil
}

// CountOrphanEntries counts entries that no link covers.
func (r *ChainRepository) CountOrphanEntries(ctx context.Context) (int64, error) {
	return r.queries.CountOrphanEntries(ctx)
}

func rowToChainRecord(row generated.WalkChainRow) domain.ChainRecord {
	rec := domain.ChainRecord{
		Link: &domain.ChainLink{
			ID:            row.ID,
			LedgerEntryID: row.LedgerEntryID,
			TxnID:         row.TxnID,
			HashPrev:      row.HashPrev,
			HashCurrent:   row.HashCurrent,
			CreatedAt:     row.CreatedAt.Time,
		},
	}

	if !row.EntryID.Valid {
		return rec
	}

	rec.Entry = &domain.LedgerEntry{
		ID:            row.EntryID.Int64,
		TxnID:         textValue(row.EntryTxnID),
		LineNo:        int(row.LineNo.Int32),
		AccountKey:    textValue(row.AccountKey),
		Direction:     domain.Direction(textValue(row.Direction)),
		Amount:        numericToDecimal(row.AmountUsdt),
		Memo:          textValue(row.Memo),
		EventType:     textValue(row.EventType),
		ReferenceType: textValue(row.ReferenceType),
		ReferenceID:   textValue(row.ReferenceID),
		CreatedBy:     textValue(row.CreatedBy),
		CreatedAt:     row.EntryCreatedAt.Time,
	}

	return rec
}
