package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/satelink/econledger/internal/domain"
)

// TxnUseCase posts balanced transactions. Each posting is one atomic unit:
// entries, chain links and the balances of every touched account commit
// together or not at all.
type TxnUseCase struct {
	txManager   TransactionManager
	accountRepo AccountRepository
	entryRepo   EntryRepository
	chain       *HashChain
	balances    *BalanceUseCase
	idGen       IDGenerator
	retrier     Retrier
	metrics     LedgerMetrics
	logger      zerolog.Logger
	now         func() time.Time
	timeout     time.Duration
}

// TxnOption configures a TxnUseCase.
type TxnOption func(*TxnUseCase)

// WithRetrier retries whole posting units on transient storage errors.
func WithRetrier(r Retrier) TxnOption {
	return func(uc *TxnUseCase) { uc.retrier = r }
}

// WithTimeout bounds each posting, retries included.
func WithTimeout(d time.Duration) TxnOption {
	return func(uc *TxnUseCase) {
		if d > 0 {
			uc.timeout = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) TxnOption {
	return func(uc *TxnUseCase) { uc.logger = l }
}

// WithMetrics sets the metrics sink.
func WithMetrics(m LedgerMetrics) TxnOption {
	return func(uc *TxnUseCase) { uc.metrics = m }
}

// WithClock overrides the clock used for entry timestamps.
func WithClock(now func() time.Time) TxnOption {
	return func(uc *TxnUseCase) { uc.now = now }
}

// NewTxnUseCase creates a new TxnUseCase.
func NewTxnUseCase(
	txManager TransactionManager,
	accountRepo AccountRepository,
	entryRepo EntryRepository,
	chain *HashChain,
	balances *BalanceUseCase,
	idGen IDGenerator,
	opts ...TxnOption,
) *TxnUseCase {
	uc := &TxnUseCase{
		txManager:   txManager,
		accountRepo: accountRepo,
		entryRepo:   entryRepo,
		chain:       chain,
		balances:    balances,
		idGen:       idGen,
		retrier:     noRetry{},
		metrics:     noopMetrics{},
		logger:      zerolog.Nop(),
		now:         time.Now,
		timeout:     DefaultTransactionTimeout,
	}

	for _, opt := range opts {
		opt(uc)
	}

	return uc
}

// CreateTxnInput represents input for posting a transaction.
type CreateTxnInput struct {
	EventType     string
	ReferenceType string
	ReferenceID   string
	Memo          string
	CreatedBy     string
	Lines         []domain.Line
}

// CreateTxn validates and posts a transaction. Validation failures return a
// *domain.ValidationError before anything is written. Storage failures roll
// the whole unit back and return a *domain.StorageError.
func (uc *TxnUseCase) CreateTxn(ctx context.Context, input CreateTxnInput) (*domain.Txn, error) {
	if err := domain.ValidateLines(input.Lines); err != nil {
		uc.metrics.TxnRejected(ruleName(err))
		return nil, err
	}

	txnID := uc.idGen.Generate()
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()

	var txn *domain.Txn

	// A retried attempt reuses txnID: nothing from a rolled back attempt survives.
	err := uc.retrier.Retry(ctx, func() error {
		var err error
		txn, err = uc.post(ctx, txnID, input)
		return err
	})
	if err != nil {
		uc.metrics.TxnFailed()
		uc.logger.Error().Err(err).Str("txn_id", txnID).Msg("transaction rolled back")

		return nil, domain.NewStorageError("create txn", err)
	}

	uc.metrics.TxnCommitted(len(txn.Entries), time.Since(start))
	uc.logger.Debug().
		Str("txn_id", txnID).
		Int("lines", len(txn.Entries)).
		Str("event_type", input.EventType).
		Msg("transaction committed")

	return txn, nil
}

func (uc *TxnUseCase) post(ctx context.Context, txnID string, input CreateTxnInput) (*domain.Txn, error) {
	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	// No-op after a successful commit. Runs even when ctx is already done.
	defer tx.Rollback(context.WithoutCancel(ctx))

	if err := uc.chain.Acquire(ctx, tx); err != nil {
		return nil, fmt.Errorf("lock chain: %w", err)
	}

	now := uc.now().UTC().Truncate(time.Millisecond)
	txn := &domain.Txn{ID: txnID, CreatedAt: now}
	touched := make(map[string]struct{}, len(input.Lines))

	for i, line := range input.Lines {
		if err := ensureAccountTx(ctx, uc.accountRepo, tx, line, now); err != nil {
			return nil, fmt.Errorf("ensure account %s: %w", line.AccountKey, err)
		}

		entry := &domain.LedgerEntry{
			TxnID:         txnID,
			LineNo:        i + 1,
			AccountKey:    line.AccountKey,
			Direction:     line.Direction,
			Amount:        line.Amount,
			Memo:          input.Memo,
			EventType:     input.EventType,
			ReferenceType: input.ReferenceType,
			ReferenceID:   input.ReferenceID,
			CreatedBy:     input.CreatedBy,
			CreatedAt:     now,
		}

		if err := uc.entryRepo.Create(ctx, tx, entry); err != nil {
			return nil, fmt.Errorf("insert entry %d: %w", entry.LineNo, err)
		}

		if _, err := uc.chain.Append(ctx, tx, entry); err != nil {
			return nil, fmt.Errorf("append chain link for entry %d: %w", entry.ID, err)
		}

		txn.Entries = append(txn.Entries, entry)
		touched[line.AccountKey] = struct{}{}
	}

	keys := make([]string, 0, len(touched))
	for k := range touched {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		if _, err := uc.balances.Recompute(ctx, tx, key); err != nil {
			return nil, fmt.Errorf("recompute balance %s: %w", key, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	return txn, nil
}

// GetTxn returns a committed transaction with its entries in line order.
func (uc *TxnUseCase) GetTxn(ctx context.Context, txnID string) (*domain.Txn, error) {
	entries, err := uc.entryRepo.GetByTxn(ctx, txnID)
	if err != nil {
		return nil, err
	}

	if len(entries) == 0 {
		return nil, domain.ErrTxnNotFound
	}

	return &domain.Txn{
		ID:        txnID,
		CreatedAt: entries[0].CreatedAt,
		Entries:   entries,
	}, nil
}

// ListEntriesInput represents input for listing an account's entries.
type ListEntriesInput struct {
	AccountKey string
	Limit      int
	Offset     int
}

// ListEntriesByAccount lists an account's entries, newest first.
func (uc *TxnUseCase) ListEntriesByAccount(ctx context.Context, input ListEntriesInput) ([]*domain.LedgerEntry, error) {
	limit, offset := domain.ValidatePagination(input.Limit, input.Offset)
	return uc.entryRepo.GetByAccount(ctx, input.AccountKey, limit, offset)
}

func ruleName(err error) string {
	var ve *domain.ValidationError
	if errors.As(err, &ve) && ve.Rule != nil {
		return ve.Rule.Error()
	}

	return "unknown"
}

type noRetry struct{}

func (noRetry) Retry(_ context.Context, operation func() error) error {
	return operation()
}
