package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/satelink/econledger/internal/domain"
)

// AccountRepository defines data access for accounts.
type AccountRepository interface {
	// Create inserts the account unless its key already exists.
	Create(ctx context.Context, account *domain.Account) error
	CreateTx(ctx context.Context, tx Transaction, account *domain.Account) error
	GetByKey(ctx context.Context, key string) (*domain.Account, error)
	List(ctx context.Context, limit, offset int) ([]*domain.Account, error)
}

// EntryRepository defines data access for ledger entries.
type EntryRepository interface {
	// Create inserts the entry and sets its ID.
	Create(ctx context.Context, tx Transaction, entry *domain.LedgerEntry) error
	GetByTxn(ctx context.Context, txnID string) ([]*domain.LedgerEntry, error)
	GetByAccount(ctx context.Context, accountKey string, limit, offset int) ([]*domain.LedgerEntry, error)
	SumByAccount(ctx context.Context, tx Transaction, accountKey string) (debits, credits decimal.Decimal, err error)
}

// ChainRepository defines data access for the hash chain.
type ChainRepository interface {
	// Lock blocks until tx holds the chain serialization point. The lock is
	// released when tx commits or rolls back.
	Lock(ctx context.Context, tx Transaction) error
	// Tail returns the hash of the newest link, or domain.GenesisHash.
	Tail(ctx context.Context, tx Transaction) (string, error)
	// Append inserts the link and sets its ID.
	Append(ctx context.Context, tx Transaction, link *domain.ChainLink) error
	// Walk returns up to limit links with id greater than afterID, in id
	// order, each joined to its entry.
	Walk(ctx context.Context, afterID int64, limit int) ([]domain.ChainRecord, error)
	CountOrphanEntries(ctx context.Context) (int64, error)
}

// BalanceRepository defines data access for the balance cache.
type BalanceRepository interface {
	Upsert(ctx context.Context, tx Transaction, balance *domain.AccountBalance) error
	// Get returns domain.ErrBalanceNotFound when no row exists.
	Get(ctx context.Context, accountKey string) (*domain.AccountBalance, error)
	List(ctx context.Context, limit, offset int) ([]*domain.AccountBalance, error)
}

// LedgerRepository defines data access for ledger-wide operations.
type LedgerRepository interface {
	CheckConsistency(ctx context.Context) (totalDebits, totalCredits decimal.Decimal, err error)
	// DerivedBalances returns debit-minus-credit per account straight from
	// the entries.
	DerivedBalances(ctx context.Context) (map[string]decimal.Decimal, error)
}

// AlertRepository defines data access for security alerts.
type AlertRepository interface {
	Create(ctx context.Context, alert *domain.Alert) error
	List(ctx context.Context, filter domain.AlertFilter) ([]*domain.Alert, error)
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// Retrier re-runs an operation on transient storage errors.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// IdempotencyStore remembers the response to a mutating request so a retry
// carrying the same key replays it instead of posting twice.
type IdempotencyStore interface {
	// Reserve claims key for a new request. When the key is already taken it
	// returns claimed=false together with the stored response, which is nil
	// while the first request is still in flight.
	Reserve(ctx context.Context, key string, ttl time.Duration) (bool, []byte, error)
	// Complete stores the final response for a reserved key.
	Complete(ctx context.Context, key string, response []byte, ttl time.Duration) error
	// Release drops a reservation whose request did not succeed.
	Release(ctx context.Context, key string) error
}

// LedgerMetrics records transaction engine outcomes.
type LedgerMetrics interface {
	TxnCommitted(lines int, duration time.Duration)
	TxnRejected(rule string)
	TxnFailed()
}

// AlertMetrics records anomaly counter outcomes.
type AlertMetrics interface {
	AlertEmitted(category domain.AlertCategory)
	AlertPersistFailed(category domain.AlertCategory)
}

type noopMetrics struct{}

func (noopMetrics) TxnCommitted(int, time.Duration)         {}
func (noopMetrics) TxnRejected(string)                      {}
func (noopMetrics) TxnFailed()                              {}
func (noopMetrics) AlertEmitted(domain.AlertCategory)       {}
func (noopMetrics) AlertPersistFailed(domain.AlertCategory) {}
