package usecase

import "time"

const (
	// DefaultTransactionTimeout bounds one atomic posting unit, retries
	// included.
	DefaultTransactionTimeout = 10 * time.Second

	// IdempotencyKeyTTL is how long idempotency keys are cached
	IdempotencyKeyTTL = 24 * time.Hour

	// chainWalkPageSize is how many links VerifyChain loads per query.
	chainWalkPageSize = 500

	// reconcilePageSize is how many cached balances ReconcileBalances loads per query.
	reconcilePageSize = 1000
)
