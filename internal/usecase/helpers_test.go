package usecase_test

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/satelink/econledger/internal/domain"
	"github.com/satelink/econledger/internal/usecase"
	"github.com/satelink/econledger/internal/usecase/mocks"
)

type testLedger struct {
	store    *mocks.Store
	accounts *usecase.AccountUseCase
	balances *usecase.BalanceUseCase
	txns     *usecase.TxnUseCase
	ledger   *usecase.LedgerUseCase
	ids      *mocks.SequenceIDGenerator
}

func newTestLedger(opts ...usecase.TxnOption) *testLedger {
	store := mocks.NewStore()
	ids := &mocks.SequenceIDGenerator{Prefix: domain.TxnIDPrefix}
	balances := usecase.NewBalanceUseCase(store.EntryRepo(), store.BalanceRepo())

	return &testLedger{
		store:    store,
		accounts: usecase.NewAccountUseCase(store.AccountRepo()),
		balances: balances,
		txns: usecase.NewTxnUseCase(
			store.TxManager(),
			store.AccountRepo(),
			store.EntryRepo(),
			usecase.NewHashChain(store.ChainRepo()),
			balances,
			ids,
			opts...,
		),
		ledger: usecase.NewLedgerUseCase(store.LedgerRepo(), store.AccountRepo(), store.ChainRepo(), store.BalanceRepo(), nopLogger),
		ids:    ids,
	}
}

func debit(key, amount string) domain.Line {
	return domain.Line{AccountKey: key, Direction: domain.DirectionDebit, Amount: decimal.RequireFromString(amount)}
}

func credit(key, amount string) domain.Line {
	return domain.Line{AccountKey: key, Direction: domain.DirectionCredit, Amount: decimal.RequireFromString(amount)}
}

// fakeClock is a manually advanced clock.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.now = c.now.Add(d)
}

var nopLogger = zerolog.Nop()
