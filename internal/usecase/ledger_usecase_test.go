package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satelink/econledger/internal/domain"
	"github.com/satelink/econledger/internal/usecase"
)

func postMany(t *testing.T, l *testLedger, n int) {
	t.Helper()

	for i := 0; i < n; i++ {
		_, err := l.txns.CreateTxn(context.Background(), usecase.CreateTxnInput{
			EventType: domain.EventTypeReward,
			Lines: []domain.Line{
				debit("pool:rewards", "3"),
				credit("user:0xabc", "2"),
				credit("revenue", "1"),
			},
		})
		require.NoError(t, err)
	}
}

func TestLedgerUseCase_VerifyChain(t *testing.T) {
	l := newTestLedger()
	postMany(t, l, 250)

	report, err := l.ledger.VerifyChain(context.Background())
	require.NoError(t, err)

	assert.True(t, report.Valid, report.Reason)
	assert.Equal(t, int64(750), report.Links)
	assert.Zero(t, report.OrphanCount)

	links := l.store.Links()
	assert.Equal(t, links[len(links)-1].HashCurrent, report.Tail)
}

func TestLedgerUseCase_VerifyChainEmpty(t *testing.T) {
	l := newTestLedger()

	report, err := l.ledger.VerifyChain(context.Background())
	require.NoError(t, err)
	assert.True(t, report.Valid)
	assert.Equal(t, domain.GenesisHash, report.Tail)
}

func TestLedgerUseCase_VerifyChainDetectsTampering(t *testing.T) {
	l := newTestLedger()
	postMany(t, l, 5)

	target := l.store.Entries()[7]
	l.store.TamperEntry(target.ID, func(e *domain.LedgerEntry) {
		e.Amount = e.Amount.Add(decimal.NewFromInt(1000))
	})

	report, err := l.ledger.VerifyChain(context.Background())
	require.NoError(t, err)

	assert.False(t, report.Valid)
	assert.Equal(t, domain.ChainReasonHashMismatch, report.Reason)

	var brokenEntry int64
	for _, link := range l.store.Links() {
		if link.ID == report.BrokenLinkID {
			brokenEntry = link.LedgerEntryID
		}
	}
	assert.Equal(t, target.ID, brokenEntry)
	assert.Equal(t, int64(7), report.Links)
}

func TestLedgerUseCase_VerifyChainReportsOrphans(t *testing.T) {
	l := newTestLedger()
	postMany(t, l, 2)

	l.store.InjectEntry(&domain.LedgerEntry{
		TxnID:      "txn_unlinked",
		LineNo:     1,
		AccountKey: "a",
		Direction:  domain.DirectionDebit,
		Amount:     decimal.NewFromInt(1),
	})

	report, err := l.ledger.VerifyChain(context.Background())
	require.NoError(t, err)
	assert.False(t, report.Valid)
	assert.Equal(t, domain.ChainReasonOrphanEntry, report.Reason)
	assert.Equal(t, int64(1), report.OrphanCount)
	assert.Equal(t, int64(6), report.Links)
}

func TestLedgerUseCase_RolledBackPostingLeavesNoOrphans(t *testing.T) {
	l := newTestLedger()
	postMany(t, l, 2)

	l.store.Fail = func(op string) error {
		if op == "chain.append" {
			return errors.New("boom")
		}
		return nil
	}

	_, err := l.txns.CreateTxn(context.Background(), usecase.CreateTxnInput{
		Lines: []domain.Line{debit("a", "1"), credit("b", "1")},
	})
	require.Error(t, err)

	report, err := l.ledger.VerifyChain(context.Background())
	require.NoError(t, err)
	assert.True(t, report.Valid, "a rolled back posting must not leave orphans")
}

func TestLedgerUseCase_CheckConsistency(t *testing.T) {
	l := newTestLedger()
	postMany(t, l, 4)

	report, err := l.ledger.CheckConsistency(context.Background())
	require.NoError(t, err)
	assert.True(t, report.Consistent)
	assert.True(t, report.TotalDebits.Equal(decimal.NewFromInt(12)))
	assert.True(t, report.Difference.IsZero())
}

func TestLedgerUseCase_ReconcileBalances(t *testing.T) {
	l := newTestLedger()
	postMany(t, l, 3)
	ctx := context.Background()

	report, err := l.ledger.ReconcileBalances(ctx)
	require.NoError(t, err)
	assert.True(t, report.Reconciled())
	assert.Equal(t, 3, report.Accounts)

	l.store.SetCachedBalance("revenue", decimal.NewFromInt(42))
	l.store.SetCachedBalance("ghost", decimal.NewFromInt(1))

	report, err = l.ledger.ReconcileBalances(ctx)
	require.NoError(t, err)
	require.Len(t, report.Discrepancies, 2)

	ghost := report.Discrepancies[0]
	assert.Equal(t, "ghost", ghost.AccountKey)
	assert.True(t, ghost.Derived.IsZero())

	revenue := report.Discrepancies[1]
	assert.Equal(t, "revenue", revenue.AccountKey)
	assert.True(t, revenue.Derived.Equal(decimal.NewFromInt(-3)), "derived %s", revenue.Derived)
	assert.True(t, revenue.Difference.Equal(decimal.NewFromInt(45)), "difference %s", revenue.Difference)
	assert.False(t, revenue.Missing)

	cached, err := l.balances.GetBalance(ctx, "revenue")
	require.NoError(t, err)
	assert.True(t, cached.Equal(decimal.NewFromInt(42)), "reconcile must not modify the cache")
}

func TestLedgerUseCase_ReconcileFlagsOverdrawnTreasury(t *testing.T) {
	l := newTestLedger()
	ctx := context.Background()

	treasury := credit("treasury", "10")
	treasury.AccountType = domain.AccountTypeTreasury
	user := debit("user:0xabc", "10")
	user.AccountType = domain.AccountTypeUser

	_, err := l.txns.CreateTxn(ctx, usecase.CreateTxnInput{
		EventType: domain.EventTypeReward,
		Lines:     []domain.Line{treasury, user},
	})
	require.NoError(t, err)

	refund := credit("user:0xabc", "25")
	_, err = l.txns.CreateTxn(ctx, usecase.CreateTxnInput{
		EventType: domain.EventTypeReward,
		Lines:     []domain.Line{debit("revenue", "25"), refund},
	})
	require.NoError(t, err)

	report, err := l.ledger.ReconcileBalances(ctx)
	require.NoError(t, err)

	assert.Empty(t, report.Discrepancies)
	assert.False(t, report.Reconciled())
	require.Len(t, report.Overdrafts, 1, "user and untyped accounts may run negative")

	over := report.Overdrafts[0]
	assert.Equal(t, "treasury", over.AccountKey)
	assert.Equal(t, domain.AccountTypeTreasury, over.AccountType)
	assert.True(t, over.Balance.Equal(decimal.NewFromInt(-10)), "balance %s", over.Balance)
}

func TestLedgerUseCase_ReconcileToleratesRoundingOnPools(t *testing.T) {
	l := newTestLedger()
	ctx := context.Background()

	pool := credit("pool:rewards", "0.00005")
	pool.AccountType = domain.AccountTypePool

	_, err := l.txns.CreateTxn(ctx, usecase.CreateTxnInput{
		EventType: domain.EventTypeReward,
		Lines:     []domain.Line{pool, debit("user:0xabc", "0.00005")},
	})
	require.NoError(t, err)

	report, err := l.ledger.ReconcileBalances(ctx)
	require.NoError(t, err)
	assert.Empty(t, report.Overdrafts)
	assert.True(t, report.Reconciled())
}
