package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satelink/econledger/internal/domain"
	"github.com/satelink/econledger/internal/usecase"
)

type foreignTx struct{}

func (foreignTx) Commit(context.Context) error   { return nil }
func (foreignTx) Rollback(context.Context) error { return nil }

func beginTx(t *testing.T, pool pgxmock.PgxPoolIface) usecase.Transaction {
	t.Helper()

	pool.ExpectBeginTx(readCommitted)

	tx, err := newTxManagerWithPool(pool).Begin(context.Background())
	require.NoError(t, err)

	return tx
}

func TestChainRepository_LockUsesAdvisoryLock(t *testing.T) {
	pool := newMockPool(t)
	tx := beginTx(t, pool)

	pool.ExpectExec("pg_advisory_xact_lock").
		WithArgs(int64(42)).
		WillReturnResult(pgxmock.NewResult("SELECT", 1))

	repo := NewChainRepository(pool, 42)
	require.NoError(t, repo.Lock(context.Background(), tx))

	assertExpectations(t, pool)
}

func TestChainRepository_TailOnEmptyChain(t *testing.T) {
	pool := newMockPool(t)
	tx := beginTx(t, pool)

	pool.ExpectQuery("SELECT hash_current FROM economic_ledger_chain").
		WillReturnRows(pgxmock.NewRows([]string{"hash_current"}))

	repo := NewChainRepository(pool, DefaultChainLockID)

	tail, err := repo.Tail(context.Background(), tx)
	require.NoError(t, err)
	assert.Equal(t, domain.GenesisHash, tail)

	assertExpectations(t, pool)
}

func TestChainRepository_AppendSetsID(t *testing.T) {
	pool := newMockPool(t)
	tx := beginTx(t, pool)

	link := &domain.ChainLink{
		LedgerEntryID: 7,
		TxnID:         "txn_1",
		HashPrev:      domain.GenesisHash,
		HashCurrent:   "abc",
		CreatedAt:     time.UnixMilli(1700000000000),
	}

	pool.ExpectQuery("INSERT INTO economic_ledger_chain").
		WithArgs(int64(7), "txn_1", domain.GenesisHash, "abc", pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(11)))

	repo := NewChainRepository(pool, DefaultChainLockID)
	require.NoError(t, repo.Append(context.Background(), tx, link))
	assert.Equal(t, int64(11), link.ID)

	assertExpectations(t, pool)
}

func TestChainRepository_RejectsForeignTransaction(t *testing.T) {
	repo := NewChainRepository(newMockPool(t), DefaultChainLockID)

	err := repo.Lock(context.Background(), foreignTx{})
	if !errors.Is(err, errForeignTx) {
		t.Fatalf("expected errForeignTx, got %v", err)
	}
}

func TestChainRepository_WalkJoinsEntries(t *testing.T) {
	pool := newMockPool(t)

	created := pgtype.Timestamptz{Time: time.UnixMilli(1700000000000).UTC(), Valid: true}
	amount := decimalToNumeric(decimal.RequireFromString("12.5"))

	cols := []string{
		"id", "ledger_entry_id", "txn_id", "hash_prev", "hash_current", "created_at",
		"entry_id", "entry_txn_id", "line_no", "account_key", "direction", "amount_usdt",
		"memo", "event_type", "reference_type", "reference_id", "created_by", "entry_created_at",
	}

	pool.ExpectQuery("FROM economic_ledger_chain c").
		WithArgs(int64(0), int32(100)).
		WillReturnRows(pgxmock.NewRows(cols).
			AddRow(
				int64(1), int64(1), "txn_1", domain.GenesisHash, "h1", created,
				pgtype.Int8{Int64: 1, Valid: true}, pgtype.Text{String: "txn_1", Valid: true},
				pgtype.Int4{Int32: 1, Valid: true}, pgtype.Text{String: "treasury", Valid: true},
				pgtype.Text{String: "debit", Valid: true}, amount,
				pgtype.Text{Valid: true}, pgtype.Text{String: "revenue", Valid: true},
				pgtype.Text{Valid: true}, pgtype.Text{Valid: true}, pgtype.Text{Valid: true}, created,
			).
			AddRow(
				int64(2), int64(9), "txn_1", "h1", "h2", created,
				pgtype.Int8{}, pgtype.Text{}, pgtype.Int4{}, pgtype.Text{}, pgtype.Text{},
				pgtype.Numeric{}, pgtype.Text{}, pgtype.Text{}, pgtype.Text{}, pgtype.Text{},
				pgtype.Text{}, pgtype.Timestamptz{},
			))

	repo := NewChainRepository(pool, DefaultChainLockID)

	records, err := repo.Walk(context.Background(), 0, 100)
	require.NoError(t, err)
	require.Len(t, records, 2)

	first := records[0]
	require.NotNil(t, first.Entry)
	assert.Equal(t, "treasury", first.Entry.AccountKey)
	assert.Equal(t, domain.DirectionDebit, first.Entry.Direction)
	assert.True(t, first.Entry.Amount.Equal(decimal.RequireFromString("12.5")))

	assert.Nil(t, records[1].Entry, "a link without entry must surface as missing")

	assertExpectations(t, pool)
}

func TestEntryRepository_CreateSetsID(t *testing.T) {
	pool := newMockPool(t)
	tx := beginTx(t, pool)

	entry := &domain.LedgerEntry{
		TxnID:      "txn_1",
		LineNo:     1,
		AccountKey: "treasury",
		Direction:  domain.DirectionDebit,
		Amount:     decimal.NewFromInt(100),
		CreatedAt:  time.UnixMilli(1700000000000),
	}

	pool.ExpectQuery("INSERT INTO economic_ledger_entries").
		WithArgs("txn_1", int32(1), "treasury", "debit", pgxmock.AnyArg(),
			"", "", "", "", "", pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(5)))

	repo := NewEntryRepository(pool)
	require.NoError(t, repo.Create(context.Background(), tx, entry))
	assert.Equal(t, int64(5), entry.ID)

	assertExpectations(t, pool)
}

func TestEntryRepository_SumByAccount(t *testing.T) {
	pool := newMockPool(t)
	tx := beginTx(t, pool)

	pool.ExpectQuery("FROM economic_ledger_entries").
		WithArgs("treasury").
		WillReturnRows(pgxmock.NewRows([]string{"debits", "credits"}).
			AddRow(decimalToNumeric(decimal.NewFromInt(150)), decimalToNumeric(decimal.NewFromInt(40))))

	repo := NewEntryRepository(pool)

	debits, credits, err := repo.SumByAccount(context.Background(), tx, "treasury")
	require.NoError(t, err)
	assert.True(t, debits.Equal(decimal.NewFromInt(150)))
	assert.True(t, credits.Equal(decimal.NewFromInt(40)))

	assertExpectations(t, pool)
}

func TestAccountRepository_GetByKeyNotFound(t *testing.T) {
	pool := newMockPool(t)

	pool.ExpectQuery("FROM economic_accounts WHERE account_key").
		WithArgs("missing").
		WillReturnRows(pgxmock.NewRows([]string{"account_key", "account_type", "label", "created_at"}))

	repo := NewAccountRepository(pool)

	_, err := repo.GetByKey(context.Background(), "missing")
	if !errors.Is(err, domain.ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}

func TestAccountRepository_CreateIgnoresConflict(t *testing.T) {
	pool := newMockPool(t)

	pool.ExpectExec("ON CONFLICT \\(account_key\\) DO NOTHING").
		WithArgs("treasury", "treasury", "Treasury", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 0))

	repo := NewAccountRepository(pool)

	account := domain.NewAccount("treasury", domain.AccountTypeTreasury, "Treasury", time.Now())
	require.NoError(t, repo.Create(context.Background(), account))

	assertExpectations(t, pool)
}

func TestBalanceRepository_GetNotFound(t *testing.T) {
	pool := newMockPool(t)

	pool.ExpectQuery("FROM economic_account_balances WHERE account_key").
		WithArgs("nobody").
		WillReturnRows(pgxmock.NewRows([]string{"account_key", "balance_usdt", "updated_at"}))

	repo := NewBalanceRepository(pool)

	_, err := repo.Get(context.Background(), "nobody")
	if !errors.Is(err, domain.ErrBalanceNotFound) {
		t.Fatalf("expected ErrBalanceNotFound, got %v", err)
	}
}

func TestLedgerRepository_DerivedBalances(t *testing.T) {
	pool := newMockPool(t)

	pool.ExpectQuery("GROUP BY account_key").
		WillReturnRows(pgxmock.NewRows([]string{"account_key", "balance"}).
			AddRow("revenue", decimalToNumeric(decimal.NewFromInt(-30))).
			AddRow("treasury", decimalToNumeric(decimal.NewFromInt(30))))

	repo := NewLedgerRepository(pool)

	balances, err := repo.DerivedBalances(context.Background())
	require.NoError(t, err)
	assert.True(t, balances["revenue"].Equal(decimal.NewFromInt(-30)))
	assert.True(t, balances["treasury"].Equal(decimal.NewFromInt(30)))

	assertExpectations(t, pool)
}

func TestAlertRepository_CreateAssignsID(t *testing.T) {
	pool := newMockPool(t)

	pool.ExpectExec("INSERT INTO security_alerts").
		WithArgs(pgxmock.AnyArg(), "high", "auth", "system", "abcd", "title",
			[]byte(`{"failures":10}`), "open", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	repo := NewAlertRepository(pool)

	alert := &domain.Alert{
		Severity:   domain.AlertSeverityHigh,
		Category:   domain.AlertCategoryAuth,
		EntityType: domain.AlertEntitySystem,
		EntityID:   "abcd",
		Title:      "title",
		Evidence:   map[string]any{"failures": 10},
		Status:     domain.AlertStatusOpen,
	}

	require.NoError(t, repo.Create(context.Background(), alert))
	assert.Len(t, alert.ID, 36)

	assertExpectations(t, pool)
}

func TestAlertRepository_ListBuildsFilter(t *testing.T) {
	pool := newMockPool(t)

	pool.ExpectQuery("AND category = \\$1 AND entity_id = \\$2 ORDER BY created_at DESC LIMIT \\$3").
		WithArgs("infra", "node-1", 10).
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "severity", "category", "entity_type", "entity_id", "title", "evidence", "status", "created_at",
		}).AddRow(
			"5f0c2a4e-0000-4000-8000-000000000000", "high", "infra", "node", "node-1",
			"High failure rate for node: node-1", []byte(`{"failures":15}`), "open", time.Now(),
		))

	repo := NewAlertRepository(pool)

	alerts, err := repo.List(context.Background(), domain.AlertFilter{
		Category: domain.AlertCategoryInfra,
		EntityID: "node-1",
		Limit:    10,
	})
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, domain.AlertCategoryInfra, alerts[0].Category)
	assert.EqualValues(t, 15, alerts[0].Evidence["failures"])

	assertExpectations(t, pool)
}

func TestNumericRoundTrip(t *testing.T) {
	for _, s := range []string{"0", "100", "-100", "0.000001", "123456789.123456789"} {
		d := decimal.RequireFromString(s)
		if got := numericToDecimal(decimalToNumeric(d)); !got.Equal(d) {
			t.Fatalf("round trip of %s gave %s", s, got)
		}
	}

	if !numericToDecimal(pgtype.Numeric{}).IsZero() {
		t.Fatal("expected NULL numeric to be zero")
	}
}
