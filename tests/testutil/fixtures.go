package testutil

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/satelink/econledger/internal/adapter/repository/postgres"
	"github.com/satelink/econledger/internal/domain"
	infrapg "github.com/satelink/econledger/internal/infrastructure/postgres"
	"github.com/satelink/econledger/internal/usecase"
)

// chainLockID keeps test runs off the production advisory lock key.
const chainLockID int64 = 0x6c656467657274

// TestDB provides isolated test database connections.
type TestDB struct {
	Pool *pgxpool.Pool
	t    *testing.T
}

// NewTestDB connects to DATABASE_URL and applies migrations. The test is
// skipped when DATABASE_URL is unset or -short is given.
func NewTestDB(t *testing.T) *TestDB {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping integration test")
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Skip("DATABASE_URL not set")
	}

	if err := infrapg.RunMigrations(dbURL, migrationsPath(), zerolog.Nop()); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := infrapg.NewPoolWithConfig(ctx, infrapg.PoolConfig{DatabaseURL: dbURL, MaxConns: 32})
	if err != nil {
		t.Fatalf("failed to connect to test database: %v", err)
	}

	db := &TestDB{Pool: pool, t: t}
	t.Cleanup(pool.Close)

	return db
}

// migrationsPath finds the migrations directory from the repo root or from
// a package two levels down.
func migrationsPath() string {
	for _, p := range []string{"migrations", "../../migrations", "../../../migrations"} {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return "migrations"
}

// TruncateAll removes all data from tables.
func (db *TestDB) TruncateAll(ctx context.Context) {
	db.t.Helper()

	_, err := db.Pool.Exec(ctx, `
		TRUNCATE TABLE
			economic_ledger_chain,
			economic_account_balances,
			economic_ledger_entries,
			economic_accounts,
			security_alerts
		RESTART IDENTITY CASCADE
	`)
	if err != nil {
		db.t.Fatalf("failed to truncate tables: %v", err)
	}
}

// Tamper rewrites an entry amount behind the append-only trigger.
func (db *TestDB) Tamper(ctx context.Context, entryID int64, amount decimal.Decimal) {
	db.t.Helper()

	if _, err := db.Pool.Exec(ctx, `ALTER TABLE economic_ledger_entries DISABLE TRIGGER economic_ledger_entries_append_only`); err != nil {
		db.t.Fatalf("failed to disable trigger: %v", err)
	}
	defer func() {
		if _, err := db.Pool.Exec(ctx, `ALTER TABLE economic_ledger_entries ENABLE TRIGGER economic_ledger_entries_append_only`); err != nil {
			db.t.Fatalf("failed to enable trigger: %v", err)
		}
	}()

	if _, err := db.Pool.Exec(ctx, `UPDATE economic_ledger_entries SET amount_usdt = $1 WHERE id = $2`, amount, entryID); err != nil {
		db.t.Fatalf("failed to tamper entry %d: %v", entryID, err)
	}
}

// Ledger is the set of use cases wired against a real database.
type Ledger struct {
	Accounts *usecase.AccountUseCase
	Balances *usecase.BalanceUseCase
	Txns     *usecase.TxnUseCase
	Checks   *usecase.LedgerUseCase
	Alerts   *usecase.AlertUseCase
}

// NewLedger wires the use cases the way cmd/server does.
func (db *TestDB) NewLedger(alertCfg usecase.AlertConfig) *Ledger {
	pool := db.Pool

	accountRepo := postgres.NewAccountRepository(pool)
	entryRepo := postgres.NewEntryRepository(pool)
	chainRepo := postgres.NewChainRepository(pool, chainLockID)
	balanceRepo := postgres.NewBalanceRepository(pool)

	balances := usecase.NewBalanceUseCase(entryRepo, balanceRepo)

	return &Ledger{
		Accounts: usecase.NewAccountUseCase(accountRepo),
		Balances: balances,
		Txns: usecase.NewTxnUseCase(
			postgres.NewTxManager(pool), accountRepo, entryRepo,
			usecase.NewHashChain(chainRepo), balances,
			postgres.NewTxnIDGenerator(),
			usecase.WithRetrier(postgres.NewRetrier(zerolog.Nop())),
		),
		Checks: usecase.NewLedgerUseCase(postgres.NewLedgerRepository(pool), accountRepo, chainRepo, balanceRepo, zerolog.Nop()),
		Alerts: usecase.NewAlertUseCase(postgres.NewAlertRepository(pool), alertCfg),
	}
}

// Transfer builds a two-line transaction moving amount from debit to credit.
func Transfer(debit, credit string, amount decimal.Decimal) usecase.CreateTxnInput {
	return usecase.CreateTxnInput{
		EventType: "transfer",
		Lines: []domain.Line{
			{AccountKey: debit, Direction: domain.DirectionDebit, Amount: amount},
			{AccountKey: credit, Direction: domain.DirectionCredit, Amount: amount},
		},
	}
}
