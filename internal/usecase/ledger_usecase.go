package usecase

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/satelink/econledger/internal/domain"
)

// LedgerUseCase handles ledger-wide verification.
type LedgerUseCase struct {
	ledgerRepo  LedgerRepository
	accountRepo AccountRepository
	chainRepo   ChainRepository
	balanceRepo BalanceRepository
	logger      zerolog.Logger
	now         func() time.Time
}

// NewLedgerUseCase creates a new LedgerUseCase.
func NewLedgerUseCase(
	ledgerRepo LedgerRepository,
	accountRepo AccountRepository,
	chainRepo ChainRepository,
	balanceRepo BalanceRepository,
	logger zerolog.Logger,
) *LedgerUseCase {
	return &LedgerUseCase{
		ledgerRepo:  ledgerRepo,
		accountRepo: accountRepo,
		chainRepo:   chainRepo,
		balanceRepo: balanceRepo,
		logger:      logger,
		now:         time.Now,
	}
}

// VerifyChain walks every link from genesis, recomputing each hash, and
// reports the first link that does not verify. Entries with no link are
// reported as orphans.
func (uc *LedgerUseCase) VerifyChain(ctx context.Context) (*domain.ChainReport, error) {
	report := &domain.ChainReport{Tail: domain.GenesisHash, Valid: true}

	var afterID int64

walk:
	for {
		records, err := uc.chainRepo.Walk(ctx, afterID, chainWalkPageSize)
		if err != nil {
			return nil, err
		}

		for _, rec := range records {
			if err := domain.VerifyLink(report.Tail, rec); err != nil {
				report.Valid = false
				report.BrokenLinkID = rec.Link.ID
				report.Reason = chainReason(err)

				uc.logger.Warn().Err(err).Int64("link_id", rec.Link.ID).Msg("hash chain verification failed")

				break walk
			}

			report.Tail = rec.Link.HashCurrent
			report.Links++
			afterID = rec.Link.ID
		}

		if len(records) < chainWalkPageSize {
			break
		}
	}

	orphans, err := uc.chainRepo.CountOrphanEntries(ctx)
	if err != nil {
		return nil, err
	}

	report.OrphanCount = orphans
	if orphans > 0 && report.Valid {
		report.Valid = false
		report.Reason = domain.ChainReasonOrphanEntry
	}

	report.CheckedAt = uc.now().UTC()

	return report, nil
}

func chainReason(err error) string {
	if errors.Is(err, domain.ErrChainBroken) {
		return domain.ChainReasonBrokenLink
	}

	return domain.ChainReasonHashMismatch
}

// ConsistencyReport compares the ledger-wide debit and credit totals.
type ConsistencyReport struct {
	CheckedAt    time.Time
	TotalDebits  decimal.Decimal
	TotalCredits decimal.Decimal
	Difference   decimal.Decimal
	Consistent   bool
}

// CheckConsistency verifies that total debits equal total credits.
func (uc *LedgerUseCase) CheckConsistency(ctx context.Context) (*ConsistencyReport, error) {
	debits, credits, err := uc.ledgerRepo.CheckConsistency(ctx)
	if err != nil {
		return nil, err
	}

	diff := debits.Sub(credits)

	return &ConsistencyReport{
		CheckedAt:    uc.now().UTC(),
		TotalDebits:  debits,
		TotalCredits: credits,
		Difference:   diff,
		Consistent:   !diff.Abs().GreaterThan(domain.BalanceTolerance),
	}, nil
}

// ReconciliationReport lists cached balances that differ from the entries
// and treasury or pool accounts the entries leave overdrawn.
type ReconciliationReport struct {
	CheckedAt     time.Time
	Discrepancies []domain.BalanceDiscrepancy
	Overdrafts    []domain.Overdraft
	Accounts      int
}

// Reconciled reports whether every cached balance matched and no
// debit-normal account is overdrawn.
func (r *ReconciliationReport) Reconciled() bool {
	return len(r.Discrepancies) == 0 && len(r.Overdrafts) == 0
}

// ReconcileBalances derives every balance from the entries and compares it
// with the cache. It does not modify the cache.
func (uc *LedgerUseCase) ReconcileBalances(ctx context.Context) (*ReconciliationReport, error) {
	derived, err := uc.ledgerRepo.DerivedBalances(ctx)
	if err != nil {
		return nil, err
	}

	cached := make(map[string]decimal.Decimal)

	for offset := 0; ; offset += reconcilePageSize {
		page, err := uc.balanceRepo.List(ctx, reconcilePageSize, offset)
		if err != nil {
			return nil, err
		}

		for _, b := range page {
			cached[b.AccountKey] = b.Balance
		}

		if len(page) < reconcilePageSize {
			break
		}
	}

	keys := make(map[string]struct{}, len(derived)+len(cached))
	for k := range derived {
		keys[k] = struct{}{}
	}
	for k := range cached {
		keys[k] = struct{}{}
	}

	report := &ReconciliationReport{
		CheckedAt: uc.now().UTC(),
		Accounts:  len(keys),
	}

	for key := range keys {
		want := derived[key]
		got, ok := cached[key]

		if ok && got.Equal(want) {
			continue
		}

		if !ok && want.IsZero() {
			continue
		}

		report.Discrepancies = append(report.Discrepancies, domain.BalanceDiscrepancy{
			AccountKey: key,
			Cached:     got,
			Derived:    want,
			Difference: got.Sub(want),
			Missing:    !ok,
		})
	}

	sort.Slice(report.Discrepancies, func(i, j int) bool {
		return report.Discrepancies[i].AccountKey < report.Discrepancies[j].AccountKey
	})

	report.Overdrafts, err = uc.overdrafts(ctx, derived)
	if err != nil {
		return nil, err
	}

	if len(report.Discrepancies) > 0 {
		uc.logger.Warn().Int("discrepancies", len(report.Discrepancies)).Msg("balance cache out of sync with entries")
	}
	if len(report.Overdrafts) > 0 {
		uc.logger.Warn().Int("overdrafts", len(report.Overdrafts)).Msg("debit-normal accounts overdrawn")
	}

	return report, nil
}

// overdrafts checks derived balances, not the cache, so a drifted cache
// cannot hide an overdraft.
func (uc *LedgerUseCase) overdrafts(ctx context.Context, derived map[string]decimal.Decimal) ([]domain.Overdraft, error) {
	var found []domain.Overdraft

	for offset := 0; ; offset += reconcilePageSize {
		page, err := uc.accountRepo.List(ctx, reconcilePageSize, offset)
		if err != nil {
			return nil, err
		}

		for _, a := range page {
			balance := derived[a.Key]
			if domain.DebitNormal(a.Type) && balance.LessThan(domain.OverdraftTolerance) {
				found = append(found, domain.Overdraft{AccountKey: a.Key, AccountType: a.Type, Balance: balance})
			}
		}

		if len(page) < reconcilePageSize {
			break
		}
	}

	sort.Slice(found, func(i, j int) bool { return found[i].AccountKey < found[j].AccountKey })

	return found, nil
}
