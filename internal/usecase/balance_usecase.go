package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/satelink/econledger/internal/domain"
)

// BalanceUseCase maintains the derived balance cache.
type BalanceUseCase struct {
	entryRepo   EntryRepository
	balanceRepo BalanceRepository
	now         func() time.Time
}

// NewBalanceUseCase creates a new BalanceUseCase.
func NewBalanceUseCase(entryRepo EntryRepository, balanceRepo BalanceRepository) *BalanceUseCase {
	return &BalanceUseCase{
		entryRepo:   entryRepo,
		balanceRepo: balanceRepo,
		now:         time.Now,
	}
}

// Recompute derives the balance of accountKey from all of its entries and
// stores it. It reads through tx so the entries just written are included.
func (uc *BalanceUseCase) Recompute(ctx context.Context, tx Transaction, accountKey string) (decimal.Decimal, error) {
	debits, credits, err := uc.entryRepo.SumByAccount(ctx, tx, accountKey)
	if err != nil {
		return decimal.Zero, err
	}

	balance := domain.DeriveBalance(debits, credits)

	err = uc.balanceRepo.Upsert(ctx, tx, &domain.AccountBalance{
		AccountKey: accountKey,
		Balance:    balance,
		UpdatedAt:  uc.now().UTC().Truncate(time.Millisecond),
	})
	if err != nil {
		return decimal.Zero, err
	}

	return balance, nil
}

// GetBalance returns the cached balance, or zero when the account has none.
func (uc *BalanceUseCase) GetBalance(ctx context.Context, accountKey string) (decimal.Decimal, error) {
	b, err := uc.balanceRepo.Get(ctx, accountKey)
	if errors.Is(err, domain.ErrBalanceNotFound) {
		return decimal.Zero, nil
	}

	if err != nil {
		return decimal.Zero, err
	}

	return b.Balance, nil
}

// ListBalancesInput represents input for listing cached balances.
type ListBalancesInput struct {
	Limit  int
	Offset int
}

// ListBalances lists cached balances with pagination.
func (uc *BalanceUseCase) ListBalances(ctx context.Context, input ListBalancesInput) ([]*domain.AccountBalance, error) {
	limit, offset := domain.ValidatePagination(input.Limit, input.Offset)
	return uc.balanceRepo.List(ctx, limit, offset)
}
