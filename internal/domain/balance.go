package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Balances are debit-minus-credit: treasury and other asset-style accounts
// trend positive, revenue and user liability accounts trend negative. The
// convention is fixed here rather than chosen per account or per call.
const BalanceConvention = "debit-minus-credit"

// AccountBalance is the cached balance of an account. It is derived from
// ledger entries and is never the source of truth.
type AccountBalance struct {
	UpdatedAt  time.Time
	AccountKey string
	Balance    decimal.Decimal
}

// SignedAmount returns amount with the sign the convention gives direction.
func SignedAmount(direction Direction, amount decimal.Decimal) decimal.Decimal {
	if direction == DirectionCredit {
		return amount.Neg()
	}

	return amount
}

// DeriveBalance applies the convention to summed debits and credits.
func DeriveBalance(debits, credits decimal.Decimal) decimal.Decimal {
	return debits.Sub(credits)
}

// BalanceDiscrepancy describes a cached balance that differs from the value
// derived from entries.
type BalanceDiscrepancy struct {
	AccountKey string
	Cached     decimal.Decimal
	Derived    decimal.Decimal
	Difference decimal.Decimal
	Missing    bool
}

// OverdraftTolerance absorbs rounding before a debit-normal account counts
// as overdrawn.
var OverdraftTolerance = decimal.New(-1, -4)

// DebitNormal reports whether accounts of accountType must never go below
// zero. User and revenue accounts may, since they trend negative.
func DebitNormal(accountType string) bool {
	return accountType == AccountTypeTreasury || accountType == AccountTypePool
}

// Overdraft is a debit-normal account whose derived balance is negative.
type Overdraft struct {
	AccountKey  string
	AccountType string
	Balance     decimal.Decimal
}
