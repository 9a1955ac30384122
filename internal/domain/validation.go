package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// MinTxnLines is the smallest number of lines a transaction may carry.
const MinTxnLines = 2

// BalanceTolerance is the largest debit/credit difference accepted.
var BalanceTolerance = decimal.New(1, -6)

// ValidateLines checks a transaction's lines before anything is written.
func ValidateLines(lines []Line) error {
	if len(lines) < MinTxnLines {
		return &ValidationError{
			Rule:   ErrTooFewLines,
			Detail: fmt.Sprintf("got %d, need at least %d", len(lines), MinTxnLines),
		}
	}

	debits := decimal.Zero
	credits := decimal.Zero

	for i, line := range lines {
		if err := ValidateAccountKey(line.AccountKey); err != nil {
			return err
		}

		if line.Amount.IsNegative() {
			return &ValidationError{
				Rule:   ErrNegativeAmount,
				Detail: fmt.Sprintf("line %d amount %s", i+1, line.Amount),
			}
		}

		switch line.Direction {
		case DirectionDebit:
			debits = debits.Add(line.Amount)
		case DirectionCredit:
			credits = credits.Add(line.Amount)
		default:
			return &ValidationError{
				Rule:   ErrBadDirection,
				Detail: fmt.Sprintf("line %d direction %q", i+1, line.Direction),
			}
		}
	}

	if debits.Sub(credits).Abs().GreaterThan(BalanceTolerance) {
		return &ValidationError{
			Rule:   ErrUnbalanced,
			Detail: fmt.Sprintf("debit %s != credit %s", debits, credits),
		}
	}

	return nil
}

// ValidatePagination validates and limits pagination parameters.
func ValidatePagination(limit, offset int) (int, int) {
	const (
		maxPageSize     = 1000
		defaultPageSize = 50
	)

	if limit <= 0 {
		limit = defaultPageSize
	}

	if limit > maxPageSize {
		limit = maxPageSize
	}

	if offset < 0 {
		offset = 0
	}

	return limit, offset
}
