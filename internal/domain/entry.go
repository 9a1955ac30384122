package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Direction is the side of a ledger line.
type Direction string

const (
	DirectionDebit  Direction = "debit"
	DirectionCredit Direction = "credit"
)

// Valid reports whether d is debit or credit.
func (d Direction) Valid() bool {
	return d == DirectionDebit || d == DirectionCredit
}

// ParseDirection converts s into a Direction.
func ParseDirection(s string) (Direction, error) {
	d := Direction(s)
	if !d.Valid() {
		return "", &ValidationError{Rule: ErrBadDirection, Detail: s}
	}

	return d, nil
}

// Line is one debit or credit line of a transaction request. AccountType and
// Label are only used when the account does not exist yet.
type Line struct {
	AccountKey  string
	Direction   Direction
	Amount      decimal.Decimal
	AccountType string
	Label       string
}

// LedgerEntry is a committed, immutable debit or credit line.
type LedgerEntry struct {
	CreatedAt     time.Time
	TxnID         string
	AccountKey    string
	Direction     Direction
	Memo          string
	EventType     string
	ReferenceType string
	ReferenceID   string
	CreatedBy     string
	Amount        decimal.Decimal
	ID            int64
	LineNo        int
}

// Signed returns the entry amount under the balance convention.
func (e *LedgerEntry) Signed() decimal.Decimal {
	return SignedAmount(e.Direction, e.Amount)
}

// Event types posted by the operations engine.
const (
	EventTypeRevenue    = "revenue"
	EventTypeReward     = "reward"
	EventTypePayout     = "payout"
	EventTypeAdjustment = "adjustment"
)

// TxnIDPrefix prefixes every generated transaction id.
const TxnIDPrefix = "txn_"

// Txn is a committed double-entry transaction.
type Txn struct {
	CreatedAt time.Time
	ID        string
	Entries   []*LedgerEntry
}
