package domain

import (
	"fmt"
	"strings"
	"time"
)

// Account types used by the operations engine. The registry stores the type as
// a free-form tag, so callers may register others.
const (
	AccountTypeTreasury = "treasury"
	AccountTypeUser     = "user"
	AccountTypeRevenue  = "revenue"
	AccountTypePool     = "pool"
	DefaultAccountType  = "general"
)

// MaxAccountKeyLength bounds caller-chosen account keys.
const MaxAccountKeyLength = 255

// Account is a ledger account identified by a caller-chosen key.
type Account struct {
	CreatedAt time.Time
	Key       string
	Type      string
	Label     string
}

// NewAccount builds an account, falling back to the default type and using the
// key as label when either is empty.
func NewAccount(key, accountType, label string, createdAt time.Time) *Account {
	if strings.TrimSpace(accountType) == "" {
		accountType = DefaultAccountType
	}

	if strings.TrimSpace(label) == "" {
		label = key
	}

	return &Account{
		Key:       key,
		Type:      accountType,
		Label:     label,
		CreatedAt: createdAt,
	}
}

// ValidateAccountKey validates an account key.
func ValidateAccountKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return &ValidationError{Rule: ErrMissingAccountKey}
	}

	if len(key) > MaxAccountKeyLength {
		return &ValidationError{
			Rule:   ErrAccountKeyTooLong,
			Detail: fmt.Sprintf("key exceeds %d characters", MaxAccountKeyLength),
		}
	}

	return nil
}
