package domain

import (
	"errors"
	"fmt"
)

var (
	ErrAccountNotFound = errors.New("account not found")
	ErrBalanceNotFound = errors.New("balance not found")
	ErrTxnNotFound     = errors.New("transaction not found")

	// Validation rules for transaction lines.
	ErrTooFewLines       = errors.New("too few lines")
	ErrNegativeAmount    = errors.New("negative amount")
	ErrBadDirection      = errors.New("bad direction")
	ErrUnbalanced        = errors.New("unbalanced")
	ErrMissingAccountKey = errors.New("missing account key")
	ErrAccountKeyTooLong = errors.New("account key too long")

	// Auth errors
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
)

// ValidationError reports input that violates a ledger rule. It is always
// returned before anything is written.
type ValidationError struct {
	Rule   error
	Detail string
}

func (e *ValidationError) Error() string {
	if e.Detail == "" {
		return e.Rule.Error()
	}

	return e.Rule.Error() + ": " + e.Detail
}

func (e *ValidationError) Unwrap() error {
	return e.Rule
}

// StorageError reports that the store could not complete an atomic unit. The
// unit was rolled back and the call may be retried.
type StorageError struct {
	Err error
	Op  string
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// NewStorageError wraps err unless it is nil or already a StorageError.
func NewStorageError(op string, err error) error {
	if err == nil {
		return nil
	}

	var se *StorageError
	if errors.As(err, &se) {
		return err
	}

	return &StorageError{Op: op, Err: err}
}

// IsValidationError reports whether err is a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsStorageError reports whether err is a StorageError.
func IsStorageError(err error) bool {
	var se *StorageError
	return errors.As(err, &se)
}
