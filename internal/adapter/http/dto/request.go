package dto

import (
	"github.com/shopspring/decimal"

	"github.com/satelink/econledger/internal/domain"
	"github.com/satelink/econledger/internal/usecase"
)

// EnsureAccountRequest registers an account if it does not exist yet.
type EnsureAccountRequest struct {
	Key   string `json:"account_key"`
	Type  string `json:"account_type,omitempty"`
	Label string `json:"label,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *EnsureAccountRequest) ToUseCaseInput() usecase.EnsureAccountInput {
	return usecase.EnsureAccountInput{
		Key:   r.Key,
		Type:  r.Type,
		Label: r.Label,
	}
}

// LineRequest is one debit or credit line.
type LineRequest struct {
	AccountKey  string          `json:"account_key"`
	Direction   string          `json:"direction"`
	Amount      decimal.Decimal `json:"amount_usdt"`
	AccountType string          `json:"account_type,omitempty"`
	Label       string          `json:"label,omitempty"`
}

// CreateTxnRequest posts a balanced transaction.
type CreateTxnRequest struct {
	EventType     string        `json:"event_type"`
	ReferenceType string        `json:"reference_type,omitempty"`
	ReferenceID   string        `json:"reference_id,omitempty"`
	Memo          string        `json:"memo,omitempty"`
	Lines         []LineRequest `json:"lines"`
}

// ToUseCaseInput converts to use case input. Directions are passed through
// unchecked so the engine reports them as validation errors.
func (r *CreateTxnRequest) ToUseCaseInput(createdBy string) usecase.CreateTxnInput {
	lines := make([]domain.Line, len(r.Lines))
	for i, l := range r.Lines {
		lines[i] = domain.Line{
			AccountKey:  l.AccountKey,
			Direction:   domain.Direction(l.Direction),
			Amount:      l.Amount,
			AccountType: l.AccountType,
			Label:       l.Label,
		}
	}

	return usecase.CreateTxnInput{
		EventType:     r.EventType,
		ReferenceType: r.ReferenceType,
		ReferenceID:   r.ReferenceID,
		Memo:          r.Memo,
		CreatedBy:     createdBy,
		Lines:         lines,
	}
}

// NodeFailureRequest reports a failed call to an infrastructure node.
type NodeFailureRequest struct {
	Error string `json:"error"`
}
