package dto

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/satelink/econledger/internal/domain"
	"github.com/satelink/econledger/internal/usecase"
)

func TestEnsureAccountRequest_ToUseCaseInput(t *testing.T) {
	req := &EnsureAccountRequest{Key: "treasury", Type: "treasury", Label: "Treasury"}

	got := req.ToUseCaseInput()
	want := usecase.EnsureAccountInput{Key: "treasury", Type: "treasury", Label: "Treasury"}

	if got != want {
		t.Fatalf("ToUseCaseInput() = %+v, want %+v", got, want)
	}
}

func TestCreateTxnRequest_DecodesAmounts(t *testing.T) {
	body := `{
		"event_type": "revenue",
		"reference_type": "invoice",
		"reference_id": "inv-9",
		"lines": [
			{"account_key": "treasury", "direction": "debit", "amount_usdt": "100.50"},
			{"account_key": "revenue", "direction": "credit", "amount_usdt": 100.5, "account_type": "revenue"}
		]
	}`

	var req CreateTxnRequest
	if err := json.Unmarshal([]byte(body), &req); err != nil {
		t.Fatalf("failed to decode request: %v", err)
	}

	input := req.ToUseCaseInput("ops")

	if input.EventType != "revenue" || input.ReferenceID != "inv-9" || input.CreatedBy != "ops" {
		t.Fatalf("unexpected header fields: %+v", input)
	}

	if len(input.Lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(input.Lines))
	}

	want := decimal.RequireFromString("100.5")
	for i, l := range input.Lines {
		if !l.Amount.Equal(want) {
			t.Fatalf("line %d: expected amount %s, got %s", i, want, l.Amount)
		}
	}

	if input.Lines[0].Direction != domain.DirectionDebit || input.Lines[1].Direction != domain.DirectionCredit {
		t.Fatalf("unexpected directions: %+v", input.Lines)
	}

	if input.Lines[1].AccountType != "revenue" {
		t.Fatalf("expected account type to pass through, got %q", input.Lines[1].AccountType)
	}
}

func TestCreateTxnRequest_KeepsUnknownDirection(t *testing.T) {
	req := &CreateTxnRequest{
		Lines: []LineRequest{{AccountKey: "a", Direction: "sideways", Amount: decimal.NewFromInt(1)}},
	}

	input := req.ToUseCaseInput("")
	if input.Lines[0].Direction != domain.Direction("sideways") {
		t.Fatalf("expected direction to be passed through for validation, got %q", input.Lines[0].Direction)
	}
}
