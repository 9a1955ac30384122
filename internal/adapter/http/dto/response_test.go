package dto

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/satelink/econledger/internal/domain"
	"github.com/satelink/econledger/internal/usecase"
)

func TestTxnFromDomain(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	txn := &domain.Txn{
		ID:        "txn_01",
		CreatedAt: now,
		Entries: []*domain.LedgerEntry{
			{ID: 1, TxnID: "txn_01", LineNo: 1, AccountKey: "treasury", Direction: domain.DirectionDebit, Amount: decimal.NewFromInt(100), EventType: "revenue", CreatedAt: now},
			{ID: 2, TxnID: "txn_01", LineNo: 2, AccountKey: "revenue", Direction: domain.DirectionCredit, Amount: decimal.NewFromInt(100), EventType: "revenue", CreatedAt: now},
		},
	}

	resp := TxnFromDomain(txn)

	if resp.TxnID != "txn_01" || len(resp.Entries) != 2 {
		t.Fatalf("unexpected response: %+v", resp)
	}

	raw, err := json.Marshal(resp)
	if err != nil {
		t.Fatalf("failed to encode: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}

	entries := decoded["entries"].([]any)
	first := entries[0].(map[string]any)
	if first["amount_usdt"] != "100" || first["direction"] != "debit" {
		t.Fatalf("unexpected entry encoding: %v", first)
	}
}

func TestReconciliationFromUseCase(t *testing.T) {
	report := &usecase.ReconciliationReport{
		Accounts: 3,
		Discrepancies: []domain.BalanceDiscrepancy{
			{
				AccountKey: "treasury",
				Cached:     decimal.NewFromInt(90),
				Derived:    decimal.NewFromInt(100),
				Difference: decimal.NewFromInt(-10),
			},
		},
	}

	resp := ReconciliationFromUseCase(report)

	if resp.Reconciled {
		t.Fatalf("expected report with discrepancies to be unreconciled")
	}

	if resp.Accounts != 3 || len(resp.Discrepancies) != 1 || resp.Discrepancies[0].AccountKey != "treasury" {
		t.Fatalf("unexpected response: %+v", resp)
	}

	if resp.Overdrafts == nil || len(resp.Overdrafts) != 0 {
		t.Fatalf("expected empty overdraft list, got %v", resp.Overdrafts)
	}
}

func TestReconciliationFromUseCase_Overdrafts(t *testing.T) {
	report := &usecase.ReconciliationReport{
		Accounts: 2,
		Overdrafts: []domain.Overdraft{
			{AccountKey: "pool:rewards", AccountType: domain.AccountTypePool, Balance: decimal.NewFromInt(-4)},
		},
	}

	resp := ReconciliationFromUseCase(report)

	if resp.Reconciled {
		t.Fatalf("expected report with overdrafts to be unreconciled")
	}

	if len(resp.Overdrafts) != 1 || resp.Overdrafts[0].AccountKey != "pool:rewards" || !resp.Overdrafts[0].Balance.Equal(decimal.NewFromInt(-4)) {
		t.Fatalf("unexpected overdrafts: %+v", resp.Overdrafts)
	}
}

func TestChainReportFromDomain(t *testing.T) {
	report := &domain.ChainReport{
		Valid:        false,
		Links:        4,
		BrokenLinkID: 3,
		Reason:       domain.ChainReasonHashMismatch,
	}

	resp := ChainReportFromDomain(report)

	if resp.Valid || resp.BrokenLinkID != 3 || resp.Reason != "hash mismatch" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestAlertsFromDomain(t *testing.T) {
	alerts := []*domain.Alert{{
		ID:         "a1",
		Severity:   domain.AlertSeverityHigh,
		Category:   domain.AlertCategoryInfra,
		EntityType: domain.AlertEntityNode,
		EntityID:   "node-7",
		Title:      "High failure rate for node: node-7",
		Evidence:   map[string]any{"failures": 15},
		Status:     domain.AlertStatusOpen,
	}}

	resp := AlertsFromDomain(alerts)

	if len(resp) != 1 || resp[0].Severity != "high" || resp[0].Category != "infra" || resp[0].EntityID != "node-7" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}
