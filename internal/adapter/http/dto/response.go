package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/satelink/econledger/internal/domain"
	"github.com/satelink/econledger/internal/usecase"
)

// AccountResponse represents an account in API responses.
type AccountResponse struct {
	Key       string    `json:"account_key"`
	Type      string    `json:"account_type"`
	Label     string    `json:"label"`
	CreatedAt time.Time `json:"created_at"`
}

// AccountFromDomain converts domain account to response.
func AccountFromDomain(a *domain.Account) *AccountResponse {
	return &AccountResponse{
		Key:       a.Key,
		Type:      a.Type,
		Label:     a.Label,
		CreatedAt: a.CreatedAt,
	}
}

// AccountsFromDomain converts domain accounts to responses.
func AccountsFromDomain(accounts []*domain.Account) []*AccountResponse {
	result := make([]*AccountResponse, len(accounts))
	for i, a := range accounts {
		result[i] = AccountFromDomain(a)
	}
	return result
}

// BalanceResponse is the cached balance of one account.
type BalanceResponse struct {
	AccountKey string          `json:"account_key"`
	Balance    decimal.Decimal `json:"balance_usdt"`
}

// EntryResponse represents a ledger entry in API responses.
type EntryResponse struct {
	ID            int64           `json:"id"`
	TxnID         string          `json:"txn_id"`
	LineNo        int             `json:"line_no"`
	AccountKey    string          `json:"account_key"`
	Direction     string          `json:"direction"`
	Amount        decimal.Decimal `json:"amount_usdt"`
	Memo          string          `json:"memo,omitempty"`
	EventType     string          `json:"event_type"`
	ReferenceType string          `json:"reference_type,omitempty"`
	ReferenceID   string          `json:"reference_id,omitempty"`
	CreatedBy     string          `json:"created_by,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// EntryFromDomain converts a domain entry to response.
func EntryFromDomain(e *domain.LedgerEntry) *EntryResponse {
	return &EntryResponse{
		ID:            e.ID,
		TxnID:         e.TxnID,
		LineNo:        e.LineNo,
		AccountKey:    e.AccountKey,
		Direction:     string(e.Direction),
		Amount:        e.Amount,
		Memo:          e.Memo,
		EventType:     e.EventType,
		ReferenceType: e.ReferenceType,
		ReferenceID:   e.ReferenceID,
		CreatedBy:     e.CreatedBy,
		CreatedAt:     e.CreatedAt,
	}
}

// EntriesFromDomain converts domain entries to responses.
func EntriesFromDomain(entries []*domain.LedgerEntry) []*EntryResponse {
	result := make([]*EntryResponse, len(entries))
	for i, e := range entries {
		result[i] = EntryFromDomain(e)
	}
	return result
}

// TxnResponse represents a posted transaction.
type TxnResponse struct {
	TxnID     string           `json:"txn_id"`
	CreatedAt time.Time        `json:"created_at"`
	Entries   []*EntryResponse `json:"entries"`
}

// TxnFromDomain converts a domain transaction to response.
func TxnFromDomain(t *domain.Txn) *TxnResponse {
	return &TxnResponse{
		TxnID:     t.ID,
		CreatedAt: t.CreatedAt,
		Entries:   EntriesFromDomain(t.Entries),
	}
}

// ChainReportResponse is the result of a full chain walk.
type ChainReportResponse struct {
	Valid        bool      `json:"valid"`
	Links        int64     `json:"links"`
	Tail         string    `json:"tail"`
	BrokenLinkID int64     `json:"broken_link_id,omitempty"`
	OrphanCount  int64     `json:"orphan_count"`
	Reason       string    `json:"reason,omitempty"`
	CheckedAt    time.Time `json:"checked_at"`
}

// ChainReportFromDomain converts a chain report to response.
func ChainReportFromDomain(r *domain.ChainReport) *ChainReportResponse {
	return &ChainReportResponse{
		Valid:        r.Valid,
		Links:        r.Links,
		Tail:         r.Tail,
		BrokenLinkID: r.BrokenLinkID,
		OrphanCount:  r.OrphanCount,
		Reason:       r.Reason,
		CheckedAt:    r.CheckedAt,
	}
}

// ConsistencyResponse reports ledger-wide debit and credit totals.
type ConsistencyResponse struct {
	Consistent   bool            `json:"consistent"`
	TotalDebits  decimal.Decimal `json:"total_debits"`
	TotalCredits decimal.Decimal `json:"total_credits"`
	Difference   decimal.Decimal `json:"difference"`
	CheckedAt    time.Time       `json:"checked_at"`
}

// ConsistencyFromUseCase converts a consistency report to response.
func ConsistencyFromUseCase(r *usecase.ConsistencyReport) *ConsistencyResponse {
	return &ConsistencyResponse{
		Consistent:   r.Consistent,
		TotalDebits:  r.TotalDebits,
		TotalCredits: r.TotalCredits,
		Difference:   r.Difference,
		CheckedAt:    r.CheckedAt,
	}
}

// DiscrepancyResponse is one account whose cached balance disagrees with
// its entries.
type DiscrepancyResponse struct {
	AccountKey string          `json:"account_key"`
	Cached     decimal.Decimal `json:"cached"`
	Derived    decimal.Decimal `json:"derived"`
	Difference decimal.Decimal `json:"difference"`
	Missing    bool            `json:"missing,omitempty"`
}

// OverdraftResponse is a treasury or pool account with a negative balance.
type OverdraftResponse struct {
	AccountKey  string          `json:"account_key"`
	AccountType string          `json:"account_type"`
	Balance     decimal.Decimal `json:"balance"`
}

// ReconciliationResponse reports cache drift and overdrawn accounts.
type ReconciliationResponse struct {
	Reconciled    bool                   `json:"reconciled"`
	Accounts      int                    `json:"accounts"`
	Discrepancies []*DiscrepancyResponse `json:"discrepancies"`
	Overdrafts    []*OverdraftResponse   `json:"overdrafts"`
	CheckedAt     time.Time              `json:"checked_at"`
}

// ReconciliationFromUseCase converts a reconciliation report to response.
func ReconciliationFromUseCase(r *usecase.ReconciliationReport) *ReconciliationResponse {
	discrepancies := make([]*DiscrepancyResponse, len(r.Discrepancies))
	for i, d := range r.Discrepancies {
		discrepancies[i] = &DiscrepancyResponse{
			AccountKey: d.AccountKey,
			Cached:     d.Cached,
			Derived:    d.Derived,
			Difference: d.Difference,
			Missing:    d.Missing,
		}
	}

	overdrafts := make([]*OverdraftResponse, len(r.Overdrafts))
	for i, o := range r.Overdrafts {
		overdrafts[i] = &OverdraftResponse{AccountKey: o.AccountKey, AccountType: o.AccountType, Balance: o.Balance}
	}

	return &ReconciliationResponse{
		Reconciled:    r.Reconciled(),
		Accounts:      r.Accounts,
		Discrepancies: discrepancies,
		Overdrafts:    overdrafts,
		CheckedAt:     r.CheckedAt,
	}
}

// AlertResponse represents a security alert in API responses.
type AlertResponse struct {
	ID         string         `json:"id"`
	Severity   string         `json:"severity"`
	Category   string         `json:"category"`
	EntityType string         `json:"entity_type"`
	EntityID   string         `json:"entity_id"`
	Title      string         `json:"title"`
	Evidence   map[string]any `json:"evidence,omitempty"`
	Status     string         `json:"status"`
	CreatedAt  time.Time      `json:"created_at"`
}

// AlertsFromDomain converts domain alerts to responses.
func AlertsFromDomain(alerts []*domain.Alert) []*AlertResponse {
	result := make([]*AlertResponse, len(alerts))
	for i, a := range alerts {
		result[i] = &AlertResponse{
			ID:         a.ID,
			Severity:   string(a.Severity),
			Category:   string(a.Category),
			EntityType: a.EntityType,
			EntityID:   a.EntityID,
			Title:      a.Title,
			Evidence:   a.Evidence,
			Status:     a.Status,
			CreatedAt:  a.CreatedAt,
		}
	}
	return result
}

// ListResponse wraps a page of results.
type ListResponse[T any] struct {
	Data   []T `json:"data"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Rule    string `json:"rule,omitempty"`
}
