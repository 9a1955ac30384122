package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// GenesisHash is the predecessor hash of the first chain link.
const GenesisHash = "GENESIS"

var (
	ErrChainBroken   = errors.New("chain link does not point at its predecessor")
	ErrHashMismatch  = errors.New("chain link hash does not match entry")
	ErrOrphanEntries = errors.New("ledger entries without chain link")
)

// ChainLink binds one ledger entry to its predecessor in the hash chain.
type ChainLink struct {
	CreatedAt     time.Time
	TxnID         string
	HashPrev      string
	HashCurrent   string
	ID            int64
	LedgerEntryID int64
}

// ChainRecord is a chain link together with the entry it covers.
type ChainRecord struct {
	Link  *ChainLink
	Entry *LedgerEntry
}

// canonicalEntry fixes the field set and order that gets hashed. Amounts are
// normalized decimal strings and timestamps are Unix milliseconds so that a
// value read back from the store hashes the same as the one written.
type canonicalEntry struct {
	TxnID         string    `json:"txn_id"`
	LineNo        int       `json:"line_no"`
	AccountKey    string    `json:"account_key"`
	Direction     Direction `json:"direction"`
	AmountUSDT    string    `json:"amount_usdt"`
	EventType     string    `json:"event_type"`
	ReferenceType string    `json:"reference_type"`
	ReferenceID   string    `json:"reference_id"`
	CreatedAt     int64     `json:"created_at"`
}

// CanonicalEntry returns the deterministic serialization of e.
func CanonicalEntry(e *LedgerEntry) []byte {
	// Marshal cannot fail: every field is a string or an integer.
	data, _ := json.Marshal(canonicalEntry{
		TxnID:         e.TxnID,
		LineNo:        e.LineNo,
		AccountKey:    e.AccountKey,
		Direction:     e.Direction,
		AmountUSDT:    e.Amount.String(),
		EventType:     e.EventType,
		ReferenceType: e.ReferenceType,
		ReferenceID:   e.ReferenceID,
		CreatedAt:     e.CreatedAt.UnixMilli(),
	})

	return data
}

// ComputeHash returns hex(SHA256(canonical(e) || prev)).
func ComputeHash(e *LedgerEntry, prev string) string {
	h := sha256.New()
	h.Write(CanonicalEntry(e))
	h.Write([]byte(prev))

	return hex.EncodeToString(h.Sum(nil))
}

// NewChainLink links e to the chain tail prev.
func NewChainLink(e *LedgerEntry, prev string) *ChainLink {
	return &ChainLink{
		LedgerEntryID: e.ID,
		TxnID:         e.TxnID,
		HashPrev:      prev,
		HashCurrent:   ComputeHash(e, prev),
		CreatedAt:     e.CreatedAt,
	}
}

// VerifyLink checks that rec follows prev and that its hash covers its entry.
func VerifyLink(prev string, rec ChainRecord) error {
	if rec.Link.HashPrev != prev {
		return fmt.Errorf("%w: link %d has prev %s, expected %s", ErrChainBroken, rec.Link.ID, rec.Link.HashPrev, prev)
	}

	if rec.Entry == nil || rec.Entry.ID != rec.Link.LedgerEntryID {
		return fmt.Errorf("%w: link %d has no matching entry", ErrHashMismatch, rec.Link.ID)
	}

	if got := ComputeHash(rec.Entry, rec.Link.HashPrev); got != rec.Link.HashCurrent {
		return fmt.Errorf("%w: link %d stored %s, computed %s", ErrHashMismatch, rec.Link.ID, rec.Link.HashCurrent, got)
	}

	return nil
}

// Reasons a chain verification fails.
const (
	ChainReasonHashMismatch = "hash mismatch"
	ChainReasonBrokenLink   = "broken link"
	ChainReasonOrphanEntry  = "orphan entry"
)

// ChainReport is the outcome of walking the whole chain.
type ChainReport struct {
	CheckedAt    time.Time
	Tail         string
	Reason       string
	Links        int64
	BrokenLinkID int64
	OrphanCount  int64
	Valid        bool
}
