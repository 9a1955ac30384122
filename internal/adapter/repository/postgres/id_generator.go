package postgres

import (
	"github.com/oklog/ulid/v2"

	"github.com/satelink/econledger/internal/domain"
)

// TxnIDGenerator generates ULID-based transaction IDs.
type TxnIDGenerator struct{}

// NewTxnIDGenerator creates a new TxnIDGenerator.
func NewTxnIDGenerator() *TxnIDGenerator {
	return &TxnIDGenerator{}
}

// Generate returns "txn_" followed by a new ULID.
func (g *TxnIDGenerator) Generate() string {
	return domain.TxnIDPrefix + ulid.Make().String()
}
