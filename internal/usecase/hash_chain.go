package usecase

import (
	"context"

	"github.com/satelink/econledger/internal/domain"
)

// HashChain appends links to the tamper-evident chain. Every link covers one
// ledger entry and the hash of the link before it.
type HashChain struct {
	chainRepo ChainRepository
}

// NewHashChain creates a new HashChain.
func NewHashChain(chainRepo ChainRepository) *HashChain {
	return &HashChain{chainRepo: chainRepo}
}

// Acquire takes the chain serialization point for tx. It must be called
// before the first entry of the unit is inserted.
func (c *HashChain) Acquire(ctx context.Context, tx Transaction) error {
	return c.chainRepo.Lock(ctx, tx)
}

// Append links entry to the current tail. The caller must hold the chain
// lock on tx.
func (c *HashChain) Append(ctx context.Context, tx Transaction, entry *domain.LedgerEntry) (*domain.ChainLink, error) {
	prev, err := c.chainRepo.Tail(ctx, tx)
	if err != nil {
		return nil, err
	}

	link := domain.NewChainLink(entry, prev)
	if err := c.chainRepo.Append(ctx, tx, link); err != nil {
		return nil, err
	}

	return link, nil
}
