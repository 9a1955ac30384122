package mocks

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/shopspring/decimal"

	"github.com/satelink/econledger/internal/domain"
	"github.com/satelink/econledger/internal/usecase"
)

var errForeignTx = errors.New("mocks: transaction not created by this store")

// Store is an in-memory ledger store with the same transactional contract
// as the Postgres adapters: writes made through a Tx become visible on
// commit, and LockChain serializes chain appends until the Tx ends.
type Store struct {
	mu       sync.Mutex
	accounts map[string]*domain.Account
	entries  []*domain.LedgerEntry
	links    []*domain.ChainLink
	balances map[string]*domain.AccountBalance
	alerts   []*domain.Alert

	entrySeq int64
	linkSeq  int64
	alertSeq int64
	chainSem chan struct{}

	// Naive disables the chain lock so concurrent postings can fork the chain.
	Naive bool
	// BeforeTail runs before every chain tail read.
	BeforeTail func(ctx context.Context)
	// Fail injects an error for the named operation, e.g. "entry.create".
	Fail func(op string) error

	Begins    atomic.Int64
	Commits   atomic.Int64
	Rollbacks atomic.Int64
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		accounts: make(map[string]*domain.Account),
		balances: make(map[string]*domain.AccountBalance),
		chainSem: make(chan struct{}, 1),
	}
}

func (s *Store) fail(op string) error {
	if s.Fail == nil {
		return nil
	}

	return s.Fail(op)
}

// Tx is a pending set of writes against a Store.
type Tx struct {
	store    *Store
	accounts []*domain.Account
	entries  []*domain.LedgerEntry
	links    []*domain.ChainLink
	balances map[string]*domain.AccountBalance
	locked   bool
	done     bool
}

// Commit applies the pending writes.
func (t *Tx) Commit(ctx context.Context) error {
	if t.done {
		return errors.New("mocks: transaction already closed")
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	if err := t.store.fail("commit"); err != nil {
		return err
	}

	s := t.store
	s.mu.Lock()
	for _, a := range t.accounts {
		if _, ok := s.accounts[a.Key]; !ok {
			s.accounts[a.Key] = a
		}
	}
	s.entries = append(s.entries, t.entries...)
	s.links = append(s.links, t.links...)
	for k, b := range t.balances {
		s.balances[k] = b
	}
	s.mu.Unlock()

	t.finish()
	s.Commits.Add(1)

	return nil
}

// Rollback discards the pending writes. It is a no-op after Commit.
func (t *Tx) Rollback(context.Context) error {
	if t.done {
		return nil
	}

	t.finish()
	t.store.Rollbacks.Add(1)

	return nil
}

func (t *Tx) finish() {
	t.done = true
	if t.locked {
		t.locked = false
		<-t.store.chainSem
	}
}

func (s *Store) tx(tx usecase.Transaction) (*Tx, error) {
	t, ok := tx.(*Tx)
	if !ok || t.store != s {
		return nil, errForeignTx
	}

	if t.done {
		return nil, errors.New("mocks: transaction already closed")
	}

	return t, nil
}

// TxManager returns a usecase.TransactionManager backed by s.
func (s *Store) TxManager() *TxManager { return &TxManager{s} }

// AccountRepo returns a usecase.AccountRepository backed by s.
func (s *Store) AccountRepo() *AccountRepo { return &AccountRepo{s} }

// EntryRepo returns a usecase.EntryRepository backed by s.
func (s *Store) EntryRepo() *EntryRepo { return &EntryRepo{s} }

// ChainRepo returns a usecase.ChainRepository backed by s.
func (s *Store) ChainRepo() *ChainRepo { return &ChainRepo{s} }

// BalanceRepo returns a usecase.BalanceRepository backed by s.
func (s *Store) BalanceRepo() *BalanceRepo { return &BalanceRepo{s} }

// LedgerRepo returns a usecase.LedgerRepository backed by s.
func (s *Store) LedgerRepo() *LedgerRepo { return &LedgerRepo{s} }

// AlertRepo returns a usecase.AlertRepository backed by s.
func (s *Store) AlertRepo() *AlertRepo { return &AlertRepo{store: s} }

// Entries returns a snapshot of the committed entries.
func (s *Store) Entries() []*domain.LedgerEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]*domain.LedgerEntry(nil), s.entries...)
}

// Links returns a snapshot of the committed chain links in id order.
func (s *Store) Links() []*domain.ChainLink {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.sortedLinks()
}

// Alerts returns a snapshot of the persisted alerts.
func (s *Store) Alerts() []*domain.Alert {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]*domain.Alert(nil), s.alerts...)
}

// CachedBalance returns the cached balance row for key.
func (s *Store) CachedBalance(key string) (decimal.Decimal, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.balances[key]
	if !ok {
		return decimal.Zero, false
	}

	return b.Balance, true
}

// TamperEntry rewrites a committed entry in place, bypassing append-only rules.
func (s *Store) TamperEntry(id int64, mutate func(e *domain.LedgerEntry)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range s.entries {
		if e.ID == id {
			mutate(e)
		}
	}
}

// InjectEntry commits an entry with no chain link.
func (s *Store) InjectEntry(e *domain.LedgerEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entrySeq++
	e.ID = s.entrySeq
	cp := *e
	s.entries = append(s.entries, &cp)
}

// SetCachedBalance overwrites a cache row.
func (s *Store) SetCachedBalance(key string, balance decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.balances[key] = &domain.AccountBalance{AccountKey: key, Balance: balance}
}

func (s *Store) sortedLinks() []*domain.ChainLink {
	links := append([]*domain.ChainLink(nil), s.links...)
	sort.Slice(links, func(i, j int) bool { return links[i].ID < links[j].ID })

	return links
}

// TxManager implements usecase.TransactionManager.
type TxManager struct{ store *Store }

// Begin starts a transaction.
func (m *TxManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := m.store.fail("begin"); err != nil {
		return nil, err
	}

	m.store.Begins.Add(1)

	return &Tx{store: m.store, balances: make(map[string]*domain.AccountBalance)}, nil
}

// AccountRepo implements usecase.AccountRepository.
type AccountRepo struct{ store *Store }

func (r *AccountRepo) Create(_ context.Context, account *domain.Account) error {
	if err := r.store.fail("account.create"); err != nil {
		return err
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.accounts[account.Key]; !ok {
		cp := *account
		r.store.accounts[account.Key] = &cp
	}

	return nil
}

func (r *AccountRepo) CreateTx(_ context.Context, tx usecase.Transaction, account *domain.Account) error {
	t, err := r.store.tx(tx)
	if err != nil {
		return err
	}

	if err := r.store.fail("account.create"); err != nil {
		return err
	}

	cp := *account
	t.accounts = append(t.accounts, &cp)

	return nil
}

func (r *AccountRepo) GetByKey(_ context.Context, key string) (*domain.Account, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	a, ok := r.store.accounts[key]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}

	cp := *a

	return &cp, nil
}

func (r *AccountRepo) List(_ context.Context, limit, offset int) ([]*domain.Account, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	out := make([]*domain.Account, 0, len(r.store.accounts))
	for _, a := range r.store.accounts {
		cp := *a
		out = append(out, &cp)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })

	return page(out, limit, offset), nil
}

// EntryRepo implements usecase.EntryRepository.
type EntryRepo struct{ store *Store }

func (r *EntryRepo) Create(_ context.Context, tx usecase.Transaction, entry *domain.LedgerEntry) error {
	t, err := r.store.tx(tx)
	if err != nil {
		return err
	}

	if err := r.store.fail("entry.create"); err != nil {
		return err
	}

	r.store.mu.Lock()
	r.store.entrySeq++
	entry.ID = r.store.entrySeq
	r.store.mu.Unlock()

	cp := *entry
	t.entries = append(t.entries, &cp)

	return nil
}

func (r *EntryRepo) GetByTxn(_ context.Context, txnID string) ([]*domain.LedgerEntry, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var out []*domain.LedgerEntry
	for _, e := range r.store.entries {
		if e.TxnID == txnID {
			cp := *e
			out = append(out, &cp)
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].LineNo < out[j].LineNo })

	return out, nil
}

func (r *EntryRepo) GetByAccount(_ context.Context, accountKey string, limit, offset int) ([]*domain.LedgerEntry, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var out []*domain.LedgerEntry
	for _, e := range r.store.entries {
		if e.AccountKey == accountKey {
			cp := *e
			out = append(out, &cp)
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })

	return page(out, limit, offset), nil
}

func (r *EntryRepo) SumByAccount(_ context.Context, tx usecase.Transaction, accountKey string) (decimal.Decimal, decimal.Decimal, error) {
	t, err := r.store.tx(tx)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}

	if err := r.store.fail("entry.sum"); err != nil {
		return decimal.Zero, decimal.Zero, err
	}

	r.store.mu.Lock()
	visible := append(append([]*domain.LedgerEntry(nil), r.store.entries...), t.entries...)
	r.store.mu.Unlock()

	debits, credits := decimal.Zero, decimal.Zero
	for _, e := range visible {
		if e.AccountKey != accountKey {
			continue
		}

		if e.Direction == domain.DirectionDebit {
			debits = debits.Add(e.Amount)
		} else {
			credits = credits.Add(e.Amount)
		}
	}

	return debits, credits, nil
}

// ChainRepo implements usecase.ChainRepository.
type ChainRepo struct{ store *Store }

func (r *ChainRepo) Lock(ctx context.Context, tx usecase.Transaction) error {
	t, err := r.store.tx(tx)
	if err != nil {
		return err
	}

	if r.store.Naive || t.locked {
		return nil
	}

	select {
	case r.store.chainSem <- struct{}{}:
		t.locked = true
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *ChainRepo) Tail(ctx context.Context, tx usecase.Transaction) (string, error) {
	t, err := r.store.tx(tx)
	if err != nil {
		return "", err
	}

	if r.store.BeforeTail != nil {
		r.store.BeforeTail(ctx)
	}

	if len(t.links) > 0 {
		return t.links[len(t.links)-1].HashCurrent, nil
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	links := r.store.sortedLinks()
	if len(links) == 0 {
		return domain.GenesisHash, nil
	}

	return links[len(links)-1].HashCurrent, nil
}

func (r *ChainRepo) Append(_ context.Context, tx usecase.Transaction, link *domain.ChainLink) error {
	t, err := r.store.tx(tx)
	if err != nil {
		return err
	}

	if err := r.store.fail("chain.append"); err != nil {
		return err
	}

	r.store.mu.Lock()
	r.store.linkSeq++
	link.ID = r.store.linkSeq
	r.store.mu.Unlock()

	cp := *link
	t.links = append(t.links, &cp)

	return nil
}

func (r *ChainRepo) Walk(_ context.Context, afterID int64, limit int) ([]domain.ChainRecord, error) {
	if err := r.store.fail("chain.walk"); err != nil {
		return nil, err
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	byID := make(map[int64]*domain.LedgerEntry, len(r.store.entries))
	for _, e := range r.store.entries {
		byID[e.ID] = e
	}

	var out []domain.ChainRecord
	for _, l := range r.store.sortedLinks() {
		if l.ID <= afterID {
			continue
		}

		if len(out) == limit {
			break
		}

		rec := domain.ChainRecord{Link: l}
		if e, ok := byID[l.LedgerEntryID]; ok {
			cp := *e
			rec.Entry = &cp
		}

		out = append(out, rec)
	}

	return out, nil
}

func (r *ChainRepo) CountOrphanEntries(context.Context) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	linked := make(map[int64]struct{}, len(r.store.links))
	for _, l := range r.store.links {
		linked[l.LedgerEntryID] = struct{}{}
	}

	var n int64
	for _, e := range r.store.entries {
		if _, ok := linked[e.ID]; !ok {
			n++
		}
	}

	return n, nil
}

// BalanceRepo implements usecase.BalanceRepository.
type BalanceRepo struct{ store *Store }

func (r *BalanceRepo) Upsert(_ context.Context, tx usecase.Transaction, balance *domain.AccountBalance) error {
	t, err := r.store.tx(tx)
	if err != nil {
		return err
	}

	if err := r.store.fail("balance.upsert"); err != nil {
		return err
	}

	cp := *balance
	t.balances[balance.AccountKey] = &cp

	return nil
}

func (r *BalanceRepo) Get(_ context.Context, accountKey string) (*domain.AccountBalance, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	b, ok := r.store.balances[accountKey]
	if !ok {
		return nil, domain.ErrBalanceNotFound
	}

	cp := *b

	return &cp, nil
}

func (r *BalanceRepo) List(_ context.Context, limit, offset int) ([]*domain.AccountBalance, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	out := make([]*domain.AccountBalance, 0, len(r.store.balances))
	for _, b := range r.store.balances {
		cp := *b
		out = append(out, &cp)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].AccountKey < out[j].AccountKey })

	return page(out, limit, offset), nil
}

// LedgerRepo implements usecase.LedgerRepository.
type LedgerRepo struct{ store *Store }

func (r *LedgerRepo) CheckConsistency(context.Context) (decimal.Decimal, decimal.Decimal, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	debits, credits := decimal.Zero, decimal.Zero
	for _, e := range r.store.entries {
		if e.Direction == domain.DirectionDebit {
			debits = debits.Add(e.Amount)
		} else {
			credits = credits.Add(e.Amount)
		}
	}

	return debits, credits, nil
}

func (r *LedgerRepo) DerivedBalances(context.Context) (map[string]decimal.Decimal, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	out := make(map[string]decimal.Decimal)
	for _, e := range r.store.entries {
		out[e.AccountKey] = out[e.AccountKey].Add(e.Signed())
	}

	return out, nil
}

// AlertRepo implements usecase.AlertRepository.
type AlertRepo struct {
	store *Store

	CreateFunc func(ctx context.Context, alert *domain.Alert) error
}

func (r *AlertRepo) Create(ctx context.Context, alert *domain.Alert) error {
	if r.CreateFunc != nil {
		return r.CreateFunc(ctx, alert)
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	r.store.alertSeq++
	alert.ID = fmt.Sprintf("alert-%d", r.store.alertSeq)
	cp := *alert
	r.store.alerts = append(r.store.alerts, &cp)

	return nil
}

func (r *AlertRepo) List(_ context.Context, filter domain.AlertFilter) ([]*domain.Alert, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var out []*domain.Alert
	for i := len(r.store.alerts) - 1; i >= 0; i-- {
		a := r.store.alerts[i]
		if filter.Category != "" && a.Category != filter.Category {
			continue
		}

		if filter.EntityID != "" && a.EntityID != filter.EntityID {
			continue
		}

		cp := *a
		out = append(out, &cp)
	}

	return page(out, filter.Limit, filter.Offset), nil
}

// SequenceIDGenerator returns prefix followed by an increasing counter.
type SequenceIDGenerator struct {
	n      atomic.Int64
	Prefix string
}

func (g *SequenceIDGenerator) Generate() string {
	return fmt.Sprintf("%s%d", g.Prefix, g.n.Add(1))
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return nil
	}

	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}

	return items
}
