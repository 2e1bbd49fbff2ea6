// Package memstore keeps accounts and the price table in process memory. It backs
// STORE_BACKEND=memory and the handler tests.
package memstore

import (
	"context"
	"sort"
	"sync"

	"mir4tracker/models"
)

// Store holds the account records and the price table
type Store struct {
	accounts *AccountStore
	prices   *PriceStore
}

// New creates an empty store
func New() *Store {
	return &Store{
		accounts: &AccountStore{records: make(map[string]*entry)},
		prices:   &PriceStore{},
	}
}

// Accounts returns the account record store
func (s *Store) Accounts() *AccountStore {
	return s.accounts
}

// Prices returns the price table store
func (s *Store) Prices() *PriceStore {
	return s.prices
}

type entry struct {
	account *models.Account
	seq     int64
}

// AccountStore is a mutex guarded account collection
type AccountStore struct {
	mu      sync.RWMutex
	records map[string]*entry
	nextSeq int64
}

// GetByID returns a copy of the account, or nil when absent
func (s *AccountStore) GetByID(ctx context.Context, id string) (*models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.records[id]
	if !ok {
		return nil, nil
	}
	return clone(e.account), nil
}

// GetAll returns up to limit accounts ordered by creation time
func (s *AccountStore) GetAll(ctx context.Context, limit int) ([]*models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.collect(limit, func(*models.Account) bool { return true }), nil
}

// GetConfirmed returns accounts that are confirmed and carry a timestamp
func (s *AccountStore) GetConfirmed(ctx context.Context) ([]*models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.collect(0, func(a *models.Account) bool {
		return a.Confirmed && a.ConfirmedAt != nil
	}), nil
}

// Create inserts a copy of the account
func (s *AccountStore) Create(ctx context.Context, account *models.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextSeq++
	s.records[account.ID] = &entry{account: clone(account), seq: s.nextSeq}
	return nil
}

// Update applies mutate to a copy and stores it only when mutate succeeds
func (s *AccountStore) Update(ctx context.Context, id string, mutate func(*models.Account) error) (*models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.records[id]
	if !ok {
		return nil, nil
	}

	updated := clone(e.account)
	if err := mutate(updated); err != nil {
		return nil, err
	}
	updated.ID = e.account.ID
	e.account = updated
	return clone(updated), nil
}

// Delete removes an account and reports how many records were deleted
func (s *AccountStore) Delete(ctx context.Context, id string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[id]; !ok {
		return 0, nil
	}
	delete(s.records, id)
	return 1, nil
}

func (s *AccountStore) collect(limit int, keep func(*models.Account) bool) []*models.Account {
	entries := make([]*entry, 0, len(s.records))
	for _, e := range s.records {
		if keep(e.account) {
			entries = append(entries, e)
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].account.CreatedAt != entries[j].account.CreatedAt {
			return entries[i].account.CreatedAt < entries[j].account.CreatedAt
		}
		return entries[i].seq < entries[j].seq
	})
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}

	accounts := make([]*models.Account, len(entries))
	for i, e := range entries {
		accounts[i] = clone(e.account)
	}
	return accounts
}

// PriceStore holds the singleton price table
type PriceStore struct {
	mu     sync.RWMutex
	prices *models.BossPrices
}

// Get returns a copy of the price table, or nil when none was stored
func (s *PriceStore) Get(ctx context.Context) (*models.BossPrices, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.prices == nil {
		return nil, nil
	}
	return s.prices.Clone(), nil
}

// Upsert replaces the price table
func (s *PriceStore) Upsert(ctx context.Context, prices *models.BossPrices) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := prices.Clone()
	stored.ID = models.DefaultPricesID
	s.prices = stored
	return nil
}

func clone(a *models.Account) *models.Account {
	c := *a
	if a.ConfirmedAt != nil {
		stamp := *a.ConfirmedAt
		c.ConfirmedAt = &stamp
	}
	return &c
}
