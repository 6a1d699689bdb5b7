package wallet

import (
	"context"
	"sync"
	"time"
)

type memoryRepository struct {
	mu      sync.RWMutex
	wallets map[string]Details
}

// NewMemoryRepository constructs an in-memory wallet store for tests
// and local development.
func NewMemoryRepository() Repository {
	return &memoryRepository{wallets: make(map[string]Details)}
}

func (r *memoryRepository) Ensure(_ context.Context, merchantID, currency string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.wallets[merchantID]; !exists {
		r.wallets[merchantID] = Details{MerchantID: merchantID, Currency: currency, UpdatedAt: time.Now().UTC()}
	}
	return nil
}

func (r *memoryRepository) Get(_ context.Context, merchantID string) (Details, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.wallets[merchantID]
	if !ok {
		return Details{}, ErrNotFound
	}
	return d, nil
}

func (r *memoryRepository) Hold(_ context.Context, merchantID string, amount int64) (Details, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.wallets[merchantID]
	if !ok {
		return Details{}, ErrNotFound
	}
	if d.Available < amount {
		return Details{}, ErrInsufficientBalance
	}
	d.Available -= amount
	d.Pending += amount
	d.UpdatedAt = time.Now().UTC()
	r.wallets[merchantID] = d
	return d, nil
}

func (r *memoryRepository) Release(_ context.Context, merchantID string, amount int64) (Details, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.wallets[merchantID]
	if !ok {
		return Details{}, ErrNotFound
	}
	if d.Pending < amount {
		return Details{}, ErrNotFound
	}
	d.Pending -= amount
	d.Available += amount
	d.UpdatedAt = time.Now().UTC()
	r.wallets[merchantID] = d
	return d, nil
}

func (r *memoryRepository) Settle(_ context.Context, merchantID string, amount int64) (Details, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.wallets[merchantID]
	if !ok {
		return Details{}, ErrNotFound
	}
	if d.Pending < amount {
		return Details{}, ErrNotFound
	}
	d.Pending -= amount
	d.UpdatedAt = time.Now().UTC()
	r.wallets[merchantID] = d
	return d, nil
}

func (r *memoryRepository) Credit(_ context.Context, merchantID string, amount int64) (Details, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.wallets[merchantID]
	if !ok {
		return Details{}, ErrNotFound
	}
	d.Available += amount
	d.TotalEarnings += amount
	d.UpdatedAt = time.Now().UTC()
	r.wallets[merchantID] = d
	return d, nil
}
