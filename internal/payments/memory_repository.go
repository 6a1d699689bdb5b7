package payments

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/karobar-pay/karobar_pay/internal/payout"
)

type memoryRepository struct {
	mu       sync.RWMutex
	payments map[string]Payment
}

// NewMemoryRepository constructs an in-memory payment store for tests
// and local development.
func NewMemoryRepository() Repository {
	return &memoryRepository{payments: make(map[string]Payment)}
}

func (r *memoryRepository) Create(_ context.Context, p Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.payments[p.ID]; exists {
		return errors.New("payment exists")
	}
	r.payments[p.ID] = p
	return nil
}

func (r *memoryRepository) FindByRef(_ context.Context, transactionRef string) (Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.payments {
		if p.TransactionRef == transactionRef {
			return p, nil
		}
	}
	return Payment{}, ErrNotFound
}

func (r *memoryRepository) List(_ context.Context, merchantID string, page, limit int, status payout.Status) (Page, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []Payment
	for _, p := range r.payments {
		if p.MerchantID != merchantID {
			continue
		}
		if status != "" && p.Status != status {
			continue
		}
		matched = append(matched, p)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })

	result := Page{Page: page, Limit: limit, Total: len(matched), Items: []Payment{}}
	start := (page - 1) * limit
	if start < len(matched) {
		end := start + limit
		if end > len(matched) {
			end = len(matched)
		}
		result.Items = append(result.Items, matched[start:end]...)
	}
	return result, nil
}
