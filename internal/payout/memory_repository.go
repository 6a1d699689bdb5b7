package payout

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"
)

type memoryRepository struct {
	mu      sync.RWMutex
	payouts map[string]Payout
}

// NewMemoryRepository constructs an in-memory payout store for tests
// and local development.
func NewMemoryRepository() Repository {
	return &memoryRepository{payouts: make(map[string]Payout)}
}

func (r *memoryRepository) Create(_ context.Context, p Payout) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.payouts[p.ID]; exists {
		return errors.New("payout exists")
	}
	r.payouts[p.ID] = p
	return nil
}

func (r *memoryRepository) Get(_ context.Context, id string) (Payout, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.payouts[id]
	if !ok {
		return Payout{}, ErrNotFound
	}
	return p, nil
}

func (r *memoryRepository) List(_ context.Context, merchantID string, page, limit int, status Status) (Page, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []Payout
	for _, p := range r.payouts {
		if p.MerchantID != merchantID {
			continue
		}
		if status != "" && p.Status != status {
			continue
		}
		matched = append(matched, p)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })

	result := Page{Page: page, Limit: limit, Total: len(matched), Items: []Payout{}}
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

func (r *memoryRepository) UpdateStatus(_ context.Context, id string, to Status, failureReason string) (Payout, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.payouts[id]
	if !ok {
		return Payout{}, ErrNotFound
	}
	if !ValidTransition(p.Status, to) {
		return Payout{}, ErrInvalidTransition
	}
	p.Status = to
	p.FailureReason = failureReason
	p.UpdatedAt = time.Now().UTC()
	r.payouts[id] = p
	return p, nil
}
