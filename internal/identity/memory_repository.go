package identity

import (
	"context"
	"errors"
	"sync"
	"time"
)

type memoryRepository struct {
	mu        sync.RWMutex
	merchants map[string]MerchantRecord
	admins    map[string]AdminRecord
}

// NewMemoryRepository builds an in-memory identity store for testing
// and local development.
func NewMemoryRepository() Repository {
	return &memoryRepository{
		merchants: make(map[string]MerchantRecord),
		admins:    make(map[string]AdminRecord),
	}
}

func (r *memoryRepository) CreateMerchant(_ context.Context, rec MerchantRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.merchants[rec.MerchantID]; exists {
		return errors.New("merchant exists")
	}
	r.merchants[rec.MerchantID] = rec
	return nil
}

func (r *memoryRepository) FindMerchantByEmail(_ context.Context, email string) (MerchantRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, rec := range r.merchants {
		if rec.Email == email {
			return rec, nil
		}
	}
	return MerchantRecord{}, ErrNotFound
}

func (r *memoryRepository) FindMerchantByID(_ context.Context, merchantID string) (MerchantRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.merchants[merchantID]
	if !ok {
		return MerchantRecord{}, ErrNotFound
	}
	return rec, nil
}

func (r *memoryRepository) UpdateVerificationStatus(_ context.Context, merchantID string, status VerificationStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.merchants[merchantID]
	if !ok {
		return ErrNotFound
	}
	rec.VerificationStatus = status
	rec.UpdatedAt = time.Now().UTC()
	r.merchants[merchantID] = rec
	return nil
}

func (r *memoryRepository) CreateAdmin(_ context.Context, rec AdminRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.admins[rec.Email]; exists {
		return errors.New("admin exists")
	}
	r.admins[rec.Email] = rec
	return nil
}

func (r *memoryRepository) FindAdminByEmail(_ context.Context, email string) (AdminRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.admins[email]
	if !ok {
		return AdminRecord{}, ErrNotFound
	}
	return rec, nil
}
