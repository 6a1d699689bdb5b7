package session

import (
	"context"
	"sync"
)

// MemoryStorage is an in-memory Storage for tests and storage-less
// console runs (sessions do not survive a restart).
type MemoryStorage struct {
	mu   sync.Mutex
	snap Snapshot
	set  bool
}

// NewMemoryStorage constructs an empty in-memory session store.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{}
}

// Load returns the stored snapshot, or a zero snapshot when empty.
func (s *MemoryStorage) Load(_ context.Context) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.set {
		return Snapshot{}, nil
	}
	snap := s.snap
	if s.snap.IdentityJSON != nil {
		snap.IdentityJSON = append([]byte(nil), s.snap.IdentityJSON...)
	}
	return snap, nil
}

// Save replaces the stored snapshot.
func (s *MemoryStorage) Save(_ context.Context, snap Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if snap.IdentityJSON != nil {
		snap.IdentityJSON = append([]byte(nil), snap.IdentityJSON...)
	}
	s.snap = snap
	s.set = true
	return nil
}

// Clear removes the stored snapshot.
func (s *MemoryStorage) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap = Snapshot{}
	s.set = false
	return nil
}
