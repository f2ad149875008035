package store

import (
	"context"
	"sync"
	"time"

	"github.com/chainmall/authgate/ports"
)

// MemoryStore is an in-memory implementation of the NonceStore interface.
// Suitable for single-instance deployments and tests.
type MemoryStore struct {
	nonces map[string]time.Time
	mu     sync.Mutex
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		nonces: make(map[string]time.Time),
	}
}

// Save records a nonce with its expiry
func (s *MemoryStore) Save(ctx context.Context, nonce string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	expiry := time.Now().Add(ttl)
	s.nonces[nonce] = expiry

	// Start a cleanup goroutine
	go func() {
		time.Sleep(ttl)

		s.mu.Lock()
		defer s.mu.Unlock()

		// Only delete if the expiry time hasn't changed
		if stored, exists := s.nonces[nonce]; exists && !stored.After(expiry) {
			delete(s.nonces, nonce)
		}
	}()

	return nil
}

// Consume removes the nonce if it is still live. Delete-under-lock keeps
// the take-once guarantee for concurrent verifications.
func (s *MemoryStore) Consume(ctx context.Context, nonce string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	expiry, exists := s.nonces[nonce]
	if !exists {
		return false, nil
	}
	delete(s.nonces, nonce)

	if time.Now().After(expiry) {
		return false, nil
	}
	return true, nil
}

var _ ports.NonceStore = (*MemoryStore)(nil)
