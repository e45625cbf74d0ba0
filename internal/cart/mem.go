package cart

import (
	"context"
	"sync"
)

// MemStorage is an in-memory Storage used when no database is configured
// and throughout the tests. It loses the cart on restart, which only costs
// durability: within a session every mutation still applies.
type MemStorage struct {
	mu      sync.Mutex
	payload []byte

	// FailSaves forces Save to return this error, for exercising the
	// best-effort persistence contract.
	FailSaves error
}

// NewMemStorage returns an empty in-memory store.
func NewMemStorage() *MemStorage {
	return &MemStorage{}
}

// Load returns the last saved payload, or (nil, nil) when nothing was saved.
func (s *MemStorage) Load(ctx context.Context) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.payload == nil {
		return nil, nil
	}
	out := make([]byte, len(s.payload))
	copy(out, s.payload)
	return out, nil
}

// Save stores a copy of payload.
func (s *MemStorage) Save(ctx context.Context, payload []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailSaves != nil {
		return s.FailSaves
	}
	s.payload = make([]byte, len(payload))
	copy(s.payload, payload)
	return nil
}

// Seed replaces the stored payload directly, bypassing Save failures.
func (s *MemStorage) Seed(payload []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.payload = append([]byte(nil), payload...)
}
