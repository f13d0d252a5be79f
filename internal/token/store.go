package token

import (
	"context"
	"sync"
	"time"
)

// Store is the backing storage for pending tokens. Mutate is the only read
// path on purpose: every check-then-act sequence in Verify has to run as one
// critical section per id, so the store exposes compare-and-mutate instead
// of a bare Get.
type Store interface {
	Put(ctx context.Context, t *Token) error
	// Mutate invokes fn with the stored token, or nil if the id is unknown,
	// while holding the entry's lock. When fn returns true the entry is
	// removed; otherwise any modification fn made is kept.
	Mutate(ctx context.Context, id string, fn func(t *Token) (remove bool)) error
	Delete(ctx context.Context, id string) error
	// DeleteExpired removes entries past their expiry. Best-effort memory
	// reclamation only; Verify never relies on it.
	DeleteExpired(ctx context.Context, now time.Time) (int, error)
}

type memoryStore struct {
	mu     sync.Mutex
	tokens map[string]*Token
}

func NewMemoryStore() Store {
	return &memoryStore{tokens: make(map[string]*Token)}
}

func (s *memoryStore) Put(ctx context.Context, t *Token) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *t
	s.tokens[t.ID] = &cp
	return nil
}

func (s *memoryStore) Mutate(ctx context.Context, id string, fn func(t *Token) bool) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.tokens[id]
	if fn(t) && t != nil {
		delete(s.tokens, id)
	}
	return nil
}

func (s *memoryStore) Delete(ctx context.Context, id string) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, id)
	return nil
}

func (s *memoryStore) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, t := range s.tokens {
		if !now.Before(t.ExpiresAt) {
			delete(s.tokens, id)
			removed++
		}
	}
	return removed, nil
}
