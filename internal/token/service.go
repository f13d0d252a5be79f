package token

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	mrand "math/rand"
	"time"
)

const (
	// TTL and MaxAttempts bound every token; both checks run lazily on
	// access, so a token past either limit is unreachable regardless of
	// whether the sweep job got to it first.
	TTL         = 10 * time.Minute
	MaxAttempts = 3
)

type Service struct {
	store Store
	ttl   time.Duration
	max   int
	now   func() time.Time
}

func NewService(store Store) *Service {
	return &Service{store: store, ttl: TTL, max: MaxAttempts, now: time.Now}
}

// Issue creates a pending token for the flow. The returned Code travels
// out-of-band (email); the ID is the caller's handle for Verify/Discard.
func (s *Service) Issue(ctx context.Context, kind Kind, payload Payload) (*Token, error) {
	now := s.now()
	t := &Token{
		ID:        newTokenID(),
		Kind:      kind,
		Code:      generateCode(),
		Payload:   payload,
		Attempts:  0,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
	if err := s.store.Put(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// Verify runs the whole check/compare/count sequence atomically per id, so
// a double-submit cannot both pass nor both consume the last attempt. Every
// terminal outcome deletes the token; only a wrong code with attempts left
// keeps it alive.
func (s *Service) Verify(ctx context.Context, id, suppliedCode string) (Result, error) {
	result := Result{Outcome: OutcomeNotFound}
	err := s.store.Mutate(ctx, id, func(t *Token) bool {
		if t == nil {
			return false
		}
		if !s.now().Before(t.ExpiresAt) {
			result = Result{Outcome: OutcomeExpired}
			return true
		}
		if t.Attempts >= s.max {
			result = Result{Outcome: OutcomeAttemptsExhausted}
			return true
		}
		if suppliedCode != t.Code {
			t.Attempts++
			if t.Attempts >= s.max {
				result = Result{Outcome: OutcomeAttemptsExhausted}
				return true
			}
			result = Result{Outcome: OutcomeWrongCode, Remaining: s.max - t.Attempts}
			return false
		}
		result = Result{Outcome: OutcomeSuccess, Kind: t.Kind, Payload: t.Payload}
		return true
	})
	if err != nil {
		return Result{}, err
	}
	return result, nil
}

// Discard drops a token whose dependent flow failed after a successful
// Verify, so the id cannot be replayed.
func (s *Service) Discard(ctx context.Context, id string) error {
	return s.store.Delete(ctx, id)
}

// Sweep reclaims expired entries. Correctness never depends on it running.
func (s *Service) Sweep(ctx context.Context) (int, error) {
	return s.store.DeleteExpired(ctx, s.now())
}

func newTokenID() string {
	bytes := make([]byte, 32)
	_, _ = rand.Read(bytes)
	return hex.EncodeToString(bytes)
}

func generateCode() string {
	return fmt.Sprintf("%06d", mrand.Intn(1000000))
}
