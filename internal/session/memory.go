package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

type memoryEntry struct {
	claims    Claims
	expiresAt time.Time
}

// MemoryStore keeps sessions in a mutex-guarded process-local map. Expired
// entries are dropped on access only; there is no background sweeper, so
// abandoned sessions occupy memory until the process restarts. Correct for
// a single serving process, use RedisStore for anything shared.
type MemoryStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]memoryEntry
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		ttl:     ttl,
		entries: make(map[string]memoryEntry),
	}
}

func (s *MemoryStore) Create(_ context.Context, claims *Claims) (string, error) {
	id := uuid.NewString()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[id] = memoryEntry{
		claims:    cloneClaims(claims),
		expiresAt: time.Now().Add(s.ttl),
	}

	return id, nil
}

func (s *MemoryStore) Resolve(_ context.Context, id string) (*Claims, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[id]
	if !ok {
		return nil, ErrNotFound
	}
	if time.Now().After(entry.expiresAt) {
		delete(s.entries, id)
		return nil, ErrNotFound
	}

	claims := cloneClaims(&entry.claims)
	return &claims, nil
}

// Save replaces the claims without extending the entry's lifetime
func (s *MemoryStore) Save(_ context.Context, id string, claims *Claims) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[id]
	if !ok || time.Now().After(entry.expiresAt) {
		delete(s.entries, id)
		return ErrNotFound
	}

	entry.claims = cloneClaims(claims)
	s.entries[id] = entry
	return nil
}

func (s *MemoryStore) Revoke(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, id)
	return nil
}

// cloneClaims copies the claims so callers and the store never alias the
// same flash slice
func cloneClaims(claims *Claims) Claims {
	out := Claims{UserID: claims.UserID}
	if len(claims.Flashes) > 0 {
		out.Flashes = append([]string(nil), claims.Flashes...)
	}
	return out
}
