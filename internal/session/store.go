package session

import (
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// Record is a short-lived per-identity session record. Flags that the old
// flow kept in ambient framework state live here with an explicit expiry.
type Record struct {
	UserID    uuid.UUID
	NewUser   bool
	CreatedAt time.Time
}

// Store keeps session records in process memory with TTL eviction.
type Store struct {
	c   *cache.Cache
	ttl time.Duration
}

func NewStore(ttl time.Duration) *Store {
	return &Store{
		c:   cache.New(ttl, 10*time.Minute),
		ttl: ttl,
	}
}

func (s *Store) Get(userID uuid.UUID) (*Record, bool) {
	v, ok := s.c.Get(userID.String())
	if !ok {
		return nil, false
	}
	rec := v.(Record)
	return &rec, true
}

func (s *Store) Put(rec Record) {
	rec.CreatedAt = time.Now()
	s.c.Set(rec.UserID.String(), rec, s.ttl)
}

// ClearNewUser drops the new-user prompt flag, keeping the record alive.
func (s *Store) ClearNewUser(userID uuid.UUID) {
	rec, ok := s.Get(userID)
	if !ok {
		return
	}
	rec.NewUser = false
	s.c.Set(userID.String(), *rec, s.ttl)
}

func (s *Store) Delete(userID uuid.UUID) {
	s.c.Delete(userID.String())
}

// IsNewUser reports whether the identity still carries the prompt flag.
func (s *Store) IsNewUser(userID uuid.UUID) bool {
	rec, ok := s.Get(userID)
	return ok && rec.NewUser
}
