package otp

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// maxChallengeAttempts is how many wrong codes a challenge absorbs before it
// is dropped and a new one must be requested.
const maxChallengeAttempts = 5

// ChallengeStore keeps at most one pending challenge per account. Put replaces
// any earlier challenge, so only the newest code can succeed.
type ChallengeStore interface {
	Put(ctx context.Context, accountID uuid.UUID, codeHash string, ttl time.Duration) error
	// Consume deletes the challenge and reports true only if it exists, has
	// not expired and matches codeHash. A mismatch counts as a miss; the
	// challenge is deleted once it reaches maxChallengeAttempts misses.
	Consume(ctx context.Context, accountID uuid.UUID, codeHash string) (bool, error)
}

type challenge struct {
	codeHash  string
	expiresAt time.Time
	misses    int
}

// MemoryStore is a process-local ChallengeStore. Expired entries are dropped
// on access and by EvictExpired.
type MemoryStore struct {
	mu         sync.Mutex
	challenges map[uuid.UUID]challenge
	now        func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		challenges: make(map[uuid.UUID]challenge),
		now:        time.Now,
	}
}

func (s *MemoryStore) Put(_ context.Context, accountID uuid.UUID, codeHash string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.challenges[accountID] = challenge{codeHash: codeHash, expiresAt: s.now().Add(ttl)}
	return nil
}

func (s *MemoryStore) Consume(_ context.Context, accountID uuid.UUID, codeHash string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.challenges[accountID]
	if !ok {
		return false, nil
	}
	if !s.now().Before(c.expiresAt) {
		delete(s.challenges, accountID)
		return false, nil
	}
	if c.codeHash != codeHash {
		c.misses++
		if c.misses >= maxChallengeAttempts {
			delete(s.challenges, accountID)
		} else {
			s.challenges[accountID] = c
		}
		return false, nil
	}
	delete(s.challenges, accountID)
	return true, nil
}

// EvictExpired removes every challenge past its expiry and returns how many
// were dropped.
func (s *MemoryStore) EvictExpired(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	evicted := 0
	for id, c := range s.challenges {
		if !now.Before(c.expiresAt) {
			delete(s.challenges, id)
			evicted++
		}
	}
	return evicted, nil
}

func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.challenges)
}
