package memory

import (
	"context"
	"sync"
)

// Store is an in-process quota counter. It satisfies the atomic
// contract for a single process only; multi-worker deployments need
// the firestore or sqlite backends.
type Store struct {
	mu     sync.Mutex
	counts map[string]int
}

func NewStore() *Store {
	return &Store{
		counts: make(map[string]int),
	}
}

func key(userID, day string) string {
	return userID + "/" + day
}

func (s *Store) IncrementAndGet(_ context.Context, userID, day string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := key(userID, day)
	s.counts[k]++
	return s.counts[k], nil
}

func (s *Store) Get(_ context.Context, userID, day string) (int, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	count, ok := s.counts[key(userID, day)]
	return count, ok, nil
}
