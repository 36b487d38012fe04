package dedupe

import (
	"context"
	"sync"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Persister is the slice of the persistence layer the dedupe store
// needs: durable storage for the full seen-URL set.
type Persister interface {
	ListSeenURLs(ctx context.Context) ([]string, error)
	ReplaceSeenURLs(ctx context.Context, urls []string) error
}

// Store is the in-memory set of seen normalized profile URLs. All
// mutation is serialized through its mutex; IsDuplicate always answers
// from memory regardless of flush timing. Persistence is write-through
// but batched: callers invoke Flush after a batch of insertions.
type Store struct {
	mu        sync.Mutex
	seen      map[string]struct{}
	persister Persister
	dirty     bool
}

// NewStore creates an empty dedupe store. persister may be nil, in which
// case Flush is a no-op (useful in tests).
func NewStore(persister Persister) *Store {
	return &Store{
		seen:      make(map[string]struct{}),
		persister: persister,
	}
}

// Load seeds the in-memory set from the persisted seen-URL collection.
func (s *Store) Load(ctx context.Context) error {
	if s.persister == nil {
		return nil
	}
	urls, err := s.persister.ListSeenURLs(ctx)
	if err != nil {
		return eris.Wrap(err, "dedupe: load seen urls")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range urls {
		s.seen[NormalizeProfileURL(u)] = struct{}{}
	}
	zap.L().Debug("dedupe: loaded history", zap.Int("count", len(s.seen)))
	return nil
}

// IsDuplicate reports whether the normalized URL has been seen.
func (s *Store) IsDuplicate(normalizedURL string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.seen[normalizedURL]
	return ok
}

// MarkSeen records a normalized URL in the in-memory set.
func (s *Store) MarkSeen(normalizedURL string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.seen[normalizedURL]; !ok {
		s.seen[normalizedURL] = struct{}{}
		s.dirty = true
	}
}

// ImportExisting bulk-seeds the set from prior lead/contact URLs. The
// inputs are normalized here, so callers may pass raw profile URLs.
func (s *Store) ImportExisting(urls []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range urls {
		n := NormalizeProfileURL(u)
		if n == "" {
			continue
		}
		if _, ok := s.seen[n]; !ok {
			s.seen[n] = struct{}{}
			s.dirty = true
		}
	}
}

// Clear empties the set.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seen = make(map[string]struct{})
	s.dirty = true
}

// Count returns the number of seen URLs.
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.seen)
}

// Flush writes the full set through to the persister if anything
// changed since the last flush.
func (s *Store) Flush(ctx context.Context) error {
	if s.persister == nil {
		return nil
	}

	s.mu.Lock()
	if !s.dirty {
		s.mu.Unlock()
		return nil
	}
	urls := make([]string, 0, len(s.seen))
	for u := range s.seen {
		urls = append(urls, u)
	}
	s.mu.Unlock()

	if err := s.persister.ReplaceSeenURLs(ctx, urls); err != nil {
		return eris.Wrap(err, "dedupe: flush seen urls")
	}

	s.mu.Lock()
	s.dirty = false
	s.mu.Unlock()
	return nil
}
