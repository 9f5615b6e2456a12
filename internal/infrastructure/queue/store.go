// Package queue implements the write-behind user-creation queue: an in-memory
// pending store fed by the request path and a background flusher that commits
// batches to durable storage.
package queue

import (
	"fmt"
	"sync"

	"github.com/microblog/user-api/internal/core/domain"
)

// PendingStore holds accepted-but-not-yet-persisted signups. Many request
// goroutines call Put concurrently; exactly one flusher calls DrainAll.
// A record added concurrently with a drain lands either in that snapshot or in
// the store afterwards, never both and never neither.
type PendingStore struct {
	mu      sync.Mutex
	records []domain.PendingUser
	index   map[string]struct{}
}

func NewPendingStore() *PendingStore {
	return &PendingStore{index: make(map[string]struct{})}
}

// Put inserts a new pending record. It is O(1), never blocks on the flusher,
// and fails only with domain.ErrDuplicatePendingID when the id is already
// queued. Ids are generated fresh per signup, so that failure is an assertion,
// not a business outcome.
func (s *PendingStore) Put(rec domain.PendingUser) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.index[rec.ID]; exists {
		return fmt.Errorf("pending store: %w: %s", domain.ErrDuplicatePendingID, rec.ID)
	}
	s.index[rec.ID] = struct{}{}
	s.records = append(s.records, rec)
	return nil
}

// DrainAll atomically returns every currently-held record in insertion order
// and empties the store. No I/O happens under the lock; persistence is the
// caller's job after the snapshot is taken.
func (s *PendingStore) DrainAll() []domain.PendingUser {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := s.records
	s.records = nil
	s.index = make(map[string]struct{})
	return out
}

// Requeue re-admits a drained snapshot after a failed commit. The snapshot is
// placed ahead of records enqueued in the meantime so the oldest signups are
// retried first.
func (s *PendingStore) Requeue(recs []domain.PendingUser) {
	if len(recs) == 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	merged := make([]domain.PendingUser, 0, len(recs)+len(s.records))
	merged = append(merged, recs...)
	merged = append(merged, s.records...)
	s.records = merged
	for _, rec := range recs {
		s.index[rec.ID] = struct{}{}
	}
}

// Len reports the number of records currently pending.
func (s *PendingStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}
