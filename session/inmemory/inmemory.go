package inmemory

import (
	"context"
	"sync"
	"time"

	"github.com/intakehq/intake/session/sessionmodels"
)

// Store is the in-process session backend. Entries without a TTL persist
// until consumed or process restart.
type Store struct {
	mu      sync.Mutex
	records map[string]sessionmodels.Record
	ttl     time.Duration
}

func NewStore(ttl time.Duration) *Store {
	return &Store{records: make(map[string]sessionmodels.Record), ttl: ttl}
}

func (s *Store) Put(_ context.Context, requestID string, record sessionmodels.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[requestID] = record
	return nil
}

// Take removes the record before returning it, so a second Take with the
// same id misses.
func (s *Store) Take(_ context.Context, requestID string) (sessionmodels.Record, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.records[requestID]
	if !ok {
		return sessionmodels.Record{}, false, nil
	}
	delete(s.records, requestID)
	if s.ttl > 0 && time.Since(record.CreatedAt) > s.ttl {
		return sessionmodels.Record{}, false, nil
	}
	return record, true, nil
}
