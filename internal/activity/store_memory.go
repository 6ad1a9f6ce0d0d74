package activity

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"ardhi/pkg/domain"
)

// InMemoryStore keeps the trail in a slice guarded by an RWMutex. Appends
// go to the end; reads copy and sort newest first.
type InMemoryStore struct {
	mu      sync.RWMutex
	records []Record
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

func (s *InMemoryStore) Append(_ context.Context, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, rec)
	return nil
}

func (s *InMemoryStore) ListAll(_ context.Context) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortDescending(append([]Record{}, s.records...)), nil
}

func (s *InMemoryStore) ListByActor(_ context.Context, actorID domain.UserID) ([]Record, error) {
	return s.filtered(func(r Record) bool { return r.ActorUserID == actorID })
}

func (s *InMemoryStore) ListByDocument(_ context.Context, documentID domain.DocumentID) ([]Record, error) {
	return s.filtered(func(r Record) bool {
		return r.Metadata.DocumentID != nil && *r.Metadata.DocumentID == documentID
	})
}

func (s *InMemoryStore) ListByRange(_ context.Context, start, end time.Time) ([]Record, error) {
	return s.filtered(func(r Record) bool {
		return !r.Timestamp.Before(start) && !r.Timestamp.After(end)
	})
}

func (s *InMemoryStore) ListByKind(_ context.Context, kind Kind) ([]Record, error) {
	return s.filtered(func(r Record) bool { return r.Kind == kind })
}

func (s *InMemoryStore) filtered(keep func(Record) bool) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Record
	for _, r := range s.records {
		if keep(r) {
			out = append(out, r)
		}
	}
	return sortDescending(out), nil
}

func sortDescending(records []Record) []Record {
	sort.Slice(records, func(i, j int) bool {
		if !records[i].Timestamp.Equal(records[j].Timestamp) {
			return records[i].Timestamp.After(records[j].Timestamp)
		}
		// Time-ordered ids break same-timestamp ties: later append wins.
		return uuid.UUID(records[i].ID).String() > uuid.UUID(records[j].ID).String()
	})
	return records
}
