package property

import (
	"context"
	"sort"
	"sync"
	"time"

	"ardhi/pkg/domain"
	"ardhi/pkg/platform/sentinel"
)

// InMemoryStore keeps properties in a map guarded by an RWMutex, backing
// tests and zero-infrastructure dev.
type InMemoryStore struct {
	mu    sync.RWMutex
	props map[domain.PropertyID]Property
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{props: make(map[domain.PropertyID]Property)}
}

func (s *InMemoryStore) Create(_ context.Context, p Property) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.props[p.ID] = p
	return nil
}

func (s *InMemoryStore) Save(_ context.Context, p Property) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.props[p.ID]; !ok {
		return sentinel.ErrNotFound
	}
	s.props[p.ID] = p
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, id domain.PropertyID) (Property, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if p, ok := s.props[id]; ok {
		return p, nil
	}
	return Property{}, sentinel.ErrNotFound
}

func (s *InMemoryStore) ListByOwner(_ context.Context, ownerID domain.UserID) ([]Property, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Property, 0)
	for _, p := range s.props {
		if p.UserID == ownerID {
			out = append(out, p)
		}
	}
	sortNewestFirst(out)
	return out, nil
}

func (s *InMemoryStore) List(_ context.Context) ([]Property, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Property, 0, len(s.props))
	for _, p := range s.props {
		out = append(out, p)
	}
	sortNewestFirst(out)
	return out, nil
}

func (s *InMemoryStore) Delete(_ context.Context, id domain.PropertyID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.props[id]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.props, id)
	return nil
}

func (s *InMemoryStore) Transition(_ context.Context, id domain.PropertyID, from, to Status, updatedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.props[id]
	if !ok {
		return sentinel.ErrNotFound
	}
	if p.Status != from {
		return sentinel.ErrInvalidState
	}
	p.Status = to
	p.UpdatedAt = updatedAt
	s.props[id] = p
	return nil
}

func sortNewestFirst(props []Property) {
	sort.Slice(props, func(i, j int) bool {
		if props[i].CreatedAt.Equal(props[j].CreatedAt) {
			return props[i].ID.String() > props[j].ID.String()
		}
		return props[i].CreatedAt.After(props[j].CreatedAt)
	})
}
