package document

import (
	"context"
	"sort"
	"sync"

	"ardhi/pkg/domain"
	"ardhi/pkg/platform/sentinel"
)

// InMemoryStore keeps documents in a map guarded by an RWMutex, backing
// tests and zero-infrastructure dev.
type InMemoryStore struct {
	mu   sync.RWMutex
	docs map[domain.DocumentID]Document
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{docs: make(map[domain.DocumentID]Document)}
}

func (s *InMemoryStore) Create(_ context.Context, doc Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[doc.ID] = doc
	return nil
}

func (s *InMemoryStore) Save(_ context.Context, doc Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[doc.ID]; !ok {
		return sentinel.ErrNotFound
	}
	s.docs[doc.ID] = doc
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, id domain.DocumentID) (Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if doc, ok := s.docs[id]; ok {
		return doc, nil
	}
	return Document{}, sentinel.ErrNotFound
}

func (s *InMemoryStore) ListByProperty(_ context.Context, propertyID domain.PropertyID) ([]Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Document, 0)
	for _, doc := range s.docs {
		if doc.PropertyID == propertyID {
			out = append(out, doc)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].UploadedAt.Equal(out[j].UploadedAt) {
			return out[i].ID.String() < out[j].ID.String()
		}
		return out[i].UploadedAt.Before(out[j].UploadedAt)
	})
	return out, nil
}

func (s *InMemoryStore) Delete(_ context.Context, id domain.DocumentID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[id]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.docs, id)
	return nil
}

func (s *InMemoryStore) DeleteByProperty(_ context.Context, propertyID domain.PropertyID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, doc := range s.docs {
		if doc.PropertyID == propertyID {
			delete(s.docs, id)
		}
	}
	return nil
}

func (s *InMemoryStore) CountPendingByProperties(_ context.Context, propertyIDs []domain.PropertyID) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	wanted := make(map[domain.PropertyID]struct{}, len(propertyIDs))
	for _, id := range propertyIDs {
		wanted[id] = struct{}{}
	}
	count := 0
	for _, doc := range s.docs {
		if _, ok := wanted[doc.PropertyID]; ok && doc.Status == StatusPending {
			count++
		}
	}
	return count, nil
}
