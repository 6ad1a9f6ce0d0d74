package transfer

import (
	"context"
	"sort"
	"sync"

	"ardhi/pkg/domain"
	"ardhi/pkg/platform/sentinel"
)

// InMemoryStore keeps transfer requests in a map guarded by an RWMutex.
type InMemoryStore struct {
	mu   sync.RWMutex
	reqs map[domain.TransferID]TransferRequest
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{reqs: make(map[domain.TransferID]TransferRequest)}
}

func (s *InMemoryStore) Create(_ context.Context, req TransferRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reqs[req.ID] = req
	return nil
}

func (s *InMemoryStore) Save(_ context.Context, req TransferRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.reqs[req.ID]; !ok {
		return sentinel.ErrNotFound
	}
	s.reqs[req.ID] = req
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, id domain.TransferID) (TransferRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if req, ok := s.reqs[id]; ok {
		return req, nil
	}
	return TransferRequest{}, sentinel.ErrNotFound
}

func (s *InMemoryStore) ListByProperty(_ context.Context, propertyID domain.PropertyID) ([]TransferRequest, error) {
	return s.filtered(func(req TransferRequest) bool { return req.PropertyID == propertyID }), nil
}

func (s *InMemoryStore) ListByUser(_ context.Context, userID domain.UserID) ([]TransferRequest, error) {
	return s.filtered(func(req TransferRequest) bool { return req.FromUserID == userID }), nil
}

func (s *InMemoryStore) List(_ context.Context) ([]TransferRequest, error) {
	return s.filtered(func(TransferRequest) bool { return true }), nil
}

func (s *InMemoryStore) CountOpenByProperty(_ context.Context, propertyID domain.PropertyID) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, req := range s.reqs {
		if req.PropertyID == propertyID && req.Status != StatusCompleted && req.Status != StatusRejected {
			count++
		}
	}
	return count, nil
}

func (s *InMemoryStore) DeleteByProperty(_ context.Context, propertyID domain.PropertyID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, req := range s.reqs {
		if req.PropertyID == propertyID {
			delete(s.reqs, id)
		}
	}
	return nil
}

func (s *InMemoryStore) filtered(keep func(TransferRequest) bool) []TransferRequest {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]TransferRequest, 0)
	for _, req := range s.reqs {
		if keep(req) {
			out = append(out, req)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID.String() > out[j].ID.String()
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}
