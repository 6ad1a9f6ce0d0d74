package user

import (
	"context"
	"sort"
	"strings"
	"sync"

	"ardhi/pkg/domain"
	"ardhi/pkg/platform/sentinel"
)

// InMemoryStore keeps users in a map guarded by an RWMutex. It favors
// clarity over performance and backs tests and zero-infrastructure dev.
type InMemoryStore struct {
	mu    sync.RWMutex
	users map[domain.UserID]User
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{users: make(map[domain.UserID]User)}
}

func (s *InMemoryStore) Create(_ context.Context, u User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	lowered := strings.ToLower(u.Email)
	for _, existing := range s.users {
		if strings.ToLower(existing.Email) == lowered {
			return sentinel.ErrAlreadyUsed
		}
	}
	s.users[u.ID] = u
	return nil
}

func (s *InMemoryStore) Save(_ context.Context, u User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[u.ID]; !ok {
		return sentinel.ErrNotFound
	}
	s.users[u.ID] = u
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, id domain.UserID) (User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if u, ok := s.users[id]; ok {
		return u, nil
	}
	return User{}, sentinel.ErrNotFound
}

func (s *InMemoryStore) FindByEmail(_ context.Context, email string) (User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	lowered := strings.ToLower(email)
	for _, u := range s.users {
		if strings.ToLower(u.Email) == lowered {
			return u, nil
		}
	}
	return User{}, sentinel.ErrNotFound
}

func (s *InMemoryStore) List(_ context.Context) ([]User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].DateJoined.After(out[j].DateJoined)
	})
	return out, nil
}
