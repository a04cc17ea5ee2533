package store

import (
	"context"
	"sort"
	"strings"
	"sync"

	"eventlift/internal/identity"
	"eventlift/pkg/domain"
	"eventlift/pkg/platform/sentinel"
)

// InMemory keeps the dev and test implementation lightweight. Uniqueness is
// enforced under the store mutex, so concurrent creates for one email
// serialize here exactly as they would against the postgres constraint.
type InMemory struct {
	mu      sync.RWMutex
	byID    map[domain.UserID]*identity.Identity
	byEmail map[string]domain.UserID
}

func NewInMemory() *InMemory {
	return &InMemory{
		byID:    make(map[domain.UserID]*identity.Identity),
		byEmail: make(map[string]domain.UserID),
	}
}

func emailKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *InMemory) Create(_ context.Context, ident *identity.Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := emailKey(ident.Email)
	if _, exists := s.byEmail[key]; exists {
		return sentinel.ErrConflict
	}
	s.byID[ident.ID] = ident.Clone()
	s.byEmail[key] = ident.ID
	return nil
}

func (s *InMemory) FindByID(_ context.Context, id domain.UserID) (*identity.Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if ident, ok := s.byID[id]; ok {
		return ident.Clone(), nil
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemory) FindByEmail(_ context.Context, email string) (*identity.Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if id, ok := s.byEmail[emailKey(email)]; ok {
		return s.byID[id].Clone(), nil
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemory) Update(_ context.Context, ident *identity.Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[ident.ID]; !ok {
		return sentinel.ErrNotFound
	}
	s.byID[ident.ID] = ident.Clone()
	return nil
}

func (s *InMemory) List(_ context.Context) ([]*identity.Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*identity.Identity, 0, len(s.byID))
	for _, ident := range s.byID {
		out = append(out, ident.Clone())
	}
	sortByCreation(out)
	return out, nil
}

func (s *InMemory) ListByStatus(_ context.Context, status domain.ApprovalStatus) ([]*identity.Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*identity.Identity
	for _, ident := range s.byID {
		if ident.ApprovalStatus == status {
			out = append(out, ident.Clone())
		}
	}
	sortByCreation(out)
	return out, nil
}

func sortByCreation(idents []*identity.Identity) {
	sort.Slice(idents, func(i, j int) bool {
		if idents[i].CreatedAt.Equal(idents[j].CreatedAt) {
			return idents[i].Email < idents[j].Email
		}
		return idents[i].CreatedAt.Before(idents[j].CreatedAt)
	})
}
