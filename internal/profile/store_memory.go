package profile

import (
	"context"
	"sync"

	"eventlift/pkg/domain"
	"eventlift/pkg/platform/sentinel"
)

// Store persists profile projections. The identity back-reference is unique
// across all three record kinds: an identity has at most one profile.
type Store interface {
	CreateClub(ctx context.Context, p *ClubProfile) error
	CreateCompany(ctx context.Context, p *CompanyProfile) error
	CreateAlumni(ctx context.Context, p *AlumniProfile) error
	FindByUserID(ctx context.Context, id domain.UserID) (*Projection, error)
}

// InMemory keeps projections in process memory with uniqueness enforced
// under the store mutex.
type InMemory struct {
	mu       sync.RWMutex
	byUserID map[domain.UserID]*Projection
}

func NewInMemory() *InMemory {
	return &InMemory{byUserID: make(map[domain.UserID]*Projection)}
}

func (s *InMemory) CreateClub(_ context.Context, p *ClubProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byUserID[p.UserID]; ok {
		return sentinel.ErrConflict
	}
	cp := *p
	s.byUserID[p.UserID] = &Projection{Club: &cp}
	return nil
}

func (s *InMemory) CreateCompany(_ context.Context, p *CompanyProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byUserID[p.UserID]; ok {
		return sentinel.ErrConflict
	}
	cp := *p
	s.byUserID[p.UserID] = &Projection{Company: &cp}
	return nil
}

func (s *InMemory) CreateAlumni(_ context.Context, p *AlumniProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byUserID[p.UserID]; ok {
		return sentinel.ErrConflict
	}
	cp := *p
	s.byUserID[p.UserID] = &Projection{Alumni: &cp}
	return nil
}

func (s *InMemory) FindByUserID(_ context.Context, id domain.UserID) (*Projection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if proj, ok := s.byUserID[id]; ok {
		cp := *proj
		return &cp, nil
	}
	return nil, sentinel.ErrNotFound
}
