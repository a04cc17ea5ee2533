package store

import (
	"context"
	"strings"
	"sync"
	"time"

	"eventlift/internal/registration"
	"eventlift/pkg/domain"
	"eventlift/pkg/platform/sentinel"
)

// InMemory keeps pending registrations in process memory. Expiry is driven
// by the reaper calling DeleteExpired; readers still re-check TTL.
type InMemory struct {
	mu      sync.RWMutex
	byEmail map[string]*registration.PendingRegistration
	byID    map[domain.PendingID]string
}

func NewInMemory() *InMemory {
	return &InMemory{
		byEmail: make(map[string]*registration.PendingRegistration),
		byID:    make(map[domain.PendingID]string),
	}
}

func emailKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *InMemory) Replace(_ context.Context, pending *registration.PendingRegistration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := emailKey(pending.Email)
	if prev, ok := s.byEmail[key]; ok {
		delete(s.byID, prev.ID)
	}
	s.byEmail[key] = pending.Clone()
	s.byID[pending.ID] = key
	return nil
}

func (s *InMemory) FindByEmail(_ context.Context, email string) (*registration.PendingRegistration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if pending, ok := s.byEmail[emailKey(email)]; ok {
		return pending.Clone(), nil
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemory) FindByID(_ context.Context, id domain.PendingID) (*registration.PendingRegistration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if key, ok := s.byID[id]; ok {
		return s.byEmail[key].Clone(), nil
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemory) Delete(_ context.Context, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := emailKey(email)
	pending, ok := s.byEmail[key]
	if !ok {
		return sentinel.ErrNotFound
	}
	delete(s.byEmail, key)
	delete(s.byID, pending.ID)
	return nil
}

func (s *InMemory) DeleteExpired(_ context.Context, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for key, pending := range s.byEmail {
		if pending.Expired(now) {
			delete(s.byEmail, key)
			delete(s.byID, pending.ID)
			removed++
		}
	}
	return removed, nil
}
