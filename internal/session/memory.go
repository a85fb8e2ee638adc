package session

import (
	"context"
	"sync"

	"github.com/dukahub/storefront/internal/domain"
	"github.com/google/uuid"
)

// MemoryStore implements Store with in-memory storage, one instance
// per storefront session.
type MemoryStore struct {
	mu     sync.RWMutex
	creds  Credentials
	guest  string
	mirror *domain.Cart
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Credentials(context.Context) (Credentials, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.creds, nil
}

func (s *MemoryStore) SetCredentials(_ context.Context, creds Credentials) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creds = creds
	return nil
}

func (s *MemoryStore) Token(context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.creds.AccessToken, nil
}

func (s *MemoryStore) GuestID(context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.guest == "" {
		s.guest = uuid.NewString()
	}
	return s.guest, nil
}

func (s *MemoryStore) SaveCartMirror(_ context.Context, cart *domain.Cart) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mirror = cart.Clone()
	return nil
}

func (s *MemoryStore) LoadCartMirror(context.Context) (*domain.Cart, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.mirror == nil {
		return nil, ErrNotFound
	}
	return s.mirror.Clone(), nil
}

// Clear resets everything under one lock, so a concurrent reader sees
// either the full credential set or none of it.
func (s *MemoryStore) Clear(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creds = Credentials{}
	s.guest = ""
	s.mirror = nil
	return nil
}
