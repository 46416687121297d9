package repository

import (
	"context"
	"sync"

	"agendador/internal/domain"
	"agendador/internal/models"
)

// MemoryUserStore backs the snapshot and memory storage modes, where no
// SQL database is around. Accounts live for the lifetime of the process.
type MemoryUserStore struct {
	mu      sync.RWMutex
	byID    map[string]models.User
	byEmail map[string]string
}

func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{
		byID:    make(map[string]models.User),
		byEmail: make(map[string]string),
	}
}

func (s *MemoryUserStore) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return &user, nil
}

func (s *MemoryUserStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byEmail[email]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	user := s.byID[id]
	return &user, nil
}

func (s *MemoryUserStore) CreateUser(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byEmail[user.Email]; ok {
		return domain.ErrUserExists
	}
	if _, ok := s.byID[user.ID]; ok {
		return domain.ErrUserExists
	}
	s.byID[user.ID] = *user
	s.byEmail[user.Email] = user.ID
	return nil
}
