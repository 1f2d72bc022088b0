// Package memory provides in-memory store adapters. Data is lost on
// restart; intended for tests and local development.
package memory

import (
	"context"
	"maps"
	"sync"

	"github.com/google/uuid"
	"github.com/wolfeidau/tenantd/internal/models"
	"github.com/wolfeidau/tenantd/internal/store"
)

// UserStore implements store.UserStore using in-memory storage.
type UserStore struct {
	mu sync.RWMutex

	users map[uuid.UUID]*models.User
}

// NewUserStore creates a new in-memory user store.
func NewUserStore() *UserStore {
	return &UserStore{
		users: make(map[uuid.UUID]*models.User),
	}
}

// Insert creates a new user in memory.
func (s *UserStore) Insert(ctx context.Context, op *models.OperationContext, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[user.ID]; exists {
		return store.ErrUserAlreadyExists
	}
	for _, existing := range s.users {
		if existing.ExternalID == user.ExternalID && !existing.IsDeleted() {
			return store.ErrUserAlreadyExists
		}
	}

	s.users[user.ID] = cloneUser(user)
	return nil
}

// Update updates an existing user.
func (s *UserStore) Update(ctx context.Context, op *models.OperationContext, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[user.ID]; !exists {
		return store.ErrUserNotFound
	}
	s.users[user.ID] = cloneUser(user)
	return nil
}

// Delete removes a user record.
func (s *UserStore) Delete(ctx context.Context, op *models.OperationContext, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[id]; !exists {
		return store.ErrUserNotFound
	}
	delete(s.users, id)
	return nil
}

// FindByID retrieves a user by ID.
func (s *UserStore) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, exists := s.users[id]
	if !exists {
		return nil, store.ErrUserNotFound
	}
	return cloneUser(user), nil
}

// FindByExternalID retrieves the live user linked to an auth provider subject.
func (s *UserStore) FindByExternalID(ctx context.Context, externalID string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, user := range s.users {
		if user.ExternalID == externalID && !user.IsDeleted() {
			return cloneUser(user), nil
		}
	}
	return nil, store.ErrUserNotFound
}

// Snapshot captures the store's state for transactional rollback.
func (s *UserStore) Snapshot() any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := make(map[uuid.UUID]*models.User, len(s.users))
	for id, user := range s.users {
		snap[id] = cloneUser(user)
	}
	return snap
}

// Restore replaces the store's state with a snapshot taken earlier.
func (s *UserStore) Restore(snapshot any) {
	snap, ok := snapshot.(map[uuid.UUID]*models.User)
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.users = snap
}

// cloneUser copies the record to avoid external modifications leaking in.
func cloneUser(u *models.User) *models.User {
	clone := *u
	clone.Custom = maps.Clone(u.Custom)
	return &clone
}
