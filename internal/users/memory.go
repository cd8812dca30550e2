package users

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// MemoryRepository is a process-local Repository for demos and tests.
type MemoryRepository struct {
	mu    sync.RWMutex
	users map[uuid.UUID]User
}

// NewMemoryRepository returns an empty repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{users: make(map[uuid.UUID]User)}
}

func (m *MemoryRepository) Create(_ context.Context, u User) error {
	if err := u.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[u.ID]; ok {
		return ErrAlreadyExists
	}
	for _, existing := range m.users {
		if existing.WalletAddress == u.WalletAddress {
			return ErrAlreadyExists
		}
	}
	m.users[u.ID] = u
	return nil
}

func (m *MemoryRepository) GetByID(_ context.Context, id uuid.UUID) (User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.users[id]
	if !ok {
		return User{}, ErrNotFound
	}
	return u, nil
}

func (m *MemoryRepository) GetByWallet(_ context.Context, wallet string) (User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, u := range m.users {
		if u.WalletAddress == wallet {
			return u, nil
		}
	}
	return User{}, ErrNotFound
}

func (m *MemoryRepository) Update(_ context.Context, u User) error {
	if err := u.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[u.ID]; !ok {
		return ErrNotFound
	}
	for id, existing := range m.users {
		if id != u.ID && existing.WalletAddress == u.WalletAddress {
			return ErrAlreadyExists
		}
	}
	m.users[u.ID] = u
	return nil
}
