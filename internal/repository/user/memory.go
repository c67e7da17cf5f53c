package user

import (
	"context"
	"strings"
	"sync"
	"time"

	"plugdrop/internal/domain"

	"github.com/google/uuid"
)

// Memory is the mock-data account store.
type Memory struct {
	mu      sync.RWMutex
	byID    map[string]domain.User
	idByKey map[string]string // lowercase username -> id
}

func NewMemory() *Memory {
	return &Memory{
		byID:    make(map[string]domain.User),
		idByKey: make(map[string]string),
	}
}

func (m *Memory) Create(_ context.Context, u domain.User) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := strings.ToLower(u.Username)
	if _, ok := m.idByKey[key]; ok {
		return nil, domain.ErrAlreadyExists
	}
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	u.Username = key
	m.byID[u.ID] = u
	m.idByKey[key] = u.ID
	cp := u
	return &cp, nil
}

func (m *Memory) GetByID(_ context.Context, id string) (*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := u
	return &cp, nil
}

func (m *Memory) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.idByKey[strings.ToLower(username)]
	if !ok {
		return nil, domain.ErrNotFound
	}
	u := m.byID[id]
	cp := u
	return &cp, nil
}

var _ Repository = (*Memory)(nil)
