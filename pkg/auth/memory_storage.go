package auth

import (
	"context"
	"maps"
	"sync"

	"github.com/google/uuid"

	"github.com/conciergehq/platform/pkg/plans"
)

// memoryStorage implements Storage with mutex-protected maps. Used in
// tests and local development; the conditional-increment semantics match
// the document-store implementation exactly.
type memoryStorage struct {
	mu       sync.RWMutex
	accounts map[uuid.UUID]*Account
	byEmail  map[string]uuid.UUID
}

// NewMemoryStorage returns an empty in-memory account Storage.
func NewMemoryStorage() Storage {
	return &memoryStorage{
		accounts: make(map[uuid.UUID]*Account),
		byEmail:  make(map[string]uuid.UUID),
	}
}

func (s *memoryStorage) CreateAccount(ctx context.Context, acc *Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byEmail[acc.Email]; exists {
		return ErrEmailAlreadyExists
	}

	stored := cloneAccount(acc)
	s.accounts[acc.ID] = stored
	s.byEmail[acc.Email] = acc.ID
	return nil
}

func (s *memoryStorage) GetAccountByID(ctx context.Context, id uuid.UUID) (*Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	acc, ok := s.accounts[id]
	if !ok {
		return nil, ErrAccountNotFound
	}
	return cloneAccount(acc), nil
}

func (s *memoryStorage) GetAccountByEmail(ctx context.Context, email string) (*Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[email]
	if !ok {
		return nil, ErrAccountNotFound
	}
	return cloneAccount(s.accounts[id]), nil
}

// ConsumeUsage performs the check-and-increment under a single lock
// acquisition, mirroring the atomic conditional update of the document
// store. Two concurrent calls racing at quota-1 admit exactly one.
func (s *memoryStorage) ConsumeUsage(ctx context.Context, id uuid.UUID, feature plans.Feature, quota int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acc, ok := s.accounts[id]
	if !ok {
		return 0, ErrAccountNotFound
	}

	current := acc.Usage[feature]
	if quota != plans.Unlimited && current >= quota {
		return 0, ErrQuotaExceeded
	}

	if acc.Usage == nil {
		acc.Usage = make(map[plans.Feature]int64)
	}
	acc.Usage[feature] = current + 1
	return current + 1, nil
}

func cloneAccount(acc *Account) *Account {
	cp := *acc
	cp.Usage = maps.Clone(acc.Usage)
	cp.PasswordHash = append([]byte(nil), acc.PasswordHash...)
	return &cp
}
