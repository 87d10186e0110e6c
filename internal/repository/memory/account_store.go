package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	domainErrors "github.com/piyushaneja30/licensing-portal/internal/domain/errors"
	"github.com/piyushaneja30/licensing-portal/internal/domain/models"
	"github.com/piyushaneja30/licensing-portal/internal/repository"
)

var _ repository.AccountRepository = (*AccountStore)(nil)

// AccountStore is an in-memory AccountRepository used by tests and
// database-less development runs.
type AccountStore struct {
	mu      sync.RWMutex
	byID    map[uuid.UUID]*models.Account
	byEmail map[string]uuid.UUID
}

func NewAccountStore() *AccountStore {
	return &AccountStore{
		byID:    make(map[uuid.UUID]*models.Account),
		byEmail: make(map[string]uuid.UUID),
	}
}

func (s *AccountStore) Create(_ context.Context, account *models.Account) error {
	key := strings.ToLower(account.Email)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byEmail[key]; exists {
		return domainErrors.ErrEmailExists
	}
	cp := *account
	s.byID[account.ID] = &cp
	s.byEmail[key] = account.ID
	return nil
}

func (s *AccountStore) GetByID(_ context.Context, id uuid.UUID) (*models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	account, ok := s.byID[id]
	if !ok {
		return nil, domainErrors.ErrAccountNotFound
	}
	cp := *account
	return &cp, nil
}

func (s *AccountStore) GetByEmail(_ context.Context, email string) (*models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, domainErrors.ErrAccountNotFound
	}
	cp := *s.byID[id]
	return &cp, nil
}

func (s *AccountStore) List(_ context.Context) ([]*models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	accounts := make([]*models.Account, 0, len(s.byID))
	for _, account := range s.byID {
		cp := *account
		accounts = append(accounts, &cp)
	}
	return accounts, nil
}

func (s *AccountStore) UpdateProfile(_ context.Context, id uuid.UUID, profile models.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	account, ok := s.byID[id]
	if !ok {
		return domainErrors.ErrAccountNotFound
	}
	account.Profile = profile
	account.UpdatedAt = time.Now()
	return nil
}

func (s *AccountStore) UpdatePasswordHash(_ context.Context, id uuid.UUID, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	account, ok := s.byID[id]
	if !ok {
		return domainErrors.ErrAccountNotFound
	}
	account.PasswordHash = hash
	account.UpdatedAt = time.Now()
	return nil
}
