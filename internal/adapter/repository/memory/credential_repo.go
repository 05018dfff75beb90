package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/Abdurahmanit/GroupProject/estate-service/internal/estate/domain"
	"github.com/Abdurahmanit/GroupProject/estate-service/internal/identity"
	"github.com/google/uuid"
)

// CredentialStore keeps the accounts of one role.
type CredentialStore struct {
	role     domain.Role
	mu       sync.RWMutex
	accounts map[string]*identity.Account
}

func NewCredentialStore(role domain.Role) *CredentialStore {
	return &CredentialStore{role: role, accounts: make(map[string]*identity.Account)}
}

func (s *CredentialStore) Create(ctx context.Context, acc *identity.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.accounts {
		if existing.Email == acc.Email {
			return fmt.Errorf("%w: %s account %s already exists", domain.ErrConflict, s.role, acc.Email)
		}
	}
	acc.ID = uuid.NewString()
	acc.Role = s.role
	cp := *acc
	s.accounts[acc.ID] = &cp
	return nil
}

func (s *CredentialStore) FindByEmail(ctx context.Context, email string) (*identity.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, acc := range s.accounts {
		if acc.Email == email {
			cp := *acc
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("%w: %s account %s", domain.ErrNotFound, s.role, email)
}

func (s *CredentialStore) FindByID(ctx context.Context, id string) (*identity.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	acc, ok := s.accounts[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s account %s", domain.ErrNotFound, s.role, id)
	}
	cp := *acc
	return &cp, nil
}

func (s *CredentialStore) SetStatus(ctx context.Context, id string, status identity.AccountStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.accounts[id]
	if !ok {
		return fmt.Errorf("%w: %s account %s", domain.ErrNotFound, s.role, id)
	}
	acc.Status = status
	return nil
}

func (s *CredentialStore) List(ctx context.Context, status identity.AccountStatus) ([]*identity.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*identity.Account, 0, len(s.accounts))
	for _, acc := range s.accounts {
		if status != "" && acc.Status != status {
			continue
		}
		cp := *acc
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}
