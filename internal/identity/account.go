// Package identity resolves credentials into actors. Each role of the closed
// set {seller, agent, admin} owns its credential store and verification path.
package identity

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/Abdurahmanit/GroupProject/estate-service/internal/estate/domain"
)

type AccountStatus string

const (
	StatusActive   AccountStatus = "active"
	StatusPending  AccountStatus = "pending"
	StatusApproved AccountStatus = "approved"
	StatusRejected AccountStatus = "rejected"
)

// Account is a stored credential of one role.
type Account struct {
	ID           string
	Role         domain.Role
	Name         string
	Email        string
	Phone        string
	PasswordHash string
	Status       AccountStatus
	CreatedAt    time.Time
}

// CredentialStore persists the accounts of a single role.
type CredentialStore interface {
	// Create sets the account ID. A duplicate email is domain.ErrConflict.
	Create(ctx context.Context, acc *Account) error
	FindByEmail(ctx context.Context, email string) (*Account, error)
	FindByID(ctx context.Context, id string) (*Account, error)
	SetStatus(ctx context.Context, id string, status AccountStatus) error
	// List returns the accounts in creation order. An empty status lists all.
	List(ctx context.Context, status AccountStatus) ([]*Account, error)
}

// ParseRole accepts only the roles that own credentials.
func ParseRole(s string) (domain.Role, error) {
	switch r := domain.Role(strings.ToLower(strings.TrimSpace(s))); r {
	case domain.RoleSeller, domain.RoleAgent, domain.RoleAdmin:
		return r, nil
	}
	return "", fmt.Errorf("%w: unknown role %q", domain.ErrValidation, s)
}

// RegisterInput holds the fields of a new account.
type RegisterInput struct {
	Name     string
	Email    string
	Phone    string
	Password string
}

const minPasswordLength = 6

func (in RegisterInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return fmt.Errorf("%w: name cannot be empty", domain.ErrValidation)
	}
	if _, err := mail.ParseAddress(in.Email); err != nil {
		return fmt.Errorf("%w: invalid email %q", domain.ErrValidation, in.Email)
	}
	if len(in.Password) < minPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", domain.ErrValidation, minPasswordLength)
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
