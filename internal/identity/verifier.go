package identity

import (
	"context"
	"errors"
	"fmt"

	"github.com/Abdurahmanit/GroupProject/estate-service/internal/estate/domain"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = fmt.Errorf("%w: invalid email or password", domain.ErrAuthorization)
	ErrAccountNotApproved = fmt.Errorf("%w: account is not approved", domain.ErrAuthorization)
)

// CredentialVerifier checks a login attempt for one role.
type CredentialVerifier interface {
	Verify(ctx context.Context, email, password string) (*Account, error)
}

func checkPassword(ctx context.Context, store CredentialStore, email, password string) (*Account, error) {
	acc, err := store.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(acc.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return acc, nil
}

type sellerVerifier struct{ store CredentialStore }

func (v sellerVerifier) Verify(ctx context.Context, email, password string) (*Account, error) {
	acc, err := checkPassword(ctx, v.store, email, password)
	if err != nil {
		return nil, err
	}
	if acc.Status != StatusActive {
		return nil, ErrAccountNotApproved
	}
	return acc, nil
}

// agentVerifier admits only agents an administrator approved.
type agentVerifier struct{ store CredentialStore }

func (v agentVerifier) Verify(ctx context.Context, email, password string) (*Account, error) {
	acc, err := checkPassword(ctx, v.store, email, password)
	if err != nil {
		return nil, err
	}
	if acc.Status != StatusApproved {
		return nil, ErrAccountNotApproved
	}
	return acc, nil
}

type adminVerifier struct{ store CredentialStore }

func (v adminVerifier) Verify(ctx context.Context, email, password string) (*Account, error) {
	return checkPassword(ctx, v.store, email, password)
}
