package identity

import (
	"testing"
	"time"

	"github.com/Abdurahmanit/GroupProject/estate-service/internal/estate/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	issuer := NewTokenIssuer("k", time.Hour, "estate")
	token, err := issuer.Issue(&Account{ID: "u1", Role: domain.RoleAgent})
	require.NoError(t, err)

	actor, err := issuer.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, domain.Actor{ID: "u1", Role: domain.RoleAgent}, actor)
}

func TestTokenRejected(t *testing.T) {
	issuer := NewTokenIssuer("k", time.Hour, "estate")
	token, err := issuer.Issue(&Account{ID: "u1", Role: domain.RoleSeller})
	require.NoError(t, err)

	_, err = NewTokenIssuer("other", time.Hour, "estate").Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = NewTokenIssuer("k", time.Hour, "someone-else").Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired := NewTokenIssuer("k", time.Hour, "estate")
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	old, err := expired.Issue(&Account{ID: "u1", Role: domain.RoleSeller})
	require.NoError(t, err)
	_, err = issuer.Parse(old)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = issuer.Parse("garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
