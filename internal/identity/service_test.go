package identity_test

import (
	"context"
	"testing"
	"time"

	"github.com/Abdurahmanit/GroupProject/estate-service/internal/adapter/repository/memory"
	"github.com/Abdurahmanit/GroupProject/estate-service/internal/estate/domain"
	"github.com/Abdurahmanit/GroupProject/estate-service/internal/identity"
	"github.com/Abdurahmanit/GroupProject/estate-service/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService() *identity.Service {
	stores := identity.Stores{
		Sellers: memory.NewCredentialStore(domain.RoleSeller),
		Agents:  memory.NewCredentialStore(domain.RoleAgent),
		Admins:  memory.NewCredentialStore(domain.RoleAdmin),
	}
	return identity.NewService(stores, identity.NewTokenIssuer("test-secret", time.Hour, "estate-test"), logger.NewNop())
}

var admin = domain.Actor{ID: "admin-1", Role: domain.RoleAdmin}

func TestSellerRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	svc := newService()

	acc, err := svc.RegisterSeller(ctx, identity.RegisterInput{Name: "Dana", Email: "Dana@Example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "dana@example.com", acc.Email)

	_, err = svc.RegisterSeller(ctx, identity.RegisterInput{Name: "Dana", Email: "dana@example.com", Password: "secret1"})
	assert.ErrorIs(t, err, domain.ErrConflict)

	token, logged, err := svc.Login(ctx, domain.RoleSeller, "dana@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, acc.ID, logged.ID)

	actor, err := svc.Tokens().Parse(token)
	require.NoError(t, err)
	assert.Equal(t, domain.Actor{ID: acc.ID, Role: domain.RoleSeller}, actor)

	_, _, err = svc.Login(ctx, domain.RoleSeller, "dana@example.com", "wrong-pass")
	assert.ErrorIs(t, err, identity.ErrInvalidCredentials)
	assert.ErrorIs(t, err, domain.ErrAuthorization)

	_, _, err = svc.Login(ctx, domain.RoleAgent, "dana@example.com", "secret1")
	assert.ErrorIs(t, err, identity.ErrInvalidCredentials, "seller credentials are not agent credentials")
}

func TestRegisterValidation(t *testing.T) {
	svc := newService()
	_, err := svc.RegisterSeller(context.Background(), identity.RegisterInput{Name: "x", Email: "not-an-email", Password: "secret1"})
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = svc.RegisterSeller(context.Background(), identity.RegisterInput{Name: "x", Email: "x@example.com", Password: "123"})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestAgentNeedsApproval(t *testing.T) {
	ctx := context.Background()
	svc := newService()

	acc, err := svc.RegisterAgent(ctx, identity.RegisterInput{Name: "Arman", Email: "arman@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, identity.StatusPending, acc.Status)

	_, _, err = svc.Login(ctx, domain.RoleAgent, "arman@example.com", "secret1")
	assert.ErrorIs(t, err, identity.ErrAccountNotApproved)

	seller := domain.Actor{ID: "s1", Role: domain.RoleSeller}
	assert.ErrorIs(t, svc.SetAgentStatus(ctx, seller, acc.ID, identity.StatusApproved), domain.ErrAuthorization)
	assert.ErrorIs(t, svc.SetAgentStatus(ctx, admin, acc.ID, identity.StatusPending), domain.ErrValidation)

	require.NoError(t, svc.SetAgentStatus(ctx, admin, acc.ID, identity.StatusApproved))
	_, logged, err := svc.Login(ctx, domain.RoleAgent, "arman@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAgent, logged.Role)

	require.NoError(t, svc.SetAgentStatus(ctx, admin, acc.ID, identity.StatusRejected))
	_, _, err = svc.Login(ctx, domain.RoleAgent, "arman@example.com", "secret1")
	assert.ErrorIs(t, err, identity.ErrAccountNotApproved)
}

func TestAddAgentByAdmin(t *testing.T) {
	ctx := context.Background()
	svc := newService()

	_, err := svc.AddAgent(ctx, domain.Actor{ID: "a1", Role: domain.RoleAgent}, identity.RegisterInput{Name: "B", Email: "b@example.com", Password: "secret1"})
	assert.ErrorIs(t, err, domain.ErrAuthorization)

	acc, err := svc.AddAgent(ctx, admin, identity.RegisterInput{Name: "B", Email: "b@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, identity.StatusApproved, acc.Status)

	email, err := svc.Email(ctx, domain.RoleAgent, acc.ID)
	require.NoError(t, err)
	assert.Equal(t, "b@example.com", email)
}

func TestEnsureAdminIsIdempotent(t *testing.T) {
	ctx := context.Background()
	svc := newService()
	in := identity.RegisterInput{Name: "Root", Email: "root@example.com", Password: "rootpass"}

	require.NoError(t, svc.EnsureAdmin(ctx, in))
	require.NoError(t, svc.EnsureAdmin(ctx, in))

	_, acc, err := svc.Login(ctx, domain.RoleAdmin, "root@example.com", "rootpass")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, acc.Role)
}

func TestUnknownRole(t *testing.T) {
	_, _, err := newService().Login(context.Background(), domain.RoleAnonymous, "a@b.c", "x")
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = identity.ParseRole("landlord")
	assert.ErrorIs(t, err, domain.ErrValidation)
	r, err := identity.ParseRole(" Agent ")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAgent, r)
}

func TestListAgents(t *testing.T) {
	ctx := context.Background()
	svc := newService()

	pending, err := svc.RegisterAgent(ctx, identity.RegisterInput{Name: "Pending", Email: "p@example.com", Password: "secret1"})
	require.NoError(t, err)
	approved, err := svc.AddAgent(ctx, admin, identity.RegisterInput{Name: "Approved", Email: "a@example.com", Password: "secret1"})
	require.NoError(t, err)

	all, err := svc.ListAgents(ctx, admin, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	queue, err := svc.ListAgents(ctx, admin, identity.StatusPending)
	require.NoError(t, err)
	require.Len(t, queue, 1)
	assert.Equal(t, pending.ID, queue[0].ID)

	require.NoError(t, svc.SetAgentStatus(ctx, admin, queue[0].ID, identity.StatusApproved))
	queue, err = svc.ListAgents(ctx, admin, identity.StatusPending)
	require.NoError(t, err)
	assert.Empty(t, queue)

	_, err = svc.ListAgents(ctx, admin, "retired")
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = svc.ListAgents(ctx, domain.Actor{ID: approved.ID, Role: domain.RoleAgent}, "")
	assert.ErrorIs(t, err, domain.ErrAuthorization)

	profiles, err := svc.AgentProfiles(ctx)
	require.NoError(t, err)
	assert.Len(t, profiles, 2)
}

func TestAuthenticateRevokesRejectedAgent(t *testing.T) {
	ctx := context.Background()
	svc := newService()

	acc, err := svc.AddAgent(ctx, admin, identity.RegisterInput{Name: "Aidar", Email: "aidar@example.com", Password: "secret1"})
	require.NoError(t, err)
	token, _, err := svc.Login(ctx, domain.RoleAgent, "aidar@example.com", "secret1")
	require.NoError(t, err)

	actor, err := svc.Authenticate(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, domain.Actor{ID: acc.ID, Role: domain.RoleAgent}, actor)

	require.NoError(t, svc.SetAgentStatus(ctx, admin, acc.ID, identity.StatusRejected))
	_, err = svc.Authenticate(ctx, token)
	assert.ErrorIs(t, err, identity.ErrInvalidToken)

	_, err = svc.Authenticate(ctx, "garbage")
	assert.ErrorIs(t, err, identity.ErrInvalidToken)

	_, err = svc.RegisterSeller(ctx, identity.RegisterInput{Name: "Dana", Email: "dana@example.com", Password: "secret1"})
	require.NoError(t, err)
	sellerToken, _, err := svc.Login(ctx, domain.RoleSeller, "dana@example.com", "secret1")
	require.NoError(t, err)
	actor, err = svc.Authenticate(ctx, sellerToken)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleSeller, actor.Role)
}
