package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Abdurahmanit/GroupProject/estate-service/internal/estate/domain"
	"github.com/Abdurahmanit/GroupProject/estate-service/internal/estate/policy"
	"github.com/Abdurahmanit/GroupProject/estate-service/internal/platform/logger"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Stores groups the credential store of every role.
type Stores struct {
	Sellers CredentialStore
	Agents  CredentialStore
	Admins  CredentialStore
}

type Service struct {
	stores Stores
	tokens *TokenIssuer
	log    *logger.Logger
}

func NewService(stores Stores, tokens *TokenIssuer, log *logger.Logger) *Service {
	return &Service{stores: stores, tokens: tokens, log: log.Named("identity")}
}

func (s *Service) store(role domain.Role) (CredentialStore, error) {
	switch role {
	case domain.RoleSeller:
		return s.stores.Sellers, nil
	case domain.RoleAgent:
		return s.stores.Agents, nil
	case domain.RoleAdmin:
		return s.stores.Admins, nil
	}
	return nil, fmt.Errorf("%w: role %q has no credentials", domain.ErrValidation, role)
}

func (s *Service) verifier(role domain.Role) (CredentialVerifier, error) {
	switch role {
	case domain.RoleSeller:
		return sellerVerifier{store: s.stores.Sellers}, nil
	case domain.RoleAgent:
		return agentVerifier{store: s.stores.Agents}, nil
	case domain.RoleAdmin:
		return adminVerifier{store: s.stores.Admins}, nil
	}
	return nil, fmt.Errorf("%w: role %q has no credentials", domain.ErrValidation, role)
}

func (s *Service) create(ctx context.Context, role domain.Role, status AccountStatus, in RegisterInput) (*Account, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	store, err := s.store(role)
	if err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	acc := &Account{
		Role:         role,
		Name:         in.Name,
		Email:        normalizeEmail(in.Email),
		Phone:        in.Phone,
		PasswordHash: string(hash),
		Status:       status,
		CreatedAt:    time.Now().UTC(),
	}
	if err := store.Create(ctx, acc); err != nil {
		return nil, err
	}
	s.log.Info("account created", zap.String("role", string(role)), zap.String("account_id", acc.ID), zap.String("status", string(status)))
	return acc, nil
}

func (s *Service) RegisterSeller(ctx context.Context, in RegisterInput) (*Account, error) {
	return s.create(ctx, domain.RoleSeller, StatusActive, in)
}

// RegisterAgent creates a self-registered agent awaiting approval.
func (s *Service) RegisterAgent(ctx context.Context, in RegisterInput) (*Account, error) {
	return s.create(ctx, domain.RoleAgent, StatusPending, in)
}

// AddAgent creates an agent on behalf of an administrator, already approved.
func (s *Service) AddAgent(ctx context.Context, actor domain.Actor, in RegisterInput) (*Account, error) {
	if err := policy.Authorize(actor, policy.OpManageAgents); err != nil {
		return nil, err
	}
	return s.create(ctx, domain.RoleAgent, StatusApproved, in)
}

// EnsureAdmin creates the bootstrap administrator unless the email exists.
func (s *Service) EnsureAdmin(ctx context.Context, in RegisterInput) error {
	_, err := s.stores.Admins.FindByEmail(ctx, normalizeEmail(in.Email))
	if err == nil {
		return nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	_, err = s.create(ctx, domain.RoleAdmin, StatusActive, in)
	return err
}

func (s *Service) SetAgentStatus(ctx context.Context, actor domain.Actor, agentID string, status AccountStatus) error {
	if err := policy.Authorize(actor, policy.OpManageAgents); err != nil {
		return err
	}
	if status != StatusApproved && status != StatusRejected {
		return fmt.Errorf("%w: agent status must be approved or rejected", domain.ErrValidation)
	}
	if err := s.stores.Agents.SetStatus(ctx, agentID, status); err != nil {
		return err
	}
	s.log.Info("agent status changed", zap.String("agent_id", agentID), zap.String("status", string(status)), zap.String("admin_id", actor.ID))
	return nil
}

// Login verifies credentials through the role's verifier and issues a token.
func (s *Service) Login(ctx context.Context, role domain.Role, email, password string) (string, *Account, error) {
	v, err := s.verifier(role)
	if err != nil {
		return "", nil, err
	}
	acc, err := v.Verify(ctx, email, password)
	if err != nil {
		s.log.Info("login rejected", zap.String("role", string(role)), zap.Error(err))
		return "", nil, err
	}
	token, err := s.tokens.Issue(acc)
	if err != nil {
		return "", nil, err
	}
	return token, acc, nil
}

// Email returns the address of an account, used for notifications.
func (s *Service) Email(ctx context.Context, role domain.Role, id string) (string, error) {
	store, err := s.store(role)
	if err != nil {
		return "", err
	}
	acc, err := store.FindByID(ctx, id)
	if err != nil {
		return "", err
	}
	return acc.Email, nil
}

// Agent returns an agent account. Used to validate feedback targets.
func (s *Service) Agent(ctx context.Context, id string) (*Account, error) {
	return s.stores.Agents.FindByID(ctx, id)
}

// AgentExists reports ErrNotFound unless id names an approved agent.
func (s *Service) AgentExists(ctx context.Context, id string) error {
	acc, err := s.Agent(ctx, id)
	if err != nil {
		return err
	}
	if acc.Status != StatusApproved {
		return fmt.Errorf("%w: agent %s", domain.ErrNotFound, id)
	}
	return nil
}

// ListAgents returns agent accounts for the administrator, optionally only
// those in one status.
func (s *Service) ListAgents(ctx context.Context, actor domain.Actor, status AccountStatus) ([]*Account, error) {
	if err := policy.Authorize(actor, policy.OpManageAgents); err != nil {
		return nil, err
	}
	switch status {
	case "", StatusPending, StatusApproved, StatusRejected:
	default:
		return nil, fmt.Errorf("%w: unknown agent status %q", domain.ErrValidation, status)
	}
	return s.stores.Agents.List(ctx, status)
}

// AgentProfiles lists every agent for reports.
func (s *Service) AgentProfiles(ctx context.Context) ([]domain.AgentProfile, error) {
	accounts, err := s.stores.Agents.List(ctx, "")
	if err != nil {
		return nil, err
	}
	out := make([]domain.AgentProfile, 0, len(accounts))
	for _, acc := range accounts {
		out = append(out, domain.AgentProfile{ID: acc.ID, Name: acc.Name, Email: acc.Email, Status: string(acc.Status)})
	}
	return out, nil
}

// Authenticate resolves a bearer token into an actor. Agent tokens are only
// honoured while the agent is still approved, so a rejection takes effect
// before the token expires.
func (s *Service) Authenticate(ctx context.Context, token string) (domain.Actor, error) {
	actor, err := s.tokens.Parse(token)
	if err != nil {
		return domain.Actor{}, err
	}
	if actor.Role != domain.RoleAgent {
		return actor, nil
	}
	acc, err := s.stores.Agents.FindByID(ctx, actor.ID)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.Actor{}, fmt.Errorf("%w: agent %s no longer exists", ErrInvalidToken, actor.ID)
	}
	if err != nil {
		return domain.Actor{}, err
	}
	if acc.Status != StatusApproved {
		return domain.Actor{}, fmt.Errorf("%w: agent %s is %s", ErrInvalidToken, actor.ID, acc.Status)
	}
	return actor, nil
}

func (s *Service) Tokens() *TokenIssuer {
	return s.tokens
}
