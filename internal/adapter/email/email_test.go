package email

import (
	"context"
	"errors"
	"testing"

	"github.com/Abdurahmanit/GroupProject/estate-service/internal/app/config"
	"github.com/Abdurahmanit/GroupProject/estate-service/internal/estate/domain"
	"github.com/Abdurahmanit/GroupProject/estate-service/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestNewSMTPSenderIncompleteConfig(t *testing.T) {
	testCases := []struct {
		name string
		cfg  config.SMTPConfig
	}{
		{"Missing Host", config.SMTPConfig{Port: 587, SenderEmail: "noreply@example.com"}},
		{"Missing Port", config.SMTPConfig{Host: "smtp.example.com", SenderEmail: "noreply@example.com"}},
		{"Missing SenderEmail", config.SMTPConfig{Host: "smtp.example.com", Port: 587}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewSMTPSender(tc.cfg, logger.NewNop())
			assert.ErrorIs(t, err, ErrIncompleteConfig)
		})
	}
}

func TestSendRequiresRecipients(t *testing.T) {
	s, err := NewSMTPSender(config.SMTPConfig{Host: "smtp.example.com", Port: 587, SenderEmail: "noreply@example.com"}, logger.NewNop())
	require.NoError(t, err)
	assert.Error(t, s.Send(context.Background(), nil, "s", "b"))
}

type MockSender struct{ mock.Mock }

func (m *MockSender) Send(ctx context.Context, to []string, subject, bodyText string) error {
	return m.Called(ctx, to, subject, bodyText).Error(0)
}

type MockDirectory struct{ mock.Mock }

func (m *MockDirectory) Email(ctx context.Context, role domain.Role, id string) (string, error) {
	args := m.Called(ctx, role, id)
	return args.String(0), args.Error(1)
}

func TestSellerNotifier(t *testing.T) {
	ctx := context.Background()
	sender := new(MockSender)
	dir := new(MockDirectory)
	n := NewSellerNotifier(sender, dir)

	dir.On("Email", ctx, domain.RoleSeller, "s1").Return("s1@example.com", nil)
	sender.On("Send", ctx, []string{"s1@example.com"}, "Listing live", "body").Return(nil)
	require.NoError(t, n.NotifySeller(ctx, "s1", "Listing live", "body"))

	dir.On("Email", ctx, domain.RoleSeller, "ghost").Return("", domain.ErrNotFound)
	err := n.NotifySeller(ctx, "ghost", "x", "y")
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	sender.AssertExpectations(t)
	dir.AssertExpectations(t)
}
