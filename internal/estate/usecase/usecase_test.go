package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/Abdurahmanit/GroupProject/estate-service/internal/adapter/repository/memory"
	memstorage "github.com/Abdurahmanit/GroupProject/estate-service/internal/adapter/storage/memory"
	"github.com/Abdurahmanit/GroupProject/estate-service/internal/estate/domain"
	"github.com/Abdurahmanit/GroupProject/estate-service/internal/estate/usecase"
	"github.com/Abdurahmanit/GroupProject/estate-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/estate-service/internal/platform/metrics"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var (
	seller      = domain.Actor{ID: "seller-1", Role: domain.RoleSeller}
	otherSeller = domain.Actor{ID: "seller-2", Role: domain.RoleSeller}
	buyer       = domain.Actor{ID: "buyer-1", Role: domain.RoleSeller}
	agent       = domain.Actor{ID: "agent-1", Role: domain.RoleAgent}
	otherAgent  = domain.Actor{ID: "agent-2", Role: domain.RoleAgent}
	admin       = domain.Actor{ID: "admin-1", Role: domain.RoleAdmin}

	jpegData = []byte("\xff\xd8\xff\xe0\x00\x10JFIF\x00")
)

// Mocks

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, subject string, data interface{}) error {
	args := m.Called(ctx, subject, data)
	return args.Error(0)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) NotifySeller(ctx context.Context, sellerID, subject, body string) error {
	args := m.Called(ctx, sellerID, subject, body)
	return args.Error(0)
}

type MockAgentDirectory struct {
	mock.Mock
}

func (m *MockAgentDirectory) AgentExists(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type fixture struct {
	ledger    *memory.Ledger
	storage   *memstorage.Storage
	enquiries *memory.EnquiryRepository
	events    *MockPublisher
	notifier  *MockNotifier
	agents    *MockAgentDirectory
	metrics   *metrics.MetricsManager
	fx        *usecase.Effects

	listing     *usecase.ListingUsecase
	reservation *usecase.ReservationUsecase
	settlement  *usecase.SettlementUsecase
	query       *usecase.QueryUsecase
	enquiry     *usecase.EnquiryUsecase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	log := logger.NewNop()
	f := &fixture{
		ledger:    memory.NewLedger(5*time.Second, log),
		storage:   memstorage.NewStorage("http://media.test"),
		enquiries: memory.NewEnquiryRepository(),
		events:    new(MockPublisher),
		notifier:  new(MockNotifier),
		agents:    new(MockAgentDirectory),
		metrics:   metrics.NewMetricsManager("test"),
	}
	f.events.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
	f.notifier.On("NotifySeller", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()

	f.fx = usecase.NewEffects(nil, f.events, f.notifier, f.metrics, log)
	f.listing = usecase.NewListingUsecase(f.ledger, f.storage, f.fx, log)
	f.reservation = usecase.NewReservationUsecase(f.ledger, f.fx, log)
	f.settlement = usecase.NewSettlementUsecase(f.ledger, f.fx, log)
	f.query = usecase.NewQueryUsecase(f.ledger, nil, nil, log)
	f.enquiry = usecase.NewEnquiryUsecase(f.ledger, f.enquiries, f.agents, f.fx, log)
	t.Cleanup(f.fx.Wait)
	return f
}

func submitInput() domain.SubmitPropertyInput {
	return domain.SubmitPropertyInput{
		Title:        "Two bedroom flat",
		Type:         domain.TypeFlat,
		Purpose:      domain.PurposeSale,
		Location:     "Astana, Mangilik El 10",
		Description:  "Fifth floor, renovated",
		MarketAmount: decimal.NewFromInt(50000),
	}
}

func (f *fixture) pending(t *testing.T) string {
	t.Helper()
	id, err := f.listing.Submit(context.Background(), seller, submitInput())
	require.NoError(t, err)
	return id
}

func (f *fixture) live(t *testing.T) string {
	t.Helper()
	ctx := context.Background()
	id := f.pending(t)
	_, err := f.listing.AttachImage(ctx, seller, id, "front.jpg", jpegData)
	require.NoError(t, err)
	require.NoError(t, f.listing.SetPricing(ctx, agent, id, decimal.NewFromInt(48000), decimal.NewFromInt(40000)))
	require.NoError(t, f.listing.Verify(ctx, agent, id))
	return id
}

func (f *fixture) held(t *testing.T) (propertyID, bookingID string) {
	t.Helper()
	propertyID = f.live(t)
	bookingID, err := f.reservation.Reserve(context.Background(), buyer, propertyID, domain.BuyerInput{Name: "Dana", Phone: "+77010000000"})
	require.NoError(t, err)
	return propertyID, bookingID
}

func (f *fixture) property(t *testing.T, id string) *domain.Property {
	t.Helper()
	p, err := f.ledger.GetProperty(context.Background(), id)
	require.NoError(t, err)
	return p
}

func (f *fixture) booking(t *testing.T, id string) *domain.Booking {
	t.Helper()
	b, err := f.ledger.ReadBooking(context.Background(), id)
	require.NoError(t, err)
	return b
}
