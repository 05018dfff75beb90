package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/Abdurahmanit/GroupProject/estate-service/internal/estate/domain"
	"github.com/Abdurahmanit/GroupProject/estate-service/internal/estate/usecase"
	"github.com/Abdurahmanit/GroupProject/estate-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/estate-service/internal/platform/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestSubmitCreatesPendingProperty(t *testing.T) {
	f := newFixture(t)
	id := f.pending(t)

	p := f.property(t, id)
	assert.Equal(t, domain.StatusPending, p.Status)
	assert.Equal(t, domain.BookingAvailable, p.BookingStatus)
	assert.Equal(t, seller.ID, p.SellerID)
	f.events.AssertCalled(t, "Publish", mock.Anything, usecase.SubjectPropertySubmitted, mock.Anything)

	_, err := f.listing.Submit(context.Background(), agent, submitInput())
	assert.ErrorIs(t, err, domain.ErrAuthorization)

	in := submitInput()
	in.Purpose = "lease"
	_, err = f.listing.Submit(context.Background(), seller, in)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestVerifyWithoutImageIsPrecondition(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.pending(t)
	require.NoError(t, f.listing.SetPricing(ctx, agent, id, decimal.NewFromInt(10), decimal.NewFromInt(9)))

	err := f.listing.Verify(ctx, agent, id)
	assert.ErrorIs(t, err, domain.ErrPrecondition)

	p := f.property(t, id)
	assert.Equal(t, domain.StatusPending, p.Status)
	assert.Empty(t, p.AgentID)
}

func TestVerifyWithoutPricingIsPrecondition(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.pending(t)
	_, err := f.listing.AttachImage(ctx, seller, id, "a.png", jpegData)
	require.NoError(t, err)

	assert.ErrorIs(t, f.listing.Verify(ctx, agent, id), domain.ErrPrecondition)
	assert.Equal(t, domain.StatusPending, f.property(t, id).Status)
}

func TestSetPricingOverwrites(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.pending(t)

	require.NoError(t, f.listing.SetPricing(ctx, agent, id, decimal.NewFromInt(100), decimal.NewFromInt(90)))
	require.NoError(t, f.listing.SetPricing(ctx, admin, id, decimal.NewFromInt(120), decimal.NewFromInt(95)))

	p := f.property(t, id)
	require.True(t, p.IsPriced())
	assert.True(t, p.FinalAmount.Equal(decimal.NewFromInt(120)))
	assert.True(t, p.GovtAmount.Equal(decimal.NewFromInt(95)))

	err := f.listing.SetPricing(ctx, agent, id, decimal.Zero, decimal.NewFromInt(1))
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.ErrorIs(t, f.listing.SetPricing(ctx, seller, id, decimal.NewFromInt(1), decimal.NewFromInt(1)), domain.ErrAuthorization)
}

func TestSetPricingAfterVerifyConflicts(t *testing.T) {
	f := newFixture(t)
	id := f.live(t)
	err := f.listing.SetPricing(context.Background(), agent, id, decimal.NewFromInt(1), decimal.NewFromInt(1))
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.True(t, f.property(t, id).FinalAmount.Equal(decimal.NewFromInt(48000)))
}

func TestSecondVerifyConflictsAndKeepsAgent(t *testing.T) {
	f := newFixture(t)
	id := f.live(t)

	err := f.listing.Verify(context.Background(), otherAgent, id)
	assert.ErrorIs(t, err, domain.ErrConflict)

	p := f.property(t, id)
	assert.Equal(t, domain.StatusLive, p.Status)
	assert.Equal(t, agent.ID, p.AgentID)
}

func TestLivePropertyIsPricedAndImaged(t *testing.T) {
	f := newFixture(t)
	id := f.live(t)

	details, err := f.query.GetProperty(context.Background(), domain.Anonymous(), id)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusLive, details.Property.Status)
	assert.True(t, details.Property.IsPriced())
	assert.NotEmpty(t, details.Images)
	f.fx.Wait()
	f.notifier.AssertCalled(t, "NotifySeller", mock.Anything, seller.ID, mock.Anything, mock.Anything)
}

func TestAttachImage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.pending(t)

	_, err := f.listing.AttachImage(ctx, otherSeller, id, "x.jpg", jpegData)
	assert.ErrorIs(t, err, domain.ErrAuthorization)

	_, err = f.listing.AttachImage(ctx, seller, id, "x.jpg", nil)
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = f.listing.AttachImage(ctx, seller, id, "notes.jpg", []byte("plain text with a jpg name"))
	assert.ErrorIs(t, err, domain.ErrValidation, "content is sniffed, the file name is ignored")

	_, err = f.listing.AttachImage(ctx, seller, "missing", "x.jpg", jpegData)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	sellerImg, err := f.listing.AttachImage(ctx, seller, id, "seller.jpg", jpegData)
	require.NoError(t, err)
	assert.Equal(t, domain.UploadedBySeller, sellerImg.UploadedBy)
	stored, ok := f.storage.Object(sellerImg.ObjectKey)
	require.True(t, ok)
	assert.Equal(t, jpegData, stored)

	agentImg, err := f.listing.AttachImage(ctx, agent, id, "agent.jpg", jpegData)
	require.NoError(t, err)
	assert.Equal(t, domain.UploadedByAgent, agentImg.UploadedBy)

	details, err := f.query.GetProperty(ctx, seller, id)
	require.NoError(t, err)
	assert.Len(t, details.Images, 2)
	require.NotNil(t, details.PrimaryImage)
	assert.Equal(t, agentImg.ID, details.PrimaryImage.ID)
}

func TestAttachImageToSoldPropertyConflicts(t *testing.T) {
	f := newFixture(t)
	id := f.sold(t)
	_, err := f.listing.AttachImage(context.Background(), agent, id, "late.jpg", jpegData)
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestPublishFailureDoesNotFailOperation(t *testing.T) {
	log := logger.NewNop()
	f := newFixture(t)
	events := new(MockPublisher)
	events.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("nats down"))
	m := metrics.NewMetricsManager("test")
	fx := usecase.NewEffects(nil, events, nil, m, log)
	listing := usecase.NewListingUsecase(f.ledger, f.storage, fx, log)

	id, err := listing.Submit(context.Background(), seller, submitInput())
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.Equal(t, float64(1), testutil.ToFloat64(m.SideEffectErrors.WithLabelValues("event")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.TransitionsTotal.WithLabelValues("ListingUsecase.Submit", metrics.OutcomeOK)))
}

func TestRejectionsAreCountedSeparately(t *testing.T) {
	f := newFixture(t)
	id := f.pending(t)
	_ = f.listing.Verify(context.Background(), agent, id)
	_ = f.listing.Verify(context.Background(), seller, id)

	assert.Equal(t, float64(2), testutil.ToFloat64(f.metrics.TransitionsTotal.WithLabelValues("ListingUsecase.Verify", metrics.OutcomeRejected)))
	assert.Equal(t, float64(0), testutil.ToFloat64(f.metrics.TransitionsTotal.WithLabelValues("ListingUsecase.Verify", metrics.OutcomeError)))
}
