package usecase_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/Abdurahmanit/GroupProject/estate-service/internal/estate/domain"
	"github.com/Abdurahmanit/GroupProject/estate-service/internal/estate/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestReserveHoldsProperty(t *testing.T) {
	f := newFixture(t)
	propertyID, bookingID := f.held(t)

	p := f.property(t, propertyID)
	assert.Equal(t, domain.StatusLive, p.Status)
	assert.Equal(t, domain.BookingHold, p.BookingStatus)

	b := f.booking(t, bookingID)
	assert.Equal(t, domain.BookingStatusHold, b.Status)
	assert.Equal(t, buyer.ID, b.BuyerID)
	f.events.AssertCalled(t, "Publish", mock.Anything, usecase.SubjectBookingHeld, mock.Anything)
}

func TestReserveRejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	contact := domain.BuyerInput{Name: "Dana", Phone: "+7701"}

	pending := f.pending(t)
	_, err := f.reservation.Reserve(ctx, buyer, pending, contact)
	assert.ErrorIs(t, err, domain.ErrConflict, "not live")

	live := f.live(t)
	_, err = f.reservation.Reserve(ctx, agent, live, contact)
	assert.ErrorIs(t, err, domain.ErrAuthorization)
	_, err = f.reservation.Reserve(ctx, domain.Anonymous(), live, contact)
	assert.ErrorIs(t, err, domain.ErrAuthorization)
	_, err = f.reservation.Reserve(ctx, buyer, live, domain.BuyerInput{Name: "Dana"})
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = f.reservation.Reserve(ctx, buyer, "missing", contact)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.reservation.Reserve(ctx, buyer, live, contact)
	require.NoError(t, err)
	_, err = f.reservation.Reserve(ctx, otherSeller, live, contact)
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestConcurrentReserveHasOneWinner(t *testing.T) {
	f := newFixture(t)
	id := f.live(t)

	buyers := []domain.Actor{buyer, otherSeller}
	errs := make([]error, len(buyers))
	start := make(chan struct{})
	var wg sync.WaitGroup
	for i, a := range buyers {
		wg.Add(1)
		go func(i int, a domain.Actor) {
			defer wg.Done()
			<-start
			_, errs[i] = f.reservation.Reserve(context.Background(), a, id, domain.BuyerInput{Name: a.ID, Phone: "+7700"})
		}(i, a)
	}
	close(start)
	wg.Wait()

	var ok, conflict int
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		if errors.Is(err, domain.ErrConflict) {
			conflict++
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, conflict)

	held, err := f.query.ListHeldBookings(context.Background(), agent)
	require.NoError(t, err)
	assert.Len(t, held, 1)
}

func TestReserveCancelReserve(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	propertyID, first := f.held(t)

	assert.ErrorIs(t, f.reservation.Cancel(ctx, seller, propertyID), domain.ErrAuthorization)
	require.NoError(t, f.reservation.Cancel(ctx, agent, propertyID))

	assert.Equal(t, domain.BookingAvailable, f.property(t, propertyID).BookingStatus)
	assert.Equal(t, domain.BookingStatusCancelled, f.booking(t, first).Status)
	f.events.AssertCalled(t, "Publish", mock.Anything, usecase.SubjectBookingCancelled, mock.Anything)

	second, err := f.reservation.Reserve(ctx, otherSeller, propertyID, domain.BuyerInput{Name: "Erlan", Phone: "+7702"})
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
	assert.Equal(t, domain.BookingHold, f.property(t, propertyID).BookingStatus)
}

func TestCancelWithoutHoldConflicts(t *testing.T) {
	f := newFixture(t)
	id := f.live(t)
	assert.ErrorIs(t, f.reservation.Cancel(context.Background(), agent, id), domain.ErrConflict)
	assert.Equal(t, domain.BookingAvailable, f.property(t, id).BookingStatus)
}
