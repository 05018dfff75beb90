package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/Abdurahmanit/GroupProject/estate-service/internal/estate/domain"
	"github.com/Abdurahmanit/GroupProject/estate-service/internal/estate/policy"
	"github.com/Abdurahmanit/GroupProject/estate-service/internal/platform/logger"
	"go.uber.org/zap"
)

// ReservationUsecase owns Property.booking_status and Booking.status.
type ReservationUsecase struct {
	ledger domain.Ledger
	fx     *Effects
	logger *logger.Logger
}

func NewReservationUsecase(ledger domain.Ledger, fx *Effects, log *logger.Logger) *ReservationUsecase {
	return &ReservationUsecase{ledger: ledger, fx: fx, logger: log.Named("reservation_uc")}
}

// Reserve places a hold on a live, available property. The hold booking and
// the booking_status flip commit together.
func (uc *ReservationUsecase) Reserve(ctx context.Context, actor domain.Actor, propertyID string, buyer domain.BuyerInput) (bookingID string, err error) {
	ctx, end := uc.fx.begin(ctx, "ReservationUsecase.Reserve", actor)
	defer func() { end(err) }()

	if err := policy.Authorize(actor, policy.OpReserve); err != nil {
		return "", err
	}
	booking, err := domain.NewBooking(propertyID, actor.ID, buyer)
	if err != nil {
		return "", err
	}

	var held *domain.Property
	err = uc.ledger.WithinProperty(ctx, propertyID, func(ctx context.Context, tx domain.LedgerTx) error {
		p, err := tx.ReadProperty(ctx, propertyID)
		if err != nil {
			return err
		}
		active, err := tx.ActiveBooking(ctx, propertyID)
		switch {
		case err == nil:
			return fmt.Errorf("%w: property %s already reserved by booking %s", domain.ErrConflict, propertyID, active.ID)
		case !errors.Is(err, domain.ErrNotFound):
			return err
		}
		if err := p.Hold(); err != nil {
			return err
		}
		if err := tx.WritePropertyIfUnchanged(ctx, p); err != nil {
			return err
		}
		if err := tx.InsertBooking(ctx, booking); err != nil {
			return err
		}
		held = p
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrConflict) {
			uc.logger.Info("ReservationUsecase.Reserve: reservation rejected", zap.String("property_id", propertyID), zap.Error(err))
		}
		return "", err
	}

	uc.logger.Info("ReservationUsecase.Reserve: property on hold",
		zap.String("property_id", propertyID), zap.String("booking_id", booking.ID), zap.String("buyer_id", actor.ID))
	uc.fx.committed(ctx, propertyID, SubjectBookingHeld, newBookingEvent(booking, actor))
	uc.fx.notifySeller(ctx, held.SellerID,
		"Your property has been reserved",
		fmt.Sprintf("Your listing %q has been reserved by %s.", held.Title, booking.BuyerName))
	return booking.ID, nil
}

// Cancel releases the active hold and reopens the property.
func (uc *ReservationUsecase) Cancel(ctx context.Context, actor domain.Actor, propertyID string) (err error) {
	ctx, end := uc.fx.begin(ctx, "ReservationUsecase.Cancel", actor)
	defer func() { end(err) }()

	if err := policy.Authorize(actor, policy.OpCancel); err != nil {
		return err
	}

	var cancelled *domain.Booking
	err = uc.ledger.WithinProperty(ctx, propertyID, func(ctx context.Context, tx domain.LedgerTx) error {
		p, err := tx.ReadProperty(ctx, propertyID)
		if err != nil {
			return err
		}
		b, err := tx.ActiveBooking(ctx, propertyID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return fmt.Errorf("%w: property %s has no active hold", domain.ErrConflict, propertyID)
			}
			return err
		}
		if err := b.Cancel(); err != nil {
			return err
		}
		if err := p.Release(); err != nil {
			return err
		}
		if err := tx.WriteBookingIfUnchanged(ctx, b); err != nil {
			return err
		}
		if err := tx.WritePropertyIfUnchanged(ctx, p); err != nil {
			return err
		}
		cancelled = b
		return nil
	})
	if err != nil {
		return err
	}

	uc.logger.Info("ReservationUsecase.Cancel: hold released",
		zap.String("property_id", propertyID), zap.String("booking_id", cancelled.ID), zap.String("actor_id", actor.ID))
	uc.fx.committed(ctx, propertyID, SubjectBookingCancelled, newBookingEvent(cancelled, actor))
	return nil
}
