package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/Abdurahmanit/GroupProject/estate-service/internal/estate/domain"
	"github.com/Abdurahmanit/GroupProject/estate-service/internal/estate/policy"
	"github.com/Abdurahmanit/GroupProject/estate-service/internal/platform/logger"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// SettlementUsecase records payments, verifies them and closes sales.
type SettlementUsecase struct {
	ledger domain.Ledger
	fx     *Effects
	logger *logger.Logger
}

func NewSettlementUsecase(ledger domain.Ledger, fx *Effects, log *logger.Logger) *SettlementUsecase {
	return &SettlementUsecase{ledger: ledger, fx: fx, logger: log.Named("settlement_uc")}
}

// SubmitPayment records a paid payment against the buyer's hold booking. It
// changes no property or booking state.
func (uc *SettlementUsecase) SubmitPayment(ctx context.Context, actor domain.Actor, bookingID string, amount decimal.Decimal) (paymentID string, err error) {
	ctx, end := uc.fx.begin(ctx, "SettlementUsecase.SubmitPayment", actor)
	defer func() { end(err) }()

	if err := policy.Authorize(actor, policy.OpSubmitPayment); err != nil {
		return "", err
	}
	if !amount.IsPositive() {
		return "", fmt.Errorf("%w: payment amount must be positive", domain.ErrValidation)
	}
	owner, err := uc.ledger.ReadBooking(ctx, bookingID)
	if err != nil {
		return "", err
	}

	var payment *domain.Payment
	err = uc.ledger.WithinProperty(ctx, owner.PropertyID, func(ctx context.Context, tx domain.LedgerTx) error {
		b, err := tx.ReadBooking(ctx, bookingID)
		if err != nil {
			return err
		}
		if b.BuyerID != actor.ID {
			return fmt.Errorf("%w: booking %s belongs to another buyer", domain.ErrAuthorization, bookingID)
		}
		if b.Status != domain.BookingStatusHold {
			return fmt.Errorf("%w: booking %s is %s, expected hold", domain.ErrConflict, bookingID, b.Status)
		}
		p, err := tx.ReadProperty(ctx, b.PropertyID)
		if err != nil {
			return err
		}
		if p.BookingStatus != domain.BookingHold {
			return fmt.Errorf("%w: property %s is %s, expected hold", domain.ErrConflict, p.ID, p.BookingStatus)
		}
		payment, err = domain.NewPayment(b, amount)
		if err != nil {
			return err
		}
		return tx.InsertPayment(ctx, payment)
	})
	if err != nil {
		return "", err
	}

	uc.logger.Info("SettlementUsecase.SubmitPayment: payment recorded",
		zap.String("payment_id", payment.ID), zap.String("booking_id", bookingID), zap.String("amount", amount.String()))
	uc.fx.committed(ctx, "", SubjectPaymentSubmitted, newPaymentEvent(payment, actor))
	return payment.ID, nil
}

// VerifyPayment promotes a paid payment to verified. Verifying twice is a
// conflict.
func (uc *SettlementUsecase) VerifyPayment(ctx context.Context, actor domain.Actor, paymentID string) (err error) {
	ctx, end := uc.fx.begin(ctx, "SettlementUsecase.VerifyPayment", actor)
	defer func() { end(err) }()

	if err := policy.Authorize(actor, policy.OpVerifyPayment); err != nil {
		return err
	}
	owner, err := uc.ledger.ReadPayment(ctx, paymentID)
	if err != nil {
		return err
	}

	var verified *domain.Payment
	err = uc.ledger.WithinProperty(ctx, owner.PropertyID, func(ctx context.Context, tx domain.LedgerTx) error {
		pay, err := tx.ReadPayment(ctx, paymentID)
		if err != nil {
			return err
		}
		if err := pay.Verify(actor.ID); err != nil {
			return err
		}
		if err := tx.WritePaymentIfUnchanged(ctx, pay); err != nil {
			return err
		}
		verified = pay
		return nil
	})
	if err != nil {
		return err
	}

	uc.logger.Info("SettlementUsecase.VerifyPayment: payment verified", zap.String("payment_id", paymentID), zap.String("verifier_id", actor.ID))
	uc.fx.committed(ctx, "", SubjectPaymentVerified, newPaymentEvent(verified, actor))
	return nil
}

// CloseSale parks the property as sold and completes the hold booking. Every
// precondition is checked before the first write.
func (uc *SettlementUsecase) CloseSale(ctx context.Context, actor domain.Actor, propertyID string) (err error) {
	ctx, end := uc.fx.begin(ctx, "SettlementUsecase.CloseSale", actor)
	defer func() { end(err) }()

	if err := policy.Authorize(actor, policy.OpCloseSale); err != nil {
		return err
	}

	var sold *domain.Property
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
		if _, err := tx.VerifiedPaymentFor(ctx, b.ID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return fmt.Errorf("%w: payment not verified for booking %s", domain.ErrPrecondition, b.ID)
			}
			return err
		}

		if err := p.MarkSold(); err != nil {
			return err
		}
		if err := b.Complete(); err != nil {
			return err
		}
		if err := tx.WritePropertyIfUnchanged(ctx, p); err != nil {
			return err
		}
		if err := tx.WriteBookingIfUnchanged(ctx, b); err != nil {
			return err
		}
		sold = p
		return nil
	})
	if err != nil {
		return err
	}

	uc.logger.Info("SettlementUsecase.CloseSale: property sold", zap.String("property_id", propertyID), zap.String("actor_id", actor.ID))
	uc.fx.committed(ctx, propertyID, SubjectPropertySold, newPropertyEvent(sold, actor))
	uc.fx.notifySeller(ctx, sold.SellerID,
		"Your property has been sold",
		fmt.Sprintf("The sale of your listing %q has been closed.", sold.Title))
	return nil
}
