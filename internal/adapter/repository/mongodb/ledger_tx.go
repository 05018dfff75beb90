package mongodb

import (
	"context"
	"errors"
	"fmt"

	"github.com/Abdurahmanit/GroupProject/estate-service/internal/estate/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// ledgerTx runs every call on the session context handed to the scope.
type ledgerTx struct {
	l          *Ledger
	propertyID string
}

func (t *ledgerTx) inScope(kind, id, propertyID string) error {
	if propertyID != t.propertyID {
		return fmt.Errorf("%w: %s %s belongs to property %s, scope is %s", domain.ErrConflict, kind, id, propertyID, t.propertyID)
	}
	return nil
}

func (t *ledgerTx) ReadProperty(ctx context.Context, id string) (*domain.Property, error) {
	if err := t.inScope("property", id, id); err != nil {
		return nil, err
	}
	return findProperty(ctx, t.l.properties, id)
}

func (t *ledgerTx) ReadBooking(ctx context.Context, id string) (*domain.Booking, error) {
	return findBooking(ctx, t.l.bookings, id)
}

func (t *ledgerTx) ReadPayment(ctx context.Context, id string) (*domain.Payment, error) {
	return findPayment(ctx, t.l.payments, id)
}

func (t *ledgerTx) ActiveBooking(ctx context.Context, propertyID string) (*domain.Booking, error) {
	if err := t.inScope("property", propertyID, propertyID); err != nil {
		return nil, err
	}
	var doc bookingDocument
	err := t.l.bookings.FindOne(ctx, bson.M{"property_id": propertyID, "status": domain.BookingStatusHold}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: no active booking for property %s", domain.ErrNotFound, propertyID)
		}
		return nil, translateError("active booking", err)
	}
	return toDomainBooking(&doc), nil
}

func (t *ledgerTx) VerifiedPaymentFor(ctx context.Context, bookingID string) (*domain.Payment, error) {
	var doc paymentDocument
	err := t.l.payments.FindOne(ctx, bson.M{"booking_id": bookingID, "status": domain.PaymentVerified}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: no verified payment for booking %s", domain.ErrNotFound, bookingID)
		}
		return nil, translateError("verified payment", err)
	}
	return toDomainPayment(&doc)
}

func (t *ledgerTx) CountImagesFor(ctx context.Context, propertyID string) (int64, error) {
	if err := t.inScope("property", propertyID, propertyID); err != nil {
		return 0, err
	}
	n, err := t.l.images.CountDocuments(ctx, bson.M{"property_id": propertyID})
	if err != nil {
		return 0, translateError("count images", err)
	}
	return n, nil
}

// compareAndSet applies update to the document only while its version still
// equals expected. A miss is told apart as not found or conflict.
func compareAndSet(ctx context.Context, coll *mongo.Collection, kind string, id primitive.ObjectID, expected int64, set bson.M) error {
	filter := bson.M{"_id": id, "version": expected}
	update := bson.M{"$set": set, "$inc": bson.M{"version": 1}}

	res, err := coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return translateError("update "+kind, err)
	}
	if res.MatchedCount == 1 {
		return nil
	}

	n, err := coll.CountDocuments(ctx, bson.M{"_id": id})
	if err != nil {
		return translateError("recheck "+kind, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s %s", domain.ErrNotFound, kind, id.Hex())
	}
	return fmt.Errorf("%w: %s %s changed since it was read", domain.ErrConflict, kind, id.Hex())
}

func (t *ledgerTx) WritePropertyIfUnchanged(ctx context.Context, p *domain.Property) error {
	if err := t.inScope("property", p.ID, p.ID); err != nil {
		return err
	}
	doc, err := toPropertyDocument(p)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	if err := compareAndSet(ctx, t.l.properties, "property", doc.ID, p.Version, propertyMutableFields(doc)); err != nil {
		return err
	}
	p.Version++
	return nil
}

func (t *ledgerTx) WriteBookingIfUnchanged(ctx context.Context, b *domain.Booking) error {
	if err := t.inScope("booking", b.ID, b.PropertyID); err != nil {
		return err
	}
	doc, err := toBookingDocument(b)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	set := bson.M{
		"buyer_name":  doc.BuyerName,
		"buyer_phone": doc.BuyerPhone,
		"buyer_email": doc.BuyerEmail,
		"status":      doc.Status,
		"updated_at":  doc.UpdatedAt,
	}
	if err := compareAndSet(ctx, t.l.bookings, "booking", doc.ID, b.Version, set); err != nil {
		return err
	}
	b.Version++
	return nil
}

func (t *ledgerTx) WritePaymentIfUnchanged(ctx context.Context, p *domain.Payment) error {
	if err := t.inScope("payment", p.ID, p.PropertyID); err != nil {
		return err
	}
	doc, err := toPaymentDocument(p)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	set := bson.M{
		"status":      doc.Status,
		"verified_by": doc.VerifiedBy,
		"updated_at":  doc.UpdatedAt,
	}
	if err := compareAndSet(ctx, t.l.payments, "payment", doc.ID, p.Version, set); err != nil {
		return err
	}
	p.Version++
	return nil
}

func (t *ledgerTx) InsertBooking(ctx context.Context, b *domain.Booking) error {
	if err := t.inScope("booking", b.ID, b.PropertyID); err != nil {
		return err
	}
	b.Version = 1
	doc, err := toBookingDocument(b)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	doc.ID = primitive.NewObjectID()
	if _, err := t.l.bookings.InsertOne(ctx, doc); err != nil {
		return translateError("insert booking", err)
	}
	b.ID = doc.ID.Hex()
	return nil
}

func (t *ledgerTx) InsertPayment(ctx context.Context, p *domain.Payment) error {
	if err := t.inScope("payment", p.ID, p.PropertyID); err != nil {
		return err
	}
	p.Version = 1
	doc, err := toPaymentDocument(p)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	doc.ID = primitive.NewObjectID()
	if _, err := t.l.payments.InsertOne(ctx, doc); err != nil {
		return translateError("insert payment", err)
	}
	p.ID = doc.ID.Hex()
	return nil
}

func (t *ledgerTx) InsertImage(ctx context.Context, img *domain.Image) error {
	if err := t.inScope("image", img.ID, img.PropertyID); err != nil {
		return err
	}
	doc := toImageDocument(img)
	doc.ID = primitive.NewObjectID()
	if _, err := t.l.images.InsertOne(ctx, doc); err != nil {
		return translateError("insert image", err)
	}
	img.ID = doc.ID.Hex()
	return nil
}
