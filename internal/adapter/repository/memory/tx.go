package memory

import (
	"context"
	"fmt"

	"github.com/Abdurahmanit/GroupProject/estate-service/internal/estate/domain"
	"github.com/google/uuid"
)

// tx stages writes of one scope. Reads see staged values first.
type tx struct {
	l          *Ledger
	propertyID string

	property  *domain.Property
	bookings  map[string]*domain.Booking
	payments  map[string]*domain.Payment
	newImages []*domain.Image
}

func newTx(l *Ledger, propertyID string) *tx {
	return &tx{
		l:          l,
		propertyID: propertyID,
		bookings:   make(map[string]*domain.Booking),
		payments:   make(map[string]*domain.Payment),
	}
}

func (t *tx) inScope(kind, id, propertyID string) error {
	if propertyID != t.propertyID {
		return fmt.Errorf("%w: %s %s belongs to property %s, scope is %s", domain.ErrConflict, kind, id, propertyID, t.propertyID)
	}
	return nil
}

func (t *tx) ReadProperty(ctx context.Context, id string) (*domain.Property, error) {
	if err := t.inScope("property", id, id); err != nil {
		return nil, err
	}
	if t.property != nil {
		cp := *t.property
		return &cp, nil
	}
	return t.l.GetProperty(ctx, id)
}

func (t *tx) ReadBooking(ctx context.Context, id string) (*domain.Booking, error) {
	if b, ok := t.bookings[id]; ok {
		cp := *b
		return &cp, nil
	}
	return t.l.ReadBooking(ctx, id)
}

func (t *tx) ReadPayment(ctx context.Context, id string) (*domain.Payment, error) {
	if p, ok := t.payments[id]; ok {
		cp := *p
		return &cp, nil
	}
	return t.l.ReadPayment(ctx, id)
}

// scopeBookings merges committed and staged bookings of the scoped property.
func (t *tx) scopeBookings() []*domain.Booking {
	t.l.mu.RLock()
	merged := make(map[string]*domain.Booking)
	for id, b := range t.l.bookings {
		if b.PropertyID == t.propertyID {
			merged[id] = b
		}
	}
	t.l.mu.RUnlock()
	for id, b := range t.bookings {
		merged[id] = b
	}
	out := make([]*domain.Booking, 0, len(merged))
	for _, b := range merged {
		out = append(out, b)
	}
	return out
}

func (t *tx) ActiveBooking(ctx context.Context, propertyID string) (*domain.Booking, error) {
	if err := t.inScope("property", propertyID, propertyID); err != nil {
		return nil, err
	}
	for _, b := range t.scopeBookings() {
		if b.Status == domain.BookingStatusHold {
			cp := *b
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("%w: no active booking for property %s", domain.ErrNotFound, propertyID)
}

func (t *tx) VerifiedPaymentFor(ctx context.Context, bookingID string) (*domain.Payment, error) {
	t.l.mu.RLock()
	merged := make(map[string]*domain.Payment)
	for id, p := range t.l.payments {
		if p.BookingID == bookingID {
			merged[id] = p
		}
	}
	t.l.mu.RUnlock()
	for id, p := range t.payments {
		if p.BookingID == bookingID {
			merged[id] = p
		}
	}
	for _, p := range merged {
		if p.Status == domain.PaymentVerified {
			cp := *p
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("%w: no verified payment for booking %s", domain.ErrNotFound, bookingID)
}

func (t *tx) CountImagesFor(ctx context.Context, propertyID string) (int64, error) {
	if err := t.inScope("property", propertyID, propertyID); err != nil {
		return 0, err
	}
	t.l.mu.RLock()
	n := int64(len(t.l.images[propertyID]))
	t.l.mu.RUnlock()
	return n + int64(len(t.newImages)), nil
}

func (t *tx) WritePropertyIfUnchanged(ctx context.Context, p *domain.Property) error {
	if err := t.inScope("property", p.ID, p.ID); err != nil {
		return err
	}
	current, err := t.ReadProperty(ctx, p.ID)
	if err != nil {
		return err
	}
	if current.Version != p.Version {
		return fmt.Errorf("%w: property %s changed (version %d, expected %d)", domain.ErrConflict, p.ID, current.Version, p.Version)
	}
	p.Version++
	cp := *p
	t.property = &cp
	return nil
}

func (t *tx) WriteBookingIfUnchanged(ctx context.Context, b *domain.Booking) error {
	if err := t.inScope("booking", b.ID, b.PropertyID); err != nil {
		return err
	}
	current, err := t.ReadBooking(ctx, b.ID)
	if err != nil {
		return err
	}
	if current.Version != b.Version {
		return fmt.Errorf("%w: booking %s changed (version %d, expected %d)", domain.ErrConflict, b.ID, current.Version, b.Version)
	}
	b.Version++
	cp := *b
	t.bookings[b.ID] = &cp
	return nil
}

func (t *tx) WritePaymentIfUnchanged(ctx context.Context, p *domain.Payment) error {
	if err := t.inScope("payment", p.ID, p.PropertyID); err != nil {
		return err
	}
	current, err := t.ReadPayment(ctx, p.ID)
	if err != nil {
		return err
	}
	if current.Version != p.Version {
		return fmt.Errorf("%w: payment %s changed (version %d, expected %d)", domain.ErrConflict, p.ID, current.Version, p.Version)
	}
	p.Version++
	cp := *p
	t.payments[p.ID] = &cp
	return nil
}

func (t *tx) InsertBooking(ctx context.Context, b *domain.Booking) error {
	if err := t.inScope("booking", b.ID, b.PropertyID); err != nil {
		return err
	}
	b.ID = uuid.NewString()
	b.Version = 1
	cp := *b
	t.bookings[b.ID] = &cp
	return nil
}

func (t *tx) InsertPayment(ctx context.Context, p *domain.Payment) error {
	if err := t.inScope("payment", p.ID, p.PropertyID); err != nil {
		return err
	}
	p.ID = uuid.NewString()
	p.Version = 1
	cp := *p
	t.payments[p.ID] = &cp
	return nil
}

func (t *tx) InsertImage(ctx context.Context, img *domain.Image) error {
	if err := t.inScope("image", img.ID, img.PropertyID); err != nil {
		return err
	}
	img.ID = uuid.NewString()
	cp := *img
	t.newImages = append(t.newImages, &cp)
	return nil
}

func (t *tx) commit() {
	t.l.mu.Lock()
	defer t.l.mu.Unlock()
	if t.property != nil {
		t.l.properties[t.property.ID] = t.property
	}
	for id, b := range t.bookings {
		t.l.bookings[id] = b
	}
	for id, p := range t.payments {
		t.l.payments[id] = p
	}
	t.l.images[t.propertyID] = append(t.l.images[t.propertyID], t.newImages...)
}
