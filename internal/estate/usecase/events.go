package usecase

import (
	"time"

	"github.com/Abdurahmanit/GroupProject/estate-service/internal/estate/domain"
)

// NATS subjects of lifecycle events.
const (
	SubjectPropertySubmitted     = "property.submitted"
	SubjectPropertyPriced        = "property.priced"
	SubjectPropertyImageAttached = "property.image_attached"
	SubjectPropertyVerified      = "property.verified"
	SubjectPropertySold          = "property.sold"
	SubjectBookingHeld           = "booking.held"
	SubjectBookingCancelled      = "booking.cancelled"
	SubjectPaymentSubmitted      = "payment.submitted"
	SubjectPaymentVerified       = "payment.verified"
	SubjectEnquiryCreated        = "enquiry.created"
)

type PropertyEvent struct {
	PropertyID    string    `json:"property_id"`
	SellerID      string    `json:"seller_id"`
	AgentID       string    `json:"agent_id,omitempty"`
	Status        string    `json:"status"`
	BookingStatus string    `json:"booking_status"`
	ActorID       string    `json:"actor_id"`
	OccurredAt    time.Time `json:"occurred_at"`
}

func newPropertyEvent(p *domain.Property, actor domain.Actor) PropertyEvent {
	return PropertyEvent{
		PropertyID:    p.ID,
		SellerID:      p.SellerID,
		AgentID:       p.AgentID,
		Status:        string(p.Status),
		BookingStatus: string(p.BookingStatus),
		ActorID:       actor.ID,
		OccurredAt:    time.Now().UTC(),
	}
}

type BookingEvent struct {
	BookingID  string    `json:"booking_id"`
	PropertyID string    `json:"property_id"`
	BuyerID    string    `json:"buyer_id"`
	Status     string    `json:"status"`
	ActorID    string    `json:"actor_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

func newBookingEvent(b *domain.Booking, actor domain.Actor) BookingEvent {
	return BookingEvent{
		BookingID:  b.ID,
		PropertyID: b.PropertyID,
		BuyerID:    b.BuyerID,
		Status:     string(b.Status),
		ActorID:    actor.ID,
		OccurredAt: time.Now().UTC(),
	}
}

type PaymentEvent struct {
	PaymentID  string    `json:"payment_id"`
	BookingID  string    `json:"booking_id"`
	PropertyID string    `json:"property_id"`
	Amount     string    `json:"amount"`
	Status     string    `json:"status"`
	ActorID    string    `json:"actor_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

func newPaymentEvent(p *domain.Payment, actor domain.Actor) PaymentEvent {
	return PaymentEvent{
		PaymentID:  p.ID,
		BookingID:  p.BookingID,
		PropertyID: p.PropertyID,
		Amount:     p.Amount.String(),
		Status:     string(p.Status),
		ActorID:    actor.ID,
		OccurredAt: time.Now().UTC(),
	}
}

type ImageEvent struct {
	ImageID    string    `json:"image_id"`
	PropertyID string    `json:"property_id"`
	UploadedBy string    `json:"uploaded_by"`
	URL        string    `json:"url"`
	OccurredAt time.Time `json:"occurred_at"`
}

type EnquiryEvent struct {
	EnquiryID  string    `json:"enquiry_id"`
	PropertyID string    `json:"property_id"`
	AgentID    string    `json:"agent_id"`
	OccurredAt time.Time `json:"occurred_at"`
}
