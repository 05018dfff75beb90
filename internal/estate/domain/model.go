package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// --- Enumerations ---

type PropertyStatus string

const (
	StatusPending PropertyStatus = "pending"
	StatusLive    PropertyStatus = "live"
	StatusSold    PropertyStatus = "sold"
)

type BookingState string

const (
	BookingAvailable BookingState = "available"
	BookingHold      BookingState = "hold"
	BookingSold      BookingState = "sold"
)

type BookingStatus string

const (
	BookingStatusHold      BookingStatus = "hold"
	BookingStatusCompleted BookingStatus = "completed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

type PaymentStatus string

const (
	PaymentPaid     PaymentStatus = "paid"
	PaymentVerified PaymentStatus = "verified"
)

type PropertyType string

const (
	TypePlot       PropertyType = "plot"
	TypeHouse      PropertyType = "house"
	TypeFlat       PropertyType = "flat"
	TypeProject    PropertyType = "project"
	TypeCommercial PropertyType = "commercial"
)

func (t PropertyType) IsValid() bool {
	switch t {
	case TypePlot, TypeHouse, TypeFlat, TypeProject, TypeCommercial:
		return true
	}
	return false
}

type Purpose string

const (
	PurposeSale Purpose = "sale"
	PurposeRent Purpose = "rent"
)

func (p Purpose) IsValid() bool {
	return p == PurposeSale || p == PurposeRent
}

type Uploader string

const (
	UploadedBySeller Uploader = "seller"
	UploadedByAgent  Uploader = "agent"
)

// --- Property ---

// Property is the aggregate root of a listing. Bookings, payments and images
// are only written inside the scope of their property.
type Property struct {
	ID            string
	SellerID      string
	AgentID       string
	Title         string
	Type          PropertyType
	Purpose       Purpose
	Location      string
	Description   string
	MarketAmount  decimal.Decimal
	FinalAmount   *decimal.Decimal
	GovtAmount    *decimal.Decimal
	Status        PropertyStatus
	BookingStatus BookingState
	CreatedAt     time.Time
	UpdatedAt     time.Time
	Version       int64
}

// SubmitPropertyInput holds the seller supplied fields of a new listing.
type SubmitPropertyInput struct {
	Title        string
	Type         PropertyType
	Purpose      Purpose
	Location     string
	Description  string
	MarketAmount decimal.Decimal
}

// NewProperty validates the input and returns a pending, available listing.
func NewProperty(sellerID string, in SubmitPropertyInput) (*Property, error) {
	if strings.TrimSpace(sellerID) == "" {
		return nil, fmt.Errorf("%w: seller id cannot be empty", ErrValidation)
	}
	if strings.TrimSpace(in.Title) == "" {
		return nil, fmt.Errorf("%w: title cannot be empty", ErrValidation)
	}
	if strings.TrimSpace(in.Location) == "" {
		return nil, fmt.Errorf("%w: location cannot be empty", ErrValidation)
	}
	if strings.TrimSpace(in.Description) == "" {
		return nil, fmt.Errorf("%w: description cannot be empty", ErrValidation)
	}
	if !in.Type.IsValid() {
		return nil, fmt.Errorf("%w: unknown property type %q", ErrValidation, in.Type)
	}
	if !in.Purpose.IsValid() {
		return nil, fmt.Errorf("%w: unknown purpose %q", ErrValidation, in.Purpose)
	}
	if in.MarketAmount.IsNegative() {
		return nil, fmt.Errorf("%w: market amount cannot be negative", ErrValidation)
	}

	now := time.Now().UTC()
	return &Property{
		SellerID:      sellerID,
		Title:         strings.TrimSpace(in.Title),
		Type:          in.Type,
		Purpose:       in.Purpose,
		Location:      strings.TrimSpace(in.Location),
		Description:   strings.TrimSpace(in.Description),
		MarketAmount:  in.MarketAmount,
		Status:        StatusPending,
		BookingStatus: BookingAvailable,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// IsPriced reports whether both agent amounts are set.
func (p *Property) IsPriced() bool {
	return p.FinalAmount != nil && p.GovtAmount != nil
}

// SetPricing overwrites the agent amounts. Allowed only while pending.
func (p *Property) SetPricing(final, govt decimal.Decimal) error {
	if p.Status != StatusPending {
		return fmt.Errorf("%w: pricing can only be set while pending, property %s is %s", ErrConflict, p.ID, p.Status)
	}
	if !final.IsPositive() || !govt.IsPositive() {
		return fmt.Errorf("%w: final and govt amounts must be positive", ErrValidation)
	}
	p.FinalAmount = &final
	p.GovtAmount = &govt
	p.UpdatedAt = time.Now().UTC()
	return nil
}

// Verify promotes a pending property to live. The status check runs first so
// that a second verification never reaches the agent assignment.
func (p *Property) Verify(agentID string, imageCount int64) error {
	if p.Status != StatusPending {
		return fmt.Errorf("%w: property %s is already %s", ErrConflict, p.ID, p.Status)
	}
	if imageCount <= 0 {
		return fmt.Errorf("%w: image missing for property %s", ErrPrecondition, p.ID)
	}
	if !p.IsPriced() {
		return fmt.Errorf("%w: pricing missing for property %s", ErrPrecondition, p.ID)
	}
	p.Status = StatusLive
	p.AgentID = agentID
	p.UpdatedAt = time.Now().UTC()
	return nil
}

// Hold flips booking status available -> hold.
func (p *Property) Hold() error {
	if p.Status != StatusLive {
		return fmt.Errorf("%w: property %s is not live (%s)", ErrConflict, p.ID, p.Status)
	}
	if p.BookingStatus != BookingAvailable {
		return fmt.Errorf("%w: property %s already reserved (%s)", ErrConflict, p.ID, p.BookingStatus)
	}
	p.BookingStatus = BookingHold
	p.UpdatedAt = time.Now().UTC()
	return nil
}

// Release flips booking status hold -> available.
func (p *Property) Release() error {
	if p.BookingStatus != BookingHold {
		return fmt.Errorf("%w: property %s has no active hold (%s)", ErrConflict, p.ID, p.BookingStatus)
	}
	p.BookingStatus = BookingAvailable
	p.UpdatedAt = time.Now().UTC()
	return nil
}

// MarkSold parks the property in its terminal state.
func (p *Property) MarkSold() error {
	if p.Status != StatusLive || p.BookingStatus != BookingHold {
		return fmt.Errorf("%w: property %s cannot be sold from %s/%s", ErrConflict, p.ID, p.Status, p.BookingStatus)
	}
	p.Status = StatusSold
	p.BookingStatus = BookingSold
	p.UpdatedAt = time.Now().UTC()
	return nil
}

// --- Image ---

type Image struct {
	ID         string
	PropertyID string
	UploadedBy Uploader
	UploaderID string
	ObjectKey  string
	URL        string
	CreatedAt  time.Time
}

// PrimaryImage picks the display image: agent uploads first, then the oldest.
func PrimaryImage(images []*Image) *Image {
	var primary *Image
	for _, img := range images {
		if primary == nil {
			primary = img
			continue
		}
		if img.UploadedBy == UploadedByAgent && primary.UploadedBy != UploadedByAgent {
			primary = img
			continue
		}
		if img.UploadedBy == primary.UploadedBy && img.CreatedAt.Before(primary.CreatedAt) {
			primary = img
		}
	}
	return primary
}

// --- Booking ---

// BuyerInput holds the contact fields a buyer supplies when reserving.
type BuyerInput struct {
	Name  string
	Phone string
	Email string
}

type Booking struct {
	ID         string
	PropertyID string
	BuyerID    string
	BuyerName  string
	BuyerPhone string
	BuyerEmail string
	Status     BookingStatus
	CreatedAt  time.Time
	UpdatedAt  time.Time
	Version    int64
}

func NewBooking(propertyID, buyerID string, in BuyerInput) (*Booking, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, fmt.Errorf("%w: buyer name cannot be empty", ErrValidation)
	}
	if strings.TrimSpace(in.Phone) == "" {
		return nil, fmt.Errorf("%w: buyer phone cannot be empty", ErrValidation)
	}
	now := time.Now().UTC()
	return &Booking{
		PropertyID: propertyID,
		BuyerID:    buyerID,
		BuyerName:  strings.TrimSpace(in.Name),
		BuyerPhone: strings.TrimSpace(in.Phone),
		BuyerEmail: strings.TrimSpace(in.Email),
		Status:     BookingStatusHold,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

func (b *Booking) transition(to BookingStatus) error {
	if b.Status != BookingStatusHold {
		return fmt.Errorf("%w: booking %s is %s, expected hold", ErrConflict, b.ID, b.Status)
	}
	b.Status = to
	b.UpdatedAt = time.Now().UTC()
	return nil
}

func (b *Booking) Cancel() error   { return b.transition(BookingStatusCancelled) }
func (b *Booking) Complete() error { return b.transition(BookingStatusCompleted) }

// --- Payment ---

type Payment struct {
	ID         string
	BookingID  string
	PropertyID string
	Amount     decimal.Decimal
	Status     PaymentStatus
	VerifiedBy string
	CreatedAt  time.Time
	UpdatedAt  time.Time
	Version    int64
}

func NewPayment(booking *Booking, amount decimal.Decimal) (*Payment, error) {
	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: payment amount must be positive", ErrValidation)
	}
	now := time.Now().UTC()
	return &Payment{
		BookingID:  booking.ID,
		PropertyID: booking.PropertyID,
		Amount:     amount,
		Status:     PaymentPaid,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// Verify promotes a paid payment. Not idempotent.
func (p *Payment) Verify(verifierID string) error {
	if p.Status != PaymentPaid {
		return fmt.Errorf("%w: payment %s is already %s", ErrConflict, p.ID, p.Status)
	}
	p.Status = PaymentVerified
	p.VerifiedBy = verifierID
	p.UpdatedAt = time.Now().UTC()
	return nil
}

// --- Enquiry & feedback ---

type Enquiry struct {
	ID         string
	PropertyID string
	AgentID    string
	SenderID   string
	BuyerName  string
	BuyerPhone string
	Message    string
	CreatedAt  time.Time
}

type Feedback struct {
	ID        string
	AgentID   string
	AuthorID  string
	Rating    int32
	Comment   string
	CreatedAt time.Time
}

func NewFeedback(agentID, authorID string, rating int32, comment string) (*Feedback, error) {
	if strings.TrimSpace(agentID) == "" {
		return nil, fmt.Errorf("%w: agent id cannot be empty", ErrValidation)
	}
	if rating < 1 || rating > 5 {
		return nil, fmt.Errorf("%w: rating must be between 1 and 5", ErrValidation)
	}
	return &Feedback{
		AgentID:   agentID,
		AuthorID:  authorID,
		Rating:    rating,
		Comment:   strings.TrimSpace(comment),
		CreatedAt: time.Now().UTC(),
	}, nil
}
