package mongodb

import (
	"fmt"
	"time"

	"github.com/Abdurahmanit/GroupProject/estate-service/internal/estate/domain"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type propertyDocument struct {
	ID            primitive.ObjectID    `bson:"_id,omitempty"`
	SellerID      string                `bson:"seller_id"`
	AgentID       string                `bson:"agent_id,omitempty"`
	Title         string                `bson:"title"`
	Type          domain.PropertyType   `bson:"type"`
	Purpose       domain.Purpose        `bson:"purpose"`
	Location      string                `bson:"location"`
	Description   string                `bson:"description"`
	MarketAmount  primitive.Decimal128  `bson:"market_amount"`
	FinalAmount   *primitive.Decimal128 `bson:"final_amount,omitempty"`
	GovtAmount    *primitive.Decimal128 `bson:"govt_amount,omitempty"`
	Status        domain.PropertyStatus `bson:"status"`
	BookingStatus domain.BookingState   `bson:"booking_status"`
	CreatedAt     time.Time             `bson:"created_at"`
	UpdatedAt     time.Time             `bson:"updated_at"`
	Version       int64                 `bson:"version"`
	LockSeq       int64                 `bson:"lock_seq"`
}

type bookingDocument struct {
	ID         primitive.ObjectID   `bson:"_id,omitempty"`
	PropertyID string               `bson:"property_id"`
	BuyerID    string               `bson:"buyer_id"`
	BuyerName  string               `bson:"buyer_name"`
	BuyerPhone string               `bson:"buyer_phone"`
	BuyerEmail string               `bson:"buyer_email,omitempty"`
	Status     domain.BookingStatus `bson:"status"`
	CreatedAt  time.Time            `bson:"created_at"`
	UpdatedAt  time.Time            `bson:"updated_at"`
	Version    int64                `bson:"version"`
}

type paymentDocument struct {
	ID         primitive.ObjectID   `bson:"_id,omitempty"`
	BookingID  string               `bson:"booking_id"`
	PropertyID string               `bson:"property_id"`
	Amount     primitive.Decimal128 `bson:"amount"`
	Status     domain.PaymentStatus `bson:"status"`
	VerifiedBy string               `bson:"verified_by,omitempty"`
	CreatedAt  time.Time            `bson:"created_at"`
	UpdatedAt  time.Time            `bson:"updated_at"`
	Version    int64                `bson:"version"`
}

type imageDocument struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	PropertyID string             `bson:"property_id"`
	UploadedBy domain.Uploader    `bson:"uploaded_by"`
	UploaderID string             `bson:"uploader_id"`
	ObjectKey  string             `bson:"object_key"`
	URL        string             `bson:"url"`
	CreatedAt  time.Time          `bson:"created_at"`
}

type enquiryDocument struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	PropertyID string             `bson:"property_id"`
	AgentID    string             `bson:"agent_id"`
	SenderID   string             `bson:"sender_id,omitempty"`
	BuyerName  string             `bson:"buyer_name"`
	BuyerPhone string             `bson:"buyer_phone"`
	Message    string             `bson:"message"`
	CreatedAt  time.Time          `bson:"created_at"`
}

type feedbackDocument struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	AgentID   string             `bson:"agent_id"`
	AuthorID  string             `bson:"author_id,omitempty"`
	Rating    int32              `bson:"rating"`
	Comment   string             `bson:"comment"`
	CreatedAt time.Time          `bson:"created_at"`
}

// --- decimal ---

func toDecimal128(d decimal.Decimal) (primitive.Decimal128, error) {
	v, err := primitive.ParseDecimal128(d.String())
	if err != nil {
		return primitive.Decimal128{}, fmt.Errorf("amount %s does not fit decimal128: %w", d.String(), err)
	}
	return v, nil
}

func toDecimal128Ptr(d *decimal.Decimal) (*primitive.Decimal128, error) {
	if d == nil {
		return nil, nil
	}
	v, err := toDecimal128(*d)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func fromDecimal128(v primitive.Decimal128) (decimal.Decimal, error) {
	return decimal.NewFromString(v.String())
}

func fromDecimal128Ptr(v *primitive.Decimal128) (*decimal.Decimal, error) {
	if v == nil {
		return nil, nil
	}
	d, err := fromDecimal128(*v)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// --- property ---

func toPropertyDocument(p *domain.Property) (*propertyDocument, error) {
	market, err := toDecimal128(p.MarketAmount)
	if err != nil {
		return nil, err
	}
	final, err := toDecimal128Ptr(p.FinalAmount)
	if err != nil {
		return nil, err
	}
	govt, err := toDecimal128Ptr(p.GovtAmount)
	if err != nil {
		return nil, err
	}
	var id primitive.ObjectID
	if p.ID != "" {
		if id, err = primitive.ObjectIDFromHex(p.ID); err != nil {
			return nil, fmt.Errorf("toPropertyDocument: invalid id %q: %w", p.ID, err)
		}
	}
	return &propertyDocument{
		ID:            id,
		SellerID:      p.SellerID,
		AgentID:       p.AgentID,
		Title:         p.Title,
		Type:          p.Type,
		Purpose:       p.Purpose,
		Location:      p.Location,
		Description:   p.Description,
		MarketAmount:  market,
		FinalAmount:   final,
		GovtAmount:    govt,
		Status:        p.Status,
		BookingStatus: p.BookingStatus,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
		Version:       p.Version,
	}, nil
}

func toDomainProperty(d *propertyDocument) (*domain.Property, error) {
	market, err := fromDecimal128(d.MarketAmount)
	if err != nil {
		return nil, fmt.Errorf("property %s market amount: %w", d.ID.Hex(), err)
	}
	final, err := fromDecimal128Ptr(d.FinalAmount)
	if err != nil {
		return nil, fmt.Errorf("property %s final amount: %w", d.ID.Hex(), err)
	}
	govt, err := fromDecimal128Ptr(d.GovtAmount)
	if err != nil {
		return nil, fmt.Errorf("property %s govt amount: %w", d.ID.Hex(), err)
	}
	return &domain.Property{
		ID:            d.ID.Hex(),
		SellerID:      d.SellerID,
		AgentID:       d.AgentID,
		Title:         d.Title,
		Type:          d.Type,
		Purpose:       d.Purpose,
		Location:      d.Location,
		Description:   d.Description,
		MarketAmount:  market,
		FinalAmount:   final,
		GovtAmount:    govt,
		Status:        d.Status,
		BookingStatus: d.BookingStatus,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
		Version:       d.Version,
	}, nil
}

// propertyMutableFields is the $set body of a property write. Identity,
// seller, creation time and the version/lock counters are never set here.
func propertyMutableFields(d *propertyDocument) bson.M {
	set := bson.M{
		"agent_id":       d.AgentID,
		"title":          d.Title,
		"type":           d.Type,
		"purpose":        d.Purpose,
		"location":       d.Location,
		"description":    d.Description,
		"market_amount":  d.MarketAmount,
		"status":         d.Status,
		"booking_status": d.BookingStatus,
		"updated_at":     d.UpdatedAt,
	}
	if d.FinalAmount != nil {
		set["final_amount"] = *d.FinalAmount
	}
	if d.GovtAmount != nil {
		set["govt_amount"] = *d.GovtAmount
	}
	return set
}

// --- booking ---

func toBookingDocument(b *domain.Booking) (*bookingDocument, error) {
	var id primitive.ObjectID
	if b.ID != "" {
		var err error
		if id, err = primitive.ObjectIDFromHex(b.ID); err != nil {
			return nil, fmt.Errorf("toBookingDocument: invalid id %q: %w", b.ID, err)
		}
	}
	return &bookingDocument{
		ID:         id,
		PropertyID: b.PropertyID,
		BuyerID:    b.BuyerID,
		BuyerName:  b.BuyerName,
		BuyerPhone: b.BuyerPhone,
		BuyerEmail: b.BuyerEmail,
		Status:     b.Status,
		CreatedAt:  b.CreatedAt,
		UpdatedAt:  b.UpdatedAt,
		Version:    b.Version,
	}, nil
}

func toDomainBooking(d *bookingDocument) *domain.Booking {
	return &domain.Booking{
		ID:         d.ID.Hex(),
		PropertyID: d.PropertyID,
		BuyerID:    d.BuyerID,
		BuyerName:  d.BuyerName,
		BuyerPhone: d.BuyerPhone,
		BuyerEmail: d.BuyerEmail,
		Status:     d.Status,
		CreatedAt:  d.CreatedAt,
		UpdatedAt:  d.UpdatedAt,
		Version:    d.Version,
	}
}

// --- payment ---

func toPaymentDocument(p *domain.Payment) (*paymentDocument, error) {
	amount, err := toDecimal128(p.Amount)
	if err != nil {
		return nil, err
	}
	var id primitive.ObjectID
	if p.ID != "" {
		if id, err = primitive.ObjectIDFromHex(p.ID); err != nil {
			return nil, fmt.Errorf("toPaymentDocument: invalid id %q: %w", p.ID, err)
		}
	}
	return &paymentDocument{
		ID:         id,
		BookingID:  p.BookingID,
		PropertyID: p.PropertyID,
		Amount:     amount,
		Status:     p.Status,
		VerifiedBy: p.VerifiedBy,
		CreatedAt:  p.CreatedAt,
		UpdatedAt:  p.UpdatedAt,
		Version:    p.Version,
	}, nil
}

func toDomainPayment(d *paymentDocument) (*domain.Payment, error) {
	amount, err := fromDecimal128(d.Amount)
	if err != nil {
		return nil, fmt.Errorf("payment %s amount: %w", d.ID.Hex(), err)
	}
	return &domain.Payment{
		ID:         d.ID.Hex(),
		BookingID:  d.BookingID,
		PropertyID: d.PropertyID,
		Amount:     amount,
		Status:     d.Status,
		VerifiedBy: d.VerifiedBy,
		CreatedAt:  d.CreatedAt,
		UpdatedAt:  d.UpdatedAt,
		Version:    d.Version,
	}, nil
}

// --- image, enquiry, feedback ---

func toImageDocument(img *domain.Image) *imageDocument {
	return &imageDocument{
		PropertyID: img.PropertyID,
		UploadedBy: img.UploadedBy,
		UploaderID: img.UploaderID,
		ObjectKey:  img.ObjectKey,
		URL:        img.URL,
		CreatedAt:  img.CreatedAt,
	}
}

func toDomainImage(d *imageDocument) *domain.Image {
	return &domain.Image{
		ID:         d.ID.Hex(),
		PropertyID: d.PropertyID,
		UploadedBy: d.UploadedBy,
		UploaderID: d.UploaderID,
		ObjectKey:  d.ObjectKey,
		URL:        d.URL,
		CreatedAt:  d.CreatedAt,
	}
}

func toDomainEnquiry(d *enquiryDocument) *domain.Enquiry {
	return &domain.Enquiry{
		ID:         d.ID.Hex(),
		PropertyID: d.PropertyID,
		AgentID:    d.AgentID,
		SenderID:   d.SenderID,
		BuyerName:  d.BuyerName,
		BuyerPhone: d.BuyerPhone,
		Message:    d.Message,
		CreatedAt:  d.CreatedAt,
	}
}
