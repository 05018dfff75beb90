package domain

import "context"

// Ledger is the transactional store behind the lifecycle engine.
type Ledger interface {
	// CreateProperty inserts a new aggregate root and sets its ID.
	CreateProperty(ctx context.Context, p *Property) error

	// WithinProperty runs fn as one atomic unit scoped to the property and its
	// bookings, payments and images. Writes made through tx become visible only
	// if fn returns nil; any error or panic rolls them back. Two scopes on the
	// same property are serialised, scopes on different properties are not.
	WithinProperty(ctx context.Context, propertyID string, fn func(ctx context.Context, tx LedgerTx) error) error

	// Lookups outside a scope. Used to resolve the owning property of a
	// booking or payment before entering its scope, and by read paths.
	ReadBooking(ctx context.Context, id string) (*Booking, error)
	ReadPayment(ctx context.Context, id string) (*Payment, error)

	PropertyReader
}

// LedgerTx is the view of the store available inside WithinProperty.
type LedgerTx interface {
	ReadProperty(ctx context.Context, id string) (*Property, error)
	ReadBooking(ctx context.Context, id string) (*Booking, error)
	ReadPayment(ctx context.Context, id string) (*Payment, error)
	// ActiveBooking returns the hold booking of the property or ErrNotFound.
	ActiveBooking(ctx context.Context, propertyID string) (*Booking, error)
	// VerifiedPaymentFor returns a verified payment of the booking or ErrNotFound.
	VerifiedPaymentFor(ctx context.Context, bookingID string) (*Payment, error)
	CountImagesFor(ctx context.Context, propertyID string) (int64, error)

	// Write*IfUnchanged persist the entity only if the stored Version equals
	// the entity's Version, then bump Version. A mismatch is ErrConflict.
	WritePropertyIfUnchanged(ctx context.Context, p *Property) error
	WriteBookingIfUnchanged(ctx context.Context, b *Booking) error
	WritePaymentIfUnchanged(ctx context.Context, p *Payment) error

	InsertBooking(ctx context.Context, b *Booking) error
	InsertPayment(ctx context.Context, p *Payment) error
	InsertImage(ctx context.Context, img *Image) error
}

// PropertyFilter narrows read-path listings. Empty fields match everything.
type PropertyFilter struct {
	Status   PropertyStatus
	Type     PropertyType
	SellerID string
	AgentID  string
}

// PropertyReader serves the read paths. No locking.
type PropertyReader interface {
	GetProperty(ctx context.Context, id string) (*Property, error)
	ListProperties(ctx context.Context, filter PropertyFilter) ([]*Property, error)
	ListImages(ctx context.Context, propertyID string) ([]*Image, error)
	ListBookings(ctx context.Context, status BookingStatus) ([]*Booking, error)
	// CountProperties tallies the properties matching filter by status.
	CountProperties(ctx context.Context, filter PropertyFilter) (PropertyCounts, error)
	// CountPropertiesByAgent tallies verified properties per assigned agent.
	CountPropertiesByAgent(ctx context.Context) (map[string]PropertyCounts, error)
}

type EnquiryRepository interface {
	CreateEnquiry(ctx context.Context, e *Enquiry) error
	ListEnquiriesByAgent(ctx context.Context, agentID string) ([]*Enquiry, error)
	CreateFeedback(ctx context.Context, f *Feedback) error
}

// PropertyCache is a read-through cache for property details. Every
// DeleteProperty advances the property's generation; a fill carries the
// generation read before loading from the store and is refused with
// ErrConflict once that generation is stale.
type PropertyCache interface {
	GetProperty(ctx context.Context, id string) (*PropertyDetails, error)
	Generation(ctx context.Context, id string) (int64, error)
	SetProperty(ctx context.Context, details *PropertyDetails, generation int64) error
	DeleteProperty(ctx context.Context, id string) error
}

// PropertyDetails is the read projection of a property with its media.
type PropertyDetails struct {
	Property     *Property `json:"property"`
	Images       []*Image  `json:"images"`
	PrimaryImage *Image    `json:"primary_image,omitempty"`
}

// EventPublisher emits lifecycle events after commit.
type EventPublisher interface {
	Publish(ctx context.Context, subject string, data interface{}) error
}

// Storage keeps image bytes and returns the object key and public URL.
type Storage interface {
	Upload(ctx context.Context, fileName string, data []byte) (objectKey string, url string, err error)
}

// SellerNotifier informs a seller about changes to their listing.
type SellerNotifier interface {
	NotifySeller(ctx context.Context, sellerID, subject, body string) error
}
