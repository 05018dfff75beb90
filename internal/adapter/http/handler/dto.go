package handler

import (
	"time"

	"github.com/Abdurahmanit/GroupProject/estate-service/internal/estate/domain"
	"github.com/Abdurahmanit/GroupProject/estate-service/internal/identity"
	"github.com/shopspring/decimal"
)

// Requests

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

func (r registerRequest) input() identity.RegisterInput {
	return identity.RegisterInput{Name: r.Name, Email: r.Email, Phone: r.Phone, Password: r.Password}
}

type loginRequest struct {
	Role     string `json:"role"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type submitPropertyRequest struct {
	Title        string          `json:"title"`
	Type         string          `json:"type"`
	Purpose      string          `json:"purpose"`
	Location     string          `json:"location"`
	Description  string          `json:"description"`
	MarketAmount decimal.Decimal `json:"market_amount"`
}

type pricingRequest struct {
	FinalAmount decimal.Decimal `json:"final_amount"`
	GovtAmount  decimal.Decimal `json:"govt_amount"`
}

type reserveRequest struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email"`
}

type paymentRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

type enquiryRequest struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Message string `json:"message"`
}

type feedbackRequest struct {
	Rating  int32  `json:"rating"`
	Comment string `json:"comment"`
}

// Responses

type idResponse struct {
	ID string `json:"id"`
}

type accountResponse struct {
	ID     string `json:"id"`
	Role   string `json:"role"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Status string `json:"status"`
}

func toAccountResponse(acc *identity.Account) accountResponse {
	return accountResponse{
		ID:     acc.ID,
		Role:   string(acc.Role),
		Name:   acc.Name,
		Email:  acc.Email,
		Status: string(acc.Status),
	}
}

type loginResponse struct {
	Token   string          `json:"token"`
	Account accountResponse `json:"account"`
}

type propertyResponse struct {
	ID            string           `json:"id"`
	SellerID      string           `json:"seller_id"`
	AgentID       string           `json:"agent_id,omitempty"`
	Title         string           `json:"title"`
	Type          string           `json:"type"`
	Purpose       string           `json:"purpose"`
	Location      string           `json:"location"`
	Description   string           `json:"description"`
	MarketAmount  decimal.Decimal  `json:"market_amount"`
	FinalAmount   *decimal.Decimal `json:"final_amount,omitempty"`
	GovtAmount    *decimal.Decimal `json:"govt_amount,omitempty"`
	Status        string           `json:"status"`
	BookingStatus string           `json:"booking_status"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

func toPropertyResponse(p *domain.Property) propertyResponse {
	return propertyResponse{
		ID:            p.ID,
		SellerID:      p.SellerID,
		AgentID:       p.AgentID,
		Title:         p.Title,
		Type:          string(p.Type),
		Purpose:       string(p.Purpose),
		Location:      p.Location,
		Description:   p.Description,
		MarketAmount:  p.MarketAmount,
		FinalAmount:   p.FinalAmount,
		GovtAmount:    p.GovtAmount,
		Status:        string(p.Status),
		BookingStatus: string(p.BookingStatus),
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

func toPropertyList(props []*domain.Property) []propertyResponse {
	out := make([]propertyResponse, 0, len(props))
	for _, p := range props {
		out = append(out, toPropertyResponse(p))
	}
	return out
}

type imageResponse struct {
	ID         string    `json:"id"`
	UploadedBy string    `json:"uploaded_by"`
	URL        string    `json:"url"`
	CreatedAt  time.Time `json:"created_at"`
}

func toImageResponse(img *domain.Image) imageResponse {
	return imageResponse{ID: img.ID, UploadedBy: string(img.UploadedBy), URL: img.URL, CreatedAt: img.CreatedAt}
}

type propertyDetailsResponse struct {
	Property     propertyResponse `json:"property"`
	Images       []imageResponse  `json:"images"`
	PrimaryImage *imageResponse   `json:"primary_image,omitempty"`
}

func toDetailsResponse(d *domain.PropertyDetails) propertyDetailsResponse {
	resp := propertyDetailsResponse{
		Property: toPropertyResponse(d.Property),
		Images:   make([]imageResponse, 0, len(d.Images)),
	}
	for _, img := range d.Images {
		resp.Images = append(resp.Images, toImageResponse(img))
	}
	if d.PrimaryImage != nil {
		primary := toImageResponse(d.PrimaryImage)
		resp.PrimaryImage = &primary
	}
	return resp
}

type bookingResponse struct {
	ID         string    `json:"id"`
	PropertyID string    `json:"property_id"`
	BuyerID    string    `json:"buyer_id"`
	BuyerName  string    `json:"buyer_name"`
	BuyerPhone string    `json:"buyer_phone"`
	BuyerEmail string    `json:"buyer_email,omitempty"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
}

func toBookingList(bookings []*domain.Booking) []bookingResponse {
	out := make([]bookingResponse, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, bookingResponse{
			ID:         b.ID,
			PropertyID: b.PropertyID,
			BuyerID:    b.BuyerID,
			BuyerName:  b.BuyerName,
			BuyerPhone: b.BuyerPhone,
			BuyerEmail: b.BuyerEmail,
			Status:     string(b.Status),
			CreatedAt:  b.CreatedAt,
		})
	}
	return out
}

type enquiryResponse struct {
	ID         string    `json:"id"`
	PropertyID string    `json:"property_id"`
	BuyerName  string    `json:"buyer_name"`
	BuyerPhone string    `json:"buyer_phone"`
	Message    string    `json:"message"`
	CreatedAt  time.Time `json:"created_at"`
}

func toEnquiryList(enquiries []*domain.Enquiry) []enquiryResponse {
	out := make([]enquiryResponse, 0, len(enquiries))
	for _, e := range enquiries {
		out = append(out, enquiryResponse{
			ID:         e.ID,
			PropertyID: e.PropertyID,
			BuyerName:  e.BuyerName,
			BuyerPhone: e.BuyerPhone,
			Message:    e.Message,
			CreatedAt:  e.CreatedAt,
		})
	}
	return out
}
