package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validInput() SubmitPropertyInput {
	return SubmitPropertyInput{
		Title:        "Corner plot",
		Type:         TypePlot,
		Purpose:      PurposeSale,
		Location:     "Almaty",
		Description:  "500 sq m near the park",
		MarketAmount: decimal.NewFromInt(120),
	}
}

func TestNewProperty(t *testing.T) {
	p, err := NewProperty("seller-1", validInput())
	require.NoError(t, err)
	assert.Equal(t, StatusPending, p.Status)
	assert.Equal(t, BookingAvailable, p.BookingStatus)
	assert.Nil(t, p.FinalAmount)
	assert.Nil(t, p.GovtAmount)

	in := validInput()
	in.Title = "  "
	_, err = NewProperty("seller-1", in)
	assert.ErrorIs(t, err, ErrValidation)

	in = validInput()
	in.Type = "castle"
	_, err = NewProperty("seller-1", in)
	assert.ErrorIs(t, err, ErrValidation)

	in = validInput()
	in.MarketAmount = decimal.NewFromInt(-1)
	_, err = NewProperty("seller-1", in)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestPropertyVerify(t *testing.T) {
	p, err := NewProperty("seller-1", validInput())
	require.NoError(t, err)

	assert.ErrorIs(t, p.Verify("agent-1", 0), ErrPrecondition)
	assert.ErrorIs(t, p.Verify("agent-1", 1), ErrPrecondition, "unpriced")
	assert.Equal(t, StatusPending, p.Status)

	require.NoError(t, p.SetPricing(decimal.NewFromInt(100), decimal.NewFromInt(90)))
	require.NoError(t, p.Verify("agent-1", 1))
	assert.Equal(t, StatusLive, p.Status)
	assert.Equal(t, "agent-1", p.AgentID)

	assert.ErrorIs(t, p.Verify("agent-2", 1), ErrConflict)
	assert.Equal(t, "agent-1", p.AgentID)
	assert.ErrorIs(t, p.SetPricing(decimal.NewFromInt(1), decimal.NewFromInt(1)), ErrConflict)
}

func TestPropertyBookingTransitions(t *testing.T) {
	p, err := NewProperty("seller-1", validInput())
	require.NoError(t, err)
	assert.ErrorIs(t, p.Hold(), ErrConflict, "not live")

	p.Status = StatusLive
	require.NoError(t, p.Hold())
	assert.ErrorIs(t, p.Hold(), ErrConflict)
	require.NoError(t, p.Release())
	assert.ErrorIs(t, p.Release(), ErrConflict)

	require.NoError(t, p.Hold())
	require.NoError(t, p.MarkSold())
	assert.Equal(t, StatusSold, p.Status)
	assert.Equal(t, BookingSold, p.BookingStatus)
	assert.ErrorIs(t, p.MarkSold(), ErrConflict)
}

func TestBookingAndPayment(t *testing.T) {
	_, err := NewBooking("p1", "b1", BuyerInput{Name: "Aida"})
	assert.ErrorIs(t, err, ErrValidation)

	b, err := NewBooking("p1", "b1", BuyerInput{Name: "Aida", Phone: "+7700"})
	require.NoError(t, err)
	require.NoError(t, b.Complete())
	assert.ErrorIs(t, b.Cancel(), ErrConflict)

	_, err = NewPayment(b, decimal.Zero)
	assert.ErrorIs(t, err, ErrValidation)

	pay, err := NewPayment(b, decimal.NewFromInt(100))
	require.NoError(t, err)
	assert.Equal(t, PaymentPaid, pay.Status)
	require.NoError(t, pay.Verify("agent-1"))
	assert.ErrorIs(t, pay.Verify("agent-1"), ErrConflict)
}

func TestPrimaryImage(t *testing.T) {
	now := time.Now()
	seller := &Image{ID: "s", UploadedBy: UploadedBySeller, CreatedAt: now.Add(-time.Hour)}
	agentNew := &Image{ID: "a2", UploadedBy: UploadedByAgent, CreatedAt: now}
	agentOld := &Image{ID: "a1", UploadedBy: UploadedByAgent, CreatedAt: now.Add(-time.Minute)}

	assert.Nil(t, PrimaryImage(nil))
	assert.Equal(t, "s", PrimaryImage([]*Image{seller}).ID)
	assert.Equal(t, "a1", PrimaryImage([]*Image{seller, agentNew, agentOld}).ID)
}

func TestNewFeedback(t *testing.T) {
	_, err := NewFeedback("agent-1", "", 6, "")
	assert.ErrorIs(t, err, ErrValidation)
	f, err := NewFeedback("agent-1", "", 5, " great ")
	require.NoError(t, err)
	assert.Equal(t, "great", f.Comment)
}
