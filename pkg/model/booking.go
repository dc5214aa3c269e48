package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type Booking struct {
	ID         string          `json:"id" bson:"_id"`
	GuestID    string          `json:"guest_id" bson:"guest_id"`
	PropertyID string          `json:"property_id" bson:"property_id"`
	CheckIn    time.Time       `json:"check_in" bson:"check_in"`
	CheckOut   time.Time       `json:"check_out" bson:"check_out"`
	GuestCount int             `json:"guest_count" bson:"guest_count"`
	Status     BookingStatus   `json:"status" bson:"status"`
	TotalCost  decimal.Decimal `json:"total_cost" bson:"total_cost"`
	CanceledAt *time.Time      `json:"canceled_at,omitempty" bson:"canceled_at,omitempty"`
	CreatedAt  time.Time       `json:"created_at" bson:"created_at"`
}

// Stay returns the booked half-open date interval.
func (b *Booking) Stay() Stay {
	return Stay{CheckIn: b.CheckIn, CheckOut: b.CheckOut}
}

// CreateBookingRequest is the HTTP body for a new reservation. Dates use the
// YYYY-MM-DD layout.
type CreateBookingRequest struct {
	CheckIn    string `json:"check_in" validate:"required,datetime=2006-01-02"`
	CheckOut   string `json:"check_out" validate:"required,datetime=2006-01-02"`
	GuestCount int    `json:"guest_count" validate:"required,min=1"`
}

type CreateBookingInput struct {
	GuestID    string
	PropertyID string
	CheckIn    time.Time
	CheckOut   time.Time
	GuestCount int
}

type BookingView struct {
	ID            string          `json:"id"`
	PropertyID    string          `json:"property_id"`
	PropertyTitle string          `json:"property_title"`
	CheckIn       string          `json:"check_in"`
	CheckOut      string          `json:"check_out"`
	TotalNights   int             `json:"total_nights"`
	TotalCost     decimal.Decimal `json:"total_cost"`
	Status        string          `json:"status"`
}

type BookingHistory struct {
	Ongoing []BookingView `json:"ongoing"`
	Past    []BookingView `json:"past"`
}

const DateLayout = "2006-01-02"

// NewBookingView projects b with the title of its property.
func NewBookingView(b *Booking, propertyTitle string) BookingView {
	return BookingView{
		ID:            b.ID,
		PropertyID:    b.PropertyID,
		PropertyTitle: propertyTitle,
		CheckIn:       b.CheckIn.UTC().Format(DateLayout),
		CheckOut:      b.CheckOut.UTC().Format(DateLayout),
		TotalNights:   b.Stay().Nights(),
		TotalCost:     b.TotalCost,
		Status:        b.Status.String(),
	}
}
