package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type Payment struct {
	ID        string          `json:"id" bson:"_id"`
	BookingID string          `json:"booking_id" bson:"booking_id"`
	Amount    decimal.Decimal `json:"amount" bson:"amount"`
	Method    PaymentMethod   `json:"method" bson:"method"`
	Status    PaymentStatus   `json:"status" bson:"status"`
	CreatedAt time.Time       `json:"created_at" bson:"created_at"`
	SettledAt *time.Time      `json:"settled_at,omitempty" bson:"settled_at,omitempty"`
}

type PaymentRequest struct {
	Method     PaymentMethod `json:"method" validate:"required,oneof=credit_card debit_card boleto pix"`
	CardNumber string        `json:"card_number" validate:"omitempty,max=64"`
}

type PaymentResult struct {
	PaymentID string          `json:"payment_id"`
	Success   bool            `json:"success"`
	Amount    decimal.Decimal `json:"amount"`
	Status    string          `json:"status"`
	Message   string          `json:"message"`
}
