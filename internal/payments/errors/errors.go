package errors

import "errors"

var (
	// ErrActivePayment is returned when a booking already has a pending or
	// approved payment. Mongo enforces it with a unique partial index.
	ErrActivePayment = errors.New("booking already has an active payment")

	ErrStatusChanged = errors.New("payment status changed")
)
