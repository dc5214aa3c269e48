package model

import "errors"

type BookingStatus string

const (
	BookingCreated   BookingStatus = "Created"
	BookingConfirmed BookingStatus = "Confirmed"
	BookingCanceled  BookingStatus = "Canceled"
	BookingFinished  BookingStatus = "Finished"
)

var (
	ErrAlreadyCanceled = errors.New("booking is already canceled")
	ErrBookingFinished = errors.New("booking is finished")
	ErrNotPayable      = errors.New("booking is not awaiting payment")
	ErrNotConfirmed    = errors.New("booking is not confirmed")
	ErrUnknownStatus   = errors.New("unknown booking status")
)

func (s BookingStatus) String() string {
	return string(s)
}

func (s BookingStatus) Valid() bool {
	switch s {
	case BookingCreated, BookingConfirmed, BookingCanceled, BookingFinished:
		return true
	}
	return false
}

// Terminal reports whether no further transition may leave s.
func (s BookingStatus) Terminal() bool {
	return s == BookingCanceled || s == BookingFinished
}

// Confirm is the Created -> Confirmed transition triggered by an approved payment.
func (s BookingStatus) Confirm() (BookingStatus, error) {
	if !s.Valid() {
		return s, ErrUnknownStatus
	}
	if s != BookingCreated {
		return s, ErrNotPayable
	}
	return BookingConfirmed, nil
}

// Cancel moves Created or Confirmed bookings to Canceled.
func (s BookingStatus) Cancel() (BookingStatus, error) {
	switch s {
	case BookingCreated, BookingConfirmed:
		return BookingCanceled, nil
	case BookingCanceled:
		return s, ErrAlreadyCanceled
	case BookingFinished:
		return s, ErrBookingFinished
	default:
		return s, ErrUnknownStatus
	}
}

// Finish closes a confirmed stay once check-out has passed.
func (s BookingStatus) Finish() (BookingStatus, error) {
	switch s {
	case BookingConfirmed:
		return BookingFinished, nil
	case BookingCanceled:
		return s, ErrAlreadyCanceled
	case BookingFinished:
		return s, ErrBookingFinished
	case BookingCreated:
		return s, ErrNotConfirmed
	default:
		return s, ErrUnknownStatus
	}
}

type PaymentStatus string

// A payment attempt is recorded Pending before the gateway is called and is
// settled exactly once. Expired marks a Pending attempt whose outcome never
// arrived within the pending TTL.
const (
	PaymentPending  PaymentStatus = "Pending"
	PaymentApproved PaymentStatus = "Approved"
	PaymentDeclined PaymentStatus = "Declined"
	PaymentExpired  PaymentStatus = "Expired"
)

func (s PaymentStatus) String() string {
	return string(s)
}

type PaymentMethod string

const (
	MethodCreditCard PaymentMethod = "credit_card"
	MethodDebitCard  PaymentMethod = "debit_card"
	MethodBoleto     PaymentMethod = "boleto"
	MethodPix        PaymentMethod = "pix"
)

type Role string

const (
	RoleGuest Role = "guest"
	RoleHost  Role = "host"
)

// Normalize maps an absent or unknown role claim to RoleGuest.
func (r Role) Normalize() Role {
	if r == RoleHost {
		return RoleHost
	}
	return RoleGuest
}
