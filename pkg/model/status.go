package model

type BookingStatus string

const (
	StatusPendingPayment BookingStatus = "pending_payment"
	StatusConfirmed      BookingStatus = "confirmed"
	StatusCancelled      BookingStatus = "cancelled"
	StatusPaymentTimeout BookingStatus = "payment_timeout"
)

func (s BookingStatus) Valid() bool {
	switch s {
	case StatusPendingPayment, StatusConfirmed, StatusCancelled, StatusPaymentTimeout:
		return true
	}
	return false
}

// Terminal statuses permit no further transitions.
func (s BookingStatus) Terminal() bool {
	return s == StatusCancelled || s == StatusPaymentTimeout
}

// CanTransitionTo implements the booking state machine: a pending booking
// may be confirmed, cancelled or timed out; everything else is illegal.
func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	if !next.Valid() {
		return false
	}
	switch s {
	case StatusPendingPayment:
		return next == StatusConfirmed || next == StatusCancelled || next == StatusPaymentTimeout
	default:
		return false
	}
}

// ReleasesSeats reports whether entering this status must free every seat
// the booking holds.
func (s BookingStatus) ReleasesSeats() bool {
	return s == StatusCancelled || s == StatusPaymentTimeout
}
