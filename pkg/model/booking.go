package model

import "time"

// BookedSeat is a snapshot of a claimed seat, not a live reference. The
// table name is resolved at claim time so exports and listings survive
// later table renames.
type BookedSeat struct {
	TableID    int    `json:"table_id" bson:"table_id" validate:"required"`
	SeatNumber int    `json:"seat_number" bson:"seat_number" validate:"required,min=1"`
	Zone       string `json:"zone" bson:"zone" validate:"required"`
	TableName  string `json:"table_name,omitempty" bson:"table_name,omitempty"`
}

type Booking struct {
	ID              string        `json:"id" bson:"id"`
	CustomerName    string        `json:"customer_name" bson:"customer_name" validate:"required,min=1,max=100"`
	Phone           string        `json:"phone" bson:"phone" validate:"required,min=9,max=16"`
	Seats           []BookedSeat  `json:"seats" bson:"seats" validate:"required,min=1,dive"`
	Notes           string        `json:"notes,omitempty" bson:"notes,omitempty" validate:"max=500"`
	TotalPrice      float64       `json:"total_price" bson:"total_price"`
	BookingDate     string        `json:"booking_date" bson:"booking_date" validate:"required,booking_date"`
	Status          BookingStatus `json:"status" bson:"status"`
	PaymentProof    string        `json:"payment_proof,omitempty" bson:"payment_proof,omitempty"`
	PaymentDeadline time.Time     `json:"payment_deadline" bson:"payment_deadline"`
	CreatedAt       time.Time     `json:"created_at" bson:"created_at"`
}

// BookingUpdate carries the editable fields of a booking. A non-nil Seats
// slice triggers a full re-reservation: old seats are released, new seats
// claimed and the price recomputed from scratch.
type BookingUpdate struct {
	CustomerName *string       `json:"customer_name,omitempty" validate:"omitempty,min=1,max=100"`
	Phone        *string       `json:"phone,omitempty" validate:"omitempty,min=9,max=16"`
	Seats        []BookedSeat  `json:"seats,omitempty" validate:"omitempty,min=1,dive"`
	Notes        *string       `json:"notes,omitempty" validate:"omitempty,max=500"`
	BookingDate  *string       `json:"booking_date,omitempty"`
}

// PendingBookingTime reports how long a still-pending booking has before
// its seats are released.
type PendingBookingTime struct {
	ID              string    `json:"id"`
	RemainingTimeMS int64     `json:"remaining_time_ms"`
	PaymentDeadline time.Time `json:"payment_deadline"`
}

// ExpiryReport aggregates the outcome of one reconciliation sweep.
type ExpiryReport struct {
	ExpiredCount    int                  `json:"expired_count"`
	CancelledCount  int                  `json:"cancelled_count"`
	Errors          []string             `json:"errors,omitempty"`
	PendingBookings []PendingBookingTime `json:"pending_bookings"`
}
