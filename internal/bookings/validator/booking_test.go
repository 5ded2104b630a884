package validator

import (
	"strings"
	"testing"

	"tablebook/pkg/logger"
	"tablebook/pkg/model"
)

func newTestValidator() *BookingValidator {
	log := logger.New(logger.Config{
		Level:   "error",
		Format:  logger.JSON,
		Service: "test",
	})
	return NewBookingValidator(log)
}

func validTestBooking() *model.Booking {
	return &model.Booking{
		ID:           "BK1700000000000",
		CustomerName: "Somchai P",
		Phone:        "0812345678",
		Seats: []model.BookedSeat{
			{TableID: 1, Zone: "A", SeatNumber: 1},
			{TableID: 1, Zone: "A", SeatNumber: 2},
		},
		BookingDate: "2026-02-14",
	}
}

func TestValidateBooking(t *testing.T) {
	v := newTestValidator()

	if err := v.Validate(validTestBooking()); err != nil {
		t.Errorf("expected valid booking, got %v", err)
	}
}

func TestValidateBookingFieldErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(b *model.Booking)
		field  string
	}{
		{
			name:   "missing customer name",
			mutate: func(b *model.Booking) { b.CustomerName = "" },
			field:  "CustomerName",
		},
		{
			name:   "phone too short",
			mutate: func(b *model.Booking) { b.Phone = "123" },
			field:  "Phone",
		},
		{
			name:   "no seats",
			mutate: func(b *model.Booking) { b.Seats = nil },
			field:  "Seats",
		},
		{
			name:   "invalid seat number",
			mutate: func(b *model.Booking) { b.Seats[0].SeatNumber = 0 },
			field:  "SeatNumber",
		},
		{
			name:   "bad date format",
			mutate: func(b *model.Booking) { b.BookingDate = "14/02/2026" },
			field:  "BookingDate",
		},
		{
			name:   "impossible date",
			mutate: func(b *model.Booking) { b.BookingDate = "2026-02-30" },
			field:  "BookingDate",
		},
	}

	v := newTestValidator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := validTestBooking()
			tt.mutate(b)

			err := v.Validate(b)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.field) {
				t.Errorf("expected error on %s, got %v", tt.field, err)
			}
		})
	}
}

func TestValidateBookingDuplicateSeats(t *testing.T) {
	v := newTestValidator()

	b := validTestBooking()
	b.Seats = append(b.Seats, model.BookedSeat{TableID: 1, Zone: "A", SeatNumber: 1})

	err := v.Validate(b)
	if err == nil {
		t.Fatal("expected duplicate seat error")
	}
	if !strings.Contains(err.Error(), "duplicate seat") {
		t.Errorf("expected duplicate seat message, got %v", err)
	}
}

func TestValidateBookingSameSeatNumberDifferentTables(t *testing.T) {
	v := newTestValidator()

	b := validTestBooking()
	b.Seats = []model.BookedSeat{
		{TableID: 1, Zone: "A", SeatNumber: 1},
		{TableID: 2, Zone: "A", SeatNumber: 1},
		{TableID: 1, Zone: "B", SeatNumber: 1},
	}

	if err := v.Validate(b); err != nil {
		t.Errorf("same seat number at different tables is valid, got %v", err)
	}
}

func TestValidateUpdate(t *testing.T) {
	v := newTestValidator()

	name := "Malee K"
	if err := v.ValidateUpdate(&model.BookingUpdate{CustomerName: &name}); err != nil {
		t.Errorf("expected valid update, got %v", err)
	}

	badDate := "tomorrow"
	err := v.ValidateUpdate(&model.BookingUpdate{BookingDate: &badDate})
	if err == nil {
		t.Error("expected date format error")
	}

	dup := &model.BookingUpdate{
		Seats: []model.BookedSeat{
			{TableID: 3, Zone: "C", SeatNumber: 4},
			{TableID: 3, Zone: "C", SeatNumber: 4},
		},
	}
	if err := v.ValidateUpdate(dup); err == nil {
		t.Error("expected duplicate seat error in update")
	}
}
