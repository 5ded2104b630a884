package model

import "testing"

func TestBookingStatusValid(t *testing.T) {
	valid := []BookingStatus{StatusPendingPayment, StatusConfirmed, StatusCancelled, StatusPaymentTimeout}
	for _, s := range valid {
		if !s.Valid() {
			t.Errorf("expected %q to be valid", s)
		}
	}

	invalid := []BookingStatus{"", "pending", "PENDING_PAYMENT", "expired", "done"}
	for _, s := range invalid {
		if s.Valid() {
			t.Errorf("expected %q to be invalid", s)
		}
	}
}

func TestBookingStatusTransitions(t *testing.T) {
	all := []BookingStatus{StatusPendingPayment, StatusConfirmed, StatusCancelled, StatusPaymentTimeout}

	allowed := map[BookingStatus]map[BookingStatus]bool{
		StatusPendingPayment: {
			StatusConfirmed:      true,
			StatusCancelled:      true,
			StatusPaymentTimeout: true,
		},
	}

	for _, from := range all {
		for _, to := range all {
			want := allowed[from][to]
			if got := from.CanTransitionTo(to); got != want {
				t.Errorf("CanTransitionTo(%q -> %q) = %v, want %v", from, to, got, want)
			}
		}
	}
}

func TestBookingStatusTransitionRejectsUnknownTarget(t *testing.T) {
	if StatusPendingPayment.CanTransitionTo("expired") {
		t.Error("transition to unknown status must be rejected")
	}
}

func TestBookingStatusTerminal(t *testing.T) {
	cases := map[BookingStatus]bool{
		StatusPendingPayment: false,
		StatusConfirmed:      false,
		StatusCancelled:      true,
		StatusPaymentTimeout: true,
	}
	for s, want := range cases {
		if got := s.Terminal(); got != want {
			t.Errorf("Terminal(%q) = %v, want %v", s, got, want)
		}
	}
}

func TestBookingStatusReleasesSeats(t *testing.T) {
	cases := map[BookingStatus]bool{
		StatusPendingPayment: false,
		StatusConfirmed:      false,
		StatusCancelled:      true,
		StatusPaymentTimeout: true,
	}
	for s, want := range cases {
		if got := s.ReleasesSeats(); got != want {
			t.Errorf("ReleasesSeats(%q) = %v, want %v", s, got, want)
		}
	}
}
