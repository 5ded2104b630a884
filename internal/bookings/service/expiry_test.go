package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	bookingserrors "tablebook/internal/bookings/errors"
	"tablebook/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
)

func expiredBooking(id string, seats ...model.BookedSeat) *model.Booking {
	b := validBooking(seats...)
	b.ID = id
	b.Status = model.StatusPendingPayment
	b.PaymentDeadline = testNow.Add(-5 * time.Minute)
	return b
}

func TestCheckExpiredSweep(t *testing.T) {
	released := make([]string, 0)
	transitions := make(map[string]model.BookingStatus)

	deps := &testDeps{
		repo: &mockBookingRepository{
			findExpiredFunc: func(ctx context.Context, now time.Time) ([]*model.Booking, error) {
				return []*model.Booking{
					expiredBooking("BK1"),
					expiredBooking("BK2"),
				}, nil
			},
			updateStatusFunc: func(ctx context.Context, id string, from, to model.BookingStatus, set bson.M) error {
				transitions[id] = to
				return nil
			},
			findPendingFunc: func(ctx context.Context, now time.Time) ([]*model.Booking, error) {
				b := validBooking()
				b.ID = "BK3"
				b.PaymentDeadline = now.Add(7 * time.Minute)
				return []*model.Booking{b}, nil
			},
		},
		tableRepo: &mockTableRepository{
			releaseSeatFunc: func(ctx context.Context, tableID int, zone string, seatNumber int) error {
				released = append(released, fmt.Sprintf("%s/%d/%d", zone, tableID, seatNumber))
				return nil
			},
		},
	}
	service := newTestService(deps)
	service.now = func() time.Time { return testNow }

	report, err := service.CheckExpired(context.Background())
	if err != nil {
		t.Fatalf("CheckExpired failed: %v", err)
	}

	if report.ExpiredCount != 2 {
		t.Errorf("expected 2 expired, got %d", report.ExpiredCount)
	}
	if report.CancelledCount != 2 {
		t.Errorf("expected 2 cancelled, got %d", report.CancelledCount)
	}
	if len(report.Errors) != 0 {
		t.Errorf("expected no errors, got %v", report.Errors)
	}
	for id, to := range transitions {
		if to != model.StatusPaymentTimeout {
			t.Errorf("booking %s: expected %s, got %s", id, model.StatusPaymentTimeout, to)
		}
	}
	// 2 seats per booking
	if len(released) != 4 {
		t.Errorf("expected 4 seats released, got %v", released)
	}
	if len(report.PendingBookings) != 1 {
		t.Fatalf("expected 1 pending booking, got %d", len(report.PendingBookings))
	}
	if report.PendingBookings[0].RemainingTimeMS != (7 * time.Minute).Milliseconds() {
		t.Errorf("expected 420000ms remaining, got %d", report.PendingBookings[0].RemainingTimeMS)
	}
}

func TestCheckExpiredIdempotent(t *testing.T) {
	released := 0
	deps := &testDeps{
		repo: &mockBookingRepository{
			findExpiredFunc: func(ctx context.Context, now time.Time) ([]*model.Booking, error) {
				return []*model.Booking{expiredBooking("BK1")}, nil
			},
			updateStatusFunc: func(ctx context.Context, id string, from, to model.BookingStatus, set bson.M) error {
				// A concurrent sweep already moved this booking.
				return fmt.Errorf("%w: %s is %s", bookingserrors.ErrAlreadyTerminal, id, model.StatusPaymentTimeout)
			},
		},
		tableRepo: &mockTableRepository{
			releaseSeatFunc: func(ctx context.Context, tableID int, zone string, seatNumber int) error {
				released++
				return nil
			},
		},
	}
	service := newTestService(deps)
	service.now = func() time.Time { return testNow }

	report, err := service.CheckExpired(context.Background())
	if err != nil {
		t.Fatalf("CheckExpired failed: %v", err)
	}

	if report.CancelledCount != 0 {
		t.Errorf("already handled booking must not be counted, got %d", report.CancelledCount)
	}
	if len(report.Errors) != 0 {
		t.Errorf("losing the compare-and-set is not an error, got %v", report.Errors)
	}
	if released != 0 {
		t.Errorf("seats must not be re-released, got %d releases", released)
	}
}

func TestCheckExpiredIsolatesFailures(t *testing.T) {
	deps := &testDeps{
		repo: &mockBookingRepository{
			findExpiredFunc: func(ctx context.Context, now time.Time) ([]*model.Booking, error) {
				return []*model.Booking{
					expiredBooking("BK1"),
					expiredBooking("BK2"),
					expiredBooking("BK3"),
				}, nil
			},
			updateStatusFunc: func(ctx context.Context, id string, from, to model.BookingStatus, set bson.M) error {
				if id == "BK2" {
					return errors.New("write conflict")
				}
				return nil
			},
		},
	}
	service := newTestService(deps)
	service.now = func() time.Time { return testNow }

	report, err := service.CheckExpired(context.Background())
	if err != nil {
		t.Fatalf("CheckExpired failed: %v", err)
	}

	if report.CancelledCount != 2 {
		t.Errorf("expected 2 cancelled despite one failure, got %d", report.CancelledCount)
	}
	if len(report.Errors) != 1 {
		t.Fatalf("expected 1 error, got %v", report.Errors)
	}
}

func TestExpirySweeperStop(t *testing.T) {
	deps := &testDeps{}
	cfg := newTestConfig()
	cfg.ExpirySweepInterval = 10 * time.Millisecond
	deps.cfg = cfg

	service := newTestService(deps)
	sweeper := NewExpirySweeper(service, cfg)

	sweeper.Start()
	time.Sleep(35 * time.Millisecond)
	sweeper.Stop()

	// Stop is safe to call twice.
	sweeper.Stop()
}
