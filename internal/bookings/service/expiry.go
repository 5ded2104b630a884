package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	bookingserrors "tablebook/internal/bookings/errors"
	"tablebook/pkg/config"
	apperrors "tablebook/pkg/errors"
	"tablebook/pkg/model"

	"go.mongodb.org/mongo-driver/mongo"
)

// CheckExpired reconciles bookings whose payment deadline passed: each one
// moves to payment_timeout and gets its seats released, in its own
// transaction so one broken booking cannot block the rest. Running it
// twice is harmless; the compare-and-set skips bookings already handled.
func (s *bookingService) CheckExpired(ctx context.Context) (*model.ExpiryReport, error) {
	now := s.now().UTC()

	expired, err := s.repo.FindExpired(ctx, now)
	if err != nil {
		s.cfg.Log.Error("Failed to query expired bookings", "error", err)
		return nil, apperrors.Internal("Failed to query expired bookings", err)
	}

	report := &model.ExpiryReport{
		ExpiredCount: len(expired),
	}

	for _, booking := range expired {
		err := s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
			err := s.repo.UpdateStatus(sessCtx, booking.ID, model.StatusPendingPayment, model.StatusPaymentTimeout, nil)
			if err != nil {
				if errors.Is(err, bookingserrors.ErrAlreadyTerminal) || errors.Is(err, bookingserrors.ErrNotFound) {
					// Someone else already resolved this booking.
					return nil
				}
				return err
			}
			s.releaseSeats(sessCtx, booking.ID, booking.Seats)
			booking.Status = model.StatusPaymentTimeout
			report.CancelledCount++
			return nil
		})
		if err != nil {
			s.cfg.Log.Error("Failed to expire booking during sweep",
				"booking_id", booking.ID,
				"error", err,
			)
			report.Errors = append(report.Errors, fmt.Sprintf("%s: %v", booking.ID, err))
			continue
		}
		if booking.Status == model.StatusPaymentTimeout {
			s.events.Publish(ctx, EventBookingExpired, booking)
		}
	}

	pending, err := s.repo.FindPending(ctx, now)
	if err != nil {
		s.cfg.Log.Error("Failed to query pending bookings", "error", err)
		return nil, apperrors.Internal("Failed to query pending bookings", err)
	}

	report.PendingBookings = make([]model.PendingBookingTime, 0, len(pending))
	for _, booking := range pending {
		report.PendingBookings = append(report.PendingBookings, model.PendingBookingTime{
			ID:              booking.ID,
			RemainingTimeMS: booking.PaymentDeadline.Sub(now).Milliseconds(),
			PaymentDeadline: booking.PaymentDeadline,
		})
	}

	if report.CancelledCount > 0 || len(report.Errors) > 0 {
		s.cfg.Log.Info("Expiry sweep finished",
			"expired", report.ExpiredCount,
			"cancelled", report.CancelledCount,
			"errors", len(report.Errors),
			"still_pending", len(report.PendingBookings),
		)
	}

	return report, nil
}

// ExpirySweeper runs the expiry reconciliation on a fixed interval until
// stopped. A panicking sweep is logged and the loop keeps going.
type ExpirySweeper struct {
	service  BookingService
	interval time.Duration
	cfg      *config.Config

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

func NewExpirySweeper(service BookingService, cfg *config.Config) *ExpirySweeper {
	return &ExpirySweeper{
		service:  service,
		interval: cfg.ExpirySweepInterval,
		cfg:      cfg,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

func (w *ExpirySweeper) Start() {
	go w.run()
	w.cfg.Log.Info("Expiry sweeper started", "interval", w.interval)
}

func (w *ExpirySweeper) run() {
	defer close(w.done)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stop:
			return
		case <-ticker.C:
			w.sweep()
		}
	}
}

func (w *ExpirySweeper) sweep() {
	defer func() {
		if rec := recover(); rec != nil {
			w.cfg.Log.Error("Expiry sweep panicked", "panic", rec)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), w.interval)
	defer cancel()

	if _, err := w.service.CheckExpired(ctx); err != nil {
		w.cfg.Log.Error("Expiry sweep failed", "error", err)
	}
}

// Stop halts the sweeper and waits for an in-flight sweep to finish.
func (w *ExpirySweeper) Stop() {
	w.stopOnce.Do(func() {
		close(w.stop)
	})
	<-w.done
}
