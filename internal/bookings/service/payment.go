package service

import (
	"context"
	"errors"

	bookingserrors "tablebook/internal/bookings/errors"
	"tablebook/pkg/client"
	apperrors "tablebook/pkg/errors"
	"tablebook/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// ConfirmPayment verifies a payment slip for a pending booking, stores the
// proof durably and confirms the booking. A booking whose deadline already
// passed is expired on the spot instead, exactly as the periodic sweep
// would have done. amount is the client's declared payment amount; when
// present it must match the stored total, which is what the slip is
// verified against either way.
func (s *bookingService) ConfirmPayment(ctx context.Context, id string, slipPath string, amount *float64) (*model.Booking, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}
	if slipPath == "" {
		return nil, apperrors.InvalidInput("Payment slip is required")
	}

	booking, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if booking.Status != model.StatusPendingPayment {
		return nil, apperrors.InvalidTransition(string(booking.Status), string(model.StatusConfirmed))
	}

	now := s.now().UTC()
	if now.After(booking.PaymentDeadline) {
		if err := s.expireBooking(ctx, booking); err != nil {
			return nil, err
		}
		s.events.Publish(ctx, EventBookingExpired, booking)
		return nil, apperrors.InvalidInput("Payment deadline has passed; booking expired and seats released").
			WithDetails(map[string]any{
				"booking_id":       booking.ID,
				"payment_deadline": booking.PaymentDeadline,
			})
	}

	if amount != nil && *amount != booking.TotalPrice {
		return nil, apperrors.InvalidInput("Declared amount does not match the booking total").
			WithDetails(map[string]any{
				"declared_amount": *amount,
				"total_price":     booking.TotalPrice,
			})
	}

	// Verify the slip before touching any state. A rejected slip leaves
	// the booking pending so the customer can retry before the deadline.
	slip, err := s.verifier.Verify(ctx, slipPath, booking.TotalPrice)
	if err != nil {
		var rejected *client.SlipRejectedError
		if errors.As(err, &rejected) {
			s.cfg.Log.Warn("Payment slip rejected",
				"booking_id", booking.ID,
				"verifier_code", rejected.Code,
				"error", rejected.Message,
			)
			return nil, apperrors.ProofRejected(rejected.Message, rejected.Code)
		}
		s.cfg.Log.Error("Payment slip verification failed",
			"booking_id", booking.ID,
			"error", err,
		)
		return nil, apperrors.Unavailable("payment verification")
	}

	proofURL, err := s.proofStore.Upload(ctx, slipPath)
	if err != nil {
		s.cfg.Log.Error("Failed to store payment proof",
			"booking_id", booking.ID,
			"error", err,
		)
		return nil, apperrors.StorageFailure("Failed to store payment proof", err)
	}

	err = s.repo.UpdateStatus(ctx, booking.ID, model.StatusPendingPayment, model.StatusConfirmed, bson.M{
		"payment_proof": proofURL,
	})
	if err != nil {
		if errors.Is(err, bookingserrors.ErrAlreadyTerminal) {
			// Lost the race against a cancel or an expiry sweep.
			return nil, apperrors.InvalidTransition(string(model.StatusPendingPayment), string(model.StatusConfirmed))
		}
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Booking", booking.ID)
		}
		s.cfg.Log.Error("Failed to confirm booking",
			"booking_id", booking.ID,
			"error", err,
		)
		return nil, apperrors.Internal("Failed to confirm booking", err)
	}

	booking.Status = model.StatusConfirmed
	booking.PaymentProof = proofURL

	s.cfg.Log.Info("Booking confirmed successfully",
		"booking_id", booking.ID,
		"amount", booking.TotalPrice,
		"slip_ref", slipRef(slip),
	)
	s.events.Publish(ctx, EventBookingConfirmed, booking)
	return booking, nil
}

func slipRef(slip *client.SlipData) string {
	if slip == nil {
		return ""
	}
	return slip.TransRef
}

// expireBooking runs the same transition the expiry sweep applies, in its
// own transaction: pending to payment_timeout plus seat release. Losing
// the compare-and-set to a concurrent sweep is fine, the outcome is the
// same either way.
func (s *bookingService) expireBooking(ctx context.Context, booking *model.Booking) error {
	err := s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		err := s.repo.UpdateStatus(sessCtx, booking.ID, model.StatusPendingPayment, model.StatusPaymentTimeout, nil)
		if err != nil {
			if errors.Is(err, bookingserrors.ErrAlreadyTerminal) {
				return nil
			}
			return err
		}
		s.releaseSeats(sessCtx, booking.ID, booking.Seats)
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to expire booking",
			"booking_id", booking.ID,
			"error", err,
		)
		return apperrors.Internal("Failed to expire booking", err)
	}

	booking.Status = model.StatusPaymentTimeout
	s.cfg.Log.Info("Booking expired",
		"booking_id", booking.ID,
		"payment_deadline", booking.PaymentDeadline,
	)
	return nil
}
