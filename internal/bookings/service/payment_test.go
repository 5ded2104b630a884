package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"tablebook/pkg/client"
	apperrors "tablebook/pkg/errors"
	"tablebook/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
)

func pendingBooking(deadline time.Time) *model.Booking {
	b := validBooking()
	b.ID = "BK1700000000000"
	b.Status = model.StatusPendingPayment
	b.TotalPrice = 200
	b.PaymentDeadline = deadline
	return b
}

func TestConfirmPaymentSuccess(t *testing.T) {
	var statusSet bson.M
	deps := &testDeps{
		repo: &mockBookingRepository{
			findByIDFunc: func(ctx context.Context, id string) (*model.Booking, error) {
				return pendingBooking(testNow.Add(10 * time.Minute)), nil
			},
			updateStatusFunc: func(ctx context.Context, id string, from, to model.BookingStatus, set bson.M) error {
				if from != model.StatusPendingPayment || to != model.StatusConfirmed {
					t.Errorf("unexpected transition %s -> %s", from, to)
				}
				statusSet = set
				return nil
			},
		},
		store: &mockProofStore{
			uploadFunc: func(ctx context.Context, localPath string) (string, error) {
				return "https://cdn.example.com/proofs/abc.jpg", nil
			},
		},
	}
	service := newTestService(deps)
	service.now = func() time.Time { return testNow }

	booking, err := service.ConfirmPayment(context.Background(), "BK1700000000000", "/tmp/slip.jpg", nil)
	if err != nil {
		t.Fatalf("ConfirmPayment failed: %v", err)
	}

	if booking.Status != model.StatusConfirmed {
		t.Errorf("expected status %s, got %s", model.StatusConfirmed, booking.Status)
	}
	if booking.PaymentProof != "https://cdn.example.com/proofs/abc.jpg" {
		t.Errorf("expected proof URL on booking, got %q", booking.PaymentProof)
	}
	if statusSet["payment_proof"] != "https://cdn.example.com/proofs/abc.jpg" {
		t.Errorf("expected payment_proof in status write, got %v", statusSet)
	}
}

func TestConfirmPaymentAfterDeadlineExpiresBooking(t *testing.T) {
	released := make([]int, 0)
	var transitionedTo model.BookingStatus
	uploadCalled := false

	deps := &testDeps{
		repo: &mockBookingRepository{
			findByIDFunc: func(ctx context.Context, id string) (*model.Booking, error) {
				return pendingBooking(testNow.Add(-time.Minute)), nil
			},
			updateStatusFunc: func(ctx context.Context, id string, from, to model.BookingStatus, set bson.M) error {
				transitionedTo = to
				return nil
			},
		},
		tableRepo: &mockTableRepository{
			releaseSeatFunc: func(ctx context.Context, tableID int, zone string, seatNumber int) error {
				released = append(released, seatNumber)
				return nil
			},
		},
		store: &mockProofStore{
			uploadFunc: func(ctx context.Context, localPath string) (string, error) {
				uploadCalled = true
				return "", nil
			},
		},
	}
	service := newTestService(deps)
	service.now = func() time.Time { return testNow }

	_, err := service.ConfirmPayment(context.Background(), "BK1700000000000", "/tmp/slip.jpg", nil)
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeInvalidInput {
		t.Fatalf("expected %s, got %v", apperrors.CodeInvalidInput, err)
	}

	if transitionedTo != model.StatusPaymentTimeout {
		t.Errorf("expected transition to %s, got %s", model.StatusPaymentTimeout, transitionedTo)
	}
	if len(released) != 2 {
		t.Errorf("expected 2 seats released, got %v", released)
	}
	if uploadCalled {
		t.Error("proof must not be uploaded for an expired booking")
	}
	if appErr.Details["booking_id"] != "BK1700000000000" {
		t.Errorf("expected booking_id in details, got %v", appErr.Details)
	}
}

func TestConfirmPaymentRejectedSlipLeavesBookingPending(t *testing.T) {
	statusWritten := false
	deps := &testDeps{
		repo: &mockBookingRepository{
			findByIDFunc: func(ctx context.Context, id string) (*model.Booking, error) {
				return pendingBooking(testNow.Add(10 * time.Minute)), nil
			},
			updateStatusFunc: func(ctx context.Context, id string, from, to model.BookingStatus, set bson.M) error {
				statusWritten = true
				return nil
			},
		},
		verifier: &mockVerifier{
			verifyFunc: func(ctx context.Context, slipPath string, amount float64) (*client.SlipData, error) {
				return nil, &client.SlipRejectedError{Message: "amount mismatch", Code: "1013"}
			},
		},
	}
	service := newTestService(deps)
	service.now = func() time.Time { return testNow }

	_, err := service.ConfirmPayment(context.Background(), "BK1700000000000", "/tmp/slip.jpg", nil)
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeProofRejected {
		t.Fatalf("expected %s, got %v", apperrors.CodeProofRejected, err)
	}
	if statusWritten {
		t.Error("a rejected slip must not change booking status")
	}
}

func TestConfirmPaymentVerifierDown(t *testing.T) {
	deps := &testDeps{
		repo: &mockBookingRepository{
			findByIDFunc: func(ctx context.Context, id string) (*model.Booking, error) {
				return pendingBooking(testNow.Add(10 * time.Minute)), nil
			},
		},
		verifier: &mockVerifier{
			verifyFunc: func(ctx context.Context, slipPath string, amount float64) (*client.SlipData, error) {
				return nil, errors.New("connection refused")
			},
		},
	}
	service := newTestService(deps)
	service.now = func() time.Time { return testNow }

	_, err := service.ConfirmPayment(context.Background(), "BK1700000000000", "/tmp/slip.jpg", nil)
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeUnavailable {
		t.Errorf("expected %s, got %v", apperrors.CodeUnavailable, err)
	}
}

func TestConfirmPaymentStorageFailure(t *testing.T) {
	statusWritten := false
	deps := &testDeps{
		repo: &mockBookingRepository{
			findByIDFunc: func(ctx context.Context, id string) (*model.Booking, error) {
				return pendingBooking(testNow.Add(10 * time.Minute)), nil
			},
			updateStatusFunc: func(ctx context.Context, id string, from, to model.BookingStatus, set bson.M) error {
				statusWritten = true
				return nil
			},
		},
		store: &mockProofStore{
			uploadFunc: func(ctx context.Context, localPath string) (string, error) {
				return "", errors.New("cloud unreachable")
			},
		},
	}
	service := newTestService(deps)
	service.now = func() time.Time { return testNow }

	_, err := service.ConfirmPayment(context.Background(), "BK1700000000000", "/tmp/slip.jpg", nil)
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeStorageFailure {
		t.Fatalf("expected %s, got %v", apperrors.CodeStorageFailure, err)
	}
	if statusWritten {
		t.Error("booking must stay pending when proof storage fails")
	}
}

func TestConfirmPaymentDeclaredAmountMismatch(t *testing.T) {
	verifyCalled := false
	deps := &testDeps{
		repo: &mockBookingRepository{
			findByIDFunc: func(ctx context.Context, id string) (*model.Booking, error) {
				return pendingBooking(testNow.Add(10 * time.Minute)), nil
			},
		},
		verifier: &mockVerifier{
			verifyFunc: func(ctx context.Context, slipPath string, amount float64) (*client.SlipData, error) {
				verifyCalled = true
				return &client.SlipData{TransRef: "TX123", Amount: amount}, nil
			},
		},
	}
	service := newTestService(deps)
	service.now = func() time.Time { return testNow }

	wrong := 150.0
	_, err := service.ConfirmPayment(context.Background(), "BK1700000000000", "/tmp/slip.jpg", &wrong)
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeInvalidInput {
		t.Fatalf("expected %s, got %v", apperrors.CodeInvalidInput, err)
	}
	if verifyCalled {
		t.Error("slip must not be verified when the declared amount is wrong")
	}

	// A matching declared amount proceeds to verification.
	right := 200.0
	_, _ = service.ConfirmPayment(context.Background(), "BK1700000000000", "/tmp/slip.jpg", &right)
	if !verifyCalled {
		t.Error("matching declared amount must reach verification")
	}
}

func TestConfirmPaymentRejectsNonPending(t *testing.T) {
	deps := &testDeps{
		repo: &mockBookingRepository{
			findByIDFunc: func(ctx context.Context, id string) (*model.Booking, error) {
				b := pendingBooking(testNow.Add(10 * time.Minute))
				b.Status = model.StatusConfirmed
				return b, nil
			},
		},
	}
	service := newTestService(deps)
	service.now = func() time.Time { return testNow }

	_, err := service.ConfirmPayment(context.Background(), "BK1700000000000", "/tmp/slip.jpg", nil)
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeInvalidTransition {
		t.Errorf("expected %s, got %v", apperrors.CodeInvalidTransition, err)
	}
}
