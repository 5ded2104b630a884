package repository

import (
	"context"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
)

func assertDeadlineWithin(t *testing.T, ctx context.Context, want time.Duration) {
	t.Helper()
	deadline, ok := ctx.Deadline()
	if !ok {
		t.Fatal("expected a deadline on the wrapped context")
	}
	remaining := time.Until(deadline)
	if remaining > want {
		t.Errorf("effective deadline is %v away, want at most %v", remaining, want)
	}
	if remaining < want-time.Second {
		t.Errorf("effective deadline is %v away, want close to %v", remaining, want)
	}
}

func TestWithTimeoutClampsToOperationTimeout(t *testing.T) {
	parent, cancel := context.WithTimeout(context.Background(), time.Hour)
	defer cancel()

	tableRepo := &mongoTableRepository{}
	ctx, opCancel := tableRepo.withTimeout(parent, 5*time.Second)
	defer opCancel()
	assertDeadlineWithin(t, ctx, 5*time.Second)

	zoneRepo := &mongoZoneRepository{}
	ctx, opCancel = zoneRepo.withTimeout(parent, 5*time.Second)
	defer opCancel()
	assertDeadlineWithin(t, ctx, 5*time.Second)
}

func TestWithTimeoutKeepsShorterParentDeadline(t *testing.T) {
	parent, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	repo := &mongoTableRepository{}
	ctx, opCancel := repo.withTimeout(parent, 5*time.Second)
	defer opCancel()
	assertDeadlineWithin(t, ctx, time.Second)
}

func TestWithTimeoutAppliesTimeoutWithoutParentDeadline(t *testing.T) {
	repo := &mongoZoneRepository{}
	ctx, opCancel := repo.withTimeout(context.Background(), 5*time.Second)
	defer opCancel()
	assertDeadlineWithin(t, ctx, 5*time.Second)
}

func TestWithTimeoutSkipsSessionContext(t *testing.T) {
	sessCtx := mongo.NewSessionContext(context.Background(), nil)

	repo := &mongoTableRepository{}
	ctx, opCancel := repo.withTimeout(sessCtx, 5*time.Second)
	defer opCancel()

	if ctx != sessCtx {
		t.Error("session context must be returned unchanged")
	}
	if _, ok := ctx.Deadline(); ok {
		t.Error("session context must not gain a deadline")
	}
}
