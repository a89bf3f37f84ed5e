package db

import (
	"context"
	"errors"
	"testing"
	"time"

	"sales_crm_backend/platform/logger"
)

func TestRetrySucceedsAfterFailures(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), logger.Discard(), "op", 3, time.Millisecond, func() error {
		calls++
		if calls < 3 {
			return errors.New("not yet")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Retry returned error: %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected 3 calls, got %d", calls)
	}
}

func TestRetryWrapsLastError(t *testing.T) {
	boom := errors.New("refused")
	calls := 0
	err := Retry(context.Background(), logger.Discard(), "database connection", 2, time.Millisecond, func() error {
		calls++
		return boom
	})
	if !errors.Is(err, boom) || calls != 2 {
		t.Fatalf("expected wrapped error after 2 calls, got %v after %d", err, calls)
	}
	if err.Error() != "database connection: refused" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestRetryStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := Retry(ctx, logger.Discard(), "op", 3, time.Millisecond, func() error {
		called = true
		return nil
	})
	if !errors.Is(err, context.Canceled) || called {
		t.Fatalf("expected context.Canceled before any call, got %v (called=%v)", err, called)
	}
}

func TestRetryRejectsZeroAttempts(t *testing.T) {
	if err := Retry(context.Background(), logger.Discard(), "op", 0, time.Millisecond, func() error { return nil }); err == nil {
		t.Fatal("expected error for zero attempts")
	}
}
