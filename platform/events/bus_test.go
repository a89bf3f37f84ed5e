package events

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"sales_crm_backend/platform/logger"
)

type testEvent struct {
	BaseEvent
}

func (testEvent) EventName() string { return "test.happened" }

func TestPublishRunsAllHandlers(t *testing.T) {
	bus := NewInMemoryBus(logger.Discard())
	var calls atomic.Int32

	for i := 0; i < 3; i++ {
		bus.Subscribe("test.happened", HandlerFunc(func(ctx context.Context, event Event) error {
			calls.Add(1)
			return nil
		}))
	}
	bus.Subscribe("other.event", HandlerFunc(func(ctx context.Context, event Event) error {
		t.Error("handler for another event must not run")
		return nil
	}))

	bus.Publish(context.Background(), testEvent{BaseEvent: NewBaseEvent()})
	bus.Wait()

	if got := calls.Load(); got != 3 {
		t.Fatalf("expected 3 handler calls, got %d", got)
	}
}

func TestPublishSurvivesPanickingHandler(t *testing.T) {
	bus := NewInMemoryBus(logger.Discard())
	var ran atomic.Bool

	bus.Subscribe("test.happened", HandlerFunc(func(ctx context.Context, event Event) error {
		panic("boom")
	}))
	bus.Subscribe("test.happened", HandlerFunc(func(ctx context.Context, event Event) error {
		ran.Store(true)
		return nil
	}))

	bus.Publish(context.Background(), testEvent{BaseEvent: NewBaseEvent()})
	bus.Wait()

	if !ran.Load() {
		t.Fatal("expected the healthy handler to run")
	}
}

func TestPublishDetachesCancellation(t *testing.T) {
	bus := NewInMemoryBus(logger.Discard())
	done := make(chan error, 1)

	bus.Subscribe("test.happened", HandlerFunc(func(ctx context.Context, event Event) error {
		time.Sleep(10 * time.Millisecond)
		done <- ctx.Err()
		return nil
	}))

	ctx, cancel := context.WithCancel(context.Background())
	bus.Publish(ctx, testEvent{BaseEvent: NewBaseEvent()})
	cancel()
	bus.Wait()

	if err := <-done; err != nil {
		t.Fatalf("expected detached context, got %v", err)
	}
}

func TestPublishSyncJoinsErrors(t *testing.T) {
	bus := NewInMemoryBus(logger.Discard())
	errA := errors.New("a failed")
	errB := errors.New("b failed")

	bus.Subscribe("test.happened", HandlerFunc(func(ctx context.Context, event Event) error { return errA }))
	bus.Subscribe("test.happened", HandlerFunc(func(ctx context.Context, event Event) error { return errB }))

	err := bus.PublishSync(context.Background(), testEvent{BaseEvent: NewBaseEvent()})
	if !errors.Is(err, errA) || !errors.Is(err, errB) {
		t.Fatalf("expected both errors joined, got %v", err)
	}
}
