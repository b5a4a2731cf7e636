package events

import (
	"context"
	"errors"
	"testing"
	"time"
)

type testEvent struct {
	BaseEvent
	value int
}

func (e testEvent) EventName() string { return "test.event" }

func TestPublishSync_RunsHandlersInOrder(t *testing.T) {
	bus := NewInMemoryBus(nil)

	var got []int
	bus.Subscribe("test.event", HandlerFunc(func(_ context.Context, e Event) error {
		got = append(got, e.(testEvent).value*10)
		return nil
	}))
	bus.Subscribe("test.event", HandlerFunc(func(_ context.Context, e Event) error {
		got = append(got, e.(testEvent).value*100)
		return nil
	}))

	if err := bus.PublishSync(context.Background(), testEvent{BaseEvent: NewBaseEvent(), value: 7}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 || got[0] != 70 || got[1] != 700 {
		t.Fatalf("expected [70 700], got %v", got)
	}
}

func TestPublishSync_JoinsHandlerErrors(t *testing.T) {
	bus := NewInMemoryBus(nil)
	wantErr := errors.New("boom")

	bus.Subscribe("test.event", HandlerFunc(func(_ context.Context, _ Event) error {
		return wantErr
	}))
	bus.Subscribe("test.event", HandlerFunc(func(_ context.Context, _ Event) error {
		return nil
	}))

	err := bus.PublishSync(context.Background(), testEvent{BaseEvent: NewBaseEvent()})
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected joined error to contain %v, got %v", wantErr, err)
	}
}

func TestPublish_DoesNotBlockAndEventuallyDelivers(t *testing.T) {
	bus := NewInMemoryBus(nil)
	delivered := make(chan int, 1)

	bus.Subscribe("test.event", HandlerFunc(func(_ context.Context, e Event) error {
		delivered <- e.(testEvent).value
		return nil
	}))

	bus.Publish(context.Background(), testEvent{BaseEvent: NewBaseEvent(), value: 42})

	select {
	case v := <-delivered:
		if v != 42 {
			t.Fatalf("expected 42, got %d", v)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("handler was never invoked")
	}
}

func TestPublish_NoHandlersIsNoop(t *testing.T) {
	bus := NewInMemoryBus(nil)
	bus.Publish(context.Background(), testEvent{BaseEvent: NewBaseEvent()})
	if err := bus.PublishSync(context.Background(), testEvent{BaseEvent: NewBaseEvent()}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
