package events

import (
	"context"
	"testing"

	"novahub_backend/platform/logger"

	"github.com/google/uuid"
)

func TestPublishSync_DeliversDomainEventsThroughHandlerFunc(t *testing.T) {
	bus := NewInMemoryBus(logger.New("development"))

	var received []LeadScored
	bus.Subscribe(LeadScored{}.EventName(), HandlerFunc(func(_ context.Context, e Event) error {
		received = append(received, e.(LeadScored))
		return nil
	}))

	event := LeadScored{
		BaseEvent:      NewBaseEvent(),
		LeadID:         uuid.New(),
		ProjectID:      uuid.New(),
		TotalScore:     85,
		Classification: "hot",
	}
	if err := bus.PublishSync(context.Background(), event); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(received) != 1 {
		t.Fatalf("expected 1 delivery, got %d", len(received))
	}
	if received[0].LeadID != event.LeadID || received[0].TotalScore != 85 {
		t.Errorf("delivered event = %+v, want %+v", received[0], event)
	}
}
