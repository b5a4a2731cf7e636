package notification

import (
	"context"
	"testing"

	"novahub_backend/internal/events"
	"novahub_backend/platform/logger"

	"github.com/google/uuid"
)

type testSender struct {
	welcomeCalls int
	lastEmail    string
}

func (s *testSender) SendPitch(context.Context, string, string, string) error { return nil }

func (s *testSender) SendWelcomeEmail(_ context.Context, to, _ string) error {
	s.welcomeCalls++
	s.lastEmail = to
	return nil
}

func newTestModule(sender *testSender) *Module {
	return NewModule(nil, sender, nil, logger.New("test"))
}

func TestHandle_UserSignedUpSendsWelcomeEmail(t *testing.T) {
	sender := &testSender{}
	m := newTestModule(sender)

	err := m.Handle(context.Background(), events.UserSignedUp{
		BaseEvent: events.NewBaseEvent(),
		UserID:    uuid.New(),
		Email:     "ana@example.com",
		Name:      "Ana",
	})
	if err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	if sender.welcomeCalls != 1 {
		t.Errorf("welcome email sent %d times, want 1", sender.welcomeCalls)
	}
	if sender.lastEmail != "ana@example.com" {
		t.Errorf("welcome email sent to %q", sender.lastEmail)
	}
}

func TestHandle_LeadScoredIgnoresNonHotLeads(t *testing.T) {
	m := newTestModule(&testSender{})
	owner := uuid.New()

	// Neither non-hot classifications nor owner-less hot leads should
	// reach the in-app repository (nil pool would error loudly).
	cases := []events.LeadScored{
		{BaseEvent: events.NewBaseEvent(), LeadID: uuid.New(), OwnerID: &owner, TotalScore: 55, Classification: "mql"},
		{BaseEvent: events.NewBaseEvent(), LeadID: uuid.New(), OwnerID: nil, TotalScore: 92, Classification: "hot"},
	}
	for _, e := range cases {
		if err := m.Handle(context.Background(), e); err != nil {
			t.Errorf("Handle(%s lead) error = %v", e.Classification, err)
		}
	}
}

func TestHandle_UnknownEventIsIgnored(t *testing.T) {
	m := newTestModule(&testSender{})

	err := m.Handle(context.Background(), events.LeadCreated{
		BaseEvent: events.NewBaseEvent(),
		LeadID:    uuid.New(),
	})
	if err != nil {
		t.Fatalf("Handle() on unsubscribed event error = %v", err)
	}
}

func TestHandle_StripeSyncWithoutMemberReaderIsNoop(t *testing.T) {
	m := newTestModule(&testSender{})

	err := m.Handle(context.Background(), events.StripeSyncCompleted{
		BaseEvent: events.NewBaseEvent(),
		ProjectID: uuid.New(),
		Synced:    10,
		MRR:       240,
	})
	if err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
}
