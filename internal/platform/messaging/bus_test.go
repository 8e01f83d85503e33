package messaging

import (
	"context"
	"testing"
	"time"

	"quorum/internal/shared/events"
)

func TestBusDeliversToSubscriber(t *testing.T) {
	bus, err := NewBus(nil, nil)
	if err != nil {
		t.Fatalf("new bus failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	received := make(chan events.Envelope, 1)
	if err := bus.Subscribe(ctx, "election.opened", "test-cg", func(_ context.Context, event events.Envelope) error {
		received <- event
		return nil
	}); err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}

	sent := events.Envelope{
		EventID:   "evt-1",
		EventType: "election.opened",
		EntityID:  "el-1",
	}
	if err := bus.Publish(ctx, "election.opened", sent); err != nil {
		t.Fatalf("publish failed: %v", err)
	}

	select {
	case got := <-received:
		if got.EventID != "evt-1" || got.EntityID != "el-1" {
			t.Fatalf("unexpected event: %+v", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("subscriber did not receive event")
	}
}

func TestBusIgnoresUnrelatedTopics(t *testing.T) {
	bus, err := NewBus(nil, nil)
	if err != nil {
		t.Fatalf("new bus failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	received := make(chan events.Envelope, 1)
	if err := bus.Subscribe(ctx, "election.closed", "test-cg", func(_ context.Context, event events.Envelope) error {
		received <- event
		return nil
	}); err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}

	if err := bus.Publish(ctx, "election.opened", events.Envelope{EventID: "evt-2"}); err != nil {
		t.Fatalf("publish failed: %v", err)
	}

	select {
	case got := <-received:
		t.Fatalf("unexpected delivery: %+v", got)
	case <-time.After(100 * time.Millisecond):
	}
}
