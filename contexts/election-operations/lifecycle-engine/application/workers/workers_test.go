package workers_test

import (
	"context"
	"testing"
	"time"

	"quorum/contexts/election-operations/lifecycle-engine/adapters/memory"
	"quorum/contexts/election-operations/lifecycle-engine/application/workers"
	"quorum/contexts/election-operations/lifecycle-engine/domain/entities"
	"quorum/contexts/election-operations/lifecycle-engine/ports"
)

type capturePublisher struct {
	published []ports.EventEnvelope
}

func (p *capturePublisher) Publish(_ context.Context, _ string, event ports.EventEnvelope) error {
	p.published = append(p.published, event)
	return nil
}

func seedScheduled(store *memory.Store, id string, startAt time.Time, endAt *time.Time) {
	created := startAt.Add(-time.Hour)
	election := entities.Election{
		ElectionID:     id,
		OrganizationID: "org-1",
		Name:           "Election " + id,
		Status:         entities.StatusScheduled,
		StartAt:        &startAt,
		EndAt:          endAt,
		CreatedBy:      "admin-1",
		CreatedAt:      created,
		UpdatedAt:      created,
	}
	_ = store.SaveElection(context.Background(), election)
}

func TestDueElectionSweeperOpensAndCloses(t *testing.T) {
	store := memory.NewStore(nil)
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	store.SetNow(now)

	// Due to open: start passed, end in the future.
	future := now.Add(2 * time.Hour)
	seedScheduled(store, "el-open", now.Add(-time.Minute), &future)
	// Whole window in the past: opens and closes in the same sweep.
	past := now.Add(-time.Minute)
	seedScheduled(store, "el-expired", now.Add(-time.Hour), &past)
	// Not due yet.
	seedScheduled(store, "el-later", now.Add(time.Hour), &future)

	sweeper := workers.DueElectionSweeper{
		Elections: store,
		Outbox:    store,
		Clock:     store,
		IDGen:     store,
	}
	if err := sweeper.RunOnce(context.Background()); err != nil {
		t.Fatalf("sweep failed: %v", err)
	}

	opened, err := store.GetElection(context.Background(), "el-open")
	if err != nil {
		t.Fatalf("get election failed: %v", err)
	}
	if opened.Status != entities.StatusOpen || opened.OpenedAt == nil {
		t.Fatalf("expected el-open open, got %s", opened.Status)
	}

	expired, err := store.GetElection(context.Background(), "el-expired")
	if err != nil {
		t.Fatalf("get election failed: %v", err)
	}
	if expired.Status != entities.StatusClosed || expired.ClosedAt == nil {
		t.Fatalf("expected el-expired closed, got %s", expired.Status)
	}

	later, err := store.GetElection(context.Background(), "el-later")
	if err != nil {
		t.Fatalf("get election failed: %v", err)
	}
	if later.Status != entities.StatusScheduled {
		t.Fatalf("expected el-later untouched, got %s", later.Status)
	}

	// el-open opened, el-expired opened then closed.
	pending, err := store.ListPendingOutbox(context.Background(), 10)
	if err != nil {
		t.Fatalf("list outbox failed: %v", err)
	}
	if len(pending) != 3 {
		t.Fatalf("expected 3 outbox rows, got %d", len(pending))
	}

	// A second sweep with the same clock is a no-op.
	if err := sweeper.RunOnce(context.Background()); err != nil {
		t.Fatalf("second sweep failed: %v", err)
	}
	pending, err = store.ListPendingOutbox(context.Background(), 10)
	if err != nil {
		t.Fatalf("list outbox failed: %v", err)
	}
	if len(pending) != 3 {
		t.Fatalf("expected no new outbox rows after idempotent sweep, got %d", len(pending))
	}
}

func TestOutboxRelayPublishesPendingRows(t *testing.T) {
	store := memory.NewStore(nil)
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	store.SetNow(now)

	past := now.Add(-time.Minute)
	seedScheduled(store, "el-1", now.Add(-time.Hour), &past)

	sweeper := workers.DueElectionSweeper{
		Elections: store,
		Outbox:    store,
		Clock:     store,
		IDGen:     store,
	}
	if err := sweeper.RunOnce(context.Background()); err != nil {
		t.Fatalf("sweep failed: %v", err)
	}

	publisher := &capturePublisher{}
	relay := workers.OutboxRelay{
		Outbox:    store,
		Publisher: publisher,
		Clock:     store,
	}
	if err := relay.RunOnce(context.Background()); err != nil {
		t.Fatalf("relay failed: %v", err)
	}
	if len(publisher.published) != 2 {
		t.Fatalf("expected 2 published events, got %d", len(publisher.published))
	}
	types := map[string]int{}
	for _, event := range publisher.published {
		types[event.EventType]++
		if event.EntityID != "el-1" {
			t.Fatalf("expected entity el-1, got %s", event.EntityID)
		}
	}
	if types["election.opened"] != 1 || types["election.closed"] != 1 {
		t.Fatalf("expected one opened and one closed event, got %v", types)
	}

	// Published rows are marked and not redelivered.
	if err := relay.RunOnce(context.Background()); err != nil {
		t.Fatalf("second relay failed: %v", err)
	}
	if len(publisher.published) != 2 {
		t.Fatalf("expected no redelivery, got %d events", len(publisher.published))
	}
}
