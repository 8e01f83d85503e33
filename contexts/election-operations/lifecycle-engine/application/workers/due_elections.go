package workers

import (
	"context"
	"log/slog"
	"time"

	application "quorum/contexts/election-operations/lifecycle-engine/application"
	"quorum/contexts/election-operations/lifecycle-engine/domain/entities"
	"quorum/contexts/election-operations/lifecycle-engine/ports"
)

// DueElectionSweeper performs one pass of automatic lifecycle transitions:
// scheduled elections whose start time has passed are opened, open elections
// whose end time has passed are closed. The sweep delegates the atomic
// status flips to the ballot store, so re-running it is harmless — the
// status guard prevents double transitions.
//
// RunOnce is also the manual trigger used operationally to force a pass
// outside the timer.
type DueElectionSweeper struct {
	Elections ports.ElectionRepository
	Outbox    ports.OutboxWriter
	Clock     ports.Clock
	IDGen     ports.IDGenerator
	Logger    *slog.Logger
}

func (s DueElectionSweeper) RunOnce(ctx context.Context) error {
	logger := application.ResolveLogger(s.Logger)
	now := time.Now().UTC()
	if s.Clock != nil {
		now = s.Clock.Now().UTC()
	}

	transitions, err := s.Elections.ProcessDueElections(ctx, now)
	if err != nil {
		logger.Error("due election sweep failed",
			"event", "lifecycle_due_sweep_failed",
			"module", "election-operations/lifecycle-engine",
			"layer", "worker",
			"error", err.Error(),
		)
		return err
	}
	if len(transitions) == 0 {
		return nil
	}

	for _, transition := range transitions {
		logger.Info("election transitioned",
			"event", "lifecycle_election_"+string(transition.Action),
			"module", "election-operations/lifecycle-engine",
			"layer", "worker",
			"election_id", transition.ElectionID,
			"election_name", transition.ElectionName,
			"action", string(transition.Action),
		)
		if err := s.appendTransitionEvent(ctx, transition, now); err != nil {
			logger.Error("due election event append failed",
				"event", "lifecycle_due_sweep_outbox_failed",
				"module", "election-operations/lifecycle-engine",
				"layer", "worker",
				"election_id", transition.ElectionID,
				"error", err.Error(),
			)
			return err
		}
	}

	logger.Info("due election sweep completed",
		"event", "lifecycle_due_sweep_completed",
		"module", "election-operations/lifecycle-engine",
		"layer", "worker",
		"transition_count", len(transitions),
	)
	return nil
}

func (s DueElectionSweeper) appendTransitionEvent(
	ctx context.Context,
	transition entities.ElectionTransition,
	now time.Time,
) error {
	if s.Outbox == nil {
		return nil
	}
	eventID, err := s.IDGen.NewID(ctx)
	if err != nil {
		return err
	}
	occurredAt := transition.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = now
	}
	return s.Outbox.AppendOutbox(ctx, ports.EventEnvelope{
		EventID:    eventID,
		EventType:  "election." + string(transition.Action),
		EntityType: "election",
		EntityID:   transition.ElectionID,
		OccurredAt: occurredAt,
		Payload: map[string]any{
			"election_id":   transition.ElectionID,
			"election_name": transition.ElectionName,
			"action":        string(transition.Action),
		},
	})
}
