package commands

import (
	"context"
	"log/slog"
	"strings"
	"time"

	application "quorum/contexts/election-operations/lifecycle-engine/application"
	"quorum/contexts/election-operations/lifecycle-engine/domain/entities"
	domainerrors "quorum/contexts/election-operations/lifecycle-engine/domain/errors"
	"quorum/contexts/election-operations/lifecycle-engine/ports"
)

type CreateElectionCommand struct {
	OrganizationID string
	Name           string
	Description    string
	ActorID        string
}

type UpdateElectionCommand struct {
	ElectionID  string
	Name        string
	Description string
	StartAt     *time.Time
	EndAt       *time.Time
	ActorID     string
}

type ScheduleElectionCommand struct {
	ElectionID string
	StartAt    time.Time
	EndAt      time.Time
	ActorID    string
}

// ElectionUseCase orchestrates the lifecycle state machine. Role checks run
// here against the membership directory; the ballot store re-checks them as
// defense in depth.
type ElectionUseCase struct {
	Elections ports.ElectionRepository
	Votes     ports.VoteCounter
	Members   ports.MembershipReader
	Outbox    ports.OutboxWriter
	Clock     ports.Clock
	IDGen     ports.IDGenerator
	Logger    *slog.Logger
}

func (uc ElectionUseCase) CreateElection(ctx context.Context, cmd CreateElectionCommand) (entities.Election, error) {
	logger := application.ResolveLogger(uc.Logger)
	name := strings.TrimSpace(cmd.Name)
	if name == "" {
		return entities.Election{}, domainerrors.ErrNameRequired
	}
	if err := requireAdmin(ctx, uc.Members, cmd.OrganizationID, cmd.ActorID); err != nil {
		logger.Warn("election create rejected",
			"event", "lifecycle_election_create_rejected",
			"module", "election-operations/lifecycle-engine",
			"layer", "application",
			"organization_id", cmd.OrganizationID,
			"actor_id", cmd.ActorID,
			"error", err.Error(),
		)
		return entities.Election{}, err
	}

	electionID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return entities.Election{}, err
	}
	now := uc.now()
	election := entities.Election{
		ElectionID:     electionID,
		OrganizationID: strings.TrimSpace(cmd.OrganizationID),
		Name:           name,
		Description:    strings.TrimSpace(cmd.Description),
		Status:         entities.StatusDraft,
		CreatedBy:      strings.TrimSpace(cmd.ActorID),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := uc.Elections.SaveElection(ctx, election); err != nil {
		return entities.Election{}, err
	}

	logger.Info("election created",
		"event", "lifecycle_election_created",
		"module", "election-operations/lifecycle-engine",
		"layer", "application",
		"election_id", election.ElectionID,
		"organization_id", election.OrganizationID,
	)
	return election, nil
}

func (uc ElectionUseCase) UpdateElection(ctx context.Context, cmd UpdateElectionCommand) (entities.Election, error) {
	name := strings.TrimSpace(cmd.Name)
	if name == "" {
		return entities.Election{}, domainerrors.ErrNameRequired
	}
	election, err := uc.Elections.GetElection(ctx, strings.TrimSpace(cmd.ElectionID))
	if err != nil {
		return entities.Election{}, err
	}
	if err := requireAdmin(ctx, uc.Members, election.OrganizationID, cmd.ActorID); err != nil {
		return entities.Election{}, err
	}
	if election.Status != entities.StatusDraft {
		return entities.Election{}, domainerrors.ErrElectionNotDraft
	}
	if cmd.StartAt != nil && cmd.EndAt != nil && !cmd.EndAt.After(*cmd.StartAt) {
		return entities.Election{}, domainerrors.ErrInvalidScheduleWindow
	}

	election.Name = name
	election.Description = strings.TrimSpace(cmd.Description)
	election.StartAt = normalizeOptionalTime(cmd.StartAt)
	election.EndAt = normalizeOptionalTime(cmd.EndAt)
	election.UpdatedAt = uc.now()
	if err := uc.Elections.SaveElection(ctx, election); err != nil {
		return entities.Election{}, err
	}
	return election, nil
}

func (uc ElectionUseCase) ScheduleElection(ctx context.Context, cmd ScheduleElectionCommand) (entities.Election, error) {
	logger := application.ResolveLogger(uc.Logger)
	if !cmd.EndAt.After(cmd.StartAt) {
		return entities.Election{}, domainerrors.ErrInvalidScheduleWindow
	}
	election, err := uc.Elections.GetElection(ctx, strings.TrimSpace(cmd.ElectionID))
	if err != nil {
		return entities.Election{}, err
	}
	if err := requireAdmin(ctx, uc.Members, election.OrganizationID, cmd.ActorID); err != nil {
		return entities.Election{}, err
	}
	if election.Status != entities.StatusDraft {
		return entities.Election{}, domainerrors.ErrElectionNotDraft
	}

	startAt := cmd.StartAt.UTC()
	endAt := cmd.EndAt.UTC()
	election.StartAt = &startAt
	election.EndAt = &endAt
	election.Status = entities.StatusScheduled
	election.UpdatedAt = uc.now()
	if err := uc.Elections.SaveElection(ctx, election); err != nil {
		return entities.Election{}, err
	}

	logger.Info("election scheduled",
		"event", "lifecycle_election_scheduled",
		"module", "election-operations/lifecycle-engine",
		"layer", "application",
		"election_id", election.ElectionID,
		"start_at", startAt,
		"end_at", endAt,
	)
	return election, nil
}

func (uc ElectionUseCase) OpenElection(ctx context.Context, electionID string, actorID string) (entities.Election, error) {
	election, err := uc.Elections.GetElection(ctx, strings.TrimSpace(electionID))
	if err != nil {
		return entities.Election{}, err
	}
	if err := requireAdmin(ctx, uc.Members, election.OrganizationID, actorID); err != nil {
		return entities.Election{}, err
	}
	switch election.Status {
	case entities.StatusOpen:
		return entities.Election{}, domainerrors.ErrElectionAlreadyOpen
	case entities.StatusClosed, entities.StatusArchived:
		return entities.Election{}, domainerrors.ErrElectionClosed
	}
	if !election.Status.CanTransitionTo(entities.StatusOpen) {
		return entities.Election{}, domainerrors.ErrElectionClosed
	}

	now := uc.now()
	election.Status = entities.StatusOpen
	election.OpenedAt = &now
	election.UpdatedAt = now
	if err := uc.Elections.SaveElection(ctx, election); err != nil {
		return entities.Election{}, err
	}
	if err := uc.appendTransitionEvent(ctx, election, entities.TransitionOpened, now); err != nil {
		return entities.Election{}, err
	}
	return election, nil
}

func (uc ElectionUseCase) CloseElection(ctx context.Context, electionID string, actorID string) (entities.Election, error) {
	election, err := uc.Elections.GetElection(ctx, strings.TrimSpace(electionID))
	if err != nil {
		return entities.Election{}, err
	}
	if err := requireAdmin(ctx, uc.Members, election.OrganizationID, actorID); err != nil {
		return entities.Election{}, err
	}
	if election.Status != entities.StatusOpen {
		return entities.Election{}, domainerrors.ErrElectionNotOpen
	}

	now := uc.now()
	election.Status = entities.StatusClosed
	election.ClosedAt = &now
	election.UpdatedAt = now
	if err := uc.Elections.SaveElection(ctx, election); err != nil {
		return entities.Election{}, err
	}
	if err := uc.appendTransitionEvent(ctx, election, entities.TransitionClosed, now); err != nil {
		return entities.Election{}, err
	}
	return election, nil
}

// DeleteElection removes an election and cascades to its races and ballot
// entries. Deletion is refused while voting is underway and refused outright
// once any vote has been recorded, whatever the status.
func (uc ElectionUseCase) DeleteElection(ctx context.Context, electionID string, actorID string) error {
	logger := application.ResolveLogger(uc.Logger)
	election, err := uc.Elections.GetElection(ctx, strings.TrimSpace(electionID))
	if err != nil {
		return err
	}
	if err := requireAdmin(ctx, uc.Members, election.OrganizationID, actorID); err != nil {
		return err
	}
	if election.Status == entities.StatusOpen {
		return domainerrors.ErrElectionOpenForVoting
	}
	voteCount, err := uc.Votes.CountVotesByElection(ctx, election.ElectionID)
	if err != nil {
		return err
	}
	if voteCount > 0 {
		return domainerrors.ErrElectionHasVotes
	}
	if err := uc.Elections.DeleteElection(ctx, election.ElectionID); err != nil {
		return err
	}

	logger.Info("election deleted",
		"event", "lifecycle_election_deleted",
		"module", "election-operations/lifecycle-engine",
		"layer", "application",
		"election_id", election.ElectionID,
		"organization_id", election.OrganizationID,
	)
	return nil
}

func (uc ElectionUseCase) appendTransitionEvent(
	ctx context.Context,
	election entities.Election,
	action entities.TransitionAction,
	occurredAt time.Time,
) error {
	if uc.Outbox == nil {
		return nil
	}
	eventID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return err
	}
	return uc.Outbox.AppendOutbox(ctx, ports.EventEnvelope{
		EventID:    eventID,
		EventType:  "election." + string(action),
		EntityType: "election",
		EntityID:   election.ElectionID,
		OccurredAt: occurredAt,
		Payload: map[string]any{
			"election_id":   election.ElectionID,
			"election_name": election.Name,
			"action":        string(action),
		},
	})
}

func (uc ElectionUseCase) now() time.Time {
	if uc.Clock != nil {
		return uc.Clock.Now().UTC()
	}
	return time.Now().UTC()
}

func normalizeOptionalTime(value *time.Time) *time.Time {
	if value == nil {
		return nil
	}
	utc := value.UTC()
	return &utc
}
