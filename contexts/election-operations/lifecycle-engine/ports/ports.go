package ports

import (
	"context"
	"time"

	"quorum/contexts/election-operations/lifecycle-engine/domain/entities"
)

type ElectionRepository interface {
	SaveElection(ctx context.Context, election entities.Election) error
	GetElection(ctx context.Context, electionID string) (entities.Election, error)
	ListElectionsByOrganization(ctx context.Context, organizationID string) ([]entities.Election, error)
	DeleteElection(ctx context.Context, electionID string) error

	// ProcessDueElections atomically opens every scheduled election whose
	// start time has passed and closes every open election whose end time
	// has passed, returning the applied transitions. Re-running it with no
	// newly due elections returns an empty list.
	ProcessDueElections(ctx context.Context, now time.Time) ([]entities.ElectionTransition, error)
}

type RaceRepository interface {
	SaveRace(ctx context.Context, race entities.Race) error
	GetRace(ctx context.Context, raceID string) (entities.Race, error)
	ListRacesByElection(ctx context.Context, electionID string) ([]entities.Race, error)
	DeleteRace(ctx context.Context, raceID string) error
}

type BallotRepository interface {
	SaveCandidate(ctx context.Context, candidate entities.Candidate) error
	SaveBallotEntry(ctx context.Context, entry entities.BallotEntry) error
	GetBallotEntry(ctx context.Context, raceCandidateID string) (entities.BallotEntry, error)
	ListBallotEntries(ctx context.Context, raceID string) ([]entities.BallotEntry, error)
	DeleteBallotEntry(ctx context.Context, raceCandidateID string) error
}

// VoteCounter is the engine's read-only view into recorded votes; it backs
// the rule that an election with votes is never deleted.
type VoteCounter interface {
	CountVotesByElection(ctx context.Context, electionID string) (int, error)
}

type Membership struct {
	OrganizationID string
	UserID         string
	Role           entities.MemberRole
	Active         bool
}

// MembershipReader resolves the actor's role in an organization. The engine
// checks roles itself; store-level constraints remain as a second line of
// defense.
type MembershipReader interface {
	GetMembership(ctx context.Context, organizationID string, userID string) (Membership, bool, error)
}

type EventEnvelope struct {
	EventID    string    `json:"event_id"`
	EventType  string    `json:"event_type"`
	EntityType string    `json:"entity_type"`
	EntityID   string    `json:"entity_id"`
	OccurredAt time.Time `json:"occurred_at"`
	Payload    any       `json:"payload"`
}

type OutboxMessage struct {
	OutboxID  string
	EventType string
	Payload   []byte
	CreatedAt time.Time
}

type OutboxWriter interface {
	AppendOutbox(ctx context.Context, envelope EventEnvelope) error
}

type OutboxRepository interface {
	ListPendingOutbox(ctx context.Context, limit int) ([]OutboxMessage, error)
	MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error
}

type EventPublisher interface {
	Publish(ctx context.Context, topic string, event EventEnvelope) error
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}
