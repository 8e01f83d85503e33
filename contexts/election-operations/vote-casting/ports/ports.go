package ports

import (
	"context"
	"time"

	"quorum/contexts/election-operations/vote-casting/domain/entities"
)

const (
	ElectionStatusOpen   = "open"
	ElectionStatusClosed = "closed"
)

type ElectionProjection struct {
	ElectionID     string
	OrganizationID string
	Name           string
	Status         string
}

type RaceProjection struct {
	RaceID           string
	ElectionID       string
	Name             string
	MaxVotesPerVoter int
	MaxWinners       int
}

type BallotProjection struct {
	RaceCandidateID string
	RaceID          string
	CandidateID     string
	DisplayName     string
	BallotOrder     int
	Approved        bool
}

// ElectionDirectory is this module's read-only view into election and
// ballot data owned by the lifecycle engine. Missing rows surface as the
// module's own not-found sentinels.
type ElectionDirectory interface {
	GetElection(ctx context.Context, electionID string) (ElectionProjection, error)
	GetRace(ctx context.Context, raceID string) (RaceProjection, error)
	ListRacesByElection(ctx context.Context, electionID string) ([]RaceProjection, error)
	GetBallotEntry(ctx context.Context, raceCandidateID string) (BallotProjection, error)
	ListBallotEntries(ctx context.Context, raceID string) ([]BallotProjection, error)
}

// VoterRepository stores admission records keyed by organization and user.
type VoterRepository interface {
	SaveVoter(ctx context.Context, voter entities.Voter) error
	GetVoter(ctx context.Context, organizationID string, userID string) (entities.Voter, bool, error)
	ListPendingVoters(ctx context.Context, organizationID string) ([]entities.Voter, error)
}

// VoteRepository records votes. InsertVote is the authoritative integrity
// gate: it enforces the per-race vote limit and the one-vote-per-candidate
// rule atomically, whatever the use case pre-checked.
type VoteRepository interface {
	InsertVote(ctx context.Context, vote entities.Vote, maxVotesPerVoter int) error
	ListVotesByVoter(ctx context.Context, raceID string, voterUserID string) ([]entities.Vote, error)
	CountVotesByCandidate(ctx context.Context, raceID string) (map[string]int, error)
}

type Membership struct {
	OrganizationID string
	UserID         string
	Role           entities.MemberRole
	Active         bool
}

type MembershipReader interface {
	GetMembership(ctx context.Context, organizationID string, userID string) (Membership, bool, error)
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}
