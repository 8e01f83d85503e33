package entities

import "time"

type ElectionStatus string

const (
	StatusDraft     ElectionStatus = "draft"
	StatusScheduled ElectionStatus = "scheduled"
	StatusOpen      ElectionStatus = "open"
	StatusClosed    ElectionStatus = "closed"
	// StatusArchived is a reserved terminal state. It is accepted on read
	// but never produced by any transition.
	StatusArchived ElectionStatus = "archived"
)

func (s ElectionStatus) rank() int {
	switch s {
	case StatusDraft:
		return 0
	case StatusScheduled:
		return 1
	case StatusOpen:
		return 2
	case StatusClosed:
		return 3
	case StatusArchived:
		return 4
	default:
		return -1
	}
}

// CanTransitionTo reports whether moving from s to next is a legal lifecycle
// step. Transitions are monotonic; draft may jump straight to open (manual
// open without scheduling), and nothing leaves closed.
func (s ElectionStatus) CanTransitionTo(next ElectionStatus) bool {
	switch {
	case s == StatusDraft && next == StatusScheduled:
		return true
	case s == StatusDraft && next == StatusOpen:
		return true
	case s == StatusScheduled && next == StatusOpen:
		return true
	case s == StatusOpen && next == StatusClosed:
		return true
	default:
		return false
	}
}

// Regressed reports whether next would move the status backward.
func (s ElectionStatus) Regressed(next ElectionStatus) bool {
	return next.rank() < s.rank()
}

type Election struct {
	ElectionID     string
	OrganizationID string
	Name           string
	Description    string
	Status         ElectionStatus
	StartAt        *time.Time
	EndAt          *time.Time
	OpenedAt       *time.Time
	ClosedAt       *time.Time
	CreatedBy      string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// RacesMutable reports whether races and ballot entries may still change.
// Once voting has started (or finished) the ballot is frozen.
func (e Election) RacesMutable() bool {
	return e.Status == StatusDraft || e.Status == StatusScheduled
}

type Race struct {
	RaceID           string
	ElectionID       string
	Name             string
	Description      string
	MaxVotesPerVoter int
	MaxWinners       int
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

type Candidate struct {
	CandidateID string
	FullName    string
	Affiliation string
	Bio         string
	Approved    bool
	CreatedAt   time.Time
}

// BallotEntry associates a candidate with a race and carries the display
// data the ballot is rendered from.
type BallotEntry struct {
	RaceCandidateID string
	RaceID          string
	CandidateID     string
	DisplayName     string
	BallotOrder     int
	Approved        bool
	CreatedAt       time.Time
}

type TransitionAction string

const (
	TransitionOpened TransitionAction = "opened"
	TransitionClosed TransitionAction = "closed"
)

// ElectionTransition is one automatic status change reported by the
// due-election sweep.
type ElectionTransition struct {
	ElectionID   string
	ElectionName string
	Action       TransitionAction
	OccurredAt   time.Time
}

type MemberRole string

const (
	RoleOwner  MemberRole = "OWNER"
	RoleAdmin  MemberRole = "ADMIN"
	RoleMember MemberRole = "MEMBER"
)

// CanAdminister reports whether the role may create or mutate elections.
func (r MemberRole) CanAdminister() bool {
	return r == RoleOwner || r == RoleAdmin
}
