package errors

import "errors"

var (
	ErrNameRequired          = errors.New("election name is required")
	ErrInvalidScheduleWindow = errors.New("end time must be after start time")

	ErrElectionNotFound  = errors.New("election not found")
	ErrRaceNotFound      = errors.New("race not found")
	ErrCandidateNotFound = errors.New("candidate not found")

	ErrNotOrganizationAdmin  = errors.New("actor is not an organization owner or admin")
	ErrNotOrganizationMember = errors.New("actor is not an organization member")

	ErrElectionNotDraft      = errors.New("election is not in draft")
	ErrElectionAlreadyOpen   = errors.New("election is already open")
	ErrElectionNotOpen       = errors.New("election is not open")
	ErrElectionClosed        = errors.New("election is closed")
	ErrElectionOpenForVoting = errors.New("election is open for voting and cannot be deleted")
	ErrElectionHasVotes      = errors.New("election has recorded votes and cannot be deleted")
	ErrRacesLocked           = errors.New("races are locked once the election is open")

	ErrDuplicateRaceName      = errors.New("race name already exists for this election")
	ErrCandidateAlreadyListed = errors.New("candidate is already on this ballot")

	ErrOutboxConflict = errors.New("outbox row missing or already published")
)
