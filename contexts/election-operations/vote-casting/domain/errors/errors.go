package errors

import "errors"

var (
	ErrElectionNotFound  = errors.New("election not found")
	ErrRaceNotFound      = errors.New("race not found")
	ErrCandidateNotFound = errors.New("candidate not found on this ballot")

	ErrElectionNotOpen      = errors.New("election is not open for voting")
	ErrElectionClosed       = errors.New("election is closed")
	ErrCandidateNotApproved = errors.New("candidate is not approved for this ballot")

	ErrVoterAlreadyRegistered = errors.New("voter is already registered in this organization")
	ErrVoterNotRegistered     = errors.New("voter is not registered in this organization")
	ErrVoterNotApproved       = errors.New("voter is not approved in this organization")

	ErrVoteLimitReached = errors.New("vote limit reached for this race")
	ErrDuplicateVote    = errors.New("vote already recorded for this candidate")
	ErrInvalidChannel   = errors.New("unknown vote channel")

	ErrNotOrganizationAdmin  = errors.New("actor is not an organization owner or admin")
	ErrNotOrganizationMember = errors.New("actor is not an organization member")
)
