package httpserver

import (
	"errors"
	"net/http"

	lifecycleerrors "quorum/contexts/election-operations/lifecycle-engine/domain/errors"
	lifecyclehttp "quorum/contexts/election-operations/lifecycle-engine/transport/http"
	votingerrors "quorum/contexts/election-operations/vote-casting/domain/errors"
	votinghttp "quorum/contexts/election-operations/vote-casting/transport/http"
)

// Domain sentinels map to statuses here and nowhere else. Anything not in
// the table is treated as a store failure: the client sees 503 with a
// stable code and no internal detail.
func writeLifecycleDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, lifecycleerrors.ErrNameRequired),
		errors.Is(err, lifecycleerrors.ErrInvalidScheduleWindow):
		writeLifecycleError(w, http.StatusBadRequest, "invalid_argument", err.Error())
	case errors.Is(err, lifecycleerrors.ErrNotOrganizationMember):
		writeLifecycleError(w, http.StatusUnauthorized, "not_a_member", err.Error())
	case errors.Is(err, lifecycleerrors.ErrNotOrganizationAdmin):
		writeLifecycleError(w, http.StatusForbidden, "admin_required", err.Error())
	case errors.Is(err, lifecycleerrors.ErrElectionNotFound),
		errors.Is(err, lifecycleerrors.ErrRaceNotFound),
		errors.Is(err, lifecycleerrors.ErrCandidateNotFound):
		writeLifecycleError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, lifecycleerrors.ErrElectionNotDraft),
		errors.Is(err, lifecycleerrors.ErrElectionAlreadyOpen),
		errors.Is(err, lifecycleerrors.ErrElectionNotOpen),
		errors.Is(err, lifecycleerrors.ErrElectionClosed),
		errors.Is(err, lifecycleerrors.ErrElectionOpenForVoting),
		errors.Is(err, lifecycleerrors.ErrElectionHasVotes),
		errors.Is(err, lifecycleerrors.ErrRacesLocked):
		writeLifecycleError(w, http.StatusConflict, "invalid_state", err.Error())
	case errors.Is(err, lifecycleerrors.ErrDuplicateRaceName),
		errors.Is(err, lifecycleerrors.ErrCandidateAlreadyListed):
		writeLifecycleError(w, http.StatusConflict, "conflict", err.Error())
	default:
		writeLifecycleError(w, http.StatusServiceUnavailable, "store_unavailable", "ballot store unavailable")
	}
}

func writeVotingDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, votingerrors.ErrInvalidChannel):
		writeVotingError(w, http.StatusBadRequest, "invalid_argument", err.Error())
	case errors.Is(err, votingerrors.ErrNotOrganizationMember):
		writeVotingError(w, http.StatusUnauthorized, "not_a_member", err.Error())
	case errors.Is(err, votingerrors.ErrNotOrganizationAdmin):
		writeVotingError(w, http.StatusForbidden, "admin_required", err.Error())
	case errors.Is(err, votingerrors.ErrVoterNotRegistered),
		errors.Is(err, votingerrors.ErrVoterNotApproved):
		writeVotingError(w, http.StatusForbidden, "voter_not_approved", err.Error())
	case errors.Is(err, votingerrors.ErrElectionNotFound),
		errors.Is(err, votingerrors.ErrRaceNotFound),
		errors.Is(err, votingerrors.ErrCandidateNotFound):
		writeVotingError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, votingerrors.ErrElectionNotOpen),
		errors.Is(err, votingerrors.ErrElectionClosed),
		errors.Is(err, votingerrors.ErrCandidateNotApproved):
		writeVotingError(w, http.StatusConflict, "invalid_state", err.Error())
	case errors.Is(err, votingerrors.ErrVoterAlreadyRegistered),
		errors.Is(err, votingerrors.ErrVoteLimitReached),
		errors.Is(err, votingerrors.ErrDuplicateVote):
		writeVotingError(w, http.StatusConflict, "conflict", err.Error())
	default:
		writeVotingError(w, http.StatusServiceUnavailable, "store_unavailable", "ballot store unavailable")
	}
}

func writeLifecycleError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, lifecyclehttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}

func writeVotingError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, votinghttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}
