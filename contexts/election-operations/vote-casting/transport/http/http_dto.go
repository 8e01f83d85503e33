package http

import "time"

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type CastVoteRequest struct {
	RaceID          string `json:"race_id"`
	RaceCandidateID string `json:"race_candidate_id"`
	Channel         string `json:"channel,omitempty"`
}

type VoteResponse struct {
	VoteID          string    `json:"vote_id"`
	RaceID          string    `json:"race_id"`
	RaceCandidateID string    `json:"race_candidate_id"`
	Channel         string    `json:"channel"`
	CastAt          time.Time `json:"cast_at"`
}

type ApproveVoterRequest struct {
	UserID string `json:"user_id"`
}

type VoterResponse struct {
	OrganizationID string     `json:"organization_id"`
	UserID         string     `json:"user_id"`
	Approved       bool       `json:"approved"`
	RegisteredAt   time.Time  `json:"registered_at"`
	ApprovedAt     *time.Time `json:"approved_at,omitempty"`
}

type VoterStatusResponse struct {
	OrganizationID string     `json:"organization_id"`
	ElectionID     string     `json:"election_id"`
	UserID         string     `json:"user_id"`
	Registered     bool       `json:"registered"`
	Approved       bool       `json:"approved"`
	RegisteredAt   *time.Time `json:"registered_at,omitempty"`
	ApprovedAt     *time.Time `json:"approved_at,omitempty"`
}

type PendingVotersResponse struct {
	Items []VoterResponse `json:"items"`
}

type CandidateTally struct {
	RaceCandidateID string `json:"race_candidate_id"`
	CandidateID     string `json:"candidate_id"`
	DisplayName     string `json:"display_name"`
	BallotOrder     int    `json:"ballot_order"`
	VoteCount       int    `json:"vote_count"`
}

type RaceResultsResponse struct {
	RaceID     string           `json:"race_id"`
	RaceName   string           `json:"race_name"`
	MaxWinners int              `json:"max_winners"`
	TotalVotes int              `json:"total_votes"`
	Tallies    []CandidateTally `json:"tallies"`
}

type ElectionResultsResponse struct {
	ElectionID   string                `json:"election_id"`
	ElectionName string                `json:"election_name"`
	Status       string                `json:"status"`
	Races        []RaceResultsResponse `json:"races"`
}
