package http

import "time"

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type CreateElectionRequest struct {
	OrganizationID string `json:"organization_id"`
	Name           string `json:"name"`
	Description    string `json:"description,omitempty"`
}

type UpdateElectionRequest struct {
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	StartAt     *time.Time `json:"start_at,omitempty"`
	EndAt       *time.Time `json:"end_at,omitempty"`
}

type ScheduleElectionRequest struct {
	StartAt time.Time `json:"start_at"`
	EndAt   time.Time `json:"end_at"`
}

type ElectionResponse struct {
	ElectionID     string     `json:"election_id"`
	OrganizationID string     `json:"organization_id"`
	Name           string     `json:"name"`
	Description    string     `json:"description,omitempty"`
	Status         string     `json:"status"`
	StartAt        *time.Time `json:"start_at,omitempty"`
	EndAt          *time.Time `json:"end_at,omitempty"`
	OpenedAt       *time.Time `json:"opened_at,omitempty"`
	ClosedAt       *time.Time `json:"closed_at,omitempty"`
	CreatedBy      string     `json:"created_by"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

type ElectionListResponse struct {
	Items []ElectionResponse `json:"items"`
}

type ElectionDetailResponse struct {
	Election ElectionResponse `json:"election"`
	Races    []RaceDetail     `json:"races"`
}

type RaceDetail struct {
	Race   RaceResponse          `json:"race"`
	Ballot []BallotEntryResponse `json:"ballot"`
}

type CreateRaceRequest struct {
	Name             string `json:"name"`
	Description      string `json:"description,omitempty"`
	MaxVotesPerVoter int    `json:"max_votes_per_voter"`
	MaxWinners       int    `json:"max_winners"`
}

type UpdateRaceRequest struct {
	Name             string `json:"name"`
	Description      string `json:"description,omitempty"`
	MaxVotesPerVoter int    `json:"max_votes_per_voter"`
	MaxWinners       int    `json:"max_winners"`
}

type RaceResponse struct {
	RaceID           string    `json:"race_id"`
	ElectionID       string    `json:"election_id"`
	Name             string    `json:"name"`
	Description      string    `json:"description,omitempty"`
	MaxVotesPerVoter int       `json:"max_votes_per_voter"`
	MaxWinners       int       `json:"max_winners"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

type AddCandidateRequest struct {
	FullName    string `json:"full_name"`
	Affiliation string `json:"affiliation,omitempty"`
	Bio         string `json:"bio,omitempty"`
	DisplayName string `json:"display_name,omitempty"`
	BallotOrder int    `json:"ballot_order"`
}

type BallotEntryResponse struct {
	RaceCandidateID string `json:"race_candidate_id"`
	RaceID          string `json:"race_id"`
	CandidateID     string `json:"candidate_id"`
	DisplayName     string `json:"display_name"`
	BallotOrder     int    `json:"ballot_order"`
	Approved        bool   `json:"approved"`
}

type SweepResponse struct {
	Triggered bool `json:"triggered"`
}
