package postgresadapter

import (
	"time"

	"quorum/contexts/election-operations/lifecycle-engine/domain/entities"
)

type electionModel struct {
	ID             string     `gorm:"column:id;primaryKey"`
	OrganizationID string     `gorm:"column:organization_id"`
	Name           string     `gorm:"column:name"`
	Description    string     `gorm:"column:description"`
	Status         string     `gorm:"column:status"`
	StartAt        *time.Time `gorm:"column:start_at"`
	EndAt          *time.Time `gorm:"column:end_at"`
	OpenedAt       *time.Time `gorm:"column:opened_at"`
	ClosedAt       *time.Time `gorm:"column:closed_at"`
	CreatedBy      string     `gorm:"column:created_by"`
	CreatedAt      time.Time  `gorm:"column:created_at"`
	UpdatedAt      time.Time  `gorm:"column:updated_at"`
}

func (electionModel) TableName() string {
	return "elections"
}

func electionModelFromEntity(election entities.Election) electionModel {
	return electionModel{
		ID:             election.ElectionID,
		OrganizationID: election.OrganizationID,
		Name:           election.Name,
		Description:    election.Description,
		Status:         string(election.Status),
		StartAt:        election.StartAt,
		EndAt:          election.EndAt,
		OpenedAt:       election.OpenedAt,
		ClosedAt:       election.ClosedAt,
		CreatedBy:      election.CreatedBy,
		CreatedAt:      election.CreatedAt.UTC(),
		UpdatedAt:      election.UpdatedAt.UTC(),
	}
}

func (m electionModel) toEntity() entities.Election {
	return entities.Election{
		ElectionID:     m.ID,
		OrganizationID: m.OrganizationID,
		Name:           m.Name,
		Description:    m.Description,
		Status:         entities.ElectionStatus(m.Status),
		StartAt:        m.StartAt,
		EndAt:          m.EndAt,
		OpenedAt:       m.OpenedAt,
		ClosedAt:       m.ClosedAt,
		CreatedBy:      m.CreatedBy,
		CreatedAt:      m.CreatedAt.UTC(),
		UpdatedAt:      m.UpdatedAt.UTC(),
	}
}

type raceModel struct {
	ID               string    `gorm:"column:id;primaryKey"`
	ElectionID       string    `gorm:"column:election_id"`
	Name             string    `gorm:"column:name"`
	Description      string    `gorm:"column:description"`
	MaxVotesPerVoter int       `gorm:"column:max_votes_per_voter"`
	MaxWinners       int       `gorm:"column:max_winners"`
	CreatedAt        time.Time `gorm:"column:created_at"`
	UpdatedAt        time.Time `gorm:"column:updated_at"`
}

func (raceModel) TableName() string {
	return "election_races"
}

func raceModelFromEntity(race entities.Race) raceModel {
	return raceModel{
		ID:               race.RaceID,
		ElectionID:       race.ElectionID,
		Name:             race.Name,
		Description:      race.Description,
		MaxVotesPerVoter: race.MaxVotesPerVoter,
		MaxWinners:       race.MaxWinners,
		CreatedAt:        race.CreatedAt.UTC(),
		UpdatedAt:        race.UpdatedAt.UTC(),
	}
}

func (m raceModel) toEntity() entities.Race {
	return entities.Race{
		RaceID:           m.ID,
		ElectionID:       m.ElectionID,
		Name:             m.Name,
		Description:      m.Description,
		MaxVotesPerVoter: m.MaxVotesPerVoter,
		MaxWinners:       m.MaxWinners,
		CreatedAt:        m.CreatedAt.UTC(),
		UpdatedAt:        m.UpdatedAt.UTC(),
	}
}

type candidateModel struct {
	ID          string    `gorm:"column:id;primaryKey"`
	FullName    string    `gorm:"column:full_name"`
	Affiliation string    `gorm:"column:affiliation"`
	Bio         string    `gorm:"column:bio"`
	Approved    bool      `gorm:"column:approved"`
	CreatedAt   time.Time `gorm:"column:created_at"`
}

func (candidateModel) TableName() string {
	return "candidates"
}

func candidateModelFromEntity(candidate entities.Candidate) candidateModel {
	return candidateModel{
		ID:          candidate.CandidateID,
		FullName:    candidate.FullName,
		Affiliation: candidate.Affiliation,
		Bio:         candidate.Bio,
		Approved:    candidate.Approved,
		CreatedAt:   candidate.CreatedAt.UTC(),
	}
}

type ballotEntryModel struct {
	ID          string    `gorm:"column:id;primaryKey"`
	RaceID      string    `gorm:"column:race_id"`
	CandidateID string    `gorm:"column:candidate_id"`
	DisplayName string    `gorm:"column:display_name"`
	BallotOrder int       `gorm:"column:ballot_order"`
	Approved    bool      `gorm:"column:approved"`
	CreatedAt   time.Time `gorm:"column:created_at"`
}

func (ballotEntryModel) TableName() string {
	return "candidate_races"
}

func ballotEntryModelFromEntity(entry entities.BallotEntry) ballotEntryModel {
	return ballotEntryModel{
		ID:          entry.RaceCandidateID,
		RaceID:      entry.RaceID,
		CandidateID: entry.CandidateID,
		DisplayName: entry.DisplayName,
		BallotOrder: entry.BallotOrder,
		Approved:    entry.Approved,
		CreatedAt:   entry.CreatedAt.UTC(),
	}
}

func (m ballotEntryModel) toEntity() entities.BallotEntry {
	return entities.BallotEntry{
		RaceCandidateID: m.ID,
		RaceID:          m.RaceID,
		CandidateID:     m.CandidateID,
		DisplayName:     m.DisplayName,
		BallotOrder:     m.BallotOrder,
		Approved:        m.Approved,
		CreatedAt:       m.CreatedAt.UTC(),
	}
}

type membershipModel struct {
	OrganizationID string `gorm:"column:organization_id;primaryKey"`
	UserID         string `gorm:"column:user_id;primaryKey"`
	RoleName       string `gorm:"column:role_name"`
	IsActive       bool   `gorm:"column:is_active"`
}

func (membershipModel) TableName() string {
	return "org_members"
}

type outboxModel struct {
	OutboxID    string     `gorm:"column:outbox_id;primaryKey"`
	EventType   string     `gorm:"column:event_type"`
	Payload     []byte     `gorm:"column:payload"`
	Status      string     `gorm:"column:status"`
	CreatedAt   time.Time  `gorm:"column:created_at"`
	PublishedAt *time.Time `gorm:"column:published_at"`
}

func (outboxModel) TableName() string {
	return "lifecycle_outbox"
}
