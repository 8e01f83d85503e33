package postgresadapter

import (
	"time"

	"quorum/contexts/election-operations/vote-casting/domain/entities"
	"quorum/contexts/election-operations/vote-casting/ports"
)

type electionRow struct {
	ID             string `gorm:"column:id"`
	OrganizationID string `gorm:"column:organization_id"`
	Name           string `gorm:"column:name"`
	Status         string `gorm:"column:status"`
}

type raceRow struct {
	ID               string `gorm:"column:id"`
	ElectionID       string `gorm:"column:election_id"`
	Name             string `gorm:"column:name"`
	MaxVotesPerVoter int    `gorm:"column:max_votes_per_voter"`
	MaxWinners       int    `gorm:"column:max_winners"`
}

func (r raceRow) toProjection() ports.RaceProjection {
	return ports.RaceProjection{
		RaceID:           r.ID,
		ElectionID:       r.ElectionID,
		Name:             r.Name,
		MaxVotesPerVoter: r.MaxVotesPerVoter,
		MaxWinners:       r.MaxWinners,
	}
}

type ballotRow struct {
	ID          string `gorm:"column:id"`
	RaceID      string `gorm:"column:race_id"`
	CandidateID string `gorm:"column:candidate_id"`
	DisplayName string `gorm:"column:display_name"`
	BallotOrder int    `gorm:"column:ballot_order"`
	Approved    bool   `gorm:"column:approved"`
}

func (r ballotRow) toProjection() ports.BallotProjection {
	return ports.BallotProjection{
		RaceCandidateID: r.ID,
		RaceID:          r.RaceID,
		CandidateID:     r.CandidateID,
		DisplayName:     r.DisplayName,
		BallotOrder:     r.BallotOrder,
		Approved:        r.Approved,
	}
}

type voterRow struct {
	OrganizationID string     `gorm:"column:organization_id;primaryKey"`
	UserID         string     `gorm:"column:user_id;primaryKey"`
	Approved       bool       `gorm:"column:approved"`
	RegisteredAt   time.Time  `gorm:"column:registered_at"`
	ApprovedAt     *time.Time `gorm:"column:approved_at"`
	ApprovedBy     string     `gorm:"column:approved_by"`
}

func (voterRow) TableName() string {
	return "organization_voters"
}

func voterRowFromEntity(voter entities.Voter) voterRow {
	return voterRow{
		OrganizationID: voter.OrganizationID,
		UserID:         voter.UserID,
		Approved:       voter.Approved,
		RegisteredAt:   voter.RegisteredAt.UTC(),
		ApprovedAt:     voter.ApprovedAt,
		ApprovedBy:     voter.ApprovedBy,
	}
}

func (r voterRow) toEntity() entities.Voter {
	return entities.Voter{
		OrganizationID: r.OrganizationID,
		UserID:         r.UserID,
		Approved:       r.Approved,
		RegisteredAt:   r.RegisteredAt.UTC(),
		ApprovedAt:     r.ApprovedAt,
		ApprovedBy:     r.ApprovedBy,
	}
}

type voteRow struct {
	ID              string    `gorm:"column:id;primaryKey"`
	RaceID          string    `gorm:"column:race_id"`
	RaceCandidateID string    `gorm:"column:race_candidate_id"`
	VoterUserID     string    `gorm:"column:voter_user_id"`
	Channel         string    `gorm:"column:channel"`
	CastAt          time.Time `gorm:"column:cast_at"`
}

func (voteRow) TableName() string {
	return "votes"
}

func voteRowFromEntity(vote entities.Vote) voteRow {
	return voteRow{
		ID:              vote.VoteID,
		RaceID:          vote.RaceID,
		RaceCandidateID: vote.RaceCandidateID,
		VoterUserID:     vote.VoterUserID,
		Channel:         string(vote.Channel),
		CastAt:          vote.CastAt.UTC(),
	}
}

func (r voteRow) toEntity() entities.Vote {
	return entities.Vote{
		VoteID:          r.ID,
		RaceID:          r.RaceID,
		RaceCandidateID: r.RaceCandidateID,
		VoterUserID:     r.VoterUserID,
		Channel:         entities.VoteChannel(r.Channel),
		CastAt:          r.CastAt.UTC(),
	}
}

type membershipRow struct {
	OrganizationID string `gorm:"column:organization_id;primaryKey"`
	UserID         string `gorm:"column:user_id;primaryKey"`
	RoleName       string `gorm:"column:role_name"`
	IsActive       bool   `gorm:"column:is_active"`
}

func (membershipRow) TableName() string {
	return "org_members"
}
