package entities

import "time"

type VoteChannel string

const (
	ChannelOnline    VoteChannel = "online"
	ChannelInPerson  VoteChannel = "in_person"
	ChannelPostal    VoteChannel = "postal"
	ChannelDelegated VoteChannel = "delegated"
)

// Valid reports whether the channel is one the ballot store accepts.
func (c VoteChannel) Valid() bool {
	switch c {
	case ChannelOnline, ChannelInPerson, ChannelPostal, ChannelDelegated:
		return true
	default:
		return false
	}
}

type Vote struct {
	VoteID          string
	RaceID          string
	RaceCandidateID string
	VoterUserID     string
	Channel         VoteChannel
	CastAt          time.Time
}

// Voter is one user's admission record for one organization. An approved
// voter may cast in any of that organization's open elections. Registration
// and approval are separate steps.
type Voter struct {
	OrganizationID string
	UserID         string
	Approved       bool
	RegisteredAt   time.Time
	ApprovedAt     *time.Time
	ApprovedBy     string
}

// CandidateTally is one row of a race result, already ordered for display.
type CandidateTally struct {
	RaceCandidateID string
	CandidateID     string
	DisplayName     string
	BallotOrder     int
	VoteCount       int
}

type RaceResult struct {
	RaceID     string
	RaceName   string
	MaxWinners int
	TotalVotes int
	Tallies    []CandidateTally
}

type MemberRole string

const (
	RoleOwner  MemberRole = "OWNER"
	RoleAdmin  MemberRole = "ADMIN"
	RoleMember MemberRole = "MEMBER"
)

func (r MemberRole) CanAdminister() bool {
	return r == RoleOwner || r == RoleAdmin
}
