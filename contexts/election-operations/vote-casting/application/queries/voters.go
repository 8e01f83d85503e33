package queries

import (
	"context"
	"sort"
	"strings"
	"time"

	"quorum/contexts/election-operations/vote-casting/domain/entities"
	domainerrors "quorum/contexts/election-operations/vote-casting/domain/errors"
	"quorum/contexts/election-operations/vote-casting/ports"
)

type VoterStatusView struct {
	OrganizationID string
	ElectionID     string
	UserID         string
	Registered     bool
	Approved       bool
	RegisteredAt   *time.Time
	ApprovedAt     *time.Time
}

type VoterQueries struct {
	Directory ports.ElectionDirectory
	Voters    ports.VoterRepository
	Members   ports.MembershipReader
}

// VoterStatus reports the actor's own admission state in the election's
// organization. An unregistered member gets a zero-value view rather than
// an error.
func (uc VoterQueries) VoterStatus(ctx context.Context, electionID string, actorID string) (VoterStatusView, error) {
	election, err := uc.Directory.GetElection(ctx, strings.TrimSpace(electionID))
	if err != nil {
		return VoterStatusView{}, err
	}
	userID := strings.TrimSpace(actorID)
	view := VoterStatusView{
		OrganizationID: election.OrganizationID,
		ElectionID:     election.ElectionID,
		UserID:         userID,
	}

	voter, found, err := uc.Voters.GetVoter(ctx, election.OrganizationID, userID)
	if err != nil {
		return VoterStatusView{}, err
	}
	if !found {
		return view, nil
	}
	registeredAt := voter.RegisteredAt
	view.Registered = true
	view.Approved = voter.Approved
	view.RegisteredAt = &registeredAt
	view.ApprovedAt = voter.ApprovedAt
	return view, nil
}

// ListPendingVoters returns registrations awaiting approval, oldest first.
// Admin only.
func (uc VoterQueries) ListPendingVoters(ctx context.Context, electionID string, actorID string) ([]entities.Voter, error) {
	election, err := uc.Directory.GetElection(ctx, strings.TrimSpace(electionID))
	if err != nil {
		return nil, err
	}
	membership, found, err := uc.Members.GetMembership(ctx, election.OrganizationID, strings.TrimSpace(actorID))
	if err != nil {
		return nil, err
	}
	if !found || !membership.Active {
		return nil, domainerrors.ErrNotOrganizationMember
	}
	if !membership.Role.CanAdminister() {
		return nil, domainerrors.ErrNotOrganizationAdmin
	}

	voters, err := uc.Voters.ListPendingVoters(ctx, election.OrganizationID)
	if err != nil {
		return nil, err
	}
	sort.Slice(voters, func(i, j int) bool {
		return voters[i].RegisteredAt.Before(voters[j].RegisteredAt)
	})
	return voters, nil
}
