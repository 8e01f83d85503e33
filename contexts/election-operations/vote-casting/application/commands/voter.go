package commands

import (
	"context"
	"log/slog"
	"strings"
	"time"

	application "quorum/contexts/election-operations/vote-casting/application"
	"quorum/contexts/election-operations/vote-casting/domain/entities"
	domainerrors "quorum/contexts/election-operations/vote-casting/domain/errors"
	"quorum/contexts/election-operations/vote-casting/ports"
)

type RegisterVoterCommand struct {
	ElectionID string
	ActorID    string
}

type ApproveVoterCommand struct {
	ElectionID string
	UserID     string
	ActorID    string
}

// VoterUseCase runs the two-step admission flow: a member registers with the
// organization, then an organization admin approves the registration. An
// approved voter may cast in any of the organization's open elections.
type VoterUseCase struct {
	Directory ports.ElectionDirectory
	Voters    ports.VoterRepository
	Members   ports.MembershipReader
	Clock     ports.Clock
	Logger    *slog.Logger
}

func (uc VoterUseCase) RegisterVoter(ctx context.Context, cmd RegisterVoterCommand) (entities.Voter, error) {
	logger := application.ResolveLogger(uc.Logger)
	election, err := uc.Directory.GetElection(ctx, strings.TrimSpace(cmd.ElectionID))
	if err != nil {
		return entities.Voter{}, err
	}
	if election.Status == ports.ElectionStatusClosed {
		return entities.Voter{}, domainerrors.ErrElectionClosed
	}
	if err := requireMember(ctx, uc.Members, election.OrganizationID, cmd.ActorID); err != nil {
		return entities.Voter{}, err
	}

	userID := strings.TrimSpace(cmd.ActorID)
	if _, found, err := uc.Voters.GetVoter(ctx, election.OrganizationID, userID); err != nil {
		return entities.Voter{}, err
	} else if found {
		return entities.Voter{}, domainerrors.ErrVoterAlreadyRegistered
	}

	voter := entities.Voter{
		OrganizationID: election.OrganizationID,
		UserID:         userID,
		RegisteredAt:   uc.now(),
	}
	if err := uc.Voters.SaveVoter(ctx, voter); err != nil {
		return entities.Voter{}, err
	}

	logger.Info("voter registered",
		"event", "voting_voter_registered",
		"module", "election-operations/vote-casting",
		"layer", "application",
		"organization_id", election.OrganizationID,
		"user_id", userID,
	)
	return voter, nil
}

func (uc VoterUseCase) ApproveVoter(ctx context.Context, cmd ApproveVoterCommand) (entities.Voter, error) {
	logger := application.ResolveLogger(uc.Logger)
	election, err := uc.Directory.GetElection(ctx, strings.TrimSpace(cmd.ElectionID))
	if err != nil {
		return entities.Voter{}, err
	}
	if err := requireAdmin(ctx, uc.Members, election.OrganizationID, cmd.ActorID); err != nil {
		return entities.Voter{}, err
	}

	voter, found, err := uc.Voters.GetVoter(ctx, election.OrganizationID, strings.TrimSpace(cmd.UserID))
	if err != nil {
		return entities.Voter{}, err
	}
	if !found {
		return entities.Voter{}, domainerrors.ErrVoterNotRegistered
	}
	if voter.Approved {
		return voter, nil
	}

	now := uc.now()
	voter.Approved = true
	voter.ApprovedAt = &now
	voter.ApprovedBy = strings.TrimSpace(cmd.ActorID)
	if err := uc.Voters.SaveVoter(ctx, voter); err != nil {
		return entities.Voter{}, err
	}

	logger.Info("voter approved",
		"event", "voting_voter_approved",
		"module", "election-operations/vote-casting",
		"layer", "application",
		"organization_id", election.OrganizationID,
		"user_id", voter.UserID,
		"approved_by", voter.ApprovedBy,
	)
	return voter, nil
}

func (uc VoterUseCase) now() time.Time {
	if uc.Clock != nil {
		return uc.Clock.Now().UTC()
	}
	return time.Now().UTC()
}
