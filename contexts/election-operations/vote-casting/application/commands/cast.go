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

type CastVoteCommand struct {
	ElectionID      string
	RaceID          string
	RaceCandidateID string
	ActorID         string
	Channel         entities.VoteChannel
}

// CastUseCase records votes. Preconditions are checked in a fixed order so
// a request failing several rules always reports the same one: election
// exists and is open, race belongs to it, candidate is on the approved
// ballot, voter is approved in the election's organization, the per-race
// limit is not exhausted, and the
// exact vote is not a repeat. The ballot store re-enforces the last two
// atomically on insert.
type CastUseCase struct {
	Directory ports.ElectionDirectory
	Voters    ports.VoterRepository
	Votes     ports.VoteRepository
	Clock     ports.Clock
	IDGen     ports.IDGenerator
	Logger    *slog.Logger
}

func (uc CastUseCase) CastVote(ctx context.Context, cmd CastVoteCommand) (entities.Vote, error) {
	logger := application.ResolveLogger(uc.Logger)

	election, err := uc.Directory.GetElection(ctx, strings.TrimSpace(cmd.ElectionID))
	if err != nil {
		return entities.Vote{}, err
	}
	if election.Status != ports.ElectionStatusOpen {
		return entities.Vote{}, domainerrors.ErrElectionNotOpen
	}

	race, err := uc.Directory.GetRace(ctx, strings.TrimSpace(cmd.RaceID))
	if err != nil {
		return entities.Vote{}, err
	}
	if race.ElectionID != election.ElectionID {
		return entities.Vote{}, domainerrors.ErrRaceNotFound
	}

	entry, err := uc.Directory.GetBallotEntry(ctx, strings.TrimSpace(cmd.RaceCandidateID))
	if err != nil {
		return entities.Vote{}, err
	}
	if entry.RaceID != race.RaceID {
		return entities.Vote{}, domainerrors.ErrCandidateNotFound
	}
	if !entry.Approved {
		return entities.Vote{}, domainerrors.ErrCandidateNotApproved
	}

	voterID := strings.TrimSpace(cmd.ActorID)
	voter, found, err := uc.Voters.GetVoter(ctx, election.OrganizationID, voterID)
	if err != nil {
		return entities.Vote{}, err
	}
	if !found {
		return entities.Vote{}, domainerrors.ErrVoterNotRegistered
	}
	if !voter.Approved {
		return entities.Vote{}, domainerrors.ErrVoterNotApproved
	}

	channel := cmd.Channel
	if channel == "" {
		channel = entities.ChannelOnline
	}
	if !channel.Valid() {
		return entities.Vote{}, domainerrors.ErrInvalidChannel
	}

	// Friendly pre-checks; the store repeats them under its own lock.
	existing, err := uc.Votes.ListVotesByVoter(ctx, race.RaceID, voterID)
	if err != nil {
		return entities.Vote{}, err
	}
	for _, vote := range existing {
		if vote.RaceCandidateID == entry.RaceCandidateID {
			return entities.Vote{}, domainerrors.ErrDuplicateVote
		}
	}
	if len(existing) >= race.MaxVotesPerVoter {
		return entities.Vote{}, domainerrors.ErrVoteLimitReached
	}

	voteID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return entities.Vote{}, err
	}
	vote := entities.Vote{
		VoteID:          voteID,
		RaceID:          race.RaceID,
		RaceCandidateID: entry.RaceCandidateID,
		VoterUserID:     voterID,
		Channel:         channel,
		CastAt:          uc.now(),
	}
	if err := uc.Votes.InsertVote(ctx, vote, race.MaxVotesPerVoter); err != nil {
		return entities.Vote{}, err
	}

	logger.Info("vote recorded",
		"event", "voting_vote_recorded",
		"module", "election-operations/vote-casting",
		"layer", "application",
		"election_id", election.ElectionID,
		"race_id", race.RaceID,
		"race_candidate_id", entry.RaceCandidateID,
		"channel", string(channel),
	)
	return vote, nil
}

func (uc CastUseCase) now() time.Time {
	if uc.Clock != nil {
		return uc.Clock.Now().UTC()
	}
	return time.Now().UTC()
}
