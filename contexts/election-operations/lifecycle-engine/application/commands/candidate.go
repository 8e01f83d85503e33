package commands

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"quorum/contexts/election-operations/lifecycle-engine/domain/entities"
	domainerrors "quorum/contexts/election-operations/lifecycle-engine/domain/errors"
	"quorum/contexts/election-operations/lifecycle-engine/ports"
)

type AddCandidateCommand struct {
	RaceID      string
	FullName    string
	Affiliation string
	Bio         string
	DisplayName string
	BallotOrder int
	ActorID     string
}

// CandidateUseCase manages candidate-to-race associations under the same
// ballot-freeze rule as races.
type CandidateUseCase struct {
	Elections ports.ElectionRepository
	Races     ports.RaceRepository
	Ballots   ports.BallotRepository
	Members   ports.MembershipReader
	Clock     ports.Clock
	IDGen     ports.IDGenerator
	Logger    *slog.Logger
}

func (uc CandidateUseCase) AddCandidate(ctx context.Context, cmd AddCandidateCommand) (entities.BallotEntry, error) {
	fullName := strings.TrimSpace(cmd.FullName)
	if fullName == "" {
		return entities.BallotEntry{}, domainerrors.ErrNameRequired
	}
	race, err := uc.Races.GetRace(ctx, strings.TrimSpace(cmd.RaceID))
	if err != nil {
		return entities.BallotEntry{}, err
	}
	if err := uc.requireEditable(ctx, race.ElectionID, cmd.ActorID); err != nil {
		return entities.BallotEntry{}, err
	}

	displayName := strings.TrimSpace(cmd.DisplayName)
	if displayName == "" {
		displayName = fullName
	}
	entries, err := uc.Ballots.ListBallotEntries(ctx, race.RaceID)
	if err != nil {
		return entities.BallotEntry{}, err
	}
	for _, entry := range entries {
		if strings.EqualFold(entry.DisplayName, displayName) {
			return entities.BallotEntry{}, domainerrors.ErrCandidateAlreadyListed
		}
	}

	candidateID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return entities.BallotEntry{}, err
	}
	entryID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return entities.BallotEntry{}, err
	}
	now := uc.now()
	candidate := entities.Candidate{
		CandidateID: candidateID,
		FullName:    fullName,
		Affiliation: strings.TrimSpace(cmd.Affiliation),
		Bio:         strings.TrimSpace(cmd.Bio),
		CreatedAt:   now,
	}
	if err := uc.Ballots.SaveCandidate(ctx, candidate); err != nil {
		return entities.BallotEntry{}, err
	}
	entry := entities.BallotEntry{
		RaceCandidateID: entryID,
		RaceID:          race.RaceID,
		CandidateID:     candidate.CandidateID,
		DisplayName:     displayName,
		BallotOrder:     cmd.BallotOrder,
		CreatedAt:       now,
	}
	if err := uc.Ballots.SaveBallotEntry(ctx, entry); err != nil {
		return entities.BallotEntry{}, err
	}
	return entry, nil
}

// ApproveCandidate clears a ballot entry to appear on the rendered ballot.
func (uc CandidateUseCase) ApproveCandidate(ctx context.Context, raceCandidateID string, actorID string) (entities.BallotEntry, error) {
	entry, err := uc.Ballots.GetBallotEntry(ctx, strings.TrimSpace(raceCandidateID))
	if err != nil {
		return entities.BallotEntry{}, err
	}
	race, err := uc.Races.GetRace(ctx, entry.RaceID)
	if err != nil {
		return entities.BallotEntry{}, err
	}
	if err := uc.requireEditable(ctx, race.ElectionID, actorID); err != nil {
		return entities.BallotEntry{}, err
	}

	entry.Approved = true
	if err := uc.Ballots.SaveBallotEntry(ctx, entry); err != nil {
		return entities.BallotEntry{}, err
	}
	return entry, nil
}

func (uc CandidateUseCase) RemoveCandidate(ctx context.Context, raceCandidateID string, actorID string) error {
	entry, err := uc.Ballots.GetBallotEntry(ctx, strings.TrimSpace(raceCandidateID))
	if err != nil {
		return err
	}
	race, err := uc.Races.GetRace(ctx, entry.RaceID)
	if err != nil {
		return err
	}
	if err := uc.requireEditable(ctx, race.ElectionID, actorID); err != nil {
		return err
	}
	return uc.Ballots.DeleteBallotEntry(ctx, entry.RaceCandidateID)
}

func (uc CandidateUseCase) requireEditable(ctx context.Context, electionID string, actorID string) error {
	election, err := uc.Elections.GetElection(ctx, electionID)
	if err != nil {
		return err
	}
	if err := requireAdmin(ctx, uc.Members, election.OrganizationID, actorID); err != nil {
		return err
	}
	if !election.RacesMutable() {
		return domainerrors.ErrRacesLocked
	}
	return nil
}

func (uc CandidateUseCase) now() time.Time {
	if uc.Clock != nil {
		return uc.Clock.Now().UTC()
	}
	return time.Now().UTC()
}
