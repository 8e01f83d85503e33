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

type CreateRaceCommand struct {
	ElectionID       string
	Name             string
	Description      string
	MaxVotesPerVoter int
	MaxWinners       int
	ActorID          string
}

type UpdateRaceCommand struct {
	RaceID           string
	Name             string
	Description      string
	MaxVotesPerVoter int
	MaxWinners       int
	ActorID          string
}

// RaceUseCase manages races under the ballot-freeze rule: race mutation is
// only legal while the owning election is draft or scheduled.
type RaceUseCase struct {
	Elections ports.ElectionRepository
	Races     ports.RaceRepository
	Members   ports.MembershipReader
	Clock     ports.Clock
	IDGen     ports.IDGenerator
	Logger    *slog.Logger
}

func (uc RaceUseCase) CreateRace(ctx context.Context, cmd CreateRaceCommand) (entities.Race, error) {
	name := strings.TrimSpace(cmd.Name)
	if name == "" {
		return entities.Race{}, domainerrors.ErrNameRequired
	}
	election, err := uc.editableElection(ctx, cmd.ElectionID, cmd.ActorID)
	if err != nil {
		return entities.Race{}, err
	}
	if err := uc.rejectDuplicateName(ctx, election.ElectionID, name, ""); err != nil {
		return entities.Race{}, err
	}

	raceID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return entities.Race{}, err
	}
	now := uc.now()
	race := entities.Race{
		RaceID:           raceID,
		ElectionID:       election.ElectionID,
		Name:             name,
		Description:      strings.TrimSpace(cmd.Description),
		MaxVotesPerVoter: defaultLimit(cmd.MaxVotesPerVoter),
		MaxWinners:       defaultLimit(cmd.MaxWinners),
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := uc.Races.SaveRace(ctx, race); err != nil {
		return entities.Race{}, err
	}
	return race, nil
}

func (uc RaceUseCase) UpdateRace(ctx context.Context, cmd UpdateRaceCommand) (entities.Race, error) {
	name := strings.TrimSpace(cmd.Name)
	if name == "" {
		return entities.Race{}, domainerrors.ErrNameRequired
	}
	race, err := uc.Races.GetRace(ctx, strings.TrimSpace(cmd.RaceID))
	if err != nil {
		return entities.Race{}, err
	}
	if _, err := uc.editableElection(ctx, race.ElectionID, cmd.ActorID); err != nil {
		return entities.Race{}, err
	}
	if err := uc.rejectDuplicateName(ctx, race.ElectionID, name, race.RaceID); err != nil {
		return entities.Race{}, err
	}

	race.Name = name
	race.Description = strings.TrimSpace(cmd.Description)
	race.MaxVotesPerVoter = defaultLimit(cmd.MaxVotesPerVoter)
	race.MaxWinners = defaultLimit(cmd.MaxWinners)
	race.UpdatedAt = uc.now()
	if err := uc.Races.SaveRace(ctx, race); err != nil {
		return entities.Race{}, err
	}
	return race, nil
}

func (uc RaceUseCase) DeleteRace(ctx context.Context, raceID string, actorID string) error {
	race, err := uc.Races.GetRace(ctx, strings.TrimSpace(raceID))
	if err != nil {
		return err
	}
	if _, err := uc.editableElection(ctx, race.ElectionID, actorID); err != nil {
		return err
	}
	return uc.Races.DeleteRace(ctx, race.RaceID)
}

// editableElection loads the owning election, checks the actor's admin role,
// and enforces the draft/scheduled mutation gate.
func (uc RaceUseCase) editableElection(ctx context.Context, electionID string, actorID string) (entities.Election, error) {
	election, err := uc.Elections.GetElection(ctx, strings.TrimSpace(electionID))
	if err != nil {
		return entities.Election{}, err
	}
	if err := requireAdmin(ctx, uc.Members, election.OrganizationID, actorID); err != nil {
		return entities.Election{}, err
	}
	if !election.RacesMutable() {
		return entities.Election{}, domainerrors.ErrRacesLocked
	}
	return election, nil
}

func (uc RaceUseCase) rejectDuplicateName(ctx context.Context, electionID string, name string, excludeRaceID string) error {
	races, err := uc.Races.ListRacesByElection(ctx, electionID)
	if err != nil {
		return err
	}
	for _, existing := range races {
		if existing.RaceID == excludeRaceID {
			continue
		}
		if strings.EqualFold(existing.Name, name) {
			return domainerrors.ErrDuplicateRaceName
		}
	}
	return nil
}

func (uc RaceUseCase) now() time.Time {
	if uc.Clock != nil {
		return uc.Clock.Now().UTC()
	}
	return time.Now().UTC()
}

func defaultLimit(value int) int {
	if value <= 0 {
		return 1
	}
	return value
}
