package queries

import (
	"context"
	"sort"
	"strings"

	"quorum/contexts/election-operations/vote-casting/domain/entities"
	domainerrors "quorum/contexts/election-operations/vote-casting/domain/errors"
	"quorum/contexts/election-operations/vote-casting/ports"
)

type ElectionResultsView struct {
	ElectionID   string
	ElectionName string
	Status       string
	Races        []entities.RaceResult
}

type ResultsQueries struct {
	Directory ports.ElectionDirectory
	Votes     ports.VoteRepository
	Members   ports.MembershipReader
}

// RaceResults tallies one race. Rows are ordered by vote count descending,
// then ballot order, then display name, so ties keep the ballot's own
// ordering. Candidates with zero votes still appear.
func (uc ResultsQueries) RaceResults(ctx context.Context, raceID string, actorID string) (entities.RaceResult, error) {
	race, err := uc.Directory.GetRace(ctx, strings.TrimSpace(raceID))
	if err != nil {
		return entities.RaceResult{}, err
	}
	election, err := uc.Directory.GetElection(ctx, race.ElectionID)
	if err != nil {
		return entities.RaceResult{}, err
	}
	if err := uc.requireMember(ctx, election.OrganizationID, actorID); err != nil {
		return entities.RaceResult{}, err
	}
	return uc.tallyRace(ctx, race)
}

// ElectionResults tallies every race in the election.
func (uc ResultsQueries) ElectionResults(ctx context.Context, electionID string, actorID string) (ElectionResultsView, error) {
	election, err := uc.Directory.GetElection(ctx, strings.TrimSpace(electionID))
	if err != nil {
		return ElectionResultsView{}, err
	}
	if err := uc.requireMember(ctx, election.OrganizationID, actorID); err != nil {
		return ElectionResultsView{}, err
	}

	races, err := uc.Directory.ListRacesByElection(ctx, election.ElectionID)
	if err != nil {
		return ElectionResultsView{}, err
	}
	view := ElectionResultsView{
		ElectionID:   election.ElectionID,
		ElectionName: election.Name,
		Status:       election.Status,
		Races:        make([]entities.RaceResult, 0, len(races)),
	}
	for _, race := range races {
		result, err := uc.tallyRace(ctx, race)
		if err != nil {
			return ElectionResultsView{}, err
		}
		view.Races = append(view.Races, result)
	}
	return view, nil
}

func (uc ResultsQueries) tallyRace(ctx context.Context, race ports.RaceProjection) (entities.RaceResult, error) {
	entries, err := uc.Directory.ListBallotEntries(ctx, race.RaceID)
	if err != nil {
		return entities.RaceResult{}, err
	}
	counts, err := uc.Votes.CountVotesByCandidate(ctx, race.RaceID)
	if err != nil {
		return entities.RaceResult{}, err
	}

	result := entities.RaceResult{
		RaceID:     race.RaceID,
		RaceName:   race.Name,
		MaxWinners: race.MaxWinners,
		Tallies:    make([]entities.CandidateTally, 0, len(entries)),
	}
	for _, entry := range entries {
		if !entry.Approved {
			continue
		}
		count := counts[entry.RaceCandidateID]
		result.TotalVotes += count
		result.Tallies = append(result.Tallies, entities.CandidateTally{
			RaceCandidateID: entry.RaceCandidateID,
			CandidateID:     entry.CandidateID,
			DisplayName:     entry.DisplayName,
			BallotOrder:     entry.BallotOrder,
			VoteCount:       count,
		})
	}
	sort.Slice(result.Tallies, func(i, j int) bool {
		a, b := result.Tallies[i], result.Tallies[j]
		if a.VoteCount != b.VoteCount {
			return a.VoteCount > b.VoteCount
		}
		if a.BallotOrder != b.BallotOrder {
			return a.BallotOrder < b.BallotOrder
		}
		return a.DisplayName < b.DisplayName
	})
	return result, nil
}

func (uc ResultsQueries) requireMember(ctx context.Context, organizationID string, actorID string) error {
	membership, found, err := uc.Members.GetMembership(ctx, strings.TrimSpace(organizationID), strings.TrimSpace(actorID))
	if err != nil {
		return err
	}
	if !found || !membership.Active {
		return domainerrors.ErrNotOrganizationMember
	}
	return nil
}
