package queries

import (
	"context"
	"sort"
	"strings"

	"quorum/contexts/election-operations/lifecycle-engine/domain/entities"
	domainerrors "quorum/contexts/election-operations/lifecycle-engine/domain/errors"
	"quorum/contexts/election-operations/lifecycle-engine/ports"
)

type RaceDetail struct {
	Race   entities.Race
	Ballot []entities.BallotEntry
}

type ElectionDetail struct {
	Election entities.Election
	Races    []RaceDetail
}

type ElectionQueries struct {
	Elections ports.ElectionRepository
	Races     ports.RaceRepository
	Ballots   ports.BallotRepository
	Members   ports.MembershipReader
}

// GetElection returns the full election detail: races in creation order with
// their ballot entries in ballot order. Visible to organization members only.
func (uc ElectionQueries) GetElection(ctx context.Context, electionID string, actorID string) (ElectionDetail, error) {
	election, err := uc.Elections.GetElection(ctx, strings.TrimSpace(electionID))
	if err != nil {
		return ElectionDetail{}, err
	}
	if err := uc.requireMember(ctx, election.OrganizationID, actorID); err != nil {
		return ElectionDetail{}, err
	}

	races, err := uc.Races.ListRacesByElection(ctx, election.ElectionID)
	if err != nil {
		return ElectionDetail{}, err
	}
	detail := ElectionDetail{Election: election, Races: make([]RaceDetail, 0, len(races))}
	for _, race := range races {
		entries, err := uc.Ballots.ListBallotEntries(ctx, race.RaceID)
		if err != nil {
			return ElectionDetail{}, err
		}
		sort.Slice(entries, func(i, j int) bool {
			if entries[i].BallotOrder == entries[j].BallotOrder {
				return entries[i].DisplayName < entries[j].DisplayName
			}
			return entries[i].BallotOrder < entries[j].BallotOrder
		})
		detail.Races = append(detail.Races, RaceDetail{Race: race, Ballot: entries})
	}
	return detail, nil
}

func (uc ElectionQueries) ListElectionsByOrganization(ctx context.Context, organizationID string, actorID string) ([]entities.Election, error) {
	if err := uc.requireMember(ctx, organizationID, actorID); err != nil {
		return nil, err
	}
	elections, err := uc.Elections.ListElectionsByOrganization(ctx, strings.TrimSpace(organizationID))
	if err != nil {
		return nil, err
	}
	sort.Slice(elections, func(i, j int) bool {
		return elections[i].CreatedAt.Before(elections[j].CreatedAt)
	})
	return elections, nil
}

func (uc ElectionQueries) requireMember(ctx context.Context, organizationID string, actorID string) error {
	membership, found, err := uc.Members.GetMembership(ctx, strings.TrimSpace(organizationID), strings.TrimSpace(actorID))
	if err != nil {
		return err
	}
	if !found || !membership.Active {
		return domainerrors.ErrNotOrganizationMember
	}
	return nil
}
