package httpadapter

import (
	"context"
	"log/slog"

	"quorum/contexts/election-operations/lifecycle-engine/application/commands"
	"quorum/contexts/election-operations/lifecycle-engine/application/queries"
	"quorum/contexts/election-operations/lifecycle-engine/application/workers"
	"quorum/contexts/election-operations/lifecycle-engine/domain/entities"
	httptransport "quorum/contexts/election-operations/lifecycle-engine/transport/http"
)

type Handler struct {
	Elections  commands.ElectionUseCase
	Races      commands.RaceUseCase
	Candidates commands.CandidateUseCase
	Queries    queries.ElectionQueries
	Sweeper    workers.DueElectionSweeper
	Logger     *slog.Logger
}

func (h Handler) CreateElectionHandler(
	ctx context.Context,
	actorID string,
	req httptransport.CreateElectionRequest,
) (httptransport.ElectionResponse, error) {
	election, err := h.Elections.CreateElection(ctx, commands.CreateElectionCommand{
		OrganizationID: req.OrganizationID,
		Name:           req.Name,
		Description:    req.Description,
		ActorID:        actorID,
	})
	if err != nil {
		return httptransport.ElectionResponse{}, err
	}
	return mapElection(election), nil
}

func (h Handler) UpdateElectionHandler(
	ctx context.Context,
	electionID string,
	actorID string,
	req httptransport.UpdateElectionRequest,
) (httptransport.ElectionResponse, error) {
	election, err := h.Elections.UpdateElection(ctx, commands.UpdateElectionCommand{
		ElectionID:  electionID,
		Name:        req.Name,
		Description: req.Description,
		StartAt:     req.StartAt,
		EndAt:       req.EndAt,
		ActorID:     actorID,
	})
	if err != nil {
		return httptransport.ElectionResponse{}, err
	}
	return mapElection(election), nil
}

func (h Handler) ScheduleElectionHandler(
	ctx context.Context,
	electionID string,
	actorID string,
	req httptransport.ScheduleElectionRequest,
) (httptransport.ElectionResponse, error) {
	election, err := h.Elections.ScheduleElection(ctx, commands.ScheduleElectionCommand{
		ElectionID: electionID,
		StartAt:    req.StartAt,
		EndAt:      req.EndAt,
		ActorID:    actorID,
	})
	if err != nil {
		return httptransport.ElectionResponse{}, err
	}
	return mapElection(election), nil
}

func (h Handler) OpenElectionHandler(ctx context.Context, electionID string, actorID string) (httptransport.ElectionResponse, error) {
	election, err := h.Elections.OpenElection(ctx, electionID, actorID)
	if err != nil {
		return httptransport.ElectionResponse{}, err
	}
	return mapElection(election), nil
}

func (h Handler) CloseElectionHandler(ctx context.Context, electionID string, actorID string) (httptransport.ElectionResponse, error) {
	election, err := h.Elections.CloseElection(ctx, electionID, actorID)
	if err != nil {
		return httptransport.ElectionResponse{}, err
	}
	return mapElection(election), nil
}

func (h Handler) DeleteElectionHandler(ctx context.Context, electionID string, actorID string) error {
	return h.Elections.DeleteElection(ctx, electionID, actorID)
}

func (h Handler) GetElectionHandler(ctx context.Context, electionID string, actorID string) (httptransport.ElectionDetailResponse, error) {
	detail, err := h.Queries.GetElection(ctx, electionID, actorID)
	if err != nil {
		return httptransport.ElectionDetailResponse{}, err
	}
	resp := httptransport.ElectionDetailResponse{
		Election: mapElection(detail.Election),
		Races:    make([]httptransport.RaceDetail, 0, len(detail.Races)),
	}
	for _, race := range detail.Races {
		resp.Races = append(resp.Races, httptransport.RaceDetail{
			Race:   mapRace(race.Race),
			Ballot: mapBallot(race.Ballot),
		})
	}
	return resp, nil
}

func (h Handler) ListElectionsHandler(ctx context.Context, organizationID string, actorID string) (httptransport.ElectionListResponse, error) {
	elections, err := h.Queries.ListElectionsByOrganization(ctx, organizationID, actorID)
	if err != nil {
		return httptransport.ElectionListResponse{}, err
	}
	resp := httptransport.ElectionListResponse{Items: make([]httptransport.ElectionResponse, 0, len(elections))}
	for _, election := range elections {
		resp.Items = append(resp.Items, mapElection(election))
	}
	return resp, nil
}

func (h Handler) CreateRaceHandler(
	ctx context.Context,
	electionID string,
	actorID string,
	req httptransport.CreateRaceRequest,
) (httptransport.RaceResponse, error) {
	race, err := h.Races.CreateRace(ctx, commands.CreateRaceCommand{
		ElectionID:       electionID,
		Name:             req.Name,
		Description:      req.Description,
		MaxVotesPerVoter: req.MaxVotesPerVoter,
		MaxWinners:       req.MaxWinners,
		ActorID:          actorID,
	})
	if err != nil {
		return httptransport.RaceResponse{}, err
	}
	return mapRace(race), nil
}

func (h Handler) UpdateRaceHandler(
	ctx context.Context,
	raceID string,
	actorID string,
	req httptransport.UpdateRaceRequest,
) (httptransport.RaceResponse, error) {
	race, err := h.Races.UpdateRace(ctx, commands.UpdateRaceCommand{
		RaceID:           raceID,
		Name:             req.Name,
		Description:      req.Description,
		MaxVotesPerVoter: req.MaxVotesPerVoter,
		MaxWinners:       req.MaxWinners,
		ActorID:          actorID,
	})
	if err != nil {
		return httptransport.RaceResponse{}, err
	}
	return mapRace(race), nil
}

func (h Handler) DeleteRaceHandler(ctx context.Context, raceID string, actorID string) error {
	return h.Races.DeleteRace(ctx, raceID, actorID)
}

func (h Handler) AddCandidateHandler(
	ctx context.Context,
	raceID string,
	actorID string,
	req httptransport.AddCandidateRequest,
) (httptransport.BallotEntryResponse, error) {
	entry, err := h.Candidates.AddCandidate(ctx, commands.AddCandidateCommand{
		RaceID:      raceID,
		FullName:    req.FullName,
		Affiliation: req.Affiliation,
		Bio:         req.Bio,
		DisplayName: req.DisplayName,
		BallotOrder: req.BallotOrder,
		ActorID:     actorID,
	})
	if err != nil {
		return httptransport.BallotEntryResponse{}, err
	}
	return mapBallotEntry(entry), nil
}

func (h Handler) ApproveCandidateHandler(ctx context.Context, raceCandidateID string, actorID string) (httptransport.BallotEntryResponse, error) {
	entry, err := h.Candidates.ApproveCandidate(ctx, raceCandidateID, actorID)
	if err != nil {
		return httptransport.BallotEntryResponse{}, err
	}
	return mapBallotEntry(entry), nil
}

func (h Handler) RemoveCandidateHandler(ctx context.Context, raceCandidateID string, actorID string) error {
	return h.Candidates.RemoveCandidate(ctx, raceCandidateID, actorID)
}

// TriggerSweepHandler runs one due-election sweep on demand, the same pass
// the background scheduler runs on its interval.
func (h Handler) TriggerSweepHandler(ctx context.Context) (httptransport.SweepResponse, error) {
	if err := h.Sweeper.RunOnce(ctx); err != nil {
		return httptransport.SweepResponse{}, err
	}
	return httptransport.SweepResponse{Triggered: true}, nil
}

func mapElection(election entities.Election) httptransport.ElectionResponse {
	return httptransport.ElectionResponse{
		ElectionID:     election.ElectionID,
		OrganizationID: election.OrganizationID,
		Name:           election.Name,
		Description:    election.Description,
		Status:         string(election.Status),
		StartAt:        election.StartAt,
		EndAt:          election.EndAt,
		OpenedAt:       election.OpenedAt,
		ClosedAt:       election.ClosedAt,
		CreatedBy:      election.CreatedBy,
		CreatedAt:      election.CreatedAt,
		UpdatedAt:      election.UpdatedAt,
	}
}

func mapRace(race entities.Race) httptransport.RaceResponse {
	return httptransport.RaceResponse{
		RaceID:           race.RaceID,
		ElectionID:       race.ElectionID,
		Name:             race.Name,
		Description:      race.Description,
		MaxVotesPerVoter: race.MaxVotesPerVoter,
		MaxWinners:       race.MaxWinners,
		CreatedAt:        race.CreatedAt,
		UpdatedAt:        race.UpdatedAt,
	}
}

func mapBallotEntry(entry entities.BallotEntry) httptransport.BallotEntryResponse {
	return httptransport.BallotEntryResponse{
		RaceCandidateID: entry.RaceCandidateID,
		RaceID:          entry.RaceID,
		CandidateID:     entry.CandidateID,
		DisplayName:     entry.DisplayName,
		BallotOrder:     entry.BallotOrder,
		Approved:        entry.Approved,
	}
}

func mapBallot(entries []entities.BallotEntry) []httptransport.BallotEntryResponse {
	items := make([]httptransport.BallotEntryResponse, 0, len(entries))
	for _, entry := range entries {
		items = append(items, mapBallotEntry(entry))
	}
	return items
}
