package httpadapter

import (
	"context"
	"log/slog"

	"quorum/contexts/election-operations/vote-casting/application/commands"
	"quorum/contexts/election-operations/vote-casting/application/queries"
	"quorum/contexts/election-operations/vote-casting/domain/entities"
	httptransport "quorum/contexts/election-operations/vote-casting/transport/http"
)

type Handler struct {
	Casts   commands.CastUseCase
	Voters  commands.VoterUseCase
	Results queries.ResultsQueries
	Status  queries.VoterQueries
	Logger  *slog.Logger
}

func (h Handler) CastVoteHandler(
	ctx context.Context,
	electionID string,
	actorID string,
	req httptransport.CastVoteRequest,
) (httptransport.VoteResponse, error) {
	vote, err := h.Casts.CastVote(ctx, commands.CastVoteCommand{
		ElectionID:      electionID,
		RaceID:          req.RaceID,
		RaceCandidateID: req.RaceCandidateID,
		ActorID:         actorID,
		Channel:         entities.VoteChannel(req.Channel),
	})
	if err != nil {
		return httptransport.VoteResponse{}, err
	}
	return httptransport.VoteResponse{
		VoteID:          vote.VoteID,
		RaceID:          vote.RaceID,
		RaceCandidateID: vote.RaceCandidateID,
		Channel:         string(vote.Channel),
		CastAt:          vote.CastAt,
	}, nil
}

func (h Handler) RegisterVoterHandler(ctx context.Context, electionID string, actorID string) (httptransport.VoterResponse, error) {
	voter, err := h.Voters.RegisterVoter(ctx, commands.RegisterVoterCommand{
		ElectionID: electionID,
		ActorID:    actorID,
	})
	if err != nil {
		return httptransport.VoterResponse{}, err
	}
	return mapVoter(voter), nil
}

func (h Handler) ApproveVoterHandler(
	ctx context.Context,
	electionID string,
	actorID string,
	req httptransport.ApproveVoterRequest,
) (httptransport.VoterResponse, error) {
	voter, err := h.Voters.ApproveVoter(ctx, commands.ApproveVoterCommand{
		ElectionID: electionID,
		UserID:     req.UserID,
		ActorID:    actorID,
	})
	if err != nil {
		return httptransport.VoterResponse{}, err
	}
	return mapVoter(voter), nil
}

func (h Handler) VoterStatusHandler(ctx context.Context, electionID string, actorID string) (httptransport.VoterStatusResponse, error) {
	view, err := h.Status.VoterStatus(ctx, electionID, actorID)
	if err != nil {
		return httptransport.VoterStatusResponse{}, err
	}
	return httptransport.VoterStatusResponse{
		OrganizationID: view.OrganizationID,
		ElectionID:     view.ElectionID,
		UserID:         view.UserID,
		Registered:     view.Registered,
		Approved:       view.Approved,
		RegisteredAt:   view.RegisteredAt,
		ApprovedAt:     view.ApprovedAt,
	}, nil
}

func (h Handler) PendingVotersHandler(ctx context.Context, electionID string, actorID string) (httptransport.PendingVotersResponse, error) {
	voters, err := h.Status.ListPendingVoters(ctx, electionID, actorID)
	if err != nil {
		return httptransport.PendingVotersResponse{}, err
	}
	resp := httptransport.PendingVotersResponse{Items: make([]httptransport.VoterResponse, 0, len(voters))}
	for _, voter := range voters {
		resp.Items = append(resp.Items, mapVoter(voter))
	}
	return resp, nil
}

func (h Handler) RaceResultsHandler(ctx context.Context, raceID string, actorID string) (httptransport.RaceResultsResponse, error) {
	result, err := h.Results.RaceResults(ctx, raceID, actorID)
	if err != nil {
		return httptransport.RaceResultsResponse{}, err
	}
	return mapRaceResult(result), nil
}

func (h Handler) ElectionResultsHandler(ctx context.Context, electionID string, actorID string) (httptransport.ElectionResultsResponse, error) {
	view, err := h.Results.ElectionResults(ctx, electionID, actorID)
	if err != nil {
		return httptransport.ElectionResultsResponse{}, err
	}
	resp := httptransport.ElectionResultsResponse{
		ElectionID:   view.ElectionID,
		ElectionName: view.ElectionName,
		Status:       view.Status,
		Races:        make([]httptransport.RaceResultsResponse, 0, len(view.Races)),
	}
	for _, race := range view.Races {
		resp.Races = append(resp.Races, mapRaceResult(race))
	}
	return resp, nil
}

func mapVoter(voter entities.Voter) httptransport.VoterResponse {
	return httptransport.VoterResponse{
		OrganizationID: voter.OrganizationID,
		UserID:         voter.UserID,
		Approved:       voter.Approved,
		RegisteredAt:   voter.RegisteredAt,
		ApprovedAt:     voter.ApprovedAt,
	}
}

func mapRaceResult(result entities.RaceResult) httptransport.RaceResultsResponse {
	resp := httptransport.RaceResultsResponse{
		RaceID:     result.RaceID,
		RaceName:   result.RaceName,
		MaxWinners: result.MaxWinners,
		TotalVotes: result.TotalVotes,
		Tallies:    make([]httptransport.CandidateTally, 0, len(result.Tallies)),
	}
	for _, tally := range result.Tallies {
		resp.Tallies = append(resp.Tallies, httptransport.CandidateTally{
			RaceCandidateID: tally.RaceCandidateID,
			CandidateID:     tally.CandidateID,
			DisplayName:     tally.DisplayName,
			BallotOrder:     tally.BallotOrder,
			VoteCount:       tally.VoteCount,
		})
	}
	return resp
}
