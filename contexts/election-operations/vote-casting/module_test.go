package votecasting_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	votecasting "quorum/contexts/election-operations/vote-casting"
	"quorum/contexts/election-operations/vote-casting/domain/entities"
	domainerrors "quorum/contexts/election-operations/vote-casting/domain/errors"
	"quorum/contexts/election-operations/vote-casting/ports"
	httptransport "quorum/contexts/election-operations/vote-casting/transport/http"
)

// newVotingModule seeds an open election with one race (two votes allowed)
// and three approved candidates, an admin, and two plain members.
func newVotingModule(t *testing.T) votecasting.Module {
	t.Helper()
	module := votecasting.NewInMemoryModule(nil)
	module.Store.SetElection(ports.ElectionProjection{
		ElectionID:     "el-1",
		OrganizationID: "org-1",
		Name:           "Board Election 2026",
		Status:         ports.ElectionStatusOpen,
	})
	module.Store.SetRace(ports.RaceProjection{
		RaceID:           "race-1",
		ElectionID:       "el-1",
		Name:             "Board Seats",
		MaxVotesPerVoter: 2,
		MaxWinners:       2,
	})
	for i, name := range []string{"Ada Ferro", "Ben Ilsen", "Cleo Marsh"} {
		module.Store.SetBallotEntry(ports.BallotProjection{
			RaceCandidateID: []string{"rc-a", "rc-b", "rc-c"}[i],
			RaceID:          "race-1",
			CandidateID:     []string{"cand-a", "cand-b", "cand-c"}[i],
			DisplayName:     name,
			BallotOrder:     i + 1,
			Approved:        true,
		})
	}
	module.Store.SetMembership(ports.Membership{
		OrganizationID: "org-1",
		UserID:         "admin-1",
		Role:           entities.RoleAdmin,
		Active:         true,
	})
	module.Store.SetMembership(ports.Membership{
		OrganizationID: "org-1",
		UserID:         "voter-1",
		Role:           entities.RoleMember,
		Active:         true,
	})
	module.Store.SetMembership(ports.Membership{
		OrganizationID: "org-1",
		UserID:         "voter-2",
		Role:           entities.RoleMember,
		Active:         true,
	})
	return module
}

func admitVoter(t *testing.T, module votecasting.Module, userID string) {
	t.Helper()
	if _, err := module.Handler.RegisterVoterHandler(context.Background(), "el-1", userID); err != nil {
		t.Fatalf("register %s failed: %v", userID, err)
	}
	if _, err := module.Handler.ApproveVoterHandler(context.Background(), "el-1", "admin-1", httptransport.ApproveVoterRequest{UserID: userID}); err != nil {
		t.Fatalf("approve %s failed: %v", userID, err)
	}
}

func castVote(module votecasting.Module, userID string, raceCandidateID string) (httptransport.VoteResponse, error) {
	return module.Handler.CastVoteHandler(context.Background(), "el-1", userID, httptransport.CastVoteRequest{
		RaceID:          "race-1",
		RaceCandidateID: raceCandidateID,
	})
}

func TestRegisterAndApproveFlow(t *testing.T) {
	module := newVotingModule(t)

	voter, err := module.Handler.RegisterVoterHandler(context.Background(), "el-1", "voter-1")
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if voter.Approved {
		t.Fatal("registration must not auto-approve")
	}

	if _, err := module.Handler.RegisterVoterHandler(context.Background(), "el-1", "voter-1"); !errors.Is(err, domainerrors.ErrVoterAlreadyRegistered) {
		t.Fatalf("expected ErrVoterAlreadyRegistered, got %v", err)
	}
	if _, err := module.Handler.RegisterVoterHandler(context.Background(), "el-1", "stranger-1"); !errors.Is(err, domainerrors.ErrNotOrganizationMember) {
		t.Fatalf("expected ErrNotOrganizationMember, got %v", err)
	}

	// Members cannot approve, admins can.
	if _, err := module.Handler.ApproveVoterHandler(context.Background(), "el-1", "voter-2", httptransport.ApproveVoterRequest{UserID: "voter-1"}); !errors.Is(err, domainerrors.ErrNotOrganizationAdmin) {
		t.Fatalf("expected ErrNotOrganizationAdmin, got %v", err)
	}
	if _, err := module.Handler.ApproveVoterHandler(context.Background(), "el-1", "admin-1", httptransport.ApproveVoterRequest{UserID: "nobody-1"}); !errors.Is(err, domainerrors.ErrVoterNotRegistered) {
		t.Fatalf("expected ErrVoterNotRegistered, got %v", err)
	}

	pending, err := module.Handler.PendingVotersHandler(context.Background(), "el-1", "admin-1")
	if err != nil {
		t.Fatalf("pending voters failed: %v", err)
	}
	if len(pending.Items) != 1 || pending.Items[0].UserID != "voter-1" {
		t.Fatalf("expected voter-1 pending, got %+v", pending.Items)
	}

	approved, err := module.Handler.ApproveVoterHandler(context.Background(), "el-1", "admin-1", httptransport.ApproveVoterRequest{UserID: "voter-1"})
	if err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	if !approved.Approved || approved.ApprovedAt == nil {
		t.Fatalf("expected approved voter, got %+v", approved)
	}

	status, err := module.Handler.VoterStatusHandler(context.Background(), "el-1", "voter-1")
	if err != nil {
		t.Fatalf("voter status failed: %v", err)
	}
	if !status.Registered || !status.Approved {
		t.Fatalf("expected registered and approved, got %+v", status)
	}
}

func TestCastVotePreconditionOrder(t *testing.T) {
	module := newVotingModule(t)

	if _, err := module.Handler.CastVoteHandler(context.Background(), "el-missing", "voter-1", httptransport.CastVoteRequest{
		RaceID:          "race-1",
		RaceCandidateID: "rc-a",
	}); !errors.Is(err, domainerrors.ErrElectionNotFound) {
		t.Fatalf("expected ErrElectionNotFound, got %v", err)
	}

	module.Store.SetElection(ports.ElectionProjection{
		ElectionID:     "el-draft",
		OrganizationID: "org-1",
		Status:         "draft",
	})
	if _, err := module.Handler.CastVoteHandler(context.Background(), "el-draft", "voter-1", httptransport.CastVoteRequest{
		RaceID:          "race-1",
		RaceCandidateID: "rc-a",
	}); !errors.Is(err, domainerrors.ErrElectionNotOpen) {
		t.Fatalf("expected ErrElectionNotOpen, got %v", err)
	}

	if _, err := module.Handler.CastVoteHandler(context.Background(), "el-1", "voter-1", httptransport.CastVoteRequest{
		RaceID:          "race-missing",
		RaceCandidateID: "rc-a",
	}); !errors.Is(err, domainerrors.ErrRaceNotFound) {
		t.Fatalf("expected ErrRaceNotFound, got %v", err)
	}

	if _, err := castVote(module, "voter-1", "rc-missing"); !errors.Is(err, domainerrors.ErrCandidateNotFound) {
		t.Fatalf("expected ErrCandidateNotFound, got %v", err)
	}

	module.Store.SetBallotEntry(ports.BallotProjection{
		RaceCandidateID: "rc-unapproved",
		RaceID:          "race-1",
		CandidateID:     "cand-x",
		DisplayName:     "Unvetted",
		BallotOrder:     9,
	})
	if _, err := castVote(module, "voter-1", "rc-unapproved"); !errors.Is(err, domainerrors.ErrCandidateNotApproved) {
		t.Fatalf("expected ErrCandidateNotApproved, got %v", err)
	}

	// Unregistered, then registered-but-unapproved.
	if _, err := castVote(module, "voter-1", "rc-a"); !errors.Is(err, domainerrors.ErrVoterNotRegistered) {
		t.Fatalf("expected ErrVoterNotRegistered, got %v", err)
	}
	if _, err := module.Handler.RegisterVoterHandler(context.Background(), "el-1", "voter-1"); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if _, err := castVote(module, "voter-1", "rc-a"); !errors.Is(err, domainerrors.ErrVoterNotApproved) {
		t.Fatalf("expected ErrVoterNotApproved, got %v", err)
	}
}

func TestCastVoteLimitAndDuplicate(t *testing.T) {
	module := newVotingModule(t)
	admitVoter(t, module, "voter-1")

	if _, err := castVote(module, "voter-1", "rc-a"); err != nil {
		t.Fatalf("first vote failed: %v", err)
	}
	if _, err := castVote(module, "voter-1", "rc-a"); !errors.Is(err, domainerrors.ErrDuplicateVote) {
		t.Fatalf("expected ErrDuplicateVote, got %v", err)
	}
	if _, err := castVote(module, "voter-1", "rc-b"); err != nil {
		t.Fatalf("second vote failed: %v", err)
	}
	if _, err := castVote(module, "voter-1", "rc-c"); !errors.Is(err, domainerrors.ErrVoteLimitReached) {
		t.Fatalf("expected ErrVoteLimitReached, got %v", err)
	}
}

func TestResultsOrdering(t *testing.T) {
	module := newVotingModule(t)
	admitVoter(t, module, "voter-1")
	admitVoter(t, module, "voter-2")

	// Ben gets two votes, Ada one, Cleo none.
	for _, cast := range []struct{ voter, candidate string }{
		{"voter-1", "rc-b"},
		{"voter-1", "rc-a"},
		{"voter-2", "rc-b"},
	} {
		if _, err := castVote(module, cast.voter, cast.candidate); err != nil {
			t.Fatalf("vote %s -> %s failed: %v", cast.voter, cast.candidate, err)
		}
	}

	results, err := module.Handler.RaceResultsHandler(context.Background(), "race-1", "voter-1")
	if err != nil {
		t.Fatalf("race results failed: %v", err)
	}
	if results.TotalVotes != 3 {
		t.Fatalf("expected 3 total votes, got %d", results.TotalVotes)
	}
	want := []struct {
		id    string
		count int
	}{
		{"rc-b", 2},
		{"rc-a", 1},
		{"rc-c", 0},
	}
	if len(results.Tallies) != len(want) {
		t.Fatalf("expected %d tallies, got %d", len(want), len(results.Tallies))
	}
	for i, expect := range want {
		got := results.Tallies[i]
		if got.RaceCandidateID != expect.id || got.VoteCount != expect.count {
			t.Fatalf("tally[%d] = %s/%d, want %s/%d", i, got.RaceCandidateID, got.VoteCount, expect.id, expect.count)
		}
	}

	if _, err := module.Handler.RaceResultsHandler(context.Background(), "race-1", "stranger-1"); !errors.Is(err, domainerrors.ErrNotOrganizationMember) {
		t.Fatalf("expected ErrNotOrganizationMember, got %v", err)
	}

	electionResults, err := module.Handler.ElectionResultsHandler(context.Background(), "el-1", "voter-2")
	if err != nil {
		t.Fatalf("election results failed: %v", err)
	}
	if len(electionResults.Races) != 1 || electionResults.Races[0].RaceID != "race-1" {
		t.Fatalf("expected race-1 in election results, got %+v", electionResults.Races)
	}
}

func TestApprovedVoterVotesAcrossOrganizationElections(t *testing.T) {
	module := newVotingModule(t)
	module.Store.SetElection(ports.ElectionProjection{
		ElectionID:     "el-2",
		OrganizationID: "org-1",
		Name:           "Bylaw Amendment 2026",
		Status:         ports.ElectionStatusOpen,
	})
	module.Store.SetRace(ports.RaceProjection{
		RaceID:           "race-2",
		ElectionID:       "el-2",
		Name:             "Amendment",
		MaxVotesPerVoter: 1,
		MaxWinners:       1,
	})
	module.Store.SetBallotEntry(ports.BallotProjection{
		RaceCandidateID: "rc-yes",
		RaceID:          "race-2",
		CandidateID:     "cand-yes",
		DisplayName:     "In Favour",
		BallotOrder:     1,
		Approved:        true,
	})

	// Admission happens once per organization, through whichever election
	// page the member used to register.
	admitVoter(t, module, "voter-1")

	if _, err := castVote(module, "voter-1", "rc-a"); err != nil {
		t.Fatalf("vote in first election failed: %v", err)
	}
	if _, err := module.Handler.CastVoteHandler(context.Background(), "el-2", "voter-1", httptransport.CastVoteRequest{
		RaceID:          "race-2",
		RaceCandidateID: "rc-yes",
	}); err != nil {
		t.Fatalf("approved voter rejected in second election of same organization: %v", err)
	}

	// Registering again through the second election is still a duplicate.
	if _, err := module.Handler.RegisterVoterHandler(context.Background(), "el-2", "voter-1"); !errors.Is(err, domainerrors.ErrVoterAlreadyRegistered) {
		t.Fatalf("expected ErrVoterAlreadyRegistered, got %v", err)
	}

	status, err := module.Handler.VoterStatusHandler(context.Background(), "el-2", "voter-1")
	if err != nil {
		t.Fatalf("voter status failed: %v", err)
	}
	if !status.Registered || !status.Approved || status.OrganizationID != "org-1" {
		t.Fatalf("expected approved org-1 voter in el-2, got %+v", status)
	}
}

func TestConcurrentCastsRespectVoteLimit(t *testing.T) {
	module := newVotingModule(t)
	admitVoter(t, module, "voter-1")

	// race-1 allows two votes per voter. Each candidate is attempted twice
	// in parallel; the store's atomic insert must admit exactly two votes.
	attempts := []string{"rc-a", "rc-b", "rc-c", "rc-a", "rc-b", "rc-c"}
	results := make([]error, len(attempts))
	var wg sync.WaitGroup
	for i, candidate := range attempts {
		wg.Add(1)
		go func(i int, candidate string) {
			defer wg.Done()
			_, err := castVote(module, "voter-1", candidate)
			results[i] = err
		}(i, candidate)
	}
	wg.Wait()

	accepted := 0
	for _, err := range results {
		switch {
		case err == nil:
			accepted++
		case errors.Is(err, domainerrors.ErrDuplicateVote),
			errors.Is(err, domainerrors.ErrVoteLimitReached):
		default:
			t.Fatalf("unexpected cast error: %v", err)
		}
	}
	if accepted != 2 {
		t.Fatalf("expected exactly 2 accepted votes, got %d", accepted)
	}

	tally, err := module.Handler.RaceResultsHandler(context.Background(), "race-1", "admin-1")
	if err != nil {
		t.Fatalf("race results failed: %v", err)
	}
	if tally.TotalVotes != 2 {
		t.Fatalf("expected 2 recorded votes, got %d", tally.TotalVotes)
	}
}

func TestRegisterRejectsClosedElection(t *testing.T) {
	module := newVotingModule(t)
	module.Store.SetElection(ports.ElectionProjection{
		ElectionID:     "el-closed",
		OrganizationID: "org-1",
		Status:         ports.ElectionStatusClosed,
	})
	if _, err := module.Handler.RegisterVoterHandler(context.Background(), "el-closed", "voter-1"); !errors.Is(err, domainerrors.ErrElectionClosed) {
		t.Fatalf("expected ErrElectionClosed, got %v", err)
	}
}

func TestCastVoteRejectsUnknownChannel(t *testing.T) {
	module := newVotingModule(t)
	admitVoter(t, module, "voter-1")

	if _, err := module.Handler.CastVoteHandler(context.Background(), "el-1", "voter-1", httptransport.CastVoteRequest{
		RaceID:          "race-1",
		RaceCandidateID: "rc-a",
		Channel:         "carrier_pigeon",
	}); !errors.Is(err, domainerrors.ErrInvalidChannel) {
		t.Fatalf("expected ErrInvalidChannel, got %v", err)
	}

	vote, err := module.Handler.CastVoteHandler(context.Background(), "el-1", "voter-1", httptransport.CastVoteRequest{
		RaceID:          "race-1",
		RaceCandidateID: "rc-a",
		Channel:         string(entities.ChannelInPerson),
	})
	if err != nil {
		t.Fatalf("in-person vote failed: %v", err)
	}
	if vote.Channel != string(entities.ChannelInPerson) {
		t.Fatalf("expected in_person channel, got %s", vote.Channel)
	}
	if vote.CastAt.After(time.Now().UTC().Add(time.Minute)) {
		t.Fatalf("cast_at in the future: %v", vote.CastAt)
	}
}
