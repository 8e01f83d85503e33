package lifecycleengine_test

import (
	"context"
	"errors"
	"testing"
	"time"

	lifecycleengine "quorum/contexts/election-operations/lifecycle-engine"
	"quorum/contexts/election-operations/lifecycle-engine/domain/entities"
	domainerrors "quorum/contexts/election-operations/lifecycle-engine/domain/errors"
	"quorum/contexts/election-operations/lifecycle-engine/ports"
	httptransport "quorum/contexts/election-operations/lifecycle-engine/transport/http"
)

func newAdminModule(t *testing.T) lifecycleengine.Module {
	t.Helper()
	module := lifecycleengine.NewInMemoryModule(nil, nil)
	module.Store.SetMembership(ports.Membership{
		OrganizationID: "org-1",
		UserID:         "admin-1",
		Role:           entities.RoleAdmin,
		Active:         true,
	})
	module.Store.SetMembership(ports.Membership{
		OrganizationID: "org-1",
		UserID:         "member-1",
		Role:           entities.RoleMember,
		Active:         true,
	})
	return module
}

func createDraft(t *testing.T, module lifecycleengine.Module) httptransport.ElectionResponse {
	t.Helper()
	election, err := module.Handler.CreateElectionHandler(context.Background(), "admin-1", httptransport.CreateElectionRequest{
		OrganizationID: "org-1",
		Name:           "Board Election 2026",
	})
	if err != nil {
		t.Fatalf("create election failed: %v", err)
	}
	if election.Status != string(entities.StatusDraft) {
		t.Fatalf("expected draft status, got %s", election.Status)
	}
	return election
}

func TestElectionLifecycleScheduleOpenClose(t *testing.T) {
	module := newAdminModule(t)
	election := createDraft(t, module)

	startAt := time.Now().UTC().Add(time.Hour)
	endAt := startAt.Add(24 * time.Hour)
	scheduled, err := module.Handler.ScheduleElectionHandler(context.Background(), election.ElectionID, "admin-1", httptransport.ScheduleElectionRequest{
		StartAt: startAt,
		EndAt:   endAt,
	})
	if err != nil {
		t.Fatalf("schedule failed: %v", err)
	}
	if scheduled.Status != string(entities.StatusScheduled) {
		t.Fatalf("expected scheduled status, got %s", scheduled.Status)
	}

	opened, err := module.Handler.OpenElectionHandler(context.Background(), election.ElectionID, "admin-1")
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	if opened.Status != string(entities.StatusOpen) || opened.OpenedAt == nil {
		t.Fatalf("expected open status with opened_at, got %s", opened.Status)
	}

	if _, err := module.Handler.OpenElectionHandler(context.Background(), election.ElectionID, "admin-1"); !errors.Is(err, domainerrors.ErrElectionAlreadyOpen) {
		t.Fatalf("expected ErrElectionAlreadyOpen, got %v", err)
	}

	closed, err := module.Handler.CloseElectionHandler(context.Background(), election.ElectionID, "admin-1")
	if err != nil {
		t.Fatalf("close failed: %v", err)
	}
	if closed.Status != string(entities.StatusClosed) || closed.ClosedAt == nil {
		t.Fatalf("expected closed status with closed_at, got %s", closed.Status)
	}

	// Nothing leaves closed.
	if _, err := module.Handler.OpenElectionHandler(context.Background(), election.ElectionID, "admin-1"); !errors.Is(err, domainerrors.ErrElectionClosed) {
		t.Fatalf("expected ErrElectionClosed after close, got %v", err)
	}
	if _, err := module.Handler.CloseElectionHandler(context.Background(), election.ElectionID, "admin-1"); !errors.Is(err, domainerrors.ErrElectionNotOpen) {
		t.Fatalf("expected ErrElectionNotOpen on second close, got %v", err)
	}
}

func TestScheduleValidation(t *testing.T) {
	module := newAdminModule(t)
	election := createDraft(t, module)

	startAt := time.Now().UTC().Add(time.Hour)
	if _, err := module.Handler.ScheduleElectionHandler(context.Background(), election.ElectionID, "admin-1", httptransport.ScheduleElectionRequest{
		StartAt: startAt,
		EndAt:   startAt.Add(-time.Minute),
	}); !errors.Is(err, domainerrors.ErrInvalidScheduleWindow) {
		t.Fatalf("expected ErrInvalidScheduleWindow, got %v", err)
	}

	if _, err := module.Handler.ScheduleElectionHandler(context.Background(), election.ElectionID, "admin-1", httptransport.ScheduleElectionRequest{
		StartAt: startAt,
		EndAt:   startAt.Add(time.Hour),
	}); err != nil {
		t.Fatalf("schedule failed: %v", err)
	}

	// Scheduling is a draft-only transition; rescheduling is rejected.
	if _, err := module.Handler.ScheduleElectionHandler(context.Background(), election.ElectionID, "admin-1", httptransport.ScheduleElectionRequest{
		StartAt: startAt.Add(time.Hour),
		EndAt:   startAt.Add(2 * time.Hour),
	}); !errors.Is(err, domainerrors.ErrElectionNotDraft) {
		t.Fatalf("expected ErrElectionNotDraft, got %v", err)
	}
}

func TestCreateElectionAuthorization(t *testing.T) {
	module := newAdminModule(t)

	if _, err := module.Handler.CreateElectionHandler(context.Background(), "member-1", httptransport.CreateElectionRequest{
		OrganizationID: "org-1",
		Name:           "Members Cannot Create",
	}); !errors.Is(err, domainerrors.ErrNotOrganizationAdmin) {
		t.Fatalf("expected ErrNotOrganizationAdmin, got %v", err)
	}

	if _, err := module.Handler.CreateElectionHandler(context.Background(), "stranger-1", httptransport.CreateElectionRequest{
		OrganizationID: "org-1",
		Name:           "Strangers Cannot Create",
	}); !errors.Is(err, domainerrors.ErrNotOrganizationMember) {
		t.Fatalf("expected ErrNotOrganizationMember, got %v", err)
	}

	if _, err := module.Handler.CreateElectionHandler(context.Background(), "admin-1", httptransport.CreateElectionRequest{
		OrganizationID: "org-1",
		Name:           "   ",
	}); !errors.Is(err, domainerrors.ErrNameRequired) {
		t.Fatalf("expected ErrNameRequired, got %v", err)
	}
}

func TestRacesAndCandidatesFreezeOnceOpen(t *testing.T) {
	module := newAdminModule(t)
	election := createDraft(t, module)

	race, err := module.Handler.CreateRaceHandler(context.Background(), election.ElectionID, "admin-1", httptransport.CreateRaceRequest{
		Name:             "Treasurer",
		MaxVotesPerVoter: 1,
		MaxWinners:       1,
	})
	if err != nil {
		t.Fatalf("create race failed: %v", err)
	}

	if _, err := module.Handler.CreateRaceHandler(context.Background(), election.ElectionID, "admin-1", httptransport.CreateRaceRequest{
		Name: "treasurer",
	}); !errors.Is(err, domainerrors.ErrDuplicateRaceName) {
		t.Fatalf("expected ErrDuplicateRaceName, got %v", err)
	}

	entry, err := module.Handler.AddCandidateHandler(context.Background(), race.RaceID, "admin-1", httptransport.AddCandidateRequest{
		FullName:    "Dana Okafor",
		BallotOrder: 1,
	})
	if err != nil {
		t.Fatalf("add candidate failed: %v", err)
	}
	if entry.DisplayName != "Dana Okafor" {
		t.Fatalf("expected display name to default to full name, got %q", entry.DisplayName)
	}

	approved, err := module.Handler.ApproveCandidateHandler(context.Background(), entry.RaceCandidateID, "admin-1")
	if err != nil {
		t.Fatalf("approve candidate failed: %v", err)
	}
	if !approved.Approved {
		t.Fatal("expected candidate approved")
	}

	if _, err := module.Handler.OpenElectionHandler(context.Background(), election.ElectionID, "admin-1"); err != nil {
		t.Fatalf("open failed: %v", err)
	}

	if _, err := module.Handler.CreateRaceHandler(context.Background(), election.ElectionID, "admin-1", httptransport.CreateRaceRequest{
		Name: "Secretary",
	}); !errors.Is(err, domainerrors.ErrRacesLocked) {
		t.Fatalf("expected ErrRacesLocked, got %v", err)
	}
	if _, err := module.Handler.AddCandidateHandler(context.Background(), race.RaceID, "admin-1", httptransport.AddCandidateRequest{
		FullName: "Late Entry",
	}); !errors.Is(err, domainerrors.ErrRacesLocked) {
		t.Fatalf("expected ErrRacesLocked for candidate add, got %v", err)
	}
	if err := module.Handler.RemoveCandidateHandler(context.Background(), entry.RaceCandidateID, "admin-1"); !errors.Is(err, domainerrors.ErrRacesLocked) {
		t.Fatalf("expected ErrRacesLocked for candidate removal, got %v", err)
	}
}

func TestDeleteElectionRules(t *testing.T) {
	module := newAdminModule(t)
	election := createDraft(t, module)

	if _, err := module.Handler.OpenElectionHandler(context.Background(), election.ElectionID, "admin-1"); err != nil {
		t.Fatalf("open failed: %v", err)
	}
	if err := module.Handler.DeleteElectionHandler(context.Background(), election.ElectionID, "admin-1"); !errors.Is(err, domainerrors.ErrElectionOpenForVoting) {
		t.Fatalf("expected ErrElectionOpenForVoting, got %v", err)
	}

	if _, err := module.Handler.CloseElectionHandler(context.Background(), election.ElectionID, "admin-1"); err != nil {
		t.Fatalf("close failed: %v", err)
	}
	module.Store.SetVoteCount(election.ElectionID, 3)
	if err := module.Handler.DeleteElectionHandler(context.Background(), election.ElectionID, "admin-1"); !errors.Is(err, domainerrors.ErrElectionHasVotes) {
		t.Fatalf("expected ErrElectionHasVotes, got %v", err)
	}

	module.Store.SetVoteCount(election.ElectionID, 0)
	if err := module.Handler.DeleteElectionHandler(context.Background(), election.ElectionID, "admin-1"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := module.Handler.GetElectionHandler(context.Background(), election.ElectionID, "admin-1"); !errors.Is(err, domainerrors.ErrElectionNotFound) {
		t.Fatalf("expected ErrElectionNotFound after delete, got %v", err)
	}
}

func TestGetElectionVisibility(t *testing.T) {
	module := newAdminModule(t)
	election := createDraft(t, module)

	if _, err := module.Handler.GetElectionHandler(context.Background(), election.ElectionID, "member-1"); err != nil {
		t.Fatalf("member read failed: %v", err)
	}
	if _, err := module.Handler.GetElectionHandler(context.Background(), election.ElectionID, "stranger-1"); !errors.Is(err, domainerrors.ErrNotOrganizationMember) {
		t.Fatalf("expected ErrNotOrganizationMember, got %v", err)
	}

	list, err := module.Handler.ListElectionsHandler(context.Background(), "org-1", "member-1")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(list.Items) != 1 || list.Items[0].ElectionID != election.ElectionID {
		t.Fatalf("expected one election in list, got %+v", list.Items)
	}
}
