package httpserver

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	lifecycleengine "quorum/contexts/election-operations/lifecycle-engine"
	lifecycleentities "quorum/contexts/election-operations/lifecycle-engine/domain/entities"
	lifecycleports "quorum/contexts/election-operations/lifecycle-engine/ports"
	votecasting "quorum/contexts/election-operations/vote-casting"
	votingentities "quorum/contexts/election-operations/vote-casting/domain/entities"
	votingports "quorum/contexts/election-operations/vote-casting/ports"
)

func newTestServer() *Server {
	lifecycle := lifecycleengine.NewInMemoryModule(nil, nil)
	lifecycle.Store.SetMembership(lifecycleports.Membership{
		OrganizationID: "org-1",
		UserID:         "admin-1",
		Role:           lifecycleentities.RoleAdmin,
		Active:         true,
	})
	lifecycle.Store.SetMembership(lifecycleports.Membership{
		OrganizationID: "org-1",
		UserID:         "member-1",
		Role:           lifecycleentities.RoleMember,
		Active:         true,
	})

	voting := votecasting.NewInMemoryModule(nil)
	voting.Store.SetElection(votingports.ElectionProjection{
		ElectionID:     "el-1",
		OrganizationID: "org-1",
		Name:           "Board Election 2026",
		Status:         votingports.ElectionStatusOpen,
	})
	voting.Store.SetRace(votingports.RaceProjection{
		RaceID:           "race-1",
		ElectionID:       "el-1",
		Name:             "Board Seats",
		MaxVotesPerVoter: 1,
		MaxWinners:       1,
	})
	voting.Store.SetBallotEntry(votingports.BallotProjection{
		RaceCandidateID: "rc-a",
		RaceID:          "race-1",
		CandidateID:     "cand-a",
		DisplayName:     "Ada Ferro",
		BallotOrder:     1,
		Approved:        true,
	})
	voting.Store.SetMembership(votingports.Membership{
		OrganizationID: "org-1",
		UserID:         "admin-1",
		Role:           votingentities.RoleAdmin,
		Active:         true,
	})
	voting.Store.SetMembership(votingports.Membership{
		OrganizationID: "org-1",
		UserID:         "voter-1",
		Role:           votingentities.RoleMember,
		Active:         true,
	})

	return New(lifecycle, voting, nil, ":0")
}

func doJSON(t *testing.T, server *Server, method string, path string, userID string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	var body *bytes.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal request: %v", err)
		}
		body = bytes.NewReader(raw)
	} else {
		body = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set("X-User-Id", userID)
	}
	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	return rr
}

func TestMissingUserHeaderIsUnauthorized(t *testing.T) {
	server := newTestServer()
	rr := doJSON(t, server, http.MethodPost, "/v1/elections", "", map[string]string{
		"organization_id": "org-1",
		"name":            "No Actor",
	})
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestCreateElectionStatusMapping(t *testing.T) {
	server := newTestServer()

	rr := doJSON(t, server, http.MethodPost, "/v1/elections", "admin-1", map[string]string{
		"organization_id": "org-1",
		"name":            "Board Election 2026",
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d body=%s", rr.Code, rr.Body.String())
	}

	// Plain members may read but not create.
	rr = doJSON(t, server, http.MethodPost, "/v1/elections", "member-1", map[string]string{
		"organization_id": "org-1",
		"name":            "Member Attempt",
	})
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d body=%s", rr.Code, rr.Body.String())
	}

	rr = doJSON(t, server, http.MethodPost, "/v1/elections", "admin-1", map[string]string{
		"organization_id": "org-1",
		"name":            "",
	})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestSweepTriggerRequiresActor(t *testing.T) {
	server := newTestServer()

	rr := doJSON(t, server, http.MethodPost, "/v1/lifecycle/sweep", "", nil)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without actor, got %d body=%s", rr.Code, rr.Body.String())
	}

	rr = doJSON(t, server, http.MethodPost, "/v1/lifecycle/sweep", "admin-1", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 with actor, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestGetElectionNotFound(t *testing.T) {
	server := newTestServer()
	rr := doJSON(t, server, http.MethodGet, "/v1/elections/el-missing", "admin-1", nil)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestLifecycleConflictMapping(t *testing.T) {
	server := newTestServer()

	rr := doJSON(t, server, http.MethodPost, "/v1/elections", "admin-1", map[string]string{
		"organization_id": "org-1",
		"name":            "Conflict Mapping",
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d body=%s", rr.Code, rr.Body.String())
	}
	var created struct {
		ElectionID string `json:"election_id"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode created election: %v", err)
	}

	rr = doJSON(t, server, http.MethodPost, "/v1/elections/"+created.ElectionID+"/open", "admin-1", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 on open, got %d body=%s", rr.Code, rr.Body.String())
	}

	// Opening twice is an invalid state transition.
	rr = doJSON(t, server, http.MethodPost, "/v1/elections/"+created.ElectionID+"/open", "admin-1", nil)
	if rr.Code != http.StatusConflict {
		t.Fatalf("expected 409 on double open, got %d body=%s", rr.Code, rr.Body.String())
	}

	rr = doJSON(t, server, http.MethodDelete, "/v1/elections/"+created.ElectionID, "admin-1", nil)
	if rr.Code != http.StatusConflict {
		t.Fatalf("expected 409 deleting open election, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestVotingFlowOverHTTP(t *testing.T) {
	server := newTestServer()

	rr := doJSON(t, server, http.MethodPost, "/v1/elections/el-1/voters", "voter-1", nil)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201 on register, got %d body=%s", rr.Code, rr.Body.String())
	}

	// Voting before approval is forbidden.
	rr = doJSON(t, server, http.MethodPost, "/v1/elections/el-1/votes", "voter-1", map[string]string{
		"race_id":           "race-1",
		"race_candidate_id": "rc-a",
	})
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403 before approval, got %d body=%s", rr.Code, rr.Body.String())
	}

	rr = doJSON(t, server, http.MethodPost, "/v1/elections/el-1/voters/approve", "admin-1", map[string]string{
		"user_id": "voter-1",
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 on approve, got %d body=%s", rr.Code, rr.Body.String())
	}

	rr = doJSON(t, server, http.MethodPost, "/v1/elections/el-1/votes", "voter-1", map[string]string{
		"race_id":           "race-1",
		"race_candidate_id": "rc-a",
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201 on cast, got %d body=%s", rr.Code, rr.Body.String())
	}

	// Same vote again maps to conflict.
	rr = doJSON(t, server, http.MethodPost, "/v1/elections/el-1/votes", "voter-1", map[string]string{
		"race_id":           "race-1",
		"race_candidate_id": "rc-a",
	})
	if rr.Code != http.StatusConflict {
		t.Fatalf("expected 409 on duplicate, got %d body=%s", rr.Code, rr.Body.String())
	}

	rr = doJSON(t, server, http.MethodGet, "/v1/races/race-1/results", "voter-1", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 on results, got %d body=%s", rr.Code, rr.Body.String())
	}
	var results struct {
		TotalVotes int `json:"total_votes"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &results); err != nil {
		t.Fatalf("decode results: %v", err)
	}
	if results.TotalVotes != 1 {
		t.Fatalf("expected 1 total vote, got %d", results.TotalVotes)
	}
}
