package httpserver

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	lifecycleengine "quorum/contexts/election-operations/lifecycle-engine"
	lifecyclehttp "quorum/contexts/election-operations/lifecycle-engine/transport/http"
	votecasting "quorum/contexts/election-operations/vote-casting"
	votinghttp "quorum/contexts/election-operations/vote-casting/transport/http"
	"quorum/internal/platform/db"

	"github.com/google/uuid"
	httpSwagger "github.com/swaggo/http-swagger"
	_ "quorum/internal/platform/httpserver/docs"
)

type Server struct {
	mux       *http.ServeMux
	logger    *slog.Logger
	addr      string
	lifecycle lifecycleengine.Module
	voting    votecasting.Module
}

func New(
	lifecycle lifecycleengine.Module,
	voting votecasting.Module,
	logger *slog.Logger,
	addr string,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if addr == "" {
		addr = ":8080"
	}

	s := &Server{
		mux:       http.NewServeMux(),
		logger:    logger,
		addr:      addr,
		lifecycle: lifecycle,
		voting:    voting,
	}
	s.registerRoutes()
	return s
}

func (s *Server) Start() error {
	s.logger.Info("http server starting",
		"event", "http_server_starting",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"addr", s.addr,
	)
	return http.ListenAndServe(s.addr, s.mux)
}

// Handler exposes the routing table for tests.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) registerRoutes() {
	s.mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	s.mux.HandleFunc("POST /v1/elections", s.handleCreateElection)
	s.mux.HandleFunc("GET /v1/organizations/{org_id}/elections", s.handleListElections)
	s.mux.HandleFunc("GET /v1/elections/{election_id}", s.handleGetElection)
	s.mux.HandleFunc("PUT /v1/elections/{election_id}", s.handleUpdateElection)
	s.mux.HandleFunc("DELETE /v1/elections/{election_id}", s.handleDeleteElection)
	s.mux.HandleFunc("POST /v1/elections/{election_id}/schedule", s.handleScheduleElection)
	s.mux.HandleFunc("POST /v1/elections/{election_id}/open", s.handleOpenElection)
	s.mux.HandleFunc("POST /v1/elections/{election_id}/close", s.handleCloseElection)

	s.mux.HandleFunc("POST /v1/elections/{election_id}/races", s.handleCreateRace)
	s.mux.HandleFunc("PUT /v1/races/{race_id}", s.handleUpdateRace)
	s.mux.HandleFunc("DELETE /v1/races/{race_id}", s.handleDeleteRace)
	s.mux.HandleFunc("POST /v1/races/{race_id}/candidates", s.handleAddCandidate)
	s.mux.HandleFunc("POST /v1/candidates/{race_candidate_id}/approve", s.handleApproveCandidate)
	s.mux.HandleFunc("DELETE /v1/candidates/{race_candidate_id}", s.handleRemoveCandidate)

	s.mux.HandleFunc("POST /v1/lifecycle/sweep", s.handleTriggerSweep)

	s.mux.HandleFunc("POST /v1/elections/{election_id}/voters", s.handleRegisterVoter)
	s.mux.HandleFunc("POST /v1/elections/{election_id}/voters/approve", s.handleApproveVoter)
	s.mux.HandleFunc("GET /v1/elections/{election_id}/voters/me", s.handleVoterStatus)
	s.mux.HandleFunc("GET /v1/elections/{election_id}/voters/pending", s.handlePendingVoters)
	s.mux.HandleFunc("POST /v1/elections/{election_id}/votes", s.handleCastVote)
	s.mux.HandleFunc("GET /v1/races/{race_id}/results", s.handleRaceResults)
	s.mux.HandleFunc("GET /v1/elections/{election_id}/results", s.handleElectionResults)
}

func (s *Server) handleCreateElection(w http.ResponseWriter, r *http.Request) {
	actorID, ok := requireActor(w, r)
	if !ok {
		return
	}
	var req lifecyclehttp.CreateElectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeLifecycleError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.lifecycle.Handler.CreateElectionHandler(scopedContext(r, actorID), actorID, req)
	if err != nil {
		writeLifecycleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleListElections(w http.ResponseWriter, r *http.Request) {
	actorID, ok := requireActor(w, r)
	if !ok {
		return
	}
	resp, err := s.lifecycle.Handler.ListElectionsHandler(scopedContext(r, actorID), r.PathValue("org_id"), actorID)
	if err != nil {
		writeLifecycleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetElection(w http.ResponseWriter, r *http.Request) {
	actorID, ok := requireActor(w, r)
	if !ok {
		return
	}
	resp, err := s.lifecycle.Handler.GetElectionHandler(scopedContext(r, actorID), r.PathValue("election_id"), actorID)
	if err != nil {
		writeLifecycleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleUpdateElection(w http.ResponseWriter, r *http.Request) {
	actorID, ok := requireActor(w, r)
	if !ok {
		return
	}
	var req lifecyclehttp.UpdateElectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeLifecycleError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.lifecycle.Handler.UpdateElectionHandler(scopedContext(r, actorID), r.PathValue("election_id"), actorID, req)
	if err != nil {
		writeLifecycleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDeleteElection(w http.ResponseWriter, r *http.Request) {
	actorID, ok := requireActor(w, r)
	if !ok {
		return
	}
	if err := s.lifecycle.Handler.DeleteElectionHandler(scopedContext(r, actorID), r.PathValue("election_id"), actorID); err != nil {
		writeLifecycleDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleScheduleElection(w http.ResponseWriter, r *http.Request) {
	actorID, ok := requireActor(w, r)
	if !ok {
		return
	}
	var req lifecyclehttp.ScheduleElectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeLifecycleError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.lifecycle.Handler.ScheduleElectionHandler(scopedContext(r, actorID), r.PathValue("election_id"), actorID, req)
	if err != nil {
		writeLifecycleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleOpenElection(w http.ResponseWriter, r *http.Request) {
	actorID, ok := requireActor(w, r)
	if !ok {
		return
	}
	resp, err := s.lifecycle.Handler.OpenElectionHandler(scopedContext(r, actorID), r.PathValue("election_id"), actorID)
	if err != nil {
		writeLifecycleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCloseElection(w http.ResponseWriter, r *http.Request) {
	actorID, ok := requireActor(w, r)
	if !ok {
		return
	}
	resp, err := s.lifecycle.Handler.CloseElectionHandler(scopedContext(r, actorID), r.PathValue("election_id"), actorID)
	if err != nil {
		writeLifecycleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCreateRace(w http.ResponseWriter, r *http.Request) {
	actorID, ok := requireActor(w, r)
	if !ok {
		return
	}
	var req lifecyclehttp.CreateRaceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeLifecycleError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.lifecycle.Handler.CreateRaceHandler(scopedContext(r, actorID), r.PathValue("election_id"), actorID, req)
	if err != nil {
		writeLifecycleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleUpdateRace(w http.ResponseWriter, r *http.Request) {
	actorID, ok := requireActor(w, r)
	if !ok {
		return
	}
	var req lifecyclehttp.UpdateRaceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeLifecycleError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.lifecycle.Handler.UpdateRaceHandler(scopedContext(r, actorID), r.PathValue("race_id"), actorID, req)
	if err != nil {
		writeLifecycleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDeleteRace(w http.ResponseWriter, r *http.Request) {
	actorID, ok := requireActor(w, r)
	if !ok {
		return
	}
	if err := s.lifecycle.Handler.DeleteRaceHandler(scopedContext(r, actorID), r.PathValue("race_id"), actorID); err != nil {
		writeLifecycleDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAddCandidate(w http.ResponseWriter, r *http.Request) {
	actorID, ok := requireActor(w, r)
	if !ok {
		return
	}
	var req lifecyclehttp.AddCandidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeLifecycleError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.lifecycle.Handler.AddCandidateHandler(scopedContext(r, actorID), r.PathValue("race_id"), actorID, req)
	if err != nil {
		writeLifecycleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleApproveCandidate(w http.ResponseWriter, r *http.Request) {
	actorID, ok := requireActor(w, r)
	if !ok {
		return
	}
	resp, err := s.lifecycle.Handler.ApproveCandidateHandler(scopedContext(r, actorID), r.PathValue("race_candidate_id"), actorID)
	if err != nil {
		writeLifecycleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRemoveCandidate(w http.ResponseWriter, r *http.Request) {
	actorID, ok := requireActor(w, r)
	if !ok {
		return
	}
	if err := s.lifecycle.Handler.RemoveCandidateHandler(scopedContext(r, actorID), r.PathValue("race_candidate_id"), actorID); err != nil {
		writeLifecycleDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleTriggerSweep(w http.ResponseWriter, r *http.Request) {
	actorID, ok := requireActor(w, r)
	if !ok {
		return
	}
	resp, err := s.lifecycle.Handler.TriggerSweepHandler(scopedContext(r, actorID))
	if err != nil {
		writeLifecycleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRegisterVoter(w http.ResponseWriter, r *http.Request) {
	actorID, ok := requireActor(w, r)
	if !ok {
		return
	}
	resp, err := s.voting.Handler.RegisterVoterHandler(scopedContext(r, actorID), r.PathValue("election_id"), actorID)
	if err != nil {
		writeVotingDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleApproveVoter(w http.ResponseWriter, r *http.Request) {
	actorID, ok := requireActor(w, r)
	if !ok {
		return
	}
	var req votinghttp.ApproveVoterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeVotingError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.voting.Handler.ApproveVoterHandler(scopedContext(r, actorID), r.PathValue("election_id"), actorID, req)
	if err != nil {
		writeVotingDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleVoterStatus(w http.ResponseWriter, r *http.Request) {
	actorID, ok := requireActor(w, r)
	if !ok {
		return
	}
	resp, err := s.voting.Handler.VoterStatusHandler(scopedContext(r, actorID), r.PathValue("election_id"), actorID)
	if err != nil {
		writeVotingDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handlePendingVoters(w http.ResponseWriter, r *http.Request) {
	actorID, ok := requireActor(w, r)
	if !ok {
		return
	}
	resp, err := s.voting.Handler.PendingVotersHandler(scopedContext(r, actorID), r.PathValue("election_id"), actorID)
	if err != nil {
		writeVotingDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCastVote(w http.ResponseWriter, r *http.Request) {
	actorID, ok := requireActor(w, r)
	if !ok {
		return
	}
	var req votinghttp.CastVoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeVotingError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.voting.Handler.CastVoteHandler(scopedContext(r, actorID), r.PathValue("election_id"), actorID, req)
	if err != nil {
		writeVotingDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleRaceResults(w http.ResponseWriter, r *http.Request) {
	actorID, ok := requireActor(w, r)
	if !ok {
		return
	}
	resp, err := s.voting.Handler.RaceResultsHandler(scopedContext(r, actorID), r.PathValue("race_id"), actorID)
	if err != nil {
		writeVotingDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleElectionResults(w http.ResponseWriter, r *http.Request) {
	actorID, ok := requireActor(w, r)
	if !ok {
		return
	}
	resp, err := s.voting.Handler.ElectionResultsHandler(scopedContext(r, actorID), r.PathValue("election_id"), actorID)
	if err != nil {
		writeVotingDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func requireActor(w http.ResponseWriter, r *http.Request) (string, bool) {
	actorID := strings.TrimSpace(r.Header.Get("X-User-Id"))
	if actorID == "" {
		writeJSON(w, http.StatusUnauthorized, lifecyclehttp.ErrorResponse{
			Code:    "missing_user",
			Message: "X-User-Id header is required",
		})
		return "", false
	}
	return actorID, true
}

// scopedContext attaches the actor and request identity so store writes in
// this request run with session context applied.
func scopedContext(r *http.Request, actorID string) context.Context {
	requestID := strings.TrimSpace(r.Header.Get("X-Request-Id"))
	if requestID == "" {
		requestID = uuid.NewString()
	}
	return db.WithScope(r.Context(), db.RequestScope{
		ActorUserID:    actorID,
		OrganizationID: strings.TrimSpace(r.Header.Get("X-Org-Id")),
		RequestID:      requestID,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
