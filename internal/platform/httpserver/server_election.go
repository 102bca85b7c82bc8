package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	domainerrors "electoral/contexts/governance/election-engine/domain/errors"
	electionhttp "electoral/contexts/governance/election-engine/transport/http"
)

func (s *Server) handleCreateElection(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req electionhttp.CreateElectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeElectionError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.elections.Handler.CreateElectionHandler(r.Context(), userID, req)
	if err != nil {
		writeElectionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleGetElection(w http.ResponseWriter, r *http.Request) {
	resp, err := s.elections.Handler.GetElectionHandler(r.Context(), r.PathValue("election_key"))
	if err != nil {
		writeElectionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListWinners(w http.ResponseWriter, r *http.Request) {
	resp, err := s.elections.Handler.ListWinnersHandler(r.Context(), r.PathValue("election_key"))
	if err != nil {
		writeElectionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleApply(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	resp, err := s.elections.Handler.ApplyHandler(r.Context(), r.PathValue("election_key"), userID)
	if err != nil {
		writeElectionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleRegisterCandidate(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	// An empty body registers the caller's own identity.
	var req electionhttp.RegisterCandidateRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeElectionError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
			return
		}
	}

	resp, err := s.elections.Handler.RegisterHandler(r.Context(), r.PathValue("election_key"), userID, req)
	if err != nil {
		writeElectionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleGetCandidate(w http.ResponseWriter, r *http.Request) {
	candidateID, err := strconv.ParseUint(r.PathValue("candidate_id"), 10, 64)
	if err != nil {
		writeElectionError(w, http.StatusBadRequest, "invalid_candidate_id", "candidate_id must be an unsigned integer")
		return
	}

	resp, err := s.elections.Handler.GetCandidateHandler(r.Context(), r.PathValue("election_key"), candidateID)
	if err != nil {
		writeElectionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAdvanceStage(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req electionhttp.AdvanceStageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeElectionError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.elections.Handler.AdvanceStageHandler(r.Context(), r.PathValue("election_key"), userID, req)
	if err != nil {
		writeElectionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCastVote(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req electionhttp.CastVoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeElectionError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.elections.Handler.VoteHandler(r.Context(), r.PathValue("election_key"), userID, req)
	if err != nil {
		writeElectionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleMyVote(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	resp, err := s.elections.Handler.MyVoteHandler(r.Context(), r.PathValue("election_key"), userID)
	if err != nil {
		writeElectionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetResult(w http.ResponseWriter, r *http.Request) {
	resp, err := s.elections.Handler.ResultHandler(r.Context(), r.PathValue("election_key"))
	if err != nil {
		writeElectionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID := strings.TrimSpace(r.Header.Get("X-User-Id"))
	if userID == "" {
		writeElectionError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return "", false
	}
	return userID, true
}

func writeElectionDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domainerrors.ErrInvalidIdentity):
		writeElectionError(w, http.StatusBadRequest, "invalid_identity", err.Error())
	case errors.Is(err, domainerrors.ErrInvalidConfiguration):
		writeElectionError(w, http.StatusBadRequest, "invalid_configuration", err.Error())
	case errors.Is(err, domainerrors.ErrInvalidStage):
		writeElectionError(w, http.StatusBadRequest, "invalid_stage", err.Error())
	case errors.Is(err, domainerrors.ErrInvalidElectionKey):
		writeElectionError(w, http.StatusBadRequest, "invalid_election_key", err.Error())
	case errors.Is(err, domainerrors.ErrPrivilegeDenied):
		writeElectionError(w, http.StatusForbidden, "privilege_denied", err.Error())
	case errors.Is(err, domainerrors.ErrWrongIdentity):
		writeElectionError(w, http.StatusForbidden, "wrong_identity", err.Error())
	case errors.Is(err, domainerrors.ErrElectionNotFound),
		errors.Is(err, domainerrors.ErrCandidateIdentityNotFound),
		errors.Is(err, domainerrors.ErrCandidateNotFound),
		errors.Is(err, domainerrors.ErrVoteReceiptNotFound),
		errors.Is(err, domainerrors.ErrResultNotFound):
		writeElectionError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, domainerrors.ErrElectionExists):
		writeElectionError(w, http.StatusConflict, "election_exists", err.Error())
	case errors.Is(err, domainerrors.ErrDuplicateApplication):
		writeElectionError(w, http.StatusConflict, "duplicate_application", err.Error())
	case errors.Is(err, domainerrors.ErrAlreadyRegistered):
		writeElectionError(w, http.StatusConflict, "already_registered", err.Error())
	case errors.Is(err, domainerrors.ErrAlreadyVoted):
		writeElectionError(w, http.StatusConflict, "already_voted", err.Error())
	case errors.Is(err, domainerrors.ErrApplicationClosed):
		writeElectionError(w, http.StatusConflict, "application_closed", err.Error())
	case errors.Is(err, domainerrors.ErrElectionClosed):
		writeElectionError(w, http.StatusConflict, "election_closed", err.Error())
	case errors.Is(err, domainerrors.ErrStageMismatch):
		writeElectionError(w, http.StatusConflict, "stage_mismatch", err.Error())
	case errors.Is(err, domainerrors.ErrNotVotingStage):
		writeElectionError(w, http.StatusConflict, "not_voting_stage", err.Error())
	case errors.Is(err, domainerrors.ErrConflict),
		errors.Is(err, domainerrors.ErrRecordExists):
		writeElectionError(w, http.StatusConflict, "conflict", err.Error())
	default:
		writeElectionError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeElectionError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, electionhttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}
