package httpserver

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	electionengine "electoral/contexts/governance/election-engine"
	electionhttp "electoral/contexts/governance/election-engine/transport/http"
)

var (
	initiatorID = strings.Repeat("0a", 32)
	aliceID     = strings.Repeat("a1", 32)
	bobID       = strings.Repeat("b2", 32)
	carolID     = strings.Repeat("c3", 32)
)

func newTestServer() *Server {
	return New(electionengine.NewInMemoryModule(slog.Default()), slog.Default(), ":0")
}

func doRequest(t *testing.T, server *Server, method string, path string, userID string, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader([]byte(body)))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if userID != "" {
		req.Header.Set("X-User-Id", userID)
	}
	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	return rr
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) electionhttp.ErrorResponse {
	t.Helper()
	var resp electionhttp.ErrorResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode error response: %v body=%s", err, rr.Body.String())
	}
	return resp
}

func TestCreateElectionRequiresUser(t *testing.T) {
	server := newTestServer()
	rr := doRequest(t, server, http.MethodPost, "/v1/elections", "", `{"winners_capacity":2}`)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d body=%s", rr.Code, rr.Body.String())
	}
	if code := decodeError(t, rr).Code; code != "missing_user" {
		t.Fatalf("expected missing_user, got %s", code)
	}
}

func TestCreateElectionRejectsMalformedIdentity(t *testing.T) {
	server := newTestServer()
	rr := doRequest(t, server, http.MethodPost, "/v1/elections", "not-hex", `{"winners_capacity":2}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d body=%s", rr.Code, rr.Body.String())
	}
	if code := decodeError(t, rr).Code; code != "invalid_identity" {
		t.Fatalf("expected invalid_identity, got %s", code)
	}
}

func TestCreateElectionRejectsZeroCapacity(t *testing.T) {
	server := newTestServer()
	rr := doRequest(t, server, http.MethodPost, "/v1/elections", initiatorID, `{"winners_capacity":0}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d body=%s", rr.Code, rr.Body.String())
	}
	if code := decodeError(t, rr).Code; code != "invalid_configuration" {
		t.Fatalf("expected invalid_configuration, got %s", code)
	}
}

func TestCreateElectionRejectsInvalidJSON(t *testing.T) {
	server := newTestServer()
	rr := doRequest(t, server, http.MethodPost, "/v1/elections", initiatorID, `{`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestElectionFlowOverHTTP(t *testing.T) {
	server := newTestServer()

	rr := doRequest(t, server, http.MethodPost, "/v1/elections", initiatorID, `{"winners_capacity":2,"election_key":"council"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201 create, got %d body=%s", rr.Code, rr.Body.String())
	}
	var created electionhttp.ElectionResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode election: %v", err)
	}
	if created.ElectionKey != "council" || created.Stage != "application" || created.WinnersCapacity != 2 {
		t.Fatalf("unexpected election: %+v", created)
	}

	for i, user := range []string{aliceID, bobID, carolID} {
		applyRR := doRequest(t, server, http.MethodPost, "/v1/elections/council/applications", user, "")
		if applyRR.Code != http.StatusCreated {
			t.Fatalf("expected 201 apply, got %d body=%s", applyRR.Code, applyRR.Body.String())
		}
		var identity electionhttp.CandidateIdentityResponse
		if err := json.Unmarshal(applyRR.Body.Bytes(), &identity); err != nil {
			t.Fatalf("decode identity: %v", err)
		}
		if identity.CandidateID != uint64(i+1) {
			t.Fatalf("expected candidate id %d, got %d", i+1, identity.CandidateID)
		}

		registerRR := doRequest(t, server, http.MethodPost, "/v1/elections/council/candidates", user, "")
		if registerRR.Code != http.StatusCreated {
			t.Fatalf("expected 201 register, got %d body=%s", registerRR.Code, registerRR.Body.String())
		}
	}

	dupRR := doRequest(t, server, http.MethodPost, "/v1/elections/council/applications", aliceID, "")
	if dupRR.Code != http.StatusConflict || decodeError(t, dupRR).Code != "duplicate_application" {
		t.Fatalf("expected duplicate_application conflict, got %d body=%s", dupRR.Code, dupRR.Body.String())
	}

	denied := doRequest(t, server, http.MethodPost, "/v1/elections/council/stage", aliceID, `{"stage":"voting"}`)
	if denied.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-initiator, got %d body=%s", denied.Code, denied.Body.String())
	}

	early := doRequest(t, server, http.MethodPost, "/v1/elections/council/votes", aliceID, `{"candidate_id":1}`)
	if early.Code != http.StatusConflict || decodeError(t, early).Code != "not_voting_stage" {
		t.Fatalf("expected not_voting_stage, got %d body=%s", early.Code, early.Body.String())
	}

	stageRR := doRequest(t, server, http.MethodPost, "/v1/elections/council/stage", initiatorID, `{"stage":"voting"}`)
	if stageRR.Code != http.StatusOK {
		t.Fatalf("expected 200 stage, got %d body=%s", stageRR.Code, stageRR.Body.String())
	}

	ballots := []struct {
		voter     string
		candidate string
	}{
		{aliceID, "3"},
		{bobID, "3"},
		{carolID, "1"},
		{initiatorID, "2"},
	}
	for _, ballot := range ballots {
		voteRR := doRequest(t, server, http.MethodPost, "/v1/elections/council/votes", ballot.voter, `{"candidate_id":`+ballot.candidate+`}`)
		if voteRR.Code != http.StatusCreated {
			t.Fatalf("expected 201 vote, got %d body=%s", voteRR.Code, voteRR.Body.String())
		}
	}

	again := doRequest(t, server, http.MethodPost, "/v1/elections/council/votes", aliceID, `{"candidate_id":1}`)
	if again.Code != http.StatusConflict || decodeError(t, again).Code != "already_voted" {
		t.Fatalf("expected already_voted, got %d body=%s", again.Code, again.Body.String())
	}

	winnersRR := doRequest(t, server, http.MethodGet, "/v1/elections/council/winners", "", "")
	if winnersRR.Code != http.StatusOK {
		t.Fatalf("expected 200 winners, got %d body=%s", winnersRR.Code, winnersRR.Body.String())
	}
	var winners electionhttp.WinnersResponse
	if err := json.Unmarshal(winnersRR.Body.Bytes(), &winners); err != nil {
		t.Fatalf("decode winners: %v", err)
	}
	if len(winners.Items) != 2 {
		t.Fatalf("expected two winners, got %+v", winners.Items)
	}
	if winners.Items[0].CandidateID != 3 || winners.Items[0].Votes != 2 || winners.Items[0].Rank != 1 {
		t.Fatalf("unexpected first winner: %+v", winners.Items[0])
	}
	if winners.Items[1].CandidateID != 1 || winners.Items[1].Votes != 1 {
		t.Fatalf("unexpected second winner: %+v", winners.Items[1])
	}

	candidateRR := doRequest(t, server, http.MethodGet, "/v1/elections/council/candidates/3", "", "")
	if candidateRR.Code != http.StatusOK {
		t.Fatalf("expected 200 candidate, got %d body=%s", candidateRR.Code, candidateRR.Body.String())
	}
	var candidate electionhttp.CandidateResponse
	if err := json.Unmarshal(candidateRR.Body.Bytes(), &candidate); err != nil {
		t.Fatalf("decode candidate: %v", err)
	}
	if candidate.Votes != 2 || !candidate.IsWinner || candidate.Owner != carolID {
		t.Fatalf("unexpected candidate: %+v", candidate)
	}

	myVote := doRequest(t, server, http.MethodGet, "/v1/elections/council/votes/me", bobID, "")
	if myVote.Code != http.StatusOK {
		t.Fatalf("expected 200 receipt, got %d body=%s", myVote.Code, myVote.Body.String())
	}
	var receipt electionhttp.VoteReceiptResponse
	if err := json.Unmarshal(myVote.Body.Bytes(), &receipt); err != nil {
		t.Fatalf("decode receipt: %v", err)
	}
	if receipt.CandidateID != 3 || receipt.Voter != bobID {
		t.Fatalf("unexpected receipt: %+v", receipt)
	}

	openResult := doRequest(t, server, http.MethodGet, "/v1/elections/council/results", "", "")
	if openResult.Code != http.StatusNotFound {
		t.Fatalf("expected 404 result while voting, got %d body=%s", openResult.Code, openResult.Body.String())
	}

	closeRR := doRequest(t, server, http.MethodPost, "/v1/elections/council/stage", initiatorID, `{"stage":"closed"}`)
	if closeRR.Code != http.StatusOK {
		t.Fatalf("expected 200 close, got %d body=%s", closeRR.Code, closeRR.Body.String())
	}
	closedVote := doRequest(t, server, http.MethodPost, "/v1/elections/council/votes", initiatorID, `{"candidate_id":1}`)
	if closedVote.Code != http.StatusConflict || decodeError(t, closedVote).Code != "election_closed" {
		t.Fatalf("expected election_closed, got %d body=%s", closedVote.Code, closedVote.Body.String())
	}

	// No worker runs in this server, so the result comes from the closed board.
	resultRR := doRequest(t, server, http.MethodGet, "/v1/elections/council/results", "", "")
	if resultRR.Code != http.StatusOK {
		t.Fatalf("expected 200 result after close, got %d body=%s", resultRR.Code, resultRR.Body.String())
	}
	var result electionhttp.ElectionResultResponse
	if err := json.Unmarshal(resultRR.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if len(result.Standings) != 2 || result.Standings[0].CandidateID != 3 || result.Standings[0].Votes != 2 {
		t.Fatalf("unexpected result standings: %+v", result.Standings)
	}
}

func TestRegisterForAnotherOwnerIsForbidden(t *testing.T) {
	server := newTestServer()
	if rr := doRequest(t, server, http.MethodPost, "/v1/elections", initiatorID, `{"winners_capacity":1,"election_key":"board"}`); rr.Code != http.StatusCreated {
		t.Fatalf("expected 201 create, got %d body=%s", rr.Code, rr.Body.String())
	}
	if rr := doRequest(t, server, http.MethodPost, "/v1/elections/board/applications", aliceID, ""); rr.Code != http.StatusCreated {
		t.Fatalf("expected 201 apply, got %d body=%s", rr.Code, rr.Body.String())
	}

	rr := doRequest(t, server, http.MethodPost, "/v1/elections/board/candidates", bobID, `{"candidate_owner":"`+aliceID+`"}`)
	if rr.Code != http.StatusForbidden || decodeError(t, rr).Code != "wrong_identity" {
		t.Fatalf("expected wrong_identity, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestGetElectionNotFound(t *testing.T) {
	server := newTestServer()
	rr := doRequest(t, server, http.MethodGet, "/v1/elections/missing", "", "")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestGetCandidateRejectsNonNumericID(t *testing.T) {
	server := newTestServer()
	rr := doRequest(t, server, http.MethodGet, "/v1/elections/any/candidates/abc", "", "")
	if rr.Code != http.StatusBadRequest || decodeError(t, rr).Code != "invalid_candidate_id" {
		t.Fatalf("expected invalid_candidate_id, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestAdvanceStageRejectsUnknownStage(t *testing.T) {
	server := newTestServer()
	if rr := doRequest(t, server, http.MethodPost, "/v1/elections", initiatorID, `{"winners_capacity":1,"election_key":"e1"}`); rr.Code != http.StatusCreated {
		t.Fatalf("expected 201 create, got %d body=%s", rr.Code, rr.Body.String())
	}
	rr := doRequest(t, server, http.MethodPost, "/v1/elections/e1/stage", initiatorID, `{"stage":"paused"}`)
	if rr.Code != http.StatusBadRequest || decodeError(t, rr).Code != "invalid_stage" {
		t.Fatalf("expected invalid_stage, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestHealthAndSwaggerRoutes(t *testing.T) {
	server := newTestServer()
	if rr := doRequest(t, server, http.MethodGet, "/health", "", ""); rr.Code != http.StatusOK {
		t.Fatalf("expected 200 health, got %d", rr.Code)
	}
	rr := doRequest(t, server, http.MethodGet, "/swagger/doc.json", "", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 swagger doc, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "/v1/elections/{election_key}/votes") {
		t.Fatalf("expected election routes in swagger doc")
	}
}
