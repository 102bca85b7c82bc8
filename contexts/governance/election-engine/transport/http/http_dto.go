package http

import "time"

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type CreateElectionRequest struct {
	WinnersCapacity uint8  `json:"winners_capacity"`
	ElectionKey     string `json:"election_key,omitempty"`
}

type AdvanceStageRequest struct {
	Stage string `json:"stage"`
}

type RegisterCandidateRequest struct {
	// CandidateOwner defaults to the caller when empty.
	CandidateOwner string `json:"candidate_owner,omitempty"`
}

type CastVoteRequest struct {
	CandidateID uint64 `json:"candidate_id"`
}

type StandingItem struct {
	Rank        int    `json:"rank"`
	CandidateID uint64 `json:"candidate_id"`
	Votes       uint64 `json:"votes"`
}

type ElectionResponse struct {
	ElectionKey     string         `json:"election_key"`
	Stage           string         `json:"stage"`
	Initiator       string         `json:"initiator"`
	WinnersCapacity uint8          `json:"winners_capacity"`
	CandidateCount  uint64         `json:"candidate_count"`
	Winners         []StandingItem `json:"winners"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

type WinnersResponse struct {
	ElectionKey string         `json:"election_key"`
	Stage       string         `json:"stage"`
	Items       []StandingItem `json:"items"`
}

type CandidateIdentityResponse struct {
	ElectionKey string    `json:"election_key"`
	CandidateID uint64    `json:"candidate_id"`
	Owner       string    `json:"owner"`
	AppliedAt   time.Time `json:"applied_at"`
}

type CandidateResponse struct {
	ElectionKey  string    `json:"election_key"`
	CandidateID  uint64    `json:"candidate_id"`
	Owner        string    `json:"owner"`
	Votes        uint64    `json:"votes"`
	IsWinner     bool      `json:"is_winner"`
	RegisteredAt time.Time `json:"registered_at"`
}

type VoteReceiptResponse struct {
	ElectionKey    string    `json:"election_key"`
	Voter          string    `json:"voter"`
	CandidateID    uint64    `json:"candidate_id"`
	CandidateVotes uint64    `json:"candidate_votes,omitempty"`
	CastAt         time.Time `json:"cast_at"`
}

type ElectionResultResponse struct {
	ElectionKey     string         `json:"election_key"`
	WinnersCapacity uint8          `json:"winners_capacity"`
	CandidateCount  uint64         `json:"candidate_count"`
	Standings       []StandingItem `json:"standings"`
	ClosedAt        time.Time      `json:"closed_at"`
}
