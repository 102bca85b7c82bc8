package httpadapter

import (
	"context"
	"log/slog"
	"strings"

	"electoral/contexts/governance/election-engine/application/commands"
	"electoral/contexts/governance/election-engine/application/queries"
	"electoral/contexts/governance/election-engine/domain/entities"
	httptransport "electoral/contexts/governance/election-engine/transport/http"
)

// Handler maps transport DTOs onto use cases. Caller identities arrive as hex
// strings and are parsed here.
type Handler struct {
	CreateElection commands.CreateElectionUseCase
	Apply          commands.ApplyUseCase
	Register       commands.RegisterUseCase
	AdvanceStage   commands.AdvanceStageUseCase
	Vote           commands.VoteUseCase
	Queries        queries.ElectionQueryUseCase
	Logger         *slog.Logger
}

func (h Handler) CreateElectionHandler(
	ctx context.Context,
	userID string,
	req httptransport.CreateElectionRequest,
) (httptransport.ElectionResponse, error) {
	initiator, err := entities.ParseIdentity(userID)
	if err != nil {
		return httptransport.ElectionResponse{}, err
	}
	election, err := h.CreateElection.Execute(ctx, commands.CreateElectionCommand{
		ElectionKey:     req.ElectionKey,
		Initiator:       initiator,
		WinnersCapacity: req.WinnersCapacity,
	})
	if err != nil {
		return httptransport.ElectionResponse{}, err
	}
	return mapElection(election), nil
}

func (h Handler) GetElectionHandler(ctx context.Context, electionKey string) (httptransport.ElectionResponse, error) {
	election, err := h.Queries.GetElection(ctx, electionKey)
	if err != nil {
		return httptransport.ElectionResponse{}, err
	}
	return mapElection(election), nil
}

func (h Handler) ListWinnersHandler(ctx context.Context, electionKey string) (httptransport.WinnersResponse, error) {
	election, err := h.Queries.GetElection(ctx, electionKey)
	if err != nil {
		return httptransport.WinnersResponse{}, err
	}
	return httptransport.WinnersResponse{
		ElectionKey: election.Key,
		Stage:       string(election.Stage),
		Items:       mapStandings(election.Standings()),
	}, nil
}

func (h Handler) ApplyHandler(ctx context.Context, electionKey string, userID string) (httptransport.CandidateIdentityResponse, error) {
	actor, err := entities.ParseIdentity(userID)
	if err != nil {
		return httptransport.CandidateIdentityResponse{}, err
	}
	identity, err := h.Apply.Execute(ctx, commands.ApplyCommand{
		ElectionKey: electionKey,
		Actor:       actor,
	})
	if err != nil {
		return httptransport.CandidateIdentityResponse{}, err
	}
	return httptransport.CandidateIdentityResponse{
		ElectionKey: identity.ElectionKey,
		CandidateID: identity.SequentialID,
		Owner:       identity.Owner.String(),
		AppliedAt:   identity.AppliedAt,
	}, nil
}

func (h Handler) RegisterHandler(
	ctx context.Context,
	electionKey string,
	userID string,
	req httptransport.RegisterCandidateRequest,
) (httptransport.CandidateResponse, error) {
	actor, err := entities.ParseIdentity(userID)
	if err != nil {
		return httptransport.CandidateResponse{}, err
	}
	var owner entities.Identity
	if strings.TrimSpace(req.CandidateOwner) != "" {
		owner, err = entities.ParseIdentity(req.CandidateOwner)
		if err != nil {
			return httptransport.CandidateResponse{}, err
		}
	}
	record, err := h.Register.Execute(ctx, commands.RegisterCommand{
		ElectionKey:    electionKey,
		Actor:          actor,
		CandidateOwner: owner,
	})
	if err != nil {
		return httptransport.CandidateResponse{}, err
	}
	return mapCandidate(record, false), nil
}

func (h Handler) GetCandidateHandler(ctx context.Context, electionKey string, candidateID uint64) (httptransport.CandidateResponse, error) {
	record, err := h.Queries.GetCandidate(ctx, electionKey, candidateID)
	if err != nil {
		return httptransport.CandidateResponse{}, err
	}
	election, err := h.Queries.GetElection(ctx, electionKey)
	if err != nil {
		return httptransport.CandidateResponse{}, err
	}
	return mapCandidate(record, election.IsWinner(record.SequentialID)), nil
}

func (h Handler) AdvanceStageHandler(
	ctx context.Context,
	electionKey string,
	userID string,
	req httptransport.AdvanceStageRequest,
) (httptransport.ElectionResponse, error) {
	actor, err := entities.ParseIdentity(userID)
	if err != nil {
		return httptransport.ElectionResponse{}, err
	}
	stage, err := entities.ParseStage(req.Stage)
	if err != nil {
		return httptransport.ElectionResponse{}, err
	}
	election, err := h.AdvanceStage.Execute(ctx, commands.AdvanceStageCommand{
		ElectionKey: electionKey,
		Actor:       actor,
		Requested:   stage,
	})
	if err != nil {
		return httptransport.ElectionResponse{}, err
	}
	return mapElection(election), nil
}

func (h Handler) VoteHandler(
	ctx context.Context,
	electionKey string,
	userID string,
	req httptransport.CastVoteRequest,
) (httptransport.VoteReceiptResponse, error) {
	actor, err := entities.ParseIdentity(userID)
	if err != nil {
		return httptransport.VoteReceiptResponse{}, err
	}
	result, err := h.Vote.Execute(ctx, commands.VoteCommand{
		ElectionKey: electionKey,
		Actor:       actor,
		CandidateID: req.CandidateID,
	})
	if err != nil {
		return httptransport.VoteReceiptResponse{}, err
	}
	response := mapReceipt(result.Receipt)
	response.CandidateVotes = result.Candidate.Votes
	return response, nil
}

func (h Handler) MyVoteHandler(ctx context.Context, electionKey string, userID string) (httptransport.VoteReceiptResponse, error) {
	voter, err := entities.ParseIdentity(userID)
	if err != nil {
		return httptransport.VoteReceiptResponse{}, err
	}
	receipt, err := h.Queries.GetVoteReceipt(ctx, electionKey, voter)
	if err != nil {
		return httptransport.VoteReceiptResponse{}, err
	}
	return mapReceipt(receipt), nil
}

func (h Handler) ResultHandler(ctx context.Context, electionKey string) (httptransport.ElectionResultResponse, error) {
	result, err := h.Queries.GetResult(ctx, electionKey)
	if err != nil {
		return httptransport.ElectionResultResponse{}, err
	}
	return httptransport.ElectionResultResponse{
		ElectionKey:     result.ElectionKey,
		WinnersCapacity: result.WinnersCapacity,
		CandidateCount:  result.CandidateCount,
		Standings:       mapStandings(result.Standings),
		ClosedAt:        result.ClosedAt,
	}, nil
}

func mapElection(election entities.Election) httptransport.ElectionResponse {
	return httptransport.ElectionResponse{
		ElectionKey:     election.Key,
		Stage:           string(election.Stage),
		Initiator:       election.Initiator.String(),
		WinnersCapacity: election.WinnersCapacity,
		CandidateCount:  election.CandidateCount,
		Winners:         mapStandings(election.Standings()),
		CreatedAt:       election.CreatedAt,
		UpdatedAt:       election.UpdatedAt,
	}
}

func mapStandings(standings []entities.Standing) []httptransport.StandingItem {
	items := make([]httptransport.StandingItem, 0, len(standings))
	for _, standing := range standings {
		items = append(items, httptransport.StandingItem{
			Rank:        standing.Rank,
			CandidateID: standing.CandidateID,
			Votes:       standing.Votes,
		})
	}
	return items
}

func mapCandidate(record entities.CandidateRecord, isWinner bool) httptransport.CandidateResponse {
	return httptransport.CandidateResponse{
		ElectionKey:  record.ElectionKey,
		CandidateID:  record.SequentialID,
		Owner:        record.Owner.String(),
		Votes:        record.Votes,
		IsWinner:     isWinner,
		RegisteredAt: record.RegisteredAt,
	}
}

func mapReceipt(receipt entities.VoteReceipt) httptransport.VoteReceiptResponse {
	return httptransport.VoteReceiptResponse{
		ElectionKey: receipt.ElectionKey,
		Voter:       receipt.Voter.String(),
		CandidateID: receipt.CandidateID,
		CastAt:      receipt.CastAt,
	}
}
