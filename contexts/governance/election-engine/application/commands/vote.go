package commands

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	application "electoral/contexts/governance/election-engine/application"
	"electoral/contexts/governance/election-engine/domain/entities"
	domainerrors "electoral/contexts/governance/election-engine/domain/errors"
	"electoral/contexts/governance/election-engine/ports"
)

type VoteCommand struct {
	ElectionKey string
	Actor       entities.Identity
	CandidateID uint64
}

type VoteResult struct {
	Receipt   entities.VoteReceipt
	Candidate entities.CandidateRecord
	Election  entities.Election
}

// VoteUseCase enforces one ballot per voter per election and folds each
// ballot into the winner board in the same unit of work.
type VoteUseCase struct {
	Store  ports.RecordStore
	Cache  ports.ElectionCache
	Clock  ports.Clock
	IDGen  ports.IDGenerator
	Logger *slog.Logger
}

func (uc VoteUseCase) Execute(ctx context.Context, cmd VoteCommand) (VoteResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	key := strings.TrimSpace(cmd.ElectionKey)
	logger.Info("vote processing started",
		"event", "election_vote_started",
		"module", "governance/election-engine",
		"layer", "application",
		"election_key", key,
		"voter", cmd.Actor.String(),
		"candidate_id", cmd.CandidateID,
	)
	if cmd.Actor.IsZero() {
		return VoteResult{}, domainerrors.ErrInvalidIdentity
	}

	now := resolveNow(uc.Clock)
	var result VoteResult
	err := uc.Store.WithinTransaction(ctx, func(tx ports.Tx) error {
		election, err := tx.GetElection(ctx, key)
		if err != nil {
			return err
		}
		switch election.Stage {
		case entities.StageVoting:
		case entities.StageClosed:
			return domainerrors.ErrElectionClosed
		default:
			return domainerrors.ErrNotVotingStage
		}

		candidate, err := tx.GetCandidateRecord(ctx, election.Key, cmd.CandidateID)
		if err != nil {
			return err
		}
		receipt := entities.VoteReceipt{
			ElectionKey: election.Key,
			Voter:       cmd.Actor,
			CandidateID: candidate.SequentialID,
			CastAt:      now,
		}
		if err := tx.CreateVoteReceipt(ctx, receipt); err != nil {
			if errors.Is(err, domainerrors.ErrRecordExists) {
				return domainerrors.ErrAlreadyVoted
			}
			return err
		}

		candidate.Votes++
		candidate.UpdatedAt = now
		if err := tx.SaveCandidateRecord(ctx, candidate); err != nil {
			return err
		}
		election.RecordVote(candidate.SequentialID, candidate.Votes)
		election.UpdatedAt = now
		if err := tx.SaveElection(ctx, election); err != nil {
			return err
		}
		if err := appendEvent(ctx, tx, uc.IDGen, EventVoteCast, election.Key, now, map[string]any{
			"voter":           receipt.Voter.String(),
			"candidate_id":    candidate.SequentialID,
			"candidate_votes": candidate.Votes,
			"is_winner":       election.IsWinner(candidate.SequentialID),
		}); err != nil {
			return err
		}
		result = VoteResult{Receipt: receipt, Candidate: candidate, Election: election}
		return nil
	})
	if err != nil {
		logger.Warn("vote rejected",
			"event", "election_vote_rejected",
			"module", "governance/election-engine",
			"layer", "application",
			"election_key", key,
			"voter", cmd.Actor.String(),
			"candidate_id", cmd.CandidateID,
			"error", err.Error(),
		)
		return VoteResult{}, err
	}
	remember(uc.Cache, result.Election)

	logger.Info("vote cast",
		"event", "election_vote_cast",
		"module", "governance/election-engine",
		"layer", "application",
		"election_key", result.Receipt.ElectionKey,
		"voter", result.Receipt.Voter.String(),
		"candidate_id", result.Candidate.SequentialID,
		"candidate_votes", result.Candidate.Votes,
	)
	return result, nil
}
