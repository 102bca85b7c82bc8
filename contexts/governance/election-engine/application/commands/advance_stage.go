package commands

import (
	"context"
	"log/slog"
	"strings"

	application "electoral/contexts/governance/election-engine/application"
	"electoral/contexts/governance/election-engine/domain/entities"
	"electoral/contexts/governance/election-engine/ports"
)

type AdvanceStageCommand struct {
	ElectionKey string
	Actor       entities.Identity
	Requested   entities.Stage
}

type AdvanceStageUseCase struct {
	Store  ports.RecordStore
	Cache  ports.ElectionCache
	Clock  ports.Clock
	IDGen  ports.IDGenerator
	Logger *slog.Logger
}

// Execute moves the election forward on behalf of its initiator. Reaching the
// closed stage additionally emits election.closed carrying the final board.
func (uc AdvanceStageUseCase) Execute(ctx context.Context, cmd AdvanceStageCommand) (entities.Election, error) {
	logger := application.ResolveLogger(uc.Logger)
	key := strings.TrimSpace(cmd.ElectionKey)
	logger.Info("election stage change processing started",
		"event", "election_stage_change_started",
		"module", "governance/election-engine",
		"layer", "application",
		"election_key", key,
		"actor", cmd.Actor.String(),
		"requested_stage", string(cmd.Requested),
	)

	now := resolveNow(uc.Clock)
	var (
		election entities.Election
		from     entities.Stage
	)
	err := uc.Store.WithinTransaction(ctx, func(tx ports.Tx) error {
		current, err := tx.GetElection(ctx, key)
		if err != nil {
			return err
		}
		from = current.Stage
		if err := current.AdvanceStage(cmd.Requested, cmd.Actor); err != nil {
			return err
		}
		current.UpdatedAt = now
		if err := tx.SaveElection(ctx, current); err != nil {
			return err
		}
		if err := appendEvent(ctx, tx, uc.IDGen, EventElectionStageChanged, current.Key, now, map[string]any{
			"from_stage":      string(from),
			"to_stage":        string(current.Stage),
			"requested_stage": string(cmd.Requested),
			"candidate_count": current.CandidateCount,
		}); err != nil {
			return err
		}
		if current.Stage == entities.StageClosed {
			if err := appendEvent(ctx, tx, uc.IDGen, EventElectionClosed, current.Key, now, closedPayload(current)); err != nil {
				return err
			}
		}
		election = current
		return nil
	})
	if err != nil {
		logger.Warn("election stage change rejected",
			"event", "election_stage_change_rejected",
			"module", "governance/election-engine",
			"layer", "application",
			"election_key", key,
			"actor", cmd.Actor.String(),
			"requested_stage", string(cmd.Requested),
			"error", err.Error(),
		)
		return entities.Election{}, err
	}
	remember(uc.Cache, election)

	logger.Info("election stage changed",
		"event", "election_stage_changed",
		"module", "governance/election-engine",
		"layer", "application",
		"election_key", election.Key,
		"from_stage", string(from),
		"to_stage", string(election.Stage),
		"winners", len(election.WinnerIDs),
	)
	return election, nil
}

func closedPayload(election entities.Election) map[string]any {
	standings := make([]map[string]any, 0, len(election.WinnerIDs))
	for _, standing := range election.Standings() {
		standings = append(standings, map[string]any{
			"rank":         standing.Rank,
			"candidate_id": standing.CandidateID,
			"votes":        standing.Votes,
		})
	}
	return map[string]any{
		"winners_capacity": election.WinnersCapacity,
		"candidate_count":  election.CandidateCount,
		"standings":        standings,
	}
}
