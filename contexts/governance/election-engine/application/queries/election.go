package queries

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

// ElectionQueryUseCase serves read models. Election snapshots go through the
// optional cache; commands write their committed snapshot through it.
type ElectionQueryUseCase struct {
	Records ports.RecordReader
	Cache   ports.ElectionCache
	Results ports.ResultArchive
	Logger  *slog.Logger
}

func (uc ElectionQueryUseCase) GetElection(ctx context.Context, electionKey string) (entities.Election, error) {
	key := strings.TrimSpace(electionKey)
	if uc.Cache != nil {
		if election, ok := uc.Cache.Get(key); ok {
			return election, nil
		}
	}
	election, err := uc.Records.GetElection(ctx, key)
	if err != nil {
		return entities.Election{}, err
	}
	if uc.Cache != nil {
		uc.Cache.Put(election)
	}
	return election, nil
}

func (uc ElectionQueryUseCase) ListWinners(ctx context.Context, electionKey string) ([]entities.Standing, error) {
	election, err := uc.GetElection(ctx, electionKey)
	if err != nil {
		return nil, err
	}
	return election.Standings(), nil
}

func (uc ElectionQueryUseCase) GetCandidate(ctx context.Context, electionKey string, candidateID uint64) (entities.CandidateRecord, error) {
	return uc.Records.GetCandidateRecord(ctx, strings.TrimSpace(electionKey), candidateID)
}

func (uc ElectionQueryUseCase) GetCandidateIdentity(
	ctx context.Context,
	electionKey string,
	owner entities.Identity,
) (entities.CandidateIdentity, error) {
	return uc.Records.GetCandidateIdentity(ctx, strings.TrimSpace(electionKey), owner)
}

func (uc ElectionQueryUseCase) GetVoteReceipt(ctx context.Context, electionKey string, voter entities.Identity) (entities.VoteReceipt, error) {
	return uc.Records.GetVoteReceipt(ctx, strings.TrimSpace(electionKey), voter)
}

// GetResult returns the archived outcome. A closed election whose
// election.closed event never reached the archiver is archived here from its
// committed board, so a lost event cannot hide a final result.
func (uc ElectionQueryUseCase) GetResult(ctx context.Context, electionKey string) (entities.ElectionResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	key := strings.TrimSpace(electionKey)
	if uc.Results == nil {
		return entities.ElectionResult{}, domainerrors.ErrResultNotFound
	}
	result, err := uc.Results.GetResult(ctx, key)
	if err == nil {
		return result, nil
	}
	if !errors.Is(err, domainerrors.ErrResultNotFound) {
		return entities.ElectionResult{}, err
	}

	election, err := uc.Records.GetElection(ctx, key)
	if err != nil {
		return entities.ElectionResult{}, err
	}
	result, err = election.Result()
	if err != nil {
		logger.Debug("election result lookup missed",
			"event", "election_result_lookup_missed",
			"module", "governance/election-engine",
			"layer", "application",
			"election_key", key,
			"stage", string(election.Stage),
		)
		return entities.ElectionResult{}, err
	}

	created, err := uc.Results.SaveResult(ctx, result)
	if err != nil {
		logger.Error("election result backfill failed",
			"event", "election_result_backfill_failed",
			"module", "governance/election-engine",
			"layer", "application",
			"election_key", key,
			"error", err.Error(),
		)
		return entities.ElectionResult{}, err
	}
	if !created {
		// The archiver won the race; serve its copy.
		return uc.Results.GetResult(ctx, key)
	}
	logger.Warn("election result backfilled from closed board",
		"event", "election_result_backfilled",
		"module", "governance/election-engine",
		"layer", "application",
		"election_key", key,
		"winners", len(result.Standings),
	)
	return result, nil
}
