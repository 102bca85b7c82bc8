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

type ApplyCommand struct {
	ElectionKey string
	Actor       entities.Identity
}

type ApplyUseCase struct {
	Store  ports.RecordStore
	Cache  ports.ElectionCache
	Clock  ports.Clock
	IDGen  ports.IDGenerator
	Logger *slog.Logger
}

// Execute reserves the next sequential candidate id for the actor. An actor
// may apply at most once per election; the counter only moves when the
// candidate identity is new.
func (uc ApplyUseCase) Execute(ctx context.Context, cmd ApplyCommand) (entities.CandidateIdentity, error) {
	logger := application.ResolveLogger(uc.Logger)
	key := strings.TrimSpace(cmd.ElectionKey)
	logger.Info("candidate apply processing started",
		"event", "election_apply_started",
		"module", "governance/election-engine",
		"layer", "application",
		"election_key", key,
		"actor", cmd.Actor.String(),
	)
	if cmd.Actor.IsZero() {
		return entities.CandidateIdentity{}, domainerrors.ErrInvalidIdentity
	}

	now := resolveNow(uc.Clock)
	var (
		identity  entities.CandidateIdentity
		committed entities.Election
	)
	err := uc.Store.WithinTransaction(ctx, func(tx ports.Tx) error {
		election, err := tx.GetElection(ctx, key)
		if err != nil {
			return err
		}
		candidateID, err := election.NextCandidateID()
		if err != nil {
			return err
		}
		identity = entities.CandidateIdentity{
			ElectionKey:  election.Key,
			SequentialID: candidateID,
			Owner:        cmd.Actor,
			AppliedAt:    now,
		}
		if err := tx.CreateCandidateIdentity(ctx, identity); err != nil {
			if errors.Is(err, domainerrors.ErrRecordExists) {
				return domainerrors.ErrDuplicateApplication
			}
			return err
		}
		election.UpdatedAt = now
		if err := tx.SaveElection(ctx, election); err != nil {
			return err
		}
		if err := appendEvent(ctx, tx, uc.IDGen, EventCandidateApplied, election.Key, now, map[string]any{
			"candidate_id":    identity.SequentialID,
			"owner":           identity.Owner.String(),
			"candidate_count": election.CandidateCount,
		}); err != nil {
			return err
		}
		committed = election
		return nil
	})
	if err != nil {
		logger.Warn("candidate apply rejected",
			"event", "election_apply_rejected",
			"module", "governance/election-engine",
			"layer", "application",
			"election_key", key,
			"actor", cmd.Actor.String(),
			"error", err.Error(),
		)
		return entities.CandidateIdentity{}, err
	}
	remember(uc.Cache, committed)

	logger.Info("candidate applied",
		"event", "election_candidate_applied",
		"module", "governance/election-engine",
		"layer", "application",
		"election_key", identity.ElectionKey,
		"candidate_id", identity.SequentialID,
		"owner", identity.Owner.String(),
	)
	return identity, nil
}
