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

type RegisterCommand struct {
	ElectionKey string
	Actor       entities.Identity
	// CandidateOwner selects the candidate identity to register. It defaults
	// to Actor.
	CandidateOwner entities.Identity
}

type RegisterUseCase struct {
	Store  ports.RecordStore
	Clock  ports.Clock
	IDGen  ports.IDGenerator
	Logger *slog.Logger
}

// Execute creates the vote-carrying candidate record for an applied identity.
// Only the identity owner may register it, and only once.
func (uc RegisterUseCase) Execute(ctx context.Context, cmd RegisterCommand) (entities.CandidateRecord, error) {
	logger := application.ResolveLogger(uc.Logger)
	key := strings.TrimSpace(cmd.ElectionKey)
	owner := cmd.CandidateOwner
	if owner.IsZero() {
		owner = cmd.Actor
	}
	logger.Info("candidate register processing started",
		"event", "election_register_started",
		"module", "governance/election-engine",
		"layer", "application",
		"election_key", key,
		"actor", cmd.Actor.String(),
		"candidate_owner", owner.String(),
	)
	if cmd.Actor.IsZero() {
		return entities.CandidateRecord{}, domainerrors.ErrInvalidIdentity
	}

	now := resolveNow(uc.Clock)
	var record entities.CandidateRecord
	err := uc.Store.WithinTransaction(ctx, func(tx ports.Tx) error {
		identity, err := tx.GetCandidateIdentity(ctx, key, owner)
		if err != nil {
			return err
		}
		if identity.Owner != cmd.Actor {
			return domainerrors.ErrWrongIdentity
		}
		record = entities.CandidateRecord{
			ElectionKey:  identity.ElectionKey,
			SequentialID: identity.SequentialID,
			Owner:        cmd.Actor,
			Votes:        0,
			RegisteredAt: now,
			UpdatedAt:    now,
		}
		if err := tx.CreateCandidateRecord(ctx, record); err != nil {
			if errors.Is(err, domainerrors.ErrRecordExists) {
				return domainerrors.ErrAlreadyRegistered
			}
			return err
		}
		return appendEvent(ctx, tx, uc.IDGen, EventCandidateRegistered, record.ElectionKey, now, map[string]any{
			"candidate_id": record.SequentialID,
			"owner":        record.Owner.String(),
		})
	})
	if err != nil {
		logger.Warn("candidate register rejected",
			"event", "election_register_rejected",
			"module", "governance/election-engine",
			"layer", "application",
			"election_key", key,
			"actor", cmd.Actor.String(),
			"error", err.Error(),
		)
		return entities.CandidateRecord{}, err
	}

	logger.Info("candidate registered",
		"event", "election_candidate_registered",
		"module", "governance/election-engine",
		"layer", "application",
		"election_key", record.ElectionKey,
		"candidate_id", record.SequentialID,
		"owner", record.Owner.String(),
	)
	return record, nil
}
