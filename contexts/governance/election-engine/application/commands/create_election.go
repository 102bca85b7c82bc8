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

type CreateElectionCommand struct {
	// ElectionKey is optional; a generated key is used when empty.
	ElectionKey     string
	Initiator       entities.Identity
	WinnersCapacity uint8
}

type CreateElectionUseCase struct {
	Store  ports.RecordStore
	Cache  ports.ElectionCache
	Clock  ports.Clock
	IDGen  ports.IDGenerator
	Logger *slog.Logger
}

// Execute opens a new election in the application stage with the caller as
// its initiator.
func (uc CreateElectionUseCase) Execute(ctx context.Context, cmd CreateElectionCommand) (entities.Election, error) {
	logger := application.ResolveLogger(uc.Logger)
	key := strings.TrimSpace(cmd.ElectionKey)
	logger.Info("election create processing started",
		"event", "election_create_started",
		"module", "governance/election-engine",
		"layer", "application",
		"election_key", key,
		"initiator", cmd.Initiator.String(),
		"winners_capacity", cmd.WinnersCapacity,
	)
	if key == "" {
		generated, err := uc.IDGen.NewID(ctx)
		if err != nil {
			return entities.Election{}, err
		}
		key = generated
	}

	now := resolveNow(uc.Clock)
	election, err := entities.NewElection(key, cmd.Initiator, cmd.WinnersCapacity, now)
	if err != nil {
		logger.Warn("election create validation failed",
			"event", "election_create_validation_failed",
			"module", "governance/election-engine",
			"layer", "application",
			"election_key", key,
			"winners_capacity", cmd.WinnersCapacity,
			"error", err.Error(),
		)
		return entities.Election{}, err
	}

	err = uc.Store.WithinTransaction(ctx, func(tx ports.Tx) error {
		if err := tx.CreateElection(ctx, election); err != nil {
			if errors.Is(err, domainerrors.ErrRecordExists) {
				return domainerrors.ErrElectionExists
			}
			return err
		}
		return appendEvent(ctx, tx, uc.IDGen, EventElectionCreated, election.Key, now, map[string]any{
			"initiator":        election.Initiator.String(),
			"winners_capacity": election.WinnersCapacity,
			"stage":            string(election.Stage),
		})
	})
	if err != nil {
		logger.Warn("election create rejected",
			"event", "election_create_rejected",
			"module", "governance/election-engine",
			"layer", "application",
			"election_key", key,
			"error", err.Error(),
		)
		return entities.Election{}, err
	}
	remember(uc.Cache, election)

	logger.Info("election created",
		"event", "election_created",
		"module", "governance/election-engine",
		"layer", "application",
		"election_key", election.Key,
		"initiator", election.Initiator.String(),
		"winners_capacity", election.WinnersCapacity,
	)
	return election, nil
}
