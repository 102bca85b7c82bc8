package commands

import (
	"context"
	"encoding/json"
	"time"

	"electoral/contexts/governance/election-engine/domain/entities"
	"electoral/contexts/governance/election-engine/ports"
)

const (
	EventElectionCreated      = "election.created"
	EventCandidateApplied     = "candidate.applied"
	EventCandidateRegistered  = "candidate.registered"
	EventElectionStageChanged = "election.stage_changed"
	EventElectionClosed       = "election.closed"
	EventVoteCast             = "vote.cast"
)

func newElectionEnvelope(
	eventID string,
	eventType string,
	electionKey string,
	occurredAt time.Time,
	data map[string]any,
) (ports.EventEnvelope, error) {
	// Every event is partitioned by election so consumers see one election's
	// history in commit order.
	payload, err := json.Marshal(data)
	if err != nil {
		return ports.EventEnvelope{}, err
	}
	return ports.EventEnvelope{
		EventID:          eventID,
		EventType:        eventType,
		OccurredAt:       occurredAt.UTC(),
		SourceService:    "election-engine",
		TraceID:          eventID,
		SchemaVersion:    1,
		PartitionKeyPath: "election_key",
		PartitionKey:     electionKey,
		Data:             payload,
	}, nil
}

// appendEvent writes an envelope through tx so it commits with the state
// change it describes.
func appendEvent(
	ctx context.Context,
	tx ports.Tx,
	idGen ports.IDGenerator,
	eventType string,
	electionKey string,
	occurredAt time.Time,
	data map[string]any,
) error {
	eventID, err := idGen.NewID(ctx)
	if err != nil {
		return err
	}
	data["election_key"] = electionKey
	data["occurred_at"] = occurredAt.UTC().Format(time.RFC3339Nano)
	envelope, err := newElectionEnvelope(eventID, eventType, electionKey, occurredAt, data)
	if err != nil {
		return err
	}
	return tx.AppendOutbox(ctx, envelope)
}

func resolveNow(clock ports.Clock) time.Time {
	if clock == nil {
		return time.Now().UTC()
	}
	return clock.Now().UTC()
}

// remember writes the committed snapshot through to the cache.
func remember(cache ports.ElectionCache, election entities.Election) {
	if cache != nil {
		cache.Put(election)
	}
}
