package workers

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	application "electoral/contexts/governance/election-engine/application"
	"electoral/contexts/governance/election-engine/domain/entities"
	"electoral/contexts/governance/election-engine/ports"
)

const (
	electionClosedTopic  = "election.closed"
	defaultArchiverGroup = "election-engine-results-cg"
)

// ResultsArchiver freezes the winner board of every closed election into the
// result archive. Replays of the same event are harmless.
type ResultsArchiver struct {
	Subscriber    ports.EventSubscriber
	Results       ports.ResultArchive
	ConsumerGroup string
	Disabled      bool
	Logger        *slog.Logger
}

type closedEventPayload struct {
	ElectionKey     string `json:"election_key"`
	WinnersCapacity uint8  `json:"winners_capacity"`
	CandidateCount  uint64 `json:"candidate_count"`
	OccurredAt      string `json:"occurred_at"`
	Standings       []struct {
		Rank        int    `json:"rank"`
		CandidateID uint64 `json:"candidate_id"`
		Votes       uint64 `json:"votes"`
	} `json:"standings"`
}

func (a ResultsArchiver) Start(ctx context.Context) error {
	logger := application.ResolveLogger(a.Logger)
	if a.Disabled {
		logger.Info("results archiver disabled by feature flag",
			"event", "election_results_archiver_disabled",
			"module", "governance/election-engine",
			"layer", "worker",
		)
		return nil
	}
	group := strings.TrimSpace(a.ConsumerGroup)
	if group == "" {
		group = defaultArchiverGroup
	}
	if err := a.Subscriber.Subscribe(ctx, electionClosedTopic, group, a.HandleElectionClosed); err != nil {
		logger.Error("results archiver subscribe failed",
			"event", "election_results_archiver_subscribe_failed",
			"module", "governance/election-engine",
			"layer", "worker",
			"topic", electionClosedTopic,
			"consumer_group", group,
			"error", err.Error(),
		)
		return err
	}
	logger.Info("results archiver subscription active",
		"event", "election_results_archiver_started",
		"module", "governance/election-engine",
		"layer", "worker",
		"consumer_group", group,
	)
	return nil
}

func (a ResultsArchiver) HandleElectionClosed(ctx context.Context, event ports.EventEnvelope) error {
	logger := application.ResolveLogger(a.Logger)
	var payload closedEventPayload
	if err := json.Unmarshal(event.Data, &payload); err != nil {
		logger.Error("election.closed payload decode failed",
			"event", "election_closed_decode_failed",
			"module", "governance/election-engine",
			"layer", "worker",
			"event_id", event.EventID,
			"error", err.Error(),
		)
		return err
	}
	key := strings.TrimSpace(payload.ElectionKey)
	if key == "" {
		key = event.PartitionKey
	}
	closedAt := event.OccurredAt.UTC()
	if parsed, err := time.Parse(time.RFC3339Nano, payload.OccurredAt); err == nil {
		closedAt = parsed.UTC()
	}

	result := entities.ElectionResult{
		ElectionKey:     key,
		WinnersCapacity: payload.WinnersCapacity,
		CandidateCount:  payload.CandidateCount,
		Standings:       make([]entities.Standing, 0, len(payload.Standings)),
		ClosedAt:        closedAt,
	}
	for _, item := range payload.Standings {
		result.Standings = append(result.Standings, entities.Standing{
			Rank:        item.Rank,
			CandidateID: item.CandidateID,
			Votes:       item.Votes,
		})
	}

	created, err := a.Results.SaveResult(ctx, result)
	if err != nil {
		logger.Error("election result archive failed",
			"event", "election_result_archive_failed",
			"module", "governance/election-engine",
			"layer", "worker",
			"event_id", event.EventID,
			"election_key", key,
			"error", err.Error(),
		)
		return err
	}
	if !created {
		logger.Debug("election.closed replay skipped",
			"event", "election_closed_replayed",
			"module", "governance/election-engine",
			"layer", "worker",
			"event_id", event.EventID,
			"election_key", key,
		)
		return nil
	}
	logger.Info("election result archived",
		"event", "election_result_archived",
		"module", "governance/election-engine",
		"layer", "worker",
		"event_id", event.EventID,
		"election_key", key,
		"winners", len(result.Standings),
	)
	return nil
}
