package ports

import (
	"context"
	"time"

	"electoral/contexts/governance/election-engine/domain/entities"
	"electoral/internal/shared/events"
	"electoral/internal/shared/outbox"
)

// Tx is the set of record operations available inside one atomic unit of
// work. Create* calls are create-if-absent and fail with
// domainerrors.ErrRecordExists when the key is already taken.
type Tx interface {
	CreateElection(ctx context.Context, election entities.Election) error
	GetElection(ctx context.Context, electionKey string) (entities.Election, error)
	SaveElection(ctx context.Context, election entities.Election) error

	CreateCandidateIdentity(ctx context.Context, identity entities.CandidateIdentity) error
	GetCandidateIdentity(ctx context.Context, electionKey string, owner entities.Identity) (entities.CandidateIdentity, error)

	CreateCandidateRecord(ctx context.Context, record entities.CandidateRecord) error
	GetCandidateRecord(ctx context.Context, electionKey string, candidateID uint64) (entities.CandidateRecord, error)
	SaveCandidateRecord(ctx context.Context, record entities.CandidateRecord) error

	CreateVoteReceipt(ctx context.Context, receipt entities.VoteReceipt) error
	GetVoteReceipt(ctx context.Context, electionKey string, voter entities.Identity) (entities.VoteReceipt, error)

	AppendOutbox(ctx context.Context, envelope EventEnvelope) error
}

// RecordStore runs fn atomically: either every write made through tx is
// committed or none is.
type RecordStore interface {
	WithinTransaction(ctx context.Context, fn func(tx Tx) error) error
}

// RecordReader serves read-only lookups without taking write locks.
type RecordReader interface {
	GetElection(ctx context.Context, electionKey string) (entities.Election, error)
	GetCandidateIdentity(ctx context.Context, electionKey string, owner entities.Identity) (entities.CandidateIdentity, error)
	GetCandidateRecord(ctx context.Context, electionKey string, candidateID uint64) (entities.CandidateRecord, error)
	GetVoteReceipt(ctx context.Context, electionKey string, voter entities.Identity) (entities.VoteReceipt, error)
}

// ElectionCache holds recent election snapshots. Put must keep whichever
// snapshot is newer so concurrent readers and writers converge on the last
// committed state.
type ElectionCache interface {
	Get(electionKey string) (entities.Election, bool)
	Put(election entities.Election)
}

// ResultArchive stores the frozen outcome of closed elections.
type ResultArchive interface {
	// SaveResult stores result unless one already exists for the election and
	// reports whether a new row was written.
	SaveResult(ctx context.Context, result entities.ElectionResult) (bool, error)
	GetResult(ctx context.Context, electionKey string) (entities.ElectionResult, error)
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

type EventEnvelope = events.Envelope

type OutboxMessage = outbox.Message

type OutboxRepository interface {
	ListPendingOutbox(ctx context.Context, limit int) ([]OutboxMessage, error)
	MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error
}

type EventPublisher interface {
	Publish(ctx context.Context, topic string, event EventEnvelope) error
}

type EventSubscriber interface {
	Subscribe(
		ctx context.Context,
		topic string,
		consumerGroup string,
		handler func(context.Context, EventEnvelope) error,
	) error
}
