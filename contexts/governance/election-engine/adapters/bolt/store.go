package boltadapter

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"electoral/contexts/governance/election-engine/domain/entities"
	domainerrors "electoral/contexts/governance/election-engine/domain/errors"
	"electoral/contexts/governance/election-engine/ports"
	"electoral/internal/shared/outbox"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"
)

var (
	bucketElections   = []byte("elections")
	bucketIdentities  = []byte("candidate_identities")
	bucketCandidates  = []byte("candidates")
	bucketReceipts    = []byte("vote_receipts")
	bucketOutbox      = []byte("outbox")
	bucketOutboxIndex = []byte("outbox_index")
	bucketResults     = []byte("results")
)

// Store keeps election records in a single bbolt file. Every write operation
// is one bolt read-write transaction, which bolt serializes.
type Store struct {
	db     *bolt.DB
	logger *slog.Logger
}

// NewStore prepares the buckets on db.
func NewStore(db *bolt.DB, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	err := db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{
			bucketElections,
			bucketIdentities,
			bucketCandidates,
			bucketReceipts,
			bucketOutbox,
			bucketOutboxIndex,
			bucketResults,
		} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &Store{db: db, logger: logger}, nil
}

func (s *Store) WithinTransaction(ctx context.Context, fn func(tx ports.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return fn(&boltTx{tx: tx, logger: s.logger})
	})
}

func (s *Store) GetElection(ctx context.Context, electionKey string) (entities.Election, error) {
	var election entities.Election
	err := s.db.View(func(tx *bolt.Tx) error {
		var err error
		election, err = (&boltTx{tx: tx, logger: s.logger}).GetElection(ctx, electionKey)
		return err
	})
	return election, err
}

func (s *Store) GetCandidateIdentity(
	ctx context.Context,
	electionKey string,
	owner entities.Identity,
) (entities.CandidateIdentity, error) {
	var identity entities.CandidateIdentity
	err := s.db.View(func(tx *bolt.Tx) error {
		var err error
		identity, err = (&boltTx{tx: tx, logger: s.logger}).GetCandidateIdentity(ctx, electionKey, owner)
		return err
	})
	return identity, err
}

func (s *Store) GetCandidateRecord(ctx context.Context, electionKey string, candidateID uint64) (entities.CandidateRecord, error) {
	var record entities.CandidateRecord
	err := s.db.View(func(tx *bolt.Tx) error {
		var err error
		record, err = (&boltTx{tx: tx, logger: s.logger}).GetCandidateRecord(ctx, electionKey, candidateID)
		return err
	})
	return record, err
}

func (s *Store) GetVoteReceipt(ctx context.Context, electionKey string, voter entities.Identity) (entities.VoteReceipt, error) {
	var receipt entities.VoteReceipt
	err := s.db.View(func(tx *bolt.Tx) error {
		var err error
		receipt, err = (&boltTx{tx: tx, logger: s.logger}).GetVoteReceipt(ctx, electionKey, voter)
		return err
	})
	return receipt, err
}

func (s *Store) ListPendingOutbox(_ context.Context, limit int) ([]ports.OutboxMessage, error) {
	if limit <= 0 {
		limit = 100
	}
	items := make([]ports.OutboxMessage, 0, limit)
	err := s.db.View(func(tx *bolt.Tx) error {
		cursor := tx.Bucket(bucketOutbox).Cursor()
		for key, value := cursor.First(); key != nil && len(items) < limit; key, value = cursor.Next() {
			var row outboxRecord
			if err := json.Unmarshal(value, &row); err != nil {
				return err
			}
			if row.Status != outbox.StatusPending {
				continue
			}
			items = append(items, ports.OutboxMessage{
				OutboxID:     row.OutboxID,
				EventType:    row.EventType,
				PartitionKey: row.PartitionKey,
				Payload:      row.Payload,
				Status:       row.Status,
				CreatedAt:    row.CreatedAt,
			})
		}
		return nil
	})
	if err != nil {
		return nil, logError(s.logger, "election_bolt_list_pending_outbox_failed", err, "limit", limit)
	}
	return items, nil
}

func (s *Store) MarkOutboxPublished(_ context.Context, outboxID string, publishedAt time.Time) error {
	id := strings.TrimSpace(outboxID)
	return s.db.Update(func(tx *bolt.Tx) error {
		seq := tx.Bucket(bucketOutboxIndex).Get([]byte(id))
		if seq == nil {
			return domainerrors.ErrConflict
		}
		rows := tx.Bucket(bucketOutbox)
		var row outboxRecord
		if err := json.Unmarshal(rows.Get(seq), &row); err != nil {
			return logError(s.logger, "election_bolt_mark_outbox_decode_failed", err, "outbox_id", id)
		}
		at := publishedAt.UTC()
		row.Status = outbox.StatusPublished
		row.PublishedAt = &at
		return putJSON(rows, append([]byte(nil), seq...), row)
	})
}

func (s *Store) SaveResult(_ context.Context, result entities.ElectionResult) (bool, error) {
	created := false
	key := electionBucketKey(result.ElectionKey)
	err := s.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(bucketResults)
		if bucket.Get(key) != nil {
			return nil
		}
		row := resultRecord{
			ElectionKey:     string(key),
			WinnersCapacity: result.WinnersCapacity,
			CandidateCount:  result.CandidateCount,
			Standings:       make([]standingRecord, 0, len(result.Standings)),
			ClosedAt:        result.ClosedAt.UTC(),
		}
		for _, standing := range result.Standings {
			row.Standings = append(row.Standings, standingRecord(standing))
		}
		created = true
		return putJSON(bucket, key, row)
	})
	if err != nil {
		return false, logError(s.logger, "election_bolt_save_result_failed", err, "election_key", string(key))
	}
	return created, nil
}

func (s *Store) GetResult(_ context.Context, electionKeyValue string) (entities.ElectionResult, error) {
	var row resultRecord
	err := s.db.View(func(tx *bolt.Tx) error {
		found, err := getJSON(tx.Bucket(bucketResults), electionBucketKey(electionKeyValue), &row)
		if err != nil {
			return err
		}
		if !found {
			return domainerrors.ErrResultNotFound
		}
		return nil
	})
	if err != nil {
		return entities.ElectionResult{}, err
	}
	result := entities.ElectionResult{
		ElectionKey:     row.ElectionKey,
		WinnersCapacity: row.WinnersCapacity,
		CandidateCount:  row.CandidateCount,
		Standings:       make([]entities.Standing, 0, len(row.Standings)),
		ClosedAt:        row.ClosedAt,
	}
	for _, standing := range row.Standings {
		result.Standings = append(result.Standings, entities.Standing(standing))
	}
	return result, nil
}

type boltTx struct {
	tx     *bolt.Tx
	logger *slog.Logger
}

func (t *boltTx) CreateElection(_ context.Context, election entities.Election) error {
	bucket := t.tx.Bucket(bucketElections)
	key := electionBucketKey(election.Key)
	if bucket.Get(key) != nil {
		return domainerrors.ErrRecordExists
	}
	return putJSON(bucket, key, electionRecordFromEntity(election))
}

func (t *boltTx) GetElection(_ context.Context, key string) (entities.Election, error) {
	var row electionRecord
	found, err := getJSON(t.tx.Bucket(bucketElections), electionBucketKey(key), &row)
	if err != nil {
		return entities.Election{}, logError(t.logger, "election_bolt_get_election_failed", err, "election_key", key)
	}
	if !found {
		return entities.Election{}, domainerrors.ErrElectionNotFound
	}
	return row.toEntity()
}

func (t *boltTx) SaveElection(_ context.Context, election entities.Election) error {
	bucket := t.tx.Bucket(bucketElections)
	key := electionBucketKey(election.Key)
	if bucket.Get(key) == nil {
		return domainerrors.ErrElectionNotFound
	}
	return putJSON(bucket, key, electionRecordFromEntity(election))
}

func (t *boltTx) CreateCandidateIdentity(_ context.Context, identity entities.CandidateIdentity) error {
	bucket := t.tx.Bucket(bucketIdentities)
	key := candidateIdentityKey(identity.Owner, identity.ElectionKey)
	if bucket.Get(key) != nil {
		return domainerrors.ErrRecordExists
	}
	return putJSON(bucket, key, candidateIdentityRecord{
		ElectionKey:  identity.ElectionKey,
		SequentialID: identity.SequentialID,
		Owner:        identity.Owner.String(),
		AppliedAt:    identity.AppliedAt.UTC(),
	})
}

func (t *boltTx) GetCandidateIdentity(
	_ context.Context,
	electionKey string,
	owner entities.Identity,
) (entities.CandidateIdentity, error) {
	var row candidateIdentityRecord
	found, err := getJSON(t.tx.Bucket(bucketIdentities), candidateIdentityKey(owner, electionKey), &row)
	if err != nil {
		return entities.CandidateIdentity{}, logError(t.logger, "election_bolt_get_candidate_identity_failed", err,
			"election_key", electionKey,
			"owner", owner.String(),
		)
	}
	if !found {
		return entities.CandidateIdentity{}, domainerrors.ErrCandidateIdentityNotFound
	}
	return row.toEntity()
}

func (t *boltTx) CreateCandidateRecord(_ context.Context, record entities.CandidateRecord) error {
	bucket := t.tx.Bucket(bucketCandidates)
	key := candidateRecordKey(record.SequentialID, record.ElectionKey)
	if bucket.Get(key) != nil {
		return domainerrors.ErrRecordExists
	}
	return putJSON(bucket, key, candidateRecordFromEntity(record))
}

func (t *boltTx) GetCandidateRecord(_ context.Context, electionKey string, candidateID uint64) (entities.CandidateRecord, error) {
	var row candidateRecord
	found, err := getJSON(t.tx.Bucket(bucketCandidates), candidateRecordKey(candidateID, electionKey), &row)
	if err != nil {
		return entities.CandidateRecord{}, logError(t.logger, "election_bolt_get_candidate_record_failed", err,
			"election_key", electionKey,
			"candidate_id", candidateID,
		)
	}
	if !found {
		return entities.CandidateRecord{}, domainerrors.ErrCandidateNotFound
	}
	return row.toEntity()
}

func (t *boltTx) SaveCandidateRecord(_ context.Context, record entities.CandidateRecord) error {
	bucket := t.tx.Bucket(bucketCandidates)
	key := candidateRecordKey(record.SequentialID, record.ElectionKey)
	if bucket.Get(key) == nil {
		return domainerrors.ErrCandidateNotFound
	}
	return putJSON(bucket, key, candidateRecordFromEntity(record))
}

func (t *boltTx) CreateVoteReceipt(_ context.Context, receipt entities.VoteReceipt) error {
	bucket := t.tx.Bucket(bucketReceipts)
	key := voteReceiptKey(receipt.Voter, receipt.ElectionKey)
	if bucket.Get(key) != nil {
		return domainerrors.ErrRecordExists
	}
	return putJSON(bucket, key, voteReceiptRecord{
		ElectionKey: receipt.ElectionKey,
		Voter:       receipt.Voter.String(),
		CandidateID: receipt.CandidateID,
		CastAt:      receipt.CastAt.UTC(),
	})
}

func (t *boltTx) GetVoteReceipt(_ context.Context, electionKey string, voter entities.Identity) (entities.VoteReceipt, error) {
	var row voteReceiptRecord
	found, err := getJSON(t.tx.Bucket(bucketReceipts), voteReceiptKey(voter, electionKey), &row)
	if err != nil {
		return entities.VoteReceipt{}, logError(t.logger, "election_bolt_get_vote_receipt_failed", err,
			"election_key", electionKey,
			"voter", voter.String(),
		)
	}
	if !found {
		return entities.VoteReceipt{}, domainerrors.ErrVoteReceiptNotFound
	}
	return row.toEntity()
}

func (t *boltTx) AppendOutbox(_ context.Context, envelope ports.EventEnvelope) error {
	payload, err := json.Marshal(envelope)
	if err != nil {
		return err
	}
	row := outboxRecord{
		OutboxID:     strings.TrimSpace(envelope.EventID),
		EventType:    strings.TrimSpace(envelope.EventType),
		PartitionKey: strings.TrimSpace(envelope.PartitionKey),
		Payload:      payload,
		Status:       outbox.StatusPending,
		CreatedAt:    envelope.OccurredAt.UTC(),
	}
	if row.OutboxID == "" {
		row.OutboxID = uuid.NewString()
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}

	index := t.tx.Bucket(bucketOutboxIndex)
	if index.Get([]byte(row.OutboxID)) != nil {
		return domainerrors.ErrConflict
	}
	rows := t.tx.Bucket(bucketOutbox)
	seq, err := rows.NextSequence()
	if err != nil {
		return err
	}
	key := sequenceKey(seq)
	if err := index.Put([]byte(row.OutboxID), key); err != nil {
		return err
	}
	return putJSON(rows, key, row)
}

func putJSON(bucket *bolt.Bucket, key []byte, value any) error {
	encoded, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return bucket.Put(key, encoded)
}

// getJSON decodes the value at key into out. Bolt values are only valid for
// the life of the transaction, so decoding happens before returning.
func getJSON(bucket *bolt.Bucket, key []byte, out any) (bool, error) {
	raw := bucket.Get(key)
	if raw == nil {
		return false, nil
	}
	return true, json.Unmarshal(raw, out)
}

func logError(logger *slog.Logger, event string, err error, attrs ...any) error {
	fields := make([]any, 0, len(attrs)+8)
	fields = append(fields,
		"event", event,
		"module", "governance/election-engine",
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	logger.Error("election bolt store operation failed", fields...)
	return err
}

var _ ports.RecordStore = (*Store)(nil)
var _ ports.RecordReader = (*Store)(nil)
var _ ports.OutboxRepository = (*Store)(nil)
var _ ports.ResultArchive = (*Store)(nil)
var _ ports.Tx = (*boltTx)(nil)
