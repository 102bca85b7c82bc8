package memory

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"electoral/contexts/governance/election-engine/domain/entities"
	domainerrors "electoral/contexts/governance/election-engine/domain/errors"
	"electoral/contexts/governance/election-engine/ports"
	"electoral/internal/shared/outbox"

	"github.com/google/uuid"
)

type candidateKey struct {
	electionKey string
	owner       entities.Identity
}

type recordKey struct {
	electionKey string
	candidateID uint64
}

type receiptKey struct {
	electionKey string
	voter       entities.Identity
}

type outboxRecord struct {
	seq     uint64
	message ports.OutboxMessage
}

// Store keeps every record in process memory. Transactions hold the write
// lock for their whole duration and stage writes until fn returns nil.
type Store struct {
	mu sync.RWMutex

	elections  map[string]entities.Election
	identities map[candidateKey]entities.CandidateIdentity
	records    map[recordKey]entities.CandidateRecord
	receipts   map[receiptKey]entities.VoteReceipt
	results    map[string]entities.ElectionResult
	outbox     map[string]outboxRecord
	outboxSeq  uint64
}

var (
	_ ports.RecordStore      = (*Store)(nil)
	_ ports.RecordReader     = (*Store)(nil)
	_ ports.OutboxRepository = (*Store)(nil)
	_ ports.ResultArchive    = (*Store)(nil)
	_ ports.Clock            = (*Store)(nil)
	_ ports.IDGenerator      = (*Store)(nil)
)

func NewStore() *Store {
	return &Store{
		elections:  make(map[string]entities.Election),
		identities: make(map[candidateKey]entities.CandidateIdentity),
		records:    make(map[recordKey]entities.CandidateRecord),
		receipts:   make(map[receiptKey]entities.VoteReceipt),
		results:    make(map[string]entities.ElectionResult),
		outbox:     make(map[string]outboxRecord),
	}
}

func (s *Store) WithinTransaction(_ context.Context, fn func(tx ports.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &stagedTx{
		store:      s,
		elections:  make(map[string]entities.Election),
		identities: make(map[candidateKey]entities.CandidateIdentity),
		records:    make(map[recordKey]entities.CandidateRecord),
		receipts:   make(map[receiptKey]entities.VoteReceipt),
	}
	if err := fn(tx); err != nil {
		return err
	}
	tx.commit()
	return nil
}

func (s *Store) GetElection(_ context.Context, electionKey string) (entities.Election, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	election, ok := s.elections[strings.TrimSpace(electionKey)]
	if !ok {
		return entities.Election{}, domainerrors.ErrElectionNotFound
	}
	return election.Clone(), nil
}

func (s *Store) GetCandidateIdentity(
	_ context.Context,
	electionKey string,
	owner entities.Identity,
) (entities.CandidateIdentity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	identity, ok := s.identities[candidateKey{electionKey: strings.TrimSpace(electionKey), owner: owner}]
	if !ok {
		return entities.CandidateIdentity{}, domainerrors.ErrCandidateIdentityNotFound
	}
	return identity, nil
}

func (s *Store) GetCandidateRecord(_ context.Context, electionKey string, candidateID uint64) (entities.CandidateRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.records[recordKey{electionKey: strings.TrimSpace(electionKey), candidateID: candidateID}]
	if !ok {
		return entities.CandidateRecord{}, domainerrors.ErrCandidateNotFound
	}
	return record, nil
}

func (s *Store) GetVoteReceipt(_ context.Context, electionKey string, voter entities.Identity) (entities.VoteReceipt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	receipt, ok := s.receipts[receiptKey{electionKey: strings.TrimSpace(electionKey), voter: voter}]
	if !ok {
		return entities.VoteReceipt{}, domainerrors.ErrVoteReceiptNotFound
	}
	return receipt, nil
}

func (s *Store) SaveResult(_ context.Context, result entities.ElectionResult) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := strings.TrimSpace(result.ElectionKey)
	if _, ok := s.results[key]; ok {
		return false, nil
	}
	result.ElectionKey = key
	result.Standings = append([]entities.Standing(nil), result.Standings...)
	s.results[key] = result
	return true, nil
}

func (s *Store) GetResult(_ context.Context, electionKey string) (entities.ElectionResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result, ok := s.results[strings.TrimSpace(electionKey)]
	if !ok {
		return entities.ElectionResult{}, domainerrors.ErrResultNotFound
	}
	result.Standings = append([]entities.Standing(nil), result.Standings...)
	return result, nil
}

func (s *Store) ListPendingOutbox(_ context.Context, limit int) ([]ports.OutboxMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 100
	}
	rows := make([]outboxRecord, 0, len(s.outbox))
	for _, row := range s.outbox {
		if row.message.Status != outbox.StatusPending {
			continue
		}
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool {
		return rows[i].seq < rows[j].seq
	})
	if len(rows) > limit {
		rows = rows[:limit]
	}
	items := make([]ports.OutboxMessage, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.message)
	}
	return items, nil
}

func (s *Store) MarkOutboxPublished(_ context.Context, outboxID string, publishedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := strings.TrimSpace(outboxID)
	row, ok := s.outbox[key]
	if !ok {
		return domainerrors.ErrConflict
	}
	at := publishedAt.UTC()
	row.message.Status = outbox.StatusPublished
	row.message.PublishedAt = &at
	s.outbox[key] = row
	return nil
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

// stagedTx reads through to the store and buffers writes until commit. The
// store lock is held by WithinTransaction for the lifetime of the tx.
type stagedTx struct {
	store *Store

	elections  map[string]entities.Election
	identities map[candidateKey]entities.CandidateIdentity
	records    map[recordKey]entities.CandidateRecord
	receipts   map[receiptKey]entities.VoteReceipt
	outbox     []ports.OutboxMessage
}

func (tx *stagedTx) CreateElection(_ context.Context, election entities.Election) error {
	key := strings.TrimSpace(election.Key)
	if _, ok := tx.lookupElection(key); ok {
		return domainerrors.ErrRecordExists
	}
	election.Key = key
	tx.elections[key] = election.Clone()
	return nil
}

func (tx *stagedTx) GetElection(_ context.Context, electionKey string) (entities.Election, error) {
	election, ok := tx.lookupElection(strings.TrimSpace(electionKey))
	if !ok {
		return entities.Election{}, domainerrors.ErrElectionNotFound
	}
	return election.Clone(), nil
}

func (tx *stagedTx) SaveElection(_ context.Context, election entities.Election) error {
	key := strings.TrimSpace(election.Key)
	if _, ok := tx.lookupElection(key); !ok {
		return domainerrors.ErrElectionNotFound
	}
	tx.elections[key] = election.Clone()
	return nil
}

func (tx *stagedTx) CreateCandidateIdentity(_ context.Context, identity entities.CandidateIdentity) error {
	key := candidateKey{electionKey: strings.TrimSpace(identity.ElectionKey), owner: identity.Owner}
	if _, ok := tx.identities[key]; ok {
		return domainerrors.ErrRecordExists
	}
	if _, ok := tx.store.identities[key]; ok {
		return domainerrors.ErrRecordExists
	}
	tx.identities[key] = identity
	return nil
}

func (tx *stagedTx) GetCandidateIdentity(
	_ context.Context,
	electionKey string,
	owner entities.Identity,
) (entities.CandidateIdentity, error) {
	key := candidateKey{electionKey: strings.TrimSpace(electionKey), owner: owner}
	if identity, ok := tx.identities[key]; ok {
		return identity, nil
	}
	if identity, ok := tx.store.identities[key]; ok {
		return identity, nil
	}
	return entities.CandidateIdentity{}, domainerrors.ErrCandidateIdentityNotFound
}

func (tx *stagedTx) CreateCandidateRecord(_ context.Context, record entities.CandidateRecord) error {
	key := recordKey{electionKey: strings.TrimSpace(record.ElectionKey), candidateID: record.SequentialID}
	if _, ok := tx.lookupRecord(key); ok {
		return domainerrors.ErrRecordExists
	}
	tx.records[key] = record
	return nil
}

func (tx *stagedTx) GetCandidateRecord(_ context.Context, electionKey string, candidateID uint64) (entities.CandidateRecord, error) {
	record, ok := tx.lookupRecord(recordKey{electionKey: strings.TrimSpace(electionKey), candidateID: candidateID})
	if !ok {
		return entities.CandidateRecord{}, domainerrors.ErrCandidateNotFound
	}
	return record, nil
}

func (tx *stagedTx) SaveCandidateRecord(_ context.Context, record entities.CandidateRecord) error {
	key := recordKey{electionKey: strings.TrimSpace(record.ElectionKey), candidateID: record.SequentialID}
	if _, ok := tx.lookupRecord(key); !ok {
		return domainerrors.ErrCandidateNotFound
	}
	tx.records[key] = record
	return nil
}

func (tx *stagedTx) CreateVoteReceipt(_ context.Context, receipt entities.VoteReceipt) error {
	key := receiptKey{electionKey: strings.TrimSpace(receipt.ElectionKey), voter: receipt.Voter}
	if _, ok := tx.receipts[key]; ok {
		return domainerrors.ErrRecordExists
	}
	if _, ok := tx.store.receipts[key]; ok {
		return domainerrors.ErrRecordExists
	}
	tx.receipts[key] = receipt
	return nil
}

func (tx *stagedTx) GetVoteReceipt(_ context.Context, electionKey string, voter entities.Identity) (entities.VoteReceipt, error) {
	key := receiptKey{electionKey: strings.TrimSpace(electionKey), voter: voter}
	if receipt, ok := tx.receipts[key]; ok {
		return receipt, nil
	}
	if receipt, ok := tx.store.receipts[key]; ok {
		return receipt, nil
	}
	return entities.VoteReceipt{}, domainerrors.ErrVoteReceiptNotFound
}

func (tx *stagedTx) AppendOutbox(_ context.Context, envelope ports.EventEnvelope) error {
	payload, err := json.Marshal(envelope)
	if err != nil {
		return err
	}
	outboxID := strings.TrimSpace(envelope.EventID)
	if outboxID == "" {
		outboxID = uuid.NewString()
	}
	if _, ok := tx.store.outbox[outboxID]; ok {
		return domainerrors.ErrConflict
	}
	createdAt := envelope.OccurredAt.UTC()
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	tx.outbox = append(tx.outbox, ports.OutboxMessage{
		OutboxID:     outboxID,
		EventType:    strings.TrimSpace(envelope.EventType),
		PartitionKey: strings.TrimSpace(envelope.PartitionKey),
		Payload:      payload,
		Status:       outbox.StatusPending,
		CreatedAt:    createdAt,
	})
	return nil
}

func (tx *stagedTx) lookupElection(key string) (entities.Election, bool) {
	if election, ok := tx.elections[key]; ok {
		return election, true
	}
	election, ok := tx.store.elections[key]
	return election, ok
}

func (tx *stagedTx) lookupRecord(key recordKey) (entities.CandidateRecord, bool) {
	if record, ok := tx.records[key]; ok {
		return record, true
	}
	record, ok := tx.store.records[key]
	return record, ok
}

func (tx *stagedTx) commit() {
	s := tx.store
	for key, election := range tx.elections {
		s.elections[key] = election
	}
	for key, identity := range tx.identities {
		s.identities[key] = identity
	}
	for key, record := range tx.records {
		s.records[key] = record
	}
	for key, receipt := range tx.receipts {
		s.receipts[key] = receipt
	}
	for _, message := range tx.outbox {
		s.outboxSeq++
		s.outbox[message.OutboxID] = outboxRecord{seq: s.outboxSeq, message: message}
	}
}
