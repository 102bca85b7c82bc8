package postgresadapter

import (
	"encoding/json"
	"strings"
	"time"

	"electoral/contexts/governance/election-engine/domain/entities"
)

type electionModel struct {
	ElectionKey     string    `gorm:"column:election_key;primaryKey"`
	CandidateCount  uint64    `gorm:"column:candidate_count;not null"`
	Stage           string    `gorm:"column:stage;not null"`
	Initiator       string    `gorm:"column:initiator;size:64;not null"`
	WinnersCapacity uint8     `gorm:"column:winners_capacity;not null"`
	WinnerIDs       []byte    `gorm:"column:winner_ids;type:jsonb;not null"`
	WinnerVotes     []byte    `gorm:"column:winner_votes;type:jsonb;not null"`
	CreatedAt       time.Time `gorm:"column:created_at"`
	UpdatedAt       time.Time `gorm:"column:updated_at"`
}

func (electionModel) TableName() string {
	return "elections"
}

func electionModelFromEntity(election entities.Election) (electionModel, error) {
	ids, err := json.Marshal(nonNil(election.WinnerIDs))
	if err != nil {
		return electionModel{}, err
	}
	votes, err := json.Marshal(nonNil(election.WinnerVotes))
	if err != nil {
		return electionModel{}, err
	}
	return electionModel{
		ElectionKey:     strings.TrimSpace(election.Key),
		CandidateCount:  election.CandidateCount,
		Stage:           string(election.Stage),
		Initiator:       election.Initiator.String(),
		WinnersCapacity: election.WinnersCapacity,
		WinnerIDs:       ids,
		WinnerVotes:     votes,
		CreatedAt:       election.CreatedAt.UTC(),
		UpdatedAt:       election.UpdatedAt.UTC(),
	}, nil
}

func (m electionModel) toEntity() (entities.Election, error) {
	initiator, err := entities.ParseIdentity(m.Initiator)
	if err != nil {
		return entities.Election{}, err
	}
	stage, err := entities.ParseStage(m.Stage)
	if err != nil {
		return entities.Election{}, err
	}
	election := entities.Election{
		Key:             m.ElectionKey,
		CandidateCount:  m.CandidateCount,
		Stage:           stage,
		Initiator:       initiator,
		WinnersCapacity: m.WinnersCapacity,
		WinnerIDs:       make([]uint64, 0, m.WinnersCapacity),
		WinnerVotes:     make([]uint64, 0, m.WinnersCapacity),
		CreatedAt:       m.CreatedAt.UTC(),
		UpdatedAt:       m.UpdatedAt.UTC(),
	}
	if err := json.Unmarshal(m.WinnerIDs, &election.WinnerIDs); err != nil {
		return entities.Election{}, err
	}
	if err := json.Unmarshal(m.WinnerVotes, &election.WinnerVotes); err != nil {
		return entities.Election{}, err
	}
	return election, election.Validate()
}

type candidateIdentityModel struct {
	ElectionKey  string    `gorm:"column:election_key;primaryKey;uniqueIndex:idx_candidate_identity_sequence,priority:1"`
	Owner        string    `gorm:"column:owner;primaryKey;size:64"`
	SequentialID uint64    `gorm:"column:sequential_id;not null;uniqueIndex:idx_candidate_identity_sequence,priority:2"`
	AppliedAt    time.Time `gorm:"column:applied_at"`
}

func (candidateIdentityModel) TableName() string {
	return "election_candidate_identities"
}

func (m candidateIdentityModel) toEntity() (entities.CandidateIdentity, error) {
	owner, err := entities.ParseIdentity(m.Owner)
	if err != nil {
		return entities.CandidateIdentity{}, err
	}
	return entities.CandidateIdentity{
		ElectionKey:  m.ElectionKey,
		SequentialID: m.SequentialID,
		Owner:        owner,
		AppliedAt:    m.AppliedAt.UTC(),
	}, nil
}

type candidateRecordModel struct {
	ElectionKey  string    `gorm:"column:election_key;primaryKey"`
	CandidateID  uint64    `gorm:"column:candidate_id;primaryKey;autoIncrement:false"`
	Owner        string    `gorm:"column:owner;size:64;not null"`
	Votes        uint64    `gorm:"column:votes;not null"`
	RegisteredAt time.Time `gorm:"column:registered_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at"`
}

func (candidateRecordModel) TableName() string {
	return "election_candidates"
}

func candidateRecordModelFromEntity(record entities.CandidateRecord) candidateRecordModel {
	return candidateRecordModel{
		ElectionKey:  strings.TrimSpace(record.ElectionKey),
		CandidateID:  record.SequentialID,
		Owner:        record.Owner.String(),
		Votes:        record.Votes,
		RegisteredAt: record.RegisteredAt.UTC(),
		UpdatedAt:    record.UpdatedAt.UTC(),
	}
}

func (m candidateRecordModel) toEntity() (entities.CandidateRecord, error) {
	owner, err := entities.ParseIdentity(m.Owner)
	if err != nil {
		return entities.CandidateRecord{}, err
	}
	return entities.CandidateRecord{
		ElectionKey:  m.ElectionKey,
		SequentialID: m.CandidateID,
		Owner:        owner,
		Votes:        m.Votes,
		RegisteredAt: m.RegisteredAt.UTC(),
		UpdatedAt:    m.UpdatedAt.UTC(),
	}, nil
}

type voteReceiptModel struct {
	ElectionKey string    `gorm:"column:election_key;primaryKey"`
	Voter       string    `gorm:"column:voter;primaryKey;size:64"`
	CandidateID uint64    `gorm:"column:candidate_id;not null"`
	CastAt      time.Time `gorm:"column:cast_at"`
}

func (voteReceiptModel) TableName() string {
	return "election_vote_receipts"
}

func (m voteReceiptModel) toEntity() (entities.VoteReceipt, error) {
	voter, err := entities.ParseIdentity(m.Voter)
	if err != nil {
		return entities.VoteReceipt{}, err
	}
	return entities.VoteReceipt{
		ElectionKey: m.ElectionKey,
		Voter:       voter,
		CandidateID: m.CandidateID,
		CastAt:      m.CastAt.UTC(),
	}, nil
}

type outboxModel struct {
	OutboxID     string     `gorm:"column:outbox_id;primaryKey"`
	Seq          int64      `gorm:"column:seq;autoIncrement"`
	EventType    string     `gorm:"column:event_type"`
	PartitionKey string     `gorm:"column:partition_key"`
	Payload      []byte     `gorm:"column:payload"`
	Status       string     `gorm:"column:status;index"`
	CreatedAt    time.Time  `gorm:"column:created_at"`
	PublishedAt  *time.Time `gorm:"column:published_at"`
}

func (outboxModel) TableName() string {
	return "election_outbox"
}

type standingColumn struct {
	Rank        int    `json:"rank"`
	CandidateID uint64 `json:"candidate_id"`
	Votes       uint64 `json:"votes"`
}

type electionResultModel struct {
	ElectionKey     string    `gorm:"column:election_key;primaryKey"`
	WinnersCapacity uint8     `gorm:"column:winners_capacity"`
	CandidateCount  uint64    `gorm:"column:candidate_count"`
	Standings       []byte    `gorm:"column:standings;type:jsonb"`
	ClosedAt        time.Time `gorm:"column:closed_at"`
}

func (electionResultModel) TableName() string {
	return "election_results"
}

func electionResultModelFromEntity(result entities.ElectionResult) (electionResultModel, error) {
	columns := make([]standingColumn, 0, len(result.Standings))
	for _, standing := range result.Standings {
		columns = append(columns, standingColumn(standing))
	}
	standings, err := json.Marshal(columns)
	if err != nil {
		return electionResultModel{}, err
	}
	return electionResultModel{
		ElectionKey:     strings.TrimSpace(result.ElectionKey),
		WinnersCapacity: result.WinnersCapacity,
		CandidateCount:  result.CandidateCount,
		Standings:       standings,
		ClosedAt:        result.ClosedAt.UTC(),
	}, nil
}

func (m electionResultModel) toEntity() (entities.ElectionResult, error) {
	var columns []standingColumn
	if err := json.Unmarshal(m.Standings, &columns); err != nil {
		return entities.ElectionResult{}, err
	}
	standings := make([]entities.Standing, 0, len(columns))
	for _, column := range columns {
		standings = append(standings, entities.Standing(column))
	}
	return entities.ElectionResult{
		ElectionKey:     m.ElectionKey,
		WinnersCapacity: m.WinnersCapacity,
		CandidateCount:  m.CandidateCount,
		Standings:       standings,
		ClosedAt:        m.ClosedAt.UTC(),
	}, nil
}

func nonNil(values []uint64) []uint64 {
	if values == nil {
		return []uint64{}
	}
	return values
}
