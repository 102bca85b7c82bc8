package boltadapter

import (
	"time"

	"electoral/contexts/governance/election-engine/domain/entities"
)

type electionRecord struct {
	Key             string    `json:"key"`
	CandidateCount  uint64    `json:"candidate_count"`
	Stage           string    `json:"stage"`
	Initiator       string    `json:"initiator"`
	WinnersCapacity uint8     `json:"winners_capacity"`
	WinnerIDs       []uint64  `json:"winner_ids"`
	WinnerVotes     []uint64  `json:"winner_votes"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func electionRecordFromEntity(election entities.Election) electionRecord {
	return electionRecord{
		Key:             election.Key,
		CandidateCount:  election.CandidateCount,
		Stage:           string(election.Stage),
		Initiator:       election.Initiator.String(),
		WinnersCapacity: election.WinnersCapacity,
		WinnerIDs:       append([]uint64{}, election.WinnerIDs...),
		WinnerVotes:     append([]uint64{}, election.WinnerVotes...),
		CreatedAt:       election.CreatedAt.UTC(),
		UpdatedAt:       election.UpdatedAt.UTC(),
	}
}

func (r electionRecord) toEntity() (entities.Election, error) {
	initiator, err := entities.ParseIdentity(r.Initiator)
	if err != nil {
		return entities.Election{}, err
	}
	stage, err := entities.ParseStage(r.Stage)
	if err != nil {
		return entities.Election{}, err
	}
	election := entities.Election{
		Key:             r.Key,
		CandidateCount:  r.CandidateCount,
		Stage:           stage,
		Initiator:       initiator,
		WinnersCapacity: r.WinnersCapacity,
		WinnerIDs:       append(make([]uint64, 0, r.WinnersCapacity), r.WinnerIDs...),
		WinnerVotes:     append(make([]uint64, 0, r.WinnersCapacity), r.WinnerVotes...),
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
	return election, election.Validate()
}

type candidateIdentityRecord struct {
	ElectionKey  string    `json:"election_key"`
	SequentialID uint64    `json:"sequential_id"`
	Owner        string    `json:"owner"`
	AppliedAt    time.Time `json:"applied_at"`
}

func (r candidateIdentityRecord) toEntity() (entities.CandidateIdentity, error) {
	owner, err := entities.ParseIdentity(r.Owner)
	if err != nil {
		return entities.CandidateIdentity{}, err
	}
	return entities.CandidateIdentity{
		ElectionKey:  r.ElectionKey,
		SequentialID: r.SequentialID,
		Owner:        owner,
		AppliedAt:    r.AppliedAt,
	}, nil
}

type candidateRecord struct {
	ElectionKey  string    `json:"election_key"`
	SequentialID uint64    `json:"sequential_id"`
	Owner        string    `json:"owner"`
	Votes        uint64    `json:"votes"`
	RegisteredAt time.Time `json:"registered_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func candidateRecordFromEntity(record entities.CandidateRecord) candidateRecord {
	return candidateRecord{
		ElectionKey:  record.ElectionKey,
		SequentialID: record.SequentialID,
		Owner:        record.Owner.String(),
		Votes:        record.Votes,
		RegisteredAt: record.RegisteredAt.UTC(),
		UpdatedAt:    record.UpdatedAt.UTC(),
	}
}

func (r candidateRecord) toEntity() (entities.CandidateRecord, error) {
	owner, err := entities.ParseIdentity(r.Owner)
	if err != nil {
		return entities.CandidateRecord{}, err
	}
	return entities.CandidateRecord{
		ElectionKey:  r.ElectionKey,
		SequentialID: r.SequentialID,
		Owner:        owner,
		Votes:        r.Votes,
		RegisteredAt: r.RegisteredAt,
		UpdatedAt:    r.UpdatedAt,
	}, nil
}

type voteReceiptRecord struct {
	ElectionKey string    `json:"election_key"`
	Voter       string    `json:"voter"`
	CandidateID uint64    `json:"candidate_id"`
	CastAt      time.Time `json:"cast_at"`
}

func (r voteReceiptRecord) toEntity() (entities.VoteReceipt, error) {
	voter, err := entities.ParseIdentity(r.Voter)
	if err != nil {
		return entities.VoteReceipt{}, err
	}
	return entities.VoteReceipt{
		ElectionKey: r.ElectionKey,
		Voter:       voter,
		CandidateID: r.CandidateID,
		CastAt:      r.CastAt,
	}, nil
}

type outboxRecord struct {
	OutboxID     string     `json:"outbox_id"`
	EventType    string     `json:"event_type"`
	PartitionKey string     `json:"partition_key"`
	Payload      []byte     `json:"payload"`
	Status       string     `json:"status"`
	CreatedAt    time.Time  `json:"created_at"`
	PublishedAt  *time.Time `json:"published_at,omitempty"`
}

type standingRecord struct {
	Rank        int    `json:"rank"`
	CandidateID uint64 `json:"candidate_id"`
	Votes       uint64 `json:"votes"`
}

type resultRecord struct {
	ElectionKey     string           `json:"election_key"`
	WinnersCapacity uint8            `json:"winners_capacity"`
	CandidateCount  uint64           `json:"candidate_count"`
	Standings       []standingRecord `json:"standings"`
	ClosedAt        time.Time        `json:"closed_at"`
}
