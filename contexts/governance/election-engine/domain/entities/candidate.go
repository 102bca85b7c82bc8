package entities

import "time"

// CandidateIdentity marks that Owner applied to an election. Its existence is
// the "has applied" flag; it never changes after creation.
type CandidateIdentity struct {
	ElectionKey  string
	SequentialID uint64
	Owner        Identity
	AppliedAt    time.Time
}

// CandidateRecord carries the vote counter of a registered candidate.
type CandidateRecord struct {
	ElectionKey  string
	SequentialID uint64
	Owner        Identity
	Votes        uint64
	RegisteredAt time.Time
	UpdatedAt    time.Time
}

// VoteReceipt marks that Voter already voted in an election.
type VoteReceipt struct {
	ElectionKey string
	Voter       Identity
	CandidateID uint64
	CastAt      time.Time
}

// Standing is one ranked winner slot.
type Standing struct {
	Rank        int
	CandidateID uint64
	Votes       uint64
}

// ElectionResult is the immutable snapshot archived once an election closes.
type ElectionResult struct {
	ElectionKey     string
	WinnersCapacity uint8
	CandidateCount  uint64
	Standings       []Standing
	ClosedAt        time.Time
}
