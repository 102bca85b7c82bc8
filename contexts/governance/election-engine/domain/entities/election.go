package entities

import (
	"strings"
	"time"

	domainerrors "electoral/contexts/governance/election-engine/domain/errors"
)

type Stage string

const (
	StageApplication Stage = "application"
	StageVoting      Stage = "voting"
	StageClosed      Stage = "closed"
)

// ParseStage accepts the canonical lowercase stage names.
func ParseStage(value string) (Stage, error) {
	switch Stage(strings.ToLower(strings.TrimSpace(value))) {
	case StageApplication:
		return StageApplication, nil
	case StageVoting:
		return StageVoting, nil
	case StageClosed:
		return StageClosed, nil
	default:
		return "", domainerrors.ErrInvalidStage
	}
}

// Election holds the election-wide counters and the ranked winner board.
// WinnerIDs and WinnerVotes are index aligned and sorted by votes descending.
type Election struct {
	Key             string
	CandidateCount  uint64
	Stage           Stage
	Initiator       Identity
	WinnersCapacity uint8
	WinnerIDs       []uint64
	WinnerVotes     []uint64
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// NewElection starts an election in the application stage.
func NewElection(key string, initiator Identity, winnersCapacity uint8, now time.Time) (Election, error) {
	if winnersCapacity == 0 {
		return Election{}, domainerrors.ErrInvalidConfiguration
	}
	if strings.TrimSpace(key) == "" {
		return Election{}, domainerrors.ErrInvalidElectionKey
	}
	if initiator.IsZero() {
		return Election{}, domainerrors.ErrInvalidIdentity
	}
	return Election{
		Key:             strings.TrimSpace(key),
		CandidateCount:  0,
		Stage:           StageApplication,
		Initiator:       initiator,
		WinnersCapacity: winnersCapacity,
		WinnerIDs:       make([]uint64, 0, winnersCapacity),
		WinnerVotes:     make([]uint64, 0, winnersCapacity),
		CreatedAt:       now.UTC(),
		UpdatedAt:       now.UTC(),
	}, nil
}

// NextCandidateID reserves the next sequential id for an applicant.
func (e *Election) NextCandidateID() (uint64, error) {
	if e.Stage != StageApplication {
		return 0, domainerrors.ErrApplicationClosed
	}
	e.CandidateCount++
	return e.CandidateCount, nil
}

// AdvanceStage applies an initiator request to move the election forward.
func (e *Election) AdvanceStage(requested Stage, actor Identity) error {
	if actor != e.Initiator {
		return domainerrors.ErrPrivilegeDenied
	}
	if e.Stage == StageClosed {
		return domainerrors.ErrElectionClosed
	}
	switch requested {
	case StageVoting:
		return e.CloseApplication()
	case StageClosed:
		return e.CloseVoting()
	default:
		return domainerrors.ErrPrivilegeDenied
	}
}

// CloseApplication ends the application stage. When every candidate fits on
// the winner board no voting round is held and the election closes directly.
func (e *Election) CloseApplication() error {
	if e.Stage != StageApplication {
		return domainerrors.ErrStageMismatch
	}
	if e.CandidateCount > uint64(e.WinnersCapacity) {
		e.Stage = StageVoting
		return nil
	}
	// Votes only exist from the voting stage on, so every admitted slot starts at zero.
	for id := uint64(1); id <= e.CandidateCount; id++ {
		e.WinnerIDs = append(e.WinnerIDs, id)
		e.WinnerVotes = append(e.WinnerVotes, 0)
	}
	e.Stage = StageClosed
	return nil
}

// CloseVoting freezes the winner board.
func (e *Election) CloseVoting() error {
	if e.Stage != StageVoting {
		return domainerrors.ErrStageMismatch
	}
	e.Stage = StageClosed
	return nil
}

// Clone returns a copy that shares no slices with e.
func (e Election) Clone() Election {
	e.WinnerIDs = append(make([]uint64, 0, e.WinnersCapacity), e.WinnerIDs...)
	e.WinnerVotes = append(make([]uint64, 0, e.WinnersCapacity), e.WinnerVotes...)
	return e
}
