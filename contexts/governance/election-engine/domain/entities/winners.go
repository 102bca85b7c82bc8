package entities

import (
	"errors"
	"fmt"

	domainerrors "electoral/contexts/governance/election-engine/domain/errors"
)

var errBoardInvariant = errors.New("winner board invariant violated")

// RecordVote folds a candidate's new vote total into the winner board.
//
// votes is the candidate's total after the increment. Every call changes one
// candidate by exactly one vote, so at most one slot can be out of order and a
// single pass of adjacent swaps toward the head restores the ordering. Strict
// comparisons keep the incumbent ahead on ties.
func (e *Election) RecordVote(id uint64, votes uint64) {
	j := e.winnerIndex(id)
	switch {
	case j >= 0:
		e.WinnerVotes[j] = votes
	case len(e.WinnerIDs) < int(e.WinnersCapacity):
		e.WinnerIDs = append(e.WinnerIDs, id)
		e.WinnerVotes = append(e.WinnerVotes, votes)
		j = len(e.WinnerIDs) - 1
	default:
		last := int(e.WinnersCapacity) - 1
		if votes <= e.WinnerVotes[last] {
			return
		}
		e.WinnerIDs[last] = id
		e.WinnerVotes[last] = votes
		j = last
	}

	for j > 0 && e.WinnerVotes[j] > e.WinnerVotes[j-1] {
		e.WinnerVotes[j], e.WinnerVotes[j-1] = e.WinnerVotes[j-1], e.WinnerVotes[j]
		e.WinnerIDs[j], e.WinnerIDs[j-1] = e.WinnerIDs[j-1], e.WinnerIDs[j]
		j--
	}
}

// IsWinner reports whether id currently holds a winner slot.
func (e Election) IsWinner(id uint64) bool {
	return e.winnerIndex(id) >= 0
}

// Standings returns the winner board as 1-based ranked slots.
func (e Election) Standings() []Standing {
	items := make([]Standing, 0, len(e.WinnerIDs))
	for i, id := range e.WinnerIDs {
		items = append(items, Standing{
			Rank:        i + 1,
			CandidateID: id,
			Votes:       e.WinnerVotes[i],
		})
	}
	return items
}

// Result freezes the board of a closed election. The last update of a
// closed election is the close itself, so UpdatedAt is the close time.
func (e Election) Result() (ElectionResult, error) {
	if e.Stage != StageClosed {
		return ElectionResult{}, domainerrors.ErrResultNotFound
	}
	return ElectionResult{
		ElectionKey:     e.Key,
		WinnersCapacity: e.WinnersCapacity,
		CandidateCount:  e.CandidateCount,
		Standings:       e.Standings(),
		ClosedAt:        e.UpdatedAt.UTC(),
	}, nil
}

// Validate checks the winner board invariants.
func (e Election) Validate() error {
	if len(e.WinnerIDs) != len(e.WinnerVotes) {
		return fmt.Errorf("%w: %d ids, %d vote counts", errBoardInvariant, len(e.WinnerIDs), len(e.WinnerVotes))
	}
	if len(e.WinnerIDs) > int(e.WinnersCapacity) {
		return fmt.Errorf("%w: %d slots over capacity %d", errBoardInvariant, len(e.WinnerIDs), e.WinnersCapacity)
	}
	seen := make(map[uint64]struct{}, len(e.WinnerIDs))
	for i, id := range e.WinnerIDs {
		if _, ok := seen[id]; ok {
			return fmt.Errorf("%w: duplicate candidate %d", errBoardInvariant, id)
		}
		seen[id] = struct{}{}
		if i > 0 && e.WinnerVotes[i] > e.WinnerVotes[i-1] {
			return fmt.Errorf("%w: slot %d outranks slot %d", errBoardInvariant, i, i-1)
		}
	}
	return nil
}

// winnerIndex scans the board; capacity is bounded by a uint8.
func (e Election) winnerIndex(id uint64) int {
	for i, winner := range e.WinnerIDs {
		if winner == id {
			return i
		}
	}
	return -1
}
