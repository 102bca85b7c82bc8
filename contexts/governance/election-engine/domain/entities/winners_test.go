package entities

import (
	"math/rand"
	"testing"

	domainerrors "electoral/contexts/governance/election-engine/domain/errors"

	"github.com/stretchr/testify/require"
)

func TestRecordVoteScenarioTopTwoOfThree(t *testing.T) {
	election := newTestElection(t, 2)
	election.Stage = StageVoting

	totals := map[uint64]uint64{}
	cast := func(id uint64) {
		totals[id]++
		election.RecordVote(id, totals[id])
		require.NoError(t, election.Validate())
	}
	// id1 x2, id2 x1, id3 x3, walked in id order per round.
	cast(1)
	cast(2)
	cast(3)
	cast(1)
	cast(3)
	cast(3)

	require.Equal(t, []uint64{3, 1}, election.WinnerIDs)
	require.Equal(t, []uint64{3, 2}, election.WinnerVotes)
}

func TestRecordVoteTieKeepsIncumbent(t *testing.T) {
	election := newTestElection(t, 1)
	election.RecordVote(1, 1)
	election.RecordVote(2, 1)
	require.Equal(t, []uint64{1}, election.WinnerIDs)

	election.RecordVote(2, 2)
	require.Equal(t, []uint64{2}, election.WinnerIDs)
	require.Equal(t, []uint64{2}, election.WinnerVotes)
}

func TestRecordVoteTiedNeighbourKeepsRank(t *testing.T) {
	election := newTestElection(t, 3)
	election.RecordVote(1, 2)
	election.RecordVote(2, 1)
	election.RecordVote(2, 2)
	require.Equal(t, []uint64{1, 2}, election.WinnerIDs)
	require.Equal(t, []uint64{2, 2}, election.WinnerVotes)
}

func TestRecordVoteAppendsBelowCapacity(t *testing.T) {
	election := newTestElection(t, 3)
	election.RecordVote(4, 1)
	election.RecordVote(9, 1)
	require.Equal(t, []uint64{4, 9}, election.WinnerIDs)
	require.Equal(t, []uint64{1, 1}, election.WinnerVotes)
}

// A winner's slot takes the caller's running total; it used to be bumped by
// one on top of the total, double counting the vote.
func TestRecordVoteAssignsTotalForExistingWinner(t *testing.T) {
	election := newTestElection(t, 2)
	election.RecordVote(7, 5)
	election.RecordVote(7, 9)
	require.Equal(t, []uint64{9}, election.WinnerVotes)

	election.RecordVote(8, 6)
	election.RecordVote(8, 7)
	require.Equal(t, []uint64{7, 8}, election.WinnerIDs)
	require.Equal(t, []uint64{9, 7}, election.WinnerVotes)
}

func TestRecordVoteDisplacesLastOnlyWhenStrictlyGreater(t *testing.T) {
	election := newTestElection(t, 2)
	election.RecordVote(1, 3)
	election.RecordVote(2, 2)

	election.RecordVote(3, 2)
	require.Equal(t, []uint64{1, 2}, election.WinnerIDs)

	election.RecordVote(3, 3)
	require.Equal(t, []uint64{1, 3}, election.WinnerIDs)
	require.Equal(t, []uint64{3, 3}, election.WinnerVotes)
}

func TestStandingsAreRanked(t *testing.T) {
	election := newTestElection(t, 2)
	election.RecordVote(5, 1)
	election.RecordVote(6, 1)
	election.RecordVote(6, 2)
	require.Equal(t, []Standing{
		{Rank: 1, CandidateID: 6, Votes: 2},
		{Rank: 2, CandidateID: 5, Votes: 1},
	}, election.Standings())
	require.True(t, election.IsWinner(5))
	require.False(t, election.IsWinner(7))
}

func TestValidateDetectsBrokenBoards(t *testing.T) {
	election := newTestElection(t, 2)

	broken := election.Clone()
	broken.WinnerIDs = []uint64{1, 2}
	broken.WinnerVotes = []uint64{1}
	require.Error(t, broken.Validate())

	broken = election.Clone()
	broken.WinnerIDs = []uint64{1, 1}
	broken.WinnerVotes = []uint64{2, 1}
	require.Error(t, broken.Validate())

	broken = election.Clone()
	broken.WinnerIDs = []uint64{1, 2}
	broken.WinnerVotes = []uint64{1, 2}
	require.Error(t, broken.Validate())

	broken = election.Clone()
	broken.WinnerIDs = []uint64{1, 2, 3}
	broken.WinnerVotes = []uint64{3, 2, 1}
	require.Error(t, broken.Validate())
}

func TestRecordVoteRandomStreamsKeepTopSet(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for round := 0; round < 200; round++ {
		capacity := uint8(1 + rng.Intn(6))
		candidates := 1 + rng.Intn(12)
		election := newTestElection(t, capacity)
		election.Stage = StageVoting

		totals := make(map[uint64]uint64, candidates)
		for vote := 0; vote < 150; vote++ {
			id := uint64(1 + rng.Intn(candidates))
			totals[id]++
			election.RecordVote(id, totals[id])

			require.NoError(t, election.Validate())
			for i, winner := range election.WinnerIDs {
				require.Equal(t, totals[winner], election.WinnerVotes[i])
			}
			if len(election.WinnerIDs) < int(capacity) {
				require.Len(t, election.WinnerIDs, len(totals))
				continue
			}
			floor := election.WinnerVotes[len(election.WinnerVotes)-1]
			for id, total := range totals {
				if !election.IsWinner(id) {
					require.LessOrEqual(t, total, floor, "candidate %d outside the board", id)
				}
			}
		}
	}
}

func TestResultRequiresClosedElection(t *testing.T) {
	election := newTestElection(t, 2)
	election.Stage = StageVoting
	election.RecordVote(4, 1)
	election.RecordVote(7, 2)

	_, err := election.Result()
	require.ErrorIs(t, err, domainerrors.ErrResultNotFound)

	election.Stage = StageClosed
	result, err := election.Result()
	require.NoError(t, err)
	require.Equal(t, election.Key, result.ElectionKey)
	require.Equal(t, []Standing{
		{Rank: 1, CandidateID: 7, Votes: 2},
		{Rank: 2, CandidateID: 4, Votes: 1},
	}, result.Standings)
	require.True(t, result.ClosedAt.Equal(election.UpdatedAt))
}
