package postgresadapter

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"electoral/contexts/governance/election-engine/domain/entities"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
)

func TestElectionModelRoundTrip(t *testing.T) {
	var initiator entities.Identity
	initiator[31] = 7
	now := time.Date(2026, 5, 1, 9, 30, 0, 0, time.UTC)
	election, err := entities.NewElection("e-1", initiator, 3, now)
	require.NoError(t, err)
	election.Stage = entities.StageVoting
	election.CandidateCount = 5
	election.RecordVote(4, 2)
	election.RecordVote(1, 3)

	row, err := electionModelFromEntity(election)
	require.NoError(t, err)
	require.JSONEq(t, `[1,4]`, string(row.WinnerIDs))
	require.JSONEq(t, `[3,2]`, string(row.WinnerVotes))

	back, err := row.toEntity()
	require.NoError(t, err)
	require.Equal(t, election.WinnerIDs, back.WinnerIDs)
	require.Equal(t, election.WinnerVotes, back.WinnerVotes)
	require.Equal(t, election.Initiator, back.Initiator)
	require.Equal(t, election.Stage, back.Stage)
	require.Equal(t, uint8(3), back.WinnersCapacity)
}

func TestElectionModelEmptyBoardEncodesArrays(t *testing.T) {
	var initiator entities.Identity
	initiator[0] = 1
	election, err := entities.NewElection("e-1", initiator, 1, time.Now())
	require.NoError(t, err)
	election.WinnerIDs = nil
	election.WinnerVotes = nil

	row, err := electionModelFromEntity(election)
	require.NoError(t, err)
	require.Equal(t, "[]", string(row.WinnerIDs))
	require.Equal(t, "[]", string(row.WinnerVotes))
}

func TestElectionModelRejectsCorruptBoard(t *testing.T) {
	var initiator entities.Identity
	initiator[0] = 1
	row := electionModel{
		ElectionKey:     "e-1",
		Stage:           "voting",
		Initiator:       initiator.String(),
		WinnersCapacity: 2,
		WinnerIDs:       []byte(`[1,2]`),
		WinnerVotes:     []byte(`[1,5]`),
	}
	_, err := row.toEntity()
	require.Error(t, err)
}

func TestResultModelRoundTrip(t *testing.T) {
	result := entities.ElectionResult{
		ElectionKey:     "e-1",
		WinnersCapacity: 2,
		CandidateCount:  3,
		Standings: []entities.Standing{
			{Rank: 1, CandidateID: 3, Votes: 3},
			{Rank: 2, CandidateID: 1, Votes: 2},
		},
		ClosedAt: time.Date(2026, 5, 2, 0, 0, 0, 0, time.UTC),
	}
	row, err := electionResultModelFromEntity(result)
	require.NoError(t, err)
	back, err := row.toEntity()
	require.NoError(t, err)
	require.Equal(t, result, back)
}

func TestIsUniqueViolation(t *testing.T) {
	require.True(t, isUniqueViolation(fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})))
	require.False(t, isUniqueViolation(&pgconn.PgError{Code: "40001"}))
	require.False(t, isUniqueViolation(errors.New("plain")))
}
