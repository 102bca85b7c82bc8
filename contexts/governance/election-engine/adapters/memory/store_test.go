package memory

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"electoral/contexts/governance/election-engine/domain/entities"
	domainerrors "electoral/contexts/governance/election-engine/domain/errors"
	"electoral/contexts/governance/election-engine/ports"

	"github.com/stretchr/testify/require"
)

func testIdentity(b byte) entities.Identity {
	var id entities.Identity
	for i := range id {
		id[i] = b
	}
	return id
}

func seedElection(t *testing.T, store *Store) entities.Election {
	t.Helper()
	election, err := entities.NewElection("e-1", testIdentity(1), 2, time.Now())
	require.NoError(t, err)
	require.NoError(t, store.WithinTransaction(context.Background(), func(tx ports.Tx) error {
		return tx.CreateElection(context.Background(), election)
	}))
	return election
}

func TestWithinTransactionDiscardsWritesOnError(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	election := seedElection(t, store)

	boom := errors.New("boom")
	err := store.WithinTransaction(ctx, func(tx ports.Tx) error {
		current, err := tx.GetElection(ctx, election.Key)
		require.NoError(t, err)
		_, err = current.NextCandidateID()
		require.NoError(t, err)
		require.NoError(t, tx.SaveElection(ctx, current))
		require.NoError(t, tx.CreateCandidateIdentity(ctx, entities.CandidateIdentity{
			ElectionKey:  election.Key,
			SequentialID: 1,
			Owner:        testIdentity(2),
		}))
		require.NoError(t, tx.AppendOutbox(ctx, ports.EventEnvelope{EventID: "evt-1", EventType: "candidate.applied"}))

		staged, err := tx.GetElection(ctx, election.Key)
		require.NoError(t, err)
		require.Equal(t, uint64(1), staged.CandidateCount)
		return boom
	})
	require.ErrorIs(t, err, boom)

	current, err := store.GetElection(ctx, election.Key)
	require.NoError(t, err)
	require.Zero(t, current.CandidateCount)
	_, err = store.GetCandidateIdentity(ctx, election.Key, testIdentity(2))
	require.ErrorIs(t, err, domainerrors.ErrCandidateIdentityNotFound)
	pending, err := store.ListPendingOutbox(ctx, 10)
	require.NoError(t, err)
	require.Empty(t, pending)
}

func TestCreateIsCreateIfAbsent(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	election := seedElection(t, store)

	err := store.WithinTransaction(ctx, func(tx ports.Tx) error {
		return tx.CreateElection(ctx, election)
	})
	require.ErrorIs(t, err, domainerrors.ErrRecordExists)

	receipt := entities.VoteReceipt{ElectionKey: election.Key, Voter: testIdentity(9), CandidateID: 1}
	require.NoError(t, store.WithinTransaction(ctx, func(tx ports.Tx) error {
		return tx.CreateVoteReceipt(ctx, receipt)
	}))
	err = store.WithinTransaction(ctx, func(tx ports.Tx) error {
		return tx.CreateVoteReceipt(ctx, receipt)
	})
	require.ErrorIs(t, err, domainerrors.ErrRecordExists)

	err = store.WithinTransaction(ctx, func(tx ports.Tx) error {
		record := entities.CandidateRecord{ElectionKey: election.Key, SequentialID: 3}
		require.NoError(t, tx.CreateCandidateRecord(ctx, record))
		return tx.CreateCandidateRecord(ctx, record)
	})
	require.ErrorIs(t, err, domainerrors.ErrRecordExists)
}

func TestSaveRequiresExistingRecord(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	err := store.WithinTransaction(ctx, func(tx ports.Tx) error {
		return tx.SaveCandidateRecord(ctx, entities.CandidateRecord{ElectionKey: "missing", SequentialID: 1})
	})
	require.ErrorIs(t, err, domainerrors.ErrCandidateNotFound)

	err = store.WithinTransaction(ctx, func(tx ports.Tx) error {
		return tx.SaveElection(ctx, entities.Election{Key: "missing"})
	})
	require.ErrorIs(t, err, domainerrors.ErrElectionNotFound)
}

func TestReadsAreIsolatedFromCallerMutation(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	election := seedElection(t, store)
	require.NoError(t, store.WithinTransaction(ctx, func(tx ports.Tx) error {
		current, err := tx.GetElection(ctx, election.Key)
		if err != nil {
			return err
		}
		current.RecordVote(1, 1)
		return tx.SaveElection(ctx, current)
	}))

	first, err := store.GetElection(ctx, election.Key)
	require.NoError(t, err)
	first.WinnerVotes[0] = 100

	second, err := store.GetElection(ctx, election.Key)
	require.NoError(t, err)
	require.Equal(t, []uint64{1}, second.WinnerVotes)
}

func TestOutboxListsInCommitOrder(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	at := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for _, id := range []string{"c", "a", "b"} {
		require.NoError(t, store.WithinTransaction(ctx, func(tx ports.Tx) error {
			return tx.AppendOutbox(ctx, ports.EventEnvelope{EventID: id, EventType: "vote.cast", OccurredAt: at})
		}))
	}

	pending, err := store.ListPendingOutbox(ctx, 2)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	require.Equal(t, "c", pending[0].OutboxID)
	require.Equal(t, "a", pending[1].OutboxID)

	var envelope ports.EventEnvelope
	require.NoError(t, json.Unmarshal(pending[0].Payload, &envelope))
	require.Equal(t, "vote.cast", envelope.EventType)

	require.NoError(t, store.MarkOutboxPublished(ctx, "c", at))
	pending, err = store.ListPendingOutbox(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	require.Equal(t, "a", pending[0].OutboxID)

	require.ErrorIs(t, store.MarkOutboxPublished(ctx, "missing", at), domainerrors.ErrConflict)
	err = store.WithinTransaction(ctx, func(tx ports.Tx) error {
		return tx.AppendOutbox(ctx, ports.EventEnvelope{EventID: "a"})
	})
	require.ErrorIs(t, err, domainerrors.ErrConflict)
}

func TestSaveResultIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	result := entities.ElectionResult{
		ElectionKey: "e-1",
		Standings:   []entities.Standing{{Rank: 1, CandidateID: 2, Votes: 5}},
	}
	created, err := store.SaveResult(ctx, result)
	require.NoError(t, err)
	require.True(t, created)

	result.Standings[0].Votes = 99
	created, err = store.SaveResult(ctx, result)
	require.NoError(t, err)
	require.False(t, created)

	stored, err := store.GetResult(ctx, "e-1")
	require.NoError(t, err)
	require.Equal(t, uint64(5), stored.Standings[0].Votes)

	_, err = store.GetResult(ctx, "e-2")
	require.ErrorIs(t, err, domainerrors.ErrResultNotFound)
}
