package boltadapter

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"electoral/contexts/governance/election-engine/domain/entities"
	domainerrors "electoral/contexts/governance/election-engine/domain/errors"
	"electoral/contexts/governance/election-engine/ports"

	"github.com/stretchr/testify/require"
	bolt "go.etcd.io/bbolt"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	db, err := bolt.Open(filepath.Join(t.TempDir(), "electoral.db"), 0o600, &bolt.Options{Timeout: time.Second})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	store, err := NewStore(db, nil)
	require.NoError(t, err)
	return store
}

func testIdentity(b byte) entities.Identity {
	var id entities.Identity
	for i := range id {
		id[i] = b
	}
	return id
}

func TestStoreRoundTripsRecords(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	election, err := entities.NewElection("e-1", testIdentity(1), 3, now)
	require.NoError(t, err)
	election.Stage = entities.StageVoting
	election.CandidateCount = 2
	election.RecordVote(2, 4)
	election.RecordVote(1, 1)

	require.NoError(t, store.WithinTransaction(ctx, func(tx ports.Tx) error {
		if err := tx.CreateElection(ctx, election); err != nil {
			return err
		}
		if err := tx.CreateCandidateIdentity(ctx, entities.CandidateIdentity{
			ElectionKey: "e-1", SequentialID: 2, Owner: testIdentity(2), AppliedAt: now,
		}); err != nil {
			return err
		}
		if err := tx.CreateCandidateRecord(ctx, entities.CandidateRecord{
			ElectionKey: "e-1", SequentialID: 2, Owner: testIdentity(2), Votes: 4, RegisteredAt: now, UpdatedAt: now,
		}); err != nil {
			return err
		}
		return tx.CreateVoteReceipt(ctx, entities.VoteReceipt{
			ElectionKey: "e-1", Voter: testIdentity(9), CandidateID: 2, CastAt: now,
		})
	}))

	stored, err := store.GetElection(ctx, "e-1")
	require.NoError(t, err)
	require.Equal(t, entities.StageVoting, stored.Stage)
	require.Equal(t, []uint64{2, 1}, stored.WinnerIDs)
	require.Equal(t, []uint64{4, 1}, stored.WinnerVotes)
	require.Equal(t, testIdentity(1), stored.Initiator)
	require.True(t, stored.CreatedAt.Equal(now))

	identity, err := store.GetCandidateIdentity(ctx, "e-1", testIdentity(2))
	require.NoError(t, err)
	require.Equal(t, uint64(2), identity.SequentialID)

	record, err := store.GetCandidateRecord(ctx, "e-1", 2)
	require.NoError(t, err)
	require.Equal(t, uint64(4), record.Votes)
	require.Equal(t, testIdentity(2), record.Owner)

	receipt, err := store.GetVoteReceipt(ctx, "e-1", testIdentity(9))
	require.NoError(t, err)
	require.Equal(t, uint64(2), receipt.CandidateID)

	_, err = store.GetCandidateRecord(ctx, "e-2", 2)
	require.ErrorIs(t, err, domainerrors.ErrCandidateNotFound)
	_, err = store.GetVoteReceipt(ctx, "e-1", testIdentity(8))
	require.ErrorIs(t, err, domainerrors.ErrVoteReceiptNotFound)
	_, err = store.GetElection(ctx, "e-2")
	require.ErrorIs(t, err, domainerrors.ErrElectionNotFound)
}

func TestStoreRollsBackFailedTransaction(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)
	election, err := entities.NewElection("e-1", testIdentity(1), 1, time.Now())
	require.NoError(t, err)
	require.NoError(t, store.WithinTransaction(ctx, func(tx ports.Tx) error {
		return tx.CreateElection(ctx, election)
	}))

	boom := errors.New("boom")
	err = store.WithinTransaction(ctx, func(tx ports.Tx) error {
		current, err := tx.GetElection(ctx, "e-1")
		if err != nil {
			return err
		}
		if _, err := current.NextCandidateID(); err != nil {
			return err
		}
		if err := tx.SaveElection(ctx, current); err != nil {
			return err
		}
		if err := tx.AppendOutbox(ctx, ports.EventEnvelope{EventID: "evt-1", EventType: "candidate.applied"}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	current, err := store.GetElection(ctx, "e-1")
	require.NoError(t, err)
	require.Zero(t, current.CandidateCount)
	pending, err := store.ListPendingOutbox(ctx, 10)
	require.NoError(t, err)
	require.Empty(t, pending)
}

func TestStoreCreateIfAbsent(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)
	identity := entities.CandidateIdentity{ElectionKey: "e-1", SequentialID: 1, Owner: testIdentity(3)}
	require.NoError(t, store.WithinTransaction(ctx, func(tx ports.Tx) error {
		return tx.CreateCandidateIdentity(ctx, identity)
	}))
	err := store.WithinTransaction(ctx, func(tx ports.Tx) error {
		return tx.CreateCandidateIdentity(ctx, identity)
	})
	require.ErrorIs(t, err, domainerrors.ErrRecordExists)

	// the same owner may apply to another election
	identity.ElectionKey = "e-2"
	require.NoError(t, store.WithinTransaction(ctx, func(tx ports.Tx) error {
		return tx.CreateCandidateIdentity(ctx, identity)
	}))
}

func TestStoreOutboxLifecycle(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, store.WithinTransaction(ctx, func(tx ports.Tx) error {
		for _, id := range []string{"z", "y", "x"} {
			if err := tx.AppendOutbox(ctx, ports.EventEnvelope{EventID: id, EventType: "vote.cast", OccurredAt: at}); err != nil {
				return err
			}
		}
		return nil
	}))

	pending, err := store.ListPendingOutbox(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 3)
	require.Equal(t, []string{"z", "y", "x"}, []string{pending[0].OutboxID, pending[1].OutboxID, pending[2].OutboxID})

	require.NoError(t, store.MarkOutboxPublished(ctx, "y", at))
	pending, err = store.ListPendingOutbox(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	require.Equal(t, "x", pending[1].OutboxID)
	require.ErrorIs(t, store.MarkOutboxPublished(ctx, "nope", at), domainerrors.ErrConflict)
}

func TestStoreResults(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)
	result := entities.ElectionResult{
		ElectionKey:     "e-1",
		WinnersCapacity: 1,
		CandidateCount:  4,
		Standings:       []entities.Standing{{Rank: 1, CandidateID: 3, Votes: 10}},
		ClosedAt:        time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
	}
	created, err := store.SaveResult(ctx, result)
	require.NoError(t, err)
	require.True(t, created)
	created, err = store.SaveResult(ctx, result)
	require.NoError(t, err)
	require.False(t, created)

	stored, err := store.GetResult(ctx, "e-1")
	require.NoError(t, err)
	require.Equal(t, result.Standings, stored.Standings)
	require.True(t, stored.ClosedAt.Equal(result.ClosedAt))

	_, err = store.GetResult(ctx, "e-9")
	require.ErrorIs(t, err, domainerrors.ErrResultNotFound)
}

func TestDerivedKeysSeparateTuples(t *testing.T) {
	owner := testIdentity(5)
	require.Len(t, candidateIdentityKey(owner, "e-1"), 32)
	require.False(t, bytes.Equal(candidateIdentityKey(owner, "e-1"), candidateIdentityKey(owner, "e-2")))
	require.False(t, bytes.Equal(candidateIdentityKey(owner, "e-1"), voteReceiptKey(owner, "e-1")))
	require.False(t, bytes.Equal(candidateRecordKey(1, "e-1"), candidateRecordKey(2, "e-1")))
	require.Equal(t, candidateRecordKey(7, "e-1"), candidateRecordKey(7, " e-1 "))
}
