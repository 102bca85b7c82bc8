package cache

import (
	"testing"
	"time"

	"electoral/contexts/governance/election-engine/domain/entities"

	"github.com/stretchr/testify/require"
)

func election(t *testing.T, key string) entities.Election {
	t.Helper()
	var initiator entities.Identity
	initiator[0] = 1
	value, err := entities.NewElection(key, initiator, 2, time.Now())
	require.NoError(t, err)
	return value
}

func TestElectionCacheEvictsLeastRecentlyUsed(t *testing.T) {
	cache, err := NewElectionCache(2)
	require.NoError(t, err)

	cache.Put(election(t, "a"))
	cache.Put(election(t, "b"))
	_, ok := cache.Get("a")
	require.True(t, ok)
	cache.Put(election(t, "c"))

	_, ok = cache.Get("b")
	require.False(t, ok)
	_, ok = cache.Get("a")
	require.True(t, ok)
	require.Equal(t, 2, cache.Len())
}

func TestElectionCacheKeepsNewerSnapshot(t *testing.T) {
	cache, err := NewElectionCache(0)
	require.NoError(t, err)

	older := election(t, "a")
	newer := older.Clone()
	newer.Stage = entities.StageClosed
	newer.UpdatedAt = older.UpdatedAt.Add(time.Second)

	cache.Put(newer)
	cache.Put(older)

	cached, ok := cache.Get(" a ")
	require.True(t, ok)
	require.Equal(t, entities.StageClosed, cached.Stage)
}

func TestElectionCacheBreaksClockTiesByProgress(t *testing.T) {
	cache, err := NewElectionCache(0)
	require.NoError(t, err)

	base := election(t, "a")
	base.Stage = entities.StageVoting
	base.RecordVote(1, 1)

	ahead := base.Clone()
	ahead.RecordVote(1, 2)
	cache.Put(ahead)
	cache.Put(base)

	cached, ok := cache.Get("a")
	require.True(t, ok)
	require.Equal(t, []uint64{2}, cached.WinnerVotes)

	closed := ahead.Clone()
	closed.Stage = entities.StageClosed
	cache.Put(closed)
	cached, _ = cache.Get("a")
	require.Equal(t, entities.StageClosed, cached.Stage)
}

func TestElectionCacheClonesSnapshots(t *testing.T) {
	cache, err := NewElectionCache(4)
	require.NoError(t, err)
	value := election(t, "a")
	value.RecordVote(1, 1)
	cache.Put(value)

	value.WinnerVotes[0] = 42
	cached, ok := cache.Get("a")
	require.True(t, ok)
	require.Equal(t, []uint64{1}, cached.WinnerVotes)

	cached.WinnerVotes[0] = 7
	again, _ := cache.Get("a")
	require.Equal(t, []uint64{1}, again.WinnerVotes)
}
