package cache

import (
	"strings"
	"sync"

	"electoral/contexts/governance/election-engine/domain/entities"
	"electoral/contexts/governance/election-engine/ports"

	lru "github.com/hashicorp/golang-lru/v2"
)

const defaultSize = 256

// ElectionCache is a bounded LRU of election snapshots. Entries are cloned on
// the way in and out so callers never share winner slices. Put never replaces
// a snapshot with an older one, so a slow reader cannot undo a commit.
// The cache is process local; replicas sharing one database do not see each
// other's writes through it.
type ElectionCache struct {
	mu    sync.Mutex
	items *lru.Cache[string, entities.Election]
}

var _ ports.ElectionCache = (*ElectionCache)(nil)

func NewElectionCache(size int) (*ElectionCache, error) {
	if size <= 0 {
		size = defaultSize
	}
	items, err := lru.New[string, entities.Election](size)
	if err != nil {
		return nil, err
	}
	return &ElectionCache{items: items}, nil
}

func (c *ElectionCache) Get(electionKey string) (entities.Election, bool) {
	election, ok := c.items.Get(strings.TrimSpace(electionKey))
	if !ok {
		return entities.Election{}, false
	}
	return election.Clone(), true
}

// Put stores election unless the cached entry is already newer.
func (c *ElectionCache) Put(election entities.Election) {
	key := strings.TrimSpace(election.Key)
	c.mu.Lock()
	defer c.mu.Unlock()
	if current, ok := c.items.Peek(key); ok && !fresher(election, current) {
		return
	}
	c.items.Add(key, election.Clone())
}

func (c *ElectionCache) Len() int {
	return c.items.Len()
}

// fresher reports whether candidate is at least as recent as current. Every
// committed change moves UpdatedAt forward; on a clock tie the stage, the
// candidate counter and the board total only ever grow.
func fresher(candidate entities.Election, current entities.Election) bool {
	if !candidate.UpdatedAt.Equal(current.UpdatedAt) {
		return candidate.UpdatedAt.After(current.UpdatedAt)
	}
	if stageOrder(candidate.Stage) != stageOrder(current.Stage) {
		return stageOrder(candidate.Stage) > stageOrder(current.Stage)
	}
	if candidate.CandidateCount != current.CandidateCount {
		return candidate.CandidateCount > current.CandidateCount
	}
	return boardTotal(candidate) >= boardTotal(current)
}

func stageOrder(stage entities.Stage) int {
	switch stage {
	case entities.StageVoting:
		return 1
	case entities.StageClosed:
		return 2
	default:
		return 0
	}
}

func boardTotal(election entities.Election) uint64 {
	var total uint64
	for _, votes := range election.WinnerVotes {
		total += votes
	}
	return total
}
