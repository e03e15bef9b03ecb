// Package cache keeps derived balances and plans in memory between ledger changes.
package cache

import (
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	portssvc "github.com/SscSPs/splitsettle/internal/core/ports/services"
)

// BalanceCache is an expirable LRU of CachedLedger entries keyed by group ID.
type BalanceCache struct {
	entries *expirable.LRU[string, portssvc.CachedLedger]

	// clock numbers invalidations. Groups without an entry in generations are at
	// floor, which is raised to clock whenever the map is pruned.
	mu          sync.Mutex
	clock       uint64
	floor       uint64
	generations map[string]uint64
	maxTracked  int
}

const minTrackedGenerations = 1024

// NewBalanceCache creates a cache holding at most size groups, each for at most ttl.
// A size of 0 means unbounded.
func NewBalanceCache(size int, ttl time.Duration) *BalanceCache {
	return &BalanceCache{
		entries:     expirable.NewLRU[string, portssvc.CachedLedger](size, nil, ttl),
		generations: make(map[string]uint64),
		maxTracked:  max(4*size, minTrackedGenerations),
	}
}

var _ portssvc.BalanceCache = (*BalanceCache)(nil)

// Lookup returns the cached entry for the group.
func (c *BalanceCache) Lookup(groupID string) (portssvc.CachedLedger, bool) {
	return c.entries.Get(groupID)
}

// Generation returns the group's current generation. Callers read it before loading
// the data they intend to Store.
func (c *BalanceCache) Generation(groupID string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generationLocked(groupID)
}

func (c *BalanceCache) generationLocked(groupID string) uint64 {
	if gen, ok := c.generations[groupID]; ok {
		return gen
	}
	return c.floor
}

// Store caches entry unless the group was invalidated after generation was read.
func (c *BalanceCache) Store(groupID string, generation uint64, entry portssvc.CachedLedger) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.generationLocked(groupID) != generation {
		return
	}
	c.entries.Add(groupID, entry)
}

// Invalidate drops the group's entry and bumps its generation. Once too many groups
// are tracked the map is cleared; computations started before that point can then no
// longer be stored for any group.
func (c *BalanceCache) Invalidate(groupID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.generations) >= c.maxTracked {
		clear(c.generations)
		c.floor = c.clock
	}
	c.clock++
	c.generations[groupID] = c.clock
	c.entries.Remove(groupID)
}

// TrackedGenerations returns how many groups currently carry their own generation.
func (c *BalanceCache) TrackedGenerations() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.generations)
}

// Len returns the number of cached groups.
func (c *BalanceCache) Len() int {
	return c.entries.Len()
}
