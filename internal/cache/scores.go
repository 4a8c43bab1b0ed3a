// Package cache holds the two caches used by the matching engine: a bounded
// LRU of computed scores and a batch-scoped memo of loaded profile data.
package cache

import (
	"fmt"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/spigell/skill-matcher/internal/matching"
)

// DefaultScoreCacheSize is the capacity used when none is configured.
const DefaultScoreCacheSize = 500

// Key identifies one profile/job pair.
type Key struct {
	ProfileID int64
	JobID     int64
}

func (k Key) String() string {
	return fmt.Sprintf("%d_%d", k.ProfileID, k.JobID)
}

// ScoreCache is a fixed-capacity, least-recently-used cache of match results.
// Both Get hits and Put refresh recency. Safe for concurrent use.
type ScoreCache struct {
	entries  *lru.Cache[Key, matching.MatchingScore]
	capacity int

	hits   atomic.Uint64
	misses atomic.Uint64
	evicts atomic.Uint64
}

func NewScoreCache(capacity int) (*ScoreCache, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("score cache capacity must be positive, got %d", capacity)
	}

	entries, err := lru.New[Key, matching.MatchingScore](capacity)
	if err != nil {
		return nil, fmt.Errorf("creating score cache: %w", err)
	}

	return &ScoreCache{entries: entries, capacity: capacity}, nil
}

func (c *ScoreCache) Get(profileID, jobID int64) (matching.MatchingScore, bool) {
	score, ok := c.entries.Get(Key{ProfileID: profileID, JobID: jobID})
	if ok {
		c.hits.Add(1)
	} else {
		c.misses.Add(1)
	}
	return score, ok
}

// Put stores score, replacing any previous value for the pair and evicting the
// least recently used entry when the cache is full.
func (c *ScoreCache) Put(profileID, jobID int64, score matching.MatchingScore) {
	if c.entries.Add(Key{ProfileID: profileID, JobID: jobID}, score) {
		c.evicts.Add(1)
	}
}

// Contains reports presence without touching recency or counters.
func (c *ScoreCache) Contains(profileID, jobID int64) bool {
	return c.entries.Contains(Key{ProfileID: profileID, JobID: jobID})
}

func (c *ScoreCache) Remove(profileID, jobID int64) bool {
	return c.entries.Remove(Key{ProfileID: profileID, JobID: jobID})
}

// RemoveProfile drops every cached score for the profile and returns how many
// entries were removed.
func (c *ScoreCache) RemoveProfile(profileID int64) int {
	removed := 0
	for _, key := range c.entries.Keys() {
		if key.ProfileID == profileID && c.entries.Remove(key) {
			removed++
		}
	}
	return removed
}

func (c *ScoreCache) Purge() {
	c.entries.Purge()
}

func (c *ScoreCache) Len() int {
	return c.entries.Len()
}

func (c *ScoreCache) Capacity() int {
	return c.capacity
}

// Stats is a point-in-time view of cache counters.
type Stats struct {
	Size      int    `json:"size"`
	Capacity  int    `json:"capacity"`
	Hits      uint64 `json:"hits"`
	Misses    uint64 `json:"misses"`
	Evictions uint64 `json:"evictions"`
}

func (c *ScoreCache) Stats() Stats {
	return Stats{
		Size:      c.Len(),
		Capacity:  c.capacity,
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Evictions: c.evicts.Load(),
	}
}
