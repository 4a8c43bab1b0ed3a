package cache

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spigell/skill-matcher/internal/matching"
)

func scoreFor(profileID, jobID int64) matching.MatchingScore {
	return matching.MatchingScore{ProfileID: profileID, JobOfferID: jobID, Total: float64(jobID)}
}

func TestNewScoreCacheRejectsNonPositiveCapacity(t *testing.T) {
	_, err := NewScoreCache(0)
	require.Error(t, err)

	_, err = NewScoreCache(-5)
	require.Error(t, err)
}

func TestScoreCacheGetPut(t *testing.T) {
	c, err := NewScoreCache(4)
	require.NoError(t, err)

	_, ok := c.Get(1, 1)
	assert.False(t, ok)

	c.Put(1, 1, scoreFor(1, 1))
	got, ok := c.Get(1, 1)
	require.True(t, ok)
	assert.Equal(t, scoreFor(1, 1), got)

	replacement := scoreFor(1, 1)
	replacement.Total = 99
	c.Put(1, 1, replacement)

	got, ok = c.Get(1, 1)
	require.True(t, ok)
	assert.Equal(t, 99.0, got.Total)
	assert.Equal(t, 1, c.Len())

	stats := c.Stats()
	assert.Equal(t, uint64(2), stats.Hits)
	assert.Equal(t, uint64(1), stats.Misses)
	assert.Equal(t, 4, stats.Capacity)
}

func TestScoreCacheEvictsLeastRecentlyInserted(t *testing.T) {
	const capacity = 3

	c, err := NewScoreCache(capacity)
	require.NoError(t, err)

	for job := int64(1); job <= capacity+1; job++ {
		c.Put(10, job, scoreFor(10, job))
	}

	assert.Equal(t, capacity, c.Len())
	_, ok := c.Get(10, 1)
	assert.False(t, ok, "oldest entry should be evicted")

	for job := int64(2); job <= capacity+1; job++ {
		_, ok := c.Get(10, job)
		assert.True(t, ok, "job %d should survive", job)
	}

	assert.Equal(t, uint64(1), c.Stats().Evictions)
}

func TestScoreCacheGetRefreshesRecency(t *testing.T) {
	c, err := NewScoreCache(2)
	require.NoError(t, err)

	c.Put(1, 1, scoreFor(1, 1))
	c.Put(1, 2, scoreFor(1, 2))

	_, ok := c.Get(1, 1)
	require.True(t, ok)

	c.Put(1, 3, scoreFor(1, 3))

	assert.True(t, c.Contains(1, 1))
	assert.False(t, c.Contains(1, 2), "least recently accessed entry should be evicted")
	assert.True(t, c.Contains(1, 3))
}

func TestScoreCachePutRefreshesRecency(t *testing.T) {
	c, err := NewScoreCache(2)
	require.NoError(t, err)

	c.Put(1, 1, scoreFor(1, 1))
	c.Put(1, 2, scoreFor(1, 2))
	c.Put(1, 1, scoreFor(1, 1))
	c.Put(1, 3, scoreFor(1, 3))

	assert.True(t, c.Contains(1, 1))
	assert.False(t, c.Contains(1, 2))
}

func TestScoreCacheRemove(t *testing.T) {
	c, err := NewScoreCache(10)
	require.NoError(t, err)

	c.Put(1, 1, scoreFor(1, 1))
	c.Put(1, 2, scoreFor(1, 2))
	c.Put(2, 1, scoreFor(2, 1))

	assert.True(t, c.Remove(2, 1))
	assert.False(t, c.Remove(2, 1))

	assert.Equal(t, 2, c.RemoveProfile(1))
	assert.Equal(t, 0, c.Len())

	c.Put(3, 3, scoreFor(3, 3))
	c.Purge()
	assert.Equal(t, 0, c.Len())
}

func TestScoreCacheConcurrentAccess(t *testing.T) {
	const capacity = 50

	c, err := NewScoreCache(capacity)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for worker := int64(0); worker < 8; worker++ {
		wg.Add(1)
		go func(worker int64) {
			defer wg.Done()
			for job := int64(0); job < 200; job++ {
				c.Put(worker, job, scoreFor(worker, job))
				if got, ok := c.Get(worker, job); ok {
					assert.Equal(t, worker, got.ProfileID)
					assert.Equal(t, job, got.JobOfferID)
				}
			}
		}(worker)
	}
	wg.Wait()

	assert.LessOrEqual(t, c.Len(), capacity)
}

func TestKeyString(t *testing.T) {
	assert.Equal(t, "12_34", Key{ProfileID: 12, JobID: 34}.String())
}
