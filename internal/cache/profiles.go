package cache

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"github.com/spigell/skill-matcher/internal/matching"
)

// ProfileDataCache memoizes a loader's result per profile id for the lifetime
// of one batch. Failed loads are never stored, so a later call retries.
// Concurrent loads of the same id share a single loader round trip; loads of
// different ids proceed independently.
type ProfileDataCache struct {
	loader matching.ProfileLoader

	mu      sync.RWMutex
	entries map[int64]matching.ProfileData
	group   singleflight.Group

	loads atomic.Uint64
}

func NewProfileDataCache(loader matching.ProfileLoader) *ProfileDataCache {
	return &ProfileDataCache{
		loader:  loader,
		entries: make(map[int64]matching.ProfileData),
	}
}

// GetOrLoad returns the cached data for id, loading it on first use.
func (c *ProfileDataCache) GetOrLoad(ctx context.Context, id int64) (matching.ProfileData, error) {
	if data, ok := c.lookup(id); ok {
		return data, nil
	}

	v, err, _ := c.group.Do(strconv.FormatInt(id, 10), func() (any, error) {
		// A concurrent caller may have finished while we waited for the group.
		if data, ok := c.lookup(id); ok {
			return data, nil
		}

		data, err := c.load(ctx, id)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.entries[id] = data
		c.mu.Unlock()

		return data, nil
	})
	if err != nil {
		return matching.ProfileData{}, err
	}

	return v.(matching.ProfileData), nil
}

func (c *ProfileDataCache) lookup(id int64) (matching.ProfileData, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	data, ok := c.entries[id]
	return data, ok
}

func (c *ProfileDataCache) load(ctx context.Context, id int64) (matching.ProfileData, error) {
	c.loads.Add(1)

	profile, err := c.loader.FindProfileByID(ctx, id)
	if err != nil {
		if errors.Is(err, matching.ErrProfileNotFound) {
			return matching.ProfileData{}, err
		}
		return matching.ProfileData{}, &matching.DataLoadError{ProfileID: id, Op: "profile", Err: err}
	}
	if profile == nil {
		return matching.ProfileData{}, matching.ErrProfileNotFound
	}

	skills, err := c.loader.FindSkillsByProfileID(ctx, id)
	if err != nil {
		return matching.ProfileData{}, &matching.DataLoadError{ProfileID: id, Op: "skills", Err: err}
	}

	experiences, err := c.loader.FindExperiencesByProfileID(ctx, id)
	if err != nil {
		return matching.ProfileData{}, &matching.DataLoadError{ProfileID: id, Op: "experiences", Err: err}
	}

	return matching.ProfileData{
		Profile:     profile,
		Skills:      skills,
		Experiences: experiences,
	}, nil
}

// Forget drops a single profile so the next call reloads it.
func (c *ProfileDataCache) Forget(id int64) {
	c.mu.Lock()
	delete(c.entries, id)
	c.mu.Unlock()
}

// Clear discards every memoized profile.
func (c *ProfileDataCache) Clear() {
	c.mu.Lock()
	c.entries = make(map[int64]matching.ProfileData)
	c.mu.Unlock()
}

func (c *ProfileDataCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.entries)
}

// Loads returns how many times the loader has been consulted.
func (c *ProfileDataCache) Loads() uint64 {
	return c.loads.Load()
}
