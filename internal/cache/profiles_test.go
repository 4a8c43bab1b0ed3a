package cache

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spigell/skill-matcher/internal/matching"
	"github.com/spigell/skill-matcher/internal/matching/matchingtest"
)

func candidate(id int64) matching.ProfileData {
	return matching.ProfileData{
		Profile: &matching.Profile{ID: id, Location: "Tunis"},
		Skills:  []matching.Skill{{Name: "Go", Proficiency: matching.ProficiencyAdvanced}},
		Experiences: []matching.Experience{{
			Position:   "Developer",
			CurrentJob: true,
		}},
	}
}

func TestProfileDataCacheLoadsOnce(t *testing.T) {
	loader := matchingtest.NewLoader(candidate(1))
	c := NewProfileDataCache(loader)
	ctx := context.Background()

	first, err := c.GetOrLoad(ctx, 1)
	require.NoError(t, err)

	second, err := c.GetOrLoad(ctx, 1)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int64(1), loader.ProfileCalls.Load())
	assert.Equal(t, int64(1), loader.SkillCalls.Load())
	assert.Equal(t, int64(1), loader.ExperienceCalls.Load())
	assert.Equal(t, 1, c.Len())
	assert.Equal(t, uint64(1), c.Loads())
}

func TestProfileDataCacheNotFound(t *testing.T) {
	loader := matchingtest.NewLoader()
	c := NewProfileDataCache(loader)

	_, err := c.GetOrLoad(context.Background(), 42)
	require.ErrorIs(t, err, matching.ErrProfileNotFound)
	assert.Equal(t, 0, c.Len())

	loader.Add(candidate(42))

	data, err := c.GetOrLoad(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, int64(42), data.Profile.ID)
	assert.Equal(t, int64(2), loader.ProfileCalls.Load())
}

func TestProfileDataCacheLoaderNotFoundError(t *testing.T) {
	loader := matchingtest.NewLoader()
	loader.FailProfiles(matching.ErrProfileNotFound)
	c := NewProfileDataCache(loader)

	_, err := c.GetOrLoad(context.Background(), 1)
	require.ErrorIs(t, err, matching.ErrProfileNotFound)

	var loadErr *matching.DataLoadError
	assert.False(t, errors.As(err, &loadErr))
}

func TestProfileDataCacheFailureIsRetried(t *testing.T) {
	boom := errors.New("connection reset")

	tests := []struct {
		name string
		op   string
		fail func(*matchingtest.Loader, error)
	}{
		{name: "profile", op: "profile", fail: (*matchingtest.Loader).FailProfiles},
		{name: "skills", op: "skills", fail: (*matchingtest.Loader).FailSkills},
		{name: "experiences", op: "experiences", fail: (*matchingtest.Loader).FailExperiences},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loader := matchingtest.NewLoader(candidate(5))
			c := NewProfileDataCache(loader)

			tt.fail(loader, boom)
			_, err := c.GetOrLoad(context.Background(), 5)
			require.ErrorIs(t, err, boom)

			var loadErr *matching.DataLoadError
			require.ErrorAs(t, err, &loadErr)
			assert.Equal(t, int64(5), loadErr.ProfileID)
			assert.Equal(t, tt.op, loadErr.Op)
			assert.Equal(t, 0, c.Len())

			tt.fail(loader, nil)
			data, err := c.GetOrLoad(context.Background(), 5)
			require.NoError(t, err)
			assert.Equal(t, int64(5), data.Profile.ID)
		})
	}
}

func TestProfileDataCacheConcurrentSameProfile(t *testing.T) {
	loader := matchingtest.NewLoader(candidate(1))
	gate := make(chan struct{})
	loader.Delays = map[int64]chan struct{}{1: gate}
	c := NewProfileDataCache(loader)

	const callers = 16
	var wg sync.WaitGroup
	errs := make(chan error, callers)

	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.GetOrLoad(context.Background(), 1)
			errs <- err
		}()
	}

	// Give every caller a chance to join the in-flight load.
	time.Sleep(50 * time.Millisecond)
	close(gate)
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}
	assert.Equal(t, int64(1), loader.ProfileCalls.Load())
	assert.Equal(t, 1, c.Len())
}

func TestProfileDataCacheDifferentProfilesDoNotBlock(t *testing.T) {
	loader := matchingtest.NewLoader(candidate(1), candidate(2))
	gate := make(chan struct{})
	defer close(gate)
	loader.Delays = map[int64]chan struct{}{1: gate}

	c := NewProfileDataCache(loader)

	go func() {
		_, _ = c.GetOrLoad(context.Background(), 1)
	}()

	done := make(chan struct{})
	go func() {
		defer close(done)
		data, err := c.GetOrLoad(context.Background(), 2)
		assert.NoError(t, err)
		assert.Equal(t, int64(2), data.Profile.ID)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("lookup for a different profile blocked behind an in-flight load")
	}
}

func TestProfileDataCacheForgetAndClear(t *testing.T) {
	loader := matchingtest.NewLoader(candidate(1), candidate(2))
	c := NewProfileDataCache(loader)
	ctx := context.Background()

	_, err := c.GetOrLoad(ctx, 1)
	require.NoError(t, err)
	_, err = c.GetOrLoad(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, c.Len())

	c.Forget(1)
	assert.Equal(t, 1, c.Len())

	_, err = c.GetOrLoad(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(3), loader.ProfileCalls.Load())

	c.Clear()
	assert.Equal(t, 0, c.Len())
}
