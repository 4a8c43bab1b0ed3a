// Package matchingtest provides an in-memory, call-counting ProfileLoader for tests.
package matchingtest

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/spigell/skill-matcher/internal/matching"
)

// Loader serves profiles from memory and counts every lookup.
type Loader struct {
	mu             sync.RWMutex
	profiles       map[int64]matching.ProfileData
	profileErr     error
	skillErr       error
	experiencesErr error

	// Delays blocks profile lookups for an id until its channel is closed.
	// Populate it before the loader is shared.
	Delays map[int64]chan struct{}

	ProfileCalls    atomic.Int64
	SkillCalls      atomic.Int64
	ExperienceCalls atomic.Int64
}

func NewLoader(profiles ...matching.ProfileData) *Loader {
	l := &Loader{profiles: make(map[int64]matching.ProfileData)}
	for _, p := range profiles {
		l.Add(p)
	}
	return l
}

func (l *Loader) Add(data matching.ProfileData) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.profiles[data.Profile.ID] = data
}

// FailProfiles makes FindProfileByID return err; nil restores normal behavior.
func (l *Loader) FailProfiles(err error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.profileErr = err
}

func (l *Loader) FailSkills(err error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.skillErr = err
}

func (l *Loader) FailExperiences(err error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.experiencesErr = err
}

func (l *Loader) FindProfileByID(ctx context.Context, id int64) (*matching.Profile, error) {
	l.ProfileCalls.Add(1)

	if delay, ok := l.Delays[id]; ok {
		select {
		case <-delay:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	l.mu.RLock()
	defer l.mu.RUnlock()

	if l.profileErr != nil {
		return nil, l.profileErr
	}

	data, ok := l.profiles[id]
	if !ok {
		return nil, nil
	}

	profile := *data.Profile
	return &profile, nil
}

func (l *Loader) FindSkillsByProfileID(_ context.Context, id int64) ([]matching.Skill, error) {
	l.SkillCalls.Add(1)

	l.mu.RLock()
	defer l.mu.RUnlock()

	if l.skillErr != nil {
		return nil, l.skillErr
	}

	return append([]matching.Skill(nil), l.profiles[id].Skills...), nil
}

func (l *Loader) FindExperiencesByProfileID(_ context.Context, id int64) ([]matching.Experience, error) {
	l.ExperienceCalls.Add(1)

	l.mu.RLock()
	defer l.mu.RUnlock()

	if l.experiencesErr != nil {
		return nil, l.experiencesErr
	}

	return append([]matching.Experience(nil), l.profiles[id].Experiences...), nil
}
