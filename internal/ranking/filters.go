package ranking

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spigell/skill-matcher/internal/matching"
)

type minimumScoreFilter struct {
	toggle
	minimum float64
}

// NewMinimumScore drops results whose total is below minimum. A zero minimum
// keeps everything.
func NewMinimumScore(minimum float64) Filter {
	return &minimumScoreFilter{minimum: minimum}
}

func (f *minimumScoreFilter) Name() string { return "minimum_score" }

func (f *minimumScoreFilter) Validate() error {
	if f.minimum < 0 || f.minimum > 100 {
		return fmt.Errorf("minimum score must be within [0, 100], got %.2f", f.minimum)
	}
	return nil
}

func (f *minimumScoreFilter) Apply(_ context.Context, scores []matching.MatchingScore) ([]matching.MatchingScore, Step, error) {
	kept, step := keep(scores, func(s matching.MatchingScore) bool {
		return s.Total >= f.minimum
	})
	return kept, step, nil
}

func (f *minimumScoreFilter) Status() Status {
	return Status{
		Name:    f.Name(),
		Enabled: f.IsEnabled(),
		Reason:  f.reason,
		Details: map[string]string{"minimum_score": fmt.Sprintf("%.2f", f.minimum)},
	}
}

type minimumQualityFilter struct {
	toggle
	minimum matching.Quality
}

// NewMinimumQuality keeps results whose quality band is minimum or better.
// An empty minimum keeps everything.
func NewMinimumQuality(minimum matching.Quality) Filter {
	f := &minimumQualityFilter{minimum: minimum}
	if minimum == "" {
		f.Disable("no minimum quality configured")
	}
	return f
}

func (f *minimumQualityFilter) Name() string { return "minimum_quality" }

func (f *minimumQualityFilter) Validate() error {
	if _, ok := matching.ParseQuality(string(f.minimum)); !ok {
		return fmt.Errorf("unknown quality %q", f.minimum)
	}
	return nil
}

func (f *minimumQualityFilter) Apply(_ context.Context, scores []matching.MatchingScore) ([]matching.MatchingScore, Step, error) {
	kept, step := keep(scores, func(s matching.MatchingScore) bool {
		return s.Quality().AtLeast(f.minimum)
	})
	return kept, step, nil
}

func (f *minimumQualityFilter) Status() Status {
	details := map[string]string{}
	if f.minimum != "" {
		details["minimum_quality"] = string(f.minimum)
	}
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason, Details: details}
}

type limitFilter struct {
	toggle
	limit int
}

// NewLimit keeps the first limit results. Scores are expected to be ranked
// already. A non-positive limit keeps everything.
func NewLimit(limit int) Filter {
	f := &limitFilter{limit: limit}
	if limit <= 0 {
		f.Disable("no limit configured")
	}
	return f
}

func (f *limitFilter) Name() string { return "limit" }

func (f *limitFilter) Validate() error { return nil }

func (f *limitFilter) Apply(_ context.Context, scores []matching.MatchingScore) ([]matching.MatchingScore, Step, error) {
	initial := len(scores)
	if initial <= f.limit {
		return scores, Step{Initial: initial, Left: initial}, nil
	}

	kept := scores[:f.limit]
	return kept, Step{Initial: initial, Dropped: initial - f.limit, Left: f.limit}, nil
}

func (f *limitFilter) Status() Status {
	return Status{
		Name:    f.Name(),
		Enabled: f.IsEnabled(),
		Reason:  f.reason,
		Details: map[string]string{"limit": strconv.Itoa(f.limit)},
	}
}
