package matching

import (
	"math"
	"strings"
	"time"
)

const (
	experienceBaseScore      = 30.0
	experienceRelevanceBonus = 20.0
	experienceCurrentBonus   = 10.0
)

// ExperienceScore starts from an entry-level baseline of 30 and adds a tier
// bonus for total years, a one-time bonus when a past position overlaps the
// job title, and a bonus for holding a current job.
func ExperienceScore(experiences []Experience, job JobOffer, now time.Time) float64 {
	if len(experiences) == 0 {
		return experienceBaseScore
	}

	score := experienceBaseScore
	score += yearsTierBonus(TotalExperienceMonths(experiences, now) / 12)

	if hasRelevantPosition(experiences, job.Title) {
		score += experienceRelevanceBonus
	}

	if HasCurrentJob(experiences) {
		score += experienceCurrentBonus
	}

	return math.Min(score, maxScore)
}

func yearsTierBonus(years int) float64 {
	switch {
	case years >= 5:
		return 40
	case years >= 3:
		return 30
	case years >= 1:
		return 20
	default:
		return 10
	}
}

func hasRelevantPosition(experiences []Experience, title string) bool {
	title = strings.ToLower(title)
	if strings.TrimSpace(title) == "" {
		return false
	}

	for _, exp := range experiences {
		position := strings.ToLower(exp.Position)
		if strings.TrimSpace(position) == "" {
			continue
		}
		if strings.Contains(position, title) || strings.Contains(title, position) {
			return true
		}
	}

	return false
}

// TotalExperienceMonths sums the durations of all experiences.
func TotalExperienceMonths(experiences []Experience, now time.Time) int {
	total := 0
	for _, exp := range experiences {
		total += exp.DurationInMonths(now)
	}
	return total
}

func HasCurrentJob(experiences []Experience) bool {
	for _, exp := range experiences {
		if exp.CurrentJob {
			return true
		}
	}
	return false
}
