package matching

import (
	"math"
	"strings"
)

const (
	skillBaseScore        = 60.0
	skillProficiencyPoint = 6.25
	skillYearsPoint       = 2
	skillYearsCap         = 10
	skillVerifiedBonus    = 5.0
)

// SkillScore averages, over every required skill name, the best value among
// the candidate skills whose names overlap it as case-insensitive substrings
// in either direction. The result is capped at 100.
func SkillScore(skills []Skill, required []string) float64 {
	if len(required) == 0 {
		return maxScore
	}
	if len(skills) == 0 {
		return 0
	}

	total := 0.0
	for _, req := range required {
		total += bestSkillMatch(skills, strings.ToLower(strings.TrimSpace(req)))
	}

	return math.Min(total/float64(len(required)), maxScore)
}

func bestSkillMatch(skills []Skill, required string) float64 {
	if required == "" {
		return 0
	}

	best := 0.0
	for _, skill := range skills {
		name := strings.ToLower(strings.TrimSpace(skill.Name))
		if name == "" {
			continue
		}
		if !strings.Contains(name, required) && !strings.Contains(required, name) {
			continue
		}
		best = math.Max(best, skillMatchValue(skill))
	}

	return best
}

func skillMatchValue(skill Skill) float64 {
	value := skillBaseScore
	value += float64(skill.Proficiency.Level()) * skillProficiencyPoint

	years := skill.YearsOfExperience * skillYearsPoint
	if years < 0 {
		years = 0
	}
	value += float64(min(years, skillYearsCap))

	if skill.Verified {
		value += skillVerifiedBonus
	}

	return value
}
