package matching

import (
	"math"
	"time"
)

const maxScore = 100.0

const (
	SkillsWeight     = 0.40
	ExperienceWeight = 0.30
	LanguageWeight   = 0.20
	LocationWeight   = 0.10
)

// Quality is a human-readable band for a total score.
type Quality string

const (
	QualityExcellent Quality = "Excellent"
	QualityVeryGood  Quality = "Very Good"
	QualityGood      Quality = "Good"
	QualityFair      Quality = "Fair"
	QualityPoor      Quality = "Poor"
)

var qualityRanks = map[Quality]int{
	QualityPoor:      0,
	QualityFair:      1,
	QualityGood:      2,
	QualityVeryGood:  3,
	QualityExcellent: 4,
}

// QualityFor maps a total score onto its band.
func QualityFor(total float64) Quality {
	switch {
	case total >= 90:
		return QualityExcellent
	case total >= 75:
		return QualityVeryGood
	case total >= 60:
		return QualityGood
	case total >= 45:
		return QualityFair
	default:
		return QualityPoor
	}
}

// AtLeast reports whether q is the same band as other or a better one.
// Unknown bands rank below Poor.
func (q Quality) AtLeast(other Quality) bool {
	rank, ok := qualityRanks[q]
	if !ok {
		rank = -1
	}
	otherRank, ok := qualityRanks[other]
	if !ok {
		otherRank = -1
	}
	return rank >= otherRank
}

// ParseQuality returns the band named by s and whether it is known.
func ParseQuality(s string) (Quality, bool) {
	q := Quality(s)
	_, ok := qualityRanks[q]
	return q, ok
}

// Components holds the four sub-scores, each in [0, 100].
type Components struct {
	Skills     float64 `json:"skills"`
	Experience float64 `json:"experience"`
	Language   float64 `json:"language"`
	Location   float64 `json:"location"`
}

// Aggregate weights the components 40/30/20/10 and rounds the total to two
// decimals.
func Aggregate(c Components) float64 {
	weighted := c.Skills*SkillsWeight +
		c.Experience*ExperienceWeight +
		c.Language*LanguageWeight +
		c.Location*LocationWeight

	return clamp(math.Round(weighted*100) / 100)
}

func clamp(v float64) float64 {
	return math.Max(0, math.Min(v, maxScore))
}

// Factors explains a score. The key set is fixed; see FactorKeys.
type Factors struct {
	TotalSkills           int    `json:"totalSkills"`
	VerifiedSkills        int    `json:"verifiedSkills"`
	RequiredSkills        int    `json:"requiredSkills"`
	TotalExperienceMonths int    `json:"totalExperienceMonths"`
	TotalExperienceYears  int    `json:"totalExperienceYears"`
	HasCurrentJob         bool   `json:"hasCurrentJob"`
	ProfileLocation       string `json:"profileLocation"`
	JobLocation           string `json:"jobLocation"`
}

// FactorKeys lists the keys produced by Factors.Map, in display order.
var FactorKeys = []string{
	"totalSkills",
	"verifiedSkills",
	"requiredSkills",
	"totalExperienceMonths",
	"totalExperienceYears",
	"hasCurrentJob",
	"profileLocation",
	"jobLocation",
}

func (f Factors) Map() map[string]any {
	return map[string]any{
		"totalSkills":           f.TotalSkills,
		"verifiedSkills":        f.VerifiedSkills,
		"requiredSkills":        f.RequiredSkills,
		"totalExperienceMonths": f.TotalExperienceMonths,
		"totalExperienceYears":  f.TotalExperienceYears,
		"hasCurrentJob":         f.HasCurrentJob,
		"profileLocation":       f.ProfileLocation,
		"jobLocation":           f.JobLocation,
	}
}

// BuildFactors collects the explanatory counts for a profile/job pair.
func BuildFactors(data ProfileData, job JobOffer, now time.Time) Factors {
	verified := 0
	for _, skill := range data.Skills {
		if skill.Verified {
			verified++
		}
	}

	months := TotalExperienceMonths(data.Experiences, now)

	f := Factors{
		TotalSkills:           len(data.Skills),
		VerifiedSkills:        verified,
		RequiredSkills:        len(job.RequiredSkills),
		TotalExperienceMonths: months,
		TotalExperienceYears:  months / 12,
		HasCurrentJob:         HasCurrentJob(data.Experiences),
		JobLocation:           job.Location,
	}
	if data.Profile != nil {
		f.ProfileLocation = data.Profile.Location
	}

	return f
}

// Score runs the four sub-scorers for one profile/job pair.
func Score(data ProfileData, job JobOffer, now time.Time) Components {
	var profileLocation string
	if data.Profile != nil {
		profileLocation = data.Profile.Location
	}

	return Components{
		Skills:     SkillScore(data.Skills, job.RequiredSkills),
		Experience: ExperienceScore(data.Experiences, job, now),
		Language:   LanguageScore(profileLocation, job.Location),
		Location:   LocationScore(profileLocation, job.Location),
	}
}

// MatchingScore is the immutable result for one (profile, job) pair.
type MatchingScore struct {
	ProfileID    int64      `json:"profile_id"`
	JobOfferID   int64      `json:"job_offer_id"`
	Components   Components `json:"components"`
	Total        float64    `json:"total"`
	Factors      Factors    `json:"factors"`
	CalculatedAt time.Time  `json:"calculated_at"`
}

func NewMatchingScore(profileID, jobID int64, c Components, f Factors, at time.Time) MatchingScore {
	return MatchingScore{
		ProfileID:    profileID,
		JobOfferID:   jobID,
		Components:   c,
		Total:        Aggregate(c),
		Factors:      f,
		CalculatedAt: at,
	}
}

func (s MatchingScore) Quality() Quality {
	return QualityFor(s.Total)
}

// ComponentBreakdown is a single weighted component of a score.
type ComponentBreakdown struct {
	Score    float64 `json:"score"`
	Weight   int     `json:"weight"`
	Weighted float64 `json:"weighted"`
}

type Breakdown struct {
	Skills     ComponentBreakdown `json:"skills"`
	Experience ComponentBreakdown `json:"experience"`
	Language   ComponentBreakdown `json:"language"`
	Location   ComponentBreakdown `json:"location"`
	Total      float64            `json:"total"`
}

func (s MatchingScore) Breakdown() Breakdown {
	component := func(score, weight float64) ComponentBreakdown {
		return ComponentBreakdown{
			Score:    score,
			Weight:   int(math.Round(weight * 100)),
			Weighted: score * weight,
		}
	}

	return Breakdown{
		Skills:     component(s.Components.Skills, SkillsWeight),
		Experience: component(s.Components.Experience, ExperienceWeight),
		Language:   component(s.Components.Language, LanguageWeight),
		Location:   component(s.Components.Location, LocationWeight),
		Total:      s.Total,
	}
}
