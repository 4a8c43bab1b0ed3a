// Package matching scores how well a candidate profile fits a job offer.
// Every scorer here is pure and safe for concurrent use.
package matching

import (
	"context"
	"strconv"
	"strings"
	"time"
)

// Proficiency is a bounded ordinal skill level.
type Proficiency int

const (
	ProficiencyUnknown Proficiency = iota
	ProficiencyBeginner
	ProficiencyIntermediate
	ProficiencyAdvanced
	ProficiencyExpert
)

var proficiencyNames = map[Proficiency]string{
	ProficiencyUnknown:      "unknown",
	ProficiencyBeginner:     "beginner",
	ProficiencyIntermediate: "intermediate",
	ProficiencyAdvanced:     "advanced",
	ProficiencyExpert:       "expert",
}

// ParseProficiency accepts level names in any case ("EXPERT", "Advanced") or
// their ordinal digits. Anything else is ProficiencyUnknown.
func ParseProficiency(s string) Proficiency {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return ProficiencyUnknown
	}

	if n, err := strconv.Atoi(s); err == nil {
		p := Proficiency(n)
		if p.Valid() {
			return p
		}
		return ProficiencyUnknown
	}

	for p, name := range proficiencyNames {
		if name == s {
			return p
		}
	}

	return ProficiencyUnknown
}

// Valid reports whether p is one of the known levels.
func (p Proficiency) Valid() bool {
	return p >= ProficiencyBeginner && p <= ProficiencyExpert
}

// Level returns the ordinal used for scoring; unknown levels count as 0.
func (p Proficiency) Level() int {
	if !p.Valid() {
		return 0
	}
	return int(p)
}

func (p Proficiency) String() string {
	if name, ok := proficiencyNames[p]; ok {
		return name
	}
	return proficiencyNames[ProficiencyUnknown]
}

// Profile is the candidate record the engine scores against.
type Profile struct {
	ID       int64  `mapstructure:"id" json:"id"`
	Location string `mapstructure:"location" json:"location,omitempty"`
}

type Skill struct {
	Name              string      `mapstructure:"name" json:"name"`
	Proficiency       Proficiency `mapstructure:"proficiency" json:"proficiency"`
	YearsOfExperience int         `mapstructure:"years" json:"years"`
	Verified          bool        `mapstructure:"verified" json:"verified"`
}

type Experience struct {
	Company    string     `mapstructure:"company" json:"company,omitempty"`
	Position   string     `mapstructure:"position" json:"position,omitempty"`
	StartDate  *time.Time `mapstructure:"start" json:"start,omitempty"`
	EndDate    *time.Time `mapstructure:"end" json:"end,omitempty"`
	CurrentJob bool       `mapstructure:"current" json:"current"`
}

// DurationInMonths counts whole calendar months between the start date and
// the end date, or now when the experience is the current job. Missing bounds
// yield 0.
func (e Experience) DurationInMonths(now time.Time) int {
	if e.StartDate == nil {
		return 0
	}

	var end time.Time
	switch {
	case e.CurrentJob:
		end = now
	case e.EndDate != nil:
		end = *e.EndDate
	default:
		return 0
	}

	return monthsBetween(*e.StartDate, end)
}

func monthsBetween(start, end time.Time) int {
	months := (end.Year()-start.Year())*12 + int(end.Month()) - int(start.Month())
	if end.Day() < start.Day() {
		months--
	}
	if months < 0 {
		return 0
	}
	return months
}

// JobOffer is a posting with free-text required skill names.
type JobOffer struct {
	ID             int64    `mapstructure:"id" json:"id" binding:"required,min=1" validate:"gt=0"`
	Title          string   `mapstructure:"title" json:"title"`
	Location       string   `mapstructure:"location" json:"location,omitempty"`
	RequiredSkills []string `mapstructure:"required-skills" json:"required_skills,omitempty"`
}

// ProfileData is everything the scorers need about one candidate.
type ProfileData struct {
	Profile     *Profile
	Skills      []Skill
	Experiences []Experience
}

// ProfileLoader is the read-only persistence boundary. FindProfileByID
// returns ErrProfileNotFound (or a nil profile) when the id does not resolve.
type ProfileLoader interface {
	FindProfileByID(ctx context.Context, id int64) (*Profile, error)
	FindSkillsByProfileID(ctx context.Context, id int64) ([]Skill, error)
	FindExperiencesByProfileID(ctx context.Context, id int64) ([]Experience, error)
}
