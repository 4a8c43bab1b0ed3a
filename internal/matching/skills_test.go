package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSkillScore(t *testing.T) {
	t.Parallel()

	java := Skill{Name: "Java", Proficiency: ProficiencyExpert, YearsOfExperience: 5, Verified: true}

	tests := []struct {
		name     string
		skills   []Skill
		required []string
		expect   float64
	}{
		{
			name:     "no requirements is a perfect match",
			skills:   nil,
			required: nil,
			expect:   100,
		},
		{
			name:     "no requirements ignores candidate skills",
			skills:   []Skill{{Name: "Go"}},
			required: []string{},
			expect:   100,
		},
		{
			name:     "no candidate skills scores zero",
			skills:   nil,
			required: []string{"go"},
			expect:   0,
		},
		{
			name:     "fully qualified expert",
			skills:   []Skill{java},
			required: []string{"java"},
			expect:   100,
		},
		{
			name:     "required contains candidate name",
			skills:   []Skill{{Name: "SQL", Proficiency: ProficiencyBeginner}},
			required: []string{"PostgreSQL"},
			expect:   60 + 6.25,
		},
		{
			name:     "candidate name contains required",
			skills:   []Skill{{Name: "Spring Boot", Proficiency: ProficiencyIntermediate, YearsOfExperience: 2}},
			required: []string{"spring"},
			expect:   60 + 12.5 + 4,
		},
		{
			name:     "years bonus is capped",
			skills:   []Skill{{Name: "Go", YearsOfExperience: 40}},
			required: []string{"go"},
			expect:   70,
		},
		{
			name:     "unknown proficiency contributes nothing",
			skills:   []Skill{{Name: "Go", Proficiency: Proficiency(42)}},
			required: []string{"go"},
			expect:   60,
		},
		{
			name: "best candidate skill wins",
			skills: []Skill{
				{Name: "Java", Proficiency: ProficiencyBeginner},
				{Name: "JavaScript", Proficiency: ProficiencyExpert, Verified: true},
			},
			required: []string{"java"},
			expect:   90,
		},
		{
			name:     "unmatched requirement averages in as zero",
			skills:   []Skill{java},
			required: []string{"java", "kubernetes"},
			expect:   50,
		},
		{
			name:     "blank candidate names are ignored",
			skills:   []Skill{{Name: "  ", Proficiency: ProficiencyExpert}},
			required: []string{"go"},
			expect:   0,
		},
		{
			name:     "blank requirement never matches",
			skills:   []Skill{java},
			required: []string{""},
			expect:   0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.InDelta(t, tt.expect, SkillScore(tt.skills, tt.required), 1e-9)
		})
	}
}

func TestSkillScoreStaysInRange(t *testing.T) {
	skills := []Skill{
		{Name: "go", Proficiency: ProficiencyExpert, YearsOfExperience: 100, Verified: true},
		{Name: "golang", Proficiency: ProficiencyExpert, YearsOfExperience: -3, Verified: true},
	}

	score := SkillScore(skills, []string{"go", "golang", "GO"})
	assert.GreaterOrEqual(t, score, 0.0)
	assert.LessOrEqual(t, score, 100.0)
}

func TestParseProficiency(t *testing.T) {
	t.Parallel()

	cases := map[string]Proficiency{
		"EXPERT":       ProficiencyExpert,
		" Advanced ":   ProficiencyAdvanced,
		"intermediate": ProficiencyIntermediate,
		"1":            ProficiencyBeginner,
		"4":            ProficiencyExpert,
		"5":            ProficiencyUnknown,
		"":             ProficiencyUnknown,
		"guru":         ProficiencyUnknown,
	}

	for input, expect := range cases {
		assert.Equal(t, expect, ParseProficiency(input), "input %q", input)
	}

	assert.Equal(t, 0, ProficiencyUnknown.Level())
	assert.Equal(t, 4, ProficiencyExpert.Level())
	assert.Equal(t, "expert", ProficiencyExpert.String())
	assert.Equal(t, "unknown", Proficiency(-1).String())
}
