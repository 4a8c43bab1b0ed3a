// Package dataset serves profiles and job offers from a YAML or JSON file.
//
// The file has two top-level lists:
//
//	profiles:
//	  - id: 1
//	    location: Tunis
//	    skills:
//	      - {name: Java, proficiency: EXPERT, years: 5, verified: true}
//	    experiences:
//	      - {position: Backend Developer, start: 2020-03-01, current: true}
//	jobs:
//	  - id: 10
//	    title: Backend Developer
//	    location: Tunis
//	    required-skills: [java, sql]
package dataset

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"

	"github.com/spigell/skill-matcher/internal/matching"
)

const dateLayout = "2006-01-02"

type file struct {
	Profiles []profileRecord    `mapstructure:"profiles" validate:"dive"`
	Jobs     []matching.JobOffer `mapstructure:"jobs" validate:"dive"`
}

type profileRecord struct {
	ID          int64                 `mapstructure:"id" validate:"gt=0"`
	Location    string                `mapstructure:"location"`
	Skills      []matching.Skill      `mapstructure:"skills"`
	Experiences []matching.Experience `mapstructure:"experiences"`
}

// Dataset is an immutable, in-memory ProfileLoader.
type Dataset struct {
	profiles map[int64]matching.ProfileData
	jobs     []matching.JobOffer
}

// Load reads path; the format follows the file extension.
func Load(path string) (*Dataset, error) {
	v := viper.New()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading dataset %q: %w", path, err)
	}

	return FromMap(v.AllSettings())
}

// FromMap decodes an already parsed dataset document.
func FromMap(raw map[string]any) (*Dataset, error) {
	var f file

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			proficiencyHook,
			dateHook,
		),
		WeaklyTypedInput: true,
		Result:           &f,
	})
	if err != nil {
		return nil, err
	}

	if err := decoder.Decode(raw); err != nil {
		return nil, fmt.Errorf("decoding dataset: %w", err)
	}

	if err := validator.New().Struct(f); err != nil {
		return nil, fmt.Errorf("validating dataset: %w", err)
	}

	return build(f)
}

func build(f file) (*Dataset, error) {
	d := &Dataset{
		profiles: make(map[int64]matching.ProfileData, len(f.Profiles)),
		jobs:     make([]matching.JobOffer, 0, len(f.Jobs)),
	}

	for _, p := range f.Profiles {
		if _, ok := d.profiles[p.ID]; ok {
			return nil, fmt.Errorf("duplicate profile id %d", p.ID)
		}
		d.profiles[p.ID] = matching.ProfileData{
			Profile:     &matching.Profile{ID: p.ID, Location: p.Location},
			Skills:      p.Skills,
			Experiences: p.Experiences,
		}
	}

	seen := make(map[int64]struct{}, len(f.Jobs))
	for _, job := range f.Jobs {
		if _, ok := seen[job.ID]; ok {
			return nil, fmt.Errorf("duplicate job id %d", job.ID)
		}
		seen[job.ID] = struct{}{}
		d.jobs = append(d.jobs, job)
	}

	return d, nil
}

var (
	proficiencyType = reflect.TypeOf(matching.ProficiencyUnknown)
	timeType        = reflect.TypeOf(time.Time{})
	timePtrType     = reflect.TypeOf(&time.Time{})
)

func proficiencyHook(from, to reflect.Type, data any) (any, error) {
	if to != proficiencyType || from.Kind() != reflect.String {
		return data, nil
	}

	return matching.ParseProficiency(data.(string)), nil
}

// dateHook accepts plain dates and RFC 3339 timestamps. A blank value leaves
// the date unset.
func dateHook(from, to reflect.Type, data any) (any, error) {
	if (to != timeType && to != timePtrType) || from.Kind() != reflect.String {
		return data, nil
	}

	s := strings.TrimSpace(data.(string))
	if s == "" {
		return nil, nil
	}

	if t, err := time.Parse(dateLayout, s); err == nil {
		return t, nil
	}

	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, fmt.Errorf("parsing date %q: expected %s or RFC 3339", s, dateLayout)
	}
	return t, nil
}

func (d *Dataset) FindProfileByID(_ context.Context, id int64) (*matching.Profile, error) {
	data, ok := d.profiles[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", matching.ErrProfileNotFound, id)
	}

	profile := *data.Profile
	return &profile, nil
}

func (d *Dataset) FindSkillsByProfileID(_ context.Context, id int64) ([]matching.Skill, error) {
	return append([]matching.Skill(nil), d.profiles[id].Skills...), nil
}

func (d *Dataset) FindExperiencesByProfileID(_ context.Context, id int64) ([]matching.Experience, error) {
	return append([]matching.Experience(nil), d.profiles[id].Experiences...), nil
}

// Jobs returns a copy of the job offers in file order.
func (d *Dataset) Jobs() []matching.JobOffer {
	jobs := make([]matching.JobOffer, len(d.jobs))
	copy(jobs, d.jobs)
	return jobs
}

// Job looks up a single offer by id.
func (d *Dataset) Job(id int64) (matching.JobOffer, bool) {
	for _, job := range d.jobs {
		if job.ID == id {
			return job, true
		}
	}
	return matching.JobOffer{}, false
}

// ProfileIDs lists every profile id in ascending order.
func (d *Dataset) ProfileIDs() []int64 {
	ids := make([]int64, 0, len(d.profiles))
	for id := range d.profiles {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
