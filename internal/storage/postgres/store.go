// Package postgres loads profiles from PostgreSQL and persists matching scores.
package postgres

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spigell/skill-matcher/internal/matching"
)

//go:embed schema.sql
var schema string

// Store wraps a PostgreSQL connection pool.
type Store struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool and verifies it with a ping.
func Connect(ctx context.Context, dsn string) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// EnsureSchema creates the tables the store reads and writes when missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}

func (s *Store) FindProfileByID(ctx context.Context, id int64) (*matching.Profile, error) {
	var (
		profile  matching.Profile
		location *string
	)

	err := s.pool.QueryRow(ctx,
		`SELECT id, location FROM profiles WHERE id = $1`,
		id,
	).Scan(&profile.ID, &location)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %d", matching.ErrProfileNotFound, id)
		}
		return nil, fmt.Errorf("querying profile %d: %w", id, err)
	}

	if location != nil {
		profile.Location = *location
	}

	return &profile, nil
}

func (s *Store) FindSkillsByProfileID(ctx context.Context, id int64) ([]matching.Skill, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT skill_name, proficiency_level, years_experience, verified
		 FROM skills WHERE profile_id = $1 ORDER BY id`,
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("querying skills for profile %d: %w", id, err)
	}
	defer rows.Close()

	var skills []matching.Skill
	for rows.Next() {
		var (
			skill matching.Skill
			level *string
			years *int32
		)
		if err := rows.Scan(&skill.Name, &level, &years, &skill.Verified); err != nil {
			return nil, fmt.Errorf("scanning skill: %w", err)
		}
		if level != nil {
			skill.Proficiency = matching.ParseProficiency(*level)
		}
		if years != nil {
			skill.YearsOfExperience = int(*years)
		}
		skills = append(skills, skill)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating skills for profile %d: %w", id, err)
	}

	return skills, nil
}

func (s *Store) FindExperiencesByProfileID(ctx context.Context, id int64) ([]matching.Experience, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT company, position, start_date, end_date, current_job
		 FROM experiences WHERE profile_id = $1 ORDER BY start_date NULLS LAST, id`,
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("querying experiences for profile %d: %w", id, err)
	}
	defer rows.Close()

	var experiences []matching.Experience
	for rows.Next() {
		var (
			exp               matching.Experience
			company, position *string
		)
		if err := rows.Scan(&company, &position, &exp.StartDate, &exp.EndDate, &exp.CurrentJob); err != nil {
			return nil, fmt.Errorf("scanning experience: %w", err)
		}
		if company != nil {
			exp.Company = *company
		}
		if position != nil {
			exp.Position = *position
		}
		experiences = append(experiences, exp)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating experiences for profile %d: %w", id, err)
	}

	return experiences, nil
}

const upsertScore = `INSERT INTO matching_scores (profile_id, job_offer_id, total_score, skills_score,
    experience_score, language_score, location_score, match_factors, calculated_at)
 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
 ON CONFLICT (profile_id, job_offer_id) DO UPDATE SET
    total_score = $3, skills_score = $4, experience_score = $5,
    language_score = $6, location_score = $7, match_factors = $8, calculated_at = $9`

type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// SaveScore upserts a result keyed by (profile_id, job_offer_id).
func (s *Store) SaveScore(ctx context.Context, score matching.MatchingScore) error {
	return saveScore(ctx, s.pool, score)
}

// SaveScores persists every score in one transaction.
func (s *Store) SaveScores(ctx context.Context, scores []matching.MatchingScore) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	for _, score := range scores {
		if err := saveScore(ctx, tx, score); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing scores: %w", err)
	}
	return nil
}

func saveScore(ctx context.Context, db execer, score matching.MatchingScore) error {
	factors, err := json.Marshal(score.Factors)
	if err != nil {
		return fmt.Errorf("marshaling match factors: %w", err)
	}

	_, err = db.Exec(ctx, upsertScore,
		score.ProfileID, score.JobOfferID, score.Total,
		score.Components.Skills, score.Components.Experience,
		score.Components.Language, score.Components.Location,
		factors, score.CalculatedAt,
	)
	if err != nil {
		return fmt.Errorf("saving score for profile %d and job %d: %w", score.ProfileID, score.JobOfferID, err)
	}
	return nil
}

// LoadScore returns a persisted result; ok is false when none exists.
func (s *Store) LoadScore(ctx context.Context, profileID, jobID int64) (matching.MatchingScore, bool, error) {
	var (
		score   matching.MatchingScore
		factors []byte
		at      time.Time
	)

	err := s.pool.QueryRow(ctx,
		`SELECT profile_id, job_offer_id, total_score, skills_score, experience_score,
		        language_score, location_score, match_factors, calculated_at
		 FROM matching_scores WHERE profile_id = $1 AND job_offer_id = $2`,
		profileID, jobID,
	).Scan(&score.ProfileID, &score.JobOfferID, &score.Total,
		&score.Components.Skills, &score.Components.Experience,
		&score.Components.Language, &score.Components.Location,
		&factors, &at)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return matching.MatchingScore{}, false, nil
		}
		return matching.MatchingScore{}, false, fmt.Errorf("loading score for profile %d and job %d: %w", profileID, jobID, err)
	}

	if err := json.Unmarshal(factors, &score.Factors); err != nil {
		return matching.MatchingScore{}, false, fmt.Errorf("decoding match factors: %w", err)
	}
	score.CalculatedAt = at.UTC()

	return score, true, nil
}
