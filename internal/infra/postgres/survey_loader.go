package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"aerojob-backend/internal/domain"
)

// SurveyLoader reads survey documents through a pgx pool for the
// cached public detail path, leaving the bun connection to the write
// side.
type SurveyLoader struct {
	pool *pgxpool.Pool
}

func NewSurveyLoader(pool *pgxpool.Pool) *SurveyLoader {
	return &SurveyLoader{pool: pool}
}

func (l *SurveyLoader) LoadSurvey(ctx context.Context, surveyID string) (domain.Survey, error) {
	var (
		survey      domain.Survey
		description sql.NullString
		questions   []byte
		audience    string
		status      string
		createdAt   time.Time
		updatedAt   time.Time
	)
	err := l.pool.QueryRow(ctx,
		`SELECT id, title, description, audience, status, questions, created_at, updated_at
		 FROM surveys WHERE id=$1`, surveyID).
		Scan(&survey.ID, &survey.Title, &description, &audience, &status, &questions, &createdAt, &updatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Survey{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Survey{}, fmt.Errorf("load survey: %w", err)
	}
	survey.Description = description.String
	survey.Audience = domain.Audience(audience)
	survey.Status = domain.SurveyStatus(status)
	survey.CreatedAt = createdAt
	survey.UpdatedAt = updatedAt
	if len(questions) > 0 {
		if err := json.Unmarshal(questions, &survey.Questions); err != nil {
			return domain.Survey{}, fmt.Errorf("unmarshal questions: %w", err)
		}
	}
	return survey, nil
}
