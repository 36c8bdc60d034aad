package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/driver/pgdriver"

	"aerojob-backend/internal/app"
	"aerojob-backend/internal/domain"
)

// uniqueViolation is the SQLSTATE for a unique constraint failure.
const uniqueViolation = "23505"

// ResponseStore is the bun-backed implementation of app.ResponseStore.
// The compound unique index on (survey_id, participant_id) is the
// authority on the one-response-per-participant invariant; a losing
// concurrent insert surfaces as domain.ErrDuplicateResponse.
type ResponseStore struct {
	db *bun.DB
}

func NewResponseStore(db *bun.DB) *ResponseStore {
	return &ResponseStore{db: db}
}

func (s *ResponseStore) Insert(ctx context.Context, response *domain.Response) error {
	row, err := responseToRow(response)
	if err != nil {
		return fmt.Errorf("encode response: %w", err)
	}
	if _, err := s.db.NewInsert().Model(row).Exec(ctx); err != nil {
		var pgErr pgdriver.Error
		if errors.As(err, &pgErr) && pgErr.Field('C') == uniqueViolation {
			return domain.ErrDuplicateResponse
		}
		return fmt.Errorf("insert response: %w", err)
	}
	return nil
}

func (s *ResponseStore) Exists(ctx context.Context, surveyID, participantID string) (bool, error) {
	count, err := s.db.NewSelect().Model((*responseRow)(nil)).
		Where("(survey_id = ? OR legacy_survey_id = ?)", surveyID, surveyID).
		Where("(participant_id = ? OR legacy_participant_id = ?)", participantID, participantID).
		Count(ctx)
	if err != nil {
		return false, fmt.Errorf("check response: %w", err)
	}
	return count > 0, nil
}

// AnsweredSurveyIDs unions the canonical and legacy participant
// columns and coalesces the two survey reference columns, so rows
// written under the old field names still exclude their surveys.
func (s *ResponseStore) AnsweredSurveyIDs(ctx context.Context, participantID string) (map[string]struct{}, error) {
	var surveyIDs []string
	err := s.db.NewSelect().Model((*responseRow)(nil)).
		ColumnExpr("DISTINCT coalesce(nullif(survey_id, ''), legacy_survey_id)").
		Where("participant_id = ? OR legacy_participant_id = ?", participantID, participantID).
		Scan(ctx, &surveyIDs)
	if err != nil {
		return nil, fmt.Errorf("answered surveys: %w", err)
	}
	ids := make(map[string]struct{}, len(surveyIDs))
	for _, id := range surveyIDs {
		ids[id] = struct{}{}
	}
	return ids, nil
}

func (s *ResponseStore) ForSurvey(ctx context.Context, surveyID string, filter app.ResponseFilter) ([]domain.Response, error) {
	var rows []responseRow
	q := s.db.NewSelect().Model(&rows).
		Where("survey_id = ? OR legacy_survey_id = ?", surveyID, surveyID).
		Order("created_at DESC")
	if filter.ParticipantID != "" {
		q = q.Where("(participant_id = ? OR legacy_participant_id = ?)", filter.ParticipantID, filter.ParticipantID)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("list responses: %w", err)
	}
	responses := make([]domain.Response, 0, len(rows))
	for i := range rows {
		response, err := rows[i].toDomain()
		if err != nil {
			return nil, err
		}
		responses = append(responses, response)
	}
	return responses, nil
}

func (s *ResponseStore) Get(ctx context.Context, id string) (domain.Response, error) {
	row := new(responseRow)
	err := s.db.NewSelect().Model(row).Where("id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Response{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Response{}, fmt.Errorf("get response: %w", err)
	}
	return row.toDomain()
}

func (s *ResponseStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.NewDelete().Model((*responseRow)(nil)).Where("id = ?", id).Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete response: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
