package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"

	"aerojob-backend/internal/app"
	"aerojob-backend/internal/domain"
)

// SurveyStore is the bun-backed implementation of app.SurveyStore.
type SurveyStore struct {
	db *bun.DB
}

func NewSurveyStore(db *bun.DB) *SurveyStore {
	return &SurveyStore{db: db}
}

func (s *SurveyStore) Insert(ctx context.Context, survey *domain.Survey) error {
	row, err := surveyToRow(survey)
	if err != nil {
		return fmt.Errorf("encode survey: %w", err)
	}
	if _, err := s.db.NewInsert().Model(row).Exec(ctx); err != nil {
		return fmt.Errorf("insert survey: %w", err)
	}
	return nil
}

func (s *SurveyStore) Update(ctx context.Context, survey *domain.Survey) error {
	row, err := surveyToRow(survey)
	if err != nil {
		return fmt.Errorf("encode survey: %w", err)
	}
	res, err := s.db.NewUpdate().Model(row).WherePK().Exec(ctx)
	if err != nil {
		return fmt.Errorf("update survey: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete removes the survey; responses go with it through the
// ON DELETE CASCADE foreign key.
func (s *SurveyStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.NewDelete().Model((*surveyRow)(nil)).Where("id = ?", id).Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete survey: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *SurveyStore) Get(ctx context.Context, id string) (domain.Survey, error) {
	row := new(surveyRow)
	err := s.db.NewSelect().Model(row).Where("id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Survey{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Survey{}, fmt.Errorf("get survey: %w", err)
	}
	return row.toDomain()
}

func (s *SurveyStore) List(ctx context.Context, filter app.SurveyFilter) ([]domain.Survey, error) {
	var rows []surveyRow
	q := s.db.NewSelect().Model(&rows).Order("created_at DESC")
	if filter.Status != "" {
		q = q.Where("status = ?", string(filter.Status))
	}
	if filter.Title != "" {
		q = q.Where("title ILIKE ?", "%"+filter.Title+"%")
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("list surveys: %w", err)
	}
	surveys := make([]domain.Survey, 0, len(rows))
	for i := range rows {
		survey, err := rows[i].toDomain()
		if err != nil {
			return nil, err
		}
		surveys = append(surveys, survey)
	}
	return surveys, nil
}
