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

// JobStore is the bun-backed implementation of app.JobStore.
type JobStore struct {
	db *bun.DB
}

func NewJobStore(db *bun.DB) *JobStore {
	return &JobStore{db: db}
}

func (s *JobStore) InsertJob(ctx context.Context, job *domain.Job) error {
	row := &jobRow{
		ID:          job.ID,
		CompanyID:   job.CompanyID,
		Title:       job.Title,
		Location:    job.Location,
		Description: job.Description,
		CreatedAt:   job.CreatedAt,
	}
	if _, err := s.db.NewInsert().Model(row).Exec(ctx); err != nil {
		return fmt.Errorf("insert job: %w", err)
	}
	return nil
}

func (s *JobStore) UpdateJob(ctx context.Context, job *domain.Job) error {
	row := &jobRow{
		ID:          job.ID,
		CompanyID:   job.CompanyID,
		Title:       job.Title,
		Location:    job.Location,
		Description: job.Description,
		CreatedAt:   job.CreatedAt,
	}
	res, err := s.db.NewUpdate().Model(row).WherePK().Exec(ctx)
	if err != nil {
		return fmt.Errorf("update job: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *JobStore) DeleteJob(ctx context.Context, id string) error {
	res, err := s.db.NewDelete().Model((*jobRow)(nil)).Where("id = ?", id).Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete job: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *JobStore) GetJob(ctx context.Context, id string) (domain.Job, error) {
	row := new(jobRow)
	err := s.db.NewSelect().Model(row).Where("id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Job{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Job{}, fmt.Errorf("get job: %w", err)
	}
	return row.toDomain(), nil
}

func (s *JobStore) ListJobs(ctx context.Context, filter app.JobFilter) ([]domain.Job, error) {
	var rows []jobRow
	q := s.db.NewSelect().Model(&rows).Order("created_at DESC")
	if filter.Title != "" {
		q = q.Where("title ILIKE ?", "%"+filter.Title+"%")
	}
	if filter.Location != "" {
		q = q.Where("location ILIKE ?", "%"+filter.Location+"%")
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	jobs := make([]domain.Job, 0, len(rows))
	for i := range rows {
		jobs = append(jobs, rows[i].toDomain())
	}
	return jobs, nil
}

func (s *JobStore) InsertCompany(ctx context.Context, company *domain.Company) error {
	row := &companyRow{
		ID:        company.ID,
		Name:      company.Name,
		Website:   company.Website,
		CreatedAt: company.CreatedAt,
	}
	if _, err := s.db.NewInsert().Model(row).Exec(ctx); err != nil {
		return fmt.Errorf("insert company: %w", err)
	}
	return nil
}

// DeleteCompany removes the company; its jobs go with it through the
// ON DELETE CASCADE foreign key.
func (s *JobStore) DeleteCompany(ctx context.Context, id string) error {
	res, err := s.db.NewDelete().Model((*companyRow)(nil)).Where("id = ?", id).Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete company: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *JobStore) GetCompany(ctx context.Context, id string) (domain.Company, error) {
	row := new(companyRow)
	err := s.db.NewSelect().Model(row).Where("id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Company{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Company{}, fmt.Errorf("get company: %w", err)
	}
	return row.toDomain(), nil
}

func (s *JobStore) ListCompanies(ctx context.Context) ([]domain.Company, error) {
	var rows []companyRow
	if err := s.db.NewSelect().Model(&rows).Order("name ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("list companies: %w", err)
	}
	companies := make([]domain.Company, 0, len(rows))
	for i := range rows {
		companies = append(companies, rows[i].toDomain())
	}
	return companies, nil
}
