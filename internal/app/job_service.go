package app

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"aerojob-backend/internal/domain"
)

// JobStore persists job postings and companies.
type JobStore interface {
	InsertJob(ctx context.Context, job *domain.Job) error
	UpdateJob(ctx context.Context, job *domain.Job) error
	DeleteJob(ctx context.Context, id string) error
	GetJob(ctx context.Context, id string) (domain.Job, error)
	ListJobs(ctx context.Context, filter JobFilter) ([]domain.Job, error)
	InsertCompany(ctx context.Context, company *domain.Company) error
	DeleteCompany(ctx context.Context, id string) error
	GetCompany(ctx context.Context, id string) (domain.Company, error)
	ListCompanies(ctx context.Context) ([]domain.Company, error)
}

// JobFilter narrows public job listings.
type JobFilter struct {
	Title    string // case-insensitive substring
	Location string // case-insensitive substring
}

// SearchRecorder logs search terms as non-critical telemetry.
// Implementations must never fail the request path.
type SearchRecorder interface {
	RecordSearch(ctx context.Context, term string)
}

// JobService is plain board CRUD; no ranking, no statistics.
type JobService struct {
	store    JobStore
	searches SearchRecorder
	now      func() time.Time
	newID    func() string
}

func NewJobService(store JobStore) *JobService {
	return &JobService{
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
		newID: uuid.NewString,
	}
}

// WithSearchRecorder enables search-term telemetry on listings.
func (s *JobService) WithSearchRecorder(r SearchRecorder) *JobService {
	s.searches = r
	return s
}

// CreateJob stores a posting after trimming its free text. The company
// reference must resolve.
func (s *JobService) CreateJob(ctx context.Context, job domain.Job) (domain.Job, error) {
	job.Title = strings.TrimSpace(job.Title)
	if job.Title == "" {
		return domain.Job{}, &domain.ValidationError{Reason: "job title is required"}
	}
	if job.CompanyID == "" {
		return domain.Job{}, domain.ErrInvalidReference
	}
	if _, err := s.store.GetCompany(ctx, job.CompanyID); err != nil {
		return domain.Job{}, err
	}
	job.ID = s.newID()
	job.Location = strings.TrimSpace(job.Location)
	job.Description = strings.TrimSpace(job.Description)
	job.CreatedAt = s.now()
	if err := s.store.InsertJob(ctx, &job); err != nil {
		return domain.Job{}, err
	}
	return job, nil
}

// UpdateJob replaces the posting's mutable fields.
func (s *JobService) UpdateJob(ctx context.Context, id string, job domain.Job) (domain.Job, error) {
	if id == "" {
		return domain.Job{}, domain.ErrInvalidReference
	}
	existing, err := s.store.GetJob(ctx, id)
	if err != nil {
		return domain.Job{}, err
	}
	existing.Title = strings.TrimSpace(job.Title)
	if existing.Title == "" {
		return domain.Job{}, &domain.ValidationError{Reason: "job title is required"}
	}
	existing.Location = strings.TrimSpace(job.Location)
	existing.Description = strings.TrimSpace(job.Description)
	if err := s.store.UpdateJob(ctx, &existing); err != nil {
		return domain.Job{}, err
	}
	return existing, nil
}

// DeleteJob removes a posting.
func (s *JobService) DeleteJob(ctx context.Context, id string) error {
	if id == "" {
		return domain.ErrInvalidReference
	}
	return s.store.DeleteJob(ctx, id)
}

// GetJob fetches one posting.
func (s *JobService) GetJob(ctx context.Context, id string) (domain.Job, error) {
	if id == "" {
		return domain.Job{}, domain.ErrInvalidReference
	}
	return s.store.GetJob(ctx, id)
}

// ListJobs returns postings matching the filter, newest first. A
// non-empty title filter is recorded as search telemetry,
// fire-and-forget.
func (s *JobService) ListJobs(ctx context.Context, filter JobFilter) ([]domain.Job, error) {
	if term := strings.TrimSpace(filter.Title); term != "" && s.searches != nil {
		s.searches.RecordSearch(ctx, term)
	}
	return s.store.ListJobs(ctx, filter)
}

// CreateCompany stores a company.
func (s *JobService) CreateCompany(ctx context.Context, company domain.Company) (domain.Company, error) {
	company.Name = strings.TrimSpace(company.Name)
	if company.Name == "" {
		return domain.Company{}, &domain.ValidationError{Reason: "company name is required"}
	}
	company.ID = s.newID()
	company.Website = strings.TrimSpace(company.Website)
	company.CreatedAt = s.now()
	if err := s.store.InsertCompany(ctx, &company); err != nil {
		return domain.Company{}, err
	}
	return company, nil
}

// DeleteCompany removes a company; the store cascades its jobs.
func (s *JobService) DeleteCompany(ctx context.Context, id string) error {
	if id == "" {
		return domain.ErrInvalidReference
	}
	return s.store.DeleteCompany(ctx, id)
}

// ListCompanies returns all companies.
func (s *JobService) ListCompanies(ctx context.Context) ([]domain.Company, error) {
	return s.store.ListCompanies(ctx)
}
