package app_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"aerojob-backend/internal/app"
	"aerojob-backend/internal/domain"
	"aerojob-backend/internal/infra/memory"
)

type recordingSearches struct {
	mu    sync.Mutex
	terms []string
}

func (r *recordingSearches) RecordSearch(_ context.Context, term string) {
	r.mu.Lock()
	r.terms = append(r.terms, term)
	r.mu.Unlock()
}

func newJobFixture(t *testing.T) (*app.JobService, domain.Company) {
	t.Helper()
	service := app.NewJobService(memory.NewJobStore())
	company, err := service.CreateCompany(context.Background(), domain.Company{Name: "Acme", Website: "https://acme.test"})
	if err != nil {
		t.Fatalf("create company: %v", err)
	}
	return service, company
}

func TestCreateJobValidatesReferences(t *testing.T) {
	ctx := context.Background()
	service, company := newJobFixture(t)

	if _, err := service.CreateJob(ctx, domain.Job{Title: "  ", CompanyID: company.ID}); err == nil {
		t.Fatal("blank title accepted")
	}
	if _, err := service.CreateJob(ctx, domain.Job{Title: "Engineer"}); !errors.Is(err, domain.ErrInvalidReference) {
		t.Fatalf("missing company id: %v", err)
	}
	if _, err := service.CreateJob(ctx, domain.Job{Title: "Engineer", CompanyID: "ghost"}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("unknown company: %v", err)
	}

	job, err := service.CreateJob(ctx, domain.Job{Title: " Engineer ", CompanyID: company.ID, Location: " Remote "})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if job.ID == "" || job.Title != "Engineer" || job.Location != "Remote" {
		t.Fatalf("fields not normalized: %+v", job)
	}
}

func TestListJobsRecordsSearchTerms(t *testing.T) {
	ctx := context.Background()
	service, company := newJobFixture(t)
	searches := &recordingSearches{}
	service.WithSearchRecorder(searches)

	for _, title := range []string{"Backend Engineer", "Data Analyst"} {
		if _, err := service.CreateJob(ctx, domain.Job{Title: title, CompanyID: company.ID}); err != nil {
			t.Fatalf("create %s: %v", title, err)
		}
	}

	jobs, err := service.ListJobs(ctx, app.JobFilter{Title: " engineer "})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(jobs) != 1 || jobs[0].Title != "Backend Engineer" {
		t.Fatalf("filter miss: %+v", jobs)
	}
	if len(searches.terms) != 1 || searches.terms[0] != "engineer" {
		t.Fatalf("expected trimmed term recorded once, got %v", searches.terms)
	}

	// an unfiltered listing records nothing
	if _, err := service.ListJobs(ctx, app.JobFilter{}); err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(searches.terms) != 1 {
		t.Fatalf("blank filter must not be recorded, got %v", searches.terms)
	}
}

func TestDeleteCompanyCascadesJobs(t *testing.T) {
	ctx := context.Background()
	service, company := newJobFixture(t)

	job, err := service.CreateJob(ctx, domain.Job{Title: "Engineer", CompanyID: company.ID})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := service.DeleteCompany(ctx, company.ID); err != nil {
		t.Fatalf("delete company: %v", err)
	}
	if _, err := service.GetJob(ctx, job.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("job should be gone with its company, got %v", err)
	}
}

func TestUpdateJobKeepsIdentity(t *testing.T) {
	ctx := context.Background()
	service, company := newJobFixture(t)

	job, err := service.CreateJob(ctx, domain.Job{Title: "Engineer", CompanyID: company.ID})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	updated, err := service.UpdateJob(ctx, job.ID, domain.Job{Title: "Senior Engineer", Location: "Berlin"})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.ID != job.ID || updated.CompanyID != company.ID {
		t.Fatalf("identity changed: %+v", updated)
	}
	if updated.Title != "Senior Engineer" || updated.Location != "Berlin" {
		t.Fatalf("fields not applied: %+v", updated)
	}
}
