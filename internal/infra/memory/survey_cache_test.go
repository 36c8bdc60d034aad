package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"aerojob-backend/internal/domain"
)

func TestSurveyCacheCaches(t *testing.T) {
	loader := newCountingLoader(t)
	cache := NewSurveyCache(loader, time.Minute)

	if _, err := cache.GetSurvey(context.Background(), "survey-1"); err != nil {
		t.Fatalf("get survey: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader once, got %d", loader.calls)
	}

	if _, err := cache.GetSurvey(context.Background(), "survey-1"); err != nil {
		t.Fatalf("get survey 2: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls %d", loader.calls)
	}
}

func TestSurveyCacheInvalidate(t *testing.T) {
	ctx := context.Background()
	loader := newCountingLoader(t)
	cache := NewSurveyCache(loader, time.Minute)

	if _, err := cache.GetSurvey(ctx, "survey-1"); err != nil {
		t.Fatalf("get survey: %v", err)
	}
	cache.Invalidate(ctx, "survey-1")
	if _, err := cache.GetSurvey(ctx, "survey-1"); err != nil {
		t.Fatalf("get after invalidate: %v", err)
	}
	if loader.calls != 2 {
		t.Fatalf("expected reload after invalidate, got %d", loader.calls)
	}
}

func TestSurveyCacheConcurrentMisses(t *testing.T) {
	ctx := context.Background()
	loader := newCountingLoader(t)
	for _, id := range []string{"survey-2", "survey-3", "survey-4"} {
		survey := domain.Survey{ID: id, Title: "Survey " + id, Audience: domain.AudienceAll, Status: domain.SurveyActive}
		if err := loader.store.Insert(ctx, &survey); err != nil {
			t.Fatalf("seed survey: %v", err)
		}
	}
	cache := NewSurveyCache(loader, time.Minute)

	// misses on distinct ids run their fills in parallel
	var wg sync.WaitGroup
	errs := make([]error, 4)
	for i, id := range []string{"survey-1", "survey-2", "survey-3", "survey-4"} {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			_, errs[i] = cache.GetSurvey(ctx, id)
		}(i, id)
	}
	wg.Wait()
	for _, err := range errs {
		if err != nil {
			t.Fatalf("concurrent get: %v", err)
		}
	}
}

type countingLoader struct {
	store *SurveyStore
	mu    sync.Mutex
	calls int
}

func newCountingLoader(t *testing.T) *countingLoader {
	t.Helper()
	store := NewSurveyStore()
	survey := domain.Survey{
		ID:       "survey-1",
		Title:    "Exit Survey",
		Audience: domain.AudienceAll,
		Status:   domain.SurveyActive,
		Questions: []domain.Question{
			{ID: "q1", Text: "Did you enjoy the program?", Type: domain.QuestionRating, Required: true},
		},
	}
	if err := store.Insert(context.Background(), &survey); err != nil {
		t.Fatalf("seed survey: %v", err)
	}
	return &countingLoader{store: store}
}

func (l *countingLoader) LoadSurvey(ctx context.Context, surveyID string) (domain.Survey, error) {
	l.mu.Lock()
	l.calls++
	l.mu.Unlock()
	return l.store.LoadSurvey(ctx, surveyID)
}
