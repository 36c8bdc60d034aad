package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"aerojob-backend/internal/app"
	"aerojob-backend/internal/domain"
)

// SurveyStore is an in-memory implementation of app.SurveyStore,
// used by tests and the no-database demo mode.
type SurveyStore struct {
	mu        sync.RWMutex
	surveys   map[string]domain.Survey
	responses *ResponseStore // for cascade deletion, optional
}

func NewSurveyStore() *SurveyStore {
	return &SurveyStore{surveys: make(map[string]domain.Survey)}
}

// WithResponseStore wires the store whose rows are cascaded when a
// survey is deleted.
func (s *SurveyStore) WithResponseStore(responses *ResponseStore) *SurveyStore {
	s.responses = responses
	return s
}

func (s *SurveyStore) Insert(_ context.Context, survey *domain.Survey) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.surveys[survey.ID] = *survey
	return nil
}

func (s *SurveyStore) Update(_ context.Context, survey *domain.Survey) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.surveys[survey.ID]; !ok {
		return domain.ErrNotFound
	}
	s.surveys[survey.ID] = *survey
	return nil
}

func (s *SurveyStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	if _, ok := s.surveys[id]; !ok {
		s.mu.Unlock()
		return domain.ErrNotFound
	}
	delete(s.surveys, id)
	s.mu.Unlock()

	if s.responses != nil {
		s.responses.deleteBySurvey(id)
	}
	return nil
}

func (s *SurveyStore) Get(_ context.Context, id string) (domain.Survey, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	survey, ok := s.surveys[id]
	if !ok {
		return domain.Survey{}, domain.ErrNotFound
	}
	return survey, nil
}

// LoadSurvey lets the store double as a cache loader in no-database
// mode.
func (s *SurveyStore) LoadSurvey(ctx context.Context, id string) (domain.Survey, error) {
	return s.Get(ctx, id)
}

func (s *SurveyStore) List(_ context.Context, filter app.SurveyFilter) ([]domain.Survey, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Survey, 0, len(s.surveys))
	for _, survey := range s.surveys {
		if filter.Status != "" && survey.Status != filter.Status {
			continue
		}
		if filter.Title != "" && !strings.Contains(strings.ToLower(survey.Title), strings.ToLower(filter.Title)) {
			continue
		}
		out = append(out, survey)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}
