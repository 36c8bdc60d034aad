package memory

import (
	"context"
	"sort"
	"sync"

	"aerojob-backend/internal/app"
	"aerojob-backend/internal/domain"
)

// ResponseStore is an in-memory implementation of app.ResponseStore.
// The uniqueness check and insert happen under one lock, mirroring the
// compound unique index the Postgres store relies on.
type ResponseStore struct {
	mu        sync.RWMutex
	responses map[string]domain.Response
	// legacy holds rows migrated from the old reference scheme keyed by
	// participant; AnsweredSurveyIDs unions them with current rows.
	legacy map[string][]string
}

func NewResponseStore() *ResponseStore {
	return &ResponseStore{
		responses: make(map[string]domain.Response),
		legacy:    make(map[string][]string),
	}
}

// SeedLegacy registers an answered-survey link recorded under the old
// reference fields (test helper).
func (s *ResponseStore) SeedLegacy(participantID, surveyID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.legacy[participantID] = append(s.legacy[participantID], surveyID)
}

func (s *ResponseStore) Insert(_ context.Context, response *domain.Response) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.responses {
		if existing.SurveyID == response.SurveyID && existing.ParticipantID == response.ParticipantID {
			return domain.ErrDuplicateResponse
		}
	}
	s.responses[response.ID] = *response
	return nil
}

func (s *ResponseStore) Exists(_ context.Context, surveyID, participantID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.responses {
		if r.SurveyID == surveyID && r.ParticipantID == participantID {
			return true, nil
		}
	}
	return false, nil
}

func (s *ResponseStore) AnsweredSurveyIDs(_ context.Context, participantID string) (map[string]struct{}, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make(map[string]struct{})
	for _, r := range s.responses {
		if r.ParticipantID == participantID {
			ids[r.SurveyID] = struct{}{}
		}
	}
	for _, surveyID := range s.legacy[participantID] {
		ids[surveyID] = struct{}{}
	}
	return ids, nil
}

func (s *ResponseStore) ForSurvey(_ context.Context, surveyID string, filter app.ResponseFilter) ([]domain.Response, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Response, 0)
	for _, r := range s.responses {
		if r.SurveyID != surveyID {
			continue
		}
		if filter.ParticipantID != "" && r.ParticipantID != filter.ParticipantID {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *ResponseStore) Get(_ context.Context, id string) (domain.Response, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.responses[id]
	if !ok {
		return domain.Response{}, domain.ErrNotFound
	}
	return r, nil
}

func (s *ResponseStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.responses[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.responses, id)
	return nil
}

func (s *ResponseStore) deleteBySurvey(surveyID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, r := range s.responses {
		if r.SurveyID == surveyID {
			delete(s.responses, id)
		}
	}
}
