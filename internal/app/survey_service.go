package app

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"aerojob-backend/internal/domain"
)

// SurveyStore abstracts survey persistence (Postgres, in-memory, etc).
type SurveyStore interface {
	Insert(ctx context.Context, survey *domain.Survey) error
	Update(ctx context.Context, survey *domain.Survey) error
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (domain.Survey, error)
	List(ctx context.Context, filter SurveyFilter) ([]domain.Survey, error)
}

// SurveyFilter narrows admin listings. Zero value lists everything.
type SurveyFilter struct {
	Status domain.SurveyStatus
	Title  string // case-insensitive substring match
}

// SurveyCache is an optional read-through cache invalidated on writes.
type SurveyCache interface {
	Invalidate(ctx context.Context, surveyID string)
}

// QuestionSpec is the loose inbound shape for a question; enum fields
// are folded through the synonym tables during normalization.
type QuestionSpec struct {
	ID       string   `json:"id,omitempty"`
	Text     string   `json:"text"`
	Type     string   `json:"type"`
	Required bool     `json:"required"`
	Options  []string `json:"options,omitempty"`
}

// SurveySpec is the inbound shape for survey create/update.
type SurveySpec struct {
	Title       string         `json:"title"`
	Description string         `json:"description,omitempty"`
	Audience    string         `json:"audience"`
	Status      string         `json:"status,omitempty"`
	Questions   []QuestionSpec `json:"questions"`
}

// SurveyService owns the survey lifecycle: create, update, delete,
// lookup. All free text is trimmed and enum-like fields are folded
// through the synonym tables on the way in.
type SurveyService struct {
	store SurveyStore
	cache SurveyCache
	now   func() time.Time
	newID func() string
}

func NewSurveyService(store SurveyStore) *SurveyService {
	return &SurveyService{
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
		newID: uuid.NewString,
	}
}

// WithCache attaches a cache to invalidate on update/delete.
func (s *SurveyService) WithCache(cache SurveyCache) *SurveyService {
	s.cache = cache
	return s
}

// Create normalizes the spec and stores a new survey. Status defaults
// to draft when absent.
func (s *SurveyService) Create(ctx context.Context, spec SurveySpec) (domain.Survey, error) {
	survey, err := s.normalize(spec)
	if err != nil {
		return domain.Survey{}, err
	}
	survey.ID = s.newID()
	survey.CreatedAt = s.now()
	survey.UpdatedAt = survey.CreatedAt
	if err := s.store.Insert(ctx, &survey); err != nil {
		return domain.Survey{}, err
	}
	return survey, nil
}

// Update replaces the survey's fields with the normalized spec,
// preserving the original creation time and question ids already
// present in the spec.
func (s *SurveyService) Update(ctx context.Context, id string, spec SurveySpec) (domain.Survey, error) {
	if id == "" {
		return domain.Survey{}, domain.ErrInvalidReference
	}
	existing, err := s.store.Get(ctx, id)
	if err != nil {
		return domain.Survey{}, err
	}
	survey, err := s.normalize(spec)
	if err != nil {
		return domain.Survey{}, err
	}
	survey.ID = existing.ID
	survey.CreatedAt = existing.CreatedAt
	survey.UpdatedAt = s.now()
	if err := s.store.Update(ctx, &survey); err != nil {
		return domain.Survey{}, err
	}
	if s.cache != nil {
		s.cache.Invalidate(ctx, survey.ID)
	}
	return survey, nil
}

// Delete removes the survey; the store cascades response deletion.
func (s *SurveyService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return domain.ErrInvalidReference
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	if s.cache != nil {
		s.cache.Invalidate(ctx, id)
	}
	return nil
}

// Get fetches a survey without any visibility gating; admin use only.
func (s *SurveyService) Get(ctx context.Context, id string) (domain.Survey, error) {
	if id == "" {
		return domain.Survey{}, domain.ErrInvalidReference
	}
	return s.store.Get(ctx, id)
}

// List returns surveys matching the admin filter, newest first.
func (s *SurveyService) List(ctx context.Context, filter SurveyFilter) ([]domain.Survey, error) {
	return s.store.List(ctx, filter)
}

func (s *SurveyService) normalize(spec SurveySpec) (domain.Survey, error) {
	title := strings.TrimSpace(spec.Title)
	if title == "" {
		return domain.Survey{}, &domain.ValidationError{Reason: "survey title is required"}
	}

	status := domain.SurveyDraft
	if strings.TrimSpace(spec.Status) != "" {
		status = domain.NormalizeStatus(spec.Status)
	}

	questions := make([]domain.Question, 0, len(spec.Questions))
	for _, qs := range spec.Questions {
		text := strings.TrimSpace(qs.Text)
		if text == "" {
			return domain.Survey{}, &domain.ValidationError{Reason: "question text is required"}
		}
		q := domain.Question{
			ID:       strings.TrimSpace(qs.ID),
			Text:     text,
			Type:     domain.NormalizeQuestionType(qs.Type),
			Required: qs.Required,
		}
		if q.ID == "" {
			q.ID = s.newID()
		}
		// Options only exist on choice types, even if the client sent some.
		if q.Type.IsChoice() {
			for _, opt := range qs.Options {
				if trimmed := strings.TrimSpace(opt); trimmed != "" {
					q.Options = append(q.Options, trimmed)
				}
			}
			if len(q.Options) == 0 {
				return domain.Survey{}, &domain.ValidationError{Reason: "choice question needs at least one option"}
			}
		}
		questions = append(questions, q)
	}

	return domain.Survey{
		Title:       title,
		Description: strings.TrimSpace(spec.Description),
		Audience:    domain.NormalizeAudience(spec.Audience),
		Status:      status,
		Questions:   questions,
	}, nil
}
