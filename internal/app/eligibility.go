package app

import (
	"context"
	"sort"

	"aerojob-backend/internal/domain"
)

// AnsweredIndex exposes which surveys a participant has already
// answered. Implementations must union matches across the canonical and
// legacy reference columns (older rows linked responses through a
// different field name).
type AnsweredIndex interface {
	AnsweredSurveyIDs(ctx context.Context, participantID string) (map[string]struct{}, error)
}

// SurveyProvider serves single survey documents, possibly through a
// cache.
type SurveyProvider interface {
	GetSurvey(ctx context.Context, surveyID string) (domain.Survey, error)
}

// EligibilityResolver computes the surveys a participant may currently
// view and answer: active status, matching audience, not yet answered.
type EligibilityResolver struct {
	surveys  SurveyStore
	answered AnsweredIndex
	provider SurveyProvider
}

func NewEligibilityResolver(surveys SurveyStore, answered AnsweredIndex) *EligibilityResolver {
	return &EligibilityResolver{surveys: surveys, answered: answered}
}

// WithProvider routes single-survey reads through a cache.
func (r *EligibilityResolver) WithProvider(p SurveyProvider) *EligibilityResolver {
	r.provider = p
	return r
}

// EligibleSurveys lists active surveys whose audience admits the role,
// minus those the participant already answered. An empty participantID
// means an anonymous caller: the set is returned unfiltered by the
// answered index. Newest survey first.
func (r *EligibilityResolver) EligibleSurveys(ctx context.Context, participantID, role string) ([]domain.Survey, error) {
	active, err := r.surveys.List(ctx, SurveyFilter{Status: domain.SurveyActive})
	if err != nil {
		return nil, err
	}

	var answered map[string]struct{}
	if participantID != "" {
		answered, err = r.answered.AnsweredSurveyIDs(ctx, participantID)
		if err != nil {
			return nil, err
		}
	}

	eligible := make([]domain.Survey, 0, len(active))
	for _, survey := range active {
		if !domain.AudienceMatchesRole(survey.Audience, role) {
			continue
		}
		if _, done := answered[survey.ID]; done {
			continue
		}
		eligible = append(eligible, survey)
	}

	sort.SliceStable(eligible, func(i, j int) bool {
		return eligible[i].CreatedAt.After(eligible[j].CreatedAt)
	})
	return eligible, nil
}

// VisibleSurvey backs the single-survey detail fetch for non-admin
// callers. An ineligible survey reports ErrNotFound, never forbidden,
// so its existence is not revealed.
func (r *EligibilityResolver) VisibleSurvey(ctx context.Context, surveyID, participantID, role string) (domain.Survey, error) {
	if surveyID == "" {
		return domain.Survey{}, domain.ErrInvalidReference
	}
	var (
		survey domain.Survey
		err    error
	)
	if r.provider != nil {
		survey, err = r.provider.GetSurvey(ctx, surveyID)
	} else {
		survey, err = r.surveys.Get(ctx, surveyID)
	}
	if err != nil {
		return domain.Survey{}, err
	}
	if survey.Status != domain.SurveyActive || !domain.AudienceMatchesRole(survey.Audience, role) {
		return domain.Survey{}, domain.ErrNotFound
	}
	if participantID != "" {
		answered, err := r.answered.AnsweredSurveyIDs(ctx, participantID)
		if err != nil {
			return domain.Survey{}, err
		}
		if _, done := answered[survey.ID]; done {
			return domain.Survey{}, domain.ErrNotFound
		}
	}
	return survey, nil
}
