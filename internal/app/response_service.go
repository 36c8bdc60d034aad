package app

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"aerojob-backend/internal/domain"
)

// ResponseStore persists survey responses. Insert must surface the
// storage layer's compound unique constraint on (survey, participant)
// as domain.ErrDuplicateResponse; the service's own pre-check is only a
// UX shortcut, never the source of truth.
type ResponseStore interface {
	Insert(ctx context.Context, response *domain.Response) error
	Exists(ctx context.Context, surveyID, participantID string) (bool, error)
	AnsweredSurveyIDs(ctx context.Context, participantID string) (map[string]struct{}, error)
	ForSurvey(ctx context.Context, surveyID string, filter ResponseFilter) ([]domain.Response, error)
	Get(ctx context.Context, id string) (domain.Response, error)
	Delete(ctx context.Context, id string) error
}

// ResponseFilter narrows admin response listings.
type ResponseFilter struct {
	ParticipantID string
}

// UserDirectory resolves participant identity fields for exports and
// role filtering.
type UserDirectory interface {
	Get(ctx context.Context, id string) (domain.User, error)
	ByIDs(ctx context.Context, ids []string) (map[string]domain.User, error)
}

// Mailer delivers outbound mail. Implementations are best-effort from
// the engine's point of view.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// ResponsePublisher receives submission events for live feeds.
type ResponsePublisher interface {
	Publish(event ResponseEvent)
}

// ResponseService hosts the submission workflow plus the admin-side
// response operations: listing, deletion, CSV export.
type ResponseService struct {
	surveys   SurveyStore
	responses ResponseStore
	users     UserDirectory
	mailer    Mailer
	publisher ResponsePublisher
	notifyTo  string
	now       func() time.Time
	newID     func() string
}

func NewResponseService(surveys SurveyStore, responses ResponseStore, users UserDirectory) *ResponseService {
	return &ResponseService{
		surveys:   surveys,
		responses: responses,
		users:     users,
		now:       func() time.Time { return time.Now().UTC() },
		newID:     uuid.NewString,
	}
}

// WithNotifications enables best-effort admin mail on each submission.
func (s *ResponseService) WithNotifications(mailer Mailer, to string) *ResponseService {
	s.mailer = mailer
	s.notifyTo = to
	return s
}

// WithPublisher attaches a live-feed publisher.
func (s *ResponseService) WithPublisher(p ResponsePublisher) *ResponseService {
	s.publisher = p
	return s
}

// Submit validates the raw answers against the survey's question bank
// and stores exactly one response per (survey, participant) pair.
//
// The survey must be active and its audience must admit the caller's
// role; anything else reports ErrNotFound so survey existence is not
// leaked. Concurrent duplicate submissions are resolved by the store's
// unique constraint: one caller wins, the other gets
// ErrDuplicateResponse.
func (s *ResponseService) Submit(ctx context.Context, surveyID, participantID, role string, raw []RawAnswer) (domain.Response, error) {
	if surveyID == "" || participantID == "" {
		return domain.Response{}, domain.ErrInvalidReference
	}

	survey, err := s.surveys.Get(ctx, surveyID)
	if err != nil {
		return domain.Response{}, err
	}
	if !domain.AudienceMatchesRole(survey.Audience, role) {
		return domain.Response{}, domain.ErrNotFound
	}
	if survey.Status != domain.SurveyActive {
		return domain.Response{}, domain.ErrSurveyInactive
	}

	// Cheap early exit; the unique index still decides under races.
	if exists, err := s.responses.Exists(ctx, surveyID, participantID); err != nil {
		return domain.Response{}, err
	} else if exists {
		return domain.Response{}, domain.ErrDuplicateResponse
	}

	answers, err := ValidateResponse(survey, raw)
	if err != nil {
		return domain.Response{}, err
	}

	response := domain.Response{
		ID:            s.newID(),
		SurveyID:      surveyID,
		ParticipantID: participantID,
		Answers:       answers,
		CreatedAt:     s.now(),
	}
	if err := s.responses.Insert(ctx, &response); err != nil {
		return domain.Response{}, err
	}

	if s.publisher != nil {
		s.publisher.Publish(ResponseEvent{
			SurveyID:      surveyID,
			ResponseID:    response.ID,
			ParticipantID: participantID,
			SubmittedAt:   response.CreatedAt,
		})
	}
	s.notifySubmission(ctx, survey, response)

	return response, nil
}

// notifySubmission mails the configured admin address. Failures are
// logged and swallowed; notification is not part of the submit
// contract.
func (s *ResponseService) notifySubmission(ctx context.Context, survey domain.Survey, response domain.Response) {
	if s.mailer == nil || s.notifyTo == "" {
		return
	}
	subject := fmt.Sprintf("New response for %q", survey.Title)
	body := fmt.Sprintf("Survey %s received response %s at %s.",
		survey.ID, response.ID, response.CreatedAt.Format(time.RFC3339))
	if err := s.mailer.Send(ctx, s.notifyTo, subject, body); err != nil {
		log.Printf("submission mail failed: %v", err)
	}
}

// ForSurvey lists a survey's responses for admins, optionally filtered
// by participant id or participant role.
func (s *ResponseService) ForSurvey(ctx context.Context, surveyID string, filter ResponseFilter, role string) ([]domain.Response, error) {
	if surveyID == "" {
		return nil, domain.ErrInvalidReference
	}
	if _, err := s.surveys.Get(ctx, surveyID); err != nil {
		return nil, err
	}
	responses, err := s.responses.ForSurvey(ctx, surveyID, filter)
	if err != nil {
		return nil, err
	}
	if role == "" {
		return responses, nil
	}

	users, err := s.participantsFor(ctx, responses)
	if err != nil {
		return nil, err
	}
	filtered := responses[:0]
	for _, r := range responses {
		if strings.EqualFold(users[r.ParticipantID].Role, role) {
			filtered = append(filtered, r)
		}
	}
	return filtered, nil
}

// Delete removes one response directly (admin operation).
func (s *ResponseService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return domain.ErrInvalidReference
	}
	return s.responses.Delete(ctx, id)
}

// ExportCSV flattens every response of a survey into one row each:
// id, createdAt, participant email/name/role, and the answers as a
// JSON blob. encoding/csv handles embedded quotes and commas.
func (s *ResponseService) ExportCSV(ctx context.Context, surveyID string) ([]byte, error) {
	responses, err := s.ForSurvey(ctx, surveyID, ResponseFilter{}, "")
	if err != nil {
		return nil, err
	}
	users, err := s.participantsFor(ctx, responses)
	if err != nil {
		return nil, err
	}

	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	if err := w.Write([]string{"id", "createdAt", "email", "name", "role", "answers"}); err != nil {
		return nil, err
	}
	for _, r := range responses {
		blob, err := json.Marshal(r.Answers)
		if err != nil {
			return nil, err
		}
		participant := users[r.ParticipantID]
		record := []string{
			r.ID,
			r.CreatedAt.Format(time.RFC3339),
			participant.Email,
			participant.Name,
			participant.Role,
			string(blob),
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

func (s *ResponseService) participantsFor(ctx context.Context, responses []domain.Response) (map[string]domain.User, error) {
	ids := make([]string, 0, len(responses))
	seen := make(map[string]struct{}, len(responses))
	for _, r := range responses {
		if _, ok := seen[r.ParticipantID]; ok {
			continue
		}
		seen[r.ParticipantID] = struct{}{}
		ids = append(ids, r.ParticipantID)
	}
	return s.users.ByIDs(ctx, ids)
}
