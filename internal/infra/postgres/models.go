package postgres

import (
	"encoding/json"
	"time"

	"github.com/uptrace/bun"

	"aerojob-backend/internal/domain"
)

type surveyRow struct {
	bun.BaseModel `bun:"table:surveys"`

	ID          string    `bun:"id,pk"`
	Title       string    `bun:"title"`
	Description string    `bun:"description"`
	Audience    string    `bun:"audience"`
	Status      string    `bun:"status"`
	Questions   []byte    `bun:"questions,type:jsonb"`
	CreatedAt   time.Time `bun:"created_at"`
	UpdatedAt   time.Time `bun:"updated_at"`
}

func surveyToRow(s *domain.Survey) (*surveyRow, error) {
	questions, err := json.Marshal(s.Questions)
	if err != nil {
		return nil, err
	}
	return &surveyRow{
		ID:          s.ID,
		Title:       s.Title,
		Description: s.Description,
		Audience:    string(s.Audience),
		Status:      string(s.Status),
		Questions:   questions,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}, nil
}

func (r *surveyRow) toDomain() (domain.Survey, error) {
	var questions []domain.Question
	if len(r.Questions) > 0 {
		if err := json.Unmarshal(r.Questions, &questions); err != nil {
			return domain.Survey{}, err
		}
	}
	return domain.Survey{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		Audience:    domain.Audience(r.Audience),
		Status:      domain.SurveyStatus(r.Status),
		Questions:   questions,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}, nil
}

// responseRow keeps the legacy reference columns from the old schema
// alongside the canonical ones. New code writes only the canonical
// pair; reads union both so pre-migration rows still count.
type responseRow struct {
	bun.BaseModel `bun:"table:responses"`

	ID                  string    `bun:"id,pk"`
	SurveyID            string    `bun:"survey_id"`
	ParticipantID       string    `bun:"participant_id"`
	LegacySurveyID      *string   `bun:"legacy_survey_id"`
	LegacyParticipantID *string   `bun:"legacy_participant_id"`
	Answers             []byte    `bun:"answers,type:jsonb"`
	CreatedAt           time.Time `bun:"created_at"`
}

func responseToRow(r *domain.Response) (*responseRow, error) {
	answers, err := json.Marshal(r.Answers)
	if err != nil {
		return nil, err
	}
	return &responseRow{
		ID:            r.ID,
		SurveyID:      r.SurveyID,
		ParticipantID: r.ParticipantID,
		Answers:       answers,
		CreatedAt:     r.CreatedAt,
	}, nil
}

func (r *responseRow) toDomain() (domain.Response, error) {
	var answers []domain.Answer
	if len(r.Answers) > 0 {
		if err := json.Unmarshal(r.Answers, &answers); err != nil {
			return domain.Response{}, err
		}
	}
	return domain.Response{
		ID:            r.ID,
		SurveyID:      r.SurveyID,
		ParticipantID: r.ParticipantID,
		Answers:       answers,
		CreatedAt:     r.CreatedAt,
	}, nil
}

type userRow struct {
	bun.BaseModel `bun:"table:users"`

	ID        string    `bun:"id,pk"`
	Email     string    `bun:"email"`
	Name      string    `bun:"name"`
	Role      string    `bun:"role"`
	CreatedAt time.Time `bun:"created_at"`
}

func (r *userRow) toDomain() domain.User {
	return domain.User{
		ID:        r.ID,
		Email:     r.Email,
		Name:      r.Name,
		Role:      r.Role,
		CreatedAt: r.CreatedAt,
	}
}

type companyRow struct {
	bun.BaseModel `bun:"table:companies"`

	ID        string    `bun:"id,pk"`
	Name      string    `bun:"name"`
	Website   string    `bun:"website"`
	CreatedAt time.Time `bun:"created_at"`
}

func (r *companyRow) toDomain() domain.Company {
	return domain.Company{
		ID:        r.ID,
		Name:      r.Name,
		Website:   r.Website,
		CreatedAt: r.CreatedAt,
	}
}

type jobRow struct {
	bun.BaseModel `bun:"table:jobs"`

	ID          string    `bun:"id,pk"`
	CompanyID   string    `bun:"company_id"`
	Title       string    `bun:"title"`
	Location    string    `bun:"location"`
	Description string    `bun:"description"`
	CreatedAt   time.Time `bun:"created_at"`
}

func (r *jobRow) toDomain() domain.Job {
	return domain.Job{
		ID:          r.ID,
		CompanyID:   r.CompanyID,
		Title:       r.Title,
		Location:    r.Location,
		Description: r.Description,
		CreatedAt:   r.CreatedAt,
	}
}
