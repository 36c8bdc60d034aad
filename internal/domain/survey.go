package domain

import "time"

// QuestionType tags how a question is rendered and answered.
type QuestionType string

const (
	QuestionShortText      QuestionType = "short_text"
	QuestionLongText       QuestionType = "long_text"
	QuestionMultipleChoice QuestionType = "multiple_choice"
	QuestionCheckbox       QuestionType = "checkbox"
	QuestionRating         QuestionType = "rating"
)

// IsChoice reports whether the type carries an option set.
func (t QuestionType) IsChoice() bool {
	return t == QuestionMultipleChoice || t == QuestionCheckbox
}

// Audience is the coarse participant category a survey targets.
type Audience string

const (
	AudienceAll      Audience = "all"
	AudienceStudents Audience = "students"
	AudienceAlumni   Audience = "alumni"
)

// SurveyStatus tracks the survey lifecycle. Responses are only
// accepted while the survey is active.
type SurveyStatus string

const (
	SurveyDraft    SurveyStatus = "draft"
	SurveyActive   SurveyStatus = "active"
	SurveyArchived SurveyStatus = "archived"
)

// Question is a single entry in a survey's question bank. The ID is
// assigned once and stays stable across survey edits.
type Question struct {
	ID       string       `json:"id"`
	Text     string       `json:"text"`
	Type     QuestionType `json:"type"`
	Required bool         `json:"required"`
	Options  []string     `json:"options,omitempty"` // only for choice types
}

// Survey owns its embedded question bank; deleting a survey cascades
// to its responses.
type Survey struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	Audience    Audience     `json:"audience"`
	Status      SurveyStatus `json:"status"`
	Questions   []Question   `json:"questions"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

// QuestionByID returns the question with the given id, if present.
func (s *Survey) QuestionByID(id string) (Question, bool) {
	for _, q := range s.Questions {
		if q.ID == id {
			return q, true
		}
	}
	return Question{}, false
}
