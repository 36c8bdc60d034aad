package app

import (
	"encoding/json"

	"aerojob-backend/internal/domain"
)

// RawAnswer is one inbound answer entry. Clients send either an
// explicit {questionId, value} object or a bare value whose position
// in the sequence identifies the question (older payloads ship a flat
// value array).
type RawAnswer struct {
	QuestionID string
	Value      domain.AnswerValue
}

type explicitAnswer struct {
	QuestionID string              `json:"questionId"`
	Value      *domain.AnswerValue `json:"value"`
}

// UnmarshalJSON accepts both shapes. A JSON object is read as the
// explicit form (a missing questionId makes it positional); anything
// else is a bare positional value.
func (a *RawAnswer) UnmarshalJSON(data []byte) error {
	var probe explicitAnswer
	if err := json.Unmarshal(data, &probe); err == nil {
		a.QuestionID = probe.QuestionID
		if probe.Value != nil {
			a.Value = *probe.Value
		} else {
			a.Value = domain.TextValue("")
		}
		return nil
	}
	var value domain.AnswerValue
	if err := json.Unmarshal(data, &value); err != nil {
		return err
	}
	a.QuestionID = ""
	a.Value = value
	return nil
}

// ValidateResponse normalizes raw answers against the survey's
// question bank and enforces required-question completeness.
//
// Entries that cannot be resolved to a known question are dropped
// silently; duplicate entries keep the last value. Validation stops at
// the first required question without a non-empty answer. Values are
// stored as submitted, with only light shape coercion toward the
// question's declared type.
func ValidateResponse(survey domain.Survey, raw []RawAnswer) ([]domain.Answer, error) {
	values := make(map[string]domain.AnswerValue, len(raw))
	for i, entry := range raw {
		questionID := entry.QuestionID
		if questionID == "" && i < len(survey.Questions) {
			questionID = survey.Questions[i].ID
		}
		question, ok := survey.QuestionByID(questionID)
		if !ok {
			continue
		}
		values[question.ID] = coerceValue(question.Type, entry.Value)
	}

	for _, question := range survey.Questions {
		if !question.Required {
			continue
		}
		value, ok := values[question.ID]
		if !ok || value.IsEmpty() {
			return nil, &domain.ValidationError{Question: question.Text}
		}
	}

	answers := make([]domain.Answer, 0, len(values))
	for _, question := range survey.Questions {
		if value, ok := values[question.ID]; ok {
			answers = append(answers, domain.Answer{QuestionID: question.ID, Value: value})
		}
	}
	return answers, nil
}

// coerceValue nudges a value toward the declared question type without
// rewriting its content: a lone checkbox selection becomes a
// single-element list, and a numeric string answering a rating becomes
// a number. Everything else passes through untouched.
func coerceValue(t domain.QuestionType, v domain.AnswerValue) domain.AnswerValue {
	switch t {
	case domain.QuestionCheckbox:
		if v.Kind == domain.ValueText && !v.IsEmpty() {
			return domain.ListValue([]string{v.Text})
		}
	case domain.QuestionRating:
		if v.Kind == domain.ValueText {
			var n domain.AnswerValue
			if err := n.UnmarshalJSON([]byte(v.Text)); err == nil && n.Kind == domain.ValueNumber {
				return n
			}
		}
	}
	return v
}
