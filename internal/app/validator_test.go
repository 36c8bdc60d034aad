package app

import (
	"encoding/json"
	"errors"
	"testing"

	"aerojob-backend/internal/domain"
)

func surveyWithQuestions(questions ...domain.Question) domain.Survey {
	return domain.Survey{
		ID:        "s1",
		Title:     "Exit Survey",
		Audience:  domain.AudienceAll,
		Status:    domain.SurveyActive,
		Questions: questions,
	}
}

func TestValidateExplicitAnswers(t *testing.T) {
	survey := surveyWithQuestions(
		domain.Question{ID: "q1", Text: "Name?", Type: domain.QuestionShortText, Required: true},
		domain.Question{ID: "q2", Text: "Comments?", Type: domain.QuestionLongText},
	)
	answers, err := ValidateResponse(survey, []RawAnswer{
		{QuestionID: "q2", Value: domain.TextValue("fine")},
		{QuestionID: "q1", Value: domain.TextValue("Ada")},
	})
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if len(answers) != 2 {
		t.Fatalf("expected 2 answers, got %d", len(answers))
	}
	// normalized output follows question bank order
	if answers[0].QuestionID != "q1" || answers[1].QuestionID != "q2" {
		t.Fatalf("answers out of order: %+v", answers)
	}
}

func TestValidatePositionalAnswers(t *testing.T) {
	survey := surveyWithQuestions(
		domain.Question{ID: "q1", Text: "Rate us", Type: domain.QuestionRating, Required: true},
		domain.Question{ID: "q2", Text: "Comments?", Type: domain.QuestionLongText},
	)
	// flat value array from an older client
	answers, err := ValidateResponse(survey, []RawAnswer{
		{Value: domain.NumberValue(5)},
		{Value: domain.TextValue("great")},
	})
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if v, ok := answersValue(answers, "q1"); !ok || v.Number != 5 {
		t.Fatalf("expected q1=5, got %+v", answers)
	}
	if v, ok := answersValue(answers, "q2"); !ok || v.Text != "great" {
		t.Fatalf("expected q2=great, got %+v", answers)
	}
}

func TestValidateDropsUnknownQuestions(t *testing.T) {
	survey := surveyWithQuestions(
		domain.Question{ID: "q1", Text: "Name?", Type: domain.QuestionShortText},
	)
	answers, err := ValidateResponse(survey, []RawAnswer{
		{QuestionID: "ghost", Value: domain.TextValue("dropped")},
		{QuestionID: "q1", Value: domain.TextValue("kept")},
	})
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if len(answers) != 1 || answers[0].QuestionID != "q1" {
		t.Fatalf("expected only q1, got %+v", answers)
	}
}

func TestValidateDuplicatesKeepLast(t *testing.T) {
	survey := surveyWithQuestions(
		domain.Question{ID: "q1", Text: "Name?", Type: domain.QuestionShortText},
	)
	answers, err := ValidateResponse(survey, []RawAnswer{
		{QuestionID: "q1", Value: domain.TextValue("first")},
		{QuestionID: "q1", Value: domain.TextValue("second")},
	})
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if answers[0].Value.Text != "second" {
		t.Fatalf("expected last value to win, got %q", answers[0].Value.Text)
	}
}

func TestValidateRequiredFailures(t *testing.T) {
	cases := []struct {
		name  string
		value domain.AnswerValue
	}{
		{"empty string", domain.TextValue("")},
		{"whitespace only", domain.TextValue("   ")},
		{"empty list", domain.ListValue([]string{})},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			survey := surveyWithQuestions(
				domain.Question{ID: "q1", Text: "Did you enjoy the program?", Type: domain.QuestionRating, Required: true},
			)
			_, err := ValidateResponse(survey, []RawAnswer{{QuestionID: "q1", Value: tc.value}})
			var validation *domain.ValidationError
			if !errors.As(err, &validation) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if validation.Question != "Did you enjoy the program?" {
				t.Fatalf("error should name the question, got %q", validation.Question)
			}
		})
	}
}

func TestValidateRequiredCheckboxBlankSelections(t *testing.T) {
	survey := surveyWithQuestions(
		domain.Question{ID: "q1", Text: "Which events did you attend?", Type: domain.QuestionCheckbox, Required: true, Options: []string{"Career fair", "Mentoring"}},
	)
	// selections that are all whitespace do not satisfy the requirement
	for _, list := range [][]string{{"   "}, {"", ""}} {
		_, err := ValidateResponse(survey, []RawAnswer{{QuestionID: "q1", Value: domain.ListValue(list)}})
		var validation *domain.ValidationError
		if !errors.As(err, &validation) || validation.Question != "Which events did you attend?" {
			t.Fatalf("list %q: expected validation naming the question, got %v", list, err)
		}
	}

	if _, err := ValidateResponse(survey, []RawAnswer{{QuestionID: "q1", Value: domain.ListValue([]string{"Mentoring"})}}); err != nil {
		t.Fatalf("real selection rejected: %v", err)
	}
}

func TestValidateRequiredZeroPasses(t *testing.T) {
	survey := surveyWithQuestions(
		domain.Question{ID: "q1", Text: "Rate us", Type: domain.QuestionRating, Required: true},
	)
	if _, err := ValidateResponse(survey, []RawAnswer{{QuestionID: "q1", Value: domain.NumberValue(0)}}); err != nil {
		t.Fatalf("zero is an answer: %v", err)
	}
}

func TestValidateFailsFastOnFirstRequired(t *testing.T) {
	survey := surveyWithQuestions(
		domain.Question{ID: "q1", Text: "First", Type: domain.QuestionShortText, Required: true},
		domain.Question{ID: "q2", Text: "Second", Type: domain.QuestionShortText, Required: true},
	)
	_, err := ValidateResponse(survey, nil)
	var validation *domain.ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if validation.Question != "First" {
		t.Fatalf("expected first failing question, got %q", validation.Question)
	}
}

func TestValidateCoercesCheckboxSingleton(t *testing.T) {
	survey := surveyWithQuestions(
		domain.Question{ID: "q1", Text: "Pick", Type: domain.QuestionCheckbox, Required: true, Options: []string{"a", "b"}},
	)
	answers, err := ValidateResponse(survey, []RawAnswer{{QuestionID: "q1", Value: domain.TextValue("a")}})
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if answers[0].Value.Kind != domain.ValueList || len(answers[0].Value.List) != 1 {
		t.Fatalf("expected singleton list, got %+v", answers[0].Value)
	}
}

func TestRawAnswerUnmarshalShapes(t *testing.T) {
	var parsed []RawAnswer
	payload := `[{"questionId":"q1","value":"yes"},{"value":5},"bare text",["a","b"],7]`
	if err := json.Unmarshal([]byte(payload), &parsed); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(parsed) != 5 {
		t.Fatalf("expected 5 entries, got %d", len(parsed))
	}
	if parsed[0].QuestionID != "q1" || parsed[0].Value.Text != "yes" {
		t.Fatalf("explicit entry parsed wrong: %+v", parsed[0])
	}
	if parsed[1].QuestionID != "" || parsed[1].Value.Number != 5 {
		t.Fatalf("value-only entry parsed wrong: %+v", parsed[1])
	}
	if parsed[2].Value.Text != "bare text" {
		t.Fatalf("bare string parsed wrong: %+v", parsed[2])
	}
	if parsed[3].Value.Kind != domain.ValueList {
		t.Fatalf("bare array parsed wrong: %+v", parsed[3])
	}
	if parsed[4].Value.Number != 7 {
		t.Fatalf("bare number parsed wrong: %+v", parsed[4])
	}
}

func answersValue(answers []domain.Answer, questionID string) (domain.AnswerValue, bool) {
	for _, a := range answers {
		if a.QuestionID == questionID {
			return a.Value, true
		}
	}
	return domain.AnswerValue{}, false
}
