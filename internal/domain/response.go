package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ValueKind discriminates the answer value union.
type ValueKind string

const (
	ValueText   ValueKind = "text"
	ValueNumber ValueKind = "number"
	ValueList   ValueKind = "list"
)

// AnswerValue models a loosely typed answer as a tagged union instead
// of an opaque blob: a string, a number, or a list of strings.
type AnswerValue struct {
	Kind   ValueKind
	Text   string
	Number float64
	List   []string
}

// TextValue builds a text answer.
func TextValue(s string) AnswerValue {
	return AnswerValue{Kind: ValueText, Text: s}
}

// NumberValue builds a numeric answer.
func NumberValue(n float64) AnswerValue {
	return AnswerValue{Kind: ValueNumber, Number: n}
}

// ListValue builds a string-list answer.
func ListValue(items []string) AnswerValue {
	return AnswerValue{Kind: ValueList, List: items}
}

// IsEmpty reports whether the value counts as an empty answer: a list
// with no element that trims to text, or text that trims to nothing.
// Numbers are never empty, so a rating of 0 still counts as answered.
func (v AnswerValue) IsEmpty() bool {
	switch v.Kind {
	case ValueList:
		for _, item := range v.List {
			if strings.TrimSpace(item) != "" {
				return false
			}
		}
		return true
	case ValueNumber:
		return false
	default:
		return strings.TrimSpace(v.Text) == ""
	}
}

// String renders the value for display and CSV export.
func (v AnswerValue) String() string {
	switch v.Kind {
	case ValueNumber:
		return strconv.FormatFloat(v.Number, 'f', -1, 64)
	case ValueList:
		return strings.Join(v.List, "; ")
	default:
		return v.Text
	}
}

// MarshalJSON emits the bare JSON value (string, number, or array),
// matching the wire shape clients submit.
func (v AnswerValue) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case ValueNumber:
		return json.Marshal(v.Number)
	case ValueList:
		if v.List == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(v.List)
	default:
		return json.Marshal(v.Text)
	}
}

// UnmarshalJSON accepts a string, a number, or an array of strings.
func (v *AnswerValue) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" {
		*v = TextValue("")
		return nil
	}
	switch {
	case strings.HasPrefix(trimmed, `"`):
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = TextValue(s)
	case strings.HasPrefix(trimmed, "["):
		var items []string
		if err := json.Unmarshal(data, &items); err != nil {
			// tolerate mixed arrays by re-reading as raw values
			var raw []json.RawMessage
			if err2 := json.Unmarshal(data, &raw); err2 != nil {
				return err
			}
			items = items[:0]
			for _, r := range raw {
				var s string
				if json.Unmarshal(r, &s) == nil {
					items = append(items, s)
				} else {
					items = append(items, strings.TrimSpace(string(r)))
				}
			}
		}
		*v = ListValue(items)
	default:
		n, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return fmt.Errorf("unsupported answer value %s", trimmed)
		}
		*v = NumberValue(n)
	}
	return nil
}

// Answer pairs a question with its submitted value.
type Answer struct {
	QuestionID string      `json:"questionId"`
	Value      AnswerValue `json:"value"`
}

// Response is one participant's completed submission for a survey.
// At most one response exists per (survey, participant) pair; a
// response is immutable once stored.
type Response struct {
	ID            string    `json:"id"`
	SurveyID      string    `json:"surveyId"`
	ParticipantID string    `json:"participantId"`
	Answers       []Answer  `json:"answers"`
	CreatedAt     time.Time `json:"createdAt"`
}

// AnswerFor returns the value submitted for a question, if any.
func (r *Response) AnswerFor(questionID string) (AnswerValue, bool) {
	for _, a := range r.Answers {
		if a.QuestionID == questionID {
			return a.Value, true
		}
	}
	return AnswerValue{}, false
}
