package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound covers both a genuinely missing record and one the
	// caller is not allowed to see; the two are deliberately not
	// distinguishable from outside.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateResponse is returned when a participant already has a
	// response stored for the survey.
	ErrDuplicateResponse = errors.New("response already submitted for this survey")
	// ErrInvalidReference indicates a malformed or empty id.
	ErrInvalidReference = errors.New("invalid reference")
	// ErrSurveyInactive is returned when a submission targets a survey
	// that is not accepting responses.
	ErrSurveyInactive = errors.New("survey is not accepting responses")
)

// ValidationError reports either a malformed survey definition or the
// first required question left unanswered, identified by its display
// text.
type ValidationError struct {
	Question string // set for incomplete required answers
	Reason   string // set for definition problems
}

func (e *ValidationError) Error() string {
	if e.Question != "" {
		return fmt.Sprintf("required question not answered: %q", e.Question)
	}
	return e.Reason
}
