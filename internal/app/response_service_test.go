package app_test

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"aerojob-backend/internal/app"
	"aerojob-backend/internal/domain"
)

func timeNow() time.Time {
	return time.Now().UTC()
}

func TestSubmitExitSurveyScenario(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	err := f.surveys.Insert(ctx, &domain.Survey{
		ID:       "exit",
		Title:    "Exit Survey",
		Audience: domain.AudienceStudents,
		Status:   domain.SurveyActive,
		Questions: []domain.Question{
			{ID: "q1", Text: "Did you enjoy the program?", Type: domain.QuestionRating, Required: true},
		},
		CreatedAt: timeNow(),
	})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	// empty rating fails naming the question
	_, err = f.service.Submit(ctx, "exit", "student-1", "student", []app.RawAnswer{
		{QuestionID: "q1", Value: domain.TextValue("")},
	})
	var validation *domain.ValidationError
	if !errors.As(err, &validation) || validation.Question != "Did you enjoy the program?" {
		t.Fatalf("expected validation naming the question, got %v", err)
	}

	// a positional rating succeeds
	response, err := f.service.Submit(ctx, "exit", "student-1", "student", []app.RawAnswer{
		{Value: domain.NumberValue(5)},
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if v, ok := response.AnswerFor("q1"); !ok || v.Number != 5 {
		t.Fatalf("stored answer wrong: %+v", response.Answers)
	}

	// and the survey disappears from the student's eligible set
	surveys, err := f.resolver.EligibleSurveys(ctx, "student-1", "student")
	if err != nil {
		t.Fatalf("eligible: %v", err)
	}
	for _, s := range surveys {
		if s.ID == "exit" {
			t.Fatalf("answered survey still listed")
		}
	}
}

func TestSubmitRejectsInactiveSurvey(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.addSurvey(t, "archived", domain.AudienceAll, domain.SurveyArchived, timeNow())

	_, err := f.service.Submit(ctx, "archived", "p1", "student", nil)
	if !errors.Is(err, domain.ErrSurveyInactive) {
		t.Fatalf("expected inactive error, got %v", err)
	}
}

func TestSubmitHidesAudienceMismatch(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.addSurvey(t, "alumni-only", domain.AudienceAlumni, domain.SurveyActive, timeNow())

	_, err := f.service.Submit(ctx, "alumni-only", "p1", "student", nil)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found for wrong audience, got %v", err)
	}
}

func TestSubmitDuplicate(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.addSurvey(t, "s1", domain.AudienceAll, domain.SurveyActive, timeNow())

	answers := []app.RawAnswer{{QuestionID: "s1-q1", Value: domain.TextValue("hi")}}
	if _, err := f.service.Submit(ctx, "s1", "p1", "student", answers); err != nil {
		t.Fatalf("first submit: %v", err)
	}
	_, err := f.service.Submit(ctx, "s1", "p1", "student", answers)
	if !errors.Is(err, domain.ErrDuplicateResponse) {
		t.Fatalf("expected duplicate error, got %v", err)
	}
}

func TestSubmitConcurrentDuplicates(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.addSurvey(t, "s1", domain.AudienceAll, domain.SurveyActive, timeNow())
	answers := []app.RawAnswer{{QuestionID: "s1-q1", Value: domain.TextValue("race")}}

	const attempts = 8
	errs := make([]error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.service.Submit(ctx, "s1", "p1", "student", answers)
		}(i)
	}
	wg.Wait()

	won, lost := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			won++
		case errors.Is(err, domain.ErrDuplicateResponse):
			lost++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if won != 1 || lost != attempts-1 {
		t.Fatalf("expected exactly one winner, got %d winners / %d conflicts", won, lost)
	}
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []app.ResponseEvent
}

func (p *recordingPublisher) Publish(e app.ResponseEvent) {
	p.mu.Lock()
	p.events = append(p.events, e)
	p.mu.Unlock()
}

type failingMailer struct{ calls int }

func (m *failingMailer) Send(context.Context, string, string, string) error {
	m.calls++
	return fmt.Errorf("smtp down")
}

func TestSubmitPublishesAndMailFailureIsSwallowed(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.addSurvey(t, "s1", domain.AudienceAll, domain.SurveyActive, timeNow())

	publisher := &recordingPublisher{}
	mailer := &failingMailer{}
	f.service.WithPublisher(publisher).WithNotifications(mailer, "admin@example.com")

	response, err := f.service.Submit(ctx, "s1", "p1", "student", []app.RawAnswer{
		{QuestionID: "s1-q1", Value: domain.TextValue("ok")},
	})
	if err != nil {
		t.Fatalf("submit should succeed despite mail failure: %v", err)
	}
	if mailer.calls != 1 {
		t.Fatalf("expected one mail attempt, got %d", mailer.calls)
	}
	if len(publisher.events) != 1 || publisher.events[0].ResponseID != response.ID {
		t.Fatalf("expected one published event, got %+v", publisher.events)
	}
}

func TestForSurveyRoleFilter(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.addSurvey(t, "s1", domain.AudienceAll, domain.SurveyActive, timeNow())
	f.users.Put(domain.User{ID: "p1", Email: "p1@example.com", Name: "Pat", Role: "student"})
	f.users.Put(domain.User{ID: "p2", Email: "p2@example.com", Name: "Al", Role: "alumni"})

	answers := []app.RawAnswer{{QuestionID: "s1-q1", Value: domain.TextValue("x")}}
	for _, participant := range []string{"p1", "p2"} {
		if _, err := f.service.Submit(ctx, "s1", participant, "student", answers); err != nil {
			t.Fatalf("submit %s: %v", participant, err)
		}
	}

	responses, err := f.service.ForSurvey(ctx, "s1", app.ResponseFilter{}, "alumni")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(responses) != 1 || responses[0].ParticipantID != "p2" {
		t.Fatalf("expected only the alumni response, got %+v", responses)
	}

	responses, err = f.service.ForSurvey(ctx, "s1", app.ResponseFilter{ParticipantID: "p1"}, "")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(responses) != 1 || responses[0].ParticipantID != "p1" {
		t.Fatalf("expected only p1's response, got %+v", responses)
	}
}

func TestExportCSV(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.addSurvey(t, "s1", domain.AudienceAll, domain.SurveyActive, timeNow())
	f.users.Put(domain.User{ID: "p1", Email: "pat@example.com", Name: `Pat "PJ" Jones, Jr.`, Role: "student"})

	if _, err := f.service.Submit(ctx, "s1", "p1", "student", []app.RawAnswer{
		{QuestionID: "s1-q1", Value: domain.TextValue(`line with, comma and "quotes"`)},
	}); err != nil {
		t.Fatalf("submit: %v", err)
	}

	data, err := f.service.ExportCSV(ctx, "s1")
	if err != nil {
		t.Fatalf("export: %v", err)
	}

	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	if err != nil {
		t.Fatalf("exported CSV does not parse: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected header plus one row, got %d", len(records))
	}
	header := records[0]
	if header[2] != "email" || header[3] != "name" || header[4] != "role" {
		t.Fatalf("unexpected header: %v", header)
	}
	row := records[1]
	if row[2] != "pat@example.com" || row[3] != `Pat "PJ" Jones, Jr.` || row[4] != "student" {
		t.Fatalf("participant fields wrong after round trip: %v", row)
	}
	if row[5] == "" {
		t.Fatalf("answers blob missing")
	}
}

func TestDeleteResponse(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.addSurvey(t, "s1", domain.AudienceAll, domain.SurveyActive, timeNow())

	response, err := f.service.Submit(ctx, "s1", "p1", "student", []app.RawAnswer{
		{QuestionID: "s1-q1", Value: domain.TextValue("x")},
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if err := f.service.Delete(ctx, response.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := f.service.Delete(ctx, response.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found on second delete, got %v", err)
	}
}
