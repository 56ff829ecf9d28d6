package runtime

import (
	"context"
	"fmt"
	"testing"
	"time"

	"form-service/internal/models"
	"form-service/internal/scoring"
)

// fakeStore records calls and can be told to fail any of them.
type fakeStore struct {
	failCreate   bool
	failProgress bool
	failComplete bool

	created     int
	completed   int
	progress    chan progressCall
	lastAnswers map[string]models.Answer
}

type progressCall struct {
	SubmissionID    string
	CurrentFieldKey string
	ProgressPercent int
}

func newFakeStore() *fakeStore {
	return &fakeStore{progress: make(chan progressCall, 16)}
}

func (f *fakeStore) Create(ctx context.Context, form *models.Form, email string, metadata map[string]string) (*models.Submission, error) {
	f.created++
	if f.failCreate {
		return nil, fmt.Errorf("mongo unavailable")
	}
	return &models.Submission{
		ID:           "sub-1",
		FormID:       form.ID,
		SessionToken: metadata["session_token"],
		Email:        email,
		Status:       models.SubmissionInProgress,
		Answers:      map[string]models.Answer{},
		StartedAt:    time.Now(),
	}, nil
}

func (f *fakeStore) SaveProgress(ctx context.Context, submissionID, formID string, answers map[string]models.Answer, currentFieldKey string, progressPercent int) error {
	f.progress <- progressCall{SubmissionID: submissionID, CurrentFieldKey: currentFieldKey, ProgressPercent: progressPercent}
	if f.failProgress {
		return fmt.Errorf("mongo unavailable")
	}
	return nil
}

func (f *fakeStore) Complete(ctx context.Context, submissionID string, form *models.Form, answers map[string]models.Answer, timeSpentSeconds int) (*models.Submission, error) {
	f.completed++
	f.lastAnswers = answers
	if f.failComplete {
		return nil, fmt.Errorf("mongo unavailable")
	}
	sub := &models.Submission{
		ID:               submissionID,
		FormID:           form.ID,
		Status:           models.SubmissionCompleted,
		Answers:          answers,
		TimeSpentSeconds: timeSpentSeconds,
	}
	if form.Scoring.Enabled {
		result := scoring.CalculateScore(form, answers)
		sub.Score = &result.TotalScore
	}
	return sub, nil
}

func simpleForm() *models.Form {
	return &models.Form{
		ID:     "form-1",
		Status: "published",
		Fields: []models.Field{
			{Key: "name", Type: models.FieldShortText, Required: true, Position: 0},
			{Key: "channel", Type: models.FieldSingleSelect, Position: 1, Options: []models.Option{
				{Label: "Telefone", Value: "phone"},
				{Label: "E-mail", Value: "email"},
			}},
			{Key: "phone", Type: models.FieldPhone, Position: 2, ConditionGroups: []models.ConditionGroup{
				{Logic: models.LogicAnd, Conditions: []models.Condition{
					{FieldKey: "channel", Operator: models.OpEquals, Value: "phone"},
				}},
			}},
		},
		Settings: models.FormSettings{AllowBack: true},
	}
}

func TestStartWithoutWelcomeScreenGoesStraightToQuestions(t *testing.T) {
	store := newFakeStore()
	ctrl := NewController(simpleForm(), store)

	if ctrl.State().Step != StepQuestions {
		t.Fatalf("expected initial step questions, got %s", ctrl.State().Step)
	}
	ctrl.Start(context.Background(), "")
	if store.created != 1 {
		t.Errorf("expected one create call, got %d", store.created)
	}
}

func TestStartIsFailSoftOnCreateError(t *testing.T) {
	store := newFakeStore()
	store.failCreate = true
	form := simpleForm()
	form.Welcome = &models.WelcomeScreen{Enabled: true}
	ctrl := NewController(form, store)

	if ctrl.State().Step != StepWelcome {
		t.Fatalf("expected welcome step, got %s", ctrl.State().Step)
	}

	ctrl.Start(context.Background(), "maria@example.com")

	state := ctrl.State()
	if state.Step != StepQuestions {
		t.Errorf("expected questions step despite failed create, got %s", state.Step)
	}
	if state.Submission != nil {
		t.Errorf("expected no submission record, got %+v", state.Submission)
	}
}

func TestNextBlocksOnValidationError(t *testing.T) {
	store := newFakeStore()
	ctrl := NewController(simpleForm(), store)
	ctrl.Start(context.Background(), "")

	// "name" is required and unanswered.
	if done := ctrl.Next(context.Background()); done {
		t.Fatal("expected session not to finish")
	}
	state := ctrl.State()
	if state.Index != 0 {
		t.Errorf("expected index to stay at 0, got %d", state.Index)
	}
	if state.FieldError == "" {
		t.Error("expected a field error")
	}
}

func TestSetAnswerClearsFieldError(t *testing.T) {
	store := newFakeStore()
	ctrl := NewController(simpleForm(), store)
	ctrl.Start(context.Background(), "")

	ctrl.Next(context.Background()) // sets the required error
	if ctrl.State().FieldError == "" {
		t.Fatal("expected a field error before re-answering")
	}

	ctrl.SetAnswer(models.Answer{Value: "Maria"})
	if err := ctrl.State().FieldError; err != "" {
		t.Errorf("expected error cleared after answer, got %q", err)
	}
}

func TestAdvancePersistsProgressInBackground(t *testing.T) {
	store := newFakeStore()
	ctrl := NewController(simpleForm(), store)
	ctrl.Start(context.Background(), "")

	ctrl.SetAnswer(models.Answer{Value: "Maria"})
	ctrl.Next(context.Background())

	select {
	case call := <-store.progress:
		if call.SubmissionID != "sub-1" {
			t.Errorf("unexpected submission id %q", call.SubmissionID)
		}
		if call.CurrentFieldKey != "channel" {
			t.Errorf("expected current field channel, got %q", call.CurrentFieldKey)
		}
		// index 1 of 2 visible fields (phone still hidden)
		if call.ProgressPercent != 50 {
			t.Errorf("expected progress 50, got %d", call.ProgressPercent)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("progress save never fired")
	}
}

func TestAnswerChangesVisibilityAndCompletionPoint(t *testing.T) {
	store := newFakeStore()
	ctrl := NewController(simpleForm(), store)
	ctrl.Start(context.Background(), "")

	ctrl.SetAnswer(models.Answer{Value: "Maria"})
	ctrl.Next(context.Background())

	// Choosing phone reveals the conditional phone field, so "channel" is no
	// longer the last visible field and Next must not finalize.
	ctrl.SetAnswer(models.Answer{Value: "phone"})
	if done := ctrl.Next(context.Background()); done {
		t.Fatal("expected a revealed field after channel=phone")
	}
	state := ctrl.State()
	if state.CurrentField == nil || state.CurrentField.Key != "phone" {
		t.Fatalf("expected phone field, got %+v", state.CurrentField)
	}

	ctrl.SetAnswer(models.Answer{Value: "+55 11 99999-0000"})
	if done := ctrl.Next(context.Background()); !done {
		t.Fatal("expected completion on last visible field")
	}
	if store.completed != 1 {
		t.Errorf("expected one complete call, got %d", store.completed)
	}
	if ctrl.State().Step != StepThankYou {
		t.Errorf("expected thank_you, got %s", ctrl.State().Step)
	}
}

func TestHiddenFieldSkippedWhenConditionNotMet(t *testing.T) {
	store := newFakeStore()
	ctrl := NewController(simpleForm(), store)
	ctrl.Start(context.Background(), "")

	ctrl.SetAnswer(models.Answer{Value: "Maria"})
	ctrl.Next(context.Background())

	// channel=email keeps the phone field hidden; "channel" is last.
	ctrl.SetAnswer(models.Answer{Value: "email"})
	if done := ctrl.Next(context.Background()); !done {
		t.Fatal("expected completion, phone field should stay hidden")
	}
	if _, ok := store.lastAnswers["phone"]; ok {
		t.Error("hidden field must not carry an answer")
	}
}

func TestCompleteIsFailSoft(t *testing.T) {
	store := newFakeStore()
	store.failComplete = true
	form := simpleForm()
	form.Fields = form.Fields[:1]
	ctrl := NewController(form, store)
	ctrl.Start(context.Background(), "")

	ctrl.SetAnswer(models.Answer{Value: "Maria"})
	if done := ctrl.Next(context.Background()); !done {
		t.Fatal("expected transition to thank_you despite failed complete")
	}
	state := ctrl.State()
	if state.Step != StepThankYou {
		t.Errorf("expected thank_you, got %s", state.Step)
	}
	if state.Classification != nil {
		t.Errorf("expected no classification after failed complete, got %+v", state.Classification)
	}
}

func TestCompletionResolvesClassification(t *testing.T) {
	store := newFakeStore()
	form := &models.Form{
		ID:     "form-1",
		Status: "published",
		Fields: []models.Field{
			{Key: "score", Type: models.FieldScale, ScaleMax: 100, Position: 0},
		},
		Scoring: models.ScoringConfig{Enabled: true, Formula: models.FormulaSum},
		Classifications: []models.Classification{
			{Name: "Baixo", MinScore: 0, MaxScore: 49, Position: 0},
			{Name: "Alto", MinScore: 50, MaxScore: 100, Position: 1},
		},
	}
	ctrl := NewController(form, store)
	ctrl.Start(context.Background(), "")

	ctrl.SetAnswer(models.Answer{Value: float64(80)})
	if done := ctrl.Next(context.Background()); !done {
		t.Fatal("expected completion")
	}

	state := ctrl.State()
	if state.Classification == nil || state.Classification.Name != "Alto" {
		t.Errorf("expected classification Alto, got %+v", state.Classification)
	}
	if state.Submission == nil || state.Submission.Score == nil || *state.Submission.Score != 80 {
		t.Errorf("expected frozen score 80, got %+v", state.Submission)
	}
}

func TestCompletionCallbackFires(t *testing.T) {
	store := newFakeStore()
	form := simpleForm()
	form.Fields = form.Fields[:1]

	var got *models.Submission
	ctrl := NewController(form, store, WithCompletionCallback(func(sub *models.Submission) {
		got = sub
	}))
	ctrl.Start(context.Background(), "")
	ctrl.SetAnswer(models.Answer{Value: "Maria"})
	ctrl.Next(context.Background())

	if got == nil || got.Status != models.SubmissionCompleted {
		t.Errorf("expected callback with completed submission, got %+v", got)
	}
}

func TestPreviousStaysWithinBounds(t *testing.T) {
	store := newFakeStore()
	form := simpleForm()
	ctrl := NewController(form, store)
	ctrl.Start(context.Background(), "")

	ctrl.SetAnswer(models.Answer{Value: "Maria"})
	ctrl.Next(context.Background())
	if ctrl.State().Index != 1 {
		t.Fatalf("expected index 1, got %d", ctrl.State().Index)
	}

	ctrl.Previous()
	if ctrl.State().Index != 0 {
		t.Errorf("expected index back to 0, got %d", ctrl.State().Index)
	}

	// At index 0 Previous is a no-op.
	ctrl.Previous()
	if ctrl.State().Index != 0 {
		t.Errorf("expected index to stay at 0, got %d", ctrl.State().Index)
	}
}

func TestPreviousBlockedWhenBackNavigationDisabled(t *testing.T) {
	store := newFakeStore()
	form := simpleForm()
	form.Settings.AllowBack = false
	ctrl := NewController(form, store)
	ctrl.Start(context.Background(), "")

	ctrl.SetAnswer(models.Answer{Value: "Maria"})
	ctrl.Next(context.Background())

	ctrl.Previous()
	if ctrl.State().Index != 1 {
		t.Errorf("expected index unchanged with back navigation disabled, got %d", ctrl.State().Index)
	}
}

func TestStatementFieldSkipsValidation(t *testing.T) {
	store := newFakeStore()
	form := &models.Form{
		ID:     "form-1",
		Status: "published",
		Fields: []models.Field{
			{Key: "intro", Type: models.FieldStatement, Required: true, Position: 0},
			{Key: "name", Type: models.FieldShortText, Position: 1},
		},
	}
	ctrl := NewController(form, store)
	ctrl.Start(context.Background(), "")

	// No answer for the statement, yet Next advances.
	if done := ctrl.Next(context.Background()); done {
		t.Fatal("expected more fields")
	}
	state := ctrl.State()
	if state.FieldError != "" {
		t.Errorf("statement must not produce a validation error, got %q", state.FieldError)
	}
	if state.CurrentField == nil || state.CurrentField.Key != "name" {
		t.Errorf("expected to land on name, got %+v", state.CurrentField)
	}
}
