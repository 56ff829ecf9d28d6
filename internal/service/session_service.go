package service

import (
	"context"
	"fmt"
	"sync"

	"form-service/internal/models"
	"form-service/internal/repository"
	"form-service/internal/runtime"

	"github.com/google/uuid"
)

// SessionService owns the live runtime controllers, one per respondent
// session, keyed by session token. The token is minted here (not by the
// persistence layer) so that a session stays addressable even when the
// submission create failed and the respondent is proceeding unpersisted.
type SessionService struct {
	FormRepo    *repository.FormRepository
	Submissions *SubmissionService

	mu       sync.RWMutex
	sessions map[string]*runtime.Controller
}

func NewSessionService(formRepo *repository.FormRepository, submissions *SubmissionService) *SessionService {
	return &SessionService{
		FormRepo:    formRepo,
		Submissions: submissions,
		sessions:    make(map[string]*runtime.Controller),
	}
}

// StartSession builds a controller for the form. Forms without a welcome
// screen start (and create their submission) immediately; forms with one
// wait in the welcome step for the respondent's explicit Begin action.
func (s *SessionService) StartSession(ctx context.Context, formID, email string) (string, runtime.State, error) {
	form, err := s.FormRepo.FindByID(ctx, formID)
	if err != nil {
		return "", runtime.State{}, fmt.Errorf("form not found: %w", err)
	}
	if form.Status != "published" {
		return "", runtime.State{}, fmt.Errorf("formulário não está publicado")
	}

	token := uuid.NewString()
	ctrl := runtime.NewController(form, s.Submissions,
		runtime.WithMetadata(map[string]string{"session_token": token}),
	)
	if !form.HasWelcomeScreen() {
		ctrl.Start(ctx, email)
	}

	s.mu.Lock()
	s.sessions[token] = ctrl
	s.mu.Unlock()

	return token, ctrl.State(), nil
}

// Begin runs the welcome → questions transition for a waiting session.
func (s *SessionService) Begin(ctx context.Context, token, email string) (runtime.State, error) {
	ctrl, err := s.controller(token)
	if err != nil {
		return runtime.State{}, err
	}
	ctrl.Start(ctx, email)
	return ctrl.State(), nil
}

// Answer merges a value for the field at the session's current index.
func (s *SessionService) Answer(token string, ans models.Answer) (runtime.State, error) {
	ctrl, err := s.controller(token)
	if err != nil {
		return runtime.State{}, err
	}
	ctrl.SetAnswer(ans)
	return ctrl.State(), nil
}

// AnswerField merges a value for an explicit field key.
func (s *SessionService) AnswerField(token, fieldKey string, ans models.Answer) (runtime.State, error) {
	ctrl, err := s.controller(token)
	if err != nil {
		return runtime.State{}, err
	}
	ctrl.AnswerFor(fieldKey, ans)
	return ctrl.State(), nil
}

// Next advances the session. Finished sessions are dropped from the
// registry; their record lives on in the submission store.
func (s *SessionService) Next(ctx context.Context, token string) (runtime.State, error) {
	ctrl, err := s.controller(token)
	if err != nil {
		return runtime.State{}, err
	}
	done := ctrl.Next(ctx)
	state := ctrl.State()
	if done {
		s.mu.Lock()
		delete(s.sessions, token)
		s.mu.Unlock()
	}
	return state, nil
}

func (s *SessionService) Previous(token string) (runtime.State, error) {
	ctrl, err := s.controller(token)
	if err != nil {
		return runtime.State{}, err
	}
	ctrl.Previous()
	return ctrl.State(), nil
}

// GetState returns the live state for an active session, falling back to the
// persisted submission for finished or evicted ones.
func (s *SessionService) GetState(ctx context.Context, token string) (runtime.State, error) {
	if ctrl, err := s.controller(token); err == nil {
		return ctrl.State(), nil
	}
	sub, err := s.Submissions.GetByToken(ctx, token)
	if err != nil {
		return runtime.State{}, fmt.Errorf("session not found")
	}
	state := runtime.State{
		Step:        runtime.StepThankYou,
		ProgressPct: sub.ProgressPercent,
		Answers:     sub.Answers,
		Submission:  sub,
	}
	if sub.Status != models.SubmissionCompleted {
		state.Step = runtime.StepQuestions
	}
	return state, nil
}

// ActiveSessions reports how many controllers are live, for monitoring.
func (s *SessionService) ActiveSessions() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func (s *SessionService) controller(token string) (*runtime.Controller, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ctrl, ok := s.sessions[token]
	if !ok {
		return nil, fmt.Errorf("session not found")
	}
	return ctrl, nil
}
