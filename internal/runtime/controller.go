package runtime

import (
	"context"
	"log"
	"math"
	"sync"
	"time"

	"form-service/internal/condition"
	"form-service/internal/models"
	"form-service/internal/scoring"
)

type Step string

const (
	StepWelcome   Step = "welcome"
	StepQuestions Step = "questions"
	StepThankYou  Step = "thank_you"
)

// SubmissionStore is the persistence collaborator. Create and Complete gate
// the controller's state transitions (awaited, but failures are swallowed);
// SaveProgress is fire-and-forget and never gates anything.
type SubmissionStore interface {
	Create(ctx context.Context, form *models.Form, email string, metadata map[string]string) (*models.Submission, error)
	SaveProgress(ctx context.Context, submissionID, formID string, answers map[string]models.Answer, currentFieldKey string, progressPercent int) error
	Complete(ctx context.Context, submissionID string, form *models.Form, answers map[string]models.Answer, timeSpentSeconds int) (*models.Submission, error)
}

// Controller drives one respondent through welcome → questions → thank_you.
// Exactly one controller exists per active session; it owns the answer map
// and the index into the derived visible-field list for that session.
//
// Every persistence interaction is best-effort: the respondent's forward
// progress is never blocked on a write, and no call is retried. Partial or
// missing submission records are reconciled out of band.
type Controller struct {
	form       *models.Form
	store      SubmissionStore
	onComplete func(*models.Submission)

	mu             sync.Mutex
	step           Step
	submission     *models.Submission
	answers        map[string]models.Answer
	index          int
	fieldError     string
	startedAt      time.Time
	final          *models.Submission
	classification *models.Classification
	metadata       map[string]string
}

// Option configures a Controller.
type Option func(*Controller)

// WithCompletionCallback registers a callback invoked once, after the
// completion transition.
func WithCompletionCallback(fn func(*models.Submission)) Option {
	return func(c *Controller) { c.onComplete = fn }
}

// WithMetadata attaches session metadata passed to the store on create.
func WithMetadata(meta map[string]string) Option {
	return func(c *Controller) { c.metadata = meta }
}

func NewController(form *models.Form, store SubmissionStore, opts ...Option) *Controller {
	c := &Controller{
		form:    form,
		store:   store,
		answers: make(map[string]models.Answer),
		step:    StepQuestions,
	}
	if form.HasWelcomeScreen() {
		c.step = StepWelcome
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start performs the welcome → questions transition, creating the submission
// record. A failed create is logged and swallowed: the session proceeds
// unpersisted rather than blocking the respondent. For forms without a
// welcome screen the caller invokes Start immediately after construction.
func (c *Controller) Start(ctx context.Context, email string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.step == StepThankYou {
		return
	}
	c.startedAt = time.Now()

	sub, err := c.store.Create(ctx, c.form, email, c.metadata)
	if err != nil {
		log.Printf("[RUNTIME] create submission failed for form %s: %v", c.form.ID, err)
	} else {
		c.submission = sub
	}
	c.step = StepQuestions
}

// SetAnswer merges the value for the field at the current index and clears
// that field's validation error. Visibility is re-derived on the next read,
// so answering a question can reveal or hide later questions.
func (c *Controller) SetAnswer(ans models.Answer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	field := c.currentFieldLocked()
	if field == nil {
		return
	}
	c.answers[field.Key] = ans
	c.fieldError = ""
}

// AnswerFor merges a value for an explicit field key. Used when the
// rendering collaborator groups several fields on one screen.
func (c *Controller) AnswerFor(key string, ans models.Answer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.answers[key] = ans
	if f := c.currentFieldLocked(); f != nil && f.Key == key {
		c.fieldError = ""
	}
}

// Next validates the current field and either advances the index or, when
// the current field is the last visible one, finalizes the session. Returns
// true when the session reached thank_you.
func (c *Controller) Next(ctx context.Context) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.step != StepQuestions {
		return c.step == StepThankYou
	}

	visible := condition.VisibleFields(c.form.Fields, c.answers)
	if len(visible) == 0 {
		c.finalizeLocked(ctx)
		return true
	}
	if c.index > len(visible)-1 {
		c.index = len(visible) - 1
	}
	field := visible[c.index]

	// Statement fields carry no answer and are never validated.
	if field.Type != models.FieldStatement {
		ans, present := c.answers[field.Key]
		if msg := ValidateAnswer(field, ans, present); msg != "" {
			c.fieldError = msg
			return false
		}
	}
	c.fieldError = ""

	if c.index >= len(visible)-1 {
		c.finalizeLocked(ctx)
		return true
	}

	c.index++
	c.persistProgressLocked(visible)
	return false
}

// Previous retreats one field when backward navigation is allowed. It clears
// any field error and has no persistence side effect.
func (c *Controller) Previous() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.step != StepQuestions || c.index == 0 || !c.form.Settings.AllowBack {
		return
	}
	c.index--
	c.fieldError = ""
}

// persistProgressLocked fires the incremental save in the background. It is
// never awaited: last-write-wins at the persistence layer is acceptable
// because Complete carries the authoritative final snapshot.
func (c *Controller) persistProgressLocked(visible []models.Field) {
	if c.submission == nil {
		return
	}
	progress := int(math.Round(float64(c.index) / float64(len(visible)) * 100))
	currentKey := visible[c.index].Key
	answers := cloneAnswers(c.answers)
	submissionID := c.submission.ID
	formID := c.form.ID
	store := c.store

	go func() {
		if err := store.SaveProgress(context.Background(), submissionID, formID, answers, currentKey, progress); err != nil {
			log.Printf("[RUNTIME] progress save failed for submission %s: %v", submissionID, err)
		}
	}()
}

// finalizeLocked computes the elapsed time, completes the submission and
// transitions to thank_you. A failed completion still transitions — the
// respondent sees the terminal screen either way, just without a persisted
// result.
func (c *Controller) finalizeLocked(ctx context.Context) {
	elapsed := 0
	if !c.startedAt.IsZero() {
		elapsed = int(time.Since(c.startedAt).Seconds())
	}

	submissionID := ""
	if c.submission != nil {
		submissionID = c.submission.ID
	}
	sub, err := c.store.Complete(ctx, submissionID, c.form, cloneAnswers(c.answers), elapsed)
	if err != nil {
		log.Printf("[RUNTIME] complete failed for submission %q: %v", submissionID, err)
	} else {
		c.final = sub
		if c.form.Scoring.Enabled && sub != nil && sub.Score != nil {
			c.classification = scoring.Classify(c.form, *sub.Score)
		}
	}

	if c.onComplete != nil {
		c.onComplete(c.final)
	}
	c.step = StepThankYou
}

// State is the per-step snapshot exposed to the rendering collaborator.
type State struct {
	Step           Step                     `json:"step"`
	CurrentField   *models.Field            `json:"current_field,omitempty"`
	Index          int                      `json:"index"`
	VisibleCount   int                      `json:"visible_count"`
	ProgressPct    int                      `json:"progress_percent"`
	FieldError     string                   `json:"field_error,omitempty"`
	Answers        map[string]models.Answer `json:"answers"`
	Submission     *models.Submission       `json:"submission,omitempty"`
	Classification *models.Classification   `json:"classification,omitempty"`
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	visible := condition.VisibleFields(c.form.Fields, c.answers)
	st := State{
		Step:           c.step,
		Index:          c.index,
		VisibleCount:   len(visible),
		FieldError:     c.fieldError,
		Answers:        cloneAnswers(c.answers),
		Classification: c.classification,
	}
	if c.final != nil {
		st.Submission = c.final
	} else {
		st.Submission = c.submission
	}
	if c.step == StepQuestions && len(visible) > 0 {
		idx := c.index
		if idx > len(visible)-1 {
			idx = len(visible) - 1
		}
		f := visible[idx]
		st.CurrentField = &f
		st.ProgressPct = int(math.Round(float64(idx) / float64(len(visible)) * 100))
	}
	if c.step == StepThankYou {
		st.ProgressPct = 100
	}
	return st
}

// Submission returns the current submission record, if one was persisted.
func (c *Controller) Submission() *models.Submission {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.final != nil {
		return c.final
	}
	return c.submission
}

func (c *Controller) currentFieldLocked() *models.Field {
	if c.step != StepQuestions {
		return nil
	}
	visible := condition.VisibleFields(c.form.Fields, c.answers)
	if len(visible) == 0 {
		return nil
	}
	idx := c.index
	if idx > len(visible)-1 {
		idx = len(visible) - 1
	}
	return &visible[idx]
}

func cloneAnswers(answers map[string]models.Answer) map[string]models.Answer {
	out := make(map[string]models.Answer, len(answers))
	for k, v := range answers {
		out[k] = v
	}
	return out
}
