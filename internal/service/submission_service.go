package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"form-service/internal/cache"
	"form-service/internal/models"
	"form-service/internal/repository"
	"form-service/internal/scoring"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
)

// SubmissionService is the persistence collaborator behind the runtime
// controller. It satisfies runtime.SubmissionStore.
type SubmissionService struct {
	Repo       *repository.SubmissionRepository
	AnswerRepo *repository.AnswerRepository
	Cache      cache.SubmissionCache
}

func NewSubmissionService(repo *repository.SubmissionRepository, answerRepo *repository.AnswerRepository, c cache.SubmissionCache) *SubmissionService {
	return &SubmissionService{Repo: repo, AnswerRepo: answerRepo, Cache: c}
}

// Create opens a new in-progress submission at session start. The session
// token travels in metadata when the caller minted one; otherwise a fresh
// token is issued here.
func (s *SubmissionService) Create(ctx context.Context, form *models.Form, email string, metadata map[string]string) (*models.Submission, error) {
	token := metadata["session_token"]
	if token == "" {
		token = uuid.NewString()
	}
	sub := &models.Submission{
		FormID:       form.ID,
		SessionToken: token,
		Email:        email,
		Answers:      map[string]models.Answer{},
		Status:       models.SubmissionInProgress,
		Metadata:     metadata,
		StartedAt:    time.Now(),
	}
	if err := s.Repo.Create(ctx, sub); err != nil {
		return nil, err
	}
	s.cacheSet(sub)
	return sub, nil
}

// SaveProgress merges the incremental answer snapshot. Called from a
// background goroutine by the runtime; errors bubble up only to be logged.
func (s *SubmissionService) SaveProgress(ctx context.Context, submissionID, formID string, answers map[string]models.Answer, currentFieldKey string, progressPercent int) error {
	if submissionID == "" {
		return fmt.Errorf("submission not persisted")
	}
	err := s.Repo.Update(ctx, submissionID, bson.M{
		"answers":           answers,
		"current_field_key": currentFieldKey,
		"progress_percent":  progressPercent,
	})
	if err != nil {
		return err
	}
	if sub, ferr := s.Repo.FindByID(ctx, submissionID); ferr == nil {
		s.cacheSet(sub)
	}
	return nil
}

// Complete freezes the final answer snapshot, runs the scoring engine when
// the form enables it, and flips the submission to completed. The flattened
// per-field answer rows are kept for analytics.
func (s *SubmissionService) Complete(ctx context.Context, submissionID string, form *models.Form, answers map[string]models.Answer, timeSpentSeconds int) (*models.Submission, error) {
	if submissionID == "" {
		return nil, fmt.Errorf("submission not persisted")
	}

	now := time.Now()
	update := bson.M{
		"answers":            answers,
		"status":             models.SubmissionCompleted,
		"progress_percent":   100,
		"completed_at":       now,
		"time_spent_seconds": timeSpentSeconds,
	}

	var result *scoring.ScoreResult
	if form.Scoring.Enabled {
		result = scoring.CalculateScore(form, answers)
		update["score"] = result.TotalScore
		if cls := scoring.Classify(form, result.TotalScore); cls != nil {
			update["classification"] = cls.Name
		}
	}

	if err := s.Repo.Update(ctx, submissionID, update); err != nil {
		return nil, err
	}

	s.storeFieldAnswers(ctx, submissionID, form, answers, result, now)

	sub, err := s.Repo.FindByID(ctx, submissionID)
	if err != nil {
		return nil, err
	}
	s.cacheSet(sub)
	return sub, nil
}

// GetByToken reads through the cache; active sessions rarely hit Mongo.
func (s *SubmissionService) GetByToken(ctx context.Context, token string) (*models.Submission, error) {
	if s.Cache != nil {
		if sub, err := s.Cache.Get(ctx, token); err == nil {
			return sub, nil
		}
	}
	sub, err := s.Repo.FindByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	s.cacheSet(sub)
	return sub, nil
}

func (s *SubmissionService) GetAnswers(ctx context.Context, submissionID string) ([]models.FieldAnswer, error) {
	return s.AnswerRepo.FindBySubmission(ctx, submissionID)
}

func (s *SubmissionService) storeFieldAnswers(ctx context.Context, submissionID string, form *models.Form, answers map[string]models.Answer, result *scoring.ScoreResult, at time.Time) {
	rows := make([]models.FieldAnswer, 0, len(answers))
	for _, f := range form.Fields {
		ans, ok := answers[f.Key]
		if !ok {
			continue
		}
		row := models.FieldAnswer{
			SubmissionID: submissionID,
			FormID:       form.ID,
			FieldKey:     f.Key,
			Value:        ans.Value,
			Pillar:       f.Pillar,
			AnsweredAt:   at,
		}
		if result != nil {
			if ws, ok := result.FieldScores[f.Key]; ok {
				v := ws
				row.WeightedScore = &v
			}
		}
		rows = append(rows, row)
	}
	if err := s.AnswerRepo.CreateMany(ctx, rows); err != nil {
		log.Printf("[SUBMISSION] failed to store answer rows for %s: %v", submissionID, err)
	}
}

func (s *SubmissionService) cacheSet(sub *models.Submission) {
	if s.Cache == nil || sub == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.Cache.Set(ctx, sub); err != nil {
		log.Printf("[SUBMISSION] cache write failed for token %s: %v", sub.SessionToken, err)
	}
}
