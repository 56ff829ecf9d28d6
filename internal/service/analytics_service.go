package service

import (
	"context"
	"math"

	"form-service/internal/models"
	"form-service/internal/repository"
)

// AnalyticsSummary aggregates one form's submissions for the dashboards.
type AnalyticsSummary struct {
	FormID            string      `json:"form_id"`
	TotalSubmissions  int64       `json:"total_submissions"`
	Completed         int64       `json:"completed"`
	InProgress        int64       `json:"in_progress"`
	Abandoned         int64       `json:"abandoned"`
	CompletionRate    float64     `json:"completion_rate"`
	AverageScore      float64     `json:"average_score"`
	ScoreDistribution []BandCount `json:"score_distribution"`
}

// BandCount is one classification band with its completed-submission count.
type BandCount struct {
	Name     string  `json:"name"`
	MinScore float64 `json:"min_score"`
	MaxScore float64 `json:"max_score"`
	Count    int64   `json:"count"`
}

type AnalyticsService struct {
	FormRepo *repository.FormRepository
	SubRepo  *repository.SubmissionRepository
}

func NewAnalyticsService(formRepo *repository.FormRepository, subRepo *repository.SubmissionRepository) *AnalyticsService {
	return &AnalyticsService{FormRepo: formRepo, SubRepo: subRepo}
}

// Summary computes status counts, completion rate, average score and the
// score distribution across the form's classification bands.
func (s *AnalyticsService) Summary(ctx context.Context, formID string) (*AnalyticsSummary, error) {
	form, err := s.FormRepo.FindByID(ctx, formID)
	if err != nil {
		return nil, err
	}

	counts, err := s.SubRepo.CountByStatus(ctx, formID)
	if err != nil {
		return nil, err
	}

	summary := &AnalyticsSummary{
		FormID:     formID,
		Completed:  counts[models.SubmissionCompleted],
		InProgress: counts[models.SubmissionInProgress],
		Abandoned:  counts[models.SubmissionAbandoned],
	}
	for _, c := range counts {
		summary.TotalSubmissions += c
	}
	if summary.TotalSubmissions > 0 {
		rate := float64(summary.Completed) / float64(summary.TotalSubmissions) * 100
		summary.CompletionRate = math.Round(rate*100) / 100
	}

	if form.Scoring.Enabled {
		avg, err := s.SubRepo.AverageScore(ctx, formID)
		if err != nil {
			return nil, err
		}
		summary.AverageScore = math.Round(avg*100) / 100

		for _, cls := range form.Classifications {
			n, err := s.SubRepo.CountScoresInRange(ctx, formID, cls.MinScore, cls.MaxScore)
			if err != nil {
				return nil, err
			}
			summary.ScoreDistribution = append(summary.ScoreDistribution, BandCount{
				Name:     cls.Name,
				MinScore: cls.MinScore,
				MaxScore: cls.MaxScore,
				Count:    n,
			})
		}
	}

	return summary, nil
}
