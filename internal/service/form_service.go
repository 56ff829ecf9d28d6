package service

import (
	"context"
	"fmt"

	"form-service/internal/condition"
	"form-service/internal/models"
	"form-service/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
)

type FormService struct {
	Repo *repository.FormRepository
}

func NewFormService(repo *repository.FormRepository) *FormService {
	return &FormService{Repo: repo}
}

func (s *FormService) GetForm(ctx context.Context, id string) (*models.Form, error) {
	return s.Repo.FindByID(ctx, id)
}

func (s *FormService) ListForms(ctx context.Context, ownerID string) ([]models.Form, error) {
	return s.Repo.FindByOwner(ctx, ownerID)
}

func (s *FormService) CreateForm(ctx context.Context, form *models.Form) error {
	if form.Status == "" {
		form.Status = "draft"
	}
	return s.Repo.Create(ctx, form)
}

func (s *FormService) UpdateForm(ctx context.Context, id string, update map[string]interface{}) error {
	return s.Repo.Update(ctx, id, bson.M(update))
}

func (s *FormService) DeleteForm(ctx context.Context, id string) error {
	return s.Repo.Delete(ctx, id)
}

// PublishForm flips a form to published after checking its condition graph.
// Publishing a form with circular or forward references would break the
// respondent flow silently, so it is rejected here rather than at runtime.
func (s *FormService) PublishForm(ctx context.Context, id string) error {
	form, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	result := condition.ValidateFormConditions(form.Fields)
	if !result.IsValid {
		return fmt.Errorf("formulário possui %d erro(s) de condição", len(result.Errors))
	}
	return s.Repo.Update(ctx, id, bson.M{"status": "published"})
}

// ValidateConditions runs the authoring-time condition checks for the editor.
func (s *FormService) ValidateConditions(ctx context.Context, id string) (*condition.ValidationResult, error) {
	form, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	result := condition.ValidateFormConditions(form.Fields)
	return &result, nil
}
