package repository

import (
	"context"

	"form-service/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type AnswerRepository struct {
	Col *mongo.Collection
}

func NewAnswerRepository(db *mongo.Database) *AnswerRepository {
	return &AnswerRepository{Col: db.Collection("answers")}
}

func (r *AnswerRepository) CreateMany(ctx context.Context, answers []models.FieldAnswer) error {
	if len(answers) == 0 {
		return nil
	}
	docs := make([]interface{}, len(answers))
	for i := range answers {
		docs[i] = answers[i]
	}
	_, err := r.Col.InsertMany(ctx, docs)
	return err
}

func (r *AnswerRepository) FindBySubmission(ctx context.Context, submissionID string) ([]models.FieldAnswer, error) {
	cur, err := r.Col.Find(ctx, bson.M{"submission_id": submissionID})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var answers []models.FieldAnswer
	for cur.Next(ctx) {
		var a models.FieldAnswer
		if err := cur.Decode(&a); err != nil {
			return nil, err
		}
		answers = append(answers, a)
	}
	return answers, nil
}
