package repository

import (
	"context"

	"form-service/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type SubmissionRepository struct {
	Col *mongo.Collection
}

func NewSubmissionRepository(db *mongo.Database) *SubmissionRepository {
	return &SubmissionRepository{Col: db.Collection("submissions")}
}

func (r *SubmissionRepository) FindByID(ctx context.Context, id string) (*models.Submission, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}
	var sub models.Submission
	err = r.Col.FindOne(ctx, bson.M{"_id": objID}).Decode(&sub)
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *SubmissionRepository) FindByToken(ctx context.Context, token string) (*models.Submission, error) {
	var sub models.Submission
	err := r.Col.FindOne(ctx, bson.M{"session_token": token}).Decode(&sub)
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *SubmissionRepository) Create(ctx context.Context, sub *models.Submission) error {
	res, err := r.Col.InsertOne(ctx, sub)
	if err != nil {
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		sub.ID = oid.Hex()
	}
	return nil
}

func (r *SubmissionRepository) Update(ctx context.Context, id string, update bson.M) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}
	_, err = r.Col.UpdateOne(ctx, bson.M{"_id": objID}, bson.M{"$set": update})
	return err
}

// CountByStatus groups one form's submissions by lifecycle status.
func (r *SubmissionRepository) CountByStatus(ctx context.Context, formID string) (map[string]int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"form_id": formID}}},
		{{Key: "$group", Value: bson.M{"_id": "$status", "count": bson.M{"$sum": 1}}}},
	}
	cursor, err := r.Col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	counts := make(map[string]int64)
	for cursor.Next(ctx) {
		var row struct {
			Status string `bson:"_id"`
			Count  int64  `bson:"count"`
		}
		if err := cursor.Decode(&row); err != nil {
			return nil, err
		}
		counts[row.Status] = row.Count
	}
	return counts, cursor.Err()
}

// AverageScore averages the frozen scores of completed submissions.
func (r *SubmissionRepository) AverageScore(ctx context.Context, formID string) (float64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"form_id": formID,
			"status":  models.SubmissionCompleted,
			"score":   bson.M{"$ne": nil},
		}}},
		{{Key: "$group", Value: bson.M{"_id": nil, "avg": bson.M{"$avg": "$score"}}}},
	}
	cursor, err := r.Col.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, err
	}
	defer cursor.Close(ctx)

	if cursor.Next(ctx) {
		var row struct {
			Avg float64 `bson:"avg"`
		}
		if err := cursor.Decode(&row); err != nil {
			return 0, err
		}
		return row.Avg, nil
	}
	return 0, cursor.Err()
}

// CountScoresInRange counts completed submissions whose score landed inside
// one classification band (both bounds inclusive).
func (r *SubmissionRepository) CountScoresInRange(ctx context.Context, formID string, min, max float64) (int64, error) {
	return r.Col.CountDocuments(ctx, bson.M{
		"form_id": formID,
		"status":  models.SubmissionCompleted,
		"score":   bson.M{"$gte": min, "$lte": max},
	})
}
