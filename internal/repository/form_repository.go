package repository

import (
	"context"
	"time"

	"form-service/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type FormRepository struct {
	Col *mongo.Collection
}

func NewFormRepository(db *mongo.Database) *FormRepository {
	return &FormRepository{Col: db.Collection("forms")}
}

func (r *FormRepository) FindByID(ctx context.Context, id string) (*models.Form, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}
	var form models.Form
	err = r.Col.FindOne(ctx, bson.M{"_id": objID}).Decode(&form)
	if err != nil {
		return nil, err
	}
	return &form, nil
}

func (r *FormRepository) FindByOwner(ctx context.Context, ownerID string) ([]models.Form, error) {
	opts := options.Find().SetSort(bson.D{{Key: "updated_at", Value: -1}})
	cursor, err := r.Col.Find(ctx, bson.M{"owner_id": ownerID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var forms []models.Form
	if err := cursor.All(ctx, &forms); err != nil {
		return nil, err
	}
	return forms, nil
}

func (r *FormRepository) Create(ctx context.Context, form *models.Form) error {
	form.CreatedAt = time.Now()
	form.UpdatedAt = form.CreatedAt
	res, err := r.Col.InsertOne(ctx, form)
	if err != nil {
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		form.ID = oid.Hex()
	}
	return nil
}

func (r *FormRepository) Update(ctx context.Context, id string, update bson.M) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}
	update["updated_at"] = time.Now()
	_, err = r.Col.UpdateOne(ctx, bson.M{"_id": objID}, bson.M{"$set": update})
	return err
}

func (r *FormRepository) Delete(ctx context.Context, id string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}
	_, err = r.Col.DeleteOne(ctx, bson.M{"_id": objID})
	return err
}
