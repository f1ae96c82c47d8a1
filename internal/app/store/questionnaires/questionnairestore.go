// internal/app/store/questionnaires/questionnairestore.go
package questionnairestore

import (
	"context"
	"time"

	"github.com/teamlens/teamlens/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("questionnaires")}
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Questionnaire, error) {
	var q models.Questionnaire
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&q); err != nil {
		return models.Questionnaire{}, err
	}
	return q, nil
}

func (s *Store) List(ctx context.Context) ([]models.Questionnaire, error) {
	cur, err := s.c.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var questionnaires []models.Questionnaire
	if err := cur.All(ctx, &questionnaires); err != nil {
		return nil, err
	}
	return questionnaires, nil
}

func (s *Store) Create(ctx context.Context, q models.Questionnaire) (models.Questionnaire, error) {
	now := time.Now().UTC()
	q.ID = primitive.NewObjectID()
	q.CreatedAt = now
	q.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, q); err != nil {
		return models.Questionnaire{}, err
	}
	return q, nil
}

func (s *Store) Update(ctx context.Context, id primitive.ObjectID, title, desc string, questions []models.Question) (int64, error) {
	res, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"title":       title,
		"description": desc,
		"questions":   questions,
		"updated_at":  time.Now().UTC(),
	}})
	if err != nil {
		return 0, err
	}
	return res.MatchedCount, nil
}

// Delete removes a questionnaire by ID. Returns the number of documents deleted (0 or 1).
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
