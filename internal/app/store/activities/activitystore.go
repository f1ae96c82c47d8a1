// internal/app/store/activities/activitystore.go
package activitystore

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
	return &Store{c: db.Collection("activities")}
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Activity, error) {
	var a models.Activity
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&a); err != nil {
		return models.Activity{}, err
	}
	return a, nil
}

// FindByIDs returns the activities that exist among the given ids.
func (s *Store) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Activity, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	cur, err := s.c.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var activities []models.Activity
	if err := cur.All(ctx, &activities); err != nil {
		return nil, err
	}
	return activities, nil
}

func (s *Store) List(ctx context.Context) ([]models.Activity, error) {
	cur, err := s.c.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var activities []models.Activity
	if err := cur.All(ctx, &activities); err != nil {
		return nil, err
	}
	return activities, nil
}

// ListByTeacher returns the activities owned by a teacher.
func (s *Store) ListByTeacher(ctx context.Context, teacherID primitive.ObjectID) ([]models.Activity, error) {
	cur, err := s.c.Find(ctx, bson.M{"teacher_id": teacherID})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var activities []models.Activity
	if err := cur.All(ctx, &activities); err != nil {
		return nil, err
	}
	return activities, nil
}

func (s *Store) Create(ctx context.Context, a models.Activity) (models.Activity, error) {
	now := time.Now().UTC()
	a.ID = primitive.NewObjectID()
	if a.AlgorithmStatus == "" {
		a.AlgorithmStatus = models.AlgorithmNone
	}
	a.CreatedAt = now
	a.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, a); err != nil {
		return models.Activity{}, err
	}
	return a, nil
}

// UpdateInfo updates title and description. Roster and group lists are
// only writable through the membership operations.
func (s *Store) UpdateInfo(ctx context.Context, id primitive.ObjectID, title, desc string) (int64, error) {
	res, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"title":       title,
		"description": desc,
		"updated_at":  time.Now().UTC(),
	}})
	if err != nil {
		return 0, err
	}
	return res.MatchedCount, nil
}

// Delete removes an activity by ID. Returns the number of documents deleted (0 or 1).
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// PushGroup appends a group reference to the activity's ordered group list.
func (s *Store) PushGroup(ctx context.Context, activityID, groupID primitive.ObjectID) error {
	res, err := s.c.UpdateByID(ctx, activityID, bson.M{
		"$push": bson.M{"groups": groupID},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// PullGroup removes a group reference from the activity's group list.
func (s *Store) PullGroup(ctx context.Context, activityID, groupID primitive.ObjectID) error {
	_, err := s.c.UpdateByID(ctx, activityID, bson.M{
		"$pull": bson.M{"groups": groupID},
	})
	return err
}

// AddStudents enrolls students in the activity roster.
func (s *Store) AddStudents(ctx context.Context, activityID primitive.ObjectID, studentIDs []primitive.ObjectID) (int64, error) {
	if len(studentIDs) == 0 {
		return 0, nil
	}
	res, err := s.c.UpdateByID(ctx, activityID, bson.M{
		"$addToSet": bson.M{"students": bson.M{"$each": studentIDs}},
	})
	if err != nil {
		return 0, err
	}
	return res.MatchedCount, nil
}

// PullStudent removes one student from the activity roster.
func (s *Store) PullStudent(ctx context.Context, activityID, studentID primitive.ObjectID) (int64, error) {
	res, err := s.c.UpdateByID(ctx, activityID, bson.M{
		"$pull": bson.M{"students": studentID},
	})
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

// SetAlgorithmStatus records the grouping-algorithm run state.
func (s *Store) SetAlgorithmStatus(ctx context.Context, activityID primitive.ObjectID, status string) error {
	_, err := s.c.UpdateByID(ctx, activityID, bson.M{
		"$set": bson.M{"algorithm_status": status},
	})
	return err
}
