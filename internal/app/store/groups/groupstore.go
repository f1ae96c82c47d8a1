// internal/app/store/groups/groupstore.go
package groupstore

import (
	"context"
	"strings"
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
	return &Store{c: db.Collection("groups")}
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Group, error) {
	var g models.Group
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&g); err != nil {
		return models.Group{}, err
	}
	return g, nil
}

// FindByIDs returns the groups that exist among the given ids.
func (s *Store) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Group, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	cur, err := s.c.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var groups []models.Group
	if err := cur.All(ctx, &groups); err != nil {
		return nil, err
	}
	return groups, nil
}

// FindByActivity returns all groups that belong to an activity.
func (s *Store) FindByActivity(ctx context.Context, activityID primitive.ObjectID) ([]models.Group, error) {
	cur, err := s.c.Find(ctx, bson.M{"activity_id": activityID})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var groups []models.Group
	if err := cur.All(ctx, &groups); err != nil {
		return nil, err
	}
	return groups, nil
}

func (s *Store) Create(ctx context.Context, g models.Group) (models.Group, error) {
	now := time.Now().UTC()
	g.ID = primitive.NewObjectID()
	if g.Students == nil {
		g.Students = []primitive.ObjectID{}
	}
	g.CreatedAt = now
	g.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, g); err != nil {
		return models.Group{}, err
	}
	return g, nil
}

// Rename updates the group name. The member list is only writable
// through the membership engine.
func (s *Store) Rename(ctx context.Context, id primitive.ObjectID, name string) (int64, error) {
	if strings.TrimSpace(name) == "" {
		return 0, nil
	}
	res, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"name":       name,
		"updated_at": time.Now().UTC(),
	}})
	if err != nil {
		return 0, err
	}
	return res.MatchedCount, nil
}

// Delete removes a group by ID. Returns the number of documents deleted (0 or 1).
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// PushStudents appends students to the group's member set.
func (s *Store) PushStudents(ctx context.Context, groupID primitive.ObjectID, studentIDs []primitive.ObjectID) error {
	if len(studentIDs) == 0 {
		return nil
	}
	res, err := s.c.UpdateByID(ctx, groupID, bson.M{
		"$addToSet": bson.M{"students": bson.M{"$each": studentIDs}},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// PullStudent removes one student from the group's member set.
func (s *Store) PullStudent(ctx context.Context, groupID, studentID primitive.ObjectID) (int64, error) {
	res, err := s.c.UpdateByID(ctx, groupID, bson.M{
		"$pull": bson.M{"students": studentID},
	})
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

// FindWithMembers resolves groups with their member lists joined to
// public profiles. Credentials and back-reference fields never leave
// the database.
func (s *Store) FindWithMembers(ctx context.Context, ids []primitive.ObjectID) ([]models.GroupWithMembers, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	cur, err := s.c.Aggregate(ctx, []bson.M{
		{"$match": bson.M{"_id": bson.M{"$in": ids}}},
		{"$lookup": bson.M{
			"from":         "users",
			"localField":   "students",
			"foreignField": "_id",
			"as":           "students",
		}},
		{"$project": bson.M{
			"students.password":             0,
			"students.activities":           0,
			"students.groups":               0,
			"students.notifications":        0,
			"students.asked_questionnaires": 0,
			"students.reset_token":          0,
			"students.invitation_token":     0,
		}},
	})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var groups []models.GroupWithMembers
	if err := cur.All(ctx, &groups); err != nil {
		return nil, err
	}
	return groups, nil
}

// GetWithMembers resolves a single group with member profiles.
func (s *Store) GetWithMembers(ctx context.Context, id primitive.ObjectID) (models.GroupWithMembers, error) {
	groups, err := s.FindWithMembers(ctx, []primitive.ObjectID{id})
	if err != nil {
		return models.GroupWithMembers{}, err
	}
	if len(groups) == 0 {
		return models.GroupWithMembers{}, mongo.ErrNoDocuments
	}
	return groups[0], nil
}
