package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/teamlens/teamlens/internal/domain/models"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateTeacher creates a teacher account.
func (f *Fixtures) CreateTeacher(ctx context.Context, name, email string) models.User {
	f.t.Helper()
	return f.createUser(ctx, name, email, models.RoleTeacher)
}

// CreateStudent creates a student account.
func (f *Fixtures) CreateStudent(ctx context.Context, name, email string) models.User {
	f.t.Helper()
	return f.createUser(ctx, name, email, models.RoleStudent)
}

func (f *Fixtures) createUser(ctx context.Context, name, email, role string) models.User {
	f.t.Helper()

	now := time.Now().UTC()
	user := models.User{
		ID:        primitive.NewObjectID(),
		Email:     email,
		Name:      name,
		Password:  "$2a$10$testhashnotverifiable000000000000000000000000000000000",
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if _, err := f.db.Collection("users").InsertOne(ctx, user); err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateActivity creates an activity owned by the given teacher.
func (f *Fixtures) CreateActivity(ctx context.Context, name string, teacherID primitive.ObjectID) models.Activity {
	f.t.Helper()

	now := time.Now().UTC()
	activity := models.Activity{
		ID:              primitive.NewObjectID(),
		Title:           name,
		Description:     "Test activity",
		TeacherID:       teacherID,
		AlgorithmStatus: models.AlgorithmNone,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if _, err := f.db.Collection("activities").InsertOne(ctx, activity); err != nil {
		f.t.Fatalf("failed to create test activity: %v", err)
	}
	return activity
}

// Enroll adds students to an activity and mirrors the back-reference
// on each student document, the same shape production writes produce.
func (f *Fixtures) Enroll(ctx context.Context, activityID primitive.ObjectID, studentIDs ...primitive.ObjectID) {
	f.t.Helper()

	_, err := f.db.Collection("activities").UpdateByID(ctx, activityID, bson.M{
		"$addToSet": bson.M{"students": bson.M{"$each": studentIDs}},
	})
	if err != nil {
		f.t.Fatalf("failed to enroll students: %v", err)
	}
	_, err = f.db.Collection("users").UpdateMany(ctx,
		bson.M{"_id": bson.M{"$in": studentIDs}},
		bson.M{"$addToSet": bson.M{"activities": activityID}},
	)
	if err != nil {
		f.t.Fatalf("failed to back-reference activity on students: %v", err)
	}
}

// CreateGroup creates a group in the given activity and links it on
// the activity and on each member.
func (f *Fixtures) CreateGroup(ctx context.Context, name string, activityID primitive.ObjectID, studentIDs ...primitive.ObjectID) models.Group {
	f.t.Helper()

	now := time.Now().UTC()
	group := models.Group{
		ID:         primitive.NewObjectID(),
		Name:       name,
		ActivityID: activityID,
		Students:   studentIDs,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if _, err := f.db.Collection("groups").InsertOne(ctx, group); err != nil {
		f.t.Fatalf("failed to create test group: %v", err)
	}
	if _, err := f.db.Collection("activities").UpdateByID(ctx, activityID, bson.M{
		"$push": bson.M{"groups": group.ID},
	}); err != nil {
		f.t.Fatalf("failed to link group on activity: %v", err)
	}
	if len(studentIDs) > 0 {
		if _, err := f.db.Collection("users").UpdateMany(ctx,
			bson.M{"_id": bson.M{"$in": studentIDs}},
			bson.M{"$addToSet": bson.M{"groups": group.ID}},
		); err != nil {
			f.t.Fatalf("failed to back-reference group on students: %v", err)
		}
	}
	return group
}

// CreateQuestionnaire creates a questionnaire document.
func (f *Fixtures) CreateQuestionnaire(ctx context.Context, title string) models.Questionnaire {
	f.t.Helper()

	now := time.Now().UTC()
	q := models.Questionnaire{
		ID:        primitive.NewObjectID(),
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if _, err := f.db.Collection("questionnaires").InsertOne(ctx, q); err != nil {
		f.t.Fatalf("failed to create test questionnaire: %v", err)
	}
	return q
}
