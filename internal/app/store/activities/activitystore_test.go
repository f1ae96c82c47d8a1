package activitystore

import (
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/teamlens/teamlens/internal/domain/models"
	"github.com/teamlens/teamlens/internal/testutil"
)

func TestCreate_DefaultsAlgorithmStatus(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := New(db)
	a, err := store.Create(ctx, models.Activity{
		Title:     "Databases",
		TeacherID: primitive.NewObjectID(),
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if a.AlgorithmStatus != models.AlgorithmNone {
		t.Errorf("expected default status %q, got %q", models.AlgorithmNone, a.AlgorithmStatus)
	}

	got, err := store.GetByID(ctx, a.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Title != "Databases" {
		t.Errorf("unexpected title %q", got.Title)
	}
}

func TestListByTeacher(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := New(db)
	teacher := primitive.NewObjectID()
	other := primitive.NewObjectID()

	for _, tid := range []primitive.ObjectID{teacher, teacher, other} {
		if _, err := store.Create(ctx, models.Activity{Title: "A", TeacherID: tid}); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}

	mine, err := store.ListByTeacher(ctx, teacher)
	if err != nil {
		t.Fatalf("ListByTeacher failed: %v", err)
	}
	if len(mine) != 2 {
		t.Errorf("expected 2 activities for teacher, got %d", len(mine))
	}
}

func TestUpdateInfo_Matched(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := New(db)
	a, err := store.Create(ctx, models.Activity{Title: "Old", TeacherID: primitive.NewObjectID()})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	matched, err := store.UpdateInfo(ctx, a.ID, "New", "Desc")
	if err != nil {
		t.Fatalf("UpdateInfo failed: %v", err)
	}
	if matched != 1 {
		t.Fatalf("expected matched 1, got %d", matched)
	}

	matched, err = store.UpdateInfo(ctx, primitive.NewObjectID(), "X", "")
	if err != nil {
		t.Fatalf("UpdateInfo failed: %v", err)
	}
	if matched != 0 {
		t.Error("unknown id should match nothing")
	}
}

func TestPushGroup_UnknownActivity(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	err := New(db).PushGroup(ctx, primitive.NewObjectID(), primitive.NewObjectID())
	if !errors.Is(err, mongo.ErrNoDocuments) {
		t.Fatalf("expected ErrNoDocuments, got %v", err)
	}
}

func TestAddStudents_Deduplicates(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := New(db)
	a, err := store.Create(ctx, models.Activity{Title: "A", TeacherID: primitive.NewObjectID()})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	s := primitive.NewObjectID()
	for i := 0; i < 2; i++ {
		if _, err := store.AddStudents(ctx, a.ID, []primitive.ObjectID{s}); err != nil {
			t.Fatalf("AddStudents failed: %v", err)
		}
	}

	got, err := store.GetByID(ctx, a.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if len(got.Students) != 1 {
		t.Errorf("expected roster of 1 after repeated add, got %d", len(got.Students))
	}
}

func TestPullStudent_Modified(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := New(db)
	a, err := store.Create(ctx, models.Activity{Title: "A", TeacherID: primitive.NewObjectID()})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	s := primitive.NewObjectID()
	if _, err := store.AddStudents(ctx, a.ID, []primitive.ObjectID{s}); err != nil {
		t.Fatalf("AddStudents failed: %v", err)
	}

	modified, err := store.PullStudent(ctx, a.ID, s)
	if err != nil {
		t.Fatalf("PullStudent failed: %v", err)
	}
	if modified != 1 {
		t.Fatalf("expected modified 1, got %d", modified)
	}

	modified, err = store.PullStudent(ctx, a.ID, s)
	if err != nil {
		t.Fatalf("PullStudent failed: %v", err)
	}
	if modified != 0 {
		t.Error("pulling an absent student should modify nothing")
	}
}

func TestSetAlgorithmStatus(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := New(db)
	a, err := store.Create(ctx, models.Activity{Title: "A", TeacherID: primitive.NewObjectID()})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := store.SetAlgorithmStatus(ctx, a.ID, models.AlgorithmRunning); err != nil {
		t.Fatalf("SetAlgorithmStatus failed: %v", err)
	}
	got, err := store.GetByID(ctx, a.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.AlgorithmStatus != models.AlgorithmRunning {
		t.Errorf("expected status %q, got %q", models.AlgorithmRunning, got.AlgorithmStatus)
	}
}
