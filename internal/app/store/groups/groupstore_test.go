package groupstore

import (
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/teamlens/teamlens/internal/domain/models"
	"github.com/teamlens/teamlens/internal/testutil"
)

func TestCreateAndGet(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := New(db)
	activityID := primitive.NewObjectID()
	g, err := store.Create(ctx, models.Group{
		Name:       "Group 1",
		ActivityID: activityID,
		Students:   []primitive.ObjectID{primitive.NewObjectID()},
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	got, err := store.GetByID(ctx, g.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Name != "Group 1" || got.ActivityID != activityID {
		t.Errorf("stored group mismatch: %+v", got)
	}
}

func TestRename_Matched(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := New(db)
	g, err := store.Create(ctx, models.Group{Name: "Old", ActivityID: primitive.NewObjectID()})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	matched, err := store.Rename(ctx, g.ID, "New")
	if err != nil {
		t.Fatalf("Rename failed: %v", err)
	}
	if matched != 1 {
		t.Fatalf("expected matched 1, got %d", matched)
	}

	matched, err = store.Rename(ctx, primitive.NewObjectID(), "X")
	if err != nil {
		t.Fatalf("Rename failed: %v", err)
	}
	if matched != 0 {
		t.Error("unknown id should match nothing")
	}
}

func TestGetWithMembers_ProjectsPublicProfile(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	f := testutil.NewFixtures(t, db)
	alice := f.CreateStudent(ctx, "Alice", "alice@test.com")
	activityID := primitive.NewObjectID()
	group := f.CreateGroup(ctx, "Group 1", activityID, alice.ID)

	store := New(db)
	got, err := store.GetWithMembers(ctx, group.ID)
	if err != nil {
		t.Fatalf("GetWithMembers failed: %v", err)
	}
	if len(got.Students) != 1 {
		t.Fatalf("expected 1 resolved member, got %d", len(got.Students))
	}
	m := got.Students[0]
	if m.ID != alice.ID || m.Email != "alice@test.com" || m.Name != "Alice" || m.Role != models.RoleStudent {
		t.Errorf("unexpected member profile: %+v", m)
	}
}

func TestGetWithMembers_Unknown(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, err := New(db).GetWithMembers(ctx, primitive.NewObjectID())
	if !errors.Is(err, mongo.ErrNoDocuments) {
		t.Fatalf("expected ErrNoDocuments, got %v", err)
	}
}

func TestFindWithMembers_SkipsDanglingMembers(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	f := testutil.NewFixtures(t, db)
	alice := f.CreateStudent(ctx, "Alice", "alice@test.com")
	activityID := primitive.NewObjectID()
	// Second member id has no user document behind it.
	group := f.CreateGroup(ctx, "Group 1", activityID, alice.ID, primitive.NewObjectID())

	store := New(db)
	resolved, err := store.FindWithMembers(ctx, []primitive.ObjectID{group.ID})
	if err != nil {
		t.Fatalf("FindWithMembers failed: %v", err)
	}
	if len(resolved) != 1 {
		t.Fatalf("expected 1 group, got %d", len(resolved))
	}
	if len(resolved[0].Students) != 1 {
		t.Errorf("dangling member should be dropped, got %d members", len(resolved[0].Students))
	}
}

func TestPushAndPullStudents(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := New(db)
	g, err := store.Create(ctx, models.Group{Name: "Group 1", ActivityID: primitive.NewObjectID()})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	s := primitive.NewObjectID()
	if err := store.PushStudents(ctx, g.ID, []primitive.ObjectID{s}); err != nil {
		t.Fatalf("PushStudents failed: %v", err)
	}

	modified, err := store.PullStudent(ctx, g.ID, s)
	if err != nil {
		t.Fatalf("PullStudent failed: %v", err)
	}
	if modified != 1 {
		t.Fatalf("expected modified 1, got %d", modified)
	}

	modified, err = store.PullStudent(ctx, g.ID, s)
	if err != nil {
		t.Fatalf("PullStudent failed: %v", err)
	}
	if modified != 0 {
		t.Error("pulling an absent student should modify nothing")
	}
}

func TestFindByActivity(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := New(db)
	activityID := primitive.NewObjectID()
	for i := 0; i < 2; i++ {
		if _, err := store.Create(ctx, models.Group{Name: "G", ActivityID: activityID}); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}
	if _, err := store.Create(ctx, models.Group{Name: "Other", ActivityID: primitive.NewObjectID()}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	groups, err := store.FindByActivity(ctx, activityID)
	if err != nil {
		t.Fatalf("FindByActivity failed: %v", err)
	}
	if len(groups) != 2 {
		t.Errorf("expected 2 groups for the activity, got %d", len(groups))
	}
}
