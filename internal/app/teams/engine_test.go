package teams

import (
	"context"
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	userstore "github.com/teamlens/teamlens/internal/app/store/users"
	"github.com/teamlens/teamlens/internal/app/system/notify"
	"github.com/teamlens/teamlens/internal/domain/models"
	"github.com/teamlens/teamlens/internal/testutil"
)

func newTestEngine(db *mongo.Database) *Engine {
	logger := zap.NewNop()
	return NewEngine(db, notify.New(userstore.New(db), logger), logger)
}

func loadGroup(t *testing.T, ctx context.Context, db *mongo.Database, id primitive.ObjectID) models.Group {
	t.Helper()
	var g models.Group
	if err := db.Collection("groups").FindOne(ctx, bson.M{"_id": id}).Decode(&g); err != nil {
		t.Fatalf("failed to load group: %v", err)
	}
	return g
}

func loadUser(t *testing.T, ctx context.Context, db *mongo.Database, id primitive.ObjectID) models.User {
	t.Helper()
	var u models.User
	if err := db.Collection("users").FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		t.Fatalf("failed to load user: %v", err)
	}
	return u
}

func containsID(ids []primitive.ObjectID, id primitive.ObjectID) bool {
	for _, x := range ids {
		if x == id {
			return true
		}
	}
	return false
}

func TestCreateGroup_LinksBothSides(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	f := testutil.NewFixtures(t, db)
	teacher := f.CreateTeacher(ctx, "Teacher", "teacher@test.com")
	alice := f.CreateStudent(ctx, "Alice", "alice@test.com")
	bob := f.CreateStudent(ctx, "Bob", "bob@test.com")
	activity := f.CreateActivity(ctx, "Databases", teacher.ID)
	f.Enroll(ctx, activity.ID, alice.ID, bob.ID)

	engine := newTestEngine(db)
	group, err := engine.CreateGroup(ctx, activity.ID, GroupInput{
		Name:     "Group 1",
		Students: []primitive.ObjectID{alice.ID, bob.ID},
	})
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	if len(group.Students) != 2 {
		t.Fatalf("expected 2 resolved members, got %d", len(group.Students))
	}

	var act models.Activity
	if err := db.Collection("activities").FindOne(ctx, bson.M{"_id": activity.ID}).Decode(&act); err != nil {
		t.Fatalf("failed to load activity: %v", err)
	}
	if !containsID(act.Groups, group.ID) {
		t.Error("activity does not list the new group")
	}

	for _, s := range []primitive.ObjectID{alice.ID, bob.ID} {
		u := loadUser(t, ctx, db, s)
		if !containsID(u.Groups, group.ID) {
			t.Errorf("student %s missing group back-reference", u.Name)
		}
		if len(u.Notifications) == 0 {
			t.Errorf("student %s got no notification", u.Name)
		}
	}
}

func TestCreateGroup_NarrowsClaimedStudents(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	f := testutil.NewFixtures(t, db)
	teacher := f.CreateTeacher(ctx, "Teacher", "teacher@test.com")
	alice := f.CreateStudent(ctx, "Alice", "alice@test.com")
	bob := f.CreateStudent(ctx, "Bob", "bob@test.com")
	activity := f.CreateActivity(ctx, "Databases", teacher.ID)
	f.Enroll(ctx, activity.ID, alice.ID, bob.ID)
	f.CreateGroup(ctx, "Existing", activity.ID, alice.ID)

	engine := newTestEngine(db)
	group, err := engine.CreateGroup(ctx, activity.ID, GroupInput{
		Name:     "Second",
		Students: []primitive.ObjectID{alice.ID, bob.ID},
	})
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}

	stored := loadGroup(t, ctx, db, group.ID)
	if len(stored.Students) != 1 || stored.Students[0] != bob.ID {
		t.Errorf("expected only the unclaimed student in the roster, got %v", stored.Students)
	}
}

func TestCreateGroup_RejectsUnenrolledStudent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	f := testutil.NewFixtures(t, db)
	teacher := f.CreateTeacher(ctx, "Teacher", "teacher@test.com")
	alice := f.CreateStudent(ctx, "Alice", "alice@test.com")
	outsider := f.CreateStudent(ctx, "Outsider", "outsider@test.com")
	activity := f.CreateActivity(ctx, "Databases", teacher.ID)
	f.Enroll(ctx, activity.ID, alice.ID)

	engine := newTestEngine(db)
	_, err := engine.CreateGroup(ctx, activity.ID, GroupInput{
		Name:     "Group 1",
		Students: []primitive.ObjectID{alice.ID, outsider.ID},
	})
	if !IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}

	// Nothing should have been written.
	n, err := db.Collection("groups").CountDocuments(ctx, bson.M{})
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if n != 0 {
		t.Errorf("expected no groups, found %d", n)
	}
}

func TestCreateGroup_RejectsWhenEverybodyClaimed(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	f := testutil.NewFixtures(t, db)
	teacher := f.CreateTeacher(ctx, "Teacher", "teacher@test.com")
	alice := f.CreateStudent(ctx, "Alice", "alice@test.com")
	activity := f.CreateActivity(ctx, "Databases", teacher.ID)
	f.Enroll(ctx, activity.ID, alice.ID)
	f.CreateGroup(ctx, "Existing", activity.ID, alice.ID)

	engine := newTestEngine(db)
	_, err := engine.CreateGroup(ctx, activity.ID, GroupInput{
		Name:     "Second",
		Students: []primitive.ObjectID{alice.ID},
	})
	if !IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCreateGroup_UnknownActivity(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	engine := newTestEngine(db)
	_, err := engine.CreateGroup(ctx, primitive.NewObjectID(), GroupInput{Name: "Group 1"})
	if !IsNotFound(err) {
		t.Fatalf("expected not-found error, got %v", err)
	}
}

func TestAddStudents_RejectsExistingMember(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	f := testutil.NewFixtures(t, db)
	teacher := f.CreateTeacher(ctx, "Teacher", "teacher@test.com")
	alice := f.CreateStudent(ctx, "Alice", "alice@test.com")
	activity := f.CreateActivity(ctx, "Databases", teacher.ID)
	f.Enroll(ctx, activity.ID, alice.ID)
	group := f.CreateGroup(ctx, "Group 1", activity.ID, alice.ID)

	engine := newTestEngine(db)
	_, err := engine.AddStudents(ctx, group.ID, []primitive.ObjectID{alice.ID})
	if !IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestAddStudents_AllowsMemberOfAnotherGroup(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	f := testutil.NewFixtures(t, db)
	teacher := f.CreateTeacher(ctx, "Teacher", "teacher@test.com")
	alice := f.CreateStudent(ctx, "Alice", "alice@test.com")
	activity := f.CreateActivity(ctx, "Databases", teacher.ID)
	f.Enroll(ctx, activity.ID, alice.ID)
	f.CreateGroup(ctx, "First", activity.ID, alice.ID)
	second := f.CreateGroup(ctx, "Second", activity.ID)

	engine := newTestEngine(db)
	res, err := engine.AddStudents(ctx, second.ID, []primitive.ObjectID{alice.ID})
	if err != nil {
		t.Fatalf("AddStudents failed: %v", err)
	}
	if len(res.AddedMembers) != 1 {
		t.Fatalf("expected 1 added member, got %d", len(res.AddedMembers))
	}

	u := loadUser(t, ctx, db, alice.ID)
	if len(u.Groups) != 2 {
		t.Errorf("expected student in 2 groups, got %d", len(u.Groups))
	}
}

func TestAddStudents_RejectsUnenrolled(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	f := testutil.NewFixtures(t, db)
	teacher := f.CreateTeacher(ctx, "Teacher", "teacher@test.com")
	outsider := f.CreateStudent(ctx, "Outsider", "outsider@test.com")
	activity := f.CreateActivity(ctx, "Databases", teacher.ID)
	group := f.CreateGroup(ctx, "Group 1", activity.ID)

	engine := newTestEngine(db)
	_, err := engine.AddStudents(ctx, group.ID, []primitive.ObjectID{outsider.ID})
	if !IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestRemoveStudent_UnlinksBothSides(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	f := testutil.NewFixtures(t, db)
	teacher := f.CreateTeacher(ctx, "Teacher", "teacher@test.com")
	alice := f.CreateStudent(ctx, "Alice", "alice@test.com")
	activity := f.CreateActivity(ctx, "Databases", teacher.ID)
	f.Enroll(ctx, activity.ID, alice.ID)
	group := f.CreateGroup(ctx, "Group 1", activity.ID, alice.ID)

	engine := newTestEngine(db)
	if err := engine.RemoveStudent(ctx, group.ID, alice.ID); err != nil {
		t.Fatalf("RemoveStudent failed: %v", err)
	}

	stored := loadGroup(t, ctx, db, group.ID)
	if containsID(stored.Students, alice.ID) {
		t.Error("student still in group roster")
	}
	u := loadUser(t, ctx, db, alice.ID)
	if containsID(u.Groups, group.ID) {
		t.Error("student still back-references the group")
	}
}

func TestRemoveStudent_NotAMember(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	f := testutil.NewFixtures(t, db)
	teacher := f.CreateTeacher(ctx, "Teacher", "teacher@test.com")
	activity := f.CreateActivity(ctx, "Databases", teacher.ID)
	group := f.CreateGroup(ctx, "Group 1", activity.ID)

	engine := newTestEngine(db)
	err := engine.RemoveStudent(ctx, group.ID, primitive.NewObjectID())
	if !IsNotFound(err) {
		t.Fatalf("expected not-found error, got %v", err)
	}
}

func TestDeleteGroup_Cascades(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	f := testutil.NewFixtures(t, db)
	teacher := f.CreateTeacher(ctx, "Teacher", "teacher@test.com")
	alice := f.CreateStudent(ctx, "Alice", "alice@test.com")
	activity := f.CreateActivity(ctx, "Databases", teacher.ID)
	f.Enroll(ctx, activity.ID, alice.ID)
	group := f.CreateGroup(ctx, "Group 1", activity.ID, alice.ID)

	engine := newTestEngine(db)
	deleted, err := engine.DeleteGroup(ctx, group.ID)
	if err != nil {
		t.Fatalf("DeleteGroup failed: %v", err)
	}
	if deleted != 1 {
		t.Fatalf("expected 1 deleted document, got %d", deleted)
	}

	var act models.Activity
	if err := db.Collection("activities").FindOne(ctx, bson.M{"_id": activity.ID}).Decode(&act); err != nil {
		t.Fatalf("failed to load activity: %v", err)
	}
	if containsID(act.Groups, group.ID) {
		t.Error("activity still lists the deleted group")
	}
	u := loadUser(t, ctx, db, alice.ID)
	if containsID(u.Groups, group.ID) {
		t.Error("student still back-references the deleted group")
	}
}

func TestDeleteActivity_CascadesGroupsAndRefs(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	f := testutil.NewFixtures(t, db)
	teacher := f.CreateTeacher(ctx, "Teacher", "teacher@test.com")
	alice := f.CreateStudent(ctx, "Alice", "alice@test.com")
	bob := f.CreateStudent(ctx, "Bob", "bob@test.com")
	activity := f.CreateActivity(ctx, "Databases", teacher.ID)
	f.Enroll(ctx, activity.ID, alice.ID, bob.ID)
	g1 := f.CreateGroup(ctx, "Group 1", activity.ID, alice.ID)
	g2 := f.CreateGroup(ctx, "Group 2", activity.ID, bob.ID)

	engine := newTestEngine(db)
	if _, err := engine.DeleteActivity(ctx, activity.ID); err != nil {
		t.Fatalf("DeleteActivity failed: %v", err)
	}

	for _, gid := range []primitive.ObjectID{g1.ID, g2.ID} {
		n, err := db.Collection("groups").CountDocuments(ctx, bson.M{"_id": gid})
		if err != nil {
			t.Fatalf("count failed: %v", err)
		}
		if n != 0 {
			t.Errorf("group %s survived the cascade", gid.Hex())
		}
	}

	for _, s := range []primitive.ObjectID{alice.ID, bob.ID} {
		u := loadUser(t, ctx, db, s)
		if containsID(u.Activities, activity.ID) {
			t.Errorf("student %s still back-references the activity", u.Name)
		}
		if len(u.Groups) != 0 {
			t.Errorf("student %s still back-references groups", u.Name)
		}
	}
}

func TestDeleteActivity_Unknown(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	engine := newTestEngine(db)
	_, err := engine.DeleteActivity(ctx, primitive.NewObjectID())
	if !IsNotFound(err) {
		t.Fatalf("expected not-found error, got %v", err)
	}
}
