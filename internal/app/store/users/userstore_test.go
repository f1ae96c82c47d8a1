package userstore

import (
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/teamlens/teamlens/internal/app/system/indexes"
	"github.com/teamlens/teamlens/internal/domain/models"
	"github.com/teamlens/teamlens/internal/testutil"
)

func TestCreate_NormalizesEmail(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := New(db)
	u, err := store.Create(ctx, models.User{
		Email:    "  Alice@Test.COM ",
		Name:     "Alice",
		Password: "hash",
		Role:     models.RoleStudent,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if u.Email != "alice@test.com" {
		t.Errorf("expected normalized email, got %q", u.Email)
	}

	got, err := store.GetByEmail(ctx, " ALICE@test.com ")
	if err != nil {
		t.Fatalf("GetByEmail failed: %v", err)
	}
	if got.ID != u.ID {
		t.Error("lookup by differently-cased email returned the wrong user")
	}
}

func TestCreate_DuplicateEmail(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	store := New(db)
	if _, err := store.Create(ctx, models.User{Email: "alice@test.com", Role: models.RoleStudent}); err != nil {
		t.Fatalf("first Create failed: %v", err)
	}
	_, err := store.Create(ctx, models.User{Email: "Alice@test.com", Role: models.RoleStudent})
	if !errors.Is(err, ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}
}

func TestCompleteInvitedRegistration(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := New(db)
	invited, err := store.Create(ctx, models.User{
		Email:           "invited@test.com",
		Role:            models.RoleStudent,
		InvitationToken: "tok",
		IsTemporary:     true,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := store.CompleteInvitedRegistration(ctx, "Invited@test.com", "Real Name", "newhash"); err != nil {
		t.Fatalf("CompleteInvitedRegistration failed: %v", err)
	}

	u, err := store.GetByID(ctx, invited.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if u.Name != "Real Name" || u.Password != "newhash" || u.Role != models.RoleStudent {
		t.Errorf("registration did not apply: %+v", u)
	}
	if u.InvitationToken != "" || u.IsTemporary {
		t.Error("invitation marker should be cleared")
	}
}

func TestCompleteInvitedRegistration_UnknownEmail(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	err := New(db).CompleteInvitedRegistration(ctx, "nobody@test.com", "Name", "hash")
	if !errors.Is(err, mongo.ErrNoDocuments) {
		t.Fatalf("expected ErrNoDocuments, got %v", err)
	}
}

func TestResetPassword_ClearsToken(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := New(db)
	u, err := store.Create(ctx, models.User{Email: "alice@test.com", Password: "old", Role: models.RoleStudent})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := store.SetResetToken(ctx, u.ID, "reset-token"); err != nil {
		t.Fatalf("SetResetToken failed: %v", err)
	}
	if _, err := store.GetByResetToken(ctx, "reset-token"); err != nil {
		t.Fatalf("GetByResetToken failed: %v", err)
	}

	modified, err := store.ResetPassword(ctx, u.ID, "new")
	if err != nil {
		t.Fatalf("ResetPassword failed: %v", err)
	}
	if modified != 1 {
		t.Fatalf("expected 1 modified document, got %d", modified)
	}

	if _, err := store.GetByResetToken(ctx, "reset-token"); !errors.Is(err, mongo.ErrNoDocuments) {
		t.Errorf("reset token should be cleared, got %v", err)
	}
}

func TestUpsertQuestionnaireResult_ReplacesEarlierResult(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := New(db)
	u, err := store.Create(ctx, models.User{Email: "alice@test.com", Role: models.RoleStudent})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	qID := primitive.NewObjectID()

	if err := store.UpsertQuestionnaireResult(ctx, u.ID, qID, "PLANT"); err != nil {
		t.Fatalf("first upsert failed: %v", err)
	}
	if err := store.UpsertQuestionnaireResult(ctx, u.ID, qID, "SHAPER"); err != nil {
		t.Fatalf("second upsert failed: %v", err)
	}

	got, err := store.GetByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if len(got.AskedQuestionnaires) != 1 {
		t.Fatalf("expected a single result entry, got %d", len(got.AskedQuestionnaires))
	}
	if got.AskedQuestionnaires[0].Result != "SHAPER" {
		t.Errorf("expected replaced result SHAPER, got %q", got.AskedQuestionnaires[0].Result)
	}
}

func TestUpsertQuestionnaireResult_UnknownUser(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	err := New(db).UpsertQuestionnaireResult(ctx, primitive.NewObjectID(), primitive.NewObjectID(), "PLANT")
	if !errors.Is(err, mongo.ErrNoDocuments) {
		t.Fatalf("expected ErrNoDocuments, got %v", err)
	}
}

func TestFindUnanswered(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := New(db)
	answered, err := store.Create(ctx, models.User{Email: "a@test.com", Role: models.RoleStudent})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	pending, err := store.Create(ctx, models.User{Email: "b@test.com", Role: models.RoleStudent})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	qID := primitive.NewObjectID()
	if err := store.UpsertQuestionnaireResult(ctx, answered.ID, qID, "PLANT"); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}

	users, err := store.FindUnanswered(ctx, []primitive.ObjectID{answered.ID, pending.ID}, qID)
	if err != nil {
		t.Fatalf("FindUnanswered failed: %v", err)
	}
	if len(users) != 1 || users[0].ID != pending.ID {
		t.Fatalf("expected only the pending student, got %v", users)
	}
}

func TestNotificationLifecycle(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := New(db)
	u, err := store.Create(ctx, models.User{Email: "alice@test.com", Role: models.RoleStudent})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	n := models.Notification{Title: "Added to group", Type: models.NotificationGroup}
	if err := store.AppendNotification(ctx, u.ID, n); err != nil {
		t.Fatalf("AppendNotification failed: %v", err)
	}

	got, err := store.GetByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if len(got.Notifications) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(got.Notifications))
	}
	stored := got.Notifications[0]
	if stored.ID.IsZero() || stored.CreatedAt.IsZero() {
		t.Error("append should assign id and timestamp")
	}
	if stored.Read {
		t.Error("new notifications start unread")
	}

	matched, err := store.SetNotificationRead(ctx, u.ID, stored.ID, true)
	if err != nil {
		t.Fatalf("SetNotificationRead failed: %v", err)
	}
	if matched != 1 {
		t.Fatalf("expected matched 1, got %d", matched)
	}

	matched, err = store.SetNotificationRead(ctx, u.ID, primitive.NewObjectID(), true)
	if err != nil {
		t.Fatalf("SetNotificationRead failed: %v", err)
	}
	if matched != 0 {
		t.Error("unknown notification id should match nothing")
	}

	removed, err := store.DeleteNotification(ctx, u.ID, stored.ID)
	if err != nil {
		t.Fatalf("DeleteNotification failed: %v", err)
	}
	if removed != 1 {
		t.Fatalf("expected 1 removed, got %d", removed)
	}

	if err := store.AppendNotification(ctx, u.ID, n); err != nil {
		t.Fatalf("AppendNotification failed: %v", err)
	}
	if err := store.ClearNotifications(ctx, u.ID); err != nil {
		t.Fatalf("ClearNotifications failed: %v", err)
	}
	got, err = store.GetByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if len(got.Notifications) != 0 {
		t.Errorf("expected no notifications after clear, got %d", len(got.Notifications))
	}
}
