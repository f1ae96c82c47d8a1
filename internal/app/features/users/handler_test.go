package users

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/teamlens/teamlens/internal/domain/models"
	"github.com/teamlens/teamlens/internal/testutil"
)

func TestServeUser_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := NewHandler(db, zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/users/x", nil)
	req = testutil.WithChiURLParam(req, "id", primitive.NewObjectID().Hex())
	rec := httptest.NewRecorder()
	h.ServeUser(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestServeUser_BadID(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := NewHandler(db, zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/users/nope", nil)
	req = testutil.WithChiURLParam(req, "id", "nope")
	rec := httptest.NewRecorder()
	h.ServeUser(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestHandleSubmitQuestionnaire_StoresResult(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	f := testutil.NewFixtures(t, db)
	student := f.CreateStudent(ctx, "Alice", "alice@test.com")
	h := NewHandler(db, zap.NewNop())

	qID := primitive.NewObjectID()
	body := map[string]any{
		"answers": []map[string]int{
			{"PLANT": 7, "SHAPER": 2},
			{"PLANT": 3, "COMPLETER_FINISHER": 1},
		},
	}
	req := testutil.NewJSONRequest(t, http.MethodPost,
		fmt.Sprintf("/users/%s/send-questionnaire/%s", student.ID.Hex(), qID.Hex()), body)
	req = testutil.WithChiURLParam(req, "id", student.ID.Hex())
	req = testutil.WithChiURLParam(req, "questionnaireID", qID.Hex())
	rec := httptest.NewRecorder()
	h.HandleSubmitQuestionnaire(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("submit returned %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Result string `json:"result"`
	}
	testutil.DecodeJSON(t, rec, &resp)
	if resp.Result != "PLANT" {
		t.Errorf("expected result PLANT, got %q", resp.Result)
	}

	u, err := h.Users.GetByID(ctx, student.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if len(u.AskedQuestionnaires) != 1 || u.AskedQuestionnaires[0].Result != "PLANT" {
		t.Errorf("result not stored: %+v", u.AskedQuestionnaires)
	}
}

func TestHandleSubmitQuestionnaire_BadAnswers(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	f := testutil.NewFixtures(t, db)
	student := f.CreateStudent(ctx, "Alice", "alice@test.com")
	h := NewHandler(db, zap.NewNop())

	qID := primitive.NewObjectID()
	body := map[string]any{
		"answers": []map[string]int{{"NOT_A_ROLE": 5}},
	}
	req := testutil.NewJSONRequest(t, http.MethodPost, "/x", body)
	req = testutil.WithChiURLParam(req, "id", student.ID.Hex())
	req = testutil.WithChiURLParam(req, "questionnaireID", qID.Hex())
	rec := httptest.NewRecorder()
	h.HandleSubmitQuestionnaire(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown role, got %d", rec.Code)
	}
}

func seedNotifications(t *testing.T, h *Handler, userID primitive.ObjectID, n int) []models.Notification {
	t.Helper()
	ctx, cancel := testutil.TestContext()
	defer cancel()

	base := time.Now().UTC().Add(-time.Hour)
	out := make([]models.Notification, 0, n)
	for i := 0; i < n; i++ {
		notice := models.Notification{
			ID:          primitive.NewObjectID(),
			Title:       fmt.Sprintf("Notice %d", i),
			Description: "something happened",
			Type:        models.NotificationGroup,
			CreatedAt:   base.Add(time.Duration(i) * time.Minute),
		}
		if err := h.Users.AppendNotification(ctx, userID, notice); err != nil {
			t.Fatalf("AppendNotification failed: %v", err)
		}
		out = append(out, notice)
	}
	return out
}

func TestServeNotifications_PaginatesNewestFirst(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	f := testutil.NewFixtures(t, db)
	user := f.CreateStudent(ctx, "Alice", "alice@test.com")
	h := NewHandler(db, zap.NewNop())
	seeded := seedNotifications(t, h, user.ID, 5)

	req := httptest.NewRequest(http.MethodGet, "/users/notifications?page=1&limit=2", nil)
	req = testutil.WithUser(req, testutil.TestUser{ID: user.ID.Hex(), Role: models.RoleStudent})
	rec := httptest.NewRecorder()
	h.ServeNotifications(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("notifications returned %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Notifications []models.Notification `json:"notifications"`
		Pagination    struct {
			Total int `json:"total"`
			Pages int `json:"pages"`
		} `json:"pagination"`
		HasMore bool `json:"hasMore"`
	}
	testutil.DecodeJSON(t, rec, &resp)

	if len(resp.Notifications) != 2 {
		t.Fatalf("expected 2 notifications on the page, got %d", len(resp.Notifications))
	}
	// Newest first: the last seeded notice leads.
	if resp.Notifications[0].ID != seeded[4].ID {
		t.Error("expected the newest notification first")
	}
	if resp.Pagination.Total != 5 || resp.Pagination.Pages != 3 {
		t.Errorf("unexpected pagination: %+v", resp.Pagination)
	}
	if !resp.HasMore {
		t.Error("expected hasMore on the first page")
	}
}

func TestServeNotifications_FilterUnread(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	f := testutil.NewFixtures(t, db)
	user := f.CreateStudent(ctx, "Alice", "alice@test.com")
	h := NewHandler(db, zap.NewNop())
	seeded := seedNotifications(t, h, user.ID, 3)

	if _, err := h.Users.SetNotificationRead(ctx, user.ID, seeded[0].ID, true); err != nil {
		t.Fatalf("SetNotificationRead failed: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/users/notifications?status=unread", nil)
	req = testutil.WithUser(req, testutil.TestUser{ID: user.ID.Hex(), Role: models.RoleStudent})
	rec := httptest.NewRecorder()
	h.ServeNotifications(rec, req)

	var resp struct {
		Notifications []models.Notification `json:"notifications"`
	}
	testutil.DecodeJSON(t, rec, &resp)
	if len(resp.Notifications) != 2 {
		t.Errorf("expected 2 unread notifications, got %d", len(resp.Notifications))
	}
}

func TestServeNotificationStats(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	f := testutil.NewFixtures(t, db)
	user := f.CreateStudent(ctx, "Alice", "alice@test.com")
	h := NewHandler(db, zap.NewNop())
	seeded := seedNotifications(t, h, user.ID, 4)
	if _, err := h.Users.SetNotificationRead(ctx, user.ID, seeded[0].ID, true); err != nil {
		t.Fatalf("SetNotificationRead failed: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/users/notifications/stats", nil)
	req = testutil.WithUser(req, testutil.TestUser{ID: user.ID.Hex(), Role: models.RoleStudent})
	rec := httptest.NewRecorder()
	h.ServeNotificationStats(rec, req)

	var stats struct {
		Total  int            `json:"total"`
		Unread int            `json:"unread"`
		Read   int            `json:"read"`
		ByType map[string]int `json:"byType"`
	}
	testutil.DecodeJSON(t, rec, &stats)
	if stats.Total != 4 || stats.Read != 1 || stats.Unread != 3 {
		t.Errorf("unexpected stats: %+v", stats)
	}
	if stats.ByType[models.NotificationGroup] != 4 {
		t.Errorf("expected 4 group notices, got %d", stats.ByType[models.NotificationGroup])
	}
}

func TestMarkNotificationRead_Unknown(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	f := testutil.NewFixtures(t, db)
	user := f.CreateStudent(ctx, "Alice", "alice@test.com")
	h := NewHandler(db, zap.NewNop())

	req := httptest.NewRequest(http.MethodPatch, "/users/notifications/x/read", nil)
	req = testutil.WithUser(req, testutil.TestUser{ID: user.ID.Hex(), Role: models.RoleStudent})
	req = testutil.WithChiURLParam(req, "notificationID", primitive.NewObjectID().Hex())
	rec := httptest.NewRecorder()
	h.HandleMarkNotificationRead(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestServeNotifications_RequiresSession(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := NewHandler(db, zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/users/notifications", nil)
	rec := httptest.NewRecorder()
	h.ServeNotifications(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without a session, got %d", rec.Code)
	}
}
