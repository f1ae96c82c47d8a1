// internal/app/features/activities/handler.go
package activities

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/teamlens/teamlens/internal/app/algorithm"
	activitystore "github.com/teamlens/teamlens/internal/app/store/activities"
	questionnairestore "github.com/teamlens/teamlens/internal/app/store/questionnaires"
	userstore "github.com/teamlens/teamlens/internal/app/store/users"
	"github.com/teamlens/teamlens/internal/app/system/auth"
	"github.com/teamlens/teamlens/internal/app/system/htmlsanitize"
	"github.com/teamlens/teamlens/internal/app/system/httpjson"
	"github.com/teamlens/teamlens/internal/app/system/mailer"
	"github.com/teamlens/teamlens/internal/app/system/notify"
	"github.com/teamlens/teamlens/internal/app/system/timeouts"
	"github.com/teamlens/teamlens/internal/app/teams"
	"github.com/teamlens/teamlens/internal/domain/models"
)

// Handler serves activity CRUD, roster management, and the grouping
// algorithm endpoints.
type Handler struct {
	Activities     *activitystore.Store
	Users          *userstore.Store
	Questionnaires *questionnairestore.Store
	Engine         *teams.Engine
	Dispatcher     *algorithm.Dispatcher
	Notifier       *notify.Notifier
	Mail           mailer.Sender
	Tokens         *auth.Tokens
	BaseURL        string
	Log            *zap.Logger
}

func NewHandler(db *mongo.Database, engine *teams.Engine, dispatcher *algorithm.Dispatcher, notifier *notify.Notifier, mail mailer.Sender, tokens *auth.Tokens, baseURL string, logger *zap.Logger) *Handler {
	return &Handler{
		Activities:     activitystore.New(db),
		Users:          userstore.New(db),
		Questionnaires: questionnairestore.New(db),
		Engine:         engine,
		Dispatcher:     dispatcher,
		Notifier:       notifier,
		Mail:           mail,
		Tokens:         tokens,
		BaseURL:        strings.TrimRight(baseURL, "/"),
		Log:            logger,
	}
}

// ServeList handles GET /activities.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithMedium(r.Context())
	defer cancel()

	activities, err := h.Activities.List(ctx)
	if err != nil {
		h.Log.Error("list activities failed", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "could not list activities")
		return
	}
	if activities == nil {
		activities = []models.Activity{}
	}
	httpjson.Write(w, http.StatusOK, activities)
}

// ServeActivity handles GET /activities/{id}.
func (h *Handler) ServeActivity(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	ctx, cancel := timeouts.WithShort(r.Context())
	defer cancel()

	activity, err := h.Activities.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			httpjson.Error(w, http.StatusNotFound, fmt.Sprintf("unable to find matching document with id: %s", id.Hex()))
			return
		}
		h.Log.Error("get activity failed", zap.String("activity_id", id.Hex()), zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "could not load activity")
		return
	}
	httpjson.Write(w, http.StatusOK, activity)
}

// HandleCreate handles POST /activities. The signed-in teacher becomes
// the owner and gets the activity added to their back-reference list.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	teacherID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	var req activityRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		httpjson.Error(w, http.StatusBadRequest, "title is required")
		return
	}

	ctx, cancel := timeouts.WithShort(r.Context())
	defer cancel()

	activity, err := h.Activities.Create(ctx, models.Activity{
		Title:       req.Title,
		Description: htmlsanitize.Sanitize(req.Description),
		TeacherID:   teacherID,
	})
	if err != nil {
		h.Log.Error("create activity failed", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "failed to create a new activity")
		return
	}

	if err := h.Users.AddActivityRef(ctx, []primitive.ObjectID{teacherID}, activity.ID); err != nil {
		h.Log.Warn("linking activity on teacher failed",
			zap.String("activity_id", activity.ID.Hex()),
			zap.String("teacher_id", teacherID.Hex()),
			zap.Error(err))
	}

	httpjson.Write(w, http.StatusOK, createActivityResponse{
		Message:  fmt.Sprintf("successfully created a new activity with id %s", activity.ID.Hex()),
		Activity: activity,
	})
}

// HandleUpdate handles PUT /activities/{id}.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req activityRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ctx, cancel := timeouts.WithShort(r.Context())
	defer cancel()

	matched, err := h.Activities.UpdateInfo(ctx, id, req.Title, htmlsanitize.Sanitize(req.Description))
	if err != nil {
		h.Log.Error("update activity failed", zap.String("activity_id", id.Hex()), zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "could not update activity")
		return
	}
	if matched == 0 {
		httpjson.Error(w, http.StatusNotFound, fmt.Sprintf("activity with id %s does not exist", id.Hex()))
		return
	}
	httpjson.Write(w, http.StatusAccepted, messageResponse{
		Message: fmt.Sprintf("successfully updated activity with id %s", id.Hex()),
	})
}

// HandleDelete handles DELETE /activities/{id}. Enrolled students and
// the owning teacher are unlinked, and the activity's groups are
// cascade-deleted one by one.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	ctx, cancel := timeouts.WithLong(r.Context())
	defer cancel()

	if _, err := h.Engine.DeleteActivity(ctx, id); err != nil {
		if teams.IsNotFound(err) {
			httpjson.Error(w, http.StatusNotFound, fmt.Sprintf("activity with id %s does not exist", id.Hex()))
			return
		}
		h.Log.Error("delete activity failed", zap.String("activity_id", id.Hex()), zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "could not delete activity")
		return
	}
	httpjson.Write(w, http.StatusOK, messageResponse{
		Message: fmt.Sprintf("successfully removed activity with id %s", id.Hex()),
	})
}

// HandleCreateAlgorithm handles POST /activities/{id}/create-algorithm.
//
// The request body is passed through to the external grouping process
// verbatim. The response is immediate; completion is observed through
// the activity's algorithm_status and the teacher's notifications.
func (h *Handler) HandleCreateAlgorithm(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil || len(body) == 0 || !json.Valid(body) {
		httpjson.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ctx, cancel := timeouts.WithShort(r.Context())
	defer cancel()

	if err := h.Dispatcher.Submit(ctx, id, json.RawMessage(body)); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			httpjson.Error(w, http.StatusNotFound, fmt.Sprintf("activity with id %s does not exist", id.Hex()))
			return
		}
		h.Log.Error("submit algorithm job failed", zap.String("activity_id", id.Hex()), zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "could not start algorithm task")
		return
	}
	httpjson.Write(w, http.StatusOK, messageResponse{Message: "task started in the background"})
}

// HandleSendQuestionnaireRemaining handles
// POST /activities/{id}/send-questionnaire-remaining/{questionnaireID}:
// a reminder email to every enrolled student without a stored result
// for the questionnaire.
func (h *Handler) HandleSendQuestionnaireRemaining(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	questionnaireID, ok := pathID(w, r, "questionnaireID")
	if !ok {
		return
	}

	ctx, cancel := timeouts.WithMedium(r.Context())
	defer cancel()

	activity, err := h.Activities.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			httpjson.Error(w, http.StatusNotFound, fmt.Sprintf("activity with id %s does not exist", id.Hex()))
			return
		}
		h.Log.Error("get activity failed", zap.String("activity_id", id.Hex()), zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "could not load activity")
		return
	}

	title := "pending questionnaire"
	if q, err := h.Questionnaires.GetByID(ctx, questionnaireID); err == nil {
		title = q.Title
	}

	remaining, err := h.Users.FindUnanswered(ctx, activity.Students, questionnaireID)
	if err != nil {
		h.Log.Error("find unanswered students failed",
			zap.String("activity_id", id.Hex()),
			zap.String("questionnaire_id", questionnaireID.Hex()),
			zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "could not resolve remaining students")
		return
	}

	for _, student := range remaining {
		email := mailer.BuildQuestionnaireReminderEmail(mailer.ReminderEmailData{
			QuestionnaireTitle: title,
			QuestionnaireLink:  fmt.Sprintf("%s/questionnaire/%s", h.BaseURL, questionnaireID.Hex()),
		})
		email.To = student.Email
		if err := h.Mail.Send(email); err != nil {
			h.Log.Warn("questionnaire reminder email failed",
				zap.String("student_id", student.ID.Hex()), zap.Error(err))
		}
	}

	httpjson.Write(w, http.StatusOK, messageResponse{Message: "mails sent successfully"})
}

// pathID parses an ObjectID URL parameter, writing a 400 on failure.
func pathID(w http.ResponseWriter, r *http.Request, name string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, name))
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, "bad "+name)
		return primitive.NilObjectID, false
	}
	return id, true
}

// currentUserID resolves the signed-in user's id from the session.
func currentUserID(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	u, ok := auth.CurrentUser(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "unauthorized")
		return primitive.NilObjectID, false
	}
	id, err := primitive.ObjectIDFromHex(u.ID)
	if err != nil {
		httpjson.Error(w, http.StatusUnauthorized, "unauthorized")
		return primitive.NilObjectID, false
	}
	return id, true
}
