// internal/app/features/users/handler.go
package users

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	activitystore "github.com/teamlens/teamlens/internal/app/store/activities"
	groupstore "github.com/teamlens/teamlens/internal/app/store/groups"
	userstore "github.com/teamlens/teamlens/internal/app/store/users"
	"github.com/teamlens/teamlens/internal/app/system/auth"
	"github.com/teamlens/teamlens/internal/app/system/belbin"
	"github.com/teamlens/teamlens/internal/app/system/httpjson"
	"github.com/teamlens/teamlens/internal/app/system/timeouts"
	"github.com/teamlens/teamlens/internal/domain/models"
)

// Handler serves the user directory, questionnaire submissions, and
// the notification center of the signed-in user.
type Handler struct {
	Users      *userstore.Store
	Activities *activitystore.Store
	Groups     *groupstore.Store
	Log        *zap.Logger
}

func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{
		Users:      userstore.New(db),
		Activities: activitystore.New(db),
		Groups:     groupstore.New(db),
		Log:        logger,
	}
}

// ServeList handles GET /users.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithMedium(r.Context())
	defer cancel()

	users, err := h.Users.List(ctx)
	if err != nil {
		h.Log.Error("list users failed", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "could not list users")
		return
	}
	httpjson.Write(w, http.StatusOK, users)
}

// ServeUser handles GET /users/{id}.
func (h *Handler) ServeUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	ctx, cancel := timeouts.WithShort(r.Context())
	defer cancel()

	user, err := h.Users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			httpjson.Error(w, http.StatusNotFound, fmt.Sprintf("user with id %s does not exist", id.Hex()))
			return
		}
		h.Log.Error("get user failed", zap.String("user_id", id.Hex()), zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "could not load user")
		return
	}
	httpjson.Write(w, http.StatusOK, user)
}

// HandleUpdate handles PUT /users/{id}.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req updateUserRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ctx, cancel := timeouts.WithShort(r.Context())
	defer cancel()

	if err := h.Users.UpdateInfo(ctx, id, req.Name); err != nil {
		h.Log.Error("update user failed", zap.String("user_id", id.Hex()), zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "could not update user")
		return
	}
	httpjson.Write(w, http.StatusAccepted, messageResponse{
		Message: fmt.Sprintf("successfully updated user with id %s", id.Hex()),
	})
}

// HandleDelete handles DELETE /users/{id}.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	ctx, cancel := timeouts.WithShort(r.Context())
	defer cancel()

	deleted, err := h.Users.Delete(ctx, id)
	if err != nil {
		h.Log.Error("delete user failed", zap.String("user_id", id.Hex()), zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "could not delete user")
		return
	}
	if deleted == 0 {
		httpjson.Error(w, http.StatusNotFound, fmt.Sprintf("user with id %s does not exist", id.Hex()))
		return
	}
	httpjson.Write(w, http.StatusAccepted, messageResponse{
		Message: fmt.Sprintf("successfully removed user with id %s", id.Hex()),
	})
}

// ServeActivities handles GET /users/{id}/activities: the activities
// the user is linked to, resolved from the back-reference list.
func (h *Handler) ServeActivities(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	ctx, cancel := timeouts.WithMedium(r.Context())
	defer cancel()

	user, err := h.Users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			httpjson.Error(w, http.StatusNotFound, fmt.Sprintf("user with id %s does not exist", id.Hex()))
			return
		}
		h.Log.Error("get user failed", zap.String("user_id", id.Hex()), zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "could not load user")
		return
	}

	activities, err := h.Activities.FindByIDs(ctx, user.Activities)
	if err != nil {
		h.Log.Error("resolve user activities failed", zap.String("user_id", id.Hex()), zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "could not load activities")
		return
	}
	if activities == nil {
		activities = []models.Activity{}
	}
	httpjson.Write(w, http.StatusOK, activities)
}

// ServeGroups handles GET /users/{id}/groups.
func (h *Handler) ServeGroups(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	ctx, cancel := timeouts.WithMedium(r.Context())
	defer cancel()

	user, err := h.Users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			httpjson.Error(w, http.StatusNotFound, fmt.Sprintf("user with id %s does not exist", id.Hex()))
			return
		}
		h.Log.Error("get user failed", zap.String("user_id", id.Hex()), zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "could not load user")
		return
	}

	groups, err := h.Groups.FindByIDs(ctx, user.Groups)
	if err != nil {
		h.Log.Error("resolve user groups failed", zap.String("user_id", id.Hex()), zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "could not load groups")
		return
	}
	if groups == nil {
		groups = []models.Group{}
	}
	httpjson.Write(w, http.StatusOK, groups)
}

// ServeAskedQuestionnaires handles GET /users/{id}/asked-questionnaires.
func (h *Handler) ServeAskedQuestionnaires(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	ctx, cancel := timeouts.WithShort(r.Context())
	defer cancel()

	user, err := h.Users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			httpjson.Error(w, http.StatusNotFound, fmt.Sprintf("user with id %s does not exist", id.Hex()))
			return
		}
		h.Log.Error("get user failed", zap.String("user_id", id.Hex()), zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "could not load user")
		return
	}

	asked := user.AskedQuestionnaires
	if asked == nil {
		asked = []models.AskedQuestionnaire{}
	}
	httpjson.Write(w, http.StatusOK, asked)
}

// HandleSubmitQuestionnaire handles
// POST /users/{id}/send-questionnaire/{questionnaireID}.
//
// The answers are scored into a team role and the result is stored on
// the user, replacing any earlier result for the same questionnaire.
func (h *Handler) HandleSubmitQuestionnaire(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	questionnaireID, ok := pathID(w, r, "questionnaireID")
	if !ok {
		return
	}

	var req submitQuestionnaireRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := belbin.Score(req.Answers)
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := timeouts.WithShort(r.Context())
	defer cancel()

	if err := h.Users.UpsertQuestionnaireResult(ctx, userID, questionnaireID, result); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			httpjson.Error(w, http.StatusNotFound, fmt.Sprintf("user with id %s does not exist", userID.Hex()))
			return
		}
		h.Log.Error("store questionnaire result failed",
			zap.String("user_id", userID.Hex()),
			zap.String("questionnaire_id", questionnaireID.Hex()),
			zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "could not store questionnaire result")
		return
	}

	httpjson.Write(w, http.StatusOK, submitQuestionnaireResponse{
		Message: fmt.Sprintf("successfully updated user with id %s", userID.Hex()),
		Result:  result,
	})
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
