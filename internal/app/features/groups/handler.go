// internal/app/features/groups/handler.go
package groups

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
	"github.com/teamlens/teamlens/internal/app/system/httpjson"
	"github.com/teamlens/teamlens/internal/app/system/timeouts"
	"github.com/teamlens/teamlens/internal/app/teams"
	"github.com/teamlens/teamlens/internal/domain/models"
)

// Handler serves group endpoints. All membership mutations go through
// the engine so both sides of every membership edge stay consistent.
type Handler struct {
	Activities *activitystore.Store
	Groups     *groupstore.Store
	Engine     *teams.Engine
	Log        *zap.Logger
}

func NewHandler(db *mongo.Database, engine *teams.Engine, logger *zap.Logger) *Handler {
	return &Handler{
		Activities: activitystore.New(db),
		Groups:     groupstore.New(db),
		Engine:     engine,
		Log:        logger,
	}
}

// ServeList handles GET /activities/{activityID}/groups: the
// activity's groups in creation order, members resolved to public
// profiles.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	activityID, ok := pathID(w, r, "activityID")
	if !ok {
		return
	}

	ctx, cancel := timeouts.WithMedium(r.Context())
	defer cancel()

	activity, err := h.Activities.GetByID(ctx, activityID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			httpjson.Error(w, http.StatusNotFound, fmt.Sprintf("activity with id %s does not exist", activityID.Hex()))
			return
		}
		h.Log.Error("get activity failed", zap.String("activity_id", activityID.Hex()), zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "could not load activity")
		return
	}

	resolved, err := h.Groups.FindWithMembers(ctx, activity.Groups)
	if err != nil {
		h.Log.Error("resolve groups failed", zap.String("activity_id", activityID.Hex()), zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "could not load groups")
		return
	}

	// Aggregation output is unordered; restore creation order.
	byID := make(map[primitive.ObjectID]models.GroupWithMembers, len(resolved))
	for _, g := range resolved {
		byID[g.ID] = g
	}
	ordered := make([]models.GroupWithMembers, 0, len(resolved))
	for _, id := range activity.Groups {
		if g, ok := byID[id]; ok {
			ordered = append(ordered, g)
		}
	}
	httpjson.Write(w, http.StatusOK, ordered)
}

// ServeGroup handles GET .../groups/{id}.
func (h *Handler) ServeGroup(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	ctx, cancel := timeouts.WithShort(r.Context())
	defer cancel()

	group, err := h.Groups.GetWithMembers(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			httpjson.Error(w, http.StatusNotFound, fmt.Sprintf("unable to find matching document with id: %s", id.Hex()))
			return
		}
		h.Log.Error("get group failed", zap.String("group_id", id.Hex()), zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "could not load group")
		return
	}
	httpjson.Write(w, http.StatusOK, group)
}

// HandleCreate handles POST /activities/{activityID}/groups.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	activityID, ok := pathID(w, r, "activityID")
	if !ok {
		return
	}

	var req createGroupRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	students, err := parseIDs(req.Students)
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := timeouts.WithLong(r.Context())
	defer cancel()

	group, err := h.Engine.CreateGroup(ctx, activityID, teams.GroupInput{
		Name:     req.Name,
		Students: students,
	})
	if err != nil {
		h.writeEngineError(w, "create group", err)
		return
	}

	httpjson.Write(w, http.StatusCreated, createGroupResponse{
		Message: fmt.Sprintf("successfully created a new group with id %s", group.ID.Hex()),
		Group:   group,
	})
}

// HandleRename handles PUT .../groups/{id}.
func (h *Handler) HandleRename(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req renameGroupRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ctx, cancel := timeouts.WithShort(r.Context())
	defer cancel()

	matched, err := h.Groups.Rename(ctx, id, req.Name)
	if err != nil {
		h.Log.Error("rename group failed", zap.String("group_id", id.Hex()), zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "could not update group")
		return
	}
	if matched == 0 {
		httpjson.Error(w, http.StatusNotFound, fmt.Sprintf("group with id %s does not exist", id.Hex()))
		return
	}
	httpjson.Write(w, http.StatusOK, messageResponse{
		Message: fmt.Sprintf("successfully updated group with id %s", id.Hex()),
	})
}

// HandleDelete handles DELETE .../groups/{id}.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	ctx, cancel := timeouts.WithLong(r.Context())
	defer cancel()

	if _, err := h.Engine.DeleteGroup(ctx, id); err != nil {
		h.writeEngineError(w, "delete group", err)
		return
	}
	httpjson.Write(w, http.StatusAccepted, messageResponse{
		Message: fmt.Sprintf("successfully removed group with id %s", id.Hex()),
	})
}

// ServeMembers handles GET .../groups/{groupID}/students.
func (h *Handler) ServeMembers(w http.ResponseWriter, r *http.Request) {
	groupID, ok := pathID(w, r, "groupID")
	if !ok {
		return
	}

	ctx, cancel := timeouts.WithShort(r.Context())
	defer cancel()

	group, err := h.Groups.GetByID(ctx, groupID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			httpjson.Error(w, http.StatusNotFound, fmt.Sprintf("group with id %s does not exist", groupID.Hex()))
			return
		}
		h.Log.Error("get group failed", zap.String("group_id", groupID.Hex()), zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "could not load group")
		return
	}

	students := group.Students
	if students == nil {
		students = []primitive.ObjectID{}
	}
	httpjson.Write(w, http.StatusOK, students)
}

// HandleAddStudents handles POST .../groups/{groupID}/students.
func (h *Handler) HandleAddStudents(w http.ResponseWriter, r *http.Request) {
	groupID, ok := pathID(w, r, "groupID")
	if !ok {
		return
	}

	var req addStudentsRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	students, err := parseIDs(req.Students)
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(students) == 0 {
		httpjson.Error(w, http.StatusBadRequest, "students is required")
		return
	}

	ctx, cancel := timeouts.WithLong(r.Context())
	defer cancel()

	if _, err := h.Engine.AddStudents(ctx, groupID, students); err != nil {
		h.writeEngineError(w, "add students to group", err)
		return
	}
	httpjson.Write(w, http.StatusAccepted, messageResponse{
		Message: fmt.Sprintf("successfully added students in group with id %s", groupID.Hex()),
	})
}

// HandleRemoveStudent handles DELETE .../groups/{groupID}/students/{studentID}.
func (h *Handler) HandleRemoveStudent(w http.ResponseWriter, r *http.Request) {
	groupID, ok := pathID(w, r, "groupID")
	if !ok {
		return
	}
	studentID, ok := pathID(w, r, "studentID")
	if !ok {
		return
	}

	ctx, cancel := timeouts.WithShort(r.Context())
	defer cancel()

	if err := h.Engine.RemoveStudent(ctx, groupID, studentID); err != nil {
		h.writeEngineError(w, "remove student from group", err)
		return
	}
	httpjson.Write(w, http.StatusAccepted, messageResponse{
		Message: fmt.Sprintf("successfully removed student with id %s", studentID.Hex()),
	})
}

// writeEngineError maps engine error kinds onto HTTP statuses.
func (h *Handler) writeEngineError(w http.ResponseWriter, op string, err error) {
	switch {
	case teams.IsNotFound(err):
		httpjson.Error(w, http.StatusNotFound, err.Error())
	case teams.IsValidation(err):
		httpjson.Error(w, http.StatusBadRequest, err.Error())
	default:
		h.Log.Error(op+" failed", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, op+" failed")
	}
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

func parseIDs(in []string) ([]primitive.ObjectID, error) {
	ids := make([]primitive.ObjectID, 0, len(in))
	for _, s := range in {
		id, err := primitive.ObjectIDFromHex(s)
		if err != nil {
			return nil, fmt.Errorf("bad student id %q", s)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
