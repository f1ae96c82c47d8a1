// internal/app/features/questionnaires/handler.go
package questionnaires

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	questionnairestore "github.com/teamlens/teamlens/internal/app/store/questionnaires"
	"github.com/teamlens/teamlens/internal/app/system/htmlsanitize"
	"github.com/teamlens/teamlens/internal/app/system/httpjson"
	"github.com/teamlens/teamlens/internal/app/system/timeouts"
	"github.com/teamlens/teamlens/internal/domain/models"
)

// Handler serves questionnaire CRUD.
type Handler struct {
	Questionnaires *questionnairestore.Store
	Log            *zap.Logger
}

func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{
		Questionnaires: questionnairestore.New(db),
		Log:            logger,
	}
}

// ServeList handles GET /questionnaires.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithMedium(r.Context())
	defer cancel()

	questionnaires, err := h.Questionnaires.List(ctx)
	if err != nil {
		h.Log.Error("list questionnaires failed", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "could not list questionnaires")
		return
	}
	if questionnaires == nil {
		questionnaires = []models.Questionnaire{}
	}
	httpjson.Write(w, http.StatusOK, questionnaires)
}

// ServeQuestionnaire handles GET /questionnaires/{id}.
func (h *Handler) ServeQuestionnaire(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	ctx, cancel := timeouts.WithShort(r.Context())
	defer cancel()

	q, err := h.Questionnaires.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			httpjson.Error(w, http.StatusNotFound, fmt.Sprintf("unable to find matching document with id: %s", id.Hex()))
			return
		}
		h.Log.Error("get questionnaire failed", zap.String("questionnaire_id", id.Hex()), zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "could not load questionnaire")
		return
	}
	httpjson.Write(w, http.StatusOK, q)
}

// HandleCreate handles POST /questionnaires.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req questionnaireRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		httpjson.Error(w, http.StatusBadRequest, "title is required")
		return
	}
	if err := validateQuestions(req.Questions); err != nil {
		httpjson.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := timeouts.WithShort(r.Context())
	defer cancel()

	q, err := h.Questionnaires.Create(ctx, models.Questionnaire{
		Title:       req.Title,
		Description: htmlsanitize.Sanitize(req.Description),
		Questions:   req.Questions,
	})
	if err != nil {
		h.Log.Error("create questionnaire failed", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "failed to create a new questionnaire")
		return
	}
	httpjson.Write(w, http.StatusCreated, createQuestionnaireResponse{
		Message:       fmt.Sprintf("successfully created a new questionnaire with id %s", q.ID.Hex()),
		Questionnaire: q,
	})
}

// HandleUpdate handles PUT /questionnaires/{id}.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req questionnaireRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validateQuestions(req.Questions); err != nil {
		httpjson.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := timeouts.WithShort(r.Context())
	defer cancel()

	matched, err := h.Questionnaires.Update(ctx, id, req.Title, htmlsanitize.Sanitize(req.Description), req.Questions)
	if err != nil {
		h.Log.Error("update questionnaire failed", zap.String("questionnaire_id", id.Hex()), zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "could not update questionnaire")
		return
	}
	if matched == 0 {
		httpjson.Error(w, http.StatusNotFound, fmt.Sprintf("questionnaire with id %s does not exist", id.Hex()))
		return
	}
	httpjson.Write(w, http.StatusAccepted, messageResponse{
		Message: fmt.Sprintf("successfully updated questionnaire with id %s", id.Hex()),
	})
}

// HandleDelete handles DELETE /questionnaires/{id}.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	ctx, cancel := timeouts.WithShort(r.Context())
	defer cancel()

	deleted, err := h.Questionnaires.Delete(ctx, id)
	if err != nil {
		h.Log.Error("delete questionnaire failed", zap.String("questionnaire_id", id.Hex()), zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "could not delete questionnaire")
		return
	}
	if deleted == 0 {
		httpjson.Error(w, http.StatusNotFound, fmt.Sprintf("questionnaire with id %s does not exist", id.Hex()))
		return
	}
	httpjson.Write(w, http.StatusAccepted, messageResponse{
		Message: fmt.Sprintf("successfully removed questionnaire with id %s", id.Hex()),
	})
}

func validateQuestions(questions []models.Question) error {
	for i, q := range questions {
		switch q.Type {
		case models.QuestionMultipleChoice:
			if len(q.Options) == 0 {
				return fmt.Errorf("question %d: multiple-choice questions need options", i)
			}
		case models.QuestionOpenText, models.QuestionRating:
			// no options required
		default:
			return fmt.Errorf("question %d: unknown type %q", i, q.Type)
		}
	}
	return nil
}

func pathID(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, "bad id")
		return primitive.NilObjectID, false
	}
	return id, true
}
