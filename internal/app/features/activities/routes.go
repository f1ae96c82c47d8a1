// internal/app/features/activities/routes.go
package activities

import (
	"github.com/go-chi/chi/v5"

	"github.com/teamlens/teamlens/internal/app/system/auth"
)

// Routes mounts the activity endpoints (typically under "/activities"
// from bootstrap). Reads are open to any signed-in user; everything
// that mutates is teacher-only. The groups feature mounts its own
// subrouter under /{activityID}/groups from bootstrap.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequireSignedIn)

	r.Get("/", h.ServeList)
	r.Get("/{id}", h.ServeActivity)

	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireTeacher)

		pr.Post("/", h.HandleCreate)
		pr.Put("/{id}", h.HandleUpdate)
		pr.Delete("/{id}", h.HandleDelete)

		pr.Post("/{id}/create-algorithm", h.HandleCreateAlgorithm)
		pr.Post("/{id}/send-questionnaire-remaining/{questionnaireID}", h.HandleSendQuestionnaireRemaining)
	})

	// Roster management.
	r.Route("/{activityID}/students", func(sr chi.Router) {
		sr.Get("/", h.ServeRoster)
		sr.Group(func(pr chi.Router) {
			pr.Use(auth.RequireTeacher)
			pr.Post("/", h.HandleEnrollStudents)
			pr.Delete("/{studentID}", h.HandleRemoveStudent)
		})
	})

	return r
}
