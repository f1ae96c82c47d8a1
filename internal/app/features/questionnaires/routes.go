// internal/app/features/questionnaires/routes.go
package questionnaires

import (
	"github.com/go-chi/chi/v5"

	"github.com/teamlens/teamlens/internal/app/system/auth"
)

// Routes mounts the questionnaire endpoints (typically under
// "/questionnaires" from bootstrap). Reads are open to any signed-in
// user; the editor is teacher-only.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequireSignedIn)

	r.Get("/", h.ServeList)
	r.Get("/{id}", h.ServeQuestionnaire)

	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireTeacher)
		pr.Post("/", h.HandleCreate)
		pr.Put("/{id}", h.HandleUpdate)
		pr.Delete("/{id}", h.HandleDelete)
	})

	return r
}
