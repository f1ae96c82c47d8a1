// internal/app/features/groups/routes.go
package groups

import (
	"github.com/go-chi/chi/v5"

	"github.com/teamlens/teamlens/internal/app/system/auth"
)

// Routes mounts the group endpoints. Bootstrap mounts this under
// /activities/{activityID}/groups so every handler can resolve the
// parent activity from the URL. Reads are open to any signed-in user;
// mutations are teacher-only.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequireSignedIn)

	r.Get("/", h.ServeList)
	r.Get("/{id}", h.ServeGroup)

	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireTeacher)
		pr.Post("/", h.HandleCreate)
		pr.Put("/{id}", h.HandleRename)
		pr.Delete("/{id}", h.HandleDelete)
	})

	r.Route("/{groupID}/students", func(sr chi.Router) {
		sr.Get("/", h.ServeMembers)
		sr.Group(func(pr chi.Router) {
			pr.Use(auth.RequireTeacher)
			pr.Post("/", h.HandleAddStudents)
			pr.Delete("/{studentID}", h.HandleRemoveStudent)
		})
	})

	return r
}
