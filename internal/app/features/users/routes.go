// internal/app/features/users/routes.go
package users

import (
	"github.com/go-chi/chi/v5"

	"github.com/teamlens/teamlens/internal/app/system/auth"
)

// Routes mounts the user directory and notification endpoints
// (typically under "/users" from bootstrap). Everything requires a
// signed-in session.
//
// The fixed /notifications paths are registered before the /{id}
// wildcards so they never shadow each other.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequireSignedIn)

	// Notification center of the signed-in user.
	r.Get("/notifications", h.ServeNotifications)
	r.Get("/notifications/stats", h.ServeNotificationStats)
	r.Patch("/notifications/{notificationID}/read", h.HandleMarkNotificationRead)
	r.Patch("/notifications/{notificationID}/unread", h.HandleMarkNotificationUnread)
	r.Delete("/notifications/{notificationID}", h.HandleDeleteNotification)
	r.Post("/clear-notifications", h.HandleClearNotifications)

	// Directory.
	r.Get("/", h.ServeList)
	r.Get("/{id}", h.ServeUser)
	r.Put("/{id}", h.HandleUpdate)
	r.Delete("/{id}", h.HandleDelete)

	// Relations.
	r.Get("/{id}/activities", h.ServeActivities)
	r.Get("/{id}/groups", h.ServeGroups)
	r.Get("/{id}/asked-questionnaires", h.ServeAskedQuestionnaires)
	r.Post("/{id}/send-questionnaire/{questionnaireID}", h.HandleSubmitQuestionnaire)

	return r
}
