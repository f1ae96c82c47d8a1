// internal/app/features/activities/types.go
package activities

import "github.com/teamlens/teamlens/internal/domain/models"

// activityRequest is the body of POST /activities and PUT
// /activities/{id}. Roster and group lists are never writable through
// these endpoints; only the membership operations touch them.
type activityRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// createActivityResponse returns the created document for immediate
// UI consumption.
type createActivityResponse struct {
	Message  string          `json:"message"`
	Activity models.Activity `json:"activity"`
}

// enrollStudentsRequest is the body of POST
// /activities/{activityID}/students. Students are addressed by email:
// unknown addresses get a temporary invited account.
type enrollStudentsRequest struct {
	Students []string `json:"students"`
}

// messageResponse is the generic acknowledgement envelope.
type messageResponse struct {
	Message string `json:"message"`
}
