// internal/app/features/questionnaires/types.go
package questionnaires

import "github.com/teamlens/teamlens/internal/domain/models"

// questionnaireRequest is the body of POST /questionnaires and PUT
// /questionnaires/{id}.
type questionnaireRequest struct {
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Questions   []models.Question `json:"questions"`
}

// createQuestionnaireResponse returns the created document.
type createQuestionnaireResponse struct {
	Message       string               `json:"message"`
	Questionnaire models.Questionnaire `json:"questionnaire"`
}

// messageResponse is the generic acknowledgement envelope.
type messageResponse struct {
	Message string `json:"message"`
}
