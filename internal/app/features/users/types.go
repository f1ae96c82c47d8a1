// internal/app/features/users/types.go
package users

import (
	"github.com/teamlens/teamlens/internal/app/system/belbin"
	"github.com/teamlens/teamlens/internal/domain/models"
)

// updateUserRequest is the body of PUT /users/{id}. Only profile
// fields are writable; role, credentials, and back-references are not.
type updateUserRequest struct {
	Name string `json:"name"`
}

// submitQuestionnaireRequest is the body of
// POST /users/{id}/send-questionnaire/{questionnaireID}.
type submitQuestionnaireRequest struct {
	Answers []belbin.SectionAnswers `json:"answers"`
}

// submitQuestionnaireResponse reports the computed result.
type submitQuestionnaireResponse struct {
	Message string `json:"message"`
	Result  string `json:"result"`
}

// notificationListResponse is the paginated notification feed.
type notificationListResponse struct {
	Notifications []models.Notification  `json:"notifications"`
	Pagination    notificationPagination `json:"pagination"`
	HasMore       bool                   `json:"hasMore"`
}

type notificationPagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

// notificationStats summarizes the notification feed.
type notificationStats struct {
	Total  int            `json:"total"`
	Unread int            `json:"unread"`
	Read   int            `json:"read"`
	ByType map[string]int `json:"byType"`
}

// messageResponse is the generic acknowledgement envelope.
type messageResponse struct {
	Message string `json:"message"`
}
