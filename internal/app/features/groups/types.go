// internal/app/features/groups/types.go
package groups

import "github.com/teamlens/teamlens/internal/domain/models"

// createGroupRequest is the body of POST
// /activities/{activityID}/groups.
type createGroupRequest struct {
	Name     string   `json:"name"`
	Students []string `json:"students"`
}

// renameGroupRequest is the body of PUT .../groups/{id}. A students
// field in the request is ignored; membership only changes through the
// students subrouter.
type renameGroupRequest struct {
	Name string `json:"name"`
}

// addStudentsRequest is the body of POST .../groups/{groupID}/students.
type addStudentsRequest struct {
	Students []string `json:"students"`
}

// createGroupResponse returns the created group with resolved members.
type createGroupResponse struct {
	Message string                  `json:"message"`
	Group   models.GroupWithMembers `json:"group"`
}

// messageResponse is the generic acknowledgement envelope.
type messageResponse struct {
	Message string `json:"message"`
}
