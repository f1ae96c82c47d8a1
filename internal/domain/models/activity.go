// internal/domain/models/activity.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Algorithm run states reflected on an activity. There is no failed
// terminal state: a crashed worker leaves the activity in
// AlgorithmRunning until an operator intervenes.
const (
	AlgorithmNone    = "none"
	AlgorithmRunning = "running"
	AlgorithmDone    = "done"
)

// Activity is a teacher-owned unit of coursework with an enrolled
// student roster and an ordered list of groups.
//
// Students is the authoritative enrolment set (unique, unordered).
// Groups preserves creation order. Both are mirrored by back-references
// on the user documents.
type Activity struct {
	ID          primitive.ObjectID `bson:"_id" json:"id"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description" json:"description"`
	TeacherID   primitive.ObjectID `bson:"teacher_id" json:"teacher_id"`

	Students []primitive.ObjectID `bson:"students,omitempty" json:"students,omitempty"`
	Groups   []primitive.ObjectID `bson:"groups,omitempty" json:"groups,omitempty"`

	AlgorithmStatus string `bson:"algorithm_status,omitempty" json:"algorithm_status,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
