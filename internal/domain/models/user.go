// internal/domain/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Roles a user account can hold.
const (
	RoleTeacher = "teacher"
	RoleStudent = "student"
)

// User represents an account in the system (teacher or student).
//
// NOTE:
//   - Activities and Groups are denormalized back-references. The
//     authoritative membership lists live on the activity and group
//     documents; every mutating operation keeps both sides in lockstep.
//   - Temporary accounts are created when a teacher enrolls an email
//     address that has no account yet. They carry an InvitationToken
//     until the student completes registration.
type User struct {
	ID       primitive.ObjectID `bson:"_id" json:"id"`
	Email    string             `bson:"email" json:"email"`
	Name     string             `bson:"name" json:"name"`
	Password string             `bson:"password" json:"-"`
	Role     string             `bson:"role" json:"role"`

	Activities []primitive.ObjectID `bson:"activities,omitempty" json:"activities,omitempty"`
	Groups     []primitive.ObjectID `bson:"groups,omitempty" json:"groups,omitempty"`

	AskedQuestionnaires []AskedQuestionnaire `bson:"asked_questionnaires,omitempty" json:"asked_questionnaires,omitempty"`
	Notifications       []Notification       `bson:"notifications,omitempty" json:"notifications,omitempty"`

	ResetToken      string `bson:"reset_token,omitempty" json:"-"`
	InvitationToken string `bson:"invitation_token,omitempty" json:"-"`
	IsTemporary     bool   `bson:"is_temporary,omitempty" json:"is_temporary,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// AskedQuestionnaire records a completed questionnaire and its computed result.
type AskedQuestionnaire struct {
	Questionnaire primitive.ObjectID `bson:"questionnaire" json:"questionnaire"`
	Result        string             `bson:"result" json:"result"`
	CompletedAt   time.Time          `bson:"completed_at" json:"completed_at"`
}

// MemberProfile is the public projection of a user embedded in group
// responses. Credentials, back-references, and notifications are never
// exposed here.
type MemberProfile struct {
	ID    primitive.ObjectID `bson:"_id" json:"id"`
	Email string             `bson:"email" json:"email"`
	Name  string             `bson:"name" json:"name"`
	Role  string             `bson:"role" json:"role"`
}
