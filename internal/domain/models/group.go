// internal/domain/models/group.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Group is a subset of an activity's students. Every member must be
// enrolled in the parent activity, and group creation keeps members
// exclusive across the activity's groups (see teams.Engine).
type Group struct {
	ID         primitive.ObjectID `bson:"_id" json:"id"`
	Name       string             `bson:"name" json:"name"`
	ActivityID primitive.ObjectID `bson:"activity_id" json:"activity_id"`

	Students []primitive.ObjectID `bson:"students" json:"students"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// GroupWithMembers is a group with its member list resolved to public
// profiles, returned by creation and listing endpoints for immediate
// UI consumption.
type GroupWithMembers struct {
	ID         primitive.ObjectID `bson:"_id" json:"id"`
	Name       string             `bson:"name" json:"name"`
	ActivityID primitive.ObjectID `bson:"activity_id" json:"activity_id"`
	Students   []MemberProfile    `bson:"students" json:"students"`
	CreatedAt  time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt  time.Time          `bson:"updated_at" json:"updated_at"`
}
