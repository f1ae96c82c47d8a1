// internal/domain/models/notification.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Notification categories.
const (
	NotificationActivity = "activity"
	NotificationGroup    = "group"
	NotificationSystem   = "system"
)

// Notification is a structured notice appended to a user document.
// Delivery is best-effort: a failed append never fails the business
// operation that produced it.
type Notification struct {
	ID          primitive.ObjectID `bson:"_id" json:"id"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description" json:"description"`
	Link        string             `bson:"link,omitempty" json:"link,omitempty"`
	Type        string             `bson:"type,omitempty" json:"type,omitempty"`
	Read        bool               `bson:"read" json:"read"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
}
