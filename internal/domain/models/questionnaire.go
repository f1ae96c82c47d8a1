// internal/domain/models/questionnaire.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Question types supported by the questionnaire editor.
const (
	QuestionMultipleChoice = "MultipleChoice"
	QuestionOpenText       = "OpenText"
	QuestionRating         = "Rating"
)

// Questionnaire is a psychometric questionnaire (e.g. the BELBIN role
// test) administered to students; results feed the grouping algorithm.
type Questionnaire struct {
	ID          primitive.ObjectID `bson:"_id" json:"id"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description" json:"description"`
	Questions   []Question         `bson:"questions" json:"questions"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// Question is a single questionnaire item.
type Question struct {
	Question string   `bson:"question" json:"question"`
	Type     string   `bson:"type" json:"type"`
	Options  []string `bson:"options,omitempty" json:"options,omitempty"`
}
