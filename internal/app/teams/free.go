// internal/app/teams/free.go
package teams

import (
	"github.com/teamlens/teamlens/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FreeStudents computes which candidates are not yet claimed by any of
// the given groups: candidates minus the union of all group member
// sets. The result preserves candidate order and is independent of
// group enumeration order. Pure; no side effects.
func FreeStudents(candidates []primitive.ObjectID, groups []models.Group) []primitive.ObjectID {
	claimed := make(map[primitive.ObjectID]struct{})
	for _, g := range groups {
		for _, s := range g.Students {
			claimed[s] = struct{}{}
		}
	}

	free := make([]primitive.ObjectID, 0, len(candidates))
	for _, c := range candidates {
		if _, ok := claimed[c]; !ok {
			free = append(free, c)
		}
	}
	return free
}
