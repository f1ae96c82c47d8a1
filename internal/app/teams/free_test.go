package teams

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/teamlens/teamlens/internal/domain/models"
)

func ids(n int) []primitive.ObjectID {
	out := make([]primitive.ObjectID, n)
	for i := range out {
		out[i] = primitive.NewObjectID()
	}
	return out
}

func TestFreeStudents_NoGroups(t *testing.T) {
	candidates := ids(3)
	free := FreeStudents(candidates, nil)
	if len(free) != 3 {
		t.Fatalf("expected all 3 candidates free, got %d", len(free))
	}
	for i, c := range candidates {
		if free[i] != c {
			t.Errorf("free[%d] = %s, want %s", i, free[i].Hex(), c.Hex())
		}
	}
}

func TestFreeStudents_ClaimedAreExcluded(t *testing.T) {
	candidates := ids(4)
	groups := []models.Group{
		{Students: []primitive.ObjectID{candidates[1]}},
		{Students: []primitive.ObjectID{candidates[3]}},
	}

	free := FreeStudents(candidates, groups)
	if len(free) != 2 {
		t.Fatalf("expected 2 free students, got %d", len(free))
	}
	if free[0] != candidates[0] || free[1] != candidates[2] {
		t.Error("free set did not preserve candidate order")
	}
}

func TestFreeStudents_AllClaimed(t *testing.T) {
	candidates := ids(2)
	groups := []models.Group{{Students: candidates}}

	if free := FreeStudents(candidates, groups); len(free) != 0 {
		t.Errorf("expected no free students, got %d", len(free))
	}
}

func TestFreeStudents_EmptyCandidates(t *testing.T) {
	groups := []models.Group{{Students: ids(2)}}
	if free := FreeStudents(nil, groups); len(free) != 0 {
		t.Errorf("expected empty result, got %d", len(free))
	}
}

func TestFreeStudents_ClaimOutsideCandidates(t *testing.T) {
	candidates := ids(2)
	groups := []models.Group{{Students: ids(3)}}

	if free := FreeStudents(candidates, groups); len(free) != 2 {
		t.Errorf("claims outside the candidate set should not matter, got %d free", len(free))
	}
}
