// internal/app/teams/engine.go
package teams

import (
	"context"
	"errors"

	activitystore "github.com/teamlens/teamlens/internal/app/store/activities"
	groupstore "github.com/teamlens/teamlens/internal/app/store/groups"
	userstore "github.com/teamlens/teamlens/internal/app/store/users"
	"github.com/teamlens/teamlens/internal/app/system/notify"
	"github.com/teamlens/teamlens/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Engine applies group-membership mutations while keeping the
// activity roster, the group member sets, and the user back-references
// mutually consistent.
//
// The underlying store has no multi-document transactions, so the
// multi-step procedures here are not atomic: each one orders its
// writes so the authoritative document commits first, and runs
// compensating rollbacks when a later step fails. Two concurrent
// CreateGroup calls on the same activity can still both pass the
// free-student check before either commits; that narrow race is a
// known property of the design, not eliminated here.
type Engine struct {
	activities *activitystore.Store
	groups     *groupstore.Store
	users      *userstore.Store
	notifier   *notify.Notifier
	log        *zap.Logger
}

func NewEngine(db *mongo.Database, notifier *notify.Notifier, logger *zap.Logger) *Engine {
	return &Engine{
		activities: activitystore.New(db),
		groups:     groupstore.New(db),
		users:      userstore.New(db),
		notifier:   notifier,
		log:        logger,
	}
}

// GroupInput is a proposed group roster.
type GroupInput struct {
	Name     string
	Students []primitive.ObjectID
}

// CreateGroup validates and persists a new group under an activity.
//
// Every requested student that resolves to an account must already be
// enrolled in the activity, or the whole call fails. Students already
// claimed by another group of the activity are narrowed out silently;
// if nobody is left the call fails, since a group may never be created
// empty. The persisted roster is the free subset, not the requested one.
func (e *Engine) CreateGroup(ctx context.Context, activityID primitive.ObjectID, input GroupInput) (models.GroupWithMembers, error) {
	activity, err := e.activities.GetByID(ctx, activityID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.GroupWithMembers{}, &NotFoundError{Resource: "activity", ID: activityID.Hex()}
		}
		return models.GroupWithMembers{}, err
	}

	enrolled, err := e.resolveEnrolled(ctx, activity.Students, input.Students)
	if err != nil {
		return models.GroupWithMembers{}, err
	}
	if len(enrolled) != len(input.Students) {
		return models.GroupWithMembers{}, &ValidationError{Msg: "some students do not belong to the activity"}
	}

	existing, err := e.groups.FindByIDs(ctx, activity.Groups)
	if err != nil {
		return models.GroupWithMembers{}, err
	}
	free := FreeStudents(enrolled, existing)
	if len(free) == 0 {
		return models.GroupWithMembers{}, &ValidationError{Msg: "all students are already in a group of the activity"}
	}

	group, err := e.groups.Create(ctx, models.Group{
		Name:       input.Name,
		ActivityID: activityID,
		Students:   free,
	})
	if err != nil {
		return models.GroupWithMembers{}, err
	}

	if err := e.activities.PushGroup(ctx, activityID, group.ID); err != nil {
		_, rbErr := e.groups.Delete(ctx, group.ID)
		if rbErr != nil {
			e.log.Error("rollback of group insert failed; manual reconciliation needed",
				zap.String("group_id", group.ID.Hex()), zap.Error(rbErr))
		}
		return models.GroupWithMembers{}, &IntegrityError{Op: "push group to activity", Err: err, Rollback: rbErr}
	}

	if err := e.users.AddGroupRef(ctx, free, group.ID); err != nil {
		rbErr := e.rollbackCreate(ctx, activityID, group.ID, free)
		return models.GroupWithMembers{}, &IntegrityError{Op: "add group back-references", Err: err, Rollback: rbErr}
	}

	e.notifier.SendAll(ctx, free, notify.GroupAdded(activityID, group.ID))

	return e.groups.GetWithMembers(ctx, group.ID)
}

// rollbackCreate undoes the forward steps of CreateGroup in reverse
// order: back-references, activity group list, group document.
func (e *Engine) rollbackCreate(ctx context.Context, activityID, groupID primitive.ObjectID, members []primitive.ObjectID) error {
	var failed error
	if err := e.users.RemoveGroupRef(ctx, members, groupID); err != nil {
		failed = err
	}
	if err := e.activities.PullGroup(ctx, activityID, groupID); err != nil && failed == nil {
		failed = err
	}
	if _, err := e.groups.Delete(ctx, groupID); err != nil && failed == nil {
		failed = err
	}
	if failed != nil {
		e.log.Error("compensating rollback of group creation failed; manual reconciliation needed",
			zap.String("group_id", groupID.Hex()),
			zap.String("activity_id", activityID.Hex()),
			zap.Error(failed))
	}
	return failed
}

// AddResult is the outcome of AddStudents.
type AddResult struct {
	Group        models.GroupWithMembers
	AddedMembers []models.MemberProfile
}

// AddStudents adds the named students to an existing group.
//
// Unlike CreateGroup, this is a hard-fail operation: any requested
// student not enrolled in the group's activity, or already a member of
// this group, rejects the whole call. It does not check other groups
// of the activity, so a student already placed elsewhere can end up
// double-booked; that asymmetry is deliberate, matching the observed
// behavior of the system this replaces.
func (e *Engine) AddStudents(ctx context.Context, groupID primitive.ObjectID, studentIDs []primitive.ObjectID) (AddResult, error) {
	group, err := e.groups.GetByID(ctx, groupID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return AddResult{}, &NotFoundError{Resource: "group", ID: groupID.Hex()}
		}
		return AddResult{}, err
	}

	activity, err := e.activities.GetByID(ctx, group.ActivityID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return AddResult{}, &NotFoundError{Resource: "activity", ID: group.ActivityID.Hex()}
		}
		return AddResult{}, err
	}

	enrolled, err := e.resolveEnrolled(ctx, activity.Students, studentIDs)
	if err != nil {
		return AddResult{}, err
	}
	if len(enrolled) != len(studentIDs) {
		return AddResult{}, &ValidationError{Msg: "some students do not belong to the activity"}
	}

	members := make(map[primitive.ObjectID]struct{}, len(group.Students))
	for _, s := range group.Students {
		members[s] = struct{}{}
	}
	for _, s := range studentIDs {
		if _, ok := members[s]; ok {
			return AddResult{}, &ValidationError{Msg: "some students are already in the group"}
		}
	}

	// Authoritative mutation first; back-references only on success.
	if err := e.groups.PushStudents(ctx, groupID, enrolled); err != nil {
		return AddResult{}, err
	}
	if err := e.users.AddGroupRef(ctx, enrolled, groupID); err != nil {
		var rbErr error
		for _, s := range enrolled {
			if _, pullErr := e.groups.PullStudent(ctx, groupID, s); pullErr != nil && rbErr == nil {
				rbErr = pullErr
			}
		}
		return AddResult{}, &IntegrityError{Op: "add group back-references", Err: err, Rollback: rbErr}
	}

	e.notifier.SendAll(ctx, enrolled, notify.GroupAdded(group.ActivityID, groupID))

	resolved, err := e.groups.GetWithMembers(ctx, groupID)
	if err != nil {
		return AddResult{}, err
	}

	added := make([]models.MemberProfile, 0, len(enrolled))
	for _, m := range resolved.Students {
		for _, id := range enrolled {
			if m.ID == id {
				added = append(added, m)
				break
			}
		}
	}
	return AddResult{Group: resolved, AddedMembers: added}, nil
}

// RemoveStudent takes one student out of a group, updating both sides
// of the membership edge.
func (e *Engine) RemoveStudent(ctx context.Context, groupID, studentID primitive.ObjectID) error {
	modified, err := e.groups.PullStudent(ctx, groupID, studentID)
	if err != nil {
		return err
	}
	if modified == 0 {
		return &NotFoundError{Resource: "group member", ID: studentID.Hex()}
	}
	if err := e.users.RemoveGroupRef(ctx, []primitive.ObjectID{studentID}, groupID); err != nil {
		return &IntegrityError{Op: "remove group back-reference", Err: err}
	}
	return nil
}

// DeleteGroup removes a group and unlinks it from its activity and
// every member's back-reference list. Returns the number of documents
// deleted (always 1 on success).
func (e *Engine) DeleteGroup(ctx context.Context, groupID primitive.ObjectID) (int64, error) {
	group, err := e.groups.GetByID(ctx, groupID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return 0, &NotFoundError{Resource: "group", ID: groupID.Hex()}
		}
		return 0, err
	}

	deleted, err := e.groups.Delete(ctx, groupID)
	if err != nil {
		return 0, err
	}
	if deleted == 0 {
		// Raced with a concurrent delete.
		return 0, &NotFoundError{Resource: "group", ID: groupID.Hex()}
	}

	if err := e.users.RemoveGroupRef(ctx, group.Students, groupID); err != nil {
		return deleted, &IntegrityError{Op: "remove group back-references", Err: err}
	}
	if err := e.activities.PullGroup(ctx, group.ActivityID, groupID); err != nil {
		return deleted, &IntegrityError{Op: "unlink group from activity", Err: err}
	}
	return deleted, nil
}

// DeleteActivity removes an activity, unlinks every enrolled student
// and the owning teacher, and deletes the activity's groups one by
// one. The group cascade is best-effort: a failure deleting one group
// is logged and does not abort cleanup of the rest.
func (e *Engine) DeleteActivity(ctx context.Context, activityID primitive.ObjectID) (int64, error) {
	activity, err := e.activities.GetByID(ctx, activityID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return 0, &NotFoundError{Resource: "activity", ID: activityID.Hex()}
		}
		return 0, err
	}

	deleted, err := e.activities.Delete(ctx, activityID)
	if err != nil {
		return 0, err
	}
	if deleted == 0 {
		return 0, &NotFoundError{Resource: "activity", ID: activityID.Hex()}
	}

	if err := e.users.RemoveActivityRef(ctx, activity.Students, activityID); err != nil {
		e.log.Warn("unlinking students from deleted activity failed",
			zap.String("activity_id", activityID.Hex()), zap.Error(err))
	}
	if err := e.users.RemoveActivityRef(ctx, []primitive.ObjectID{activity.TeacherID}, activityID); err != nil {
		e.log.Warn("unlinking teacher from deleted activity failed",
			zap.String("activity_id", activityID.Hex()), zap.Error(err))
	}

	// Sequential on purpose, to bound contention on the users collection.
	for _, groupID := range activity.Groups {
		if _, err := e.DeleteGroup(ctx, groupID); err != nil {
			e.log.Warn("cascade delete of group failed",
				zap.String("activity_id", activityID.Hex()),
				zap.String("group_id", groupID.Hex()),
				zap.Error(err))
		}
	}
	return deleted, nil
}

// resolveEnrolled resolves requested ids against the user directory
// and keeps those present in the activity's authoritative roster.
// Unresolvable ids are dropped here, not errored; callers compare the
// result length against the request to decide.
func (e *Engine) resolveEnrolled(ctx context.Context, roster, requested []primitive.ObjectID) ([]primitive.ObjectID, error) {
	resolved, err := e.users.FindByIDs(ctx, requested)
	if err != nil {
		return nil, err
	}

	enrolledSet := make(map[primitive.ObjectID]struct{}, len(roster))
	for _, s := range roster {
		enrolledSet[s] = struct{}{}
	}

	enrolled := make([]primitive.ObjectID, 0, len(resolved))
	for _, u := range resolved {
		if _, ok := enrolledSet[u.ID]; ok {
			enrolled = append(enrolled, u.ID)
		}
	}
	return enrolled, nil
}
