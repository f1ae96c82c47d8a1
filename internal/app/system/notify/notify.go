// internal/app/system/notify/notify.go
package notify

import (
	"context"
	"fmt"

	userstore "github.com/teamlens/teamlens/internal/app/store/users"
	"github.com/teamlens/teamlens/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Notifier appends structured notices to user documents. Delivery is
// best-effort: failures are logged and never surface to the business
// operation that triggered them.
type Notifier struct {
	users *userstore.Store
	log   *zap.Logger
}

func New(users *userstore.Store, logger *zap.Logger) *Notifier {
	return &Notifier{users: users, log: logger}
}

// Send appends one notification. Errors are logged, not returned.
func (n *Notifier) Send(ctx context.Context, userID primitive.ObjectID, notice models.Notification) {
	if err := n.users.AppendNotification(ctx, userID, notice); err != nil {
		n.log.Warn("notification append failed",
			zap.String("user_id", userID.Hex()),
			zap.String("title", notice.Title),
			zap.Error(err))
	}
}

// SendAll appends the same notification to every user in the list.
// Individual failures are collected and logged as one warning; the
// batch never fails the caller.
func (n *Notifier) SendAll(ctx context.Context, userIDs []primitive.ObjectID, notice models.Notification) {
	var failed []string
	for _, id := range userIDs {
		if err := n.users.AppendNotification(ctx, id, notice); err != nil {
			failed = append(failed, id.Hex())
			n.log.Debug("notification append failed", zap.String("user_id", id.Hex()), zap.Error(err))
		}
	}
	if len(failed) > 0 {
		n.log.Warn("notification batch partially failed",
			zap.String("title", notice.Title),
			zap.Strings("failed_user_ids", failed),
			zap.Int("total", len(userIDs)))
	}
}

// GroupAdded builds the notice sent to a student placed in a group.
func GroupAdded(activityID, groupID primitive.ObjectID) models.Notification {
	return models.Notification{
		Title:       "Group",
		Description: "You have been added to a new group!",
		Link:        fmt.Sprintf("/activities/%s/%s", activityID.Hex(), groupID.Hex()),
		Type:        models.NotificationGroup,
	}
}

// ActivityEnrolled builds the notice sent to a student enrolled in an activity.
func ActivityEnrolled(activity models.Activity) models.Notification {
	return models.Notification{
		Title:       "Activity",
		Description: fmt.Sprintf("You have been enrolled in %q", activity.Title),
		Link:        "/activities/" + activity.ID.Hex(),
		Type:        models.NotificationActivity,
	}
}

// AlgorithmFinished builds the notice sent to the owning teacher when a
// grouping-algorithm run completes.
func AlgorithmFinished(activity models.Activity) models.Notification {
	return models.Notification{
		Title:       "Grouping algorithm finished",
		Description: fmt.Sprintf("The grouping algorithm has finished for activity %q", activity.Title),
		Link:        "/activities/" + activity.ID.Hex(),
		Type:        models.NotificationActivity,
	}
}
