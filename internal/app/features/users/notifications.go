// internal/app/features/users/notifications.go
package users

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/teamlens/teamlens/internal/app/system/httpjson"
	"github.com/teamlens/teamlens/internal/app/system/timeouts"
	"github.com/teamlens/teamlens/internal/domain/models"
)

// ServeNotifications handles GET /users/notifications for the
// signed-in user. Supports ?page, ?limit, ?type, ?status (read|unread),
// and ?search over title and description. Newest first.
func (h *Handler) ServeNotifications(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	page := queryInt(r, "page", 1)
	limit := queryInt(r, "limit", 10)
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	ctx, cancel := timeouts.WithShort(r.Context())
	defer cancel()

	user, err := h.Users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			httpjson.Error(w, http.StatusNotFound, fmt.Sprintf("user with id %s does not exist", userID.Hex()))
			return
		}
		h.Log.Error("load notifications failed", zap.String("user_id", userID.Hex()), zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "could not load notifications")
		return
	}

	notifications := filterNotifications(user.Notifications,
		r.URL.Query().Get("type"),
		r.URL.Query().Get("status"),
		r.URL.Query().Get("search"))

	sort.SliceStable(notifications, func(i, j int) bool {
		return notifications[i].CreatedAt.After(notifications[j].CreatedAt)
	})

	total := len(notifications)
	skip := (page - 1) * limit
	if skip > total {
		skip = total
	}
	end := skip + limit
	if end > total {
		end = total
	}

	pages := (total + limit - 1) / limit
	httpjson.Write(w, http.StatusOK, notificationListResponse{
		Notifications: notifications[skip:end],
		Pagination: notificationPagination{
			Page:  page,
			Limit: limit,
			Total: total,
			Pages: pages,
		},
		HasMore: end < total,
	})
}

// ServeNotificationStats handles GET /users/notifications/stats.
func (h *Handler) ServeNotificationStats(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	ctx, cancel := timeouts.WithShort(r.Context())
	defer cancel()

	user, err := h.Users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			httpjson.Error(w, http.StatusNotFound, fmt.Sprintf("user with id %s does not exist", userID.Hex()))
			return
		}
		h.Log.Error("load notifications failed", zap.String("user_id", userID.Hex()), zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "could not load notifications")
		return
	}

	stats := notificationStats{
		Total: len(user.Notifications),
		ByType: map[string]int{
			models.NotificationActivity: 0,
			models.NotificationGroup:    0,
			models.NotificationSystem:   0,
		},
	}
	for _, n := range user.Notifications {
		if n.Read {
			stats.Read++
		} else {
			stats.Unread++
		}
		if _, known := stats.ByType[n.Type]; known {
			stats.ByType[n.Type]++
		}
	}

	httpjson.Write(w, http.StatusOK, stats)
}

// HandleMarkNotificationRead handles
// PATCH /users/notifications/{notificationID}/read.
func (h *Handler) HandleMarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	h.setNotificationRead(w, r, true)
}

// HandleMarkNotificationUnread handles
// PATCH /users/notifications/{notificationID}/unread.
func (h *Handler) HandleMarkNotificationUnread(w http.ResponseWriter, r *http.Request) {
	h.setNotificationRead(w, r, false)
}

func (h *Handler) setNotificationRead(w http.ResponseWriter, r *http.Request, read bool) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	notificationID, ok := pathID(w, r, "notificationID")
	if !ok {
		return
	}

	ctx, cancel := timeouts.WithShort(r.Context())
	defer cancel()

	matched, err := h.Users.SetNotificationRead(ctx, userID, notificationID, read)
	if err != nil {
		h.Log.Error("update notification failed",
			zap.String("user_id", userID.Hex()),
			zap.String("notification_id", notificationID.Hex()),
			zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "could not update notification")
		return
	}
	if matched == 0 {
		httpjson.Error(w, http.StatusNotFound, fmt.Sprintf("notification with id %s not found", notificationID.Hex()))
		return
	}

	state := "read"
	if !read {
		state = "unread"
	}
	httpjson.Write(w, http.StatusOK, messageResponse{
		Message: fmt.Sprintf("notification %s marked as %s", notificationID.Hex(), state),
	})
}

// HandleDeleteNotification handles
// DELETE /users/notifications/{notificationID}.
func (h *Handler) HandleDeleteNotification(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	notificationID, ok := pathID(w, r, "notificationID")
	if !ok {
		return
	}

	ctx, cancel := timeouts.WithShort(r.Context())
	defer cancel()

	removed, err := h.Users.DeleteNotification(ctx, userID, notificationID)
	if err != nil {
		h.Log.Error("delete notification failed",
			zap.String("user_id", userID.Hex()),
			zap.String("notification_id", notificationID.Hex()),
			zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "could not delete notification")
		return
	}
	if removed == 0 {
		httpjson.Error(w, http.StatusNotFound, fmt.Sprintf("notification with id %s not found", notificationID.Hex()))
		return
	}
	httpjson.Write(w, http.StatusOK, messageResponse{
		Message: fmt.Sprintf("notification %s deleted", notificationID.Hex()),
	})
}

// HandleClearNotifications handles POST /users/clear-notifications.
func (h *Handler) HandleClearNotifications(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	ctx, cancel := timeouts.WithShort(r.Context())
	defer cancel()

	if err := h.Users.ClearNotifications(ctx, userID); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			httpjson.Error(w, http.StatusNotFound, fmt.Sprintf("user with id %s does not exist", userID.Hex()))
			return
		}
		h.Log.Error("clear notifications failed", zap.String("user_id", userID.Hex()), zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "could not clear notifications")
		return
	}
	httpjson.Write(w, http.StatusOK, messageResponse{
		Message: fmt.Sprintf("successfully cleared all notifications for user %s", userID.Hex()),
	})
}

func filterNotifications(all []models.Notification, typeFilter, statusFilter, search string) []models.Notification {
	out := make([]models.Notification, 0, len(all))
	searchLower := strings.ToLower(search)
	for _, n := range all {
		if typeFilter != "" && typeFilter != "all" && n.Type != typeFilter {
			continue
		}
		if statusFilter == "unread" && n.Read {
			continue
		}
		if statusFilter == "read" && !n.Read {
			continue
		}
		if searchLower != "" &&
			!strings.Contains(strings.ToLower(n.Title), searchLower) &&
			!strings.Contains(strings.ToLower(n.Description), searchLower) {
			continue
		}
		out = append(out, n)
	}
	return out
}

func queryInt(r *http.Request, name string, fallback int) int {
	v := r.URL.Query().Get(name)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
