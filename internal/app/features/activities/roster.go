// internal/app/features/activities/roster.go
package activities

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/teamlens/teamlens/internal/app/system/httpjson"
	"github.com/teamlens/teamlens/internal/app/system/mailer"
	"github.com/teamlens/teamlens/internal/app/system/notify"
	"github.com/teamlens/teamlens/internal/app/system/timeouts"
	"github.com/teamlens/teamlens/internal/domain/models"
)

// ServeRoster handles GET /activities/{activityID}/students.
func (h *Handler) ServeRoster(w http.ResponseWriter, r *http.Request) {
	activityID, ok := pathID(w, r, "activityID")
	if !ok {
		return
	}

	ctx, cancel := timeouts.WithShort(r.Context())
	defer cancel()

	activity, err := h.Activities.GetByID(ctx, activityID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			httpjson.Error(w, http.StatusNotFound, fmt.Sprintf("activity with id %s does not exist", activityID.Hex()))
			return
		}
		h.Log.Error("get activity failed", zap.String("activity_id", activityID.Hex()), zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "could not load activity")
		return
	}

	students := activity.Students
	if students == nil {
		students = []primitive.ObjectID{}
	}
	httpjson.Write(w, http.StatusOK, students)
}

// HandleEnrollStudents handles POST /activities/{activityID}/students.
//
// The body carries email addresses. Addresses with an existing account
// are enrolled directly; unknown addresses get a temporary account
// holding an invitation token and an emailed registration link. Both
// sides of the enrolment edge are updated, and every enrolled student
// is notified.
func (h *Handler) HandleEnrollStudents(w http.ResponseWriter, r *http.Request) {
	activityID, ok := pathID(w, r, "activityID")
	if !ok {
		return
	}

	var req enrollStudentsRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	emails := normalizeEmails(req.Students)
	if len(emails) == 0 {
		httpjson.Error(w, http.StatusBadRequest, "students is required")
		return
	}

	ctx, cancel := timeouts.WithLong(r.Context())
	defer cancel()

	activity, err := h.Activities.GetByID(ctx, activityID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			httpjson.Error(w, http.StatusNotFound, fmt.Sprintf("activity with id %s does not exist", activityID.Hex()))
			return
		}
		h.Log.Error("get activity failed", zap.String("activity_id", activityID.Hex()), zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "could not load activity")
		return
	}

	existing, err := h.Users.FindByEmails(ctx, emails)
	if err != nil {
		h.Log.Error("resolve students by email failed", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "could not resolve students")
		return
	}

	known := make(map[string]bool, len(existing))
	ids := make([]primitive.ObjectID, 0, len(emails))
	for _, u := range existing {
		known[u.Email] = true
		ids = append(ids, u.ID)
	}

	for _, email := range emails {
		if known[email] {
			continue
		}
		invited, err := h.inviteStudent(ctx, email)
		if err != nil {
			h.Log.Error("inviting student failed", zap.String("email", email), zap.Error(err))
			continue
		}
		ids = append(ids, invited.ID)
	}
	if len(ids) == 0 {
		httpjson.Error(w, http.StatusInternalServerError, "could not enroll any student")
		return
	}

	matched, err := h.Activities.AddStudents(ctx, activityID, ids)
	if err != nil {
		h.Log.Error("enroll students failed", zap.String("activity_id", activityID.Hex()), zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "could not update activity")
		return
	}
	if matched == 0 {
		httpjson.Error(w, http.StatusNotFound, fmt.Sprintf("activity with id %s does not exist", activityID.Hex()))
		return
	}
	if err := h.Users.AddActivityRef(ctx, ids, activityID); err != nil {
		h.Log.Error("back-referencing activity on students failed",
			zap.String("activity_id", activityID.Hex()), zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "could not update students")
		return
	}

	h.Notifier.SendAll(ctx, ids, notify.ActivityEnrolled(activity))

	httpjson.Write(w, http.StatusAccepted, messageResponse{
		Message: fmt.Sprintf("successfully updated activity with id %s", activityID.Hex()),
	})
}

// HandleRemoveStudent handles
// DELETE /activities/{activityID}/students/{studentID}.
func (h *Handler) HandleRemoveStudent(w http.ResponseWriter, r *http.Request) {
	activityID, ok := pathID(w, r, "activityID")
	if !ok {
		return
	}
	studentID, ok := pathID(w, r, "studentID")
	if !ok {
		return
	}

	ctx, cancel := timeouts.WithShort(r.Context())
	defer cancel()

	modified, err := h.Activities.PullStudent(ctx, activityID, studentID)
	if err != nil {
		h.Log.Error("remove student from activity failed",
			zap.String("activity_id", activityID.Hex()),
			zap.String("student_id", studentID.Hex()),
			zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "could not remove student")
		return
	}
	if modified == 0 {
		httpjson.Error(w, http.StatusNotFound, fmt.Sprintf("student with id %s does not exist", studentID.Hex()))
		return
	}
	if err := h.Users.RemoveActivityRef(ctx, []primitive.ObjectID{studentID}, activityID); err != nil {
		h.Log.Error("unlinking activity from student failed",
			zap.String("activity_id", activityID.Hex()),
			zap.String("student_id", studentID.Hex()),
			zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "could not update student")
		return
	}
	httpjson.Write(w, http.StatusAccepted, messageResponse{
		Message: fmt.Sprintf("successfully removed student with id %s", studentID.Hex()),
	})
}

// inviteStudent creates a temporary account for an unknown email and
// mails the registration link.
func (h *Handler) inviteStudent(ctx context.Context, email string) (models.User, error) {
	token, err := h.Tokens.IssueInvitation(email)
	if err != nil {
		return models.User{}, fmt.Errorf("issue invitation token: %w", err)
	}

	invited, err := h.Users.Create(ctx, models.User{
		Email:           email,
		Role:            models.RoleStudent,
		InvitationToken: token,
		IsTemporary:     true,
	})
	if err != nil {
		return models.User{}, fmt.Errorf("create temporary account: %w", err)
	}

	mail := mailer.BuildInvitationEmail(mailer.InvitationEmailData{
		SiteName:     "TeamLens",
		RegisterLink: fmt.Sprintf("%s/register-student/%s", h.BaseURL, token),
	})
	mail.To = email
	if err := h.Mail.Send(mail); err != nil {
		// The account exists; the student can still be re-invited later.
		h.Log.Warn("invitation email failed", zap.String("email", email), zap.Error(err))
	}
	return invited, nil
}

func normalizeEmails(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, e := range in {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" || seen[e] {
			continue
		}
		seen[e] = true
		out = append(out, e)
	}
	return out
}
