// internal/app/system/mailer/templates.go
package mailer

import (
	"bytes"
	"fmt"
)

// InvitationEmailData holds data for the student invitation email.
type InvitationEmailData struct {
	SiteName     string
	RegisterLink string
}

// BuildInvitationEmail creates the email sent to a student enrolled by
// email address before they have an account.
func BuildInvitationEmail(data InvitationEmailData) Email {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "You have been invited to %s.\n\n", data.SiteName)
	buf.WriteString("To complete your registration, open the following link:\n")
	buf.WriteString(data.RegisterLink + "\n")
	return Email{
		Subject:  fmt.Sprintf("You have been invited to %s", data.SiteName),
		TextBody: buf.String(),
	}
}

// ResetEmailData holds data for the password-reset email.
type ResetEmailData struct {
	ResetLink string
	ExpiresIn string // e.g. "5 minutes"
}

// BuildResetEmail creates the password-reset email.
func BuildResetEmail(data ResetEmailData) Email {
	var buf bytes.Buffer
	buf.WriteString("Click the following link to reset your password:\n")
	buf.WriteString(data.ResetLink + "\n\n")
	fmt.Fprintf(&buf, "This link expires in %s. If you did not request a reset, ignore this email.\n", data.ExpiresIn)
	return Email{
		Subject:  "Reset your password",
		TextBody: buf.String(),
	}
}

// BuildResetConfirmationEmail confirms a completed password reset.
func BuildResetConfirmationEmail() Email {
	return Email{
		Subject:  "Your password was reset",
		TextBody: "Your password has been reset successfully. Please log in with your new password.\n",
	}
}

// ReminderEmailData holds data for the pending-questionnaire reminder.
type ReminderEmailData struct {
	QuestionnaireTitle string
	QuestionnaireLink  string
}

// BuildQuestionnaireReminderEmail creates the reminder sent to students
// who have not yet answered a questionnaire their teacher needs.
func BuildQuestionnaireReminderEmail(data ReminderEmailData) Email {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "Your teacher needs you to complete the questionnaire %q:\n", data.QuestionnaireTitle)
	buf.WriteString(data.QuestionnaireLink + "\n")
	return Email{
		Subject:  "Pending questionnaire",
		TextBody: buf.String(),
	}
}
