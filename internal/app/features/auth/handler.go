// internal/app/features/auth/handler.go
package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	userstore "github.com/teamlens/teamlens/internal/app/store/users"
	"github.com/teamlens/teamlens/internal/app/system/auth"
	"github.com/teamlens/teamlens/internal/app/system/httpjson"
	"github.com/teamlens/teamlens/internal/app/system/mailer"
	"github.com/teamlens/teamlens/internal/app/system/timeouts"
	"github.com/teamlens/teamlens/internal/domain/models"
)

// Handler serves account and session endpoints.
type Handler struct {
	Users    *userstore.Store
	Sessions *auth.SessionManager
	Mail     mailer.Sender
	BaseURL  string
	Log      *zap.Logger
}

func NewHandler(db *mongo.Database, sessions *auth.SessionManager, mail mailer.Sender, baseURL string, logger *zap.Logger) *Handler {
	return &Handler{
		Users:    userstore.New(db),
		Sessions: sessions,
		Mail:     mail,
		BaseURL:  strings.TrimRight(baseURL, "/"),
		Log:      logger,
	}
}

// HandleLogin verifies credentials and starts a session.
//
// Route: POST /auth/login
//
// Accounts that still carry an invitation token have not completed
// registration and cannot log in, even with a matching password.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ctx, cancel := timeouts.WithShort(r.Context())
	defer cancel()

	user, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			httpjson.Error(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		h.Log.Error("login: lookup failed", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "login failed")
		return
	}

	if user.InvitationToken != "" || !auth.CheckPassword(user.Password, req.Password) {
		httpjson.Error(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	if err := h.Sessions.SignIn(w, r, user); err != nil {
		h.Log.Error("login: session start failed", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "login failed")
		return
	}

	httpjson.Write(w, http.StatusOK, user)
}

// HandleLogout clears the session.
//
// Route: POST /auth/logout
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.Sessions.SignOut(w, r); err != nil {
		h.Log.Warn("logout: clearing session failed", zap.Error(err))
	}
	httpjson.Write(w, http.StatusOK, messageResponse{Message: "logged out"})
}

// HandleRegister creates a new account. Role defaults to teacher;
// student accounts normally come in through the invitation flow.
//
// Route: POST /auth/register
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		httpjson.Error(w, http.StatusBadRequest, "email and password are required")
		return
	}

	role := req.Role
	if role == "" {
		role = models.RoleTeacher
	}
	if role != models.RoleTeacher && role != models.RoleStudent {
		httpjson.Error(w, http.StatusBadRequest, "invalid role")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		h.Log.Error("register: hashing password failed", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "registration failed")
		return
	}

	ctx, cancel := timeouts.WithShort(r.Context())
	defer cancel()

	user, err := h.Users.Create(ctx, models.User{
		Name:     req.Name,
		Email:    req.Email,
		Password: hash,
		Role:     role,
	})
	if err != nil {
		if errors.Is(err, userstore.ErrDuplicateEmail) {
			httpjson.Error(w, http.StatusConflict, "user already exists")
			return
		}
		h.Log.Error("register: create user failed", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "registration failed")
		return
	}

	httpjson.Write(w, http.StatusOK, messageResponse{
		Message: fmt.Sprintf("successfully created a new user with id %s", user.ID.Hex()),
	})
}

// HandleRegisterStudent completes a temporary invited account: the
// email must already exist with a valid invitation token.
//
// Route: POST /auth/register-student
func (h *Handler) HandleRegisterStudent(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ctx, cancel := timeouts.WithShort(r.Context())
	defer cancel()

	user, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			httpjson.Error(w, http.StatusConflict, "user not invited")
			return
		}
		h.Log.Error("register-student: lookup failed", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "registration failed")
		return
	}
	if user.InvitationToken == "" {
		httpjson.Error(w, http.StatusConflict, "user already exists")
		return
	}
	if _, err := h.Sessions.Tokens().VerifyInvitation(user.InvitationToken); err != nil {
		httpjson.Error(w, http.StatusUnauthorized, "invalid token")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		h.Log.Error("register-student: hashing password failed", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "registration failed")
		return
	}

	if err := h.Users.CompleteInvitedRegistration(ctx, req.Email, req.Name, hash); err != nil {
		h.Log.Error("register-student: completing registration failed", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "registration failed")
		return
	}

	httpjson.Write(w, http.StatusOK, messageResponse{
		Message: fmt.Sprintf("successfully registered user with email %s", user.Email),
	})
}

// HandleForgotPassword issues a short-lived reset token and mails a
// reset link to the account's address.
//
// Route: POST /auth/forgot-password
func (h *Handler) HandleForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req forgotPasswordRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ctx, cancel := timeouts.WithShort(r.Context())
	defer cancel()

	user, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			httpjson.Error(w, http.StatusNotFound, "user not found")
			return
		}
		h.Log.Error("forgot-password: lookup failed", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "could not send reset email")
		return
	}

	token, err := h.Sessions.Tokens().IssueReset(user.Email)
	if err != nil {
		h.Log.Error("forgot-password: issuing token failed", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "could not send reset email")
		return
	}
	if err := h.Users.SetResetToken(ctx, user.ID, token); err != nil {
		h.Log.Error("forgot-password: storing token failed", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "could not send reset email")
		return
	}

	email := mailer.BuildResetEmail(mailer.ResetEmailData{
		ResetLink: fmt.Sprintf("%s/reset-password/%s", h.BaseURL, token),
		ExpiresIn: "5 minutes",
	})
	email.To = user.Email
	if err := h.Mail.Send(email); err != nil {
		h.Log.Error("forgot-password: sending email failed", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "could not send reset email")
		return
	}

	httpjson.Write(w, http.StatusOK, messageResponse{Message: "email sent successfully"})
}

// HandleResetPassword consumes a reset token and replaces the password.
//
// Route: POST /auth/reset-password
func (h *Handler) HandleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ctx, cancel := timeouts.WithShort(r.Context())
	defer cancel()

	user, err := h.Users.GetByResetToken(ctx, req.Token)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			httpjson.Error(w, http.StatusNotFound, "user not found")
			return
		}
		h.Log.Error("reset-password: lookup failed", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "could not reset password")
		return
	}

	if _, err := h.Sessions.Tokens().VerifyReset(req.Token); err != nil {
		httpjson.Error(w, http.StatusUnauthorized, "invalid token")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		h.Log.Error("reset-password: hashing password failed", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "could not reset password")
		return
	}

	modified, err := h.Users.ResetPassword(ctx, user.ID, hash)
	if err != nil || modified == 0 {
		h.Log.Error("reset-password: updating password failed",
			zap.String("user_id", user.ID.Hex()), zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "failed to reset password")
		return
	}

	confirmation := mailer.BuildResetConfirmationEmail()
	confirmation.To = user.Email
	if err := h.Mail.Send(confirmation); err != nil {
		// The password is already changed; the confirmation mail is advisory.
		h.Log.Warn("reset-password: confirmation email failed", zap.Error(err))
	}

	httpjson.Write(w, http.StatusOK, messageResponse{Message: "password reset successfully"})
}
