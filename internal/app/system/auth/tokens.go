// internal/app/system/auth/tokens.go
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token lifetimes, matching the flows they secure.
const (
	sessionTokenTTL = 24 * time.Hour
	resetTokenTTL   = 5 * time.Minute
)

// Token purposes, embedded in the claims so one token kind can never
// stand in for another.
const (
	purposeSession    = "session"
	purposeInvitation = "invitation"
	purposeReset      = "reset"
)

var ErrInvalidToken = errors.New("invalid or expired token")

// Tokens issues and verifies the JWTs used for sessions, invitations,
// and password resets. All tokens are HS256 over a shared secret.
type Tokens struct {
	secret []byte
}

func NewTokens(secret string) *Tokens {
	return &Tokens{secret: []byte(secret)}
}

type claims struct {
	Purpose string `json:"purpose"`
	UserID  string `json:"uid,omitempty"`
	Role    string `json:"role,omitempty"`
	Email   string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// IssueSession creates the session token carried by the cookie.
func (t *Tokens) IssueSession(userID, role string) (string, error) {
	return t.sign(claims{
		Purpose: purposeSession,
		UserID:  userID,
		Role:    role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(sessionTokenTTL)),
		},
	})
}

// IssueInvitation creates the token mailed to an invited student. It
// is bound to the invited email and does not expire; the account it
// belongs to is temporary until registration completes.
func (t *Tokens) IssueInvitation(email string) (string, error) {
	return t.sign(claims{
		Purpose: purposeInvitation,
		Email:   email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(time.Now()),
		},
	})
}

// IssueReset creates a short-lived password-reset token.
func (t *Tokens) IssueReset(email string) (string, error) {
	return t.sign(claims{
		Purpose: purposeReset,
		Email:   email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(resetTokenTTL)),
		},
	})
}

// VerifySession returns the user id and role from a session token.
func (t *Tokens) VerifySession(token string) (userID, role string, err error) {
	c, err := t.parse(token, purposeSession)
	if err != nil {
		return "", "", err
	}
	return c.UserID, c.Role, nil
}

// VerifyInvitation returns the invited email from an invitation token.
func (t *Tokens) VerifyInvitation(token string) (email string, err error) {
	c, err := t.parse(token, purposeInvitation)
	if err != nil {
		return "", err
	}
	return c.Email, nil
}

// VerifyReset returns the email from a password-reset token.
func (t *Tokens) VerifyReset(token string) (email string, err error) {
	c, err := t.parse(token, purposeReset)
	if err != nil {
		return "", err
	}
	return c.Email, nil
}

func (t *Tokens) sign(c claims) (string, error) {
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return token, nil
}

func (t *Tokens) parse(token, purpose string) (*claims, error) {
	var c claims
	parsed, err := jwt.ParseWithClaims(token, &c, func(tok *jwt.Token) (any, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", tok.Header["alg"])
		}
		return t.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	if c.Purpose != purpose {
		return nil, ErrInvalidToken
	}
	return &c, nil
}
