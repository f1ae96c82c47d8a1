// internal/app/system/auth/auth.go
package auth

import (
	"context"
	"net/http"

	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"

	"github.com/teamlens/teamlens/internal/domain/models"
)

const tokenKey = "token"

// SessionUser is the authenticated identity injected into r.Context().
type SessionUser struct {
	ID   string
	Role string
}

type ctxKey string

const currentUserKey ctxKey = "currentUser"

// CurrentUser returns the signed-in user and a found flag.
func CurrentUser(r *http.Request) (*SessionUser, bool) {
	u, ok := r.Context().Value(currentUserKey).(*SessionUser)
	return u, ok
}

// SessionManager pairs the signed session cookie with the JWTs it
// carries: the cookie is the transport, the token is the credential.
type SessionManager struct {
	store  *sessions.CookieStore
	name   string
	tokens *Tokens
	log    *zap.Logger
}

// NewSessionManager builds the cookie store and token signer. The
// session key signs cookies (gorilla/securecookie under the hood);
// jwtSecret signs the tokens inside them.
func NewSessionManager(sessionKey, name, domain, jwtSecret string, secure bool, logger *zap.Logger) (*SessionManager, error) {
	key := []byte(sessionKey)
	if len(key) == 0 {
		// Dev convenience only; sessions won't survive a restart.
		key = securecookie.GenerateRandomKey(32)
		logger.Warn("session key not configured; generated an ephemeral one")
	} else if len(key) < 32 {
		logger.Warn("session key is short; 32+ chars recommended", zap.Int("length", len(key)))
	}

	store := sessions.NewCookieStore(key)
	opts := &sessions.Options{
		Domain:   domain,
		Path:     "/",
		Secure:   secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	if secure {
		opts.SameSite = http.SameSiteNoneMode
	}
	store.Options = opts

	return &SessionManager{
		store:  store,
		name:   name,
		tokens: NewTokens(jwtSecret),
		log:    logger,
	}, nil
}

// Tokens exposes the token signer for the auth feature (invitation
// and reset tokens share the secret).
func (m *SessionManager) Tokens() *Tokens { return m.tokens }

// SignIn issues a session token for the user and stores it in the cookie.
func (m *SessionManager) SignIn(w http.ResponseWriter, r *http.Request, u models.User) error {
	token, err := m.tokens.IssueSession(u.ID.Hex(), u.Role)
	if err != nil {
		return err
	}
	sess, _ := m.store.Get(r, m.name)
	sess.Values[tokenKey] = token
	return sess.Save(r, w)
}

// SignOut clears the session cookie.
func (m *SessionManager) SignOut(w http.ResponseWriter, r *http.Request) error {
	sess, _ := m.store.Get(r, m.name)
	sess.Options.MaxAge = -1
	delete(sess.Values, tokenKey)
	return sess.Save(r, w)
}

// LoadSessionUser verifies the cookie's token and, if valid, injects
// the SessionUser into the request context. Invalid or absent tokens
// just leave the request anonymous.
func (m *SessionManager) LoadSessionUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, _ := m.store.Get(r, m.name)
		if token, ok := sess.Values[tokenKey].(string); ok {
			if userID, role, err := m.tokens.VerifySession(token); err == nil {
				r = withUser(r, &SessionUser{ID: userID, Role: role})
			}
		}
		next.ServeHTTP(w, r)
	})
}

// RequireSignedIn rejects anonymous requests with 401.
func RequireSignedIn(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CurrentUser(r); !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireTeacher rejects requests whose session is not a teacher.
func RequireTeacher(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, ok := CurrentUser(r)
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		if u.Role != models.RoleTeacher {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// WithTestUser injects a user directly, bypassing the cookie. Test use only.
func WithTestUser(r *http.Request, u *SessionUser) *http.Request {
	return withUser(r, u)
}

func withUser(r *http.Request, u *SessionUser) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), currentUserKey, u))
}
