package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/M-Jeevanantham/edu-event-management-erp/internal/app/system/respond"
	"github.com/M-Jeevanantham/edu-event-management-erp/internal/domain/apperr"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"
)

const tokenKey = "token"

// SessionUser is the verified identity injected into r.Context().
type SessionUser struct {
	ID    string
	Name  string
	Email string
	Role  string
}

// UserFetcher reloads a user on each request so that disabled accounts
// and role changes take effect before the token expires. It returns nil
// when the user no longer exists or is disabled.
type UserFetcher interface {
	FetchUser(ctx context.Context, userID string) *SessionUser
}

type ctxKey string

const currentUserKey ctxKey = "currentUser"

// CurrentUser returns the user & “found?” flag.
func CurrentUser(r *http.Request) (*SessionUser, bool) {
	u, ok := r.Context().Value(currentUserKey).(*SessionUser)
	return u, ok
}

// SessionManager resolves the caller's identity from a bearer token or
// from the token kept in the browser session cookie.
type SessionManager struct {
	store   *sessions.CookieStore
	name    string
	tokens  *TokenManager
	fetcher UserFetcher
	log     *zap.Logger
}

// NewSessionManager builds the cookie store and binds it to tokens.
// In production (secure=true) cookies are Secure + SameSite=None; in
// local dev over http they are Lax.
func NewSessionManager(sessionKey, sessionName, domain string, tokens *TokenManager, secure bool, logger *zap.Logger) (*SessionManager, error) {
	if sessionKey == "" {
		return nil, fmt.Errorf("session key is empty; provide ≥32 random chars")
	}
	if tokens == nil {
		return nil, fmt.Errorf("token manager is required")
	}
	if len(sessionKey) < 32 {
		logger.Warn("session key is short; 32+ chars recommended", zap.Int("length", len(sessionKey)))
	}

	store := sessions.NewCookieStore([]byte(sessionKey))
	store.Options = &sessions.Options{
		Domain:   domain,
		Path:     "/",
		MaxAge:   int(tokens.TTL() / time.Second),
		Secure:   secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	if secure {
		store.Options.SameSite = http.SameSiteNoneMode
	}

	logger.Info("session store initialized", zap.Bool("secure", secure), zap.String("domain", domain))
	return &SessionManager{store: store, name: sessionName, tokens: tokens, log: logger}, nil
}

// SetUserFetcher enables per-request user reloads.
func (sm *SessionManager) SetUserFetcher(f UserFetcher) { sm.fetcher = f }

// Tokens exposes the token collaborator.
func (sm *SessionManager) Tokens() *TokenManager { return sm.tokens }

// SignIn stores token in the session cookie for browser clients.
func (sm *SessionManager) SignIn(w http.ResponseWriter, r *http.Request, token string) error {
	sess, _ := sm.store.Get(r, sm.name)
	sess.Values[tokenKey] = token
	return sess.Save(r, w)
}

// SignOut expires the session cookie.
func (sm *SessionManager) SignOut(w http.ResponseWriter, r *http.Request) error {
	sess, _ := sm.store.Get(r, sm.name)
	delete(sess.Values, tokenKey)
	sess.Options.MaxAge = -1
	return sess.Save(r, w)
}

// LoadSessionUser injects the user into context when a valid token is
// presented. Invalid tokens are ignored here; RequireSignedIn rejects.
func (sm *SessionManager) LoadSessionUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := sm.tokenFrom(r)
		if token == "" {
			next.ServeHTTP(w, r)
			return
		}

		claims, err := sm.tokens.Verify(token)
		if err != nil {
			sm.log.Debug("token rejected", zap.Error(err))
			next.ServeHTTP(w, r)
			return
		}

		u := &SessionUser{ID: claims.UserID, Name: claims.Name, Email: claims.Email, Role: claims.Role}
		if sm.fetcher != nil {
			u = sm.fetcher.FetchUser(r.Context(), claims.UserID)
			if u == nil {
				next.ServeHTTP(w, r)
				return
			}
		}
		next.ServeHTTP(w, withUser(r, u))
	})
}

func (sm *SessionManager) tokenFrom(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	sess, err := sm.store.Get(r, sm.name)
	if err != nil {
		return ""
	}
	s, _ := sess.Values[tokenKey].(string)
	return s
}

// RequireSignedIn answers 401 when no verified user is in context.
func (sm *SessionManager) RequireSignedIn(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CurrentUser(r); !ok {
			respond.Error(w, r, sm.log, apperr.Authentication("sign in required"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole answers 401 without a user and 403 when the user's role is
// not one of allowed.
func (sm *SessionManager) RequireRole(allowed ...string) func(http.Handler) http.Handler {
	set := make(map[string]struct{}, len(allowed))
	for _, role := range allowed {
		set[strings.ToLower(strings.TrimSpace(role))] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, ok := CurrentUser(r)
			if !ok {
				respond.Error(w, r, sm.log, apperr.Authentication("sign in required"))
				return
			}
			if _, has := set[strings.ToLower(u.Role)]; !has {
				respond.Error(w, r, sm.log, apperr.Authorization("role %q may not access this resource", u.Role))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// WithTestUser injects u into the request context. Tests use it to bypass
// token verification.
func WithTestUser(r *http.Request, u *SessionUser) *http.Request {
	return withUser(r, u)
}

func withUser(r *http.Request, u *SessionUser) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), currentUserKey, u))
}
