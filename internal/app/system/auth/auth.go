// internal/app/system/auth/auth.go
package auth

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dalemusser/learnportal/internal/app/store/sessions"
	"github.com/dalemusser/learnportal/internal/app/system/normalize"
	"github.com/dalemusser/learnportal/internal/domain/models"
	"github.com/golang-jwt/jwt/v5"
	gsessions "github.com/gorilla/sessions"
	"github.com/gorilla/securecookie"
	"go.uber.org/zap"
)

/*─────────────────────────────────────────────────────────────────────────────*
| Session constants                                                          |
*─────────────────────────────────────────────────────────────────────────────*/

const (
	isAuthKey    = "is_authenticated"
	userIDKey    = "user_id"
	userNameKey  = "user_name"
	userEmailKey = "user_email"
	userRoleKey  = "user_role"
	roleLabelKey = "role_label"
	sessionIDKey = "sid"
)

// touchEvery limits how often a request bumps last_active_at.
const touchEvery = time.Minute

var (
	// ErrNoSession is returned when the request carries no signed-in session.
	ErrNoSession = errors.New("auth: no active session")
	// ErrTokenExpired is returned by SignIn for a token whose exp has passed.
	ErrTokenExpired = errors.New("auth: api token already expired")
	// ErrNoRecordStore is returned by SignIn when no record store is configured.
	ErrNoRecordStore = errors.New("auth: session record store not configured")
)

/*─────────────────────────────────────────────────────────────────────────────*
| Collaborators                                                              |
*─────────────────────────────────────────────────────────────────────────────*/

// RecordStore persists the server-side half of a session.
type RecordStore interface {
	Create(ctx context.Context, s sessions.Session) (sessions.Session, error)
	GetActive(ctx context.Context, id string) (sessions.Session, error)
	Touch(ctx context.Context, id string) error
	Close(ctx context.Context, id, reason string) error
}

// Sealer encrypts the API token at rest.
type Sealer interface {
	Seal(plaintext string) (string, error)
	Open(sealed string) (string, error)
}

/*─────────────────────────────────────────────────────────────────────────────*
| Current-User helper                                                        |
*─────────────────────────────────────────────────────────────────────────────*/

// SessionUser is what we cache in the session & inject into r.Context().
//
// Role is the canonical token ("super_admin"); RoleLabel is the role as the
// backend spelled it ("Super Admin") and is only used for display.
type SessionUser struct {
	ID        string
	Name      string
	Email     string
	Role      string
	RoleLabel string
	SessionID string

	sealedToken  string
	lastActiveAt time.Time
}

// Record rebuilds the user record the session was created from.
func (u *SessionUser) Record() models.User {
	label := u.RoleLabel
	if label == "" {
		label = u.Role
	}
	var role models.Role
	if label != "" {
		role = models.StringRole(label)
	}
	return models.User{
		ID:    models.ID(u.ID),
		Name:  u.Name,
		Email: u.Email,
		Role:  role,
	}
}

type ctxKey string

const currentUserKey ctxKey = "currentUser"

// CurrentUser returns the user & "found?" flag.
func CurrentUser(r *http.Request) (*SessionUser, bool) {
	u, ok := r.Context().Value(currentUserKey).(*SessionUser)
	return u, ok
}

// WithTestUser injects u into the request context, bypassing the session
// cookie. For handler tests.
func WithTestUser(r *http.Request, u *SessionUser) *http.Request {
	return withUser(r, u)
}

/*─────────────────────────────────────────────────────────────────────────────*
| Session manager                                                            |
*─────────────────────────────────────────────────────────────────────────────*/

// SessionManager owns the session cookie and the matching session records.
type SessionManager struct {
	store  *gsessions.CookieStore
	name   string
	maxAge time.Duration
	log    *zap.Logger

	records RecordStore
	sealer  Sealer
	now     func() time.Time
}

// NewSessionManager builds the cookie store.
//
// In production (secure=true), cookies are Secure + SameSite=None.
// In local dev over http://localhost, use secure=false so cookies are accepted.
func NewSessionManager(sessionKey, name, domain string, maxAge time.Duration, secure bool, logger *zap.Logger) (*SessionManager, error) {
	if sessionKey == "" {
		return nil, fmt.Errorf("session key is empty; provide ≥32 random chars")
	}
	if len(sessionKey) < 32 {
		logger.Warn("session key is short; 32+ chars recommended",
			zap.Int("length", len(sessionKey)))
	}
	if name == "" {
		name = "learnportal-session"
	}
	if maxAge <= 0 {
		maxAge = 24 * time.Hour
	}

	store := gsessions.NewCookieStore([]byte(sessionKey))
	opts := &gsessions.Options{
		Domain:   domain,
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		Secure:   secure,
		HttpOnly: true,
	}
	if secure {
		opts.SameSite = http.SameSiteNoneMode
	} else {
		opts.SameSite = http.SameSiteLaxMode
	}
	store.Options = opts

	logger.Info("session store initialized",
		zap.Bool("secure", secure),
		zap.String("domain", domain),
		zap.Duration("max_age", maxAge))

	return &SessionManager{
		store:  store,
		name:   name,
		maxAge: maxAge,
		log:    logger,
		now:    time.Now,
	}, nil
}

// UseRecords attaches the record store and token sealer. Without them
// sessions can be read but SignIn fails.
func (m *SessionManager) UseRecords(records RecordStore, sealer Sealer) {
	m.records = records
	m.sealer = sealer
}

func (m *SessionManager) session(r *http.Request) *gsessions.Session {
	sess, err := m.store.Get(r, m.name)
	if err != nil {
		var scErr securecookie.Error
		if errors.As(err, &scErr) && scErr.IsDecode() {
			m.log.Debug("session cookie invalid, using fresh session", zap.Error(err))
		} else {
			m.log.Warn("session store error, using fresh session", zap.Error(err))
		}
	}
	return sess
}

// LoadSessionUser injects the user into context if they are logged in.
// A cookie whose session record is gone or expired is cleared.
func (m *SessionManager) LoadSessionUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := m.session(r)
		if isAuth, _ := sess.Values[isAuthKey].(bool); !isAuth {
			next.ServeHTTP(w, r)
			return
		}

		u := &SessionUser{
			ID:        getString(sess, userIDKey),
			Name:      getString(sess, userNameKey),
			Email:     getString(sess, userEmailKey),
			Role:      getString(sess, userRoleKey),
			RoleLabel: getString(sess, roleLabelKey),
			SessionID: getString(sess, sessionIDKey),
		}

		if m.records != nil {
			rec, err := m.records.GetActive(r.Context(), u.SessionID)
			if err != nil {
				if !errors.Is(err, sessions.ErrNotFound) {
					m.log.Error("session lookup failed", zap.Error(err), zap.String("user_id", u.ID))
					next.ServeHTTP(w, r)
					return
				}
				m.clearCookie(w, r, sess)
				next.ServeHTTP(w, r)
				return
			}
			u.sealedToken = rec.SealedToken
			u.lastActiveAt = rec.LastActiveAt

			if m.now().Sub(rec.LastActiveAt) >= touchEvery {
				if err := m.records.Touch(r.Context(), u.SessionID); err != nil {
					m.log.Debug("session touch failed", zap.Error(err))
				}
			}
		}

		next.ServeHTTP(w, withUser(r, u))
	})
}

// SignIn starts a session for user holding the backend token.
//
// The session lasts the configured max age, cut short by the token's own
// exp claim when it carries one.
func (m *SessionManager) SignIn(w http.ResponseWriter, r *http.Request, user models.User, token string) (*SessionUser, error) {
	if m.records == nil || m.sealer == nil {
		return nil, ErrNoRecordStore
	}

	now := m.now().UTC()
	expiresAt := now.Add(m.maxAge)
	if exp, ok := TokenExpiry(token); ok {
		if !exp.After(now) {
			return nil, ErrTokenExpired
		}
		if exp.Before(expiresAt) {
			expiresAt = exp
		}
	}

	sealed, err := m.sealer.Seal(token)
	if err != nil {
		return nil, fmt.Errorf("seal token: %w", err)
	}

	roleToken := normalize.RoleToken(user.Role)
	rec, err := m.records.Create(r.Context(), sessions.Session{
		UserID:      user.ID.String(),
		Role:        roleToken,
		SealedToken: sealed,
		LoginAt:     now,
		ExpiresAt:   expiresAt,
		IP:          ClientIP(r),
		UserAgent:   r.UserAgent(),
	})
	if err != nil {
		return nil, fmt.Errorf("create session record: %w", err)
	}

	su := &SessionUser{
		ID:        user.ID.String(),
		Name:      strings.TrimSpace(user.Name),
		Email:     normalize.Email(user.Email),
		Role:      roleToken,
		RoleLabel: strings.TrimSpace(user.Role.Value),
		SessionID: rec.ID.Hex(),
	}

	sess := m.session(r)
	sess.Values[isAuthKey] = true
	sess.Values[userIDKey] = su.ID
	sess.Values[userNameKey] = su.Name
	sess.Values[userEmailKey] = su.Email
	sess.Values[userRoleKey] = su.Role
	sess.Values[roleLabelKey] = su.RoleLabel
	sess.Values[sessionIDKey] = su.SessionID

	opts := *m.store.Options
	opts.MaxAge = max(1, int(expiresAt.Sub(now).Seconds()))
	sess.Options = &opts

	if err := sess.Save(r, w); err != nil {
		_ = m.records.Close(r.Context(), su.SessionID, sessions.EndLogout)
		return nil, fmt.Errorf("save session cookie: %w", err)
	}

	m.log.Info("user signed in",
		zap.String("user_id", su.ID),
		zap.String("role", su.Role),
		zap.Time("expires_at", expiresAt))
	return su, nil
}

// SignOut closes the session record with reason and clears the cookie.
func (m *SessionManager) SignOut(w http.ResponseWriter, r *http.Request, reason string) {
	sess := m.session(r)
	if sid := getString(sess, sessionIDKey); sid != "" && m.records != nil {
		if err := m.records.Close(r.Context(), sid, reason); err != nil && !errors.Is(err, sessions.ErrNotFound) {
			m.log.Warn("failed to close session record", zap.Error(err), zap.String("session_id", sid))
		}
	}
	m.clearCookie(w, r, sess)
}

func (m *SessionManager) clearCookie(w http.ResponseWriter, r *http.Request, sess *gsessions.Session) {
	for k := range sess.Values {
		delete(sess.Values, k)
	}
	opts := *m.store.Options
	opts.MaxAge = -1
	sess.Options = &opts
	if err := sess.Save(r, w); err != nil {
		m.log.Warn("failed to clear session cookie", zap.Error(err))
	}
}

// APIToken returns the backend bearer token for the signed-in user.
func (m *SessionManager) APIToken(r *http.Request) (string, error) {
	u, ok := CurrentUser(r)
	if !ok || u.sealedToken == "" || m.sealer == nil {
		return "", ErrNoSession
	}
	tok, err := m.sealer.Open(u.sealedToken)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNoSession, err)
	}
	return tok, nil
}

// TokenExpiry reads the exp claim of a JWT without verifying it; the
// backend verifies. Opaque tokens report ok=false.
func TokenExpiry(token string) (time.Time, bool) {
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}

/*─────────────────────────────────────────────────────────────────────────────*
| Guards                                                                     |
*─────────────────────────────────────────────────────────────────────────────*/

// RequireSignedIn ensures there is a user in context (set by LoadSessionUser).
// If not signed in:
//   - HTMX: sends HX-Redirect to /login?return=...
//   - HTML: 303 redirect to /login?return=...
//   - API:  401 Unauthorized with a plain error body.
func (m *SessionManager) RequireSignedIn(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CurrentUser(r); ok {
			next.ServeHTTP(w, r)
			return
		}
		unauthorized(w, r)
	})
}

// RequireRole ensures there is a user whose role token is one of allowed.
// Allowed roles are normalized the same way session roles are.
func (m *SessionManager) RequireRole(allowed ...string) func(http.Handler) http.Handler {
	set := make(map[string]struct{}, len(allowed))
	for _, role := range allowed {
		set[normalize.Role(role)] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, ok := CurrentUser(r)
			if !ok {
				unauthorized(w, r)
				return
			}

			if _, has := set[normalize.Role(u.Role)]; !has {
				if r.Header.Get("HX-Request") == "true" {
					w.Header().Set("HX-Redirect", "/forbidden")
					w.WriteHeader(http.StatusForbidden)
					return
				}
				if wantsHTML(r) {
					http.Redirect(w, r, "/forbidden", http.StatusSeeOther)
					return
				}
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func unauthorized(w http.ResponseWriter, r *http.Request) {
	ret := url.QueryEscape(currentURI(r))

	// HTMX: full-page client redirect (no partial swap)
	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", "/login?return="+ret)
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	if wantsHTML(r) {
		http.Redirect(w, r, "/login?return="+ret, http.StatusSeeOther)
		return
	}
	http.Error(w, "unauthorized", http.StatusUnauthorized)
}

// helpers

func withUser(r *http.Request, u *SessionUser) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), currentUserKey, u))
}

// getString safely extracts a string from a session value.
func getString(s *gsessions.Session, key string) string {
	if v, ok := s.Values[key].(string); ok {
		return v
	}
	return ""
}

func wantsHTML(r *http.Request) bool {
	if r.Header.Get("HX-Request") == "true" {
		return true
	}
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}

func currentURI(r *http.Request) string {
	u := *r.URL
	return u.RequestURI()
}

// ClientIP extracts the client IP (X-Forwarded-For → X-Real-IP → RemoteAddr).
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if ip := strings.TrimSpace(strings.Split(xff, ",")[0]); ip != "" {
			return ip
		}
	}
	if xr := r.Header.Get("X-Real-IP"); xr != "" {
		return strings.TrimSpace(xr)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}
