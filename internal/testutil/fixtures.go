package testutil

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/dalemusser/learnportal/internal/app/store/sessions"
	"github.com/dalemusser/learnportal/internal/app/system/auth"
	"github.com/dalemusser/learnportal/internal/app/system/tokenseal"
	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// SessionKey is the cookie and sealing secret used by test session managers.
const SessionKey = "test-session-key-must-be-32-chars-long"

// SessionCookie is the cookie name used by test session managers.
const SessionCookie = "test-session"

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// MemSessions is an in-memory auth.RecordStore.
type MemSessions struct {
	mu   sync.Mutex
	byID map[string]sessions.Session
}

// NewMemSessions returns an empty store.
func NewMemSessions() *MemSessions {
	return &MemSessions{byID: map[string]sessions.Session{}}
}

func (m *MemSessions) Create(_ context.Context, s sessions.Session) (sessions.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s.ID = primitive.NewObjectID()
	if s.LastActiveAt.IsZero() {
		s.LastActiveAt = s.LoginAt
	}
	m.byID[s.ID.Hex()] = s
	return s, nil
}

func (m *MemSessions) GetActive(_ context.Context, id string) (sessions.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.byID[id]
	if !ok || s.LogoutAt != nil || !s.ExpiresAt.After(time.Now()) {
		return sessions.Session{}, sessions.ErrNotFound
	}
	return s, nil
}

func (m *MemSessions) Touch(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.byID[id]
	if !ok {
		return sessions.ErrNotFound
	}
	s.LastActiveAt = time.Now()
	m.byID[id] = s
	return nil
}

func (m *MemSessions) Close(_ context.Context, id, reason string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.byID[id]
	if !ok {
		return sessions.ErrNotFound
	}
	now := time.Now()
	s.LogoutAt = &now
	s.EndReason = reason
	m.byID[id] = s
	return nil
}

// All returns every record, open or closed.
func (m *MemSessions) All() []sessions.Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]sessions.Session, 0, len(m.byID))
	for _, s := range m.byID {
		out = append(out, s)
	}
	return out
}

// NewSessionManager returns a session manager backed by MemSessions and a
// real token sealer. Cookies are not Secure so httptest requests keep them.
func NewSessionManager(t *testing.T) (*auth.SessionManager, *MemSessions) {
	t.Helper()
	sm, err := auth.NewSessionManager(SessionKey, SessionCookie, "", 24*time.Hour, false, zap.NewNop())
	if err != nil {
		t.Fatalf("NewSessionManager: %v", err)
	}
	sealer, err := tokenseal.New(SessionKey)
	if err != nil {
		t.Fatalf("tokenseal.New: %v", err)
	}
	recs := NewMemSessions()
	sm.UseRecords(recs, sealer)
	return sm, recs
}

// Token returns an HS256 JWT for subject that expires at exp.
func Token(t *testing.T, subject string, exp time.Time) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(exp),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}).SignedString([]byte(SessionKey))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return tok
}

// CookiesFrom copies the cookies set on a response onto req, so a follow-up
// request carries the session.
func CookiesFrom(rec *ResponseRecorder, req *http.Request) *http.Request {
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
	return req
}
