// internal/app/system/auditlog/logger.go
package auditlog

import (
	"context"
	"net/http"

	"github.com/dalemusser/learnportal/internal/app/store/audit"
	"github.com/dalemusser/learnportal/internal/app/system/apiclient"
	"github.com/dalemusser/learnportal/internal/app/system/auth"
	"go.uber.org/zap"
)

// Destinations for a category.
const (
	ModeAll = "all" // MongoDB + zap
	ModeDB  = "db"
	ModeLog = "log"
	ModeOff = "off"
)

// Config selects where each category is written.
type Config struct {
	Auth    string
	Support string
}

// EventStore persists events. *audit.Store satisfies it.
type EventStore interface {
	Log(ctx context.Context, event audit.Event) error
}

// Logger writes audit events to the store and/or zap.
type Logger struct {
	store  EventStore
	zapLog *zap.Logger
	config Config
}

// New creates a Logger. store may be nil, in which case "db" output is
// skipped.
func New(store EventStore, zapLog *zap.Logger, config Config) *Logger {
	return &Logger{store: store, zapLog: zapLog, config: config}
}

func (l *Logger) logToZap(event audit.Event) {
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("category", event.Category),
		zap.String("event_type", event.EventType),
		zap.Bool("success", event.Success),
		zap.String("ip", event.IP),
	}
	if event.UserID != "" {
		fields = append(fields, zap.String("user_id", event.UserID))
	}
	if event.Email != "" {
		fields = append(fields, zap.String("email", event.Email))
	}
	if event.FailureReason != "" {
		fields = append(fields, zap.String("failure_reason", event.FailureReason))
	}
	for k, v := range event.Details {
		fields = append(fields, zap.String("detail_"+k, v))
	}

	if event.Success {
		l.zapLog.Info("audit event", fields...)
	} else {
		l.zapLog.Warn("audit event", fields...)
	}
}

// Log records event according to the category's mode. A nil Logger is a
// no-op so handlers can run without auditing in tests.
func (l *Logger) Log(ctx context.Context, event audit.Event) {
	if l == nil {
		return
	}

	var mode string
	switch event.Category {
	case audit.CategoryAuth:
		mode = l.config.Auth
	case audit.CategorySupport:
		mode = l.config.Support
	}
	if mode == "" {
		mode = ModeAll
	}
	if mode == ModeOff {
		return
	}

	if mode == ModeAll || mode == ModeLog {
		l.logToZap(event)
	}
	if (mode == ModeAll || mode == ModeDB) && l.store != nil {
		if err := l.store.Log(ctx, event); err != nil {
			l.zapLog.Error("failed to store audit event",
				zap.Error(err),
				zap.String("event_type", event.EventType),
			)
		}
	}
}

func fromRequest(r *http.Request, category, eventType string, success bool) audit.Event {
	return audit.Event{
		Category:  category,
		EventType: eventType,
		IP:        auth.ClientIP(r),
		UserAgent: r.UserAgent(),
		RequestID: r.Header.Get(apiclient.RequestIDHeader),
		Success:   success,
	}
}

// --- Authentication Events ---

// LoginSuccess records a completed sign-in.
func (l *Logger) LoginSuccess(ctx context.Context, r *http.Request, u *auth.SessionUser) {
	e := fromRequest(r, audit.CategoryAuth, audit.EventLoginSuccess, true)
	if u != nil {
		e.UserID, e.Email, e.Role = u.ID, u.Email, u.Role
		e.Details = map[string]string{"session_id": u.SessionID}
	}
	l.Log(ctx, e)
}

// LoginFailed records a rejected sign-in. eventType is one of the
// audit.EventLoginFailed* constants.
func (l *Logger) LoginFailed(ctx context.Context, r *http.Request, eventType, email, reason string) {
	e := fromRequest(r, audit.CategoryAuth, eventType, false)
	e.Email = email
	e.FailureReason = reason
	l.Log(ctx, e)
}

// Logout records a sign-out.
func (l *Logger) Logout(ctx context.Context, r *http.Request, u *auth.SessionUser) {
	e := fromRequest(r, audit.CategoryAuth, audit.EventLogout, true)
	if u != nil {
		e.UserID, e.Email, e.Role = u.ID, u.Email, u.Role
	}
	l.Log(ctx, e)
}

// SessionRejected records a stored token the backend refused.
func (l *Logger) SessionRejected(ctx context.Context, r *http.Request, u *auth.SessionUser) {
	e := fromRequest(r, audit.CategoryAuth, audit.EventSessionRejected, false)
	e.FailureReason = "token rejected by backend"
	if u != nil {
		e.UserID, e.Email, e.Role = u.ID, u.Email, u.Role
	}
	l.Log(ctx, e)
}

// --- Support Events ---

// ContactSubmitted records a contact or support submission. confirmation
// is the backend's reply message, when it sent one.
func (l *Logger) ContactSubmitted(ctx context.Context, r *http.Request, email, category, confirmation string) {
	e := fromRequest(r, audit.CategorySupport, audit.EventContactSubmitted, true)
	e.Email = email
	e.Details = map[string]string{"category": category}
	if confirmation != "" {
		e.Details["confirmation"] = confirmation
	}
	l.Log(ctx, e)
}

// ContactRateLimited records a submission turned away by the limiter.
func (l *Logger) ContactRateLimited(ctx context.Context, r *http.Request, email string) {
	e := fromRequest(r, audit.CategorySupport, audit.EventContactRateLimited, false)
	e.Email = email
	e.FailureReason = "rate limited"
	l.Log(ctx, e)
}
