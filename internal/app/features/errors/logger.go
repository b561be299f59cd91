// internal/app/features/errors/logger.go
package errors

import (
	"errors"
	"net/http"

	"github.com/dalemusser/learnportal/internal/app/system/apiclient"
	"github.com/dalemusser/learnportal/internal/app/system/auth"
	"github.com/dalemusser/learnportal/internal/app/system/navigation"
	"github.com/dalemusser/waffle/pantry/httpnav"
	"go.uber.org/zap"
)

// ErrorLogger logs a handler failure with request context and renders the
// matching error page.
type ErrorLogger struct {
	Log *zap.Logger

	// OnUnauthorized, when set, runs before the sign-in redirect that
	// follows a 401 from the backend. Bootstrap uses it to end the local
	// session whose token was rejected.
	OnUnauthorized func(w http.ResponseWriter, r *http.Request)
}

func NewErrorLogger(logger *zap.Logger) *ErrorLogger {
	return &ErrorLogger{Log: logger}
}

func (e *ErrorLogger) fields(r *http.Request, err error) []zap.Field {
	f := []zap.Field{
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.String("request_id", r.Header.Get(apiclient.RequestIDHeader)),
		zap.Error(err),
	}
	if u, ok := auth.CurrentUser(r); ok && u != nil {
		f = append(f, zap.String("user_id", u.ID), zap.String("role", u.Role))
	}
	return f
}

// LogServerError logs at error level and renders a 500 page with userMsg.
func (e *ErrorLogger) LogServerError(w http.ResponseWriter, r *http.Request, msg string, err error, userMsg, backURL string) {
	e.Log.Error(msg, e.fields(r, err)...)
	HTMXError(w, r, http.StatusInternalServerError, userMsg, func() {
		RenderServerError(w, r, userMsg, backURL)
	})
}

// LogBadRequest logs at warn level and renders a 400 page with userMsg.
func (e *ErrorLogger) LogBadRequest(w http.ResponseWriter, r *http.Request, msg string, err error, userMsg, backURL string) {
	e.Log.Warn(msg, e.fields(r, err)...)
	HTMXError(w, r, http.StatusBadRequest, userMsg, func() {
		RenderBadRequest(w, r, userMsg, backURL)
	})
}

// LogAPIError handles a failed backend call. A 401 means the stored token
// was rejected, so the user is sent to sign in again. A 403 or 404 renders
// the matching page. Anything else is a server error.
func (e *ErrorLogger) LogAPIError(w http.ResponseWriter, r *http.Request, msg string, err error, userMsg, backURL string) {
	switch {
	case errors.Is(err, apiclient.ErrUnauthorized):
		e.Log.Info(msg, e.fields(r, err)...)
		if e.OnUnauthorized != nil {
			e.OnUnauthorized(w, r)
		}
		login := navigation.LoginURL(httpnav.CurrentPath(r))
		if r.Header.Get("HX-Request") == "true" {
			w.Header().Set("HX-Redirect", login)
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		http.Redirect(w, r, login, http.StatusSeeOther)
	case errors.Is(err, apiclient.ErrForbidden):
		e.Log.Warn(msg, e.fields(r, err)...)
		HTMXError(w, r, http.StatusForbidden, "You don't have access to that.", func() {
			RenderForbidden(w, r, "You don't have access to that.", backURL)
		})
	case errors.Is(err, apiclient.ErrNotFound):
		e.Log.Warn(msg, e.fields(r, err)...)
		HTMXError(w, r, http.StatusNotFound, "That item no longer exists.", func() {
			RenderNotFound(w, r, "That item no longer exists.", backURL)
		})
	default:
		e.LogServerError(w, r, msg, err, userMsg, backURL)
	}
}
