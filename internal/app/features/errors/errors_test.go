package errors

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/learnportal/internal/app/system/apiclient"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogAPIError_UnauthorizedRedirectsToLogin(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	el := NewErrorLogger(zap.New(core))

	r := httptest.NewRequest("GET", "/admin?page=3", nil)
	w := httptest.NewRecorder()
	el.LogAPIError(w, r, "load users failed", &apiclient.Error{Status: http.StatusUnauthorized}, "x", "/")

	if w.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", w.Code)
	}
	if got := w.Header().Get("Location"); got != "/login?return=%2Fadmin%3Fpage%3D3" {
		t.Errorf("Location = %q", got)
	}
	if logs.Len() != 1 {
		t.Errorf("expected one log entry, got %d", logs.Len())
	}
}

func TestLogAPIError_UnauthorizedHTMX(t *testing.T) {
	el := NewErrorLogger(zap.NewNop())

	r := httptest.NewRequest("GET", "/admin", nil)
	r.Header.Set("HX-Request", "true")
	w := httptest.NewRecorder()
	el.LogAPIError(w, r, "load users failed", &apiclient.Error{Status: http.StatusUnauthorized}, "x", "/")

	if got := w.Header().Get("HX-Redirect"); got != "/login?return=%2Fadmin" {
		t.Errorf("HX-Redirect = %q", got)
	}
}

func TestHTMXError_CallsFullForPlainRequests(t *testing.T) {
	called := false
	r := httptest.NewRequest("GET", "/", nil)
	HTMXError(httptest.NewRecorder(), r, http.StatusTeapot, "msg", func() { called = true })
	if !called {
		t.Error("expected fallback to run")
	}
}

func TestLogAPIError_UnauthorizedRunsHook(t *testing.T) {
	el := NewErrorLogger(zap.NewNop())
	hooked := false
	el.OnUnauthorized = func(http.ResponseWriter, *http.Request) { hooked = true }

	r := httptest.NewRequest("GET", "/teacher", nil)
	el.LogAPIError(httptest.NewRecorder(), r, "load courses failed", &apiclient.Error{Status: http.StatusUnauthorized}, "x", "/")
	if !hooked {
		t.Error("OnUnauthorized was not called")
	}
}
