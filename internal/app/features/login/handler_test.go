package login_test

import (
	"net/http"
	"net/url"
	"testing"
	"time"

	uierrors "github.com/dalemusser/learnportal/internal/app/features/errors"
	"github.com/dalemusser/learnportal/internal/app/features/login"
	"github.com/dalemusser/learnportal/internal/app/system/apiclient"
	"github.com/dalemusser/learnportal/internal/app/system/ratelimit"
	"github.com/dalemusser/learnportal/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type env struct {
	h    *login.Handler
	api  *testutil.FakeAPI
	recs *testutil.MemSessions
}

func newEnv(t *testing.T, guard *ratelimit.Guard) env {
	t.Helper()
	fake := testutil.NewFakeAPI(t)
	api, err := apiclient.New(apiclient.Options{BaseURL: fake.URL})
	require.NoError(t, err)
	sm, recs := testutil.NewSessionManager(t)
	logger := zap.NewNop()
	h := login.NewHandler(api, sm, guard, nil, uierrors.NewErrorLogger(logger), logger)
	return env{h: h, api: fake, recs: recs}
}

func post(h *login.Handler, form url.Values) *testutil.ResponseRecorder {
	rec := testutil.NewRecorder()
	req := testutil.NewFormRequest("/login", form.Encode())
	testutil.Serve(h.HandleLoginPost, rec, req)
	return rec
}

func creds(email string) url.Values {
	return url.Values{"email": {email}, "password": {"correct horse"}}
}

func loginOK(t *testing.T, fake *testutil.FakeAPI, role any) {
	t.Helper()
	tok := testutil.Token(t, "7", time.Now().Add(time.Hour))
	fake.JSON(http.MethodPost, apiclient.PathLogin, http.StatusOK, testutil.Envelope(map[string]any{
		"token": tok,
		"user":  map[string]any{"id": 7, "name": "Ada Lovelace", "email": "ada@example.com", "role": role},
	}))
}

func hasSessionCookie(rec *testutil.ResponseRecorder) bool {
	for _, c := range rec.Result().Cookies() {
		if c.Name == testutil.SessionCookie && c.MaxAge >= 0 {
			return true
		}
	}
	return false
}

func TestHandleLoginPost_RedirectsToRoleDashboard(t *testing.T) {
	tests := []struct {
		name string
		role any
		want string
	}{
		{"object role", map[string]any{"name": "Teacher"}, "/teacher"},
		{"string role", "Super Admin", "/admin"},
		{"student", "student", "/student"},
		{"unknown role", "janitor", "/"},
		{"no role", nil, "/"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEnv(t, nil)
			loginOK(t, e.api, tt.role)

			rec := post(e.h, creds("ada@example.com"))

			rec.AssertRedirect(t, tt.want)
			assert.True(t, hasSessionCookie(rec), "expected session cookie")
			assert.Len(t, e.recs.All(), 1)
		})
	}
}

func TestHandleLoginPost_SendsNormalizedEmail(t *testing.T) {
	e := newEnv(t, nil)
	loginOK(t, e.api, "teacher")

	post(e.h, creds("  Ada@Example.COM "))

	calls := e.api.Requests(http.MethodPost, apiclient.PathLogin)
	require.Len(t, calls, 1)
	assert.JSONEq(t, `{"email":"ada@example.com","password":"correct horse"}`, string(calls[0].Body))
}

func TestHandleLoginPost_HonorsSafeReturn(t *testing.T) {
	tests := []struct {
		name   string
		ret    string
		expect string
	}{
		{"same-site path", "/teacher?page=2", "/teacher?page=2"},
		{"external url", "https://evil.example/", "/teacher"},
		{"login loop", "/login", "/teacher"},
		{"logout", "/logout", "/teacher"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEnv(t, nil)
			loginOK(t, e.api, "teacher")

			form := creds("ada@example.com")
			form.Set("return", tt.ret)
			rec := post(e.h, form)

			rec.AssertRedirect(t, tt.expect)
		})
	}
}

func TestHandleLoginPost_HTMXUsesHXRedirect(t *testing.T) {
	e := newEnv(t, nil)
	loginOK(t, e.api, "student")

	rec := testutil.NewRecorder()
	req := testutil.NewFormRequest("/login", creds("ada@example.com").Encode())
	req.Header.Set("HX-Request", "true")
	testutil.Serve(e.h.HandleLoginPost, rec, req)

	rec.AssertStatus(t, http.StatusOK)
	assert.Equal(t, "/student", rec.Header().Get("HX-Redirect"))
}

func TestHandleLoginPost_TokenOnlyResponseAsksWhoAmI(t *testing.T) {
	e := newEnv(t, nil)
	tok := testutil.Token(t, "9", time.Now().Add(time.Hour))
	e.api.JSON(http.MethodPost, apiclient.PathLogin, http.StatusOK, testutil.Envelope(map[string]any{"access_token": tok}))
	e.api.JSON(http.MethodGet, apiclient.PathMe, http.StatusOK, testutil.Envelope(map[string]any{
		"user": map[string]any{"id": 9, "name": "Grace", "role": map[string]any{"name": "Admin"}},
	}))

	rec := post(e.h, creds("grace@example.com"))

	rec.AssertRedirect(t, "/admin")
	me := e.api.Requests(http.MethodGet, apiclient.PathMe)
	require.Len(t, me, 1)
	assert.Equal(t, "Bearer "+tok, me[0].Header.Get("Authorization"))
}

func TestHandleLoginPost_InvalidCredentials(t *testing.T) {
	e := newEnv(t, nil)
	e.api.JSON(http.MethodPost, apiclient.PathLogin, http.StatusUnauthorized,
		map[string]any{"success": false, "error": "bad credentials"})

	rec := post(e.h, creds("ada@example.com"))

	rec.AssertStatus(t, http.StatusUnauthorized)
	assert.False(t, hasSessionCookie(rec))
	assert.Empty(t, e.recs.All())
}

func TestHandleLoginPost_BackendDown(t *testing.T) {
	e := newEnv(t, nil)
	e.api.JSON(http.MethodPost, apiclient.PathLogin, http.StatusInternalServerError,
		map[string]any{"success": false, "error": "boom"})

	rec := post(e.h, creds("ada@example.com"))

	rec.AssertStatus(t, http.StatusBadGateway)
	assert.Empty(t, e.recs.All())
}

func TestHandleLoginPost_ExpiredTokenRefused(t *testing.T) {
	e := newEnv(t, nil)
	tok := testutil.Token(t, "7", time.Now().Add(-time.Minute))
	e.api.JSON(http.MethodPost, apiclient.PathLogin, http.StatusOK, testutil.Envelope(map[string]any{
		"token": tok,
		"user":  map[string]any{"id": 7, "role": "teacher"},
	}))

	rec := post(e.h, creds("ada@example.com"))

	rec.AssertStatus(t, http.StatusBadGateway)
	assert.Empty(t, e.recs.All())
}

func TestHandleLoginPost_ValidationSkipsBackend(t *testing.T) {
	tests := []struct {
		name string
		form url.Values
	}{
		{"missing email", url.Values{"password": {"x"}}},
		{"bad email", url.Values{"email": {"not-an-email"}, "password": {"x"}}},
		{"missing password", url.Values{"email": {"ada@example.com"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEnv(t, nil)

			rec := post(e.h, tt.form)

			rec.AssertStatus(t, http.StatusUnprocessableEntity)
			assert.Empty(t, e.api.Requests(http.MethodPost, apiclient.PathLogin))
		})
	}
}

func TestHandleLoginPost_RateLimitedPerEmail(t *testing.T) {
	e := newEnv(t, ratelimit.NewGuard(ratelimit.Limits{LoginPerEmail: 1}))
	e.api.JSON(http.MethodPost, apiclient.PathLogin, http.StatusUnauthorized,
		map[string]any{"success": false, "error": "bad credentials"})

	post(e.h, creds("ada@example.com"))
	rec := post(e.h, creds("ADA@example.com"))

	rec.AssertStatus(t, http.StatusTooManyRequests)
	assert.Len(t, e.api.Requests(http.MethodPost, apiclient.PathLogin), 1)
}

func TestServeLogin_SignedInGoesToDashboard(t *testing.T) {
	e := newEnv(t, nil)

	rec := testutil.NewRecorder()
	req := testutil.NewAuthenticatedRequest(http.MethodGet, "/login", testutil.TeacherUser())
	testutil.Serve(e.h.ServeLogin, rec, req)

	rec.AssertRedirect(t, "/teacher")
}
