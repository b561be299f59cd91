package apiclient_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dalemusser/learnportal/internal/app/system/apiclient"
	"github.com/dalemusser/learnportal/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestRequestID(t *testing.T) {
	api := testutil.NewFakeAPI(t)
	api.JSON("GET", "/api/v1/health", http.StatusOK, map[string]any{"status": "ok"})

	c := newClient(t, api, apiclient.RequestID())
	require.NoError(t, c.Health(context.Background()))

	reqs := api.Requests("GET", "/api/v1/health")
	require.Len(t, reqs, 1)
	_, err := uuid.Parse(reqs[0].Header.Get(apiclient.RequestIDHeader))
	assert.NoError(t, err)
}

func TestRequestID_KeepsExisting(t *testing.T) {
	var seen string
	rt := apiclient.RequestID()(apiclient.RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
		seen = r.Header.Get(apiclient.RequestIDHeader)
		return &http.Response{StatusCode: 200, Body: io.NopCloser(strings.NewReader(""))}, nil
	}))

	req := httptest.NewRequest("GET", "http://api/x", nil)
	req.Header.Set(apiclient.RequestIDHeader, "fixed")
	_, err := rt.RoundTrip(req)
	require.NoError(t, err)
	assert.Equal(t, "fixed", seen)
}

func TestLogging(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	api := testutil.NewFakeAPI(t)
	api.JSON("GET", "/api/v1/health", http.StatusOK, map[string]any{})

	c := newClient(t, api, apiclient.Logging(zap.New(core)))
	require.NoError(t, c.Health(context.Background()))

	entries := logs.FilterMessage("api call").All()
	require.Len(t, entries, 1)
	assert.Equal(t, int64(200), entries[0].ContextMap()["status"])
	assert.Equal(t, "/api/v1/health", entries[0].ContextMap()["path"])
}

func TestIsHotReloadPath(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"/__webpack_hmr", true},
		{"/app/__webpack_hmr", true},
		{"/_next/webpack-hmr", true},
		{"/static/main.abc123.hot-update.json", true},
		{"/static/main.abc123.hot-update.js", true},
		{"/api/v1/users", false},
		{"/static/main.js", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, apiclient.IsHotReloadPath(tt.path), tt.path)
	}
}

func TestSuppressDevErrors(t *testing.T) {
	failing := apiclient.RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
		return nil, errors.New("connection refused")
	})
	notFound := apiclient.RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
		return &http.Response{StatusCode: http.StatusNotFound, Body: io.NopCloser(strings.NewReader("missing"))}, nil
	})
	ok := apiclient.RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
		return &http.Response{StatusCode: http.StatusOK, Body: io.NopCloser(strings.NewReader("{}"))}, nil
	})

	suppress := apiclient.SuppressDevErrors(zap.NewNop())

	t.Run("transport error on hmr path becomes 204", func(t *testing.T) {
		resp, err := suppress(failing).RoundTrip(httptest.NewRequest("GET", "http://dev/__webpack_hmr", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	})

	t.Run("404 on hot-update becomes 204", func(t *testing.T) {
		resp, err := suppress(notFound).RoundTrip(httptest.NewRequest("GET", "http://dev/x.hot-update.json", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	})

	t.Run("success on hmr path passes through", func(t *testing.T) {
		resp, err := suppress(ok).RoundTrip(httptest.NewRequest("GET", "http://dev/__webpack_hmr", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("other paths keep their errors", func(t *testing.T) {
		_, err := suppress(failing).RoundTrip(httptest.NewRequest("GET", "http://dev/api/v1/users", nil))
		assert.Error(t, err)

		resp, err := suppress(notFound).RoundTrip(httptest.NewRequest("GET", "http://dev/api/v1/users", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestInterceptorOrder(t *testing.T) {
	var order []string
	mark := func(name string) apiclient.Interceptor {
		return func(next http.RoundTripper) http.RoundTripper {
			return apiclient.RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
				order = append(order, name)
				return next.RoundTrip(r)
			})
		}
	}

	api := testutil.NewFakeAPI(t)
	api.JSON("GET", "/api/v1/health", http.StatusOK, map[string]any{})
	c := newClient(t, api, mark("first"), mark("second"))
	require.NoError(t, c.Health(context.Background()))
	assert.Equal(t, []string{"first", "second"}, order)
}
