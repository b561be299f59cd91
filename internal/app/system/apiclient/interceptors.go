// internal/app/system/apiclient/interceptors.go
package apiclient

import (
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Interceptor wraps the client's transport.
type Interceptor func(next http.RoundTripper) http.RoundTripper

// RoundTripperFunc adapts a function to http.RoundTripper.
type RoundTripperFunc func(*http.Request) (*http.Response, error)

func (f RoundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

// RequestIDHeader carries a per-call correlation id to the backend.
const RequestIDHeader = "X-Request-ID"

// RequestID sets X-Request-ID on requests that do not already have one.
func RequestID() Interceptor {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
			if r.Header.Get(RequestIDHeader) == "" {
				r = r.Clone(r.Context())
				r.Header.Set(RequestIDHeader, uuid.NewString())
			}
			return next.RoundTrip(r)
		})
	}
}

// Logging logs each call at Debug, failures at Warn.
func Logging(logger *zap.Logger) Interceptor {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
			start := time.Now()
			resp, err := next.RoundTrip(r)
			fields := []zap.Field{
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("request_id", r.Header.Get(RequestIDHeader)),
				zap.Duration("duration", time.Since(start)),
			}
			if err != nil {
				logger.Warn("api call failed", append(fields, zap.Error(err))...)
				return nil, err
			}
			logger.Debug("api call", append(fields, zap.Int("status", resp.StatusCode))...)
			return resp, nil
		})
	}
}

// IsHotReloadPath reports whether path belongs to a dev server's
// hot-module-reload traffic.
func IsHotReloadPath(path string) bool {
	switch {
	case strings.HasSuffix(path, "/__webpack_hmr"),
		strings.Contains(path, "/_next/webpack-hmr"),
		strings.HasSuffix(path, ".hot-update.json"),
		strings.HasSuffix(path, ".hot-update.js"):
		return true
	}
	return false
}

// SuppressDevErrors turns failed or 404 hot-reload requests into empty
// 204 responses. Everything else passes through untouched. Register it
// only outside production.
func SuppressDevErrors(logger *zap.Logger) Interceptor {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
			if !IsHotReloadPath(r.URL.Path) {
				return next.RoundTrip(r)
			}

			resp, err := next.RoundTrip(r)
			if err == nil && resp.StatusCode != http.StatusNotFound {
				return resp, nil
			}
			if resp != nil {
				_ = resp.Body.Close()
			}
			logger.Debug("suppressed hot-reload request failure",
				zap.String("path", r.URL.Path),
				zap.Error(err))
			return emptyResponse(r), nil
		})
	}
}

func emptyResponse(r *http.Request) *http.Response {
	return &http.Response{
		Status:        "204 No Content",
		StatusCode:    http.StatusNoContent,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        http.Header{},
		Body:          io.NopCloser(strings.NewReader("")),
		ContentLength: 0,
		Request:       r,
	}
}
