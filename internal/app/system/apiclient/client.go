// internal/app/system/apiclient/client.go
//
// Package apiclient is the typed client for the learning platform's REST
// backend. Every call returns the backend's {success, data, message, error}
// envelope or an *Error.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

// maxBody caps how much of a response we read.
const maxBody = 4 << 20

var (
	// ErrUnauthorized is wrapped by *Error for 401 responses.
	ErrUnauthorized = errors.New("apiclient: unauthorized")
	// ErrForbidden is wrapped by *Error for 403 responses.
	ErrForbidden = errors.New("apiclient: forbidden")
	// ErrNotFound is wrapped by *Error for 404 responses.
	ErrNotFound = errors.New("apiclient: not found")
)

// Envelope is the backend's response wrapper. Raw holds the full body.
type Envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Message string          `json:"message,omitempty"`
	Error   string          `json:"error,omitempty"`

	Status int             `json:"-"`
	Raw    json.RawMessage `json:"-"`
}

// Error is a failed call: a non-2xx status or success:false.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api error: %d %s", e.Status, http.StatusText(e.Status))
	}
	return fmt.Sprintf("api error: %d: %s", e.Status, e.Message)
}

func (e *Error) Unwrap() error {
	switch e.Status {
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusForbidden:
		return ErrForbidden
	case http.StatusNotFound:
		return ErrNotFound
	}
	return nil
}

// Options configures a Client.
type Options struct {
	BaseURL      string
	Timeout      time.Duration
	Interceptors []Interceptor
	Transport    http.RoundTripper // defaults to http.DefaultTransport
	Log          *zap.Logger
}

// Client talks to the REST backend. It is safe for concurrent use.
type Client struct {
	base      *url.URL
	transport http.RoundTripper
	http      *http.Client
	timeout   time.Duration
	log       *zap.Logger
	token     string
}

// New builds a Client. Interceptors wrap the transport in order, so the
// first one sees the request first.
func New(opts Options) (*Client, error) {
	u, err := url.Parse(strings.TrimSpace(opts.BaseURL))
	if err != nil {
		return nil, fmt.Errorf("apiclient: parse base url: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("apiclient: base url %q must be absolute http(s)", opts.BaseURL)
	}

	rt := opts.Transport
	if rt == nil {
		rt = http.DefaultTransport
	}
	for i := len(opts.Interceptors) - 1; i >= 0; i-- {
		rt = opts.Interceptors[i](rt)
	}

	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}

	return &Client{
		base:      u,
		transport: rt,
		http:      &http.Client{Transport: rt, Timeout: opts.Timeout},
		timeout:   opts.Timeout,
		log:       opts.Log,
	}, nil
}

// WithToken returns a copy of c that sends token as a bearer credential.
func (c *Client) WithToken(token string) *Client {
	cp := *c
	cp.token = token
	cp.http = &http.Client{
		Timeout: c.timeout,
		Transport: &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"}),
			Base:   c.transport,
		},
	}
	return &cp
}

// Authenticated reports whether c carries a bearer token.
func (c *Client) Authenticated() bool { return c.token != "" }

// Get issues a GET.
func (c *Client) Get(ctx context.Context, path string, params url.Values) (*Envelope, error) {
	return c.do(ctx, http.MethodGet, path, params, nil)
}

// Post issues a POST with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body any) (*Envelope, error) {
	return c.do(ctx, http.MethodPost, path, nil, body)
}

// Patch issues a PATCH with a JSON body.
func (c *Client) Patch(ctx context.Context, path string, body any) (*Envelope, error) {
	return c.do(ctx, http.MethodPatch, path, nil, body)
}

// Delete issues a DELETE.
func (c *Client) Delete(ctx context.Context, path string, params url.Values) (*Envelope, error) {
	return c.do(ctx, http.MethodDelete, path, params, nil)
}

func (c *Client) endpoint(path string, params url.Values) string {
	u := *c.base
	u.Path = strings.TrimRight(c.base.Path, "/") + "/" + strings.TrimLeft(path, "/")
	u.RawQuery = ""
	if len(params) > 0 {
		u.RawQuery = params.Encode()
	}
	return u.String()
}

func (c *Client) do(ctx context.Context, method, path string, params url.Values, body any) (*Envelope, error) {
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("apiclient: encode %s %s: %w", method, path, err)
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path, params), rdr)
	if err != nil {
		return nil, fmt.Errorf("apiclient: build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("apiclient: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("apiclient: read %s %s: %w", method, path, err)
	}

	return decodeEnvelope(resp.StatusCode, raw)
}

func decodeEnvelope(status int, raw []byte) (*Envelope, error) {
	ok := status >= 200 && status < 300
	env := &Envelope{Status: status, Raw: raw, Success: ok}

	if len(bytes.TrimSpace(raw)) > 0 {
		var probe struct {
			Success *bool           `json:"success"`
			Data    json.RawMessage `json:"data"`
			Message string          `json:"message"`
			Error   string          `json:"error"`
		}
		if err := json.Unmarshal(raw, &probe); err == nil {
			env.Data = probe.Data
			env.Message = probe.Message
			env.Error = probe.Error
			if probe.Success != nil {
				env.Success = ok && *probe.Success
			}
			if probe.Success == nil && probe.Data == nil {
				// Not enveloped; the whole body is the payload.
				env.Data = raw
			}
		} else if ok {
			env.Data = raw
		}
	}

	if !env.Success {
		msg := env.Error
		if msg == "" {
			msg = env.Message
		}
		return env, &Error{Status: status, Message: msg}
	}
	return env, nil
}

// Decode unmarshals the envelope's data into v.
func (e *Envelope) Decode(v any) error {
	if len(e.Data) == 0 || bytes.Equal(bytes.TrimSpace(e.Data), []byte("null")) {
		return fmt.Errorf("apiclient: empty data")
	}
	if err := json.Unmarshal(e.Data, v); err != nil {
		return fmt.Errorf("apiclient: decode data: %w", err)
	}
	return nil
}
