package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/dalemusser/learnportal/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// Check is one dependency probed by /health. A failing Required check makes
// the whole endpoint report 503; an optional one only marks it degraded.
type Check struct {
	Name     string
	Required bool
	Ping     func(ctx context.Context) error
}

// Handler holds the checks to run.
type Handler struct {
	Checks []Check
	Log    *zap.Logger
}

func NewHandler(logger *zap.Logger, checks ...Check) *Handler {
	return &Handler{Checks: checks, Log: logger}
}

type componentStatus struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type healthResponse struct {
	Status     string                     `json:"status"`
	Components map[string]componentStatus `json:"components"`
}

// Serve handles GET /health.
//
// All checks pass: 200 and
//
//	{ "status":"ok", "components":{"database":{"status":"up"}, ...} }
//
// An optional check fails: 200 with "status":"degraded".
// A required check fails: 503 with "status":"error".
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Ping())
	defer cancel()

	resp := healthResponse{Status: "ok", Components: make(map[string]componentStatus, len(h.Checks))}
	code := http.StatusOK

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	for _, c := range h.Checks {
		wg.Add(1)
		go func(c Check) {
			defer wg.Done()
			err := c.Ping(ctx)

			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				resp.Components[c.Name] = componentStatus{Status: "up"}
				return
			}
			h.Log.Error("health-check failed", zap.String("component", c.Name), zap.Error(err))
			resp.Components[c.Name] = componentStatus{Status: "down", Error: err.Error()}
			if c.Required {
				resp.Status = "error"
				code = http.StatusServiceUnavailable
			} else if resp.Status == "ok" {
				resp.Status = "degraded"
			}
		}(c)
	}
	wg.Wait()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(resp)
}
