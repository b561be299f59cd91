// internal/app/system/datatable/server.go
package datatable

import (
	"context"
	"errors"
	"net/url"
	"sync"

	"github.com/dalemusser/learnportal/internal/app/system/paging"
	"github.com/dalemusser/learnportal/internal/app/system/rowset"
	"go.uber.org/zap"
)

// FetchRequest is what a FetchFunc is asked for.
type FetchRequest struct {
	Page  int
	Limit int
}

// FetchFunc returns the raw response body for one page. Any of the shapes
// rowset understands is accepted.
type FetchFunc func(ctx context.Context, req FetchRequest) ([]byte, error)

// State is the lifecycle of a Server table.
type State int

const (
	StateIdle State = iota
	StateLoading
	StateSuccess
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateSuccess:
		return "success"
	case StateFailed:
		return "failed"
	default:
		return "idle"
	}
}

// ErrSuperseded is returned by Load when a newer load started before this
// one finished. Its result was discarded.
var ErrSuperseded = errors.New("datatable: load superseded by a newer request")

// ServerConfig holds the static parts of a Server table.
type ServerConfig[T any] struct {
	ID       string
	Columns  []Column[T]
	RowKey   func(T) string
	PageSize int
	Path     string
	Empty    string
	Log      *zap.Logger
}

// Server owns page state and pulls rows through a FetchFunc.
//
// Every load takes a generation number; only the newest generation may
// commit its result, so a slow response for an old page never overwrites
// a newer one. Fetch and normalization failures never escape as panics or
// page errors: they become the table's error state with no rows.
type Server[T any] struct {
	cfg   ServerConfig[T]
	fetch FetchFunc

	mu      sync.Mutex
	page    int
	depsKey string
	gen     uint64
	state   State
	rows    []T
	total   int
	errMsg  string
	query   url.Values
}

// NewServer returns an idle table on page 1.
func NewServer[T any](fetch FetchFunc, cfg ServerConfig[T]) *Server[T] {
	if cfg.PageSize < 1 {
		cfg.PageSize = paging.DefaultPageSize
	}
	if cfg.Log == nil {
		cfg.Log = zap.NewNop()
	}
	if cfg.Empty == "" {
		cfg.Empty = defaultEmpty
	}
	return &Server[T]{cfg: cfg, fetch: fetch, page: 1, rows: []T{}}
}

// Restore seeds page and dependency key without loading, e.g. from the
// query string of a pager link.
func (s *Server[T]) Restore(page int, depsKey string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.page = max(page, 1)
	s.depsKey = depsKey
}

// Page returns the current page.
func (s *Server[T]) Page() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.page
}

// DepsKey returns the fingerprint of the current dependency list.
func (s *Server[T]) DepsKey() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.depsKey
}

// State returns the current lifecycle state.
func (s *Server[T]) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// SetQuery records the filter parameters pager links must carry.
func (s *Server[T]) SetQuery(q url.Values) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.query = q
}

// SetDeps replaces the dependency list. When it differs from the current
// one the page resets to 1 before the load starts. It reports whether the
// dependencies changed; nothing is loaded when they did not.
func (s *Server[T]) SetDeps(ctx context.Context, deps ...any) (bool, error) {
	key := DepsKey(deps...)

	s.mu.Lock()
	if key == s.depsKey && s.state != StateIdle {
		s.mu.Unlock()
		return false, nil
	}
	changed := key != s.depsKey
	s.depsKey = key
	if changed {
		s.page = 1
	}
	s.mu.Unlock()

	return changed, s.Load(ctx)
}

// SetPage moves to page n (values below 1 become 1) and loads it.
// Setting the current page again after a load is a no-op.
func (s *Server[T]) SetPage(ctx context.Context, n int) error {
	n = max(n, 1)

	s.mu.Lock()
	if n == s.page && s.state != StateIdle {
		s.mu.Unlock()
		return nil
	}
	s.page = n
	s.mu.Unlock()

	return s.Load(ctx)
}

// Load fetches the current page. The returned error is informational:
// the table state already reflects it.
//
// A page past the end (a stale pager link after rows went away) comes back
// empty with a non-zero total; the table then moves to the last page and
// loads once more.
func (s *Server[T]) Load(ctx context.Context) error {
	if err := s.load(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	last := paging.Compute(s.page, s.cfg.PageSize, s.total).TotalPages
	overrun := len(s.rows) == 0 && s.total > 0 && s.page > last
	if overrun {
		s.cfg.Log.Debug("table page past the end",
			zap.String("table", s.cfg.ID),
			zap.Int("page", s.page),
			zap.Int("last", last))
		s.page = last
	}
	s.mu.Unlock()

	if !overrun {
		return nil
	}
	return s.load(ctx)
}

func (s *Server[T]) load(ctx context.Context) error {
	s.mu.Lock()
	s.gen++
	gen := s.gen
	req := FetchRequest{Page: s.page, Limit: s.cfg.PageSize}
	s.state = StateLoading
	s.mu.Unlock()

	var (
		rs  rowset.RowSet[T]
		err error
	)
	body, err := s.fetch(ctx, req)
	if err == nil {
		rs, err = rowset.Decode[T](body)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.gen {
		s.cfg.Log.Debug("discarding stale table load",
			zap.String("table", s.cfg.ID),
			zap.Int("page", req.Page),
			zap.Uint64("gen", gen),
			zap.Uint64("latest", s.gen))
		return ErrSuperseded
	}

	if err != nil {
		s.state = StateFailed
		s.errMsg = err.Error()
		s.rows = []T{}
		s.total = 0
		s.cfg.Log.Warn("table load failed",
			zap.String("table", s.cfg.ID),
			zap.Int("page", req.Page),
			zap.Error(err))
		return err
	}

	s.state = StateSuccess
	s.errMsg = ""
	s.rows = rs.Rows
	s.total = rs.Total
	return nil
}

// Rows returns a copy of the committed rows.
func (s *Server[T]) Rows() []T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]T(nil), s.rows...)
}

// Total returns the committed total.
func (s *Server[T]) Total() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.total
}

// Err returns the message of the last failed load, or "".
func (s *Server[T]) Err() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.errMsg
}

// View renders the committed state.
func (s *Server[T]) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	q := url.Values{}
	for k, vals := range s.query {
		q[k] = append([]string(nil), vals...)
	}
	if s.depsKey != "" {
		q.Set(DepsParam, s.depsKey)
	}

	w := paging.Compute(s.page, s.cfg.PageSize, s.total)
	v := View{
		ID:      s.cfg.ID,
		Headers: headers(s.cfg.Columns),
		Window:  w,
		Error:   s.errMsg,
		Empty:   s.cfg.Empty,
		Path:    s.cfg.Path,
		Query:   q,
	}

	switch {
	case (s.state == StateLoading || s.state == StateIdle) && len(s.rows) == 0:
		v.Mode = DisplayLoading
	case s.state == StateFailed:
		v.Mode = DisplayError
	case len(s.rows) == 0:
		v.Mode = DisplayEmpty
	default:
		v.Mode = DisplayRows
		v.Rows = renderRows(s.rows, s.cfg.Columns, s.cfg.RowKey, w.StartIndex)
	}
	return v
}
