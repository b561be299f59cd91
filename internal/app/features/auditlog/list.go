// internal/app/features/auditlog/list.go
package auditlog

import (
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"time"

	"github.com/dalemusser/learnportal/internal/app/features/shared"
	"github.com/dalemusser/learnportal/internal/app/store/audit"
	"github.com/dalemusser/learnportal/internal/app/system/datatable"
	"github.com/dalemusser/learnportal/internal/app/system/normalize"
	"github.com/dalemusser/learnportal/internal/app/system/paging"
	"github.com/dalemusser/learnportal/internal/app/system/timeouts"
	"github.com/dalemusser/learnportal/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

const (
	tableID   = "audit-table"
	listPath  = "/audit"
	dateParam = "2006-01-02"
)

// eventRow is one audit event as the table sees it.
type eventRow struct {
	ID        string    `json:"id"`
	Time      time.Time `json:"time"`
	Category  string    `json:"category"`
	EventType string    `json:"event_type"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	IP        string    `json:"ip"`
	Success   bool      `json:"success"`
	Reason    string    `json:"reason"`
}

type categoryOption struct {
	Value string
	Label string
}

var categories = []categoryOption{
	{"", "All categories"},
	{audit.CategoryAuth, "Sign-in"},
	{audit.CategorySupport, "Contact and support"},
}

// eventTypes lists the event types offered for a category; all of them
// when category is blank.
func eventTypes(category string) []string {
	auth := []string{
		audit.EventLoginSuccess,
		audit.EventLoginFailedCredentials,
		audit.EventLoginFailedRateLimit,
		audit.EventLoginFailedBackend,
		audit.EventLogout,
		audit.EventSessionRejected,
	}
	support := []string{
		audit.EventContactSubmitted,
		audit.EventContactRateLimited,
	}
	switch category {
	case audit.CategoryAuth:
		return auth
	case audit.CategorySupport:
		return support
	case "":
		return append(append([]string{}, auth...), support...)
	default:
		return nil
	}
}

// filters is the parsed filter bar.
type filters struct {
	Category  string
	EventType string
	StartDate string
	EndDate   string
}

func parseFilters(r *http.Request) filters {
	f := filters{
		Category:  normalize.FilterValue(query.Get(r, "category")),
		EventType: normalize.FilterValue(query.Get(r, "event_type")),
		StartDate: query.Get(r, "start_date"),
		EndDate:   query.Get(r, "end_date"),
	}
	if eventTypes(f.Category) == nil {
		f.Category = ""
	}
	valid := false
	for _, t := range eventTypes(f.Category) {
		if t == f.EventType {
			valid = true
			break
		}
	}
	if !valid {
		f.EventType = ""
	}
	if _, err := time.Parse(dateParam, f.StartDate); err != nil {
		f.StartDate = ""
	}
	if _, err := time.Parse(dateParam, f.EndDate); err != nil {
		f.EndDate = ""
	}
	return f
}

func (f filters) values() url.Values {
	v := url.Values{}
	for k, s := range map[string]string{
		"category":   f.Category,
		"event_type": f.EventType,
		"start_date": f.StartDate,
		"end_date":   f.EndDate,
	} {
		if s != "" {
			v.Set(k, s)
		}
	}
	return v
}

// queryFilter builds the store filter for one page. The end date is
// inclusive.
func (f filters) queryFilter(req datatable.FetchRequest) audit.QueryFilter {
	qf := audit.QueryFilter{
		Category:  f.Category,
		EventType: f.EventType,
		Limit:     int64(req.Limit),
		Offset:    int64((max(req.Page, 1) - 1) * req.Limit),
	}
	if t, err := time.Parse(dateParam, f.StartDate); err == nil {
		qf.Since = &t
	}
	if t, err := time.Parse(dateParam, f.EndDate); err == nil {
		end := t.Add(24*time.Hour - time.Nanosecond)
		qf.Until = &end
	}
	return qf
}

// fetchPage reads one page from the store and encodes it in the
// {rows, total} shape the table decodes.
func (h *Handler) fetchPage(f filters) datatable.FetchFunc {
	return func(ctx context.Context, req datatable.FetchRequest) ([]byte, error) {
		qf := f.queryFilter(req)
		events, err := h.Events.Query(ctx, qf)
		if err != nil {
			return nil, fmt.Errorf("query audit events: %w", err)
		}
		total, err := h.Events.Count(ctx, qf)
		if err != nil {
			return nil, fmt.Errorf("count audit events: %w", err)
		}
		rows := make([]eventRow, 0, len(events))
		for _, e := range events {
			rows = append(rows, eventRow{
				ID:        e.ID.Hex(),
				Time:      e.Timestamp,
				Category:  e.Category,
				EventType: e.EventType,
				Email:     e.Email,
				Role:      e.Role,
				IP:        e.IP,
				Success:   e.Success,
				Reason:    e.FailureReason,
			})
		}
		return json.Marshal(map[string]any{"rows": rows, "total": total})
	}
}

var columns = []datatable.Column[eventRow]{
	{Key: "time", Header: "When", ClassName: "nowrap", Render: func(e eventRow) template.HTML {
		return text(e.Time.UTC().Format("2006-01-02 15:04:05") + " UTC")
	}},
	{Key: "event_type", Header: "Event"},
	{Key: "email", Header: "Account", Render: func(e eventRow) template.HTML {
		if e.Email == "" {
			return text("—")
		}
		return text(e.Email)
	}},
	{Key: "ip", Header: "IP", ClassName: "mono"},
	{Key: "success", Header: "Result", Render: func(e eventRow) template.HTML {
		if e.Success {
			return template.HTML(`<span class="badge badge-active">ok</span>`)
		}
		msg := "failed"
		if e.Reason != "" {
			msg += ": " + e.Reason
		}
		return template.HTML(`<span class="badge badge-failed">` + template.HTMLEscapeString(msg) + `</span>`)
	}},
}

func text(s string) template.HTML {
	return template.HTML(template.HTMLEscapeString(s))
}

type listData struct {
	viewdata.BaseVM
	Filters    filters
	Categories []categoryOption
	EventTypes []string
	Table      datatable.View
}

// table loads the page of events that r asks for. A changed filter set
// starts again at page 1.
func (h *Handler) table(ctx context.Context, r *http.Request, f filters) datatable.View {
	tbl := datatable.NewServer(h.fetchPage(f), datatable.ServerConfig[eventRow]{
		ID:       tableID,
		Columns:  columns,
		RowKey:   func(e eventRow) string { return e.ID },
		PageSize: paging.ParsePageSize(r, h.PageSize),
		Path:     listPath,
		Empty:    "No events match these filters.",
		Log:      h.Log,
	})
	tbl.Restore(paging.ParsePage(r), query.Get(r, datatable.DepsParam))
	tbl.SetQuery(f.values())
	_, _ = tbl.SetDeps(ctx, f.Category, f.EventType, f.StartDate, f.EndDate)
	return tbl.View()
}

// ServeList handles GET /audit. HTMX requests aimed at the table get only
// the table back.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "audit log list")
	defer cancel()

	f := parseFilters(r)
	view := h.table(ctx, r, f)

	if shared.IsHTMX(r) && r.Header.Get("HX-Target") == tableID {
		templates.RenderSnippet(w, "datatable", view)
		return
	}

	h.Log.Debug("serving audit log", zap.Int("page", view.Window.CurrentPage), zap.String("category", f.Category))
	templates.Render(w, r, "auditlog_list", listData{
		BaseVM:     viewdata.NewBaseVM(r, "Audit log", "/admin"),
		Filters:    f,
		Categories: categories,
		EventTypes: eventTypes(f.Category),
		Table:      view,
	})
}
