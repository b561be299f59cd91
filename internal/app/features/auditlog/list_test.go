package auditlog

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/learnportal/internal/app/store/audit"
	"github.com/dalemusser/learnportal/internal/app/system/datatable"
	"github.com/dalemusser/learnportal/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type fakeEvents struct {
	events  []audit.Event
	err     error
	filters []audit.QueryFilter
}

func (f *fakeEvents) Query(_ context.Context, qf audit.QueryFilter) ([]audit.Event, error) {
	f.filters = append(f.filters, qf)
	if f.err != nil {
		return nil, f.err
	}
	end := min(int(qf.Offset+qf.Limit), len(f.events))
	if int(qf.Offset) >= end {
		return nil, nil
	}
	return f.events[qf.Offset:end], nil
}

func (f *fakeEvents) Count(context.Context, audit.QueryFilter) (int64, error) {
	return int64(len(f.events)), f.err
}

func events(n int) []audit.Event {
	out := make([]audit.Event, n)
	for i := range out {
		out[i] = audit.Event{
			ID:        primitive.NewObjectID(),
			Timestamp: time.Date(2026, 3, 1, 12, 0, i, 0, time.UTC),
			Category:  audit.CategoryAuth,
			EventType: audit.EventLoginSuccess,
			Email:     "kim@school.org",
			IP:        "10.0.0.1",
			Success:   true,
		}
	}
	return out
}

func TestParseFilters_DropsUnknownValues(t *testing.T) {
	r := testutil.NewRequest(http.MethodGet,
		"/audit?category=billing&event_type=contact_submitted&start_date=yesterday&end_date=2026-03-02")
	f := parseFilters(r)

	assert.Equal(t, "", f.Category)
	assert.Equal(t, audit.EventContactSubmitted, f.EventType, "valid for the all-categories list")
	assert.Equal(t, "", f.StartDate)
	assert.Equal(t, "2026-03-02", f.EndDate)
}

func TestParseFilters_EventMustBelongToCategory(t *testing.T) {
	r := testutil.NewRequest(http.MethodGet, "/audit?category=auth&event_type=contact_submitted")
	f := parseFilters(r)

	assert.Equal(t, audit.CategoryAuth, f.Category)
	assert.Equal(t, "", f.EventType)
}

func TestQueryFilter_OffsetAndInclusiveEnd(t *testing.T) {
	f := filters{Category: audit.CategoryAuth, StartDate: "2026-03-01", EndDate: "2026-03-02"}
	qf := f.queryFilter(datatable.FetchRequest{Page: 3, Limit: 20})

	assert.Equal(t, int64(20), qf.Limit)
	assert.Equal(t, int64(40), qf.Offset)
	require.NotNil(t, qf.Since)
	require.NotNil(t, qf.Until)
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), *qf.Since)
	assert.True(t, qf.Until.After(time.Date(2026, 3, 2, 23, 59, 59, 0, time.UTC)))
	assert.True(t, qf.Until.Before(time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC)))
}

func TestTable_PagesThroughStore(t *testing.T) {
	store := &fakeEvents{events: events(25)}
	h := NewHandler(store, 10, nil, zap.NewNop())

	r := testutil.NewRequest(http.MethodGet, "/audit?page=3")
	view := h.table(context.Background(), r, parseFilters(r))

	assert.Equal(t, datatable.DisplayRows, view.Mode)
	assert.Equal(t, 1, view.Window.CurrentPage, "no deps key yet, so the first load starts at page 1")
	assert.Len(t, view.Rows, 10)
	assert.Equal(t, 3, view.Window.TotalPages)
	require.Len(t, store.filters, 1)
	assert.Equal(t, int64(0), store.filters[0].Offset)
}

func TestTable_KeepsPageWhenFiltersUnchanged(t *testing.T) {
	store := &fakeEvents{events: events(25)}
	h := NewHandler(store, 10, nil, zap.NewNop())

	dk := datatable.DepsKey("", "", "", "")
	r := testutil.NewRequest(http.MethodGet, "/audit?page=3&"+datatable.DepsParam+"="+dk)
	view := h.table(context.Background(), r, parseFilters(r))

	assert.Equal(t, 3, view.Window.CurrentPage)
	assert.Len(t, view.Rows, 5)
	require.Len(t, store.filters, 1)
	assert.Equal(t, int64(20), store.filters[0].Offset)
}

func TestTable_StoreFailureShowsErrorState(t *testing.T) {
	store := &fakeEvents{err: errors.New("mongo down")}
	h := NewHandler(store, 10, nil, zap.NewNop())

	r := testutil.NewRequest(http.MethodGet, "/audit")
	view := h.table(context.Background(), r, parseFilters(r))

	assert.Equal(t, datatable.DisplayError, view.Mode)
	assert.Contains(t, view.Error, "mongo down")
	assert.Empty(t, view.Rows)
}

func TestColumns_RenderFailureReason(t *testing.T) {
	row := eventRow{EventType: audit.EventLoginFailedCredentials, Reason: "invalid <credentials>"}
	got := string(columns[4].Render(row))
	assert.Contains(t, got, "failed: invalid &lt;credentials&gt;")

	assert.Equal(t, "—", string(columns[2].Render(eventRow{})))
}
