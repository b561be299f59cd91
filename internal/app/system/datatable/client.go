// internal/app/system/datatable/client.go
package datatable

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/dalemusser/learnportal/internal/app/system/paging"
)

// ErrRowsPreSliced means the caller declared more rows than it handed over,
// so the rows are most likely one page rather than the full set.
var ErrRowsPreSliced = errors.New("datatable: rows shorter than declared total")

// Client paginates a full in-memory row set.
//
// Rows must be the complete collection. Page is owned by the caller and
// is clamped for display; changing it is done by following PageURL.
type Client[T any] struct {
	ID       string
	Columns  []Column[T]
	RowKey   func(T) string
	Rows     []T
	Page     int
	PageSize int

	// Total, when non-zero, is the count the caller believes Rows holds.
	// A mismatch is reported instead of rendering misaligned pages.
	Total int

	Path  string
	Query url.Values
	Empty string
}

// View slices the current page out of Rows and renders it. On error the
// returned view is still drawable, in its error state.
func (c Client[T]) View() (View, error) {
	if c.Total > len(c.Rows) {
		err := fmt.Errorf("%w: have %d, declared %d", ErrRowsPreSliced, len(c.Rows), c.Total)
		return View{
			ID:      c.ID,
			Headers: headers(c.Columns),
			Mode:    DisplayError,
			Error:   err.Error(),
			Path:    c.Path,
			Query:   c.Query,
		}, err
	}

	size := c.PageSize
	if size < 1 {
		size = paging.DefaultPageSize
	}
	w := paging.Compute(c.Page, size, len(c.Rows))
	page := c.Rows[w.StartIndex:w.EndIndex]

	v := View{
		ID:      c.ID,
		Headers: headers(c.Columns),
		Rows:    renderRows(page, c.Columns, c.RowKey, w.StartIndex),
		Window:  w,
		Mode:    DisplayRows,
		Empty:   c.Empty,
		Path:    c.Path,
		Query:   c.Query,
	}
	if v.Empty == "" {
		v.Empty = defaultEmpty
	}
	if len(c.Rows) == 0 {
		v.Mode = DisplayEmpty
	}
	return v, nil
}
