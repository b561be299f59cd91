// internal/app/system/paging/paging.go
package paging

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/dalemusser/waffle/pantry/query"
)

// DefaultPageSize is the number of rows shown in dashboard tables.
const DefaultPageSize = 10

// MaxPageSize caps a caller-supplied ?limit= and bounds the configured
// table_page_size.
const MaxPageSize = 200

// WindowWidth is how many page-number buttons the pager shows at most.
const WindowWidth = 5

// Window is the computed state of a pager for one render.
//
// StartIndex and EndIndex are 0-based slice bounds into the full row set
// (EndIndex exclusive). VisiblePages are the page-number buttons, in order.
type Window struct {
	CurrentPage  int
	TotalPages   int
	StartIndex   int
	EndIndex     int
	VisiblePages []int

	PageSize   int
	TotalItems int
}

// Compute builds a Window. Nothing is rejected: page is clamped into
// [1, TotalPages], a non-positive pageSize is treated as 1 and a negative
// total as 0.
func Compute(page, pageSize, totalItems int) Window {
	if pageSize < 1 {
		pageSize = 1
	}
	if totalItems < 0 {
		totalItems = 0
	}

	totalPages := (totalItems + pageSize - 1) / pageSize
	if totalPages < 1 {
		totalPages = 1
	}
	current := min(max(page, 1), totalPages)

	var start, end int
	if totalItems > 0 {
		start = (current - 1) * pageSize
		end = min(start+pageSize, totalItems)
	}

	return Window{
		CurrentPage:  current,
		TotalPages:   totalPages,
		StartIndex:   start,
		EndIndex:     end,
		VisiblePages: visiblePages(current, totalPages),
		PageSize:     pageSize,
		TotalItems:   totalItems,
	}
}

// visiblePages centres a run of up to WindowWidth pages on current,
// shifting it so it never runs past either end.
func visiblePages(current, totalPages int) []int {
	width := min(WindowWidth, totalPages)
	half := width / 2

	start := max(1, current-half)
	end := min(totalPages, start+width-1)
	start = max(1, min(start, end-width+1))

	pages := make([]int, 0, end-start+1)
	for p := start; p <= end; p++ {
		pages = append(pages, p)
	}
	return pages
}

// HasPrev reports whether a previous page exists.
func (w Window) HasPrev() bool { return w.CurrentPage > 1 }

// HasNext reports whether a next page exists.
func (w Window) HasNext() bool { return w.CurrentPage < w.TotalPages }

// PrevPage is the page before the current one (never below 1).
func (w Window) PrevPage() int { return max(1, w.CurrentPage-1) }

// NextPage is the page after the current one (never above TotalPages).
func (w Window) NextPage() int { return min(w.TotalPages, w.CurrentPage+1) }

// FirstShown is the 1-based index of the first row on the page, 0 if empty.
func (w Window) FirstShown() int {
	if w.TotalItems == 0 {
		return 0
	}
	return w.StartIndex + 1
}

// LastShown is the 1-based index of the last row on the page, 0 if empty.
func (w Window) LastShown() int { return w.EndIndex }

// ShowsFirst reports whether page 1 is inside the visible window.
func (w Window) ShowsFirst() bool {
	return len(w.VisiblePages) > 0 && w.VisiblePages[0] == 1
}

// ShowsLast reports whether the last page is inside the visible window.
func (w Window) ShowsLast() bool {
	return len(w.VisiblePages) > 0 && w.VisiblePages[len(w.VisiblePages)-1] == w.TotalPages
}

// Label is the "Showing a–b of n" caption under a table.
func (w Window) Label() string {
	if w.TotalItems == 0 {
		return "No results"
	}
	return fmt.Sprintf("Showing %d–%d of %d", w.FirstShown(), w.LastShown(), w.TotalItems)
}

// ParsePage extracts the 1-based ?page= parameter.
// Returns 1 if not present or invalid.
func ParsePage(r *http.Request) int {
	s := query.Get(r, "page")
	if s == "" {
		return 1
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// ParsePageSize extracts ?limit=, falling back to def and capping at MaxPageSize.
func ParsePageSize(r *http.Request, def int) int {
	if def < 1 {
		def = DefaultPageSize
	}
	s := query.Get(r, "limit")
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return def
	}
	return min(n, MaxPageSize)
}
