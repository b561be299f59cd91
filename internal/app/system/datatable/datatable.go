// internal/app/system/datatable/datatable.go
//
// Package datatable builds render-ready table views for the dashboard
// pages. Client tables paginate an in-memory row set; Server tables ask
// an injected fetch function for one page at a time.
package datatable

import (
	"encoding/json"
	"html/template"
	"net/url"
	"strconv"
	"strings"

	"github.com/dalemusser/learnportal/internal/app/system/paging"
	"github.com/jmespath-community/go-jmespath"
)

// Column describes one table column.
//
// Key is a dotted path into the row's JSON form ("teacher.name"). When
// Render is set it wins and Key is only used as a stable identifier.
type Column[T any] struct {
	Key       string
	Header    string
	ClassName string
	Render    func(T) template.HTML
}

// DisplayMode selects which body the table template draws.
type DisplayMode string

const (
	DisplayRows    DisplayMode = "rows"
	DisplayLoading DisplayMode = "loading"
	DisplayError   DisplayMode = "error"
	DisplayEmpty   DisplayMode = "empty"
)

// Header is a rendered column header.
type Header struct {
	Label     string
	ClassName string
}

// Cell is a rendered cell.
type Cell struct {
	HTML      template.HTML
	ClassName string
}

// Row is a rendered row.
type Row struct {
	Key   string
	Cells []Cell
}

// View is everything the "datatable" template needs.
type View struct {
	ID      string // DOM id of the wrapper; HTMX swaps target it
	Headers []Header
	Rows    []Row
	Window  paging.Window
	Mode    DisplayMode
	Error   string
	Empty   string

	// Path and Query build pager links. Query carries filters and is
	// copied, never mutated.
	Path  string
	Query url.Values
}

// ColSpan is the number of columns, for full-width status rows.
func (v View) ColSpan() int { return max(1, len(v.Headers)) }

// HasPager reports whether page controls should be drawn.
func (v View) HasPager() bool {
	return v.Mode == DisplayRows && v.Window.TotalPages > 1
}

// PageURL returns the link for page n with the view's filters preserved.
func (v View) PageURL(n int) string {
	q := url.Values{}
	for k, vals := range v.Query {
		q[k] = append([]string(nil), vals...)
	}
	q.Set("page", strconv.Itoa(n))
	return v.Path + "?" + q.Encode()
}

const defaultEmpty = "No records found."

func headers[T any](cols []Column[T]) []Header {
	hs := make([]Header, 0, len(cols))
	for _, c := range cols {
		hs = append(hs, Header{Label: c.Header, ClassName: c.ClassName})
	}
	return hs
}

func renderRows[T any](rows []T, cols []Column[T], rowKey func(T) string, offset int) []Row {
	out := make([]Row, 0, len(rows))
	for i, r := range rows {
		key := strconv.Itoa(offset + i)
		if rowKey != nil {
			key = rowKey(r)
		}

		var doc any
		cells := make([]Cell, 0, len(cols))
		for _, c := range cols {
			var h template.HTML
			if c.Render != nil {
				h = c.Render(r)
			} else {
				if doc == nil {
					doc = toDoc(r)
				}
				h = template.HTML(template.HTMLEscapeString(Resolve(doc, c.Key)))
			}
			cells = append(cells, Cell{HTML: h, ClassName: c.ClassName})
		}
		out = append(out, Row{Key: key, Cells: cells})
	}
	return out
}

// toDoc converts a row into its generic JSON form.
func toDoc(v any) any {
	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	var doc any
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil
	}
	return doc
}

// Value resolves a dotted path against any JSON-marshalable row.
func Value(row any, path string) string {
	return Resolve(toDoc(row), path)
}

// Resolve looks up a dotted path in a generic JSON document.
// Missing segments and null resolve to "".
func Resolve(doc any, path string) string {
	if doc == nil || strings.TrimSpace(path) == "" {
		return ""
	}
	v, err := jmespath.Search(quotePath(path), doc)
	if err != nil || v == nil {
		return ""
	}
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	default:
		b, err := json.Marshal(x)
		if err != nil {
			return ""
		}
		return string(b)
	}
}

// quotePath turns a.b-c into "a"."b-c" so keys need not be identifiers.
func quotePath(path string) string {
	parts := strings.Split(path, ".")
	for i, p := range parts {
		parts[i] = strconv.Quote(p)
	}
	return strings.Join(parts, ".")
}
