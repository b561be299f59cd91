// internal/app/system/rowset/rowset.go
//
// Package rowset extracts a uniform {rows, total} pair from the several
// list-response shapes the backend API returns.
package rowset

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/jmespath-community/go-jmespath"
)

// ErrMalformedResponse is returned when no row array is found at any known path.
var ErrMalformedResponse = errors.New("rowset: malformed response")

// RowPaths are probed in order; the first one holding an array wins.
var RowPaths = []string{"rows", "data.rows", "users", "data.users"}

// TotalPaths are probed in order for a numeric total.
var TotalPaths = []string{"total", "data.total"}

// RowSet is one page of rows plus the total row count across all pages.
type RowSet[T any] struct {
	Rows  []T
	Total int
}

// Decode parses a raw response body and normalizes it.
func Decode[T any](body []byte) (RowSet[T], error) {
	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		return RowSet[T]{Rows: []T{}}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return Normalize[T](doc)
}

// Normalize extracts rows and total from an already-decoded document
// (the result of unmarshalling JSON into an any).
//
// When no array is found, Rows is empty (never nil) and the error wraps
// ErrMalformedResponse. Total falls back to len(Rows) when absent or not
// a number.
func Normalize[T any](doc any) (RowSet[T], error) {
	raw, path, ok := findRows(doc)
	if !ok {
		return RowSet[T]{Rows: []T{}}, fmt.Errorf("%w: no array at %v", ErrMalformedResponse, RowPaths)
	}

	rows, err := convert[T](raw)
	if err != nil {
		return RowSet[T]{Rows: []T{}}, fmt.Errorf("%w: %s: %v", ErrMalformedResponse, path, err)
	}

	total, ok := findTotal(doc)
	if !ok {
		total = len(rows)
	}
	return RowSet[T]{Rows: rows, Total: total}, nil
}

func findRows(doc any) ([]any, string, bool) {
	for _, p := range RowPaths {
		v, err := jmespath.Search(p, doc)
		if err != nil {
			continue
		}
		if arr, ok := v.([]any); ok {
			return arr, p, true
		}
	}
	return nil, "", false
}

func findTotal(doc any) (int, bool) {
	for _, p := range TotalPaths {
		v, err := jmespath.Search(p, doc)
		if err != nil {
			continue
		}
		switch n := v.(type) {
		case float64:
			switch {
			case math.IsNaN(n):
				continue
			case n <= 0:
				return 0, true
			case n >= math.MaxInt:
				return math.MaxInt, true
			}
			return int(n), true
		case int:
			return max(n, 0), true
		case json.Number:
			if i, err := n.Int64(); err == nil {
				return max(int(i), 0), true
			}
		}
	}
	return 0, false
}

// convert re-encodes the generic slice into []T.
func convert[T any](raw []any) ([]T, error) {
	rows := make([]T, 0, len(raw))
	if len(raw) == 0 {
		return rows, nil
	}
	b, err := json.Marshal(raw)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(b, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}
