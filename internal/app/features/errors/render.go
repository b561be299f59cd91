// internal/app/features/errors/render.go
package errors

import (
	"net/http"

	"github.com/dalemusser/learnportal/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/templates"
)

func render(w http.ResponseWriter, r *http.Request, status int, title, heading, msg, backURL, backDefault string) {
	data := pageData{
		BaseVM:  viewdata.NewBaseVM(r, title, backDefault),
		Heading: heading,
		Message: msg,
		Status:  status,
	}
	if backURL != "" {
		data.BackURL = backURL
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	templates.Render(w, r, "error_page", data)
}

// RenderUnauthorized shows the "sign in required" page.
func RenderUnauthorized(w http.ResponseWriter, r *http.Request, backURL string) {
	render(w, r, http.StatusUnauthorized, "Sign in required", "Sign in required",
		"Please sign in to continue.", backURL, "/login")
}

// RenderForbidden shows the "access denied" page with msg.
func RenderForbidden(w http.ResponseWriter, r *http.Request, msg, backURL string) {
	render(w, r, http.StatusForbidden, "Access denied", "Access denied", msg, backURL, "/")
}

// RenderNotFound shows the "not found" page with msg.
func RenderNotFound(w http.ResponseWriter, r *http.Request, msg, backURL string) {
	render(w, r, http.StatusNotFound, "Not found", "Page not found", msg, backURL, "/")
}

// RenderServerError shows the generic failure page with msg.
func RenderServerError(w http.ResponseWriter, r *http.Request, msg, backURL string) {
	render(w, r, http.StatusInternalServerError, "Something went wrong", "Something went wrong", msg, backURL, "/")
}

// RenderBadRequest shows the invalid-input page with msg.
func RenderBadRequest(w http.ResponseWriter, r *http.Request, msg, backURL string) {
	render(w, r, http.StatusBadRequest, "Invalid request", "Invalid request", msg, backURL, "/")
}

// HTMXError answers an HTMX request with an inline alert swapped into
// #flash, and calls full for ordinary requests.
func HTMXError(w http.ResponseWriter, r *http.Request, status int, msg string, full func()) {
	if r.Header.Get("HX-Request") != "true" {
		full()
		return
	}
	w.Header().Set("HX-Retarget", "#flash")
	w.Header().Set("HX-Reswap", "innerHTML")
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	templates.RenderSnippet(w, "error_inline", struct{ Message string }{msg})
}
