// internal/app/features/errors/errors.go
package errors

import (
	"net/http"

	"github.com/dalemusser/learnportal/internal/app/system/viewdata"
)

// pageData is the view model for every error page.
type pageData struct {
	viewdata.BaseVM
	Heading string
	Message string
	Status  int
}

// Handler serves the standalone error pages.
type Handler struct{}

func NewHandler() *Handler { return &Handler{} }

// Forbidden renders the "access denied" page.
// GET /forbidden
func (h *Handler) Forbidden(w http.ResponseWriter, r *http.Request) {
	RenderForbidden(w, r, "You don't have permission to view this page.", "")
}

// Unauthorized renders the "sign in required" page.
// GET /unauthorized
func (h *Handler) Unauthorized(w http.ResponseWriter, r *http.Request) {
	RenderUnauthorized(w, r, "")
}

// NotFound is the router's fallback.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	RenderNotFound(w, r, "We couldn't find that page.", "")
}
