// internal/app/features/userinfo/handler.go
package userinfo

import (
	"encoding/json"
	"net/http"

	"github.com/dalemusser/learnportal/internal/app/system/auth"
	"github.com/dalemusser/learnportal/internal/app/system/authz"
	"github.com/dalemusser/learnportal/internal/app/system/normalize"
)

// Handler serves the signed-in identity to browser scripts.
type Handler struct{}

func NewHandler() *Handler {
	return &Handler{}
}

type userInfo struct {
	IsAuthenticated bool   `json:"isAuthenticated"`
	Name            string `json:"name"`
	Email           string `json:"email"`
	Role            string `json:"role"`
	RoleLabel       string `json:"role_label"`
	Dashboard       string `json:"dashboard"`
}

// ServeUserInfo returns the current session's identity as JSON. Visitors
// get isAuthenticated=false and the home page as their dashboard.
func (h *Handler) ServeUserInfo(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")

	info := userInfo{Dashboard: authz.HomePath}
	if u, ok := auth.CurrentUser(r); ok && u != nil {
		rec := u.Record()
		info = userInfo{
			IsAuthenticated: true,
			Name:            normalize.DisplayName(&rec),
			Email:           u.Email,
			Role:            u.Role,
			RoleLabel:       u.RoleLabel,
			Dashboard:       authz.DashboardFor(u.Role),
		}
	}
	_ = json.NewEncoder(w).Encode(info)
}
