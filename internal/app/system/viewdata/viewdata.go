// internal/app/system/viewdata/viewdata.go
package viewdata

import (
	"net/http"
	"sync/atomic"

	"github.com/dalemusser/learnportal/internal/app/system/auth"
	"github.com/dalemusser/learnportal/internal/app/system/authz"
	"github.com/dalemusser/learnportal/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/httpnav"
	"github.com/gorilla/csrf"
)

// BaseVM contains the fields every page layout reads.
// Embed it in feature view models:
//
//	type pageData struct {
//	    viewdata.BaseVM
//	    Table datatable.View
//	}
type BaseVM struct {
	SiteName string

	// User context (from auth middleware)
	IsLoggedIn   bool
	Role         string // normalized token, drives nav visibility
	RoleLabel    string // as the API spelled it, for display
	UserName     string
	DashboardURL string

	// Page context
	Title       string
	BackURL     string
	CurrentPath string

	CSRFToken string
}

var siteName atomic.Value

// SetSiteName is called once from bootstrap with the configured name.
func SetSiteName(name string) {
	if name != "" {
		siteName.Store(name)
	}
}

// SiteName returns the configured site name or the default.
func SiteName() string {
	if v, ok := siteName.Load().(string); ok {
		return v
	}
	return models.DefaultSiteName
}

// NewBaseVM builds the layout fields for r.
//
//   - title: the page title
//   - backDefault: back-button target when the request carries none
func NewBaseVM(r *http.Request, title, backDefault string) BaseVM {
	role, name, signedIn := authz.UserCtx(r)

	vm := BaseVM{
		SiteName:     SiteName(),
		IsLoggedIn:   signedIn,
		Role:         role,
		UserName:     name,
		DashboardURL: authz.DashboardPath(r),
		Title:        title,
		BackURL:      httpnav.ResolveBackURL(r, backDefault),
		CurrentPath:  httpnav.CurrentPath(r),
		CSRFToken:    csrf.Token(r),
	}
	if u, ok := auth.CurrentUser(r); ok && u != nil {
		vm.RoleLabel = u.RoleLabel
	}
	return vm
}
