// internal/app/features/dashboard/handler.go
package dashboard

import (
	"net/http"

	uierrors "github.com/dalemusser/learnportal/internal/app/features/errors"
	"github.com/dalemusser/learnportal/internal/app/features/shared"
	"github.com/dalemusser/learnportal/internal/app/system/apiclient"
	"github.com/dalemusser/learnportal/internal/app/system/auth"
	"github.com/dalemusser/learnportal/internal/app/system/authz"
	"github.com/dalemusser/learnportal/internal/app/system/paging"
	"go.uber.org/zap"
)

type Handler struct {
	API      *apiclient.Client
	Tokens   shared.TokenSource
	PageSize int
	ErrLog   *uierrors.ErrorLogger
	Log      *zap.Logger
}

func NewHandler(api *apiclient.Client, tokens shared.TokenSource, pageSize int, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	if pageSize < 1 {
		pageSize = paging.DefaultPageSize
	}
	return &Handler{
		API:      api,
		Tokens:   tokens,
		PageSize: pageSize,
		ErrLog:   errLog,
		Log:      logger,
	}
}

// ServeDashboard sends the user to the dashboard for their role. Visitors
// and unrecognized roles go home.
func (h *Handler) ServeDashboard(w http.ResponseWriter, r *http.Request) {
	dest := authz.HomePath
	if _, ok := auth.CurrentUser(r); ok {
		dest = authz.DashboardPath(r)
	}

	if shared.IsHTMX(r) {
		w.Header().Set("HX-Redirect", dest)
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, dest, http.StatusSeeOther)
}

// wantsTable reports whether an HTMX request targets only the table with id.
func wantsTable(r *http.Request, id string) bool {
	return shared.IsHTMX(r) && r.Header.Get("HX-Target") == id
}
