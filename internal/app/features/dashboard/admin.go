// internal/app/features/dashboard/admin.go
package dashboard

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/dalemusser/learnportal/internal/app/features/shared"
	"github.com/dalemusser/learnportal/internal/app/system/apiclient"
	"github.com/dalemusser/learnportal/internal/app/system/authz"
	"github.com/dalemusser/learnportal/internal/app/system/datatable"
	"github.com/dalemusser/learnportal/internal/app/system/normalize"
	"github.com/dalemusser/learnportal/internal/app/system/paging"
	"github.com/dalemusser/learnportal/internal/app/system/timeouts"
	"github.com/dalemusser/learnportal/internal/app/system/viewdata"
	"github.com/dalemusser/learnportal/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

const usersTableID = "users-table-wrap"

type roleOption struct {
	Value string
	Label string
}

var roleFilters = []roleOption{
	{"", "All roles"},
	{authz.RoleAdmin, "Admin"},
	{authz.RoleSuperAdmin, "Super admin"},
	{authz.RoleTeacher, "Teacher"},
	{authz.RoleInstructor, "Instructor"},
	{authz.RoleStudent, "Student"},
}

type adminData struct {
	viewdata.BaseVM
	Query string
	Role  string
	Roles []roleOption
	Table datatable.View
}

// usersTable loads one page of users for r. The page and dependency key
// come from pager links; a changed filter set starts again at page 1.
func (h *Handler) usersTable(ctx context.Context, r *http.Request, api *apiclient.Client) (datatable.View, string, string, error) {
	q := normalize.QueryParam(query.Get(r, "q"))
	role := normalize.Role(normalize.FilterValue(query.Get(r, "role")))

	filters := url.Values{}
	if q != "" {
		filters.Set("q", q)
	}
	if role != "" {
		filters.Set("role", role)
	}

	tbl := datatable.NewServer(func(ctx context.Context, req datatable.FetchRequest) ([]byte, error) {
		return api.Users().Page(ctx, req.Page, req.Limit, apiclient.UserFilter{Query: q, Role: role})
	}, datatable.ServerConfig[models.UserRow]{
		ID:       usersTableID,
		Columns:  userColumns,
		RowKey:   func(u models.UserRow) string { return u.ID.String() },
		PageSize: paging.ParsePageSize(r, h.PageSize),
		Path:     authz.AdminDashboardPath,
		Empty:    "No users match these filters.",
		Log:      h.Log,
	})
	tbl.Restore(paging.ParsePage(r), query.Get(r, datatable.DepsParam))
	tbl.SetQuery(filters)

	_, err := tbl.SetDeps(ctx, q, role)
	return tbl.View(), q, role, err
}

// ServeAdmin handles GET /admin: the users table with search and role
// filters. HTMX requests aimed at the table get only the table back.
func (h *Handler) ServeAdmin(w http.ResponseWriter, r *http.Request) {
	api, err := shared.UserAPI(r, h.API, h.Tokens)
	if err != nil {
		h.ErrLog.LogAPIError(w, r, "admin: no api token", err, "", "/")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.API(), h.Log, "admin users")
	defer cancel()

	view, q, role, err := h.usersTable(ctx, r, api)
	if errors.Is(err, apiclient.ErrUnauthorized) {
		h.ErrLog.LogAPIError(w, r, "admin: users rejected token", err, "", "/")
		return
	}

	if wantsTable(r, usersTableID) || r.URL.Path == authz.AdminDashboardPath+"/users" {
		templates.RenderSnippet(w, "datatable", view)
		return
	}

	h.Log.Debug("serving admin dashboard", zap.Int("page", view.Window.CurrentPage))
	templates.Render(w, r, "dashboard_admin", adminData{
		BaseVM: viewdata.NewBaseVM(r, "Admin dashboard", "/"),
		Query:  q,
		Role:   role,
		Roles:  roleFilters,
		Table:  view,
	})
}
