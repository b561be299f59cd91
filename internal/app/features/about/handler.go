// internal/app/features/about/handler.go
package about

import (
	"net/http"

	"github.com/dalemusser/learnportal/internal/app/system/authz"
	"github.com/dalemusser/learnportal/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

// area is one row of the "who sees what" list.
type area struct {
	Name    string
	Path    string
	Summary string
	Yours   bool
}

type pageData struct {
	viewdata.BaseVM
	Areas []area
}

type Handler struct {
	Log *zap.Logger
}

func NewHandler(logger *zap.Logger) *Handler {
	return &Handler{Log: logger}
}

func (h *Handler) ServeAbout(w http.ResponseWriter, r *http.Request) {
	data := pageData{
		BaseVM: viewdata.NewBaseVM(r, "About", "/"),
		Areas:  areasFor(authz.DashboardPath(r)),
	}
	templates.Render(w, r, "about", data)
}

// areasFor lists the dashboards and flags the one the viewer lands on.
func areasFor(mine string) []area {
	out := []area{
		{Name: "Administration", Path: authz.AdminDashboardPath, Summary: "Search and filter every account on the platform."},
		{Name: "Teaching", Path: authz.TeacherDashboardPath, Summary: "The courses you teach, with enrollment and lesson counts."},
		{Name: "Learning", Path: authz.StudentDashboardPath, Summary: "Your enrollments and progress through each course."},
	}
	for i := range out {
		out[i].Yours = out[i].Path == mine
	}
	return out
}
