// internal/app/features/dashboard/student.go
package dashboard

import (
	"errors"
	"net/http"

	"github.com/dalemusser/learnportal/internal/app/features/shared"
	"github.com/dalemusser/learnportal/internal/app/system/apiclient"
	"github.com/dalemusser/learnportal/internal/app/system/authz"
	"github.com/dalemusser/learnportal/internal/app/system/datatable"
	"github.com/dalemusser/learnportal/internal/app/system/paging"
	"github.com/dalemusser/learnportal/internal/app/system/timeouts"
	"github.com/dalemusser/learnportal/internal/app/system/viewdata"
	"github.com/dalemusser/learnportal/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

const enrollmentsTableID = "enrollments-table"

type studentData struct {
	viewdata.BaseVM
	Completed int
	Table     datatable.View
}

// ServeStudent handles GET /student: the student's enrollments.
func (h *Handler) ServeStudent(w http.ResponseWriter, r *http.Request) {
	api, err := shared.UserAPI(r, h.API, h.Tokens)
	if err != nil {
		h.ErrLog.LogAPIError(w, r, "student: no api token", err, "", "/")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.API(), h.Log, "student enrollments")
	defer cancel()

	enrollments, err := api.Enrollments().Mine(ctx)
	if errors.Is(err, apiclient.ErrUnauthorized) {
		h.ErrLog.LogAPIError(w, r, "student: enrollments rejected token", err, "", "/")
		return
	}

	var view datatable.View
	if err != nil {
		h.Log.Warn("student: load enrollments failed", zap.Error(err))
		view = failedTable(enrollmentsTableID, enrollmentColumns, "We couldn't load your courses. Please try again.")
	} else {
		view = h.clientView(h.enrollmentsTable(r, enrollments).View)
	}

	if wantsTable(r, enrollmentsTableID) {
		templates.RenderSnippet(w, "datatable", view)
		return
	}

	completed := 0
	for _, e := range enrollments {
		if e.Progress >= 100 {
			completed++
		}
	}
	templates.Render(w, r, "dashboard_student", studentData{
		BaseVM:    viewdata.NewBaseVM(r, "My courses", "/"),
		Completed: completed,
		Table:     view,
	})
}

func (h *Handler) enrollmentsTable(r *http.Request, enrollments []models.Enrollment) datatable.Client[models.Enrollment] {
	return datatable.Client[models.Enrollment]{
		ID:       enrollmentsTableID,
		Columns:  enrollmentColumns,
		RowKey:   func(e models.Enrollment) string { return e.ID.String() },
		Rows:     enrollments,
		Page:     paging.ParsePage(r),
		PageSize: paging.ParsePageSize(r, h.PageSize),
		Path:     authz.StudentDashboardPath,
		Empty:    "You are not enrolled in any courses yet.",
	}
}
