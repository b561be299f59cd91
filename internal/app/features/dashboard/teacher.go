// internal/app/features/dashboard/teacher.go
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

const coursesTableID = "courses-table"

type teacherData struct {
	viewdata.BaseVM
	CourseCount int
	Table       datatable.View
}

// ServeTeacher handles GET /teacher: every course the teacher can see,
// fetched once and paged in memory.
func (h *Handler) ServeTeacher(w http.ResponseWriter, r *http.Request) {
	api, err := shared.UserAPI(r, h.API, h.Tokens)
	if err != nil {
		h.ErrLog.LogAPIError(w, r, "teacher: no api token", err, "", "/")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.API(), h.Log, "teacher courses")
	defer cancel()

	courses, err := api.Courses().ListAll(ctx)
	if errors.Is(err, apiclient.ErrUnauthorized) {
		h.ErrLog.LogAPIError(w, r, "teacher: courses rejected token", err, "", "/")
		return
	}

	var view datatable.View
	if err != nil {
		h.Log.Warn("teacher: load courses failed", zap.Error(err))
		view = failedTable(coursesTableID, courseColumns, "We couldn't load your courses. Please try again.")
	} else {
		view = h.clientView(h.coursesTable(r, courses).View)
	}

	if wantsTable(r, coursesTableID) {
		templates.RenderSnippet(w, "datatable", view)
		return
	}

	templates.Render(w, r, "dashboard_teacher", teacherData{
		BaseVM:      viewdata.NewBaseVM(r, "Teacher dashboard", "/"),
		CourseCount: len(courses),
		Table:       view,
	})
}

// coursesTable pages the teacher's full course list in memory.
func (h *Handler) coursesTable(r *http.Request, courses []models.Course) datatable.Client[models.Course] {
	return datatable.Client[models.Course]{
		ID:       coursesTableID,
		Columns:  courseColumns,
		RowKey:   func(c models.Course) string { return c.ID.String() },
		Rows:     courses,
		Page:     paging.ParsePage(r),
		PageSize: paging.ParsePageSize(r, h.PageSize),
		Path:     authz.TeacherDashboardPath,
		Empty:    "You have no courses yet.",
	}
}

// failedTable is the error state for a table whose rows could not be loaded.
func failedTable[T any](id string, cols []datatable.Column[T], msg string) datatable.View {
	v, _ := datatable.Client[T]{ID: id, Columns: cols}.View()
	v.Mode = datatable.DisplayError
	v.Error = msg
	return v
}

// clientView runs a client table's View. An error there is a programming
// error, so it is logged loudly and the table shows a generic message.
func (h *Handler) clientView(view func() (datatable.View, error)) datatable.View {
	v, err := view()
	if err != nil {
		h.Log.Error("client table misconfigured", zap.Error(err))
		v.Error = "This table could not be displayed."
	}
	return v
}
