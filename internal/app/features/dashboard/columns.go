package dashboard

import (
	"fmt"
	"html/template"
	"strings"

	"github.com/dalemusser/learnportal/internal/app/system/datatable"
	"github.com/dalemusser/learnportal/internal/app/system/normalize"
	"github.com/dalemusser/learnportal/internal/domain/models"
)

func text(s string) template.HTML {
	return template.HTML(template.HTMLEscapeString(s))
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "—"
	}
	return s
}

func statusBadge(status string) template.HTML {
	s := normalize.Status(status)
	if s == "" {
		return text("—")
	}
	return template.HTML(fmt.Sprintf(`<span class="badge badge-%s">%s</span>`,
		template.HTMLEscapeString(s), template.HTMLEscapeString(s)))
}

var userColumns = []datatable.Column[models.UserRow]{
	{Key: "name", Header: "Name", Render: func(u models.UserRow) template.HTML {
		usr := u.AsUser()
		return text(normalize.DisplayName(&usr))
	}},
	{Key: "email", Header: "Email"},
	{Key: "role", Header: "Role", Render: func(u models.UserRow) template.HTML {
		return text(orDash(strings.TrimSpace(u.Role.Value)))
	}},
	{Key: "status", Header: "Status", Render: func(u models.UserRow) template.HTML {
		return statusBadge(u.Status)
	}},
	{Key: "created_at", Header: "Joined", ClassName: "nowrap", Render: func(u models.UserRow) template.HTML {
		return text(orDash(u.Joined()))
	}},
}

var courseColumns = []datatable.Column[models.Course]{
	{Key: "code", Header: "Code", ClassName: "mono"},
	{Key: "title", Header: "Title"},
	{Key: "teacher.name", Header: "Teacher"},
	{Key: "students_count", Header: "Students", ClassName: "num"},
	{Key: "lessons_count", Header: "Lessons", ClassName: "num"},
	{Key: "status", Header: "Status", Render: func(c models.Course) template.HTML {
		return statusBadge(c.Status)
	}},
}

var enrollmentColumns = []datatable.Column[models.Enrollment]{
	{Key: "course.title", Header: "Course"},
	{Key: "course.code", Header: "Code", ClassName: "mono"},
	{Key: "course.teacher", Header: "Teacher", Render: func(e models.Enrollment) template.HTML {
		if e.Course.Teacher == nil {
			return text("—")
		}
		return text(normalize.DisplayName(e.Course.Teacher))
	}},
	{Key: "progress", Header: "Progress", Render: func(e models.Enrollment) template.HTML {
		p := min(max(e.Progress, 0), 100)
		return template.HTML(fmt.Sprintf(
			`<progress max="100" value="%d" aria-label="%d%% complete"></progress> %d%%`, p, p, p))
	}},
	{Key: "status", Header: "Status", Render: func(e models.Enrollment) template.HTML {
		return statusBadge(e.Status)
	}},
}
