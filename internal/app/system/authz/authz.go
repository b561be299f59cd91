// internal/app/system/authz/authz.go
package authz

import (
	"net/http"
	"slices"

	"github.com/dalemusser/learnportal/internal/app/system/auth"
	"github.com/dalemusser/learnportal/internal/app/system/normalize"
)

// UserCtx returns the current user's role token, display name, and a found
// flag. With no signed-in user it returns "visitor", "", false.
func UserCtx(r *http.Request) (role string, name string, ok bool) {
	u, ok := auth.CurrentUser(r)
	if !ok || u == nil {
		return "visitor", "", false
	}
	rec := u.Record()
	return u.Role, normalize.DisplayName(&rec), true
}

// HasAnyRole reports whether the current user's role token is one of roles.
// Returns false if no user is signed in.
func HasAnyRole(r *http.Request, roles ...string) bool {
	role, _, ok := UserCtx(r)
	if !ok {
		return false
	}
	for _, want := range roles {
		if role == normalize.Role(want) {
			return true
		}
	}
	return false
}

// IsAdmin reports whether the current user belongs to any admin-dashboard role.
func IsAdmin(r *http.Request) bool {
	role, _, ok := UserCtx(r)
	return ok && slices.Contains(AdminRoles, role)
}

// IsTeacher reports whether the current user is a teacher or instructor.
func IsTeacher(r *http.Request) bool {
	role, _, ok := UserCtx(r)
	return ok && slices.Contains(TeacherRoles, role)
}

// IsStudent reports whether the current user is a student.
func IsStudent(r *http.Request) bool {
	role, _, ok := UserCtx(r)
	return ok && slices.Contains(StudentRoles, role)
}

// DashboardPath returns the current user's dashboard, or "/" for visitors.
func DashboardPath(r *http.Request) string {
	u, ok := auth.CurrentUser(r)
	if !ok || u == nil {
		return HomePath
	}
	rec := u.Record()
	return Destination(&rec)
}
