// internal/app/system/authz/roles.go
package authz

import (
	"slices"

	"github.com/dalemusser/learnportal/internal/app/system/normalize"
	"github.com/dalemusser/learnportal/internal/domain/models"
)

// Role tokens, as produced by normalize.Role.
const (
	RoleAdmin             = "admin"
	RoleSuperAdmin        = "super_admin"
	RoleSalesMarketing    = "sales_marketing"
	RoleFinanceAccountant = "finance_accountant"
	RoleContentCreator    = "content_creator"
	RoleTeacher           = "teacher"
	RoleInstructor        = "instructor"
	RoleStudent           = "student"
)

// Dashboard destinations.
const (
	HomePath             = "/"
	AdminDashboardPath   = "/admin"
	TeacherDashboardPath = "/teacher"
	StudentDashboardPath = "/student"
)

var (
	// AdminRoles land on the admin dashboard.
	AdminRoles = []string{RoleAdmin, RoleSuperAdmin, RoleSalesMarketing, RoleFinanceAccountant, RoleContentCreator}
	// TeacherRoles land on the teacher dashboard.
	TeacherRoles = []string{RoleTeacher, RoleInstructor}
	// StudentRoles land on the student dashboard.
	StudentRoles = []string{RoleStudent}
)

// DashboardFor maps a role token to its dashboard path. Unknown and empty
// tokens go home.
func DashboardFor(token string) string {
	switch {
	case token == "":
		return HomePath
	case slices.Contains(AdminRoles, token):
		return AdminDashboardPath
	case slices.Contains(TeacherRoles, token):
		return TeacherDashboardPath
	case slices.Contains(StudentRoles, token):
		return StudentDashboardPath
	default:
		return HomePath
	}
}

// Destination decides where a user should land after sign-in.
// No user at all goes home without looking at any role.
func Destination(u *models.User) string {
	if u == nil {
		return HomePath
	}
	return DashboardFor(normalize.RoleToken(u.Role))
}
