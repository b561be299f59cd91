// internal/app/system/normalize/normalize.go
package normalize

import (
	"regexp"
	"strings"

	"github.com/dalemusser/learnportal/internal/domain/models"
)

// Email trims and lowercases an email address.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name trims a display name; case is preserved.
func Name(s string) string {
	return strings.TrimSpace(s)
}

// Status trims and lowercases an account status.
func Status(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// QueryParam trims a free-text query parameter; case is preserved.
func QueryParam(s string) string {
	return strings.TrimSpace(s)
}

// FilterValue trims a select-box filter value. "all" means no filter.
func FilterValue(s string) string {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, "all") {
		return ""
	}
	return s
}

var separatorRun = regexp.MustCompile(`[\s-]+`)

// Role canonicalizes a role name into a token: trimmed, lowercased, and
// every run of whitespace or hyphens collapsed to one underscore.
// "Super Admin" and "super-admin" both become "super_admin".
func Role(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return separatorRun.ReplaceAllString(s, "_")
}

// RoleToken canonicalizes a raw API role regardless of its shape.
// An absent role yields "".
func RoleToken(r models.Role) string {
	if r.IsZero() {
		return ""
	}
	return Role(r.Value)
}

// DisplayName picks the name to show for a user: the trimmed name, else
// the trimmed email, else the role as the API spelled it, else "User".
func DisplayName(u *models.User) string {
	if u == nil {
		return "User"
	}
	if n := strings.TrimSpace(u.Name); n != "" {
		return n
	}
	if e := strings.TrimSpace(u.Email); e != "" {
		return e
	}
	if !u.Role.IsZero() {
		if r := strings.TrimSpace(u.Role.Value); r != "" {
			return r
		}
	}
	return "User"
}
