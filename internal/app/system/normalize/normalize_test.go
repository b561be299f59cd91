package normalize

import (
	"testing"

	"github.com/dalemusser/learnportal/internal/domain/models"
)

func TestEmail(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"user@example.com", "user@example.com"},
		{"USER@EXAMPLE.COM", "user@example.com"},
		{"  User@Example.Com  ", "user@example.com"},
		{"", ""},
		{"   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := Email(tt.input)
			if got != tt.want {
				t.Errorf("Email(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestFilterValue(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"teacher", "teacher"},
		{"  student  ", "student"},
		{"all", ""},
		{"ALL", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := FilterValue(tt.input)
			if got != tt.want {
				t.Errorf("FilterValue(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestRole(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"admin", "admin"},
		{"ADMIN", "admin"},
		{"  Teacher  ", "teacher"},
		{"Super Admin", "super_admin"},
		{"super-admin", "super_admin"},
		{"Sales  -  Marketing", "sales_marketing"},
		{"finance\taccountant", "finance_accountant"},
		{"content_creator", "content_creator"},
		{"", ""},
		{"   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := Role(tt.input)
			if got != tt.want {
				t.Errorf("Role(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestRoleToken(t *testing.T) {
	tests := []struct {
		name string
		role models.Role
		want string
	}{
		{"plain string", models.StringRole("Super Admin"), "super_admin"},
		{"nested object", models.NamedRole("Instructor"), "instructor"},
		{"nested hyphenated", models.NamedRole(" Content-Creator "), "content_creator"},
		{"absent", models.Role{}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RoleToken(tt.role); got != tt.want {
				t.Errorf("RoleToken(%+v) = %q, want %q", tt.role, got, tt.want)
			}
		})
	}
}

func TestDisplayName(t *testing.T) {
	tests := []struct {
		name string
		user *models.User
		want string
	}{
		{"name wins", &models.User{Name: " Ada ", Email: "ada@example.com"}, "Ada"},
		{"blank name falls back to email", &models.User{Name: "  ", Email: "a@b.com"}, "a@b.com"},
		{"role string", &models.User{Role: models.StringRole("teacher")}, "teacher"},
		{"role object", &models.User{Role: models.NamedRole("Instructor")}, "Instructor"},
		{"blank role", &models.User{Role: models.StringRole("  ")}, "User"},
		{"empty record", &models.User{}, "User"},
		{"nil", nil, "User"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DisplayName(tt.user); got != tt.want {
				t.Errorf("DisplayName() = %q, want %q", got, tt.want)
			}
		})
	}
}
