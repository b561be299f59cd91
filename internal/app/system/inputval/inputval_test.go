package inputval

import (
	"strings"
	"testing"
)

func TestIsValidEmail(t *testing.T) {
	tests := []struct {
		email string
		want  bool
	}{
		{"teacher@school.org", true},
		{"first.last+class@mail.school.org", true},
		{"ops@localhost", true},
		{"  padded@school.org  ", true},
		{"", false},
		{"\t", false},
		{"no-at-sign", false},
		{"trailing@", false},
		{"@school.org", false},
		{".dot@school.org", false},
		{"dot.@school.org", false},
		{"two..dots@school.org", false},
		{"kim@school..org", false},
		{"kim@.school.org", false},
		{"Kim Lee <kim@school.org>", false},
		{"kim lee@school.org", false},
	}

	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			if got := IsValidEmail(tt.email); got != tt.want {
				t.Errorf("IsValidEmail(%q) = %v, want %v", tt.email, got, tt.want)
			}
		})
	}
}

func TestValidate_Login(t *testing.T) {
	tests := []struct {
		name string
		in   LoginInput
		want Errors
	}{
		{"ok", LoginInput{Email: "t@school.org", Password: "pw"}, nil},
		{"missing both", LoginInput{}, Errors{
			"email":    "Email is required.",
			"password": "Password is required.",
		}},
		{"bad email", LoginInput{Email: "nope", Password: "pw"}, Errors{
			"email": "Enter a valid email address.",
		}},
		{"password too long", LoginInput{Email: "t@school.org", Password: strings.Repeat("p", 257)}, Errors{
			"password": "Password must be at most 256 characters.",
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := Validate(tt.in)
			if len(errs) != len(tt.want) {
				t.Fatalf("Validate() = %v, want %v", errs, tt.want)
			}
			for field, msg := range tt.want {
				if errs[field] != msg {
					t.Errorf("%s: got %q, want %q", field, errs[field], msg)
				}
			}
		})
	}
}

func TestValidate_Contact(t *testing.T) {
	valid := ContactInput{Name: "Ada", Email: "ada@example.com", Category: "billing", Message: "I was charged twice this month."}

	tests := []struct {
		name   string
		mutate func(*ContactInput)
		field  string
		msg    string
	}{
		{"ok", func(*ContactInput) {}, "", ""},
		{"category optional", func(c *ContactInput) { c.Category = "" }, "", ""},
		{"unknown category", func(c *ContactInput) { c.Category = "sales" }, "category", "Choose a valid category."},
		{"short message", func(c *ContactInput) { c.Message = "short" }, "message", "Message must be at least 10 characters."},
		{"long subject", func(c *ContactInput) { c.Subject = strings.Repeat("s", 201) }, "subject", "Subject must be at most 200 characters."},
		{"missing name", func(c *ContactInput) { c.Name = "" }, "name", "Name is required."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid
			tt.mutate(&in)
			errs := Validate(in)
			if tt.field == "" {
				if errs != nil {
					t.Fatalf("unexpected errors: %v", errs)
				}
				return
			}
			if len(errs) != 1 || errs[tt.field] != tt.msg {
				t.Errorf("Validate() = %v, want only %s=%q", errs, tt.field, tt.msg)
			}
		})
	}
}

func TestValidate_NonStructInput(t *testing.T) {
	errs := Validate("not a form")
	if !errs.Has("_") {
		t.Errorf("Validate(string) = %v, want a form-level error", errs)
	}
}

func TestErrors_Has(t *testing.T) {
	var none Errors
	if none.Has("email") {
		t.Error("nil Errors reported a field")
	}
	if !(Errors{"email": "x"}).Has("email") {
		t.Error("Has missed a present field")
	}
}
