package navigation

import (
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

func TestSafeReturn(t *testing.T) {
	tests := []struct {
		name   string
		target string
		opts   ReturnOptions
		want   string
	}{
		{"no return", "/login", LoginReturn, ""},
		{"plain path", "/login?return=" + url.QueryEscape("/teacher?page=2"), LoginReturn, "/teacher?page=2"},
		{"external host", "/login?return=" + url.QueryEscape("https://evil.test/x"), LoginReturn, ""},
		{"protocol relative", "/login?return=" + url.QueryEscape("//evil.test"), LoginReturn, ""},
		{"login loop", "/login?return=" + url.QueryEscape("/login?return=/admin"), LoginReturn, ""},
		{"logout", "/login?return=/logout", LoginReturn, ""},
		{"prefix ok", "/x?return=/admin/users", ReturnOptions{AllowedPrefix: "/admin", Fallback: "/admin"}, "/admin/users"},
		{"prefix miss", "/x?return=/student", ReturnOptions{AllowedPrefix: "/admin", Fallback: "/admin"}, "/admin"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", tt.target, nil)
			if got := SafeReturn(r, tt.opts); got != tt.want {
				t.Errorf("SafeReturn = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSafeReturn_FormValue(t *testing.T) {
	r := httptest.NewRequest("POST", "/login", strings.NewReader("return=%2Fstudent"))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if got := SafeReturn(r, LoginReturn); got != "/student" {
		t.Errorf("SafeReturn = %q, want /student", got)
	}
}

func TestLoginURL(t *testing.T) {
	if got := LoginURL(""); got != "/login" {
		t.Errorf("LoginURL(\"\") = %q", got)
	}
	if got := LoginURL("/admin?q=a b"); got != "/login?return=%2Fadmin%3Fq%3Da+b" {
		t.Errorf("LoginURL = %q", got)
	}
}
