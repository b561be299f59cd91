// Package navigation provides helpers for safe post-action redirects.
package navigation

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/urlutil"
)

// ReturnOptions configures SafeReturn.
type ReturnOptions struct {
	// AllowedPrefix, when set, is the prefix a return URL must start with.
	AllowedPrefix string

	// ExcludedPrefixes are rejected so a redirect never lands on an action
	// page such as /login or /logout.
	ExcludedPrefixes []string

	// Fallback is used when no acceptable return URL is present.
	Fallback string
}

// LoginReturn is used after sign-in. A return to /login or /logout would
// loop, so those are excluded; with no return URL the caller falls back to
// the user's dashboard.
var LoginReturn = ReturnOptions{
	ExcludedPrefixes: []string{"/login", "/logout"},
}

// SafeReturn reads "return" from the query string or the posted form and
// accepts it only if it is a same-site path that passes opts.
func SafeReturn(r *http.Request, opts ReturnOptions) string {
	ret := urlutil.SafeReturn(query.Get(r, "return"), "", "")
	if ret == "" {
		ret = urlutil.SafeReturn(strings.TrimSpace(r.FormValue("return")), "", "")
	}
	if ret == "" {
		return opts.Fallback
	}
	if opts.AllowedPrefix != "" && !strings.HasPrefix(ret, opts.AllowedPrefix) {
		return opts.Fallback
	}
	for _, p := range opts.ExcludedPrefixes {
		if ret == p || strings.HasPrefix(ret, p+"?") || strings.HasPrefix(ret, p+"/") {
			return opts.Fallback
		}
	}
	return ret
}

// LoginURL builds /login with a return parameter for ret.
func LoginURL(ret string) string {
	if ret == "" || ret == "/" {
		return "/login"
	}
	return "/login?return=" + url.QueryEscape(ret)
}
