// Package shared holds helpers used by more than one feature.
package shared

import (
	"net/http"

	"github.com/dalemusser/learnportal/internal/app/system/apiclient"
)

// TokenSource yields the signed-in user's backend token.
// *auth.SessionManager satisfies it.
type TokenSource interface {
	APIToken(r *http.Request) (string, error)
}

// UserAPI returns api authenticated as the current user. A missing or
// unreadable token is reported as a 401 so callers can treat it exactly
// like the backend rejecting the token.
func UserAPI(r *http.Request, api *apiclient.Client, ts TokenSource) (*apiclient.Client, error) {
	tok, err := ts.APIToken(r)
	if err != nil {
		return nil, &apiclient.Error{Status: http.StatusUnauthorized, Message: err.Error()}
	}
	return api.WithToken(tok), nil
}

// IsHTMX reports whether r was issued by htmx.
func IsHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}
