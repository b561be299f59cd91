// internal/app/system/limits/limits.go
package limits

import "net/http"

// Request body size limits for form posts.
const (
	// MaxLoginFormSize covers an email and a password with room to spare.
	MaxLoginFormSize = 8 << 10 // 8 KB

	// MaxContactFormSize covers the contact and support forms, whose
	// message field is capped well below this by validation.
	MaxContactFormSize = 64 << 10 // 64 KB
)

// Body caps the request body at n bytes. Reading past the cap fails, so
// ParseForm reports an error and the handler answers 400.
func Body(n int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, n)
			next.ServeHTTP(w, r)
		})
	}
}
