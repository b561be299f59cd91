// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). WAFFLE's CoreConfig covers
// ports, TLS, logging and request limits; AppConfig carries the portal's
// own settings.
type AppConfig struct {
	// REST backend
	APIBaseURL           string        // absolute http(s) URL of the learning API
	APITimeout           time.Duration // per-request budget for page-serving API calls
	DevSuppressHMRErrors bool          // swallow failed hot-reload probes outside prod

	// MongoDB (session records, audit events)
	MongoURI      string
	MongoDatabase string

	// Redis (optional catalog cache; blank address disables it)
	RedisAddr       string
	RedisPassword   string
	RedisDB         int
	CatalogCacheTTL time.Duration

	// Sessions
	SessionKey             string
	SessionName            string
	SessionDomain          string
	SessionMaxAge          time.Duration
	SessionInactiveAfter   time.Duration
	SessionCleanupInterval time.Duration

	// CSRF protection for the login, contact and support forms
	CSRFKey string

	// Tables
	TablePageSize int

	// Site
	SiteName string

	// Audit logging: "all", "db", "log" or "off"
	AuditLogAuth    string
	AuditLogSupport string

	// Rate limits
	LoginPerIP    int
	LoginPerEmail int
	ContactPerIP  int
}
