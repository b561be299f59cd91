// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/dalemusser/learnportal/internal/app/system/auditlog"
	"github.com/dalemusser/learnportal/internal/app/system/paging"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

const (
	minSessionKeyLen = 32
	minPageSize      = 1
	maxPageSize      = paging.MaxPageSize
)

// appConfigKeys defines the configuration keys for the portal.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: api_base_url, mongo_uri, etc.
//   - Environment variables: LEARNPORTAL_API_BASE_URL, LEARNPORTAL_MONGO_URI, etc.
//   - Command-line flags: --api_base_url, --mongo_uri, etc.
var appConfigKeys = []config.AppKey{
	{Name: "api_base_url", Default: "http://localhost:8000/api", Desc: "Base URL of the REST backend"},
	{Name: "api_timeout", Default: "10s", Desc: "Timeout for a single backend request"},
	{Name: "dev_suppress_hmr_errors", Default: true, Desc: "Swallow failed hot-reload requests outside prod"},

	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "learn_portal", Desc: "MongoDB database name"},

	{Name: "redis_addr", Default: "", Desc: "Redis address for the catalog cache (blank disables it)"},
	{Name: "redis_password", Default: "", Desc: "Redis password"},
	{Name: "redis_db", Default: 0, Desc: "Redis database number"},
	{Name: "catalog_cache_ttl", Default: "5m", Desc: "How long public catalog responses are cached"},

	{Name: "session_key", Default: "dev-only-change-me-please-0123456789ABCDEF", Desc: "Session signing key (must be strong in production)"},
	{Name: "session_name", Default: "learnportal-session", Desc: "Session cookie name"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},
	{Name: "session_max_age", Default: "24h", Desc: "Upper bound on a session's lifetime"},
	{Name: "session_inactive_after", Default: "30m", Desc: "Idle time after which the cleanup worker closes a session"},
	{Name: "session_cleanup_interval", Default: "1m", Desc: "How often the session cleanup worker runs"},

	{Name: "csrf_key", Default: "dev-only-csrf-key-change-me-0123456789", Desc: "CSRF token key (32+ chars)"},

	{Name: "table_page_size", Default: 10, Desc: "Rows per page in dashboard tables"},

	{Name: "site_name", Default: "Learn Portal", Desc: "Site name shown in page titles"},

	{Name: "audit_log_auth", Default: "all", Desc: "Auth event logging: 'all' (db+log), 'db', 'log', or 'off'"},
	{Name: "audit_log_support", Default: "all", Desc: "Contact/support event logging: 'all' (db+log), 'db', 'log', or 'off'"},

	{Name: "rate_login_per_ip", Default: 10, Desc: "Login attempts per client IP per minute"},
	{Name: "rate_login_per_email", Default: 5, Desc: "Login attempts per account email per 5 minutes"},
	{Name: "rate_contact_per_ip", Default: 5, Desc: "Contact submissions per client IP per 10 minutes"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig merges with precedence
// flags > env (LEARNPORTAL_*) > files > defaults.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "LEARNPORTAL", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		APIBaseURL:           strings.TrimSpace(appValues.String("api_base_url")),
		APITimeout:           appValues.Duration("api_timeout", 10*time.Second),
		DevSuppressHMRErrors: appValues.Bool("dev_suppress_hmr_errors"),

		MongoURI:      appValues.String("mongo_uri"),
		MongoDatabase: appValues.String("mongo_database"),

		RedisAddr:       strings.TrimSpace(appValues.String("redis_addr")),
		RedisPassword:   appValues.String("redis_password"),
		RedisDB:         appValues.Int("redis_db"),
		CatalogCacheTTL: appValues.Duration("catalog_cache_ttl", 5*time.Minute),

		SessionKey:             appValues.String("session_key"),
		SessionName:            appValues.String("session_name"),
		SessionDomain:          appValues.String("session_domain"),
		SessionMaxAge:          appValues.Duration("session_max_age", 24*time.Hour),
		SessionInactiveAfter:   appValues.Duration("session_inactive_after", 30*time.Minute),
		SessionCleanupInterval: appValues.Duration("session_cleanup_interval", time.Minute),

		CSRFKey: appValues.String("csrf_key"),

		TablePageSize: appValues.Int("table_page_size"),

		SiteName: appValues.String("site_name"),

		AuditLogAuth:    strings.ToLower(appValues.String("audit_log_auth")),
		AuditLogSupport: strings.ToLower(appValues.String("audit_log_support")),

		LoginPerIP:    appValues.Int("rate_login_per_ip"),
		LoginPerEmail: appValues.Int("rate_login_per_email"),
		ContactPerIP:  appValues.Int("rate_contact_per_ip"),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// Problems are caught here, before any connection is attempted.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}
	if err := validateAPIBaseURL(appCfg.APIBaseURL); err != nil {
		logger.Error("invalid API base URL", zap.String("api_base_url", appCfg.APIBaseURL), zap.Error(err))
		return err
	}
	if len(appCfg.SessionKey) < minSessionKeyLen {
		return fmt.Errorf("session_key must be at least %d characters", minSessionKeyLen)
	}
	if len(appCfg.CSRFKey) < minSessionKeyLen {
		return fmt.Errorf("csrf_key must be at least %d characters", minSessionKeyLen)
	}
	if appCfg.TablePageSize < minPageSize || appCfg.TablePageSize > maxPageSize {
		return fmt.Errorf("table_page_size must be between %d and %d, got %d", minPageSize, maxPageSize, appCfg.TablePageSize)
	}
	for name, mode := range map[string]string{
		"audit_log_auth":    appCfg.AuditLogAuth,
		"audit_log_support": appCfg.AuditLogSupport,
	} {
		switch mode {
		case auditlog.ModeAll, auditlog.ModeDB, auditlog.ModeLog, auditlog.ModeOff:
		default:
			return fmt.Errorf("%s must be one of all, db, log, off; got %q", name, mode)
		}
	}
	if coreCfg != nil && coreCfg.Env == "prod" && strings.HasPrefix(appCfg.SessionKey, "dev-only") {
		logger.Warn("running in prod with the development session key")
	}
	return nil
}

func validateAPIBaseURL(raw string) error {
	if raw == "" {
		return fmt.Errorf("api_base_url is required")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid api_base_url: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("api_base_url must be an absolute http(s) URL, got %q", raw)
	}
	return nil
}
