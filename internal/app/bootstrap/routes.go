// internal/app/bootstrap/routes.go
package bootstrap

import (
	"context"
	"net/http"

	aboutfeature "github.com/dalemusser/learnportal/internal/app/features/about"
	auditlogfeature "github.com/dalemusser/learnportal/internal/app/features/auditlog"
	contactfeature "github.com/dalemusser/learnportal/internal/app/features/contact"
	dashboardfeature "github.com/dalemusser/learnportal/internal/app/features/dashboard"
	errorsfeature "github.com/dalemusser/learnportal/internal/app/features/errors"
	healthfeature "github.com/dalemusser/learnportal/internal/app/features/health"
	homefeature "github.com/dalemusser/learnportal/internal/app/features/home"
	loginfeature "github.com/dalemusser/learnportal/internal/app/features/login"
	logoutfeature "github.com/dalemusser/learnportal/internal/app/features/logout"
	"github.com/dalemusser/learnportal/internal/app/features/shared"
	supportfeature "github.com/dalemusser/learnportal/internal/app/features/support"
	userinfofeature "github.com/dalemusser/learnportal/internal/app/features/userinfo"
	"github.com/dalemusser/learnportal/internal/app/store/audit"
	"github.com/dalemusser/learnportal/internal/app/store/cache"
	"github.com/dalemusser/learnportal/internal/app/store/sessions"
	"github.com/dalemusser/learnportal/internal/app/system/auditlog"
	"github.com/dalemusser/learnportal/internal/app/system/auth"
	"github.com/dalemusser/learnportal/internal/app/system/ratelimit"
	"github.com/dalemusser/learnportal/internal/app/system/tokenseal"
	"github.com/dalemusser/learnportal/internal/app/system/workers"
	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/pantry/fileserver"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/csrf"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// cachePrefix namespaces the portal's keys in a shared Redis.
const cachePrefix = "learnportal:"

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// Startup have completed. It builds the session manager over the Mongo
// session records, boots the template engine, starts the background
// workers and mounts every feature router.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	secure := coreCfg.Env == "prod"

	sessStore := sessions.New(deps.MongoDatabase)
	sealer, err := tokenseal.New(appCfg.SessionKey)
	if err != nil {
		logger.Error("token sealer init failed", zap.Error(err))
		return nil, err
	}
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, appCfg.SessionMaxAge, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}
	sessionMgr.UseRecords(sessStore, sealer)

	auditStore := audit.New(deps.MongoDatabase)
	auditLog := auditlog.New(auditStore, logger, auditlog.Config{
		Auth:    appCfg.AuditLogAuth,
		Support: appCfg.AuditLogSupport,
	})

	// Initialize and boot the template engine once at startup.
	// Dev mode enables template reloading for faster iteration.
	eng := templates.New(coreCfg.Env == "dev")
	if err := eng.Boot(logger); err != nil {
		logger.Error("template engine boot failed", zap.Error(err))
		return nil, err
	}
	templates.UseEngine(eng, logger)

	guard := ratelimit.NewGuard(ratelimit.Limits{
		LoginPerIP:    appCfg.LoginPerIP,
		LoginPerEmail: appCfg.LoginPerEmail,
		ContactPerIP:  appCfg.ContactPerIP,
	})
	startBackground(deps.bg, guard, sessStore, appCfg, logger)

	var catalog cache.Cache = cache.Noop{}
	if deps.Redis != nil {
		catalog = cache.NewRedis(deps.Redis, cachePrefix)
	}

	// A 401 from the backend means the stored token is dead: end the
	// local session too.
	errLog := errorsfeature.NewErrorLogger(logger)
	errLog.OnUnauthorized = func(w http.ResponseWriter, r *http.Request) {
		if u, ok := auth.CurrentUser(r); ok && u != nil {
			auditLog.SessionRejected(context.WithoutCancel(r.Context()), r, u)
		}
		sessionMgr.SignOut(w, r, sessions.EndRevoked)
	}
	errorsHandler := errorsfeature.NewHandler()

	sender := &shared.ContactSender{API: deps.API, Guard: guard, AuditLog: auditLog, Log: logger}

	r := chi.NewRouter()

	if !secure {
		// csrf assumes TLS unless told otherwise.
		r.Use(plaintextCSRF)
	}
	r.Use(csrf.Protect([]byte(appCfg.CSRFKey),
		csrf.Secure(secure),
		csrf.Path("/"),
		csrf.ErrorHandler(http.HandlerFunc(errorsHandler.Forbidden)),
	))

	// Global auth middleware: loads SessionUser into context if logged in.
	r.Use(sessionMgr.LoadSessionUser)

	healthHandler := healthfeature.NewHandler(logger, healthChecks(deps)...)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Static assets with pre-compressed file support (gzip/brotli)
	r.Handle("/static/*", fileserver.Handler("/static", "public"))

	// Public pages
	homeHandler := homefeature.NewHandler(deps.API, catalog, appCfg.CatalogCacheTTL, logger)
	r.Mount("/", homefeature.Routes(homeHandler))

	aboutHandler := aboutfeature.NewHandler(logger)
	r.Mount("/about", aboutfeature.Routes(aboutHandler))

	contactHandler := contactfeature.NewHandler(sender, errLog, logger)
	r.Mount("/contact", contactfeature.Routes(contactHandler))

	supportHandler := supportfeature.NewHandler(deps.API, catalog, appCfg.CatalogCacheTTL, sender, errLog, logger)
	r.Mount("/support", supportfeature.Routes(supportHandler))

	// Authentication
	loginHandler := loginfeature.NewHandler(deps.API, sessionMgr, guard, auditLog, errLog, logger)
	r.Mount("/login", loginfeature.Routes(loginHandler))

	logoutHandler := logoutfeature.NewHandler(sessionMgr, auditLog, logger)
	r.Mount("/logout", logoutfeature.Routes(logoutHandler))

	userinfofeature.MountRoutes(r, userinfofeature.NewHandler())

	// Error pages
	r.Get("/forbidden", errorsHandler.Forbidden)
	r.Get("/unauthorized", errorsHandler.Unauthorized)

	// Role-based dashboards
	dashboardHandler := dashboardfeature.NewHandler(deps.API, sessionMgr, appCfg.TablePageSize, errLog, logger)
	r.Mount("/dashboard", dashboardfeature.Routes(dashboardHandler))
	r.Mount("/admin", dashboardfeature.AdminRoutes(dashboardHandler, sessionMgr))
	r.Mount("/teacher", dashboardfeature.TeacherRoutes(dashboardHandler, sessionMgr))
	r.Mount("/student", dashboardfeature.StudentRoutes(dashboardHandler, sessionMgr))

	auditHandler := auditlogfeature.NewHandler(auditStore, appCfg.TablePageSize, errLog, logger)
	r.Mount("/audit", auditlogfeature.Routes(auditHandler, sessionMgr))

	r.NotFound(errorsHandler.NotFound)

	return r, nil
}

func plaintextCSRF(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, csrf.PlaintextHTTPRequest(r))
	})
}

// startBackground launches the rate-limit sweeper and the session cleanup
// worker. Both stop in Shutdown.
func startBackground(bg *background, guard *ratelimit.Guard, sweeper workers.SessionSweeper, appCfg AppConfig, logger *zap.Logger) {
	if bg == nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	go guard.Run(ctx)

	cleanup := workers.NewSessionCleanup(sweeper, logger, appCfg.SessionCleanupInterval, appCfg.SessionInactiveAfter)
	cleanup.Start()

	bg.cancel = cancel
	bg.sessionCleanup = cleanup
}

// healthChecks probes MongoDB and the REST backend (both required) and
// Redis when configured. A Redis outage only degrades the catalog cache.
func healthChecks(deps DBDeps) []healthfeature.Check {
	checks := []healthfeature.Check{
		{Name: "mongo", Required: true, Ping: func(ctx context.Context) error {
			return deps.MongoClient.Ping(ctx, readpref.Primary())
		}},
		{Name: "api", Required: true, Ping: deps.API.Health},
	}
	if deps.Redis != nil {
		checks = append(checks, healthfeature.Check{Name: "redis", Ping: func(ctx context.Context) error {
			return deps.Redis.Ping(ctx).Err()
		}})
	}
	return checks
}
