// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/learnportal/internal/app/resources"
	"github.com/dalemusser/learnportal/internal/app/system/timeouts"
	"github.com/dalemusser/learnportal/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	timeouts.Configure(timeouts.Config{API: appCfg.APITimeout})
	viewdata.SetSiteName(appCfg.SiteName)
	resources.LoadSharedTemplates()
	logger.Info("startup complete",
		zap.String("site_name", appCfg.SiteName),
		zap.Bool("catalog_cache", deps.Redis != nil))
	return nil
}
