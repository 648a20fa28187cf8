// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"

	organizationstore "github.com/dalemusser/tenanthub/internal/app/store/organizations"
	partitionstore "github.com/dalemusser/tenanthub/internal/app/store/partitions"
	"github.com/dalemusser/tenanthub/internal/app/system/timeouts"
	"github.com/dalemusser/tenanthub/internal/app/system/workers"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// reconciler is started here and stopped in Shutdown.
var reconciler *workers.Reconciler

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	timeouts.Configure(timeouts.Config{
		Short: appCfg.TimeoutShort,
		Long:  appCfg.TimeoutLong,
	})
	cur := timeouts.Current()
	logger.Info("request timeouts configured",
		zap.Duration("ping", cur.Ping),
		zap.Duration("short", cur.Short),
		zap.Duration("long", cur.Long))

	if appCfg.ReconcileInterval > 0 {
		reconciler = workers.NewReconciler(
			organizationstore.New(deps.CatalogDB),
			partitionstore.New(deps.TenantDB),
			logger,
			appCfg.ReconcileInterval,
		)
		reconciler.Start()
	}
	return nil
}
