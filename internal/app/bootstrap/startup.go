// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Startup runs one-time application initialization after DB connections
// and schema setup are complete, but before the HTTP handler is built.
// TeamLens serves JSON only, so there are no templates or caches to
// warm; this just records the configured algorithm runner.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	logger.Info("teamlens starting",
		zap.String("algorithm_command", appCfg.AlgorithmCommand),
		zap.Int("algorithm_max_workers", appCfg.AlgorithmMaxWorkers))
	return nil
}
