// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/waffle/config"
	"github.com/presently-app/presently/internal/app/store/queries/cascade"
	"go.uber.org/zap"
)

// Startup runs one-time application initialization after DB connections
// and schema setup are complete, but before the HTTP handler is built.
//
// Presently replays any cascade journal entries left behind by a crash
// mid-delete on a standalone Mongo, so an occasion never stays half
// removed across restarts.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	casc := cascade.New(deps.MongoDatabase, logger)
	if err := casc.Repair(ctx); err != nil {
		logger.Error("cascade repair failed", zap.Error(err))
		return err
	}
	return nil
}
