// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"

	ideastore "github.com/dalemusser/ideahub/internal/app/store/ideas"
	userstore "github.com/dalemusser/ideahub/internal/app/store/users"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// EnsureSchema creates the collection indexes the stores rely on: slug
// uniqueness, the feed sort, and the username uniqueness gate.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	db := deps.IdeaHubMongoDatabase

	if err := ideastore.New(db).EnsureIndexes(ctx); err != nil {
		logger.Error("failed to create idea indexes", zap.Error(err))
		return err
	}
	if err := userstore.New(db).EnsureIndexes(ctx); err != nil {
		logger.Error("failed to create user indexes", zap.Error(err))
		return err
	}

	logger.Info("database indexes ensured")
	return nil
}
