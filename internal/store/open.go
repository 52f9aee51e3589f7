package store

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/nameparse/internal/config"
)

// Open connects to the store backend named by cfg.Driver.
func Open(ctx context.Context, cfg config.StoreConfig) (Store, error) {
	zap.L().Debug("store: opening",
		zap.String("driver", cfg.Driver),
	)

	switch cfg.Driver {
	case "sqlite", "":
		return NewSQLite(cfg.DatabaseURL)
	case "postgres":
		return NewPostgres(ctx, cfg.DatabaseURL, &PoolConfig{
			MaxConns: cfg.MaxConns,
			MinConns: cfg.MinConns,
		})
	default:
		return nil, eris.Errorf("store: unknown driver %q", cfg.Driver)
	}
}
