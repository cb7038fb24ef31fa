package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/JonMunkholm/ChartDash/internal/config"
)

// Open returns the persistence selected by cfg.Driver.
func Open(ctx context.Context, cfg config.StoreConfig) (Persistence, error) {
	switch strings.ToLower(cfg.Driver) {
	case "", config.DriverMemory:
		return NewMemoryKV(), nil
	case config.DriverSQLite:
		return NewSQLiteKV(cfg.Path)
	case config.DriverPostgres:
		return OpenPostgres(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}
