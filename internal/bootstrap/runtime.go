// Package bootstrap wires the shared runtime dependencies used by every
// command entrypoint.
package bootstrap

import (
	"fmt"

	"github.com/Matias7xx/adm-pcpb-sub000/internal/cache"
	"github.com/Matias7xx/adm-pcpb-sub000/internal/config"
	"github.com/Matias7xx/adm-pcpb-sub000/internal/database"
	"github.com/Matias7xx/adm-pcpb-sub000/internal/seed"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	SeedDemoData bool
}

// InitRuntime connects to DB and Redis and optionally seeds demo data.
// The Redis client may be nil when the server is unreachable; callers run
// degraded without caching or live events in that case.
func InitRuntime(cfg *config.Config, opts Options) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)
	r := cache.GetClient()

	if opts.SeedDemoData {
		if err := seed.Seed(db, seed.Options{}); err != nil {
			return nil, nil, fmt.Errorf("failed to seed demo data: %w", err)
		}
	}

	return db, r, nil
}
