package storage

import (
	"fmt"

	"github.com/angelmondragon/storefront/pkg/config"
	"github.com/angelmondragon/storefront/pkg/redis"
	"gorm.io/gorm"
)

// Open selects the backend named by cfg. The redis client and gorm handle are
// only required by their respective backends.
func Open(cfg config.StorageConfig, rdb *redis.Client, gdb *gorm.DB) (Backend, error) {
	switch cfg.Backend {
	case config.StorageBackendMemory, "":
		return NewMemoryBackend(), nil
	case config.StorageBackendRedis:
		if rdb == nil {
			return nil, fmt.Errorf("redis storage backend requires a redis client")
		}
		return NewRedisBackend(rdb, cfg.SlotTTL), nil
	case config.StorageBackendSQL:
		if gdb == nil {
			return nil, fmt.Errorf("sql storage backend requires a database connection")
		}
		return NewSQLBackend(gdb), nil
	}
	return nil, fmt.Errorf("unsupported storage backend %q", cfg.Backend)
}
