package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/fstgc/vms-portal/config"
	"github.com/fstgc/vms-portal/internal/adapters/memory"
	redisadapter "github.com/fstgc/vms-portal/internal/adapters/redis"
	"github.com/fstgc/vms-portal/internal/ports"
)

// StoresConfig contains configuration for the session and generation stores.
type StoresConfig struct {
	Session     config.SessionConfig
	RedisClient redis.UniversalClient
	Logger      *slog.Logger
}

// Stores is the state the portal keeps per signed-in user.
type Stores struct {
	Sessions    ports.SessionStore
	Generations ports.GenerationStore
	// Memory is set when sessions live in process memory; it needs sweeping.
	Memory *memory.SessionStore
}

// BuildStores picks the session backend configured by SESSION_STORE. Both
// Redis stores share one client; generation counters expire with the
// remember-me lifetime. In memory, counters go when their session expires.
func BuildStores(cfg StoresConfig) (Stores, error) {
	switch cfg.Session.Store {
	case config.SessionStoreMemory:
		if cfg.Logger != nil {
			cfg.Logger.Warn("using in-memory session store; sessions are lost on restart and not shared between instances")
		}
		mem := memory.NewSessionStore(nil)
		gens := memory.NewGenerationStore()
		mem.OnExpire(func(id string) {
			_ = gens.Forget(context.Background(), id)
		})
		return Stores{
			Sessions:    mem,
			Generations: gens,
			Memory:      mem,
		}, nil

	case config.SessionStoreRedis, "":
		if cfg.RedisClient == nil {
			return Stores{}, errors.New("redis session store selected but no redis client configured")
		}
		return Stores{
			Sessions: redisadapter.NewSessionStore(cfg.RedisClient, redisadapter.SessionStoreOptions{
				Prefix: cfg.Session.KeyPrefix,
			}),
			Generations: redisadapter.NewGenerationStore(cfg.RedisClient, redisadapter.DefaultGenerationPrefix,
				cfg.Session.RememberTTL),
		}, nil

	default:
		return Stores{}, fmt.Errorf("unsupported session store %q", cfg.Session.Store)
	}
}

// NeedsRedis reports whether the configuration requires a Redis connection.
func NeedsRedis(cfg *config.AppConfig) bool {
	return cfg.Session.Store != config.SessionStoreMemory
}
