package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/fstgc/vms-portal/internal/ports"
)

// DefaultGenerationPrefix namespaces generation counters.
const DefaultGenerationPrefix = "vms:gen:"

// GenerationStore keeps per-session render generations as Redis counters.
// Each scope is a hash of container -> counter so Forget is a single DEL.
type GenerationStore struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// NewGenerationStore creates a GenerationStore whose hashes expire ttl after
// their last increment.
func NewGenerationStore(client redis.UniversalClient, prefix string, ttl time.Duration) *GenerationStore {
	if prefix == "" {
		prefix = DefaultGenerationPrefix
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &GenerationStore{client: client, prefix: prefix, ttl: ttl}
}

var _ ports.GenerationStore = (*GenerationStore)(nil)

func (g *GenerationStore) Next(ctx context.Context, scope, container string) (int64, error) {
	key := g.prefix + scope
	pipe := g.client.TxPipeline()
	incr := pipe.HIncrBy(ctx, key, container, 1)
	pipe.Expire(ctx, key, g.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("increment generation: %w", err)
	}
	return incr.Val(), nil
}

func (g *GenerationStore) Current(ctx context.Context, scope, container string) (int64, error) {
	n, err := g.client.HGet(ctx, g.prefix+scope, container).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("read generation: %w", err)
	}
	return n, nil
}

func (g *GenerationStore) Forget(ctx context.Context, scope string) error {
	return g.client.Del(ctx, g.prefix+scope).Err()
}
