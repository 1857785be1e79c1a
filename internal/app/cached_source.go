package app

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"ivy_homes/internal/domain"
)

// CachedSource keeps the last full load of a remote source in the cache so
// a restart does not depend on the upstream being reachable.
type CachedSource struct {
	src   domain.PropertySource
	cache domain.Cache
	ttl   time.Duration
}

func NewCachedSource(src domain.PropertySource, c domain.Cache, ttl time.Duration) *CachedSource {
	return &CachedSource{src: src, cache: c, ttl: ttl}
}

func SnapshotKey(source string) string { return "inventory:" + source }

func (c *CachedSource) Name() string { return c.src.Name() }

func (c *CachedSource) Load(ctx context.Context) ([]domain.Property, error) {
	key := SnapshotKey(c.src.Name())

	var out []domain.Property
	ok, err := c.cache.Get(ctx, key, &out)
	if err != nil {
		// a broken cache must not block startup; fall through to the source
		log.Warn().Err(err).Str("key", key).Msg("snapshot cache read failed")
	}
	if ok && err == nil {
		log.Info().Str("key", key).Int("count", len(out)).Msg("inventory served from cache")
		return out, nil
	}

	props, err := c.src.Load(ctx)
	if err != nil {
		return nil, err
	}
	if err := c.cache.Set(ctx, key, props, int(c.ttl.Seconds())); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("snapshot cache write failed")
	}
	return props, nil
}
