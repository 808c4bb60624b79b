package maps

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
	"time"

	"github.com/UmarSidiki/taxibooking/pkg/redis"
)

const distanceCacheTTL = 6 * time.Hour

// CachedProvider caches resolved distances in Redis so repeated quotes for
// the same route skip the upstream call. Cache failures are ignored, the
// inner provider is always the source of truth.
type CachedProvider struct {
	inner DistanceProvider
	cache *redis.Client
	ttl   time.Duration
}

// NewCachedProvider wraps a provider with a Redis distance cache.
func NewCachedProvider(inner DistanceProvider, cache *redis.Client) *CachedProvider {
	return &CachedProvider{inner: inner, cache: cache, ttl: distanceCacheTTL}
}

func (p *CachedProvider) DistanceKm(ctx context.Context, origin, destination string, stops []string) (float64, error) {
	key := distanceCacheKey(origin, destination, stops)

	if cached, err := p.cache.RetryableGet(ctx, key); err == nil {
		if km, err := strconv.ParseFloat(cached, 64); err == nil {
			return km, nil
		}
	}

	km, err := p.inner.DistanceKm(ctx, origin, destination, stops)
	if err != nil {
		return 0, err
	}

	_ = p.cache.RetryableSet(ctx, key, strconv.FormatFloat(km, 'f', -1, 64), p.ttl)
	return km, nil
}

func distanceCacheKey(origin, destination string, stops []string) string {
	parts := make([]string, 0, len(stops)+2)
	parts = append(parts, origin)
	parts = append(parts, stops...)
	parts = append(parts, destination)
	for i, p := range parts {
		parts[i] = strings.ToLower(strings.TrimSpace(p))
	}
	sum := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return "maps:dist:" + hex.EncodeToString(sum[:8])
}
