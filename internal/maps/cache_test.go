package maps

import (
	"context"
	"errors"
	"testing"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/UmarSidiki/taxibooking/pkg/redis"
)

type stubProvider struct {
	km    float64
	err   error
	calls int
}

func (s *stubProvider) DistanceKm(ctx context.Context, origin, destination string, stops []string) (float64, error) {
	s.calls++
	return s.km, s.err
}

func TestCachedProviderHit(t *testing.T) {
	db, mock := redismock.NewClientMock()
	inner := &stubProvider{km: 42.5}
	p := NewCachedProvider(inner, redis.Wrap(db))

	key := distanceCacheKey("Berlin Hbf", "BER Airport", nil)
	mock.ExpectGet(key).SetVal("27.3")

	km, err := p.DistanceKm(context.Background(), "Berlin Hbf", "BER Airport", nil)
	require.NoError(t, err)
	assert.Equal(t, 27.3, km)
	assert.Equal(t, 0, inner.calls, "cache hit must not reach the provider")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCachedProviderMissStoresResult(t *testing.T) {
	db, mock := redismock.NewClientMock()
	inner := &stubProvider{km: 42.5}
	p := NewCachedProvider(inner, redis.Wrap(db))

	key := distanceCacheKey("Berlin Hbf", "BER Airport", nil)
	mock.ExpectGet(key).RedisNil()
	mock.ExpectSet(key, "42.5", distanceCacheTTL).SetVal("OK")

	km, err := p.DistanceKm(context.Background(), "Berlin Hbf", "BER Airport", nil)
	require.NoError(t, err)
	assert.Equal(t, 42.5, km)
	assert.Equal(t, 1, inner.calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCachedProviderPropagatesUnavailable(t *testing.T) {
	db, mock := redismock.NewClientMock()
	inner := &stubProvider{err: ErrUnavailable}
	p := NewCachedProvider(inner, redis.Wrap(db))

	mock.ExpectGet(distanceCacheKey("a", "b", nil)).RedisNil()

	_, err := p.DistanceKm(context.Background(), "a", "b", nil)
	assert.True(t, errors.Is(err, ErrUnavailable))
}

func TestDistanceCacheKeyNormalizes(t *testing.T) {
	assert.Equal(t,
		distanceCacheKey("  Berlin Hbf ", "BER Airport", nil),
		distanceCacheKey("berlin hbf", "ber airport", nil))
	assert.NotEqual(t,
		distanceCacheKey("berlin", "hamburg", nil),
		distanceCacheKey("hamburg", "berlin", nil))
}

func TestDistanceCacheKeyIncludesStops(t *testing.T) {
	direct := distanceCacheKey("Zurich Airport", "Lucerne", nil)
	viaZug := distanceCacheKey("Zurich Airport", "Lucerne", []string{"Zug"})

	assert.NotEqual(t, direct, viaZug, "a routed trip must not share the direct trip's entry")
	assert.Equal(t, viaZug, distanceCacheKey("zurich airport", "lucerne", []string{" ZUG "}))
}
