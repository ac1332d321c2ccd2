package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kjannette/avaline-backend/internal/models"
)

type countingSource struct {
	calls int
	obs   []models.Observation
	err   error
}

func (s *countingSource) Name() string { return "fake" }

func (s *countingSource) FetchObservations(ctx context.Context) ([]models.Observation, error) {
	s.calls++
	return s.obs, s.err
}

func setup(t *testing.T, src Source, ttl time.Duration) (*ObservationCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { rdb.Close() })
	return NewObservationCache(src, rdb, ttl), mr
}

var sample = []models.Observation{
	{Vendor: "StubHub", Quantity: 2, Price: 450, Timestamp: "2025-09-14T12:00:00Z"},
}

func TestFetch_CachesWithinTTL(t *testing.T) {
	src := &countingSource{obs: sample}
	c, mr := setup(t, src, time.Minute)
	ctx := context.Background()

	first, err := c.FetchObservations(ctx)
	require.NoError(t, err)
	second, err := c.FetchObservations(ctx)
	require.NoError(t, err)

	assert.Equal(t, sample, first)
	assert.Equal(t, sample, second)
	assert.Equal(t, 1, src.calls)
	assert.True(t, mr.Exists("avaline:observations:fake"))

	mr.FastForward(2 * time.Minute)
	_, err = c.FetchObservations(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, src.calls, "expired entry reloads from the source")
}

func TestFetch_SourceErrorNotCached(t *testing.T) {
	src := &countingSource{err: errors.New("quota exceeded")}
	c, mr := setup(t, src, time.Minute)

	_, err := c.FetchObservations(context.Background())
	require.Error(t, err)
	assert.False(t, mr.Exists("avaline:observations:fake"))
}

func TestFetch_RedisDownFallsThrough(t *testing.T) {
	src := &countingSource{obs: sample}
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1, DialTimeout: 200 * time.Millisecond})
	t.Cleanup(func() { rdb.Close() })
	c := NewObservationCache(src, rdb, time.Minute)

	got, err := c.FetchObservations(context.Background())
	require.NoError(t, err)
	assert.Equal(t, sample, got)
	assert.Error(t, c.Ping(context.Background()))
}

func TestFetch_UnreadableEntryReloads(t *testing.T) {
	src := &countingSource{obs: sample}
	c, mr := setup(t, src, time.Minute)
	require.NoError(t, mr.Set("avaline:observations:fake", "not json"))

	got, err := c.FetchObservations(context.Background())
	require.NoError(t, err)
	assert.Equal(t, sample, got)
	assert.Equal(t, 1, src.calls)
}

func TestName(t *testing.T) {
	c, _ := setup(t, &countingSource{}, 0)
	assert.Equal(t, "fake+redis", c.Name())
	assert.Equal(t, 60*time.Second, c.ttl)
}
