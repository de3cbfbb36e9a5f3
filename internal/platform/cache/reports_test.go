package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) *ReportCache {
	t.Helper()
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewReportCache(client, time.Minute)
}

func TestFetchJSONPopulatesOnMiss(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	calls := 0
	loader := func(context.Context) (any, error) {
		calls++
		return map[string]float64{"total": 42.5}, nil
	}

	var out map[string]float64
	key, err := c.BuildKey(ctx, "reports", "tb", "1")
	require.NoError(t, err)

	require.NoError(t, c.FetchJSON(ctx, key, &out, loader))
	require.Equal(t, 42.5, out["total"])
	require.Equal(t, 1, calls)

	require.NoError(t, c.FetchJSON(ctx, key, &out, loader))
	require.Equal(t, 1, calls, "second fetch should hit the cache")
}

func TestBumpChangesKey(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	before, err := c.BuildKey(ctx, "reports", "valuation", "1")
	require.NoError(t, err)

	require.NoError(t, c.Bump(ctx))

	after, err := c.BuildKey(ctx, "reports", "valuation", "1")
	require.NoError(t, err)
	require.NotEqual(t, before, after)
}
