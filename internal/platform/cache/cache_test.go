package cache

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

type payload struct {
	Total string `json:"total"`
}

func TestReportCacheServesUntilBump(t *testing.T) {
	ctx := context.Background()
	c := NewReportCache(newTestClient(t), time.Minute)
	var calls int32
	loader := func(context.Context) (any, error) {
		n := atomic.AddInt32(&calls, 1)
		if n == 1 {
			return payload{Total: "100.00"}, nil
		}
		return payload{Total: "250.00"}, nil
	}

	key, err := c.Key(ctx, "trial-balance", "2025-01-31")
	require.NoError(t, err)
	var got payload
	require.NoError(t, c.FetchJSON(ctx, key, &got, loader))
	require.Equal(t, "100.00", got.Total)
	require.NoError(t, c.FetchJSON(ctx, key, &got, loader))
	require.Equal(t, int32(1), atomic.LoadInt32(&calls))

	require.NoError(t, c.Bump(ctx))
	key2, err := c.Key(ctx, "trial-balance", "2025-01-31")
	require.NoError(t, err)
	require.NotEqual(t, key, key2)
	require.NoError(t, c.FetchJSON(ctx, key2, &got, loader))
	require.Equal(t, "250.00", got.Total)
	require.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestReportCacheLoaderErrorNotCached(t *testing.T) {
	ctx := context.Background()
	c := NewReportCache(newTestClient(t), time.Minute)
	boom := errors.New("boom")
	var got payload
	err := c.FetchJSON(ctx, "k", &got, func(context.Context) (any, error) { return nil, boom })
	require.ErrorIs(t, err, boom)
	require.NoError(t, c.FetchJSON(ctx, "k", &got, func(context.Context) (any, error) {
		return payload{Total: "1.00"}, nil
	}))
	require.Equal(t, "1.00", got.Total)
}

func TestReportCacheLoadSurvivesCancelledCaller(t *testing.T) {
	c := NewReportCache(newTestClient(t), time.Minute)
	started := make(chan struct{})
	release := make(chan struct{})
	var calls int32
	loader := func(ctx context.Context) (any, error) {
		if atomic.AddInt32(&calls, 1) == 1 {
			close(started)
		}
		<-release
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return payload{Total: "42.00"}, nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		var got payload
		done <- c.FetchJSON(ctx, "tb:all", &got, loader)
	}()
	<-started
	cancel()
	require.ErrorIs(t, <-done, context.Canceled)
	close(release)

	require.Eventually(t, func() bool {
		n, err := c.client.Exists(context.Background(), "tb:all").Result()
		return err == nil && n == 1
	}, time.Second, 10*time.Millisecond)

	var got payload
	require.NoError(t, c.FetchJSON(context.Background(), "tb:all", &got, loader))
	require.Equal(t, "42.00", got.Total)
	require.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestReportCacheWithoutClient(t *testing.T) {
	c := NewReportCache(nil, 0)
	var got payload
	require.NoError(t, c.FetchJSON(context.Background(), "k", &got, func(context.Context) (any, error) {
		return payload{Total: "5.00"}, nil
	}))
	require.Equal(t, "5.00", got.Total)
	require.NoError(t, c.Bump(context.Background()))
}

func TestIdempotencyGuard(t *testing.T) {
	ctx := context.Background()
	g := NewIdempotencyGuard(newTestClient(t), time.Hour)
	require.NoError(t, g.Claim(ctx, "journals", "abc"))
	require.ErrorIs(t, g.Claim(ctx, "journals", "abc"), ErrIdempotencyConflict)
	require.NoError(t, g.Claim(ctx, "payments", "abc"))

	require.NoError(t, g.Release(ctx, "journals", "abc"))
	require.NoError(t, g.Claim(ctx, "journals", "abc"))
	require.Error(t, g.Claim(ctx, "journals", ""))
}
