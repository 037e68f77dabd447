//go:build integration

package redis_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tcRedis "github.com/testcontainers/testcontainers-go/modules/redis"

	"github.com/jhoicas/estoque-api/internal/infrastructure/redis"
)

func TestVisitCounter_Redis(t *testing.T) {
	ctx := context.Background()
	rdC, err := tcRedis.Run(ctx, "redis:7-alpine")
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdC.Terminate(ctx) })

	url, err := rdC.ConnectionString(ctx)
	require.NoError(t, err)

	rdb, err := redis.NewClient(ctx, url)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })

	counter := redis.NewVisitCounter(rdb, "test:visits")
	n, err := counter.Get(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	var wg sync.WaitGroup
	for i := 0; i < 25; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := counter.Increment(ctx)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	n, err = counter.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(25), n)
}
