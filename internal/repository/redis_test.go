package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/require"
)

func TestRedisSuppression(t *testing.T) {
	mr := miniredis.RunT(t)
	repo := NewRedisRepository(redis.NewClient(&redis.Options{Addr: mr.Addr()}), time.Hour)
	defer repo.Close()

	ctx := context.Background()
	require.NoError(t, repo.Ping(ctx))

	suppressed, err := repo.IsTokenSuppressed(ctx, "tok")
	require.NoError(t, err)
	require.False(t, suppressed)

	require.NoError(t, repo.SuppressToken(ctx, "tok", 0))
	suppressed, err = repo.IsTokenSuppressed(ctx, "tok")
	require.NoError(t, err)
	require.True(t, suppressed)
	require.Equal(t, time.Hour, mr.TTL("todo:push:suppressed:tok"))

	mr.FastForward(2 * time.Hour)
	suppressed, err = repo.IsTokenSuppressed(ctx, "tok")
	require.NoError(t, err)
	require.False(t, suppressed)
}
