package job

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestRedisLocker(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()
	ctx := context.Background()

	a := NewRedisLocker(rdb, nil)
	b := NewRedisLocker(rdb, nil)

	release, ok, err := a.TryLock(ctx, "lock:test", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	_, ok, err = b.TryLock(ctx, "lock:test", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok, "lock is held")

	release()
	assert.False(t, mr.Exists("lock:test"))

	releaseB, ok, err := b.TryLock(ctx, "lock:test", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	// 过期后被他人取得的锁不能被旧持有者释放
	release()
	assert.True(t, mr.Exists("lock:test"))
	releaseB()
}

func TestRedisLocker_Expires(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()
	ctx := context.Background()

	l := NewRedisLocker(rdb, nil)
	_, ok, err := l.TryLock(ctx, "lock:ttl", time.Second)
	require.NoError(t, err)
	require.True(t, ok)

	mr.FastForward(2 * time.Second)

	_, ok, err = l.TryLock(ctx, "lock:ttl", time.Second)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRedisLocker_ReleaseFailureIsLogged(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	defer rdb.Close()

	core, logs := observer.New(zapcore.WarnLevel)
	l := NewRedisLocker(rdb, zap.New(core))

	release, ok, err := l.TryLock(context.Background(), "lock:lost", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	mr.Close()
	release()

	entries := logs.FilterMessage("释放分布式锁失败").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "lock:lost", entries[0].ContextMap()["key"])
}
