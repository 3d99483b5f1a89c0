package lock

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPeriodKey(t *testing.T) {
	assert.Equal(t, "lock:salary:2025-02", PeriodKey("salary", 2, 2025))
}

func TestNopLocker(t *testing.T) {
	release, err := NopLocker{}.Obtain(context.Background(), "k", time.Second)
	require.NoError(t, err)
	assert.NoError(t, release(context.Background()))
}

func TestRedisLocker_Unreachable(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 200 * time.Millisecond, MaxRetries: -1})
	defer rdb.Close()

	_, err := NewRedisLocker(rdb).Obtain(context.Background(), "k", time.Second)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotObtained)
}

func TestConnect_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	rdb, err := Connect(ctx, "127.0.0.1:1", "")
	assert.Error(t, err)
	assert.Nil(t, rdb)
}

func TestRedisLocker_Integration(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set, skipping integration test")
	}
	ctx := context.Background()
	rdb, err := Connect(ctx, addr, os.Getenv("REDIS_PASSWORD"))
	if err != nil {
		t.Skipf("failed to connect: %v, skipping integration test", err)
	}
	defer rdb.Close()

	locker := NewRedisLocker(rdb)
	key := PeriodKey("test", 1, int(time.Now().Unix()%9000)+1000)

	release, err := locker.Obtain(ctx, key, 5*time.Second)
	require.NoError(t, err)

	_, err = locker.Obtain(ctx, key, 5*time.Second)
	assert.ErrorIs(t, err, ErrNotObtained)

	require.NoError(t, release(ctx))
	again, err := locker.Obtain(ctx, key, 5*time.Second)
	require.NoError(t, err)
	assert.NoError(t, again(ctx))
}
