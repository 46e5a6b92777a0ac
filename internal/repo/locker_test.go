package repo

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestLocalLockerSerializes(t *testing.T) {
	l := NewLocalLocker(time.Second)
	var inside, maxInside int32
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := l.Acquire(context.Background(), "asset:1")
			if !assert.NoError(t, err) {
				return
			}
			n := atomic.AddInt32(&inside, 1)
			for {
				m := atomic.LoadInt32(&maxInside)
				if n <= m || atomic.CompareAndSwapInt32(&maxInside, m, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			atomic.AddInt32(&inside, -1)
			release()
		}()
	}
	wg.Wait()
	assert.EqualValues(t, 1, maxInside)
}

func TestLocalLockerBusy(t *testing.T) {
	l := NewLocalLocker(20 * time.Millisecond)
	release, err := l.Acquire(context.Background(), "k")
	require.NoError(t, err)

	_, err = l.Acquire(context.Background(), "k")
	assert.ErrorIs(t, err, ErrLockBusy)

	other, err := l.Acquire(context.Background(), "other")
	require.NoError(t, err)
	other()

	release()
	release() // second call is a no-op
	again, err := l.Acquire(context.Background(), "k")
	require.NoError(t, err)
	again()
}

func TestLocalLockerZeroWait(t *testing.T) {
	l := NewLocalLocker(0)
	release, err := l.Acquire(context.Background(), "k")
	require.NoError(t, err)
	defer release()

	_, err = l.Acquire(context.Background(), "k")
	assert.ErrorIs(t, err, ErrLockBusy)
}

func TestLocalLockerContextCanceled(t *testing.T) {
	l := NewLocalLocker(time.Second)
	release, err := l.Acquire(context.Background(), "k")
	require.NoError(t, err)
	defer release()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = l.Acquire(ctx, "k")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRedisLockUnlockOnlyOwnToken(t *testing.T) {
	mr, client := newTestRedis(t)
	ctx := context.Background()

	first := NewRedisLock(client, "lock:a", time.Minute)
	require.NoError(t, first.Lock(ctx))
	second := NewRedisLock(client, "lock:a", time.Minute)
	assert.ErrorIs(t, second.Lock(ctx), ErrLockBusy)

	// unlock without owning the key leaves it alone
	require.NoError(t, second.Unlock(ctx))
	assert.True(t, mr.Exists("lock:a"))

	require.NoError(t, first.Unlock(ctx))
	assert.False(t, mr.Exists("lock:a"))
}

func TestRedisLockerWaitsThenSucceeds(t *testing.T) {
	_, client := newTestRedis(t)
	l := NewRedisLocker(client, time.Minute, time.Second)
	l.poll = 5 * time.Millisecond

	release, err := l.Acquire(context.Background(), "asset:1")
	require.NoError(t, err)
	go func() {
		time.Sleep(20 * time.Millisecond)
		release()
	}()

	again, err := l.Acquire(context.Background(), "asset:1")
	require.NoError(t, err)
	again()
}

func TestRedisLockerBusy(t *testing.T) {
	mr, client := newTestRedis(t)
	l := NewRedisLocker(client, time.Minute, 20*time.Millisecond)
	l.poll = 5 * time.Millisecond

	release, err := l.Acquire(context.Background(), "asset:1")
	require.NoError(t, err)
	defer release()
	assert.True(t, mr.Exists("lock:asset:1"))

	_, err = l.Acquire(context.Background(), "asset:1")
	assert.ErrorIs(t, err, ErrLockBusy)
}

func TestRedisLockerLeaseExpires(t *testing.T) {
	mr, client := newTestRedis(t)
	l := NewRedisLocker(client, time.Second, 0)

	_, err := l.Acquire(context.Background(), "asset:1")
	require.NoError(t, err)
	mr.FastForward(2 * time.Second)

	release, err := l.Acquire(context.Background(), "asset:1")
	require.NoError(t, err)
	release()
}

func TestNewLockerPicksBackend(t *testing.T) {
	saved := Redis
	t.Cleanup(func() { Redis = saved })

	Redis = nil
	_, ok := NewLocker(time.Second, time.Second).(*LocalLocker)
	assert.True(t, ok)

	_, client := newTestRedis(t)
	Redis = client
	_, ok = NewLocker(time.Second, time.Second).(*RedisLocker)
	assert.True(t, ok)
}
