package repo

import (
	"Go_Site/config"
	"Go_Site/utils"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var Redis *redis.Client

// ErrLockBusy is returned when a lock is held by someone else.
var ErrLockBusy = errors.New("lock is busy")

type RedisLock struct {
	rdb   *redis.Client
	key   string
	token string
	ttl   time.Duration
}

// InitRedis initializes the Redis client when REDIS_HOST is configured.
func InitRedis() {
	if !config.AppConfig.RedisEnabled() {
		utils.Log.Info("redis disabled, using in-process locks and no cache")
		return
	}
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", config.AppConfig.RedisHost, config.AppConfig.RedisPort),
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisDB,
	})
	if _, err := client.Ping(context.Background()).Result(); err != nil {
		utils.Log.Fatal("init redis fail", zap.Error(err))
	}
	utils.Log.Info("init redis success")
	Redis = client
}

// NewRedisLock creates a Redis lock helper.
func NewRedisLock(rdb *redis.Client, key string, ttl time.Duration) *RedisLock {
	return &RedisLock{
		rdb: rdb,
		key: key,
		ttl: ttl,
	}
}

// Lock acquires a Redis-based lock.
func (l *RedisLock) Lock(ctx context.Context) error {
	token := utils.GetToken()
	ok, err := l.rdb.SetNX(ctx, l.key, token, l.ttl).Result()
	if err != nil {
		return err
	}
	if !ok {
		return ErrLockBusy
	}
	l.token = token
	return nil
}

var unlockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Unlock releases a Redis-based lock.
func (l *RedisLock) Unlock(ctx context.Context) error {
	if l.token == "" {
		return nil
	}
	_, err := unlockScript.Run(
		ctx,
		l.rdb,
		[]string{l.key},
		l.token,
	).Result()
	l.token = ""
	return err
}

// RedisLocker hands out RedisLocks and waits for busy keys up to wait.
type RedisLocker struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
	wait   time.Duration
	poll   time.Duration
}

// NewRedisLocker builds a Locker backed by rdb.
func NewRedisLocker(rdb *redis.Client, ttl, wait time.Duration) *RedisLocker {
	return &RedisLocker{
		rdb:    rdb,
		prefix: "lock:",
		ttl:    ttl,
		wait:   wait,
		poll:   50 * time.Millisecond,
	}
}

// Acquire blocks until key is locked, the wait budget is spent, or ctx ends.
func (l *RedisLocker) Acquire(ctx context.Context, key string) (func(), error) {
	lock := NewRedisLock(l.rdb, l.prefix+key, l.ttl)
	deadline := time.Now().Add(l.wait)
	for {
		err := lock.Lock(ctx)
		if err == nil {
			return func() {
				// release even when the request context is already done
				_ = lock.Unlock(context.Background())
			}, nil
		}
		if !errors.Is(err, ErrLockBusy) {
			return nil, err
		}
		if time.Now().After(deadline) {
			return nil, ErrLockBusy
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(l.poll):
		}
	}
}
