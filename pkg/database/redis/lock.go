package redis

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
)

const defaultLockTTL = 10 * time.Second

// 只有持有者才能释放或续期
var (
	unlockScript = goredis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0`)

	refreshScript = goredis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("pexpire", KEYS[1], ARGV[2])
end
return 0`)
)

// Lock 单节点分布式锁（SET NX PX + 持有者校验）
type Lock struct {
	client *Client
	key    string
	value  string // 持有者标识
	ttl    time.Duration
}

// NewLock 创建分布式锁
func NewLock(client *Client, key string, ttl time.Duration) *Lock {
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	return &Lock{
		client: client,
		key:    key,
		value:  uuid.NewString(),
		ttl:    ttl,
	}
}

// Key 返回锁的键
func (l *Lock) Key() string {
	return l.key
}

// TryLock 尝试获取锁，立即返回
func (l *Lock) TryLock(ctx context.Context) (bool, error) {
	ok, err := l.client.getMaster().SetNX(ctx, l.key, l.value, l.ttl).Result()
	if err != nil {
		return false, errors.Wrap(err, "failed to try lock")
	}
	return ok, nil
}

// Lock 获取锁，被占用时返回 ErrLockFailed
func (l *Lock) Lock(ctx context.Context) error {
	ok, err := l.TryLock(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return ErrLockFailed
	}
	return nil
}

// LockWithRetry 按固定间隔重试获取锁
func (l *Lock) LockWithRetry(ctx context.Context, retryInterval time.Duration, maxRetries int) error {
	if maxRetries < 1 {
		maxRetries = 1
	}
	for i := 0; i < maxRetries; i++ {
		ok, err := l.TryLock(ctx)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
		if i == maxRetries-1 {
			break
		}

		timer := time.NewTimer(retryInterval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
	return ErrLockFailed
}

// Unlock 释放锁
func (l *Lock) Unlock(ctx context.Context) error {
	n, err := unlockScript.Run(ctx, l.client.getMaster(), []string{l.key}, l.value).Int64()
	if err != nil {
		return errors.Wrap(err, "failed to unlock")
	}
	if n == 0 {
		return ErrLockNotHeld
	}
	return nil
}

// Refresh 续期锁
func (l *Lock) Refresh(ctx context.Context) error {
	n, err := refreshScript.Run(ctx, l.client.getMaster(), []string{l.key}, l.value, l.ttl.Milliseconds()).Int64()
	if err != nil {
		return errors.Wrap(err, "failed to refresh lock")
	}
	if n == 0 {
		return ErrLockNotHeld
	}
	return nil
}

// WithLock 在锁的保护下执行 fn
func (c *Client) WithLock(ctx context.Context, key string, ttl time.Duration, fn func() error) error {
	return c.WithLockRetry(ctx, key, ttl, 0, 1, fn)
}

// WithLockRetry 在锁的保护下执行 fn，获取锁时按间隔重试
// 释放失败（例如锁已过期）只记录日志，不覆盖 fn 的返回值
func (c *Client) WithLockRetry(ctx context.Context, key string, ttl time.Duration, retryInterval time.Duration, maxRetries int, fn func() error) error {
	lock := NewLock(c, key, ttl)
	if err := lock.LockWithRetry(ctx, retryInterval, maxRetries); err != nil {
		return err
	}

	defer func() {
		if err := lock.Unlock(context.WithoutCancel(ctx)); err != nil {
			c.logger.Warn("failed to release lock", "key", key, "error", err)
		}
	}()

	return fn()
}

// IsLocked 检查锁是否被持有
func (c *Client) IsLocked(ctx context.Context, key string) (bool, error) {
	n, err := c.Exists(ctx, key)
	if err != nil {
		return false, errors.Wrap(err, "failed to check lock")
	}
	return n > 0, nil
}
