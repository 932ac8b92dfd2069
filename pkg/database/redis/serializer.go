package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/cockroachdb/errors"
)

// GetObject 获取对象（从从库读取，JSON 反序列化），键不存在时返回 ErrNil
func GetObject[T any](c *Client, ctx context.Context, key string) (*T, error) {
	val, err := c.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	var obj T
	if err := json.Unmarshal([]byte(val), &obj); err != nil {
		return nil, errors.Wrapf(err, "unmarshal object %s failed", key)
	}
	return &obj, nil
}

// SetObject 设置对象（写入主库，JSON 序列化）
func SetObject(c *Client, ctx context.Context, key string, value any, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return errors.Wrapf(err, "marshal object %s failed", key)
	}
	return c.Set(ctx, key, data, expiration)
}
