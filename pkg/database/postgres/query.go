package postgres

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/jackc/pgx/v5"
)

// applyQueryTimeout 为单条语句附加超时
func (c *Client) applyQueryTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.cfg.QueryTimeout > 0 {
		return context.WithTimeout(ctx, c.cfg.QueryTimeout)
	}
	return ctx, func() {}
}

// QueryOnePrimary 在主库上查询单条记录，无结果返回 ErrNoRows；也用于 INSERT/UPDATE ... RETURNING
func QueryOnePrimary[T any](c *Client, ctx context.Context, sql string, args ...any) (*T, error) {
	ctx, cancel := c.applyQueryTimeout(ctx)
	defer cancel()

	rows, err := c.getMaster().Query(ctx, sql, args...)
	if err != nil {
		return nil, errors.Wrap(err, "query failed")
	}
	defer rows.Close()

	return scanOne[T](rows)
}

// QueryAll 在从库上查询多条记录
func QueryAll[T any](c *Client, ctx context.Context, sql string, args ...any) ([]*T, error) {
	ctx, cancel := c.applyQueryTimeout(ctx)
	defer cancel()

	rows, err := c.getSlave().Query(ctx, sql, args...)
	if err != nil {
		return nil, errors.Wrap(err, "query failed")
	}
	defer rows.Close()

	return scanAll[T](rows)
}

// QueryValue 在主库上查询单个标量值（COUNT、排名等），无结果时 ok 为 false
//
// 名次和数量与主库上刚写入的体重一起参与计算，不能读到落后的从库。
func QueryValue[T any](c *Client, ctx context.Context, sql string, args ...any) (value T, ok bool, err error) {
	ctx, cancel := c.applyQueryTimeout(ctx)
	defer cancel()

	err = c.getMaster().QueryRow(ctx, sql, args...).Scan(&value)
	switch {
	case err == nil:
		return value, true, nil
	case errors.Is(err, pgx.ErrNoRows):
		return value, false, nil
	default:
		return value, false, errors.Wrap(err, "query value failed")
	}
}

// Exec 在主库上执行写操作，返回影响行数
func (c *Client) Exec(ctx context.Context, sql string, args ...any) (int64, error) {
	ctx, cancel := c.applyQueryTimeout(ctx)
	defer cancel()

	result, err := c.getMaster().Exec(ctx, sql, args...)
	if err != nil {
		return 0, errors.Wrap(err, "exec failed")
	}
	return result.RowsAffected(), nil
}
