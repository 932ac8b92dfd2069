package postgres

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/jackc/pgx/v5"
)

// Tx 事务内可执行的操作
type Tx interface {
	// Exec 执行写操作，返回影响行数
	Exec(ctx context.Context, sql string, args ...any) (int64, error)
}

type txWrapper struct {
	tx      pgx.Tx
	timeout time.Duration
}

func (t *txWrapper) applyQueryTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if t.timeout > 0 {
		return context.WithTimeout(ctx, t.timeout)
	}
	return ctx, func() {}
}

func (t *txWrapper) Exec(ctx context.Context, sql string, args ...any) (int64, error) {
	ctx, cancel := t.applyQueryTimeout(ctx)
	defer cancel()

	result, err := t.tx.Exec(ctx, sql, args...)
	if err != nil {
		return 0, errors.Wrap(err, "exec failed")
	}
	return result.RowsAffected(), nil
}

// WithTx 在主库事务中执行 fn，fn 返回错误或 panic 时回滚；单条语句超时沿用 QueryTimeout
func (c *Client) WithTx(ctx context.Context, fn func(Tx) error) error {
	tx, err := c.getMaster().Begin(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(ctx)
			panic(p)
		}
	}()

	if err := fn(&txWrapper{tx: tx, timeout: c.cfg.QueryTimeout}); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			return errors.WithSecondaryError(err, rbErr)
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return errors.Wrap(err, "failed to commit transaction")
	}
	return nil
}
