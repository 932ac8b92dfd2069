package dao

import (
	"context"
	_ "embed"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/lk2023060901/pigfarm/pkg/database/postgres"
	"github.com/lk2023060901/pigfarm/pkg/logger"
)

//go:embed schema.sql
var schemaSQL string

// Statements 拆分内置建表脚本，每条语句不含结尾分号
func Statements() []string {
	parts := strings.Split(schemaSQL, ";")
	stmts := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			stmts = append(stmts, s)
		}
	}
	return stmts
}

// Migrate 在一个事务中执行建表脚本，语句均为幂等，任一失败则整体回滚
func Migrate(ctx context.Context, db *postgres.Client, l logger.Logger) error {
	l = logger.OrDefault(l).Named("dao.migrate")
	stmts := Statements()
	err := db.WithTx(ctx, func(tx postgres.Tx) error {
		for i, stmt := range stmts {
			if _, err := tx.Exec(ctx, stmt); err != nil {
				l.Error("failed to apply schema statement", "index", i, "error", err)
				return errors.Wrapf(err, "apply schema statement %d", i)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	l.Info("schema applied", "statements", len(stmts))
	return nil
}
