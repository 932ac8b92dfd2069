package dao

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/lk2023060901/pigfarm/app/pigbot/internal/gameerr"
	"github.com/lk2023060901/pigfarm/app/pigbot/internal/metrics"
	"github.com/lk2023060901/pigfarm/app/pigbot/internal/model"
	"github.com/lk2023060901/pigfarm/pkg/database/postgres"
	"github.com/lk2023060901/pigfarm/pkg/logger"
)

const itemTable = "loot"

var emptyJSON = json.RawMessage(`{}`)

// ItemDAO 战利品数据访问对象
type ItemDAO struct {
	db      *postgres.Client
	logger  logger.Logger
	metrics *metrics.BotMetrics
}

// NewItemDAO 创建战利品 DAO
func NewItemDAO(db *postgres.Client, l logger.Logger, m *metrics.BotMetrics) *ItemDAO {
	return &ItemDAO{
		db:      db,
		logger:  logger.OrDefault(l).Named("dao.item"),
		metrics: m,
	}
}

// ListItems 按 ID 升序列出玩家的战利品
func (d *ItemDAO) ListItems(ctx context.Context, chatID, owner int64) (_ []*model.Item, err error) {
	start := time.Now()
	defer func() {
		d.metrics.RecordStorage("list_items", err == nil, time.Since(start).Seconds())
	}()

	query, args, err := postgres.QueryBuilder.
		Select(model.ItemColumns...).
		From(itemTable).
		Where(squirrel.Eq{"chat_id": chatID, "owner": owner}).
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		return nil, gameerr.Storage(err, "build list items query")
	}

	items, err := postgres.QueryAll[model.Item](d.db, ctx, query, args...)
	if err != nil {
		d.logger.ErrorContext(ctx, "failed to list items",
			"chat_id", chatID,
			"owner", owner,
			"error", err,
		)
		return nil, gameerr.Storage(err, "list items")
	}
	return items, nil
}

// AddItem 新增战利品
func (d *ItemDAO) AddItem(ctx context.Context, item *model.Item) (_ *model.Item, err error) {
	start := time.Now()
	defer func() {
		d.metrics.RecordStorage("add_item", err == nil, time.Since(start).Seconds())
	}()

	prepareItem(item)

	query, args, err := postgres.QueryBuilder.
		Insert(itemTable).
		SetMap(map[string]any{
			"chat_id":     item.ChatID,
			"owner":       item.Owner,
			"name":        item.Name,
			"icon":        item.Icon,
			"description": item.Description,
			"class_name":  item.ClassName,
			"class_icon":  item.ClassIcon,
			"weight":      item.Weight,
			"base_stats":  item.BaseStats,
			"rarity":      item.Rarity,
			"uuid":        item.UUID,
		}).
		Suffix("RETURNING " + strings.Join(model.ItemColumns, ", ")).
		ToSql()
	if err != nil {
		return nil, gameerr.Storage(err, "build add item query")
	}

	created, err := postgres.QueryOnePrimary[model.Item](d.db, ctx, query, args...)
	if err != nil {
		d.logger.ErrorContext(ctx, "failed to add item",
			"chat_id", item.ChatID,
			"owner", item.Owner,
			"error", err,
		)
		return nil, gameerr.Storage(err, "add item")
	}
	return created, nil
}

// prepareItem 补齐 UUID 与空 JSON 字段
func prepareItem(item *model.Item) {
	if item.UUID == uuid.Nil {
		item.UUID = uuid.New()
	}
	if len(item.BaseStats) == 0 {
		item.BaseStats = emptyJSON
	}
	if len(item.Rarity) == 0 {
		item.Rarity = emptyJSON
	}
}
