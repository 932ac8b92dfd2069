package dao

import (
	"context"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/cockroachdb/errors"
	"github.com/lk2023060901/pigfarm/app/pigbot/internal/gameerr"
	"github.com/lk2023060901/pigfarm/app/pigbot/internal/metrics"
	"github.com/lk2023060901/pigfarm/app/pigbot/internal/model"
	"github.com/lk2023060901/pigfarm/pkg/database/postgres"
	"github.com/lk2023060901/pigfarm/pkg/logger"
)

const creatureTable = "pigs"

var creatureReturning = "RETURNING " + strings.Join(model.CreatureColumns, ", ")

// CreatureDAO 猪数据访问对象
type CreatureDAO struct {
	db      *postgres.Client
	logger  logger.Logger
	metrics *metrics.BotMetrics
}

// NewCreatureDAO 创建猪 DAO
func NewCreatureDAO(db *postgres.Client, l logger.Logger, m *metrics.BotMetrics) *CreatureDAO {
	return &CreatureDAO{
		db:      db,
		logger:  logger.OrDefault(l).Named("dao.creature"),
		metrics: m,
	}
}

func (d *CreatureDAO) observe(op string, start time.Time, err *error) {
	d.metrics.RecordStorage(op, *err == nil, time.Since(start).Seconds())
}

func (d *CreatureDAO) selectCreatures() squirrel.SelectBuilder {
	return postgres.QueryBuilder.Select(model.CreatureColumns...).From(creatureTable)
}

// GetCreature 读取主库，保证喂养流程读到最新体重
func (d *CreatureDAO) GetCreature(ctx context.Context, chatID, userID int64) (_ *model.Creature, err error) {
	defer d.observe("get_creature", time.Now(), &err)

	query, args, err := d.selectCreatures().
		Where(squirrel.Eq{"chat_id": chatID, "user_id": userID}).
		ToSql()
	if err != nil {
		return nil, gameerr.Storage(err, "build get creature query")
	}

	c, err := postgres.QueryOnePrimary[model.Creature](d.db, ctx, query, args...)
	if errors.Is(err, postgres.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		d.logger.ErrorContext(ctx, "failed to get creature",
			"chat_id", chatID,
			"user_id", userID,
			"error", err,
		)
		return nil, gameerr.Storage(err, "get creature")
	}
	return c, nil
}

// CreateCreature 插入新猪，(chat, user) 冲突时返回包装了 ErrCreatureExists 的存储错误
func (d *CreatureDAO) CreateCreature(ctx context.Context, c *model.Creature) (_ *model.Creature, err error) {
	defer d.observe("create_creature", time.Now(), &err)

	query, args, err := postgres.QueryBuilder.
		Insert(creatureTable).
		SetMap(creatureValues(c)).
		Suffix(creatureReturning).
		ToSql()
	if err != nil {
		return nil, gameerr.Storage(err, "build create creature query")
	}

	created, err := postgres.QueryOnePrimary[model.Creature](d.db, ctx, query, args...)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			err = errors.Mark(err, ErrCreatureExists)
		}
		d.logger.ErrorContext(ctx, "failed to create creature",
			"chat_id", c.ChatID,
			"user_id", c.UserID,
			"error", err,
		)
		return nil, gameerr.Storage(err, "create creature")
	}

	d.logger.DebugContext(ctx, "creature created",
		"id", created.ID,
		"chat_id", created.ChatID,
		"user_id", created.UserID,
	)
	return created, nil
}

// UpdateCreature 整行更新
func (d *CreatureDAO) UpdateCreature(ctx context.Context, c *model.Creature) (_ *model.Creature, err error) {
	defer d.observe("update_creature", time.Now(), &err)

	updated, err := d.update(ctx, c, squirrel.Eq{"chat_id": c.ChatID, "user_id": c.UserID})
	if errors.Is(err, postgres.ErrNoRows) {
		return nil, gameerr.Storage(ErrCreatureNotFound, "update creature")
	}
	if err != nil {
		d.logger.ErrorContext(ctx, "failed to update creature",
			"chat_id", c.ChatID,
			"user_id", c.UserID,
			"error", err,
		)
		return nil, gameerr.Storage(err, "update creature")
	}
	return updated, nil
}

// UpdateCreatureIfWeight 条件更新，体重已被其他写入修改时返回 false
func (d *CreatureDAO) UpdateCreatureIfWeight(ctx context.Context, c *model.Creature, expected int32) (_ *model.Creature, ok bool, err error) {
	defer d.observe("update_creature_if_weight", time.Now(), &err)

	updated, err := d.update(ctx, c, squirrel.Eq{"chat_id": c.ChatID, "user_id": c.UserID, "weight": expected})
	if errors.Is(err, postgres.ErrNoRows) {
		d.logger.DebugContext(ctx, "conditional update missed",
			"chat_id", c.ChatID,
			"user_id", c.UserID,
			"expected_weight", expected,
		)
		return nil, false, nil
	}
	if err != nil {
		d.logger.ErrorContext(ctx, "failed to update creature",
			"chat_id", c.ChatID,
			"user_id", c.UserID,
			"error", err,
		)
		return nil, false, gameerr.Storage(err, "update creature if weight")
	}
	return updated, true, nil
}

func (d *CreatureDAO) update(ctx context.Context, c *model.Creature, where squirrel.Eq) (*model.Creature, error) {
	values := creatureValues(c)
	delete(values, "chat_id")
	delete(values, "user_id")

	query, args, err := postgres.QueryBuilder.
		Update(creatureTable).
		SetMap(values).
		Where(where).
		Suffix(creatureReturning).
		ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "build update creature query")
	}
	return postgres.QueryOnePrimary[model.Creature](d.db, ctx, query, args...)
}

// RenameCreature 只修改名字
func (d *CreatureDAO) RenameCreature(ctx context.Context, chatID, userID int64, name string) (err error) {
	defer d.observe("rename_creature", time.Now(), &err)

	query, args, err := postgres.QueryBuilder.
		Update(creatureTable).
		Set("name", name).
		Where(squirrel.Eq{"chat_id": chatID, "user_id": userID}).
		ToSql()
	if err != nil {
		return gameerr.Storage(err, "build rename creature query")
	}

	affected, err := d.db.Exec(ctx, query, args...)
	if err != nil {
		d.logger.ErrorContext(ctx, "failed to rename creature",
			"chat_id", chatID,
			"user_id", userID,
			"error", err,
		)
		return gameerr.Storage(err, "rename creature")
	}
	if affected == 0 {
		return gameerr.Storage(ErrCreatureNotFound, "rename creature")
	}
	return nil
}

// ListCreaturesRanked 聊天内全部猪，按体重降序
func (d *CreatureDAO) ListCreaturesRanked(ctx context.Context, chatID int64) (_ []*model.Creature, err error) {
	defer d.observe("list_creatures_ranked", time.Now(), &err)

	query, args, err := d.selectCreatures().
		Where(squirrel.Eq{"chat_id": chatID}).
		OrderBy("weight DESC", "id ASC").
		ToSql()
	if err != nil {
		return nil, gameerr.Storage(err, "build list creatures query")
	}

	list, err := postgres.QueryAll[model.Creature](d.db, ctx, query, args...)
	if err != nil {
		d.logger.ErrorContext(ctx, "failed to list creatures", "chat_id", chatID, "error", err)
		return nil, gameerr.Storage(err, "list creatures ranked")
	}
	return list, nil
}

// CountCreatures 聊天内猪的数量
func (d *CreatureDAO) CountCreatures(ctx context.Context, chatID int64) (_ int, err error) {
	defer d.observe("count_creatures", time.Now(), &err)

	query, args, err := postgres.QueryBuilder.
		Select("COUNT(*)").
		From(creatureTable).
		Where(squirrel.Eq{"chat_id": chatID}).
		ToSql()
	if err != nil {
		return 0, gameerr.Storage(err, "build count creatures query")
	}

	n, _, err := postgres.QueryValue[int64](d.db, ctx, query, args...)
	if err != nil {
		d.logger.ErrorContext(ctx, "failed to count creatures", "chat_id", chatID, "error", err)
		return 0, gameerr.Storage(err, "count creatures")
	}
	return int(n), nil
}

// RankOf 使用窗口函数计算名次
func (d *CreatureDAO) RankOf(ctx context.Context, chatID, userID int64) (_ int, _ bool, err error) {
	defer d.observe("rank_of", time.Now(), &err)

	ranked := postgres.QueryBuilder.
		Select("user_id", "ROW_NUMBER() OVER (ORDER BY weight DESC, id ASC) AS place").
		From(creatureTable).
		Where(squirrel.Eq{"chat_id": chatID})

	query, args, err := postgres.QueryBuilder.
		Select("place").
		FromSelect(ranked, "ranked").
		Where(squirrel.Eq{"user_id": userID}).
		ToSql()
	if err != nil {
		return 0, false, gameerr.Storage(err, "build rank query")
	}

	rank, ok, err := postgres.QueryValue[int64](d.db, ctx, query, args...)
	if err != nil {
		d.logger.ErrorContext(ctx, "failed to get rank",
			"chat_id", chatID,
			"user_id", userID,
			"error", err,
		)
		return 0, false, gameerr.Storage(err, "rank of")
	}
	return int(rank), ok, nil
}

// FindCreaturesByName ILIKE 子串匹配，% 和 _ 按字面量处理
func (d *CreatureDAO) FindCreaturesByName(ctx context.Context, chatID int64, substr string) (_ []*model.Creature, err error) {
	defer d.observe("find_creatures_by_name", time.Now(), &err)

	query, args, err := d.selectCreatures().
		Where(squirrel.Eq{"chat_id": chatID}).
		Where(squirrel.ILike{"name": "%" + EscapeLike(substr) + "%"}).
		OrderBy("weight DESC", "id ASC").
		ToSql()
	if err != nil {
		return nil, gameerr.Storage(err, "build find creatures query")
	}

	list, err := postgres.QueryAll[model.Creature](d.db, ctx, query, args...)
	if err != nil {
		d.logger.ErrorContext(ctx, "failed to find creatures",
			"chat_id", chatID,
			"name", substr,
			"error", err,
		)
		return nil, gameerr.Storage(err, "find creatures by name")
	}
	return list, nil
}

// Ping 检查主库连通性
func (d *CreatureDAO) Ping(ctx context.Context) error {
	return d.db.Ping(ctx)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// EscapeLike 转义 LIKE 模式中的通配符
func EscapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// creatureValues 除 id 以外的全部列
func creatureValues(c *model.Creature) map[string]any {
	return map[string]any{
		"chat_id":         c.ChatID,
		"user_id":         c.UserID,
		"weight":          c.Weight,
		"name":            c.Name,
		"last_feed":       c.LastFeed,
		"last_salo":       c.LastSalo,
		"owner_name":      c.OwnerName,
		"salo":            c.Salo,
		"poisoned":        c.Poisoned,
		"barn":            c.Barn,
		"pigsty":          c.Pigsty,
		"vetclinic":       c.Vetclinic,
		"vet_last_pickup": c.VetLastPickup,
		"last_weight":     c.LastWeight,
		"avatar_url":      c.AvatarURL,
		"biolab":          c.Biolab,
		"butchery":        c.Butchery,
		"pills":           c.Pills,
		"factory":         c.Factory,
		"warehouse":       c.Warehouse,
		"institute":       c.Institute,
	}
}
