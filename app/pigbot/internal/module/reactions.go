package module

import (
	"context"

	"github.com/lk2023060901/pigfarm/app/pigbot/internal/growth"
	"github.com/lk2023060901/pigfarm/app/pigbot/internal/router"
	"github.com/lk2023060901/pigfarm/pkg/config"
	"github.com/lk2023060901/pigfarm/pkg/logger"
)

// ReactionsName 模块名
const ReactionsName = "Reactions Module"

// Reactions 以 chance/256 的概率给消息加表情，加了就算消费
type Reactions struct {
	chance int
	emojis []string
	rng    growth.RNG
	logger logger.Logger
}

// NewReactions 创建表情模块，rng 为 nil 时使用进程级随机源
func NewReactions(cfg ReactionsConfig, rng growth.RNG, l logger.Logger) (*Reactions, error) {
	if err := config.Validate(&cfg); err != nil {
		return nil, err
	}
	emojis := cfg.Emojis
	if len(emojis) == 0 {
		emojis = DefaultEmojis
	}
	if rng == nil {
		rng = growth.Default()
	}
	return &Reactions{
		chance: cfg.Chance,
		emojis: append([]string(nil), emojis...),
		rng:    rng,
		logger: logger.OrDefault(l).Named("module.reactions"),
	}, nil
}

// Name 实现 router.Module
func (m *Reactions) Name() string { return ReactionsName }

// Commands 实现 router.Module
func (m *Reactions) Commands() []router.Command { return nil }

// HandleCommand 实现 router.Module
func (m *Reactions) HandleCommand(context.Context, *router.Request) error { return nil }

// HandleMessage 实现 router.Module
func (m *Reactions) HandleMessage(ctx context.Context, req *router.Request) (bool, error) {
	if m.rng.Intn(256) >= m.chance {
		return false, nil
	}
	emoji := m.emojis[m.rng.Intn(len(m.emojis))]
	if err := req.Bot.SetReaction(ctx, req.Message.ChatID, req.Message.ID, emoji); err != nil {
		return true, err
	}
	m.logger.DebugContext(ctx, "reacted", "emoji", emoji)
	return true, nil
}
