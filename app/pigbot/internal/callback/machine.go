package callback

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/lk2023060901/pigfarm/app/pigbot/internal/gameerr"
	"github.com/lk2023060901/pigfarm/app/pigbot/internal/model"
	"github.com/lk2023060901/pigfarm/app/pigbot/internal/router"
	"github.com/lk2023060901/pigfarm/app/pigbot/internal/service"
	"github.com/lk2023060901/pigfarm/app/pigbot/internal/transport"
	"github.com/lk2023060901/pigfarm/pkg/logger"
)

// Game 状态机用到的游戏操作
type Game interface {
	Grow(ctx context.Context, actor model.Actor, nameHint string) (*service.GrowResult, error)
	Info(ctx context.Context, actor model.Actor) (*service.InfoResult, error)
}

// Machine 回调状态机
//
// 成功的分支自行应答一次；返回错误时尚未应答，由路由应答。
type Machine struct {
	game   Game
	logger logger.Logger
}

// NewMachine 创建状态机
func NewMachine(game Game, l logger.Logger) *Machine {
	return &Machine{game: game, logger: logger.OrDefault(l).Named("callback")}
}

// Handle 处理一次回调
func (m *Machine) Handle(ctx context.Context, req *router.CallbackRequest) error {
	if req.Query.Message == nil {
		return req.Answer(ctx, "")
	}

	action, err := Decode(req.Query.Data)
	if err != nil {
		return err
	}

	switch action.Kind {
	case KindGrow:
		return m.grow(ctx, req, action)
	case KindRemove:
		return m.remove(ctx, req, action)
	case KindBack:
		return m.back(ctx, req, action)
	default:
		m.logger.DebugContext(ctx, "unknown callback action", "action", action.Word)
		return req.Answer(ctx, service.TextUnknownCommand)
	}
}

func (m *Machine) grow(ctx context.Context, req *router.CallbackRequest, a Action) error {
	if req.Actor.UserID != a.Player {
		return gameerr.Authorization(service.TextNotYourGrow)
	}
	if err := m.requireCreature(ctx, req.Actor); err != nil {
		return err
	}

	res, err := m.game.Grow(ctx, req.Actor, "")
	if err != nil {
		return err
	}

	msg := req.Query.Message
	if err := req.Bot.EditText(ctx, msg.ChatID, msg.ID, res.Text, BackKeyboard(a.Player)); err != nil {
		return errors.Wrap(err, "edit grow result")
	}
	return req.Answer(ctx, "")
}

func (m *Machine) remove(ctx context.Context, req *router.CallbackRequest, a Action) error {
	msg := req.Query.Message
	if err := req.Bot.DeleteMessage(ctx, msg.ChatID, msg.ID); err != nil {
		return errors.Wrap(err, "delete control message")
	}

	if m.canDelete(ctx, req.Bot, msg.ChatID) {
		if err := req.Bot.DeleteMessage(ctx, msg.ChatID, a.Message); err != nil {
			m.logger.DebugContext(ctx, "failed to delete original message",
				"message_id", a.Message,
				"error", err,
			)
		}
	}
	return req.Answer(ctx, "")
}

// canDelete 机器人是否为群主或管理员
func (m *Machine) canDelete(ctx context.Context, bot transport.Bot, chatID int64) bool {
	self, err := bot.GetSelf(ctx)
	if err != nil {
		m.logger.DebugContext(ctx, "failed to get bot identity", "error", err)
		return false
	}
	member, err := bot.GetChatMember(ctx, chatID, self.ID)
	if err != nil {
		m.logger.DebugContext(ctx, "failed to check bot privileges", "error", err)
		return false
	}
	return member.IsAdmin()
}

func (m *Machine) back(ctx context.Context, req *router.CallbackRequest, a Action) error {
	if req.Actor.UserID != a.Player {
		return gameerr.Authorization(service.TextNotYourPig)
	}

	info, err := m.game.Info(ctx, req.Actor)
	if err != nil {
		return err
	}
	if info.Creature == nil {
		return gameerr.Validation(service.TextNoCreatureShort)
	}

	msg := req.Query.Message
	if err := req.Bot.EditText(ctx, msg.ChatID, msg.ID, info.Text, PrimaryKeyboard(a.Player, msg.ID)); err != nil {
		return errors.Wrap(err, "edit info view")
	}
	return req.Answer(ctx, "")
}

func (m *Machine) requireCreature(ctx context.Context, actor model.Actor) error {
	info, err := m.game.Info(ctx, actor)
	if err != nil {
		return err
	}
	if info.Creature == nil {
		return gameerr.Validation(service.TextNoCreatureShort)
	}
	return nil
}
