// Package module 实现挂在路由上的行为模块：养猪游戏、随机表情回应与关键词拦截。
package module

import (
	"context"

	"github.com/lk2023060901/pigfarm/app/pigbot/internal/callback"
	"github.com/lk2023060901/pigfarm/app/pigbot/internal/model"
	"github.com/lk2023060901/pigfarm/app/pigbot/internal/router"
	"github.com/lk2023060901/pigfarm/app/pigbot/internal/service"
	"github.com/lk2023060901/pigfarm/pkg/logger"
)

// PigGameName 模块名
const PigGameName = "Pig Game"

// Game 养猪模块用到的游戏操作
type Game interface {
	callback.Game
	Create(ctx context.Context, actor model.Actor, name string) (*service.CreateResult, error)
	Rename(ctx context.Context, actor model.Actor, name string) (string, error)
	Stats(ctx context.Context, actor model.Actor, query string) (string, error)
	Top(ctx context.Context, chatID int64) (string, error)
	Items(ctx context.Context, actor model.Actor) (string, error)
}

// PigGame 养猪命令与按钮回调
type PigGame struct {
	game     Game
	callback *callback.Machine
	logger   logger.Logger
}

var (
	_ router.Module          = (*PigGame)(nil)
	_ router.CallbackHandler = (*PigGame)(nil)
)

// NewPigGame 创建养猪模块
func NewPigGame(game Game, l logger.Logger) *PigGame {
	l = logger.OrDefault(l)
	return &PigGame{
		game:     game,
		callback: callback.NewMachine(game, l),
		logger:   l.Named("module.pig"),
	}
}

// Name 实现 router.Module
func (m *PigGame) Name() string {
	return PigGameName
}

// Commands 实现 router.Module
func (m *PigGame) Commands() []router.Command {
	return []router.Command{
		{Keyword: "pig", Description: "Создать новую свинью"},
		{Keyword: "grow", Description: "Покормить свинью"},
		{Keyword: "гров", Description: "Покормить свинью"},
		{Keyword: "my", Description: "Посмотреть информацию о своей свинье"},
		{Keyword: "pigstats", Description: "Посмотреть статистику свиней"},
		{Keyword: "top", Description: "Топ свиней в чате"},
		{Keyword: "name", Description: "Переименовать свинью"},
		{Keyword: "loot", Description: "Посмотреть лут"},
	}
}

// HandleCommand 实现 router.Module
func (m *PigGame) HandleCommand(ctx context.Context, req *router.Request) error {
	switch req.Command {
	case "pig":
		res, err := m.game.Create(ctx, req.Actor, req.Args)
		if err != nil {
			return err
		}
		return m.send(ctx, req, res.Text)

	case "grow", "гров":
		res, err := m.game.Grow(ctx, req.Actor, req.Args)
		if err != nil {
			return err
		}
		return m.send(ctx, req, res.Text)

	case "my":
		info, err := m.game.Info(ctx, req.Actor)
		if err != nil {
			return err
		}
		if info.Creature == nil {
			return m.send(ctx, req, info.Text)
		}
		_, err = req.Send(ctx, info.Text, callback.PrimaryKeyboard(req.Actor.UserID, req.Message.ID))
		return err

	case "pigstats":
		text, err := m.game.Stats(ctx, req.Actor, req.Args)
		if err != nil {
			return err
		}
		return m.send(ctx, req, text)

	case "top":
		text, err := m.game.Top(ctx, req.Actor.ChatID)
		if err != nil {
			return err
		}
		return m.send(ctx, req, text)

	case "name":
		text, err := m.game.Rename(ctx, req.Actor, req.Args)
		if err != nil {
			return err
		}
		_, err = req.Reply(ctx, text, nil)
		return err

	case "loot":
		text, err := m.game.Items(ctx, req.Actor)
		if err != nil {
			return err
		}
		return m.send(ctx, req, text)
	}

	_, err := req.Send(ctx, service.TextUnknownCommand, nil)
	return err
}

// HandleMessage 养猪模块不处理自由文本
func (m *PigGame) HandleMessage(context.Context, *router.Request) (bool, error) {
	return false, nil
}

// HandleCallback 实现 router.CallbackHandler
func (m *PigGame) HandleCallback(ctx context.Context, req *router.CallbackRequest) error {
	return m.callback.Handle(ctx, req)
}

func (m *PigGame) send(ctx context.Context, req *router.Request, text string) error {
	_, err := req.Send(ctx, text, nil)
	return err
}
