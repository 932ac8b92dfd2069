package router

import (
	"context"
	"strings"

	"github.com/lk2023060901/pigfarm/app/pigbot/internal/model"
	"github.com/lk2023060901/pigfarm/app/pigbot/internal/transport"
)

// Command 模块声明的命令
type Command struct {
	Keyword     string
	Description string
}

// Module 可插拔的行为模块
type Module interface {
	Name() string
	Commands() []Command
	// HandleCommand 处理本模块声明的命令
	HandleCommand(ctx context.Context, req *Request) error
	// HandleMessage 处理自由文本，返回 true 表示已消费
	HandleMessage(ctx context.Context, req *Request) (bool, error)
}

// CallbackHandler 可选能力：处理按钮回调
//
// 返回错误时实现方不得已经应答回调，由路由统一应答。
type CallbackHandler interface {
	HandleCallback(ctx context.Context, req *CallbackRequest) error
}

// Request 一条入站消息
type Request struct {
	Bot     transport.Bot
	Message *transport.Message
	Actor   model.Actor
	// Command 去掉前缀与 @botname 后的命令，自由文本时为空
	Command string
	// Args 命令参数，以单个空格连接
	Args string
}

// Reply 回复本条消息
func (r *Request) Reply(ctx context.Context, text string, kb transport.Keyboard) (int, error) {
	return r.Bot.SendText(ctx, r.Message.ChatID, text, transport.SendOptions{
		ReplyTo:  r.Message.ID,
		Keyboard: kb,
	})
}

// Send 向本会话发送新消息
func (r *Request) Send(ctx context.Context, text string, kb transport.Keyboard) (int, error) {
	return r.Bot.SendText(ctx, r.Message.ChatID, text, transport.SendOptions{Keyboard: kb})
}

// CallbackRequest 一次按钮回调
type CallbackRequest struct {
	Bot   transport.Bot
	Query *transport.CallbackQuery
	Actor model.Actor
}

// Answer 应答回调，text 为空时只确认
func (r *CallbackRequest) Answer(ctx context.Context, text string) error {
	return r.Bot.AnswerCallback(ctx, r.Query.ID, text)
}

// ParseCommand 解析 "/cmd@bot arg1 arg2"，mention 为 @ 后的机器人用户名，非命令时 ok 为 false
func ParseCommand(text string) (cmd, mention, args string, ok bool) {
	if !strings.HasPrefix(text, "/") {
		return "", "", "", false
	}
	fields := strings.Fields(text[1:])
	if len(fields) == 0 {
		return "", "", "", false
	}
	cmd = fields[0]
	if i := strings.IndexByte(cmd, '@'); i >= 0 {
		cmd, mention = cmd[:i], cmd[i+1:]
	}
	if cmd == "" {
		return "", "", "", false
	}
	return cmd, mention, strings.Join(fields[1:], " "), true
}

// ActorOf 由平台用户构造玩家
func ActorOf(chatID int64, u transport.User) model.Actor {
	return model.Actor{ChatID: chatID, UserID: u.ID, DisplayName: u.DisplayName()}
}
