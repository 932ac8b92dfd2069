// Package transport 定义聊天平台的出站接口与入站事件，并提供基于 Telegram Bot API 的实现。
package transport

import (
	"context"
	"time"
)

// Bot 出站操作
type Bot interface {
	// SendText 发送文本，返回新消息 ID
	SendText(ctx context.Context, chatID int64, text string, opts SendOptions) (int, error)
	// EditText 替换消息文本与键盘，kb 为空时移除键盘
	EditText(ctx context.Context, chatID int64, messageID int, text string, kb Keyboard) error
	DeleteMessage(ctx context.Context, chatID int64, messageID int) error
	// AnswerCallback 应答回调，text 非空时以临时提示展示
	AnswerCallback(ctx context.Context, callbackID, text string) error
	SetReaction(ctx context.Context, chatID int64, messageID int, emoji string) error
	GetChatMember(ctx context.Context, chatID, userID int64) (ChatMember, error)
	GetSelf(ctx context.Context) (User, error)
}

// Source 入站事件来源
type Source interface {
	// Fetch 拉取 offset 之后的事件，最多等待 timeout
	Fetch(ctx context.Context, offset int, limit int, timeout time.Duration) ([]Update, error)
}

// Handler 入站事件处理器，实现方不应长时间阻塞
type Handler interface {
	HandleUpdate(ctx context.Context, u *Update)
}

// HandlerFunc 函数适配器
type HandlerFunc func(ctx context.Context, u *Update)

// HandleUpdate 实现 Handler
func (f HandlerFunc) HandleUpdate(ctx context.Context, u *Update) {
	f(ctx, u)
}
