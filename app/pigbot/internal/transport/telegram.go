package transport

import (
	"context"
	"net/http"
	"time"

	"github.com/cockroachdb/errors"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/lk2023060901/pigfarm/pkg/config"
	"github.com/lk2023060901/pigfarm/pkg/logger"
)

// ErrEmptyToken 未配置 Bot Token
var ErrEmptyToken = errors.New("transport: telegram token is empty")

const methodSetMessageReaction = "setMessageReaction"

// Telegram 基于 tgbotapi 的 Bot 与 Source 实现
//
// tgbotapi 的请求不接受 context，这里只在发起前检查 ctx，
// 请求本身受 HTTP 客户端超时约束。
type Telegram struct {
	api    *tgbotapi.BotAPI
	config *Config
	logger logger.Logger
}

var (
	_ Bot    = (*Telegram)(nil)
	_ Source = (*Telegram)(nil)
)

// NewTelegram 创建客户端，会调用一次 getMe 校验 Token
func NewTelegram(cfg *Config, l logger.Logger) (*Telegram, error) {
	newCfg, err := config.MergeConfig(DefaultConfig(), cfg)
	if err != nil {
		return nil, errors.Wrap(err, "failed to merge transport config")
	}
	if newCfg.Token == "" {
		return nil, ErrEmptyToken
	}
	if err := newCfg.Validate(); err != nil {
		return nil, err
	}

	endpoint := newCfg.APIEndpoint
	if endpoint == "" {
		endpoint = tgbotapi.APIEndpoint
	}
	// 长轮询请求会占满 PollTimeout
	client := &http.Client{Timeout: newCfg.PollTimeout + newCfg.RequestTimeout}

	api, err := tgbotapi.NewBotAPIWithClient(newCfg.Token, endpoint, client)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect telegram bot api")
	}
	api.Debug = newCfg.Debug

	l = logger.OrDefault(l).Named("transport.telegram")
	l.Info("telegram bot authorized", "username", api.Self.UserName, "id", api.Self.ID)

	return &Telegram{api: api, config: newCfg, logger: l}, nil
}

// SendText 实现 Bot
func (t *Telegram) SendText(ctx context.Context, chatID int64, text string, opts SendOptions) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyToMessageID = opts.ReplyTo
	if len(opts.Keyboard) > 0 {
		msg.ReplyMarkup = toMarkup(opts.Keyboard)
	}

	sent, err := t.api.Send(msg)
	if err != nil {
		return 0, errors.Wrapf(err, "send message to chat %d", chatID)
	}
	return sent.MessageID, nil
}

// EditText 实现 Bot
func (t *Telegram) EditText(ctx context.Context, chatID int64, messageID int, text string, kb Keyboard) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
	if len(kb) > 0 {
		markup := toMarkup(kb)
		edit.ReplyMarkup = &markup
	}
	_, err := t.api.Request(edit)
	return errors.Wrapf(err, "edit message %d in chat %d", messageID, chatID)
}

// DeleteMessage 实现 Bot
func (t *Telegram) DeleteMessage(ctx context.Context, chatID int64, messageID int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := t.api.Request(tgbotapi.NewDeleteMessage(chatID, messageID))
	return errors.Wrapf(err, "delete message %d in chat %d", messageID, chatID)
}

// AnswerCallback 实现 Bot
func (t *Telegram) AnswerCallback(ctx context.Context, callbackID, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := t.api.Request(tgbotapi.NewCallback(callbackID, text))
	return errors.Wrap(err, "answer callback")
}

type reactionType struct {
	Type  string `json:"type"`
	Emoji string `json:"emoji"`
}

// SetReaction 实现 Bot，tgbotapi v5 未封装该方法
func (t *Telegram) SetReaction(ctx context.Context, chatID int64, messageID int, emoji string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	params := make(tgbotapi.Params)
	params.AddNonZero64("chat_id", chatID)
	params.AddNonZero("message_id", messageID)
	if err := params.AddInterface("reaction", []reactionType{{Type: "emoji", Emoji: emoji}}); err != nil {
		return errors.Wrap(err, "encode reaction")
	}
	_, err := t.api.MakeRequest(methodSetMessageReaction, params)
	return errors.Wrapf(err, "set reaction on message %d in chat %d", messageID, chatID)
}

// GetChatMember 实现 Bot
func (t *Telegram) GetChatMember(ctx context.Context, chatID, userID int64) (ChatMember, error) {
	if err := ctx.Err(); err != nil {
		return ChatMember{}, err
	}
	m, err := t.api.GetChatMember(tgbotapi.GetChatMemberConfig{
		ChatConfigWithUser: tgbotapi.ChatConfigWithUser{ChatID: chatID, UserID: userID},
	})
	if err != nil {
		return ChatMember{}, errors.Wrapf(err, "get chat member %d in chat %d", userID, chatID)
	}
	member := ChatMember{UserID: userID, Status: m.Status}
	if m.User != nil {
		member.UserID = m.User.ID
	}
	return member, nil
}

// GetSelf 实现 Bot，返回授权时缓存的机器人身份
func (t *Telegram) GetSelf(ctx context.Context) (User, error) {
	if err := ctx.Err(); err != nil {
		return User{}, err
	}
	return fromUser(&t.api.Self), nil
}

// Fetch 实现 Source
func (t *Telegram) Fetch(ctx context.Context, offset int, limit int, timeout time.Duration) ([]Update, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	raw, err := t.api.GetUpdates(tgbotapi.UpdateConfig{
		Offset:         offset,
		Limit:          limit,
		Timeout:        int(timeout / time.Second),
		AllowedUpdates: []string{"message", "callback_query"},
	})
	if err != nil {
		return nil, errors.Wrap(err, "get updates")
	}

	updates := make([]Update, 0, len(raw))
	for i := range raw {
		updates = append(updates, fromUpdate(&raw[i]))
	}
	return updates, nil
}

func toMarkup(kb Keyboard) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(kb))
	for _, row := range kb {
		buttons := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, b := range row {
			buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(b.Text, b.Data))
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(buttons...))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func fromUser(u *tgbotapi.User) User {
	if u == nil {
		return User{}
	}
	return User{
		ID:        u.ID,
		IsBot:     u.IsBot,
		UserName:  u.UserName,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	}
}

func fromMessage(m *tgbotapi.Message) *Message {
	if m == nil {
		return nil
	}
	msg := &Message{
		ID:   m.MessageID,
		From: fromUser(m.From),
		Text: m.Text,
	}
	if m.Chat != nil {
		msg.ChatID = m.Chat.ID
	}
	if m.ReplyToMessage != nil {
		msg.ReplyToID = m.ReplyToMessage.MessageID
	}
	return msg
}

func fromUpdate(u *tgbotapi.Update) Update {
	out := Update{ID: u.UpdateID, Message: fromMessage(u.Message)}
	if cq := u.CallbackQuery; cq != nil {
		out.Callback = &CallbackQuery{
			ID:      cq.ID,
			From:    fromUser(cq.From),
			Data:    cq.Data,
			Message: fromMessage(cq.Message),
		}
	}
	return out
}
