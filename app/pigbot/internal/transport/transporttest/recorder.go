// Package transporttest 提供记录调用的 transport.Bot 假实现。
package transporttest

import (
	"context"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/lk2023060901/pigfarm/app/pigbot/internal/transport"
)

// 方法名
const (
	MethodSendText       = "SendText"
	MethodEditText       = "EditText"
	MethodDeleteMessage  = "DeleteMessage"
	MethodAnswerCallback = "AnswerCallback"
	MethodSetReaction    = "SetReaction"
	MethodGetChatMember  = "GetChatMember"
	MethodGetSelf        = "GetSelf"
)

// Call 一次出站调用
type Call struct {
	Method     string
	ChatID     int64
	MessageID  int
	UserID     int64
	Text       string
	ReplyTo    int
	Keyboard   transport.Keyboard
	CallbackID string
	Emoji      string
}

// Recorder 记录所有调用，可按方法注入错误
type Recorder struct {
	mu      sync.Mutex
	calls   []Call
	nextID  int
	self    transport.User
	members map[int64]map[int64]string
	fail    map[string]error
}

var _ transport.Bot = (*Recorder)(nil)

// NewRecorder 创建记录器，self 为机器人自身
func NewRecorder(self transport.User) *Recorder {
	return &Recorder{
		nextID:  1000,
		self:    self,
		members: make(map[int64]map[int64]string),
		fail:    make(map[string]error),
	}
}

// SetMember 设置群成员状态
func (r *Recorder) SetMember(chatID, userID int64, status string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.members[chatID] == nil {
		r.members[chatID] = make(map[int64]string)
	}
	r.members[chatID][userID] = status
}

// Fail 让 method 之后的调用返回 err，err 为 nil 时恢复
func (r *Recorder) Fail(method string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err == nil {
		delete(r.fail, method)
		return
	}
	r.fail[method] = err
}

// Calls 返回调用记录的副本
func (r *Recorder) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Call(nil), r.calls...)
}

// CallsOf 返回指定方法的调用
func (r *Recorder) CallsOf(method string) []Call {
	var out []Call
	for _, c := range r.Calls() {
		if c.Method == method {
			out = append(out, c)
		}
	}
	return out
}

// Reset 清空记录
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = nil
}

func (r *Recorder) record(c Call) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, c)
	return r.fail[c.Method]
}

// SendText 实现 transport.Bot
func (r *Recorder) SendText(_ context.Context, chatID int64, text string, opts transport.SendOptions) (int, error) {
	if err := r.record(Call{
		Method:   MethodSendText,
		ChatID:   chatID,
		Text:     text,
		ReplyTo:  opts.ReplyTo,
		Keyboard: opts.Keyboard,
	}); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	return r.nextID, nil
}

// EditText 实现 transport.Bot
func (r *Recorder) EditText(_ context.Context, chatID int64, messageID int, text string, kb transport.Keyboard) error {
	return r.record(Call{Method: MethodEditText, ChatID: chatID, MessageID: messageID, Text: text, Keyboard: kb})
}

// DeleteMessage 实现 transport.Bot
func (r *Recorder) DeleteMessage(_ context.Context, chatID int64, messageID int) error {
	return r.record(Call{Method: MethodDeleteMessage, ChatID: chatID, MessageID: messageID})
}

// AnswerCallback 实现 transport.Bot
func (r *Recorder) AnswerCallback(_ context.Context, callbackID, text string) error {
	return r.record(Call{Method: MethodAnswerCallback, CallbackID: callbackID, Text: text})
}

// SetReaction 实现 transport.Bot
func (r *Recorder) SetReaction(_ context.Context, chatID int64, messageID int, emoji string) error {
	return r.record(Call{Method: MethodSetReaction, ChatID: chatID, MessageID: messageID, Emoji: emoji})
}

// GetChatMember 实现 transport.Bot，未设置的成员视为普通成员
func (r *Recorder) GetChatMember(_ context.Context, chatID, userID int64) (transport.ChatMember, error) {
	if err := r.record(Call{Method: MethodGetChatMember, ChatID: chatID, UserID: userID}); err != nil {
		return transport.ChatMember{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	status, ok := r.members[chatID][userID]
	if !ok {
		status = transport.StatusMember
	}
	return transport.ChatMember{UserID: userID, Status: status}, nil
}

// GetSelf 实现 transport.Bot
func (r *Recorder) GetSelf(_ context.Context) (transport.User, error) {
	if err := r.record(Call{Method: MethodGetSelf}); err != nil {
		return transport.User{}, err
	}
	return r.self, nil
}

// ErrInjected 测试中常用的注入错误
var ErrInjected = errors.New("transporttest: injected failure")
