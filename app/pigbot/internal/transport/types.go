package transport

import "strings"

// 群成员状态
const (
	StatusCreator       = "creator"
	StatusAdministrator = "administrator"
	StatusMember        = "member"
)

// User 平台用户
type User struct {
	ID        int64
	IsBot     bool
	UserName  string
	FirstName string
	LastName  string
}

// DisplayName 优先用户名，其次全名，都没有时为 "Unknown"
func (u User) DisplayName() string {
	if u.UserName != "" {
		return u.UserName
	}
	if full := strings.TrimSpace(u.FirstName + " " + u.LastName); full != "" {
		return full
	}
	return "Unknown"
}

// Message 聊天消息
type Message struct {
	ID     int
	ChatID int64
	From   User
	Text   string
	// 被回复消息的 ID，0 表示不是回复
	ReplyToID int
}

// CallbackQuery 按钮回调
type CallbackQuery struct {
	ID   string
	From User
	Data string
	// 按钮所在的消息
	Message *Message
}

// Update 一次入站事件，Message 与 Callback 至多一个非空
type Update struct {
	ID       int
	Message  *Message
	Callback *CallbackQuery
}

// Kind 事件类型，用于指标与日志
func (u *Update) Kind() string {
	switch {
	case u.Callback != nil:
		return "callback"
	case u.Message != nil:
		return "message"
	default:
		return "other"
	}
}

// ChatID 事件所在的会话，未知时为 0
func (u *Update) ChatID() int64 {
	switch {
	case u.Callback != nil && u.Callback.Message != nil:
		return u.Callback.Message.ChatID
	case u.Message != nil:
		return u.Message.ChatID
	}
	return 0
}

// UserID 事件发起者，未知时为 0
func (u *Update) UserID() int64 {
	switch {
	case u.Callback != nil:
		return u.Callback.From.ID
	case u.Message != nil:
		return u.Message.From.ID
	}
	return 0
}

// Button 内联按钮
type Button struct {
	Text string
	Data string
}

// Keyboard 按行排列的内联键盘
type Keyboard [][]Button

// Row 单行键盘
func Row(buttons ...Button) Keyboard {
	return Keyboard{buttons}
}

// ChatMember 群成员信息
type ChatMember struct {
	UserID int64
	Status string
}

// IsAdmin 群主或管理员
func (m ChatMember) IsAdmin() bool {
	return m.Status == StatusCreator || m.Status == StatusAdministrator
}

// SendOptions 发送选项
type SendOptions struct {
	ReplyTo  int
	Keyboard Keyboard
}
