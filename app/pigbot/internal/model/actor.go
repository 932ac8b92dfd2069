package model

import "strconv"

// Actor 触发本次事件的玩家
type Actor struct {
	ChatID int64
	UserID int64
	// 用户名，缺失时为全名，再缺失为 "Unknown"
	DisplayName string
}

// LockKey (chat, player) 维度的锁键
func (a Actor) LockKey() string {
	return strconv.FormatInt(a.ChatID, 10) + ":" + strconv.FormatInt(a.UserID, 10)
}
