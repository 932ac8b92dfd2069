// Package callback 编解码按钮回调数据，并实现回调的状态机。
package callback

import (
	"strconv"
	"strings"

	"github.com/lk2023060901/pigfarm/app/pigbot/internal/gameerr"
	"github.com/lk2023060901/pigfarm/app/pigbot/internal/service"
)

// Kind 回调动作
type Kind int

const (
	KindUnknown Kind = iota
	KindGrow
	KindRemove
	KindBack
)

var kindWords = map[string]Kind{
	"grow":   KindGrow,
	"remove": KindRemove,
	"back":   KindBack,
}

func (k Kind) String() string {
	switch k {
	case KindGrow:
		return "grow"
	case KindRemove:
		return "remove"
	case KindBack:
		return "back"
	default:
		return "unknown"
	}
}

// Action 解码后的回调
type Action struct {
	Kind Kind
	// Word 原始动作词
	Word string
	// Player grow/back 的玩家 ID
	Player int64
	// Message remove 要删除的原始消息 ID
	Message int
}

// Decode 解析 "<action>:<int64>"
//
// 格式错误返回 ValidationError；动作词未知时返回 KindUnknown 且不报错。
func Decode(data string) (Action, error) {
	word, raw, ok := strings.Cut(data, ":")
	if !ok || word == "" || raw == "" {
		return Action{}, gameerr.Validation(service.TextBadButton)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return Action{}, gameerr.Validation(service.TextBadButton)
	}

	a := Action{Kind: kindWords[word], Word: word}
	switch a.Kind {
	case KindGrow, KindBack:
		a.Player = id
	case KindRemove:
		a.Message = int(id)
	}
	return a, nil
}

// Encode 生成回调数据
func Encode(kind Kind, id int64) string {
	return kind.String() + ":" + strconv.FormatInt(id, 10)
}
