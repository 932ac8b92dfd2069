package callback

import "github.com/lk2023060901/pigfarm/app/pigbot/internal/transport"

// 按钮文案
const (
	LabelGrow   = "🐷 ГРОВИМ!"
	LabelRemove = "🗑 Удалить"
	LabelBack   = "🔙 Назад"
)

// PrimaryKeyboard 信息视图键盘：喂养与删除，messageID 为删除时一并删除的原始消息
func PrimaryKeyboard(player int64, messageID int) transport.Keyboard {
	return transport.Keyboard{
		{{Text: LabelGrow, Data: Encode(KindGrow, player)}},
		{{Text: LabelRemove, Data: Encode(KindRemove, int64(messageID))}},
	}
}

// BackKeyboard 喂养结果键盘
func BackKeyboard(player int64) transport.Keyboard {
	return transport.Row(transport.Button{Text: LabelBack, Data: Encode(KindBack, player)})
}
