// Package gameerr 定义游戏内三类错误：存储、校验、越权。
//
// 错误通过 cockroachdb/errors 的 Mark 归类，面向用户的文案以 hint 形式挂在错误上，
// 由模块边界统一转换为聊天回复或回调提示。
package gameerr

import (
	"github.com/cockroachdb/errors"
)

var (
	// ErrStorage 存储失败，向用户只给出通用提示
	ErrStorage = errors.New("storage error")

	// ErrValidation 输入不合法，用户可见具体原因
	ErrValidation = errors.New("validation error")

	// ErrAuthorization 身份不匹配或权限不足
	ErrAuthorization = errors.New("authorization error")

	// ErrConcurrentUpdate 条件更新重试后仍然冲突
	ErrConcurrentUpdate = errors.New("concurrent update")
)

// Kind 错误分类
type Kind int

const (
	KindNone Kind = iota
	KindStorage
	KindValidation
	KindAuthorization
	// KindInternal 未归类的错误，按存储错误同样处理
	KindInternal
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindStorage:
		return "storage"
	case KindValidation:
		return "validation"
	case KindAuthorization:
		return "authorization"
	default:
		return "internal"
	}
}

// Storage 包装存储层错误，err 为 nil 时返回 nil
func Storage(err error, op string) error {
	if err == nil {
		return nil
	}
	return errors.Mark(errors.WrapWithDepth(1, err, op), ErrStorage)
}

// Validation 构造校验错误，userMsg 原样展示给用户
func Validation(userMsg string) error {
	return errors.WithHint(errors.Mark(errors.NewWithDepth(1, userMsg), ErrValidation), userMsg)
}

// Validationf 带格式化的 Validation
func Validationf(format string, args ...any) error {
	msg := errors.Newf(format, args...).Error()
	return errors.WithHint(errors.Mark(errors.NewWithDepth(1, msg), ErrValidation), msg)
}

// Authorization 构造越权错误，userMsg 作为临时提示展示
func Authorization(userMsg string) error {
	return errors.WithHint(errors.Mark(errors.NewWithDepth(1, userMsg), ErrAuthorization), userMsg)
}

// KindOf 判断错误分类
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrValidation):
		return KindValidation
	case errors.Is(err, ErrAuthorization):
		return KindAuthorization
	case errors.Is(err, ErrStorage):
		return KindStorage
	default:
		return KindInternal
	}
}

// UserMessage 返回挂在错误上的第一条用户文案，没有时返回空串
func UserMessage(err error) string {
	if hints := errors.GetAllHints(err); len(hints) > 0 {
		return hints[0]
	}
	return ""
}
