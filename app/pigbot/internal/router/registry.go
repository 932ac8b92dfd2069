// Package router 维护模块注册表，把命令、自由文本与按钮回调分发给模块，
// 并在边界处把模块错误转换成面向玩家的回复。
package router

import (
	"context"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/lk2023060901/pigfarm/app/pigbot/internal/gameerr"
	"github.com/lk2023060901/pigfarm/app/pigbot/internal/metrics"
	"github.com/lk2023060901/pigfarm/app/pigbot/internal/service"
	"github.com/lk2023060901/pigfarm/app/pigbot/internal/transport"
	"github.com/lk2023060901/pigfarm/pkg/logger"
	"github.com/lk2023060901/pigfarm/pkg/sentry"
)

// HelpKeyword 由路由自身处理的命令
const HelpKeyword = "help"

const (
	helpHeader = "Available commands:\n"
	helpEmpty  = "No commands available"
)

var (
	// ErrDuplicateModule 模块名重复
	ErrDuplicateModule = errors.New("router: duplicate module name")
	// ErrNilModule 注册空模块
	ErrNilModule = errors.New("router: nil module")
)

// Registry 按注册顺序保存模块
type Registry struct {
	bot     transport.Bot
	modules []Module
	names   map[string]struct{}
	// 第一个实现 CallbackHandler 的模块
	callbacks CallbackHandler

	logger  logger.Logger
	sentry  *sentry.Client
	metrics *metrics.BotMetrics

	selfMu   sync.Mutex
	selfName string
}

// Option 注册表选项
type Option func(*Registry)

// WithSentry 设置错误上报
func WithSentry(c *sentry.Client) Option {
	return func(r *Registry) { r.sentry = c }
}

// WithMetrics 设置指标
func WithMetrics(m *metrics.BotMetrics) Option {
	return func(r *Registry) { r.metrics = m }
}

// NewRegistry 创建注册表
func NewRegistry(bot transport.Bot, l logger.Logger, opts ...Option) *Registry {
	r := &Registry{
		bot:    bot,
		names:  make(map[string]struct{}),
		logger: logger.OrDefault(l).Named("router"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register 追加模块，名字不能重复
func (r *Registry) Register(m Module) error {
	if m == nil {
		return ErrNilModule
	}
	name := m.Name()
	if _, ok := r.names[name]; ok {
		return errors.Wrapf(ErrDuplicateModule, "module %q", name)
	}
	r.names[name] = struct{}{}
	r.modules = append(r.modules, m)

	if cb, ok := m.(CallbackHandler); ok && r.callbacks == nil {
		r.callbacks = cb
	}
	r.logger.Info("module registered", "module", name, "commands", len(m.Commands()))
	return nil
}

// Modules 按注册顺序返回模块
func (r *Registry) Modules() []Module {
	return append([]Module(nil), r.modules...)
}

// HelpText 汇总所有模块声明的命令
func (r *Registry) HelpText() string {
	var lines []string
	for _, m := range r.modules {
		cmds := m.Commands()
		if len(cmds) == 0 {
			continue
		}
		lines = append(lines, m.Name()+":")
		for _, c := range cmds {
			lines = append(lines, "/"+c.Keyword+" - "+c.Description)
		}
		lines = append(lines, "")
	}
	if len(lines) == 0 {
		return helpHeader + helpEmpty
	}
	return helpHeader + strings.Join(lines, "\n")
}

// DispatchCommand 交给第一个声明该命令的模块，返回是否匹配
func (r *Registry) DispatchCommand(ctx context.Context, req *Request) (bool, error) {
	for _, m := range r.modules {
		for _, c := range m.Commands() {
			if c.Keyword == req.Command {
				return true, m.HandleCommand(ctx, req)
			}
		}
	}
	return false, nil
}

// DispatchMessage 依次交给各模块，直到有模块消费
func (r *Registry) DispatchMessage(ctx context.Context, req *Request) (bool, error) {
	for _, m := range r.modules {
		handled, err := m.HandleMessage(ctx, req)
		if err != nil {
			return true, err
		}
		if handled {
			return true, nil
		}
	}
	return false, nil
}

// DispatchCallback 交给回调模块；没有回调模块时应答"未知命令"
func (r *Registry) DispatchCallback(ctx context.Context, req *CallbackRequest) error {
	if r.callbacks == nil {
		return req.Answer(ctx, service.TextUnknownCommand)
	}
	return r.callbacks.HandleCallback(ctx, req)
}

// HandleMessage 消息入口：help、命令、自由文本，错误在此转换
func (r *Registry) HandleMessage(ctx context.Context, msg *transport.Message) {
	if msg == nil {
		return
	}
	req := &Request{
		Bot:     r.bot,
		Message: msg,
		Actor:   ActorOf(msg.ChatID, msg.From),
	}

	cmd, mention, args, isCommand := ParseCommand(msg.Text)
	if isCommand && r.addressedToSelf(ctx, mention) {
		req.Command, req.Args = cmd, args

		if cmd == HelpKeyword {
			if _, err := req.Send(ctx, r.HelpText(), nil); err != nil {
				r.logger.WarnContext(ctx, "failed to send help", "error", err)
			}
			return
		}

		matched, err := r.DispatchCommand(ctx, req)
		if matched {
			r.metrics.RecordCommand(cmd, err == nil)
			if err != nil {
				r.replyError(ctx, req, err)
			}
			return
		}
	}

	// 未注册或发给其他机器人的 /cmd 按自由文本处理
	if _, err := r.DispatchMessage(ctx, req); err != nil {
		r.replyError(ctx, req, err)
	}
}

// addressedToSelf 群聊中 /cmd@other_bot 属于其他机器人；自身用户名未知时全部接受
func (r *Registry) addressedToSelf(ctx context.Context, mention string) bool {
	if mention == "" {
		return true
	}
	name := r.botUserName(ctx)
	return name == "" || strings.EqualFold(name, mention)
}

// botUserName 首次成功获取后缓存
func (r *Registry) botUserName(ctx context.Context) string {
	r.selfMu.Lock()
	defer r.selfMu.Unlock()
	if r.selfName != "" {
		return r.selfName
	}
	self, err := r.bot.GetSelf(ctx)
	if err != nil {
		r.logger.WarnContext(ctx, "failed to get bot identity", "error", err)
		return ""
	}
	r.selfName = self.UserName
	return r.selfName
}

// HandleCallback 回调入口，错误在此转换并应答
func (r *Registry) HandleCallback(ctx context.Context, q *transport.CallbackQuery) {
	if q == nil {
		return
	}
	var chatID int64
	if q.Message != nil {
		chatID = q.Message.ChatID
	}
	req := &CallbackRequest{Bot: r.bot, Query: q, Actor: ActorOf(chatID, q.From)}

	if err := r.DispatchCallback(ctx, req); err != nil {
		text := r.classify(ctx, err, "callback")
		if aerr := req.Answer(ctx, text); aerr != nil {
			r.logger.WarnContext(ctx, "failed to answer callback", "error", aerr)
		}
	}
}

func (r *Registry) replyError(ctx context.Context, req *Request, err error) {
	text := r.classify(ctx, err, req.Command)
	if _, serr := req.Reply(ctx, text, nil); serr != nil {
		r.logger.WarnContext(ctx, "failed to send error reply", "error", serr)
	}
}

// classify 记录错误并返回给玩家的文本
func (r *Registry) classify(ctx context.Context, err error, op string) string {
	kind := gameerr.KindOf(err)
	r.metrics.RecordError(kind.String())

	switch kind {
	case gameerr.KindValidation:
		r.logger.DebugContext(ctx, "rejected input", "op", op, "error", err)
		return gameerr.UserMessage(err)
	case gameerr.KindAuthorization:
		return gameerr.UserMessage(err)
	default:
		r.logger.ErrorContext(ctx, "module failed", "op", op, "kind", kind.String(), "error", err)
		r.sentry.CaptureError(err, map[string]string{"op": op, "kind": kind.String()})
		return service.TextStorageError
	}
}
