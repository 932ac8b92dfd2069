package module

import (
	"context"
	"strings"

	"github.com/lk2023060901/pigfarm/app/pigbot/internal/router"
	"github.com/lk2023060901/pigfarm/pkg/logger"
	"golang.org/x/text/cases"
)

// BlocklistName 模块名
const BlocklistName = "Powerful Nahruk"

// Blocklist 消息包含任一关键词（忽略大小写）时回复固定文本并消费
type Blocklist struct {
	keywords []string
	reply    string
	logger   logger.Logger
}

// NewBlocklist 创建拦截模块
func NewBlocklist(cfg BlocklistConfig, l logger.Logger) *Blocklist {
	fold := cases.Fold()
	keywords := make([]string, 0, len(cfg.Keywords))
	for _, k := range cfg.Keywords {
		if k = strings.TrimSpace(k); k != "" {
			keywords = append(keywords, fold.String(k))
		}
	}
	reply := cfg.Reply
	if reply == "" {
		reply = DefaultBlockReply
	}
	return &Blocklist{
		keywords: keywords,
		reply:    reply,
		logger:   logger.OrDefault(l).Named("module.blocklist"),
	}
}

// Name 实现 router.Module
func (m *Blocklist) Name() string { return BlocklistName }

// Commands 实现 router.Module
func (m *Blocklist) Commands() []router.Command { return nil }

// HandleCommand 实现 router.Module
func (m *Blocklist) HandleCommand(context.Context, *router.Request) error { return nil }

// HandleMessage 实现 router.Module
func (m *Blocklist) HandleMessage(ctx context.Context, req *router.Request) (bool, error) {
	if !m.Match(req.Message.Text) {
		return false, nil
	}
	if _, err := req.Reply(ctx, m.reply, nil); err != nil {
		return true, err
	}
	m.logger.DebugContext(ctx, "message blocked", "user_id", req.Actor.UserID)
	return true, nil
}

// Match 文本是否命中关键词
func (m *Blocklist) Match(text string) bool {
	if len(m.keywords) == 0 || text == "" {
		return false
	}
	// Caser 有内部状态，不能跨协程共享
	folded := cases.Fold().String(text)
	for _, k := range m.keywords {
		if strings.Contains(folded, k) {
			return true
		}
	}
	return false
}
