package module

// DefaultReactionChance 每条消息被回应的概率为 chance/256
const DefaultReactionChance = 25

// DefaultEmojis 回应表情
var DefaultEmojis = []string{"🤡", "💩", "🤣", "💊", "😁", "😨"}

// DefaultBlockReply 拦截时的回复
const DefaultBlockReply = "Ваш нахрюк заблокирован ❌"

// Config 附加模块配置
type Config struct {
	Reactions ReactionsConfig `mapstructure:"reactions" json:"reactions" yaml:"reactions"`
	Blocklist BlocklistConfig `mapstructure:"blocklist" json:"blocklist" yaml:"blocklist"`
}

// ReactionsConfig 随机表情回应
type ReactionsConfig struct {
	Enabled bool `mapstructure:"enabled" json:"enabled" yaml:"enabled"`
	// 取值 [0, 256]
	Chance int      `mapstructure:"chance" json:"chance" yaml:"chance" validate:"gte=0,lte=256"`
	Emojis []string `mapstructure:"emojis" json:"emojis" yaml:"emojis"`
}

// BlocklistConfig 关键词拦截
type BlocklistConfig struct {
	Enabled  bool     `mapstructure:"enabled" json:"enabled" yaml:"enabled"`
	Keywords []string `mapstructure:"keywords" json:"keywords" yaml:"keywords"`
	Reply    string   `mapstructure:"reply" json:"reply" yaml:"reply"`
}

// DefaultConfig 默认配置，两个模块默认关闭
func DefaultConfig() *Config {
	return &Config{
		Reactions: ReactionsConfig{
			Chance: DefaultReactionChance,
			Emojis: append([]string(nil), DefaultEmojis...),
		},
		Blocklist: BlocklistConfig{
			Reply: DefaultBlockReply,
		},
	}
}
