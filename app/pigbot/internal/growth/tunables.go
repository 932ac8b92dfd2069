package growth

import (
	"github.com/lk2023060901/pigfarm/app/pigbot/internal/gameerr"
	"github.com/lk2023060901/pigfarm/pkg/config"
)

// Tunables 增长公式的可调系数
type Tunables struct {
	BaseGrowth   float64 `mapstructure:"base_growth" json:"base_growth" validate:"gte=0"`
	RankFactor   float64 `mapstructure:"rank_factor" json:"rank_factor" validate:"gte=0"`
	WeightFactor float64 `mapstructure:"weight_factor" json:"weight_factor" validate:"gte=0"`
}

// DefaultTunables 默认系数
func DefaultTunables() Tunables {
	return Tunables{BaseGrowth: 0.5, RankFactor: 0.5, WeightFactor: 0.5}
}

// Validate 系数必须非负
func (t Tunables) Validate() error {
	if err := config.Validate(&t); err != nil {
		return gameerr.Validation(err.Error())
	}
	return nil
}
