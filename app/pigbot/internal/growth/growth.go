// Package growth 计算一次喂养的体重变化区间并采样。
//
// 排名越靠前（rank 越小）亏损上限越大、增长上限越小，落后的玩家更容易追赶。
// 本包不做任何 I/O，所有函数都可以并发调用。
package growth

import (
	"math"

	"github.com/lk2023060901/pigfarm/app/pigbot/internal/gameerr"
)

const (
	// LossFloor 亏损上限的常数项，保证 min <= -LossFloor
	LossFloor = 15
	// GainFloor 增长上限的常数项，保证 max >= GainFloor
	GainFloor = 35
	// MinWeight 体重下限
	MinWeight = 1
)

// ComputeRange 计算体重变化区间 [min, max]
//
// score 一般为当前体重，rank 为 1 起始的名次，population 为本聊天内的总数。
//
//	rp       = rank / population
//	max_loss = floor(base_growth * score * rank_factor * (1 - rp) + 15)
//	max_gain = floor(weight_factor * score * 2 / (2 - rp) + 35)
func ComputeRange(score float64, rank, population int, t Tunables) (min, max int, err error) {
	switch {
	case population < 1:
		return 0, 0, gameerr.Validationf("population must be >= 1, got %d", population)
	case rank < 1 || rank > population:
		return 0, 0, gameerr.Validationf("rank %d out of range [1, %d]", rank, population)
	case score < 0 || math.IsNaN(score) || math.IsInf(score, 0):
		return 0, 0, gameerr.Validationf("invalid score %v", score)
	}
	if err := t.Validate(); err != nil {
		return 0, 0, err
	}

	rp := float64(rank) / float64(population)

	maxLoss := int(math.Floor(t.BaseGrowth*score*t.RankFactor*(1-rp) + LossFloor))
	maxGain := int(math.Floor(t.WeightFactor*score*2*(1/(2-rp)) + GainFloor))

	return -maxLoss, maxGain, nil
}

// Sample 在 [min, max] 闭区间内均匀取整数，min == max 时直接返回
func Sample(min, max int, rng RNG) int {
	if min >= max {
		return min
	}
	return min + rng.Intn(max-min+1)
}

// Apply 叠加变化量，结果不低于 MinWeight
func Apply(old, delta int) int {
	if w := old + delta; w > MinWeight {
		return w
	}
	return MinWeight
}
