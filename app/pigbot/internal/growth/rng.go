package growth

import (
	crand "crypto/rand"
	"encoding/binary"
	"math/rand"
	"sync"
	"time"
)

// RNG 采样所需的随机源
type RNG interface {
	// Intn 返回 [0, n) 内的整数，n > 0
	Intn(n int) int
}

// LockedRand 并发安全的 math/rand 随机源
type LockedRand struct {
	mu  sync.Mutex
	src *rand.Rand
}

// NewRand 使用指定种子创建随机源，测试中使用固定种子
func NewRand(seed int64) *LockedRand {
	return &LockedRand{src: rand.New(rand.NewSource(seed))}
}

// Intn 实现 RNG
func (r *LockedRand) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.src.Intn(n)
}

var (
	defaultOnce sync.Once
	defaultRNG  *LockedRand
)

// Default 进程级随机源，首次使用时从 crypto/rand 取种子
func Default() *LockedRand {
	defaultOnce.Do(func() {
		defaultRNG = NewRand(NewSeed())
	})
	return defaultRNG
}

// NewSeed 从 crypto/rand 读取 8 字节作为种子，失败时退回当前时间
func NewSeed() int64 {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return time.Now().UnixNano()
	}
	return int64(binary.LittleEndian.Uint64(b[:]))
}
