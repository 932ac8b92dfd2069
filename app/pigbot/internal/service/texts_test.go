package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGrowText(t *testing.T) {
	tests := []struct {
		delta  int
		weight int32
		want   string
	}{
		{5, 15, "🐖 Ваш Бекон поправился на 5 кг \n💪 Теперь он весит 15 кг."},
		{-9, 1, "🐖 Ваш Бекон уменьшился на 9 кг \n💪 Теперь он весит 1 кг."},
		{0, 10, "🐖 Ваш Бекон ничего не прибавил \n💪 Теперь он весит 10 кг."},
	}
	for _, tt := range tests {
		if got := GrowText("Бекон", tt.delta, tt.weight); got != tt.want {
			t.Errorf("GrowText(%d) = %q, want %q", tt.delta, got, tt.want)
		}
	}
}

func TestCooldownText(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{30 * time.Second, "Свинья ещё не проголодалась, приходи через 1 мин"},
		{45 * time.Minute, "Свинья ещё не проголодалась, приходи через 45 мин"},
		{2 * time.Hour, "Свинья ещё не проголодалась, приходи через 2 ч"},
		{150 * time.Minute, "Свинья ещё не проголодалась, приходи через 2 ч 30 мин"},
	}
	for _, tt := range tests {
		if got := CooldownText(tt.in); got != tt.want {
			t.Errorf("CooldownText(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRandomName(t *testing.T) {
	for i := 0; i < len(DefaultNames)*2; i++ {
		assert.Contains(t, DefaultNames, RandomName(stubRNG{v: i}))
	}
}
