package service

import "github.com/lk2023060901/pigfarm/app/pigbot/internal/growth"

// DefaultNames 未指定名字时随机选用
var DefaultNames = []string{
	"Хрюндель",
	"Свинтус",
	"Кабанчик",
	"Бекон",
	"Хрюкало",
	"Пятачок",
	"Хряк Петрович",
	"Окорок",
	"Сарделька",
	"Поросёнок Борька",
}

// RandomName 从 DefaultNames 中随机取一个
func RandomName(rng growth.RNG) string {
	return DefaultNames[rng.Intn(len(DefaultNames))]
}
