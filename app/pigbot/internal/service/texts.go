package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/lk2023060901/pigfarm/app/pigbot/internal/model"
)

// 面向玩家的文案
const (
	TextStorageError   = "Ошибка базы данных"
	TextUnknownCommand = "Неизвестная команда"
	TextBadButton      = "Кнопка устарела"
	TextNotYourGrow    = "🖕🤣 Это не твой гров!"
	TextNotYourPig     = "🖕🤣 Это не твой хряк!"

	TextNoCreature      = "У вас нет свиньи! Создайте её командой /pig <имя>"
	TextNoCreatureShort = "У вас нет свиньи!"
	TextEmptyTop        = "В этом чате пока нет свиней 🐖"
	TextEnterName       = "Введи имя"
	TextNameTooLong     = "У тебя хряк весит меньше, чем твоё имя. Придумай что-то короче 32 символов."
	TextNoItems         = "У вас пока нет лута"

	textAlreadyExists = "У вас уже есть свинья: %s (вес: %d)"
	textCreated       = "🐷 Поздравляем! %s создал свинью: %s (вес: %d)"
	textGrow          = "🐖 Ваш %s %s \n💪 Теперь он весит %d кг."
	textGained        = "поправился на %d кг"
	textLost          = "уменьшился на %d кг"
	textUnchanged     = "ничего не прибавил"
	textCooldown      = "Свинья ещё не проголодалась, приходи через %s"
	textInfo          = "🐖 Ваш %s весит %d кг\n📊 Место в топе: %d"
	textStatsByName   = "🐷 %s\n👤 Владелец: %s\n💪 Вес: %d\n🏠 Сарай: %d"
	textStatsNotFound = "Свинья с именем '%s' не найдена"
	textStatsOwn      = "🐷 Ваша свинья: %s\n💪 Вес: %d\n🏠 Сарай: %d"
	textTopHeader     = "🏆 Топ %d свиней в чате:"
	textTopLine       = "%s %d. %s - %d кг (владелец: %s) 🐖"
	textRenamed       = "Теперь вашего хряка зовут %s"
	textCreatedNamed  = "Создана новая свинья с именем '%s'! 🐷"
	textItemsHeader   = "🎒 Лут:"
	textItemLine      = "%s %s (%.1f кг)"
)

var medals = []string{"🥇", "🥈", "🥉"}

const otherMedal = "🏅"

// GrowText 喂养结果，delta 为实际体重变化
func GrowText(name string, delta int, weight int32) string {
	var change string
	switch {
	case delta > 0:
		change = fmt.Sprintf(textGained, delta)
	case delta < 0:
		change = fmt.Sprintf(textLost, -delta)
	default:
		change = textUnchanged
	}
	return fmt.Sprintf(textGrow, name, change, weight)
}

// CreatedText 新建猪
func CreatedText(owner string, c *model.Creature) string {
	return fmt.Sprintf(textCreated, owner, c.Name, c.Weight)
}

// AlreadyExistsText 重复创建
func AlreadyExistsText(c *model.Creature) string {
	return fmt.Sprintf(textAlreadyExists, c.Name, c.Weight)
}

// InfoText my 命令
func InfoText(c *model.Creature, rank int) string {
	return fmt.Sprintf(textInfo, c.Name, c.Weight, rank)
}

// TopText 排行榜，list 已按名次排序并截断
func TopText(list []*model.Creature) string {
	if len(list) == 0 {
		return TextEmptyTop
	}

	lines := make([]string, 0, len(list)+1)
	lines = append(lines, fmt.Sprintf(textTopHeader, len(list)))
	for i, c := range list {
		medal := otherMedal
		if i < len(medals) {
			medal = medals[i]
		}
		lines = append(lines, fmt.Sprintf(textTopLine, medal, i+1, c.Name, c.Weight, c.OwnerName))
	}
	return strings.Join(lines, "\n")
}

// ItemsText 战利品列表
func ItemsText(items []*model.Item) string {
	if len(items) == 0 {
		return TextNoItems
	}

	lines := make([]string, 0, len(items)+1)
	lines = append(lines, textItemsHeader)
	for _, it := range items {
		lines = append(lines, fmt.Sprintf(textItemLine, it.Icon, it.Name, it.Weight))
	}
	return strings.Join(lines, "\n")
}

// CooldownText 冷却剩余时间，按小时和分钟展示
func CooldownText(remaining time.Duration) string {
	remaining = remaining.Round(time.Minute)
	if remaining < time.Minute {
		remaining = time.Minute
	}
	h := int(remaining.Hours())
	m := int(remaining.Minutes()) % 60

	var left string
	switch {
	case h == 0:
		left = fmt.Sprintf("%d мин", m)
	case m == 0:
		left = fmt.Sprintf("%d ч", h)
	default:
		left = fmt.Sprintf("%d ч %d мин", h, m)
	}
	return fmt.Sprintf(textCooldown, left)
}
