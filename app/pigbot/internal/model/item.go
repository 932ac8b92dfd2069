package model

import (
	"encoding/json"

	"github.com/google/uuid"
)

// Item 玩家收集的战利品（loot 表），只支持新增与按主人查询
type Item struct {
	ID          int32           `db:"id" json:"id"`
	ChatID      int64           `db:"chat_id" json:"chat_id"`
	Owner       int64           `db:"owner" json:"owner"`
	Name        string          `db:"name" json:"name"`
	Icon        string          `db:"icon" json:"icon"`
	Description *string         `db:"description" json:"description,omitempty"`
	ClassName   string          `db:"class_name" json:"class_name"`
	ClassIcon   string          `db:"class_icon" json:"class_icon"`
	Weight      float64         `db:"weight" json:"weight"`
	BaseStats   json.RawMessage `db:"base_stats" json:"base_stats"`
	Rarity      json.RawMessage `db:"rarity" json:"rarity"`
	UUID        uuid.UUID       `db:"uuid" json:"uuid"`
}

// ItemColumns loot 表的全部列
var ItemColumns = []string{
	"id", "chat_id", "owner", "name", "icon", "description", "class_name", "class_icon",
	"weight", "base_stats", "rarity", "uuid",
}
