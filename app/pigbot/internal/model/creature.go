package model

// Creature 聊天内玩家的猪，(ChatID, UserID) 唯一
type Creature struct {
	ID        int32   `db:"id" json:"id"`
	ChatID    int64   `db:"chat_id" json:"chat_id"`
	UserID    int64   `db:"user_id" json:"user_id"`
	Weight    int32   `db:"weight" json:"weight"`
	Name      string  `db:"name" json:"name"`
	LastFeed  float64 `db:"last_feed" json:"last_feed"`
	LastSalo  float64 `db:"last_salo" json:"last_salo"`
	OwnerName string  `db:"owner_name" json:"owner_name"`

	// 以下进度字段只做持久化，玩法中尚未使用
	Salo          int32   `db:"salo" json:"salo"`
	Poisoned      bool    `db:"poisoned" json:"poisoned"`
	Barn          int32   `db:"barn" json:"barn"`
	Pigsty        int32   `db:"pigsty" json:"pigsty"`
	Vetclinic     int32   `db:"vetclinic" json:"vetclinic"`
	VetLastPickup float64 `db:"vet_last_pickup" json:"vet_last_pickup"`
	LastWeight    int32   `db:"last_weight" json:"last_weight"`
	AvatarURL     *string `db:"avatar_url" json:"avatar_url,omitempty"`
	Biolab        int32   `db:"biolab" json:"biolab"`
	Butchery      int32   `db:"butchery" json:"butchery"`
	Pills         int32   `db:"pills" json:"pills"`
	Factory       int32   `db:"factory" json:"factory"`
	Warehouse     int32   `db:"warehouse" json:"warehouse"`
	Institute     int32   `db:"institute" json:"institute"`
}

// Clone 深拷贝，AvatarURL 不与原值共享
func (c *Creature) Clone() *Creature {
	if c == nil {
		return nil
	}
	cp := *c
	if c.AvatarURL != nil {
		u := *c.AvatarURL
		cp.AvatarURL = &u
	}
	return &cp
}

// CreatureColumns pigs 表的全部列，顺序与 INSERT/RETURNING 一致
var CreatureColumns = []string{
	"id", "chat_id", "user_id", "weight", "name", "last_feed", "last_salo", "owner_name",
	"salo", "poisoned", "barn", "pigsty", "vetclinic", "vet_last_pickup", "last_weight",
	"avatar_url", "biolab", "butchery", "pills", "factory", "warehouse", "institute",
}
