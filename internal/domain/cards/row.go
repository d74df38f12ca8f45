package cards

import (
	"time"

	"gorm.io/datatypes"
)

// CardRow is the keyed-table layout used by the SQL collection store. The
// full card document lives in Payload; Position keeps insertion order.
type CardRow struct {
	CollectionKey string         `gorm:"column:collection_key;primaryKey;size:255" json:"collection_key"`
	ID            string         `gorm:"column:id;primaryKey;size:64" json:"id"`
	Position      int64          `gorm:"column:position;not null;index" json:"position"`
	Payload       datatypes.JSON `gorm:"column:payload;not null" json:"payload"`
	UpdatedAt     time.Time      `gorm:"column:updated_at;not null" json:"updated_at"`
}

func (CardRow) TableName() string { return "cards" }
