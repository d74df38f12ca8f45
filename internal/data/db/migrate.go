package db

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/yungbote/qsl-cards-backend/internal/domain/cards"
)

func AutoMigrateAll(db *gorm.DB) error {
	if err := db.AutoMigrate(&cards.CardRow{}); err != nil {
		return fmt.Errorf("auto migrate cards: %w", err)
	}
	return nil
}
