package db

import (
	"github.com/yi-nology/asset_bridge/biz/dal/model"

	"gorm.io/gorm"
)

// AutoMigrate creates or updates the ledger tables.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&model.Publication{})
}
