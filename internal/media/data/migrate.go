package data

import "github.com/lk2023060901/media-attached-filter/internal/pkg/database"

// Migrate 创建或更新媒体库表结构
func Migrate(db *database.DB) error {
	return db.AutoMigrate(&ContentItemPO{})
}
