package storage

import (
	"github.com/baicaiyihao/omni-agent-arena/internal/game"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// OpenAndMigrate opens the SQLite database and keeps the schema updated via
// AutoMigrate. Only player profiles and battle outcomes are persisted; live
// room state is process-local by design.
func OpenAndMigrate(dataSourceName string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dataSourceName), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&game.PlayerProfile{}, &game.BattleRecord{}); err != nil {
		return nil, err
	}
	return db, nil
}
