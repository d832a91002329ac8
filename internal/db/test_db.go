package db

import (
	"fmt"

	appLogger "github.com/ikkim/restaurant-ops-backend/pkg/logger"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SetupTestDB returns an in-memory sqlite database with the store tables migrated.
func SetupTestDB() (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to test database: %w", err)
	}

	// every pooled connection would otherwise see its own empty database
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get test database instance: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(Models()...); err != nil {
		return nil, fmt.Errorf("failed to migrate test database: %w", err)
	}

	return db, nil
}

func CleanupTestDB(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		appLogger.Warn("Test database already unusable", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}
	sqlDB.Close()
}

// storeTables is child-first so deletes never trip a foreign key.
var storeTables = []string{"ai_assistants", "calendar_settings", "line_channels", "stores"}

// TruncateAllTables empties the store tables between test cases.
func TruncateAllTables(db *gorm.DB) error {
	for _, table := range storeTables {
		if err := db.Exec(fmt.Sprintf("DELETE FROM %s", table)).Error; err != nil {
			return err
		}
	}
	return nil
}
