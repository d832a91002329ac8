package db

import (
	"github.com/ikkim/restaurant-ops-backend/internal/app/model"
	"github.com/ikkim/restaurant-ops-backend/pkg/logger"
	"gorm.io/gorm"
)

// Models lists every table owned by this service, parents first.
func Models() []interface{} {
	return []interface{}{
		&model.Store{},
		&model.LineChannel{},
		&model.CalendarSetting{},
		&model.AIAssistant{},
	}
}

// Migrate runs database migrations
func Migrate() error {
	return MigrateDB(DB)
}

func MigrateDB(db *gorm.DB) error {
	logger.Info("Running database migrations...")

	models := Models()
	if err := db.AutoMigrate(models...); err != nil {
		logger.Error("Failed to run migrations", err)
		return err
	}

	logger.Info("Database migrations completed successfully", map[string]interface{}{
		"models_count": len(models),
	})
	return nil
}
