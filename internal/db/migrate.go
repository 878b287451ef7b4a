package db

import (
	"github.com/municipio/patentes-backend/internal/app/model"
	"github.com/municipio/patentes-backend/pkg/logger"
)

// Migrate runs database migrations
func Migrate() error {
	logger.Info("Running database migrations...")

	models := []interface{}{
		&model.Representative{},
		&model.Local{},
		&model.Memo{},
		&model.PayTime{},
	}

	if err := DB.AutoMigrate(models...); err != nil {
		logger.Error("Failed to run migrations", err)
		return err
	}

	logger.Info("Database migrations completed successfully", map[string]interface{}{
		"models_count": len(models),
	})
	return nil
}
