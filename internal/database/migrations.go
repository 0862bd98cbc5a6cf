package database

import (
	"fmt"

	"github.com/kdt5-3rd/kdt5-3rd-back/internal/models"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Migrate creates or updates the schema and makes sure the lookup indexes exist.
func Migrate(db *gorm.DB, log *logrus.Logger) error {
	log.Info("Running database migrations...")
	if err := db.AutoMigrate(&models.User{}, &models.Task{}); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	if err := AddIndexes(db, log); err != nil {
		return fmt.Errorf("failed to add indexes: %w", err)
	}

	log.Info("Database migrations completed")
	return nil
}

// AddIndexes creates any index declared on the models that the live schema lacks,
// which happens when tables predate the declaration.
func AddIndexes(db *gorm.DB, log *logrus.Logger) error {
	indexes := []struct {
		model any
		name  string
	}{
		// windowed reads filter by owner and start_time
		{&models.Task{}, "idx_tasks_user_start"},
		{&models.User{}, "idx_users_email"},
	}

	migrator := db.Migrator()
	for _, idx := range indexes {
		if migrator.HasIndex(idx.model, idx.name) {
			log.WithField("index", idx.name).Debug("Index already exists, skipping")
			continue
		}

		if err := migrator.CreateIndex(idx.model, idx.name); err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}

		log.WithField("index", idx.name).Info("Created index")
	}

	return nil
}
