package database

import (
	"fmt"

	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/pageza/foodgram/backend/internal/models"
	"gorm.io/gorm"
)

// RunMigrations creates or updates every table, index and constraint the
// models declare.
func RunMigrations(db *gorm.DB) error {
	logging.Info().Str("dialect", db.Dialector.Name()).Msg("running auto-migration")

	if err := db.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}
