package db

import (
	"fmt"

	types "github.com/yungbote/fabsketch-backend/internal/domain"
	"gorm.io/gorm"
)

func AutoMigrateAll(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&types.User{},
		&types.GeneratedDesign{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	if db.Dialector.Name() != DriverPostgres {
		return nil
	}

	// Feed listing and per-owner lookups.
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_design_user_created
		ON design (user_id, created_at DESC)
		WHERE deleted_at IS NULL;
	`).Error; err != nil {
		return fmt.Errorf("create idx_design_user_created: %w", err)
	}
	return nil
}
