package migrations

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"

	"github.com/streamhub/streamhub/db"
)

var _202606101200_initial_migration = &gormigrate.Migration{
	ID: "202606101200_initial_migration",
	Migrate: func(tx *gorm.DB) error {
		return tx.AutoMigrate(
			&db.UserConfig{},
			&db.StreamPayment{},
			&db.StreamPart{},
		)
	},
	Rollback: func(tx *gorm.DB) error {
		return nil
	},
}
