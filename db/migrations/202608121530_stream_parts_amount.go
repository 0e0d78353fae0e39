package migrations

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"
)

// Older databases recorded parts without the settled amount, which made the
// history view recompute it from the stream price at display time. Backfill
// with 0 so reconciliation can tell recorded-without-amount rows apart.
var _202608121530_stream_parts_amount = &gormigrate.Migration{
	ID: "202608121530_stream_parts_amount",
	Migrate: func(tx *gorm.DB) error {
		if tx.Migrator().HasColumn("stream_parts", "amount_msat") {
			return nil
		}
		return tx.Exec("ALTER TABLE stream_parts ADD COLUMN amount_msat INTEGER NOT NULL DEFAULT 0").Error
	},
	Rollback: func(tx *gorm.DB) error {
		return nil
	},
}
