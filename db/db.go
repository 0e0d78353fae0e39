package db

import (
	"strings"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/streamhub/streamhub/logger"
)

type Config struct {
	URI        string
	LogQueries bool
}

func NewDB(config *Config) (*gorm.DB, error) {
	uri := config.URI
	// sane sqlite defaults unless the caller already tuned them
	if !strings.Contains(uri, "?") {
		uri = uri + "?_busy_timeout=5000&_journal_mode=WAL&_foreign_keys=on"
	}

	gormLogLevel := gormlogger.Silent
	if config.LogQueries {
		gormLogLevel = gormlogger.Info
	}

	gormDB, err := gorm.Open(sqlite.Open(uri), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormLogLevel),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, err
	}
	// sqlite does not benefit from connection pooling and WAL still only
	// allows one writer at a time
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetConnMaxLifetime(time.Hour)

	logger.Logger.Debug().Str("uri", config.URI).Msg("Opened database")

	return gormDB, nil
}

func Stop(gormDB *gorm.DB) error {
	sqlDB, err := gormDB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
