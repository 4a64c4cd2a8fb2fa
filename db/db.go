package db

import (
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// Open connects to PostgreSQL for postgres:// DSNs and to a sqlite file otherwise.
func Open(dsn string) (*gorm.DB, error) {
	gormCfg := &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   logger.Default.LogMode(logger.Warn),
	}

	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		log.Info("connecting to PostgreSQL")
		return gorm.Open(postgres.Open(dsn), gormCfg)
	}

	log.WithField("dsn", dsn).Info("using SQLite database")
	return gorm.Open(sqlite.Open(dsn), gormCfg)
}

// Init establishes the global DB connection without running migrations
func Init(dsn string) error {
	conn, err := Open(dsn)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	DB = conn
	log.Info("database connection established")
	return nil
}
