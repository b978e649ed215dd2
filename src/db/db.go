package db

import (
	"fmt"
	"sync"

	"eventreg/src/config"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	dbMu sync.Mutex
	db   *gorm.DB
)

// GetDb opens the relational pool for the configured storage mode once per process.
func GetDb(cfg *config.Config) (*gorm.DB, error) {
	dbMu.Lock()
	defer dbMu.Unlock()
	if db != nil {
		return db, nil
	}

	var dialector gorm.Dialector
	switch cfg.StorageMode {
	case config.StorageModeSQLite:
		dialector = sqlite.Open(cfg.SQLitePath)
	case config.StorageModePostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is not set")
		}
		dialector = postgres.Open(cfg.DatabaseURL)
	default:
		return nil, fmt.Errorf("storage mode %q has no relational database", cfg.StorageMode)
	}

	_db, err := gorm.Open(dialector, gormConfig())
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	sqlDB, err := _db.DB()
	if err != nil {
		return nil, fmt.Errorf("establishing connection to database: %w", err)
	}
	if cfg.StorageMode == config.StorageModeSQLite {
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetMaxOpenConns(100)
	}

	db = _db
	return _db, nil
}

func gormConfig() *gorm.Config {
	return &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Warn),
	}
}

// NewDB Replace database instance with custom implementation
func NewDB(newdb *gorm.DB) {
	dbMu.Lock()
	defer dbMu.Unlock()
	db = newdb
}

func ResetDb() error {
	dbMu.Lock()
	defer dbMu.Unlock()
	if db == nil {
		return nil
	}
	sqlDB, err := db.DB()
	db = nil
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
