package database

import (
	"fmt"
	"log"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/terangahq/teranga-backend/internal/models"
)

// DB is the lifecycle-scoped database handle. It is created once in main
// and injected into every repository; no package-level instance exists.
type DB struct {
	GORM *gorm.DB
}

// NewDB opens a GORM connection against Postgres.
func NewDB(connStr string) (*DB, error) {
	if connStr == "" {
		return nil, fmt.Errorf("DATABASE_URL is empty")
	}

	gormDB, err := gorm.Open(postgres.Open(connStr), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	// Connection pool settings
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Println("✅ Database connected (GORM)!")
	return &DB{GORM: gormDB}, nil
}

// Migrate creates or updates the schema for every persisted entity.
func (db *DB) Migrate() error {
	return db.GORM.AutoMigrate(
		&models.Business{},
		&models.MenuItem{},
		&models.Conversation{},
		&models.Order{},
		&models.ProcessedMessage{},
	)
}

func (db *DB) Close() error {
	log.Println("🔌 Closing database connection...")
	sqlDB, err := db.GORM.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
