package database

import (
	"effisense-go/internal/config"
	"effisense-go/pkg/log"
	"fmt"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

func gormConfig() *gorm.Config {
	return &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
		// Timestamps are written in UTC regardless of the host zone.
		NowFunc: func() time.Time { return time.Now().UTC() },
	}
}

// Init opens the configured relational store into DB.
func Init(cfg config.DatabaseConfig) {
	switch cfg.Driver {
	case "sqlite":
		InitSQLite(cfg.SQLite.Path)
	case "", "mysql":
		InitMySQL(cfg.MySQL.DSN)
	default:
		log.Fatalf("unsupported database driver %q", cfg.Driver)
	}
}

// OpenMySQL opens a MySQL connection with the shared pool settings.
func OpenMySQL(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(dsn), gormConfig())
	if err != nil {
		return nil, fmt.Errorf("open mysql: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)
	return db, nil
}

// InitMySQL opens the MySQL connection and configures the pool.
func InitMySQL(dsn string) {
	var err error
	DB, err = OpenMySQL(dsn)
	if err != nil {
		log.Fatal("failed to connect database", err)
	}
	log.Info("MySQL database connected successfully")
}

// Close releases the underlying connection pool.
func Close(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
