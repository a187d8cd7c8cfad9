package database

import (
	"effisense-go/pkg/log"
	"fmt"
	"strings"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

// OpenSQLite opens a SQLite database with foreign keys enforced.
// Pass ":memory:" for a private in-memory database.
func OpenSQLite(path string) (*gorm.DB, error) {
	dsn := path
	if !strings.Contains(dsn, "_pragma=foreign_keys") {
		sep := "?"
		if strings.Contains(dsn, "?") {
			sep = "&"
		}
		dsn += sep + "_pragma=foreign_keys(1)"
	}

	db, err := gorm.Open(sqlite.Open(dsn), gormConfig())
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}
	// SQLite serializes writers; one connection also keeps ":memory:" databases alive.
	sqlDB.SetMaxOpenConns(1)
	return db, nil
}

// InitSQLite opens the SQLite database at path into DB.
func InitSQLite(path string) {
	var err error
	DB, err = OpenSQLite(path)
	if err != nil {
		log.Fatal("failed to open sqlite database", err)
	}
	log.Infof("SQLite database opened at %s", path)
}
