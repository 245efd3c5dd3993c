package database

import (
	"fmt"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase opens a gorm connection from a URL and runs migrations. A
// postgres:// URL selects postgres; anything else is treated as a sqlite
// path, which is what local development and tests use.
func NewDatabase(databaseURL string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	if strings.HasPrefix(databaseURL, "postgres://") || strings.HasPrefix(databaseURL, "postgresql://") {
		dialector = postgres.Open(databaseURL)
	} else {
		dialector = sqlite.Open(databaseURL)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("unable to open database: %w", err)
	}

	if err := GetMigrator(db).Migrate(); err != nil {
		return nil, fmt.Errorf("unable to run migrations: %w", err)
	}
	return db, nil
}
