package database

import (
	"log/slog"

	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"
)

func GetMigrator(db *gorm.DB) *gormigrate.Gormigrate {
	migrator := gormigrate.New(db, gormigrate.DefaultOptions, []*gormigrate.Migration{
		{
			ID: "0",
			Migrate: func(txn *gorm.DB) error {
				return txn.AutoMigrate(
					&JobSeekerProfile{}, &LikedPost{}, &PredictionRecord{}, &TrainingRun{},
				)
			},
		},
	})

	migrator.InitSchema(func(txn *gorm.DB) error {
		// Runs when no previous migration is detected, creating the latest
		// schema directly instead of replaying every step.

		slog.Info("clean database detected, running full schema initialization")

		dbType := db.Dialector.Name()
		if dbType == "sqlite" || dbType == "sqlite3" {
			// Sqlite does not enable foreign key constraints by default.
			if err := txn.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
				slog.Error("error enabling foreign keys for SQLite", "error", err)
			}
		}

		return txn.AutoMigrate(
			&JobSeekerProfile{}, &LikedPost{}, &PredictionRecord{}, &TrainingRun{},
		)
	})

	return migrator
}
