package accounts

import (
	"fmt"
	"log/slog"

	slogGorm "github.com/orandin/slog-gorm"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// OpenDatabase opens (and migrates) the sqlite accounts database. Use
// "file::memory:?cache=shared" for throwaway instances.
func OpenDatabase(logger *slog.Logger, path string) (*gorm.DB, error) {
	if logger == nil {
		logger = slog.Default()
	}
	gormLogger := slogGorm.New(
		slogGorm.WithHandler(logger.With("subsystem", "gorm").Handler()),
	)
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{Logger: gormLogger})
	if err != nil {
		return nil, fmt.Errorf("opening accounts database: %w", err)
	}
	if err := db.AutoMigrate(&User{}, &Moderator{}, &Ban{}); err != nil {
		return nil, fmt.Errorf("migrating accounts database: %w", err)
	}
	return db, nil
}
