// Package database owns the SQLite storage handle, the versioned schema
// migrations, and the initial catalog seed.
//
// The handle is constructed once at process start and injected into every
// repository; nothing in this module reaches for a global connection.
package database

import (
	"errors"
	"fmt"
	"log"

	"github.com/mattn/go-sqlite3"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ErrNotFound is returned by repository reads when no row matches.
// It aliases gorm's sentinel so errors.Is works on either.
var ErrNotFound = gorm.ErrRecordNotFound

// Database wraps the single per-process storage handle.
type Database struct {
	DB *gorm.DB
}

// New opens (or creates) the database at dbPath, runs all pending schema
// migrations, and seeds the catalog if it is empty. A migration failure
// aborts startup rather than leaving the schema silently half-applied.
func New(dbPath string) (*Database, error) {
	return open(dbPath, logger.Default.LogMode(logger.Warn))
}

// NewSilent is New with SQL logging disabled. Used by tests.
func NewSilent(dbPath string) (*Database, error) {
	return open(dbPath, logger.Default.LogMode(logger.Silent))
}

func open(dbPath string, gormLogger logger.Interface) (*Database, error) {
	// Foreign keys go through the DSN so every pooled connection enforces
	// them, not just the one a PRAGMA statement happened to run on.
	db, err := gorm.Open(sqlite.Open(dbPath+"?_foreign_keys=on"), &gorm.Config{
		Logger: gormLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	database := &Database{DB: db}

	if err := database.EnsureSchema(); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	if err := database.seedCatalog(); err != nil {
		return nil, fmt.Errorf("failed to seed catalog: %w", err)
	}

	log.Printf("Database initialized successfully at %s", dbPath)

	return database, nil
}

func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// IsUniqueConstraint reports whether err is a SQLite unique (or primary key)
// constraint violation.
func IsUniqueConstraint(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}

// IsForeignKeyConstraint reports whether err is a SQLite foreign key
// constraint violation.
func IsForeignKeyConstraint(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintForeignKey
	}
	return false
}
