package database

import (
	"fmt"
	"log"

	"gorm.io/gorm"

	"github.com/dexbook/dexbook/internal/entities"
)

// targetSchemaVersion is bumped whenever a migration is appended.
const targetSchemaVersion = 2

// versionRecord is the single-row table tracking which migrations ran.
type versionRecord struct {
	Version int `gorm:"primaryKey"`
}

func (versionRecord) TableName() string {
	return "db_version"
}

// migration is one schema evolution step. isApplied must be a cheap
// structural check so re-running a partially applied step stays safe.
type migration struct {
	version   int
	name      string
	isApplied func(db *gorm.DB) bool
	apply     func(db *gorm.DB) error
}

func migrations() []migration {
	return []migration{
		{
			version: 1,
			name:    "initial tables",
			isApplied: func(db *gorm.DB) bool {
				m := db.Migrator()
				return m.HasTable(&entities.User{}) &&
					m.HasTable(&entities.Book{}) &&
					m.HasTable(&entities.UserBook{})
			},
			apply: func(db *gorm.DB) error {
				return db.AutoMigrate(
					&entities.User{},
					&entities.Book{},
					&entities.UserBook{},
				)
			},
		},
		{
			version: 2,
			name:    "book external identifiers",
			isApplied: func(db *gorm.DB) bool {
				m := db.Migrator()
				return m.HasColumn(&entities.Book{}, "uuid") &&
					m.HasColumn(&entities.Book{}, "isbn") &&
					m.HasColumn(&entities.Book{}, "description")
			},
			apply: func(db *gorm.DB) error {
				m := db.Migrator()
				for _, column := range []string{"uuid", "isbn", "description"} {
					if m.HasColumn(&entities.Book{}, column) {
						continue
					}
					if err := m.AddColumn(&entities.Book{}, column); err != nil {
						return fmt.Errorf("add books.%s: %w", column, err)
					}
				}
				for _, index := range []string{"idx_books_uuid", "idx_books_isbn"} {
					if m.HasIndex(&entities.Book{}, index) {
						continue
					}
					if err := m.CreateIndex(&entities.Book{}, index); err != nil {
						return fmt.Errorf("create %s: %w", index, err)
					}
				}
				return nil
			},
		},
	}
}

// EnsureSchema applies pending migrations in order and persists the target
// version. Idempotent and callable at every process start.
func (d *Database) EnsureSchema() error {
	if err := d.DB.AutoMigrate(&versionRecord{}); err != nil {
		return fmt.Errorf("create version table: %w", err)
	}

	current := d.schemaVersion()
	if current > targetSchemaVersion {
		return fmt.Errorf("database schema version %d is newer than supported version %d", current, targetSchemaVersion)
	}

	for _, m := range migrations() {
		if m.version <= current {
			continue
		}
		if m.isApplied(d.DB) {
			log.Printf("Migration %d (%s) already applied, skipping", m.version, m.name)
			continue
		}
		log.Printf("Applying migration %d: %s", m.version, m.name)
		if err := m.apply(d.DB); err != nil {
			return fmt.Errorf("migration %d (%s): %w", m.version, m.name, err)
		}
	}

	return d.setSchemaVersion(targetSchemaVersion)
}

// schemaVersion reads the persisted version, 0 when the record is missing.
func (d *Database) schemaVersion() int {
	var record versionRecord
	if err := d.DB.First(&record).Error; err != nil {
		return 0
	}
	return record.Version
}

// setSchemaVersion overwrites the single version row. Delete-then-insert
// tolerates the row being absent entirely.
func (d *Database) setSchemaVersion(version int) error {
	return d.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM db_version").Error; err != nil {
			return err
		}
		return tx.Create(&versionRecord{Version: version}).Error
	})
}
