// Package testutil provides test helpers for setting up in-memory databases,
// creating fixtures, and making assertions.
package testutil

import (
	"testing"

	"fundpool/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// allModels is the list of all GORM models to auto-migrate in tests.
var allModels = []interface{}{
	&models.User{},
	&models.Group{},
	&models.Member{},
	&models.Fund{},
	&models.FundMember{},
	&models.Tag{},
	&models.Transaction{},
	&models.ExpensePlan{},
	&models.Debt{},
	&models.DebtDetail{},
	&models.Snapshot{},
	&models.FundSnapshot{},
}

// SetupTestDB creates an in-memory SQLite database with all models migrated
// and the system tags seeded.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	// _foreign_keys=on makes SQLite enforce the ON DELETE clauses the
	// models declare, matching PostgreSQL behavior.
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared&_foreign_keys=on"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := db.AutoMigrate(allModels...); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	seedSystemTags(t, db)

	return db
}

// seedSystemTags inserts the reserved lent/repaid tags the way the initial
// migration does, skipping ones already present in the shared cache.
func seedSystemTags(t *testing.T, db *gorm.DB) {
	t.Helper()

	for id, name := range map[string]string{
		models.TagIDLent:   "lent",
		models.TagIDRepaid: "repaid",
	} {
		var count int64
		if err := db.Model(&models.Tag{}).Where("id = ?", id).Count(&count).Error; err != nil {
			t.Fatalf("failed to look up system tag: %v", err)
		}
		if count > 0 {
			continue
		}
		tag := &models.Tag{Name: name}
		tag.ID = id
		if err := db.Create(tag).Error; err != nil {
			t.Fatalf("failed to seed system tag: %v", err)
		}
	}
}

// TeardownTestDB closes the underlying database connection.
func TeardownTestDB(t *testing.T, db *gorm.DB) {
	t.Helper()

	sqlDB, err := db.DB()
	if err != nil {
		t.Errorf("failed to get underlying DB for teardown: %v", err)
		return
	}
	if err := sqlDB.Close(); err != nil {
		t.Errorf("failed to close test database: %v", err)
	}
}
