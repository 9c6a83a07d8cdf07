package services

import (
	"os"
	"testing"

	"github.com/expendio/foh-app/models"
	"github.com/expendio/foh-app/utils"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestMain(m *testing.M) {
	utils.InitLogger()
	os.Exit(m.Run())
}

// setupTestDB opens an in-memory SQLite database with the full schema.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Table{},
		&models.Customer{},
		&models.Visit{},
		&models.Reservation{},
	); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

func seedTable(t *testing.T, db *gorm.DB, name, status string, capacity int) models.Table {
	t.Helper()
	table := models.Table{Name: name, Capacity: capacity, Status: status}
	if err := db.Create(&table).Error; err != nil {
		t.Fatalf("failed to seed table %s: %v", name, err)
	}
	return table
}
