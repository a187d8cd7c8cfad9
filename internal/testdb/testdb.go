// Package testdb provides migrated in-memory databases and fixtures for package tests.
package testdb

import (
	"effisense-go/internal/model"
	"effisense-go/pkg/database"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"gorm.io/gorm"
)

var seq atomic.Int64

// New returns a private, migrated in-memory SQLite database closed at test end.
func New(t testing.TB) *gorm.DB {
	t.Helper()
	db, err := database.OpenSQLite(":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = database.Close(db) })
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// User inserts a user with a unique name.
func User(t testing.TB, db *gorm.DB) *model.User {
	t.Helper()
	n := seq.Add(1)
	u := &model.User{
		Username: fmt.Sprintf("user%d", n),
		Email:    fmt.Sprintf("user%d@example.com", n),
		Password: "x",
		Role:     model.RoleUser,
	}
	must(t, db.Create(u).Error)
	return u
}

// Home inserts a home owned by userID.
func Home(t testing.TB, db *gorm.DB, userID uint, name string) *model.Home {
	t.Helper()
	h := &model.Home{UserID: userID, HouseName: name, Size: 80, BuildingType: "Apartment", HeatingType: "Gas", InsulationLevel: "Good", Version: 1}
	must(t, db.Create(h).Error)
	return h
}

// Appliance inserts an appliance in home.
func Appliance(t testing.TB, db *gorm.DB, home *model.Home, name string) *model.Appliance {
	t.Helper()
	a := &model.Appliance{HomeID: home.ID, Name: name, PowerRating: "1000W", IconClass: "fa-plug", Version: 1}
	must(t, db.Create(a).Error)
	a.Home = home
	return a
}

// Usage inserts a usage of appliance at the given time.
func Usage(t testing.TB, db *gorm.DB, appliance *model.Appliance, at time.Time, kwh float64) *model.Usage {
	t.Helper()
	u := &model.Usage{
		UserID:         appliance.Home.UserID,
		ApplianceID:    appliance.ID,
		Date:           at,
		Time:           at,
		EnergyUsed:     kwh,
		UsageFrequency: model.FrequencyOften,
		Version:        1,
	}
	must(t, db.Omit("User", "Appliance").Create(u).Error)
	return u
}

// Count returns the number of rows of the model's table.
func Count(t testing.TB, db *gorm.DB, m interface{}) int64 {
	t.Helper()
	var n int64
	must(t, db.Model(m).Count(&n).Error)
	return n
}

func must(t testing.TB, err error) {
	t.Helper()
	if err != nil {
		t.Fatal(err)
	}
}
