// Package testutil provides shared helpers for tests that need a real
// database.
package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/aronveress/tripledger/internal/model"
	"github.com/aronveress/tripledger/internal/storage"
)

// SetupTestDB creates a migrated in-memory SQLite database and registers
// its cleanup. Migrations seed the default category catalog.
func SetupTestDB(t *testing.T) *storage.SQLiteStorage {
	t.Helper()

	store, err := storage.NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if err := store.Migrate(context.Background()); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() {
		_ = store.Close()
	})

	return store
}

// CreateTestTrip inserts a trip with the usual Croatian summer rates and
// returns it.
func CreateTestTrip(t *testing.T, store *storage.SQLiteStorage) *model.Trip {
	t.Helper()

	trip, err := store.CreateTrip(context.Background(), &model.Trip{
		Name:         "Split 2024",
		CountryCode:  "HR",
		StartDate:    time.Date(2024, 8, 15, 0, 0, 0, 0, time.UTC),
		BudgetHUF:    500000,
		RateEURToHUF: decimal.RequireFromString("395"),
		RateUSDToHUF: decimal.RequireFromString("360"),
		RateHRKToHUF: decimal.RequireFromString("52.4"),
	})
	if err != nil {
		t.Fatalf("failed to create test trip: %v", err)
	}
	return trip
}
