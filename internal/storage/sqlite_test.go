package storage

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aronveress/tripledger/internal/common"
	"github.com/aronveress/tripledger/internal/model"
)

func setupTestStorage(t *testing.T) *SQLiteStorage {
	t.Helper()

	store, err := NewSQLiteStorage(":memory:")
	require.NoError(t, err)

	require.NoError(t, store.Migrate(context.Background()))

	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

func testTrip() *model.Trip {
	return &model.Trip{
		Name:         "Split 2024",
		CountryCode:  "HR",
		StartDate:    time.Date(2024, 8, 15, 0, 0, 0, 0, time.UTC),
		BudgetHUF:    500000,
		RateEURToHUF: decimal.RequireFromString("395"),
		RateUSDToHUF: decimal.RequireFromString("360"),
		RateHRKToHUF: decimal.RequireFromString("52.4"),
	}
}

func testExpense(tripID, categoryID int64) *model.Expense {
	return &model.Expense{
		TripID:         tripID,
		CategoryID:     categoryID,
		Date:           time.Date(2024, 8, 16, 0, 0, 0, 0, time.UTC),
		Merchant:       "Konoba Dalmatino",
		PaymentMethod:  model.PaymentCard,
		AmountOriginal: decimal.RequireFromString("45.50"),
		Currency:       model.CurrencyEUR,
		AmountHUF:      decimal.RequireFromString("17972.5"),
		Provenance:     model.ProvenanceMerged,
		AIParsed:       true,
	}
}

func TestMigrate(t *testing.T) {
	store := setupTestStorage(t)
	ctx := context.Background()

	t.Run("is idempotent", func(t *testing.T) {
		require.NoError(t, store.Migrate(ctx))

		version, err := store.currentSchemaVersion(ctx)
		require.NoError(t, err)
		assert.Equal(t, ExpectedSchemaVersion, version)
	})

	t.Run("seeds default categories", func(t *testing.T) {
		catalog, err := store.GetCatalog(ctx)
		require.NoError(t, err)
		require.Len(t, catalog, 7)

		assert.NotNil(t, catalog.ByName("Food"))
		assert.NotNil(t, catalog.ByName("Other"))
		assert.NotEmpty(t, catalog[0].Color)
	})
}

func TestTripOperations(t *testing.T) {
	store := setupTestStorage(t)
	ctx := context.Background()

	t.Run("create and get", func(t *testing.T) {
		created, err := store.CreateTrip(ctx, testTrip())
		require.NoError(t, err)
		assert.NotZero(t, created.ID)

		got, err := store.GetTrip(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "Split 2024", got.Name)
		assert.True(t, got.RateEURToHUF.Equal(decimal.RequireFromString("395")))
		assert.Nil(t, got.EndDate)
	})

	t.Run("get missing trip", func(t *testing.T) {
		_, err := store.GetTrip(ctx, 9999)
		assert.ErrorIs(t, err, common.ErrTripNotFound)
	})

	t.Run("rejects invalid trip", func(t *testing.T) {
		trip := testTrip()
		trip.RateEURToHUF = decimal.Zero
		_, err := store.CreateTrip(ctx, trip)
		assert.Error(t, err)
	})

	t.Run("list orders by start date descending", func(t *testing.T) {
		later := testTrip()
		later.Name = "Vienna 2025"
		later.StartDate = time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
		_, err := store.CreateTrip(ctx, later)
		require.NoError(t, err)

		trips, err := store.ListTrips(ctx)
		require.NoError(t, err)
		require.GreaterOrEqual(t, len(trips), 2)
		assert.Equal(t, "Vienna 2025", trips[0].Name)
	})
}

func TestUpdateTripRates(t *testing.T) {
	store := setupTestStorage(t)
	ctx := context.Background()

	trip, err := store.CreateTrip(ctx, testTrip())
	require.NoError(t, err)

	t.Run("updates rates before any expense", func(t *testing.T) {
		err := store.UpdateTripRates(ctx, trip.ID,
			decimal.RequireFromString("400"),
			decimal.RequireFromString("365"),
			decimal.RequireFromString("53"))
		require.NoError(t, err)

		got, err := store.GetTrip(ctx, trip.ID)
		require.NoError(t, err)
		assert.True(t, got.RateEURToHUF.Equal(decimal.RequireFromString("400")))
	})

	t.Run("missing trip", func(t *testing.T) {
		err := store.UpdateTripRates(ctx, 9999,
			decimal.RequireFromString("400"),
			decimal.RequireFromString("365"),
			decimal.RequireFromString("53"))
		assert.ErrorIs(t, err, common.ErrTripNotFound)
	})

	t.Run("locked once expenses exist", func(t *testing.T) {
		catalog, err := store.GetCatalog(ctx)
		require.NoError(t, err)

		_, err = store.CreateExpense(ctx, testExpense(trip.ID, catalog[0].ID))
		require.NoError(t, err)

		err = store.UpdateTripRates(ctx, trip.ID,
			decimal.RequireFromString("410"),
			decimal.RequireFromString("370"),
			decimal.RequireFromString("54"))
		assert.ErrorIs(t, err, common.ErrRatesLocked)
	})
}

func TestCategoryOperations(t *testing.T) {
	store := setupTestStorage(t)
	ctx := context.Background()

	t.Run("create category", func(t *testing.T) {
		cat, err := store.CreateCategory(ctx, "Souvenirs", "#AABBCC")
		require.NoError(t, err)
		assert.NotZero(t, cat.ID)
		assert.True(t, cat.IsActive)
	})

	t.Run("duplicate name rejected", func(t *testing.T) {
		_, err := store.CreateCategory(ctx, "Food", "#FFFFFF")
		assert.ErrorIs(t, err, common.ErrDuplicateEntry)
	})

	t.Run("lookup by name ignores case", func(t *testing.T) {
		cat, err := store.GetCategoryByName(ctx, "  food ")
		require.NoError(t, err)
		assert.Equal(t, "Food", cat.Name)
	})

	t.Run("lookup missing name", func(t *testing.T) {
		_, err := store.GetCategoryByName(ctx, "Útiköltség")
		assert.ErrorIs(t, err, common.ErrNotFound)
	})

	t.Run("subcategories attach to their category", func(t *testing.T) {
		food, err := store.GetCategoryByName(ctx, "Food")
		require.NoError(t, err)

		_, err = store.CreateSubcategory(ctx, food.ID, "Restaurant")
		require.NoError(t, err)
		_, err = store.CreateSubcategory(ctx, food.ID, "Street food")
		require.NoError(t, err)

		catalog, err := store.GetCatalog(ctx)
		require.NoError(t, err)

		got := catalog.ByName("Food")
		require.NotNil(t, got)
		require.Len(t, got.Subcategories, 2)
		assert.Equal(t, "Restaurant", got.Subcategories[0].Name)

		travel := catalog.ByName("Travel")
		require.NotNil(t, travel)
		assert.Empty(t, travel.Subcategories)
	})

	t.Run("subcategory under missing category", func(t *testing.T) {
		_, err := store.CreateSubcategory(ctx, 9999, "Nope")
		assert.ErrorIs(t, err, common.ErrNotFound)
	})
}

func TestExpenseOperations(t *testing.T) {
	store := setupTestStorage(t)
	ctx := context.Background()

	trip, err := store.CreateTrip(ctx, testTrip())
	require.NoError(t, err)

	catalog, err := store.GetCatalog(ctx)
	require.NoError(t, err)
	food := catalog.ByName("Food")
	travel := catalog.ByName("Travel")
	require.NotNil(t, food)
	require.NotNil(t, travel)

	t.Run("create and list", func(t *testing.T) {
		created, err := store.CreateExpense(ctx, testExpense(trip.ID, food.ID))
		require.NoError(t, err)
		assert.NotZero(t, created.ID)

		older := testExpense(trip.ID, travel.ID)
		older.Merchant = "Jadrolinija"
		older.Date = time.Date(2024, 8, 15, 0, 0, 0, 0, time.UTC)
		older.AmountHUF = decimal.RequireFromString("7900")
		_, err = store.CreateExpense(ctx, older)
		require.NoError(t, err)

		expenses, err := store.ListExpenses(ctx, trip.ID)
		require.NoError(t, err)
		require.Len(t, expenses, 2)
		assert.Equal(t, "Konoba Dalmatino", expenses[0].Merchant)
		assert.True(t, expenses[0].AmountHUF.Equal(decimal.RequireFromString("17972.5")))
		assert.Equal(t, model.ProvenanceMerged, expenses[0].Provenance)
		assert.Zero(t, expenses[0].SubcategoryID)
	})

	t.Run("rejects invalid expense", func(t *testing.T) {
		bad := testExpense(trip.ID, food.ID)
		bad.AmountOriginal = decimal.Zero
		_, err := store.CreateExpense(ctx, bad)
		assert.Error(t, err)
	})

	t.Run("trip total", func(t *testing.T) {
		total, err := store.TripSpentHUF(ctx, trip.ID)
		require.NoError(t, err)
		assert.True(t, total.Equal(decimal.RequireFromString("25872.5")), "got %s", total)
	})

	t.Run("category totals sorted by spend", func(t *testing.T) {
		totals, err := store.CategoryTotals(ctx, trip.ID)
		require.NoError(t, err)
		require.Len(t, totals, 2)
		assert.Equal(t, "Food", totals[0].Category)
		assert.True(t, totals[0].SpentHUF.Equal(decimal.RequireFromString("17972.5")))
		assert.Equal(t, "Travel", totals[1].Category)
	})

	t.Run("empty trip totals", func(t *testing.T) {
		total, err := store.TripSpentHUF(ctx, 9999)
		require.NoError(t, err)
		assert.True(t, total.IsZero())
	})
}

func TestTransaction(t *testing.T) {
	store := setupTestStorage(t)
	ctx := context.Background()

	trip, err := store.CreateTrip(ctx, testTrip())
	require.NoError(t, err)

	catalog, err := store.GetCatalog(ctx)
	require.NoError(t, err)
	food := catalog.ByName("Food")
	require.NotNil(t, food)

	t.Run("rollback leaves no rows", func(t *testing.T) {
		tx, err := store.BeginTx(ctx)
		require.NoError(t, err)

		_, err = tx.CreateExpense(ctx, testExpense(trip.ID, food.ID))
		require.NoError(t, err)

		require.NoError(t, tx.Rollback())

		expenses, err := store.ListExpenses(ctx, trip.ID)
		require.NoError(t, err)
		assert.Empty(t, expenses)
	})

	t.Run("commit persists all rows", func(t *testing.T) {
		tx, err := store.BeginTx(ctx)
		require.NoError(t, err)

		got, err := tx.GetTrip(ctx, trip.ID)
		require.NoError(t, err)
		assert.Equal(t, trip.ID, got.ID)

		txCatalog, err := tx.GetCatalog(ctx)
		require.NoError(t, err)
		assert.Len(t, txCatalog, 7)

		_, err = tx.CreateExpense(ctx, testExpense(trip.ID, food.ID))
		require.NoError(t, err)
		_, err = tx.CreateExpense(ctx, testExpense(trip.ID, food.ID))
		require.NoError(t, err)

		require.NoError(t, tx.Commit())

		expenses, err := store.ListExpenses(ctx, trip.ID)
		require.NoError(t, err)
		assert.Len(t, expenses, 2)
	})
}
