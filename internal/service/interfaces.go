// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/aronveress/tripledger/internal/model"
)

// Storage defines the contract for our persistence layer.
type Storage interface {
	// Trip operations
	CreateTrip(ctx context.Context, trip *model.Trip) (*model.Trip, error)
	GetTrip(ctx context.Context, id int64) (*model.Trip, error)
	ListTrips(ctx context.Context) ([]model.Trip, error)
	UpdateTripRates(ctx context.Context, id int64, eur, usd, hrk decimal.Decimal) error

	// Category catalog operations
	GetCatalog(ctx context.Context) (model.Catalog, error)
	GetCategoryByName(ctx context.Context, name string) (*model.Category, error)
	CreateCategory(ctx context.Context, name, color string) (*model.Category, error)
	CreateSubcategory(ctx context.Context, categoryID int64, name string) (*model.Subcategory, error)

	// Expense operations
	CreateExpense(ctx context.Context, expense *model.Expense) (*model.Expense, error)
	ListExpenses(ctx context.Context, tripID int64) ([]model.Expense, error)
	TripSpentHUF(ctx context.Context, tripID int64) (decimal.Decimal, error)
	CategoryTotals(ctx context.Context, tripID int64) ([]CategoryTotal, error)

	// Database management
	Migrate(ctx context.Context) error
	BeginTx(ctx context.Context) (Transaction, error)
	Close() error
}

// Transaction is the subset of storage operations a batch commit composes
// atomically. Everything read or written through it sees one consistent
// database transaction.
type Transaction interface {
	Commit() error
	Rollback() error

	GetTrip(ctx context.Context, id int64) (*model.Trip, error)
	GetCatalog(ctx context.Context) (model.Catalog, error)
	CreateExpense(ctx context.Context, expense *model.Expense) (*model.Expense, error)
}

// CategoryTotal is one row of a budget-vs-actual breakdown.
type CategoryTotal struct {
	Category string
	SpentHUF decimal.Decimal
	ID       int64
}

// ReceiptExtractor turns one receipt image into a raw candidate. It must
// not fail on ambiguous input; it returns its best-effort structured guess,
// and reserves errors for cases where no candidate could be produced at all.
type ReceiptExtractor interface {
	ExtractReceipt(ctx context.Context, image []byte, mimeType string, catalog model.Catalog) (*model.RawCandidate, error)
}

// StatementExtractor turns one document's raw text into an ordered list of
// statement-origin candidates. The catalog is passed along for better
// in-extraction category mapping.
type StatementExtractor interface {
	ExtractStatement(ctx context.Context, content string, catalog model.Catalog) ([]model.RawCandidate, error)
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}

// ProgressFunc reports completed extraction tasks out of the total.
type ProgressFunc func(completed, total int)

// CommitResult reports the outcome of a successful batch commit.
type CommitResult struct {
	TripID       int64
	CreatedCount int
	TotalHUF     decimal.Decimal
	Duration     time.Duration
}
