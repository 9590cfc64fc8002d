package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/aronveress/tripledger/internal/category"
	"github.com/aronveress/tripledger/internal/common"
	"github.com/aronveress/tripledger/internal/currency"
	"github.com/aronveress/tripledger/internal/model"
	"github.com/aronveress/tripledger/internal/service"
)

// Commit persists the reviewed batch as expense rows inside one database
// transaction. Either every item lands or none does.
//
// The trip and the category catalog are re-read inside the transaction;
// catalog edits made during review win over the review-time snapshot, and
// every category reference is resolved against the live catalog. Any
// validation failure rolls back, reports the failing item's index, and
// leaves the session in Review so the batch can be corrected and
// resubmitted.
func (s *Session) Commit(ctx context.Context) (*service.CommitResult, error) {
	s.mu.Lock()
	if s.state != StateReview {
		s.mu.Unlock()
		return nil, fmt.Errorf("cannot commit from %s state", s.state)
	}
	items := make([]*model.MergedItem, len(s.items))
	copy(items, s.items)
	tripID := s.trip.ID
	s.mu.Unlock()

	if len(items) == 0 {
		return nil, fmt.Errorf("nothing to commit: batch is empty")
	}

	start := time.Now()

	tx, err := s.storage.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin commit transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	trip, err := tx.GetTrip(ctx, tripID)
	if err != nil {
		return nil, err
	}

	catalog, err := tx.GetCatalog(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load category catalog: %w", err)
	}

	rates := trip.Rates()
	total := decimal.Zero
	for i, item := range items {
		expense, err := buildExpense(i, item, trip, catalog, rates)
		if err != nil {
			return nil, err
		}
		if _, err := tx.CreateExpense(ctx, expense); err != nil {
			return nil, fmt.Errorf("failed to persist item %d: %w", i, err)
		}
		total = total.Add(expense.AmountHUF)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit batch: %w", err)
	}

	s.mu.Lock()
	s.state = StateCommitted
	s.mu.Unlock()

	result := &service.CommitResult{
		TripID:       tripID,
		CreatedCount: len(items),
		TotalHUF:     total,
		Duration:     time.Since(start),
	}

	slog.Info("batch committed",
		"trip_id", result.TripID,
		"expenses", result.CreatedCount,
		"total_huf", result.TotalHUF.String(),
		"duration", result.Duration)
	return result, nil
}

// buildExpense validates one merged item and projects it onto an expense
// row. Validation failures identify the item by its batch index.
func buildExpense(index int, item *model.MergedItem, trip *model.Trip, catalog model.Catalog, rates model.RateSet) (*model.Expense, error) {
	if item.Merchant == "" {
		return nil, common.NewValidationError(index, "merchant", "cannot be empty")
	}
	if item.Amount.Sign() <= 0 {
		return nil, common.NewValidationError(index, "amount", "must be positive")
	}
	if !item.Currency.Valid() {
		return nil, common.NewValidationError(index, "currency", fmt.Sprintf("%q is not recognized", item.Currency))
	}
	if item.Date.IsZero() {
		return nil, common.NewValidationError(index, "date", "cannot be zero")
	}

	res, err := category.Resolve(item.CategoryRef(), item.SubcategoryRef(), catalog)
	if err != nil {
		return nil, err
	}

	amountHUF, err := currency.ToHome(item.Amount, item.Currency, rates)
	if err != nil {
		if errors.Is(err, common.ErrUnknownCurrency) {
			return nil, common.NewValidationError(index, "currency", err.Error())
		}
		return nil, err
	}

	payment := item.PaymentMethod
	if !payment.Valid() {
		payment = model.PaymentCash
	}

	expense := &model.Expense{
		TripID:         trip.ID,
		CategoryID:     res.Category.ID,
		Date:           item.Date,
		Merchant:       item.Merchant,
		Description:    item.Description,
		PaymentMethod:  payment,
		AmountOriginal: item.Amount,
		Currency:       item.Currency,
		AmountHUF:      amountHUF,
		Provenance:     item.Provenance,
		AIParsed:       item.Receipt != nil || item.Statement != nil,
		RawItemsText:   item.RawItemsText(),
	}
	if res.Subcategory != nil {
		expense.SubcategoryID = res.Subcategory.ID
	}

	return expense, nil
}
