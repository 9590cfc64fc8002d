package storage

import (
	"context"
	"fmt"

	"github.com/aronveress/tripledger/internal/model"
)

func validateContext(ctx context.Context) error {
	if ctx == nil {
		return fmt.Errorf("context cannot be nil")
	}
	return ctx.Err()
}

func validateString(value, name string) error {
	if value == "" {
		return fmt.Errorf("%s cannot be empty", name)
	}
	return nil
}

func validateTrip(trip *model.Trip) error {
	if trip == nil {
		return fmt.Errorf("trip cannot be nil")
	}
	if trip.Name == "" {
		return fmt.Errorf("trip name cannot be empty")
	}
	if trip.StartDate.IsZero() {
		return fmt.Errorf("trip start date cannot be zero")
	}
	for cur, rate := range trip.Rates() {
		if rate.Sign() <= 0 {
			return fmt.Errorf("rate for %s must be positive", cur)
		}
	}
	return nil
}

func validateExpense(expense *model.Expense) error {
	if expense == nil {
		return fmt.Errorf("expense cannot be nil")
	}
	if expense.TripID == 0 {
		return fmt.Errorf("expense trip ID cannot be zero")
	}
	if expense.CategoryID == 0 {
		return fmt.Errorf("expense category ID cannot be zero")
	}
	if expense.Merchant == "" {
		return fmt.Errorf("expense merchant cannot be empty")
	}
	if expense.AmountOriginal.Sign() <= 0 {
		return fmt.Errorf("expense amount must be positive")
	}
	if !expense.Currency.Valid() {
		return fmt.Errorf("expense currency %q is not recognized", expense.Currency)
	}
	if expense.Date.IsZero() {
		return fmt.Errorf("expense date cannot be zero")
	}
	return nil
}
