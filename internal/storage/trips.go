package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/aronveress/tripledger/internal/common"
	"github.com/aronveress/tripledger/internal/model"
)

// CreateTrip persists a new trip and returns it with its identifier set.
func (s *SQLiteStorage) CreateTrip(ctx context.Context, trip *model.Trip) (*model.Trip, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateTrip(trip); err != nil {
		return nil, err
	}

	var endDate any
	if trip.EndDate != nil {
		endDate = *trip.EndDate
	}

	now := time.Now()
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO trips (name, country_code, start_date, end_date, budget_huf,
			rate_eur_to_huf, rate_usd_to_huf, rate_hrk_to_huf, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		trip.Name, trip.CountryCode, trip.StartDate, endDate, trip.BudgetHUF,
		trip.RateEURToHUF.String(), trip.RateUSDToHUF.String(), trip.RateHRKToHUF.String(), now)
	if err != nil {
		return nil, fmt.Errorf("failed to create trip: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get trip ID: %w", err)
	}

	created := *trip
	created.ID = id
	created.CreatedAt = now

	slog.Info("created trip", "name", trip.Name, "id", id)
	return &created, nil
}

// GetTrip returns the trip with the given identifier.
func (s *SQLiteStorage) GetTrip(ctx context.Context, id int64) (*model.Trip, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.getTripTx(ctx, s.db, id)
}

func (s *SQLiteStorage) getTripTx(ctx context.Context, q querier, id int64) (*model.Trip, error) {
	row := q.QueryRowContext(ctx, `
		SELECT id, name, country_code, start_date, end_date, budget_huf,
			rate_eur_to_huf, rate_usd_to_huf, rate_hrk_to_huf, created_at
		FROM trips
		WHERE id = ?`, id)

	trip, err := scanTrip(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: id %d", common.ErrTripNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query trip: %w", err)
	}
	return trip, nil
}

// ListTrips returns all trips, most recent start date first.
func (s *SQLiteStorage) ListTrips(ctx context.Context) ([]model.Trip, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, country_code, start_date, end_date, budget_huf,
			rate_eur_to_huf, rate_usd_to_huf, rate_hrk_to_huf, created_at
		FROM trips
		ORDER BY start_date DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query trips: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var trips []model.Trip
	for rows.Next() {
		trip, err := scanTrip(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan trip: %w", err)
		}
		trips = append(trips, *trip)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating trips: %w", err)
	}
	return trips, nil
}

// UpdateTripRates changes a trip's fixed exchange rates. Rates are locked
// once expenses exist against the trip.
func (s *SQLiteStorage) UpdateTripRates(ctx context.Context, id int64, eur, usd, hrk decimal.Decimal) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	for _, rate := range []decimal.Decimal{eur, usd, hrk} {
		if rate.Sign() <= 0 {
			return fmt.Errorf("rates must be positive")
		}
	}

	var expenseCount int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM expenses WHERE trip_id = ?`, id).Scan(&expenseCount)
	if err != nil {
		return fmt.Errorf("failed to count trip expenses: %w", err)
	}
	if expenseCount > 0 {
		return fmt.Errorf("%w: trip %d has %d expenses", common.ErrRatesLocked, id, expenseCount)
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE trips
		SET rate_eur_to_huf = ?, rate_usd_to_huf = ?, rate_hrk_to_huf = ?
		WHERE id = ?`,
		eur.String(), usd.String(), hrk.String(), id)
	if err != nil {
		return fmt.Errorf("failed to update trip rates: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: id %d", common.ErrTripNotFound, id)
	}
	return nil
}

// scanner covers *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanTrip(row scanner) (*model.Trip, error) {
	var trip model.Trip
	var endDate sql.NullTime
	var eur, usd, hrk string

	err := row.Scan(&trip.ID, &trip.Name, &trip.CountryCode, &trip.StartDate,
		&endDate, &trip.BudgetHUF, &eur, &usd, &hrk, &trip.CreatedAt)
	if err != nil {
		return nil, err
	}

	if endDate.Valid {
		end := endDate.Time
		trip.EndDate = &end
	}

	if trip.RateEURToHUF, err = decimal.NewFromString(eur); err != nil {
		return nil, fmt.Errorf("corrupt EUR rate %q: %w", eur, err)
	}
	if trip.RateUSDToHUF, err = decimal.NewFromString(usd); err != nil {
		return nil, fmt.Errorf("corrupt USD rate %q: %w", usd, err)
	}
	if trip.RateHRKToHUF, err = decimal.NewFromString(hrk); err != nil {
		return nil, fmt.Errorf("corrupt HRK rate %q: %w", hrk, err)
	}

	return &trip, nil
}
