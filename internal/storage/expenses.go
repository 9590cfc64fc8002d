package storage

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/aronveress/tripledger/internal/model"
	"github.com/aronveress/tripledger/internal/service"
)

// CreateExpense persists a single expense outside of any batch.
func (s *SQLiteStorage) CreateExpense(ctx context.Context, expense *model.Expense) (*model.Expense, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateExpense(expense); err != nil {
		return nil, err
	}
	return s.createExpenseTx(ctx, s.db, expense)
}

func (s *SQLiteStorage) createExpenseTx(ctx context.Context, q querier, expense *model.Expense) (*model.Expense, error) {
	var subcategoryID any
	if expense.SubcategoryID != 0 {
		subcategoryID = expense.SubcategoryID
	}

	now := time.Now()
	result, err := q.ExecContext(ctx, `
		INSERT INTO expenses (trip_id, category_id, subcategory_id, date, merchant,
			payment_type, amount_original, currency, amount_huf, description,
			provenance, ai_parsed, raw_items_text, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		expense.TripID, expense.CategoryID, subcategoryID, expense.Date, expense.Merchant,
		string(expense.PaymentMethod), expense.AmountOriginal.String(), string(expense.Currency),
		expense.AmountHUF.String(), expense.Description,
		string(expense.Provenance), expense.AIParsed, expense.RawItemsText, now)
	if err != nil {
		return nil, fmt.Errorf("failed to create expense: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get expense ID: %w", err)
	}

	created := *expense
	created.ID = id
	created.CreatedAt = now
	return &created, nil
}

// ListExpenses returns a trip's expenses, most recent date first.
func (s *SQLiteStorage) ListExpenses(ctx context.Context, tripID int64) ([]model.Expense, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, trip_id, category_id, subcategory_id, date, merchant,
			payment_type, amount_original, currency, amount_huf, description,
			provenance, ai_parsed, raw_items_text, created_at
		FROM expenses
		WHERE trip_id = ?
		ORDER BY date DESC, id DESC`, tripID)
	if err != nil {
		return nil, fmt.Errorf("failed to query expenses: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var expenses []model.Expense
	for rows.Next() {
		expense, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, *expense)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating expenses: %w", err)
	}
	return expenses, nil
}

// TripSpentHUF sums the home-currency amounts of a trip's expenses.
func (s *SQLiteStorage) TripSpentHUF(ctx context.Context, tripID int64) (decimal.Decimal, error) {
	if err := validateContext(ctx); err != nil {
		return decimal.Zero, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT amount_huf FROM expenses WHERE trip_id = ?`, tripID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to query spent amounts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	// Amounts are stored as decimal strings, so summing happens here rather
	// than in SQL to avoid float arithmetic.
	total := decimal.Zero
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return decimal.Zero, fmt.Errorf("failed to scan amount: %w", err)
		}
		amount, err := decimal.NewFromString(raw)
		if err != nil {
			return decimal.Zero, fmt.Errorf("corrupt amount %q: %w", raw, err)
		}
		total = total.Add(amount)
	}

	if err := rows.Err(); err != nil {
		return decimal.Zero, fmt.Errorf("error iterating amounts: %w", err)
	}
	return total, nil
}

// CategoryTotals breaks down a trip's spending by category, largest first.
func (s *SQLiteStorage) CategoryTotals(ctx context.Context, tripID int64) ([]service.CategoryTotal, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT c.id, c.name, e.amount_huf
		FROM expenses e
		JOIN categories c ON c.id = e.category_id
		WHERE e.trip_id = ?
		ORDER BY c.id`, tripID)
	if err != nil {
		return nil, fmt.Errorf("failed to query category totals: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var totals []service.CategoryTotal
	index := make(map[int64]int)
	for rows.Next() {
		var id int64
		var name, raw string
		if err := rows.Scan(&id, &name, &raw); err != nil {
			return nil, fmt.Errorf("failed to scan category total: %w", err)
		}
		amount, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, fmt.Errorf("corrupt amount %q: %w", raw, err)
		}

		i, ok := index[id]
		if !ok {
			i = len(totals)
			index[id] = i
			totals = append(totals, service.CategoryTotal{ID: id, Category: name, SpentHUF: decimal.Zero})
		}
		totals[i].SpentHUF = totals[i].SpentHUF.Add(amount)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating category totals: %w", err)
	}

	sort.SliceStable(totals, func(i, j int) bool {
		return totals[i].SpentHUF.GreaterThan(totals[j].SpentHUF)
	})
	return totals, nil
}

func scanExpense(rows *sql.Rows) (*model.Expense, error) {
	var expense model.Expense
	var subcategoryID sql.NullInt64
	var description, rawItems sql.NullString
	var payment, currency, provenance, amountOriginal, amountHUF string

	err := rows.Scan(&expense.ID, &expense.TripID, &expense.CategoryID, &subcategoryID,
		&expense.Date, &expense.Merchant, &payment, &amountOriginal, &currency,
		&amountHUF, &description, &provenance, &expense.AIParsed, &rawItems, &expense.CreatedAt)
	if err != nil {
		return nil, err
	}

	if subcategoryID.Valid {
		expense.SubcategoryID = subcategoryID.Int64
	}
	expense.Description = description.String
	expense.RawItemsText = rawItems.String
	expense.PaymentMethod = model.PaymentMethod(payment)
	expense.Currency = model.Currency(currency)
	expense.Provenance = model.Provenance(provenance)

	if expense.AmountOriginal, err = decimal.NewFromString(amountOriginal); err != nil {
		return nil, fmt.Errorf("corrupt original amount %q: %w", amountOriginal, err)
	}
	if expense.AmountHUF, err = decimal.NewFromString(amountHUF); err != nil {
		return nil, fmt.Errorf("corrupt HUF amount %q: %w", amountHUF, err)
	}

	return &expense, nil
}
