package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aronveress/tripledger/internal/common"
	"github.com/aronveress/tripledger/internal/model"
)

// GetCatalog returns all active categories with their subcategories attached,
// in insertion order.
func (s *SQLiteStorage) GetCatalog(ctx context.Context) (model.Catalog, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.getCatalogTx(ctx, s.db)
}

func (s *SQLiteStorage) getCatalogTx(ctx context.Context, q querier) (model.Catalog, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, name, color, is_active, created_at
		FROM categories
		WHERE is_active = 1
		ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var catalog model.Catalog
	index := make(map[int64]int)
	for rows.Next() {
		var cat model.Category
		if err := rows.Scan(&cat.ID, &cat.Name, &cat.Color, &cat.IsActive, &cat.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		index[cat.ID] = len(catalog)
		catalog = append(catalog, cat)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}

	subRows, err := q.QueryContext(ctx, `
		SELECT id, category_id, name
		FROM subcategories
		ORDER BY category_id, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query subcategories: %w", err)
	}
	defer func() { _ = subRows.Close() }()

	for subRows.Next() {
		var sub model.Subcategory
		if err := subRows.Scan(&sub.ID, &sub.CategoryID, &sub.Name); err != nil {
			return nil, fmt.Errorf("failed to scan subcategory: %w", err)
		}
		if i, ok := index[sub.CategoryID]; ok {
			catalog[i].Subcategories = append(catalog[i].Subcategories, sub)
		}
	}
	if err := subRows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating subcategories: %w", err)
	}

	return catalog, nil
}

// GetCategoryByName returns the category whose name matches, ignoring case
// and surrounding whitespace.
func (s *SQLiteStorage) GetCategoryByName(ctx context.Context, name string) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(name, "name"); err != nil {
		return nil, err
	}

	catalog, err := s.getCatalogTx(ctx, s.db)
	if err != nil {
		return nil, err
	}

	cat := catalog.ByName(name)
	if cat == nil {
		return nil, fmt.Errorf("%w: category %q", common.ErrNotFound, name)
	}
	return cat, nil
}

// CreateCategory adds a new category to the catalog.
func (s *SQLiteStorage) CreateCategory(ctx context.Context, name, color string) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if err := validateString(name, "name"); err != nil {
		return nil, err
	}

	now := time.Now()
	result, err := s.db.ExecContext(ctx,
		`INSERT INTO categories (name, color, created_at) VALUES (?, ?, ?)`,
		name, color, now)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: category %q", common.ErrDuplicateEntry, name)
		}
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get category ID: %w", err)
	}

	return &model.Category{
		ID:        id,
		Name:      name,
		Color:     color,
		IsActive:  true,
		CreatedAt: now,
	}, nil
}

// CreateSubcategory adds a subcategory under an existing category.
func (s *SQLiteStorage) CreateSubcategory(ctx context.Context, categoryID int64, name string) (*model.Subcategory, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if err := validateString(name, "name"); err != nil {
		return nil, err
	}

	var exists int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM categories WHERE id = ?`, categoryID).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("failed to check category: %w", err)
	}
	if exists == 0 {
		return nil, fmt.Errorf("%w: category id %d", common.ErrNotFound, categoryID)
	}

	result, err := s.db.ExecContext(ctx,
		`INSERT INTO subcategories (category_id, name) VALUES (?, ?)`,
		categoryID, name)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: subcategory %q", common.ErrDuplicateEntry, name)
		}
		return nil, fmt.Errorf("failed to create subcategory: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get subcategory ID: %w", err)
	}

	return &model.Subcategory{
		ID:         id,
		CategoryID: categoryID,
		Name:       name,
	}, nil
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, sql.ErrNoRows) {
		return false
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
