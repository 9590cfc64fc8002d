package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// ExpectedSchemaVersion is the latest schema version that the application expects.
const ExpectedSchemaVersion = 3

// Migration represents a database schema migration.
type Migration struct {
	Up          func(*sql.Tx) error
	Description string
	Version     int
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "Initial schema",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS trips (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					name TEXT NOT NULL,
					country_code TEXT NOT NULL DEFAULT '',
					start_date DATETIME NOT NULL,
					end_date DATETIME,
					budget_huf INTEGER NOT NULL DEFAULT 0,
					rate_eur_to_huf TEXT NOT NULL DEFAULT '1',
					rate_usd_to_huf TEXT NOT NULL DEFAULT '1',
					rate_hrk_to_huf TEXT NOT NULL DEFAULT '1',
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE INDEX idx_trips_start_date ON trips(start_date)`,

				`CREATE TABLE IF NOT EXISTS categories (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					name TEXT UNIQUE NOT NULL,
					color TEXT NOT NULL DEFAULT '',
					is_active INTEGER NOT NULL DEFAULT 1,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,

				`CREATE TABLE IF NOT EXISTS subcategories (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					category_id INTEGER NOT NULL,
					name TEXT NOT NULL,
					UNIQUE(category_id, name),
					FOREIGN KEY (category_id) REFERENCES categories(id)
				)`,

				`CREATE TABLE IF NOT EXISTS expenses (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					trip_id INTEGER NOT NULL,
					category_id INTEGER NOT NULL,
					subcategory_id INTEGER,
					date DATETIME NOT NULL,
					merchant TEXT NOT NULL,
					payment_type TEXT NOT NULL DEFAULT 'CASH',
					amount_original TEXT NOT NULL,
					currency TEXT NOT NULL,
					amount_huf TEXT NOT NULL,
					description TEXT,
					provenance TEXT NOT NULL DEFAULT 'receipt',
					ai_parsed INTEGER NOT NULL DEFAULT 0,
					raw_items_text TEXT,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
					FOREIGN KEY (trip_id) REFERENCES trips(id),
					FOREIGN KEY (category_id) REFERENCES categories(id),
					FOREIGN KEY (subcategory_id) REFERENCES subcategories(id)
				)`,
				`CREATE INDEX idx_expenses_trip ON expenses(trip_id)`,
				`CREATE INDEX idx_expenses_date ON expenses(date)`,
				`CREATE INDEX idx_expenses_category ON expenses(category_id)`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query: %w", err)
				}
			}
			return nil
		},
	},
	{
		Version:     2,
		Description: "Seed default categories",
		Up: func(tx *sql.Tx) error {
			defaults := []struct {
				name  string
				color string
			}{
				{"Food", "#FFD9B3"},
				{"Travel", "#B3D9FF"},
				{"Accommodation", "#C1F0C1"},
				{"Entertainment", "#E6C3FF"},
				{"Groceries", "#FFF4B3"},
				{"Shopping", "#FFB3D9"},
				{"Other", "#E5E7EB"},
			}

			for _, cat := range defaults {
				_, err := tx.Exec(
					`INSERT INTO categories (name, color) VALUES (?, ?)
					 ON CONFLICT(name) DO NOTHING`,
					cat.name, cat.color)
				if err != nil {
					return fmt.Errorf("failed to seed category %s: %w", cat.name, err)
				}
			}
			return nil
		},
	},
	{
		Version:     3,
		Description: "Index expenses by provenance for import reporting",
		Up: func(tx *sql.Tx) error {
			_, err := tx.Exec(`CREATE INDEX IF NOT EXISTS idx_expenses_provenance ON expenses(provenance)`)
			return err
		},
	},
}

// Migrate applies all pending migrations.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	// Ensure schema version table exists
	if _, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_versions (
			version INTEGER PRIMARY KEY,
			description TEXT,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`); err != nil {
		return fmt.Errorf("failed to create schema_versions table: %w", err)
	}

	currentVersion, err := s.currentSchemaVersion(ctx)
	if err != nil {
		return err
	}

	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		slog.Info("applying migration",
			"version", migration.Version,
			"description", migration.Description)

		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("failed to begin migration transaction: %w", err)
		}

		if err := migration.Up(tx); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", migration.Version, err)
		}

		if _, err := tx.Exec(
			`INSERT INTO schema_versions (version, description) VALUES (?, ?)`,
			migration.Version, migration.Description); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to record migration %d: %w", migration.Version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, err)
		}
	}

	return nil
}

func (s *SQLiteStorage) currentSchemaVersion(ctx context.Context) (int, error) {
	var version sql.NullInt64
	err := s.db.QueryRowContext(ctx,
		`SELECT MAX(version) FROM schema_versions`).Scan(&version)
	if err != nil {
		return 0, fmt.Errorf("failed to query schema version: %w", err)
	}
	if !version.Valid {
		return 0, nil
	}
	return int(version.Int64), nil
}
