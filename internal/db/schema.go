package db

import (
	"database/sql"
	"fmt"
)

// schema creates the shop_items table. Dates are kept as text in the exact
// formats the validator accepts, and the CHECKs reject anything else.
const schema = `
CREATE TABLE IF NOT EXISTS shop_items (
    item_id      INTEGER PRIMARY KEY AUTOINCREMENT,
    item_name    TEXT NOT NULL,
    amount       INTEGER NOT NULL CHECK (amount >= 0),
    price        REAL NOT NULL,
    best_before  TEXT CHECK (best_before IS NULL OR date(best_before) IS best_before),
    date_entered TEXT NOT NULL CHECK (datetime(date_entered) IS date_entered),
    item_type    TEXT NOT NULL
);
`

// migrations is a list of SQL statements applied in order after schema creation.
// Each migration must be idempotent. Append new migrations at the end.
var migrations = []string{
	// Migration 1: lookups by item type.
	`CREATE INDEX IF NOT EXISTS idx_shop_items_item_type ON shop_items(item_type)`,
}

// EnsureSchema creates the shop_items table if it doesn't already exist.
func EnsureSchema(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}

// Migrate ensures the schema and then runs the migrations.
func Migrate(db *sql.DB) error {
	if err := EnsureSchema(db); err != nil {
		return err
	}

	for i, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return fmt.Errorf("running migration %d: %w", i+1, err)
		}
	}

	return nil
}
