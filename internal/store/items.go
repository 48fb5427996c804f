package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/erazemk/shopitems/internal/model"
)

const itemColumns = `item_id, item_name, amount, price, best_before, date_entered, item_type`

// CreateItem validates and stores a new item and returns it with its id.
// The insert is committed before CreateItem returns.
func CreateItem(ctx context.Context, db *sql.DB, item model.Item) (*model.Item, error) {
	if err := item.Validate(); err != nil {
		return nil, err
	}

	var bestBefore sql.NullString
	if item.BestBefore != nil {
		bestBefore = sql.NullString{String: item.BestBefore.Format(model.DateFormat), Valid: true}
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, storageErr("beginning transaction", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`INSERT INTO shop_items (item_name, amount, price, best_before, date_entered, item_type)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		item.Name, item.Amount, item.Price, bestBefore, item.DateEntered.Format(model.DateTimeFormat), item.ItemType,
	)
	if err != nil {
		return nil, storageErr("creating item", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, storageErr("getting item id", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, storageErr("committing item", err)
	}

	created, err := GetItem(ctx, db, id)
	if err != nil {
		return nil, err
	}
	if created == nil {
		return nil, storageErr("reading created item", fmt.Errorf("item %d not found after insert", id))
	}
	return created, nil
}

// GetItem returns an item by ID, or nil if there is none.
func GetItem(ctx context.Context, db *sql.DB, id int64) (*model.Item, error) {
	row := db.QueryRowContext(ctx,
		`SELECT `+itemColumns+` FROM shop_items WHERE item_id = ?`, id,
	)
	item, err := scanItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, storageErr("getting item", err)
	}
	return item, nil
}

// ListItemsByType returns every item of the given type in insertion order.
// No matches yields an empty slice.
func ListItemsByType(ctx context.Context, db *sql.DB, itemType string) ([]model.Item, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+itemColumns+` FROM shop_items WHERE item_type = ? ORDER BY item_id`, itemType,
	)
	if err != nil {
		return nil, storageErr("listing items", err)
	}
	defer rows.Close()

	items := []model.Item{}
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, storageErr("scanning item", err)
		}
		items = append(items, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("listing items", err)
	}
	return items, nil
}

// TotalPrice returns the sum of prices over all items, 0 when there are none.
func TotalPrice(ctx context.Context, db *sql.DB) (float64, error) {
	var total float64
	if err := db.QueryRowContext(ctx, `SELECT TOTAL(price) FROM shop_items`).Scan(&total); err != nil {
		return 0, storageErr("totalling prices", err)
	}
	return total, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanItem(s scanner) (*model.Item, error) {
	item := &model.Item{}
	var bestBefore sql.NullString
	var entered string
	if err := s.Scan(&item.ID, &item.Name, &item.Amount, &item.Price, &bestBefore, &entered, &item.ItemType); err != nil {
		return nil, err
	}

	if bestBefore.Valid {
		t, err := time.Parse(model.DateFormat, bestBefore.String)
		if err != nil {
			return nil, fmt.Errorf("parsing best_before of item %d: %w", item.ID, err)
		}
		item.BestBefore = &t
	}

	t, err := time.Parse(model.DateTimeFormat, entered)
	if err != nil {
		return nil, fmt.Errorf("parsing date_entered of item %d: %w", item.ID, err)
	}
	item.DateEntered = t

	return item, nil
}
