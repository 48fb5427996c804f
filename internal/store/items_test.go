package store

import (
	"context"
	"errors"
	"testing"

	"github.com/erazemk/shopitems/internal/db"
	"github.com/erazemk/shopitems/internal/model"
)

func mustNormalize(t *testing.T, name, amount, price, bestBefore, entered, itemType string) model.Item {
	t.Helper()
	item, err := model.Normalize(model.Input{
		Name:        name,
		Amount:      amount,
		Price:       price,
		BestBefore:  bestBefore,
		DateEntered: entered,
		ItemType:    itemType,
	})
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	return item
}

func TestCreateAndGetItem(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	item, err := CreateItem(ctx, database, mustNormalize(t, "widget", "3", "9.99", "2026-01-31", "2025-03-04 05:06:07", "tools"))
	if err != nil {
		t.Fatalf("CreateItem: %v", err)
	}
	if item.ID == 0 {
		t.Error("expected generated id")
	}
	if item.Name != "WIDGET" {
		t.Errorf("expected name 'WIDGET', got %q", item.Name)
	}

	got, err := GetItem(ctx, database, item.ID)
	if err != nil {
		t.Fatalf("GetItem: %v", err)
	}
	if got.Amount != 3 || got.Price != 9.99 || got.ItemType != "tools" {
		t.Errorf("unexpected item: %+v", got)
	}
	if got.BestBefore == nil || got.BestBefore.Format(model.DateFormat) != "2026-01-31" {
		t.Errorf("unexpected best before: %v", got.BestBefore)
	}
	if got.DateEntered.Format(model.DateTimeFormat) != "2025-03-04 05:06:07" {
		t.Errorf("unexpected date entered: %v", got.DateEntered)
	}
}

func TestGetItemNotFound(t *testing.T) {
	database := db.NewTestDB(t)

	got, err := GetItem(context.Background(), database, 42)
	if err != nil {
		t.Fatalf("GetItem: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil, got %+v", got)
	}
}

func TestQueryByTypeRoundTrip(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	if _, err := CreateItem(ctx, database, mustNormalize(t, "widget", "1", "2.50", "", "2024-06-01 09:00:00", "gadgets")); err != nil {
		t.Fatalf("CreateItem: %v", err)
	}

	items, err := ListItemsByType(ctx, database, "gadgets")
	if err != nil {
		t.Fatalf("ListItemsByType: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
	if items[0].Name != "WIDGET" {
		t.Errorf("expected name 'WIDGET', got %q", items[0].Name)
	}
	if items[0].BestBefore != nil {
		t.Errorf("expected no best before, got %v", items[0].BestBefore)
	}
}

func TestFoodScenario(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	apple := mustNormalize(t, "apple", "5", "1.50", "2025-01-01", "2024-06-01 10:00:00", "food")
	banana := mustNormalize(t, "banana", "3", "0.75", "2025-02-01", "2024-06-01 11:00:00", "food")

	for _, it := range []model.Item{apple, banana} {
		if _, err := CreateItem(ctx, database, it); err != nil {
			t.Fatalf("CreateItem(%s): %v", it.Name, err)
		}
	}

	items, err := ListItemsByType(ctx, database, "food")
	if err != nil {
		t.Fatalf("ListItemsByType: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].Name != "APPLE" || items[1].Name != "BANANA" {
		t.Errorf("expected APPLE, BANANA in insert order, got %q, %q", items[0].Name, items[1].Name)
	}
	if items[0].Amount != 5 || items[1].Price != 0.75 {
		t.Errorf("unexpected rows: %+v", items)
	}

	total, err := TotalPrice(ctx, database)
	if err != nil {
		t.Fatalf("TotalPrice: %v", err)
	}
	if total != 2.25 {
		t.Errorf("expected total 2.25, got %v", total)
	}

	none, err := ListItemsByType(ctx, database, "nonexistent")
	if err != nil {
		t.Fatalf("ListItemsByType: %v", err)
	}
	if none == nil || len(none) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", none)
	}
}

func TestTotalPriceAcrossTypes(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	CreateItem(ctx, database, mustNormalize(t, "apple", "5", "1.50", "", "2024-06-01 10:00:00", "food"))
	CreateItem(ctx, database, mustNormalize(t, "hammer", "1", "12.25", "", "2024-06-01 10:05:00", "tools"))

	food, _ := ListItemsByType(ctx, database, "food")
	if len(food) != 1 {
		t.Errorf("expected 1 food item, got %d", len(food))
	}

	total, err := TotalPrice(ctx, database)
	if err != nil {
		t.Fatalf("TotalPrice: %v", err)
	}
	if total != 13.75 {
		t.Errorf("expected total 13.75, got %v", total)
	}
}

func TestTotalPriceEmpty(t *testing.T) {
	database := db.NewTestDB(t)

	total, err := TotalPrice(context.Background(), database)
	if err != nil {
		t.Fatalf("TotalPrice: %v", err)
	}
	if total != 0 {
		t.Errorf("expected 0, got %v", total)
	}
}

func TestItemIDsIncrease(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	var last int64
	for i := 0; i < 3; i++ {
		item, err := CreateItem(ctx, database, mustNormalize(t, "bolt", "10", "0.10", "", "2024-06-01 10:00:00", "tools"))
		if err != nil {
			t.Fatalf("CreateItem: %v", err)
		}
		if item.ID <= last {
			t.Errorf("expected id greater than %d, got %d", last, item.ID)
		}
		last = item.ID
	}
}

func TestCreateItemRejectsInvalid(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	item := mustNormalize(t, "apple", "5", "1.50", "", "2024-06-01 10:00:00", "food")
	item.Amount = -1

	_, err := CreateItem(ctx, database, item)
	var verr *model.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *model.ValidationError, got %v", err)
	}
	if verr.Field != "amount" {
		t.Errorf("expected field 'amount', got %q", verr.Field)
	}

	items, _ := ListItemsByType(ctx, database, "food")
	if len(items) != 0 {
		t.Errorf("expected no rows after rejected insert, got %d", len(items))
	}
}

func TestStorageError(t *testing.T) {
	database := db.NewTestDB(t)
	database.Close()

	_, err := TotalPrice(context.Background(), database)
	var serr *StorageError
	if !errors.As(err, &serr) {
		t.Fatalf("expected *StorageError, got %v", err)
	}
	if serr.Op != "totalling prices" {
		t.Errorf("expected op 'totalling prices', got %q", serr.Op)
	}

	_, err = ListItemsByType(context.Background(), database, "food")
	if !errors.As(err, &serr) {
		t.Errorf("expected *StorageError from ListItemsByType, got %v", err)
	}
}

func TestFractionalSecondsNotStored(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	for _, entered := range []string{"2024-06-01 10:00:00.999", "2024-06-01 10:00:00,5", "2024-06-01 10:00:00Z"} {
		item, err := model.Normalize(model.Input{
			Name:        "apple",
			Amount:      "5",
			Price:       "1.50",
			DateEntered: entered,
			ItemType:    "food",
		})
		if err == nil {
			_, err = CreateItem(ctx, database, item)
		}
		var verr *model.ValidationError
		if !errors.As(err, &verr) || verr.Field != "date_entered" {
			t.Errorf("%q: expected date_entered validation error, got %v", entered, err)
		}
	}

	items, err := ListItemsByType(ctx, database, "food")
	if err != nil {
		t.Fatalf("ListItemsByType: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("expected no rows, got %d", len(items))
	}
}

func TestCreateItemMissingRow(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	// Rows vanish as soon as they are inserted.
	if _, err := database.Exec(`CREATE TRIGGER drop_items AFTER INSERT ON shop_items
		BEGIN DELETE FROM shop_items WHERE item_id = NEW.item_id; END`); err != nil {
		t.Fatalf("creating trigger: %v", err)
	}

	item, err := CreateItem(ctx, database, mustNormalize(t, "apple", "5", "1.50", "", "2024-06-01 10:00:00", "food"))
	var serr *StorageError
	if !errors.As(err, &serr) {
		t.Fatalf("expected *StorageError, got item=%v err=%v", item, err)
	}
	if item != nil {
		t.Errorf("expected nil item, got %+v", item)
	}
}
