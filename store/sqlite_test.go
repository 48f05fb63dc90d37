package store

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stsysd/itemsvc/db"
	"github.com/stsysd/itemsvc/model"
)

func setupTestStore(t *testing.T) (*SQLiteStore, func()) {
	// テスト用の一時ディレクトリを作成
	tempDir, err := os.MkdirTemp("", "itemsvc-test")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}

	// テスト用のSQLiteストアを初期化
	store, err := NewSQLiteStore(tempDir, db.Migrate)
	if err != nil {
		os.RemoveAll(tempDir)
		t.Fatalf("Failed to create test store: %v", err)
	}

	// クリーンアップ関数を返す
	cleanup := func() {
		store.Close()
		os.RemoveAll(tempDir)
	}

	return store, cleanup
}

func newTestItem(name string) *model.Item {
	pdf := "/invoices/" + name + ".pdf"
	return &model.Item{
		Name:              name,
		Address:           "1 Main St",
		Date:              "2025-05-21",
		MaterialsSubtotal: model.NewAmount(decimal.RequireFromString("120.50")),
		LaborSubtotal:     model.NewAmount(decimal.RequireFromString("80")),
		Total:             model.NewAmount(decimal.RequireFromString("200.50")),
		InvoiceNo:         "INV-1001",
		Job:               "Roof repair",
		PdfLocation:       &pdf,
	}
}

func TestCreateAndGetItem(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	item := newTestItem("alice")

	// アイテムを作成
	id, err := store.CreateItem(context.Background(), item)
	if err != nil {
		t.Fatalf("Failed to create item: %v", err)
	}
	if id <= 0 {
		t.Fatalf("Expected generated ID, got %d", id)
	}
	if item.ID != id {
		t.Errorf("Expected item.ID to be set to %d, got %d", id, item.ID)
	}

	// 作成したアイテムを取得
	items, err := store.GetItems(context.Background(), model.ItemID(id))
	if err != nil {
		t.Fatalf("Failed to get item: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("Expected 1 item, got %d", len(items))
	}

	got := items[0]
	if got.ID != id || got.Name != item.Name || got.Address != item.Address || got.Date != item.Date {
		t.Errorf("Unexpected item: %+v", got)
	}
	if !got.MaterialsSubtotal.Equal(item.MaterialsSubtotal.Decimal) {
		t.Errorf("Expected Materials_Subtotal %s, got %s", item.MaterialsSubtotal, got.MaterialsSubtotal)
	}
	if !got.Total.Equal(item.Total.Decimal) {
		t.Errorf("Expected Total %s, got %s", item.Total, got.Total)
	}
	if got.InvoiceNo != item.InvoiceNo || got.Job != item.Job {
		t.Errorf("Unexpected invoice/job: %s / %s", got.InvoiceNo, got.Job)
	}
	if got.PdfLocation == nil || *got.PdfLocation != *item.PdfLocation {
		t.Errorf("Expected Pdf_Location %s, got %v", *item.PdfLocation, got.PdfLocation)
	}
}

func TestCreateItemWithoutPdfLocation(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	item := newTestItem("bob")
	item.PdfLocation = nil

	id, err := store.CreateItem(context.Background(), item)
	if err != nil {
		t.Fatalf("Failed to create item: %v", err)
	}

	items, err := store.GetItems(context.Background(), model.ItemID(id))
	if err != nil {
		t.Fatalf("Failed to get item: %v", err)
	}
	if len(items) != 1 || items[0].PdfLocation != nil {
		t.Errorf("Expected stored Pdf_Location to be null, got %+v", items)
	}
}

func TestGetNonExistentItem(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	// 存在しないIDは空のスライス
	items, err := store.GetItems(context.Background(), model.ItemID(12345))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if items == nil || len(items) != 0 {
		t.Errorf("Expected empty non-nil slice, got %v", items)
	}
}

func TestListItems(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	items, err := store.ListItems(context.Background())
	if err != nil {
		t.Fatalf("Failed to list items: %v", err)
	}
	if items == nil || len(items) != 0 {
		t.Errorf("Expected empty non-nil slice, got %v", items)
	}

	for _, name := range []string{"a", "b", "c"} {
		if _, err := store.CreateItem(context.Background(), newTestItem(name)); err != nil {
			t.Fatalf("Failed to create item: %v", err)
		}
	}

	items, err = store.ListItems(context.Background())
	if err != nil {
		t.Fatalf("Failed to list items: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("Expected 3 items, got %d", len(items))
	}
	names := map[string]bool{}
	for _, item := range items {
		names[item.Name] = true
	}
	for _, name := range []string{"a", "b", "c"} {
		if !names[name] {
			t.Errorf("Expected item %s in list", name)
		}
	}
}

func TestUpdateItem(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	item := newTestItem("carol")
	id, err := store.CreateItem(context.Background(), item)
	if err != nil {
		t.Fatalf("Failed to create item: %v", err)
	}

	// 全フィールドを置き換え（空文字・0も許容）
	updated := &model.Item{
		ID:                id,
		Name:              "",
		Address:           "2 Side St",
		Date:              "2025-06-01",
		MaterialsSubtotal: model.NewAmount(decimal.Zero),
		LaborSubtotal:     model.NewAmount(decimal.NewFromInt(10)),
		Total:             model.NewAmount(decimal.NewFromInt(10)),
		InvoiceNo:         "0",
		Job:               "Gutter",
	}
	if err := store.UpdateItem(context.Background(), updated); err != nil {
		t.Fatalf("Failed to update item: %v", err)
	}

	items, err := store.GetItems(context.Background(), model.ItemID(id))
	if err != nil {
		t.Fatalf("Failed to get item: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("Expected 1 item, got %d", len(items))
	}
	got := items[0]
	if got.Name != "" || got.Address != "2 Side St" || got.Job != "Gutter" || got.InvoiceNo != "0" {
		t.Errorf("Unexpected updated item: %+v", got)
	}
	if !got.MaterialsSubtotal.IsZero() {
		t.Errorf("Expected zero Materials_Subtotal, got %s", got.MaterialsSubtotal)
	}
	// Pdf_Locationも置き換えられる
	if got.PdfLocation != nil {
		t.Errorf("Expected Pdf_Location to be cleared, got %v", *got.PdfLocation)
	}
}

func TestUpdateNonExistentItem(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	item := newTestItem("dave")
	item.ID = 999

	err := store.UpdateItem(context.Background(), item)
	if !errors.Is(err, model.ErrItemNotFound) {
		t.Errorf("Expected ErrItemNotFound, got %v", err)
	}
}

func TestDeleteItem(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	id, err := store.CreateItem(context.Background(), newTestItem("erin"))
	if err != nil {
		t.Fatalf("Failed to create item: %v", err)
	}

	if err := store.DeleteItem(context.Background(), model.ItemID(id)); err != nil {
		t.Fatalf("Failed to delete item: %v", err)
	}

	// 削除後は空
	items, err := store.GetItems(context.Background(), model.ItemID(id))
	if err != nil {
		t.Fatalf("Failed to get item: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("Expected no items after delete, got %d", len(items))
	}

	// 2回目の削除はErrItemNotFound
	err = store.DeleteItem(context.Background(), model.ItemID(id))
	if !errors.Is(err, model.ErrItemNotFound) {
		t.Errorf("Expected ErrItemNotFound, got %v", err)
	}
}

func TestMigrationVersion(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	version, err := store.SchemaVersion()
	if err != nil {
		t.Fatalf("Failed to get schema version: %v", err)
	}
	if version != 1 {
		t.Errorf("Expected schema version 1, got %d", version)
	}
}

func TestPing(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	if err := store.Ping(context.Background()); err != nil {
		t.Errorf("Expected ping to succeed, got %v", err)
	}
}
