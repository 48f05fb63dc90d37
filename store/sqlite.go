// Package store は、データの永続化機能を提供します。
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stsysd/itemsvc/db"
	"github.com/stsysd/itemsvc/model"
)

// ItemStore はアイテムの保存と取得を行うインターフェースです。
type ItemStore interface {
	// ListItems はすべてのアイテムを取得します。
	ListItems(ctx context.Context) ([]*model.Item, error)
	// GetItems は指定されたIDのアイテムを取得します（0件または1件）。
	GetItems(ctx context.Context, id model.ItemID) ([]*model.Item, error)
	// CreateItem は新しいアイテムを作成し、採番されたIDを返します。
	CreateItem(ctx context.Context, item *model.Item) (int64, error)
	// UpdateItem は指定されたIDのアイテムの全フィールドを置き換えます。
	UpdateItem(ctx context.Context, item *model.Item) error
	// DeleteItem は指定されたIDのアイテムを削除します。
	DeleteItem(ctx context.Context, id model.ItemID) error
	// Ping はデータベースへの接続を確認します。
	Ping(ctx context.Context) error
	// Close はストアの接続を閉じます。
	Close() error
}

// MigrationFunc はデータベースのマイグレーションを行う関数の型です。
type MigrationFunc func(conn *sql.DB) error

// SQLiteStore はSQLiteを使用したItemStoreの実装です。
type SQLiteStore struct {
	conn    *sql.DB
	queries *db.Queries
}

// NewSQLiteStore は新しいSQLiteStoreを作成します。
// 接続確認とマイグレーションに失敗した場合はエラーを返します。
func NewSQLiteStore(dataDir string, migrate MigrationFunc) (*SQLiteStore, error) {
	// データディレクトリの作成（存在しない場合）
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	// SQLiteデータベースファイルのパス
	dbPath := filepath.Join(dataDir, "items.db")

	// SQLiteデータベースへの接続
	conn, err := sql.Open("sqlite3", dbPath+"?_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to connect to SQLite database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping SQLite database: %w", err)
	}

	// マイグレーションの実行
	if migrate != nil {
		if err := migrate(conn); err != nil {
			conn.Close()
			return nil, fmt.Errorf("failed to migrate database: %w", err)
		}
	}

	return NewStore(conn), nil
}

// NewStore は既存の接続からSQLiteStoreを作成します。
func NewStore(conn *sql.DB) *SQLiteStore {
	return &SQLiteStore{
		conn:    conn,
		queries: db.New(conn),
	}
}

// ListItems はすべてのアイテムを取得します。
func (s *SQLiteStore) ListItems(ctx context.Context) ([]*model.Item, error) {
	dbItems, err := s.queries.ListItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	return loadItems(dbItems)
}

// GetItems は指定されたIDのアイテムを取得します。
// 見つからない場合はエラーではなく空のスライスを返します。
func (s *SQLiteStore) GetItems(ctx context.Context, id model.ItemID) ([]*model.Item, error) {
	dbItems, err := s.queries.GetItem(ctx, id.Int64())
	if err != nil {
		return nil, fmt.Errorf("failed to get item: %w", err)
	}
	return loadItems(dbItems)
}

// CreateItem は新しいアイテムをデータベースに保存します。
func (s *SQLiteStore) CreateItem(ctx context.Context, item *model.Item) (int64, error) {
	result, err := s.queries.CreateItem(ctx, db.CreateItemParams{
		Name:              item.Name,
		Address:           item.Address,
		Date:              item.Date,
		MaterialsSubtotal: item.MaterialsSubtotal.String(),
		LaborSubtotal:     item.LaborSubtotal.String(),
		Total:             item.Total.String(),
		InvoiceNo:         item.InvoiceNo.String(),
		Job:               item.Job,
		PdfLocation:       nullString(item.PdfLocation),
	})
	if err != nil {
		return 0, fmt.Errorf("failed to create item: %w", err)
	}

	// 挿入された行数を確認
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return 0, model.ErrItemNotCreated
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get inserted id: %w", err)
	}
	item.ID = id

	return id, nil
}

// UpdateItem は指定されたIDのアイテムを更新します。
func (s *SQLiteStore) UpdateItem(ctx context.Context, item *model.Item) error {
	result, err := s.queries.UpdateItem(ctx, db.UpdateItemParams{
		Name:              item.Name,
		Address:           item.Address,
		Date:              item.Date,
		MaterialsSubtotal: item.MaterialsSubtotal.String(),
		LaborSubtotal:     item.LaborSubtotal.String(),
		Total:             item.Total.String(),
		InvoiceNo:         item.InvoiceNo.String(),
		Job:               item.Job,
		PdfLocation:       nullString(item.PdfLocation),
		ID:                item.ID,
	})
	if err != nil {
		return fmt.Errorf("failed to update item: %w", err)
	}

	// 更新された行数を確認
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	// アイテムが見つからない場合
	if rowsAffected == 0 {
		return model.ErrItemNotFound
	}

	return nil
}

// DeleteItem は指定されたIDのアイテムを削除します。
func (s *SQLiteStore) DeleteItem(ctx context.Context, id model.ItemID) error {
	result, err := s.queries.DeleteItem(ctx, id.Int64())
	if err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}

	// 削除された行数を確認
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	// アイテムが見つからない場合
	if rowsAffected == 0 {
		return model.ErrItemNotFound
	}

	return nil
}

// Ping はデータベースへの接続を確認します。
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.conn.PingContext(ctx)
}

// Close はデータベース接続を閉じます。
func (s *SQLiteStore) Close() error {
	return s.conn.Close()
}

// loadItems はsqlcの行をモデルに変換します。
func loadItems(dbItems []db.Item) ([]*model.Item, error) {
	items := make([]*model.Item, 0, len(dbItems))
	for _, dbItem := range dbItems {
		item, err := loadItem(dbItem)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

func loadItem(dbItem db.Item) (*model.Item, error) {
	materials, err := model.ParseAmount(dbItem.MaterialsSubtotal)
	if err != nil {
		return nil, fmt.Errorf("failed to parse materials_subtotal of item %d: %w", dbItem.ID, err)
	}
	labor, err := model.ParseAmount(dbItem.LaborSubtotal)
	if err != nil {
		return nil, fmt.Errorf("failed to parse labor_subtotal of item %d: %w", dbItem.ID, err)
	}
	total, err := model.ParseAmount(dbItem.Total)
	if err != nil {
		return nil, fmt.Errorf("failed to parse total of item %d: %w", dbItem.ID, err)
	}

	var pdfLocation *string
	if dbItem.PdfLocation.Valid {
		loc := dbItem.PdfLocation.String
		pdfLocation = &loc
	}

	return &model.Item{
		ID:                dbItem.ID,
		Name:              dbItem.Name,
		Address:           dbItem.Address,
		Date:              dbItem.Date,
		MaterialsSubtotal: materials,
		LaborSubtotal:     labor,
		Total:             total,
		InvoiceNo:         model.InvoiceNo(dbItem.InvoiceNo),
		Job:               dbItem.Job,
		PdfLocation:       pdfLocation,
	}, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// SchemaVersion は適用済みのスキーマバージョンを返します。
func (s *SQLiteStore) SchemaVersion() (int64, error) {
	return db.Version(s.conn)
}
