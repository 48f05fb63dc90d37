package main

import (
	"fmt"

	"github.com/stsysd/itemsvc/config"
	"github.com/stsysd/itemsvc/db"
	"github.com/stsysd/itemsvc/store"
	"go.uber.org/zap"
)

// runMigrate はサーバーを起動せずにマイグレーションのみを実行します。
func runMigrate(cfg *config.Config, logger *zap.Logger) error {
	// ストアの初期化時にマイグレーションが適用される
	sqliteStore, err := store.NewSQLiteStore(cfg.DataDir, db.Migrate)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	defer sqliteStore.Close()

	version, err := sqliteStore.SchemaVersion()
	if err != nil {
		return err
	}

	logger.Info("Migrations applied",
		zap.String("data_dir", cfg.DataDir),
		zap.Int64("version", version),
	)
	return nil
}
