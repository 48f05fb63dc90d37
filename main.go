// Package main はアプリケーションのエントリーポイントを提供します。
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/stsysd/itemsvc/api"
	"github.com/stsysd/itemsvc/config"
	"github.com/stsysd/itemsvc/db"
	"github.com/stsysd/itemsvc/logging"
	"github.com/stsysd/itemsvc/store"
	"go.uber.org/zap"
)

func main() {
	// 設定の読み込み
	cfg, err := config.NewConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		if err := runMigrate(cfg, logger); err != nil {
			logger.Fatal("Migration failed", zap.Error(err))
		}
		return
	}

	if err := serve(cfg, logger); err != nil {
		logger.Fatal("Server stopped with error", zap.Error(err))
	}
}

// serve はストアを初期化し、シグナルを受け取るまでサーバーを動かします。
func serve(cfg *config.Config, logger *zap.Logger) error {
	// SQLiteストアの初期化（マイグレーション関数を渡す）
	sqliteStore, err := store.NewSQLiteStore(cfg.DataDir, db.Migrate)
	if err != nil {
		return fmt.Errorf("failed to initialize SQLite store: %w", err)
	}
	defer sqliteStore.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// サーバーインスタンスの作成
	server := api.NewServer(sqliteStore, cfg, logger)

	// サーバーの起動
	return server.Run(ctx, cfg.Addr())
}
