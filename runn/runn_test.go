package runn

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/k1LoW/runn"
	"github.com/stsysd/itemsvc/api"
	"github.com/stsysd/itemsvc/config"
	"github.com/stsysd/itemsvc/db"
	"github.com/stsysd/itemsvc/store"
	"go.uber.org/zap"
)

func TestRouter(t *testing.T) {
	t.Setenv("ITEMS_API_KEY", "test-key")
	t.Setenv("ITEMS_DATA_DIR", t.TempDir())

	// 設定の読み込み
	cfg, err := config.NewConfig()
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	// SQLiteストアの初期化（マイグレーション関数を渡す）
	sqliteStore, err := store.NewSQLiteStore(cfg.DataDir, db.Migrate)
	if err != nil {
		t.Fatalf("Failed to initialize SQLite store: %v", err)
	}
	defer sqliteStore.Close()

	// サーバーインスタンスの作成
	server := api.NewServer(sqliteStore, cfg, zap.NewNop())

	ctx := context.Background()
	ts := httptest.NewServer(server)
	t.Cleanup(func() {
		ts.Close()
	})
	opts := []runn.Option{
		runn.T(t),
		runn.Runner("req", ts.URL),
		runn.Var("api_key", "test-key"),
	}
	o, err := runn.Load("./books/*.yml", opts...)
	if err != nil {
		t.Fatal(err)
	}
	if err := o.RunN(ctx); err != nil {
		t.Fatal(err)
	}
}
