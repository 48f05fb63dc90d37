// Package db はスキーママイグレーションとsqlcで生成されたクエリを提供します。
package db

//go:generate go tool sqlc generate -f ../sqlc.yaml

import (
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
)

//go:embed schema/*.sql
var schemaFS embed.FS

// schemaDir は schemaFS 内のマイグレーションファイルのディレクトリです。
const schemaDir = "schema"

// useSchema はgooseに埋め込みスキーマとSQLiteの方言を設定します。
func useSchema() error {
	goose.SetBaseFS(schemaFS)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	return nil
}

// Migrate は未適用のマイグレーションをすべて適用します。
func Migrate(conn *sql.DB) error {
	if err := useSchema(); err != nil {
		return err
	}
	if err := goose.Up(conn, schemaDir); err != nil {
		return fmt.Errorf("failed to apply schema %s: %w", schemaDir, err)
	}
	return nil
}

// Version は適用済みのスキーマバージョンを返します。
func Version(conn *sql.DB) (int64, error) {
	if err := useSchema(); err != nil {
		return 0, err
	}
	version, err := goose.GetDBVersion(conn)
	if err != nil {
		return 0, fmt.Errorf("failed to get schema version: %w", err)
	}
	return version, nil
}
