// Package config はアプリケーション設定を管理します。
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// 環境変数のプレフィックス（例: ITEMS_PORT）
const envPrefix = "ITEMS"

// Config はアプリケーション全体の設定を保持します。
type Config struct {
	// データディレクトリのパス
	DataDir string `mapstructure:"data_dir" validate:"required"`

	// HTTPサーバーのポート
	Port string `mapstructure:"port" validate:"required,numeric"`

	// API認証キー（空の場合は認証なし）
	APIKey string `mapstructure:"api_key"`

	// ログレベルと出力形式
	LogLevel  string `mapstructure:"log_level" validate:"oneof=debug info warn error"`
	LogFormat string `mapstructure:"log_format" validate:"oneof=json console"`

	// シャットダウン時に処理中のリクエストを待つ時間
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0"`
}

// Addr はHTTPサーバーの待ち受けアドレスを返します。
func (c *Config) Addr() string {
	return ":" + c.Port
}

// NewConfig は .env、設定ファイル、環境変数から設定を読み込み、検証済みのConfigを返します。
// 優先順位は 環境変数 > 設定ファイル > デフォルト値 です。
func NewConfig() (*Config, error) {
	// .env が存在すれば環境変数として読み込む（既存の環境変数は上書きしない）
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("data_dir", filepath.Join(".", "data"))
	v.SetDefault("port", "8080")
	v.SetDefault("api_key", "")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")
	v.SetDefault("shutdown_timeout", 15*time.Second)

	// 設定ファイルは任意
	if configFile := v.GetString("config_file"); configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate は設定値を検証します。
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			var msgs []string
			for _, fe := range fieldErrs {
				msgs = append(msgs, fmt.Sprintf("%s failed on %q", fe.Field(), fe.Tag()))
			}
			return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, ", "))
		}
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}
