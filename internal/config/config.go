package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Marketplace API
	MarketplaceAPIURL string

	// Session storage
	SessionDBPath string

	// Rate Limit
	RateLimitGeneral int
	RateLimitAction  int

	// Server
	ServerPort string
}

// Load は環境変数からConfigを読み込む。
// 必須環境変数が未設定の場合はエラーを返す。
func Load() (*Config, error) {
	cfg := &Config{}

	// Required fields
	var missing []string

	cfg.MarketplaceAPIURL = os.Getenv("MARKETPLACE_API_URL")
	if cfg.MarketplaceAPIURL == "" {
		missing = append(missing, "MARKETPLACE_API_URL")
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("required environment variables are not set: %v", missing)
	}

	// 末尾スラッシュはパス結合時の二重スラッシュを避けるため除去する
	cfg.MarketplaceAPIURL = strings.TrimRight(cfg.MarketplaceAPIURL, "/")

	// Optional fields with defaults
	cfg.SessionDBPath = getEnvString("SESSION_DB_PATH", "weddingmatch.db")
	cfg.RateLimitGeneral = getEnvInt("RATE_LIMIT_GENERAL", 120)
	cfg.RateLimitAction = getEnvInt("RATE_LIMIT_ACTION", 10)
	cfg.ServerPort = getEnvString("SERVER_PORT", "8080")

	return cfg, nil
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}
