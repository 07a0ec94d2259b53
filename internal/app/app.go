// Package app はアプリケーションの起動・初期化・シャットダウンを担う。
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/weddingmatch/internal/config"
	"github.com/hitoshi/weddingmatch/internal/database"
	"github.com/hitoshi/weddingmatch/internal/gateway"
	"github.com/hitoshi/weddingmatch/internal/handler"
	"github.com/hitoshi/weddingmatch/internal/logger"
	"github.com/hitoshi/weddingmatch/internal/metrics"
	"github.com/hitoshi/weddingmatch/internal/middleware"
	"github.com/hitoshi/weddingmatch/internal/onboarding"
	"github.com/hitoshi/weddingmatch/internal/repository"
	"github.com/hitoshi/weddingmatch/internal/security"
	"github.com/hitoshi/weddingmatch/internal/session"
)

// Init はアプリケーションの初期化を行う。
// 環境変数からConfigを読み込み、JSON構造化ログをセットアップする。
// writerが指定された場合はログ出力先としてそのwriterを使用する。
func Init(w io.Writer) (*config.Config, error) {
	// 1. ログの初期化（設定読み込み前にログを使えるようにする）
	logger.SetupDefault(w)

	// 2. 環境変数から設定を読み込む
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return cfg, nil
}

// Run はアプリケーションのメインエントリーポイント。
// コマンドライン引数からサブコマンドを解析し、対応するモードで起動する。
// argsにはos.Args[1:]を渡す。
func Run(w io.Writer, args []string) error {
	cmd := ParseCommand(args)

	// healthcheck は軽量サブコマンドのため、フル初期化をスキップする
	if cmd == CommandHealthcheck {
		port := os.Getenv("SERVER_PORT")
		if port == "" {
			port = "8080"
		}
		return runHealthcheck(port)
	}

	cfg, err := Init(w)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	slog.Info("starting application",
		slog.String("command", string(cmd)),
		slog.String("port", cfg.ServerPort),
		slog.String("marketplace_api_url", cfg.MarketplaceAPIURL),
	)

	switch cmd {
	case CommandMigrate:
		return runMigrate(cfg)
	default:
		return runServe(cfg)
	}
}

// runServe はWebサーバーモードで起動する。
// セッションDBを開き、全依存関係をワイヤリングし、HTTPサーバーを起動する。
// SIGINTまたはSIGTERMシグナルを受信するとグレースフルシャットダウンを行う。
func runServe(cfg *config.Config) error {
	// 1. セッションDBの接続（未適用マイグレーションがあれば先に適用する）
	if err := database.RunMigrations(cfg.SessionDBPath); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	db, err := database.Open(cfg.SessionDBPath)
	if err != nil {
		return fmt.Errorf("failed to open session database: %w", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to connect to session database: %w", err)
	}

	slog.Info("session database ready",
		slog.String("path", cfg.SessionDBPath),
	)

	// 2. リポジトリとセッションストアの初期化
	credentialRepo := repository.NewSQLiteCredentialRepo(db)

	sessionStore := session.New(credentialRepo)
	if err := sessionStore.Load(context.Background()); err != nil {
		return fmt.Errorf("failed to restore vendor session: %w", err)
	}
	if vendorID, _, ok := sessionStore.Current(); ok {
		slog.Info("vendor session restored",
			slog.String("vendor_id", vendorID),
		)
	}

	criteriaStore := onboarding.New()

	// 3. 横断サービスの初期化
	sanitizer := security.NewContentSanitizer()
	collector := metrics.NewCollector(prometheus.DefaultRegisterer)

	// 4. マーケットプレイスAPIゲートウェイの初期化
	// タイムアウトは設定しない。リクエストの中断はページリクエストの
	// コンテキストキャンセルに委ねる。
	marketplaceClient := gateway.NewClient(
		cfg.MarketplaceAPIURL,
		&http.Client{},
		slog.Default(),
		collector,
	)

	// 5. ルーターの構築
	rateLimiter := middleware.NewRateLimiter(
		middleware.NewRateLimiterConfig(cfg.RateLimitGeneral, cfg.RateLimitAction),
	)
	defer rateLimiter.Stop()

	router := handler.NewRouter(&handler.RouterDeps{
		RateLimiter:        rateLimiter,
		Logger:             slog.Default(),
		MatchService:       marketplaceClient,
		VendorQuoteService: marketplaceClient,
		CriteriaStore:      criteriaStore,
		SessionStore:       sessionStore,
		Sanitizer:          sanitizer,
		HealthChecker:      db,
		Gatherer:           prometheus.DefaultGatherer,
		PageMetrics:        collector,
	})

	// 6. HTTPサーバーの起動
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// グレースフルシャットダウンのためのシグナルハンドリング
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("web server starting",
			slog.String("addr", server.Addr),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server listen error", slog.String("error", err.Error()))
		}
	}()

	<-stop
	slog.Info("shutting down web server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("web server stopped gracefully")
	return nil
}

// runMigrate はセッションデータベースのマイグレーションを実行する。
// すべての未適用マイグレーションを順番に適用する。
func runMigrate(cfg *config.Config) error {
	slog.Info("running session database migrations",
		slog.String("path", cfg.SessionDBPath),
	)

	if err := database.RunMigrations(cfg.SessionDBPath); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	slog.Info("session database migrations completed successfully")
	return nil
}

// runHealthcheck はヘルスチェックを実行する。
// distroless環境でのDockerヘルスチェック用サブコマンド。
// /health エンドポイントにHTTPリクエストを送り、結果を返す。
func runHealthcheck(port string) error {
	url := fmt.Sprintf("http://localhost:%s/health", port)
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}
