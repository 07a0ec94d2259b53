package handler

import (
	"embed"
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/weddingmatch/internal/metrics"
	"github.com/hitoshi/weddingmatch/internal/middleware"
	"github.com/hitoshi/weddingmatch/internal/security"
)

//go:embed static
var staticFS embed.FS

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	RateLimiter *middleware.RateLimiter
	Logger      *slog.Logger

	// ゲートウェイ
	MatchService       MatchServiceInterface
	VendorQuoteService VendorQuoteServiceInterface

	// 状態
	CriteriaStore CriteriaStoreInterface
	SessionStore  SessionStoreInterface

	// 横断サービス
	Sanitizer     security.ContentSanitizerService
	HealthChecker HealthChecker
	Gatherer      prometheus.Gatherer
	PageMetrics   middleware.PageMetricsRecorder
}

// NewRouter は全画面のルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	RequestID → Logging → Recovery → SecurityHeaders → PageMetrics → RateLimit(General)
//
// 見積もり操作（依頼・承諾・辞退）には専用のレート制限を追加で適用する。
// /health と /metrics はレート制限の外に配置する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	renderer := NewRenderer(deps.Logger)

	matchHandler := NewMatchHandler(deps.MatchService, deps.CriteriaStore, deps.Sanitizer, renderer, deps.Logger)
	vendorHandler := NewVendorHandler(deps.VendorQuoteService, deps.SessionStore, deps.Sanitizer, renderer, deps.Logger)
	healthHandler := NewHealthHandler(deps.HealthChecker)

	r.Use(middleware.NewRequestIDMiddleware())
	r.Use(middleware.NewLoggingMiddleware(deps.Logger))
	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewSecurityHeadersMiddleware())

	// --- 運用エンドポイント（レート制限の外） ---
	r.Get("/health", healthHandler.Check)
	r.Method(http.MethodGet, "/metrics", metrics.Handler(deps.Gatherer))

	// 静的アセット
	staticRoot, err := fs.Sub(staticFS, "static")
	if err != nil {
		// 埋め込みディレクトリ名の不整合は起動時に検出するべきバグ
		panic(err)
	}
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(staticRoot))))

	// --- 画面ルート ---
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewPageMetricsMiddleware(deps.PageMetrics))
		r.Use(deps.RateLimiter.GeneralMiddleware())

		// 新郎新婦側
		r.Get("/", matchHandler.ShowIntake)
		r.Post("/onboarding", matchHandler.SubmitCriteria)
		r.Get("/matches", matchHandler.ShowMatches)
		r.With(deps.RateLimiter.ActionMiddleware()).Post("/matches/quotes", matchHandler.RequestQuote)

		// 業者側
		r.Route("/vendor", func(r chi.Router) {
			r.Get("/", vendorHandler.ShowDashboard)
			r.Post("/login", vendorHandler.Login)
			r.Post("/logout", vendorHandler.Logout)
			r.Get("/quotes", vendorHandler.ListQuotes)
			r.With(deps.RateLimiter.ActionMiddleware()).Post("/quotes/{id}/accept", vendorHandler.AcceptQuote)
			r.With(deps.RateLimiter.ActionMiddleware()).Post("/quotes/{id}/decline", vendorHandler.DeclineQuote)
		})

		// 未知のパスは条件入力画面へ
		r.NotFound(func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, "/", http.StatusFound)
		})
	})

	return r
}
