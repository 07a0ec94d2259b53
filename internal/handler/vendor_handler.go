package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/weddingmatch/internal/model"
	"github.com/hitoshi/weddingmatch/internal/security"
)

// VendorQuoteServiceInterface は業者側ハンドラーが必要とするゲートウェイインターフェース。
type VendorQuoteServiceInterface interface {
	// ListVendorQuotes は業者宛の見積もりリクエスト一覧を取得する。
	ListVendorQuotes(ctx context.Context, vendorID, token string) ([]model.Quote, error)
	// AcceptQuote は見積もりを価格提示付きで承諾する。
	AcceptQuote(ctx context.Context, token, quoteID string, pricing model.QuotePricing) (*model.Quote, error)
	// DeclineQuote は見積もりを辞退する。
	DeclineQuote(ctx context.Context, token, quoteID, reason string) (*model.Quote, error)
}

// SessionStoreInterface は業者セッションの保持インターフェース。
type SessionStoreInterface interface {
	Current() (vendorID, token string, ok bool)
	Login(ctx context.Context, vendorID, token string) error
	Logout(ctx context.Context) error
}

// VendorHandler は業者側画面（ダッシュボード・見積もり一覧・承諾・辞退）のHTTPハンドラー。
type VendorHandler struct {
	service   VendorQuoteServiceInterface
	session   SessionStoreInterface
	sanitizer security.ContentSanitizerService
	renderer  *Renderer
	logger    *slog.Logger
}

// NewVendorHandler はVendorHandlerを生成する。
func NewVendorHandler(service VendorQuoteServiceInterface, session SessionStoreInterface, sanitizer security.ContentSanitizerService, renderer *Renderer, logger *slog.Logger) *VendorHandler {
	return &VendorHandler{
		service:   service,
		session:   session,
		sanitizer: sanitizer,
		renderer:  renderer,
		logger:    logger,
	}
}

// ShowDashboard は業者ダッシュボードを表示する。
// GET /vendor
// 未ログインの場合はログインフォーム、ログイン済みの場合は業者IDと
// ログアウトフォームを表示する。
func (h *VendorHandler) ShowDashboard(w http.ResponseWriter, r *http.Request) {
	vendorID, _, ok := h.session.Current()
	h.renderer.Render(w, http.StatusOK, "vendor.html", vendorView{
		LoggedIn: ok,
		VendorID: vendorID,
	})
}

// Login は業者ログインを処理する。
// POST /vendor/login
// 資格情報の妥当性検証は行わない（マーケットプレイスAPIが各リクエストで
// 拒否するまで信頼する）。永続化に失敗した場合はログイン状態にならない。
func (h *VendorHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderer.Render(w, http.StatusBadRequest, "vendor.html", vendorView{
			Error: "フォームの解析に失敗しました。",
		})
		return
	}

	vendorID := strings.TrimSpace(r.PostFormValue("vendorId"))
	token := strings.TrimSpace(r.PostFormValue("vendorToken"))

	if vendorID == "" || token == "" {
		h.renderer.Render(w, http.StatusBadRequest, "vendor.html", vendorView{
			Error: "業者IDとアクセストークンの両方を入力してください。",
		})
		return
	}

	if err := h.session.Login(r.Context(), vendorID, token); err != nil {
		h.logger.Error("セッションの永続化に失敗しました",
			slog.String("error", err.Error()),
		)
		h.renderer.Render(w, http.StatusInternalServerError, "vendor.html", vendorView{
			Error: "セッションの保存に失敗しました。しばらく待ってから再度お試しください。",
		})
		return
	}

	http.Redirect(w, r, "/vendor/quotes", http.StatusSeeOther)
}

// Logout は業者ログアウトを処理する。
// POST /vendor/logout
func (h *VendorHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.session.Logout(r.Context()); err != nil {
		h.logger.Error("セッションの削除に失敗しました",
			slog.String("error", err.Error()),
		)
		h.renderer.Render(w, http.StatusInternalServerError, "vendor.html", vendorView{
			LoggedIn: true,
			Error:    "ログアウトに失敗しました。しばらく待ってから再度お試しください。",
		})
		return
	}

	http.Redirect(w, r, "/vendor", http.StatusSeeOther)
}

// ListQuotes は業者宛の見積もりリクエスト一覧を表示する。
// GET /vendor/quotes
// 未ログインの場合はネットワーク呼び出しを一切行わず、ログイン要求画面を返す。
func (h *VendorHandler) ListQuotes(w http.ResponseWriter, r *http.Request) {
	vendorID, token, ok := h.session.Current()
	if !ok {
		h.renderUnauthenticated(w)
		return
	}

	quotes, err := h.service.ListVendorQuotes(r.Context(), vendorID, token)
	if err != nil {
		renderUpstreamError(h.renderer, h.logger, w, r, "list_vendor_quotes", err)
		return
	}

	views := make([]quoteView, 0, len(quotes))
	for _, q := range quotes {
		views = append(views, toQuoteView(q, h.sanitizer))
	}

	h.renderer.Render(w, http.StatusOK, "vendor_quotes.html", vendorQuotesView{
		VendorID: vendorID,
		Quotes:   views,
	})
}

// AcceptQuote は見積もりの承諾を処理する。
// POST /vendor/quotes/{id}/accept
// 価格の検証はネットワーク呼び出しの前に行い、不正な場合はリクエストを発行しない。
func (h *VendorHandler) AcceptQuote(w http.ResponseWriter, r *http.Request) {
	vendorID, token, ok := h.session.Current()
	if !ok {
		h.renderUnauthenticated(w)
		return
	}

	quoteID := chi.URLParam(r, "id")

	if err := r.ParseForm(); err != nil {
		h.renderer.Render(w, http.StatusBadRequest, "error.html", errorView{
			Message: "フォームの解析に失敗しました。",
		})
		return
	}

	perCouple, errPer := strconv.ParseFloat(strings.TrimSpace(r.PostFormValue("perCouple")), 64)
	total, errTotal := strconv.ParseFloat(strings.TrimSpace(r.PostFormValue("total")), 64)
	if errPer != nil || errTotal != nil || perCouple <= 0 || total <= 0 {
		apiErr := model.NewInvalidPricingError()
		h.renderer.Render(w, http.StatusBadRequest, "vendor_quotes.html", vendorQuotesView{
			VendorID: vendorID,
			Error:    apiErr.Message,
		})
		return
	}

	quote, err := h.service.AcceptQuote(r.Context(), token, quoteID, model.QuotePricing{
		PerCouple: perCouple,
		Total:     total,
	})
	if err != nil {
		renderUpstreamError(h.renderer, h.logger, w, r, "accept_quote", err)
		return
	}

	h.renderer.Render(w, http.StatusOK, "action_result.html", actionResultView{
		Service: h.sanitizer.SanitizeText(quote.Service),
		Status:  string(quote.Status),
	})
}

// DeclineQuote は見積もりの辞退を処理する。
// POST /vendor/quotes/{id}/decline
// 理由は任意入力であり、空白のみの場合はリクエストボディから省略される。
func (h *VendorHandler) DeclineQuote(w http.ResponseWriter, r *http.Request) {
	_, token, ok := h.session.Current()
	if !ok {
		h.renderUnauthenticated(w)
		return
	}

	quoteID := chi.URLParam(r, "id")

	if err := r.ParseForm(); err != nil {
		h.renderer.Render(w, http.StatusBadRequest, "error.html", errorView{
			Message: "フォームの解析に失敗しました。",
		})
		return
	}

	reason := r.PostFormValue("reason")

	quote, err := h.service.DeclineQuote(r.Context(), token, quoteID, reason)
	if err != nil {
		renderUpstreamError(h.renderer, h.logger, w, r, "decline_quote", err)
		return
	}

	h.renderer.Render(w, http.StatusOK, "action_result.html", actionResultView{
		Service: h.sanitizer.SanitizeText(quote.Service),
		Status:  string(quote.Status),
	})
}

// renderUnauthenticated は未ログイン状態の業者操作に対して401画面を返す。
func (h *VendorHandler) renderUnauthenticated(w http.ResponseWriter) {
	h.renderer.Render(w, http.StatusUnauthorized, "vendor_unauth.html", nil)
}
