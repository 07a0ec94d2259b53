package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/hitoshi/weddingmatch/internal/gateway"
	"github.com/hitoshi/weddingmatch/internal/model"
	"github.com/hitoshi/weddingmatch/internal/security"
)

// MatchServiceInterface はマッチ関連ハンドラーが必要とするゲートウェイインターフェース。
type MatchServiceInterface interface {
	// GetMatches は条件に合致するグループディール一覧を取得する。
	GetMatches(ctx context.Context, criteria model.OnboardingCriteria) ([]model.Deal, error)
	// CreateQuote は見積もりリクエストを作成する。
	CreateQuote(ctx context.Context, req gateway.CreateQuoteRequest) (json.RawMessage, error)
}

// CriteriaStoreInterface はオンボーディング条件の保持インターフェース。
type CriteriaStoreInterface interface {
	Set(criteria model.OnboardingCriteria)
	Get() (model.OnboardingCriteria, bool)
}

// MatchHandler は新郎新婦側画面（条件入力・マッチ一覧・見積もり依頼）のHTTPハンドラー。
type MatchHandler struct {
	service   MatchServiceInterface
	criteria  CriteriaStoreInterface
	sanitizer security.ContentSanitizerService
	renderer  *Renderer
	logger    *slog.Logger
}

// NewMatchHandler はMatchHandlerを生成する。
func NewMatchHandler(service MatchServiceInterface, criteria CriteriaStoreInterface, sanitizer security.ContentSanitizerService, renderer *Renderer, logger *slog.Logger) *MatchHandler {
	return &MatchHandler{
		service:   service,
		criteria:  criteria,
		sanitizer: sanitizer,
		renderer:  renderer,
		logger:    logger,
	}
}

// ShowIntake は条件入力フォームを表示する。
// GET /
// 条件が入力済みの場合はフォームに現在値をプリフィルする。
func (h *MatchHandler) ShowIntake(w http.ResponseWriter, r *http.Request) {
	criteria, _ := h.criteria.Get()
	h.renderer.Render(w, http.StatusOK, "intake.html", intakeView{Criteria: criteria})
}

// SubmitCriteria は条件フォームの送信を処理する。
// POST /onboarding
// 検証成功時は条件を丸ごと置き換えてマッチ一覧へリダイレクトする。
// 検証失敗時は入力値を保持したままフォームを再表示し、条件は変更しない。
func (h *MatchHandler) SubmitCriteria(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderer.Render(w, http.StatusBadRequest, "intake.html", intakeView{
			Error: "フォームの解析に失敗しました。",
		})
		return
	}

	submitted := model.OnboardingCriteria{
		Date:   strings.TrimSpace(r.PostFormValue("date")),
		City:   strings.TrimSpace(r.PostFormValue("city")),
		Style:  strings.TrimSpace(r.PostFormValue("style")),
		Budget: strings.TrimSpace(r.PostFormValue("budget")),
	}

	if apiErr := validateCriteria(submitted); apiErr != nil {
		h.renderer.Render(w, http.StatusBadRequest, "intake.html", intakeView{
			Criteria: submitted,
			Error:    apiErr.Message,
		})
		return
	}

	h.criteria.Set(submitted)

	http.Redirect(w, r, "/matches", http.StatusSeeOther)
}

// validateCriteria は全フィールドの存在と予算の数値性を検証する。
// 予算はワイヤー形式保持のため文字列のまま保存され、ここでは解析のみ行う。
func validateCriteria(c model.OnboardingCriteria) *model.APIError {
	switch {
	case c.Date == "":
		return model.NewInvalidCriteriaError("日付が未入力です")
	case c.City == "":
		return model.NewInvalidCriteriaError("都市が未入力です")
	case c.Style == "":
		return model.NewInvalidCriteriaError("スタイルが未入力です")
	case c.Budget == "":
		return model.NewInvalidCriteriaError("予算が未入力です")
	}

	budget, err := strconv.ParseFloat(c.Budget, 64)
	if err != nil {
		return model.NewInvalidCriteriaError("予算は数値で入力してください")
	}
	if budget <= 0 {
		return model.NewInvalidCriteriaError("予算は0より大きい値で入力してください")
	}

	return nil
}

// ShowMatches はマッチ一覧を表示する。
// GET /matches
// 条件が未入力の場合は条件入力フォームへリダイレクトする。
// ディールはサーバーの返却順のまま表示する（並べ替えは行わない）。
func (h *MatchHandler) ShowMatches(w http.ResponseWriter, r *http.Request) {
	criteria, ok := h.criteria.Get()
	if !ok {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	deals, err := h.service.GetMatches(r.Context(), criteria)
	if err != nil {
		h.renderUpstreamError(w, r, "get_matches", err)
		return
	}

	budget := criteria.BudgetAmount()
	views := make([]dealView, 0, len(deals))
	for _, d := range deals {
		views = append(views, toDealView(d, budget, h.sanitizer))
	}

	h.renderer.Render(w, http.StatusOK, "matches.html", matchesView{
		Criteria: criteria,
		Deals:    views,
	})
}

// RequestQuote は見積もり依頼を処理する。
// POST /matches/quotes
// 成功時は確認画面を表示する。マッチ一覧の再取得は行わない。
// 同一ディールへの複数回の依頼はそれぞれ独立したリクエストとして送信される。
func (h *MatchHandler) RequestQuote(w http.ResponseWriter, r *http.Request) {
	criteria, ok := h.criteria.Get()
	if !ok {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	if err := r.ParseForm(); err != nil {
		h.renderer.Render(w, http.StatusBadRequest, "error.html", errorView{
			Message: "フォームの解析に失敗しました。",
		})
		return
	}

	service := h.sanitizer.SanitizeText(r.PostFormValue("service"))
	cost, err := strconv.Atoi(strings.TrimSpace(r.PostFormValue("cost")))
	if service == "" || err != nil || cost <= 0 {
		h.renderer.Render(w, http.StatusBadRequest, "error.html", errorView{
			Message: "見積もり依頼の内容が不正です。",
			Action:  "マッチ一覧から操作をやり直してください。",
		})
		return
	}

	if _, err := h.service.CreateQuote(r.Context(), gateway.CreateQuoteRequest{
		Service:        service,
		Cost:           cost,
		OnboardingData: criteria,
	}); err != nil {
		h.renderUpstreamError(w, r, "create_quote", err)
		return
	}

	h.renderer.Render(w, http.StatusOK, "quote_ack.html", quoteAckView{Service: service})
}

// renderUpstreamError はゲートウェイ呼び出しの失敗をエラー画面として描画する。
func (h *MatchHandler) renderUpstreamError(w http.ResponseWriter, r *http.Request, operation string, err error) {
	renderUpstreamError(h.renderer, h.logger, w, r, operation, err)
}

// renderUpstreamError はゲートウェイエラーを分類してエラー画面を描画する共通処理。
// 非2xxステータスは502、到達不能・キャンセルは503として扱う。
func renderUpstreamError(renderer *Renderer, logger *slog.Logger, w http.ResponseWriter, r *http.Request, operation string, err error) {
	var statusErr *gateway.StatusError
	if errors.As(err, &statusErr) {
		apiErr := model.NewUpstreamStatusError(statusErr.StatusCode)
		logger.Warn("マーケットプレイスAPIがエラーステータスを返しました",
			slog.String("operation", operation),
			slog.Int("status_code", statusErr.StatusCode),
		)
		renderer.Render(w, http.StatusBadGateway, "error.html", errorView{
			Message: apiErr.Message,
			Action:  apiErr.Action,
		})
		return
	}

	apiErr := model.NewUpstreamUnreachableError()
	logger.Error("マーケットプレイスAPIへの接続に失敗しました",
		slog.String("operation", operation),
		slog.String("error", err.Error()),
	)
	renderer.Render(w, http.StatusServiceUnavailable, "error.html", errorView{
		Message: apiErr.Message,
		Action:  apiErr.Action,
	})
}
