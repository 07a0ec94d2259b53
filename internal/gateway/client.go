// Package gateway はマーケットプレイスAPIへのHTTP呼び出しを提供する。
// 外部操作ごとに1メソッドを公開し、ネットワーク障害とHTTPエラーを
// 統一されたエラー形に正規化する。リトライは行わず、失敗の扱いは
// 呼び出し元（各ビュー）の責務とする。
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hitoshi/weddingmatch/internal/model"
)

// 操作名。ログとメトリクスのラベルに使用する。
const (
	OpGetMatches       = "get_matches"
	OpCreateQuote      = "create_quote"
	OpListVendorQuotes = "list_vendor_quotes"
	OpAcceptQuote      = "accept_quote"
	OpDeclineQuote     = "decline_quote"
)

// StatusError はマーケットプレイスAPIが非2xxステータスを返したことを表す。
// レスポンスボディのテキストを保持する（承諾・辞退の失敗理由表示に使用する）。
type StatusError struct {
	StatusCode int
	Body       string
}

// Error はerrorインターフェースを実装する。
func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("マーケットプレイスAPIがステータス %d を返しました", e.StatusCode)
	}
	return fmt.Sprintf("マーケットプレイスAPIがステータス %d を返しました: %s", e.StatusCode, e.Body)
}

// MetricsRecorder はゲートウェイが必要とするメトリクス収集のインターフェース。
type MetricsRecorder interface {
	RecordUpstreamSuccess(operation string)
	RecordUpstreamFailure(operation, reason string)
	RecordUpstreamStatus(statusCode int)
	RecordUpstreamLatency(operation string, duration time.Duration)
}

// Client はマーケットプレイスAPIのクライアント。
// タイムアウトは設定しない。各呼び出しはページリクエストのコンテキストに
// 紐付き、閲覧者がページを離れるとキャンセルされる。
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
	metrics    MetricsRecorder
	baseURL    string
}

// NewClient はClientの新しいインスタンスを生成する。
// baseURLは末尾スラッシュなしのAPIベースURLを指定する。
func NewClient(baseURL string, httpClient *http.Client, logger *slog.Logger, metrics MetricsRecorder) *Client {
	return &Client{
		httpClient: httpClient,
		logger:     logger,
		metrics:    metrics,
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

// CreateQuoteRequest は見積もりリクエスト作成のボディ。
// フィールド名は外部仕様のため変更してはならない。
type CreateQuoteRequest struct {
	Service        string                   `json:"service"`
	Cost           int                      `json:"cost"`
	OnboardingData model.OnboardingCriteria `json:"onboardingData"`
}

// GetMatches はオンボーディング条件に合致するグループ割引オファーを取得する。
// 返却順はサーバーの返した順のまま（クライアント側で並べ替えない）。
func (c *Client) GetMatches(ctx context.Context, criteria model.OnboardingCriteria) ([]model.Deal, error) {
	q := url.Values{}
	q.Set("date", criteria.Date)
	q.Set("city", criteria.City)
	q.Set("style", criteria.Style)
	q.Set("budget", criteria.Budget)

	body, err := c.do(ctx, OpGetMatches, http.MethodGet, c.baseURL+"/api/matches?"+q.Encode(), "", nil)
	if err != nil {
		return nil, err
	}

	var deals []model.Deal
	if err := json.Unmarshal(body, &deals); err != nil {
		return nil, fmt.Errorf("マッチ一覧レスポンスのパースに失敗しました: %w", err)
	}

	return deals, nil
}

// CreateQuote は見積もりリクエストを作成する。
// サーバーが作成した確認応答をそのまま返す（形はサーバーが権威を持つ）。
// 重複送信の排除は行わない。同じ内容で2回呼べば2回リクエストされる。
func (c *Client) CreateQuote(ctx context.Context, req CreateQuoteRequest) (json.RawMessage, error) {
	body, err := c.do(ctx, OpCreateQuote, http.MethodPost, c.baseURL+"/api/quotes", "", req)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(body), nil
}

// ListVendorQuotes は業者宛の見積もりリクエスト一覧を取得する。
func (c *Client) ListVendorQuotes(ctx context.Context, vendorID, token string) ([]model.Quote, error) {
	reqURL := c.baseURL + "/api/vendors/" + url.PathEscape(vendorID) + "/quotes"

	body, err := c.do(ctx, OpListVendorQuotes, http.MethodGet, reqURL, token, nil)
	if err != nil {
		return nil, err
	}

	var quotes []model.Quote
	if err := json.Unmarshal(body, &quotes); err != nil {
		return nil, fmt.Errorf("見積もり一覧レスポンスのパースに失敗しました: %w", err)
	}

	return quotes, nil
}

// acceptQuoteBody は承諾リクエストのボディ。
type acceptQuoteBody struct {
	Pricing model.QuotePricing `json:"pricing"`
}

// AcceptQuote は見積もりを価格提示付きで承諾する。
// 価格の検証（正の数値であること）は呼び出し元がネットワーク呼び出し前に行う。
// 成功時はサーバーが返した更新後のQuoteを返す。
func (c *Client) AcceptQuote(ctx context.Context, token, quoteID string, pricing model.QuotePricing) (*model.Quote, error) {
	reqURL := c.baseURL + "/api/quotes/" + url.PathEscape(quoteID) + "/accept"

	body, err := c.do(ctx, OpAcceptQuote, http.MethodPut, reqURL, token, acceptQuoteBody{Pricing: pricing})
	if err != nil {
		return nil, err
	}

	var quote model.Quote
	if err := json.Unmarshal(body, &quote); err != nil {
		return nil, fmt.Errorf("承諾レスポンスのパースに失敗しました: %w", err)
	}

	return &quote, nil
}

// DeclineQuote は見積もりを辞退する。
// reasonが空白のみの場合はボディからreasonキー自体を省略する
// （空文字列としては送らない）。成功時はサーバーが返した更新後のQuoteを返す。
func (c *Client) DeclineQuote(ctx context.Context, token, quoteID, reason string) (*model.Quote, error) {
	reqURL := c.baseURL + "/api/quotes/" + url.PathEscape(quoteID) + "/decline"

	payload := map[string]string{}
	if trimmed := strings.TrimSpace(reason); trimmed != "" {
		payload["reason"] = trimmed
	}

	body, err := c.do(ctx, OpDeclineQuote, http.MethodPut, reqURL, token, payload)
	if err != nil {
		return nil, err
	}

	var quote model.Quote
	if err := json.Unmarshal(body, &quote); err != nil {
		return nil, fmt.Errorf("辞退レスポンスのパースに失敗しました: %w", err)
	}

	return &quote, nil
}

// do はHTTPリクエストを実行し、レスポンスボディを返す。
// 非2xxステータスは*StatusError、ネットワーク障害はラップされたエラーとして返す。
func (c *Client) do(ctx context.Context, operation, method, rawURL, token string, payload any) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("リクエストボディの生成に失敗しました: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, reqBody)
	if err != nil {
		return nil, fmt.Errorf("HTTPリクエストの作成に失敗しました: %w", err)
	}
	req.Header.Set("User-Agent", "WeddingMatch/1.0 Client")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.RecordUpstreamLatency(operation, time.Since(start))

	if err != nil {
		c.logger.Error("マーケットプレイスAPIの呼び出しに失敗しました",
			slog.String("operation", operation),
			slog.String("error", err.Error()),
		)
		c.metrics.RecordUpstreamFailure(operation, "transport")
		return nil, fmt.Errorf("マーケットプレイスAPIの呼び出しに失敗しました: %w", err)
	}
	defer resp.Body.Close()

	c.metrics.RecordUpstreamStatus(resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.metrics.RecordUpstreamFailure(operation, "read")
		return nil, fmt.Errorf("レスポンスボディの読み取りに失敗しました: %w", err)
	}

	// 非2xxはボディの内容にかかわらず失敗として扱う
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Error("マーケットプレイスAPIがエラーステータスを返しました",
			slog.String("operation", operation),
			slog.Int("http_status", resp.StatusCode),
		)
		c.metrics.RecordUpstreamFailure(operation, "status")
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	c.metrics.RecordUpstreamSuccess(operation)
	return body, nil
}
