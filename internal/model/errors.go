// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, upstream, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeUnauthenticated     = "UNAUTHENTICATED"
	ErrCodeInvalidCriteria     = "INVALID_CRITERIA"
	ErrCodeInvalidPricing      = "INVALID_PRICING"
	ErrCodeUpstreamStatus      = "UPSTREAM_STATUS"
	ErrCodeUpstreamUnreachable = "UPSTREAM_UNREACHABLE"
)

// NewUnauthenticatedError は業者ログインが必要な操作に対するエラーを生成する。
// このエラーが返される操作ではネットワーク呼び出しは一切行われない。
func NewUnauthenticatedError() *APIError {
	return &APIError{
		Code:     ErrCodeUnauthenticated,
		Message:  "業者としてログインしていません。",
		Category: "auth",
		Action:   "業者ダッシュボードからログインしてください。",
	}
}

// NewInvalidCriteriaError はオンボーディング条件の検証エラーを生成する。
func NewInvalidCriteriaError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidCriteria,
		Message:  fmt.Sprintf("入力内容に誤りがあります: %s", reason),
		Category: "validation",
		Action:   "日付・都市・スタイル・予算をすべて入力し、予算は数値で指定してください。",
	}
}

// NewInvalidPricingError は承諾時の価格検証エラーを生成する。
// 検証はネットワーク呼び出しの前に行われ、失敗時はリクエストを発行しない。
func NewInvalidPricingError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidPricing,
		Message:  "価格情報が不正です。1組あたり価格と合計価格は正の数値で入力してください。",
		Category: "validation",
		Action:   "両方の価格を0より大きい数値で入力し直してください。",
	}
}

// NewUpstreamStatusError はマーケットプレイスAPIが非2xxを返した場合のエラーを生成する。
func NewUpstreamStatusError(statusCode int) *APIError {
	return &APIError{
		Code:     ErrCodeUpstreamStatus,
		Message:  fmt.Sprintf("マーケットプレイスAPIがステータス %d を返しました。", statusCode),
		Category: "upstream",
		Action:   "しばらく待ってから再度お試しください。",
	}
}

// NewUpstreamUnreachableError はマーケットプレイスAPIに到達できなかった場合のエラーを生成する。
func NewUpstreamUnreachableError() *APIError {
	return &APIError{
		Code:     ErrCodeUpstreamUnreachable,
		Message:  "マーケットプレイスAPIに接続できませんでした。",
		Category: "upstream",
		Action:   "ネットワーク接続と接続先設定を確認してから再度お試しください。",
	}
}
