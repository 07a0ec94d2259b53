// Package security はアプリケーションのセキュリティ機能を提供する。
//
// ContentSanitizerService はマーケットプレイスAPIから受信した自由記述テキスト
// （サービス名、見積もりメモ、都市名、スタイル名など）をサニタイズし、
// XSS攻撃などのセキュリティリスクから利用者を保護する。
// 外部APIのレスポンスは信頼できない入力として扱い、画面に表示する前に
// 必ずこのサービスを通す。
package security

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// ContentSanitizerService は外部由来テキストのサニタイズ機能のインターフェースを定義する。
// 画面描画の直前に使用される。
type ContentSanitizerService interface {
	// SanitizeText はテキストからすべてのHTMLタグを除去したプレーンテキストを返す。
	// サービス名やメモなどマークアップを含むべきでないフィールドに使用する。
	// 空文字列の入力には空文字列を返す。
	// 同一入力に対して常に同一出力を返す（冪等）。
	SanitizeText(raw string) string
}

// contentSanitizer はContentSanitizerServiceの実装。
// bluemondayのポリシーを保持し、スレッドセーフにサニタイズ処理を行う。
type contentSanitizer struct {
	policy *bluemonday.Policy
}

// NewContentSanitizer はContentSanitizerServiceの新しいインスタンスを生成する。
// マーケットプレイスが返すテキストフィールドにマークアップは想定されないため、
// StrictPolicy（全タグ除去）を使用する。
func NewContentSanitizer() *contentSanitizer {
	return &contentSanitizer{
		policy: bluemonday.StrictPolicy(),
	}
}

// SanitizeText はテキストからすべてのHTMLタグを除去したプレーンテキストを返す。
// bluemondayの出力はHTMLエスケープ済みのため、実体参照を元の文字に戻して
// プレーンテキストとして返す。テンプレート描画時に改めてエスケープされる。
// タグ除去後の前後空白も取り除く。
func (s *contentSanitizer) SanitizeText(raw string) string {
	return strings.TrimSpace(html.UnescapeString(s.policy.Sanitize(raw)))
}
