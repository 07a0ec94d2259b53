// Package model はドメインモデルを定義する。
package model

import "time"

// QuoteStatus は見積もりリクエストの状態を表す。
type QuoteStatus string

const (
	// QuoteStatusPending は業者の回答待ち状態。
	QuoteStatusPending QuoteStatus = "pending"
	// QuoteStatusAccepted は業者が価格提示付きで承諾した状態。
	QuoteStatusAccepted QuoteStatus = "accepted"
	// QuoteStatusDeclined は業者が辞退した状態。
	QuoteStatusDeclined QuoteStatus = "declined"
)

// QuoteGroup は見積もりの対象となるカップルグループの情報を表す。
type QuoteGroup struct {
	Date            string  `json:"date"`
	City            string  `json:"city"`
	Style           string  `json:"style"`
	MatchedCouples  int     `json:"matchedCouples"`
	BudgetPerCouple float64 `json:"budgetPerCouple"`
}

// QuoteDetails はクライアント（カップル側）からの補足情報を表す。
type QuoteDetails struct {
	Notes          string   `json:"notes"`
	MaxTotalBudget *float64 `json:"maxTotalBudget,omitempty"`
}

// QuotePricing は業者が提示する価格ペアを表す。
// 承諾時に設定されるまではQuoteに含まれない。
type QuotePricing struct {
	PerCouple float64 `json:"perCouple"`
	Total     float64 `json:"total"`
}

// Quote は業者向けの見積もりリクエストを表す。
// 状態遷移（pending→accepted/declined）はサーバー側で行われ、
// クライアントは各アクション後にサーバーが返した表現で差し替える。
type Quote struct {
	ID          string        `json:"id"`
	Service     string        `json:"service"`
	Status      QuoteStatus   `json:"status"`
	Group       *QuoteGroup   `json:"group,omitempty"`
	Details     *QuoteDetails `json:"details,omitempty"`
	Pricing     *QuotePricing `json:"pricing,omitempty"`
	RequestedAt time.Time     `json:"requestedAt"`
}

// IsPending は承諾・辞退アクションが可能な状態かどうかを返す。
func (q *Quote) IsPending() bool {
	return q.Status == QuoteStatusPending
}
