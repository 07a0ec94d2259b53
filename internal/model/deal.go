// Package model はドメインモデルを定義する。
package model

import "math"

// Deal はサーバーが算出したグループ割引オファーを表す。
// 表示順を含めサーバーが権威を持つ読み取り専用データ。
type Deal struct {
	Service        string  `json:"service"`
	MatchedCouples int     `json:"matchedCouples"`
	TotalCost      float64 `json:"totalCost"`
}

// PerCouple は1組あたりの価格を通貨単位に丸めて返す。
// MatchedCouplesが0以下の場合は0を返す（サーバー契約上は正の整数）。
func (d Deal) PerCouple() int {
	if d.MatchedCouples <= 0 {
		return 0
	}
	return int(math.Round(d.TotalCost / float64(d.MatchedCouples)))
}

// EstimatedSavings は予算と1組あたり価格の差額を返す。
// 差額が負の場合は0を返す（節約額として負の値は表示しない）。
func (d Deal) EstimatedSavings(budget float64) float64 {
	saved := budget - float64(d.PerCouple())
	if saved < 0 {
		return 0
	}
	return saved
}
