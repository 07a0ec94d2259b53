// Package model はドメインモデルを定義する。
package model

import "strconv"

// OnboardingCriteria は新郎新婦がオンボーディングフォームで入力した検索条件を表す。
// 一度設定されたら変更されず、プロセス終了まで保持される（永続化しない）。
// Budgetはフォーム送信時に数値として検証済みだが、外部APIへの送信形式を
// 保つため生の文字列のまま保持する。
type OnboardingCriteria struct {
	Date   string `json:"date"`
	City   string `json:"city"`
	Style  string `json:"style"`
	Budget string `json:"budget"`
}

// BudgetAmount はBudget文字列を数値として返す。
// フォーム送信時に検証済みのため、パース失敗時は0を返す。
func (c OnboardingCriteria) BudgetAmount() float64 {
	v, err := strconv.ParseFloat(c.Budget, 64)
	if err != nil {
		return 0
	}
	return v
}
