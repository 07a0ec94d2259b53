package handler

import (
	"strconv"

	"github.com/hitoshi/weddingmatch/internal/model"
	"github.com/hitoshi/weddingmatch/internal/security"
)

// dealView はマッチ一覧画面のディール1件分の表示データ。
type dealView struct {
	Service        string
	MatchedCouples int
	TotalCost      string
	PerCouple      int
	Savings        string
	HasSavings     bool
}

// matchesView はマッチ一覧画面の表示データ。
type matchesView struct {
	Criteria model.OnboardingCriteria
	Deals    []dealView
}

// intakeView は条件入力画面の表示データ。
type intakeView struct {
	Criteria model.OnboardingCriteria
	Error    string
}

// quoteAckView は見積もり依頼完了画面の表示データ。
type quoteAckView struct {
	Service string
}

// vendorView はベンダーダッシュボード画面の表示データ。
type vendorView struct {
	LoggedIn bool
	VendorID string
	Error    string
}

// quoteView はベンダー見積もり一覧のQuote1件分の表示データ。
type quoteView struct {
	ID          string
	Service     string
	Status      string
	IsPending   bool
	City        string
	Style       string
	Date        string
	Couples     int
	BudgetPer   string
	Notes       string
	MaxBudget   string
	PerCouple   string
	Total       string
	RequestedAt string
}

// vendorQuotesView はベンダー見積もり一覧画面の表示データ。
type vendorQuotesView struct {
	VendorID string
	Quotes   []quoteView
	Error    string
}

// actionResultView は承諾・辞退完了画面の表示データ。
type actionResultView struct {
	Service string
	Status  string
}

// errorView はエラー画面の表示データ。
type errorView struct {
	Message string
	Action  string
}

// formatMoney は金額を余分なゼロなしの十進文字列にする。
func formatMoney(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// toDealView はDealを表示データに変換する。外部由来のテキストはサニタイズする。
func toDealView(d model.Deal, budget float64, sanitizer security.ContentSanitizerService) dealView {
	savings := d.EstimatedSavings(budget)
	return dealView{
		Service:        sanitizer.SanitizeText(d.Service),
		MatchedCouples: d.MatchedCouples,
		TotalCost:      formatMoney(d.TotalCost),
		PerCouple:      d.PerCouple(),
		Savings:        formatMoney(savings),
		HasSavings:     savings > 0,
	}
}

// toQuoteView はQuoteを表示データに変換する。外部由来のテキストはサニタイズする。
func toQuoteView(q model.Quote, sanitizer security.ContentSanitizerService) quoteView {
	v := quoteView{
		ID:        q.ID,
		Service:   sanitizer.SanitizeText(q.Service),
		Status:    string(q.Status),
		IsPending: q.IsPending(),
	}

	if !q.RequestedAt.IsZero() {
		v.RequestedAt = q.RequestedAt.Format("2006-01-02 15:04")
	}

	if q.Group != nil {
		v.City = sanitizer.SanitizeText(q.Group.City)
		v.Style = sanitizer.SanitizeText(q.Group.Style)
		v.Date = q.Group.Date
		v.Couples = q.Group.MatchedCouples
		v.BudgetPer = formatMoney(q.Group.BudgetPerCouple)
	}

	if q.Details != nil {
		v.Notes = sanitizer.SanitizeText(q.Details.Notes)
		if q.Details.MaxTotalBudget != nil {
			v.MaxBudget = formatMoney(*q.Details.MaxTotalBudget)
		}
	}

	if q.Pricing != nil {
		v.PerCouple = formatMoney(q.Pricing.PerCouple)
		v.Total = formatMoney(q.Pricing.Total)
	}

	return v
}
