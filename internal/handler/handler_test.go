package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/weddingmatch/internal/gateway"
	"github.com/hitoshi/weddingmatch/internal/metrics"
	"github.com/hitoshi/weddingmatch/internal/middleware"
	"github.com/hitoshi/weddingmatch/internal/model"
	"github.com/hitoshi/weddingmatch/internal/onboarding"
	"github.com/hitoshi/weddingmatch/internal/security"
)

// --- モック ---

type mockMatchService struct {
	getMatchesFn    func(ctx context.Context, criteria model.OnboardingCriteria) ([]model.Deal, error)
	createQuoteFn   func(ctx context.Context, req gateway.CreateQuoteRequest) (json.RawMessage, error)
	getMatchesCalls int
	createQuoteReqs []gateway.CreateQuoteRequest
}

func (m *mockMatchService) GetMatches(ctx context.Context, criteria model.OnboardingCriteria) ([]model.Deal, error) {
	m.getMatchesCalls++
	if m.getMatchesFn != nil {
		return m.getMatchesFn(ctx, criteria)
	}
	return nil, nil
}

func (m *mockMatchService) CreateQuote(ctx context.Context, req gateway.CreateQuoteRequest) (json.RawMessage, error) {
	m.createQuoteReqs = append(m.createQuoteReqs, req)
	if m.createQuoteFn != nil {
		return m.createQuoteFn(ctx, req)
	}
	return json.RawMessage(`{"id":"q-new"}`), nil
}

type mockVendorQuoteService struct {
	listFn    func(ctx context.Context, vendorID, token string) ([]model.Quote, error)
	acceptFn  func(ctx context.Context, token, quoteID string, pricing model.QuotePricing) (*model.Quote, error)
	declineFn func(ctx context.Context, token, quoteID, reason string) (*model.Quote, error)

	listCalls    int
	acceptCalls  int
	declineCalls int

	lastPricing model.QuotePricing
	lastReason  string
	lastQuoteID string
}

func (m *mockVendorQuoteService) ListVendorQuotes(ctx context.Context, vendorID, token string) ([]model.Quote, error) {
	m.listCalls++
	if m.listFn != nil {
		return m.listFn(ctx, vendorID, token)
	}
	return nil, nil
}

func (m *mockVendorQuoteService) AcceptQuote(ctx context.Context, token, quoteID string, pricing model.QuotePricing) (*model.Quote, error) {
	m.acceptCalls++
	m.lastQuoteID = quoteID
	m.lastPricing = pricing
	if m.acceptFn != nil {
		return m.acceptFn(ctx, token, quoteID, pricing)
	}
	return &model.Quote{ID: quoteID, Service: "Flowers", Status: model.QuoteStatusAccepted, Pricing: &pricing}, nil
}

func (m *mockVendorQuoteService) DeclineQuote(ctx context.Context, token, quoteID, reason string) (*model.Quote, error) {
	m.declineCalls++
	m.lastQuoteID = quoteID
	m.lastReason = reason
	if m.declineFn != nil {
		return m.declineFn(ctx, token, quoteID, reason)
	}
	return &model.Quote{ID: quoteID, Service: "Flowers", Status: model.QuoteStatusDeclined}, nil
}

type mockSessionStore struct {
	vendorID string
	token    string
	loginErr error
	logouted bool
}

func (m *mockSessionStore) Current() (string, string, bool) {
	if m.vendorID == "" || m.token == "" {
		return "", "", false
	}
	return m.vendorID, m.token, true
}

func (m *mockSessionStore) Login(ctx context.Context, vendorID, token string) error {
	if m.loginErr != nil {
		return m.loginErr
	}
	m.vendorID = vendorID
	m.token = token
	return nil
}

func (m *mockSessionStore) Logout(ctx context.Context) error {
	m.vendorID = ""
	m.token = ""
	m.logouted = true
	return nil
}

type mockHealthChecker struct {
	err error
}

func (m *mockHealthChecker) PingContext(ctx context.Context) error {
	return m.err
}

// --- テストフィクスチャ ---

type testFixture struct {
	router  http.Handler
	matches *mockMatchService
	vendor  *mockVendorQuoteService
	session *mockSessionStore
	store   *onboarding.Store
	health  *mockHealthChecker
}

func newTestFixture(t *testing.T) *testFixture {
	t.Helper()

	f := &testFixture{
		matches: &mockMatchService{},
		vendor:  &mockVendorQuoteService{},
		session: &mockSessionStore{},
		store:   onboarding.New(),
		health:  &mockHealthChecker{},
	}

	rl := middleware.NewRateLimiter(middleware.DefaultRateLimiterConfig())
	t.Cleanup(rl.Stop)

	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelError}))

	reg := prometheus.NewRegistry()
	collector := metrics.NewCollector(reg)

	f.router = NewRouter(&RouterDeps{
		RateLimiter:        rl,
		Logger:             logger,
		MatchService:       f.matches,
		VendorQuoteService: f.vendor,
		CriteriaStore:      f.store,
		SessionStore:       f.session,
		Sanitizer:          security.NewContentSanitizer(),
		HealthChecker:      f.health,
		Gatherer:           reg,
		PageMetrics:        collector,
	})

	return f
}

var testCriteria = model.OnboardingCriteria{
	Date:   "2026-10-10",
	City:   "Austin, TX",
	Style:  "Boho",
	Budget: "300",
}

func (f *testFixture) get(path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func (f *testFixture) postForm(path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func readBody(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	body, err := io.ReadAll(w.Result().Body)
	if err != nil {
		t.Fatalf("failed to read body: %v", err)
	}
	return string(body)
}

// --- 条件入力のテスト ---

func TestShowIntake_RendersForm(t *testing.T) {
	f := newTestFixture(t)

	w := f.get("/")

	if w.Result().StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Result().StatusCode)
	}
	body := readBody(t, w)
	if !strings.Contains(body, `action="/onboarding"`) {
		t.Error("条件入力フォームが含まれるべき")
	}
}

func TestShowIntake_PrefillsExistingCriteria(t *testing.T) {
	f := newTestFixture(t)
	f.store.Set(testCriteria)

	body := readBody(t, f.get("/"))

	if !strings.Contains(body, `value="Austin, TX"`) {
		t.Error("入力済みの都市がプリフィルされるべき")
	}
}

func TestSubmitCriteria_ValidRedirectsToMatches(t *testing.T) {
	f := newTestFixture(t)

	w := f.postForm("/onboarding", url.Values{
		"date":   {"2026-10-10"},
		"city":   {"Austin, TX"},
		"style":  {"Boho"},
		"budget": {"300"},
	})

	if w.Result().StatusCode != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", w.Result().StatusCode)
	}
	if loc := w.Header().Get("Location"); loc != "/matches" {
		t.Errorf("Location = %q, want /matches", loc)
	}

	stored, ok := f.store.Get()
	if !ok {
		t.Fatal("条件が保存されるべき")
	}
	if stored != testCriteria {
		t.Errorf("stored = %+v, want %+v", stored, testCriteria)
	}
}

func TestSubmitCriteria_MissingFieldRejected(t *testing.T) {
	f := newTestFixture(t)

	w := f.postForm("/onboarding", url.Values{
		"date":   {"2026-10-10"},
		"city":   {""},
		"style":  {"Boho"},
		"budget": {"300"},
	})

	if w.Result().StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Result().StatusCode)
	}
	if _, ok := f.store.Get(); ok {
		t.Error("検証失敗時は条件を保存しないべき")
	}
}

func TestSubmitCriteria_NonNumericBudgetRejected(t *testing.T) {
	f := newTestFixture(t)

	w := f.postForm("/onboarding", url.Values{
		"date":   {"2026-10-10"},
		"city":   {"Austin, TX"},
		"style":  {"Boho"},
		"budget": {"abc"},
	})

	if w.Result().StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Result().StatusCode)
	}
	if _, ok := f.store.Get(); ok {
		t.Error("数値でない予算は拒否されるべき")
	}
}

func TestSubmitCriteria_ZeroBudgetRejected(t *testing.T) {
	f := newTestFixture(t)

	w := f.postForm("/onboarding", url.Values{
		"date":   {"2026-10-10"},
		"city":   {"Austin, TX"},
		"style":  {"Boho"},
		"budget": {"0"},
	})

	if w.Result().StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Result().StatusCode)
	}
}

func TestSubmitCriteria_ReplacesExistingCriteria(t *testing.T) {
	f := newTestFixture(t)
	f.store.Set(testCriteria)

	f.postForm("/onboarding", url.Values{
		"date":   {"2027-05-05"},
		"city":   {"Dallas, TX"},
		"style":  {"Modern"},
		"budget": {"500"},
	})

	stored, _ := f.store.Get()
	if stored.City != "Dallas, TX" || stored.Budget != "500" {
		t.Errorf("条件は丸ごと置き換えられるべき: %+v", stored)
	}
}

// --- マッチ一覧のテスト ---

func TestShowMatches_WithoutCriteriaRedirects(t *testing.T) {
	f := newTestFixture(t)

	w := f.get("/matches")

	if w.Result().StatusCode != http.StatusFound {
		t.Fatalf("status = %d, want 302", w.Result().StatusCode)
	}
	if loc := w.Header().Get("Location"); loc != "/" {
		t.Errorf("Location = %q, want /", loc)
	}
	if f.matches.getMatchesCalls != 0 {
		t.Error("条件未入力時はマッチ取得を呼ばないべき")
	}
}

func TestShowMatches_RendersDealsInServerOrder(t *testing.T) {
	f := newTestFixture(t)
	f.store.Set(testCriteria)
	f.matches.getMatchesFn = func(ctx context.Context, criteria model.OnboardingCriteria) ([]model.Deal, error) {
		if criteria != testCriteria {
			t.Errorf("保存された条件で取得するべき: %+v", criteria)
		}
		return []model.Deal{
			{Service: "Flowers", MatchedCouples: 5, TotalCost: 1200},
			{Service: "DJ", MatchedCouples: 4, TotalCost: 800},
		}, nil
	}

	w := f.get("/matches")

	if w.Result().StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Result().StatusCode)
	}
	body := readBody(t, w)

	// 1200 / 5 = 240ドル/組、節約額 300 - 240 = 60ドル
	if !strings.Contains(body, "$240 per couple") {
		t.Error("1組あたり価格が表示されるべき")
	}
	if !strings.Contains(body, "$60") {
		t.Error("節約見込み額が表示されるべき")
	}

	// サーバーの返却順のまま表示する
	flowersIdx := strings.Index(body, "Flowers")
	djIdx := strings.Index(body, "DJ")
	if flowersIdx < 0 || djIdx < 0 || flowersIdx > djIdx {
		t.Error("ディールはサーバーの返却順で表示されるべき")
	}
}

func TestShowMatches_NoSavingsLineWhenOverBudget(t *testing.T) {
	f := newTestFixture(t)
	f.store.Set(testCriteria)
	f.matches.getMatchesFn = func(ctx context.Context, criteria model.OnboardingCriteria) ([]model.Deal, error) {
		// 1600 / 4 = 400ドル/組で予算300ドルを超える
		return []model.Deal{
			{Service: "Venue", MatchedCouples: 4, TotalCost: 1600},
		}, nil
	}

	body := readBody(t, f.get("/matches"))

	if !strings.Contains(body, "$400 per couple") {
		t.Error("1組あたり価格は表示されるべき")
	}
	if strings.Contains(body, "You save") {
		t.Error("予算超過時は節約額の行を表示しないべき")
	}
}

func TestShowMatches_EmptyDeals(t *testing.T) {
	f := newTestFixture(t)
	f.store.Set(testCriteria)

	w := f.get("/matches")

	if w.Result().StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Result().StatusCode)
	}
	if !strings.Contains(readBody(t, w), "No group deals") {
		t.Error("空状態のメッセージが表示されるべき")
	}
}

func TestShowMatches_SanitizesServiceName(t *testing.T) {
	f := newTestFixture(t)
	f.store.Set(testCriteria)
	f.matches.getMatchesFn = func(ctx context.Context, criteria model.OnboardingCriteria) ([]model.Deal, error) {
		return []model.Deal{
			{Service: `<script>alert(1)</script>Flowers`, MatchedCouples: 5, TotalCost: 1200},
		}, nil
	}

	body := readBody(t, f.get("/matches"))

	if strings.Contains(body, "<script>") {
		t.Error("外部由来のサービス名はサニタイズされるべき")
	}
	if !strings.Contains(body, "Flowers") {
		t.Error("サニタイズ後のテキストは残るべき")
	}
}

func TestShowMatches_UpstreamStatusError(t *testing.T) {
	f := newTestFixture(t)
	f.store.Set(testCriteria)
	f.matches.getMatchesFn = func(ctx context.Context, criteria model.OnboardingCriteria) ([]model.Deal, error) {
		return nil, &gateway.StatusError{StatusCode: http.StatusInternalServerError}
	}

	w := f.get("/matches")

	if w.Result().StatusCode != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", w.Result().StatusCode)
	}
}

func TestShowMatches_UpstreamUnreachable(t *testing.T) {
	f := newTestFixture(t)
	f.store.Set(testCriteria)
	f.matches.getMatchesFn = func(ctx context.Context, criteria model.OnboardingCriteria) ([]model.Deal, error) {
		return nil, errors.New("connection refused")
	}

	w := f.get("/matches")

	if w.Result().StatusCode != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", w.Result().StatusCode)
	}
}

// --- 見積もり依頼のテスト ---

func TestRequestQuote_SendsServiceCostAndCriteria(t *testing.T) {
	f := newTestFixture(t)
	f.store.Set(testCriteria)

	w := f.postForm("/matches/quotes", url.Values{
		"service": {"Flowers"},
		"cost":    {"240"},
	})

	if w.Result().StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Result().StatusCode)
	}

	if len(f.matches.createQuoteReqs) != 1 {
		t.Fatalf("CreateQuote呼び出し回数 = %d, want 1", len(f.matches.createQuoteReqs))
	}
	req := f.matches.createQuoteReqs[0]
	if req.Service != "Flowers" || req.Cost != 240 {
		t.Errorf("req = %+v", req)
	}
	if req.OnboardingData != testCriteria {
		t.Errorf("保存された条件が含まれるべき: %+v", req.OnboardingData)
	}

	// 確認画面を表示し、マッチ一覧の再取得は行わない
	if f.matches.getMatchesCalls != 0 {
		t.Error("見積もり依頼後にマッチ一覧を再取得しないべき")
	}
	if !strings.Contains(readBody(t, w), "Quote requested") {
		t.Error("確認画面が表示されるべき")
	}
}

func TestRequestQuote_DuplicateRequestsAreIndependent(t *testing.T) {
	f := newTestFixture(t)
	f.store.Set(testCriteria)

	form := url.Values{"service": {"Flowers"}, "cost": {"240"}}
	f.postForm("/matches/quotes", form)
	f.postForm("/matches/quotes", form)

	if len(f.matches.createQuoteReqs) != 2 {
		t.Errorf("同一ディールへの複数回依頼は独立して送信されるべき: %d", len(f.matches.createQuoteReqs))
	}
}

func TestRequestQuote_WithoutCriteriaRedirects(t *testing.T) {
	f := newTestFixture(t)

	w := f.postForm("/matches/quotes", url.Values{
		"service": {"Flowers"},
		"cost":    {"240"},
	})

	if w.Result().StatusCode != http.StatusFound {
		t.Errorf("status = %d, want 302", w.Result().StatusCode)
	}
	if len(f.matches.createQuoteReqs) != 0 {
		t.Error("条件未入力時はリクエストを送信しないべき")
	}
}

func TestRequestQuote_InvalidCostRejected(t *testing.T) {
	f := newTestFixture(t)
	f.store.Set(testCriteria)

	for _, cost := range []string{"", "abc", "0", "-10"} {
		w := f.postForm("/matches/quotes", url.Values{
			"service": {"Flowers"},
			"cost":    {cost},
		})
		if w.Result().StatusCode != http.StatusBadRequest {
			t.Errorf("cost=%q: status = %d, want 400", cost, w.Result().StatusCode)
		}
	}
	if len(f.matches.createQuoteReqs) != 0 {
		t.Error("不正なコストではリクエストを送信しないべき")
	}
}

func TestRequestQuote_UpstreamErrorShowsErrorPage(t *testing.T) {
	f := newTestFixture(t)
	f.store.Set(testCriteria)
	f.matches.createQuoteFn = func(ctx context.Context, req gateway.CreateQuoteRequest) (json.RawMessage, error) {
		return nil, &gateway.StatusError{StatusCode: http.StatusServiceUnavailable}
	}

	w := f.postForm("/matches/quotes", url.Values{
		"service": {"Flowers"},
		"cost":    {"240"},
	})

	if w.Result().StatusCode != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", w.Result().StatusCode)
	}
}

// --- 業者ダッシュボードのテスト ---

func TestShowDashboard_LoggedOut(t *testing.T) {
	f := newTestFixture(t)

	body := readBody(t, f.get("/vendor"))

	if !strings.Contains(body, `action="/vendor/login"`) {
		t.Error("未ログイン時はログインフォームが表示されるべき")
	}
}

func TestShowDashboard_LoggedIn(t *testing.T) {
	f := newTestFixture(t)
	f.session.vendorID = "v1"
	f.session.token = "tok1"

	body := readBody(t, f.get("/vendor"))

	if !strings.Contains(body, "v1") {
		t.Error("ログイン中の業者IDが表示されるべき")
	}
	if !strings.Contains(body, `action="/vendor/logout"`) {
		t.Error("ログアウトフォームが表示されるべき")
	}
}

func TestVendorLogin_Success(t *testing.T) {
	f := newTestFixture(t)

	w := f.postForm("/vendor/login", url.Values{
		"vendorId":    {"v1"},
		"vendorToken": {"tok1"},
	})

	if w.Result().StatusCode != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", w.Result().StatusCode)
	}
	if loc := w.Header().Get("Location"); loc != "/vendor/quotes" {
		t.Errorf("Location = %q, want /vendor/quotes", loc)
	}
	if f.session.vendorID != "v1" || f.session.token != "tok1" {
		t.Error("セッションにログイン情報が設定されるべき")
	}
}

func TestVendorLogin_MissingFieldsRejected(t *testing.T) {
	f := newTestFixture(t)

	w := f.postForm("/vendor/login", url.Values{
		"vendorId":    {"v1"},
		"vendorToken": {""},
	})

	if w.Result().StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Result().StatusCode)
	}
	if _, _, ok := f.session.Current(); ok {
		t.Error("不完全な資格情報ではログインしないべき")
	}
}

func TestVendorLogin_PersistErrorShows500(t *testing.T) {
	f := newTestFixture(t)
	f.session.loginErr = errors.New("disk full")

	w := f.postForm("/vendor/login", url.Values{
		"vendorId":    {"v1"},
		"vendorToken": {"tok1"},
	})

	if w.Result().StatusCode != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Result().StatusCode)
	}
}

func TestVendorLogout_RedirectsToDashboard(t *testing.T) {
	f := newTestFixture(t)
	f.session.vendorID = "v1"
	f.session.token = "tok1"

	w := f.postForm("/vendor/logout", url.Values{})

	if w.Result().StatusCode != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", w.Result().StatusCode)
	}
	if !f.session.logouted {
		t.Error("セッションのログアウトが呼ばれるべき")
	}
}

// --- 業者見積もり一覧のテスト ---

func TestListQuotes_UnauthenticatedMakesNoNetworkCalls(t *testing.T) {
	f := newTestFixture(t)

	w := f.get("/vendor/quotes")

	if w.Result().StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Result().StatusCode)
	}
	if f.vendor.listCalls != 0 {
		t.Error("未ログイン時はネットワーク呼び出しを行わないべき")
	}
}

func TestListQuotes_RendersQuotes(t *testing.T) {
	f := newTestFixture(t)
	f.session.vendorID = "v1"
	f.session.token = "tok1"
	f.vendor.listFn = func(ctx context.Context, vendorID, token string) ([]model.Quote, error) {
		if vendorID != "v1" || token != "tok1" {
			t.Errorf("セッションの資格情報で取得するべき: %s/%s", vendorID, token)
		}
		maxBudget := 1500.0
		return []model.Quote{
			{
				ID: "q1", Service: "Flowers", Status: model.QuoteStatusPending,
				Group:   &model.QuoteGroup{Date: "2026-10-10", City: "Austin, TX", Style: "Boho", MatchedCouples: 5, BudgetPerCouple: 300},
				Details: &model.QuoteDetails{Notes: "Outdoor ceremony", MaxTotalBudget: &maxBudget},
			},
			{
				ID: "q2", Service: "DJ", Status: model.QuoteStatusAccepted,
				Pricing: &model.QuotePricing{PerCouple: 150, Total: 600},
			},
		}, nil
	}

	w := f.get("/vendor/quotes")

	if w.Result().StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Result().StatusCode)
	}
	body := readBody(t, w)

	if !strings.Contains(body, "Flowers") || !strings.Contains(body, "DJ") {
		t.Error("全ての見積もりが表示されるべき")
	}
	// pending の見積もりには承諾・辞退フォームが付く
	if !strings.Contains(body, "/vendor/quotes/q1/accept") {
		t.Error("pending見積もりに承諾フォームが付くべき")
	}
	if !strings.Contains(body, "/vendor/quotes/q1/decline") {
		t.Error("pending見積もりに辞退フォームが付くべき")
	}
	// 回答済みの見積もりにはフォームが付かない
	if strings.Contains(body, "/vendor/quotes/q2/accept") {
		t.Error("回答済み見積もりに承諾フォームを付けないべき")
	}
	if !strings.Contains(body, "Outdoor ceremony") {
		t.Error("依頼メモが表示されるべき")
	}
}

func TestListQuotes_UpstreamUnauthorizedShowsErrorPage(t *testing.T) {
	f := newTestFixture(t)
	f.session.vendorID = "v1"
	f.session.token = "expired"
	f.vendor.listFn = func(ctx context.Context, vendorID, token string) ([]model.Quote, error) {
		return nil, &gateway.StatusError{StatusCode: http.StatusUnauthorized}
	}

	w := f.get("/vendor/quotes")

	if w.Result().StatusCode != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", w.Result().StatusCode)
	}
}

// --- 承諾・辞退のテスト ---

func TestAcceptQuote_Unauthenticated(t *testing.T) {
	f := newTestFixture(t)

	w := f.postForm("/vendor/quotes/q1/accept", url.Values{
		"perCouple": {"150"},
		"total":     {"600"},
	})

	if w.Result().StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Result().StatusCode)
	}
	if f.vendor.acceptCalls != 0 {
		t.Error("未ログイン時はネットワーク呼び出しを行わないべき")
	}
}

func TestAcceptQuote_ValidPricing(t *testing.T) {
	f := newTestFixture(t)
	f.session.vendorID = "v1"
	f.session.token = "tok1"

	w := f.postForm("/vendor/quotes/q1/accept", url.Values{
		"perCouple": {"150"},
		"total":     {"600"},
	})

	if w.Result().StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Result().StatusCode)
	}
	if f.vendor.acceptCalls != 1 {
		t.Fatalf("accept呼び出し回数 = %d, want 1", f.vendor.acceptCalls)
	}
	if f.vendor.lastQuoteID != "q1" {
		t.Errorf("quoteID = %q, want q1", f.vendor.lastQuoteID)
	}
	if f.vendor.lastPricing.PerCouple != 150 || f.vendor.lastPricing.Total != 600 {
		t.Errorf("pricing = %+v", f.vendor.lastPricing)
	}
	if !strings.Contains(readBody(t, w), "accepted") {
		t.Error("更新後の状態が表示されるべき")
	}
}

func TestAcceptQuote_InvalidPricingMakesNoNetworkCalls(t *testing.T) {
	f := newTestFixture(t)
	f.session.vendorID = "v1"
	f.session.token = "tok1"

	cases := []url.Values{
		{"perCouple": {""}, "total": {"600"}},
		{"perCouple": {"150"}, "total": {""}},
		{"perCouple": {"abc"}, "total": {"600"}},
		{"perCouple": {"0"}, "total": {"600"}},
		{"perCouple": {"150"}, "total": {"-1"}},
	}

	for _, form := range cases {
		w := f.postForm("/vendor/quotes/q1/accept", form)
		if w.Result().StatusCode != http.StatusBadRequest {
			t.Errorf("form=%v: status = %d, want 400", form, w.Result().StatusCode)
		}
	}

	if f.vendor.acceptCalls != 0 {
		t.Error("検証失敗時はネットワーク呼び出しを行わないべき")
	}
}

func TestAcceptQuote_UpstreamConflictShowsErrorPage(t *testing.T) {
	f := newTestFixture(t)
	f.session.vendorID = "v1"
	f.session.token = "tok1"
	f.vendor.acceptFn = func(ctx context.Context, token, quoteID string, pricing model.QuotePricing) (*model.Quote, error) {
		return nil, &gateway.StatusError{StatusCode: http.StatusConflict, Body: "already declined"}
	}

	w := f.postForm("/vendor/quotes/q1/accept", url.Values{
		"perCouple": {"150"},
		"total":     {"600"},
	})

	if w.Result().StatusCode != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", w.Result().StatusCode)
	}
}

func TestDeclineQuote_Unauthenticated(t *testing.T) {
	f := newTestFixture(t)

	w := f.postForm("/vendor/quotes/q1/decline", url.Values{})

	if w.Result().StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Result().StatusCode)
	}
	if f.vendor.declineCalls != 0 {
		t.Error("未ログイン時はネットワーク呼び出しを行わないべき")
	}
}

func TestDeclineQuote_WithReason(t *testing.T) {
	f := newTestFixture(t)
	f.session.vendorID = "v1"
	f.session.token = "tok1"

	w := f.postForm("/vendor/quotes/q1/decline", url.Values{
		"reason": {"too far"},
	})

	if w.Result().StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Result().StatusCode)
	}
	if f.vendor.lastReason != "too far" {
		t.Errorf("reason = %q, want %q", f.vendor.lastReason, "too far")
	}
	if !strings.Contains(readBody(t, w), "declined") {
		t.Error("更新後の状態が表示されるべき")
	}
}

func TestDeclineQuote_WithoutReason(t *testing.T) {
	f := newTestFixture(t)
	f.session.vendorID = "v1"
	f.session.token = "tok1"

	w := f.postForm("/vendor/quotes/q1/decline", url.Values{})

	if w.Result().StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Result().StatusCode)
	}
	if f.vendor.declineCalls != 1 {
		t.Errorf("decline呼び出し回数 = %d, want 1", f.vendor.declineCalls)
	}
	if f.vendor.lastReason != "" {
		t.Errorf("理由なしの場合は空文字列が渡されるべき: %q", f.vendor.lastReason)
	}
}

// --- ルーティングのテスト ---

func TestRouter_UnknownPathRedirectsToIntake(t *testing.T) {
	f := newTestFixture(t)

	w := f.get("/no/such/page")

	if w.Result().StatusCode != http.StatusFound {
		t.Fatalf("status = %d, want 302", w.Result().StatusCode)
	}
	if loc := w.Header().Get("Location"); loc != "/" {
		t.Errorf("Location = %q, want /", loc)
	}
}

func TestRouter_HealthEndpoint(t *testing.T) {
	f := newTestFixture(t)

	w := f.get("/health")

	if w.Result().StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Result().StatusCode)
	}

	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if resp["status"] != "ok" {
		t.Errorf("status = %q, want ok", resp["status"])
	}
}

func TestRouter_HealthEndpointUnhealthy(t *testing.T) {
	f := newTestFixture(t)
	f.health.err = errors.New("database is locked")

	w := f.get("/health")

	if w.Result().StatusCode != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", w.Result().StatusCode)
	}
}

func TestRouter_MetricsEndpoint(t *testing.T) {
	f := newTestFixture(t)

	// 画面アクセスが1件カウントされた状態で収集する
	f.get("/")

	w := f.get("/metrics")

	if w.Result().StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Result().StatusCode)
	}
	body := w.Body.String()
	if !strings.Contains(body, "weddingmatch_page_requests_total") {
		t.Error("画面リクエストカウンタが公開されるべき")
	}
	if !strings.Contains(body, `path="/"`) {
		t.Error("パス別のラベルが付与されるべき")
	}
}

func TestRouter_SecurityHeadersApplied(t *testing.T) {
	f := newTestFixture(t)

	w := f.get("/")

	if got := w.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q, want nosniff", got)
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Error("X-Request-ID ヘッダーが設定されるべき")
	}
}
