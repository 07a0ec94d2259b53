// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector はマーケットプレイスAPI呼び出しのメトリクスを収集する。
// gateway.MetricsRecorderを実装する。
type Collector struct {
	upstreamSuccess *prometheus.CounterVec
	upstreamFail    *prometheus.CounterVec
	upstreamStatus  *prometheus.CounterVec
	upstreamLatency *prometheus.HistogramVec
	pageRequests    *prometheus.CounterVec
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		upstreamSuccess: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "weddingmatch_upstream_success_total",
			Help: "マーケットプレイスAPI呼び出し成功の合計数（操作別）",
		}, []string{"operation"}),
		upstreamFail: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "weddingmatch_upstream_fail_total",
			Help: "マーケットプレイスAPI呼び出し失敗の合計数（操作・原因別）",
		}, []string{"operation", "reason"}),
		upstreamStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "weddingmatch_upstream_status_total",
			Help: "マーケットプレイスAPIのHTTPステータスコード別レスポンス数",
		}, []string{"status_code"}),
		upstreamLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "weddingmatch_upstream_latency_seconds",
			Help:    "マーケットプレイスAPI呼び出しのレイテンシ（秒、操作別）",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
		pageRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "weddingmatch_page_requests_total",
			Help: "画面リクエストの合計数（パス・ステータスコード別）",
		}, []string{"path", "status_code"}),
	}

	reg.MustRegister(
		c.upstreamSuccess,
		c.upstreamFail,
		c.upstreamStatus,
		c.upstreamLatency,
		c.pageRequests,
	)

	return c
}

// RecordUpstreamSuccess はAPI呼び出し成功を記録する。
func (c *Collector) RecordUpstreamSuccess(operation string) {
	c.upstreamSuccess.WithLabelValues(operation).Inc()
}

// RecordUpstreamFailure はAPI呼び出し失敗を記録する。
// reasonにはtransport、status、readのいずれかを指定する。
func (c *Collector) RecordUpstreamFailure(operation, reason string) {
	c.upstreamFail.WithLabelValues(operation, reason).Inc()
}

// RecordUpstreamStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordUpstreamStatus(statusCode int) {
	c.upstreamStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordUpstreamLatency はAPI呼び出しのレイテンシを記録する。
func (c *Collector) RecordUpstreamLatency(operation string, duration time.Duration) {
	c.upstreamLatency.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordPageRequest は画面リクエストをパスとステータスコード別に記録する。
func (c *Collector) RecordPageRequest(path string, statusCode int) {
	c.pageRequests.WithLabelValues(path, strconv.Itoa(statusCode)).Inc()
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
