package middleware

import "net/http"

// PageMetricsRecorder は画面リクエストのメトリクス記録インターフェース。
type PageMetricsRecorder interface {
	RecordPageRequest(path string, statusCode int)
}

// NewPageMetricsMiddleware は画面リクエストをパス・ステータス別に
// カウントするミドルウェアを返す。
func NewPageMetricsMiddleware(recorder PageMetricsRecorder) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rec := &statusRecorder{
				ResponseWriter: w,
				statusCode:     http.StatusOK,
			}

			next.ServeHTTP(rec, r)

			recorder.RecordPageRequest(r.URL.Path, rec.statusCode)
		})
	}
}
