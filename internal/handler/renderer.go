// Package handler はHTML画面のHTTPハンドラーとルーティングを提供する。
package handler

import (
	"embed"
	"html/template"
	"log/slog"
	"net/http"
)

//go:embed templates/*.html
var templateFS embed.FS

// Renderer は埋め込みテンプレートを描画する。
// テンプレートは起動時に一度だけパースされ、以降はスレッドセーフに使用できる。
type Renderer struct {
	templates *template.Template
	logger    *slog.Logger
}

// NewRenderer はRendererを生成する。テンプレートのパースに失敗した場合はpanicする
// （埋め込みテンプレートの不整合は起動時に検出するべきバグのため）。
func NewRenderer(logger *slog.Logger) *Renderer {
	return &Renderer{
		templates: template.Must(template.ParseFS(templateFS, "templates/*.html")),
		logger:    logger,
	}
}

// Render は指定テンプレートをステータスコード付きで描画する。
// 描画エラーはヘッダー送信後に発生するためログに記録するのみとする。
func (rd *Renderer) Render(w http.ResponseWriter, status int, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := rd.templates.ExecuteTemplate(w, name, data); err != nil {
		rd.logger.Error("テンプレートの描画に失敗しました",
			slog.String("template", name),
			slog.String("error", err.Error()),
		)
	}
}
