package web

import (
	"embed"
	"html/template"
	"io"
	"strings"

	"github.com/labstack/echo/v4"

	"PredBoard/internal/format"
	"PredBoard/internal/render"
)

//go:embed templates/*.html
var templateFS embed.FS

// Renderer is an echo.Renderer over the embedded page templates.
type Renderer struct {
	t *template.Template
}

func NewRenderer() (*Renderer, error) {
	t, err := template.New("").Funcs(Funcs()).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	return &Renderer{t: t}, nil
}

func (r *Renderer) Render(w io.Writer, name string, data interface{}, _ echo.Context) error {
	return r.t.ExecuteTemplate(w, name, data)
}

// Funcs exposes the formatters to templates.
func Funcs() template.FuncMap {
	return template.FuncMap{
		"value":      format.Value,
		"currency":   format.Currency,
		"percent":    format.Percent,
		"ret":        format.ReturnHTML,
		"date":       format.Date,
		"datetime":   format.DateTime,
		"confidence": format.Confidence,
		"quality":    format.Quality,
		"flag":       format.Flag,
		"decimal":    func(v any) string { return format.Decimal(v, 2) },
		"chart":      render.LineChart,
		"lower":      strings.ToLower,
	}
}
