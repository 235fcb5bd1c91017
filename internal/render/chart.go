// Package render draws the predicted vs actual price chart as inline SVG.
package render

import (
	"fmt"
	"html/template"
	"math"
	"strings"

	"PredBoard/internal/domain/models"
)

const (
	width   = 720
	height  = 260
	padX    = 48
	padY    = 20
	predCol = "#2563eb"
	realCol = "#16a34a"
)

// LineChart renders chart as an SVG element whose id is chart.ID. Gaps in a
// series break its polyline into segments; a segment of one point is drawn as
// a dot. An empty chart renders an empty-state SVG.
func LineChart(chart models.Chart) template.HTML {
	lo, hi, ok := bounds(chart.Predicted, chart.Actual)
	if chart.Len() == 0 || !ok {
		return template.HTML(fmt.Sprintf(
			`<svg id="%s" class="chart" viewBox="0 0 %d %d" role="img"><text x="%d" y="%d" text-anchor="middle" fill="#6b7280">No series data</text></svg>`,
			template.HTMLEscapeString(chart.ID), width, height, width/2, height/2))
	}
	if hi == lo {
		lo, hi = lo-1, hi+1
	}

	n := chart.Len()
	x := func(i int) float64 {
		if n == 1 {
			return float64(width) / 2
		}
		return padX + float64(i)*float64(width-2*padX)/float64(n-1)
	}
	y := func(v float64) float64 {
		return padY + (hi-v)*float64(height-2*padY)/(hi-lo)
	}

	var b strings.Builder
	fmt.Fprintf(&b, `<svg id="%s" class="chart" viewBox="0 0 %d %d" role="img">`,
		template.HTMLEscapeString(chart.ID), width, height)
	fmt.Fprintf(&b, `<line x1="%d" y1="%d" x2="%d" y2="%d" stroke="#e5e7eb"/>`, padX, height-padY, width-padX, height-padY)
	fmt.Fprintf(&b, `<text x="4" y="%.1f" font-size="10" fill="#6b7280">%.2f</text>`, y(hi)+4, hi)
	fmt.Fprintf(&b, `<text x="4" y="%.1f" font-size="10" fill="#6b7280">%.2f</text>`, y(lo)+4, lo)
	fmt.Fprintf(&b, `<text x="%d" y="%d" font-size="10" fill="#6b7280">%s</text>`,
		padX, height-4, template.HTMLEscapeString(chart.Labels[0]))
	fmt.Fprintf(&b, `<text x="%d" y="%d" font-size="10" text-anchor="end" fill="#6b7280">%s</text>`,
		width-padX, height-4, template.HTMLEscapeString(chart.Labels[n-1]))

	polylines(&b, "predicted", predCol, chart.Predicted, x, y)
	polylines(&b, "actual", realCol, chart.Actual, x, y)
	b.WriteString(`</svg>`)
	return template.HTML(b.String())
}

func polylines(b *strings.Builder, class, color string, vals []*float64, x func(int) float64, y func(float64) float64) {
	var pts [][2]float64
	flush := func() {
		switch len(pts) {
		case 0:
		case 1:
			// A lone point has no length as a polyline and would not be drawn.
			fmt.Fprintf(b, `<circle class="%s" cx="%.1f" cy="%.1f" r="3" fill="%s"/>`,
				class, pts[0][0], pts[0][1], color)
		default:
			coords := make([]string, len(pts))
			for i, p := range pts {
				coords[i] = fmt.Sprintf("%.1f,%.1f", p[0], p[1])
			}
			fmt.Fprintf(b, `<polyline class="%s" fill="none" stroke="%s" stroke-width="2" points="%s"/>`,
				class, color, strings.Join(coords, " "))
		}
		pts = pts[:0]
	}
	for i, v := range vals {
		if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
			flush()
			continue
		}
		pts = append(pts, [2]float64{x(i), y(*v)})
	}
	flush()
}

func bounds(series ...[]*float64) (lo, hi float64, ok bool) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, s := range series {
		for _, v := range s {
			if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
				continue
			}
			lo = math.Min(lo, *v)
			hi = math.Max(hi, *v)
			ok = true
		}
	}
	return lo, hi, ok
}
