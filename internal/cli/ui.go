// Package cli renders dashboard views as terminal tables.
package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"PredBoard/internal/domain/models"
	"PredBoard/internal/format"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7C3AED")).
			MarginBottom(1)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#3B82F6")).
			Padding(0, 1)

	cellStyle = lipgloss.NewStyle().Padding(0, 1)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6B7280")).
			Padding(0, 1)

	okStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#10B981"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#EF4444")).
			Bold(true)
)

// toneColumn colours one column by the sign of the value it was built from.
type toneColumn struct {
	col   int
	tones []format.Tone
}

func newTable(headers []string, rows [][]string, dim map[int]bool, tc *toneColumn) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("#374151"))).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case dim[row]:
				return dimStyle
			case tc != nil && col == tc.col && row < len(tc.tones):
				if tc.tones[row] == format.Neutral {
					return cellStyle
				}
				return cellStyle.Foreground(lipgloss.Color(tc.tones[row].Color()))
			default:
				return cellStyle
			}
		})
}

func status(degraded bool, line string) string {
	if degraded {
		return errorStyle.Render(line)
	}
	return okStyle.Render(line)
}

func render(title, statusLine string, degraded bool, body string) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n")
	if body != "" {
		b.WriteString(body)
		b.WriteString("\n")
	}
	b.WriteString(status(degraded, statusLine))
	b.WriteString("\n")
	return b.String()
}

// Universe renders the universe table. Rows without data are dimmed.
func Universe(v *models.UniverseView) string {
	rows := make([][]string, 0, len(v.Rows))
	dim := map[int]bool{}
	tones := make([]format.Tone, 0, len(v.Rows))
	for i, r := range v.Rows {
		s := r.Snapshot
		ret := format.Return(s.ReturnPct)
		rows = append(rows, []string{
			r.Ticker,
			format.Value(s.Recommendation),
			format.Currency(s.PriceNow),
			format.Currency(s.PricePred),
			ret.Text,
			format.Confidence(s.Confidence),
			format.Quality(s.Quality),
			format.Date(s.DateBase),
		})
		tones = append(tones, ret.Tone)
		if !r.HasData {
			dim[i] = true
		}
	}
	t := newTable(
		[]string{"Ticker", "Recommendation", "Price", "Predicted", "Return", "Confidence", "Quality", "Date"},
		rows, dim, &toneColumn{col: 4, tones: tones},
	)
	return render("Universe", v.Status(), v.Degraded, tableBody(len(rows), t))
}

func Signals(v *models.SignalsView) string {
	rows := make([][]string, 0, len(v.Rows))
	tones := make([]format.Tone, 0, len(v.Rows))
	for _, r := range v.Rows {
		ret := format.Return(r.ReturnPct)
		rows = append(rows, []string{
			r.Ticker,
			format.Value(r.Recommendation),
			format.Confidence(r.Confidence),
			format.Quality(r.Quality),
			ret.Text,
			format.Flag(r.FundamentalFlag),
		})
		tones = append(tones, ret.Tone)
	}
	t := newTable(
		[]string{"Ticker", "Recommendation", "Confidence", "Quality", "Return", "Fundamentals"},
		rows, nil, &toneColumn{col: 4, tones: tones},
	)
	return render("Signals", v.Status(), v.Degraded, tableBody(len(rows), t))
}

func Country(v *models.CountryView) string {
	rows := make([][]string, 0, len(v.Rows))
	tones := make([]format.Tone, 0, len(v.Rows))
	for _, r := range v.Rows {
		ret := format.Return(r.ReturnPct)
		rows = append(rows, []string{
			r.Ticker,
			format.Value(r.Name),
			format.Value(r.Recommendation),
			format.Currency(r.PriceNow),
			format.Currency(r.PricePred),
			format.Quality(r.Quality),
			ret.Text,
			format.Flag(r.FundamentalFlag),
		})
		tones = append(tones, ret.Tone)
	}
	t := newTable(
		[]string{"Ticker", "Name", "Recommendation", "Price", "Predicted", "Quality", "Return", "Fundamentals"},
		rows, nil, &toneColumn{col: 6, tones: tones},
	)
	line := v.Message
	if line == "" {
		line = fmt.Sprintf("%s: %d", v.Suffix, len(v.Rows))
	}
	return render("Universe "+v.Suffix, line, v.Degraded, tableBody(len(rows), t))
}

func Screener(v *models.ScreenerView) string {
	rep := v.Report
	rows := make([][]string, 0, len(rep.Candidates))
	tones := make([]format.Tone, 0, len(rep.Candidates))
	for _, c := range rep.Candidates {
		trend := format.Return(c.Trend3mPct)
		rows = append(rows, []string{
			strconv.Itoa(c.Rank),
			c.Ticker,
			format.Decimal(c.Score, 2),
			format.Quality(c.Quality),
			format.Decimal(c.RSIWilder, 2),
			format.Decimal(c.SharpeRatio, 2),
			format.Decimal(c.BetaSPY, 2),
			format.Decimal(c.Volatility, 2),
			trend.Text,
			format.Flag(c.FundamentalFlag),
		})
		tones = append(tones, trend.Tone)
	}
	t := newTable(
		[]string{"#", "Ticker", "Score", "Quality", "RSI", "Sharpe", "Beta", "Vol", "Trend 3m", "Fundamentals"},
		rows, nil, &toneColumn{col: 8, tones: tones},
	)
	line := v.Message
	if line == "" {
		line = fmt.Sprintf("Generated %s, universe %s, AI %s",
			format.Date(rep.GeneratedAt), format.Value(rep.NUniverse), format.Flag(rep.IAAvailable))
	}
	return render("Screener", line, v.Degraded, tableBody(len(rows), t))
}

// Analysis renders the KPI block and the prediction series.
func Analysis(v *models.AnalysisView) string {
	k := v.KPI
	ret := format.Return(k.ReturnPct)
	kpi := newTable(
		[]string{"Recommendation", "Price", "Predicted", "Return", "Confidence", "Quality", "MAE", "RMSE", "MAPE", "Date"},
		[][]string{{
			format.Value(k.Recommendation),
			format.Currency(k.PriceNow),
			format.Currency(k.PricePred),
			ret.Text,
			format.Confidence(k.Confidence),
			format.Quality(k.Quality),
			format.Decimal(k.MAE, 2),
			format.Decimal(k.RMSE, 2),
			format.Decimal(k.MAPE, 2),
			format.Date(k.DateBase),
		}},
		nil, &toneColumn{col: 3, tones: []format.Tone{ret.Tone}},
	)

	series := make([][]string, 0, len(v.Series))
	for _, p := range v.Series {
		series = append(series, []string{format.Date(p.DateBase), format.Currency(p.PriceNow), format.Currency(p.PricePred)})
	}
	st := newTable([]string{"Date", "Actual", "Predicted"}, series, nil, nil)

	line := fmt.Sprintf("%s: %d points", v.Ticker, len(v.Series))
	if v.Degraded {
		line = "Backend error"
	}
	body := kpi.String()
	if len(series) > 0 {
		body += "\n" + st.String()
	}
	return render("Analysis "+v.Ticker, line, v.Degraded, body)
}

func tableBody(n int, t *table.Table) string {
	if n == 0 {
		return ""
	}
	return t.String()
}
