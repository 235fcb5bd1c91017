// Package format turns raw backend values into display strings. Every
// function accepts loosely typed input and returns Placeholder when the value
// is missing or not usable.
package format

import (
	"encoding/json"
	"html/template"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	xutil "PredBoard/pkg/util"
)

// Placeholder stands in for any missing or malformed value.
const Placeholder = "—"

// Tone classifies a signed figure for coloring.
type Tone int

const (
	Neutral Tone = iota
	Positive
	Negative
)

// Color returns the CSS color for the tone, empty for Neutral.
func (t Tone) Color() string {
	switch t {
	case Positive:
		return "#16a34a"
	case Negative:
		return "#dc2626"
	}
	return ""
}

// Formatted is a display string plus its tone.
type Formatted struct {
	Text string
	Tone Tone
}

// Number extracts a finite float from v. Pointers, json.Number and numeric
// strings are accepted.
func Number(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case nil:
		return 0, false
	case float64:
		f = n
	case *float64:
		if n == nil {
			return 0, false
		}
		f = *n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case *int:
		if n == nil {
			return 0, false
		}
		f = float64(*n)
	case int64:
		f = float64(n)
	case json.Number:
		var err error
		if f, err = n.Float64(); err != nil {
			return 0, false
		}
	case string:
		var err error
		if f, err = strconv.ParseFloat(strings.TrimSpace(n), 64); err != nil {
			return 0, false
		}
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// rounded rounds half away from zero and renders exactly places decimals.
func rounded(f float64, places int32) string {
	return decimal.NewFromFloat(f).Round(places).StringFixed(places)
}

// Value renders strings as-is, integers without decimals and other numbers
// with two decimals.
func Value(v any) string {
	switch s := v.(type) {
	case int:
		return strconv.Itoa(s)
	case int64:
		return strconv.FormatInt(s, 10)
	case *int:
		if s == nil {
			return Placeholder
		}
		return strconv.Itoa(*s)
	case string:
		if s = strings.TrimSpace(s); s != "" {
			return s
		}
		return Placeholder
	case *string:
		if s == nil {
			return Placeholder
		}
		return Value(*s)
	}
	if f, ok := Number(v); ok {
		return rounded(f, 2)
	}
	return Placeholder
}

// Decimal renders a number with the given places.
func Decimal(v any, places int32) string {
	f, ok := Number(v)
	if !ok {
		return Placeholder
	}
	return rounded(f, places)
}

// Currency renders "$123.46" or "-$1.50".
func Currency(v any) string {
	f, ok := Number(v)
	if !ok {
		return Placeholder
	}
	s := rounded(math.Abs(f), 2)
	if f < 0 && s != "0.00" {
		return "-$" + s
	}
	return "$" + s
}

// Percent renders a signed percentage with two decimals: "+1.23%".
func Percent(v any) string {
	f, ok := Number(v)
	if !ok {
		return Placeholder
	}
	s := rounded(f, 2)
	if !strings.HasPrefix(s, "-") {
		s = "+" + s
	}
	return s + "%"
}

// Return renders a return percentage with one decimal and its tone.
// Zero counts as positive.
func Return(v any) Formatted {
	f, ok := Number(v)
	if !ok {
		return Formatted{Text: Placeholder, Tone: Neutral}
	}
	s := rounded(f, 1)
	tone := Positive
	if strings.HasPrefix(s, "-") {
		tone = Negative
	}
	return Formatted{Text: s + "%", Tone: tone}
}

// ReturnHTML is Return wrapped in a colored span.
func ReturnHTML(v any) template.HTML {
	r := Return(v)
	if r.Tone == Neutral {
		return template.HTML(Placeholder)
	}
	return template.HTML(`<span style="color:` + r.Tone.Color() + `;font-weight:600">` +
		template.HTMLEscapeString(r.Text) + `</span>`)
}

// Date renders a date as 2006-01-02. RFC3339, date-only and unix seconds
// are understood; other strings pass through unchanged.
func Date(v any) string {
	switch t := v.(type) {
	case time.Time:
		if t.IsZero() {
			return Placeholder
		}
		return t.Format(time.DateOnly)
	case *time.Time:
		if t == nil {
			return Placeholder
		}
		return Date(*t)
	case string:
		t = strings.TrimSpace(t)
		if t == "" {
			return Placeholder
		}
		if parsed, ok := xutil.ParseTime(t); ok {
			return parsed.Format(time.DateOnly)
		}
		return t
	}
	if f, ok := Number(v); ok && f > 0 {
		return time.Unix(int64(f), 0).UTC().Format(time.DateOnly)
	}
	return Placeholder
}

// DateTime renders a timestamp as 2006-01-02 15:04 UTC.
func DateTime(t time.Time) string {
	if t.IsZero() {
		return Placeholder
	}
	return t.UTC().Format("2006-01-02 15:04") + " UTC"
}

// Confidence renders a confidence as a percentage. Values in [0,1] are
// fractions; larger values are already percentages.
func Confidence(v any) string {
	f, ok := Number(v)
	if !ok || f < 0 {
		return Placeholder
	}
	if f <= 1 {
		f *= 100
	}
	return rounded(f, 1) + "%"
}

// QualityIcon maps a quality grade to a traffic-light icon. Letter grades,
// words (high/medium/low, alta/media/baja) and 0–1 scores are understood.
func QualityIcon(v any) string {
	if s, ok := v.(string); ok {
		switch strings.ToUpper(strings.TrimSpace(s)) {
		case "":
			return Placeholder
		case "A", "A+", "HIGH", "ALTA", "GOOD", "STRONG":
			return "🟢"
		case "B", "MEDIUM", "MEDIA", "OK", "FAIR":
			return "🟡"
		case "C", "D", "F", "LOW", "BAJA", "POOR", "WEAK":
			return "🔴"
		}
	}
	f, ok := Number(v)
	if !ok {
		if _, isStr := v.(string); isStr {
			return "⚪"
		}
		return Placeholder
	}
	if f > 1 {
		f /= 100
	}
	switch {
	case f >= 0.7:
		return "🟢"
	case f >= 0.4:
		return "🟡"
	default:
		return "🔴"
	}
}

// Quality renders the icon followed by the grade text.
func Quality(v any) string {
	icon := QualityIcon(v)
	text := Value(v)
	if icon == Placeholder || text == Placeholder {
		return Placeholder
	}
	return icon + " " + text
}

// Flag renders a fundamental flag; booleans become yes/no.
func Flag(v any) string {
	switch b := v.(type) {
	case bool:
		if b {
			return "yes"
		}
		return "no"
	case *bool:
		if b == nil {
			return Placeholder
		}
		return Flag(*b)
	}
	return Value(v)
}
