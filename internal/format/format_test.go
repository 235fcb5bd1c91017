package format

import (
	"encoding/json"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func fp(f float64) *float64 { return &f }

func TestReturnHTML(t *testing.T) {
	neg := string(ReturnHTML(-3.456))
	assert.Contains(t, neg, "-3.5%")
	assert.Contains(t, neg, "#dc2626")

	pos := string(ReturnHTML(fp(2.04)))
	assert.Contains(t, pos, "2.0%")
	assert.Contains(t, pos, "#16a34a")

	assert.Equal(t, Placeholder, string(ReturnHTML(nil)))
	assert.Equal(t, Placeholder, string(ReturnHTML((*float64)(nil))))
	assert.Equal(t, Placeholder, string(ReturnHTML("abc")))
}

func TestReturn_ZeroIsPositive(t *testing.T) {
	r := Return(0)
	assert.Equal(t, "0.0%", r.Text)
	assert.Equal(t, Positive, r.Tone)
	assert.Equal(t, Neutral, Return(math.NaN()).Tone)
}

func TestCurrency(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{123.456, "$123.46"},
		{-1.5, "-$1.50"},
		{"42", "$42.00"},
		{json.Number("10.005"), "$10.01"},
		{nil, Placeholder},
		{"n/a", Placeholder},
		{math.Inf(1), Placeholder},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Currency(tt.in), "Currency(%v)", tt.in)
	}
}

func TestPercent(t *testing.T) {
	assert.Equal(t, "+1.23%", Percent(1.234))
	assert.Equal(t, "-0.50%", Percent(-0.5))
	assert.Equal(t, Placeholder, Percent(nil))
}

func TestValueAndDecimal(t *testing.T) {
	assert.Equal(t, "BUY", Value(" BUY "))
	assert.Equal(t, "3.14", Value(3.14159))
	assert.Equal(t, Placeholder, Value(""))
	assert.Equal(t, Placeholder, Value(struct{}{}))
	n := 120
	assert.Equal(t, "120", Value(&n))
	assert.Equal(t, "7", Value(int64(7)))
	assert.Equal(t, Placeholder, Value((*int)(nil)))
	assert.Equal(t, "1.235", Decimal(1.2345, 3))
	assert.Equal(t, Placeholder, Decimal("x", 2))
}

func TestDate(t *testing.T) {
	assert.Equal(t, "2024-03-01", Date("2024-03-01T15:04:05Z"))
	assert.Equal(t, "2024-03-01", Date("2024-03-01"))
	assert.Equal(t, "2024-03-01", Date(time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)))
	assert.Equal(t, "1970-01-02", Date(86400))
	assert.Equal(t, "last week", Date("last week"))
	assert.Equal(t, Placeholder, Date(nil))
	assert.Equal(t, Placeholder, Date(time.Time{}))
}

func TestConfidence(t *testing.T) {
	assert.Equal(t, "85.0%", Confidence(0.85))
	assert.Equal(t, "72.3%", Confidence(72.34))
	assert.Equal(t, "100.0%", Confidence(1))
	assert.Equal(t, Placeholder, Confidence(-1))
	assert.Equal(t, Placeholder, Confidence("high"))
}

func TestQualityIcon(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{"A", "🟢"},
		{"alta", "🟢"},
		{"B", "🟡"},
		{"Medium", "🟡"},
		{"baja", "🔴"},
		{0.9, "🟢"},
		{0.5, "🟡"},
		{0.1, "🔴"},
		{55.0, "🟡"},
		{"unknown", "⚪"},
		{nil, Placeholder},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, QualityIcon(tt.in), "QualityIcon(%v)", tt.in)
	}
	assert.True(t, strings.HasSuffix(Quality("A"), " A"))
	assert.Equal(t, Placeholder, Quality(nil))
}

func TestFlag(t *testing.T) {
	assert.Equal(t, "yes", Flag(true))
	assert.Equal(t, "no", Flag(false))
	assert.Equal(t, "OK", Flag("OK"))
	assert.Equal(t, Placeholder, Flag((*bool)(nil)))
}
