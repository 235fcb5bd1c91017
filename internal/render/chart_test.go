package render

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"PredBoard/internal/domain/models"
)

func fp(f float64) *float64 { return &f }

func TestLineChart_OnePolylinePerSeries(t *testing.T) {
	c := models.Chart{
		ID:        "chart-1",
		Labels:    []string{"2024-01-01", "2024-01-02", "2024-01-03"},
		Predicted: []*float64{fp(1), fp(2), fp(3)},
		Actual:    []*float64{fp(1.5), fp(2.5), fp(2)},
	}
	svg := string(LineChart(c))
	assert.True(t, strings.HasPrefix(svg, `<svg id="chart-1"`))
	assert.Equal(t, 1, strings.Count(svg, `class="predicted"`))
	assert.Equal(t, 1, strings.Count(svg, `class="actual"`))
	assert.Contains(t, svg, "2024-01-03")
}

func TestLineChart_GapsSplitSeries(t *testing.T) {
	c := models.Chart{
		ID:        "chart-2",
		Labels:    []string{"a", "b", "c", "d"},
		Predicted: []*float64{fp(1), nil, fp(3), fp(4)},
		Actual:    []*float64{nil, nil, nil, nil},
	}
	svg := string(LineChart(c))
	assert.Equal(t, 2, strings.Count(svg, `class="predicted"`))
	assert.NotContains(t, svg, `class="actual"`)
}

func TestLineChart_Empty(t *testing.T) {
	svg := string(LineChart(models.Chart{ID: "chart-3"}))
	assert.Contains(t, svg, "No series data")
	assert.NotContains(t, svg, "polyline")

	allNil := models.Chart{ID: "x", Labels: []string{"a"}, Predicted: []*float64{nil}, Actual: []*float64{nil}}
	assert.Contains(t, string(LineChart(allNil)), "No series data")
}

func TestLineChart_FlatSeries(t *testing.T) {
	c := models.Chart{ID: "flat", Labels: []string{"a", "b"}, Predicted: []*float64{fp(5), fp(5)}, Actual: []*float64{nil, nil}}
	svg := string(LineChart(c))
	assert.NotContains(t, svg, "NaN")
	assert.Contains(t, svg, `class="predicted"`)
}

func TestLineChart_EscapesLabels(t *testing.T) {
	c := models.Chart{ID: `"><script>`, Labels: []string{"<b>"}, Predicted: []*float64{fp(1)}, Actual: []*float64{nil}}
	svg := string(LineChart(c))
	assert.NotContains(t, svg, "<script>")
	assert.NotContains(t, svg, "<b>")
}

func TestLineChart_SinglePointSegmentsAreDots(t *testing.T) {
	one := models.Chart{ID: "one", Labels: []string{"a"}, Predicted: []*float64{fp(2)}, Actual: []*float64{nil}}
	svg := string(LineChart(one))
	assert.NotContains(t, svg, "<polyline")
	assert.Contains(t, svg, `<circle class="predicted" cx="360.0"`)

	isolated := models.Chart{
		ID:        "isolated",
		Labels:    []string{"a", "b", "c", "d", "e"},
		Predicted: []*float64{fp(1), fp(2), nil, fp(3), nil},
		Actual:    []*float64{nil, nil, nil, nil, nil},
	}
	svg = string(LineChart(isolated))
	assert.Equal(t, 1, strings.Count(svg, `<polyline class="predicted"`))
	assert.Equal(t, 1, strings.Count(svg, `<circle class="predicted"`))
	assert.Contains(t, svg, `r="3" fill="#2563eb"`)
}
