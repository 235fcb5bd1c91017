package models

import (
	"fmt"
	"time"
)

// View names, used as cache keys, metric labels and event names.
const (
	ViewUniverse        = "universe"
	ViewUniverseCountry = "universe-country"
	ViewAnalysis        = "analysis"
	ViewSignals         = "signals"
	ViewScreener        = "screener"
)

// UniverseRow is one ticker of the universe table. HasData is false when the
// snapshot fetch failed or returned nothing usable.
type UniverseRow struct {
	Ticker   string   `json:"ticker"`
	HasData  bool     `json:"has_data"`
	Snapshot Snapshot `json:"snapshot"`
}

// UniverseView is the universe table. Stale is set when the ticker list could
// not be fetched and the last good view is shown instead.
type UniverseView struct {
	Rows        []UniverseRow `json:"rows"`
	Count       int           `json:"count"`
	Failed      int           `json:"failed"`
	Degraded    bool          `json:"degraded"`
	Stale       bool          `json:"stale,omitempty"`
	RefreshedAt time.Time     `json:"refreshed_at"`
}

// Status is the one-line banner shown above the table.
func (v *UniverseView) Status() string {
	switch {
	case v.Stale:
		return fmt.Sprintf("Backend error: showing %d cached tickers", v.Count)
	case v.Degraded && v.Count == 0:
		return "Backend error"
	case v.Degraded:
		return fmt.Sprintf("Backend error: %d of %d tickers failed", v.Failed, v.Count)
	default:
		return fmt.Sprintf("Universe: %d", v.Count)
	}
}

// KPI holds the analysis headline figures. Each field comes from the first
// source that has it: snapshot, then signal, then the last series point.
type KPI struct {
	Recommendation string   `json:"recommendation,omitempty"`
	Quality        string   `json:"quality,omitempty"`
	Confidence     *float64 `json:"confidence,omitempty"`
	PriceNow       *float64 `json:"price_now,omitempty"`
	PricePred      *float64 `json:"price_pred,omitempty"`
	ReturnPct      *float64 `json:"ret_ens_pct,omitempty"`
	MAE            *float64 `json:"mae,omitempty"`
	RMSE           *float64 `json:"rmse,omitempty"`
	MAPE           *float64 `json:"mape,omitempty"`
	DateBase       string   `json:"date_base,omitempty"`
}

// Chart is a freshly built chart. ID changes on every build.
type Chart struct {
	ID        string     `json:"id"`
	Labels    []string   `json:"labels"`
	Predicted []*float64 `json:"predicted"`
	Actual    []*float64 `json:"actual"`
}

// Len returns the number of x-axis points.
func (c Chart) Len() int { return len(c.Labels) }

type AnalysisView struct {
	Ticker      string            `json:"ticker"`
	Tickers     []string          `json:"tickers"`
	KPI         KPI               `json:"kpi"`
	Series      []PredictionPoint `json:"series"`
	Chart       Chart             `json:"chart"`
	Degraded    bool              `json:"degraded"`
	RefreshedAt time.Time         `json:"refreshed_at"`
}

// SignalRow is a signal plus the link that opens its analysis.
type SignalRow struct {
	Signal
	Link string `json:"link"`
}

type SignalsView struct {
	Rows        []SignalRow `json:"rows"`
	Count       int         `json:"count"`
	Degraded    bool        `json:"degraded"`
	Stale       bool        `json:"stale,omitempty"`
	RefreshedAt time.Time   `json:"refreshed_at"`
}

func (v *SignalsView) Status() string {
	switch {
	case v.Stale:
		return fmt.Sprintf("Backend error: showing %d cached signals", v.Count)
	case v.Degraded:
		return "Backend error"
	default:
		return fmt.Sprintf("Signals: %d", v.Count)
	}
}

type ScreenerView struct {
	Report      ScreenerReport `json:"report"`
	Message     string         `json:"message,omitempty"`
	Degraded    bool           `json:"degraded"`
	RefreshedAt time.Time      `json:"refreshed_at"`
}

// CountryRow is a signal for a suffix-filtered ticker with its catalogue name.
type CountryRow struct {
	Signal
	Name string `json:"name,omitempty"`
}

type CountryView struct {
	Suffix      string       `json:"suffix"`
	Rows        []CountryRow `json:"rows"`
	Message     string       `json:"message,omitempty"`
	Degraded    bool         `json:"degraded"`
	RefreshedAt time.Time    `json:"refreshed_at"`
}

// RefreshEvent announces that a view was rebuilt by the background refresher.
type RefreshEvent struct {
	View     string    `json:"view"`
	Count    int       `json:"count"`
	Degraded bool      `json:"degraded"`
	At       time.Time `json:"at"`
}
