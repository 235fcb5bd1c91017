package models

import "time"

// Ticker is an equity symbol tracked by the backend, optionally suffixed by exchange (".SN").
type Ticker struct {
	Symbol string `json:"symbol"`
	Name   string `json:"name,omitempty"`
}

// Signal is the backend's recommendation record for one ticker.
type Signal struct {
	Ticker          string   `json:"ticker"`
	Recommendation  string   `json:"recommendation,omitempty"`
	Quality         string   `json:"quality,omitempty"`
	Confidence      *float64 `json:"confidence,omitempty"`
	PriceNow        *float64 `json:"price_now,omitempty"`
	PricePred       *float64 `json:"price_pred,omitempty"`
	ReturnPct       *float64 `json:"ret_ens_pct,omitempty"`
	FundamentalFlag string   `json:"fundamental_flag,omitempty"`
	DateBase        string   `json:"date_base,omitempty"`
}

// Snapshot is the latest prediction payload for one ticker, flattened.
type Snapshot struct {
	Ticker          string   `json:"ticker"`
	Recommendation  string   `json:"recommendation,omitempty"`
	Quality         string   `json:"quality,omitempty"`
	Confidence      *float64 `json:"confidence,omitempty"`
	PriceNow        *float64 `json:"price_now,omitempty"`
	PricePred       *float64 `json:"price_pred,omitempty"`
	ReturnPct       *float64 `json:"ret_ens_pct,omitempty"`
	MAE             *float64 `json:"mae,omitempty"`
	RMSE            *float64 `json:"rmse,omitempty"`
	MAPE            *float64 `json:"mape,omitempty"`
	DateBase        string   `json:"date_base,omitempty"`
	FundamentalFlag string   `json:"fundamental_flag,omitempty"`
}

// Empty reports whether no field beyond the ticker was found.
func (s Snapshot) Empty() bool {
	return s.Recommendation == "" && s.Quality == "" && s.Confidence == nil &&
		s.PriceNow == nil && s.PricePred == nil && s.ReturnPct == nil &&
		s.MAE == nil && s.RMSE == nil && s.MAPE == nil &&
		s.DateBase == "" && s.FundamentalFlag == ""
}

// PredictionPoint is one element of a ticker's prediction series.
type PredictionPoint struct {
	DateBase  string   `json:"date_base"`
	PriceNow  *float64 `json:"price_now,omitempty"`
	PricePred *float64 `json:"price_pred,omitempty"`
}

// Asset is an entry from the backend's asset catalogue.
type Asset struct {
	Ticker   string `json:"ticker"`
	Name     string `json:"name,omitempty"`
	Exchange string `json:"exchange,omitempty"`
	Country  string `json:"country,omitempty"`
	Sector   string `json:"sector,omitempty"`
}

// ScreenerCandidate is one ranked row of the screener report.
type ScreenerCandidate struct {
	Rank            int      `json:"rank"`
	Ticker          string   `json:"ticker"`
	Score           *float64 `json:"score,omitempty"`
	Quality         string   `json:"quality,omitempty"`
	RSIWilder       *float64 `json:"rsi_wilder,omitempty"`
	SharpeRatio     *float64 `json:"sharpe_ratio,omitempty"`
	BetaSPY         *float64 `json:"beta_spy,omitempty"`
	Volatility      *float64 `json:"volatility,omitempty"`
	Trend3mPct      *float64 `json:"trend_3m_pct,omitempty"`
	FundamentalFlag string   `json:"fundamental_flag,omitempty"`
}

// ScreenerReport is the backend's screener output.
type ScreenerReport struct {
	GeneratedAt *time.Time          `json:"generated_at,omitempty"`
	NUniverse   *int                `json:"n_universe,omitempty"`
	IAAvailable *bool               `json:"ia_available,omitempty"`
	Candidates  []ScreenerCandidate `json:"candidates"`
}
