package models

// Requests for the dashboard HTTP endpoints.

type ForceRequest struct {
	Force bool `query:"force" json:"force"`
}

type AnalysisRequest struct {
	Ticker string `param:"ticker" json:"ticker" validate:"required,ticker"`
	Force  bool   `query:"force" json:"force"`
}

type SignalsRequest struct {
	Force         bool    `query:"force" json:"force"`
	MinConfidence float64 `query:"min_confidence" json:"min_confidence" validate:"gte=0,lte=100"`
}

type CountryRequest struct {
	Suffix string `query:"suffix" json:"suffix" validate:"omitempty,startswith=.,max=8"`
	Force  bool   `query:"force" json:"force"`
}

type TabRequest struct {
	Name string `param:"name" json:"name" validate:"required"`
}

type NavigateRequest struct {
	Ticker string `param:"ticker" json:"ticker" validate:"required,ticker"`
}

type PageRequest struct {
	Tab    string `query:"tab" json:"tab"`
	Ticker string `query:"ticker" json:"ticker" validate:"omitempty,ticker"`
	Reload bool   `query:"reload" json:"reload"`
}
