package dashboard

import (
	"context"

	"PredBoard/internal/usecase"
)

// Controller dispatches tab loads to the view usecases.
type Controller struct {
	Universe *usecase.UniverseUseCase
	Country  *usecase.CountryUseCase
	Analysis *usecase.AnalysisUseCase
	Signals  *usecase.SignalsUseCase
	Screener *usecase.ScreenerUseCase
}

func NewController(u *usecase.UniverseUseCase, c *usecase.CountryUseCase, a *usecase.AnalysisUseCase, s *usecase.SignalsUseCase, sc *usecase.ScreenerUseCase) *Controller {
	return &Controller{Universe: u, Country: c, Analysis: a, Signals: s, Screener: sc}
}

func (c *Controller) LoadTab(ctx context.Context, tab Tab, ticker string, force bool) any {
	switch tab {
	case TabUniverse:
		return c.Universe.Load(ctx, force)
	case TabCountry:
		return c.Country.Load(ctx, "", force)
	case TabAnalysis:
		return c.Analysis.Load(ctx, ticker, force)
	case TabSignals:
		return c.Signals.Load(ctx, force)
	case TabScreener:
		return c.Screener.Load(ctx, force)
	}
	return nil
}
