// Package web serves the server-rendered dashboard page.
package web

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"PredBoard/internal/dashboard"
	"PredBoard/internal/domain/models"
	"PredBoard/internal/handler"
	"PredBoard/internal/service/ratelimit"
	xhttp "PredBoard/pkg/http"
	applogger "PredBoard/pkg/logger"
)

// Page is the template data for the dashboard.
type Page struct {
	Tabs           []dashboard.Tab
	Active         dashboard.Tab
	Status         string
	Degraded       bool
	RefreshLimited bool

	Universe *models.UniverseView
	Country  *models.CountryView
	Analysis *models.AnalysisView
	Signals  *models.SignalsView
	Screener *models.ScreenerView
}

type PageHandler struct {
	sessions   *dashboard.Sessions
	guard      *ratelimit.ForceGuard
	sessionTTL time.Duration
	l          *applogger.Logger
}

func NewPageHandler(sessions *dashboard.Sessions, guard *ratelimit.ForceGuard, sessionTTL time.Duration, l *applogger.Logger) *PageHandler {
	return &PageHandler{sessions: sessions, guard: guard, sessionTTL: sessionTTL, l: l}
}

func (h *PageHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/", h.Index)
}

// Index renders the active tab. ?tab= switches, ?ticker= opens the analysis
// for a ticker and ?reload=1 forces a refresh of the active tab.
func (h *PageHandler) Index(c echo.Context) error {
	req := &models.PageRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	ctx := c.Request().Context()

	o, created := handler.Session(c, h.sessions, h.sessionTTL, req.Ticker)
	if req.Tab != "" {
		// Unknown tabs are logged by the orchestrator and ignored.
		_, _ = o.Switch(ctx, req.Tab)
	}
	if req.Ticker != "" && !created {
		o.Navigate(ctx, req.Ticker)
	}

	page := &Page{Tabs: dashboard.Tabs}
	if req.Reload {
		if h.guard == nil || h.guard.Allow(handler.ClientKey(c)) {
			o.Reload(ctx)
		} else {
			page.RefreshLimited = true
		}
	}

	tab, view := o.View(ctx)
	page.Active = tab
	page.fill(view)
	return c.Render(http.StatusOK, "page", page)
}

func (p *Page) fill(view any) {
	switch v := view.(type) {
	case *models.UniverseView:
		p.Universe, p.Status, p.Degraded = v, v.Status(), v.Degraded
	case *models.SignalsView:
		p.Signals, p.Status, p.Degraded = v, v.Status(), v.Degraded
	case *models.CountryView:
		p.Country, p.Degraded = v, v.Degraded
		p.Status = v.Message
		if p.Status == "" {
			p.Status = fmt.Sprintf("%s: %d", v.Suffix, len(v.Rows))
		}
	case *models.ScreenerView:
		p.Screener, p.Degraded = v, v.Degraded
		p.Status = v.Message
		if p.Status == "" {
			p.Status = fmt.Sprintf("Screener: %d candidates", len(v.Report.Candidates))
		}
	case *models.AnalysisView:
		p.Analysis, p.Degraded = v, v.Degraded
		switch {
		case v.Ticker == "":
			p.Status = "No tickers available"
		case v.Degraded:
			p.Status = "Backend error: " + v.Ticker
		default:
			p.Status = "Analysis: " + v.Ticker
		}
	default:
		p.Status = "Backend error"
		p.Degraded = true
	}
}
