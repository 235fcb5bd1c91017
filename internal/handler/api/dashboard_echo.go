package api

import (
	"errors"
	"time"

	"github.com/labstack/echo/v4"

	"PredBoard/internal/dashboard"
	models "PredBoard/internal/domain/models"
	"PredBoard/internal/handler"
	viewmetrics "PredBoard/internal/service/metrics"
	"PredBoard/internal/service/ratelimit"
	xhttp "PredBoard/pkg/http"
	xlogger "PredBoard/pkg/logger"
)

// HeaderRefreshLimited is set when a forced refresh was downgraded to a
// cached read.
const HeaderRefreshLimited = "X-Refresh-Limited"

// DashboardEchoHandler serves the view models as JSON.
type DashboardEchoHandler struct {
	logger     *xlogger.Logger
	ctrl       *dashboard.Controller
	sessions   *dashboard.Sessions
	guard      *ratelimit.ForceGuard
	sessionTTL time.Duration
}

func NewDashboardEchoHandler(logger *xlogger.Logger, ctrl *dashboard.Controller, sessions *dashboard.Sessions, guard *ratelimit.ForceGuard, sessionTTL time.Duration) *DashboardEchoHandler {
	viewmetrics.Register()
	return &DashboardEchoHandler{logger: logger, ctrl: ctrl, sessions: sessions, guard: guard, sessionTTL: sessionTTL}
}

func (h *DashboardEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/universe", h.Universe)
	g.GET("/universe/country", h.Country)
	g.GET("/analysis/:ticker", h.Analysis)
	g.GET("/signals", h.Signals)
	g.GET("/screener", h.Screener)
	g.POST("/tabs/:name", h.SwitchTab)
	g.POST("/navigate/:ticker", h.Navigate)
}

func (h *DashboardEchoHandler) Universe(c echo.Context) error {
	req := &models.ForceRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return h.badRequest(c, models.ViewUniverse, verr)
	}
	return xhttp.SuccessResponse(c, h.ctrl.Universe.Load(c.Request().Context(), h.force(c, req.Force)))
}

func (h *DashboardEchoHandler) Country(c echo.Context) error {
	req := &models.CountryRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return h.badRequest(c, models.ViewUniverseCountry, verr)
	}
	return xhttp.SuccessResponse(c, h.ctrl.Country.Load(c.Request().Context(), req.Suffix, h.force(c, req.Force)))
}

func (h *DashboardEchoHandler) Analysis(c echo.Context) error {
	req := &models.AnalysisRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return h.badRequest(c, models.ViewAnalysis, verr)
	}
	return xhttp.SuccessResponse(c, h.ctrl.Analysis.Load(c.Request().Context(), req.Ticker, h.force(c, req.Force)))
}

func (h *DashboardEchoHandler) Signals(c echo.Context) error {
	req := &models.SignalsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return h.badRequest(c, models.ViewSignals, verr)
	}
	ctx := c.Request().Context()
	force := h.force(c, req.Force)
	if req.MinConfidence > 0 {
		return xhttp.SuccessResponse(c, h.ctrl.Signals.LoadMin(ctx, req.MinConfidence, force))
	}
	return xhttp.SuccessResponse(c, h.ctrl.Signals.Load(ctx, force))
}

func (h *DashboardEchoHandler) Screener(c echo.Context) error {
	req := &models.ForceRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return h.badRequest(c, models.ViewScreener, verr)
	}
	return xhttp.SuccessResponse(c, h.ctrl.Screener.Load(c.Request().Context(), h.force(c, req.Force)))
}

type tabResponse struct {
	Tab     dashboard.Tab `json:"tab"`
	Ticker  string        `json:"ticker,omitempty"`
	Changed bool          `json:"changed"`
}

// SwitchTab changes the caller's active tab.
func (h *DashboardEchoHandler) SwitchTab(c echo.Context) error {
	req := &models.TabRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	o, _ := handler.Session(c, h.sessions, h.sessionTTL, "")
	changed, err := o.Switch(c.Request().Context(), req.Name)
	if err != nil {
		if errors.Is(err, dashboard.ErrUnknownTab) {
			return xhttp.AppErrorResponse(c, xhttp.BadRequestErrorf("unknown tab %q", req.Name).WithParam("tab", req.Name))
		}
		h.logger.Error("switch tab failed", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, tabResponse{Tab: o.Active(), Ticker: o.Ticker(), Changed: changed})
}

// Navigate opens the analysis tab on a ticker for the caller's session.
func (h *DashboardEchoHandler) Navigate(c echo.Context) error {
	req := &models.NavigateRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	o, _ := handler.Session(c, h.sessions, h.sessionTTL, "")
	o.Navigate(c.Request().Context(), req.Ticker)
	return xhttp.SuccessResponse(c, tabResponse{Tab: o.Active(), Ticker: o.Ticker(), Changed: true})
}

// force reports whether a requested forced refresh may go through. A denied
// request is served from cache and flagged with a header.
func (h *DashboardEchoHandler) force(c echo.Context, requested bool) bool {
	if !requested {
		return false
	}
	if h.guard == nil || h.guard.Allow(handler.ClientKey(c)) {
		return true
	}
	c.Response().Header().Set(HeaderRefreshLimited, "1")
	h.logger.Debug("forced refresh rate limited", xlogger.String("client", handler.ClientKey(c)))
	return false
}

func (h *DashboardEchoHandler) badRequest(c echo.Context, view string, verr interface{}) error {
	viewmetrics.ViewErrors.WithLabelValues(view).Inc()
	return xhttp.BadRequestResponse(c, verr)
}
