// Package handler holds helpers shared by the page, API and websocket
// handlers.
package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"PredBoard/internal/dashboard"
)

const SessionCookie = "pb_session"

// Session returns the caller's orchestrator, creating and initializing one
// when the cookie is missing or unknown. deepLink is only used for a new
// session. The cookie is (re)issued on every call.
func Session(c echo.Context, s *dashboard.Sessions, ttl time.Duration, deepLink string) (*dashboard.Orchestrator, bool) {
	var id string
	if ck, err := c.Cookie(SessionCookie); err == nil {
		id = ck.Value
	}
	o, sid, created := s.Get(id)
	if created {
		o.Init(c.Request().Context(), deepLink)
	}
	c.SetCookie(&http.Cookie{
		Name:     SessionCookie,
		Value:    sid,
		Path:     "/",
		MaxAge:   int(ttl / time.Second),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	c.Set(SessionCookie, sid)
	return o, created
}

// ClientKey identifies the caller for rate limiting. It is the client IP as
// resolved by the server's IP extractor; the session cookie is caller-chosen
// and never used here.
func ClientKey(c echo.Context) string {
	return c.RealIP()
}
