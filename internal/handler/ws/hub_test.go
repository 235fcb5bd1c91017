package ws

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PredBoard/internal/domain/models"
	applogger "PredBoard/pkg/logger"
)

func startHub(t *testing.T) (*Hub, string) {
	t.Helper()
	h := NewHub(applogger.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	go h.Run(ctx)
	t.Cleanup(cancel)

	e := echo.New()
	h.RegisterRoutes(e)
	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)
	return h, "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
}

func TestHub_BroadcastsRefreshEvents(t *testing.T) {
	h, url := startHub(t)

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return h.Clients() == 1 }, time.Second, 10*time.Millisecond)

	at := time.Date(2024, 6, 3, 9, 35, 0, 0, time.UTC)
	require.NoError(t, h.PublishRefresh(context.Background(), models.RefreshEvent{View: "universe", Count: 12, At: at}))

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)

	var ev models.RefreshEvent
	require.NoError(t, json.Unmarshal(msg, &ev))
	assert.Equal(t, "universe", ev.View)
	assert.Equal(t, 12, ev.Count)
	assert.True(t, at.Equal(ev.At))
}

func TestHub_UnregistersOnDisconnect(t *testing.T) {
	h, url := startHub(t)

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	require.Eventually(t, func() bool { return h.Clients() == 1 }, time.Second, 10*time.Millisecond)

	_ = conn.Close()
	assert.Eventually(t, func() bool { return h.Clients() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestHub_PublishAfterClose(t *testing.T) {
	h := NewHub(applogger.Nop())
	require.NoError(t, h.Close())
	require.NoError(t, h.Close())

	// Fill the buffer so the send cannot succeed.
	for i := 0; i < cap(h.broadcast); i++ {
		h.broadcast <- nil
	}
	err := h.PublishRefresh(context.Background(), models.RefreshEvent{View: "signals"})
	assert.ErrorIs(t, err, ErrHubClosed)
	assert.Equal(t, 0, h.Clients())
}
