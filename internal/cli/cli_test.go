package cli

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PredBoard/internal/domain/models"
)

func upstream(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/dashboard/tickers":
			_, _ = w.Write([]byte(`{"tickers":["AAA","BBB"]}`))
		case "/dashboard/latest/AAA":
			_, _ = w.Write([]byte(`{"result":{"prediction":{"price_now":100,"ret_ens_pct":-3.456}}}`))
		case "/dashboard/predictions/summary":
			_, _ = w.Write([]byte(`[{"date_base":"2024-01-01","price_now":99,"price_pred":101}]`))
		case "/signals":
			_, _ = w.Write([]byte(`[{"ticker":"AAA","confidence":0.9,"ret_ens_pct":2.1},{"ticker":"CHILE.SN","confidence":0.4}]`))
		case "/assets":
			_, _ = w.Write([]byte(`[{"ticker":"CHILE.SN","name":"Banco de Chile"}]`))
		case "/dashboard/screener":
			_, _ = w.Write([]byte(`{"candidates":[]}`))
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestUniverseCommand(t *testing.T) {
	srv := upstream(t)
	out, err := execute(t, "universe", "--config", "", "--backend", srv.URL)
	require.NoError(t, err)

	assert.Contains(t, out, "AAA")
	assert.Contains(t, out, "$100.00")
	assert.Contains(t, out, "-3.5%")
	assert.Contains(t, out, "Backend error: 1 of 2 tickers failed")
}

func TestSignalsCommandJSON(t *testing.T) {
	srv := upstream(t)
	out, err := execute(t, "signals", "--config", "", "--backend", srv.URL, "--json")
	require.NoError(t, err)

	var v models.SignalsView
	require.NoError(t, json.Unmarshal([]byte(out), &v))
	require.Len(t, v.Rows, 2)
	assert.Equal(t, "AAA", v.Rows[0].Ticker)
	assert.Equal(t, "/?ticker=AAA", v.Rows[0].Link)
}

func TestCountryCommand(t *testing.T) {
	srv := upstream(t)
	out, err := execute(t, "country", "--config", "", "--backend", srv.URL)
	require.NoError(t, err)
	assert.Contains(t, out, "CHILE.SN")
	assert.Contains(t, out, "Banco de Chile")
	assert.NotContains(t, out, "AAA")

	_, err = execute(t, "country", "--config", "", "--backend", srv.URL, "--suffix", "SN")
	assert.Error(t, err)
}

func TestAnalysisCommand(t *testing.T) {
	srv := upstream(t)
	out, err := execute(t, "analysis", "AAA", "--config", "", "--backend", srv.URL)
	require.NoError(t, err)
	assert.Contains(t, out, "Analysis AAA")
	assert.Contains(t, out, "$101.00")
	assert.Contains(t, out, "AAA: 1 points")

	_, err = execute(t, "analysis", "not a ticker", "--config", "", "--backend", srv.URL)
	assert.Error(t, err)
}

func TestScreenerCommand(t *testing.T) {
	srv := upstream(t)
	out, err := execute(t, "screener", "--config", "", "--backend", srv.URL)
	require.NoError(t, err)
	assert.Contains(t, out, "No candidates (strict filters)")
}

func TestMissingBackendURL(t *testing.T) {
	t.Setenv("PREDBOARD_BACKEND_URL", "")
	_, err := execute(t, "universe", "--config", "")
	assert.Error(t, err)
}

func TestRenderEmptyViews(t *testing.T) {
	out := Universe(&models.UniverseView{Degraded: true})
	assert.Contains(t, out, "Backend error")

	out = Signals(&models.SignalsView{})
	assert.Contains(t, out, "Signals: 0")
}
