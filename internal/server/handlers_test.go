package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantfold/stratview/internal/app"
	"github.com/quantfold/stratview/internal/common"
	"github.com/quantfold/stratview/internal/models"
)

// newTestServer builds a server over a default test app; mutate tweaks the
// config before the server is constructed.
func newTestServer(mutate func(*common.Config)) *Server {
	a := app.NewTestApp()
	if mutate != nil {
		mutate(a.Config)
	}
	return NewServer(a)
}

func doRequest(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeView(t *testing.T, rec *httptest.ResponseRecorder) *models.AnalysisView {
	t.Helper()
	var view models.AnalysisView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	return &view
}

func TestHandleAnalysis_AllDefaults(t *testing.T) {
	srv := newTestServer(nil)

	rec := doRequest(srv.Handler(), http.MethodGet, "/api/analysis", "")
	require.Equal(t, http.StatusOK, rec.Code)

	view := decodeView(t, rec)
	assert.Equal(t, "Strategy Implementation", view.Label)
	require.Len(t, view.Allocation.Records, 3)
	assert.Equal(t, "ETH", view.Allocation.Records[0].Label)
	assert.Equal(t, "USDC", view.Allocation.Records[1].Label)
	assert.Equal(t, "LINK", view.Allocation.Records[2].Label)
	assert.Equal(t, "12.0%", view.Metrics.Cards[0].Value)
	assert.Equal(t, "1.40", view.Metrics.Cards[1].Value)
	require.Len(t, view.Growth.Points, 5)
	assert.InDelta(t, 157.35, float64(view.Growth.Points[4].Value), 0.01)
}

func TestHandleAnalysis_TwoAssetScenario(t *testing.T) {
	srv := newTestServer(nil)

	rec := doRequest(srv.Handler(), http.MethodGet,
		`/api/analysis?applied_strategy=%7B%22BTC%22%3A50%2C%22ETH%22%3A50%7D`, "")
	require.Equal(t, http.StatusOK, rec.Code)

	view := decodeView(t, rec)
	require.Len(t, view.Allocation.Breakdown, 2)
	assert.Equal(t, "BTC", view.Allocation.Breakdown[0].Label)
	assert.Equal(t, "50.0%", view.Allocation.Breakdown[0].Percent)
	assert.Equal(t, "50.0%", view.Allocation.Breakdown[1].Percent)
	// Metrics not given: cards show the defaults.
	assert.Equal(t, "12.0%", view.Metrics.Cards[0].Value)
	assert.Equal(t, "1.40", view.Metrics.Cards[1].Value)
}

func TestHandleAnalysis_InvalidPayloadFallsBack(t *testing.T) {
	srv := newTestServer(nil)

	rec := doRequest(srv.Handler(), http.MethodGet, "/api/analysis?applied_strategy=not+json", "")
	require.Equal(t, http.StatusOK, rec.Code)

	view := decodeView(t, rec)
	require.Len(t, view.Allocation.Records, 3)
	assert.Equal(t, "ETH", view.Allocation.Records[0].Label)
	assert.Equal(t, 34.0, float64(view.Allocation.Records[2].Value))
}

func TestHandleAnalysis_PostObjectPayload(t *testing.T) {
	srv := newTestServer(nil)

	body := `{"applied_strategy":{"SOL":100},"expected_return":"7.5","strategy_label":"Solo"}`
	rec := doRequest(srv.Handler(), http.MethodPost, "/api/analysis", body)
	require.Equal(t, http.StatusOK, rec.Code)

	view := decodeView(t, rec)
	assert.Equal(t, "Solo", view.Label)
	require.Len(t, view.Allocation.Breakdown, 1)
	assert.Equal(t, "100.0%", view.Allocation.Breakdown[0].Percent)
	assert.Equal(t, "7.5%", view.Metrics.Cards[0].Value)
	assert.Equal(t, "Assumes 7.5% annual return", view.Growth.Caption)
}

func TestHandleAnalysis_PostMalformedMetricRendersNaN(t *testing.T) {
	srv := newTestServer(nil)

	body := `{"expected_return":"sky high"}`
	rec := doRequest(srv.Handler(), http.MethodPost, "/api/analysis", body)
	require.Equal(t, http.StatusOK, rec.Code)

	view := decodeView(t, rec)
	assert.True(t, view.Metrics.ExpectedReturn.IsNaN())
	assert.Equal(t, "NaN%", view.Metrics.Cards[0].Value)
}

func TestHandleAnalysis_NaNAllocationValueStillRenders(t *testing.T) {
	srv := newTestServer(nil)

	// applied_strategy={"ETH":"NaN"}: the literal string "NaN" parses, so
	// the weight survives coercion as NaN. The response must still carry
	// the full view, not an empty body from a failed encode.
	rec := doRequest(srv.Handler(), http.MethodGet,
		`/api/analysis?applied_strategy=%7B%22ETH%22%3A%22NaN%22%7D`, "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotEmpty(t, rec.Body.Bytes())

	view := decodeView(t, rec)
	require.Len(t, view.Allocation.Records, 1)
	assert.True(t, view.Allocation.Records[0].Value.IsNaN())
	assert.Equal(t, "NaN%", view.Allocation.Breakdown[0].Percent)
}

func TestHandleAnalysis_PostInvalidBody(t *testing.T) {
	srv := newTestServer(nil)

	rec := doRequest(srv.Handler(), http.MethodPost, "/api/analysis", `{{{`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleAnalysis_MethodNotAllowed(t *testing.T) {
	srv := newTestServer(nil)

	rec := doRequest(srv.Handler(), http.MethodDelete, "/api/analysis", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHandleNavigate(t *testing.T) {
	srv := newTestServer(nil)

	rec := doRequest(srv.Handler(), http.MethodPost, "/api/navigate", `{"action":"back"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var intent models.NavigationIntent
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &intent))
	assert.Equal(t, models.BackIntent(), intent)

	rec = doRequest(srv.Handler(), http.MethodPost, "/api/navigate", `{"action":"root"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &intent))
	assert.Equal(t, models.RootIntent(), intent)
}

func TestHandleNavigate_UnknownAction(t *testing.T) {
	srv := newTestServer(nil)

	rec := doRequest(srv.Handler(), http.MethodPost, "/api/navigate", `{"action":"sideways"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleNavigate_NoStateChange(t *testing.T) {
	srv := newTestServer(nil)
	h := srv.Handler()

	before := doRequest(h, http.MethodGet, "/api/analysis", "")
	doRequest(h, http.MethodPost, "/api/navigate", `{"action":"back"}`)
	doRequest(h, http.MethodPost, "/api/navigate", `{"action":"root"}`)
	after := doRequest(h, http.MethodGet, "/api/analysis", "")

	assert.JSONEq(t, before.Body.String(), after.Body.String())
}

func TestChartEndpoints(t *testing.T) {
	srv := newTestServer(nil)
	h := srv.Handler()

	for _, name := range []string{"allocation", "metrics", "growth"} {
		rec := doRequest(h, http.MethodGet, "/api/analysis/chart/"+name, "")
		require.Equal(t, http.StatusOK, rec.Code, "chart %s", name)
		assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
		body := rec.Body.Bytes()
		require.True(t, len(body) > 4)
		assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, body[:4])
	}

	rec := doRequest(h, http.MethodGet, "/api/analysis/chart/waterfall", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestChartAllocation_EmptyAllocation(t *testing.T) {
	srv := newTestServer(nil)

	// applied_strategy={} produces zero records, which the pie render
	// rejects. The failure comes back as a JSON 500, not a broken image.
	rec := doRequest(srv.Handler(), http.MethodGet,
		`/api/analysis/chart/allocation?applied_strategy=%7B%7D`, "")
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "Chart error")
}

func TestChartRateLimit(t *testing.T) {
	srv := newTestServer(func(c *common.Config) {
		c.Server.ChartRateLimit = 1
	})
	h := srv.Handler()

	first := doRequest(h, http.MethodGet, "/api/analysis/chart/growth", "")
	require.Equal(t, http.StatusOK, first.Code)

	second := doRequest(h, http.MethodGet, "/api/analysis/chart/growth", "")
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
}

func TestAuthRequired(t *testing.T) {
	srv := newTestServer(func(c *common.Config) {
		c.Auth.Required = true
		c.Auth.JWTSecret = "test-secret"
	})
	h := srv.Handler()

	// No token: rejected with a bearer challenge.
	rec := doRequest(h, http.MethodGet, "/api/analysis", "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Header().Get("WWW-Authenticate"), "Bearer")

	// Health stays reachable for probes.
	rec = doRequest(h, http.MethodGet, "/api/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	// Signed token: accepted.
	token, err := SignServiceToken("test-client", srv.app.Config)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/analysis", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	recorder := httptest.NewRecorder()
	h.ServeHTTP(recorder, req)
	assert.Equal(t, http.StatusOK, recorder.Code)

	// Garbage token: rejected.
	req = httptest.NewRequest(http.MethodGet, "/api/analysis", nil)
	req.Header.Set("Authorization", "Bearer not.a.token")
	recorder = httptest.NewRecorder()
	h.ServeHTTP(recorder, req)
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}

func TestHandleHealth(t *testing.T) {
	srv := newTestServer(nil)

	rec := doRequest(srv.Handler(), http.MethodGet, "/api/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestHandleConfig(t *testing.T) {
	srv := newTestServer(nil)

	rec := doRequest(srv.Handler(), http.MethodGet, "/api/config", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "development", resp["environment"])
	assert.Equal(t, "$", resp["currency"])
	assert.Equal(t, false, resp["validate_payload"])
}

func TestHandleShutdown_DevMode(t *testing.T) {
	srv := newTestServer(nil)

	ch := make(chan struct{}, 1)
	srv.SetShutdownChannel(ch)

	rec := doRequest(srv.Handler(), http.MethodPost, "/api/shutdown", "")
	require.Equal(t, http.StatusOK, rec.Code)

	select {
	case <-ch:
	case <-time.After(2 * time.Second):
		t.Fatal("shutdown channel was not signaled")
	}
}

func TestHandleShutdown_Production(t *testing.T) {
	srv := newTestServer(func(c *common.Config) {
		c.Environment = "production"
	})

	rec := doRequest(srv.Handler(), http.MethodPost, "/api/shutdown", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestCorrelationIDHeader(t *testing.T) {
	srv := newTestServer(nil)

	rec := doRequest(srv.Handler(), http.MethodGet, "/api/health", "")
	assert.NotEmpty(t, rec.Header().Get("X-Correlation-ID"))

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("X-Request-ID", "abc123")
	recorder := httptest.NewRecorder()
	srv.Handler().ServeHTTP(recorder, req)
	assert.Equal(t, "abc123", recorder.Header().Get("X-Correlation-ID"))
}
