package httpserve

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/payraan/twelvedata/internal/common"
	"github.com/payraan/twelvedata/internal/server"
	"github.com/payraan/twelvedata/internal/twelvedata"
	"github.com/payraan/twelvedata/pkg/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// upstreamStub records requests and replies with a canned JSON body.
type upstreamStub struct {
	server   *httptest.Server
	requests []*url.URL
	status   int
	body     string
}

func newUpstreamStub(t *testing.T) *upstreamStub {
	t.Helper()
	stub := &upstreamStub{status: http.StatusOK, body: `{"status":"ok"}`}
	stub.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u := *r.URL
		stub.requests = append(stub.requests, &u)
		w.WriteHeader(stub.status)
		w.Write([]byte(stub.body))
	}))
	t.Cleanup(stub.server.Close)
	return stub
}

func (s *upstreamStub) lastRequest(t *testing.T) *url.URL {
	t.Helper()
	require.NotEmpty(t, s.requests, "expected at least one upstream request")
	return s.requests[len(s.requests)-1]
}

func newTestApp(t *testing.T, stub *upstreamStub) *server.App {
	t.Helper()
	cfg := common.Config{
		Http: common.HttpConfig{Port: "8093"},
		Upstream: common.UpstreamConfig{
			BaseURL:        stub.server.URL,
			APIKey:         "test-key",
			TimeoutSeconds: 5,
		},
		Build: common.BuildConfig{BuildVersion: "test"},
	}
	return &server.App{
		Config:    cfg,
		TD:        twelvedata.NewClient(cfg.Upstream),
		StartTime: time.Now(),
	}
}

func newTestRouter(t *testing.T, a *server.App) *echo.Echo {
	t.Helper()
	e := echo.New()
	e.HideBanner = true
	return RegisterRoutes(e, a)
}

func doRequest(e *echo.Echo, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestHomeEndpoint(t *testing.T) {
	stub := newUpstreamStub(t)
	e := newTestRouter(t, newTestApp(t, stub))

	rec := doRequest(e, "/")

	assert.Equal(t, http.StatusOK, rec.Code)

	var info map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &info))
	assert.Contains(t, info["message"], "running")
	assert.Equal(t, "test", info["version"])
	assert.Empty(t, stub.requests, "home endpoint must not hit upstream")
}

func TestPriceEndpoint_PassesThrough(t *testing.T) {
	stub := newUpstreamStub(t)
	stub.body = `{"price":"187.68"}`
	e := newTestRouter(t, newTestApp(t, stub))

	rec := doRequest(e, "/price?symbol=AAPL")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"price":"187.68"}`, rec.Body.String())

	last := stub.lastRequest(t)
	assert.Equal(t, "/price", last.Path)
	query := last.Query()
	assert.Equal(t, "AAPL", query.Get("symbol"))
	assert.Equal(t, "test-key", query.Get("apikey"))
	assert.Equal(t, "JSON", query.Get("format"))
}

func TestPriceEndpoint_MissingSymbol(t *testing.T) {
	stub := newUpstreamStub(t)
	e := newTestRouter(t, newTestApp(t, stub))

	rec := doRequest(e, "/price")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, stub.requests, "invalid requests must not reach upstream")

	// Validation failures use the same envelope as upstream failures
	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp["error"], "symbol")
}

func TestTimeSeriesEndpoint_Defaults(t *testing.T) {
	stub := newUpstreamStub(t)
	e := newTestRouter(t, newTestApp(t, stub))

	rec := doRequest(e, "/time_series?symbol=EUR/USD")

	assert.Equal(t, http.StatusOK, rec.Code)

	query := stub.lastRequest(t).Query()
	assert.Equal(t, "EUR/USD", query.Get("symbol"))
	assert.Equal(t, "1day", query.Get("interval"))
	assert.Equal(t, "30", query.Get("outputsize"))
	assert.Empty(t, query.Get("start_date"), "omitted optional params are not forwarded")
}

func TestTimeSeriesEndpoint_OptionalParamsForwarded(t *testing.T) {
	stub := newUpstreamStub(t)
	e := newTestRouter(t, newTestApp(t, stub))

	doRequest(e, "/time_series?symbol=AAPL&start_date=2024-01-01&timezone=America/New_York&interval=1h")

	query := stub.lastRequest(t).Query()
	assert.Equal(t, "2024-01-01", query.Get("start_date"))
	assert.Equal(t, "America/New_York", query.Get("timezone"))
	assert.Equal(t, "1h", query.Get("interval"))
}

func TestIndicatorEndpoint(t *testing.T) {
	stub := newUpstreamStub(t)
	e := newTestRouter(t, newTestApp(t, stub))

	rec := doRequest(e, "/indicators/rsi?symbol=BTC/USD")

	assert.Equal(t, http.StatusOK, rec.Code)

	last := stub.lastRequest(t)
	assert.Equal(t, "/technical_indicators/rsi", last.Path)
	query := last.Query()
	assert.Equal(t, "20", query.Get("time_period"))
	assert.Equal(t, "close", query.Get("series_type"))
}

func TestIndicatorEndpoint_UppercaseNormalized(t *testing.T) {
	stub := newUpstreamStub(t)
	e := newTestRouter(t, newTestApp(t, stub))

	rec := doRequest(e, "/indicators/RSI?symbol=AAPL")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "/technical_indicators/rsi", stub.lastRequest(t).Path)
}

func TestIndicatorEndpoint_InvalidName(t *testing.T) {
	stub := newUpstreamStub(t)
	e := newTestRouter(t, newTestApp(t, stub))

	rec := doRequest(e, "/indicators/foo-bar?symbol=AAPL")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, stub.requests)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp["error"], "indicator")
}

func TestUpstreamErrorsAreRelayed(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		wantStatus int
	}{
		{"unauthorized", http.StatusUnauthorized, http.StatusUnauthorized},
		{"rate limited", http.StatusTooManyRequests, http.StatusTooManyRequests},
		{"bad request", http.StatusBadRequest, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := newUpstreamStub(t)
			stub.status = tt.status
			e := newTestRouter(t, newTestApp(t, stub))

			rec := doRequest(e, "/quote?symbol=AAPL")

			assert.Equal(t, tt.wantStatus, rec.Code)

			var resp map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.NotEmpty(t, resp["error"])
		})
	}
}

func TestReferenceEndpoints_Registered(t *testing.T) {
	paths := []string{
		"/exchanges",
		"/stocks",
		"/forex_pairs",
		"/cryptocurrencies",
		"/etf",
	}

	for _, path := range paths {
		t.Run(path, func(t *testing.T) {
			stub := newUpstreamStub(t)
			e := newTestRouter(t, newTestApp(t, stub))

			rec := doRequest(e, path)

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, path, stub.lastRequest(t).Path)
		})
	}
}

func TestSymbolSearch_RequiresSymbol(t *testing.T) {
	stub := newUpstreamStub(t)
	e := newTestRouter(t, newTestApp(t, stub))

	rec := doRequest(e, "/symbol_search")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(e, "/symbol_search?symbol=apple")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "30", stub.lastRequest(t).Query().Get("outputsize"))
}

func TestReferenceEndpoints_Cached(t *testing.T) {
	stub := newUpstreamStub(t)
	a := newTestApp(t, stub)

	cache, err := store.Open(filepath.Join(t.TempDir(), "cache.db"), time.Minute)
	require.NoError(t, err)
	t.Cleanup(func() { cache.Close() })

	a.Config.Cache.Enabled = true
	a.Cache = cache

	e := newTestRouter(t, a)

	rec := doRequest(e, "/exchanges?type=stock")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(e, "/exchanges?type=stock")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	assert.Len(t, stub.requests, 1, "second request must be served from cache")
}

func TestRateLimiterStore_KeptOnAppAndClosedOnShutdown(t *testing.T) {
	stub := newUpstreamStub(t)
	a := newTestApp(t, stub)
	a.Config.General.StorageDir = t.TempDir()
	a.Config.RateLimit = common.RateLimitConfig{
		Enabled:       true,
		Rate:          5,
		Burst:         20,
		ExpiryMinutes: 1,
	}

	newTestRouter(t, a)

	require.NotNil(t, a.RateLimiter, "the rate limiter store must stay reachable for shutdown")

	require.NoError(t, a.Shutdown())
	assert.Nil(t, a.RateLimiter)
}

func TestQuoteEndpoint_NeverCached(t *testing.T) {
	stub := newUpstreamStub(t)
	a := newTestApp(t, stub)

	cache, err := store.Open(filepath.Join(t.TempDir(), "cache.db"), time.Minute)
	require.NoError(t, err)
	t.Cleanup(func() { cache.Close() })

	a.Config.Cache.Enabled = true
	a.Cache = cache

	e := newTestRouter(t, a)

	doRequest(e, "/quote?symbol=AAPL")
	doRequest(e, "/quote?symbol=AAPL")

	assert.Len(t, stub.requests, 2, "quote responses must not be cached")
}
