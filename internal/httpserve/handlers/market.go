package handlers

import (
	"net/url"

	"github.com/labstack/echo/v4"
	"github.com/payraan/twelvedata/internal/server"
)

// GetTimeSeries handles GET requests on /time_series. Candle data for a
// symbol at a given interval.
func GetTimeSeries(c echo.Context, a *server.App) error {
	params := url.Values{}
	if err := requireQueryParam(c, params, "symbol"); err != nil {
		return err
	}
	setQueryParamDefault(c, params, "interval", "1day")
	setQueryParamDefault(c, params, "outputsize", "30")
	setQueryParamDefault(c, params, "format", "JSON")
	setQueryParamIfPresent(c, params, "start_date", "end_date", "timezone")

	return proxyUpstream(c, a, "time_series", params, false)
}

// GetPrice handles GET requests on /price. Real-time price for a symbol.
func GetPrice(c echo.Context, a *server.App) error {
	params := url.Values{}
	if err := requireQueryParam(c, params, "symbol"); err != nil {
		return err
	}
	setQueryParamDefault(c, params, "format", "JSON")
	setQueryParamIfPresent(c, params, "exchange")

	return proxyUpstream(c, a, "price", params, false)
}

// GetQuote handles GET requests on /quote. Latest quote for a symbol.
func GetQuote(c echo.Context, a *server.App) error {
	params := url.Values{}
	if err := requireQueryParam(c, params, "symbol"); err != nil {
		return err
	}
	setQueryParamDefault(c, params, "format", "JSON")
	setQueryParamIfPresent(c, params, "interval", "exchange")

	return proxyUpstream(c, a, "quote", params, false)
}
