package handlers

import (
	"net/url"

	"github.com/labstack/echo/v4"
	"github.com/payraan/twelvedata/internal/server"
)

// The reference catalogs change rarely, so all handlers in this file go
// through the response cache.

// SearchSymbol handles GET requests on /symbol_search
func SearchSymbol(c echo.Context, a *server.App) error {
	params := url.Values{}
	if err := requireQueryParam(c, params, "symbol"); err != nil {
		return err
	}
	setQueryParamDefault(c, params, "outputsize", "30")
	setQueryParamDefault(c, params, "format", "JSON")

	return proxyUpstream(c, a, "symbol_search", params, true)
}

// GetExchanges handles GET requests on /exchanges
func GetExchanges(c echo.Context, a *server.App) error {
	params := url.Values{}
	setQueryParamDefault(c, params, "format", "JSON")
	setQueryParamIfPresent(c, params, "type")

	return proxyUpstream(c, a, "exchanges", params, true)
}

// GetStocks handles GET requests on /stocks
func GetStocks(c echo.Context, a *server.App) error {
	params := url.Values{}
	setQueryParamDefault(c, params, "format", "JSON")
	setQueryParamIfPresent(c, params, "symbol", "exchange", "country", "type")

	return proxyUpstream(c, a, "stocks", params, true)
}

// GetForexPairs handles GET requests on /forex_pairs
func GetForexPairs(c echo.Context, a *server.App) error {
	params := url.Values{}
	setQueryParamDefault(c, params, "format", "JSON")
	setQueryParamIfPresent(c, params, "symbol", "currency_base", "currency_quote")

	return proxyUpstream(c, a, "forex_pairs", params, true)
}

// GetCryptocurrencies handles GET requests on /cryptocurrencies
func GetCryptocurrencies(c echo.Context, a *server.App) error {
	params := url.Values{}
	setQueryParamDefault(c, params, "format", "JSON")
	setQueryParamIfPresent(c, params, "symbol", "exchange", "currency_base", "currency_quote")

	return proxyUpstream(c, a, "cryptocurrencies", params, true)
}

// GetETFs handles GET requests on /etf
func GetETFs(c echo.Context, a *server.App) error {
	params := url.Values{}
	setQueryParamDefault(c, params, "format", "JSON")
	setQueryParamIfPresent(c, params, "symbol", "exchange", "country")

	return proxyUpstream(c, a, "etf", params, true)
}
