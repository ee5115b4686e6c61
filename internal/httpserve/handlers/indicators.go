package handlers

import (
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/payraan/twelvedata/internal/server"
)

// Upstream indicator names are lowercase identifiers (sma, ema, macd, rsi...),
// so uppercase spellings are normalized rather than rejected.
var indicatorNameRe = regexp.MustCompile(`^[a-z0-9_]+$`)

// GetTechnicalIndicator handles GET requests on /indicators/:indicator and
// proxies to the matching upstream technical_indicators endpoint.
func GetTechnicalIndicator(c echo.Context, a *server.App) error {
	indicator := strings.ToLower(c.Param("indicator"))
	if !indicatorNameRe.MatchString(indicator) {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid indicator name")
	}

	params := url.Values{}
	if err := requireQueryParam(c, params, "symbol"); err != nil {
		return err
	}
	setQueryParamDefault(c, params, "interval", "1day")
	setQueryParamDefault(c, params, "outputsize", "30")
	setQueryParamDefault(c, params, "time_period", "20")
	setQueryParamDefault(c, params, "series_type", "close")
	setQueryParamDefault(c, params, "format", "JSON")

	return proxyUpstream(c, a, "technical_indicators/"+indicator, params, false)
}
