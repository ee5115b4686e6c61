package handlers

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/labstack/echo/v4"
	"github.com/payraan/twelvedata/internal/server"
	"github.com/payraan/twelvedata/internal/twelvedata"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

func sendJSONResponse(c echo.Context, statusCode int, response interface{}) error {
	err := c.JSON(statusCode, response)
	if err != nil {
		log.Error("Failed to send JSON response",
			"error", err,
			"statusCode", statusCode)
	}
	return err
}

// sendError maps an upstream failure to the gateway's error response. A
// twelvedata.APIError keeps its status, anything else becomes a 500.
func sendError(c echo.Context, err error) error {
	var apiErr *twelvedata.APIError
	if errors.As(err, &apiErr) {
		return sendJSONResponse(c, apiErr.StatusCode, ErrorResponse{Error: apiErr.Message})
	}
	log.Error("Request failed", "path", c.Path(), "error", err)
	return sendJSONResponse(c, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
}

// requireQueryParam reads a mandatory query parameter into params.
func requireQueryParam(c echo.Context, params url.Values, name string) error {
	value := c.QueryParam(name)
	if value == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing required query parameter: "+name)
	}
	params.Set(name, value)
	return nil
}

// setQueryParamIfPresent forwards optional query parameters only when the
// caller supplied them.
func setQueryParamIfPresent(c echo.Context, params url.Values, names ...string) {
	for _, name := range names {
		if value := c.QueryParam(name); value != "" {
			params.Set(name, value)
		}
	}
}

// setQueryParamDefault forwards a parameter, falling back to a default when
// the caller omitted it.
func setQueryParamDefault(c echo.Context, params url.Values, name, fallback string) {
	value := c.QueryParam(name)
	if value == "" {
		value = fallback
	}
	params.Set(name, value)
}

func responseContentType(params url.Values) string {
	if strings.EqualFold(params.Get("format"), "CSV") {
		return "text/csv"
	}
	return "application/json"
}

// proxyUpstream forwards the request to the upstream endpoint and relays the
// body verbatim. When cacheable is set and the response cache is enabled,
// JSON responses are served from and written to the cache.
func proxyUpstream(c echo.Context, a *server.App, endpoint string, params url.Values, cacheable bool) error {
	contentType := responseContentType(params)
	useCache := cacheable && a.CacheEnabled() && contentType == "application/json"
	cacheKey := endpoint + "?" + params.Encode()

	if useCache {
		body, cachedType, ok, err := a.Cache.Get(cacheKey)
		if err != nil {
			log.Debug("Cache lookup failed", "key", cacheKey, "error", err)
		} else if ok {
			log.Debug("Serving cached response", "endpoint", endpoint)
			return c.Blob(http.StatusOK, cachedType, body)
		}
	}

	body, err := a.TD.Fetch(c.Request().Context(), endpoint, params)
	if err != nil {
		return sendError(c, err)
	}

	if useCache {
		if err := a.Cache.Put(cacheKey, body, contentType); err != nil {
			log.Debug("Cache write failed", "key", cacheKey, "error", err)
		}
	}

	return c.Blob(http.StatusOK, contentType, body)
}
