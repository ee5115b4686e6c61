package httpserve

import (
	"time"

	"github.com/charmbracelet/log"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/payraan/twelvedata/internal/httpserve/handlers"
	"github.com/payraan/twelvedata/internal/httpserve/middleware"
	"github.com/payraan/twelvedata/internal/server"
	"github.com/payraan/twelvedata/pkg/kv"
)

const rateLimiterDBDirname = "ratelimit"

// RegisterRoutes wires middlewares and the gateway endpoints onto e.
func RegisterRoutes(e *echo.Echo, a *server.App) *echo.Echo {
	e.HTTPErrorHandler = errorHandler
	e.Use(echomw.Recover())
	e.Use(middleware.RequestLogger())

	if a.Config.RateLimit.Enabled {
		if store := newRateLimiterStore(a); store != nil {
			// Kept on the app so Shutdown can close it
			a.RateLimiter = store
			e.Use(echomw.RateLimiterWithConfig(echomw.RateLimiterConfig{
				Store: store,
			}))
		}
	}

	e.GET("/", func(c echo.Context) error {
		return handlers.GetHome(c, a)
	})
	e.GET("/time_series", func(c echo.Context) error {
		return handlers.GetTimeSeries(c, a)
	})
	e.GET("/price", func(c echo.Context) error {
		return handlers.GetPrice(c, a)
	})
	e.GET("/quote", func(c echo.Context) error {
		return handlers.GetQuote(c, a)
	})
	e.GET("/symbol_search", func(c echo.Context) error {
		return handlers.SearchSymbol(c, a)
	})
	e.GET("/exchanges", func(c echo.Context) error {
		return handlers.GetExchanges(c, a)
	})
	e.GET("/stocks", func(c echo.Context) error {
		return handlers.GetStocks(c, a)
	})
	e.GET("/forex_pairs", func(c echo.Context) error {
		return handlers.GetForexPairs(c, a)
	})
	e.GET("/cryptocurrencies", func(c echo.Context) error {
		return handlers.GetCryptocurrencies(c, a)
	})
	e.GET("/etf", func(c echo.Context) error {
		return handlers.GetETFs(c, a)
	})
	e.GET("/indicators/:indicator", func(c echo.Context) error {
		return handlers.GetTechnicalIndicator(c, a)
	})

	return e
}

// newRateLimiterStore opens the persistent rate limiter store. A failure is
// logged and rate limiting is skipped, the gateway still serves.
func newRateLimiterStore(a *server.App) *kv.RateLimiterStore {
	path, err := a.Config.StoragePath(rateLimiterDBDirname)
	if err != nil {
		log.Error("Failed to prepare rate limiter storage, rate limiting disabled", "error", err)
		return nil
	}

	store, err := kv.NewRateLimiterStore(
		path,
		a.Config.RateLimit.Rate,
		a.Config.RateLimit.Burst,
		time.Duration(a.Config.RateLimit.ExpiryMinutes)*time.Minute,
	)
	if err != nil {
		log.Error("Failed to open rate limiter store, rate limiting disabled", "error", err)
		return nil
	}
	return store
}
