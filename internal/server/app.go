package server

import (
	"fmt"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/payraan/twelvedata/internal/common"
	"github.com/payraan/twelvedata/internal/twelvedata"
	"github.com/payraan/twelvedata/pkg/kv"
	"github.com/payraan/twelvedata/pkg/store"
)

// App bundles everything the HTTP layer needs: configuration, the upstream
// client, the optional response cache and the rate limiter store.
type App struct {
	Config      common.Config
	TD          *twelvedata.Client
	Cache       *store.Cache
	RateLimiter *kv.RateLimiterStore
	StartTime   time.Time
}

func (a *App) GetUptime() string {
	uptime := time.Since(a.StartTime)
	return uptime.Round(time.Second).String()
}

func (a *App) GetVersionstring() string {
	return a.Config.Build.BuildVersion
}

// CacheEnabled reports whether the response cache is available for use.
func (a *App) CacheEnabled() bool {
	return a.Config.Cache.Enabled && a.Cache != nil
}

// Shutdown releases resources held by the app.
func (a *App) Shutdown() error {
	if a.Cache != nil {
		if err := a.Cache.Close(); err != nil {
			return fmt.Errorf("failed to close response cache: %w", err)
		}
		a.Cache = nil
	}
	if a.RateLimiter != nil {
		if err := a.RateLimiter.Close(); err != nil {
			return fmt.Errorf("failed to close rate limiter store: %w", err)
		}
		a.RateLimiter = nil
	}
	return nil
}
