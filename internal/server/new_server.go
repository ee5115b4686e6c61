package server

import (
	"time"

	"github.com/charmbracelet/log"
	"github.com/payraan/twelvedata/internal/common"
	"github.com/payraan/twelvedata/internal/twelvedata"
	"github.com/payraan/twelvedata/pkg/store"
)

const cacheDBFilename = "cache.db"

func NewServerApp(buildConfig *common.BuildConfig) (*App, error) {
	// Initialize AppConfig
	config := common.Config{
		Build: *buildConfig,
	}

	log.Info("Starting Twelve Data gateway", "version", config.Build.BuildVersion)

	_, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	a := &App{
		Config:    config,
		TD:        twelvedata.NewClient(config.Upstream),
		StartTime: time.Now(),
	}

	if config.Cache.Enabled {
		// The cache is best-effort, a broken cache must not keep the
		// gateway from serving.
		path, err := config.StoragePath(cacheDBFilename)
		if err != nil {
			log.Error("Failed to prepare cache storage, continuing without cache", "error", err)
			return a, nil
		}
		ttl := time.Duration(config.Cache.TTLMinutes) * time.Minute
		cache, err := store.Open(path, ttl)
		if err != nil {
			log.Error("Failed to open response cache, continuing without it", "error", err)
		} else {
			a.Cache = cache
		}
	}

	return a, nil
}
