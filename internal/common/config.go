package common

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/payraan/twelvedata/pkg/logger"
	"gopkg.in/yaml.v3"
)

var (
	globalConfigMu    sync.RWMutex
	configLogsPrinted bool
)

// Initialize package-level logging configuration
func init() {
	logger.GetLogger().ConfigureFromEnv()
}

type Config struct {
	General   GeneralConfig   `yaml:"General"`
	Http      HttpConfig      `yaml:"Http"`
	Upstream  UpstreamConfig  `yaml:"Upstream"`
	Cache     CacheConfig     `yaml:"Cache"`
	RateLimit RateLimitConfig `yaml:"RateLimit"`
	Build     BuildConfig     `yaml:"-"`
}

type BuildConfig struct {
	BuildVersion string `yaml:"-"` // come from build ldflags
	BuildCommit  string `yaml:"-"` // come from build ldflags
	BuildDate    string `yaml:"-"` // come from build ldflags
}

type GeneralConfig struct {
	StorageDir string `yaml:"storageDir"`
	LogLevel   string `yaml:"logLevel"`
}

type HttpConfig struct {
	Port string `yaml:"port"`
}

type UpstreamConfig struct {
	BaseURL        string `yaml:"baseURL"`
	APIKey         string `yaml:"apiKey"`
	TimeoutSeconds int    `yaml:"timeoutSeconds"`
}

type CacheConfig struct {
	Enabled    bool `yaml:"enabled"`
	TTLMinutes int  `yaml:"ttlMinutes"`
}

type RateLimitConfig struct {
	Enabled       bool    `yaml:"enabled"`
	Rate          float64 `yaml:"rate"`
	Burst         int     `yaml:"burst"`
	ExpiryMinutes int     `yaml:"expiryMinutes"`
}

// Default values
var (
	defaultPort        = "8093"
	defaultBaseURL     = "https://api.twelvedata.com"
	defaultTimeout     = 30 // seconds
	defaultLogLevel    = "info"
	defaultCacheTTL    = 60 // minutes
	defaultRate       = 5.0
	defaultBurst      = 20
	defaultExpiry     = 3 // minutes
	defaultStorageDir = "./storage"

	// The upstream key the original deployment shipped with. Used only when
	// neither the config file nor TWELVEDATA_API_KEY provides one.
	fallbackAPIKey = "d363621cb93c4a6eaf755513f0d754e5"
)

// applyDefaultsToConfig applies default values to any fields that have zero values
// Returns true if any defaults were applied
func applyDefaultsToConfig(config *Config) bool {
	defaultsApplied := false

	if config.General.LogLevel == "" {
		config.General.LogLevel = defaultLogLevel
		logger.Debug("Applied default value for General.LogLevel", "value", defaultLogLevel)
		defaultsApplied = true
	}
	if config.General.StorageDir == "" {
		config.General.StorageDir = defaultStorageDir
		logger.Debug("Applied default value for General.StorageDir", "value", defaultStorageDir)
		defaultsApplied = true
	}
	if config.Http.Port == "" {
		config.Http.Port = defaultPort
		logger.Debug("Applied default value for Http.Port", "value", defaultPort)
		defaultsApplied = true
	}
	if config.Upstream.BaseURL == "" {
		config.Upstream.BaseURL = defaultBaseURL
		logger.Debug("Applied default value for Upstream.BaseURL", "value", defaultBaseURL)
		defaultsApplied = true
	}
	if config.Upstream.TimeoutSeconds == 0 {
		config.Upstream.TimeoutSeconds = defaultTimeout
		logger.Debug("Applied default value for Upstream.TimeoutSeconds", "value", defaultTimeout)
		defaultsApplied = true
	}
	if config.Cache.TTLMinutes == 0 {
		config.Cache.TTLMinutes = defaultCacheTTL
		logger.Debug("Applied default value for Cache.TTLMinutes", "value", defaultCacheTTL)
		defaultsApplied = true
	}
	if config.RateLimit.Rate == 0 {
		config.RateLimit.Rate = defaultRate
		logger.Debug("Applied default value for RateLimit.Rate", "value", defaultRate)
		defaultsApplied = true
	}
	if config.RateLimit.Burst == 0 {
		config.RateLimit.Burst = defaultBurst
		logger.Debug("Applied default value for RateLimit.Burst", "value", defaultBurst)
		defaultsApplied = true
	}
	if config.RateLimit.ExpiryMinutes == 0 {
		config.RateLimit.ExpiryMinutes = defaultExpiry
		logger.Debug("Applied default value for RateLimit.ExpiryMinutes", "value", defaultExpiry)
		defaultsApplied = true
	}

	return defaultsApplied
}

// applyEnvOverrides lets the environment win over the config file. PORT and
// TWELVEDATA_API_KEY match the names the original deployment honored.
func applyEnvOverrides(config *Config) {
	if port := os.Getenv("PORT"); port != "" {
		if _, err := strconv.Atoi(port); err != nil {
			logger.Warn("Ignoring non-numeric PORT environment variable", "value", port)
		} else {
			config.Http.Port = port
		}
	}
	if key := os.Getenv("TWELVEDATA_API_KEY"); key != "" {
		config.Upstream.APIKey = key
	}
	if base := os.Getenv("TWELVEDATA_BASE_URL"); base != "" {
		config.Upstream.BaseURL = base
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		config.General.LogLevel = level
	}
	if dir := os.Getenv("STORAGE_DIR"); dir != "" {
		config.General.StorageDir = dir
	}
}

// ConfigFilePath returns the path of the yaml config file, honoring
// CONFIG_FILE when set.
func ConfigFilePath() string {
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		return path
	}
	return "config.yml"
}

// LoadConfig populates the config from the yaml file (when present), the
// environment, and the defaults, in increasing order of precedence for env
// and decreasing for defaults. A missing config file is not an error.
func (config *Config) LoadConfig() (*Config, error) {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()

	path := ConfigFilePath()
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
		if !configLogsPrinted {
			logger.Info("Loaded configuration file", "path", path)
		}
	case os.IsNotExist(err):
		if !configLogsPrinted {
			logger.Debug("No configuration file found, using defaults", "path", path)
		}
	default:
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	applyDefaultsToConfig(config)
	applyEnvOverrides(config)

	if config.Upstream.APIKey == "" {
		config.Upstream.APIKey = fallbackAPIKey
		if !configLogsPrinted {
			logger.Warn("TWELVEDATA_API_KEY not set, using built-in default key")
		}
	}

	logger.GetLogger().SetLogLevel(config.General.LogLevel)
	configLogsPrinted = true

	return config, nil
}

// StoragePath returns a path under the storage directory, creating the
// directory on first use.
func (config *Config) StoragePath(elem ...string) (string, error) {
	dir := config.General.StorageDir
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create storage dir %s: %w", dir, err)
	}
	return filepath.Join(append([]string{dir}, elem...)...), nil
}
