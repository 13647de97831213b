package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultEnvFile        = ".env"
	defaultPort           = "8080"
	defaultReadTimeout    = 15 * time.Second
	defaultWriteTimeout   = 15 * time.Second
	defaultIdleTimeout    = 60 * time.Second
	defaultEnvironment    = "production"
	defaultLogLevel       = "info"
	defaultCatalogTimeout = 8 * time.Second
	defaultLookupLimit    = 100
	defaultLookupTTL      = 5 * time.Minute
	defaultSiteName       = "Figure Vault"
	defaultSiteCurrency   = "VND"
	defaultSiteLocale     = "vi"
)

// Config captures all runtime configuration organised by concern.
type Config struct {
	Server  ServerConfig
	Logging LoggingConfig
	Catalog CatalogConfig
	Cache   CacheConfig
	Site    SiteConfig
}

// ServerConfig configures HTTP server parameters.
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// LoggingConfig selects the logger flavour and verbosity.
type LoggingConfig struct {
	Environment string
	Level       string
}

// Development reports whether the console encoder should be used.
func (c LoggingConfig) Development() bool {
	switch strings.ToLower(c.Environment) {
	case "development", "dev", "local":
		return true
	}
	return false
}

// CatalogConfig points at the storefront REST API.
type CatalogConfig struct {
	// BaseURL is the API root. When empty the server serves the built-in static catalog.
	BaseURL     string
	Timeout     time.Duration
	LookupLimit int
}

// CacheConfig controls caching of category and brand lookups.
type CacheConfig struct {
	LookupTTL     time.Duration
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// SiteConfig holds presentation settings.
type SiteConfig struct {
	Name     string
	Currency string
	Locale   string
}

// ValidationError is returned when required configuration fields are missing or invalid.
type ValidationError struct {
	fields []string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation failed: missing or invalid fields [%s]", strings.Join(e.fields, ", "))
}

// Fields returns a copy of the missing/invalid field list.
func (e *ValidationError) Fields() []string {
	out := make([]string, len(e.fields))
	copy(out, e.fields)
	return out
}

// Option customises Load behaviour.
type Option func(*loaderOptions)

type loaderOptions struct {
	envFile      string
	envMap       map[string]string
	useSystemEnv bool
}

// WithEnvFile overrides the .env file path used for local overrides.
func WithEnvFile(path string) Option {
	return func(o *loaderOptions) {
		o.envFile = path
	}
}

// WithEnvMap injects an explicit key/value map for environment lookups. Values in the map
// take precedence over system environment variables.
func WithEnvMap(values map[string]string) Option {
	return func(o *loaderOptions) {
		o.envMap = values
	}
}

// WithoutSystemEnv disables reading from os.LookupEnv, relying only on provided maps and .env files.
func WithoutSystemEnv() Option {
	return func(o *loaderOptions) {
		o.useSystemEnv = false
	}
}

// Load assembles the configuration by combining defaults, .env overrides and environment variables.
func Load(_ context.Context, opts ...Option) (Config, error) {
	options := loaderOptions{
		envFile:      defaultEnvFile,
		useSystemEnv: true,
	}
	for _, opt := range opts {
		opt(&options)
	}

	dotEnvValues, err := loadDotEnv(options.envFile)
	if err != nil {
		return Config{}, err
	}

	lookup := func(key string) (string, bool) {
		if options.envMap != nil {
			if value, ok := options.envMap[key]; ok {
				return value, true
			}
		}
		if options.useSystemEnv {
			if value, ok := os.LookupEnv(key); ok {
				return value, true
			}
		}
		if dotEnvValues != nil {
			if value, ok := dotEnvValues[key]; ok {
				return value, true
			}
		}
		return "", false
	}

	// Cloud Run injects PORT; WEB_PORT wins when both are present.
	port := stringWithDefault(lookup, "PORT", defaultPort)
	port = stringWithDefault(lookup, "WEB_PORT", port)

	cfg := Config{
		Server: ServerConfig{
			Port:         port,
			ReadTimeout:  durationWithDefault(lookup, "WEB_READ_TIMEOUT", defaultReadTimeout),
			WriteTimeout: durationWithDefault(lookup, "WEB_WRITE_TIMEOUT", defaultWriteTimeout),
			IdleTimeout:  durationWithDefault(lookup, "WEB_IDLE_TIMEOUT", defaultIdleTimeout),
		},
		Logging: LoggingConfig{
			Environment: strings.ToLower(stringWithDefault(lookup, "APP_ENV", defaultEnvironment)),
			Level:       strings.ToLower(stringWithDefault(lookup, "LOG_LEVEL", defaultLogLevel)),
		},
		Catalog: CatalogConfig{
			BaseURL:     strings.TrimRight(strings.TrimSpace(stringWithDefault(lookup, "CATALOG_API_BASE_URL", "")), "/"),
			Timeout:     durationWithDefault(lookup, "CATALOG_API_TIMEOUT", defaultCatalogTimeout),
			LookupLimit: intWithDefault(lookup, "CATALOG_LOOKUP_LIMIT", defaultLookupLimit),
		},
		Cache: CacheConfig{
			LookupTTL:     durationWithDefault(lookup, "CACHE_LOOKUP_TTL", defaultLookupTTL),
			RedisAddr:     stringWithDefault(lookup, "CACHE_REDIS_ADDR", ""),
			RedisPassword: stringWithDefault(lookup, "CACHE_REDIS_PASSWORD", ""),
			RedisDB:       intWithDefault(lookup, "CACHE_REDIS_DB", 0),
		},
		Site: SiteConfig{
			Name:     stringWithDefault(lookup, "SITE_NAME", defaultSiteName),
			Currency: strings.ToUpper(stringWithDefault(lookup, "SITE_CURRENCY", defaultSiteCurrency)),
			Locale:   stringWithDefault(lookup, "SITE_LOCALE", defaultSiteLocale),
		},
	}

	if err := validateConfig(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func validateConfig(cfg Config) error {
	var missing []string

	if strings.TrimSpace(cfg.Server.Port) == "" {
		missing = append(missing, "Server.Port")
	}
	if cfg.Server.ReadTimeout <= 0 {
		missing = append(missing, "Server.ReadTimeout")
	}
	if cfg.Server.WriteTimeout <= 0 {
		missing = append(missing, "Server.WriteTimeout")
	}
	if cfg.Catalog.Timeout <= 0 {
		missing = append(missing, "Catalog.Timeout")
	}
	if cfg.Catalog.LookupLimit <= 0 {
		missing = append(missing, "Catalog.LookupLimit")
	}
	if cfg.Catalog.BaseURL != "" && !strings.HasPrefix(cfg.Catalog.BaseURL, "http://") && !strings.HasPrefix(cfg.Catalog.BaseURL, "https://") {
		missing = append(missing, "Catalog.BaseURL")
	}
	if cfg.Cache.LookupTTL < 0 {
		missing = append(missing, "Cache.LookupTTL")
	}
	if len(cfg.Site.Currency) != 3 {
		missing = append(missing, "Site.Currency")
	}

	if len(missing) > 0 {
		return &ValidationError{fields: missing}
	}
	return nil
}

func loadDotEnv(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		absPath = path
	}
	if _, err := os.Stat(absPath); errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}

	values, err := godotenv.Read(absPath)
	if err != nil {
		return nil, fmt.Errorf("config: failed parsing %s: %w", absPath, err)
	}
	return values, nil
}

func stringWithDefault(lookup func(string) (string, bool), key, fallback string) string {
	if value, ok := lookup(key); ok && value != "" {
		return value
	}
	return fallback
}

func durationWithDefault(lookup func(string) (string, bool), key string, fallback time.Duration) time.Duration {
	if value, ok := lookup(key); ok && value != "" {
		d, err := time.ParseDuration(value)
		if err == nil {
			return d
		}
	}
	return fallback
}

func intWithDefault(lookup func(string) (string, bool), key string, fallback int) int {
	if value, ok := lookup(key); ok && value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}
