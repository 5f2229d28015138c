package config

import (
	"errors"
	"net/url"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// University of Wyoming archive.
	UWYOBaseURL    string
	UWYORegion     string
	UWYOTimeout    time.Duration
	UWYOMaxRetries int

	// Fetched sounding cache.
	CacheSize int
	CacheTTL  time.Duration

	// LegacyStormWrap keeps the historical 360−d storm direction wrap.
	LegacyStormWrap bool

	// Optional report publishing.
	KafkaEnabled bool
	KafkaBrokers []string
	KafkaTopic   string

	// StationCatalog is a YAML file replacing the embedded station catalog.
	StationCatalog string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	uwyoTimeout, err := time.ParseDuration(sharedcfg.EnvOrDefault("UWYO_TIMEOUT", "15s"))
	if err != nil || uwyoTimeout <= 0 {
		return nil, errors.New("invalid UWYO_TIMEOUT")
	}

	maxRetries, err := strconv.Atoi(sharedcfg.EnvOrDefault("UWYO_MAX_RETRIES", "2"))
	if err != nil || maxRetries < 0 {
		return nil, errors.New("invalid UWYO_MAX_RETRIES")
	}

	cacheSize, err := strconv.Atoi(sharedcfg.EnvOrDefault("SOUNDING_CACHE_SIZE", "256"))
	if err != nil || cacheSize < 0 {
		return nil, errors.New("invalid SOUNDING_CACHE_SIZE")
	}

	cacheTTL, err := time.ParseDuration(sharedcfg.EnvOrDefault("SOUNDING_CACHE_TTL", "10m"))
	if err != nil || cacheTTL <= 0 {
		return nil, errors.New("invalid SOUNDING_CACHE_TTL")
	}

	legacyWrap, err := strconv.ParseBool(sharedcfg.EnvOrDefault("STORM_MOTION_LEGACY_WRAP", "false"))
	if err != nil {
		return nil, errors.New("invalid STORM_MOTION_LEGACY_WRAP")
	}

	var brokers []string
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		brokers = sharedcfg.ParseBrokers(v)
	}
	kafkaEnabled := len(brokers) > 0
	if v := os.Getenv("KAFKA_ENABLED"); v != "" {
		kafkaEnabled = v == "true"
	}

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		UWYOBaseURL:    sharedcfg.EnvOrDefault("UWYO_BASE_URL", "http://weather.uwyo.edu/cgi-bin/sounding"),
		UWYORegion:     sharedcfg.EnvOrDefault("UWYO_REGION", "np"),
		UWYOTimeout:    uwyoTimeout,
		UWYOMaxRetries: maxRetries,

		CacheSize: cacheSize,
		CacheTTL:  cacheTTL,

		LegacyStormWrap: legacyWrap,

		KafkaEnabled: kafkaEnabled,
		KafkaBrokers: brokers,
		KafkaTopic:   sharedcfg.EnvOrDefault("KAFKA_TOPIC", "sounding-diagnostics"),

		StationCatalog: os.Getenv("STATION_CATALOG"),
	}

	if u, err := url.Parse(cfg.UWYOBaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		return nil, errors.New("invalid UWYO_BASE_URL")
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is not set")
	}
	if cfg.KafkaEnabled && cfg.KafkaTopic == "" {
		return nil, errors.New("KAFKA_TOPIC is required")
	}

	return cfg, nil
}
