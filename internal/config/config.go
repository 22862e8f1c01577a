package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/mmuslimabdulj/navsocket/internal/domain"
	"golang.org/x/time/rate"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration
type Config struct {
	// Server
	Port string `validate:"required,numeric"`

	// Security
	AllowedOrigins []string

	// Rate Limiting
	RateLimitAPI rate.Limit `validate:"gt=0"`
	RateLimitWS  rate.Limit `validate:"gt=0"`
	EventRate    rate.Limit `validate:"gt=0"`
	EventBurst   int        `validate:"gt=0"`

	// Logging
	LogLevel  string `validate:"oneof=debug info warn error silent off"`
	LogFormat string `validate:"oneof=text json"`

	// WebSocket
	MaxMessageSize int    `validate:"gt=0"`
	LocationsScope string `validate:"oneof=all self"`

	// Route & trip service
	RouteServiceURL string        `validate:"omitempty,url"`
	RouteTimeout    time.Duration `validate:"gt=0"`
	TripStore       string        `validate:"oneof=sqlite http"`
	TripDBPath      string
}

// DefaultConfig returns configuration with default values
func DefaultConfig() *Config {
	return &Config{
		Port:           "8080",
		AllowedOrigins: []string{"http://localhost:8080", "http://localhost:3000"},
		RateLimitAPI:   domain.DefaultRateLimitAPI,
		RateLimitWS:    domain.DefaultRateLimitWS,
		EventRate:      domain.DefaultEventRate,
		EventBurst:     domain.DefaultEventBurst,
		LogLevel:       "info", // Options: debug, info, warn, error, silent
		LogFormat:      "text",
		MaxMessageSize: domain.MaxMessageSize,
		LocationsScope: domain.LocationsScopeAll,
		RouteTimeout:   domain.RouteTimeout,
		TripStore:      "sqlite",
		TripDBPath:     "trips.db",
	}
}

// Load builds the configuration: defaults, then the YAML file at path (if any), then env
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		path = os.Getenv("CONFIG_FILE")
	}
	if path != "" {
		if err := cfg.applyFile(path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromEnv loads configuration from environment variables
func LoadFromEnv() *Config {
	cfg := DefaultConfig()
	cfg.applyEnv()
	return cfg
}

// Validate checks field constraints and cross-field rules
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.TripStore == "http" && c.RouteServiceURL == "" {
		return fmt.Errorf("invalid config: trip_store http requires route_service_url")
	}
	if c.TripStore == "sqlite" && c.TripDBPath == "" {
		return fmt.Errorf("invalid config: trip_store sqlite requires trip_db_path")
	}
	return nil
}

// fileConfig mirrors Config with YAML-friendly types
type fileConfig struct {
	Port                string   `yaml:"port"`
	AllowedOrigins      []string `yaml:"allowed_origins"`
	RateLimitAPI        float64  `yaml:"rate_limit_api"`
	RateLimitWS         float64  `yaml:"rate_limit_ws"`
	EventRate           float64  `yaml:"event_rate"`
	EventBurst          int      `yaml:"event_burst"`
	LogLevel            string   `yaml:"log_level"`
	LogFormat           string   `yaml:"log_format"`
	MaxMessageSize      int      `yaml:"max_message_size"`
	LocationsScope      string   `yaml:"locations_scope"`
	RouteServiceURL     string   `yaml:"route_service_url"`
	RouteTimeoutSeconds int      `yaml:"route_timeout_seconds"`
	TripStore           string   `yaml:"trip_store"`
	TripDBPath          string   `yaml:"trip_db_path"`
}

func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	if fc.Port != "" {
		c.Port = fc.Port
	}
	if len(fc.AllowedOrigins) > 0 {
		c.AllowedOrigins = fc.AllowedOrigins
	}
	if fc.RateLimitAPI > 0 {
		c.RateLimitAPI = rate.Limit(fc.RateLimitAPI)
	}
	if fc.RateLimitWS > 0 {
		c.RateLimitWS = rate.Limit(fc.RateLimitWS)
	}
	if fc.EventRate > 0 {
		c.EventRate = rate.Limit(fc.EventRate)
	}
	if fc.EventBurst > 0 {
		c.EventBurst = fc.EventBurst
	}
	if fc.LogLevel != "" {
		c.LogLevel = fc.LogLevel
	}
	if fc.LogFormat != "" {
		c.LogFormat = fc.LogFormat
	}
	if fc.MaxMessageSize > 0 {
		c.MaxMessageSize = fc.MaxMessageSize
	}
	if fc.LocationsScope != "" {
		c.LocationsScope = fc.LocationsScope
	}
	if fc.RouteServiceURL != "" {
		c.RouteServiceURL = fc.RouteServiceURL
	}
	if fc.RouteTimeoutSeconds > 0 {
		c.RouteTimeout = time.Duration(fc.RouteTimeoutSeconds) * time.Second
	}
	if fc.TripStore != "" {
		c.TripStore = fc.TripStore
	}
	if fc.TripDBPath != "" {
		c.TripDBPath = fc.TripDBPath
	}
	return nil
}

func (c *Config) applyEnv() {
	// Server
	if port := os.Getenv("PORT"); port != "" {
		c.Port = port
	}

	// Security
	if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
		c.AllowedOrigins = parseOrigins(origins)
	}

	// Rate Limiting
	if rl := os.Getenv("RATE_LIMIT_API"); rl != "" {
		if val, err := strconv.Atoi(rl); err == nil && val > 0 {
			c.RateLimitAPI = rate.Limit(val)
		}
	}

	if rl := os.Getenv("RATE_LIMIT_WS"); rl != "" {
		if val, err := strconv.Atoi(rl); err == nil && val > 0 {
			c.RateLimitWS = rate.Limit(val)
		}
	}

	if rl := os.Getenv("EVENT_RATE"); rl != "" {
		if val, err := strconv.Atoi(rl); err == nil && val > 0 {
			c.EventRate = rate.Limit(val)
		}
	}

	if burst := os.Getenv("EVENT_BURST"); burst != "" {
		if val, err := strconv.Atoi(burst); err == nil && val > 0 {
			c.EventBurst = val
		}
	}

	// Logging
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		c.LogLevel = level
	}
	if format := os.Getenv("LOG_FORMAT"); format != "" {
		c.LogFormat = format
	}

	// WebSocket
	if size := os.Getenv("MAX_MESSAGE_SIZE"); size != "" {
		if val, err := strconv.Atoi(size); err == nil && val > 0 {
			c.MaxMessageSize = val
		}
	}
	if scope := os.Getenv("LOCATIONS_SCOPE"); scope != "" {
		c.LocationsScope = scope
	}

	// Route & trip service
	if url := os.Getenv("ROUTE_SERVICE_URL"); url != "" {
		c.RouteServiceURL = url
	}
	if secs := os.Getenv("ROUTE_TIMEOUT_SECONDS"); secs != "" {
		if val, err := strconv.Atoi(secs); err == nil && val > 0 {
			c.RouteTimeout = time.Duration(val) * time.Second
		}
	}
	if store := os.Getenv("TRIP_STORE"); store != "" {
		c.TripStore = store
	}
	if path := os.Getenv("TRIP_DB_PATH"); path != "" {
		c.TripDBPath = path
	}
}

// parseOrigins parses comma-separated origins
func parseOrigins(origins string) []string {
	parts := strings.Split(origins, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}
