package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
	NATS      NATSConfig      `mapstructure:"nats"`
	Valkey    ValkeyConfig    `mapstructure:"valkey"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Seed      SeedConfig      `mapstructure:"seed"`
	Location  LocationConfig  `mapstructure:"location"`
	Maps      MapsConfig      `mapstructure:"maps"`
}

type ServerConfig struct {
	Port         int    `mapstructure:"port"`
	ReadTimeout  int    `mapstructure:"read_timeout"`
	WriteTimeout int    `mapstructure:"write_timeout"`
	AllowOrigins string `mapstructure:"allow_origins"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// NATSConfig is optional; an empty URL disables event publishing.
type NATSConfig struct {
	URL string `mapstructure:"url"`
}

// ValkeyConfig is optional; an empty address selects the in-process cache.
type ValkeyConfig struct {
	Addr string `mapstructure:"addr"`
}

type CacheConfig struct {
	DefaultTTL      int `mapstructure:"default_ttl"`
	CleanupInterval int `mapstructure:"cleanup_interval"`
}

type TelemetryConfig struct {
	ServiceName string `mapstructure:"service_name"`
	TempoAddr   string `mapstructure:"tempo_addr"`
	Enabled     bool   `mapstructure:"enabled"`
}

// SeedConfig points at a YAML seed file. Empty means the built-in demo data.
type SeedConfig struct {
	Path string `mapstructure:"path"`
}

// LocationConfig is the fixed device position used when a request does not
// report one.
type LocationConfig struct {
	Granted bool    `mapstructure:"granted"`
	Lat     float64 `mapstructure:"lat"`
	Lon     float64 `mapstructure:"lon"`
}

type MapsConfig struct {
	BaseURL string `mapstructure:"base_url"`
}

// Load reads configuration from file and environment variables.
func Load(service string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10)
	v.SetDefault("server.write_timeout", 10)
	v.SetDefault("server.allow_origins", "http://localhost:3000, http://localhost:5173, http://localhost:8081")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("nats.url", "")
	v.SetDefault("valkey.addr", "")
	v.SetDefault("cache.default_ttl", 300)
	v.SetDefault("cache.cleanup_interval", 600)
	v.SetDefault("telemetry.service_name", service)
	v.SetDefault("telemetry.tempo_addr", "tempo:4317")
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("seed.path", "")
	v.SetDefault("location.granted", true)
	v.SetDefault("location.lat", 13.736717)
	v.SetDefault("location.lon", 100.523186)
	v.SetDefault("maps.base_url", "https://www.google.com/maps/dir/")

	// Config file (optional)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	_ = v.ReadInConfig() // OK if missing

	// Environment variables: HONGNAM_NATS_URL → nats.url
	v.SetEnvPrefix("HONGNAM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks that required configuration fields are present and sane.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port must be 1-65535, got %d", c.Server.Port))
	}
	if c.Server.ReadTimeout <= 0 {
		errs = append(errs, "server.read_timeout must be positive")
	}
	if c.Server.WriteTimeout <= 0 {
		errs = append(errs, "server.write_timeout must be positive")
	}
	switch strings.ToLower(c.Log.Level) {
	case "", "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Sprintf("log.level must be debug, info, warn or error, got %q", c.Log.Level))
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "json", "text":
	default:
		errs = append(errs, fmt.Sprintf("log.format must be json or text, got %q", c.Log.Format))
	}
	if c.NATS.URL != "" && !strings.HasPrefix(c.NATS.URL, "nats://") && !strings.HasPrefix(c.NATS.URL, "tls://") {
		errs = append(errs, fmt.Sprintf("nats.url must use nats:// or tls://, got %q", c.NATS.URL))
	}
	if c.Cache.DefaultTTL <= 0 {
		errs = append(errs, "cache.default_ttl must be positive")
	}
	if c.Telemetry.Enabled && c.Telemetry.TempoAddr == "" {
		errs = append(errs, "telemetry.tempo_addr is required when telemetry is enabled")
	}
	if c.Location.Lat < -90 || c.Location.Lat > 90 {
		errs = append(errs, fmt.Sprintf("location.lat must be -90..90, got %v", c.Location.Lat))
	}
	if c.Location.Lon < -180 || c.Location.Lon > 180 {
		errs = append(errs, fmt.Sprintf("location.lon must be -180..180, got %v", c.Location.Lon))
	}
	if c.Maps.BaseURL == "" {
		errs = append(errs, "maps.base_url is required")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
