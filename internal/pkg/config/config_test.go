package config

import (
	"strings"
	"testing"
)

func validConfig() Config {
	return Config{
		Server:   ServerConfig{Port: 8080, ReadTimeout: 10, WriteTimeout: 10},
		Log:      LogConfig{Level: "info", Format: "json"},
		Cache:    CacheConfig{DefaultTTL: 300, CleanupInterval: 600},
		Location: LocationConfig{Granted: true, Lat: 13.7, Lon: 100.5},
		Maps:     MapsConfig{BaseURL: "https://www.google.com/maps/dir/"},
	}
}

func TestValidate_OK(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"port zero", func(c *Config) { c.Server.Port = 0 }, "server.port"},
		{"port too big", func(c *Config) { c.Server.Port = 70000 }, "server.port"},
		{"read timeout", func(c *Config) { c.Server.ReadTimeout = 0 }, "server.read_timeout"},
		{"log level", func(c *Config) { c.Log.Level = "loud" }, "log.level"},
		{"log format", func(c *Config) { c.Log.Format = "xml" }, "log.format"},
		{"nats scheme", func(c *Config) { c.NATS.URL = "http://localhost:4222" }, "nats.url"},
		{"cache ttl", func(c *Config) { c.Cache.DefaultTTL = -1 }, "cache.default_ttl"},
		{"tempo", func(c *Config) { c.Telemetry.Enabled = true }, "telemetry.tempo_addr"},
		{"lat", func(c *Config) { c.Location.Lat = 91 }, "location.lat"},
		{"lon", func(c *Config) { c.Location.Lon = -181 }, "location.lon"},
		{"maps", func(c *Config) { c.Maps.BaseURL = "" }, "maps.base_url"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected error mentioning %q, got %v", tt.want, err)
			}
		})
	}
}

func TestValidate_AggregatesErrors(t *testing.T) {
	cfg := validConfig()
	cfg.Server.Port = -1
	cfg.Maps.BaseURL = ""

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "server.port") || !strings.Contains(err.Error(), "maps.base_url") {
		t.Errorf("expected both problems reported, got %v", err)
	}
}

func TestLoad_Env(t *testing.T) {
	t.Setenv("HONGNAM_SERVER_PORT", "9090")
	t.Setenv("HONGNAM_NATS_URL", "nats://bus:4222")
	t.Setenv("HONGNAM_LOCATION_GRANTED", "false")

	cfg, err := Load("hongnam-test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.Server.Port)
	}
	if cfg.NATS.URL != "nats://bus:4222" {
		t.Errorf("unexpected nats url %q", cfg.NATS.URL)
	}
	if cfg.Location.Granted {
		t.Error("expected location permission denied from env")
	}
	if cfg.Telemetry.ServiceName != "hongnam-test" {
		t.Errorf("unexpected service name %q", cfg.Telemetry.ServiceName)
	}
	if cfg.Valkey.Addr != "" {
		t.Errorf("expected valkey disabled by default, got %q", cfg.Valkey.Addr)
	}
}

func TestLoad_InvalidEnv(t *testing.T) {
	t.Setenv("HONGNAM_SERVER_PORT", "0")
	if _, err := Load("hongnam-test"); err == nil {
		t.Fatal("expected validation error")
	}
}
