package config

import (
	"net/url"
	"os"
	"strconv"
	"time"

	"stringcalc/domain/instrument"
	"stringcalc/internal"
	"stringcalc/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Server  ServerConfig
	Peer    PeerConfig
	Page    PageConfig
	Metrics MetricsConfig
	Log     LogConfig
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port            string
	GinMode         string
	ShutdownTimeout time.Duration
}

// PeerConfig holds the realtime channel settings
type PeerConfig struct {
	URL              string
	ReconnectTimeout time.Duration
	WriteTimeout     time.Duration
	PongWait         time.Duration
	SendBuffer       int
}

// PageConfig locates the calculator page and its table
type PageConfig struct {
	TableID  string
	Template string
}

// MetricsConfig toggles the Prometheus endpoint
type MetricsConfig struct {
	Enabled bool
}

// LogConfig sets the verbosity of the leveled component loggers
type LogConfig struct {
	Level internal.LogLevel
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Server:  *loadServerConfig(),
		Peer:    *loadPeerConfig(),
		Page:    *loadPageConfig(),
		Metrics: MetricsConfig{Enabled: getEnvBoolOrDefault("METRICS_ENABLED", true)},
		Log:     LogConfig{Level: internal.LogLevelInfo},
	}
	if name := os.Getenv("LOG_LEVEL"); name != "" {
		level, ok := internal.ParseLogLevel(name)
		if !ok {
			return nil, errors.ConfigInvalid("LOG_LEVEL must be ERROR, WARN, INFO, DEBUG or TRACE")
		}
		config.Log.Level = level
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func loadServerConfig() *ServerConfig {
	return &ServerConfig{
		Port:            getEnvOrDefault("PORT", "8080"),
		GinMode:         getEnvOrDefault("GIN_MODE", "debug"),
		ShutdownTimeout: getEnvDurationOrDefault("SHUTDOWN_TIMEOUT", 5*time.Second),
	}
}

func loadPeerConfig() *PeerConfig {
	return &PeerConfig{
		URL:              getEnvOrDefault("PEER_URL", "ws://localhost:5000/socket"),
		ReconnectTimeout: getEnvDurationOrDefault("RECONNECT_TIMEOUT", 5*time.Second),
		WriteTimeout:     getEnvDurationOrDefault("WRITE_TIMEOUT", 10*time.Second),
		PongWait:         getEnvDurationOrDefault("PONG_WAIT", 60*time.Second),
		SendBuffer:       getEnvIntOrDefault("SEND_BUFFER", 32),
	}
}

func loadPageConfig() *PageConfig {
	return &PageConfig{
		TableID:  getEnvOrDefault("TABLE_ID", instrument.StringTable),
		Template: getEnvOrDefault("PAGE_TEMPLATE", ""),
	}
}

func validateConfig(config *Config) error {
	if _, err := strconv.Atoi(config.Server.Port); err != nil {
		return errors.ConfigInvalid("PORT must be numeric")
	}
	switch config.Server.GinMode {
	case "debug", "release", "test":
	default:
		return errors.ConfigInvalid("GIN_MODE must be debug, release or test")
	}
	u, err := url.Parse(config.Peer.URL)
	if err != nil || (u.Scheme != "ws" && u.Scheme != "wss") || u.Host == "" {
		return errors.ConfigInvalid("PEER_URL must be a ws:// or wss:// URL")
	}
	if config.Peer.ReconnectTimeout <= 0 || config.Peer.WriteTimeout <= 0 || config.Peer.PongWait <= 0 {
		return errors.ConfigInvalid("peer timeouts must be positive")
	}
	if config.Peer.SendBuffer < 1 {
		return errors.ConfigInvalid("SEND_BUFFER must be at least 1")
	}
	if config.Page.TableID == "" {
		return errors.ConfigInvalid("TABLE_ID is required")
	}
	if config.Page.Template != "" {
		if _, err := os.Stat(config.Page.Template); err != nil {
			return errors.ConfigInvalid("PAGE_TEMPLATE not readable: " + err.Error())
		}
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
