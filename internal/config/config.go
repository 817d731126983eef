package config

import (
	"net/url"
	"strings"
	"time"
)

// Config holds client configuration values.
type Config struct {
	ServerURL        string        `mapstructure:"server_url" yaml:"server_url"`
	PollInterval     time.Duration `mapstructure:"poll_interval" yaml:"poll_interval"`
	DialTimeout      time.Duration `mapstructure:"dial_timeout" yaml:"dial_timeout"`
	ReconnectMaxWait time.Duration `mapstructure:"reconnect_max_wait" yaml:"reconnect_max_wait"`
	LogLevel         string        `mapstructure:"log_level" yaml:"log_level"`
}

// Default returns configuration with reasonable starter defaults. The
// one-second poll matches the authority's expected refresh cadence.
func Default() Config {
	return Config{
		ServerURL:        "http://localhost:8000",
		PollInterval:     time.Second,
		DialTimeout:      5 * time.Second,
		ReconnectMaxWait: 15 * time.Second,
		LogLevel:         "info",
	}
}

// EventURL derives the per-room event stream endpoint from the server URL.
func (c Config) EventURL(roomID string) string {
	u, err := url.Parse(c.ServerURL)
	if err != nil {
		return ""
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/rooms/" + roomID + "/events"
	return u.String()
}

// UpdateFrom overwrites non-zero values from other config into receiver.
func (c *Config) UpdateFrom(other Config) {
	if other.ServerURL != "" {
		c.ServerURL = other.ServerURL
	}
	if other.PollInterval != 0 {
		c.PollInterval = other.PollInterval
	}
	if other.DialTimeout != 0 {
		c.DialTimeout = other.DialTimeout
	}
	if other.ReconnectMaxWait != 0 {
		c.ReconnectMaxWait = other.ReconnectMaxWait
	}
	if other.LogLevel != "" {
		c.LogLevel = other.LogLevel
	}
}
