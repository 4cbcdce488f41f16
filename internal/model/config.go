package model

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// envPrefix is prepended to every environment override, e.g.
// CLOUDCONSOLE_API_BASE_URL overrides api.base_url.
const envPrefix = "CLOUDCONSOLE"

// APIConfig holds the settings for the REST backend.
type APIConfig struct {
	// BaseURL is the root of every REST endpoint (e.g., http://localhost:3000/api).
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`

	// TimeoutSec bounds a single HTTP request. Zero means no client timeout.
	TimeoutSec int `mapstructure:"timeout_sec" yaml:"timeout_sec"`
}

// ChannelConfig holds the settings for the real-time notification channel.
type ChannelConfig struct {
	// URL is the WebSocket endpoint of the push channel.
	URL string `mapstructure:"url" yaml:"url"`

	// ClientID is the identity registered on connect. When empty a
	// random "user-xxxxxxxx" id is generated per session.
	ClientID string `mapstructure:"client_id" yaml:"client_id"`

	// Reconnect controls what happens after the transport drops.
	Reconnect ReconnectConfig `mapstructure:"reconnect" yaml:"reconnect"`
}

// ReconnectConfig bounds the automatic reconnection policy.
// MaxAttempts of zero disables reconnection entirely.
type ReconnectConfig struct {
	MaxAttempts      int `mapstructure:"max_attempts" yaml:"max_attempts"`
	InitialBackoffMs int `mapstructure:"initial_backoff_ms" yaml:"initial_backoff_ms"`
	MaxBackoffMs     int `mapstructure:"max_backoff_ms" yaml:"max_backoff_ms"`
}

// DisplayConfig holds UI/rendering preferences.
type DisplayConfig struct {
	// Theme names a color palette; see theme.Names.
	Theme    string `mapstructure:"theme" yaml:"theme"`
	ToastSec int    `mapstructure:"toast_sec" yaml:"toast_sec"`
}

// LogConfig controls the file logger. The TUI owns stdout, so logs
// always go to a file.
type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
	File  string `mapstructure:"file" yaml:"file"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	API     APIConfig     `mapstructure:"api" yaml:"api"`
	Channel ChannelConfig `mapstructure:"channel" yaml:"channel"`
	Display DisplayConfig `mapstructure:"display" yaml:"display"`
	Log     LogConfig     `mapstructure:"log" yaml:"log"`
}

// Timeout returns the configured HTTP timeout as a duration.
func (c APIConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSec) * time.Second
}

// InitialBackoff returns the first reconnect delay.
func (c ReconnectConfig) InitialBackoff() time.Duration {
	return time.Duration(c.InitialBackoffMs) * time.Millisecond
}

// MaxBackoff returns the cap on a single reconnect delay.
func (c ReconnectConfig) MaxBackoff() time.Duration {
	return time.Duration(c.MaxBackoffMs) * time.Millisecond
}

// ToastDuration returns how long a toast stays in the status bar.
func (c DisplayConfig) ToastDuration() time.Duration {
	return time.Duration(c.ToastSec) * time.Second
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/cloudconsole/config.yaml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "config.yaml")
	}
	return filepath.Join(home, ".config", "cloudconsole", "config.yaml")
}

// DefaultLogPath returns the default log file location.
func DefaultLogPath() string {
	return filepath.Join(filepath.Dir(DefaultConfigPath()), "cloudconsole.log")
}

// DefaultAppConfig returns a sensible default configuration that talks to
// a backend on localhost.
func DefaultAppConfig() *AppConfig {
	return &AppConfig{
		API: APIConfig{
			BaseURL:    "http://localhost:3000/api",
			TimeoutSec: 30,
		},
		Channel: ChannelConfig{
			URL: "ws://localhost:3000/ws",
			Reconnect: ReconnectConfig{
				MaxAttempts:      5,
				InitialBackoffMs: 500,
				MaxBackoffMs:     10000,
			},
		},
		Display: DisplayConfig{
			Theme:    "default",
			ToastSec: 4,
		},
		Log: LogConfig{
			Level: "info",
			File:  DefaultLogPath(),
		},
	}
}

// setDefaults mirrors DefaultAppConfig into viper so missing keys and
// environment-only keys resolve to sensible values.
func setDefaults(v *viper.Viper) {
	d := DefaultAppConfig()
	v.SetDefault("api.base_url", d.API.BaseURL)
	v.SetDefault("api.timeout_sec", d.API.TimeoutSec)
	v.SetDefault("channel.url", d.Channel.URL)
	v.SetDefault("channel.client_id", d.Channel.ClientID)
	v.SetDefault("channel.reconnect.max_attempts", d.Channel.Reconnect.MaxAttempts)
	v.SetDefault("channel.reconnect.initial_backoff_ms", d.Channel.Reconnect.InitialBackoffMs)
	v.SetDefault("channel.reconnect.max_backoff_ms", d.Channel.Reconnect.MaxBackoffMs)
	v.SetDefault("display.theme", d.Display.Theme)
	v.SetDefault("display.toast_sec", d.Display.ToastSec)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.file", d.Log.File)
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// If the file does not exist, defaults are used. Environment variables with
// the CLOUDCONSOLE_ prefix override both.
func LoadConfig(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		_, isPathErr := err.(*os.PathError)
		_, isNotFound := err.(viper.ConfigFileNotFoundError)
		if !isPathErr && !isNotFound {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	cfg := DefaultAppConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	cfg.API.BaseURL = strings.TrimRight(cfg.API.BaseURL, "/")
	if cfg.Channel.Reconnect.MaxAttempts < 0 {
		cfg.Channel.Reconnect.MaxAttempts = 0
	}
	if cfg.Display.ToastSec <= 0 {
		cfg.Display.ToastSec = 4
	}

	return cfg, nil
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("api", cfg.API)
	v.Set("channel", cfg.Channel)
	v.Set("display", cfg.Display)
	v.Set("log", cfg.Log)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
