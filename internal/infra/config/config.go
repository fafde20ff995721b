// Package config provides configuration loading from YAML files.
package config

import (
	"net"
	"os"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	Server   ServerConfig           `yaml:"server"`
	Assets   AssetsConfig           `yaml:"assets"`
	Playlist PlaylistConfig         `yaml:"playlist"`
	Playback PlaybackConfig         `yaml:"playback"`
	Checks   map[string]CheckConfig `yaml:"checks"`
	Store    StoreConfig            `yaml:"store"`
	MPRIS    MPRISConfig            `yaml:"mpris"`
	Spotify  SpotifyConfig          `yaml:"spotify"`
}

// ServerConfig represents server configuration.
type ServerConfig struct {
	Addr         string      `yaml:"addr" default:":8080"`
	ControlToken string      `yaml:"control_token"` // Required on mutating RPCs when set
	Hooks        HooksConfig `yaml:"hooks"`
}

// HooksConfig represents lifecycle hooks configuration.
type HooksConfig struct {
	OnStarted []string `yaml:"on_started"`
	OnStopped []string `yaml:"on_stopped"`
}

// AssetsConfig represents the audio asset library.
type AssetsConfig struct {
	Dir      string `yaml:"dir" default:"audio" validate:"required"`
	Prefix   string `yaml:"prefix" default:"/audio/" validate:"startswith=/,endswith=/"`
	BaseURL  string `yaml:"base_url" validate:"omitempty,url"` // Defaults to the server address
	Watch    bool   `yaml:"watch"`
	MaxBytes int64  `yaml:"max_bytes" default:"67108864" validate:"gt=0"`
}

// PlaylistConfig represents where playlist tracks come from.
type PlaylistConfig struct {
	Name    string         `yaml:"name" default:"Playlist"`
	Sources []SourceConfig `yaml:"sources" validate:"required,min=1,dive"`
}

// SourceConfig represents a single playlist source.
type SourceConfig struct {
	Type        string         `yaml:"type" validate:"required,oneof=static directory spotify"`
	DisplayName string         `yaml:"display_name"`
	Settings    map[string]any `yaml:"settings"`
}

// PlaybackConfig represents playback control configuration.
type PlaybackConfig struct {
	Repeat               string  `yaml:"repeat" default:"none" validate:"oneof=none one all"`
	Autoplay             bool    `yaml:"autoplay"`
	DefaultVolume        float64 `yaml:"default_volume" default:"1" validate:"gte=0,lte=1"`
	StartIndex           int     `yaml:"start_index" validate:"gte=0"`
	LoadTimeoutMs        *int    `yaml:"load_timeout_ms" default:"10000" validate:"omitempty,gte=0,lte=600000"` // 0 disables the watchdog
	TimeUpdateIntervalMs int     `yaml:"time_update_interval_ms" default:"250" validate:"gte=10,lte=5000"`
	RequireGesture       bool    `yaml:"require_gesture"` // Refuse playback until a client sends play
}

// CheckConfig represents an asset check's configuration.
type CheckConfig struct {
	Enabled  bool           `yaml:"enabled"`
	Settings map[string]any `yaml:"settings,omitempty"`
}

// StoreConfig represents the preference and history store.
type StoreConfig struct {
	Path    string `yaml:"path"` // Empty disables persistence
	Restore bool   `yaml:"restore"`
}

// MPRISConfig represents the D-Bus media player integration.
type MPRISConfig struct {
	Enabled bool   `yaml:"enabled"`
	Name    string `yaml:"name" default:"cornerpocket" validate:"required,alphanum"`
}

// SpotifyConfig represents Spotify API configuration.
// Only required when a spotify playlist source is configured.
type SpotifyConfig struct {
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
	RefreshToken string `yaml:"refresh_token"`
	Market       string `yaml:"market" validate:"omitempty,len=2" default:"JP"`
}

// Load loads configuration from a YAML file.
// Environment variables take precedence over file values for sensitive fields.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config file")
	}
	return Parse(data)
}

// Parse parses configuration from YAML bytes.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(err, "failed to parse config file")
	}

	cfg.overrideFromEnv()

	if err := defaults.Set(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to set defaults")
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "config validation failed")
	}

	return &cfg, nil
}

// overrideFromEnv overrides config values with environment variables.
func (c *Config) overrideFromEnv() {
	if v := os.Getenv("CONTROL_TOKEN"); v != "" {
		c.Server.ControlToken = v
	}
	if v := os.Getenv("SPOTIFY_CLIENT_ID"); v != "" {
		c.Spotify.ClientID = v
	}
	if v := os.Getenv("SPOTIFY_CLIENT_SECRET"); v != "" {
		c.Spotify.ClientSecret = v
	}
	if v := os.Getenv("SPOTIFY_REFRESH_TOKEN"); v != "" {
		c.Spotify.RefreshToken = v
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(err, "struct validation failed")
	}

	if c.HasSource("spotify") {
		if c.Spotify.ClientID == "" || c.Spotify.ClientSecret == "" || c.Spotify.RefreshToken == "" {
			return errors.New("spotify source requires client_id, client_secret and refresh_token")
		}
	}

	return nil
}

// HasSource reports whether a playlist source of the given type is configured.
func (c *Config) HasSource(sourceType string) bool {
	for _, s := range c.Playlist.Sources {
		if s.Type == sourceType {
			return true
		}
	}
	return false
}

// IsCheckEnabled checks if an asset check is enabled.
func (c *Config) IsCheckEnabled(name string) bool {
	if ch, ok := c.Checks[name]; ok {
		return ch.Enabled
	}
	return false
}

// DefaultLoadTimeout is used when load_timeout_ms is not set.
const DefaultLoadTimeout = 10 * time.Second

// LoadTimeout returns the load watchdog deadline. Zero disables the watchdog.
func (c *Config) LoadTimeout() time.Duration {
	if c.Playback.LoadTimeoutMs == nil {
		return DefaultLoadTimeout
	}
	return time.Duration(*c.Playback.LoadTimeoutMs) * time.Millisecond
}

// TimeUpdateInterval returns how often the media backend reports the position.
func (c *Config) TimeUpdateInterval() time.Duration {
	return time.Duration(c.Playback.TimeUpdateIntervalMs) * time.Millisecond
}

// AssetBaseURL returns the URL relative asset paths resolve against.
// Without an explicit base_url the server's own address and asset prefix are used.
func (c *Config) AssetBaseURL() string {
	if c.Assets.BaseURL != "" {
		return strings.TrimRight(c.Assets.BaseURL, "/") + "/"
	}

	host, port, err := net.SplitHostPort(c.Server.Addr)
	if err != nil {
		host, port = "127.0.0.1", "8080"
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "127.0.0.1"
	}
	return "http://" + net.JoinHostPort(host, port) + c.Assets.Prefix
}
