package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalYAML = `
playlist:
  sources:
    - type: directory
`

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse([]byte(minimalYAML))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "audio", cfg.Assets.Dir)
	assert.Equal(t, "/audio/", cfg.Assets.Prefix)
	assert.Equal(t, int64(64<<20), cfg.Assets.MaxBytes)
	assert.Equal(t, "Playlist", cfg.Playlist.Name)
	assert.Equal(t, "none", cfg.Playback.Repeat)
	assert.Equal(t, 1.0, cfg.Playback.DefaultVolume)
	assert.Equal(t, 10*time.Second, cfg.LoadTimeout())
	assert.Equal(t, 250*time.Millisecond, cfg.TimeUpdateInterval())
	assert.Equal(t, "cornerpocket", cfg.MPRIS.Name)
	assert.Equal(t, "JP", cfg.Spotify.Market)
	assert.Equal(t, "http://127.0.0.1:8080/audio/", cfg.AssetBaseURL())
}

func TestParse_FullConfig(t *testing.T) {
	data := `
server:
  addr: "localhost:9090"
  control_token: "secret"
  hooks:
    on_started: ["echo started"]
assets:
  dir: "/srv/audio"
  prefix: "/media/"
  watch: true
playlist:
  name: "Morning"
  sources:
    - type: static
      display_name: "Pinned"
      settings:
        tracks:
          - id: intro
            title: Intro
            path: intro.mp3
    - type: directory
playback:
  repeat: all
  autoplay: true
  default_volume: 0.5
  load_timeout_ms: 2000
  time_update_interval_ms: 100
checks:
  status_ok:
    enabled: true
  duration_limit:
    enabled: true
    settings:
      max_seconds: 600
store:
  path: "/var/lib/cornerpocket/state.db"
  restore: true
`
	cfg, err := Parse([]byte(data))
	require.NoError(t, err)

	assert.Equal(t, "secret", cfg.Server.ControlToken)
	assert.Equal(t, []string{"echo started"}, cfg.Server.Hooks.OnStarted)
	assert.True(t, cfg.Assets.Watch)
	assert.Equal(t, "Morning", cfg.Playlist.Name)
	require.Len(t, cfg.Playlist.Sources, 2)
	assert.Equal(t, "static", cfg.Playlist.Sources[0].Type)
	assert.Equal(t, "all", cfg.Playback.Repeat)
	assert.True(t, cfg.Playback.Autoplay)
	assert.Equal(t, 0.5, cfg.Playback.DefaultVolume)
	assert.Equal(t, 2*time.Second, cfg.LoadTimeout())
	assert.True(t, cfg.IsCheckEnabled("status_ok"))
	assert.True(t, cfg.IsCheckEnabled("duration_limit"))
	assert.False(t, cfg.IsCheckEnabled("content_length"))
	assert.True(t, cfg.Store.Restore)
	assert.Equal(t, "http://localhost:9090/media/", cfg.AssetBaseURL())
}

func TestParse_LoadTimeout(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want time.Duration
	}{
		{"default", minimalYAML, 10 * time.Second},
		{"explicit", minimalYAML + "playback:\n  load_timeout_ms: 1500\n", 1500 * time.Millisecond},
		{"zero disables", minimalYAML + "playback:\n  load_timeout_ms: 0\n", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Parse([]byte(tt.yaml))
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg.LoadTimeout())
		})
	}

	var cfg Config
	assert.Equal(t, DefaultLoadTimeout, cfg.LoadTimeout())
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr bool
		errMsg  string
	}{
		{
			name:    "no sources",
			yaml:    "playlist:\n  sources: []\n",
			wantErr: true,
			errMsg:  "Sources",
		},
		{
			name:    "unknown source type",
			yaml:    "playlist:\n  sources:\n    - type: lastfm\n",
			wantErr: true,
			errMsg:  "Type",
		},
		{
			name:    "invalid repeat",
			yaml:    minimalYAML + "playback:\n  repeat: shuffle\n",
			wantErr: true,
			errMsg:  "Repeat",
		},
		{
			name:    "volume above one",
			yaml:    minimalYAML + "playback:\n  default_volume: 1.5\n",
			wantErr: true,
			errMsg:  "DefaultVolume",
		},
		{
			name:    "negative load timeout",
			yaml:    minimalYAML + "playback:\n  load_timeout_ms: -1\n",
			wantErr: true,
			errMsg:  "LoadTimeoutMs",
		},
		{
			name:    "prefix without trailing slash",
			yaml:    minimalYAML + "assets:\n  prefix: /audio\n",
			wantErr: true,
			errMsg:  "Prefix",
		},
		{
			name:    "spotify source without credentials",
			yaml:    "playlist:\n  sources:\n    - type: spotify\n      settings:\n        playlist_url: spotify:playlist:abc\n",
			wantErr: true,
			errMsg:  "spotify source requires",
		},
		{
			name: "spotify source with credentials",
			yaml: `
playlist:
  sources:
    - type: spotify
      settings:
        playlist_url: spotify:playlist:abc
spotify:
  client_id: id
  client_secret: secret
  refresh_token: token
`,
		},
		{
			name:    "invalid market length",
			yaml:    minimalYAML + "spotify:\n  market: JAPAN\n",
			wantErr: true,
			errMsg:  "Market",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server.yaml")
	require.NoError(t, os.WriteFile(path, []byte(minimalYAML+"server:\n  control_token: from-file\n"), 0o644))

	t.Setenv("CONTROL_TOKEN", "from-env")
	t.Setenv("SPOTIFY_CLIENT_ID", "env-client")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Server.ControlToken)
	assert.Equal(t, "env-client", cfg.Spotify.ClientID)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestConfig_AssetBaseURL(t *testing.T) {
	tests := []struct {
		name     string
		addr     string
		baseURL  string
		expected string
	}{
		{"port only", ":8080", "", "http://127.0.0.1:8080/audio/"},
		{"all interfaces", "0.0.0.0:7000", "", "http://127.0.0.1:7000/audio/"},
		{"explicit host", "player.local:80", "", "http://player.local:80/audio/"},
		{"explicit base url", ":8080", "https://cdn.example.com/assets", "https://cdn.example.com/assets/"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{
				Server: ServerConfig{Addr: tt.addr},
				Assets: AssetsConfig{Prefix: "/audio/", BaseURL: tt.baseURL},
			}
			assert.Equal(t, tt.expected, cfg.AssetBaseURL())
		})
	}
}
