package shared

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Database  DatabaseConfig  `toml:"database"`
	Cache     CacheConfig     `toml:"cache"`
	Log       LogConfig       `toml:"log"`
	Providers ProvidersConfig `toml:"providers"`
	Timing    TimingConfig    `toml:"timing"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// CacheConfig points at the bbolt file backing catalog identifier lookups.
type CacheConfig struct {
	Path string `toml:"path"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"` // used when stderr belongs to the TUI
}

// ProvidersConfig contains endpoints and credentials for catalog and artwork providers.
type ProvidersConfig struct {
	UserAgent           string   `toml:"user_agent"`
	HTTPTimeout         Duration `toml:"http_timeout"`
	MusicBrainzURL      string   `toml:"musicbrainz_url"`
	CoverArtURL         string   `toml:"coverart_url"`
	AudioDBURL          string   `toml:"audiodb_url"`
	AudioDBKey          string   `toml:"audiodb_key"`
	WikidataURL         string   `toml:"wikidata_url"`
	CommonsURL          string   `toml:"commons_url"`
	DiscogsURL          string   `toml:"discogs_url"`
	MixcloudURL         string   `toml:"mixcloud_url"`
	MixcloudOEmbedURL   string   `toml:"mixcloud_oembed_url"`
	SpotifyAPIURL       string   `toml:"spotify_api_url"`
	SpotifyTokenURL     string   `toml:"spotify_token_url"`
	SpotifyClientID     string   `toml:"spotify_client_id"`
	SpotifyClientSecret string   `toml:"spotify_client_secret"`
}

// TimingConfig holds the interaction timings for dragging, the rack and bulk import.
type TimingConfig struct {
	HoverThrottle   Duration `toml:"hover_throttle"`
	GestureInterval Duration `toml:"gesture_interval"`
	SpinDuration    Duration `toml:"spin_duration"`
	SnapDuration    Duration `toml:"snap_duration"`
	SettleDuration  Duration `toml:"settle_duration"`
	ImportDelay     Duration `toml:"import_delay"`
	SearchDebounce  Duration `toml:"search_debounce"`
}

// Duration wraps [time.Duration] so it can be written as "100ms" in TOML.
type Duration struct {
	time.Duration
}

// UnmarshalText implements [encoding.TextUnmarshaler].
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("%w: bad duration %q: %v", ErrInvalidConfig, string(text), err)
	}
	d.Duration = parsed
	return nil
}

// MarshalText implements [encoding.TextMarshaler].
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// SpotifyEnabled reports whether client credentials are configured for the commercial catalog provider.
func (p ProvidersConfig) SpotifyEnabled() bool {
	return p.SpotifyClientID != "" && p.SpotifyClientSecret != ""
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Keys missing from the file keep the embedded defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s: %w", path, os.ErrExist)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
