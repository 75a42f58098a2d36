package shared

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.Database.Path != "./shelf.db" {
			t.Errorf("expected database path ./shelf.db, got %s", config.Database.Path)
		}

		if config.Timing.HoverThrottle.Duration != 100*time.Millisecond {
			t.Errorf("expected hover throttle 100ms, got %v", config.Timing.HoverThrottle)
		}

		if config.Timing.ImportDelay.Duration != time.Second {
			t.Errorf("expected import delay 1s, got %v", config.Timing.ImportDelay)
		}

		if config.Providers.MusicBrainzURL != "https://musicbrainz.org/ws/2" {
			t.Errorf("expected musicbrainz url, got %s", config.Providers.MusicBrainzURL)
		}

		if config.Providers.SpotifyEnabled() {
			t.Error("expected spotify to be disabled without credentials")
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load created config: %v", err)
		}

		defaultConfig := DefaultConfig()
		if config.Database.Path != defaultConfig.Database.Path {
			t.Errorf("created config database path doesn't match default")
		}

		if err := CreateConfigFile(configPath); !errors.Is(err, os.ErrExist) {
			t.Errorf("creating config file again should fail with ErrExist, got %v", err)
		}
	})

	t.Run("LoadConfig", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		testConfig := `[database]
path = "/custom/path.db"

[providers]
spotify_client_id = "id"
spotify_client_secret = "secret"

[timing]
spin_duration = "4s"
`
		if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.Database.Path != "/custom/path.db" {
			t.Errorf("expected database path /custom/path.db, got %s", config.Database.Path)
		}

		if config.Timing.SpinDuration.Duration != 4*time.Second {
			t.Errorf("expected spin duration 4s, got %v", config.Timing.SpinDuration)
		}

		if config.Timing.SettleDuration.Duration != 600*time.Millisecond {
			t.Errorf("expected untouched settle duration to keep default, got %v", config.Timing.SettleDuration)
		}

		if !config.Providers.SpotifyEnabled() {
			t.Error("expected spotify to be enabled")
		}
	})

	t.Run("LoadConfig rejects bad durations", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")
		if err := os.WriteFile(configPath, []byte("[timing]\nspin_duration = \"soon\"\n"), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		if _, err := LoadConfig(configPath); err == nil {
			t.Error("expected parse error for bad duration")
		}
	})
}
