package shared

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	t.Run("Player Defaults", func(t *testing.T) {
		if config.Player.DeviceName != "ba-client" {
			t.Errorf("expected device name 'ba-client', got %s", config.Player.DeviceName)
		}
		if config.Player.ActivationCooldownS != 60 {
			t.Errorf("expected 60s activation cooldown, got %d", config.Player.ActivationCooldownS)
		}
		if config.Player.Volume != 0.5 {
			t.Errorf("expected volume 0.5, got %v", config.Player.Volume)
		}
	})

	t.Run("TUI Log Path", func(t *testing.T) {
		if got := config.Player.TUILogPath(); got != "tmp/ba-client-tui.log" {
			t.Errorf("unexpected log path %s", got)
		}

		unset := config.Player
		unset.LogPath = ""
		if got := unset.TUILogPath(); !strings.HasSuffix(got, "ba-client-tui.log") || got == "tmp/ba-client-tui.log" {
			t.Errorf("expected a temp dir fallback, got %s", got)
		}
	})

	t.Run("Duration Accessors", func(t *testing.T) {
		if got := config.Player.ActivationSettle(); got != 500*time.Millisecond {
			t.Errorf("expected 500ms settle, got %v", got)
		}
		if got := config.Player.ResumeSettle(); got != time.Second {
			t.Errorf("expected 1s resume settle, got %v", got)
		}
		if got := config.Player.ActivationCooldown(); got != time.Minute {
			t.Errorf("expected 1m cooldown, got %v", got)
		}
		if got := config.Player.QueueRefreshDelay(); got != 750*time.Millisecond {
			t.Errorf("expected 750ms queue refresh delay, got %v", got)
		}
	})

	t.Run("Server Defaults", func(t *testing.T) {
		if config.Server.Port != 8080 {
			t.Errorf("expected port 8080, got %d", config.Server.Port)
		}
		if config.Server.ProxyURL != "http://localhost:4000/api/spotify" {
			t.Errorf("unexpected proxy URL %s", config.Server.ProxyURL)
		}
	})

	t.Run("Validates", func(t *testing.T) {
		if err := config.Player.Validate(); err != nil {
			t.Errorf("expected the default config to validate, got %v", err)
		}
	})
}

func TestPlayerConfigValidate(t *testing.T) {
	valid := DefaultConfig().Player

	t.Run("Rejects Zero Tunables", func(t *testing.T) {
		config := valid
		config.NowPollIntervalS = 0
		if err := config.Validate(); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("Rejects Negative Delays", func(t *testing.T) {
		config := valid
		config.QueueRefreshDelayMS = -1
		if err := config.Validate(); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("Rejects Out Of Range Volume", func(t *testing.T) {
		config := valid
		config.Volume = 1.5
		if err := config.Validate(); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})
}

func TestLoadConfig(t *testing.T) {
	t.Run("Missing File", func(t *testing.T) {
		if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
			t.Error("expected an error for a missing file")
		}
	})

	t.Run("Valid File", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")
		if err := os.WriteFile(path, exampleConf, 0644); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		config, err := LoadConfig(path)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if config.Player.DeviceName != "ba-client" {
			t.Errorf("unexpected device name %s", config.Player.DeviceName)
		}
	})

	t.Run("Invalid Player Tunable", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")
		content := `
[player]
device_name = "test"
volume = 0.5
activation_settle_ms = 0
resume_settle_ms = 1000
activation_cooldown_s = 60
now_poll_interval_s = 5
queue_poll_interval_s = 30
history_poll_interval_s = 30
queue_refresh_delay_ms = 750
history_invalidate_delay_ms = 1000
`
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		if _, err := LoadConfig(path); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})
}

func TestCreateConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	if err := CreateConfigFile(path); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected the file to exist: %v", err)
	}

	if err := CreateConfigFile(path); err == nil {
		t.Error("expected an error when the file already exists")
	}
}
