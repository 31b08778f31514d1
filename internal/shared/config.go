package shared

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Credentials CredentialsConfig `toml:"credentials"`
	Database    DatabaseConfig    `toml:"database"`
	Server      ServerConfig      `toml:"server"`
	Player      PlayerConfig      `toml:"player"`
}

// CredentialsConfig contains service-specific credentials.
type CredentialsConfig struct {
	Spotify SpotifyConfig `toml:"spotify"`
}

// SpotifyConfig contains Spotify API credentials.
type SpotifyConfig struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
	RedirectURI  string `toml:"redirect_uri"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// ServerConfig contains OAuth callback server settings and the backend
// proxy address playback requests are routed through.
type ServerConfig struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	ProxyURL string `toml:"proxy_url"`
}

// PlayerConfig contains playback engine tunables.
//
// The delays and the activation cooldown exist because upstream device
// transfer and queue convergence are time-based rather than signaled. The
// shipped values are empirical defaults, not an upstream SLA; any positive
// value keeps the engine correct.
type PlayerConfig struct {
	DeviceName               string  `toml:"device_name"`
	Volume                   float64 `toml:"volume"`
	LogPath                  string  `toml:"log_path"`
	ActivationSettleMS       int     `toml:"activation_settle_ms"`
	ResumeSettleMS           int     `toml:"resume_settle_ms"`
	ActivationCooldownS      int     `toml:"activation_cooldown_s"`
	NowPollIntervalS         int     `toml:"now_poll_interval_s"`
	QueuePollIntervalS       int     `toml:"queue_poll_interval_s"`
	HistoryPollIntervalS     int     `toml:"history_poll_interval_s"`
	QueueRefreshDelayMS      int     `toml:"queue_refresh_delay_ms"`
	HistoryInvalidateDelayMS int     `toml:"history_invalidate_delay_ms"`
}

// TUILogPath returns the log file path used while the TUI owns the
// terminal, defaulting to a file in the system temp directory.
func (p PlayerConfig) TUILogPath() string {
	if p.LogPath != "" {
		return p.LogPath
	}
	return filepath.Join(os.TempDir(), "ba-client-tui.log")
}

// ActivationSettle returns the wait applied after a device activation call.
func (p PlayerConfig) ActivationSettle() time.Duration {
	return time.Duration(p.ActivationSettleMS) * time.Millisecond
}

// ResumeSettle returns the wait applied before resuming playback on a newly ready device.
func (p PlayerConfig) ResumeSettle() time.Duration {
	return time.Duration(p.ResumeSettleMS) * time.Millisecond
}

// ActivationCooldown returns the minimum interval between device activation attempts.
func (p PlayerConfig) ActivationCooldown() time.Duration {
	return time.Duration(p.ActivationCooldownS) * time.Second
}

// NowPollInterval returns the currently-playing polling cadence.
func (p PlayerConfig) NowPollInterval() time.Duration {
	return time.Duration(p.NowPollIntervalS) * time.Second
}

// QueuePollInterval returns the queue polling cadence.
func (p PlayerConfig) QueuePollInterval() time.Duration {
	return time.Duration(p.QueuePollIntervalS) * time.Second
}

// HistoryPollInterval returns the recently-played polling cadence.
func (p PlayerConfig) HistoryPollInterval() time.Duration {
	return time.Duration(p.HistoryPollIntervalS) * time.Second
}

// QueueRefreshDelay returns the wait before refetching the queue after a play intent.
func (p PlayerConfig) QueueRefreshDelay() time.Duration {
	return time.Duration(p.QueueRefreshDelayMS) * time.Millisecond
}

// HistoryInvalidateDelay returns the wait before refetching history after a transition.
func (p PlayerConfig) HistoryInvalidateDelay() time.Duration {
	return time.Duration(p.HistoryInvalidateDelayMS) * time.Millisecond
}

// Validate checks that every player tunable is positive.
func (p PlayerConfig) Validate() error {
	for name, v := range map[string]int{
		"activation_settle_ms":        p.ActivationSettleMS,
		"resume_settle_ms":            p.ResumeSettleMS,
		"activation_cooldown_s":       p.ActivationCooldownS,
		"now_poll_interval_s":         p.NowPollIntervalS,
		"queue_poll_interval_s":       p.QueuePollIntervalS,
		"history_poll_interval_s":     p.HistoryPollIntervalS,
		"queue_refresh_delay_ms":      p.QueueRefreshDelayMS,
		"history_invalidate_delay_ms": p.HistoryInvalidateDelayMS,
	} {
		if v <= 0 {
			return fmt.Errorf("%w: player.%s must be positive", ErrInvalidConfig, name)
		}
	}
	if p.Volume < 0 || p.Volume > 1 {
		return fmt.Errorf("%w: player.volume must be between 0 and 1", ErrInvalidConfig)
	}
	return nil
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := config.Player.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
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
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
