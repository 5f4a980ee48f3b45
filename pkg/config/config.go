package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the application configuration.
type Config struct {
	Log      LogConfig      `yaml:"log"`
	DB       DBConfig       `yaml:"db"`
	Server   ServerConfig   `yaml:"server"`
	Ticker   TickerConfig   `yaml:"ticker"`
	Speech   SpeechConfig   `yaml:"speech"`
	Queue    QueueConfig    `yaml:"queue"`
	Announce AnnounceConfig `yaml:"announce"`
	Modes    ModesConfig    `yaml:"modes"`
	Earcon   EarconConfig   `yaml:"earcon"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Server LogSettings `yaml:"server"`
}

// LogSettings holds settings for a specific logger.
type LogSettings struct {
	Path  string `yaml:"path"`
	Level string `yaml:"level"`
}

// DBConfig holds database settings.
type DBConfig struct {
	Path string `yaml:"path"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Address string `yaml:"address"`
}

// TickerConfig holds the main loop cadence.
type TickerConfig struct {
	Interval Duration `yaml:"interval"`
}

// SpeechConfig holds settings for the speech sink.
type SpeechConfig struct {
	Engine  string `yaml:"engine"` // "sapi", "stub"
	VoiceID string `yaml:"voice"`
	Rate    int    `yaml:"rate"` // -10..10, engine dependent
}

// QueueConfig holds settings for the clipboard output queue.
type QueueConfig struct {
	DrainInterval Duration `yaml:"drain_interval"`
}

// AnnounceConfig holds settings for the announcement channels.
type AnnounceConfig struct {
	DedupWindow Duration `yaml:"dedup_window"`
}

// ModesConfig holds the mode arbitration priority list.
// Order matters: the first active mode in this list wins.
type ModesConfig struct {
	Priority []string `yaml:"priority"`
}

// EarconConfig holds settings for audio cues.
type EarconConfig struct {
	Enabled bool    `yaml:"enabled"`
	Volume  float64 `yaml:"volume"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Log: LogConfig{
			Server: LogSettings{
				Path:  "./logs/server.log",
				Level: "INFO",
			},
		},
		DB: DBConfig{
			Path: "./data/uivox.db",
		},
		Server: ServerConfig{
			Address: "localhost:1923",
		},
		Ticker: TickerConfig{
			Interval: Duration(50 * time.Millisecond),
		},
		Speech: SpeechConfig{
			Engine: "sapi",
			Rate:   0,
		},
		Queue: QueueConfig{
			DrainInterval: Duration(25 * time.Millisecond),
		},
		Announce: AnnounceConfig{
			DedupWindow: Duration(500 * time.Millisecond),
		},
		Modes: ModesConfig{
			Priority: []string{
				"psyche_lock",
				"trial",
				"evidence",
				"investigation",
				"menu",
				"dialogue",
			},
		},
		Earcon: EarconConfig{
			Enabled: true,
			Volume:  0.8,
		},
	}
}

// Load loads the configuration from the given path.
// If the file does not exist, it creates it with default values.
// If the file exists, it merges defaults with existing values but does NOT
// save back to disk (to preserve user formatting and comments).
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	if _, err := os.Stat(path); err == nil {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}

		// Env fallbacks, never saved back to disk
		if cfg.Speech.VoiceID == "" {
			if v := os.Getenv("UIVOX_VOICE"); v != "" {
				cfg.Speech.VoiceID = v
			}
		}
		if addr := os.Getenv("UIVOX_ADDRESS"); addr != "" {
			cfg.Server.Address = addr
		}

		return cfg, validate(cfg)
	}

	if err := Save(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to save config file: %w", err)
	}

	return cfg, validate(cfg)
}

func validate(cfg *Config) error {
	if time.Duration(cfg.Announce.DedupWindow) < 0 {
		return fmt.Errorf("announce.dedup_window must not be negative")
	}
	if time.Duration(cfg.Queue.DrainInterval) <= 0 {
		return fmt.Errorf("queue.drain_interval must be positive")
	}
	if len(cfg.Modes.Priority) == 0 {
		return fmt.Errorf("modes.priority must list at least one mode")
	}
	return nil
}

// Save writes the configuration to the path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(`# uivox Configuration
# -------------------
# Duration units: ns, us (or µs), ms, s, m, h, d (day), w (week)
# modes.priority is evaluated top to bottom; the first active mode wins.

`)
	data = append(header, data...)

	// Inject comments for enum fields
	reEngine := regexp.MustCompile(`(?m)^(\s+)engine:`)
	data = reEngine.ReplaceAll(data, []byte("${1}# Options: sapi, stub\n${1}engine:"))

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// GenerateDefault creates a default config file at the given path.
// Returns nil if the file already exists.
func GenerateDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	return Save(path, DefaultConfig())
}
