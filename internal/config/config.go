// Package config loads node settings. Sources are applied in order, later
// ones win: defaults, YAML file, .env file, MNEME_* environment, flags.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/saimonmoore/experiment-autobee/internal/crypto"
	"github.com/saimonmoore/experiment-autobee/internal/pairing"
)

// Config is the node configuration
type Config struct {
	DataDir      string        `yaml:"data_dir"`
	ListenAddr   string        `yaml:"listen_addr"`   // пусто - не принимать входящие соединения
	Peers        []string      `yaml:"peers"`         // адреса узлов для исходящих соединений
	BootstrapKey string        `yaml:"bootstrap_key"` // sync key основного устройства
	Log          LogConfig     `yaml:"log"`
	Pairing      PairingConfig `yaml:"pairing"`
	Metrics      MetricsConfig `yaml:"metrics"`
}

// LogConfig configures the slog handler
type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
}

// PairingConfig holds the handshake timings
type PairingConfig struct {
	RequestDelay  time.Duration `yaml:"request_delay"`
	LoginDelay    time.Duration `yaml:"login_delay"`
	RetryInterval time.Duration `yaml:"retry_interval"`
	MaxAttempts   int           `yaml:"max_attempts"`
	LoginTimeout  time.Duration `yaml:"login_timeout"`
}

// MetricsConfig toggles the /metrics endpoint
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

// LoadOptions names the optional files Load reads
type LoadOptions struct {
	ConfigFile string // YAML
	EnvFile    string // .env
}

// envConfig mirrors Config for envdecode. Unset variables stay zero.
type envConfig struct {
	DataDir        string        `env:"MNEME_DATA_DIR"`
	ListenAddr     string        `env:"MNEME_LISTEN_ADDR"`
	Peers          string        `env:"MNEME_PEERS"` // через запятую
	BootstrapKey   string        `env:"MNEME_BOOTSTRAP_KEY"`
	LogLevel       string        `env:"MNEME_LOG_LEVEL"`
	LogFormat      string        `env:"MNEME_LOG_FORMAT"`
	RequestDelay   time.Duration `env:"MNEME_PAIRING_REQUEST_DELAY"`
	LoginDelay     time.Duration `env:"MNEME_PAIRING_LOGIN_DELAY"`
	RetryInterval  time.Duration `env:"MNEME_PAIRING_RETRY_INTERVAL"`
	MaxAttempts    int           `env:"MNEME_PAIRING_MAX_ATTEMPTS"`
	LoginTimeout   time.Duration `env:"MNEME_PAIRING_LOGIN_TIMEOUT"`
	MetricsEnabled string        `env:"MNEME_METRICS_ENABLED"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		DataDir:    "mneme-data",
		ListenAddr: "127.0.0.1:4077",
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Pairing: PairingConfig{
			RequestDelay:  pairing.DefaultRequestDelay,
			LoginDelay:    pairing.DefaultLoginDelay,
			RetryInterval: pairing.DefaultRetryInterval,
			MaxAttempts:   pairing.DefaultMaxAttempts,
			LoginTimeout:  pairing.DefaultLoginTimeout,
		},
	}
}

// Load builds the configuration from defaults, files and the environment.
// Flags are applied separately with ApplyFlags.
func Load(opts LoadOptions) (*Config, error) {
	cfg := Default()

	if opts.ConfigFile != "" {
		if err := cfg.loadFile(opts.ConfigFile); err != nil {
			return nil, err
		}
	}

	if opts.EnvFile != "" {
		// godotenv не перезаписывает уже заданные переменные
		if err := godotenv.Load(opts.EnvFile); err != nil {
			return nil, fmt.Errorf("failed to load env file %s: %w", opts.EnvFile, err)
		}
	}

	if err := cfg.loadEnv(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

func (c *Config) loadEnv() error {
	var e envConfig
	if err := envdecode.Decode(&e); err != nil {
		if errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
			return nil
		}
		return fmt.Errorf("failed to decode environment: %w", err)
	}

	setString(&c.DataDir, e.DataDir)
	setString(&c.ListenAddr, e.ListenAddr)
	setString(&c.BootstrapKey, e.BootstrapKey)
	setString(&c.Log.Level, e.LogLevel)
	setString(&c.Log.Format, e.LogFormat)

	if e.Peers != "" {
		c.Peers = splitList(e.Peers)
	}

	setDuration(&c.Pairing.RequestDelay, e.RequestDelay)
	setDuration(&c.Pairing.LoginDelay, e.LoginDelay)
	setDuration(&c.Pairing.RetryInterval, e.RetryInterval)
	setDuration(&c.Pairing.LoginTimeout, e.LoginTimeout)
	if e.MaxAttempts != 0 {
		c.Pairing.MaxAttempts = e.MaxAttempts
	}

	if e.MetricsEnabled != "" {
		enabled, err := strconv.ParseBool(e.MetricsEnabled)
		if err != nil {
			return fmt.Errorf("invalid MNEME_METRICS_ENABLED: %w", err)
		}
		c.Metrics.Enabled = enabled
	}

	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, v time.Duration) {
	if v != 0 {
		*dst = v
	}
}

func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}

	return out
}

// Validate checks the configuration
func (c *Config) Validate() error {
	if strings.TrimSpace(c.DataDir) == "" {
		return fmt.Errorf("data_dir cannot be empty")
	}

	if c.BootstrapKey != "" {
		if _, _, err := crypto.ParseSyncKey(c.BootstrapKey); err != nil {
			return fmt.Errorf("invalid bootstrap_key: %w", err)
		}
	}

	if _, err := c.Log.level(); err != nil {
		return err
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return fmt.Errorf("invalid log format %q: must be text or json", c.Log.Format)
	}

	p := c.Pairing
	for name, d := range map[string]time.Duration{
		"request_delay":  p.RequestDelay,
		"login_delay":    p.LoginDelay,
		"retry_interval": p.RetryInterval,
		"login_timeout":  p.LoginTimeout,
	} {
		if d <= 0 {
			return fmt.Errorf("pairing.%s must be positive", name)
		}
	}
	if p.MaxAttempts <= 0 {
		return fmt.Errorf("pairing.max_attempts must be positive")
	}

	return nil
}

func (l LogConfig) level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return 0, fmt.Errorf("invalid log level %q: %w", l.Level, err)
	}

	return level, nil
}

// NewLogger builds a slog logger writing to w
func (l LogConfig) NewLogger(w io.Writer) (*slog.Logger, error) {
	level, err := l.level()
	if err != nil {
		return nil, err
	}

	opts := &slog.HandlerOptions{Level: level}
	if l.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}

	return slog.New(slog.NewTextHandler(w, opts)), nil
}
