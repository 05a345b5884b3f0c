package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/vango-dev/storagesync/internal/errors"
)

const (
	// EnvPrefix prefixes every environment variable read by Load.
	EnvPrefix = "STORAGESYNC_"

	// DefaultAddr is the default listen address.
	DefaultAddr = ":7070"

	// DefaultPath is the default WebSocket endpoint.
	DefaultPath = "/ws"
)

// Config is the storagehub configuration.
type Config struct {
	// Addr is the HTTP listen address.
	Addr string `json:"addr,omitempty" yaml:"addr" env:"ADDR"`

	// Path is the WebSocket endpoint path.
	Path string `json:"path,omitempty" yaml:"path" env:"PATH"`

	// HandshakeTimeout bounds the wait for a client's hello frame.
	HandshakeTimeout Duration `json:"handshake_timeout,omitempty" yaml:"handshake_timeout" env:"HANDSHAKE_TIMEOUT"`

	// ReadTimeout is the idle read deadline, extended by every pong.
	ReadTimeout Duration `json:"read_timeout,omitempty" yaml:"read_timeout" env:"READ_TIMEOUT"`

	// WriteTimeout bounds each frame write.
	WriteTimeout Duration `json:"write_timeout,omitempty" yaml:"write_timeout" env:"WRITE_TIMEOUT"`

	// PingInterval is the keepalive period. Must be below ReadTimeout.
	PingInterval Duration `json:"ping_interval,omitempty" yaml:"ping_interval" env:"PING_INTERVAL"`

	// SendQueue is the per-connection outbound buffer, in frames.
	SendQueue int `json:"send_queue,omitempty" yaml:"send_queue" env:"SEND_QUEUE"`

	// MaxMessageBytes limits the size of an incoming frame.
	MaxMessageBytes int64 `json:"max_message_bytes,omitempty" yaml:"max_message_bytes" env:"MAX_MESSAGE_BYTES"`

	// MetricsNamespace prefixes the metric names served at /metrics.
	MetricsNamespace string `json:"metrics_namespace,omitempty" yaml:"metrics_namespace" env:"METRICS_NAMESPACE"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `json:"log_level,omitempty" yaml:"log_level" env:"LOG_LEVEL"`

	// Storage configures the durable local area used by the CLI clients.
	Storage StorageConfig `json:"storage,omitempty" yaml:"storage" envPrefix:"STORAGE_"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// StorageConfig configures an S3 bucket as the shared local storage area.
// An empty Bucket selects in-memory storage.
type StorageConfig struct {
	Bucket          string `json:"bucket,omitempty" yaml:"bucket" env:"BUCKET"`
	Prefix          string `json:"prefix,omitempty" yaml:"prefix" env:"PREFIX"`
	Region          string `json:"region,omitempty" yaml:"region" env:"REGION"`
	Endpoint        string `json:"endpoint,omitempty" yaml:"endpoint" env:"ENDPOINT"`
	AccessKeyID     string `json:"-" yaml:"-" env:"ACCESS_KEY_ID"`
	SecretAccessKey string `json:"-" yaml:"-" env:"SECRET_ACCESS_KEY"`
}

// Enabled reports whether a bucket is configured.
func (s StorageConfig) Enabled() bool {
	return s.Bucket != ""
}

// New creates a Config with default values.
func New() *Config {
	return &Config{
		Addr:             DefaultAddr,
		Path:             DefaultPath,
		HandshakeTimeout: Duration(5 * time.Second),
		ReadTimeout:      Duration(60 * time.Second),
		WriteTimeout:     Duration(10 * time.Second),
		PingInterval:     Duration(25 * time.Second),
		SendQueue:        256,
		MaxMessageBytes:  1 << 20,
		MetricsNamespace: "storagesync",
		LogLevel:         "info",
		Storage: StorageConfig{
			Region: "us-east-1",
		},
	}
}

// Load builds the configuration from defaults, the file at path (skipped when
// path is empty) and the environment, then validates it.
func Load(path string) (*Config, error) {
	cfg := New()
	if path != "" {
		var err error
		if cfg, err = LoadFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile reads configuration from the file at path. Files ending in .yaml
// or .yml are parsed as YAML, everything else as JSON. Fields missing from
// the file keep their defaults.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("S101").
				WithDetail("No configuration file at " + path).
				WithSuggestion("Check the --config flag or STORAGESYNC_CONFIG")
		}
		return nil, errors.New("S102").Wrap(err)
	}

	cfg := New()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	default:
		err = json.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, errors.New("S102").
			WithDetail("Failed to parse " + filepath.Base(path) + ": " + err.Error()).
			WithSuggestion("Check that the file is valid JSON or YAML")
	}

	cfg.configPath = path
	return cfg, nil
}

// ApplyEnv overrides fields with the STORAGESYNC_* variables that are set.
func (c *Config) ApplyEnv() error {
	if err := env.ParseWithOptions(c, env.Options{Prefix: EnvPrefix}); err != nil {
		return errors.New("S103").Wrap(err)
	}
	return nil
}

// File returns the file the config was loaded from, if any.
func (c *Config) File() string {
	return c.configPath
}

// Validate checks that the configuration values are usable.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return errors.New("S104").WithDetail("addr must not be empty")
	case !strings.HasPrefix(c.Path, "/"):
		return errors.New("S104").WithDetail(fmt.Sprintf("path %q must start with /", c.Path))
	case c.ReadTimeout <= 0 || c.WriteTimeout <= 0 || c.HandshakeTimeout <= 0:
		return errors.New("S104").WithDetail("timeouts must be positive")
	case c.PingInterval <= 0 || c.PingInterval >= c.ReadTimeout:
		return errors.New("S104").
			WithDetail(fmt.Sprintf("ping_interval %s must be positive and below read_timeout %s", c.PingInterval, c.ReadTimeout)).
			WithSuggestion("Use roughly 40% of read_timeout")
	case c.SendQueue <= 0:
		return errors.New("S104").WithDetail("send_queue must be positive")
	case c.MaxMessageBytes <= 0:
		return errors.New("S104").WithDetail("max_message_bytes must be positive")
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return errors.New("S104").Wrap(err)
	}
	return nil
}

// ParseLevel maps a log level name to a slog.Level.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("invalid log level %q", s)
	}
	return level, nil
}

// Duration is a time.Duration written as a string such as "10s" in files and
// environment variables.
type Duration time.Duration

// Std returns d as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

func (d Duration) String() string {
	return time.Duration(d).String()
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	*d = Duration(parsed)
	return nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	return d.UnmarshalText([]byte(s))
}
