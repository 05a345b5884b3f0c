package wsbus

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/trace"
)

// HubConfig configures a Hub.
type HubConfig struct {
	// Path is the WebSocket endpoint path. Default: "/ws".
	Path string

	// HandshakeTimeout bounds the wait for the hello frame. Default: 5s.
	HandshakeTimeout time.Duration

	// ReadTimeout is how long a connection may stay silent, pongs included.
	// Default: 60s.
	ReadTimeout time.Duration

	// WriteTimeout bounds each write. Default: 10s.
	WriteTimeout time.Duration

	// PingInterval is the keepalive period. Must be below ReadTimeout.
	// Default: 25s.
	PingInterval time.Duration

	// SendQueueSize is the per-connection outbound buffer, in frames. A
	// connection whose buffer is full is dropped. Default: 256.
	SendQueueSize int

	// MaxMessageSize is the largest accepted frame in bytes. Default: 1MB.
	MaxMessageSize int64

	// CheckOrigin validates the Origin header. Nil accepts same-origin
	// requests only (gorilla/websocket default).
	CheckOrigin func(r *http.Request) bool

	// MetricsNamespace prefixes every hub and HTTP metric name.
	// Default: "storagesync".
	MetricsNamespace string

	// Registry receives the hub metrics and is served at /metrics.
	// Default: a fresh registry per hub.
	Registry *prometheus.Registry

	// TracerProvider creates the request spans. Default: the global provider.
	TracerProvider trace.TracerProvider

	// Logger is the hub logger. Default: slog.Default().
	Logger *slog.Logger
}

// DefaultHubConfig returns the default hub configuration.
func DefaultHubConfig() HubConfig {
	return HubConfig{
		Path:             "/ws",
		HandshakeTimeout: 5 * time.Second,
		ReadTimeout:      60 * time.Second,
		WriteTimeout:     10 * time.Second,
		PingInterval:     25 * time.Second,
		SendQueueSize:    256,
		MaxMessageSize:   1 << 20,
		MetricsNamespace: "storagesync",
	}
}

// withDefaults fills zero fields from DefaultHubConfig.
func (c HubConfig) withDefaults() HubConfig {
	d := DefaultHubConfig()
	if c.Path == "" {
		c.Path = d.Path
	}
	if c.HandshakeTimeout <= 0 {
		c.HandshakeTimeout = d.HandshakeTimeout
	}
	if c.ReadTimeout <= 0 {
		c.ReadTimeout = d.ReadTimeout
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = d.WriteTimeout
	}
	if c.PingInterval <= 0 || c.PingInterval >= c.ReadTimeout {
		c.PingInterval = c.ReadTimeout * 2 / 5
	}
	if c.SendQueueSize <= 0 {
		c.SendQueueSize = d.SendQueueSize
	}
	if c.MaxMessageSize <= 0 {
		c.MaxMessageSize = d.MaxMessageSize
	}
	if c.MetricsNamespace == "" {
		c.MetricsNamespace = d.MetricsNamespace
	}
	if c.Registry == nil {
		c.Registry = prometheus.NewRegistry()
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	return c
}
