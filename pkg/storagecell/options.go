package storagecell

import (
	"log/slog"

	"github.com/vango-dev/storagesync/pkg/reactive"
	"github.com/vango-dev/storagesync/pkg/storage"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// tracerName is the instrumentation name for cell spans.
const tracerName = "github.com/vango-dev/storagesync/pkg/storagecell"

// Option configures a Cell.
type Option func(*config)

type config struct {
	area    storage.Area
	logger  *slog.Logger
	metrics *Metrics
	tracer  trace.Tracer
	owner   *reactive.Owner
}

func defaultConfig() config {
	return config{
		area:   storage.Local,
		logger: slog.Default(),
	}
}

// WithArea selects the storage area. Default: storage.Local.
func WithArea(area storage.Area) Option {
	return func(c *config) {
		c.area = area
	}
}

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithMetrics records write-backs and syncs in m.
func WithMetrics(m *Metrics) Option {
	return func(c *config) {
		c.metrics = m
	}
}

// WithTracer sets the tracer used for write-back and sync spans.
// Default: the tracer from the global OpenTelemetry provider.
func WithTracer(tracer trace.Tracer) Option {
	return func(c *config) {
		c.tracer = tracer
	}
}

// WithOwner ties the cell to a UI lifecycle: Attach runs just before owner
// mounts and Close runs when it unmounts.
func WithOwner(owner *reactive.Owner) Option {
	return func(c *config) {
		c.owner = owner
	}
}

func (c *config) resolveTracer() trace.Tracer {
	if c.tracer != nil {
		return c.tracer
	}
	return otel.Tracer(tracerName)
}
