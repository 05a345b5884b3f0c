package wsbus

import (
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vango-dev/storagesync/pkg/middleware"
)

// Hub relays storage events between connected clients.
//
// Routes:
//   - GET {Path}: WebSocket endpoint
//   - GET /healthz: liveness
//   - GET /metrics: Prometheus metrics from the configured registry
//
// Every route is instrumented with request metrics and a server span.
type Hub struct {
	config   HubConfig
	logger   *slog.Logger
	upgrader websocket.Upgrader
	metrics  *hubMetrics
	router   chi.Router

	conns  map[*hubConn]struct{}
	mu     sync.RWMutex
	closed bool
}

// hubConn is one connected client.
type hubConn struct {
	hub       *Hub
	conn      *websocket.Conn
	contextID string
	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

// NewHub creates a hub. Zero fields of config take their defaults.
func NewHub(config HubConfig) *Hub {
	config = config.withDefaults()

	h := &Hub{
		config: config,
		logger: config.Logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     config.CheckOrigin,
		},
		metrics: newHubMetrics(config.Registry, config.MetricsNamespace),
		conns:   make(map[*hubConn]struct{}),
	}

	r := chi.NewRouter()
	r.Use(
		chimw.Recoverer,
		middleware.Prometheus(
			middleware.WithRegistry(config.Registry),
			middleware.WithNamespace(config.MetricsNamespace),
		),
		middleware.OpenTelemetry(
			middleware.WithTracerName("github.com/vango-dev/storagesync/pkg/wsbus"),
			middleware.WithTracerProvider(config.TracerProvider),
			middleware.WithRequestFilter(traced),
		),
	)
	r.Get(config.Path, h.handleWebSocket)
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.HandlerFor(config.Registry, promhttp.HandlerOpts{}))
	h.router = r

	return h
}

// traced reports whether a request gets a span. Health checks and scrapes
// are skipped.
func traced(r *http.Request) bool {
	return r.URL.Path != "/healthz" && r.URL.Path != "/metrics"
}

// ServeHTTP implements http.Handler.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

// Len returns the number of registered connections.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

// Close disconnects every client. Connections arriving afterwards are refused.
func (h *Hub) Close() error {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil
	}
	h.closed = true
	conns := make([]*hubConn, 0, len(h.conns))
	for c := range h.conns {
		conns = append(conns, c)
	}
	h.mu.Unlock()

	for _, c := range conns {
		c.close(websocket.CloseGoingAway, "hub shutting down")
	}
	return nil
}

// handleWebSocket upgrades the request and runs the connection until it ends.
func (h *Hub) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", "error", err)
		return
	}

	conn.SetReadLimit(h.config.MaxMessageSize)
	conn.SetReadDeadline(time.Now().Add(h.config.HandshakeTimeout))

	// Wait for hello
	_, msg, err := conn.ReadMessage()
	if err != nil {
		h.logger.Warn("handshake read failed", "error", err)
		conn.Close()
		return
	}
	frame, err := DecodeFrame(msg)
	if err == nil && frame.Type != FrameHello {
		err = ErrMissingHello
	}
	if err != nil {
		h.metrics.frameErrors.WithLabelValues("handshake").Inc()
		h.logger.Warn("handshake rejected", "error", err)
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.ClosePolicyViolation, err.Error()),
			time.Now().Add(time.Second))
		conn.Close()
		return
	}

	c := &hubConn{
		hub:       h,
		conn:      conn,
		contextID: frame.Context,
		send:      make(chan []byte, h.config.SendQueueSize),
		done:      make(chan struct{}),
	}
	if !h.register(c) {
		c.close(websocket.CloseGoingAway, "hub shutting down")
		return
	}

	go c.writePump()
	c.readPump()
}

func (h *Hub) register(c *hubConn) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return false
	}
	h.conns[c] = struct{}{}
	h.metrics.connections.Inc()
	h.logger.Info("client connected", "context", c.contextID)
	return true
}

func (h *Hub) unregister(c *hubConn) {
	h.mu.Lock()
	_, ok := h.conns[c]
	delete(h.conns, c)
	h.mu.Unlock()

	if ok {
		h.metrics.connections.Dec()
		h.logger.Info("client disconnected", "context", c.contextID)
	}
}

// relay queues data on every connection except from.
func (h *Hub) relay(from *hubConn, data []byte) {
	h.mu.RLock()
	targets := make([]*hubConn, 0, len(h.conns))
	for c := range h.conns {
		if c != from {
			targets = append(targets, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range targets {
		select {
		case c.send <- data:
			h.metrics.framesRelayed.Inc()
		case <-c.done:
		default:
			h.metrics.framesDropped.Inc()
			h.logger.Warn("dropping slow client", "context", c.contextID)
			go c.close(websocket.CloseTryAgainLater, "send queue full")
		}
	}
}

// readPump reads frames until the connection fails.
func (c *hubConn) readPump() {
	defer c.close(websocket.CloseNormalClosure, "")

	h := c.hub
	c.conn.SetReadDeadline(time.Now().Add(h.config.ReadTimeout))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(h.config.ReadTimeout))
	})

	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				h.logger.Error("read error", "context", c.contextID, "error", err)
			}
			return
		}
		c.conn.SetReadDeadline(time.Now().Add(h.config.ReadTimeout))

		frame, err := DecodeFrame(msg)
		if err != nil {
			reason := "decode"
			if errors.Is(err, ErrUnknownFrame) {
				reason = "unknown"
			}
			h.metrics.frameErrors.WithLabelValues(reason).Inc()
			h.logger.Warn("frame rejected", "context", c.contextID, "error", err)
			continue
		}
		if frame.Type != FrameEvent {
			continue
		}

		frame.Context = c.contextID
		data, err := EncodeFrame(frame)
		if err != nil {
			h.metrics.frameErrors.WithLabelValues("encode").Inc()
			continue
		}
		h.relay(c, data)
	}
}

// writePump writes queued frames and keepalive pings.
func (c *hubConn) writePump() {
	h := c.hub
	ticker := time.NewTicker(h.config.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return

		case data := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(h.config.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				h.logger.Warn("write failed", "context", c.contextID, "error", err)
				c.close(websocket.CloseInternalServerErr, "")
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(h.config.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.close(websocket.CloseInternalServerErr, "")
				return
			}
		}
	}
}

// close unregisters the connection and closes the socket once.
func (c *hubConn) close(code int, reason string) {
	c.closeOnce.Do(func() {
		c.hub.unregister(c)
		close(c.done)
		c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(code, reason),
			time.Now().Add(time.Second))
		c.conn.Close()
	})
}
