package wsbus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/vango-dev/storagesync/pkg/storage"
)

// ErrClientClosed is returned by Publish after Close.
var ErrClientClosed = errors.New("wsbus: client closed")

// Client is a storage.Bus connected to a Hub.
//
// Publish delivers the event to the client's own subscribers (except the
// source) and sends it to the hub, which relays it to every other client.
// Relayed events are delivered to subscribers on the client's read goroutine.
type Client struct {
	id     string
	conn   *websocket.Conn
	local  *storage.LocalBus
	logger *slog.Logger

	writeTimeout time.Duration
	writeMu      sync.Mutex

	done   chan struct{}
	closed atomic.Bool

	errMu sync.Mutex
	err   error
}

// ClientOption configures a Client.
type ClientOption func(*clientConfig)

type clientConfig struct {
	id               string
	logger           *slog.Logger
	handshakeTimeout time.Duration
	writeTimeout     time.Duration
	dialer           *websocket.Dialer
}

// WithClientID sets the context ID sent in the hello frame.
// Default: a random UUID.
func WithClientID(id string) ClientOption {
	return func(c *clientConfig) {
		c.id = id
	}
}

// WithClientLogger sets the logger. Default: slog.Default().
func WithClientLogger(logger *slog.Logger) ClientOption {
	return func(c *clientConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithWriteTimeout bounds each frame write. Default: 10s.
func WithWriteTimeout(d time.Duration) ClientOption {
	return func(c *clientConfig) {
		if d > 0 {
			c.writeTimeout = d
		}
	}
}

// WithDialer replaces the WebSocket dialer.
func WithDialer(d *websocket.Dialer) ClientOption {
	return func(c *clientConfig) {
		c.dialer = d
	}
}

// Dial connects to the hub at url (e.g. "ws://localhost:7070/ws") and sends
// the hello frame.
func Dial(ctx context.Context, url string, opts ...ClientOption) (*Client, error) {
	cfg := clientConfig{
		id:               uuid.NewString(),
		logger:           slog.Default(),
		handshakeTimeout: 5 * time.Second,
		writeTimeout:     10 * time.Second,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	dialer := cfg.dialer
	if dialer == nil {
		dialer = &websocket.Dialer{HandshakeTimeout: cfg.handshakeTimeout}
	}

	conn, _, err := dialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("wsbus: dial %s: %w", url, err)
	}

	c := &Client{
		id:           cfg.id,
		conn:         conn,
		local:        storage.NewLocalBus(),
		logger:       cfg.logger,
		writeTimeout: cfg.writeTimeout,
		done:         make(chan struct{}),
	}

	if err := c.write(Frame{Type: FrameHello, Context: c.id}); err != nil {
		conn.Close()
		return nil, err
	}

	go c.readLoop()
	return c, nil
}

// ID returns the client's context ID.
func (c *Client) ID() string {
	return c.id
}

// Publish delivers ev locally and sends it to the hub.
func (c *Client) Publish(ev storage.Event) error {
	if c.closed.Load() {
		return ErrClientClosed
	}
	c.local.Publish(ev)
	return c.write(Frame{Type: FrameEvent, Context: c.id, Event: &ev})
}

// Subscribe registers fn for events from every other context.
func (c *Client) Subscribe(contextID string, fn func(storage.Event)) func() {
	return c.local.Subscribe(contextID, fn)
}

// Done is closed when the connection ends.
func (c *Client) Done() <-chan struct{} {
	return c.done
}

// Err returns the error that ended the connection, if any.
func (c *Client) Err() error {
	c.errMu.Lock()
	defer c.errMu.Unlock()
	return c.err
}

// Close sends a close frame and closes the connection.
func (c *Client) Close() error {
	if c.closed.Swap(true) {
		return nil
	}

	c.writeMu.Lock()
	c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	c.writeMu.Unlock()

	err := c.conn.Close()
	<-c.done
	return err
}

func (c *Client) write(f Frame) error {
	data, err := EncodeFrame(f)
	if err != nil {
		return err
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout))
	if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return fmt.Errorf("wsbus: write %s frame: %w", f.Type, err)
	}
	return nil
}

func (c *Client) readLoop() {
	defer close(c.done)

	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			if !c.closed.Load() {
				c.setErr(err)
				if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					c.logger.Error("hub connection lost", "context", c.id, "error", err)
				}
			}
			return
		}

		frame, err := DecodeFrame(msg)
		if err != nil {
			c.logger.Warn("frame rejected", "context", c.id, "error", err)
			continue
		}
		if frame.Type != FrameEvent {
			continue
		}
		c.local.Publish(*frame.Event)
	}
}

func (c *Client) setErr(err error) {
	c.errMu.Lock()
	defer c.errMu.Unlock()
	if c.err == nil {
		c.err = err
	}
}
