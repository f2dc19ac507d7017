// Package socket is the realtime event channel to the calculator peer: named
// events over a websocket, one JSON array per text message:
//
//	["event", arg0, arg1, ...]
package socket

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/tidwall/gjson"

	"stringcalc/domain/core"
	"stringcalc/internal"
	"stringcalc/ports"
)

// Config holds client settings
type Config struct {
	URL              string
	ReconnectTimeout time.Duration
	WriteTimeout     time.Duration
	PongWait         time.Duration
	SendBuffer       int
	Dialer           *websocket.Dialer
	Logger           *internal.Logger
}

// DefaultConfig returns the settings used when a field is left zero
func DefaultConfig(rawURL string) Config {
	return Config{
		URL:              rawURL,
		ReconnectTimeout: 5 * time.Second,
		WriteTimeout:     10 * time.Second,
		PongWait:         60 * time.Second,
		SendBuffer:       32,
	}
}

// Client is a named-event client with an explicit Connect/Close lifecycle.
// Handlers run on the client's read goroutine, in arrival order.
type Client struct {
	cfg       Config
	sessionID core.SessionID

	handlersMu sync.RWMutex
	handlers   map[string][]ports.EventHandler
	anyHandler []ports.AnyHandler

	mu      sync.Mutex
	current *session
	closed  bool
}

var _ ports.EventTransport = (*Client)(nil)

// session is one live websocket connection.
type session struct {
	ws   *websocket.Conn
	send chan []byte
	done chan struct{}
	once sync.Once
}

func (s *session) close() {
	s.once.Do(func() {
		close(s.done)
		s.ws.Close()
	})
}

// NewClient creates a disconnected client.
func NewClient(cfg Config) *Client {
	def := DefaultConfig(cfg.URL)
	if cfg.ReconnectTimeout <= 0 {
		cfg.ReconnectTimeout = def.ReconnectTimeout
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = def.WriteTimeout
	}
	if cfg.PongWait <= 0 {
		cfg.PongWait = def.PongWait
	}
	if cfg.SendBuffer <= 0 {
		cfg.SendBuffer = def.SendBuffer
	}
	if cfg.Dialer == nil {
		cfg.Dialer = websocket.DefaultDialer
	}
	if cfg.Logger == nil {
		cfg.Logger = internal.NewDefaultLogger("Socket")
	}
	return &Client{
		cfg:       cfg,
		sessionID: core.NewSessionID(),
		handlers:  make(map[string][]ports.EventHandler),
	}
}

// SessionID identifies this client to the peer.
func (c *Client) SessionID() core.SessionID {
	return c.sessionID
}

// On registers a handler for one event name.
func (c *Client) On(event string, handler ports.EventHandler) {
	c.handlersMu.Lock()
	defer c.handlersMu.Unlock()
	c.handlers[event] = append(c.handlers[event], handler)
}

// OnAny registers a handler for every inbound event.
func (c *Client) OnAny(handler ports.AnyHandler) {
	c.handlersMu.Lock()
	defer c.handlersMu.Unlock()
	c.anyHandler = append(c.anyHandler, handler)
}

// Connected reports whether a connection is currently open.
func (c *Client) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		return false
	}
	select {
	case <-c.current.done:
		return false
	default:
		return true
	}
}

// Connect dials the peer and starts the read and write loops. A previous
// connection, if any, is dropped.
func (c *Client) Connect(ctx context.Context) error {
	_, err := c.connect(ctx)
	return err
}

func (c *Client) connect(ctx context.Context) (*session, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, core.ErrClosed
	}
	c.mu.Unlock()

	target, err := c.dialURL()
	if err != nil {
		return nil, err
	}
	ws, _, err := c.cfg.Dialer.DialContext(ctx, target, nil)
	if err != nil {
		return nil, core.NewTransportError("dial", err)
	}

	s := &session{
		ws:   ws,
		send: make(chan []byte, c.cfg.SendBuffer),
		done: make(chan struct{}),
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		ws.Close()
		return nil, core.ErrClosed
	}
	prev := c.current
	c.current = s
	c.mu.Unlock()
	if prev != nil {
		prev.close()
	}

	go c.writeLoop(s)
	go c.readLoop(s)

	c.cfg.Logger.Info("connected to %s (session %s)", c.cfg.URL, core.ID(c.sessionID).Short())
	return s, nil
}

func (c *Client) dialURL() (string, error) {
	u, err := url.Parse(c.cfg.URL)
	if err != nil {
		return "", core.NewTransportError("parse url", err)
	}
	q := u.Query()
	q.Set("sid", c.sessionID.String())
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Run keeps the client connected until ctx ends, waiting ReconnectTimeout
// between attempts. The client is closed when Run returns.
func (c *Client) Run(ctx context.Context) error {
	defer c.Close()
	for {
		s, err := c.connect(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if err == core.ErrClosed {
				return err
			}
			c.cfg.Logger.Warn("connect failed: %v (retry in %s)", err, c.cfg.ReconnectTimeout)
		} else {
			select {
			case <-ctx.Done():
				return nil
			case <-s.done:
				c.cfg.Logger.Warn("connection lost (retry in %s)", c.cfg.ReconnectTimeout)
			}
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(c.cfg.ReconnectTimeout):
		}
	}
}

// Emit queues one event for delivery. It fails when no connection is open
// or when ctx ends before the send buffer has room. Write failures after
// queueing drop the connection and are left to the reconnect loop.
func (c *Client) Emit(ctx context.Context, event string, args ...interface{}) error {
	frame, err := EncodeFrame(event, args...)
	if err != nil {
		return err
	}

	c.mu.Lock()
	s := c.current
	closed := c.closed
	c.mu.Unlock()
	if closed {
		return core.ErrClosed
	}
	if s == nil {
		return core.ErrNotConnected
	}

	select {
	case <-s.done:
		return core.ErrNotConnected
	case <-ctx.Done():
		return core.NewTransportError("emit "+event, ctx.Err())
	case s.send <- frame:
		c.cfg.Logger.Debug("queued %s (%d bytes)", event, len(frame))
		return nil
	}
}

// Close drops the connection. A closed client cannot reconnect.
func (c *Client) Close() error {
	c.mu.Lock()
	c.closed = true
	s := c.current
	c.current = nil
	c.mu.Unlock()
	if s != nil {
		s.ws.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		s.close()
	}
	return nil
}

// pingPeriod leaves half of PongWait for the pong to come back
func (c *Client) pingPeriod() time.Duration {
	return c.cfg.PongWait / 2
}

func (c *Client) writeLoop(s *session) {
	ticker := time.NewTicker(c.pingPeriod())
	defer ticker.Stop()
	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			if err := s.ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(c.cfg.WriteTimeout)); err != nil {
				c.cfg.Logger.Warn("ping failed: %v", err)
				s.close()
				return
			}
		case msg := <-s.send:
			s.ws.SetWriteDeadline(time.Now().Add(c.cfg.WriteTimeout))
			if err := s.ws.WriteMessage(websocket.TextMessage, msg); err != nil {
				// a websocket write deadline cannot be recovered
				c.cfg.Logger.Warn("write failed: %v", err)
				s.close()
				return
			}
		}
	}
}

// readLoop drops the connection when neither a message nor a pong arrives
// within PongWait, so a half-open peer ends the session.
func (c *Client) readLoop(s *session) {
	defer s.close()
	s.ws.SetReadDeadline(time.Now().Add(c.cfg.PongWait))
	s.ws.SetPongHandler(func(string) error {
		return s.ws.SetReadDeadline(time.Now().Add(c.cfg.PongWait))
	})
	for {
		messageType, msg, err := s.ws.ReadMessage()
		if err != nil {
			select {
			case <-s.done:
			default:
				c.cfg.Logger.Warn("read failed: %v", err)
			}
			return
		}
		s.ws.SetReadDeadline(time.Now().Add(c.cfg.PongWait))
		if messageType != websocket.TextMessage {
			continue
		}
		event, args, err := DecodeFrame(msg)
		if err != nil {
			c.cfg.Logger.Warn("dropping frame: %v", err)
			continue
		}
		c.cfg.Logger.Debug("received %s (%d args, %d bytes)", event, len(args), len(msg))
		c.cfg.Logger.Trace("frame %s", msg)
		c.dispatch(event, args)
	}
}

func (c *Client) dispatch(event string, args [][]byte) {
	c.handlersMu.RLock()
	anyHandlers := append([]ports.AnyHandler(nil), c.anyHandler...)
	handlers := append([]ports.EventHandler(nil), c.handlers[event]...)
	c.handlersMu.RUnlock()

	for _, h := range anyHandlers {
		h(event, args)
	}
	for _, h := range handlers {
		h(args)
	}
}

// EncodeFrame builds ["event", args...].
func EncodeFrame(event string, args ...interface{}) ([]byte, error) {
	frame := make([]interface{}, 0, len(args)+1)
	frame = append(frame, event)
	frame = append(frame, args...)
	b, err := json.Marshal(frame)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", event, err)
	}
	return b, nil
}

// DecodeFrame splits a frame into its event name and raw JSON arguments.
func DecodeFrame(msg []byte) (string, [][]byte, error) {
	if !gjson.ValidBytes(msg) {
		return "", nil, fmt.Errorf("%w: invalid json frame", core.ErrMalformedPayload)
	}
	frame := gjson.ParseBytes(msg)
	if !frame.IsArray() {
		return "", nil, fmt.Errorf("%w: frame is not an array", core.ErrMalformedPayload)
	}
	parts := frame.Array()
	if len(parts) == 0 || parts[0].Type != gjson.String {
		return "", nil, fmt.Errorf("%w: frame has no event name", core.ErrMalformedPayload)
	}
	args := make([][]byte, 0, len(parts)-1)
	for _, p := range parts[1:] {
		args = append(args, []byte(p.Raw))
	}
	return parts[0].Str, args, nil
}
