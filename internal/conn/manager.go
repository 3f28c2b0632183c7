// Package conn keeps a WebSocket connection to the pong server alive.
// It dials, pumps frames in both directions, sends keep-alive pings and
// reconnects after a fixed delay for as long as its context lives.
package conn

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"

	"github.com/vovakirdan/termpong/internal/protocol"
	"github.com/vovakirdan/termpong/internal/session"
)

// Config configures a Manager.
type Config struct {
	URL  string
	Role session.Role

	ReconnectDelay time.Duration
	KeepAlive      time.Duration
	WriteTimeout   time.Duration
	// ReadTimeout drops a connection that has been silent this long.
	// Zero disables it.
	ReadTimeout    time.Duration
	MaxMessageSize int64
	SendBuffer     int
	EventBuffer    int

	Dialer *websocket.Dialer
	Clock  clockwork.Clock
	Logger *log.Logger
}

// DefaultConfig returns the timings of the reference browser client:
// reconnect after one second, ping every five.
func DefaultConfig() Config {
	return Config{
		ReconnectDelay: 1000 * time.Millisecond,
		KeepAlive:      5000 * time.Millisecond,
		WriteTimeout:   5 * time.Second,
		ReadTimeout:    15 * time.Second,
		MaxMessageSize: 64 * 1024,
		SendBuffer:     64,
		EventBuffer:    256,
	}
}

// Manager owns the connection lifecycle. Events are delivered on Events()
// in transport order; Send may be called from any goroutine.
type Manager struct {
	cfg      Config
	endpoint string
	logger   *log.Logger

	events   chan Event
	phase    atomic.Int32
	attempts atomic.Uint64

	mu   sync.Mutex
	send chan []byte // nil while disconnected
}

// New validates cfg and builds the endpoint URL with the player query.
func New(cfg Config) (*Manager, error) {
	def := DefaultConfig()
	if cfg.ReconnectDelay <= 0 {
		cfg.ReconnectDelay = def.ReconnectDelay
	}
	if cfg.KeepAlive <= 0 {
		cfg.KeepAlive = def.KeepAlive
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = def.WriteTimeout
	}
	if cfg.MaxMessageSize <= 0 {
		cfg.MaxMessageSize = def.MaxMessageSize
	}
	if cfg.SendBuffer <= 0 {
		cfg.SendBuffer = def.SendBuffer
	}
	if cfg.EventBuffer <= 0 {
		cfg.EventBuffer = def.EventBuffer
	}
	if cfg.Dialer == nil {
		cfg.Dialer = websocket.DefaultDialer
	}
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}

	endpoint, err := Endpoint(cfg.URL, cfg.Role)
	if err != nil {
		return nil, err
	}

	return &Manager{
		cfg:      cfg,
		endpoint: endpoint,
		logger:   cfg.Logger.With("role", cfg.Role.WireName()),
		events:   make(chan Event, cfg.EventBuffer),
	}, nil
}

// Endpoint returns raw with ?player=<role> set. http and https are
// rewritten to ws and wss.
func Endpoint(raw string, role session.Role) (string, error) {
	if !role.Valid() {
		return "", fmt.Errorf("conn: %w", session.ErrUnknownRole)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("conn: parse server url: %w", err)
	}
	switch u.Scheme {
	case "ws", "wss":
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("conn: unsupported scheme %q in %q", u.Scheme, raw)
	}
	if u.Host == "" {
		return "", fmt.Errorf("conn: missing host in %q", raw)
	}
	q := u.Query()
	q.Set("player", role.WireName())
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Endpoint returns the URL the manager dials.
func (m *Manager) Endpoint() string {
	return m.endpoint
}

// Events returns the channel events are posted on.
func (m *Manager) Events() <-chan Event {
	return m.events
}

// Phase reports whether a connection is currently open.
func (m *Manager) Phase() session.Phase {
	return session.Phase(m.phase.Load())
}

// Attempts returns the number of dials made so far.
func (m *Manager) Attempts() uint64 {
	return m.attempts.Load()
}

// Send queues msg on the open connection. It returns false, dropping msg,
// while disconnected or when the queue is full. Nothing carries over to
// the next connection.
func (m *Manager) Send(msg protocol.Outbound) bool {
	m.mu.Lock()
	send := m.send
	m.mu.Unlock()
	if send == nil {
		return false
	}

	data, err := protocol.Encode(msg)
	if err != nil {
		m.logger.Warn("dropping outbound message", "type", msg.Type(), "err", err)
		return false
	}

	select {
	case send <- data:
		return true
	default:
		m.logger.Warn("send queue full, dropping message", "type", msg.Type())
		return false
	}
}

// Run connects and reconnects until ctx is cancelled, then returns ctx.Err().
// There is no backoff growth and no attempt limit.
func (m *Manager) Run(ctx context.Context) error {
	m.logger.Info("connection manager started", "endpoint", m.endpoint)
	for {
		attempt := m.attempts.Add(1)
		wasOpen, err := m.connectOnce(ctx, attempt)
		if ctx.Err() != nil {
			m.logger.Info("connection manager stopped")
			return ctx.Err()
		}

		m.logger.Warn("connection closed", "attempt", attempt, "open", wasOpen, "err", err, "retry_in", m.cfg.ReconnectDelay)
		if !m.emit(ctx, Closed{Attempt: attempt, Err: err, WasOpen: wasOpen, RetryIn: m.cfg.ReconnectDelay}) {
			return ctx.Err()
		}

		select {
		case <-ctx.Done():
			m.logger.Info("connection manager stopped")
			return ctx.Err()
		case <-m.cfg.Clock.After(m.cfg.ReconnectDelay):
		}
	}
}

func (m *Manager) connectOnce(ctx context.Context, attempt uint64) (bool, error) {
	ws, _, err := m.cfg.Dialer.DialContext(ctx, m.endpoint, nil)
	if err != nil {
		return false, fmt.Errorf("conn: dial: %w", err)
	}
	defer ws.Close()

	ws.SetReadLimit(m.cfg.MaxMessageSize)

	connCtx, cancel := context.WithCancel(ctx)
	send := make(chan []byte, m.cfg.SendBuffer)
	ticker := m.cfg.Clock.NewTicker(m.cfg.KeepAlive)

	m.setSend(send)
	m.phase.Store(int32(session.Connected))
	m.logger.Info("connected", "attempt", attempt)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		m.writePump(connCtx, ws, send)
	}()
	go func() {
		defer wg.Done()
		m.keepAlive(connCtx, ticker)
	}()

	if m.emit(ctx, Opened{Attempt: attempt, Endpoint: m.endpoint}) {
		err = m.readPump(ctx, ws)
	} else {
		err = ctx.Err()
	}

	m.setSend(nil)
	m.phase.Store(int32(session.Disconnected))
	cancel()
	_ = ws.Close()
	wg.Wait()
	return true, err
}

func (m *Manager) setSend(send chan []byte) {
	m.mu.Lock()
	m.send = send
	m.mu.Unlock()
}

// readPump posts every text frame until the socket fails.
func (m *Manager) readPump(ctx context.Context, ws *websocket.Conn) error {
	for {
		if m.cfg.ReadTimeout > 0 {
			_ = ws.SetReadDeadline(time.Now().Add(m.cfg.ReadTimeout))
		}
		typ, data, err := ws.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return fmt.Errorf("conn: server closed: %w", err)
			}
			return fmt.Errorf("conn: read: %w", err)
		}
		if typ != websocket.TextMessage {
			m.logger.Debug("ignoring non-text frame", "type", typ)
			continue
		}
		if !m.emit(ctx, Received{Payload: data}) {
			return ctx.Err()
		}
	}
}

// writePump owns all writes to ws.
func (m *Manager) writePump(ctx context.Context, ws *websocket.Conn, send <-chan []byte) {
	for {
		select {
		case <-ctx.Done():
			deadline := time.Now().Add(m.cfg.WriteTimeout)
			_ = ws.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
			_ = ws.Close()
			return
		case data := <-send:
			_ = ws.SetWriteDeadline(time.Now().Add(m.cfg.WriteTimeout))
			if err := ws.WriteMessage(websocket.TextMessage, data); err != nil {
				m.logger.Error("write failed", "err", err)
				_ = ws.Close()
				return
			}
		}
	}
}

// keepAlive sends a ping every KeepAlive while the connection is open.
func (m *Manager) keepAlive(ctx context.Context, ticker clockwork.Ticker) {
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			if !m.Send(protocol.Ping{}) {
				m.logger.Debug("keep-alive ping not sent")
			}
		}
	}
}

// emit posts ev, giving up only when ctx is cancelled.
func (m *Manager) emit(ctx context.Context, ev Event) bool {
	select {
	case m.events <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}
