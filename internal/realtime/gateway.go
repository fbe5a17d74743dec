package realtime

import (
	"crypto/tls"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Options configures a Gateway connection. Zero-valued fields fall
// back to DefaultOptions.
type Options struct {
	// Path is the websocket endpoint path, used when the dial URL
	// carries none.
	Path                 string
	ReconnectionAttempts int
	ReconnectionDelay    time.Duration
	HandshakeTimeout     time.Duration
	// RequestHeader carries auth cookies or tokens for the handshake.
	RequestHeader http.Header
}

// DefaultOptions mirrors the configuration the mobile clients ship
// with: websocket transport only, five reconnection attempts one
// second apart.
var DefaultOptions = Options{
	Path:                 "/ws",
	ReconnectionAttempts: 5,
	ReconnectionDelay:    time.Second,
	HandshakeTimeout:     10 * time.Second,
}

// Handler receives payloads delivered on a prefix channel.
type Handler func(data json.RawMessage)

type listenerEntry struct {
	id      int
	handler Handler
}

// Gateway owns at most one live websocket connection for the process
// and mediates all subscribe and emit traffic so call sites never
// touch the transport directly. Construct one per process and share
// it. All methods are safe for concurrent use.
//
// Connection failures never propagate to callers beyond the Connect
// error: mid-session errors are logged and handled by the bounded
// reconnection loop, and the only caller-visible signal is
// IsConnected turning false while EmitEvent drops sends.
type Gateway struct {
	mu            sync.Mutex
	conn          *websocket.Conn
	connected     bool
	everConnected bool
	closing       bool
	listeners     map[string][]listenerEntry
	nextID        int
	lastURL       string
	lastOpts      Options

	writeMu sync.Mutex
	log     *slog.Logger
}

// NewGateway creates a disconnected Gateway. logger may be nil, in
// which case slog.Default is used.
func NewGateway(logger *slog.Logger) *Gateway {
	if logger == nil {
		logger = slog.Default()
	}
	return &Gateway{
		listeners: make(map[string][]listenerEntry),
		log:       logger,
	}
}

// Connect establishes the websocket session. It is a no-op when a
// session is already live. opts is merged over DefaultOptions and the
// resulting configuration is stored for automatic reconnects, so a
// later redial never depends on hidden transport state.
func (g *Gateway) Connect(rawURL string, opts Options) error {
	g.mu.Lock()
	if g.connected {
		g.mu.Unlock()
		return nil
	}
	merged := mergeOptions(opts)
	g.lastURL = rawURL
	g.lastOpts = merged
	g.closing = false
	g.mu.Unlock()

	return g.dial(rawURL, merged)
}

func mergeOptions(opts Options) Options {
	merged := DefaultOptions
	if opts.Path != "" {
		merged.Path = opts.Path
	}
	if opts.ReconnectionAttempts > 0 {
		merged.ReconnectionAttempts = opts.ReconnectionAttempts
	}
	if opts.ReconnectionDelay > 0 {
		merged.ReconnectionDelay = opts.ReconnectionDelay
	}
	if opts.HandshakeTimeout > 0 {
		merged.HandshakeTimeout = opts.HandshakeTimeout
	}
	if opts.RequestHeader != nil {
		merged.RequestHeader = opts.RequestHeader
	}
	return merged
}

func (g *Gateway) dial(rawURL string, opts Options) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("parse url: %w", err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	}
	if u.Path == "" || u.Path == "/" {
		u.Path = opts.Path
	}

	dialer := websocket.Dialer{HandshakeTimeout: opts.HandshakeTimeout}
	if u.Scheme == "wss" {
		// Secure endpoints always verify the server certificate.
		dialer.TLSClientConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}

	conn, resp, err := dialer.Dial(u.String(), opts.RequestHeader)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		g.log.Error("gateway: connect failed", "url", u.String(), "error", err)
		return fmt.Errorf("dial %s: %w", u.String(), err)
	}

	g.mu.Lock()
	g.conn = conn
	g.connected = true
	g.everConnected = true
	g.mu.Unlock()

	g.log.Info("gateway: connected", "session", conn.LocalAddr().String())
	go g.readLoop(conn)
	return nil
}

func (g *Gateway) readLoop(conn *websocket.Conn) {
	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			g.handleDisconnect(conn, err)
			return
		}
		g.dispatch(payload)
	}
}

func (g *Gateway) dispatch(payload []byte) {
	var frame Frame
	if err := json.Unmarshal(payload, &frame); err != nil {
		g.log.Warn("gateway: dropping malformed frame", "error", err)
		return
	}

	g.mu.Lock()
	entries := make([]listenerEntry, len(g.listeners[frame.Event]))
	copy(entries, g.listeners[frame.Event])
	g.mu.Unlock()

	data := unwrapPayload(frame.Data)
	for _, entry := range entries {
		entry.handler(data)
	}
}

func (g *Gateway) handleDisconnect(conn *websocket.Conn, err error) {
	g.mu.Lock()
	if g.conn != conn {
		// A newer session superseded this one.
		g.mu.Unlock()
		return
	}
	g.conn = nil
	g.connected = false
	closing := g.closing
	lastURL, lastOpts := g.lastURL, g.lastOpts
	g.mu.Unlock()
	conn.Close()

	if closing {
		return
	}

	if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
		// The server ended the session; redial immediately with the
		// stored configuration.
		g.log.Info("gateway: server closed connection, reconnecting")
		if derr := g.dial(lastURL, lastOpts); derr == nil {
			return
		}
	} else {
		g.log.Warn("gateway: connection lost", "error", err)
	}
	g.reconnect(lastURL, lastOpts)
}

// reconnect runs the bounded retry loop. Once the attempts are
// exhausted the gateway stays disconnected until Connect is called
// again.
func (g *Gateway) reconnect(rawURL string, opts Options) {
	for attempt := 1; attempt <= opts.ReconnectionAttempts; attempt++ {
		time.Sleep(opts.ReconnectionDelay)

		g.mu.Lock()
		stop := g.closing || g.connected
		g.mu.Unlock()
		if stop {
			return
		}

		if err := g.dial(rawURL, opts); err == nil {
			return
		}
		g.log.Warn("gateway: reconnect failed", "attempt", attempt, "max", opts.ReconnectionAttempts)
	}
	g.log.Error("gateway: reconnection attempts exhausted", "attempts", opts.ReconnectionAttempts)
}

// EmitEvent sends data tagged with the event name
// "<prefix>:<eventType>". When the gateway is not connected the event
// is logged and dropped.
func (g *Gateway) EmitEvent(prefix, eventType string, data any) {
	g.mu.Lock()
	conn := g.conn
	connected := g.connected
	g.mu.Unlock()

	if !connected || conn == nil {
		g.log.Error("gateway: emit while disconnected", "event", prefix+":"+eventType)
		return
	}

	raw, err := json.Marshal(data)
	if err != nil {
		g.log.Error("gateway: marshal emit payload", "event", prefix+":"+eventType, "error", err)
		return
	}

	g.writeMu.Lock()
	err = conn.WriteJSON(Frame{Event: prefix + ":" + eventType, Data: raw})
	g.writeMu.Unlock()
	if err != nil {
		g.log.Error("gateway: emit failed", "event", prefix+":"+eventType, "error", err)
	}
}

// AddListener registers handler on the bare prefix channel and returns
// a subscription id for RemoveListener. Handlers receive the data
// sub-field of enveloped payloads and raw payloads unchanged. The
// registry is additive: repeated calls with the same prefix each add
// their own entry. Before any connection has ever been established
// this is a no-op returning -1.
func (g *Gateway) AddListener(prefix string, handler Handler) int {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.everConnected {
		return -1
	}
	g.nextID++
	g.listeners[prefix] = append(g.listeners[prefix], listenerEntry{id: g.nextID, handler: handler})
	return g.nextID
}

// RemoveListener detaches the subscription with the given id from the
// prefix channel. Unknown ids are ignored.
func (g *Gateway) RemoveListener(prefix string, id int) {
	g.mu.Lock()
	defer g.mu.Unlock()

	entries := g.listeners[prefix]
	for i, entry := range entries {
		if entry.id == id {
			g.listeners[prefix] = append(entries[:i], entries[i+1:]...)
			break
		}
	}
	if len(g.listeners[prefix]) == 0 {
		delete(g.listeners, prefix)
	}
}

// RemoveAllListeners detaches every handler registered under prefix.
func (g *Gateway) RemoveAllListeners(prefix string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.listeners, prefix)
}

// Disconnect tears down the session, discards any pending reconnection
// attempts and clears the entire listener registry.
func (g *Gateway) Disconnect() {
	g.mu.Lock()
	g.closing = true
	conn := g.conn
	g.conn = nil
	g.connected = false
	g.listeners = make(map[string][]listenerEntry)
	g.mu.Unlock()

	if conn != nil {
		deadline := time.Now().Add(time.Second)
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
		conn.Close()
	}
}

// IsConnected reports whether a live session currently exists.
func (g *Gateway) IsConnected() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.connected
}
