// Package swarm connects peers that share topics (log discovery keys) over
// websockets and hands every established connection to the application.
package swarm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sethvargo/go-retry"

	"github.com/saimonmoore/experiment-autobee/internal/crypto"
	"github.com/saimonmoore/experiment-autobee/internal/metrics"
	"github.com/saimonmoore/experiment-autobee/pkg/api"
)

// Default connection parameters
const (
	DefaultHandshakeTimeout = 10 * time.Second
	DefaultRetryBase        = 200 * time.Millisecond
	DefaultRetryMax         = 10 * time.Second
)

// Options configures a Swarm
type Options struct {
	KeyPair          *crypto.KeyPair  // идентичность узла; генерируется, если nil
	Logger           *slog.Logger     // логгер
	Metrics          *metrics.Metrics // может быть nil
	ListenAddr       string           // адрес для входящих соединений ("" - не слушать)
	Peers            []string         // адреса bootstrap-узлов
	HandshakeTimeout time.Duration    // таймаут обмена hello
	RetryBase        time.Duration    // начальная задержка повторного соединения
	RetryMax         time.Duration    // максимальная задержка повторного соединения
}

// PeerInfo describes the remote side of a new connection
type PeerInfo struct {
	PeerKey   string   // hex public key of the peer
	Addr      string   // remote address
	Topics    []string // topics both sides joined
	Initiator bool     // true when this side dialed
}

// Stats is a snapshot emitted on every swarm update
type Stats struct {
	Connections int // live connections
	Connecting  int // dials in flight
	Peers       int // configured bootstrap peers
}

// Swarm keeps at most one connection per peer
type Swarm struct {
	opts     Options
	keyPair  *crypto.KeyPair
	peerKey  string
	logger   *slog.Logger
	metrics  *metrics.Metrics
	dialer   *websocket.Dialer
	upgrader websocket.Upgrader

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu           sync.RWMutex
	topics       map[string]struct{}
	conns        map[string]*Conn
	connecting   int
	onConnection []func(*Conn, PeerInfo)
	onUpdate     []func(Stats)
	started      bool
	destroyed    bool
	server       *http.Server
	listener     net.Listener

	// pending counts bootstrap peers whose first dial has not finished yet
	pending sync.WaitGroup
}

// New creates a swarm. Nothing is started until Start.
func New(opts Options) (*Swarm, error) {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.HandshakeTimeout <= 0 {
		opts.HandshakeTimeout = DefaultHandshakeTimeout
	}
	if opts.RetryBase <= 0 {
		opts.RetryBase = DefaultRetryBase
	}
	if opts.RetryMax <= 0 {
		opts.RetryMax = DefaultRetryMax
	}

	kp := opts.KeyPair
	if kp == nil {
		var err error
		if kp, err = crypto.GenerateKeyPair(); err != nil {
			return nil, err
		}
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Swarm{
		opts:    opts,
		keyPair: kp,
		peerKey: kp.PublicHex(),
		logger:  opts.Logger.With("component", "swarm"),
		metrics: opts.Metrics,
		dialer:  &websocket.Dialer{HandshakeTimeout: opts.HandshakeTimeout},
		upgrader: websocket.Upgrader{
			HandshakeTimeout: opts.HandshakeTimeout,
			// Узлы не браузеры: Origin не проверяем
			CheckOrigin: func(*http.Request) bool { return true },
		},
		ctx:    ctx,
		cancel: cancel,
		topics: make(map[string]struct{}),
		conns:  make(map[string]*Conn),
	}, nil
}

// PeerKey returns this node's hex public key
func (s *Swarm) PeerKey() string { return s.peerKey }

// OnConnection registers fn for every new connection. fn runs before the
// connection starts reading, so channel handlers registered there see
// every frame.
func (s *Swarm) OnConnection(fn func(*Conn, PeerInfo)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.onConnection = append(s.onConnection, fn)
}

// OnUpdate registers fn for connection count changes
func (s *Swarm) OnUpdate(fn func(Stats)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.onUpdate = append(s.onUpdate, fn)
}

// Join announces interest in topic
func (s *Swarm) Join(topic []byte) *Discovery {
	t := fmt.Sprintf("%x", topic)

	s.mu.Lock()
	s.topics[t] = struct{}{}
	s.mu.Unlock()

	s.logger.Info("joined topic", "topic", t)

	return &Discovery{swarm: s, topic: t}
}

// Start listens (when configured) and dials every bootstrap peer. Calling
// Start again is a no-op.
func (s *Swarm) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.destroyed {
		s.mu.Unlock()
		return ErrDestroyed
	}
	if s.started {
		s.mu.Unlock()
		return nil
	}
	s.started = true
	s.mu.Unlock()

	if s.opts.ListenAddr != "" {
		if err := s.listen(); err != nil {
			return err
		}
	}

	for _, addr := range s.opts.Peers {
		s.Connect(addr)
	}

	return nil
}

// Addr returns the bound listen address, or "" when not listening
func (s *Swarm) Addr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.listener == nil {
		return ""
	}

	return s.listener.Addr().String()
}

func (s *Swarm) listen() error {
	ln, err := net.Listen("tcp", s.opts.ListenAddr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.opts.ListenAddr, err)
	}

	srv := &http.Server{
		Handler:           s.Router(),
		ReadHeaderTimeout: s.opts.HandshakeTimeout,
	}

	s.mu.Lock()
	s.listener = ln
	s.server = srv
	s.mu.Unlock()

	s.logger.Info("listening", "addr", ln.Addr().String(), "peer_key", s.peerKey)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("server stopped", "error", err)
		}
	}()

	return nil
}

// Connect keeps a connection to addr alive: dials with exponential
// backoff and redials after the connection closes, until Destroy.
func (s *Swarm) Connect(addr string) {
	s.pending.Add(1)
	s.wg.Add(1)

	go func() {
		defer s.wg.Done()

		var once sync.Once
		firstDone := func() { once.Do(s.pending.Done) }
		defer firstDone()

		for {
			conn, err := s.dialWithRetry(addr, firstDone)
			if err != nil {
				if s.ctx.Err() == nil {
					s.logger.Warn("giving up on peer", "addr", addr, "error", err)
				}
				return
			}

			select {
			case <-conn.Done():
				s.logger.Debug("peer connection closed, redialing", "addr", addr)
			case <-s.ctx.Done():
				return
			}
		}
	}()
}

func (s *Swarm) dialWithRetry(addr string, attempted func()) (*Conn, error) {
	b := retry.NewExponential(s.opts.RetryBase)
	b = retry.WithCappedDuration(s.opts.RetryMax, b)
	b = retry.WithJitterPercent(10, b)

	var conn *Conn
	err := retry.Do(s.ctx, b, func(ctx context.Context) error {
		s.setConnecting(1)
		c, err := s.Dial(ctx, addr)
		s.setConnecting(-1)
		attempted()

		if err != nil {
			if errors.Is(err, ErrSelfConnection) || errors.Is(err, ErrDestroyed) {
				return err
			}
			s.logger.Debug("dial failed", "addr", addr, "error", err)
			return retry.RetryableError(err)
		}

		conn = c
		return nil
	})
	if err != nil {
		return nil, err
	}

	return conn, nil
}

// Dial makes a single connection attempt to addr
func (s *Swarm) Dial(ctx context.Context, addr string) (*Conn, error) {
	ws, _, err := s.dialer.DialContext(ctx, swarmURL(addr), nil)
	if err != nil {
		return nil, fmt.Errorf("websocket dial: %w", err)
	}

	remote, err := s.handshake(ws, true)
	if err != nil {
		_ = ws.Close()
		return nil, err
	}

	return s.addConn(ws, remote, true, ws.RemoteAddr().String())
}

// serveSwarm upgrades an inbound request to a peer connection
func (s *Swarm) serveSwarm(w http.ResponseWriter, r *http.Request) {
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade уже ответил клиенту
		s.logger.Warn("websocket upgrade failed", "error", err, "remote_addr", r.RemoteAddr)
		return
	}

	remote, err := s.handshake(ws, false)
	if err != nil {
		s.logger.Warn("handshake failed", "error", err, "remote_addr", r.RemoteAddr)
		_ = ws.Close()
		return
	}

	if _, err := s.addConn(ws, remote, false, r.RemoteAddr); err != nil {
		s.logger.Debug("inbound connection rejected", "error", err, "remote_addr", r.RemoteAddr)
	}
}

// handshake exchanges hello messages; the dialer speaks first
func (s *Swarm) handshake(ws *websocket.Conn, initiator bool) (*api.Hello, error) {
	deadline := time.Now().Add(s.opts.HandshakeTimeout)
	_ = ws.SetReadDeadline(deadline)
	_ = ws.SetWriteDeadline(deadline)
	defer func() {
		_ = ws.SetReadDeadline(time.Time{})
		_ = ws.SetWriteDeadline(time.Time{})
	}()

	local := s.hello()
	remote := &api.Hello{}

	if initiator {
		if err := ws.WriteJSON(local); err != nil {
			return nil, fmt.Errorf("failed to send hello: %w", err)
		}
		if err := ws.ReadJSON(remote); err != nil {
			return nil, fmt.Errorf("failed to read hello: %w", err)
		}
	} else {
		if err := ws.ReadJSON(remote); err != nil {
			return nil, fmt.Errorf("failed to read hello: %w", err)
		}
		if err := ws.WriteJSON(local); err != nil {
			return nil, fmt.Errorf("failed to send hello: %w", err)
		}
	}

	if _, err := crypto.ParsePublicKey(remote.PeerKey); err != nil {
		return nil, fmt.Errorf("invalid peer key in hello: %w", err)
	}

	return remote, nil
}

func (s *Swarm) hello() *api.Hello {
	s.mu.RLock()
	defer s.mu.RUnlock()

	topics := make([]string, 0, len(s.topics))
	for t := range s.topics {
		topics = append(topics, t)
	}
	sort.Strings(topics)

	return &api.Hello{PeerKey: s.peerKey, Topics: topics}
}

// addConn registers an established link. When a connection to the same
// peer already exists both sides keep the one whose initiator has the
// lower key.
func (s *Swarm) addConn(ws transport, remote *api.Hello, initiator bool, addr string) (*Conn, error) {
	if remote.PeerKey == s.peerKey {
		_ = ws.Close()
		return nil, ErrSelfConnection
	}

	s.mu.Lock()
	if s.destroyed {
		s.mu.Unlock()
		_ = ws.Close()
		return nil, ErrDestroyed
	}

	var common []string
	for _, t := range remote.Topics {
		if _, ok := s.topics[t]; ok {
			common = append(common, t)
		}
	}
	if len(common) == 0 {
		s.mu.Unlock()
		_ = ws.Close()
		return nil, ErrNoCommonTopic
	}

	conn := newConn(ws, remote.PeerKey, initiator, s.logger)

	var replaced *Conn
	if existing, ok := s.conns[remote.PeerKey]; ok {
		if !s.prefer(conn, existing) {
			s.mu.Unlock()
			_ = ws.Close()
			s.logger.Debug("duplicate connection dropped", "peer_key", remote.PeerKey)
			return existing, nil
		}
		replaced = existing
	}
	s.conns[remote.PeerKey] = conn
	handlers := append([]func(*Conn, PeerInfo){}, s.onConnection...)
	s.mu.Unlock()

	if replaced != nil {
		_ = replaced.Close()
	}

	info := PeerInfo{
		PeerKey:   remote.PeerKey,
		Addr:      addr,
		Topics:    common,
		Initiator: initiator,
	}
	s.logger.Info("peer connected",
		"peer_key", info.PeerKey,
		"addr", info.Addr,
		"initiator", info.Initiator,
	)

	for _, fn := range handlers {
		fn(conn, info)
	}
	conn.Start()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		<-conn.Done()

		s.mu.Lock()
		if s.conns[conn.PeerKey()] == conn {
			delete(s.conns, conn.PeerKey())
		}
		s.mu.Unlock()

		s.logger.Info("peer disconnected", "peer_key", conn.PeerKey())
		s.update()
	}()

	s.update()

	return conn, nil
}

// prefer reports whether candidate should replace existing. A redial by
// the same initiator replaces the stale connection.
func (s *Swarm) prefer(candidate, existing *Conn) bool {
	return s.initiatorKey(candidate) <= s.initiatorKey(existing)
}

func (s *Swarm) initiatorKey(c *Conn) string {
	if c.Initiator() {
		return s.peerKey
	}

	return c.PeerKey()
}

// Connections returns the live connections ordered by peer key
func (s *Swarm) Connections() []*Conn {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Conn, 0, len(s.conns))
	for _, c := range s.conns {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PeerKey() < out[j].PeerKey() })

	return out
}

// Stats returns the current connection counts
func (s *Swarm) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.statsLocked()
}

func (s *Swarm) statsLocked() Stats {
	return Stats{
		Connections: len(s.conns),
		Connecting:  s.connecting,
		Peers:       len(s.opts.Peers),
	}
}

func (s *Swarm) setConnecting(delta int) {
	s.mu.Lock()
	s.connecting += delta
	s.mu.Unlock()

	s.update()
}

func (s *Swarm) update() {
	s.mu.RLock()
	stats := s.statsLocked()
	handlers := append([]func(Stats){}, s.onUpdate...)
	s.mu.RUnlock()

	s.metrics.SetConnections(stats.Connections)

	s.logger.Debug("swarm update",
		"connections", stats.Connections,
		"connecting", stats.Connecting,
		"peers", stats.Peers,
	)

	for _, fn := range handlers {
		fn(stats)
	}
}

// Destroy closes the listener and every connection and stops redialing
func (s *Swarm) Destroy() error {
	s.mu.Lock()
	if s.destroyed {
		s.mu.Unlock()
		return nil
	}
	s.destroyed = true
	srv := s.server
	conns := make([]*Conn, 0, len(s.conns))
	for _, c := range s.conns {
		conns = append(conns, c)
	}
	s.mu.Unlock()

	s.cancel()

	var errs []error
	if srv != nil {
		if err := srv.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close server: %w", err))
		}
	}
	for _, c := range conns {
		_ = c.Close()
	}

	s.wg.Wait()

	return errors.Join(errs...)
}

// swarmURL turns "host:port" into the websocket endpoint of a peer
func swarmURL(addr string) string {
	if strings.HasPrefix(addr, "ws://") || strings.HasPrefix(addr, "wss://") {
		return addr
	}

	return "ws://" + addr + "/swarm"
}

// Discovery is the handle returned by Join
type Discovery struct {
	swarm *Swarm
	topic string
}

// Topic returns the hex topic
func (d *Discovery) Topic() string { return d.topic }

// Flushed waits until every bootstrap peer has been tried at least once
func (d *Discovery) Flushed(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		d.swarm.pending.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
