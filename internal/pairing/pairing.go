// Package pairing grants write access to new devices of the same user.
//
// A device that created its stores (primary) authorizes devices that joined
// them with an out-of-band key (secondary). The secondary asks with
// RequestWritable; the primary adds its write keys to every store and to the
// user's writers, then answers with LoginPing so the secondary can log in.
package pairing

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"
	"golang.org/x/time/rate"

	"github.com/saimonmoore/experiment-autobee/internal/crypto"
	"github.com/saimonmoore/experiment-autobee/internal/metrics"
	"github.com/saimonmoore/experiment-autobee/internal/models"
	"github.com/saimonmoore/experiment-autobee/internal/oplog"
	"github.com/saimonmoore/experiment-autobee/pkg/api"
)

// Channel is the connection channel pairing messages travel on
const Channel = "pairing"

// Defaults
const (
	DefaultRequestDelay  = time.Second
	DefaultLoginDelay    = 2 * time.Second
	DefaultRetryInterval = 5 * time.Second
	DefaultMaxAttempts   = 5
	DefaultLoginTimeout  = 30 * time.Second
	DefaultRequestBurst  = 3
)

// DefaultRequestRate ограничивает входящие RequestWritable от одного узла
var DefaultRequestRate = rate.Every(time.Second)

// Outcomes of inbound pairing requests, reported to metrics
const (
	outcomeGranted          = "granted"
	outcomeDuplicate        = "duplicate"
	outcomeIgnored          = "ignored"
	outcomeMalformed        = "malformed"
	outcomeIdentityMismatch = "identity_mismatch"
	outcomeInvalidProof     = "invalid_proof"
	outcomeNoUser           = "no_user"
	outcomeInFlight         = "in_flight"
	outcomeRateLimited      = "rate_limited"
	outcomeGrantFailed      = "grant_failed"
)

// State is the pairing state of one connection
type State string

const (
	StateConnected   State = "connected"
	StateRequestSent State = "request_sent"
	StateAuthorizing State = "authorizing"
	StateAuthorized  State = "authorized"
	StateClosed      State = "closed"
)

//go:generate moq -out store_mock.go . Store
//go:generate moq -out users_mock.go . Users

// Store is a replicated store the manager grants writers on
type Store interface {
	Namespace() string
	Key() string
	LocalKey() string
	Bootstrapped() bool
	Writable() bool
	IsWriter(key string) bool
	AddWriter(ctx context.Context, key string) error
	SignProof(primaryKey, publicWriterKey string) (string, error)
	Replicate(ctx context.Context, conn oplog.Conn) error
}

// Users is the user use case
type Users interface {
	LoggedInUser() *models.User
	UpdateWriter(ctx context.Context, writerKey string) error
	DirectLogin(ctx context.Context, userKey string) (*models.User, error)
}

// Conn is a peer connection
type Conn interface {
	oplog.Conn
	PeerKey() string
}

// Options configures a Manager. Zero durations take the defaults.
type Options struct {
	Private Store
	Public  Store
	Users   Users
	Logger  *slog.Logger
	Metrics *metrics.Metrics

	RequestDelay  time.Duration // задержка перед первым RequestWritable
	LoginDelay    time.Duration // задержка перед LoginPing
	RetryInterval time.Duration // интервал повторов RequestWritable
	MaxAttempts   int
	LoginTimeout  time.Duration // сколько ждать репликации пользователя

	RequestRate  rate.Limit
	RequestBurst int

	// OnReady is called once, when this device has logged in after pairing
	OnReady func(*models.User)
}

// Manager runs the pairing handshake on every connection
type Manager struct {
	opts    Options
	private Store
	public  Store
	users   Users
	logger  *slog.Logger
	metrics *metrics.Metrics

	mu       sync.Mutex
	ctx      context.Context
	cancel   context.CancelFunc
	closed   bool
	peers    map[string]*peer
	inflight map[string]struct{}
	limiters map[string]*rate.Limiter
	wg       sync.WaitGroup

	ready     chan struct{}
	readyOnce sync.Once
}

type peer struct {
	conn Conn

	mu    sync.Mutex
	state State

	pinged   chan struct{}
	pingOnce sync.Once
}

func (p *peer) setState(s State) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state != StateClosed {
		p.state = s
	}
}

func (p *peer) getState() State {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.state
}

func (p *peer) markPinged() {
	p.pingOnce.Do(func() { close(p.pinged) })
}

// New создает менеджер сопряжения
func New(opts Options) (*Manager, error) {
	if opts.Private == nil || opts.Public == nil {
		return nil, fmt.Errorf("private and public stores are required")
	}
	if opts.Users == nil {
		return nil, fmt.Errorf("users cannot be nil")
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.RequestDelay <= 0 {
		opts.RequestDelay = DefaultRequestDelay
	}
	if opts.LoginDelay <= 0 {
		opts.LoginDelay = DefaultLoginDelay
	}
	if opts.RetryInterval <= 0 {
		opts.RetryInterval = DefaultRetryInterval
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = DefaultMaxAttempts
	}
	if opts.LoginTimeout <= 0 {
		opts.LoginTimeout = DefaultLoginTimeout
	}
	if opts.RequestRate <= 0 {
		opts.RequestRate = DefaultRequestRate
	}
	if opts.RequestBurst <= 0 {
		opts.RequestBurst = DefaultRequestBurst
	}

	return &Manager{
		opts:     opts,
		private:  opts.Private,
		public:   opts.Public,
		users:    opts.Users,
		logger:   opts.Logger.With("component", "pairing"),
		metrics:  opts.Metrics,
		peers:    make(map[string]*peer),
		inflight: make(map[string]struct{}),
		limiters: make(map[string]*rate.Limiter),
		ready:    make(chan struct{}),
	}, nil
}

// Start enables the manager. Calling it again is a no-op.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return fmt.Errorf("pairing manager closed")
	}
	if m.ctx != nil {
		m.logger.DebugContext(ctx, "already started")
		return nil
	}

	m.ctx, m.cancel = context.WithCancel(ctx)
	m.logger.InfoContext(ctx, "pairing started", "role", m.role())

	return nil
}

func (m *Manager) role() string {
	if m.private.Bootstrapped() {
		return "secondary"
	}
	return "primary"
}

// Ready is closed once this device has logged in after pairing
func (m *Manager) Ready() <-chan struct{} {
	return m.ready
}

// State returns the pairing state of the connection with id connID
func (m *Manager) State(connID string) State {
	m.mu.Lock()
	p, ok := m.peers[connID]
	m.mu.Unlock()

	if !ok {
		return StateClosed
	}

	return p.getState()
}

// HandleConnection starts replication of every store on conn and runs the
// handshake. It must be called before conn starts reading.
func (m *Manager) HandleConnection(conn Conn) error {
	m.mu.Lock()
	if m.ctx == nil || m.closed {
		m.mu.Unlock()
		return ErrNotStarted
	}
	ctx := m.ctx
	p := &peer{conn: conn, state: StateConnected, pinged: make(chan struct{})}
	m.peers[conn.ID()] = p
	m.mu.Unlock()

	logger := m.logger.With("conn_id", conn.ID(), "peer_key", conn.PeerKey())

	// Репликация не зависит от исхода рукопожатия
	for _, s := range []Store{m.private, m.public} {
		if err := s.Replicate(ctx, conn); err != nil {
			logger.WarnContext(ctx, "failed to start replication", "store", s.Namespace(), "error", err)
		}
	}

	conn.Handle(Channel, func(payload []byte) {
		m.handle(ctx, p, payload)
	})

	m.spawn(func() {
		select {
		case <-conn.Done():
		case <-ctx.Done():
		}

		p.setState(StateClosed)
		m.forget(conn)
	})

	if m.private.Bootstrapped() {
		m.spawn(func() { m.requestLoop(ctx, p) })
	}

	logger.DebugContext(ctx, "connection handled")

	return nil
}

// Close stops every handshake in progress and waits for them
func (m *Manager) Close() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	cancel := m.cancel
	m.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	m.wg.Wait()
}

func (m *Manager) spawn(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return
	}

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		fn()
	}()
}

// handle runs on the connection's read loop and must not block
func (m *Manager) handle(ctx context.Context, p *peer, payload []byte) {
	logger := m.logger.With("conn_id", p.conn.ID(), "peer_key", p.conn.PeerKey())

	kind, raw, err := detect(payload)
	if err != nil {
		logger.WarnContext(ctx, "malformed pairing message", "error", err)
		m.metrics.PairingRequest(outcomeMalformed)
		return
	}

	switch kind {
	case kindRequestWritable:
		req, err := decodeRequestWritable(raw)
		if err != nil {
			logger.WarnContext(ctx, "malformed pairing request", "error", err)
			m.metrics.PairingRequest(outcomeMalformed)
			return
		}
		if m.private.Bootstrapped() {
			logger.DebugContext(ctx, "ignoring pairing request on secondary device")
			m.metrics.PairingRequest(outcomeIgnored)
			return
		}
		if !m.limiter(p.conn.PeerKey()).Allow() {
			logger.WarnContext(ctx, "pairing request rate limited")
			m.metrics.PairingRequest(outcomeRateLimited)
			return
		}
		m.spawn(func() { m.authorize(ctx, p, req) })

	case kindLoginPing:
		ping, err := decodeLoginPing(raw)
		if err != nil {
			logger.WarnContext(ctx, "malformed login ping", "error", err)
			return
		}
		if !m.private.Bootstrapped() {
			logger.DebugContext(ctx, "ignoring login ping on primary device")
			return
		}
		p.markPinged()
		m.spawn(func() { m.login(ctx, p, ping) })

	default:
		logger.DebugContext(ctx, "ignoring unknown pairing message")
	}
}

// forget drops conn, and the peer's limiter once its last connection is gone
func (m *Manager) forget(conn Conn) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.peers, conn.ID())
	for _, p := range m.peers {
		if p.conn.PeerKey() == conn.PeerKey() {
			return
		}
	}
	delete(m.limiters, conn.PeerKey())
}

func (m *Manager) limiter(peerKey string) *rate.Limiter {
	m.mu.Lock()
	defer m.mu.Unlock()

	l, ok := m.limiters[peerKey]
	if !ok {
		l = rate.NewLimiter(m.opts.RequestRate, m.opts.RequestBurst)
		m.limiters[peerKey] = l
	}

	return l
}

// authorize is the primary side of the handshake
func (m *Manager) authorize(ctx context.Context, p *peer, req *api.RequestWritable) {
	logger := m.logger.With(
		"conn_id", p.conn.ID(),
		"peer_key", p.conn.PeerKey(),
		"request_id", req.RequestID,
		"writer", req.PrivateWriterKey,
	)

	// Несовпадение ключа не раскрывается запрашивающему
	if req.ClaimedPrimaryStoreKey != m.private.Key() {
		logger.DebugContext(ctx, "pairing request dropped", "error", ErrIdentityMismatch)
		m.metrics.PairingRequest(outcomeIdentityMismatch)
		return
	}
	if err := verifyProof(req); err != nil {
		logger.DebugContext(ctx, "pairing request dropped", "error", err)
		m.metrics.PairingRequest(outcomeInvalidProof)
		return
	}

	u := m.users.LoggedInUser()
	if u == nil {
		logger.InfoContext(ctx, "pairing request before login")
		m.metrics.PairingRequest(outcomeNoUser)
		return
	}

	if !m.acquire(req.PrivateWriterKey) {
		logger.DebugContext(ctx, "pairing request already in progress")
		m.metrics.PairingRequest(outcomeInFlight)
		return
	}
	defer m.release(req.PrivateWriterKey)

	p.setState(StateAuthorizing)

	duplicate := u.HasWriter(req.PrivateWriterKey)
	if err := m.grant(ctx, req); err != nil {
		logger.ErrorContext(ctx, "writer grant failed", "error", err)
		m.metrics.PairingRequest(outcomeGrantFailed)
		return
	}

	if duplicate {
		logger.InfoContext(ctx, "writer already authorized, acknowledging")
		m.metrics.PairingRequest(outcomeDuplicate)
	} else {
		if err := m.users.UpdateWriter(ctx, req.PrivateWriterKey); err != nil {
			logger.ErrorContext(ctx, "writer grant failed", "error", err)
			m.metrics.PairingRequest(outcomeGrantFailed)
			return
		}
		logger.InfoContext(ctx, "writer authorized")
		m.metrics.PairingRequest(outcomeGranted)
	}

	if !wait(ctx, p.conn.Done(), m.opts.LoginDelay) {
		return
	}

	payload, err := encodeLoginPing(u.Key())
	if err != nil {
		logger.ErrorContext(ctx, "failed to encode login ping", "error", err)
		return
	}
	if err := p.conn.Send(Channel, payload); err != nil {
		logger.WarnContext(ctx, "failed to send login ping", "error", err)
		return
	}

	logger.DebugContext(ctx, "login ping sent", "user_key", u.Key())
}

// grant adds the requester's keys to the logs that don't have them yet
func (m *Manager) grant(ctx context.Context, req *api.RequestWritable) error {
	grants := []struct {
		store Store
		key   string
	}{
		{m.private, req.PrivateWriterKey},
		{m.public, req.PublicWriterKey},
	}

	for _, g := range grants {
		if g.key == "" || g.store.IsWriter(g.key) {
			continue
		}
		if err := g.store.AddWriter(ctx, g.key); err != nil {
			return fmt.Errorf("failed to add writer to %s store: %w", g.store.Namespace(), err)
		}
	}

	return nil
}

func (m *Manager) acquire(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.inflight[key]; ok {
		return false
	}
	m.inflight[key] = struct{}{}

	return true
}

func (m *Manager) release(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.inflight, key)
}

func verifyProof(req *api.RequestWritable) error {
	if req.Proof == "" {
		return fmt.Errorf("%w: missing", ErrInvalidProof)
	}

	claims, err := crypto.VerifyProof(req.Proof, req.PrivateWriterKey)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidProof, err)
	}
	if claims.PrimaryStoreKey != req.ClaimedPrimaryStoreKey || claims.PublicWriterKey != req.PublicWriterKey {
		return fmt.Errorf("%w: claims do not match request", ErrInvalidProof)
	}

	return nil
}

// authorized reports whether the secondary has nothing left to ask for
func (m *Manager) authorized() bool {
	return m.private.Writable() && m.users.LoggedInUser() != nil
}

// requestLoop is the secondary side: ask until the primary answers
func (m *Manager) requestLoop(ctx context.Context, p *peer) {
	logger := m.logger.With("conn_id", p.conn.ID(), "peer_key", p.conn.PeerKey())

	if !wait(ctx, p.conn.Done(), m.opts.RequestDelay) {
		return
	}

	for attempt := 1; attempt <= m.opts.MaxAttempts; attempt++ {
		if m.authorized() {
			logger.DebugContext(ctx, "device already authorized")
			return
		}

		if err := m.sendRequest(p); err != nil {
			logger.WarnContext(ctx, "failed to send pairing request", "attempt", attempt, "error", err)
		} else {
			p.setState(StateRequestSent)
			logger.DebugContext(ctx, "pairing request sent", "attempt", attempt)
		}

		t := time.NewTimer(m.opts.RetryInterval)
		select {
		case <-p.pinged:
			t.Stop()
			return
		case <-p.conn.Done():
			t.Stop()
			return
		case <-ctx.Done():
			t.Stop()
			return
		case <-t.C:
		}
	}

	logger.WarnContext(ctx, "pairing request unanswered", "attempts", m.opts.MaxAttempts)
}

func (m *Manager) sendRequest(p *peer) error {
	req := &api.RequestWritable{
		PrivateWriterKey:       m.private.LocalKey(),
		PublicWriterKey:        m.public.LocalKey(),
		ClaimedPrimaryStoreKey: m.private.Key(),
		RequestID:              uuid.NewString(),
	}

	proof, err := m.private.SignProof(req.ClaimedPrimaryStoreKey, req.PublicWriterKey)
	if err != nil {
		return err
	}
	req.Proof = proof

	payload, err := encodeRequestWritable(req)
	if err != nil {
		return fmt.Errorf("failed to encode pairing request: %w", err)
	}

	return p.conn.Send(Channel, payload)
}

// login is the secondary's answer to LoginPing. The user entry may not have
// replicated yet, so it is retried until it lists this device as a writer.
func (m *Manager) login(ctx context.Context, p *peer, ping *api.LoginPing) {
	logger := m.logger.With("conn_id", p.conn.ID(), "peer_key", p.conn.PeerKey(), "user_key", ping.UserKey)

	if m.isReady() {
		logger.DebugContext(ctx, "already logged in after pairing")
		return
	}
	if !strings.HasPrefix(ping.UserKey, models.UsersKeyPrefix) {
		logger.WarnContext(ctx, "malformed login ping", "error", ErrMalformedMessage)
		return
	}

	ctx, cancel := context.WithTimeout(ctx, m.opts.LoginTimeout)
	defer cancel()

	b := retry.NewExponential(50 * time.Millisecond)
	b = retry.WithCappedDuration(time.Second, b)

	var u *models.User
	err := retry.Do(ctx, b, func(ctx context.Context) error {
		got, err := m.users.DirectLogin(ctx, ping.UserKey)
		if err != nil {
			return retry.RetryableError(err)
		}
		if got == nil || !got.HasWriter(m.private.LocalKey()) {
			return retry.RetryableError(errUserNotReplicated)
		}
		u = got
		return nil
	})
	if err != nil {
		logger.WarnContext(ctx, "login after pairing failed", "error", err)
		return
	}

	p.setState(StateAuthorized)
	m.markReady(ctx, u)
}

func (m *Manager) isReady() bool {
	select {
	case <-m.ready:
		return true
	default:
		return false
	}
}

func (m *Manager) markReady(ctx context.Context, u *models.User) {
	m.readyOnce.Do(func() {
		close(m.ready)
		m.logger.InfoContext(ctx, "device paired", "user_key", u.Key(), "username", u.Username)
		if m.opts.OnReady != nil {
			m.opts.OnReady(u)
		}
	})
}

// wait sleeps for d unless done or ctx ends first
func wait(ctx context.Context, done <-chan struct{}, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-t.C:
		return true
	case <-done:
		return false
	case <-ctx.Done():
		return false
	}
}
