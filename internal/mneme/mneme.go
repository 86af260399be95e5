// Package mneme composes a node: the private and public stores, their use
// cases, the swarm and the pairing manager.
package mneme

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/saimonmoore/experiment-autobee/internal/crypto"
	"github.com/saimonmoore/experiment-autobee/internal/metrics"
	"github.com/saimonmoore/experiment-autobee/internal/models"
	"github.com/saimonmoore/experiment-autobee/internal/oplog"
	"github.com/saimonmoore/experiment-autobee/internal/pairing"
	"github.com/saimonmoore/experiment-autobee/internal/record"
	"github.com/saimonmoore/experiment-autobee/internal/store"
	"github.com/saimonmoore/experiment-autobee/internal/swarm"
	"github.com/saimonmoore/experiment-autobee/internal/user"
	"github.com/saimonmoore/experiment-autobee/internal/view"
	"github.com/saimonmoore/experiment-autobee/internal/view/boltdb"
)

const (
	logsFile  = "oplog.db"
	viewsFile = "view.db"

	// swarmNamespace хранит ключ идентичности узла рядом с ключами журналов
	swarmNamespace = "swarm"
)

// Options configures a node
type Options struct {
	DataDir      string
	BootstrapKey string // sync key "<private>:<public>" или только "<private>"
	ListenAddr   string
	Peers        []string
	Logger       *slog.Logger
	Metrics      *metrics.Metrics

	RequestDelay  time.Duration
	LoginDelay    time.Duration
	RetryInterval time.Duration
	MaxAttempts   int
	LoginTimeout  time.Duration

	DialRetryBase time.Duration
	DialRetryMax  time.Duration

	// OnReady is called once this device has logged in after pairing
	OnReady func(*models.User)
}

// Mneme is one device of a user
type Mneme struct {
	logger *slog.Logger

	logs  *oplog.Storage
	views *boltdb.Storage

	private *store.Store
	public  *store.Store

	users          *user.UseCase
	privateRecords *record.UseCase
	publicRecords  *record.UseCase

	swarm   *swarm.Swarm
	pairing *pairing.Manager

	mu        sync.Mutex
	started   bool
	destroyed bool
}

// New opens the node's stores under opts.DataDir. Nothing touches the
// network until Start.
func New(ctx context.Context, opts Options) (_ *Mneme, err error) {
	if opts.DataDir == "" {
		return nil, fmt.Errorf("data dir cannot be empty")
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	var privateKey, publicKey string
	if opts.BootstrapKey != "" {
		if privateKey, publicKey, err = crypto.ParseSyncKey(opts.BootstrapKey); err != nil {
			return nil, err
		}
	}

	if err := os.MkdirAll(opts.DataDir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create data dir: %w", err)
	}

	m := &Mneme{logger: opts.Logger}
	defer func() {
		if err != nil {
			m.close()
		}
	}()

	if m.logs, err = oplog.New(ctx, filepath.Join(opts.DataDir, logsFile)); err != nil {
		return nil, err
	}
	if m.views, err = boltdb.New(ctx, filepath.Join(opts.DataDir, viewsFile)); err != nil {
		return nil, err
	}

	m.private, err = store.New(ctx, m.logs, m.views.View(store.NamespacePrivate), store.Options{
		Logger:       opts.Logger,
		Metrics:      opts.Metrics,
		Namespace:    store.NamespacePrivate,
		BootstrapKey: privateKey,
		Indexers: []store.Indexer{
			user.NewIndexer(opts.Logger),
			record.NewIndexer(opts.Logger),
		},
	})
	if err != nil {
		return nil, err
	}

	m.public, err = store.New(ctx, m.logs, m.views.View(store.NamespacePublic), store.Options{
		Logger:       opts.Logger,
		Metrics:      opts.Metrics,
		Namespace:    store.NamespacePublic,
		BootstrapKey: publicKey,
		Indexers:     []store.Indexer{record.NewIndexer(opts.Logger)},
	})
	if err != nil {
		return nil, err
	}

	m.users = user.NewUseCase(m.private, opts.Logger)
	m.privateRecords = record.NewUseCase(m.private, opts.Logger)
	m.publicRecords = record.NewUseCase(m.public, opts.Logger)

	identity, err := m.logs.LocalKeyPair(ctx, swarmNamespace)
	if err != nil {
		return nil, err
	}

	m.swarm, err = swarm.New(swarm.Options{
		KeyPair:    identity,
		Logger:     opts.Logger,
		Metrics:    opts.Metrics,
		ListenAddr: opts.ListenAddr,
		Peers:      opts.Peers,
		RetryBase:  opts.DialRetryBase,
		RetryMax:   opts.DialRetryMax,
	})
	if err != nil {
		return nil, err
	}

	m.pairing, err = pairing.New(pairing.Options{
		Private:       m.private,
		Public:        m.public,
		Users:         m.users,
		Logger:        opts.Logger,
		Metrics:       opts.Metrics,
		RequestDelay:  opts.RequestDelay,
		LoginDelay:    opts.LoginDelay,
		RetryInterval: opts.RetryInterval,
		MaxAttempts:   opts.MaxAttempts,
		LoginTimeout:  opts.LoginTimeout,
		OnReady:       opts.OnReady,
	})
	if err != nil {
		return nil, err
	}

	m.swarm.OnConnection(func(conn *swarm.Conn, info swarm.PeerInfo) {
		if err := m.pairing.HandleConnection(conn); err != nil {
			m.logger.Warn("connection not handled", "peer_key", info.PeerKey, "error", err)
		}
	})
	m.swarm.OnUpdate(func(s swarm.Stats) {
		m.logger.Debug("swarm updated",
			"connections", s.Connections,
			"connecting", s.Connecting,
			"peers", s.Peers,
		)
	})

	return m, nil
}

// Start catches the views up with the logs, joins the stores' topics and
// connects to the configured peers. Calling Start again is a no-op.
func (m *Mneme) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.destroyed {
		return fmt.Errorf("node destroyed")
	}
	if m.started {
		return nil
	}

	for _, s := range []*store.Store{m.private, m.public} {
		if err := s.Start(ctx); err != nil {
			return err
		}
	}

	if err := m.pairing.Start(ctx); err != nil {
		return err
	}

	discoveries := []*swarm.Discovery{
		m.swarm.Join(m.private.DiscoveryKey()),
		m.swarm.Join(m.public.DiscoveryKey()),
	}

	if err := m.swarm.Start(ctx); err != nil {
		return err
	}

	for _, d := range discoveries {
		if err := d.Flushed(ctx); err != nil {
			return fmt.Errorf("failed to flush topic %s: %w", d.Topic(), err)
		}
	}

	m.started = true
	m.logger.InfoContext(ctx, "node started",
		"sync_key", m.OutOfBandSyncKey(),
		"addr", m.swarm.Addr(),
		"bootstrapped", m.private.Bootstrapped(),
	)

	return nil
}

// Signup creates u with this device as its first writer
func (m *Mneme) Signup(ctx context.Context, u *models.User) error {
	return m.users.SignupIfLoggedOut(ctx, u)
}

// Login logs in the user identified by partial's email; nil when unknown
func (m *Mneme) Login(ctx context.Context, partial *models.User) (*models.User, error) {
	return m.users.Login(ctx, partial)
}

// AddPrivateRecord saves r in the private store
func (m *Mneme) AddPrivateRecord(ctx context.Context, r *models.Record) error {
	return m.privateRecords.AddRecord(ctx, r)
}

// AddPublicRecord saves r in the public store
func (m *Mneme) AddPublicRecord(ctx context.Context, r *models.Record) error {
	return m.publicRecords.AddRecord(ctx, r)
}

// LoggedIn reports whether a user session is active
func (m *Mneme) LoggedIn() bool {
	return m.users.LoggedIn()
}

// LoggedInUser returns the session user or nil
func (m *Mneme) LoggedInUser() *models.User {
	return m.users.LoggedInUser()
}

// OutOfBandSyncKey is the key another device pairs with
func (m *Mneme) OutOfBandSyncKey() string {
	return crypto.FormatSyncKey(m.private.Key(), m.public.Key())
}

// WriterKey returns this device's write key in the private store
func (m *Mneme) WriterKey() string {
	return m.private.LocalKey()
}

// Writable reports whether this device may write to the private store
func (m *Mneme) Writable() bool {
	return m.private.Writable()
}

// Ready is closed once this device has logged in after pairing
func (m *Mneme) Ready() <-chan struct{} {
	return m.pairing.Ready()
}

// Get returns the view entry for key in namespace
func (m *Mneme) Get(ctx context.Context, namespace, key string) (*view.Node, error) {
	s, err := m.store(namespace)
	if err != nil {
		return nil, err
	}

	return s.Get(ctx, key)
}

// List returns the view entries of namespace whose keys start with prefix
func (m *Mneme) List(ctx context.Context, namespace, prefix string) ([]*view.Node, error) {
	s, err := m.store(namespace)
	if err != nil {
		return nil, err
	}

	return s.List(ctx, prefix)
}

func (m *Mneme) store(namespace string) (*store.Store, error) {
	switch namespace {
	case store.NamespacePrivate:
		return m.private, nil
	case store.NamespacePublic:
		return m.public, nil
	default:
		return nil, fmt.Errorf("unknown namespace %q", namespace)
	}
}

// Addr returns the swarm listen address
func (m *Mneme) Addr() string {
	return m.swarm.Addr()
}

// Stats returns the swarm connection counts
func (m *Mneme) Stats() swarm.Stats {
	return m.swarm.Stats()
}

// Destroy closes the transport, then the logs and views. An apply pass in
// progress completes first; entries that arrive later are replayed from the
// log on the next open.
func (m *Mneme) Destroy() error {
	m.mu.Lock()
	if m.destroyed {
		m.mu.Unlock()
		return nil
	}
	m.destroyed = true
	m.mu.Unlock()

	err := m.close()
	m.logger.Info("node destroyed")

	return err
}

func (m *Mneme) close() error {
	var errs []error

	if m.pairing != nil {
		m.pairing.Close()
	}
	if m.swarm != nil {
		if err := m.swarm.Destroy(); err != nil {
			errs = append(errs, err)
		}
	}
	for _, s := range []*store.Store{m.private, m.public} {
		if s == nil {
			continue
		}
		if err := s.Destroy(); err != nil {
			errs = append(errs, err)
		}
	}
	if m.logs != nil {
		if err := m.logs.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close logs: %w", err))
		}
	}
	if m.views != nil {
		if err := m.views.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close views: %w", err))
		}
	}

	return errors.Join(errs...)
}
