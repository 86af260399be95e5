package oplog

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saimonmoore/experiment-autobee/internal/swarm"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// memApplier records applied op values in memory
type memApplier struct {
	mu      sync.Mutex
	pos     Position
	applied []string
	resets  int
	fail    int // столько следующих Apply вернут ошибку
}

var errApply = errors.New("apply failed")

func (a *memApplier) Applied(ctx context.Context) (Position, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.pos, nil
}

func (a *memApplier) Apply(ctx context.Context, entries []*Entry, reset bool, to Position) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.fail > 0 {
		a.fail--
		return errApply
	}
	if reset {
		a.applied = nil
		a.resets++
	}
	for _, e := range entries {
		if e.Kind == KindOp {
			a.applied = append(a.applied, string(e.Value))
		}
	}
	a.pos = to

	return nil
}

func (a *memApplier) values() []string {
	a.mu.Lock()
	defer a.mu.Unlock()

	return append([]string(nil), a.applied...)
}

func newTestStorage(t *testing.T) *Storage {
	t.Helper()

	s, err := New(context.Background(), filepath.Join(t.TempDir(), "oplog.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	return s
}

func openTestLog(t *testing.T, s *Storage, bootstrapKey string) (*Log, *memApplier) {
	t.Helper()

	applier := &memApplier{}
	l, err := s.Open(context.Background(), "private", bootstrapKey, applier, testLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = l.Close() })

	return l, applier
}

// connect replicates a and b over an in-memory pipe
func connect(t *testing.T, a, b *Log) (*swarm.Conn, *swarm.Conn) {
	t.Helper()

	ca, cb := swarm.Pipe(a.LocalKey(), b.LocalKey(), testLogger())
	require.NoError(t, a.Replicate(context.Background(), ca))
	require.NoError(t, b.Replicate(context.Background(), cb))
	ca.Start()
	cb.Start()
	t.Cleanup(func() { _ = ca.Close() })

	return ca, cb
}

// connectOverWebsocket replicates a and b through two swarms linked by a
// real websocket; b dials a
func connectOverWebsocket(t *testing.T, a, b *Log) {
	t.Helper()

	ctx := context.Background()
	newSwarm := func(l *Log, opts swarm.Options) *swarm.Swarm {
		opts.Logger = testLogger()
		opts.RetryBase = 10 * time.Millisecond
		opts.RetryMax = 50 * time.Millisecond

		s, err := swarm.New(opts)
		require.NoError(t, err)
		t.Cleanup(func() { _ = s.Destroy() })

		s.Join(l.DiscoveryKey())
		s.OnConnection(func(c *swarm.Conn, _ swarm.PeerInfo) {
			assert.NoError(t, l.Replicate(ctx, c))
		})

		return s
	}

	server := newSwarm(a, swarm.Options{ListenAddr: "127.0.0.1:0"})
	require.NoError(t, server.Start(ctx))

	client := newSwarm(b, swarm.Options{Peers: []string{server.Addr()}})
	require.NoError(t, client.Start(ctx))
}
