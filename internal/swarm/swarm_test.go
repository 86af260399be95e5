package swarm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saimonmoore/experiment-autobee/internal/metrics"
)

var testTopic = []byte{0xca, 0xfe}

func newTestSwarm(t *testing.T, opts Options) *Swarm {
	t.Helper()

	opts.Logger = testLogger()
	if opts.RetryBase == 0 {
		opts.RetryBase = 10 * time.Millisecond
	}
	if opts.RetryMax == 0 {
		opts.RetryMax = 50 * time.Millisecond
	}

	s, err := New(opts)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Destroy() })

	return s
}

// connRecorder collects OnConnection callbacks
type connRecorder struct {
	mu    sync.Mutex
	conns []*Conn
	infos []PeerInfo
}

func (r *connRecorder) record(c *Conn, info PeerInfo) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.conns = append(r.conns, c)
	r.infos = append(r.infos, info)
}

func (r *connRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.conns)
}

func TestSwarm_ConnectAndExchange(t *testing.T) {
	server := newTestSwarm(t, Options{ListenAddr: "127.0.0.1:0"})
	server.Join(testTopic)

	received := make(chan string, 1)
	serverConns := &connRecorder{}
	server.OnConnection(func(c *Conn, info PeerInfo) {
		serverConns.record(c, info)
		c.Handle("echo", func(payload []byte) {
			_ = c.Send("echo", append([]byte("re:"), payload...))
		})
	})
	require.NoError(t, server.Start(context.Background()))
	require.NotEmpty(t, server.Addr())

	client := newTestSwarm(t, Options{Peers: []string{server.Addr()}})
	discovery := client.Join(testTopic)
	assert.Equal(t, "cafe", discovery.Topic())

	client.OnConnection(func(c *Conn, info PeerInfo) {
		c.Handle("echo", func(payload []byte) {
			received <- string(payload)
		})
		assert.True(t, info.Initiator)
		assert.Equal(t, server.PeerKey(), info.PeerKey)
		assert.Equal(t, []string{"cafe"}, info.Topics)
		_ = c.Send("echo", []byte("hi"))
	})

	var (
		updatesMu sync.Mutex
		updates   []Stats
	)
	client.OnUpdate(func(s Stats) {
		updatesMu.Lock()
		updates = append(updates, s)
		updatesMu.Unlock()
	})

	require.NoError(t, client.Start(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, discovery.Flushed(ctx))

	select {
	case msg := <-received:
		assert.Equal(t, "re:hi", msg)
	case <-time.After(5 * time.Second):
		t.Fatal("no echo received")
	}

	require.Eventually(t, func() bool { return serverConns.count() == 1 }, 5*time.Second, 10*time.Millisecond)
	serverConns.mu.Lock()
	assert.False(t, serverConns.infos[0].Initiator)
	assert.Equal(t, client.PeerKey(), serverConns.infos[0].PeerKey)
	serverConns.mu.Unlock()

	assert.Len(t, client.Connections(), 1)
	assert.Equal(t, 1, client.Stats().Peers)

	updatesMu.Lock()
	assert.NotEmpty(t, updates)
	updatesMu.Unlock()
}

func TestSwarm_NoCommonTopic(t *testing.T) {
	server := newTestSwarm(t, Options{ListenAddr: "127.0.0.1:0"})
	server.Join([]byte{0x01})
	require.NoError(t, server.Start(context.Background()))

	client := newTestSwarm(t, Options{})
	client.Join([]byte{0x02})

	_, err := client.Dial(context.Background(), server.Addr())
	assert.Error(t, err)
	assert.Empty(t, server.Connections())
}

func TestSwarm_SelfConnection(t *testing.T) {
	s := newTestSwarm(t, Options{ListenAddr: "127.0.0.1:0"})
	s.Join(testTopic)
	require.NoError(t, s.Start(context.Background()))

	_, err := s.Dial(context.Background(), s.Addr())
	assert.ErrorIs(t, err, ErrSelfConnection)
}

func TestSwarm_DuplicateConnectionsConverge(t *testing.T) {
	a := newTestSwarm(t, Options{ListenAddr: "127.0.0.1:0"})
	b := newTestSwarm(t, Options{ListenAddr: "127.0.0.1:0"})
	a.Join(testTopic)
	b.Join(testTopic)
	require.NoError(t, a.Start(context.Background()))
	require.NoError(t, b.Start(context.Background()))

	_, err := a.Dial(context.Background(), b.Addr())
	require.NoError(t, err)
	_, err = b.Dial(context.Background(), a.Addr())
	require.NoError(t, err)

	// Обе стороны оставляют одно и то же соединение
	winner := a.PeerKey()
	if b.PeerKey() < winner {
		winner = b.PeerKey()
	}

	require.Eventually(t, func() bool {
		ac, bc := a.Connections(), b.Connections()
		if len(ac) != 1 || len(bc) != 1 {
			return false
		}
		return a.initiatorKey(ac[0]) == winner && b.initiatorKey(bc[0]) == winner
	}, 5*time.Second, 10*time.Millisecond)
}

func TestSwarm_RedialsAfterClose(t *testing.T) {
	server := newTestSwarm(t, Options{ListenAddr: "127.0.0.1:0"})
	server.Join(testTopic)
	rec := &connRecorder{}
	server.OnConnection(rec.record)
	require.NoError(t, server.Start(context.Background()))

	client := newTestSwarm(t, Options{Peers: []string{server.Addr()}})
	client.Join(testTopic)
	require.NoError(t, client.Start(context.Background()))

	require.Eventually(t, func() bool { return rec.count() == 1 }, 5*time.Second, 10*time.Millisecond)

	rec.mu.Lock()
	first := rec.conns[0]
	rec.mu.Unlock()
	require.NoError(t, first.Close())

	require.Eventually(t, func() bool { return rec.count() >= 2 }, 5*time.Second, 10*time.Millisecond)
}

func TestSwarm_StartAfterDestroy(t *testing.T) {
	s := newTestSwarm(t, Options{})
	require.NoError(t, s.Destroy())
	require.NoError(t, s.Destroy())

	assert.ErrorIs(t, s.Start(context.Background()), ErrDestroyed)
}

func TestDiscovery_FlushedAfterFailedDial(t *testing.T) {
	// Порт без слушателя: первая попытка завершится ошибкой
	s := newTestSwarm(t, Options{Peers: []string{"127.0.0.1:1"}})
	d := s.Join(testTopic)
	require.NoError(t, s.Start(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	assert.NoError(t, d.Flushed(ctx))
	assert.Empty(t, s.Connections())
}

func TestDiscovery_FlushedCanceled(t *testing.T) {
	s := newTestSwarm(t, Options{})
	d := s.Join(testTopic)
	s.pending.Add(1)
	defer s.pending.Done()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, d.Flushed(ctx), context.Canceled)
}

func TestRouter_Health(t *testing.T) {
	s := newTestSwarm(t, Options{})

	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, s.PeerKey(), resp.PeerKey)
	assert.Equal(t, 0, resp.Connections)
}

func TestRouter_Metrics(t *testing.T) {
	tests := []struct {
		metrics    *metrics.Metrics
		name       string
		wantStatus int
	}{
		{name: "enabled", metrics: metrics.New(), wantStatus: http.StatusOK},
		{name: "disabled", metrics: nil, wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestSwarm(t, Options{Metrics: tt.metrics})

			rec := httptest.NewRecorder()
			s.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestSwarmURL(t *testing.T) {
	assert.Equal(t, "ws://127.0.0.1:7000/swarm", swarmURL("127.0.0.1:7000"))
	assert.Equal(t, "ws://host/custom", swarmURL("ws://host/custom"))
	assert.Equal(t, "wss://host/swarm", swarmURL("wss://host/swarm"))
}
