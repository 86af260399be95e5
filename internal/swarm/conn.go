package swarm

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// transport is the message-oriented link under a Conn.
// *websocket.Conn satisfies it.
type transport interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Conn is a connection to one peer, multiplexed into named channels.
// Handlers must be registered before Start; frames for channels without a
// handler are dropped. Outbound frames are queued and written by a separate
// goroutine, so a handler may Send without waiting on the peer.
type Conn struct {
	id        string
	peerKey   string
	initiator bool
	ws        transport
	logger    *slog.Logger

	// очередь исходящих кадров, ее разбирает writeLoop
	outMu     sync.Mutex
	outbox    [][]byte
	outBytes  int
	outNotify chan struct{}
	maxQueued int

	mu       sync.RWMutex
	handlers map[string]func(payload []byte)

	startOnce sync.Once
	closeOnce sync.Once
	done      chan struct{}
}

func newConn(ws transport, peerKey string, initiator bool, logger *slog.Logger) *Conn {
	id := uuid.NewString()

	c := &Conn{
		id:        id,
		peerKey:   peerKey,
		initiator: initiator,
		ws:        ws,
		logger:    logger.With("conn_id", id, "peer_key", peerKey),
		outNotify: make(chan struct{}, 1),
		maxQueued: MaxQueuedBytes,
		handlers:  make(map[string]func(payload []byte)),
		done:      make(chan struct{}),
	}
	go c.writeLoop()

	return c
}

// ID returns a process-unique connection id
func (c *Conn) ID() string { return c.id }

// PeerKey returns the remote peer's hex public key
func (c *Conn) PeerKey() string { return c.peerKey }

// Initiator reports whether this side dialed the connection
func (c *Conn) Initiator() bool { return c.initiator }

// Done is closed once the connection is closed
func (c *Conn) Done() <-chan struct{} { return c.done }

// Handle registers fn for frames on channel, replacing any previous handler
func (c *Conn) Handle(channel string, fn func(payload []byte)) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.handlers[channel] = fn
}

// MaxQueuedBytes bounds the frames waiting to be written to one peer.
// A peer that lets the queue grow past it is disconnected.
const MaxQueuedBytes = 64 << 20

// Send queues one frame on channel. Frames are written in the order they
// were queued. Send never waits for the peer to read.
func (c *Conn) Send(channel string, payload []byte) error {
	select {
	case <-c.done:
		return ErrConnClosed
	default:
	}

	frame, err := encodeFrame(channel, payload)
	if err != nil {
		return err
	}

	c.outMu.Lock()
	if c.outBytes+len(frame) > c.maxQueued {
		queued := c.outBytes
		c.outMu.Unlock()
		c.logger.Warn("closing connection to slow peer", "queued_bytes", queued)
		c.Close()
		return ErrSlowPeer
	}
	c.outbox = append(c.outbox, frame)
	c.outBytes += len(frame)
	c.outMu.Unlock()

	select {
	case c.outNotify <- struct{}{}:
	default:
	}

	return nil
}

// Queued returns the number of bytes waiting to be written
func (c *Conn) Queued() int {
	c.outMu.Lock()
	defer c.outMu.Unlock()

	return c.outBytes
}

func (c *Conn) writeLoop() {
	for {
		select {
		case <-c.done:
			return
		case <-c.outNotify:
		}

		for {
			c.outMu.Lock()
			frames := c.outbox
			c.outbox = nil
			c.outMu.Unlock()

			if len(frames) == 0 {
				break
			}

			for _, frame := range frames {
				if err := c.ws.WriteMessage(websocket.BinaryMessage, frame); err != nil {
					select {
					case <-c.done:
					default:
						c.logger.Debug("failed to send frame", "error", err)
					}
					c.Close()
					return
				}

				c.outMu.Lock()
				c.outBytes -= len(frame)
				c.outMu.Unlock()
			}
		}
	}
}

// Start begins dispatching inbound frames to handlers
func (c *Conn) Start() {
	c.startOnce.Do(func() {
		go c.readLoop()
	})
}

// Close closes the connection; safe to call more than once
func (c *Conn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.done)
		err = c.ws.Close()
	})

	return err
}

func (c *Conn) readLoop() {
	defer c.Close()

	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			select {
			case <-c.done:
			default:
				c.logger.Debug("connection read ended", "error", err)
			}
			return
		}

		channel, payload, err := decodeFrame(data)
		if err != nil {
			c.logger.Warn("dropping frame", "error", err)
			continue
		}

		c.mu.RLock()
		fn := c.handlers[channel]
		c.mu.RUnlock()

		if fn == nil {
			c.logger.Debug("no handler for channel", "channel", channel)
			continue
		}
		fn(payload)
	}
}
