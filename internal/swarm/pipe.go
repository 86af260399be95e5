package swarm

import (
	"io"
	"log/slog"
	"sync"

	"github.com/gorilla/websocket"
)

// Pipe returns two connected in-memory Conns, as if the peer aKey had
// dialed bKey. Neither side is started.
func Pipe(aKey, bKey string, logger *slog.Logger) (*Conn, *Conn) {
	if logger == nil {
		logger = slog.Default()
	}

	link := &memLink{done: make(chan struct{})}
	ab := make(chan []byte, 256)
	ba := make(chan []byte, 256)

	a := newConn(&memTransport{link: link, in: ba, out: ab}, bKey, true, logger)
	b := newConn(&memTransport{link: link, in: ab, out: ba}, aKey, false, logger)

	return a, b
}

// memLink is shared by both ends; closing either end closes the link
type memLink struct {
	once sync.Once
	done chan struct{}
}

type memTransport struct {
	link *memLink
	in   <-chan []byte
	out  chan<- []byte
}

func (t *memTransport) ReadMessage() (int, []byte, error) {
	// Сначала дочитываем уже отправленное
	select {
	case data := <-t.in:
		return websocket.BinaryMessage, data, nil
	default:
	}

	select {
	case data := <-t.in:
		return websocket.BinaryMessage, data, nil
	case <-t.link.done:
		return 0, nil, io.EOF
	}
}

func (t *memTransport) WriteMessage(_ int, data []byte) error {
	msg := append([]byte(nil), data...)

	select {
	case <-t.link.done:
		return io.ErrClosedPipe
	default:
	}

	select {
	case t.out <- msg:
		return nil
	case <-t.link.done:
		return io.ErrClosedPipe
	}
}

func (t *memTransport) Close() error {
	t.link.once.Do(func() { close(t.link.done) })
	return nil
}
