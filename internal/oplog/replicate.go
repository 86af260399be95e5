package oplog

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"

	"github.com/saimonmoore/experiment-autobee/pkg/api"
)

// Conn is a channel-multiplexed connection to a peer
type Conn interface {
	ID() string
	Send(channel string, payload []byte) error
	Handle(channel string, fn func(payload []byte))
	Done() <-chan struct{}
}

// replica is one peer the log replicates with
type replica struct {
	log  *Log
	conn Conn
}

// Channel returns the replication channel name of the log
func (l *Log) Channel() string {
	return "oplog/" + hex.EncodeToString(l.discoveryKey)
}

// Replicate starts exchanging entries with the peer on conn. The handler is
// registered synchronously; the exchange itself is driven by inbound frames
// and stops when conn, ctx or the log is closed.
func (l *Log) Replicate(ctx context.Context, conn Conn) error {
	r := &replica{log: l, conn: conn}

	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return ErrClosed
	}
	l.replicas[r] = struct{}{}
	l.mu.Unlock()

	conn.Handle(l.Channel(), func(payload []byte) {
		l.handle(ctx, r, payload)
	})

	go func() {
		select {
		case <-conn.Done():
		case <-ctx.Done():
		case <-l.done:
		}

		l.mu.Lock()
		delete(l.replicas, r)
		l.mu.Unlock()
	}()

	l.logger.DebugContext(ctx, "replicating", "conn_id", conn.ID())
	r.sendHave()

	return nil
}

func (l *Log) handle(ctx context.Context, from *replica, payload []byte) {
	var msg api.ReplicationMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		l.logger.WarnContext(ctx, "malformed replication message", "error", err, "conn_id", from.conn.ID())
		return
	}

	switch msg.Type {
	case api.ReplicationHave:
		if missing, more := l.missing(msg.Heads); len(missing) > 0 {
			from.sendEntries(missing, more)
		}

	case api.ReplicationEntries:
		entries := make([]*Entry, 0, len(msg.Entries))
		for _, e := range msg.Entries {
			entries = append(entries, entryFromAPI(e))
		}

		added, err := l.ingest(ctx, entries)
		if errors.Is(err, ErrClosed) {
			return
		}
		if err != nil {
			l.logger.WarnContext(ctx, "rejected remote entries", "error", err, "conn_id", from.conn.ID())
		}

		// Следующую пачку просим только после того, как приняли эту.
		// Отвергнутая пачка повторно не запрашивается.
		if errors.Is(err, ErrGap) || (msg.More && (len(added) > 0 || err == nil)) {
			from.sendHave()
		}

		if len(added) == 0 {
			return
		}

		l.logger.DebugContext(ctx, "remote entries ingested", "count", len(added), "conn_id", from.conn.ID())

		l.mu.RLock()
		others := l.replicasLocked()
		l.mu.RUnlock()
		for _, r := range others {
			if r != from {
				r.sendEntries(added, false)
			}
		}

		if err := l.Update(ctx); err != nil && !errors.Is(err, ErrClosed) {
			l.logger.ErrorContext(ctx, "failed to apply remote entries", "error", err)
		}

	default:
		l.logger.WarnContext(ctx, "unknown replication message", "type", msg.Type, "conn_id", from.conn.ID())
	}
}

func (r *replica) sendHave() {
	r.send(api.ReplicationMessage{
		Type:  api.ReplicationHave,
		Heads: r.log.heads(),
	})
}

func (r *replica) sendEntries(entries []*Entry, more bool) {
	out := make([]api.LogEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, entryToAPI(e))
	}

	r.send(api.ReplicationMessage{
		Type:    api.ReplicationEntries,
		Entries: out,
		More:    more,
	})
}

func (r *replica) send(msg api.ReplicationMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		r.log.logger.Error("failed to encode replication message", "error", err)
		return
	}

	if err := r.conn.Send(r.log.Channel(), data); err != nil {
		r.log.logger.Debug("failed to send replication message", "error", err, "conn_id", r.conn.ID())
	}
}

func entryToAPI(e *Entry) api.LogEntry {
	return api.LogEntry{
		Writer:    e.Writer,
		Kind:      string(e.Kind),
		Value:     e.Value,
		Signature: e.Signature,
		Seq:       e.Seq,
		Clock:     e.Clock,
	}
}

func entryFromAPI(e api.LogEntry) *Entry {
	return &Entry{
		Writer:    e.Writer,
		Seq:       e.Seq,
		Clock:     e.Clock,
		Kind:      Kind(e.Kind),
		Value:     e.Value,
		Signature: e.Signature,
	}
}
