package oplog

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/saimonmoore/experiment-autobee/internal/crdt"
	"github.com/saimonmoore/experiment-autobee/internal/crypto"
)

// Applier consumes the linearized log. Implementations persist the
// position together with the effects of the entries.
type Applier interface {
	// Applied returns the position reached by the last successful Apply
	Applied(ctx context.Context) (Position, error)

	// Apply consumes entries in order. When reset is set the previous state
	// must be discarded first (entries then start from position zero).
	// to is the position after the last entry.
	Apply(ctx context.Context, entries []*Entry, reset bool, to Position) error
}

// Log is a multi-writer log identified by the public key of its first
// writer. Each writer appends to its own feed; the log merges all feeds of
// authorized writers into one deterministic order.
type Log struct {
	storage      *Storage
	applier      Applier
	logger       *slog.Logger
	clock        *crdt.LamportClock
	local        *crypto.KeyPair
	namespace    string
	key          string
	localKey     string
	discoveryKey []byte
	bootstrapped bool

	mu       sync.RWMutex
	feeds    map[string][]*Entry // writer -> entries ordered by seq
	writers  *crdt.GSet
	replicas map[*replica]struct{}
	closed   bool
	done     chan struct{}

	// applyMu serializes apply passes
	applyMu sync.Mutex
}

// Open opens the log of namespace. With an empty bootstrapKey the device is
// the log's creator and its write slot becomes the log key; otherwise the
// log is the one identified by bootstrapKey.
func (s *Storage) Open(ctx context.Context, namespace, bootstrapKey string, applier Applier, logger *slog.Logger) (*Log, error) {
	if applier == nil {
		return nil, fmt.Errorf("applier cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	local, err := s.LocalKeyPair(ctx, namespace)
	if err != nil {
		return nil, err
	}

	key := local.PublicHex()
	if bootstrapKey != "" {
		if _, err := crypto.ParsePublicKey(bootstrapKey); err != nil {
			return nil, fmt.Errorf("invalid bootstrap key: %w", err)
		}
		key = bootstrapKey
	}

	rawKey, err := hex.DecodeString(key)
	if err != nil {
		return nil, fmt.Errorf("failed to decode log key: %w", err)
	}
	discoveryKey, err := crypto.DiscoveryKey(rawKey)
	if err != nil {
		return nil, err
	}

	l := &Log{
		storage:      s,
		applier:      applier,
		logger:       logger.With("namespace", namespace),
		clock:        crdt.NewLamportClock(),
		local:        local,
		namespace:    namespace,
		key:          key,
		localKey:     local.PublicHex(),
		discoveryKey: discoveryKey,
		bootstrapped: bootstrapKey != "",
		feeds:        make(map[string][]*Entry),
		writers:      crdt.NewGSet(key),
		replicas:     make(map[*replica]struct{}),
		done:         make(chan struct{}),
	}

	entries, err := s.loadEntries(ctx, key)
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		l.feeds[e.Writer] = append(l.feeds[e.Writer], e)
		l.clock.Observe(e.Clock)
	}
	l.recomputeWriters()

	return l, nil
}

// Key returns the hex public key identifying the log
func (l *Log) Key() string { return l.key }

// LocalKey returns the hex public key of this device's write slot
func (l *Log) LocalKey() string { return l.localKey }

// DiscoveryKey returns the swarm topic of the log
func (l *Log) DiscoveryKey() []byte { return append([]byte(nil), l.discoveryKey...) }

// Namespace returns the namespace the log was opened for
func (l *Log) Namespace() string { return l.namespace }

// Bootstrapped reports whether the log was opened from someone else's key
func (l *Log) Bootstrapped() bool { return l.bootstrapped }

// Writable reports whether this device may append
func (l *Log) Writable() bool {
	return l.IsWriter(l.localKey)
}

// IsWriter reports whether key is in the log's writer set
func (l *Log) IsWriter(key string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.writers.Contains(key)
}

// SignProof signs a pairing proof with this device's write slot
func (l *Log) SignProof(primaryKey, publicWriterKey string) (string, error) {
	return crypto.SignProof(l.local, primaryKey, publicWriterKey, crypto.DefaultProofTTL)
}

// Writers returns the writer set, sorted
func (l *Log) Writers() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.writers.Values()
}

// Length returns the number of entries in the linearized log
func (l *Log) Length() int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return len(l.linearizeLocked())
}

// Append signs and durably stores a new entry from the local write slot,
// then brings the applier up to date. A failed apply does not fail the
// append; it is retried by the next Update.
func (l *Log) Append(ctx context.Context, kind Kind, value []byte) (*Entry, error) {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return nil, ErrClosed
	}
	if !l.writers.Contains(l.localKey) {
		l.mu.Unlock()
		return nil, ErrNotWritable
	}

	feed := l.feeds[l.localKey]
	e := &Entry{
		Writer: l.localKey,
		Seq:    uint64(len(feed)) + 1,
		Clock:  l.clock.Tick(),
		Kind:   kind,
		Value:  append([]byte(nil), value...),
	}
	if err := e.sign(l.key, l.local); err != nil {
		l.mu.Unlock()
		return nil, err
	}

	if _, err := l.storage.saveEntry(ctx, l.key, e); err != nil {
		l.mu.Unlock()
		return nil, err
	}
	l.feeds[l.localKey] = append(feed, e)
	if kind == KindAddWriter {
		l.recomputeWriters()
	}
	replicas := l.replicasLocked()
	l.mu.Unlock()

	l.logger.DebugContext(ctx, "entry appended",
		"seq", e.Seq,
		"clock", e.Clock,
		"kind", e.Kind,
	)

	for _, r := range replicas {
		r.sendEntries([]*Entry{e}, false)
	}

	// Запись уже сохранена и разослана: ошибку применения повторит
	// следующий Update
	if err := l.Update(ctx); err != nil && !errors.Is(err, ErrClosed) {
		l.logger.ErrorContext(ctx, "failed to apply appended entry", "seq", e.Seq, "error", err)
	}

	return e, nil
}

// AddWriter appends a control entry granting write capability to key.
// Adding a key that is already a writer is a no-op.
func (l *Log) AddWriter(ctx context.Context, key string) error {
	if _, err := crypto.ParsePublicKey(key); err != nil {
		return fmt.Errorf("invalid writer key: %w", err)
	}
	if l.IsWriter(key) {
		return nil
	}

	if _, err := l.Append(ctx, KindAddWriter, []byte(key)); err != nil {
		return fmt.Errorf("failed to add writer: %w", err)
	}

	return nil
}

// Entries from keys outside the writer set are kept so that a later
// addWriter can admit them, but only this many.
const (
	maxPendingWriters = 8
	maxPendingEntries = 256 // на одного писателя
)

// ingest stores verified remote entries. Entries must be contiguous per
// writer; the first gap stops ingestion of that writer's feed. Feeds of
// authorized writers go first, so a grant earlier in the batch admits the
// feeds it names. Returns the entries that were new.
func (l *Log) ingest(ctx context.Context, entries []*Entry) ([]*Entry, error) {
	byWriter := make(map[string][]*Entry)
	for _, e := range entries {
		byWriter[e.Writer] = append(byWriter[e.Writer], e)
	}
	remaining := make([]string, 0, len(byWriter))
	for w, feed := range byWriter {
		sort.SliceStable(feed, func(i, j int) bool { return feed[i].Seq < feed[j].Seq })
		remaining = append(remaining, w)
	}
	sort.Strings(remaining)

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil, ErrClosed
	}

	in := &ingestion{log: l, ctx: ctx}
	for w := range l.feeds {
		if !l.writers.Contains(w) {
			in.pending++
		}
	}

	for progress := true; progress; {
		progress = false
		next := remaining[:0]
		for _, w := range remaining {
			if !l.writers.Contains(w) {
				next = append(next, w)
				continue
			}
			if err := in.feed(byWriter[w]); err != nil {
				return in.added, err
			}
			progress = true
		}
		remaining = next
	}

	for _, w := range remaining {
		if err := in.feed(byWriter[w]); err != nil {
			return in.added, err
		}
	}

	if len(in.added) > 0 {
		l.recomputeWriters()
	}

	return in.added, in.firstErr
}

// ingestion is the state of one ingest call. Log.mu is held throughout.
type ingestion struct {
	log      *Log
	ctx      context.Context
	added    []*Entry
	firstErr error
	pending  int // фиды писателей вне множества
}

func (in *ingestion) reject(err error) {
	if in.firstErr == nil {
		in.firstErr = err
	}
}

// feed ingests entries of one writer ordered by seq. Verification errors
// stop the feed and are reported through firstErr; storage errors are
// returned.
func (in *ingestion) feed(entries []*Entry) error {
	l := in.log

	for _, e := range entries {
		if err := e.verify(l.key); err != nil {
			in.reject(err)
			return nil
		}

		head := uint64(len(l.feeds[e.Writer]))
		switch {
		case e.Seq <= head:
			// уже есть
			continue
		case e.Seq > head+1:
			in.reject(fmt.Errorf("%w: %s has %d, got %d", ErrGap, e.Writer, head, e.Seq))
			return nil
		}

		if !l.writers.Contains(e.Writer) {
			if (head == 0 && in.pending >= maxPendingWriters) || head >= maxPendingEntries {
				in.reject(fmt.Errorf("%w: %s", ErrUnknownWriter, e.Writer))
				return nil
			}
			if head == 0 {
				in.pending++
			}
		}

		if _, err := l.storage.saveEntry(in.ctx, l.key, e); err != nil {
			return err
		}
		l.feeds[e.Writer] = append(l.feeds[e.Writer], e)
		l.clock.Observe(e.Clock)
		in.added = append(in.added, e)

		if e.Kind == KindAddWriter {
			l.recomputeWriters()
		}
	}

	return nil
}

// heads returns the length of every known feed
func (l *Log) heads() map[string]uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()

	heads := make(map[string]uint64, len(l.feeds))
	for w, feed := range l.feeds {
		heads[w] = uint64(len(feed))
	}

	return heads
}

// Catch-up batch limits. A batch always carries at least one entry.
const (
	maxBatchEntries = 256
	maxBatchBytes   = 1 << 20
)

// missing returns the next batch of entries the remote side lacks given its
// heads, and whether more remain after it. Entries of each writer come in
// seq order, so every batch extends the remote feeds without gaps. Feeds
// follow feedOrderLocked, so an addWriter reaches the remote side before the
// entries it authorizes.
func (l *Log) missing(remote map[string]uint64) ([]*Entry, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var (
		out  []*Entry
		size int
	)
	for _, w := range l.feedOrderLocked() {
		feed := l.feeds[w]
		for _, e := range feed[min(remote[w], uint64(len(feed))):] {
			if len(out) > 0 && (len(out) == maxBatchEntries || size+e.size() > maxBatchBytes) {
				return out, true
			}
			out = append(out, e)
			size += e.size()
		}
	}

	return out, false
}

// feedOrderLocked returns the log key, then writers in the order they were
// granted, then the remaining feeds sorted. Caller must hold mu.
func (l *Log) feedOrderLocked() []string {
	order := make([]string, 0, len(l.feeds)+1)
	seen := make(map[string]bool, len(l.feeds)+1)
	visit := func(w string) {
		if !seen[w] {
			seen[w] = true
			order = append(order, w)
		}
	}

	visit(l.key)
	for i := 0; i < len(order); i++ {
		for _, e := range l.feeds[order[i]] {
			if e.Kind == KindAddWriter {
				visit(string(e.Value))
			}
		}
	}

	rest := make([]string, 0, len(l.feeds))
	for w := range l.feeds {
		if !seen[w] {
			rest = append(rest, w)
		}
	}
	sort.Strings(rest)

	return append(order, rest...)
}

// recomputeWriters rebuilds the writer set as the closure of addWriter
// entries reachable from the log key. Caller must hold mu.
func (l *Log) recomputeWriters() {
	writers := crdt.NewGSet(l.key)
	for changed := true; changed; {
		changed = false
		for _, w := range writers.Values() {
			for _, e := range l.feeds[w] {
				if e.Kind == KindAddWriter && writers.Add(string(e.Value)) > 0 {
					changed = true
				}
			}
		}
	}
	l.writers = writers
}

// linearizeLocked returns entries of authorized writers in (clock, writer,
// seq) order. Caller must hold mu.
func (l *Log) linearizeLocked() []*Entry {
	var out []*Entry
	for w, feed := range l.feeds {
		if l.writers.Contains(w) {
			out = append(out, feed...)
		}
	}
	sort.Slice(out, func(i, j int) bool { return before(out[i], out[j]) })

	return out
}

// Update brings the applier up to date with the current linearization.
// If the prefix the applier consumed is still a prefix of the log only the
// tail is applied, otherwise the applier is reset and everything replayed.
func (l *Log) Update(ctx context.Context) error {
	l.applyMu.Lock()
	defer l.applyMu.Unlock()

	l.mu.RLock()
	if l.closed {
		l.mu.RUnlock()
		return ErrClosed
	}
	linear := l.linearizeLocked()
	l.mu.RUnlock()

	pos, err := l.applier.Applied(ctx)
	if err != nil {
		return fmt.Errorf("failed to read applied position: %w", err)
	}

	to := Position{Count: len(linear)}
	if len(linear) > 0 {
		to.Last = linear[len(linear)-1].Key()
	}

	prefixIntact := pos.Count <= len(linear) &&
		(pos.Count == 0 || linear[pos.Count-1].Key() == pos.Last)

	if prefixIntact {
		tail := linear[pos.Count:]
		if len(tail) == 0 {
			return nil
		}
		if err := l.applier.Apply(ctx, tail, false, to); err != nil {
			return fmt.Errorf("failed to apply entries: %w", err)
		}
		return nil
	}

	l.logger.InfoContext(ctx, "log reordered, replaying view",
		"applied", pos.Count,
		"length", len(linear),
	)
	if err := l.applier.Apply(ctx, linear, true, to); err != nil {
		return fmt.Errorf("failed to replay entries: %w", err)
	}

	return nil
}

// Close stops replication and rejects further appends. An apply pass in
// flight is allowed to finish.
func (l *Log) Close() error {
	l.applyMu.Lock()
	defer l.applyMu.Unlock()

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil
	}
	l.closed = true
	close(l.done)
	l.replicas = make(map[*replica]struct{})

	return nil
}

func (l *Log) replicasLocked() []*replica {
	out := make([]*replica, 0, len(l.replicas))
	for r := range l.replicas {
		out = append(out, r)
	}

	return out
}
