package oplog

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/saimonmoore/experiment-autobee/internal/crypto"
)

// Kind distinguishes user payloads from writer-set control entries.
type Kind string

const (
	// KindOp carries an application operation, handed to the applier
	KindOp Kind = "op"
	// KindAddWriter grants write capability to the key stored in Value
	KindAddWriter Kind = "addWriter"
)

// Entry is one signed element of a writer's append-only feed.
type Entry struct {
	Writer    string `json:"writer"`    // hex public key of the writer
	Seq       uint64 `json:"seq"`       // 1-based position in the writer's feed
	Clock     int64  `json:"clock"`     // Lamport timestamp
	Kind      Kind   `json:"kind"`      // op | addWriter
	Value     []byte `json:"value"`     // payload
	Signature []byte `json:"signature"` // ed25519(writer, signable)
}

// Key uniquely identifies the entry within its log.
func (e *Entry) Key() string {
	return e.Writer + ":" + strconv.FormatUint(e.Seq, 10)
}

// size approximates the encoded size of the entry
func (e *Entry) size() int {
	return len(e.Writer) + len(e.Kind) + len(e.Value) + len(e.Signature) + 64
}

// signable returns the bytes covered by the signature. The log key is part
// of it so an entry cannot be replayed into another log.
func (e *Entry) signable(logKey string) ([]byte, error) {
	data, err := json.Marshal(struct {
		Log    string `json:"log"`
		Writer string `json:"writer"`
		Seq    uint64 `json:"seq"`
		Clock  int64  `json:"clock"`
		Kind   Kind   `json:"kind"`
		Value  []byte `json:"value"`
	}{logKey, e.Writer, e.Seq, e.Clock, e.Kind, e.Value})
	if err != nil {
		return nil, fmt.Errorf("failed to encode entry for signing: %w", err)
	}

	return data, nil
}

func (e *Entry) sign(logKey string, kp *crypto.KeyPair) error {
	msg, err := e.signable(logKey)
	if err != nil {
		return err
	}
	e.Signature = kp.Sign(msg)

	return nil
}

// verify checks the entry shape and signature.
func (e *Entry) verify(logKey string) error {
	if e.Seq == 0 {
		return fmt.Errorf("%w: zero sequence", ErrInvalidEntry)
	}
	switch e.Kind {
	case KindOp, KindAddWriter:
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidEntry, e.Kind)
	}

	msg, err := e.signable(logKey)
	if err != nil {
		return err
	}
	if err := crypto.Verify(e.Writer, msg, e.Signature); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidSignature, e.Key(), err)
	}

	return nil
}

// before reports whether a precedes b in the linearized order
// (clock, writer, seq).
func before(a, b *Entry) bool {
	if a.Clock != b.Clock {
		return a.Clock < b.Clock
	}
	if c := strings.Compare(a.Writer, b.Writer); c != 0 {
		return c < 0
	}

	return a.Seq < b.Seq
}

// Position is how far an applier has consumed the linearized log:
// the number of entries applied and the key of the last one.
type Position struct {
	Count int    `json:"count"`
	Last  string `json:"last,omitempty"`
}

// Encode serializes the position for storage next to the view.
func (p Position) Encode() ([]byte, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("failed to encode position: %w", err)
	}

	return data, nil
}

// DecodePosition parses a stored position. Empty input is the zero position.
func DecodePosition(data []byte) (Position, error) {
	var p Position
	if len(data) == 0 {
		return p, nil
	}
	if err := json.Unmarshal(data, &p); err != nil {
		return p, fmt.Errorf("failed to decode position: %w", err)
	}

	return p, nil
}
