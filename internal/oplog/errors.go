package oplog

import "errors"

// Common log errors
var (
	// ErrNotWritable indicates that the local write slot is not in the log's writer set
	ErrNotWritable = errors.New("log is not writable by this device")

	// ErrClosed indicates that the log or its storage is closed
	ErrClosed = errors.New("log is closed")

	// ErrInvalidSignature indicates an entry whose signature does not match its writer
	ErrInvalidSignature = errors.New("invalid entry signature")

	// ErrGap indicates an entry whose sequence number skips ahead of the known head
	ErrGap = errors.New("entry sequence gap")

	// ErrUnknownWriter indicates entries from a key outside the writer set
	// beyond what the log keeps pending
	ErrUnknownWriter = errors.New("too many entries from unknown writers")

	// ErrInvalidEntry indicates a malformed entry
	ErrInvalidEntry = errors.New("invalid entry")
)
