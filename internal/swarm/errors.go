package swarm

import "errors"

// Common swarm errors
var (
	// ErrConnClosed indicates a send on a closed connection
	ErrConnClosed = errors.New("connection closed")

	// ErrSlowPeer indicates a peer that stopped reading while frames kept queuing
	ErrSlowPeer = errors.New("peer is not reading")

	// ErrInvalidFrame indicates a frame that cannot be decoded
	ErrInvalidFrame = errors.New("invalid frame")

	// ErrNoCommonTopic indicates a peer that shares no topic with us
	ErrNoCommonTopic = errors.New("no common topic")

	// ErrSelfConnection indicates a connection to our own peer key
	ErrSelfConnection = errors.New("connection to self")

	// ErrDestroyed indicates use of a destroyed swarm
	ErrDestroyed = errors.New("swarm destroyed")
)
