package swarm

import "fmt"

// maxChannelLen is the longest channel name a frame can carry
const maxChannelLen = 255

// encodeFrame lays out a frame as [len(channel)][channel][payload]
func encodeFrame(channel string, payload []byte) ([]byte, error) {
	if channel == "" || len(channel) > maxChannelLen {
		return nil, fmt.Errorf("%w: channel length %d", ErrInvalidFrame, len(channel))
	}

	frame := make([]byte, 0, 1+len(channel)+len(payload))
	frame = append(frame, byte(len(channel)))
	frame = append(frame, channel...)
	frame = append(frame, payload...)

	return frame, nil
}

// decodeFrame splits a frame into channel and payload
func decodeFrame(frame []byte) (string, []byte, error) {
	if len(frame) < 2 {
		return "", nil, fmt.Errorf("%w: %d bytes", ErrInvalidFrame, len(frame))
	}

	n := int(frame[0])
	if n == 0 || len(frame) < 1+n {
		return "", nil, fmt.Errorf("%w: channel length %d of %d", ErrInvalidFrame, n, len(frame)-1)
	}

	return string(frame[1 : 1+n]), frame[1+n:], nil
}
