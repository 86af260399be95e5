package pairing

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/saimonmoore/experiment-autobee/pkg/api"
)

// messageKind is the top-level key that tags a pairing message
type messageKind int

const (
	kindUnknown messageKind = iota
	kindRequestWritable
	kindLoginPing
)

// gjson treats dots as path separators
func escapeKey(key string) string {
	return strings.ReplaceAll(key, ".", `\.`)
}

var (
	requestWritablePath = escapeKey(api.RequestWritableKey)
	loginPingPath       = escapeKey(api.LoginPingKey)
)

// detect returns the kind of payload and the raw JSON of its body
func detect(payload []byte) (messageKind, string, error) {
	if !gjson.ValidBytes(payload) {
		return kindUnknown, "", ErrMalformedMessage
	}

	root := gjson.ParseBytes(payload)
	if !root.IsObject() {
		return kindUnknown, "", ErrMalformedMessage
	}

	if body := root.Get(requestWritablePath); body.Exists() {
		return kindRequestWritable, body.Raw, nil
	}
	if body := root.Get(loginPingPath); body.Exists() {
		return kindLoginPing, body.Raw, nil
	}

	return kindUnknown, "", nil
}

func decodeRequestWritable(raw string) (*api.RequestWritable, error) {
	var req api.RequestWritable
	if err := json.Unmarshal([]byte(raw), &req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}
	if req.PrivateWriterKey == "" || req.ClaimedPrimaryStoreKey == "" {
		return nil, fmt.Errorf("%w: missing keys", ErrMalformedMessage)
	}

	return &req, nil
}

func decodeLoginPing(raw string) (*api.LoginPing, error) {
	var ping api.LoginPing
	if err := json.Unmarshal([]byte(raw), &ping); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}
	if ping.UserKey == "" {
		return nil, fmt.Errorf("%w: missing user key", ErrMalformedMessage)
	}

	return &ping, nil
}

func encodeRequestWritable(req *api.RequestWritable) ([]byte, error) {
	return json.Marshal(api.RequestWritableMessage{Request: req})
}

func encodeLoginPing(userKey string) ([]byte, error) {
	return json.Marshal(api.LoginPingMessage{Login: &api.LoginPing{UserKey: userKey}})
}
