package pairing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saimonmoore/experiment-autobee/pkg/api"
)

func TestDetect(t *testing.T) {
	request, err := encodeRequestWritable(&api.RequestWritable{
		PrivateWriterKey:       "aa",
		PublicWriterKey:        "bb",
		ClaimedPrimaryStoreKey: "cc",
	})
	require.NoError(t, err)
	ping, err := encodeLoginPing("users!abc")
	require.NoError(t, err)

	tests := []struct {
		name     string
		payload  []byte
		wantKind messageKind
		wantErr  bool
	}{
		{name: "request writable", payload: request, wantKind: kindRequestWritable},
		{name: "login ping", payload: ping, wantKind: kindLoginPing},
		{name: "unknown key", payload: []byte(`{"hello":"world"}`), wantKind: kindUnknown},
		{name: "nested key is not a tag", payload: []byte(`{"org":{"mneme":{"user":{}}}}`), wantKind: kindUnknown},
		{name: "invalid json", payload: []byte(`{"org.mneme`), wantErr: true},
		{name: "array", payload: []byte(`[1,2]`), wantErr: true},
		{name: "empty", payload: nil, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kind, _, err := detect(tt.payload)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrMalformedMessage)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantKind, kind)
		})
	}
}

func TestDecodeRequestWritable(t *testing.T) {
	payload, err := encodeRequestWritable(&api.RequestWritable{
		PrivateWriterKey:       "aa",
		PublicWriterKey:        "bb",
		ClaimedPrimaryStoreKey: "cc",
		RequestID:              "r1",
		Proof:                  "p",
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"org.mneme.user.remoteOwner.requestPrivateStoreWritable":{
		"privateStoreLocalPublicKey":"aa",
		"publicStoreLocalPublicKey":"bb",
		"privateStorePublicKey":"cc",
		"requestId":"r1",
		"proof":"p"}}`, string(payload))

	_, raw, err := detect(payload)
	require.NoError(t, err)

	req, err := decodeRequestWritable(raw)
	require.NoError(t, err)
	assert.Equal(t, "aa", req.PrivateWriterKey)
	assert.Equal(t, "bb", req.PublicWriterKey)
	assert.Equal(t, "cc", req.ClaimedPrimaryStoreKey)

	_, err = decodeRequestWritable(`{"privateStoreLocalPublicKey":"aa"}`)
	assert.ErrorIs(t, err, ErrMalformedMessage)

	_, err = decodeRequestWritable(`"string"`)
	assert.ErrorIs(t, err, ErrMalformedMessage)
}

func TestDecodeLoginPing(t *testing.T) {
	payload, err := encodeLoginPing("users!abc")
	require.NoError(t, err)
	assert.JSONEq(t, `{"org.mneme.user.remoteOwner.login":{"userKey":"users!abc"}}`, string(payload))

	_, raw, err := detect(payload)
	require.NoError(t, err)

	ping, err := decodeLoginPing(raw)
	require.NoError(t, err)
	assert.Equal(t, "users!abc", ping.UserKey)

	_, err = decodeLoginPing(`{}`)
	assert.ErrorIs(t, err, ErrMalformedMessage)
}
