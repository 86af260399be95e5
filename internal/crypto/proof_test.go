package crypto

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignAndVerifyProof(t *testing.T) {
	signer, err := GenerateKeyPair()
	require.NoError(t, err)
	other, err := GenerateKeyPair()
	require.NoError(t, err)

	token, err := SignProof(signer, "primary", "public-writer", time.Minute)
	require.NoError(t, err)

	claims, err := VerifyProof(token, signer.PublicHex())
	require.NoError(t, err)
	assert.Equal(t, "primary", claims.PrimaryStoreKey)
	assert.Equal(t, "public-writer", claims.PublicWriterKey)
	assert.Equal(t, signer.PublicHex(), claims.Subject)

	_, err = VerifyProof(token, other.PublicHex())
	assert.Error(t, err, "token is bound to the signer's key")

	_, err = VerifyProof(token, "not-a-key")
	assert.Error(t, err)

	_, err = VerifyProof("garbage", signer.PublicHex())
	assert.Error(t, err)
}

func TestSignProof_Expired(t *testing.T) {
	signer, err := GenerateKeyPair()
	require.NoError(t, err)

	token, err := SignProof(signer, "primary", "", -time.Minute)
	require.NoError(t, err, "non-positive ttl falls back to the default")

	_, err = VerifyProof(token, signer.PublicHex())
	require.NoError(t, err)

	_, err = SignProof(nil, "primary", "", time.Minute)
	assert.Error(t, err)
}
