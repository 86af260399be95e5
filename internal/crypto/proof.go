package crypto

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultProofTTL is how long a pairing proof stays valid.
const DefaultProofTTL = 5 * time.Minute

// ProofClaims binds a device's write keys to the store identity it claims
// to join. The token is signed with the private-store write key, so a peer
// cannot request write access for a key it does not hold.
type ProofClaims struct {
	PrimaryStoreKey string `json:"primary_store_key"`
	PublicWriterKey string `json:"public_writer_key,omitempty"`
	jwt.RegisteredClaims
}

// SignProof creates an EdDSA JWT proof for the given claims.
// Subject is set to the signer's public key.
func SignProof(signer *KeyPair, primaryStoreKey, publicWriterKey string, ttl time.Duration) (string, error) {
	if signer == nil {
		return "", fmt.Errorf("signer cannot be nil")
	}
	if ttl <= 0 {
		ttl = DefaultProofTTL
	}

	now := time.Now()
	claims := ProofClaims{
		PrimaryStoreKey: primaryStoreKey,
		PublicWriterKey: publicWriterKey,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   signer.PublicHex(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims).SignedString(signer.Private)
	if err != nil {
		return "", fmt.Errorf("failed to sign proof: %w", err)
	}

	return token, nil
}

// VerifyProof validates token against the claimed writer key and returns its claims.
func VerifyProof(token, writerKey string) (*ProofClaims, error) {
	pub, err := ParsePublicKey(writerKey)
	if err != nil {
		return nil, fmt.Errorf("invalid writer key: %w", err)
	}

	claims := &ProofClaims{}
	_, err = jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return pub, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodEdDSA.Alg()}), jwt.WithSubject(writerKey))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("proof expired: %w", err)
		}
		return nil, fmt.Errorf("invalid proof: %w", err)
	}

	return claims, nil
}
