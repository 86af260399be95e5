package crypto

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// KeyLen is the length of a hex-encoded ed25519 public key.
const KeyLen = ed25519.PublicKeySize * 2

// KeyPair is an ed25519 signing key pair. Devices own one per log
// namespace (their write slot) and one for the swarm (their peer identity).
type KeyPair struct {
	Public  ed25519.PublicKey
	Private ed25519.PrivateKey
}

// GenerateKeyPair генерирует новую криптографически случайную пару ключей
func GenerateKeyPair() (*KeyPair, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("failed to generate key pair: %w", err)
	}

	return &KeyPair{Public: pub, Private: priv}, nil
}

// KeyPairFromPrivate восстанавливает пару ключей из сохраненного приватного ключа
func KeyPairFromPrivate(private []byte) (*KeyPair, error) {
	if len(private) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("private key must be %d bytes, got %d", ed25519.PrivateKeySize, len(private))
	}

	priv := ed25519.PrivateKey(append([]byte(nil), private...))
	pub, ok := priv.Public().(ed25519.PublicKey)
	if !ok {
		return nil, fmt.Errorf("unexpected public key type")
	}

	return &KeyPair{Public: pub, Private: priv}, nil
}

// PublicHex returns the hex-encoded public key.
func (k *KeyPair) PublicHex() string {
	return hex.EncodeToString(k.Public)
}

// Sign signs message with the private key.
func (k *KeyPair) Sign(message []byte) []byte {
	return ed25519.Sign(k.Private, message)
}

// ParsePublicKey decodes a hex-encoded ed25519 public key.
func ParsePublicKey(key string) (ed25519.PublicKey, error) {
	if len(key) != KeyLen {
		return nil, fmt.Errorf("public key must be %d hex characters, got %d", KeyLen, len(key))
	}

	raw, err := hex.DecodeString(key)
	if err != nil {
		return nil, fmt.Errorf("failed to decode public key: %w", err)
	}

	return ed25519.PublicKey(raw), nil
}

// Verify checks signature of message against a hex-encoded public key.
func Verify(publicKey string, message, signature []byte) error {
	pub, err := ParsePublicKey(publicKey)
	if err != nil {
		return err
	}

	if !ed25519.Verify(pub, message, signature) {
		return fmt.Errorf("invalid signature")
	}

	return nil
}
