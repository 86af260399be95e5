package crypto

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/blake2b"
)

// discoveryNamespace keys the discovery-key hash so that the topic announced
// on the network never equals the log key itself.
var discoveryNamespace = []byte("mneme:discovery")

// Hash возвращает hex-encoded SHA256 от входной строки.
// Используется для детерминированных ключей сущностей (email, url).
func Hash(input string) string {
	sum := sha256.Sum256([]byte(input))

	return hex.EncodeToString(sum[:])
}

// DiscoveryKey derives the swarm topic for a log from its public key.
// Peers that know the log key can find each other, while the topic alone
// does not reveal the key.
func DiscoveryKey(key []byte) ([]byte, error) {
	if len(key) == 0 {
		return nil, fmt.Errorf("key cannot be empty")
	}

	h, err := blake2b.New256(discoveryNamespace)
	if err != nil {
		return nil, fmt.Errorf("failed to create blake2b hash: %w", err)
	}
	h.Write(key)

	return h.Sum(nil), nil
}
