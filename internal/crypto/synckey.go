package crypto

import (
	"fmt"
	"strings"
)

// SyncKeySeparator separates the private and public store keys in a sync key
const SyncKeySeparator = ":"

// FormatSyncKey returns the out-of-band key a new device joins with
func FormatSyncKey(privateKey, publicKey string) string {
	return privateKey + SyncKeySeparator + publicKey
}

// ParseSyncKey splits a sync key into the private and public store keys.
// A bare private key is accepted; publicKey is then empty.
func ParseSyncKey(syncKey string) (privateKey, publicKey string, err error) {
	syncKey = strings.TrimSpace(syncKey)
	if syncKey == "" {
		return "", "", fmt.Errorf("sync key cannot be empty")
	}

	parts := strings.Split(syncKey, SyncKeySeparator)
	if len(parts) > 2 {
		return "", "", fmt.Errorf("sync key must be <private>%s<public>", SyncKeySeparator)
	}

	privateKey = parts[0]
	if _, err := ParsePublicKey(privateKey); err != nil {
		return "", "", fmt.Errorf("invalid private store key: %w", err)
	}

	if len(parts) == 2 {
		publicKey = parts[1]
		if _, err := ParsePublicKey(publicKey); err != nil {
			return "", "", fmt.Errorf("invalid public store key: %w", err)
		}
	}

	return privateKey, publicKey, nil
}
