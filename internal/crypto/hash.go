package crypto

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
)

// Fingerprint hashes the derived master key with SHA-256 and returns the
// hex-encoded digest. The fingerprint is persisted in plaintext metadata at
// store initialization so a wrong passphrase is detected at open time
// instead of surfacing as decode failures on every entry.
func Fingerprint(key []byte) (string, error) {
	if len(key) == 0 {
		return "", fmt.Errorf("key cannot be empty")
	}

	hash := sha256.Sum256(key)

	return hex.EncodeToString(hash[:]), nil
}

// VerifyFingerprint checks whether key matches the stored fingerprint.
// The comparison is constant-time.
func VerifyFingerprint(key []byte, fingerprint string) error {
	if len(key) == 0 {
		return fmt.Errorf("key cannot be empty")
	}
	if fingerprint == "" {
		return fmt.Errorf("fingerprint cannot be empty")
	}

	computed, err := Fingerprint(key)
	if err != nil {
		return fmt.Errorf("failed to compute key fingerprint: %w", err)
	}

	if subtle.ConstantTimeCompare([]byte(computed), []byte(fingerprint)) != 1 {
		return fmt.Errorf("key fingerprint mismatch")
	}

	return nil
}
