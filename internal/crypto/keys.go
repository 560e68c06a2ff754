package crypto

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"golang.org/x/crypto/argon2"
)

// Argon2id parameters used for master key derivation
const (
	// Argon2Time - number of iterations (time cost)
	Argon2Time = 1
	// Argon2Memory - memory in KB (64MB = 64*1024 KB)
	Argon2Memory = 64 * 1024
	// Argon2Threads - degree of parallelism
	Argon2Threads = 4
	// KeyLen - length of the derived key in bytes
	KeyLen = 32
	// SaltSize - size of the per-store salt in bytes
	SaltSize = 32
)

// GenerateSalt generates a cryptographically random salt of SaltSize bytes.
// The salt is created once per store and persisted in plaintext metadata.
func GenerateSalt() ([]byte, error) {
	salt := make([]byte, SaltSize)
	_, err := rand.Read(salt)
	if err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}
	return salt, nil
}

// GenerateSaltBase64 generates a random salt and returns it Base64-encoded,
// ready for storage as a string value.
func GenerateSaltBase64() (string, error) {
	salt, err := GenerateSalt()
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(salt), nil
}

// DeriveKey derives the session master key from the passphrase and the
// per-store salt using Argon2id. Deterministic for a fixed (passphrase, salt)
// pair, so previously written data stays decodable with the passphrase alone.
// An empty passphrase is rejected.
func DeriveKey(passphrase string, salt []byte) ([]byte, error) {
	if passphrase == "" {
		return nil, fmt.Errorf("passphrase cannot be empty")
	}
	if len(salt) != SaltSize {
		return nil, fmt.Errorf("salt must be %d bytes, got %d", SaltSize, len(salt))
	}

	key := argon2.IDKey([]byte(passphrase), salt, Argon2Time, Argon2Memory, Argon2Threads, KeyLen)

	return key, nil
}

// DeriveKeyFromBase64Salt derives the master key from a Base64-encoded salt
// as read back from store metadata.
func DeriveKeyFromBase64Salt(passphrase, saltBase64 string) ([]byte, error) {
	salt, err := base64.StdEncoding.DecodeString(saltBase64)
	if err != nil {
		return nil, fmt.Errorf("failed to decode salt: %w", err)
	}
	return DeriveKey(passphrase, salt)
}
