package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

const (
	// NonceSize - nonce size for AES-GCM (12 bytes is the standard size)
	NonceSize = 12
)

// Encrypt encrypts data with AES-256-GCM.
// Result layout: nonce (12 bytes) + ciphertext + auth_tag (16 bytes).
// Empty plaintext is allowed; the result still carries nonce and tag so it
// round-trips back to the empty string.
func Encrypt(plaintext, key []byte) ([]byte, error) {
	if len(key) != KeyLen {
		return nil, fmt.Errorf("encryption key must be %d bytes, got %d", KeyLen, len(key))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	aesGCM, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	// Random nonce per encryption, so identical plaintexts never repeat
	// on disk
	nonce := make([]byte, NonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	// GCM appends the authentication tag to the ciphertext
	ciphertext := aesGCM.Seal(nil, nonce, plaintext, nil)

	result := make([]byte, 0, len(nonce)+len(ciphertext))
	result = append(result, nonce...)
	result = append(result, ciphertext...)

	return result, nil
}

// Decrypt decrypts data produced by Encrypt.
// Expects layout: nonce (12 bytes) + ciphertext + auth_tag (16 bytes).
// A wrong key or corrupted data fails authentication and returns an error,
// never silent garbage.
func Decrypt(encrypted, key []byte) ([]byte, error) {
	if len(encrypted) < NonceSize {
		return nil, fmt.Errorf("encrypted data too short")
	}
	if len(key) != KeyLen {
		return nil, fmt.Errorf("encryption key must be %d bytes, got %d", KeyLen, len(key))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	aesGCM, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	nonce := encrypted[:NonceSize]
	ciphertext := encrypted[NonceSize:]

	plaintext, err := aesGCM.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt: authentication failed or corrupted data: %w", err)
	}

	return plaintext, nil
}

// EncryptString encrypts a string and transport-encodes the result with
// URL-safe Base64, making it usable both as a stored value and as a storage
// key in the key-value mapping.
func EncryptString(key []byte, plaintext string) (string, error) {
	encrypted, err := Encrypt([]byte(plaintext), key)
	if err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(encrypted), nil
}

// DecryptString reverses EncryptString exactly: URL-safe Base64 decode, then
// AES-GCM decrypt.
func DecryptString(key []byte, encoded string) (string, error) {
	encrypted, err := base64.URLEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("failed to decode base64: %w", err)
	}
	plaintext, err := Decrypt(encrypted, key)
	if err != nil {
		return "", err
	}
	return string(plaintext), nil
}
