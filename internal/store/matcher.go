package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/kharidiron/pwstore/internal/crypto"
	"github.com/kharidiron/pwstore/internal/storage"
)

// match pairs a storage key with its decoded plaintext address.
type match struct {
	storageKey string
	address    string
}

// findMatches decrypts every entry storage key with the session key and
// returns those whose plaintext address contains the probe,
// case-insensitively. It never mutates state. The metadata namespace is not
// part of the entry mapping, so no reserved keys need skipping here.
func (s *Store) findMatches(ctx context.Context, probe string) ([]match, error) {
	keys, err := s.kv.Keys(ctx, storage.BucketEntries)
	if err != nil {
		return nil, fmt.Errorf("failed to list entry keys: %w", err)
	}

	probe = strings.ToLower(probe)

	var matches []match
	for _, key := range keys {
		address, err := crypto.DecryptString(s.session.Key(), key)
		if err != nil {
			// The fingerprint check at open time guarantees the key is
			// right, so an undecodable storage key means corruption.
			return nil, fmt.Errorf("failed to decode storage key: %w", err)
		}

		if strings.Contains(strings.ToLower(address), probe) {
			matches = append(matches, match{storageKey: key, address: address})
		}
	}

	return matches, nil
}
