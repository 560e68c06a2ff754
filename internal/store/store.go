package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/kharidiron/pwstore/internal/crypto"
	"github.com/kharidiron/pwstore/internal/models"
	"github.com/kharidiron/pwstore/internal/storage"
	"github.com/kharidiron/pwstore/internal/validation"
)

// firstSerial is the counter value written at store initialization.
const firstSerial uint64 = 1

// Store composes the matcher, the addressing scheme and the abstract
// key-value mapping into the credential store operations. Every operation
// encrypts immediately before persistence and decrypts immediately after
// retrieval; plaintext never crosses the persistence boundary.
type Store struct {
	kv      storage.KV
	session *Session
}

// PasswordFunc supplies a secret value on demand, typically by prompting
// the user. It is only invoked once an operation has decided it actually
// needs the secret (after the duplicate check in Add, for example).
type PasswordFunc func() (string, error)

// Open derives the master key from passphrase and binds a session to the
// key-value mapping. A fresh mapping is initialized with a random salt, a
// key fingerprint, a store ID and the serial counter in one atomic batch.
// An existing mapping verifies the derived key against the stored
// fingerprint and fails with ErrWrongPassphrase on mismatch, before any
// entry is touched.
func Open(ctx context.Context, kv storage.KV, passphrase string) (*Store, error) {
	if err := validation.ValidatePassphrase(passphrase); err != nil {
		return nil, err
	}

	saltValue, err := kv.Get(ctx, storage.BucketMeta, storage.MetaSalt)
	switch {
	case errors.Is(err, storage.ErrKeyNotFound):
		return initialize(ctx, kv, passphrase)
	case err != nil:
		return nil, fmt.Errorf("failed to read store salt: %w", err)
	}

	key, err := crypto.DeriveKeyFromBase64Salt(passphrase, string(saltValue))
	if err != nil {
		return nil, fmt.Errorf("failed to derive key: %w", err)
	}

	fingerprint, err := kv.Get(ctx, storage.BucketMeta, storage.MetaFingerprint)
	if err != nil {
		return nil, fmt.Errorf("failed to read key fingerprint: %w", err)
	}
	if err := crypto.VerifyFingerprint(key, string(fingerprint)); err != nil {
		return nil, ErrWrongPassphrase
	}

	return &Store{kv: kv, session: newSession(key)}, nil
}

// initialize sets up the metadata for a brand new store.
func initialize(ctx context.Context, kv storage.KV, passphrase string) (*Store, error) {
	saltBase64, err := crypto.GenerateSaltBase64()
	if err != nil {
		return nil, err
	}

	key, err := crypto.DeriveKeyFromBase64Salt(passphrase, saltBase64)
	if err != nil {
		return nil, fmt.Errorf("failed to derive key: %w", err)
	}

	fingerprint, err := crypto.Fingerprint(key)
	if err != nil {
		return nil, fmt.Errorf("failed to compute key fingerprint: %w", err)
	}

	ops := []storage.Op{
		storage.Put(storage.BucketMeta, storage.MetaSalt, []byte(saltBase64)),
		storage.Put(storage.BucketMeta, storage.MetaFingerprint, []byte(fingerprint)),
		storage.Put(storage.BucketMeta, storage.MetaStoreID, []byte(uuid.New().String())),
		storage.Put(storage.BucketMeta, storage.MetaSerial, encodeSerial(firstSerial)),
	}
	if err := kv.Apply(ctx, ops); err != nil {
		return nil, fmt.Errorf("failed to initialize store: %w", err)
	}

	return &Store{kv: kv, session: newSession(key)}, nil
}

// Close zeroes the session key. The key-value mapping is owned by the
// caller and stays open.
func (s *Store) Close() {
	s.session.Close()
}

// Add stores a new entry. The duplicate check runs first; the password is
// only requested once the context/username pair is known to be unused. The
// new entry and the advanced serial counter are persisted in one atomic
// batch, so the two can never drift apart.
func (s *Store) Add(ctx context.Context, entryContext, username, note string, password PasswordFunc) error {
	if err := validation.ValidateContext(entryContext); err != nil {
		return err
	}
	if err := validation.ValidateUsername(username); err != nil {
		return err
	}

	matches, err := s.findMatches(ctx, Probe(entryContext, username))
	if err != nil {
		return err
	}
	if len(matches) > 0 {
		return ErrDuplicateEntry
	}

	secret, err := password()
	if err != nil {
		return err
	}

	serial, err := s.readSerial(ctx)
	if err != nil {
		return err
	}

	entry := models.NewEntry(entryContext, username, secret, note)
	record, err := s.encodeRecord(entry)
	if err != nil {
		return err
	}

	storageKey, err := crypto.EncryptString(s.session.Key(), ComposeAddress(serial, entryContext, username))
	if err != nil {
		return fmt.Errorf("failed to encode storage key: %w", err)
	}

	ops := []storage.Op{
		storage.Put(storage.BucketEntries, storageKey, record),
		storage.Put(storage.BucketMeta, storage.MetaSerial, encodeSerial(serial+1)),
	}
	if err := s.kv.Apply(ctx, ops); err != nil {
		return fmt.Errorf("failed to persist entry: %w", err)
	}

	return nil
}

// Remove deletes the entry matching context (and username, if given).
// Zero matches reports ErrNotFound; more than one reports ErrAmbiguousMatch
// and the caller must resupply a username. No mutation happens in either
// case.
func (s *Store) Remove(ctx context.Context, entryContext, username string) error {
	m, err := s.findUnique(ctx, entryContext, username)
	if err != nil {
		return err
	}

	if err := s.kv.Delete(ctx, storage.BucketEntries, m.storageKey); err != nil {
		return fmt.Errorf("failed to delete entry: %w", err)
	}

	return nil
}

// Update describes the fields an update should change. Nil fields are left
// untouched: their existing ciphertext is carried over unchanged, never
// re-encoded.
type Update struct {
	Username *string
	Password *string
	Note     *string
}

// UpdateEntry applies upd to the unique entry matching context (and
// username, if given), with the same disambiguation policy as Remove. Only
// supplied fields are re-encoded; UpdatedAt always refreshes. A username
// change recomposes the address under the same serial, so the old and new
// storage keys are swapped in one atomic batch.
func (s *Store) UpdateEntry(ctx context.Context, entryContext, username string, upd Update) error {
	m, err := s.findUnique(ctx, entryContext, username)
	if err != nil {
		return err
	}

	record, err := s.kv.Get(ctx, storage.BucketEntries, m.storageKey)
	if err != nil {
		return fmt.Errorf("failed to load entry: %w", err)
	}

	var rec models.EntryRecord
	if err := json.Unmarshal(record, &rec); err != nil {
		return fmt.Errorf("failed to unmarshal entry: %w", err)
	}

	serial, storedContext, storedUsername, err := ParseAddress(m.address)
	if err != nil {
		return err
	}

	key := s.session.Key()

	newUsername := storedUsername
	if upd.Username != nil {
		if err := validation.ValidateUsername(*upd.Username); err != nil {
			return err
		}
		newUsername = *upd.Username
		// A rename must not collide with an existing entry, or the pair
		// would stop being addressable even with a username supplied.
		others, err := s.findMatches(ctx, Probe(storedContext, newUsername))
		if err != nil {
			return err
		}
		for _, other := range others {
			if other.storageKey != m.storageKey {
				return ErrDuplicateEntry
			}
		}
		if rec.Username, err = crypto.EncryptString(key, newUsername); err != nil {
			return fmt.Errorf("failed to encode username: %w", err)
		}
	}
	if upd.Password != nil {
		if rec.Password, err = crypto.EncryptString(key, *upd.Password); err != nil {
			return fmt.Errorf("failed to encode password: %w", err)
		}
	}
	if upd.Note != nil {
		if rec.Note, err = crypto.EncryptString(key, *upd.Note); err != nil {
			return fmt.Errorf("failed to encode note: %w", err)
		}
	}

	rec.UpdatedAt = time.Now()

	value, err := json.Marshal(&rec)
	if err != nil {
		return fmt.Errorf("failed to marshal entry: %w", err)
	}

	ops := make([]storage.Op, 0, 2)
	storageKey := m.storageKey
	if newUsername != storedUsername {
		// The address embeds the username, so the entry moves to a new
		// storage key under the same serial.
		storageKey, err = crypto.EncryptString(key, ComposeAddress(serial, storedContext, newUsername))
		if err != nil {
			return fmt.Errorf("failed to encode storage key: %w", err)
		}
		ops = append(ops, storage.Delete(storage.BucketEntries, m.storageKey))
	}
	ops = append(ops, storage.Put(storage.BucketEntries, storageKey, value))

	if err := s.kv.Apply(ctx, ops); err != nil {
		return fmt.Errorf("failed to persist entry: %w", err)
	}

	return nil
}

// Get returns every entry whose context matches, decoded to plaintext.
// Zero matches reports ErrNotFound.
func (s *Store) Get(ctx context.Context, entryContext string) ([]*models.Entry, error) {
	if err := validation.ValidateContext(entryContext); err != nil {
		return nil, err
	}

	matches, err := s.findMatches(ctx, Probe(entryContext, ""))
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, ErrNotFound
	}

	return s.decodeMatches(ctx, matches)
}

// List returns every stored entry, decoded to plaintext.
func (s *Store) List(ctx context.Context) ([]*models.Entry, error) {
	keys, err := s.kv.Keys(ctx, storage.BucketEntries)
	if err != nil {
		return nil, fmt.Errorf("failed to list entry keys: %w", err)
	}

	matches := make([]match, 0, len(keys))
	for _, key := range keys {
		matches = append(matches, match{storageKey: key})
	}

	return s.decodeMatches(ctx, matches)
}

// Shred destroys every entry and resets the serial counter to 1 in a single
// all-or-nothing batch.
func (s *Store) Shred(ctx context.Context) error {
	keys, err := s.kv.Keys(ctx, storage.BucketEntries)
	if err != nil {
		return fmt.Errorf("failed to list entry keys: %w", err)
	}

	ops := make([]storage.Op, 0, len(keys)+1)
	for _, key := range keys {
		ops = append(ops, storage.Delete(storage.BucketEntries, key))
	}
	ops = append(ops, storage.Put(storage.BucketMeta, storage.MetaSerial, encodeSerial(firstSerial)))

	if err := s.kv.Apply(ctx, ops); err != nil {
		return fmt.Errorf("failed to shred store: %w", err)
	}

	return nil
}

// Info describes the open store for the status command.
type Info struct {
	StoreID    string
	Entries    int
	NextSerial uint64
}

// Stat reports the store ID, entry count and next serial.
func (s *Store) Stat(ctx context.Context) (*Info, error) {
	id, err := s.kv.Get(ctx, storage.BucketMeta, storage.MetaStoreID)
	if err != nil {
		return nil, fmt.Errorf("failed to read store ID: %w", err)
	}

	keys, err := s.kv.Keys(ctx, storage.BucketEntries)
	if err != nil {
		return nil, fmt.Errorf("failed to list entry keys: %w", err)
	}

	serial, err := s.readSerial(ctx)
	if err != nil {
		return nil, err
	}

	return &Info{
		StoreID:    string(id),
		Entries:    len(keys),
		NextSerial: serial,
	}, nil
}

// findUnique resolves a probe that must land on exactly one entry.
func (s *Store) findUnique(ctx context.Context, entryContext, username string) (match, error) {
	if err := validation.ValidateContext(entryContext); err != nil {
		return match{}, err
	}

	matches, err := s.findMatches(ctx, Probe(entryContext, username))
	if err != nil {
		return match{}, err
	}

	switch len(matches) {
	case 0:
		return match{}, ErrNotFound
	case 1:
		return matches[0], nil
	default:
		return match{}, ErrAmbiguousMatch
	}
}

// decodeMatches loads and decrypts the records behind matches.
func (s *Store) decodeMatches(ctx context.Context, matches []match) ([]*models.Entry, error) {
	entries := make([]*models.Entry, 0, len(matches))
	for _, m := range matches {
		value, err := s.kv.Get(ctx, storage.BucketEntries, m.storageKey)
		if err != nil {
			return nil, fmt.Errorf("failed to load entry: %w", err)
		}

		entry, err := s.decodeRecord(value)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	return entries, nil
}

// encodeRecord encrypts every string field of entry and marshals the
// persisted record.
func (s *Store) encodeRecord(entry *models.Entry) ([]byte, error) {
	key := s.session.Key()

	rec := models.EntryRecord{
		CreatedAt: entry.CreatedAt,
		UpdatedAt: entry.UpdatedAt,
	}

	var err error
	if rec.Context, err = crypto.EncryptString(key, entry.Context); err != nil {
		return nil, fmt.Errorf("failed to encode context: %w", err)
	}
	if rec.Username, err = crypto.EncryptString(key, entry.Username); err != nil {
		return nil, fmt.Errorf("failed to encode username: %w", err)
	}
	if rec.Password, err = crypto.EncryptString(key, entry.Password); err != nil {
		return nil, fmt.Errorf("failed to encode password: %w", err)
	}
	if rec.Note, err = crypto.EncryptString(key, entry.Note); err != nil {
		return nil, fmt.Errorf("failed to encode note: %w", err)
	}

	value, err := json.Marshal(&rec)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal entry: %w", err)
	}

	return value, nil
}

// decodeRecord unmarshals a persisted record and decrypts every field.
func (s *Store) decodeRecord(value []byte) (*models.Entry, error) {
	var rec models.EntryRecord
	if err := json.Unmarshal(value, &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal entry: %w", err)
	}

	key := s.session.Key()

	entry := &models.Entry{
		CreatedAt: rec.CreatedAt,
		UpdatedAt: rec.UpdatedAt,
	}

	var err error
	if entry.Context, err = crypto.DecryptString(key, rec.Context); err != nil {
		return nil, fmt.Errorf("failed to decode context: %w", err)
	}
	if entry.Username, err = crypto.DecryptString(key, rec.Username); err != nil {
		return nil, fmt.Errorf("failed to decode username: %w", err)
	}
	if entry.Password, err = crypto.DecryptString(key, rec.Password); err != nil {
		return nil, fmt.Errorf("failed to decode password: %w", err)
	}
	if entry.Note, err = crypto.DecryptString(key, rec.Note); err != nil {
		return nil, fmt.Errorf("failed to decode note: %w", err)
	}

	return entry, nil
}

// readSerial reads the next unused serial from metadata.
func (s *Store) readSerial(ctx context.Context) (uint64, error) {
	value, err := s.kv.Get(ctx, storage.BucketMeta, storage.MetaSerial)
	if err != nil {
		return 0, fmt.Errorf("failed to read serial counter: %w", err)
	}

	serial, err := strconv.ParseUint(string(value), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("corrupted serial counter: %w", err)
	}

	return serial, nil
}

func encodeSerial(serial uint64) []byte {
	return []byte(strconv.FormatUint(serial, 10))
}
