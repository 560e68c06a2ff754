package store

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kharidiron/pwstore/internal/models"
	"github.com/kharidiron/pwstore/internal/storage"
	"github.com/kharidiron/pwstore/internal/storage/boltdb"
)

const testPassphrase = "correct horse battery staple"

func createTestKV(t *testing.T) storage.KV {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "pwstore_test.db")

	kv, err := boltdb.Open(context.Background(), dbPath)
	require.NoError(t, err)

	t.Cleanup(func() {
		require.NoError(t, kv.Close())
	})

	return kv
}

func createTestStore(t *testing.T) (*Store, storage.KV) {
	t.Helper()

	kv := createTestKV(t)

	st, err := Open(context.Background(), kv, testPassphrase)
	require.NoError(t, err)

	t.Cleanup(st.Close)

	return st, kv
}

// pw returns a PasswordFunc serving a fixed secret.
func pw(secret string) PasswordFunc {
	return func() (string, error) {
		return secret, nil
	}
}

func TestOpen_InitializesMetadata(t *testing.T) {
	ctx := context.Background()
	st, kv := createTestStore(t)

	for _, key := range []string{
		storage.MetaSalt,
		storage.MetaFingerprint,
		storage.MetaStoreID,
		storage.MetaSerial,
	} {
		value, err := kv.Get(ctx, storage.BucketMeta, key)
		require.NoError(t, err, "metadata key %s", key)
		assert.NotEmpty(t, value)
	}

	info, err := st.Stat(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), info.NextSerial)
	assert.Zero(t, info.Entries)
	assert.NotEmpty(t, info.StoreID)
}

func TestOpen_WrongPassphrase(t *testing.T) {
	ctx := context.Background()
	st, kv := createTestStore(t)
	st.Close()

	// A wrong passphrase is detected at open time, before any entry is
	// touched
	_, err := Open(ctx, kv, "not the passphrase")
	assert.ErrorIs(t, err, ErrWrongPassphrase)

	// The right passphrase still opens the store
	st2, err := Open(ctx, kv, testPassphrase)
	require.NoError(t, err)
	st2.Close()
}

func TestOpen_EmptyPassphrase(t *testing.T) {
	kv := createTestKV(t)

	_, err := Open(context.Background(), kv, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "passphrase cannot be empty")
}

func TestAddGet(t *testing.T) {
	ctx := context.Background()
	st, _ := createTestStore(t)

	err := st.Add(ctx, "github", "alice", "work", pw("s3cret"))
	require.NoError(t, err)

	entries, err := st.Get(ctx, "github")
	require.NoError(t, err)
	require.Len(t, entries, 1)

	entry := entries[0]
	assert.Equal(t, "github", entry.Context)
	assert.Equal(t, "alice", entry.Username)
	assert.Equal(t, "s3cret", entry.Password)
	assert.Equal(t, "work", entry.Note)
	assert.False(t, entry.CreatedAt.IsZero())
	assert.False(t, entry.UpdatedAt.IsZero())
}

func TestAdd_Duplicate(t *testing.T) {
	ctx := context.Background()
	st, _ := createTestStore(t)

	require.NoError(t, st.Add(ctx, "github", "alice", "", pw("one")))

	// The duplicate check runs before the password prompt fires
	prompted := false
	err := st.Add(ctx, "github", "alice", "", func() (string, error) {
		prompted = true
		return "two", nil
	})
	assert.ErrorIs(t, err, ErrDuplicateEntry)
	assert.False(t, prompted)

	// Same context with a different username is not a duplicate
	require.NoError(t, st.Add(ctx, "github", "bob", "", pw("two")))

	entries, err := st.List(ctx)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestAdd_CaseInsensitiveDuplicate(t *testing.T) {
	ctx := context.Background()
	st, _ := createTestStore(t)

	require.NoError(t, st.Add(ctx, "GitHub", "Alice", "", pw("one")))

	err := st.Add(ctx, "github", "alice", "", pw("two"))
	assert.ErrorIs(t, err, ErrDuplicateEntry)
}

func TestAdd_RejectsControlCharacters(t *testing.T) {
	ctx := context.Background()
	st, _ := createTestStore(t)

	err := st.Add(ctx, "git\x1fhub", "alice", "", pw("x"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "control characters")
}

func TestGet_NotFound(t *testing.T) {
	ctx := context.Background()
	st, _ := createTestStore(t)

	_, err := st.Get(ctx, "nothing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGet_MatchBoundaries(t *testing.T) {
	ctx := context.Background()
	st, _ := createTestStore(t)

	require.NoError(t, st.Add(ctx, "ab", "alice", "", pw("1")))
	require.NoError(t, st.Add(ctx, "xaby", "alice", "", pw("2")))

	// Probing "ab" returns only the "ab" entry, never "xaby"
	entries, err := st.Get(ctx, "ab")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "ab", entries[0].Context)
}

func TestRemove_Disambiguation(t *testing.T) {
	ctx := context.Background()
	st, _ := createTestStore(t)

	require.NoError(t, st.Add(ctx, "github", "alice", "", pw("1")))
	require.NoError(t, st.Add(ctx, "github", "bob", "", pw("2")))

	// Ambiguous probe mutates nothing
	err := st.Remove(ctx, "github", "")
	assert.ErrorIs(t, err, ErrAmbiguousMatch)

	entries, err := st.List(ctx)
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	// A username narrows it to exactly one
	require.NoError(t, st.Remove(ctx, "github", "alice"))

	entries, err = st.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "bob", entries[0].Username)

	// Removing the missing entry again reports NotFound
	err = st.Remove(ctx, "github", "alice")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSerial_Monotonic(t *testing.T) {
	ctx := context.Background()
	st, _ := createTestStore(t)

	require.NoError(t, st.Add(ctx, "one", "u", "", pw("1")))
	require.NoError(t, st.Add(ctx, "two", "u", "", pw("2")))
	require.NoError(t, st.Add(ctx, "three", "u", "", pw("3")))

	// Removals never free serials for reuse
	require.NoError(t, st.Remove(ctx, "two", ""))

	info, err := st.Stat(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(4), info.NextSerial)
	assert.Equal(t, 2, info.Entries)

	require.NoError(t, st.Add(ctx, "four", "u", "", pw("4")))

	info, err = st.Stat(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(5), info.NextSerial)
}

func TestUpdate_NoteOnly(t *testing.T) {
	ctx := context.Background()
	st, kv := createTestStore(t)

	require.NoError(t, st.Add(ctx, "github", "alice", "work", pw("s3cret")))

	// Snapshot the stored ciphertext before the update
	before := rawRecord(t, kv)

	note := "personal"
	err := st.UpdateEntry(ctx, "github", "", Update{Note: &note})
	require.NoError(t, err)

	entries, err := st.Get(ctx, "github")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "personal", entries[0].Note)
	assert.Equal(t, "alice", entries[0].Username)
	assert.Equal(t, "s3cret", entries[0].Password)
	assert.True(t, entries[0].UpdatedAt.After(entries[0].CreatedAt))

	// Unspecified fields keep their exact ciphertext, they are never
	// re-encoded
	after := rawRecord(t, kv)
	assert.Equal(t, before.Context, after.Context)
	assert.Equal(t, before.Username, after.Username)
	assert.Equal(t, before.Password, after.Password)
	assert.NotEqual(t, before.Note, after.Note)
	assert.Equal(t, before.CreatedAt.Unix(), after.CreatedAt.Unix())
}

func TestUpdate_Username(t *testing.T) {
	ctx := context.Background()
	st, _ := createTestStore(t)

	require.NoError(t, st.Add(ctx, "github", "alice", "", pw("s3cret")))

	newUsername := "alice-work"
	err := st.UpdateEntry(ctx, "github", "", Update{Username: &newUsername})
	require.NoError(t, err)

	entries, err := st.Get(ctx, "github")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "alice-work", entries[0].Username)
	assert.Equal(t, "s3cret", entries[0].Password)

	// The old address is gone; the new one resolves
	require.NoError(t, st.Remove(ctx, "github", "alice-work"))
	_, err = st.Get(ctx, "github")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdate_UsernameCollision(t *testing.T) {
	ctx := context.Background()
	st, _ := createTestStore(t)

	require.NoError(t, st.Add(ctx, "github", "alice", "", pw("1")))
	require.NoError(t, st.Add(ctx, "github", "bob", "", pw("2")))

	// Renaming onto an existing pair would leave two entries with the
	// same identity, beyond what a username can disambiguate
	taken := "bob"
	err := st.UpdateEntry(ctx, "github", "alice", Update{Username: &taken})
	assert.ErrorIs(t, err, ErrDuplicateEntry)

	takenOtherCase := "BOB"
	err = st.UpdateEntry(ctx, "github", "alice", Update{Username: &takenOtherCase})
	assert.ErrorIs(t, err, ErrDuplicateEntry)

	// The failed rename changed nothing; both entries still resolve
	require.NoError(t, st.Remove(ctx, "github", "bob"))

	entries, err := st.Get(ctx, "github")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "alice", entries[0].Username)

	// Renaming to the current username collides only with itself
	same := "alice"
	err = st.UpdateEntry(ctx, "github", "", Update{Username: &same})
	require.NoError(t, err)
}

func TestUpdate_Disambiguation(t *testing.T) {
	ctx := context.Background()
	st, _ := createTestStore(t)

	require.NoError(t, st.Add(ctx, "github", "alice", "", pw("1")))
	require.NoError(t, st.Add(ctx, "github", "bob", "", pw("2")))

	note := "x"
	err := st.UpdateEntry(ctx, "github", "", Update{Note: &note})
	assert.ErrorIs(t, err, ErrAmbiguousMatch)

	err = st.UpdateEntry(ctx, "missing", "", Update{Note: &note})
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, st.UpdateEntry(ctx, "github", "bob", Update{Note: &note}))
}

func TestShred(t *testing.T) {
	ctx := context.Background()
	st, _ := createTestStore(t)

	require.NoError(t, st.Add(ctx, "one", "u", "", pw("1")))
	require.NoError(t, st.Add(ctx, "two", "u", "", pw("2")))

	require.NoError(t, st.Shred(ctx))

	entries, err := st.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, entries)

	info, err := st.Stat(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), info.NextSerial)

	// The store remains usable after a shred
	require.NoError(t, st.Add(ctx, "fresh", "u", "", pw("3")))
}

func TestPersistence_AcrossReopen(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "pwstore_test.db")

	kv, err := boltdb.Open(ctx, dbPath)
	require.NoError(t, err)

	st, err := Open(ctx, kv, testPassphrase)
	require.NoError(t, err)
	require.NoError(t, st.Add(ctx, "github", "alice", "work", pw("s3cret")))
	st.Close()
	require.NoError(t, kv.Close())

	kv, err = boltdb.Open(ctx, dbPath)
	require.NoError(t, err)
	defer kv.Close()

	st, err = Open(ctx, kv, testPassphrase)
	require.NoError(t, err)
	defer st.Close()

	entries, err := st.Get(ctx, "github")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "s3cret", entries[0].Password)
}

func TestEndToEndScenario(t *testing.T) {
	ctx := context.Background()
	st, _ := createTestStore(t)

	require.NoError(t, st.Add(ctx, "github", "alice", "work", pw("generated")))

	entries, err := st.Get(ctx, "github")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "alice", entries[0].Username)
	assert.Equal(t, "work", entries[0].Note)
	assert.NotEmpty(t, entries[0].Password)

	note := "personal"
	require.NoError(t, st.UpdateEntry(ctx, "github", "", Update{Note: &note}))

	entries, err = st.Get(ctx, "github")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "personal", entries[0].Note)
	assert.Equal(t, "alice", entries[0].Username)

	require.NoError(t, st.Remove(ctx, "github", "alice"))

	_, err = st.Get(ctx, "github")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSession_CloseZeroesKey(t *testing.T) {
	session := newSession([]byte{1, 2, 3, 4})
	key := session.Key()

	session.Close()

	for i, b := range key {
		assert.Zero(t, b, "key byte %d not cleared", i)
	}
	assert.Nil(t, session.Key())
}

// rawRecord loads the single stored entry record without decrypting it.
func rawRecord(t *testing.T, kv storage.KV) models.EntryRecord {
	t.Helper()

	ctx := context.Background()
	keys, err := kv.Keys(ctx, storage.BucketEntries)
	require.NoError(t, err)
	require.Len(t, keys, 1)

	value, err := kv.Get(ctx, storage.BucketEntries, keys[0])
	require.NoError(t, err)

	var rec models.EntryRecord
	require.NoError(t, json.Unmarshal(value, &rec))
	return rec
}
