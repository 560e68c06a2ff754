package storage

import "context"

// Bucket names for the two key namespaces. Entries holds one record per
// credential under its encrypted address; Meta holds the small set of
// plaintext store metadata (serial counter, salt, key fingerprint, store ID).
const (
	BucketEntries = "entries"
	BucketMeta    = "meta"
)

// Reserved keys inside the Meta bucket.
const (
	MetaSerial      = "serial"
	MetaSalt        = "salt"
	MetaFingerprint = "fingerprint"
	MetaStoreID     = "store_id"
)

// OpKind identifies the kind of a batched mutation.
type OpKind int

const (
	OpPut OpKind = iota
	OpDelete
)

// Op is one mutation inside an atomic batch.
type Op struct {
	Bucket string
	Key    string
	Value  []byte
	Kind   OpKind
}

// Put builds a put operation.
func Put(bucket, key string, value []byte) Op {
	return Op{Kind: OpPut, Bucket: bucket, Key: key, Value: value}
}

// Delete builds a delete operation.
func Delete(bucket, key string) Op {
	return Op{Kind: OpDelete, Bucket: bucket, Key: key}
}

// KV defines the abstract ordered mapping the credential store persists
// through: string keys to opaque byte blobs, durable across process
// restarts. Implementations must hold an advisory lock on the underlying
// file for as long as they are open and fail fast with ErrStoreLocked when
// another process already holds it.
type KV interface {
	// Get retrieves the value stored under key.
	// Returns ErrKeyNotFound if the key does not exist.
	Get(ctx context.Context, bucket, key string) ([]byte, error)

	// Put stores value under key, replacing any previous value.
	Put(ctx context.Context, bucket, key string, value []byte) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, bucket, key string) error

	// Keys returns every key currently present in the bucket.
	Keys(ctx context.Context, bucket string) ([]string, error)

	// Apply executes the batch as a single transaction: either every
	// operation is durable or none is visible.
	Apply(ctx context.Context, ops []Op) error

	// Close releases the store and its advisory lock.
	Close() error
}
