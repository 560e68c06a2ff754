package boltdb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.etcd.io/bbolt"

	"github.com/kharidiron/pwstore/internal/storage"
)

// lockTimeout bounds how long Open waits for the file lock held by another
// process before failing with ErrStoreLocked.
const lockTimeout = 500 * time.Millisecond

// Storage is the BoltDB implementation of the key-value mapping. BoltDB
// holds an exclusive advisory flock on the database file for the lifetime
// of the handle, which is exactly the cross-process guard the store needs.
type Storage struct {
	db *bbolt.DB
}

// Compile-time check that Storage implements the KV interface
var _ storage.KV = (*Storage)(nil)

// Open opens (creating if necessary) the BoltDB file at dbPath and ensures
// the entry and metadata buckets exist. If another process holds the file
// lock, Open fails with storage.ErrStoreLocked instead of blocking.
func Open(ctx context.Context, dbPath string) (*Storage, error) {
	db, err := bbolt.Open(dbPath, 0o600, &bbolt.Options{Timeout: lockTimeout})
	if err != nil {
		if errors.Is(err, bbolt.ErrTimeout) {
			return nil, storage.ErrStoreLocked
		}
		return nil, fmt.Errorf("failed to open boltdb: %w", err)
	}

	s := &Storage{db: db}

	if err := s.initBuckets(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize buckets: %w", err)
	}

	return s, nil
}

// Close closes the database and releases the file lock.
func (s *Storage) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Storage) initBuckets() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		for _, name := range []string{storage.BucketEntries, storage.BucketMeta} {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return fmt.Errorf("failed to create %s bucket: %w", name, err)
			}
		}
		return nil
	})
}

// Get retrieves the value stored under key.
func (s *Storage) Get(ctx context.Context, bucket, key string) ([]byte, error) {
	var value []byte

	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(bucket))
		if b == nil {
			return fmt.Errorf("%s bucket not found", bucket)
		}

		data := b.Get([]byte(key))
		if data == nil {
			return storage.ErrKeyNotFound
		}

		// Copy: bolt's slice is only valid inside the transaction
		value = append([]byte(nil), data...)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return value, nil
}

// Put stores value under key.
func (s *Storage) Put(ctx context.Context, bucket, key string, value []byte) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(bucket))
		if b == nil {
			return fmt.Errorf("%s bucket not found", bucket)
		}
		if err := b.Put([]byte(key), value); err != nil {
			return fmt.Errorf("failed to put key: %w", err)
		}
		return nil
	})
}

// Delete removes key. Deleting an absent key is not an error.
func (s *Storage) Delete(ctx context.Context, bucket, key string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(bucket))
		if b == nil {
			return fmt.Errorf("%s bucket not found", bucket)
		}
		if err := b.Delete([]byte(key)); err != nil {
			return fmt.Errorf("failed to delete key: %w", err)
		}
		return nil
	})
}

// Keys returns every key currently present in the bucket.
func (s *Storage) Keys(ctx context.Context, bucket string) ([]string, error) {
	var keys []string

	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(bucket))
		if b == nil {
			return fmt.Errorf("%s bucket not found", bucket)
		}
		return b.ForEach(func(k, v []byte) error {
			keys = append(keys, string(k))
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	return keys, nil
}

// Apply executes the batch inside a single bolt transaction.
func (s *Storage) Apply(ctx context.Context, ops []storage.Op) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		for _, op := range ops {
			b := tx.Bucket([]byte(op.Bucket))
			if b == nil {
				return fmt.Errorf("%s bucket not found", op.Bucket)
			}
			switch op.Kind {
			case storage.OpPut:
				if err := b.Put([]byte(op.Key), op.Value); err != nil {
					return fmt.Errorf("failed to put key: %w", err)
				}
			case storage.OpDelete:
				if err := b.Delete([]byte(op.Key)); err != nil {
					return fmt.Errorf("failed to delete key: %w", err)
				}
			default:
				return fmt.Errorf("unknown op kind: %d", op.Kind)
			}
		}
		return nil
	})
}
