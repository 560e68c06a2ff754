package storage

import "errors"

// Common persistence errors
var (
	// ErrKeyNotFound indicates that the requested key does not exist
	ErrKeyNotFound = errors.New("key not found")

	// ErrStoreLocked indicates that another process holds the store's
	// advisory lock
	ErrStoreLocked = errors.New("store is locked by another process")
)
