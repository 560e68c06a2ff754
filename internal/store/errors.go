package store

import "errors"

// Expected, recoverable operation outcomes. Each one leaves the store
// unchanged; callers report them and return to the prompt.
var (
	// ErrDuplicateEntry indicates an add for a context/username pair that
	// already exists
	ErrDuplicateEntry = errors.New("an entry for this context and username already exists")

	// ErrNotFound indicates that no stored entry matches the probe
	ErrNotFound = errors.New("no matching entry found")

	// ErrAmbiguousMatch indicates that more than one entry matches and the
	// operation needs a username to disambiguate
	ErrAmbiguousMatch = errors.New("more than one entry matches; specify a username to disambiguate")

	// ErrWrongPassphrase indicates that the key derived from the supplied
	// passphrase does not match the store's key fingerprint
	ErrWrongPassphrase = errors.New("wrong master passphrase")
)
