package models

import "time"

// Entry represents one stored credential in plaintext form. It only ever
// exists in memory; every string field is encrypted before it reaches the
// persistence layer.
type Entry struct {
	CreatedAt time.Time
	UpdatedAt time.Time
	Context   string
	Username  string
	Password  string
	Note      string
}

// NewEntry builds an Entry for the given credential. The note defaults to
// the empty string, never an absent value. CreatedAt is stamped once here
// and never changes; UpdatedAt starts equal to CreatedAt and is refreshed
// on every successful mutation.
func NewEntry(context, username, password, note string) *Entry {
	now := time.Now()
	return &Entry{
		Context:   context,
		Username:  username,
		Password:  password,
		Note:      note,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// EntryRecord is the persisted form of an Entry. The four string fields hold
// ciphertext (each field encrypted independently with the session key); the
// timestamps are plaintext, they are not secret.
type EntryRecord struct {
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Context   string    `json:"context"`
	Username  string    `json:"username"`
	Password  string    `json:"password"`
	Note      string    `json:"note"`
}
