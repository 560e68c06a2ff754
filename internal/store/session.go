package store

// Session holds the master key for one process session. It is created by
// Open, passed explicitly to every operation through the Store, and must be
// closed when the session ends. The key is never persisted and never logged.
type Session struct {
	key []byte
}

func newSession(key []byte) *Session {
	return &Session{key: key}
}

// Key returns the session master key.
func (s *Session) Key() []byte {
	return s.key
}

// Close zeroes the key material in place. The session is unusable
// afterwards.
func (s *Session) Close() {
	for i := range s.key {
		s.key[i] = 0
	}
	s.key = nil
}
