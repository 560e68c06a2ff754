package store

import (
	"fmt"
	"strconv"
	"strings"
)

// sep frames the fields of a plaintext address. The unit-separator rune is
// rejected by input validation (along with the rest of the control range),
// so distinct (serial, context, username) tuples always produce distinct
// addresses and a shorter probe can never match across a field boundary.
const sep = "\x1f"

// ComposeAddress builds the plaintext address for an entry:
//
//	<sep><serial><sep><context><sep><username><sep><sep>
//
// The address is encrypted with the session key before it is used as a
// storage key, so the literal key leaks no plaintext.
func ComposeAddress(serial uint64, context, username string) string {
	return sep + strconv.FormatUint(serial, 10) + sep + context + sep + username + sep + sep
}

// ParseAddress recovers the (serial, context, username) tuple from a
// decoded plaintext address.
func ParseAddress(address string) (serial uint64, context, username string, err error) {
	parts := strings.Split(address, sep)
	// sep-framed: "", serial, context, username, "", ""
	if len(parts) != 6 || parts[0] != "" || parts[4] != "" || parts[5] != "" {
		return 0, "", "", fmt.Errorf("malformed address")
	}

	serial, err = strconv.ParseUint(parts[1], 10, 64)
	if err != nil {
		return 0, "", "", fmt.Errorf("malformed address serial: %w", err)
	}

	return serial, parts[2], parts[3], nil
}

// Probe frames a user-supplied context (and optional username) the same way
// ComposeAddress frames them, without the serial. A context-only probe is
// open-ended on the username side; a context+username probe is terminated
// like a full address.
func Probe(context, username string) string {
	if username == "" {
		return sep + context + sep
	}
	return sep + context + sep + username + sep + sep
}
