package validation

import (
	"fmt"
	"unicode"
	"unicode/utf8"
)

const (
	// MaxFieldLen caps context and username length
	MaxFieldLen = 256
)

// validateField checks the shared rules for context and username: non-empty,
// bounded length, and no control characters. Control characters are rejected
// because the addressing scheme frames fields with the unit-separator rune;
// keeping the whole control range out of user input guarantees a probe can
// never cross a field boundary.
func validateField(name, value string) error {
	if value == "" {
		return fmt.Errorf("%s cannot be empty", name)
	}

	if utf8.RuneCountInString(value) > MaxFieldLen {
		return fmt.Errorf("%s must not exceed %d characters", name, MaxFieldLen)
	}

	for _, r := range value {
		if unicode.IsControl(r) {
			return fmt.Errorf("%s must not contain control characters", name)
		}
	}

	return nil
}

// ValidateContext checks that a context (site/service label) is acceptable.
func ValidateContext(context string) error {
	return validateField("context", context)
}

// ValidateUsername checks that a username is acceptable.
func ValidateUsername(username string) error {
	return validateField("username", username)
}

// ValidatePassphrase checks the minimal requirement for a master
// passphrase. The store fails closed on an empty passphrase; beyond that,
// strength is the user's call for a local single-user tool.
func ValidatePassphrase(passphrase string) error {
	if passphrase == "" {
		return fmt.Errorf("passphrase cannot be empty")
	}
	return nil
}
