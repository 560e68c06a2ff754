package iocli

import "errors"

// ErrAborted indicates the user cancelled an interactive prompt (EOF or
// interrupt) rather than supplying a value.
var ErrAborted = errors.New("input aborted")

// IO abstracts terminal interaction so commands can be tested with scripted
// input.
type IO interface {
	Println(a ...any)
	Printf(format string, a ...any)
	ReadInput(prompt string) (string, error)
	ReadPassword(prompt string) (string, error)
	Write(p []byte) (n int, err error)
}
