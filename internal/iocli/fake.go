package iocli

import (
	"bytes"
	"fmt"
)

// Fake is a scripted IO implementation for tests. Each ReadInput and
// ReadPassword call consumes the next scripted value; running out of script
// behaves like the user aborting the prompt.
type Fake struct {
	Out       bytes.Buffer
	Inputs    []string
	Passwords []string

	inputIdx    int
	passwordIdx int
}

var _ IO = (*Fake)(nil)

func (f *Fake) Println(a ...any) {
	fmt.Fprintln(&f.Out, a...)
}

func (f *Fake) Printf(format string, a ...any) {
	fmt.Fprintf(&f.Out, format, a...)
}

func (f *Fake) ReadInput(prompt string) (string, error) {
	f.Printf("%s", prompt)
	if f.inputIdx >= len(f.Inputs) {
		return "", ErrAborted
	}
	input := f.Inputs[f.inputIdx]
	f.inputIdx++
	return input, nil
}

func (f *Fake) ReadPassword(prompt string) (string, error) {
	f.Printf("%s", prompt)
	if f.passwordIdx >= len(f.Passwords) {
		return "", ErrAborted
	}
	password := f.Passwords[f.passwordIdx]
	f.passwordIdx++
	return password, nil
}

func (f *Fake) Write(p []byte) (n int, err error) {
	return f.Out.Write(p)
}
