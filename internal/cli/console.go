package cli

import (
	"context"
	"errors"

	"github.com/kharidiron/pwstore/internal/iocli"
)

// RunConsole starts the interactive command loop. The master passphrase is
// read once and the session reused for the whole loop; the store (and its
// advisory lock) is held open until the user quits.
func (c *Cli) RunConsole(ctx context.Context) error {
	st, kv, err := c.openStore(ctx)
	if err != nil {
		return err
	}
	defer kv.Close()
	defer st.Close()

	c.io.Println("Password Store - console mode")
	c.io.Println("Type help or ? for a list of commands.")
	c.io.Println()

	for {
		line, err := c.io.ReadInput("(pwstore) ")
		if err != nil {
			if errors.Is(err, iocli.ErrAborted) {
				c.io.Println("Quitting.")
				return nil
			}
			return err
		}

		args := splitArgs(line)
		if len(args) == 0 {
			continue
		}

		switch args[0] {
		case "quit", "exit":
			c.io.Println("Quitting.")
			return nil
		case "help", "?":
			c.PrintUsage()
			continue
		}

		// Expected outcomes (not found, duplicate, ambiguous, aborted
		// prompt) are reported and the loop continues; the store stays
		// unchanged.
		if err := c.dispatch(ctx, st, args[0], args[1:]); err != nil {
			c.io.Printf("Error: %v\n", err)
		}
	}
}
