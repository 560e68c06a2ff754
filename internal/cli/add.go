package cli

import (
	"context"
	"flag"

	"github.com/kharidiron/pwstore/internal/store"
)

func (c *Cli) runAdd(ctx context.Context, st *store.Store, args []string) error {
	pos, rest, err := popArgs(args, "context", "username")
	if err != nil {
		return err
	}

	fs := flag.NewFlagSet("add", flag.ContinueOnError)
	fs.SetOutput(c.io)
	note := fs.String("note", "", "note to attach to the entry")
	if err := fs.Parse(rest); err != nil {
		return err
	}

	// The duplicate check inside Add runs before this prompt fires.
	password := func() (string, error) {
		return c.io.ReadPassword("Password for the new entry: ")
	}

	if err := st.Add(ctx, pos[0], pos[1], *note, password); err != nil {
		return err
	}

	c.io.Println("Entry added.")
	return nil
}
