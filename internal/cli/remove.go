package cli

import (
	"context"
	"flag"

	"github.com/kharidiron/pwstore/internal/store"
)

func (c *Cli) runRemove(ctx context.Context, st *store.Store, args []string) error {
	pos, rest, err := popArgs(args, "context")
	if err != nil {
		return err
	}

	fs := flag.NewFlagSet("remove", flag.ContinueOnError)
	fs.SetOutput(c.io)
	username := fs.String("username", "", "username to disambiguate the entry")
	if err := fs.Parse(rest); err != nil {
		return err
	}

	if err := st.Remove(ctx, pos[0], *username); err != nil {
		return err
	}

	c.io.Println("Entry removed.")
	return nil
}
