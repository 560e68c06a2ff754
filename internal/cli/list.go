package cli

import (
	"context"
	"flag"
	"fmt"

	"github.com/kharidiron/pwstore/internal/store"
)

func (c *Cli) runList(ctx context.Context, st *store.Store, args []string) error {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	fs.SetOutput(c.io)
	force := fs.Bool("force", false, "confirm listing every entry in cleartext")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if !*force {
		return fmt.Errorf("list shows every password in cleartext; pass --force to confirm")
	}

	entries, err := st.List(ctx)
	if err != nil {
		return err
	}

	if len(entries) == 0 {
		c.io.Println("No entries found.")
		return nil
	}

	renderTable(c.io, entries)
	return nil
}
