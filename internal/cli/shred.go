package cli

import (
	"context"
	"flag"
	"fmt"

	"github.com/kharidiron/pwstore/internal/store"
)

func (c *Cli) runShred(ctx context.Context, st *store.Store, args []string) error {
	fs := flag.NewFlagSet("shred", flag.ContinueOnError)
	fs.SetOutput(c.io)
	force := fs.Bool("force", false, "confirm destroying every entry")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if !*force {
		return fmt.Errorf("shred destroys every entry; pass --force to confirm")
	}

	if err := st.Shred(ctx); err != nil {
		return err
	}

	c.io.Println("Store shredded.")
	return nil
}
