package cli

import (
	"context"

	"github.com/kharidiron/pwstore/internal/store"
)

func (c *Cli) runGet(ctx context.Context, st *store.Store, args []string) error {
	pos, _, err := popArgs(args, "context")
	if err != nil {
		return err
	}

	entries, err := st.Get(ctx, pos[0])
	if err != nil {
		return err
	}

	renderTable(c.io, entries)
	return nil
}
