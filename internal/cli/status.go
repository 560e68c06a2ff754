package cli

import (
	"context"

	"github.com/kharidiron/pwstore/internal/store"
)

func (c *Cli) runStatus(ctx context.Context, st *store.Store) error {
	info, err := st.Stat(ctx)
	if err != nil {
		return err
	}

	c.io.Printf("Store:       %s\n", c.cfg.DBPath)
	c.io.Printf("Backend:     %s\n", c.cfg.Backend)
	c.io.Printf("Store ID:    %s\n", info.StoreID)
	c.io.Printf("Entries:     %d\n", info.Entries)
	c.io.Printf("Next serial: %d\n", info.NextSerial)

	return nil
}
