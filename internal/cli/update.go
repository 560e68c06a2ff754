package cli

import (
	"context"
	"flag"
	"fmt"

	"github.com/kharidiron/pwstore/internal/store"
)

func (c *Cli) runUpdate(ctx context.Context, st *store.Store, args []string) error {
	pos, rest, err := popArgs(args, "context")
	if err != nil {
		return err
	}

	fs := flag.NewFlagSet("update", flag.ContinueOnError)
	fs.SetOutput(c.io)
	username := fs.String("username", "", "username to disambiguate the entry")
	newUsername := fs.String("new-username", "", "replace the username")
	newPassword := fs.Bool("new-password", false, "prompt for a replacement password")
	newNote := fs.String("new-note", "", "replace the note")
	if err := fs.Parse(rest); err != nil {
		return err
	}

	// Only fields the user explicitly asked for are touched; everything
	// else keeps its existing ciphertext.
	var upd store.Update
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "new-username":
			upd.Username = newUsername
		case "new-note":
			upd.Note = newNote
		}
	})
	if *newPassword {
		secret, err := c.io.ReadPassword("New password: ")
		if err != nil {
			return err
		}
		upd.Password = &secret
	}

	if upd.Username == nil && upd.Password == nil && upd.Note == nil {
		return fmt.Errorf("nothing to update: supply --new-username, --new-password or --new-note")
	}

	if err := st.UpdateEntry(ctx, pos[0], *username, upd); err != nil {
		return err
	}

	c.io.Println("Entry updated.")
	return nil
}
