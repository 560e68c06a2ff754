package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/kharidiron/pwstore/internal/config"
	"github.com/kharidiron/pwstore/internal/iocli"
	"github.com/kharidiron/pwstore/internal/storage"
	"github.com/kharidiron/pwstore/internal/storage/boltdb"
	"github.com/kharidiron/pwstore/internal/storage/sqlite"
	"github.com/kharidiron/pwstore/internal/store"
)

// Cli wires configuration, terminal IO and the credential store together
// and dispatches subcommands.
type Cli struct {
	io  iocli.IO
	cfg *config.Config
	log *slog.Logger
}

func New(io iocli.IO, cfg *config.Config, log *slog.Logger) *Cli {
	return &Cli{
		io:  io,
		cfg: cfg,
		log: log,
	}
}

// Run executes one invocation: a subcommand with its arguments, or the
// interactive console when no subcommand is given.
func (c *Cli) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return c.RunConsole(ctx)
	}

	command := args[0]
	if command == "help" {
		c.PrintUsage()
		return nil
	}

	st, kv, err := c.openStore(ctx)
	if err != nil {
		return err
	}
	defer kv.Close()
	defer st.Close()

	return c.dispatch(ctx, st, command, args[1:])
}

// dispatch routes a command to its runner against an open store. Shared
// between one-shot invocations and the console loop.
func (c *Cli) dispatch(ctx context.Context, st *store.Store, command string, args []string) error {
	switch command {
	case "add":
		return c.runAdd(ctx, st, args)
	case "remove":
		return c.runRemove(ctx, st, args)
	case "update":
		return c.runUpdate(ctx, st, args)
	case "get":
		return c.runGet(ctx, st, args)
	case "list":
		return c.runList(ctx, st, args)
	case "shred":
		return c.runShred(ctx, st, args)
	case "status":
		return c.runStatus(ctx, st)
	default:
		c.PrintUsage()
		return fmt.Errorf("unknown command: %s", command)
	}
}

// openStore opens the configured backend and binds a session to it. The
// caller owns both handles and must close them (store first, then kv).
func (c *Cli) openStore(ctx context.Context) (*store.Store, storage.KV, error) {
	passphrase, err := c.getPassphrase()
	if err != nil {
		return nil, nil, err
	}

	var kv storage.KV
	switch c.cfg.Backend {
	case config.BackendSQLite:
		kv, err = sqlite.Open(ctx, c.cfg.DBPath)
	default:
		kv, err = boltdb.Open(ctx, c.cfg.DBPath)
	}
	if err != nil {
		return nil, nil, err
	}

	c.log.Debug("store opened", "backend", c.cfg.Backend, "path", c.cfg.DBPath)

	st, err := store.Open(ctx, kv, passphrase)
	if err != nil {
		kv.Close()
		return nil, nil, err
	}

	return st, kv, nil
}

// getPassphrase retrieves the master passphrase with priority:
// 1. Environment variable PWSTORE_MASTER_PASSPHRASE
// 2. File named by PWSTORE_PASSPHRASE_FILE / --passphrase-file
// 3. Interactive no-echo prompt (fallback)
func (c *Cli) getPassphrase() (string, error) {
	if envPassphrase := os.Getenv(config.EnvPassphrase); envPassphrase != "" {
		return envPassphrase, nil
	}

	if c.cfg.PassphraseFile != "" {
		content, err := os.ReadFile(c.cfg.PassphraseFile)
		if err != nil {
			return "", fmt.Errorf("failed to read passphrase file: %w", err)
		}
		passphrase := strings.TrimSpace(string(content))
		if passphrase == "" {
			return "", fmt.Errorf("passphrase file is empty")
		}
		return passphrase, nil
	}

	passphrase, err := c.io.ReadPassword("Master passphrase: ")
	if err != nil {
		return "", err
	}
	if passphrase == "" {
		return "", fmt.Errorf("passphrase cannot be empty")
	}
	return passphrase, nil
}

// PrintUsage prints the command summary.
func (c *Cli) PrintUsage() {
	c.io.Println("Usage: pwstore [flags] <command> [arguments]")
	c.io.Println()
	c.io.Println("Commands:")
	c.io.Println("  add <context> <username> [--note TEXT]   add an entry")
	c.io.Println("  remove <context> [--username U]          remove an entry")
	c.io.Println("  update <context> [--username U] [--new-username U] [--new-password] [--new-note TEXT]")
	c.io.Println("                                           update an entry")
	c.io.Println("  get <context>                            show matching entries")
	c.io.Println("  list --force                             show every entry")
	c.io.Println("  shred --force                            destroy every entry")
	c.io.Println("  status                                   show store information")
	c.io.Println("  help                                     show this help")
	c.io.Println()
	c.io.Println("Running pwstore without a command starts the interactive console.")
}
