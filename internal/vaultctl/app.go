// Package vaultctl is the operator command line for the vault server. It
// talks to the same database and services as the server and reads every
// password or secret from the terminal, never from flags.
package vaultctl

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"

	"github.com/dmitrijs2005/gophvault/internal/logging"
	"github.com/dmitrijs2005/gophvault/internal/server/config"
	"github.com/dmitrijs2005/gophvault/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophvault/internal/server/services"
)

// VaultService is the subset of services.VaultService used by the commands.
type VaultService interface {
	Unlock(ctx context.Context, in services.UnlockInput) (*services.UnlockResult, error)
	AddItem(ctx context.Context, in services.AddItemInput) (*services.ItemMetadata, error)
	ListItems(ctx context.Context, userID string) ([]services.ItemMetadata, error)
	RevealItems(ctx context.Context, in services.RevealInput) ([]services.RevealedItem, error)
	DeleteItem(ctx context.Context, in services.DeleteItemInput) error
}

var ErrUsage = errors.New("usage")

type command struct {
	usage string
	run   func(a *App, ctx context.Context, args []string) error
}

var commands = map[string]command{
	"migrate": {"migrate", (*App).migrateCmd},
	"token":   {"token -user <id>", (*App).tokenCmd},
	"unlock":  {"unlock -user <id>", (*App).unlockCmd},
	"add":     {"add -user <id> -label <label>", (*App).addCmd},
	"list":    {"list -user <id>", (*App).listCmd},
	"reveal":  {"reveal -user <id>", (*App).revealCmd},
	"delete":  {"delete -user <id> -id <item id>", (*App).deleteCmd},
}

type App struct {
	config  *config.Config
	vault   VaultService
	migrate func(ctx context.Context) error
	out     io.Writer
	close   func() error
}

// NewApp opens the configured database and builds the vault service.
func NewApp(cfg *config.Config, out io.Writer) (*App, error) {
	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	logger := logging.NewJSONLogger(os.Stderr, slog.LevelWarn)
	rm := repomanager.NewPostgresRepositoryManager()

	return &App{
		config: cfg,
		vault:  services.NewVaultService(db, rm, logger),
		migrate: func(ctx context.Context) error {
			if err := rm.RunMigrations(ctx, db); err != nil {
				return err
			}
			return rm.CheckSchema(ctx, db)
		},
		out:   out,
		close: db.Close,
	}, nil
}

func (a *App) Close() error {
	if a.close == nil {
		return nil
	}
	return a.close()
}

// Run executes args[0] as a subcommand with the remaining args as its flags.
func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		a.usage()
		return ErrUsage
	}

	cmd, ok := commands[args[0]]
	if !ok {
		fmt.Fprintf(a.out, "unknown command %q\n", args[0])
		a.usage()
		return ErrUsage
	}

	if err := cmd.run(a, ctx, args[1:]); err != nil {
		if errors.Is(err, ErrUsage) {
			fmt.Fprintln(a.out, "usage: vaultctl", cmd.usage)
		}
		return err
	}
	return nil
}

func (a *App) usage() {
	names := make([]string, 0, len(commands))
	for n := range commands {
		names = append(names, n)
	}
	sort.Strings(names)

	fmt.Fprintln(a.out, "usage: vaultctl <command> [flags]")
	for _, n := range names {
		fmt.Fprintln(a.out, "  "+commands[n].usage)
	}
}
