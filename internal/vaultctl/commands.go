package vaultctl

import (
	"context"
	"flag"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/dmitrijs2005/gophvault/internal/common"
	"github.com/dmitrijs2005/gophvault/internal/flagx"
	"github.com/dmitrijs2005/gophvault/internal/server/auth"
	"github.com/dmitrijs2005/gophvault/internal/server/services"
)

type cmdFlags struct {
	user  string
	label string
	id    string
}

// parseCmdFlags reads -user, -label and -id, ignoring the server
// configuration flags that share the command line.
func parseCmdFlags(args []string) (*cmdFlags, error) {
	f := &cmdFlags{}
	fs := flag.NewFlagSet("vaultctl", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&f.user, "user", "", "user id")
	fs.StringVar(&f.label, "label", "", "item label")
	fs.StringVar(&f.id, "id", "", "item id")

	if err := fs.Parse(flagx.FilterArgs(args, []string{"-user", "-label", "-id"})); err != nil {
		return nil, ErrUsage
	}
	return f, nil
}

func requireUser(args []string) (*cmdFlags, error) {
	f, err := parseCmdFlags(args)
	if err != nil {
		return nil, err
	}
	if f.user == "" {
		return nil, ErrUsage
	}
	return f, nil
}

func (a *App) migrateCmd(ctx context.Context, _ []string) error {
	if err := a.migrate(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "schema is up to date")
	return nil
}

func (a *App) tokenCmd(_ context.Context, args []string) error {
	f, err := requireUser(args)
	if err != nil {
		return err
	}
	tok, err := auth.GenerateToken(f.user, []byte(a.config.SecretKey), a.config.AccessTokenValidityDuration)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, tok)
	return nil
}

func (a *App) unlockCmd(ctx context.Context, args []string) error {
	f, err := requireUser(args)
	if err != nil {
		return err
	}
	pw, err := getHidden(a.out, "Vault password: ")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(pw)

	res, err := a.vault.Unlock(ctx, services.UnlockInput{UserID: f.user, Password: string(pw)})
	if err != nil {
		return err
	}
	if res.SetupOccurred {
		fmt.Fprintln(a.out, "vault created")
	} else {
		fmt.Fprintln(a.out, "vault unlocked")
	}
	return nil
}

func (a *App) addCmd(ctx context.Context, args []string) error {
	f, err := requireUser(args)
	if err != nil {
		return err
	}
	if f.label == "" {
		return ErrUsage
	}

	pw, err := getHidden(a.out, "Vault password: ")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(pw)
	secret, err := getHidden(a.out, "Secret: ")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(secret)

	meta, err := a.vault.AddItem(ctx, services.AddItemInput{
		UserID:   f.user,
		Password: string(pw),
		Label:    f.label,
		Secret:   string(secret),
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "added %s (%s)\n", meta.ID, meta.Label)
	return nil
}

func (a *App) listCmd(ctx context.Context, args []string) error {
	f, err := requireUser(args)
	if err != nil {
		return err
	}
	items, err := a.vault.ListItems(ctx, f.user)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tLABEL\tCREATED")
	for _, it := range items {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", it.ID, it.Label, it.CreatedAt.Format(time.RFC3339))
	}
	return tw.Flush()
}

func (a *App) revealCmd(ctx context.Context, args []string) error {
	f, err := requireUser(args)
	if err != nil {
		return err
	}
	pw, err := getHidden(a.out, "Vault password: ")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(pw)

	items, err := a.vault.RevealItems(ctx, services.RevealInput{UserID: f.user, Password: string(pw)})
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tLABEL\tSECRET")
	for _, it := range items {
		secret := "(" + it.Error + ")"
		if it.Secret != nil {
			secret = *it.Secret
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", it.ID, it.Label, secret)
	}
	return tw.Flush()
}

func (a *App) deleteCmd(ctx context.Context, args []string) error {
	f, err := requireUser(args)
	if err != nil {
		return err
	}
	if f.id == "" {
		return ErrUsage
	}
	if err := a.vault.DeleteItem(ctx, services.DeleteItemInput{UserID: f.user, ItemID: f.id}); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "deleted", f.id)
	return nil
}
