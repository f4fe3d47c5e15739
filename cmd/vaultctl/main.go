package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/dmitrijs2005/gophvault/internal/server/config"
	"github.com/dmitrijs2005/gophvault/internal/vaultctl"
)

func main() {
	cfg := config.LoadConfig()

	app, err := vaultctl.NewApp(cfg, os.Stdout)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer app.Close()

	if err := app.Run(context.Background(), os.Args[1:]); err != nil {
		if !errors.Is(err, vaultctl.ErrUsage) {
			fmt.Fprintln(os.Stderr, "error:", err)
		}
		app.Close()
		os.Exit(2)
	}
}
