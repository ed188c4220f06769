package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/bcnelson/pairstore/internal/app"
	"github.com/bcnelson/pairstore/internal/cli"
	"github.com/bcnelson/pairstore/internal/config"
	"github.com/bcnelson/pairstore/internal/logging"
)

func main() {
	os.Exit(run())
}

func run() int {
	args := os.Args[1:]
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		return cli.Run(context.Background(), args, os.Stdout, os.Stderr, nil)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load configuration:", err)
		return cli.ExitError
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, "invalid configuration:", err)
		return cli.ExitError
	}

	log := logging.Setup(cfg.Log.Level, cfg.Log.Format)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	doc, err := app.OpenDocument(ctx, cfg, log)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to open document backend:", err)
		return cli.ExitError
	}
	defer doc.Close()

	return cli.Run(ctx, args, os.Stdout, os.Stderr, app.NewPairStore(cfg, doc, log))
}
