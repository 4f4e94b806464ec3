// Copyright 2021, 2026 Tamas Gulacsi. All rights reserved.

// Command xlrw reads and writes xlsx files row by row.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/UNO-SOFT/zlog/v2"
	"github.com/peterbourgon/ff/v3"
	"github.com/peterbourgon/ff/v3/ffcli"
	"github.com/peterbourgon/ff/v3/ffyaml"
)

var verbose zlog.VerboseVar
var logger = zlog.NewLogger(zlog.MaybeConsoleHandler(&verbose, os.Stderr)).SLog()

func main() {
	if err := Main(); err != nil && !errors.Is(err, flag.ErrHelp) {
		logger.Error("MAIN", "error", err)
		os.Exit(1)
	}
}

func Main() error {
	fs := flag.NewFlagSet("xlrw", flag.ContinueOnError)
	fs.Var(&verbose, "v", "logging verbosity")
	_ = fs.String("config", "", "config file (YAML)")

	app := ffcli.Command{Name: "xlrw", FlagSet: fs,
		ShortUsage: "xlrw [flags] <subcommand> [flags] [args...]",
		Options: []ff.Option{
			ff.WithEnvVarPrefix("XLRW"),
			ff.WithConfigFileFlag("config"),
			ff.WithConfigFileParser(ffyaml.Parser),
			ff.WithAllowMissingConfigFile(true),
		},
		Subcommands: []*ffcli.Command{
			sheetsCmd(), catCmd(), importCmd(), pdfCmd(), htmlCmd(),
		},
		Exec: func(ctx context.Context, args []string) error {
			return flag.ErrHelp
		},
	}
	if err := app.Parse(os.Args[1:]); err != nil {
		return err
	}
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()
	return app.Run(ctx)
}
