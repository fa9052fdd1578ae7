package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "0.1.0"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp(os.Stdout).Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "nichiei:", err)
		os.Exit(1)
	}
}

func newApp(out io.Writer) *cli.Command {
	fileFlags := func(required bool) []cli.Flag {
		return []cli.Flag{
			&cli.StringFlag{
				Name:     "untranslated",
				Aliases:  []string{"u"},
				Usage:    "spreadsheet still to be translated",
				Required: required,
			},
			&cli.StringFlag{
				Name:     "translated",
				Aliases:  []string{"t"},
				Usage:    "spreadsheet with source and translation columns",
				Required: required,
			},
		}
	}

	return &cli.Command{
		Name:    "nichiei",
		Usage:   "find terminology shared by a Japanese script and an earlier translation",
		Version: version,
		Writer:  out,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "env",
				Usage: "path of an optional .env file",
				Value: ".env",
			},
			&cli.StringFlag{
				Name:  "db",
				Usage: "SQLite glossary to record analyses in (overrides NICHIEI_DB)",
			},
			&cli.StringFlag{
				Name:  "dictionary",
				Usage: "jmdict-simplified JSON for English glosses (overrides NICHIEI_DICTIONARY)",
			},
			&cli.BoolFlag{
				Name:  "no-cache",
				Usage: "ignore and do not write analysis cache files",
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "analyze",
				Usage:     "analyze spreadsheets and write their caches",
				ArgsUsage: "FILE...",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "translated",
						Usage: "treat the files as translated documents",
					},
				},
				Action: analyzeAction,
			},
			{
				Name:   "match",
				Usage:  "list the terms two documents have in common",
				Flags:  fileFlags(true),
				Action: matchAction,
			},
			{
				Name:   "glossary",
				Usage:  "list shared terms of two documents already recorded in the glossary",
				Flags:  fileFlags(true),
				Action: glossaryAction,
			},
		},
	}
}
