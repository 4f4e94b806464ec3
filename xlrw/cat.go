// Copyright 2026 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/UNO-SOFT/sheetrw"
	"github.com/UNO-SOFT/sheetrw/xlsx"
	"github.com/peterbourgon/ff/v3/ffcli"
)

func sheetsCmd() *ffcli.Command {
	fs := flag.NewFlagSet("sheets", flag.ContinueOnError)
	return &ffcli.Command{Name: "sheets", FlagSet: fs,
		ShortUsage: "sheets file.xlsx",
		ShortHelp:  "list the sheet names",
		Exec: func(ctx context.Context, args []string) error {
			fn, err := oneArg(args)
			if err != nil {
				return err
			}
			r, err := xlsx.Open(fn, xlsx.WithLogger(logger))
			if err != nil {
				return err
			}
			defer r.Close()
			for _, name := range r.SheetNames() {
				if _, err := fmt.Fprintln(os.Stdout, name); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func catCmd() *ffcli.Command {
	fs := flag.NewFlagSet("cat", flag.ContinueOnError)
	ref := sheetFlags(fs)
	flagEnc := fs.String("charset", sheetrw.EncName, "csv charset name")
	flagSep := fs.String("sep", ",", "csv field separator")
	flagOut := fs.String("o", "-", "output file name (.gz is compressed)")
	return &ffcli.Command{Name: "cat", FlagSet: fs,
		ShortUsage: "cat [flags] file.xlsx",
		ShortHelp:  "print the rows of a sheet as CSV",
		Exec: func(ctx context.Context, args []string) error {
			fn, err := oneArg(args)
			if err != nil {
				return err
			}
			sep := []rune(*flagSep)
			if len(sep) != 1 {
				return fmt.Errorf("separator must be one character, got %q", *flagSep)
			}
			r, err := xlsx.Open(fn, xlsx.WithLogger(logger))
			if err != nil {
				return err
			}
			defer r.Close()

			out, err := createOutput(*flagOut)
			if err != nil {
				return err
			}
			defer out.Close()
			cw, err := sheetrw.NewCsvWriter(out, *flagEnc, sep[0])
			if err != nil {
				return err
			}
			var record []string
			for row, err := range r.ReadLines(ref()) {
				if err != nil {
					return err
				}
				if err = ctx.Err(); err != nil {
					return err
				}
				record = record[:0]
				for _, v := range row {
					record = append(record, cellText(v))
				}
				if err = cw.Write(record); err != nil {
					return err
				}
			}
			if err := cw.Close(); err != nil {
				return err
			}
			return out.Close()
		},
	}
}
