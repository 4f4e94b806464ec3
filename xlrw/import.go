// Copyright 2026 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"

	"github.com/UNO-SOFT/sheetrw"
	"github.com/UNO-SOFT/sheetrw/xlsx"
	"github.com/peterbourgon/ff/v3/ffcli"
)

func importCmd() *ffcli.Command {
	fs := flag.NewFlagSet("import", flag.ContinueOnError)
	flagEnc := fs.String("charset", sheetrw.EncName, "csv charset name")
	flagOut := fs.String("o", sheetrw.DefaultFileName, "output file name")
	flagStream := fs.Bool("stream", false, "stream the rows into the file (for big inputs)")
	flagAppend := fs.Bool("append", false, "append to the sheets of the existing output file")
	flagNumbers := fs.Bool("numbers", false, "store numeric fields as numbers")
	return &ffcli.Command{Name: "import", FlagSet: fs,
		ShortUsage: "import [flags] [sheet:]file.csv...",
		ShortHelp:  "copy CSV files into sheets of an xlsx file",
		LongHelp: `Each CSV file is copied into its own sheet, named after the file,
or as given before the colon. "-" is the standard input.`,
		Exec: func(ctx context.Context, args []string) error {
			if len(args) == 0 {
				args = []string{"-"}
			}
			if *flagStream && *flagAppend {
				return fmt.Errorf("-stream and -append are mutually exclusive: %w", flag.ErrHelp)
			}
			imp := importer{encName: *flagEnc, numbers: *flagNumbers}
			if *flagStream {
				return xlsx.WithStream(*flagOut, func(sw *xlsx.StreamWriter) error {
					return imp.importAll(ctx, sw, args)
				}, xlsx.WithLogger(logger))
			}
			var w *xlsx.Writer
			if *flagAppend {
				var err error
				if w, err = xlsx.OpenWriter(*flagOut, xlsx.WithLogger(logger)); err != nil {
					return err
				}
			} else {
				w = xlsx.NewWriter(xlsx.WithLogger(logger))
			}
			if err := imp.importAll(ctx, w, args); err != nil {
				_ = w.Close()
				return err
			}
			return w.Save(*flagOut)
		},
	}
}

type importer struct {
	encName string
	numbers bool
}

// importAll copies the files concurrently, each into its own sheet.
func (imp importer) importAll(ctx context.Context, wb sheetrw.Workbook, args []string) error {
	var wg sync.WaitGroup
	errs := make([]error, len(args))
	for i, arg := range args {
		sheetName, fn := sheetAndFile(arg, i)
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := imp.copyFile(ctx, wb, sheetName, fn); err != nil {
				errs[i] = fmt.Errorf("%q: %w", fn, err)
			}
		}()
	}
	wg.Wait()
	return errors.Join(errs...)
}

// sheetAndFile splits "sheet:file.csv"; without a sheet name, it is the base
// name of the file, or Sheet<i+1> for the standard input.
func sheetAndFile(arg string, i int) (string, string) {
	if i := strings.IndexByte(arg, ':'); i >= 0 {
		return arg[:i], arg[i+1:]
	}
	if arg != "" && arg != "-" {
		return strings.TrimSuffix(filepath.Base(arg), ".csv"), arg
	}
	return fmt.Sprintf("Sheet%d", i+1), arg
}

func (imp importer) copyFile(ctx context.Context, wb sheetrw.Workbook, sheetName, fn string) error {
	cr, err := sheetrw.OpenCsv(fn, imp.encName)
	if err != nil {
		return err
	}
	defer cr.Close()
	lw, err := wb.LineWriter(sheetName)
	if err != nil {
		return err
	}
	logger.Debug("import", "file", fn, "sheet", lw.Sheet())

	var rowI []any
	for n := 0; ; n++ {
		row, err := cr.Read()
		if err != nil {
			if err == io.EOF {
				break
			}
			return err
		}
		if n%1024 == 0 {
			if err = ctx.Err(); err != nil {
				return err
			}
		}
		rowI = rowI[:0]
		for _, s := range row {
			if imp.numbers && n != 0 {
				rowI = append(rowI, sheetrw.Number(s))
			} else {
				rowI = append(rowI, s)
			}
		}
		if err = lw.WriteLine(rowI...); err != nil {
			return err
		}
	}
	return nil
}
