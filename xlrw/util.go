// Copyright 2026 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/UNO-SOFT/sheetrw"
	"github.com/klauspost/compress/gzip"
)

// sheetFlags adds the -sheet and -index flags to fs.
func sheetFlags(fs *flag.FlagSet) func() sheetrw.SheetRef {
	flagSheet := fs.String("sheet", "", "sheet name (default: the active sheet)")
	flagIndex := fs.Int("index", -1, "sheet index, from 0")
	return func() sheetrw.SheetRef {
		if *flagSheet != "" {
			return sheetrw.ByName(*flagSheet)
		}
		if *flagIndex >= 0 {
			return sheetrw.ByIndex(*flagIndex)
		}
		return sheetrw.Active
	}
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// createOutput creates fn (stdout for "" or "-"),
// gzip compressed if its name ends with ".gz".
func createOutput(fn string) (io.WriteCloser, error) {
	if fn == "" || fn == "-" {
		return nopCloser{os.Stdout}, nil
	}
	fh, err := os.Create(fn)
	if err != nil {
		return nil, err
	}
	if !strings.HasSuffix(fn, ".gz") {
		return fh, nil
	}
	return &gzipFile{Writer: gzip.NewWriter(fh), fh: fh}, nil
}

type gzipFile struct {
	*gzip.Writer
	fh *os.File
}

func (gf *gzipFile) Close() error {
	err := gf.Writer.Close()
	if closeErr := gf.fh.Close(); closeErr != nil && err == nil {
		err = closeErr
	}
	return err
}

// cellText returns the text form of a cell value read by xlsx.Reader.
func cellText(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(x, 10)
	case bool:
		if x {
			return "TRUE"
		}
		return "FALSE"
	default:
		return fmt.Sprint(v)
	}
}

func oneArg(args []string) (string, error) {
	if len(args) != 1 {
		return "", fmt.Errorf("exactly one file name is needed, got %d: %w", len(args), flag.ErrHelp)
	}
	return args[0], nil
}
