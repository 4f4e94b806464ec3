// Copyright 2026 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bufio"
	"context"
	"flag"
	"io"
	"iter"

	"github.com/UNO-SOFT/sheetrw/xlsx"
	"github.com/peterbourgon/ff/v3/ffcli"
	"github.com/valyala/quicktemplate"
)

func htmlCmd() *ffcli.Command {
	fs := flag.NewFlagSet("html", flag.ContinueOnError)
	ref := sheetFlags(fs)
	flagOut := fs.String("o", "-", "output file name (.gz is compressed)")
	flagHeader := fs.Bool("header", true, "the first row is the header")
	return &ffcli.Command{Name: "html", FlagSet: fs,
		ShortUsage: "html [flags] file.xlsx",
		ShortHelp:  "render a sheet as a HTML table",
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
			out, err := createOutput(*flagOut)
			if err != nil {
				return err
			}
			defer out.Close()
			if err = writeHTML(ctx, out, r.ReadLines(ref()), *flagHeader); err != nil {
				return err
			}
			return out.Close()
		},
	}
}

// writeHTML writes the rows as a HTML table, escaping the cell texts.
func writeHTML(ctx context.Context, w io.Writer, rows iter.Seq2[[]any, error], header bool) error {
	bw := bufio.NewWriter(w)
	qw := quicktemplate.AcquireWriter(bw)
	defer quicktemplate.ReleaseWriter(qw)

	qw.N().S("<table>\n")
	var i int
	for row, err := range rows {
		if err != nil {
			return err
		}
		if err = ctx.Err(); err != nil {
			return err
		}
		td := "td"
		if i == 0 && header {
			td = "th"
		}
		qw.N().S("<tr>")
		for _, v := range row {
			qw.N().S("<" + td + ">")
			qw.E().S(cellText(v))
			qw.N().S("</" + td + ">")
		}
		qw.N().S("</tr>\n")
		i++
	}
	qw.N().S("</table>\n")
	return bw.Flush()
}
