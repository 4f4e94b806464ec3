// Copyright 2021, 2026 Tamas Gulacsi. All rights reserved.

package main

import (
	"context"
	"encoding/hex"
	"flag"
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/UNO-SOFT/sheetrw/xlsx"
	"github.com/peterbourgon/ff/v3/ffcli"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontfamily"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/orientation"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

func pdfCmd() *ffcli.Command {
	alternateColor := Color{Color: props.Color{Red: 230, Green: 230, Blue: 230}}

	fs := flag.NewFlagSet("pdf", flag.ContinueOnError)
	ref := sheetFlags(fs)
	flagOut := fs.String("o", "", "output file name (default input file + .pdf)")
	flagColor := fs.String("alternate-color", alternateColor.String(), "alternate color")
	flagLandscape := fs.Bool("L", false, "landscape orientation (default: portrait)")
	flagFontSize := fs.Float64("f", 8, "font size")
	flagHeader := fs.Bool("header", true, "the first row is the header")

	return &ffcli.Command{Name: "pdf", FlagSet: fs,
		ShortUsage: "pdf [flags] file.xlsx",
		ShortHelp:  "render a sheet as a PDF table",
		Exec: func(ctx context.Context, args []string) error {
			fn, err := oneArg(args)
			if err != nil {
				return err
			}
			if err = alternateColor.Parse(*flagColor); err != nil {
				return err
			}
			r, err := xlsx.Open(fn, xlsx.WithLogger(logger))
			if err != nil {
				return err
			}
			contents, err := r.ReadAll(ref())
			r.Close()
			if err != nil {
				return err
			}
			table := make([][]string, len(contents))
			var width int
			for i, row := range contents {
				table[i] = make([]string, len(row))
				for j, v := range row {
					table[i][j] = cellText(v)
				}
				width = max(width, len(row))
			}
			gridSize := gridSizes(table, width)
			var gridSum int
			for _, n := range gridSize {
				gridSum += n
			}
			logger.Debug("grid", "width", width, "sizes", gridSize)

			orient := orientation.Vertical
			if *flagLandscape {
				orient = orientation.Horizontal
			}
			cfg := config.NewBuilder().
				WithOrientation(orient).
				WithMaxGridSize(max(gridSum, 1)).
				Build()
			m := maroto.New(cfg)

			fontSize := *flagFontSize
			height := fontSize*0.5 + 1
			for i, row := range table {
				p := props.Text{Family: fontfamily.Courier, Style: fontstyle.Normal, Size: fontSize}
				if i == 0 && *flagHeader {
					p = props.Text{Family: fontfamily.Arial, Style: fontstyle.Bold, Size: fontSize * 1.375}
				}
				cols := make([]core.Col, width)
				for j := range cols {
					var s string
					if j < len(row) {
						s = row[j]
					}
					cols[j] = text.NewCol(gridSize[j], s, p)
				}
				mr := m.AddRow(height, cols...)
				if i%2 == 1 {
					mr.WithStyle(&props.Cell{BackgroundColor: &alternateColor.Color})
				}
			}
			doc, err := m.Generate()
			if err != nil {
				return err
			}
			out := *flagOut
			if out == "" {
				out = strings.TrimSuffix(fn, ".xlsx") + ".pdf"
			}
			if out == "-" {
				_, err = os.Stdout.Write(doc.GetBytes())
				return err
			}
			return doc.Save(out)
		},
	}
}

// gridSizes returns the relative widths of the columns,
// based on the average text length in each column.
func gridSizes(table [][]string, width int) []int {
	widths := make([]float64, width)
	var avg float64
	for _, row := range table {
		for i, s := range row {
			widths[i] += float64(len(s))
			avg += float64(len(s))
		}
	}
	if width != 0 {
		avg /= float64(width)
	}
	gridSize := make([]int, width)
	for i, w := range widths {
		if avg != 0 {
			gridSize[i] = int(math.Round(4 * w / avg))
		}
		if gridSize[i] == 0 {
			gridSize[i] = 1
		}
	}
	return gridSize
}

type Color struct {
	props.Color
}

func (c *Color) String() string {
	return fmt.Sprintf("%02x%02x%02x", c.Red, c.Green, c.Blue)
}
func (c *Color) Parse(s string) error {
	b, err := hex.DecodeString(s)
	if err != nil {
		return err
	}
	if len(b) != 3 {
		return fmt.Errorf("%q: need 3 bytes of RGB", s)
	}
	c.Red, c.Green, c.Blue = int(b[0]), int(b[1]), int(b[2])
	return nil
}
