// Copyright 2026 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

package xlsx

import (
	"fmt"
	"iter"
	"log/slog"

	"github.com/UNO-SOFT/sheetrw"
	"github.com/xuri/excelize/v2"
)

// Reader reads the rows of an existing workbook.
type Reader struct {
	xl     *excelize.File
	path   string
	logger *slog.Logger
}

// Open opens the workbook at path for reading.
//
// It returns an error wrapping sheetrw.ErrNotFound if path does not exist.
func Open(path string, opts ...Option) (*Reader, error) {
	o := newOptions(opts)
	if err := checkExists(path); err != nil {
		return nil, err
	}
	xl, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open %q: %w", path, err)
	}
	return &Reader{xl: xl, path: path, logger: o.logger}, nil
}

// Close releases the workbook.
func (r *Reader) Close() error {
	if r == nil || r.xl == nil {
		return nil
	}
	xl := r.xl
	r.xl = nil
	return xl.Close()
}

// SheetNames returns the names of the sheets, in file order.
func (r *Reader) SheetNames() []string {
	if r.xl == nil {
		return nil
	}
	return r.xl.GetSheetList()
}

func (r *Reader) sheetName(ref sheetrw.SheetRef) (string, error) {
	if r.xl == nil {
		return "", sheetrw.ErrClosed
	}
	var name string
	switch {
	case ref.Name != "":
		// Exact match: excelize folds the case of sheet names.
		for _, s := range r.xl.GetSheetList() {
			if s == ref.Name {
				name = s
				break
			}
		}
	case ref.IsIndex():
		if names := r.xl.GetSheetList(); 0 <= ref.Index && ref.Index < len(names) {
			name = names[ref.Index]
		}
	default:
		name = r.xl.GetSheetName(r.xl.GetActiveSheetIndex())
	}
	if name == "" {
		return "", fmt.Errorf("%s: %w", ref, sheetrw.ErrSheetNotFound)
	}
	return name, nil
}

// ReadLines returns the rows of the selected sheet, top to bottom.
//
// Empty rows are returned as empty rows, empty cells as nil.
// Numbers are returned as int64 or float64, booleans as bool, everything else as string.
//
// The rows are read lazily, while iterating; each iteration reads the sheet again.
// An error ends the iteration.
//
// The cell types are looked up in the parsed worksheet, so the first row
// loads the whole sheet into memory (cached by excelize until Close);
// only the cell values are streamed.
func (r *Reader) ReadLines(ref sheetrw.SheetRef) iter.Seq2[[]any, error] {
	return func(yield func([]any, error) bool) {
		name, err := r.sheetName(ref)
		if err != nil {
			yield(nil, err)
			return
		}
		rows, err := r.xl.Rows(name)
		if err != nil {
			yield(nil, &sheetrw.SheetError{Sheet: name, Err: err})
			return
		}
		defer rows.Close()
		r.logger.Debug("read", "sheet", name)
		for rowNum := 1; rows.Next(); rowNum++ {
			cols, err := rows.Columns(excelize.Options{RawCellValue: true})
			if err != nil {
				yield(nil, &sheetrw.SheetError{Sheet: name, Err: fmt.Errorf("row %d: %w", rowNum, err)})
				return
			}
			row := make([]any, len(cols))
			for i, s := range cols {
				axis, err := excelize.CoordinatesToCellName(i+1, rowNum)
				if err != nil {
					yield(nil, &sheetrw.SheetError{Sheet: name, Err: err})
					return
				}
				typ, err := r.xl.GetCellType(name, axis)
				if err != nil {
					yield(nil, &sheetrw.SheetError{Sheet: name, Cell: axis, Err: err})
					return
				}
				row[i] = decodeCell(typ, s)
			}
			if !yield(row, nil) {
				return
			}
		}
		if err := rows.Error(); err != nil {
			yield(nil, &sheetrw.SheetError{Sheet: name, Err: err})
		}
	}
}

// ReadAll returns all rows of the selected sheet.
func (r *Reader) ReadAll(ref sheetrw.SheetRef) ([][]any, error) {
	var all [][]any
	for row, err := range r.ReadLines(ref) {
		if err != nil {
			return all, err
		}
		all = append(all, row)
	}
	return all, nil
}
