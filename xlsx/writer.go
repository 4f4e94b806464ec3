// Copyright 2020, 2023, 2026 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

package xlsx

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"sync"

	"github.com/UNO-SOFT/sheetrw"
	"github.com/xuri/excelize/v2"
)

var (
	_ = (sheetrw.Workbook)((*Writer)(nil))
	_ = (sheetrw.LineWriter)((*AppendingWriter)(nil))
)

// Writer builds a workbook in memory and saves it at once.
//
// This writer allows concurrent writes to separate sheets, and to the same sheet,
// also while other goroutines request writers for new sheets.
//
// This writer collects everything in memory, so big sheets may impose problems:
// use StreamWriter for those.
type Writer struct {
	reg    registry[*sheet]
	xl     *excelize.File
	path   string
	logger *slog.Logger
	// placeholder is true if xl starts with the placeholder sheet created by NewWriter.
	placeholder bool
}

type sheet struct {
	name string
	mu   sync.Mutex
	row  int // last used row, 1-based
}

// NewWriter returns a Writer for a new workbook, which contains only
// the placeholder sheet (sheetrw.PlaceholderSheet).
func NewWriter(opts ...Option) *Writer {
	o := newOptions(opts)
	xl := excelize.NewFile()
	if err := xl.SetSheetName(xl.GetSheetName(0), sheetrw.PlaceholderSheet); err != nil {
		panic(err)
	}
	return &Writer{xl: xl, logger: o.logger, placeholder: true}
}

// OpenWriter opens the existing workbook at path for editing.
// Rows written to its existing sheets are appended after their last row.
func OpenWriter(path string, opts ...Option) (*Writer, error) {
	o := newOptions(opts)
	if err := checkExists(path); err != nil {
		return nil, err
	}
	xl, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open %q: %w", path, err)
	}
	return &Writer{xl: xl, path: path, logger: o.logger}, nil
}

func checkExists(path string) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%q: %w: %w", path, sheetrw.ErrNotFound, err)
		}
		return err
	}
	return nil
}

// SheetNames returns the names of the sheets of the workbook, in file order.
func (w *Writer) SheetNames() []string {
	w.reg.Lock()
	defer w.reg.Unlock()
	if w.reg.closed {
		return nil
	}
	return w.xl.GetSheetList()
}

// LineWriter implements sheetrw.Workbook.
func (w *Writer) LineWriter(name string) (sheetrw.LineWriter, error) {
	aw, err := w.Writer(name)
	if err != nil {
		return nil, err
	}
	return aw, nil
}

// Writer returns an AppendingWriter for the named sheet.
//
// The empty name means the first sheet of the workbook.
// The sheet is created if it does not exist yet; calling Writer again
// with the same name returns a writer for the same sheet.
// A name differing only in case from the placeholder renames the placeholder.
func (w *Writer) Writer(name string) (*AppendingWriter, error) {
	w.reg.Lock()
	defer w.reg.Unlock()
	if name == "" && !w.reg.closed {
		name = sheetrw.PlaceholderSheet
		if names := w.xl.GetSheetList(); len(names) != 0 {
			name = names[0]
		}
	}
	sh, err := w.reg.getOrCreateLocked(name, w.newSheetLocked)
	if err != nil {
		return nil, err
	}
	return &AppendingWriter{w: w, sheet: sh}, nil
}

func (w *Writer) newSheetLocked(name string) (*sheet, error) {
	idx, err := w.xl.GetSheetIndex(name)
	if err != nil {
		return nil, &sheetrw.SheetError{Sheet: name, Err: err}
	}
	if idx == -1 {
		if _, err = w.xl.NewSheet(name); err != nil {
			return nil, &sheetrw.SheetError{Sheet: name, Err: err}
		}
		w.logger.Debug("new sheet", "sheet", name)
		return &sheet{name: name}, nil
	}
	// The placeholder, or a sheet of the opened file.
	if w.placeholder && name != sheetrw.PlaceholderSheet &&
		w.xl.GetSheetName(idx) == sheetrw.PlaceholderSheet {
		if err = w.xl.SetSheetName(sheetrw.PlaceholderSheet, name); err != nil {
			return nil, &sheetrw.SheetError{Sheet: name, Err: err}
		}
	}
	// Cells go to the stored name, which may differ in case.
	name = w.xl.GetSheetName(idx)
	rows, err := w.xl.GetRows(name)
	if err != nil {
		return nil, &sheetrw.SheetError{Sheet: name, Err: err}
	}
	w.logger.Debug("existing sheet", "sheet", name, "rows", len(rows))
	return &sheet{name: name, row: len(rows)}, nil
}

// Save writes the workbook to path, or if that is empty, to the path
// it was opened from, or to sheetrw.DefaultFileName.
//
// The placeholder sheet is removed unless a writer has been requested for it,
// or no writer has been requested at all.
//
// The Writer is closed after Save, even on error.
func (w *Writer) Save(path string) error {
	if path == "" {
		if path = w.path; path == "" {
			path = sheetrw.DefaultFileName
		}
	}
	return w.finish(func(xl *excelize.File) error {
		w.logger.Debug("save", "path", path)
		return xl.SaveAs(path)
	})
}

// WriteTo writes the workbook to dst. The Writer is closed afterwards.
func (w *Writer) WriteTo(dst io.Writer) (int64, error) {
	var n int64
	err := w.finish(func(xl *excelize.File) error {
		var err error
		n, err = xl.WriteTo(dst)
		return err
	})
	return n, err
}

func (w *Writer) finish(write func(*excelize.File) error) error {
	if w == nil {
		return sheetrw.ErrClosed
	}
	w.reg.Lock()
	defer w.reg.Unlock()
	sheets, err := w.reg.closeLocked()
	if err != nil {
		return err
	}
	if w.placeholder && len(sheets) != 0 && !w.reg.hasFoldLocked(sheetrw.PlaceholderSheet) {
		w.logger.Debug("remove placeholder", "sheet", sheetrw.PlaceholderSheet)
		if err = w.xl.DeleteSheet(sheetrw.PlaceholderSheet); err != nil {
			err = &sheetrw.SheetError{Sheet: sheetrw.PlaceholderSheet, Err: err}
		}
	}
	if err == nil {
		err = write(w.xl)
	}
	return errors.Join(err, w.xl.Close())
}

// Close discards the workbook without saving it.
// It is a no-op after Save.
func (w *Writer) Close() error {
	if w == nil {
		return nil
	}
	w.reg.Lock()
	defer w.reg.Unlock()
	if _, err := w.reg.closeLocked(); err != nil {
		return nil
	}
	return w.xl.Close()
}

// AppendingWriter appends rows to one sheet of a Writer.
type AppendingWriter struct {
	w     *Writer
	sheet *sheet
}

// Sheet returns the name of the sheet.
func (aw *AppendingWriter) Sheet() string { return aw.sheet.name }

// WriteLine appends the values as a new row after the last row of the sheet.
//
// nil values leave the cell empty.
func (aw *AppendingWriter) WriteLine(values ...any) error {
	// Sheet creation and saving take the write lock.
	aw.w.reg.RLock()
	defer aw.w.reg.RUnlock()
	sh, xl := aw.sheet, aw.w.xl
	sh.mu.Lock()
	defer sh.mu.Unlock()
	if aw.w.reg.closed {
		return &sheetrw.SheetError{Sheet: sh.name, Err: sheetrw.ErrClosed}
	}
	if sh.row >= MaxRowCount {
		return &sheetrw.SheetError{Sheet: sh.name, Err: sheetrw.ErrTooManyRows}
	}
	sh.row++
	for i, v := range values {
		v, ok := cellValue(v)
		if !ok {
			continue
		}
		axis, err := excelize.CoordinatesToCellName(i+1, sh.row)
		if err != nil {
			return fmt.Errorf("%d/%d: %w", i, sh.row, err)
		}
		if s, ok := v.(string); ok {
			err = xl.SetCellStr(sh.name, axis, s)
		} else {
			err = xl.SetCellValue(sh.name, axis, v)
		}
		if err != nil {
			return &sheetrw.SheetError{Sheet: sh.name, Cell: axis, Err: err}
		}
	}
	return nil
}

// WriteLines appends the rows one after the other.
// On error, the rows before the failing one remain written.
func (aw *AppendingWriter) WriteLines(rows [][]any) error {
	for i, row := range rows {
		if err := aw.WriteLine(row...); err != nil {
			return fmt.Errorf("line %d: %w", i, err)
		}
	}
	return nil
}

