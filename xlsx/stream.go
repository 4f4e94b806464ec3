// Copyright 2026 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

package xlsx

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/UNO-SOFT/sheetrw"
	"github.com/xuri/excelize/v2"
)

var (
	_ = (sheetrw.Workbook)((*StreamWriter)(nil))
	_ = (sheetrw.LineWriter)((*IndexedWriter)(nil))
)

// StreamWriter streams rows into a new workbook, sheet by sheet,
// without keeping the rows in memory.
//
// Rows cannot be read back or changed once written.
// All writes are serialized by the StreamWriter's lock.
type StreamWriter struct {
	reg    registry[*stream]
	xl     *excelize.File
	w      io.Writer
	closer io.Closer
	logger *slog.Logger
}

type stream struct {
	name string
	sw   *excelize.StreamWriter
	// index of the last written row, counting from 0; -1 before the first.
	index int
}

// CreateStream creates (truncates) the file at path and returns a
// StreamWriter writing into it.
//
// The file is complete only after Save (or Close) returns.
func CreateStream(path string, opts ...Option) (*StreamWriter, error) {
	fh, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	sw := NewStream(fh, opts...)
	sw.closer = fh
	return sw, nil
}

// NewStream returns a StreamWriter which writes the workbook to w on Save.
func NewStream(w io.Writer, opts ...Option) *StreamWriter {
	o := newOptions(opts)
	xl := excelize.NewFile()
	if err := xl.SetSheetName(xl.GetSheetName(0), sheetrw.PlaceholderSheet); err != nil {
		panic(err)
	}
	return &StreamWriter{xl: xl, w: w, logger: o.logger}
}

// WithStream creates the file at path, calls f with a StreamWriter writing into it,
// and saves the file, even if f returns an error or panics.
func WithStream(path string, f func(*StreamWriter) error, opts ...Option) (err error) {
	sw, err := CreateStream(path, opts...)
	if err != nil {
		return err
	}
	defer func() { err = errors.Join(err, sw.Close()) }()
	return f(sw)
}

// SheetNames returns the names of the sheets of the workbook.
func (sw *StreamWriter) SheetNames() []string {
	sw.reg.Lock()
	defer sw.reg.Unlock()
	if sw.reg.closed {
		return nil
	}
	return sw.xl.GetSheetList()
}

// LineWriter implements sheetrw.Workbook.
func (sw *StreamWriter) LineWriter(name string) (sheetrw.LineWriter, error) {
	iw, err := sw.Writer(name)
	if err != nil {
		return nil, err
	}
	return iw, nil
}

// Writer returns an IndexedWriter for the named sheet (the empty name
// means sheetrw.PlaceholderSheet), creating the sheet on the first call.
//
// The writers returned for the same name share the row index,
// so they continue each other's rows.
func (sw *StreamWriter) Writer(name string) (*IndexedWriter, error) {
	if name == "" {
		name = sheetrw.PlaceholderSheet
	}
	sw.reg.Lock()
	defer sw.reg.Unlock()
	st, err := sw.reg.getOrCreateLocked(name, sw.newStreamLocked)
	if err != nil {
		return nil, err
	}
	return &IndexedWriter{parent: sw, stream: st}, nil
}

func (sw *StreamWriter) newStreamLocked(name string) (*stream, error) {
	if len(sw.reg.sheets) == 0 {
		// The first sheet takes the place of the placeholder.
		if name != sheetrw.PlaceholderSheet {
			if err := sw.xl.SetSheetName(sheetrw.PlaceholderSheet, name); err != nil {
				return nil, &sheetrw.SheetError{Sheet: name, Err: err}
			}
		}
	} else if _, err := sw.xl.NewSheet(name); err != nil {
		return nil, &sheetrw.SheetError{Sheet: name, Err: err}
	}
	stw, err := sw.xl.NewStreamWriter(name)
	if err != nil {
		return nil, &sheetrw.SheetError{Sheet: name, Err: err}
	}
	sw.logger.Debug("new stream", "sheet", name)
	return &stream{name: name, sw: stw, index: -1}, nil
}

// Save flushes all sheets and writes the workbook to its destination,
// closing the file created by CreateStream.
//
// Save must be called exactly once; later calls return sheetrw.ErrClosed.
func (sw *StreamWriter) Save() error {
	sw.reg.Lock()
	defer sw.reg.Unlock()
	streams, err := sw.reg.closeLocked()
	if err != nil {
		return err
	}
	var errs []error
	for _, st := range streams {
		if err := st.sw.Flush(); err != nil {
			errs = append(errs, &sheetrw.SheetError{Sheet: st.name, Err: err})
		}
	}
	if len(errs) == 0 {
		sw.logger.Debug("save", "sheets", len(streams))
		if err := sw.xl.Write(sw.w); err != nil {
			errs = append(errs, err)
		}
	}
	if sw.closer != nil {
		errs = append(errs, sw.closer.Close())
	}
	errs = append(errs, sw.xl.Close())
	return errors.Join(errs...)
}

// Close calls Save if it has not been called yet, so it can be deferred.
func (sw *StreamWriter) Close() error {
	if sw == nil {
		return nil
	}
	if err := sw.Save(); err != nil && !errors.Is(err, sheetrw.ErrClosed) {
		return err
	}
	return nil
}

// IndexedWriter writes rows to one sheet of a StreamWriter,
// each at the row index following the previous one.
type IndexedWriter struct {
	parent *StreamWriter
	stream *stream
}

// Sheet returns the name of the sheet.
func (iw *IndexedWriter) Sheet() string { return iw.stream.name }

// WriteLine writes the values at the next row index, from the first column.
//
// Rows written concurrently get their indexes in the order they acquire
// the StreamWriter's lock.
func (iw *IndexedWriter) WriteLine(values ...any) error {
	p := iw.parent
	p.reg.Lock()
	defer p.reg.Unlock()
	st := iw.stream
	if p.reg.closed {
		return &sheetrw.SheetError{Sheet: st.name, Err: sheetrw.ErrClosed}
	}
	if st.index+1 >= MaxRowCount {
		return &sheetrw.SheetError{Sheet: st.name, Err: sheetrw.ErrTooManyRows}
	}
	st.index++
	return st.writeRowAtLocked(st.index, 0, values)
}

// writeRowAtLocked writes values into the row at index (from 0), from column col (from 0).
// The store accepts rows in ascending order only.
func (st *stream) writeRowAtLocked(index, col int, values []any) error {
	axis, err := excelize.CoordinatesToCellName(col+1, index+1)
	if err != nil {
		return fmt.Errorf("%d/%d: %w", col, index, err)
	}
	if err = st.sw.SetRow(axis, rowValues(values)); err != nil {
		return &sheetrw.SheetError{Sheet: st.name, Cell: axis, Err: err}
	}
	return nil
}

// WriteLines writes the rows one after the other.
// On error, the rows before the failing one remain written.
func (iw *IndexedWriter) WriteLines(rows [][]any) error {
	for i, row := range rows {
		if err := iw.WriteLine(row...); err != nil {
			return fmt.Errorf("line %d: %w", i, err)
		}
	}
	return nil
}
