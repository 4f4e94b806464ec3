// Copyright 2020, 2026 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

// Package sheetrw is a thin, row oriented access layer for spreadsheet files.
//
// The xlsx subpackage provides a Reader, an in-memory Writer which is saved
// once, and a StreamWriter which streams rows into the destination file.
package sheetrw

import (
	"errors"
	"fmt"
	"strconv"
)

const (
	// PlaceholderSheet is the name of the sheet a fresh workbook starts with.
	PlaceholderSheet = "Sheet"
	// DefaultFileName is used by Save when no destination is known.
	DefaultFileName = "Result.xlsx"
)

// LineWriter writes rows into one sheet of a workbook.
//
// The LineWriters returned for the same sheet share their position:
// rows written through any of them follow each other.
type LineWriter interface {
	// Sheet returns the name of the sheet.
	Sheet() string
	// WriteLine writes one row after the previously written one.
	WriteLine(values ...any) error
	// WriteLines calls WriteLine for each row, stopping at the first error.
	// The rows written before the error are kept.
	WriteLines(rows [][]any) error
}

// Workbook hands out LineWriters for named sheets.
//
// The workbook SHOULD allow requesting writers and writing to separate
// sheets concurrently, and document if it does not provide this functionality.
type Workbook interface {
	SheetNames() []string
	LineWriter(sheet string) (LineWriter, error)
}

var (
	// ErrNotFound is returned when the file to be opened does not exist.
	ErrNotFound = errors.New("not found")
	// ErrSheetNotFound is returned for a sheet name or index not in the workbook.
	ErrSheetNotFound = errors.New("sheet not found")
	// ErrSheetExists is returned when a new sheet name collides with a
	// registered one (sheet names are case insensitive in the file).
	ErrSheetExists = errors.New("sheet already exists")
	// ErrClosed is returned by operations after the workbook has been saved or closed.
	ErrClosed = errors.New("workbook is closed")
	ErrTooManyRows = errors.New("too many rows")
)

// SheetError records the sheet (and the cell, if known) an error happened at.
type SheetError struct {
	Sheet, Cell string
	Err         error
}

func (e *SheetError) Error() string {
	if e.Cell == "" {
		return fmt.Sprintf("%s: %v", e.Sheet, e.Err)
	}
	return fmt.Sprintf("%s[%s]: %v", e.Sheet, e.Cell, e.Err)
}
func (e *SheetError) Unwrap() error { return e.Err }

// SheetRef selects a sheet of a workbook: by name, by index or,
// as the zero value, the active sheet.
type SheetRef struct {
	Name    string
	Index   int
	byIndex bool
}

// Active selects the active (usually the first) sheet.
var Active SheetRef

// ByName selects the sheet with the given name.
func ByName(name string) SheetRef { return SheetRef{Name: name} }

// ByIndex selects the index-th sheet, counting from 0.
func ByIndex(index int) SheetRef { return SheetRef{Index: index, byIndex: true} }

// IsIndex reports whether the sheet is selected by its index.
func (ref SheetRef) IsIndex() bool { return ref.Name == "" && ref.byIndex }

func (ref SheetRef) String() string {
	switch {
	case ref.Name != "":
		return strconv.Quote(ref.Name)
	case ref.byIndex:
		return "#" + strconv.Itoa(ref.Index)
	default:
		return "active sheet"
	}
}

// Number is a string that contains a number.
//
// Writers store it as a numeric cell when it parses as one.
type Number string

// Parse returns the number as int64 or float64, or the string itself if it
// is not a number.
func (n Number) Parse() any {
	if i, err := strconv.ParseInt(string(n), 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(string(n), 64); err == nil {
		return f
	}
	return string(n)
}
