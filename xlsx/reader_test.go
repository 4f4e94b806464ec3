// Copyright 2026 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

package xlsx

import (
	"io/fs"
	"path/filepath"
	"testing"

	"github.com/UNO-SOFT/sheetrw"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeTestBook(t *testing.T) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	_, err := f.NewSheet("Second")
	require.NoError(t, err)
	_, err = f.NewSheet("Third")
	require.NoError(t, err)
	for axis, v := range map[string]any{
		"A1": "first", "B1": 1,
		"A2": 2.5, "C2": true,
	} {
		require.NoError(t, f.SetCellValue("Sheet1", axis, v))
	}
	require.NoError(t, f.SetCellValue("Second", "A1", "second"))
	require.NoError(t, f.SetCellValue("Third", "B3", "third"))
	f.SetActiveSheet(1)

	fn := filepath.Join(t.TempDir(), "test.xlsx")
	require.NoError(t, f.SaveAs(fn))
	return fn
}

func TestReaderNotFound(t *testing.T) {
	r, err := Open(filepath.Join(t.TempDir(), "missing.xlsx"))
	assert.Nil(t, r)
	assert.ErrorIs(t, err, sheetrw.ErrNotFound)
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestReaderSheets(t *testing.T) {
	r, err := Open(writeTestBook(t))
	require.NoError(t, err)
	defer r.Close()

	assert.Equal(t, []string{"Sheet1", "Second", "Third"}, r.SheetNames())

	rows, err := r.ReadAll(sheetrw.ByName("Sheet1"))
	require.NoError(t, err)
	assert.Equal(t, [][]any{{"first", int64(1)}, {2.5, nil, true}}, rows)

	rows, err = r.ReadAll(sheetrw.Active)
	require.NoError(t, err)
	assert.Equal(t, [][]any{{"second"}}, rows)

	rows, err = r.ReadAll(sheetrw.ByIndex(2))
	require.NoError(t, err)
	assert.Equal(t, [][]any{{}, {}, {nil, "third"}}, rows)

	rows, err = r.ReadAll(sheetrw.ByIndex(0))
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestReaderLookupError(t *testing.T) {
	r, err := Open(writeTestBook(t))
	require.NoError(t, err)
	defer r.Close()

	// Names match exactly, not ignoring case.
	for _, ref := range []sheetrw.SheetRef{
		sheetrw.ByName("nope"), sheetrw.ByName("sheet1"), sheetrw.ByName("SECOND"),
		sheetrw.ByIndex(3), sheetrw.ByIndex(-1),
	} {
		_, err := r.ReadAll(ref)
		assert.ErrorIs(t, err, sheetrw.ErrSheetNotFound, ref.String())
	}
}

func TestReaderLazy(t *testing.T) {
	r, err := Open(writeTestBook(t))
	require.NoError(t, err)
	defer r.Close()

	var n int
	for row, err := range r.ReadLines(sheetrw.ByName("Sheet1")) {
		require.NoError(t, err)
		assert.NotEmpty(t, row)
		n++
		break
	}
	assert.Equal(t, 1, n)

	// A new call reads the sheet again.
	rows, err := r.ReadAll(sheetrw.ByName("Sheet1"))
	require.NoError(t, err)
	assert.Len(t, rows, 2)
	assert.NoError(t, r.Close())
	assert.NoError(t, r.Close())
}

func TestReaderNumericText(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetCellStr("Sheet1", "A1", "0123"))
	require.NoError(t, f.SetCellValue("Sheet1", "B1", 123))
	require.NoError(t, f.SetCellStr("Sheet1", "C1", "TRUE"))
	fn := filepath.Join(t.TempDir(), "text.xlsx")
	require.NoError(t, f.SaveAs(fn))

	r, err := Open(fn)
	require.NoError(t, err)
	defer r.Close()
	rows, err := r.ReadAll(sheetrw.Active)
	require.NoError(t, err)
	// The stored cell type decides, not the look of the text.
	assert.Equal(t, [][]any{{"0123", int64(123), "TRUE"}}, rows)
}
