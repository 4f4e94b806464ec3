// Copyright 2026 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

package xlsx

import (
	"bytes"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/UNO-SOFT/sheetrw"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func readAll(t *testing.T, path string, ref sheetrw.SheetRef) [][]any {
	t.Helper()
	r, err := Open(path)
	require.NoError(t, err)
	defer r.Close()
	rows, err := r.ReadAll(ref)
	require.NoError(t, err)
	return rows
}

func sheetNames(t *testing.T, path string) []string {
	t.Helper()
	r, err := Open(path)
	require.NoError(t, err)
	defer r.Close()
	return r.SheetNames()
}

func TestWriterDefaultSheet(t *testing.T) {
	fn := filepath.Join(t.TempDir(), "out.xlsx")
	w := NewWriter()
	assert.Equal(t, []string{"Sheet"}, w.SheetNames())

	lw, err := w.Writer("")
	require.NoError(t, err)
	assert.Equal(t, "Sheet", lw.Sheet())
	require.NoError(t, lw.WriteLine(1, 2, 3))
	require.NoError(t, lw.WriteLine(4, 5, 6))
	require.NoError(t, w.Save(fn))

	assert.Equal(t, []string{"Sheet"}, sheetNames(t, fn))
	assert.Equal(t, [][]any{
		{int64(1), int64(2), int64(3)},
		{int64(4), int64(5), int64(6)},
	}, readAll(t, fn, sheetrw.ByName("Sheet")))
}

func TestWriterRemovesPlaceholder(t *testing.T) {
	fn := filepath.Join(t.TempDir(), "out2.xlsx")
	w := NewWriter()
	lw, err := w.Writer("A")
	require.NoError(t, err)
	require.NoError(t, lw.WriteLine("x"))
	require.NoError(t, w.Save(fn))

	assert.Equal(t, []string{"A"}, sheetNames(t, fn))
	assert.Equal(t, [][]any{{"x"}}, readAll(t, fn, sheetrw.ByName("A")))
}

func TestWriterKeepsUsedPlaceholder(t *testing.T) {
	fn := filepath.Join(t.TempDir(), "out.xlsx")
	w := NewWriter()
	a, err := w.Writer("A")
	require.NoError(t, err)
	s, err := w.Writer("Sheet")
	require.NoError(t, err)
	require.NoError(t, a.WriteLine("a"))
	require.NoError(t, s.WriteLine("s"))
	require.NoError(t, w.Save(fn))

	assert.Equal(t, []string{"Sheet", "A"}, sheetNames(t, fn))
	assert.Equal(t, [][]any{{"s"}}, readAll(t, fn, sheetrw.ByName("Sheet")))
}

func TestWriterNoSheetsKeepsPlaceholder(t *testing.T) {
	fn := filepath.Join(t.TempDir(), "empty.xlsx")
	require.NoError(t, NewWriter().Save(fn))
	assert.Equal(t, []string{"Sheet"}, sheetNames(t, fn))
}

func TestWriterRoundTrip(t *testing.T) {
	fn := filepath.Join(t.TempDir(), "rt.xlsx")
	rows := [][]any{
		{"name", "count", "ratio", "ok"},
		{"a", int64(1), 0.5, true},
		{"b", nil, -2.25, false},
		{},
		{"123", int64(-7), 1e10, "true"},
	}
	w := NewWriter()
	lw, err := w.Writer("data")
	require.NoError(t, err)
	require.NoError(t, lw.WriteLines(rows))
	require.NoError(t, w.Save(fn))

	want := append([][]any(nil), rows...)
	want[3] = []any{}
	want[4] = []any{"123", int64(-7), int64(1e10), "true"}
	assert.Equal(t, want, readAll(t, fn, sheetrw.ByName("data")))
}

func TestWriterValues(t *testing.T) {
	w := NewWriter()
	lw, err := w.Writer("")
	require.NoError(t, err)
	require.NoError(t, lw.WriteLine(sheetrw.Number("42"), sheetrw.Number("4.5"), sheetrw.Number("x"), []byte("b")))
	var buf bytes.Buffer
	_, err = w.WriteTo(&buf)
	require.NoError(t, err)

	xl, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer xl.Close()
	got, err := xl.GetRows("Sheet")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"42", "4.5", "x", "b"}}, got)
	typ, err := xl.GetCellType("Sheet", "A1")
	require.NoError(t, err)
	assert.NotEqual(t, excelize.CellTypeSharedString, typ)
}

func TestWriterConcurrentSameSheet(t *testing.T) {
	const n = 16
	w := NewWriter()
	writers := make([]*AppendingWriter, n)
	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			lw, err := w.Writer("A")
			if assert.NoError(t, err) {
				writers[i] = lw
				assert.NoError(t, lw.WriteLine(i))
			}
		}()
	}
	wg.Wait()
	for _, lw := range writers {
		require.NotNil(t, lw)
		assert.Same(t, writers[0].sheet, lw.sheet)
	}
	assert.Equal(t, []string{"Sheet", "A"}, w.SheetNames())

	fn := filepath.Join(t.TempDir(), "conc.xlsx")
	require.NoError(t, w.Save(fn))
	rows := readAll(t, fn, sheetrw.ByName("A"))
	require.Len(t, rows, n)
	seen := make(map[int64]bool, n)
	for _, row := range rows {
		require.Len(t, row, 1)
		seen[row[0].(int64)] = true
	}
	assert.Len(t, seen, n)
}

func TestWriterConcurrentSheets(t *testing.T) {
	const sheets, lines = 4, 50
	w := NewWriter()
	var wg sync.WaitGroup
	for i := range sheets {
		wg.Add(1)
		go func() {
			defer wg.Done()
			lw, err := w.Writer(fmt.Sprintf("S%d", i))
			if !assert.NoError(t, err) {
				return
			}
			for j := range lines {
				assert.NoError(t, lw.WriteLine(i, j))
			}
		}()
	}
	wg.Wait()
	fn := filepath.Join(t.TempDir(), "sheets.xlsx")
	require.NoError(t, w.Save(fn))
	assert.ElementsMatch(t, []string{"S0", "S1", "S2", "S3"}, sheetNames(t, fn))
	for i := range sheets {
		rows := readAll(t, fn, sheetrw.ByName(fmt.Sprintf("S%d", i)))
		require.Len(t, rows, lines)
		for j, row := range rows {
			assert.Equal(t, []any{int64(i), int64(j)}, row)
		}
	}
}

func TestWriterAppendWhileCreating(t *testing.T) {
	const sheets, lines = 20, 200
	w := NewWriter()
	lw, err := w.Writer("A")
	require.NoError(t, err)
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for j := range lines {
			assert.NoError(t, lw.WriteLine(j))
		}
	}()
	go func() {
		defer wg.Done()
		for i := range sheets {
			sw, err := w.Writer(fmt.Sprintf("S%d", i))
			if assert.NoError(t, err) {
				assert.NoError(t, sw.WriteLine(i))
			}
		}
	}()
	wg.Wait()
	fn := filepath.Join(t.TempDir(), "mixed.xlsx")
	require.NoError(t, w.Save(fn))

	rows := readAll(t, fn, sheetrw.ByName("A"))
	require.Len(t, rows, lines)
	for j, row := range rows {
		assert.Equal(t, []any{int64(j)}, row)
	}
	for i := range sheets {
		assert.Equal(t, [][]any{{int64(i)}}, readAll(t, fn, sheetrw.ByName(fmt.Sprintf("S%d", i))))
	}
	assert.Len(t, sheetNames(t, fn), sheets+1)
}

func TestWriterPlaceholderOtherCase(t *testing.T) {
	w := NewWriter()
	lw, err := w.Writer("sheet")
	require.NoError(t, err)
	assert.Equal(t, "sheet", lw.Sheet())
	require.NoError(t, lw.WriteLine("a"))
	fn := filepath.Join(t.TempDir(), "lower.xlsx")
	require.NoError(t, w.Save(fn))
	assert.Equal(t, []string{"sheet"}, sheetNames(t, fn))
	assert.Equal(t, [][]any{{"a"}}, readAll(t, fn, sheetrw.ByName("sheet")))
}

func TestWriterCaseCollision(t *testing.T) {
	w := NewWriter()
	defer w.Close()
	_, err := w.Writer("Data")
	require.NoError(t, err)
	_, err = w.Writer("data")
	assert.ErrorIs(t, err, sheetrw.ErrSheetExists)
}

func TestWriterClosed(t *testing.T) {
	w := NewWriter()
	lw, err := w.Writer("A")
	require.NoError(t, err)
	require.NoError(t, w.Save(filepath.Join(t.TempDir(), "x.xlsx")))

	assert.ErrorIs(t, lw.WriteLine(1), sheetrw.ErrClosed)
	_, err = w.Writer("B")
	assert.ErrorIs(t, err, sheetrw.ErrClosed)
	assert.ErrorIs(t, w.Save(""), sheetrw.ErrClosed)
	assert.Nil(t, w.SheetNames())
	assert.NoError(t, w.Close())
}

func TestOpenWriterAppends(t *testing.T) {
	fn := filepath.Join(t.TempDir(), "edit.xlsx")
	w := NewWriter()
	lw, err := w.Writer("A")
	require.NoError(t, err)
	require.NoError(t, lw.WriteLines([][]any{{1}, {2}}))
	require.NoError(t, w.Save(fn))

	w, err = OpenWriter(fn)
	require.NoError(t, err)
	lw, err = w.Writer("")
	require.NoError(t, err)
	assert.Equal(t, "A", lw.Sheet())
	require.NoError(t, lw.WriteLine(3))
	b, err := w.Writer("B")
	require.NoError(t, err)
	require.NoError(t, b.WriteLine("b"))
	require.NoError(t, w.Save(""))

	assert.Equal(t, []string{"A", "B"}, sheetNames(t, fn))
	assert.Equal(t, [][]any{{int64(1)}, {int64(2)}, {int64(3)}}, readAll(t, fn, sheetrw.ByName("A")))
}

func TestOpenWriterNotFound(t *testing.T) {
	_, err := OpenWriter(filepath.Join(t.TempDir(), "missing.xlsx"))
	assert.ErrorIs(t, err, sheetrw.ErrNotFound)
}

func TestWriterDefaultFileName(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	w := NewWriter()
	lw, err := w.Writer("")
	require.NoError(t, err)
	require.NoError(t, lw.WriteLine("x"))
	require.NoError(t, w.Save(""))
	assert.Equal(t, [][]any{{"x"}}, readAll(t, filepath.Join(dir, sheetrw.DefaultFileName), sheetrw.Active))
}
