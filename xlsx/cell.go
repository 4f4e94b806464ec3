// Copyright 2020, 2026 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

package xlsx

import (
	"database/sql/driver"
	"fmt"
	"strconv"
	"time"

	"github.com/UNO-SOFT/sheetrw"
	"github.com/xuri/excelize/v2"
)

// MaxRowCount is the number of maximum rows.
const MaxRowCount = 1_048_576

// cellValue converts v to a value the store can set.
// It returns false for values that leave the cell empty.
func cellValue(v any) (any, bool) {
	if v == nil {
		return nil, false
	}
	if vr, ok := v.(driver.Valuer); ok {
		if vv, err := vr.Value(); err == nil {
			if v = vv; v == nil {
				return nil, false
			}
		}
	}
	switch x := v.(type) {
	case time.Time:
		if x.IsZero() {
			return nil, false
		}
		return x.Format("2006-01-02"), true
	case sheetrw.Number:
		return x.Parse(), true
	case []byte:
		return string(x), true
	case fmt.Stringer:
		return x.String(), true
	}
	return v, true
}

// rowValues converts values for StreamWriter.SetRow, which skips nils.
func rowValues(values []any) []any {
	row := make([]any, len(values))
	for i, v := range values {
		if v, ok := cellValue(v); ok {
			row[i] = v
		}
	}
	return row
}

// decodeCell returns the typed value of a cell read as raw text.
func decodeCell(typ excelize.CellType, s string) any {
	switch typ {
	case excelize.CellTypeBool:
		return s == "1" || s == "TRUE" || s == "true"
	case excelize.CellTypeSharedString, excelize.CellTypeInlineString,
		excelize.CellTypeFormula, excelize.CellTypeError, excelize.CellTypeDate:
		return s
	}
	if s == "" {
		return nil
	}
	return parseValue(s)
}

// parseValue parses s as int64, then as float64, else returns s.
func parseValue(s string) any {
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return s
}
