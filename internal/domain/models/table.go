package models

import (
	"fmt"
	"strconv"
	"strings"
)

// Row is a single report row keyed by the backend's semantic column names.
type Row map[string]any

// Table is the row-oriented payload of a finished report task. Rows keep the
// order the backend returned them in; nothing downstream re-sorts them.
type Table struct {
	Rows []Row
}

// Str returns the trimmed string form of a cell. Missing columns and explicit
// nulls both come back as the empty string.
func (r Row) Str(column string) string {
	v, ok := r[column]
	if !ok || v == nil {
		return ""
	}
	return strings.TrimSpace(fmt.Sprint(v))
}

// Float parses a numeric cell, tolerating string-typed numbers. Blank or
// unparseable cells yield zero.
func (r Row) Float(column string) float64 {
	switch v := r[column].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case nil:
		return 0
	default:
		s := strings.TrimSpace(fmt.Sprint(v))
		if s == "" {
			return 0
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0
		}
		return f
	}
}

// MissingColumns reports which of the required columns are absent from the
// table. An empty table has no detectable columns and reports none missing;
// emptiness is a valid state, not a structural defect.
func (t Table) MissingColumns(required ...string) []string {
	if len(t.Rows) == 0 {
		return nil
	}
	first := t.Rows[0]
	var missing []string
	for _, col := range required {
		if _, ok := first[col]; !ok {
			missing = append(missing, col)
		}
	}
	return missing
}
