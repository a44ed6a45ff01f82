package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParsePosition(t *testing.T) {
	cases := []struct {
		level string
		want  Position
	}{
		{"1F", PositionFront},
		{"2B", PositionBack},
		{"1f", PositionFront},
		{"3b", PositionBack},
		{"F1", PositionFront},
		{"BACK", PositionBack},
		{"12", PositionNone},
		{"", PositionNone},
		{"X", PositionNone},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, ParsePosition(tc.level), "level %q", tc.level)
	}
}

func TestBackendUnitID(t *testing.T) {
	assert.Equal(t, "12345", BackendUnitID("N12345"))
	assert.Equal(t, "12345", BackendUnitID("12345"))
	assert.Equal(t, "98", BackendUnitID("X98"))
	assert.Equal(t, "N", BackendUnitID("N"))
	assert.Equal(t, "", BackendUnitID(""))
}

func TestUnitIsUnlocated(t *testing.T) {
	assert.True(t, Unit{UnitID: "N1"}.IsUnlocated())

	// any single positional field makes the unit located
	assert.False(t, Unit{UnitID: "N1", Building: "Main"}.IsUnlocated())
	assert.False(t, Unit{UnitID: "N1", Zone: "Racks"}.IsUnlocated())
	assert.False(t, Unit{UnitID: "N1", Level: "1F"}.IsUnlocated())
}

func TestRowAccessors(t *testing.T) {
	row := Row{
		"Unit ID":       " N12345 ",
		"Total On Hand": "12.5",
		"Count":         7,
		"Blank":         nil,
	}

	assert.Equal(t, "N12345", row.Str("Unit ID"))
	assert.Equal(t, "", row.Str("Blank"))
	assert.Equal(t, "", row.Str("Missing"))
	assert.Equal(t, 12.5, row.Float("Total On Hand"))
	assert.Equal(t, 7.0, row.Float("Count"))
	assert.Equal(t, 0.0, row.Float("Blank"))
}

func TestTableMissingColumns(t *testing.T) {
	table := Table{Rows: []Row{{"A": "1", "B": "2"}}}
	assert.Empty(t, table.MissingColumns("A", "B"))
	assert.Equal(t, []string{"C"}, table.MissingColumns("A", "C"))

	// an empty table has no detectable columns and is not malformed
	assert.Empty(t, Table{}.MissingColumns("A"))
}
