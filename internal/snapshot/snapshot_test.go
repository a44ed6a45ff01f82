package snapshot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/3plops/putaway/internal/domain/models"
)

func locRow(id, zone, aisle, rack, level, status string) models.Row {
	return models.Row{
		"Location ID":     id,
		"Zone ID":         zone,
		"Aisle":           aisle,
		"Rack":            rack,
		"Level":           level,
		"Location Status": status,
	}
}

func unitRow(unit, product, owner, zone, aisle, rack, level string, qty float64) models.Row {
	return models.Row{
		"Unit ID":             unit,
		"Product ID":          product,
		"Product Description": "",
		"Product Owner Name":  owner,
		"Receipt Date":        "",
		"Building":            "",
		"Zone":                zone,
		"Aisle":               aisle,
		"Rack":                rack,
		"Level":               level,
		"Total On Hand":       qty,
	}
}

func unlocatedRow(unit, product, owner string) models.Row {
	return unitRow(unit, product, owner, "", "", "", "", 1)
}

var racksOnly = Options{Zones: []string{"Racks"}}

func TestBuildSplitsLocatedAndUnlocated(t *testing.T) {
	locations := models.Table{Rows: []models.Row{
		locRow("L1", "Racks", "1", "1", "1F", "OPEN"),
	}}
	units := models.Table{Rows: []models.Row{
		unitRow("N1", "P1", "Acme", "Racks", "1", "1", "2B", 4),
		unlocatedRow("N2", "P2", "Acme"),
		unlocatedRow("N3", "P1", "Bravo"),
	}}

	snap, err := Build(locations, units, racksOnly)
	require.NoError(t, err)

	require.Len(t, snap.LocatedUnits, 1)
	require.Len(t, snap.UnlocatedUnits, 2)
	assert.Equal(t, "N2", snap.UnlocatedUnits[0].UnitID)
	assert.Equal(t, "N3", snap.UnlocatedUnits[1].UnitID)

	assert.True(t, snap.Occupied(models.LocationKey{Zone: "Racks", Aisle: "1", Rack: "1", Level: "2B"}))
	assert.False(t, snap.Occupied(models.LocationKey{Zone: "Racks", Aisle: "1", Rack: "1", Level: "1F"}))
}

func TestBuildEligibilityFilters(t *testing.T) {
	locations := models.Table{Rows: []models.Row{
		locRow("L1", "Racks", "1", "1", "1F", "OPEN"),    // eligible
		locRow("L2", "Overflow", "1", "1", "1F", "OPEN"), // zone not allow-listed
		locRow("L3", "Racks", "1", "1", "10", "OPEN"),    // no front/back marker
		locRow("L4", "Racks", "1", "1", "2B", "INUSE"),   // not OPEN
		locRow("L5", "Racks", "1", "2", "1F", "OPEN"),    // occupied below
	}}
	units := models.Table{Rows: []models.Row{
		unitRow("N1", "P1", "Acme", "Racks", "1", "2", "1F", 3),
	}}

	snap, err := Build(locations, units, racksOnly)
	require.NoError(t, err)

	assert.Equal(t, 1, snap.AvailableCount())
	section := snap.Section(models.SectionKey{Zone: "Racks", Aisle: "1", Rack: "1"})
	require.NotNil(t, section)
	require.Len(t, section.Front, 1)
	assert.Equal(t, "L1", section.Front[0].LocationID)
	assert.Empty(t, section.Back)
}

func TestBuildRelaxedInUsePolicy(t *testing.T) {
	locations := models.Table{Rows: []models.Row{
		locRow("L1", "Racks", "1", "1", "1B", "INUSE"), // empty INUSE slot
		locRow("L2", "Racks", "1", "2", "1B", "INUSE"), // INUSE with stock
	}}
	units := models.Table{Rows: []models.Row{
		unitRow("N1", "P1", "Acme", "Racks", "1", "2", "1B", 5),
	}}

	strict, err := Build(locations, units, racksOnly)
	require.NoError(t, err)
	assert.Equal(t, 0, strict.AvailableCount())

	relaxed, err := Build(locations, units, Options{Zones: []string{"Racks"}, AllowEmptyInUse: true})
	require.NoError(t, err)
	assert.Equal(t, 1, relaxed.AvailableCount())
	section := relaxed.Section(models.SectionKey{Zone: "Racks", Aisle: "1", Rack: "1"})
	require.NotNil(t, section)
	require.Len(t, section.Back, 1)
	assert.Equal(t, "L1", section.Back[0].LocationID)
}

func TestBuildMalformedTables(t *testing.T) {
	locations := models.Table{Rows: []models.Row{
		{"Location ID": "L1", "Zone ID": "Racks", "Aisle": "1", "Rack": "1", "Level": "1F"},
	}}
	units := models.Table{Rows: []models.Row{
		unitRow("N1", "P1", "Acme", "", "", "", "", 1),
	}}

	_, err := Build(locations, units, racksOnly)
	var malformed *MalformedError
	require.ErrorAs(t, err, &malformed)
	assert.Equal(t, "locations", malformed.Table)
	assert.Equal(t, []string{"Location Status"}, malformed.Missing)
}

func TestBuildEmptyTablesAreValid(t *testing.T) {
	snap, err := Build(models.Table{}, models.Table{}, racksOnly)
	require.NoError(t, err)
	assert.Zero(t, snap.AvailableCount())
	assert.Empty(t, snap.UnlocatedUnits)
	assert.Empty(t, snap.AvailableSections())
}

func TestTotalsCoverWholeLocationsTable(t *testing.T) {
	locations := models.Table{Rows: []models.Row{
		locRow("L1", "Racks", "1", "1", "1F", "OPEN"),
		locRow("L2", "Overflow", "2", "1", "1F", "OPEN"),
		locRow("L3", "Racks", "1", "1", "2B", "INUSE"),
		locRow("L4", "Racks", "1", "1", "3B", "HOLD"),
	}}

	snap, err := Build(locations, models.Table{}, racksOnly)
	require.NoError(t, err)
	assert.Equal(t, 2, snap.TotalOpen)
	assert.Equal(t, 2, snap.TotalOccupied)
}

func TestSectionsForProductOrdering(t *testing.T) {
	units := models.Table{Rows: []models.Row{
		unitRow("N1", "P1", "Acme", "Racks", "1", "1", "1F", 1), // section A, 1 unit
		unitRow("N2", "P1", "Acme", "Racks", "2", "1", "1F", 1), // section B
		unitRow("N3", "P1", "Acme", "Racks", "2", "1", "2F", 1), // section B, 2 units
		unitRow("N4", "P1", "Acme", "Racks", "3", "1", "1F", 1), // section C, 1 unit
		unitRow("N5", "P2", "Acme", "Racks", "4", "1", "1F", 1), // other product
	}}

	snap, err := Build(models.Table{}, units, racksOnly)
	require.NoError(t, err)

	sections, total := snap.SectionsForProduct("P1")
	assert.Equal(t, 4, total)
	require.Len(t, sections, 3)

	// most populated first, ties by first appearance
	assert.Equal(t, models.SectionKey{Zone: "Racks", Aisle: "2", Rack: "1"}, sections[0])
	assert.Equal(t, models.SectionKey{Zone: "Racks", Aisle: "1", Rack: "1"}, sections[1])
	assert.Equal(t, models.SectionKey{Zone: "Racks", Aisle: "3", Rack: "1"}, sections[2])
}

func TestSectionsForOwnerFirstAppearanceOrder(t *testing.T) {
	units := models.Table{Rows: []models.Row{
		unitRow("N1", "P1", "Acme", "Racks", "5", "1", "1F", 1),
		unitRow("N2", "P2", "Acme", "Racks", "2", "1", "1F", 1),
		unitRow("N3", "P3", "Acme", "Racks", "5", "1", "2F", 1), // repeat section
		unitRow("N4", "P4", "Bravo", "Racks", "9", "1", "1F", 1),
	}}

	snap, err := Build(models.Table{}, units, racksOnly)
	require.NoError(t, err)

	sections, total := snap.SectionsForOwner("Acme")
	assert.Equal(t, 3, total)
	require.Len(t, sections, 2)
	assert.Equal(t, "5", sections[0].Aisle)
	assert.Equal(t, "2", sections[1].Aisle)
}

func TestAvailableSectionsAscendingOrder(t *testing.T) {
	locations := models.Table{Rows: []models.Row{
		locRow("L1", "Racks", "3", "2", "1F", "OPEN"),
		locRow("L2", "Racks", "1", "2", "1F", "OPEN"),
		locRow("L3", "Racks", "1", "1", "1B", "OPEN"),
	}}

	snap, err := Build(locations, models.Table{}, racksOnly)
	require.NoError(t, err)

	sections := snap.AvailableSections()
	require.Len(t, sections, 3)
	assert.Equal(t, models.SectionKey{Zone: "Racks", Aisle: "1", Rack: "1"}, sections[0])
	assert.Equal(t, models.SectionKey{Zone: "Racks", Aisle: "1", Rack: "2"}, sections[1])
	assert.Equal(t, models.SectionKey{Zone: "Racks", Aisle: "3", Rack: "2"}, sections[2])
}

func TestMarkOccupied(t *testing.T) {
	locations := models.Table{Rows: []models.Row{
		locRow("L1", "Racks", "1", "1", "1B", "OPEN"),
		locRow("L2", "Racks", "1", "1", "1F", "OPEN"),
	}}

	snap, err := Build(locations, models.Table{}, racksOnly)
	require.NoError(t, err)
	require.Equal(t, 2, snap.AvailableCount())

	key := models.LocationKey{Zone: "Racks", Aisle: "1", Rack: "1", Level: "1B"}
	snap.MarkOccupied(key)

	assert.True(t, snap.Occupied(key))
	assert.Equal(t, 1, snap.AvailableCount())

	section := snap.Section(key.Section())
	require.NotNil(t, section)
	assert.Empty(t, section.Back)
	assert.True(t, section.BackOccupied)
	assert.False(t, section.FrontOccupied)

	// idempotent
	snap.MarkOccupied(key)
	assert.Equal(t, 1, snap.AvailableCount())
}
