// Package snapshot builds normalized, indexed views of the locations and
// unit-details report tables for one batch run. The snapshot owns its indices
// for the duration of the run; the slotting engine only reads them.
package snapshot

import (
	"fmt"
	"sort"
	"strings"

	"github.com/3plops/putaway/internal/domain/models"
)

// Report column names as the backend labels them.
const (
	colLocationID     = "Location ID"
	colZoneID         = "Zone ID"
	colAisle          = "Aisle"
	colRack           = "Rack"
	colLevel          = "Level"
	colLocationStatus = "Location Status"

	colUnitID       = "Unit ID"
	colProductID    = "Product ID"
	colProductDesc  = "Product Description"
	colProductOwner = "Product Owner Name"
	colReceiptDate  = "Receipt Date"
	colUnitZone     = "Zone"
	colBuilding     = "Building"
	colOnHand       = "Total On Hand"
)

const statusOpen = "OPEN"
const statusInUse = "INUSE"

var requiredLocationColumns = []string{colLocationID, colZoneID, colAisle, colRack, colLevel, colLocationStatus}
var requiredUnitColumns = []string{colUnitID, colProductID, colProductOwner, colUnitZone, colAisle, colRack, colLevel, colBuilding, colOnHand}

// MalformedError indicates a report table is missing required columns.
// An empty result set is not malformed; only absent columns are.
type MalformedError struct {
	Table   string
	Missing []string
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("snapshot: %s table missing required columns: %s", e.Table, strings.Join(e.Missing, ", "))
}

// Options controls eligibility filtering during the build.
type Options struct {
	// Zones is the allow-list of zones eligible for placement.
	Zones []string
	// AllowEmptyInUse also treats INUSE locations with zero aggregate
	// on-hand quantity as available.
	AllowEmptyInUse bool
}

// Section holds one (Zone, Aisle, Rack) section's available slots, split by
// front/back position, plus its located-unit occupancy flags. Slot slices
// keep the locations report row order; nothing re-sorts them.
type Section struct {
	Key           models.SectionKey
	Front         []models.Location
	Back          []models.Location
	FrontOccupied bool
	BackOccupied  bool
}

// Available reports whether the section still has at least one open slot.
func (s *Section) Available() bool {
	return len(s.Front) > 0 || len(s.Back) > 0
}

// Snapshot is the immutable-by-convention view of warehouse state for one
// run. MarkOccupied is the only mutation, used when the refresh-after-move
// policy is enabled.
type Snapshot struct {
	LocatedUnits   []models.Unit
	UnlocatedUnits []models.Unit

	occupied map[models.LocationKey]struct{}
	onHand   map[models.LocationKey]float64
	sections map[models.SectionKey]*Section

	// TotalOpen and TotalOccupied count the whole locations table (before
	// zone filtering), as the audit log reports point-in-time aggregates.
	TotalOpen     int
	TotalOccupied int

	totalAvailable int
}

// Build derives the snapshot from the raw report tables.
func Build(locations, units models.Table, opts Options) (*Snapshot, error) {
	if missing := locations.MissingColumns(requiredLocationColumns...); len(missing) > 0 {
		return nil, &MalformedError{Table: "locations", Missing: missing}
	}
	if missing := units.MissingColumns(requiredUnitColumns...); len(missing) > 0 {
		return nil, &MalformedError{Table: "units", Missing: missing}
	}

	snap := &Snapshot{
		occupied: make(map[models.LocationKey]struct{}),
		onHand:   make(map[models.LocationKey]float64),
		sections: make(map[models.SectionKey]*Section),
	}

	for _, row := range units.Rows {
		unit := models.Unit{
			UnitID:             row.Str(colUnitID),
			ProductID:          row.Str(colProductID),
			ProductDescription: row.Str(colProductDesc),
			ProductOwner:       row.Str(colProductOwner),
			ReceiptDate:        row.Str(colReceiptDate),
			Building:           row.Str(colBuilding),
			Zone:               row.Str(colUnitZone),
			Aisle:              row.Str(colAisle),
			Rack:               row.Str(colRack),
			Level:              row.Str(colLevel),
			OnHandQty:          row.Float(colOnHand),
		}

		if unit.IsUnlocated() {
			snap.UnlocatedUnits = append(snap.UnlocatedUnits, unit)
			continue
		}

		snap.LocatedUnits = append(snap.LocatedUnits, unit)
		key := unit.Key()
		snap.occupied[key] = struct{}{}
		snap.onHand[key] += unit.OnHandQty
	}

	allowedZones := make(map[string]struct{}, len(opts.Zones))
	for _, zone := range opts.Zones {
		allowedZones[zone] = struct{}{}
	}

	for _, row := range locations.Rows {
		status := strings.ToUpper(row.Str(colLocationStatus))
		if status == statusOpen {
			snap.TotalOpen++
		} else {
			snap.TotalOccupied++
		}

		loc := models.Location{
			LocationID: row.Str(colLocationID),
			Zone:       row.Str(colZoneID),
			Aisle:      row.Str(colAisle),
			Rack:       row.Str(colRack),
			Level:      row.Str(colLevel),
			Status:     status,
			Position:   models.ParsePosition(row.Str(colLevel)),
		}

		if _, ok := allowedZones[loc.Zone]; !ok {
			continue
		}
		if loc.Position == models.PositionNone {
			continue
		}

		if !snap.locationAvailable(loc, opts) {
			continue
		}

		section := snap.sections[loc.Key().Section()]
		if section == nil {
			section = &Section{Key: loc.Key().Section()}
			snap.sections[section.Key] = section
		}
		if loc.Position == models.PositionFront {
			section.Front = append(section.Front, loc)
		} else {
			section.Back = append(section.Back, loc)
		}
		snap.totalAvailable++
	}

	for _, unit := range snap.LocatedUnits {
		section := snap.sections[unit.Key().Section()]
		if section == nil {
			continue
		}
		switch models.ParsePosition(unit.Level) {
		case models.PositionFront:
			section.FrontOccupied = true
		case models.PositionBack:
			section.BackOccupied = true
		}
	}

	return snap, nil
}

func (s *Snapshot) locationAvailable(loc models.Location, opts Options) bool {
	key := loc.Key()
	if loc.Status == statusOpen {
		_, taken := s.occupied[key]
		return !taken
	}
	if opts.AllowEmptyInUse && loc.Status == statusInUse {
		return s.onHand[key] == 0
	}
	return false
}

// Occupied reports whether any located unit references the key.
func (s *Snapshot) Occupied(key models.LocationKey) bool {
	_, ok := s.occupied[key]
	return ok
}

// Section returns the indexed section for the key, or nil when the section
// has no eligible slots.
func (s *Snapshot) Section(key models.SectionKey) *Section {
	return s.sections[key]
}

// AvailableCount is the number of eligible open slots across all sections.
func (s *Snapshot) AvailableCount() int {
	return s.totalAvailable
}

// SectionsForProduct returns the sections currently holding the product,
// most-populated first. Ties keep the order sections first appear in the
// located-units table; that tie-break is stable insertion order, pending
// business sign-off on anything smarter.
func (s *Snapshot) SectionsForProduct(productID string) ([]models.SectionKey, int) {
	type entry struct {
		key   models.SectionKey
		count int
		first int
	}

	var order []*entry
	index := make(map[models.SectionKey]*entry)
	total := 0

	for i, unit := range s.LocatedUnits {
		if unit.ProductID != productID {
			continue
		}
		total++
		key := unit.Key().Section()
		e := index[key]
		if e == nil {
			e = &entry{key: key, first: i}
			index[key] = e
			order = append(order, e)
		}
		e.count++
	}

	sort.SliceStable(order, func(i, j int) bool {
		if order[i].count != order[j].count {
			return order[i].count > order[j].count
		}
		return order[i].first < order[j].first
	})

	keys := make([]models.SectionKey, len(order))
	for i, e := range order {
		keys[i] = e.key
	}
	return keys, total
}

// SectionsForOwner returns the sections holding the owner's units in the
// order they first appear in the located-units table.
func (s *Snapshot) SectionsForOwner(owner string) ([]models.SectionKey, int) {
	var keys []models.SectionKey
	seen := make(map[models.SectionKey]struct{})
	total := 0

	for _, unit := range s.LocatedUnits {
		if unit.ProductOwner != owner {
			continue
		}
		total++
		key := unit.Key().Section()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		keys = append(keys, key)
	}

	return keys, total
}

// AvailableSections lists every section with at least one open slot in
// ascending (Zone, Aisle, Rack) order.
func (s *Snapshot) AvailableSections() []models.SectionKey {
	keys := make([]models.SectionKey, 0, len(s.sections))
	for key, section := range s.sections {
		if section.Available() {
			keys = append(keys, key)
		}
	}

	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Zone != keys[j].Zone {
			return keys[i].Zone < keys[j].Zone
		}
		if keys[i].Aisle != keys[j].Aisle {
			return keys[i].Aisle < keys[j].Aisle
		}
		return keys[i].Rack < keys[j].Rack
	})

	return keys
}

// MarkOccupied records a placement made during the current run: the key
// joins the occupancy index and the slot leaves its section's availability
// lists. Only called when the refresh-after-move policy is on; the default
// policy works from the snapshot taken at run start.
func (s *Snapshot) MarkOccupied(key models.LocationKey) {
	if _, ok := s.occupied[key]; ok {
		return
	}
	s.occupied[key] = struct{}{}

	section := s.sections[key.Section()]
	if section == nil {
		return
	}

	remove := func(slots []models.Location) []models.Location {
		for i, loc := range slots {
			if loc.Key() == key {
				s.totalAvailable--
				return append(slots[:i:i], slots[i+1:]...)
			}
		}
		return slots
	}

	switch models.ParsePosition(key.Level) {
	case models.PositionFront:
		section.Front = remove(section.Front)
		section.FrontOccupied = true
	case models.PositionBack:
		section.Back = remove(section.Back)
		section.BackOccupied = true
	}
}
