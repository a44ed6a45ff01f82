package models

import "strings"

// Position is the front/back sub-position of a rack level, derived from the
// marker character embedded in the level code.
type Position string

const (
	PositionFront Position = "F"
	PositionBack  Position = "B"
	PositionNone  Position = ""
)

// LocationKey is the identity tuple of a storage location. Located units
// reference locations by this tuple, not by Location ID.
type LocationKey struct {
	Zone  string
	Aisle string
	Rack  string
	Level string
}

// SectionKey groups locations into a (Zone, Aisle, Rack) section, the grain
// at which the slotting tiers operate.
type SectionKey struct {
	Zone  string
	Aisle string
	Rack  string
}

// Section returns the section this key belongs to.
func (k LocationKey) Section() SectionKey {
	return SectionKey{Zone: k.Zone, Aisle: k.Aisle, Rack: k.Rack}
}

// Location is one storage slot from the locations report.
type Location struct {
	LocationID string
	Zone       string
	Aisle      string
	Rack       string
	Level      string
	Status     string
	Position   Position
}

// Key returns the location's identity tuple.
func (l Location) Key() LocationKey {
	return LocationKey{Zone: l.Zone, Aisle: l.Aisle, Rack: l.Rack, Level: l.Level}
}

// Physical renders the human-readable Zone-Aisle-Rack-Level form used in
// placement reports.
func (l Location) Physical() string {
	return l.Zone + "-" + l.Aisle + "-" + l.Rack + "-" + l.Level
}

// ParsePosition extracts the front/back marker from a level code. Level codes
// normally carry the marker as their second character ("1F", "2B"); codes
// where the marker sits elsewhere are still honored, and codes without any
// marker are ineligible for placement.
func ParsePosition(level string) Position {
	upper := strings.ToUpper(level)
	if len(upper) >= 2 {
		switch upper[1] {
		case 'F':
			return PositionFront
		case 'B':
			return PositionBack
		}
	}
	if i := strings.IndexAny(upper, "FB"); i >= 0 {
		if upper[i] == 'F' {
			return PositionFront
		}
		return PositionBack
	}
	return PositionNone
}
