package models

import "unicode"

// Unit is one inventory record from the unit-details report.
type Unit struct {
	UnitID             string
	ProductID          string
	ProductDescription string
	ProductOwner       string
	ReceiptDate        string
	Building           string
	Zone               string
	Aisle              string
	Rack               string
	Level              string
	OnHandQty          float64
}

// IsUnlocated reports whether the unit has no physical placement. A unit is
// unlocated only when every positional field is blank; a single populated
// field makes it located.
func (u Unit) IsUnlocated() bool {
	return u.Building == "" && u.Zone == "" && u.Aisle == "" && u.Rack == "" && u.Level == ""
}

// Key returns the identity tuple of the location the unit currently occupies.
// Only meaningful for located units.
func (u Unit) Key() LocationKey {
	return LocationKey{Zone: u.Zone, Aisle: u.Aisle, Rack: u.Rack, Level: u.Level}
}

// BackendUnitID strips the leading non-numeric tag rune from a unit label.
// The backend's move endpoint wants the bare number: label "N12345" is
// submitted as "12345".
func BackendUnitID(unitID string) string {
	runes := []rune(unitID)
	if len(runes) > 1 && !unicode.IsDigit(runes[0]) {
		return string(runes[1:])
	}
	return unitID
}
