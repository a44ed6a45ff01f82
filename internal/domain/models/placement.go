package models

// Tier labels the candidate-selection pass that produced a decision.
type Tier string

const (
	TierSameProduct      Tier = "SameProduct"
	TierSameOwner        Tier = "SameOwner"
	TierGeneralWarehouse Tier = "GeneralWarehouse"
	TierNoLocationFound  Tier = "NoLocationFound"
)

// Rule labels the front/back sub-rule branch that picked the slot.
type Rule string

const (
	RuleBothEmptyUseBack  Rule = "BothEmptyUseBack"
	RuleBackFullUseFront  Rule = "BackFullUseFront"
	RuleFrontFullUseBack  Rule = "FrontFullUseBack"
	RuleDefaultUseFront   Rule = "DefaultUseFront"
	RuleLastResortUseBack Rule = "LastResortUseBack"
	RuleNone              Rule = ""
)

// PlacementDecision is the slotting engine's verdict for one unit. It is
// built once, acted on immediately, then archived; never mutated afterward.
type PlacementDecision struct {
	Location *Location `bson:"location,omitempty" json:"location,omitempty"`

	Tier       Tier    `bson:"tier" json:"tier"`
	Rule       Rule    `bson:"rule" json:"rule"`
	Confidence float64 `bson:"confidence" json:"confidence"`
	Reason     string  `bson:"reason" json:"reason"`

	FrontOccupied bool `bson:"front_occupied" json:"front_occupied"`
	BackOccupied  bool `bson:"back_occupied" json:"back_occupied"`

	// AlternativesConsidered counts the available slots in the winning
	// section, or every available slot when nothing qualified.
	AlternativesConsidered int `bson:"alternatives_considered" json:"alternatives_considered"`
	SameProductUnits       int `bson:"same_product_units" json:"same_product_units"`
	SameOwnerUnits         int `bson:"same_owner_units" json:"same_owner_units"`
}

// Placed reports whether the decision carries an assigned location.
func (d PlacementDecision) Placed() bool {
	return d.Location != nil && d.Location.LocationID != ""
}
