// Package slotting implements the placement algorithm: three ordered
// candidate tiers over (Zone, Aisle, Rack) sections, each applying a
// front/back sub-rule to the section's available slots.
package slotting

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/3plops/putaway/internal/domain/models"
	"github.com/3plops/putaway/internal/snapshot"
)

// Config carries the engine's policy knobs.
type Config struct {
	// OwnerZones restricts specific product owners to a subset of zones.
	// Owners absent from the map may be placed anywhere.
	OwnerZones map[string][]string
}

// Engine decides the best open slot for one unit given the run's snapshot.
// It never mutates the snapshot; eligibility pre-filters (zone allow-list,
// level marker, open-and-unoccupied) were already applied during the build.
type Engine struct {
	ownerZones map[string]map[string]struct{}
	logger     *zap.Logger
}

// NewEngine builds an engine with the provided policy.
func NewEngine(cfg Config, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}

	ownerZones := make(map[string]map[string]struct{}, len(cfg.OwnerZones))
	for owner, zones := range cfg.OwnerZones {
		set := make(map[string]struct{}, len(zones))
		for _, zone := range zones {
			set[zone] = struct{}{}
		}
		ownerZones[owner] = set
	}

	return &Engine{ownerZones: ownerZones, logger: logger}
}

// Decide picks the best open slot for the product/owner pair, or returns a
// NoLocationFound decision when nothing qualifies. Calling it twice against
// an unmodified snapshot returns an identical decision.
func (e *Engine) Decide(productID, productOwner string, snap *snapshot.Snapshot) models.PlacementDecision {
	productSections, productUnits := snap.SectionsForProduct(productID)
	ownerSections, ownerUnits := snap.SectionsForOwner(productOwner)

	// Tier 1: sections already holding this product, most-populated first.
	if d, ok := e.tryTier(models.TierSameProduct, productSections, productOwner, snap); ok {
		d.SameProductUnits = productUnits
		d.SameOwnerUnits = ownerUnits
		return d
	}

	// Tier 2: sections holding the same owner's stock, first-appearance order.
	if d, ok := e.tryTier(models.TierSameOwner, ownerSections, productOwner, snap); ok {
		d.SameProductUnits = productUnits
		d.SameOwnerUnits = ownerUnits
		return d
	}

	// Tier 3: any section with availability, ascending (Zone, Aisle, Rack).
	if d, ok := e.tryTier(models.TierGeneralWarehouse, snap.AvailableSections(), productOwner, snap); ok {
		d.SameProductUnits = productUnits
		d.SameOwnerUnits = ownerUnits
		return d
	}

	e.logger.Debug("no suitable location",
		zap.String("product_id", productID),
		zap.String("product_owner", productOwner),
		zap.Int("available", snap.AvailableCount()))

	return models.PlacementDecision{
		Tier:                   models.TierNoLocationFound,
		Rule:                   models.RuleNone,
		Confidence:             0,
		Reason:                 "no suitable location found after checking all tiers",
		AlternativesConsidered: snap.AvailableCount(),
		SameProductUnits:       productUnits,
		SameOwnerUnits:         ownerUnits,
	}
}

func (e *Engine) tryTier(tier models.Tier, sections []models.SectionKey, owner string, snap *snapshot.Snapshot) (models.PlacementDecision, bool) {
	allowed := e.ownerZones[owner]

	for _, key := range sections {
		if allowed != nil {
			if _, ok := allowed[key.Zone]; !ok {
				continue
			}
		}

		section := snap.Section(key)
		if section == nil || !section.Available() {
			continue
		}

		if d, ok := chooseFromSection(tier, section); ok {
			return d, true
		}
	}

	return models.PlacementDecision{}, false
}

// chooseFromSection applies the front/back sub-rule. The first matching row
// wins; within a position the first slot in the section's stored order is
// taken. Confidence is an ordinal quality score, not a probability.
func chooseFromSection(tier models.Tier, section *snapshot.Section) (models.PlacementDecision, bool) {
	var (
		best       models.Location
		rule       models.Rule
		confidence float64
	)

	front, back := section.Front, section.Back

	switch {
	// Empty section: fill the back first so the front stays a pick face.
	case !section.FrontOccupied && !section.BackOccupied && len(back) > 0:
		best, rule, confidence = back[0], models.RuleBothEmptyUseBack, 0.95

	// Back saturated: take the front.
	case !section.FrontOccupied && section.BackOccupied && len(front) > 0:
		best, rule, confidence = front[0], models.RuleBackFullUseFront, 0.90

	// Front saturated: take the back.
	case section.FrontOccupied && !section.BackOccupied && len(back) > 0:
		best, rule, confidence = back[0], models.RuleFrontFullUseBack, 0.85

	case len(front) > 0:
		best, rule, confidence = front[0], models.RuleDefaultUseFront, 0.75

	case len(back) > 0:
		best, rule, confidence = back[0], models.RuleLastResortUseBack, 0.70

	default:
		return models.PlacementDecision{}, false
	}

	loc := best
	return models.PlacementDecision{
		Location:   &loc,
		Tier:       tier,
		Rule:       rule,
		Confidence: confidence,
		Reason: fmt.Sprintf("%s - %s - Zone:%s, Aisle:%s, Rack:%s, Level:%s",
			tier, rule, loc.Zone, loc.Aisle, loc.Rack, loc.Level),
		FrontOccupied:          section.FrontOccupied,
		BackOccupied:           section.BackOccupied,
		AlternativesConsidered: len(front) + len(back),
	}, true
}
