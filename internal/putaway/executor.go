// Package putaway turns placement decisions into backend moves and keeps the
// per-run audit trail.
package putaway

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/3plops/putaway/internal/domain/models"
)

// Mover issues the external move operation. *veracore.Client satisfies it.
type Mover interface {
	MoveUnit(ctx context.Context, unitID, locationID string) error
}

// Executor applies placement decisions one unit at a time. A failed move is
// recorded and the batch continues; the executor never aborts a run over a
// single unit.
type Executor struct {
	mover  Mover
	delay  time.Duration
	sleep  func(time.Duration)
	logger *zap.Logger
}

// NewExecutor builds an executor with the given minimum spacing between
// consecutive backend move calls.
func NewExecutor(mover Mover, delay time.Duration, logger *zap.Logger) *Executor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Executor{
		mover:  mover,
		delay:  delay,
		sleep:  time.Sleep,
		logger: logger,
	}
}

// Execute acts on one decision. Decisions without a location are skipped
// without touching the backend. Every backend attempt, success or failure,
// is followed by the rate-limit delay.
func (x *Executor) Execute(ctx context.Context, unit models.Unit, decision models.PlacementDecision) (models.MoveOutcome, error) {
	if !decision.Placed() {
		x.logger.Info("no suitable location for unit",
			zap.String("unit_id", unit.UnitID),
			zap.String("product_id", unit.ProductID))
		return models.OutcomeSkippedNoLocation, nil
	}

	backendID := models.BackendUnitID(unit.UnitID)
	err := x.mover.MoveUnit(ctx, backendID, decision.Location.LocationID)

	// Spacing applies after failures too; the backend rate limit does not
	// care whether the move landed.
	x.sleep(x.delay)

	if err != nil {
		x.logger.Warn("move failed",
			zap.String("unit_id", unit.UnitID),
			zap.String("location_id", decision.Location.LocationID),
			zap.Error(err))
		return models.OutcomeFailed, err
	}

	x.logger.Info("unit moved",
		zap.String("unit_id", unit.UnitID),
		zap.String("location_id", decision.Location.LocationID),
		zap.String("physical", decision.Location.Physical()),
		zap.String("tier", string(decision.Tier)),
		zap.String("rule", string(decision.Rule)),
		zap.Float64("confidence", decision.Confidence))

	return models.OutcomeMoved, nil
}
