package putaway

import (
	"time"

	"github.com/3plops/putaway/internal/domain/models"
)

// Audit accumulates one record per processed unit and produces the run
// summary. Pure aggregation; no decision logic lives here.
type Audit struct {
	runID     string
	startedAt time.Time
	now       func() time.Time

	records     []models.AuditRecord
	moved       int
	failed      int
	noLocation  int
	failedUnits []string
}

// NewAudit starts an audit trail for one run.
func NewAudit(runID string) *Audit {
	now := time.Now
	return &Audit{
		runID:     runID,
		startedAt: now(),
		now:       now,
	}
}

// Record archives the decision and outcome for one unit along with the
// point-in-time open/occupied aggregates.
func (a *Audit) Record(unit models.Unit, decision models.PlacementDecision, outcome models.MoveOutcome, errMsg string, totalOpen, totalOccupied int) {
	a.records = append(a.records, models.AuditRecord{
		Timestamp:          a.now(),
		RunID:              a.runID,
		UnitID:             unit.UnitID,
		ProductID:          unit.ProductID,
		ProductDescription: unit.ProductDescription,
		ProductOwner:       unit.ProductOwner,
		ReceiptDate:        unit.ReceiptDate,
		Decision:           decision,
		Outcome:            outcome,
		ErrorMessage:       errMsg,
		TotalOpen:          totalOpen,
		TotalOccupied:      totalOccupied,
	})

	switch outcome {
	case models.OutcomeMoved:
		a.moved++
	case models.OutcomeFailed:
		a.failed++
		a.failedUnits = append(a.failedUnits, unit.UnitID)
	case models.OutcomeSkippedNoLocation:
		a.noLocation++
	}
}

// Records returns the accumulated per-unit records in processing order.
func (a *Audit) Records() []models.AuditRecord {
	return a.records
}

// Summary closes the trail and returns the run aggregates.
func (a *Audit) Summary() models.RunSummary {
	return models.RunSummary{
		RunID:       a.runID,
		StartedAt:   a.startedAt,
		FinishedAt:  a.now(),
		Processed:   len(a.records),
		Moved:       a.moved,
		Failed:      a.failed,
		NoLocation:  a.noLocation,
		FailedUnits: a.failedUnits,
	}
}
