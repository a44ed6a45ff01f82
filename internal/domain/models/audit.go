package models

import "time"

// MoveOutcome is the terminal result of acting on one placement decision.
type MoveOutcome string

const (
	OutcomeMoved             MoveOutcome = "moved"
	OutcomeFailed            MoveOutcome = "failed"
	OutcomeSkippedNoLocation MoveOutcome = "no_location"
)

// AuditRecord is one row of the decision audit log: unit identity, the full
// decision, the move outcome, and point-in-time occupancy aggregates.
type AuditRecord struct {
	Timestamp          time.Time         `bson:"timestamp" json:"timestamp"`
	RunID              string            `bson:"run_id" json:"run_id"`
	UnitID             string            `bson:"unit_id" json:"unit_id"`
	ProductID          string            `bson:"product_id" json:"product_id"`
	ProductDescription string            `bson:"product_description" json:"product_description"`
	ProductOwner       string            `bson:"product_owner" json:"product_owner"`
	ReceiptDate        string            `bson:"receipt_date" json:"receipt_date"`
	Decision           PlacementDecision `bson:"decision" json:"decision"`
	Outcome            MoveOutcome       `bson:"outcome" json:"outcome"`
	ErrorMessage       string            `bson:"error_message,omitempty" json:"error_message,omitempty"`
	TotalOpen          int               `bson:"total_open" json:"total_open"`
	TotalOccupied      int               `bson:"total_occupied" json:"total_occupied"`
}

// RunSummary aggregates one completed batch run.
type RunSummary struct {
	RunID       string    `bson:"run_id" json:"run_id"`
	StartedAt   time.Time `bson:"started_at" json:"started_at"`
	FinishedAt  time.Time `bson:"finished_at" json:"finished_at"`
	Processed   int       `bson:"processed" json:"processed"`
	Moved       int       `bson:"moved" json:"moved"`
	Failed      int       `bson:"failed" json:"failed"`
	NoLocation  int       `bson:"no_location" json:"no_location"`
	FailedUnits []string  `bson:"failed_units,omitempty" json:"failed_units,omitempty"`
}
